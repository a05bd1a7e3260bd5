package eval

import "errors"

// Submission pipeline error kinds. The first three reject before any
// write; ErrTransactionFailed means the atomic unit was rolled back.
var (
	ErrVolunteerNotFound  = errors.New("volunteer not found")
	ErrUnknownCriterion   = errors.New("unknown criterion")
	ErrDuplicateCriterion = errors.New("duplicate criterion")
	ErrTransactionFailed  = errors.New("evaluation transaction failed")
)

// IsSubmitInputError reports whether err is one of the pre-write
// rejections (caller fault, not storage fault).
func IsSubmitInputError(err error) bool {
	return errors.Is(err, ErrVolunteerNotFound) ||
		errors.Is(err, ErrUnknownCriterion) ||
		errors.Is(err, ErrDuplicateCriterion)
}
