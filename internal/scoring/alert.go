package scoring

import "fmt"

// AlertTypeLowPerformance tags alerts raised by the submission pipeline.
const AlertTypeLowPerformance = "low_performance"

// DefaultAlertThreshold is the stock low-performance cut.
const DefaultAlertThreshold = 75.0

// AlertRule decides whether a submission percentage warrants an alert.
// It deliberately does not deduplicate against earlier unresolved alerts;
// repeated low scores produce repeated alert rows.
type AlertRule struct {
	Threshold float64
}

// Evaluate returns the alert message and true when the percentage is
// strictly below the threshold.
func (r AlertRule) Evaluate(percentage float64) (string, bool) {
	if percentage >= r.Threshold {
		return "", false
	}
	return fmt.Sprintf("volunteer performance dropped to %.1f%%", percentage), true
}
