package scoring

// Criterion categories. "bonus" scores count toward the total but are
// excluded from the percentage denominator, so totals above 100% are
// possible.
const (
	CategoryField = "field"
	CategoryAdmin = "administrative"
	CategoryBonus = "bonus"
)

// ScoredCriterion is one awarded score joined with the catalog metadata
// it was resolved against.
type ScoredCriterion struct {
	CriterionID string
	Category    string
	Score       float64
	MaxScore    float64
}

// Totals is the outcome of aggregating one evaluation's scores.
type Totals struct {
	Total       float64
	Denominator float64
	Percentage  float64
}

// AwardThreshold marks an evaluation as exceptional. Fixed, not config.
const AwardThreshold = 90.0

// Aggregate sums awarded scores and non-bonus maxima. Percentage is 0
// when the denominator is 0 (e.g. a bonus-only or empty submission) and
// is never negative; there is no upper clamp.
func Aggregate(scores []ScoredCriterion) Totals {
	var t Totals
	for _, s := range scores {
		t.Total += s.Score
		if s.Category != CategoryBonus {
			t.Denominator += s.MaxScore
		}
	}
	if t.Denominator > 0 {
		t.Percentage = t.Total / t.Denominator * 100
	}
	if t.Percentage < 0 {
		t.Percentage = 0
	}
	return t
}

// HasAward reports whether a percentage earns the award flag.
func HasAward(percentage float64) bool {
	return percentage >= AwardThreshold
}
