package scoring

// Behavioral DNA labels.
const (
	LabelFieldDominant = "field-dominant"
	LabelAdminDominant = "administrative-dominant"
	LabelBalanced      = "balanced"
)

// ClassifyDNA compares field vs administrative sums. Bonus and any other
// categories are ignored. An exact tie (including 0/0) is "balanced".
func ClassifyDNA(scores []ScoredCriterion) string {
	var fieldScore, adminScore float64
	for _, s := range scores {
		switch s.Category {
		case CategoryField:
			fieldScore += s.Score
		case CategoryAdmin:
			adminScore += s.Score
		}
	}
	switch {
	case fieldScore > adminScore:
		return LabelFieldDominant
	case adminScore > fieldScore:
		return LabelAdminDominant
	default:
		return LabelBalanced
	}
}
