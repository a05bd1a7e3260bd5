package scoring

import "testing"

func TestClassifyDNA(t *testing.T) {
	cases := []struct {
		name   string
		scores []ScoredCriterion
		want   string
	}{
		{
			name: "field dominant",
			scores: []ScoredCriterion{
				{Category: CategoryField, Score: 8},
				{Category: CategoryAdmin, Score: 6},
			},
			want: LabelFieldDominant,
		},
		{
			name: "administrative dominant",
			scores: []ScoredCriterion{
				{Category: CategoryField, Score: 3},
				{Category: CategoryAdmin, Score: 9},
			},
			want: LabelAdminDominant,
		},
		{
			name: "exact tie",
			scores: []ScoredCriterion{
				{Category: CategoryField, Score: 5},
				{Category: CategoryAdmin, Score: 5},
			},
			want: LabelBalanced,
		},
		{
			name:   "empty is balanced",
			scores: nil,
			want:   LabelBalanced,
		},
		{
			name: "bonus ignored",
			scores: []ScoredCriterion{
				{Category: CategoryBonus, Score: 50},
			},
			want: LabelBalanced,
		},
		{
			name: "bonus does not tip the scale",
			scores: []ScoredCriterion{
				{Category: CategoryField, Score: 4},
				{Category: CategoryAdmin, Score: 6},
				{Category: CategoryBonus, Score: 100},
			},
			want: LabelAdminDominant,
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := ClassifyDNA(c.scores); got != c.want {
				t.Fatalf("got %q, want %q", got, c.want)
			}
		})
	}
}
