package scoring

import "testing"

func TestAggregate_FieldAndAdmin(t *testing.T) {
	totals := Aggregate([]ScoredCriterion{
		{CriterionID: "C1", Category: CategoryField, Score: 8, MaxScore: 10},
		{CriterionID: "C2", Category: CategoryAdmin, Score: 6, MaxScore: 10},
	})
	if totals.Total != 14 {
		t.Fatalf("total = %v, want 14", totals.Total)
	}
	if totals.Denominator != 20 {
		t.Fatalf("denominator = %v, want 20", totals.Denominator)
	}
	if totals.Percentage != 70 {
		t.Fatalf("percentage = %v, want 70", totals.Percentage)
	}
}

func TestAggregate_BonusExcludedFromDenominator(t *testing.T) {
	totals := Aggregate([]ScoredCriterion{
		{CriterionID: "C1", Category: CategoryField, Score: 10, MaxScore: 10},
		{CriterionID: "B1", Category: CategoryBonus, Score: 5, MaxScore: 5},
	})
	if totals.Total != 15 {
		t.Fatalf("total = %v, want 15", totals.Total)
	}
	if totals.Denominator != 10 {
		t.Fatalf("denominator = %v, want 10", totals.Denominator)
	}
	// Bonus points can push past 100%.
	if totals.Percentage != 150 {
		t.Fatalf("percentage = %v, want 150", totals.Percentage)
	}
}

func TestAggregate_BonusOnlyYieldsZeroPercentage(t *testing.T) {
	totals := Aggregate([]ScoredCriterion{
		{CriterionID: "B1", Category: CategoryBonus, Score: 5, MaxScore: 5},
	})
	if totals.Denominator != 0 {
		t.Fatalf("denominator = %v, want 0", totals.Denominator)
	}
	if totals.Percentage != 0 {
		t.Fatalf("percentage = %v, want 0 when denominator is 0", totals.Percentage)
	}
	if totals.Total != 5 {
		t.Fatalf("total = %v, want 5", totals.Total)
	}
}

func TestAggregate_Empty(t *testing.T) {
	totals := Aggregate(nil)
	if totals.Total != 0 || totals.Denominator != 0 || totals.Percentage != 0 {
		t.Fatalf("empty input: got %+v, want zeros", totals)
	}
}

func TestHasAward(t *testing.T) {
	cases := []struct {
		pct  float64
		want bool
	}{
		{89.9, false},
		{90, true},
		{100, true},
		{0, false},
	}
	for _, c := range cases {
		if got := HasAward(c.pct); got != c.want {
			t.Errorf("HasAward(%v) = %v, want %v", c.pct, got, c.want)
		}
	}
}
