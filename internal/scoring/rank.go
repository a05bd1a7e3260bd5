package scoring

import "sort"

// Tier is one step of the rank ladder: the minimum XP that earns Name.
type Tier struct {
	MinXP int
	Name  string
}

// DefaultTiers returns the stock ladder. The entry tier has MinXP 0 so
// every non-negative XP maps to exactly one tier.
func DefaultTiers() []Tier {
	return []Tier{
		{MinXP: 1000, Name: "diamond"},
		{MinXP: 500, Name: "gold"},
		{MinXP: 250, Name: "silver"},
		{MinXP: 100, Name: "bronze"},
		{MinXP: 0, Name: "rookie"},
	}
}

// RankEngine maps cumulative XP to a tier name.
type RankEngine struct {
	tiers []Tier // descending by MinXP
}

// NewRankEngine builds an engine from arbitrary tiers. A nil or empty
// slice falls back to DefaultTiers. A tier with MinXP 0 is appended if
// none covers the bottom of the ladder.
func NewRankEngine(tiers []Tier) *RankEngine {
	if len(tiers) == 0 {
		tiers = DefaultTiers()
	}
	sorted := make([]Tier, len(tiers))
	copy(sorted, tiers)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].MinXP > sorted[j].MinXP })
	if sorted[len(sorted)-1].MinXP > 0 {
		sorted = append(sorted, Tier{MinXP: 0, Name: "rookie"})
	}
	return &RankEngine{tiers: sorted}
}

// Rank returns the tier name for the given XP total. Negative input is
// treated as 0.
func (e *RankEngine) Rank(xp int) string {
	if xp < 0 {
		xp = 0
	}
	for _, t := range e.tiers {
		if xp >= t.MinXP {
			return t.Name
		}
	}
	return e.tiers[len(e.tiers)-1].Name
}

// XPGained converts a submission percentage into experience points:
// floor(percentage/10). Below 10% grants nothing; there is no cap, so
// bonus-inflated percentages grant proportionally more.
func XPGained(percentage float64) int {
	if percentage <= 0 {
		return 0
	}
	return int(percentage / 10)
}
