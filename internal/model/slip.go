package model

import "github.com/shopspring/decimal"

// BetLeg is one prop inside a candidate slip. The ValuedProp is shared,
// never copied or mutated.
type BetLeg struct {
	Prop *ValuedProp
	Side Side
	Odds decimal.Decimal
}

// BetSlip is one ranked combination of legs. Immutable once built.
type BetSlip struct {
	Legs         []BetLeg
	CombinedOdds decimal.Decimal
	TargetOdds   decimal.Decimal
	TotalValue   float64 // average leg value score
	Score        float64 // composite ranking score
	Correlated   bool    // 2+ legs from the same game
	Summary      string
}

// LegKey identifies a leg for slip deduplication.
type LegKey struct {
	Player string
	Market Market
	Side   Side
}

// IdentitySet returns the set of leg identities for dedup comparison.
func (s *BetSlip) IdentitySet() map[LegKey]bool {
	set := make(map[LegKey]bool, len(s.Legs))
	for _, leg := range s.Legs {
		set[LegKey{leg.Prop.Prop.PlayerName, leg.Prop.Prop.Market, leg.Side}] = true
	}
	return set
}
