// Package slips searches combinations of graded props for multi-leg slips
// whose combined decimal odds land within a tolerance band of a target.
package slips

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"PropScout/internal/config"
	"PropScout/internal/model"
)

// Options narrows one build request.
type Options struct {
	// Legs pins the slip size when > 0; otherwise leg counts are estimated
	// from the target and the eligible pool's average odds.
	Legs int
	// MinScore overrides the configured minimum value score when > 0.
	MinScore float64
	// Bookmaker filters the pool: the preferred bookmaker name matches props
	// flagged preferred, any other value matches the bookmaker key exactly.
	Bookmaker string
}

// Builder runs the combinatorial slip search.
type Builder struct {
	cfg *config.Config
}

// New creates a Builder.
func New(cfg *config.Config) *Builder {
	return &Builder{cfg: cfg}
}

// Build returns up to the configured number of slips whose combined odds land
// within tolerance of target, ranked by composite slip score. The input props
// are borrowed read-only.
func (b *Builder) Build(props []*model.ValuedProp, target decimal.Decimal, opts Options) []model.BetSlip {
	eligible := b.filterEligible(props, opts)
	if len(eligible) == 0 {
		return nil
	}

	var legCounts []int
	if opts.Legs > 0 {
		legCounts = []int{opts.Legs}
	} else {
		legCounts = b.estimateLegCounts(eligible, target)
	}

	var all []scoredSlip
	for _, n := range legCounts {
		if n < b.cfg.Slips.MinLegs || n > b.cfg.Slips.MaxLegs {
			continue
		}
		all = append(all, b.searchCombinations(eligible, target, n)...)
	}

	// Deduplicate by leg identity set, keeping the higher-scoring slip.
	sort.SliceStable(all, func(i, j int) bool { return all[i].score > all[j].score })
	seen := make(map[string]bool)
	var out []model.BetSlip
	for _, s := range all {
		key := identityKey(&s.slip)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, s.slip)
		if len(out) >= b.cfg.Slips.MaxSlipsReturned {
			break
		}
	}
	return out
}

func (b *Builder) filterEligible(props []*model.ValuedProp, opts Options) []*model.ValuedProp {
	threshold := b.cfg.Slips.MinValueScore
	if opts.MinScore > 0 {
		threshold = opts.MinScore
	}

	var eligible []*model.ValuedProp
	for _, vp := range props {
		if opts.Bookmaker != "" {
			if strings.EqualFold(opts.Bookmaker, b.cfg.Providers.PreferredBookmaker) {
				if !vp.Prop.Preferred {
					continue
				}
			} else if !strings.EqualFold(vp.Prop.Bookmaker, opts.Bookmaker) {
				continue
			}
		}
		if vp.ValueScore >= threshold {
			eligible = append(eligible, vp)
		}
	}

	sort.SliceStable(eligible, func(i, j int) bool { return eligible[i].ValueScore > eligible[j].ValueScore })

	// The pool cap bounds the C(pool, legs) search.
	if len(eligible) > b.cfg.Slips.MaxPropsInSearch {
		eligible = eligible[:b.cfg.Slips.MaxPropsInSearch]
	}
	return eligible
}

// estimateLegCounts guesses how many legs reach the target from the pool's
// average odds, then searches the estimate and its immediate neighbours.
func (b *Builder) estimateLegCounts(eligible []*model.ValuedProp, target decimal.Decimal) []int {
	sum := 0.0
	for _, vp := range eligible {
		sum += vp.Prop.Odds(vp.Side).InexactFloat64()
	}
	avg := sum / float64(len(eligible))

	est := 3
	targetF := target.InexactFloat64()
	if avg > 1.0 && targetF > 1.0 {
		est = int(math.Round(math.Log(targetF) / math.Log(avg)))
	}
	if est < b.cfg.Slips.MinLegs {
		est = b.cfg.Slips.MinLegs
	}
	if est > b.cfg.Slips.MaxLegs {
		est = b.cfg.Slips.MaxLegs
	}

	counts := map[int]bool{est: true}
	if est-1 >= b.cfg.Slips.MinLegs {
		counts[est-1] = true
	}
	if est+1 <= b.cfg.Slips.MaxLegs {
		counts[est+1] = true
	}
	var out []int
	for n := range counts {
		out = append(out, n)
	}
	sort.Ints(out)
	return out
}

type scoredSlip struct {
	score float64
	slip  model.BetSlip
}

// searchCombinations enumerates all n-sized combinations of the eligible
// pool, applies the structural constraints and the odds tolerance band, and
// scores the survivors.
func (b *Builder) searchCombinations(eligible []*model.ValuedProp, target decimal.Decimal, n int) []scoredSlip {
	var results []scoredSlip
	tolerance := b.cfg.Slips.OddsTolerance
	targetF := target.InexactFloat64()

	combo := make([]*model.ValuedProp, 0, n)
	var walk func(start int)
	walk = func(start int) {
		if len(combo) == n {
			if !b.validCombo(combo) {
				return
			}
			combined := decimal.NewFromInt(1)
			for _, vp := range combo {
				combined = combined.Mul(vp.Prop.Odds(vp.Side))
			}
			proximity := math.Abs(combined.InexactFloat64()-targetF) / targetF
			if proximity > tolerance {
				return
			}
			slip := b.makeSlip(combo, combined, target)
			slip.Score = math.Round(b.scoreSlip(&slip, proximity)*1000) / 1000
			results = append(results, scoredSlip{score: slip.Score, slip: slip})
			return
		}
		for i := start; i <= len(eligible)-(n-len(combo)); i++ {
			combo = append(combo, eligible[i])
			walk(i + 1)
			combo = combo[:len(combo)-1]
		}
	}
	walk(0)

	sort.SliceStable(results, func(i, j int) bool { return results[i].score > results[j].score })
	if limit := b.cfg.Slips.MaxSlipsReturned * 2; len(results) > limit {
		results = results[:limit]
	}
	return results
}

// validCombo enforces the structural constraints: at most two legs per
// player, no duplicate or over+under legs on the same (player, market), and
// no combined market alongside one of its component markets for the same
// player.
func (b *Builder) validCombo(combo []*model.ValuedProp) bool {
	playerCounts := make(map[string]int)
	sides := make(map[model.LegKey]bool)

	for _, vp := range combo {
		name := vp.Prop.PlayerName
		playerCounts[name]++
		if playerCounts[name] > 2 {
			return false
		}

		otherSide := model.SideOver
		if vp.Side == model.SideOver {
			otherSide = model.SideUnder
		}
		if sides[model.LegKey{Player: name, Market: vp.Prop.Market, Side: otherSide}] {
			return false
		}
		key := model.LegKey{Player: name, Market: vp.Prop.Market, Side: vp.Side}
		if sides[key] {
			// Same line from two books is still one bet.
			return false
		}
		sides[key] = true
	}

	// Combined vs component markets per player.
	playerMarkets := make(map[string][]model.Market)
	for _, vp := range combo {
		playerMarkets[vp.Prop.PlayerName] = append(playerMarkets[vp.Prop.PlayerName], vp.Prop.Market)
	}
	for _, markets := range playerMarkets {
		for i := 0; i < len(markets); i++ {
			for j := i + 1; j < len(markets); j++ {
				if markets[i] != markets[j] && markets[i].Overlaps(markets[j]) {
					return false
				}
			}
		}
	}
	return true
}

func (b *Builder) makeSlip(combo []*model.ValuedProp, combined, target decimal.Decimal) model.BetSlip {
	legs := make([]model.BetLeg, len(combo))
	totalScore := 0.0
	for i, vp := range combo {
		legs[i] = model.BetLeg{Prop: vp, Side: vp.Side, Odds: vp.Prop.Odds(vp.Side)}
		totalScore += vp.ValueScore
	}

	slip := model.BetSlip{
		Legs:         legs,
		CombinedOdds: combined.Round(3),
		TargetOdds:   target,
		TotalValue:   math.Round(totalScore/float64(len(combo))*10) / 10,
		Correlated:   hasCorrelatedLegs(legs),
	}
	slip.Summary = buildSummary(legs, combined)
	return slip
}

// scoreSlip ranks a candidate: average leg value (50%), odds proximity (30%),
// leg independence (20%, penalised when legs share a game).
func (b *Builder) scoreSlip(slip *model.BetSlip, proximity float64) float64 {
	avgValue := slip.TotalValue / 100

	proximityScore := math.Max(0.0, 1.0-proximity/b.cfg.Slips.OddsTolerance)

	independence := 1.0
	if slip.Correlated {
		independence = 0.8
	}

	return avgValue*0.5 + proximityScore*0.3 + independence*0.2
}

func hasCorrelatedLegs(legs []model.BetLeg) bool {
	games := make(map[string]bool)
	for _, leg := range legs {
		id := leg.Prop.Prop.Game.GameID
		if games[id] {
			return true
		}
		games[id] = true
	}
	return false
}

func identityKey(slip *model.BetSlip) string {
	keys := make([]string, 0, len(slip.Legs))
	for k := range slip.IdentitySet() {
		keys = append(keys, fmt.Sprintf("%s|%s|%s", k.Player, k.Market, k.Side))
	}
	sort.Strings(keys)
	return strings.Join(keys, "&")
}

func buildSummary(legs []model.BetLeg, combined decimal.Decimal) string {
	parts := make([]string, len(legs))
	for i, leg := range legs {
		p := leg.Prop.Prop
		bookie := "[" + p.Bookmaker + "]"
		if p.Preferred {
			bookie = "[PP]"
		}
		parts[i] = fmt.Sprintf("%s %s %g %s @%s %s",
			p.PlayerName, strings.ToUpper(string(leg.Side)), p.Line, p.Market.Label(),
			leg.Odds.StringFixed(2), bookie)
	}
	return strings.Join(parts, " | ") + " → " + combined.StringFixed(2)
}
