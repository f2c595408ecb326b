package model

// Market is a closed set of supported prop markets. Each market knows how to
// extract its stat value from a game log row and, for combined markets, which
// component markets it subsumes.
type Market string

const (
	MarketPoints    Market = "player_points"
	MarketAssists   Market = "player_assists"
	MarketRebounds  Market = "player_rebounds"
	MarketThrees    Market = "player_threes"
	MarketBlocks    Market = "player_blocks"
	MarketSteals    Market = "player_steals"
	MarketTurnovers Market = "player_turnovers"
	MarketPtsRebAst Market = "player_points_rebounds_assists"
	MarketPtsReb    Market = "player_points_rebounds"
	MarketPtsAst    Market = "player_points_assists"
	MarketRebAst    Market = "player_rebounds_assists"
)

type marketInfo struct {
	statKey    string
	label      string
	value      func(*GameLogRow) float64
	components []Market
}

var marketTable = map[Market]marketInfo{
	MarketPoints:    {"PTS", "Points", func(r *GameLogRow) float64 { return r.Points }, nil},
	MarketAssists:   {"AST", "Assists", func(r *GameLogRow) float64 { return r.Assists }, nil},
	MarketRebounds:  {"REB", "Rebounds", func(r *GameLogRow) float64 { return r.Rebounds }, nil},
	MarketThrees:    {"FG3M", "3-Pointers Made", func(r *GameLogRow) float64 { return r.ThreesMade }, nil},
	MarketBlocks:    {"BLK", "Blocks", func(r *GameLogRow) float64 { return r.Blocks }, nil},
	MarketSteals:    {"STL", "Steals", func(r *GameLogRow) float64 { return r.Steals }, nil},
	MarketTurnovers: {"TOV", "Turnovers", func(r *GameLogRow) float64 { return r.Turnovers }, nil},
	MarketPtsRebAst: {"PRA", "Pts+Reb+Ast",
		func(r *GameLogRow) float64 { return r.Points + r.Rebounds + r.Assists },
		[]Market{MarketPoints, MarketRebounds, MarketAssists}},
	MarketPtsReb: {"PR", "Pts+Reb",
		func(r *GameLogRow) float64 { return r.Points + r.Rebounds },
		[]Market{MarketPoints, MarketRebounds}},
	MarketPtsAst: {"PA", "Pts+Ast",
		func(r *GameLogRow) float64 { return r.Points + r.Assists },
		[]Market{MarketPoints, MarketAssists}},
	MarketRebAst: {"RA", "Reb+Ast",
		func(r *GameLogRow) float64 { return r.Rebounds + r.Assists },
		[]Market{MarketRebounds, MarketAssists}},
}

// AllMarkets returns every supported market in declaration order.
func AllMarkets() []Market {
	return []Market{
		MarketPoints, MarketAssists, MarketRebounds, MarketThrees,
		MarketBlocks, MarketSteals, MarketTurnovers,
		MarketPtsRebAst, MarketPtsReb, MarketPtsAst, MarketRebAst,
	}
}

// Known reports whether m is a supported market key.
func (m Market) Known() bool {
	_, ok := marketTable[m]
	return ok
}

// StatKey returns the short stat identifier ("PTS", "PRA", ...).
func (m Market) StatKey() string { return marketTable[m].statKey }

// Label returns the display label ("Points", "Pts+Reb+Ast", ...).
func (m Market) Label() string {
	if info, ok := marketTable[m]; ok {
		return info.label
	}
	return string(m)
}

// Value extracts this market's stat from a game log row.
// Combined markets sum their component stats.
func (m Market) Value(r *GameLogRow) float64 {
	if info, ok := marketTable[m]; ok {
		return info.value(r)
	}
	return 0
}

// Components returns the component markets subsumed by a combined market,
// or nil for single-stat markets.
func (m Market) Components() []Market { return marketTable[m].components }

// Overlaps reports whether m and other double-count the same stat for one
// player: identical markets, or one being a component of the other.
func (m Market) Overlaps(other Market) bool {
	if m == other {
		return true
	}
	for _, c := range m.Components() {
		if c == other {
			return true
		}
	}
	for _, c := range other.Components() {
		if c == m {
			return true
		}
	}
	return false
}

// Markets that are not minutes-accumulation stats and so are less sensitive
// to blowouts.
var nonCountingMarkets = map[Market]bool{
	MarketThrees: true,
	MarketBlocks: true,
	MarketSteals: true,
}

// NonCounting reports whether the market is largely insensitive to blowouts.
func (m Market) NonCounting() bool { return nonCountingMarkets[m] }

// ScoringMarket reports whether the market includes points (FGA-driven usage).
func (m Market) ScoringMarket() bool {
	switch m {
	case MarketPoints, MarketPtsReb, MarketPtsAst, MarketPtsRebAst:
		return true
	}
	return false
}

// AssistMarket reports whether the market includes assists.
func (m Market) AssistMarket() bool {
	switch m {
	case MarketAssists, MarketPtsAst, MarketRebAst, MarketPtsRebAst:
		return true
	}
	return false
}
