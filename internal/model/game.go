package model

// Side is the direction of a prop bet.
type Side string

const (
	SideOver  Side = "over"
	SideUnder Side = "under"
)

// NBAGame identifies one scheduled game.
type NBAGame struct {
	GameID      string
	HomeTeam    string // abbreviation, e.g. "BOS"
	AwayTeam    string
	HomeTeamID  int
	AwayTeamID  int
	GameDate    string // "YYYY-MM-DD"
	GameTimeUTC string // ISO UTC string
	OddsEventID string // odds provider event ID, may be empty
}

// GameContext holds the resolved facts about tonight's matchup for one
// player. Computed once per grading pass, read-only afterward.
type GameContext struct {
	PlayerTeam   string // current team abbreviation
	Opponent     string
	TonightHome  bool
	TonightB2B   bool
	Side         Side
	Season       string
}
