package model

// TeamH2H is a team's head-to-head record against one opponent.
type TeamH2H struct {
	Wins      int
	Losses    int
	AvgMargin float64
	Games     int
}

// TeamForm is a team's recent schedule situation.
type TeamForm struct {
	Wins         int
	Losses       int
	Streak       string // "W3", "L2", "N/A"
	BackToBack   bool
	RestDays     int
	GamesInLast4 int
}

// PaceRank is a team's pace and its league rank (1 = fastest).
type PaceRank struct {
	Pace  float64
	Rank  int
	Valid bool
}
