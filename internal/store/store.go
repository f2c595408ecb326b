// Package store persists grading runs, saved slips, and leg outcomes for
// accuracy tracking and factor calibration over time.
package store

import (
	"time"

	"PropScout/internal/model"
)

// Slip and leg outcome vocabulary.
const (
	OutcomeWin  = "WIN"
	OutcomeLoss = "LOSS"
	OutcomeVoid = "VOID"

	LegHit  = "HIT"
	LegMiss = "MISS"
	LegPush = "PUSH"
)

// RunSummary is one record per refresh execution.
type RunSummary struct {
	ID            int64
	RunAt         time.Time
	Season        string
	GamesCount    int
	PropsTotal    int
	PropsGraded   int
	PropsEligible int
}

// SavedSlip is a persisted slip with its legs nested in.
type SavedSlip struct {
	ID              int64
	RunID           int64
	SavedAt         string
	TargetOdds      float64
	CombinedOdds    float64
	AvgValueScore   float64
	Correlated      bool
	BookmakerFilter string
	Outcome         string // WIN | LOSS | VOID | "" while unresolved
	Stake           float64
	ProfitLoss      float64
	ResultAt        string
	Legs            []SavedLeg
}

// SavedLeg is one leg of a saved slip, with the per-factor scores captured
// at prediction time.
type SavedLeg struct {
	ID           int64
	SlipID       int64
	PlayerName   string
	Market       string
	MarketLabel  string
	Line         float64
	Side         string
	Odds         float64
	Bookmaker    string
	Preferred    bool
	ValueScore   float64
	FactorScores map[string]float64
	Result       string // HIT | MISS | "" while unresolved
}

// MarketStats is the per-market leg hit rate for the analytics view.
type MarketStats struct {
	MarketLabel string
	Total       int
	Hits        int
}

// CalibrationBucket groups resolved legs by consistency-score decile.
type CalibrationBucket struct {
	Bucket int // lower bound of the 10-point score bucket
	Total  int
	Hits   int
}

// Analytics aggregates accuracy statistics over resolved slips.
type Analytics struct {
	TotalSlips  int
	Wins        int
	WinRate     float64
	TotalPnL    float64
	ByMarket    []MarketStats
	Calibration []CalibrationBucket
}

// Store is the persistence interface. All methods are safe for concurrent
// use.
type Store interface {
	SaveRun(season string, gamesCount, propsTotal, propsGraded, propsEligible int) (int64, error)
	LatestRunID() (int64, bool)
	SaveSlip(slip *model.BetSlip, runID int64, bookmakerFilter string) (int64, error)
	History(limit int) ([]SavedSlip, error)
	UnresolvedSlips() ([]SavedSlip, error)
	RecordOutcome(slipID int64, outcome string, stake float64) error
	RecordLegResult(legID int64, result string) error
	GetAnalytics() (*Analytics, error)
	Close() error
}

// Noop is used when no database path is configured.
type Noop struct{}

func NewNoop() *Noop { return &Noop{} }

func (n *Noop) SaveRun(string, int, int, int, int) (int64, error)     { return 0, nil }
func (n *Noop) LatestRunID() (int64, bool)                            { return 0, false }
func (n *Noop) SaveSlip(*model.BetSlip, int64, string) (int64, error) { return 0, nil }
func (n *Noop) History(int) ([]SavedSlip, error)                      { return nil, nil }
func (n *Noop) UnresolvedSlips() ([]SavedSlip, error)                 { return nil, nil }
func (n *Noop) RecordOutcome(int64, string, float64) error            { return nil }
func (n *Noop) RecordLegResult(int64, string) error                   { return nil }
func (n *Noop) GetAnalytics() (*Analytics, error)                     { return &Analytics{}, nil }
func (n *Noop) Close() error                                          { return nil }
