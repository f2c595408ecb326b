// Package refresh runs the full fetch-and-grade pipeline and publishes an
// immutable snapshot of graded props for the HTTP API and the slip builder.
package refresh

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"PropScout/internal/config"
	"PropScout/internal/model"
	"PropScout/internal/provider/oddsapi"
	"PropScout/internal/store"
)

// Pipeline run statuses.
const (
	StatusIdle     = "idle"
	StatusRunning  = "running"
	StatusDone     = "done"
	StatusNoGames  = "no_games"
	StatusNoProps  = "no_props"
	StatusError    = "error"
)

// ScheduleProvider supplies tonight's games.
type ScheduleProvider interface {
	TodaysGames() []model.NBAGame
	PlayerIDs(season string) map[string]int
}

// InjuryProvider supplies the league injury report.
type InjuryProvider interface {
	InjuryReport() []model.InjuryReport
}

// OddsProvider supplies events and player props.
type OddsProvider interface {
	Events() []oddsapi.Event
	PlayerProps(eventID string, game *model.NBAGame, playerIDs map[string]int) []model.PlayerProp
}

// Grader grades a single (prop, side) pair. A nil result is an abandonment.
type Grader interface {
	Grade(prop model.PlayerProp, side model.Side, injuries []model.InjuryReport, season string) *model.ValuedProp
}

// State is a point-in-time view of the pipeline run machine.
type State struct {
	RunID       string    `json:"run_id"`
	Running     bool      `json:"running"`
	Status      string    `json:"status"`
	StartedAt   time.Time `json:"started_at"`
	FinishedAt  time.Time `json:"finished_at"`
	PropsTotal  int       `json:"props_total"`
	PropsGraded int       `json:"props_graded"`
	Error       string    `json:"error,omitempty"`
}

// Snapshot is one refresh's output. Immutable once published; readers share
// the slice without copying.
type Snapshot struct {
	RunID    string
	Season   string
	GameDate string
	Games    []model.NBAGame
	Props    []*model.ValuedProp
	StoreID  int64
}

// Pipeline coordinates one refresh at a time.
type Pipeline struct {
	cfg      *config.Config
	schedule ScheduleProvider
	injuries InjuryProvider
	odds     OddsProvider
	grader   Grader
	db       store.Store

	mu       sync.Mutex
	state    State
	snapshot *Snapshot
}

// New creates a Pipeline.
func New(cfg *config.Config, schedule ScheduleProvider, injuries InjuryProvider, odds OddsProvider, grader Grader, db store.Store) *Pipeline {
	return &Pipeline{
		cfg:      cfg,
		schedule: schedule,
		injuries: injuries,
		odds:     odds,
		grader:   grader,
		db:       db,
		state:    State{Status: StatusIdle},
	}
}

// State returns the current run state.
func (p *Pipeline) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Snapshot returns the latest published snapshot, or nil before the first
// successful refresh.
func (p *Pipeline) Snapshot() *Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshot
}

// Start launches a refresh in the background. Returns false when a run is
// already in progress.
func (p *Pipeline) Start(season string) bool {
	p.mu.Lock()
	if p.state.Running {
		p.mu.Unlock()
		return false
	}
	runID := uuid.NewString()
	p.state = State{
		RunID:     runID,
		Running:   true,
		Status:    StatusRunning,
		StartedAt: time.Now().UTC(),
	}
	p.mu.Unlock()

	go p.run(runID, season)
	return true
}

// Run executes a refresh synchronously. Returns false when a run is already
// in progress.
func (p *Pipeline) Run(season string) bool {
	p.mu.Lock()
	if p.state.Running {
		p.mu.Unlock()
		return false
	}
	runID := uuid.NewString()
	p.state = State{
		RunID:     runID,
		Running:   true,
		Status:    StatusRunning,
		StartedAt: time.Now().UTC(),
	}
	p.mu.Unlock()

	p.run(runID, season)
	return true
}

func (p *Pipeline) finish(status, errMsg string) {
	p.mu.Lock()
	p.state.Running = false
	p.state.Status = status
	p.state.Error = errMsg
	p.state.FinishedAt = time.Now().UTC()
	p.mu.Unlock()
}

func (p *Pipeline) run(runID, season string) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[ERROR] refresh %s panicked: %v", runID, r)
			p.finish(StatusError, fmt.Sprint(r))
		}
	}()

	log.Printf("[INFO] refresh %s started (season %s)", runID, season)

	games := p.schedule.TodaysGames()
	if len(games) == 0 {
		log.Printf("[INFO] refresh %s: no games tonight", runID)
		p.finish(StatusNoGames, "")
		return
	}

	injuries := p.injuries.InjuryReport()
	playerIDs := p.schedule.PlayerIDs(season)

	events := p.odds.Events()
	for i := range games {
		games[i].OddsEventID = oddsapi.MatchEvent(&games[i], events)
	}

	var props []model.PlayerProp
	for i := range games {
		if games[i].OddsEventID == "" {
			log.Printf("[WARN] refresh %s: no odds event for %s @ %s", runID, games[i].AwayTeam, games[i].HomeTeam)
			continue
		}
		props = append(props, p.odds.PlayerProps(games[i].OddsEventID, &games[i], playerIDs)...)
	}

	p.mu.Lock()
	p.state.PropsTotal = len(props)
	p.mu.Unlock()

	if len(props) == 0 {
		log.Printf("[INFO] refresh %s: no props offered", runID)
		p.finish(StatusNoProps, "")
		return
	}

	one := decimal.NewFromInt(1)
	var graded []*model.ValuedProp
	for _, prop := range props {
		if vp := p.grader.Grade(prop, model.SideOver, injuries, season); vp != nil {
			graded = append(graded, vp)
		}
		if prop.UnderOdds.GreaterThan(one) {
			if vp := p.grader.Grade(prop, model.SideUnder, injuries, season); vp != nil {
				graded = append(graded, vp)
			}
		}
		p.mu.Lock()
		p.state.PropsGraded = len(graded)
		p.mu.Unlock()
	}

	eligible := 0
	for _, vp := range graded {
		if vp.ValueScore >= p.cfg.Slips.MinValueScore {
			eligible++
		}
	}

	storeID, err := p.db.SaveRun(season, len(games), len(props), len(graded), eligible)
	if err != nil {
		log.Printf("[WARN] refresh %s: save run: %v", runID, err)
	}

	p.mu.Lock()
	p.snapshot = &Snapshot{
		RunID:    runID,
		Season:   season,
		GameDate: games[0].GameDate,
		Games:    games,
		Props:    graded,
		StoreID:  storeID,
	}
	p.mu.Unlock()

	log.Printf("[INFO] refresh %s done: %d games, %d props, %d graded, %d eligible",
		runID, len(games), len(props), len(graded), eligible)
	p.finish(StatusDone, "")
}
