package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"PropScout/internal/config"
	"PropScout/internal/notifier"
	"PropScout/internal/refresh"
	"PropScout/internal/results"
	"PropScout/internal/slips"

	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"
)

// Scheduler manages all cron tasks.
type Scheduler struct {
	Cron     *cron.Cron
	Pipeline *refresh.Pipeline
	Builder  *slips.Builder
	Checker  *results.Checker
	Notifier *notifier.Telegram
	Ctx      context.Context

	cfg *config.Config
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, cfg *config.Config, p *refresh.Pipeline, b *slips.Builder, c *results.Checker, tn *notifier.Telegram) *Scheduler {
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds()),
		Pipeline: p,
		Builder:  b,
		Checker:  c,
		Notifier: tn,
		Ctx:      ctx,
		cfg:      cfg,
	}
}

// RegisterAll registers the nightly refresh and the morning results check.
func (s *Scheduler) RegisterAll(refreshCron, resultsCron string) error {
	if _, err := s.Cron.AddFunc(refreshCron, s.refreshTask); err != nil {
		return fmt.Errorf("register refresh task: %w", err)
	}
	if _, err := s.Cron.AddFunc(resultsCron, s.resultsTask); err != nil {
		return fmt.Errorf("register results task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	s.Cron.Stop()
	log.Println("[INFO] scheduler stopped")
}

// RunRefreshNow executes the refresh task immediately (for manual trigger / RUN_ON_START).
func (s *Scheduler) RunRefreshNow() {
	s.refreshTask()
}

func (s *Scheduler) refreshTask() {
	log.Println("[INFO] running nightly refresh")
	if !s.Pipeline.Run(s.cfg.Season) {
		log.Println("[WARN] refresh already in progress, skipping scheduled run")
		return
	}

	state := s.Pipeline.State()
	switch state.Status {
	case refresh.StatusNoGames:
		return
	case refresh.StatusNoProps:
		s.trySend("🏀 Games tonight, but no player props on the board yet.")
		return
	case refresh.StatusError:
		s.trySend(fmt.Sprintf("❌ Nightly refresh failed: %s", state.Error))
		return
	}

	snap := s.Pipeline.Snapshot()
	if snap == nil {
		return
	}

	built := s.Builder.Build(snap.Props, decimal.NewFromFloat(5.0), slips.Options{})
	s.trySend(notifier.FormatRefreshReport(snap, built))
}

func (s *Scheduler) resultsTask() {
	date := time.Now().UTC().AddDate(0, 0, -1).Format("2006-01-02")
	log.Printf("[INFO] running results check for %s", date)

	sum, err := s.Checker.CheckDate(date)
	if err != nil {
		log.Printf("[ERROR] results check: %v", err)
		return
	}
	if sum.Checked == 0 {
		return
	}
	s.trySend(notifier.FormatResultsSummary(date, sum))
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(command string) string {
	switch command {
	case "/refresh":
		if !s.Pipeline.Start(s.cfg.Season) {
			return "A refresh is already running."
		}
		return "Refresh started. /status for progress."
	case "/status":
		state := s.Pipeline.State()
		if state.Status == refresh.StatusIdle {
			return "No refresh has run yet."
		}
		reply := fmt.Sprintf("Status: %s\nProps: %d/%d graded", state.Status, state.PropsGraded, state.PropsTotal)
		if state.Error != "" {
			reply += "\nError: " + state.Error
		}
		return reply
	case "/props":
		snap := s.Pipeline.Snapshot()
		if snap == nil {
			return "No graded props yet. /refresh to run the pipeline."
		}
		return notifier.FormatTopProps(snap.Props, 10)
	case "/slips":
		snap := s.Pipeline.Snapshot()
		if snap == nil {
			return "No graded props yet. /refresh to run the pipeline."
		}
		built := s.Builder.Build(snap.Props, decimal.NewFromFloat(5.0), slips.Options{})
		if len(built) == 0 {
			return "No slips hit the target odds tonight."
		}
		return notifier.FormatRefreshReport(snap, built)
	default:
		return "Commands:\n• /status\n• /props\n• /slips\n• /refresh"
	}
}

func (s *Scheduler) trySend(text string) {
	if !s.Notifier.Enabled() {
		return
	}
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		log.Printf("[ERROR] send notification: %v", err)
	}
}
