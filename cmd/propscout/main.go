package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"PropScout/internal/cache"
	"PropScout/internal/config"
	"PropScout/internal/grader"
	"PropScout/internal/notifier"
	"PropScout/internal/provider/espn"
	"PropScout/internal/provider/nbastats"
	"PropScout/internal/provider/oddsapi"
	"PropScout/internal/refresh"
	"PropScout/internal/results"
	"PropScout/internal/scheduler"
	"PropScout/internal/server"
	"PropScout/internal/slips"
	"PropScout/internal/store"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] invalid config: %v", err)
	}
	log.Printf("[INFO] config loaded, season %s", cfg.Season)

	fc, err := cache.NewFileCache(cfg.Cache.Dir)
	if err != nil {
		log.Fatalf("[FATAL] init cache: %v", err)
	}
	credits := cache.NewCreditTracker(cfg.Cache.Dir, cfg.Cache.MonthlyCredits)

	stats := nbastats.New(cfg, fc)
	injuries := espn.New(cfg, fc)
	odds := oddsapi.New(cfg, fc, credits)

	var db store.Store
	db, err = store.NewSQLite(cfg.Database.SQLitePath)
	if err != nil {
		log.Printf("[WARN] sqlite unavailable, tracking disabled: %v", err)
		db = store.NewNoop()
	}
	defer db.Close()

	gr := grader.New(cfg, stats, stats, odds)
	pipeline := refresh.New(cfg, stats, injuries, odds, gr, db)
	builder := slips.New(cfg)
	checker := results.New(stats, db)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tn := notifier.NewTelegram(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
	sched := scheduler.NewScheduler(ctx, cfg, pipeline, builder, checker, tn)
	if err := sched.RegisterAll(cfg.Schedule.RefreshCron, cfg.Schedule.ResultsCron); err != nil {
		log.Fatalf("[FATAL] register tasks: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	if tn.Enabled() {
		go tn.StartPolling(ctx, sched.HandleCommand)
	} else {
		log.Println("[INFO] telegram not configured, notifications disabled")
	}

	if os.Getenv("RUN_ON_START") == "true" {
		log.Println("[INFO] RUN_ON_START=true, refreshing now")
		go sched.RunRefreshNow()
	}

	srv := server.New(cfg, pipeline, builder, checker, db, cfg.Season)
	httpSrv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: srv.Handler(),
	}
	go func() {
		log.Printf("[INFO] http server listening on %s", cfg.Server.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("[FATAL] http server: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Println("[INFO] shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[WARN] http shutdown: %v", err)
	}
}
