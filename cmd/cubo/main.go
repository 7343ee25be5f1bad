package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"cubo/internal/config"
	"cubo/internal/db"
	"cubo/internal/generate"
	httpx "cubo/internal/http"
	"cubo/internal/jobs"
	"cubo/internal/notify"
	"cubo/internal/phrase"
	"cubo/internal/presence"
	"cubo/internal/schedule"
)

func main() {
	cfg, _ := config.Load()

	zcfg := zap.NewProductionConfig()
	if cfg.Debug {
		zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	logger, err := zcfg.Build()
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logger.Sync() }()

	gdb, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("db connect failed", zap.Error(err))
	}
	if err := db.AutoMigrateAndIndexes(gdb); err != nil {
		logger.Fatal("db migrate failed", zap.Error(err))
	}

	sink := notify.FromConfig(cfg.TelegramToken, cfg.TelegramChatID, logger)

	store := &phrase.Store{DB: gdb}
	picker := &phrase.Picker{Store: store, Log: logger}
	rules := schedule.DefaultRules(cfg.AnniversaryEpoch)
	scheduler := &schedule.Scheduler{Store: store, DB: gdb, Rules: rules, Log: logger}
	lamp := &presence.Controller{DB: gdb, Log: logger, Notify: sink}

	model, err := generate.NewGeminiModel(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		logger.Fatal("gemini client failed", zap.Error(err))
	}
	runner := &generate.Runner{
		Store:           store,
		Model:           model,
		Notify:          sink,
		Log:             logger,
		Rules:           rules,
		Weeks:           cfg.GenerateWeeks,
		Cooldown:        cfg.GenerateCooldown,
		ErrorCooldown:   cfg.ErrorCooldown,
		DedupLimit:      cfg.DedupLimit,
		PromptExclusion: cfg.PromptExclusion,
	}

	r := httpx.NewRouter(httpx.Deps{
		Cfg:       cfg,
		DB:        gdb,
		Log:       logger,
		Store:     store,
		Picker:    picker,
		Scheduler: scheduler,
		Lamp:      lamp,
		Runner:    runner,
		Notify:    sink,
	})

	worker := &jobs.RefillWorker{
		Store:     store,
		Runner:    runner,
		Log:       logger,
		Interval:  cfg.RefillInterval,
		Threshold: cfg.RefillThreshold,
	}

	ctx, cancel := context.WithCancel(context.Background())
	go worker.Run(ctx)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	// graceful shutdown
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	<-ch

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = srv.Shutdown(shutdownCtx)
}
