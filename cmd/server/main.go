package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/takei-shg/word-anki/internal/api"
	"github.com/takei-shg/word-anki/internal/backend"
	"github.com/takei-shg/word-anki/internal/config"
	"github.com/takei-shg/word-anki/internal/db"
	"github.com/takei-shg/word-anki/internal/jobs"
	"github.com/takei-shg/word-anki/internal/logger"
	"github.com/takei-shg/word-anki/internal/repository/sqlite"
	"github.com/takei-shg/word-anki/internal/scheduler"
	"github.com/takei-shg/word-anki/internal/services"
	"github.com/takei-shg/word-anki/internal/session"
	"github.com/takei-shg/word-anki/internal/syncq"
	"github.com/takei-shg/word-anki/internal/worker"
)

func main() {
	cfg := config.Load()

	log := logger.New(
		logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
		logger.WithColors(true),
	)
	logger.SetDefault(log)

	log.Info("word-anki engine starting")
	log.Debug("addr=%s", cfg.Addr)
	log.Debug("db_path=%s", cfg.DBPath)
	log.Debug("backend_url=%s", cfg.BackendURL)
	log.Debug("max_sync_retries=%d", cfg.MaxSyncRetries)
	log.Debug("cleanup_retention_days=%d", cfg.CleanupRetentionDays)
	log.Debug("drain_interval_minutes=%d", cfg.DrainIntervalMinutes)

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Error("failed to open database: %v", err)
		os.Exit(1)
	}
	defer func() {
		log.Debug("closing database connection")
		database.Close()
	}()

	// Repositories
	recordRepo := sqlite.NewLearningRecordRepository(database.DB)
	syncOpRepo := sqlite.NewSyncOperationRepository(database.DB)
	wordRepo := sqlite.NewWordTestRepository(database.DB)
	sourceRepo := sqlite.NewTextSourceRepository(database.DB)

	// Remote backend client
	client := backend.New(cfg.BackendURL)

	// Sync queue and services
	queue := syncq.New(syncOpRepo, recordRepo, sourceRepo, client, cfg.MaxSyncRetries)
	progressService := services.NewProgressService(recordRepo, queue)
	statsService := services.NewStatsService(wordRepo, recordRepo)
	sourceService := services.NewSourceService(sourceRepo, wordRepo, recordRepo, queue, client)
	engine := session.NewEngine(progressService)

	// Background workers and schedule
	pool := worker.NewPool(cfg.SyncWorkerCount, cfg.SyncQueueSize)
	jobQueue := jobs.NewWorkerQueue(pool, queue, cfg.CleanupRetentionDays)
	sched := scheduler.New(jobQueue, time.Duration(cfg.DrainIntervalMinutes)*time.Minute)

	srv := &api.Server{
		SourceService:   sourceService,
		ProgressService: progressService,
		StatsService:    statsService,
		Session:         engine,
		Queue:           queue,
		Jobs:            jobQueue,
		SessionShuffle:  cfg.SessionShuffle,
	}

	ctx, cancel := context.WithCancel(context.Background())
	pool.Start(ctx)
	sched.Start()

	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      srv.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("HTTP server listening on %s", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error: %v", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	sig := <-stop

	log.Info("received signal %v, initiating graceful shutdown", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	log.Debug("stopping scheduler")
	sched.Stop()

	log.Debug("shutting down HTTP server")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error: %v", err)
	}

	// An interrupted drain is safe: unprocessed entries stay pending and are
	// retried on the next drain.
	log.Debug("stopping worker pool")
	cancel()
	pool.Stop()

	log.Info("word-anki engine stopped")
}
