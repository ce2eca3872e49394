// Package main runs the queue worker: it long-polls SQS for upload
// notifications and hands each file key to the meal processor.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/brenowss/foodiary/internal/analysis/openai"
	"github.com/brenowss/foodiary/internal/config"
	"github.com/brenowss/foodiary/internal/db"
	"github.com/brenowss/foodiary/internal/logger"
	"github.com/brenowss/foodiary/internal/processor"
	"github.com/brenowss/foodiary/internal/queue"
	"github.com/brenowss/foodiary/internal/repository/sqlstore"
	"github.com/brenowss/foodiary/internal/storage"
)

func main() {
	if err := run(); err != nil {
		slog.Error("worker exited", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.RequireAnalysis(); err != nil {
		return err
	}

	log := logger.New(cfg.IsDevelopment(), cfg.SentryDSN)

	// In-flight messages run on a context that signals do not cancel.
	ctx := context.Background()

	conn, err := db.Open(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return err
	}
	defer db.Close(conn)

	blobs, err := storage.New(ctx, cfg, log)
	if err != nil {
		return err
	}
	sqsClient, err := queue.New(ctx, cfg, log)
	if err != nil {
		return err
	}
	analyzer, err := openai.New(openai.FromAppConfig(cfg), log)
	if err != nil {
		return err
	}

	proc := processor.New(sqlstore.NewMealStore(conn), blobs, analyzer, log)

	poolCfg := queue.DefaultPoolConfig()
	poolCfg.Concurrency = cfg.WorkerConcurrency
	poolCfg.WaitTime = cfg.WorkerWaitTime

	pool := queue.NewPool(sqsClient, queue.FileKeyHandler(proc.ProcessQueuedFile, log), poolCfg, log)
	pool.Start(ctx)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info("shutdown signal received", slog.String("signal", sig.String()))

	pool.Stop()
	log.Info("worker stopped gracefully")
	return nil
}
