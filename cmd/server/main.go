// Package main is the entry point for the HTTP API.
//
// It loads configuration, builds every dependency once and hands the wired
// handlers to internal/server. All logic lives in internal packages.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/brenowss/foodiary/internal/analysis/openai"
	"github.com/brenowss/foodiary/internal/auth"
	"github.com/brenowss/foodiary/internal/config"
	"github.com/brenowss/foodiary/internal/db"
	"github.com/brenowss/foodiary/internal/handler"
	"github.com/brenowss/foodiary/internal/logger"
	"github.com/brenowss/foodiary/internal/notifier"
	"github.com/brenowss/foodiary/internal/processor"
	"github.com/brenowss/foodiary/internal/queue"
	"github.com/brenowss/foodiary/internal/repository/sqlstore"
	"github.com/brenowss/foodiary/internal/server"
	"github.com/brenowss/foodiary/internal/service"
	"github.com/brenowss/foodiary/internal/storage"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := errors.Join(cfg.RequireAuth(), cfg.RequireAnalysis()); err != nil {
		return err
	}

	log := logger.New(cfg.IsDevelopment(), cfg.SentryDSN)
	ctx := context.Background()

	conn, err := db.Open(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return err
	}

	blobs, err := storage.New(ctx, cfg, log)
	if err != nil {
		db.Close(conn)
		return err
	}
	if cfg.IsDevelopment() {
		if err := blobs.EnsureBucket(ctx); err != nil {
			log.Warn("could not ensure bucket", slog.String("error", err.Error()))
		}
	}

	sqsClient, err := queue.New(ctx, cfg, log)
	if err != nil {
		db.Close(conn)
		return err
	}

	analyzer, err := openai.New(openai.FromAppConfig(cfg), log)
	if err != nil {
		db.Close(conn)
		return err
	}

	tokens, err := auth.NewTokenService(cfg.JWTSecret, cfg.JWTExpiry)
	if err != nil {
		db.Close(conn)
		return err
	}
	passwords := auth.NewPasswordService()

	users := sqlstore.NewUserStore(conn)
	meals := sqlstore.NewMealStore(conn)
	proc := processor.New(meals, blobs, analyzer, log)

	authService := service.NewAuthService(users, tokens, passwords, log)
	mealService := service.NewMealService(meals, users, blobs, proc, log)

	handlers := server.Handlers{
		Auth:   handler.NewAuthHandler(authService, log),
		Meals:  handler.NewMealHandler(mealService, log),
		Events: handler.NewEventHandler(notifier.New(sqsClient, log), cfg.EventsWebhookSecret, log),
	}

	srv := server.New(server.Config{Port: cfg.Port}, handlers, tokens, log)
	srv.OnClose(func() error { return db.Close(conn) })

	return srv.Start()
}
