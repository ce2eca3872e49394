// Package main is the AWS Lambda function triggered by S3 ObjectCreated
// events. It enqueues one upload notification per object.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/brenowss/foodiary/internal/config"
	"github.com/brenowss/foodiary/internal/logger"
	"github.com/brenowss/foodiary/internal/notifier"
	"github.com/brenowss/foodiary/internal/queue"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("loading config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	log := logger.New(cfg.IsDevelopment(), cfg.SentryDSN)

	sqsClient, err := queue.New(context.Background(), cfg, log)
	if err != nil {
		log.Error("creating queue client", slog.String("error", err.Error()))
		os.Exit(1)
	}

	lambda.Start(notifier.New(sqsClient, log).HandleS3Event)
}
