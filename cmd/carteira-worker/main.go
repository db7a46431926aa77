package main

import (
	"context"
	"os"
	"time"

	"carteira/internal/amqp"
	"carteira/internal/cli"
	"carteira/internal/log"
	"carteira/internal/services"
	gsheet "carteira/internal/sheets/google"
	"carteira/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	cfg, logger := cli.LoadAndValidateWorkerConfig()

	writer, err := gsheet.New(context.Background(), gsheet.Config{
		SpreadsheetID:   cfg.GoogleSpreadsheetID,
		SheetName:       cfg.GoogleSheetName,
		CredentialsJSON: cfg.GoogleServiceAccountJSON,
		CredentialsFile: cfg.GoogleServiceAccountFile,
	})
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", log.FieldError, err.Error())
		os.Exit(1)
	}

	consumer, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
	if err != nil {
		logger.Error("Failed to connect to AMQP", log.FieldError, err.Error(), "queue", cfg.AMQPQueue)
		os.Exit(1)
	}

	w := worker.NewMirrorWorker(consumer, services.NewMirror(writer, logger), worker.Config{
		Concurrency: cfg.MirrorConcurrency,
		RetryDelay:  cfg.MirrorRetryDelay,
	}, logger)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(context.Context) {
		if err := consumer.Close(); err != nil {
			logger.Warn("Closing AMQP client failed", log.FieldError, err.Error())
		}
	})

	logger.Info("Starting carteira mirror worker",
		"spreadsheet", cfg.GoogleSpreadsheetID,
		"sheet", cfg.GoogleSheetName,
		"queue", cfg.AMQPQueue,
		"lanes", cfg.MirrorConcurrency)
	if err := w.Run(ctx); err != nil {
		logger.Error("Mirror worker failed", log.FieldError, err.Error())
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker stopped gracefully")
}
