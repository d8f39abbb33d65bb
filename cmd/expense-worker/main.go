// Command expense-worker consumes expense change events and mirrors each one
// as a spreadsheet row, or into the log when no spreadsheet is configured.
package main

import (
	"context"
	"errors"
	"os"
	"time"

	"expensetracker/internal/amqp"
	"expensetracker/internal/cli"
	"expensetracker/internal/config"
	"expensetracker/internal/log"
	"expensetracker/internal/sheets"
	"expensetracker/internal/sheets/google"
	"expensetracker/internal/worker"

	"golang.org/x/sync/errgroup"
)

const statsInterval = 5 * time.Minute

func main() {
	if err := cli.LoadEnvFile(); err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
	}
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	if err := run(logger); err != nil {
		logger.Error("expense-worker stopped with error", log.FieldError, err.Error())
		os.Exit(1)
	}
}

func run(logger *log.Logger) error {
	cfg, err := cli.LoadAndValidateConfig(logger)
	if err != nil {
		return err
	}
	if cfg.AMQPURL == "" {
		return errors.New("AMQP_URL is required for the worker")
	}

	ctx, stop := cli.SignalContext(context.Background())
	defer stop()

	mirror, err := newMirror(ctx, cfg, logger)
	if err != nil {
		return err
	}

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
	if err != nil {
		return err
	}
	defer client.Close()

	w := worker.NewEventWorker(mirror, logger)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return w.Run(gctx, client)
	})
	g.Go(func() error {
		ticker := time.NewTicker(statsInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				st := w.Stats()
				logger.Info("Worker stats", "mirrored", st.Mirrored, "failed", st.Failed)
			}
		}
	})

	logger.Info("Expense worker started",
		"queue", cfg.AMQPQueue,
		"spreadsheet", cfg.GoogleSpreadsheetID != "",
		log.FieldOperation, log.OpStartup)
	return g.Wait()
}

func newMirror(ctx context.Context, cfg *config.Config, logger *log.Logger) (sheets.EventMirror, error) {
	if cfg.GoogleSpreadsheetID == "" {
		logger.Info("No spreadsheet configured, mirroring events to the log")
		return sheets.NewLogMirror(logger), nil
	}
	client, err := google.NewFromOptions(ctx, google.Options{
		SpreadsheetID:      cfg.GoogleSpreadsheetID,
		SheetName:          cfg.GoogleSheetName,
		ServiceAccountFile: cfg.GoogleServiceAccountFile,
		ServiceAccountJSON: cfg.GoogleServiceAccountJSON,
	}, logger)
	if err != nil {
		return nil, err
	}
	return client, nil
}
