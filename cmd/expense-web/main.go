// Command expense-web serves the dashboard JSON surface over a remote
// expense collection.
package main

import (
	"context"
	"os"
	"time"

	"expensetracker/internal/cli"
	apphttp "expensetracker/internal/http"
	"expensetracker/internal/log"
	"expensetracker/internal/remote"
	"expensetracker/internal/services"
)

const shutdownTimeout = 30 * time.Second

func main() {
	if err := cli.LoadEnvFile(); err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
	}
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	if err := run(logger); err != nil {
		logger.Error("expense-web stopped with error", log.FieldError, err.Error())
		os.Exit(1)
	}
}

func run(logger *log.Logger) error {
	cfg, err := cli.LoadAndValidateConfig(logger)
	if err != nil {
		return err
	}

	ctx, stop := cli.SignalContext(context.Background())
	defer stop()

	client, err := remote.New(cfg.ExpensesAPIURL, cfg.APITimeout, remote.WithLogger(logger))
	if err != nil {
		return err
	}
	store := services.NewRecordStore(client, logger)

	// initial load; the dashboard still starts when the collection is down
	if records, err := store.Refresh(ctx); err != nil {
		logger.Warn("Initial refresh failed, starting with an empty collection", log.FieldError, err.Error())
	} else {
		logger.Info("Loaded expenses", log.FieldRecordCount, len(records))
	}

	addr := ":" + cfg.WebPort
	srv, err := apphttp.NewWebServer(addr, store, apphttp.Options{
		RequestsPerMinute: cfg.RateLimitPerMinute,
		Logger:            logger,
		Ready: func(ctx context.Context) error {
			_, err := client.List(ctx)
			return err
		},
	})
	if err != nil {
		return err
	}

	logger.Info("Expense dashboard configured",
		"expenses_api_url", cfg.ExpensesAPIURL,
		log.FieldOperation, log.OpStartup)
	return cli.Serve(ctx, logger, shutdownTimeout, "expense-web", addr, srv)
}
