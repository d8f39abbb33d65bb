// Command expense-api serves the expense collection over REST and publishes
// change events when AMQP is configured.
package main

import (
	"context"
	"os"
	"time"

	"expensetracker/internal/backend"
	"expensetracker/internal/cli"
	apphttp "expensetracker/internal/http"
	"expensetracker/internal/log"
)

const shutdownTimeout = 30 * time.Second

func main() {
	if err := cli.LoadEnvFile(); err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
	}
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	if err := run(logger); err != nil {
		logger.Error("expense-api stopped with error", log.FieldError, err.Error())
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

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return err
	}
	res, err := backend.NewFactory(logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := res.Cleanup(); err != nil {
			logger.Error("Backend cleanup failed", log.FieldError, err.Error())
		}
	}()

	addr := ":" + cfg.Port
	srv, err := apphttp.NewAPIServer(addr, res.Service, apphttp.Options{
		RequestsPerMinute: cfg.RateLimitPerMinute,
		Logger:            logger,
		Ready:             res.Ready,
	})
	if err != nil {
		return err
	}

	logger.Info("Expense API configured",
		"backend", backendCfg.Type.String(),
		"events", cfg.AMQPURL != "",
		log.FieldOperation, log.OpStartup)
	return cli.Serve(ctx, logger, shutdownTimeout, "expense-api", addr, srv)
}
