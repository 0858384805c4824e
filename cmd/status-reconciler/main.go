package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/haulage-networks/exchange-delivery/internal/config"
	"github.com/haulage-networks/exchange-delivery/internal/database"
	"github.com/haulage-networks/exchange-delivery/internal/localstore"
	"github.com/haulage-networks/exchange-delivery/internal/logger"
	"github.com/haulage-networks/exchange-delivery/internal/reconciler"
	"github.com/haulage-networks/exchange-delivery/internal/version"
)

func main() {
	cmd := &cobra.Command{
		Use:   "status-reconciler",
		Short: "Receipt status reconciliation worker",
		Long:  `status-reconciler periodically polls the exchange receipt-status endpoint and records settlement outcomes for delivered invoices`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run()
		},
	}

	v := version.Get()
	cmd.Version = fmt.Sprintf("%s (built %s, commit %s)", v.Version, v.BuildDate, v.GitCommit)

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.NewServerConfig()
	if err != nil {
		log.Printf("failed to load configuration: %v", err.Error())
		os.Exit(1)
	}

	appLogger := logger.InitLogger(logger.ParseLogLevel(cfg.LogLevel), cfg.Environment)

	appLogger.Info("Configuration loaded",
		slog.String("ENVIRONMENT", cfg.Environment),
		slog.String("LOG_LEVEL", cfg.LogLevel),
		slog.String("DATABASE_URL", cfg.DatabaseURL),
		slog.String("RECEIPT_STATUS_BASE_URL", cfg.ReceiptStatusBaseURL),
		slog.Duration("RECONCILE_INTERVAL", cfg.ReconcileInterval),
		slog.Int("RECONCILE_BATCH_SIZE", cfg.ReconcileBatchSize),
	)

	if cfg.ReceiptStatusBaseURL == "" {
		appLogger.Error("RECEIPT_STATUS_BASE_URL must be set for the reconciler")
		os.Exit(1)
	}

	dbCtx, dbCancel := context.WithTimeout(context.Background(), cfg.DatabasePingTimeout)
	defer dbCancel()

	pool, err := database.NewPool(dbCtx, cfg)
	if err != nil {
		appLogger.Error("Unable to create connection pool", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	appLogger.Info("connected to PostgreSQL")

	secrets := localstore.NewFileSecretStore(cfg.SecretsDir)

	rec := reconciler.New(
		database.NewStore(pool),
		secrets,
		reconciler.Config{
			BaseURL:     cfg.ReceiptStatusBaseURL,
			Vault:       cfg.VaultIdentifier,
			CertName:    cfg.ReceiptStatusCert,
			Interval:    cfg.ReconcileInterval,
			BatchSize:   cfg.ReconcileBatchSize,
			HTTPTimeout: cfg.ReceiptStatusTimeout,
		},
		appLogger,
	)

	appLogger.Info("Starting reconciler", slog.String("version", version.Get().Version))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rec.Run(ctx); err != nil {
		appLogger.Error("Reconciler error", slog.String("error", err.Error()))
		return err
	}

	appLogger.Info("reconciler shutdown complete")
	return nil
}
