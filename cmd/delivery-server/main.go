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

	"github.com/haulage-networks/exchange-delivery/internal/compression"
	"github.com/haulage-networks/exchange-delivery/internal/config"
	"github.com/haulage-networks/exchange-delivery/internal/database"
	"github.com/haulage-networks/exchange-delivery/internal/delivery"
	"github.com/haulage-networks/exchange-delivery/internal/encoder"
	"github.com/haulage-networks/exchange-delivery/internal/localstore"
	"github.com/haulage-networks/exchange-delivery/internal/logger"
	"github.com/haulage-networks/exchange-delivery/internal/pipeline"
	"github.com/haulage-networks/exchange-delivery/internal/server"
	"github.com/haulage-networks/exchange-delivery/internal/transport"
	"github.com/haulage-networks/exchange-delivery/internal/version"
)

func main() {
	cmd := &cobra.Command{
		Use:   "delivery-server",
		Short: "Invoice delivery pipeline server",
		Long:  `delivery-server receives invoice and field ticket envelopes and delivers them to trading partner exchanges`,
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
		slog.String("HOST", cfg.Host),
		slog.Int("PORT", cfg.Port),
		slog.String("LOG_LEVEL", cfg.LogLevel),
		slog.String("DATABASE_URL", cfg.DatabaseURL),
		slog.String("VAULT_IDENTIFIER", cfg.VaultIdentifier),
		slog.String("EXCHANGE_CONFIG_PATH", cfg.ExchangeConfigPath),
		slog.String("CATALOG_PATH", cfg.CatalogPath),
		slog.String("BLOB_ROOT_DIR", cfg.BlobRootDir),
	)

	if err := database.Migrate(cfg.DatabaseURL); err != nil {
		appLogger.Error("Failed to run database migrations", slog.String("error", err.Error()))
		os.Exit(1)
	}

	dbCtx, dbCancel := context.WithTimeout(context.Background(), cfg.DatabasePingTimeout)
	defer dbCancel()

	pool, err := database.NewPool(dbCtx, cfg)
	if err != nil {
		appLogger.Error("Unable to create connection pool", slog.String("error", err.Error()))
		os.Exit(1)
	}

	appLogger.Info("connected to PostgreSQL")

	resolver, err := localstore.NewFileConfigResolver(cfg.ExchangeConfigPath)
	if err != nil {
		appLogger.Error("Failed to load exchange configs", slog.String("error", err.Error()))
		os.Exit(1)
	}

	catalog, err := localstore.NewFileCatalog(cfg.CatalogPath)
	if err != nil {
		appLogger.Error("Failed to load catalog", slog.String("error", err.Error()))
		os.Exit(1)
	}

	secrets := localstore.NewFileSecretStore(cfg.SecretsDir)
	blobs := localstore.NewFileBlobStore(cfg.BlobRootDir)

	compressors := compression.NewRegistry()
	compressors.Register("application/pdf", compression.GzipCompressor{})
	compressors.Register("application/pdf", compression.ZipCompressor{})
	compressors.Register("text/plain", compression.GzipCompressor{})
	compressors.Register("image/tiff", compression.ZipCompressor{})

	fetcher := encoder.NewAttachmentFetcher(blobs, compressors, appLogger, cfg.AttachmentFetchLimit)

	pidx := encoder.NewPIDXEncoder(fetcher)
	pidx.RegisterVersion(encoder.NewPIDXv100Adapter())
	pidx.RegisterVersion(encoder.NewPIDXv162Adapter())

	selector := encoder.NewSelector()
	selector.Register(delivery.AdapterTypeCsv, encoder.NewCSVEncoder(fetcher))
	selector.Register(delivery.AdapterTypeMailMessage, encoder.NewMailEncoder(fetcher))
	selector.Register(delivery.AdapterTypePidx, pidx)

	transports := transport.NewStrategy()
	transports.Register(delivery.ChannelTypeHTTP, transport.NewHTTPTransport(cfg.TransportTimeout))
	transports.Register(delivery.ChannelTypeSFTP, transport.NewSFTPTransport(cfg.TransportTimeout))
	transports.Register(delivery.ChannelTypeSMTP, transport.NewSMTPTransport())

	orchestrator := pipeline.NewOrchestrator(
		resolver,
		delivery.NewEnricher(catalog),
		selector,
		transports,
		secrets,
		cfg.VaultIdentifier,
		database.NewStore(pool),
		nil,
		appLogger,
	)

	appLogger.Info("Starting server", slog.String("version", version.Get().Version))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.NewServer(pool, orchestrator, cfg, appLogger)

	defer srv.DatabaseShutdown()

	if err := srv.Start(ctx); err != nil {
		appLogger.Error("Server error", slog.String("error", err.Error()))
		return err
	}

	appLogger.Info("server shutdown complete")
	return nil
}
