package config

import (
	"fmt"
	"time"

	"github.com/Netflix/go-env"
)

// Environment variables with defaults
type ServerEnvironment struct {

	// http server settings
	Environment           string        `env:"ENVIRONMENT,default=dev"`
	Host                  string        `env:"HOST,default=0.0.0.0"`
	Port                  int           `env:"PORT,default=8080"`
	LogLevel              string        `env:"LOG_LEVEL,default=debug"`
	ServerShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT,default=10s"`
	ReadTimeout           time.Duration `env:"READ_TIMEOUT,default=15s"`
	WriteTimeout          time.Duration `env:"WRITE_TIMEOUT,default=60s"`
	IdleTimeout           time.Duration `env:"IDLE_TIMEOUT,default=60s"`
	MaxRequestBodyBytes   int64         `env:"MAX_REQUEST_BODY_BYTES,default=10485760"`
	RateLimitRPS          int32         `env:"RATE_LIMIT_RPS,default=100"`
	RateLimitBurst        int32         `env:"RATE_LIMIT_BURST,default=200"`

	// database settings
	DBMaxConnections    int32         `env:"DB_MAX_CONNECTIONS,default=4"`
	DBMinConnections    int32         `env:"DB_MIN_CONNECTIONS,default=0"`
	DBMaxConnLifetime   time.Duration `env:"DB_MAX_CONN_LIFETIME,default=60m"`
	DBMaxConnIdleTime   time.Duration `env:"DB_MAX_CONN_IDLE_TIME,default=30m"`
	DBConnectTimeout    time.Duration `env:"DB_CONNECT_TIMEOUT,default=5s"`
	DatabasePingTimeout time.Duration `env:"DATABASE_PING_TIMEOUT,default=10s"`

	// delivery pipeline settings
	TransportTimeout     time.Duration `env:"TRANSPORT_TIMEOUT,default=60s"`
	BlobFetchTimeout     time.Duration `env:"BLOB_FETCH_TIMEOUT,default=30s"`
	AttachmentFetchLimit int           `env:"ATTACHMENT_FETCH_LIMIT,default=4"`

	// status reconciler settings
	ReconcileInterval    time.Duration `env:"RECONCILE_INTERVAL,default=5m"`
	ReconcileBatchSize   int           `env:"RECONCILE_BATCH_SIZE,default=100"`
	ReceiptStatusTimeout time.Duration `env:"RECEIPT_STATUS_TIMEOUT,default=30s"`
	ReceiptStatusBaseURL string        `env:"RECEIPT_STATUS_BASE_URL"`
	ReceiptStatusCert    string        `env:"RECEIPT_STATUS_CERT,default=receipt-status-client"`

	// Required pipeline configuration - must be set by environment variables
	DatabaseURL        string `env:"DATABASE_URL,required=true"`
	VaultIdentifier    string `env:"VAULT_IDENTIFIER,required=true"`
	SecretsDir         string `env:"SECRETS_DIR,required=true"`
	BlobRootDir        string `env:"BLOB_ROOT_DIR,required=true"`
	ExchangeConfigPath string `env:"EXCHANGE_CONFIG_PATH,required=true"`
	CatalogPath        string `env:"CATALOG_PATH,required=true"`
}

var validEnvs = map[string]bool{
	"dev":     true,
	"test":    true,
	"prod":    true,
	"staging": true,
}

// NewServerConfig loads environment variables and returns a ServerEnvironment struct that contains the values
func NewServerConfig() (*ServerEnvironment, error) {
	var cfg ServerEnvironment

	_, err := env.UnmarshalFromEnviron(&cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal environment variables: %w", err)
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// validateConfig checks for required env variables
func validateConfig(cfg *ServerEnvironment) error {
	if cfg.Port < 1 || cfg.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535")
	}
	if !validEnvs[cfg.Environment] {
		return fmt.Errorf("invalid ENVIRONMENT: %s", cfg.Environment)
	}

	// Validate database pool configuration
	if cfg.DBMaxConnections < 1 {
		return fmt.Errorf("DB_MAX_CONNECTIONS must be at least 1")
	}
	if cfg.DBMinConnections < 0 {
		return fmt.Errorf("DB_MIN_CONNECTIONS must be 0 or greater")
	}
	if cfg.DBMinConnections > cfg.DBMaxConnections {
		return fmt.Errorf("DB_MIN_CONNECTIONS (%d) cannot be greater than DB_MAX_CONNECTIONS (%d)",
			cfg.DBMinConnections, cfg.DBMaxConnections)
	}

	if cfg.MaxRequestBodyBytes < 1 {
		return fmt.Errorf("MAX_REQUEST_BODY_BYTES must be at least 1")
	}
	if cfg.ReconcileBatchSize < 1 {
		return fmt.Errorf("RECONCILE_BATCH_SIZE must be at least 1")
	}
	if cfg.AttachmentFetchLimit < 1 {
		return fmt.Errorf("ATTACHMENT_FETCH_LIMIT must be at least 1")
	}

	return nil
}
