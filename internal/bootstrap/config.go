// Package bootstrap wires every component into a runnable service, the
// way the teacher's own internal/bootstrap packages assemble a
// Config into a Service via InitServers.
package bootstrap

import (
	"github.com/Valstan/MatricaRMZ-sub006/common/config"
)

// ApplicationName names this component in logs and the version endpoint.
const ApplicationName = "syncd"

// Config is the top-level configuration for the sync server, loaded
// from the environment per spec.md §6's configuration table plus the
// ambient connection settings the teacher's own components carry.
type Config struct {
	EnvName       string `env:"ENV_NAME"`
	LogLevel      string `env:"LOG_LEVEL"`
	ServerAddress string `env:"SERVER_ADDRESS"`

	DBPrimaryDSN     string `env:"DB_PRIMARY_DSN"`
	DBReplicaDSN     string `env:"DB_REPLICA_DSN"`
	DBName           string `env:"DB_NAME"`
	DBMigrationsPath string `env:"DB_MIGRATIONS_PATH"`

	MongoURI      string `env:"MONGO_URI"`
	MongoDatabase string `env:"MONGO_DATABASE"`

	RabbitMQURI      string `env:"RABBITMQ_URI"`
	RabbitMQExchange string `env:"RABBITMQ_EXCHANGE"`

	LedgerHMACKey string `env:"LEDGER_HMAC_KEY"`
	LedgerSignKey string `env:"LEDGER_SIGN_KEY"`

	AuthJWTSecret       string `env:"AUTH_JWT_SECRET"`
	RefreshTokenTTLDays int64  `env:"REFRESH_TOKEN_TTL_DAYS"`

	SyncPullDefaultLimit int64 `env:"SYNC_PULL_DEFAULT_LIMIT"`
	SyncPushMaxTotal     int64 `env:"SYNC_PUSH_MAX_TOTAL"`
	SyncPushMaxPerTable  int64 `env:"SYNC_PUSH_MAX_PER_TABLE"`
	SyncPollIntervalMS   int64 `env:"SYNC_POLL_INTERVAL_MS"`
}

// applyDefaults fills in spec.md §6's documented defaults for any field
// FromEnv left at its zero value.
func (c *Config) applyDefaults() {
	if c.ServerAddress == "" {
		c.ServerAddress = ":3000"
	}

	if c.LogLevel == "" {
		c.LogLevel = "info"
	}

	if c.RefreshTokenTTLDays == 0 {
		c.RefreshTokenTTLDays = 30
	}

	if c.SyncPullDefaultLimit == 0 {
		c.SyncPullDefaultLimit = 2000
	}

	if c.SyncPushMaxTotal == 0 {
		c.SyncPushMaxTotal = 5000
	}

	if c.SyncPushMaxPerTable == 0 {
		c.SyncPushMaxPerTable = 1000
	}
}

// LoadConfig reads Config from the environment and applies defaults.
func LoadConfig() (*Config, error) {
	cfg := &Config{}

	if err := config.FromEnv(cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()

	return cfg, nil
}
