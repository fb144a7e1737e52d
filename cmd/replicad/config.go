package main

import (
	"github.com/Valstan/MatricaRMZ-sub006/common/config"
	"github.com/Valstan/MatricaRMZ-sub006/internal/replica"
)

// replicadConfig is the Client Replica host's own small configuration,
// independent of bootstrap.Config since this process has no HTTP
// server, database, or ledger keys of its own to load.
type replicadConfig struct {
	ServerURL string `env:"SYNC_SERVER_URL"`
	AuthToken string `env:"SYNC_AUTH_TOKEN"`
	ClientID  string `env:"SYNC_CLIENT_ID"`
	DBPath    string `env:"REPLICA_DB_PATH"`

	PushMaxTotal    int64 `env:"SYNC_PUSH_MAX_TOTAL"`
	PushMaxPerTable int64 `env:"SYNC_PUSH_MAX_PER_TABLE"`
	PollIntervalMS  int64 `env:"SYNC_POLL_INTERVAL_MS"`
	PullLimit       int64 `env:"SYNC_PULL_DEFAULT_LIMIT"`
}

func loadReplicadConfig() (*replicadConfig, error) {
	cfg := &replicadConfig{}
	if err := config.FromEnv(cfg); err != nil {
		return nil, err
	}

	if cfg.ServerURL == "" {
		cfg.ServerURL = "http://localhost:3000"
	}

	if cfg.ClientID == "" {
		cfg.ClientID = "replicad"
	}

	if cfg.DBPath == "" {
		cfg.DBPath = "replica.db"
	}

	if cfg.PollIntervalMS == 0 {
		cfg.PollIntervalMS = 5000
	}

	if cfg.PullLimit == 0 {
		cfg.PullLimit = 2000
	}

	return cfg, nil
}

func (c *replicadConfig) limits() replica.Limits {
	limits := replica.DefaultLimits

	if c.PushMaxTotal > 0 {
		limits.MaxTotalRows = int(c.PushMaxTotal)
	}

	if c.PushMaxPerTable > 0 {
		limits.MaxRowsPerTable = int(c.PushMaxPerTable)
	}

	return limits
}
