package main

import (
	"fmt"

	"github.com/Valstan/MatricaRMZ-sub006/common/mlog"
	"github.com/Valstan/MatricaRMZ-sub006/common/mpostgres"
	"github.com/Valstan/MatricaRMZ-sub006/internal/bootstrap"
	"github.com/Valstan/MatricaRMZ-sub006/internal/ledger"
)

// openLedgerStore loads the same Config InitServers uses and builds a
// standalone Ledger Store over it, without the HTTP router or any of
// the other ambient connection hubs this tool has no use for.
func openLedgerStore() (*ledger.Store, error) {
	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := mlog.NewZapLogger(mlog.ErrorLevel)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	hmacKey, signKey, err := bootstrap.LedgerKeys(cfg)
	if err != nil {
		return nil, err
	}

	conn := &mpostgres.Connection{
		PrimaryDSN:     cfg.DBPrimaryDSN,
		ReplicaDSN:     cfg.DBReplicaDSN,
		DatabaseName:   cfg.DBName,
		MigrationsPath: cfg.DBMigrationsPath,
		Logger:         logger,
	}

	return ledger.New(conn, hmacKey, signKey, logger), nil
}
