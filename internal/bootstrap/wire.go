package bootstrap

import (
	"fmt"

	"github.com/Valstan/MatricaRMZ-sub006/common/mlog"
	"github.com/Valstan/MatricaRMZ-sub006/common/mmongo"
	"github.com/Valstan/MatricaRMZ-sub006/common/mpostgres"
	"github.com/Valstan/MatricaRMZ-sub006/common/mrabbitmq"
	"github.com/Valstan/MatricaRMZ-sub006/internal/auth"
	"github.com/Valstan/MatricaRMZ-sub006/internal/changesapi"
	"github.com/Valstan/MatricaRMZ-sub006/internal/gate"
	"github.com/Valstan/MatricaRMZ-sub006/internal/ledger"
	"github.com/Valstan/MatricaRMZ-sub006/internal/registry"
	"github.com/Valstan/MatricaRMZ-sub006/internal/store"
	"github.com/Valstan/MatricaRMZ-sub006/internal/syncapi"
)

// InitServers loads Config from the environment and wires every
// component into a runnable Service, the same shape the teacher's own
// InitServers functions return to main.go.
func InitServers() (*Service, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	level, err := mlog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	logger, err := mlog.NewZapLogger(level)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	hmacKey, signKey, err := LedgerKeys(cfg)
	if err != nil {
		return nil, err
	}

	dbConn := &mpostgres.Connection{
		PrimaryDSN:     cfg.DBPrimaryDSN,
		ReplicaDSN:     cfg.DBReplicaDSN,
		DatabaseName:   cfg.DBName,
		MigrationsPath: cfg.DBMigrationsPath,
		Logger:         logger,
	}

	var mongoConn *mmongo.Connection
	if cfg.MongoURI != "" {
		mongoConn = &mmongo.Connection{URI: cfg.MongoURI, Database: cfg.MongoDatabase, Logger: logger}
	}

	var rabbitConn *mrabbitmq.Connection
	if cfg.RabbitMQURI != "" {
		rabbitConn = &mrabbitmq.Connection{URI: cfg.RabbitMQURI, Exchange: cfg.RabbitMQExchange, Logger: logger}
	}

	reg := registry.New()
	ledgerStore := ledger.New(dbConn, hmacKey, signKey, logger)
	authoritative := store.New(dbConn, reg, ledgerStore, mongoConn, rabbitConn, logger)
	changeGate := gate.New(dbConn, reg, authoritative, logger)
	resolver := auth.NewResolver(cfg.AuthJWTSecret)

	syncHandler := syncapi.New(reg, changeGate, authoritative, logger, int(cfg.SyncPullDefaultLimit))
	changesHandler := changesapi.New(dbConn, changeGate, authoritative, logger)

	router := NewRouter(logger, resolver, syncHandler, changesHandler)
	server := NewServer(cfg, router, logger)

	return &Service{Server: server, Logger: logger}, nil
}
