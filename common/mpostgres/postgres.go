// Package mpostgres is a thin connection hub around pgx + database/sql,
// applying file-based migrations on connect and load-balancing reads
// across a primary/replica pair.
package mpostgres

import (
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"path/filepath"

	"github.com/bxcodec/dbresolver/v2"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/Valstan/MatricaRMZ-sub006/common/mlog"
)

// Connection is a hub that deals with the primary/replica Postgres pair
// used by the Ledger Store and the Authoritative Store.
type Connection struct {
	PrimaryDSN     string
	ReplicaDSN     string
	DatabaseName   string
	MigrationsPath string
	Logger         mlog.Logger

	db        *dbresolver.DB
	Connected bool
}

// Connect opens the primary/replica pool, runs pending migrations against
// the primary, and verifies connectivity.
func (c *Connection) Connect() error {
	c.Logger.Info("connecting to postgres primary and replica...")

	primary, err := sql.Open("pgx", c.PrimaryDSN)
	if err != nil {
		return fmt.Errorf("open primary: %w", err)
	}

	replicaDSN := c.ReplicaDSN
	if replicaDSN == "" {
		replicaDSN = c.PrimaryDSN
	}

	replica, err := sql.Open("pgx", replicaDSN)
	if err != nil {
		return fmt.Errorf("open replica: %w", err)
	}

	db := dbresolver.New(
		dbresolver.WithPrimaryDBs(primary),
		dbresolver.WithReplicaDBs(replica),
		dbresolver.WithLoadBalancer(dbresolver.RoundRobinLB),
	)

	if c.MigrationsPath != "" {
		if err := c.migrate(primary); err != nil {
			return err
		}
	}

	if err := db.Ping(); err != nil {
		return fmt.Errorf("ping: %w", err)
	}

	c.db = &db
	c.Connected = true

	c.Logger.Info("connected to postgres")

	return nil
}

func (c *Connection) migrate(primary *sql.DB) error {
	abs, err := filepath.Abs(c.MigrationsPath)
	if err != nil {
		return fmt.Errorf("resolve migrations path: %w", err)
	}

	fileURL := url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}

	driver, err := postgres.WithInstance(primary, &postgres.Config{
		MultiStatementEnabled: true,
		DatabaseName:          c.DatabaseName,
		SchemaName:            "public",
	})
	if err != nil {
		return fmt.Errorf("migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(fileURL.String(), c.DatabaseName, driver)
	if err != nil {
		return fmt.Errorf("load migrations: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}

	return nil
}

// DB returns the resolver-backed connection, connecting lazily if needed.
func (c *Connection) DB() (dbresolver.DB, error) {
	if c.db == nil {
		if err := c.Connect(); err != nil {
			return nil, err
		}
	}

	return *c.db, nil
}
