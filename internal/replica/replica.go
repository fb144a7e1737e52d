// Package replica implements the Client Replica (spec.md §4.F): the
// embedded-storage mirror that runs on each user's machine, pushing
// locally pending rows and pulling authoritative changes on a timer.
package replica

import (
	"database/sql"
	"fmt"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/Valstan/MatricaRMZ-sub006/common/mlog"
	"github.com/Valstan/MatricaRMZ-sub006/internal/registry"
)

// Limits bound how much a single push cycle may send, per spec.md §6's
// SYNC_PUSH_MAX_TOTAL/_PER_TABLE configuration.
type Limits struct {
	MaxRowsPerTable int
	MaxTotalRows    int
}

// DefaultLimits matches the spec's documented defaults.
var DefaultLimits = Limits{MaxRowsPerTable: 1000, MaxTotalRows: 5000}

// Replica is the embedded mirror. It owns a single SQLite connection
// (pinned to one open conn, mirroring the teacher's single-writer
// SQLite convention) and serializes push/pull with their own mutexes so
// at most one of each is ever in flight, while push and pull may
// interleave per spec.md §5.
type Replica struct {
	conn     *sql.DB
	registry *registry.Registry
	transport Transport
	logger   mlog.Logger

	pushMu sync.Mutex
	pullMu sync.Mutex
}

// Open opens (or creates) the embedded SQLite database at path and
// returns a Replica ready to sync once a Transport is attached.
func Open(path string, reg *registry.Registry, transport Transport, logger mlog.Logger) (*Replica, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open replica database: %w", err)
	}

	conn.SetMaxOpenConns(1)

	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	if _, err := conn.Exec("PRAGMA busy_timeout=5000"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	return &Replica{conn: conn, registry: reg, transport: transport, logger: logger}, nil
}

// Close releases the embedded database handle.
func (r *Replica) Close() error {
	return r.conn.Close()
}
