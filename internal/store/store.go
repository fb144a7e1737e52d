// Package store implements the Authoritative Store (spec.md §4.C): the
// server-side relational projection of the ledger. It is the only
// component permitted to mutate the registered tables, and the sole
// writer of change_log rows.
package store

import (
	"github.com/Valstan/MatricaRMZ-sub006/common/mlog"
	"github.com/Valstan/MatricaRMZ-sub006/common/mmongo"
	"github.com/Valstan/MatricaRMZ-sub006/common/mpostgres"
	"github.com/Valstan/MatricaRMZ-sub006/common/mrabbitmq"
	"github.com/Valstan/MatricaRMZ-sub006/internal/ledger"
	"github.com/Valstan/MatricaRMZ-sub006/internal/registry"
)

// Store is the Authoritative Store.
type Store struct {
	conn     *mpostgres.Connection
	registry *registry.Registry
	ledger   *ledger.Store
	mongo    *mmongo.Connection    // metadata_index mirror, ambient (§4 expansion), best-effort
	rabbit   *mrabbitmq.Connection // change_log fanout, ambient notification only
	logger   mlog.Logger
}

// New builds an Authoritative Store over the given connections. mongo
// and rabbit may be nil; when absent their mirroring/fanout steps are
// skipped (they are ambient, never load-bearing for correctness - see
// spec.md §4.C, which defines writeSyncChanges purely in terms of the
// relational tables, the ledger and change_log).
func New(conn *mpostgres.Connection, reg *registry.Registry, led *ledger.Store, mongo *mmongo.Connection, rabbit *mrabbitmq.Connection, logger mlog.Logger) *Store {
	return &Store{
		conn:     conn,
		registry: reg,
		ledger:   led,
		mongo:    mongo,
		rabbit:   rabbit,
		logger:   logger,
	}
}
