package replica

import (
	"context"
	"fmt"

	"github.com/Valstan/MatricaRMZ-sub006/internal/registry"
)

// ddlForTable renders the CREATE TABLE statement for one registered
// table's local mirror: every registry field plus the two client-only
// columns from spec.md §4.F (`last_server_seq`, `sync_status`).
func ddlForTable(def registry.TableDef) string {
	stmt := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n", def.SyncName)

	for _, f := range def.Fields {
		stmt += fmt.Sprintf("  %s %s,\n", f.DB, sqliteType(f.Kind))
	}

	stmt += "  last_server_seq INTEGER NOT NULL DEFAULT 0,\n"
	stmt += "  sync_status TEXT NOT NULL DEFAULT 'pending',\n"
	stmt += fmt.Sprintf("  PRIMARY KEY (%s)\n)", joinColumns(def.ConflictTarget))

	return stmt
}

func sqliteType(k registry.FieldKind) string {
	switch k {
	case registry.KindNumber:
		return "NUMERIC"
	case registry.KindBool:
		return "INTEGER"
	case registry.KindNullableTimestamp:
		return "INTEGER"
	default:
		return "TEXT"
	}
}

func joinColumns(cols []string) string {
	out := ""

	for i, c := range cols {
		if i > 0 {
			out += ", "
		}

		out += c
	}

	return out
}

// replicaStateDDL holds the single-row sync cursor, mirroring the
// single-row counter convention the ledger uses server-side.
const replicaStateDDL = `CREATE TABLE IF NOT EXISTS replica_state (
  id INTEGER PRIMARY KEY CHECK (id = 1),
  client_id TEXT NOT NULL,
  last_cursor_seq INTEGER NOT NULL DEFAULT 0
)`

// CreateSchema creates every registered table's local mirror plus the
// cursor/client-id bookkeeping table, and is idempotent.
func (r *Replica) CreateSchema(ctx context.Context, clientID string) error {
	for _, def := range r.registry.InDependencyOrder() {
		if _, err := r.conn.ExecContext(ctx, ddlForTable(def)); err != nil {
			return fmt.Errorf("create table %s: %w", def.SyncName, err)
		}
	}

	if _, err := r.conn.ExecContext(ctx, replicaStateDDL); err != nil {
		return fmt.Errorf("create replica_state: %w", err)
	}

	_, err := r.conn.ExecContext(ctx, `INSERT OR IGNORE INTO replica_state (id, client_id, last_cursor_seq) VALUES (1, ?, 0)`, clientID)
	if err != nil {
		return fmt.Errorf("seed replica_state: %w", err)
	}

	return nil
}
