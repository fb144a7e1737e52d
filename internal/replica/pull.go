package replica

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Valstan/MatricaRMZ-sub006/internal/registry"
	"github.com/Valstan/MatricaRMZ-sub006/internal/syncapi"
)

// Pull runs spec.md §4.F's inbound path: fetch rows since the stored
// cursor, project them through the registry into the local schema, and
// advance the cursor atomically with the projection in one local
// transaction. Only one pull is ever in flight for this Replica.
func (r *Replica) Pull(ctx context.Context, limit int) error {
	r.pullMu.Lock()
	defer r.pullMu.Unlock()

	cursor, err := r.cursor(ctx)
	if err != nil {
		return err
	}

	resp, err := r.transport.Pull(ctx, syncapi.PullRequest{CursorSeq: cursor, Limit: limit})
	if err != nil {
		return err
	}

	return r.projectPullResponse(ctx, resp)
}

func (r *Replica) cursor(ctx context.Context) (uint64, error) {
	var cursor uint64

	err := r.conn.QueryRowContext(ctx, `SELECT last_cursor_seq FROM replica_state WHERE id = 1`).Scan(&cursor)
	if err != nil {
		return 0, fmt.Errorf("read cursor: %w", err)
	}

	return cursor, nil
}

func (r *Replica) projectPullResponse(ctx context.Context, resp syncapi.PullResponse) error {
	tx, err := r.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin pull transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, tc := range resp.Changes {
		def, ok := r.registry.Lookup(tc.Table)
		if !ok {
			continue
		}

		for _, wireRow := range tc.Rows {
			if err := r.projectRow(ctx, tx, def, wireRow, resp.NextCursor); err != nil {
				return err
			}
		}
	}

	if _, err := tx.ExecContext(ctx, `UPDATE replica_state SET last_cursor_seq = ? WHERE id = 1`, resp.NextCursor); err != nil {
		return fmt.Errorf("advance cursor: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit pull projection: %w", err)
	}

	return nil
}

// projectRow applies rule 2: UPSERT keyed by the table's conflict
// target, the conflict-update clause replaces every non-key column and
// forces sync_status back to 'synced'.
func (r *Replica) projectRow(ctx context.Context, tx *sql.Tx, def registry.TableDef, wireRow map[string]any, serverSeq uint64) error {
	cols := make([]string, 0, len(def.Fields)+2)
	placeholders := make([]string, 0, len(def.Fields)+2)
	vals := make([]any, 0, len(def.Fields)+2)

	// Every registered table's wire field name equals its storage column
	// name (see registry.go), so the wire row projects directly without
	// a ToDbRow conversion - that conversion exists for the server's
	// Postgres-native types (decimal.Decimal, time.Time), not needed
	// for this embedded store's plain SQLite columns.
	for _, f := range def.Fields {
		cols = append(cols, f.DB)
		placeholders = append(placeholders, "?")
		vals = append(vals, wireRow[f.DTO])
	}

	cols = append(cols, "last_server_seq", "sync_status")
	placeholders = append(placeholders, "?", "?")
	vals = append(vals, serverSeq, "synced")

	setClause := "last_server_seq = excluded.last_server_seq, sync_status = excluded.sync_status"

	for _, f := range def.Fields {
		if isConflictColumn(f.DB, def.ConflictTarget) {
			continue
		}

		setClause += ", " + f.DB + " = excluded." + f.DB
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (%s) DO UPDATE SET %s",
		def.SyncName, joinColumns(cols), joinPlaceholders(placeholders), joinColumns(def.ConflictTarget), setClause)

	if _, err := tx.ExecContext(ctx, query, vals...); err != nil {
		return fmt.Errorf("upsert %s: %w", def.SyncName, err)
	}

	return nil
}

func isConflictColumn(col string, target []string) bool {
	for _, c := range target {
		if c == col {
			return true
		}
	}

	return false
}

func joinPlaceholders(ph []string) string {
	out := ""

	for i, p := range ph {
		if i > 0 {
			out += ", "
		}

		out += p
	}

	return out
}
