package replica

import (
	"context"
	"fmt"

	"github.com/Valstan/MatricaRMZ-sub006/internal/registry"
	"github.com/Valstan/MatricaRMZ-sub006/internal/syncapi"
)

type sentRow struct {
	table string
	id    string
}

// Push runs spec.md §4.F's outbound path: collect pending rows up to the
// configured limits, send them in one request, then flip local
// sync_status per the server's verdict. Only one push is ever in
// flight for this Replica.
func (r *Replica) Push(ctx context.Context, clientID string, limits Limits) error {
	r.pushMu.Lock()
	defer r.pushMu.Unlock()

	upserts, sent, err := r.collectAllPending(ctx, limits)
	if err != nil {
		return err
	}

	if len(sent) == 0 {
		return nil
	}

	resp, err := r.transport.Push(ctx, syncapi.PushRequest{ClientID: clientID, Upserts: upserts})
	if err != nil {
		return err
	}

	return r.applyPushResult(ctx, resp, sent)
}

// collectAllPending scans every registered table in dependency order for
// sync_status = 'pending' rows. 'error' rows are never resent: they stay
// excluded until their sync_status is set back to 'pending'.
func (r *Replica) collectAllPending(ctx context.Context, limits Limits) ([]syncapi.PushUpsert, []sentRow, error) {
	var (
		upserts []syncapi.PushUpsert
		sent    []sentRow
	)

	for _, def := range r.registry.InDependencyOrder() {
		if len(sent) >= limits.MaxTotalRows {
			break
		}

		remaining := limits.MaxTotalRows - len(sent)

		perTable := limits.MaxRowsPerTable
		if remaining < perTable {
			perTable = remaining
		}

		rows, tableSent, err := r.collectPendingForTable(ctx, def, perTable)
		if err != nil {
			return nil, nil, err
		}

		if len(rows) == 0 {
			continue
		}

		upserts = append(upserts, syncapi.PushUpsert{Table: def.SyncName, Rows: rows})
		sent = append(sent, tableSent...)
	}

	return upserts, sent, nil
}

func (r *Replica) collectPendingForTable(ctx context.Context, def registry.TableDef, limit int) ([]map[string]any, []sentRow, error) {
	if limit <= 0 {
		return nil, nil, nil
	}

	cols := make([]string, 0, len(def.Fields))
	for _, f := range def.Fields {
		cols = append(cols, f.DB)
	}

	query := "SELECT " + joinColumns(cols) + " FROM " + def.SyncName + " WHERE sync_status = 'pending' LIMIT ?"

	rows, err := r.conn.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, nil, fmt.Errorf("query pending %s: %w", def.SyncName, err)
	}
	defer rows.Close()

	var (
		out  []map[string]any
		sent []sentRow
	)

	for rows.Next() {
		dest := make([]any, len(cols))
		scanTargets := make([]any, len(cols))

		for i := range dest {
			scanTargets[i] = &dest[i]
		}

		if err := rows.Scan(scanTargets...); err != nil {
			return nil, nil, fmt.Errorf("scan pending %s: %w", def.SyncName, err)
		}

		dbRow := make(map[string]any, len(cols))
		for i, c := range cols {
			dbRow[c] = dest[i]
		}

		id := fmt.Sprint(dbRow["id"])

		// Every registered table's wire field name equals its storage
		// column name (see registry.go), so the scanned local row is
		// already shaped like a wire row; no ToWireRow conversion needed.
		wireRow := dbRow

		if err := def.Validate(wireRow); err != nil {
			// Rule 2: rows failing local validation are marked error and
			// never resent, rather than blocking the rest of the batch.
			if markErr := r.markStatusByID(ctx, def.SyncName, id, "error"); markErr != nil {
				return nil, nil, markErr
			}

			continue
		}

		out = append(out, wireRow)
		sent = append(sent, sentRow{table: def.SyncName, id: id})
	}

	return out, sent, rows.Err()
}

// markStatusByID updates sync_status by the row's natural `id` column,
// which every registered table carries regardless of its upsert
// ConflictTarget (attribute_values upserts on (entity_id, attribute_def_id)
// but still has its own surrogate id for status bookkeeping).
func (r *Replica) markStatusByID(ctx context.Context, table, id, status string) error {
	_, err := r.conn.ExecContext(ctx, "UPDATE "+table+" SET sync_status = ? WHERE id = ?", status, id)
	if err != nil {
		return fmt.Errorf("mark %s status: %w", table, err)
	}

	return nil
}

// applyPushResult flips every sent row's status. The response only
// counts admitted rows (spec.md §4.D gives applied as a bare N, not a
// list), so admitted rows are identified by elimination: whatever was
// sent minus what came back as an error. Deflected rows are also
// "handled" and move to synced - the client never resends them either,
// per spec.md §4.D's "the client still considers this row handled".
func (r *Replica) applyPushResult(ctx context.Context, resp syncapi.PushResponse, sent []sentRow) error {
	errored := make(map[sentRow]bool, len(resp.Errors))
	for _, e := range resp.Errors {
		errored[sentRow{table: e.Table, id: e.ID}] = true
	}

	for _, s := range sent {
		status := "synced"
		if errored[s] {
			status = "error"
		}

		if err := r.markStatusByID(ctx, s.table, s.id, status); err != nil {
			return err
		}
	}

	return nil
}
