package store

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"time"

	sqrl "github.com/Masterminds/squirrel"

	"github.com/Valstan/MatricaRMZ-sub006/common/constant"
	apperrors "github.com/Valstan/MatricaRMZ-sub006/common/errors"
	"github.com/Valstan/MatricaRMZ-sub006/internal/ledger"
	"github.com/Valstan/MatricaRMZ-sub006/internal/registry"
	"github.com/Valstan/MatricaRMZ-sub006/pkg/mmodel"
)

// WriteInput is one admitted row, already converted to storage-column
// values via the registry, waiting to be applied.
type WriteInput struct {
	Table string
	RowID string
	Row   map[string]any
	Op    mmodel.ChangeOp
}

// WriteOutcome reports the server_seq assigned to one applied input.
type WriteOutcome struct {
	Table     string
	RowID     string
	ServerSeq uint64
}

// WriteResult is the full outcome of a writeSyncChanges call.
type WriteResult struct {
	Applied []WriteOutcome
}

// childParent maps a child table to the field on its rows that names the
// parent Entity id, per spec.md §4.C rule 4 ("if an input mutates a
// child... also touch the parent Entity").
var childParent = map[string]string{
	registry.AttributeValues: "entity_id",
	registry.Operations:      "entity_id",
}

// WriteSyncChanges applies every input inside one transaction: merges
// timestamps, upserts the row, touches the parent Entity for child
// tables, records ownership for new rows, and appends one ledger entry
// per applied row (including synthetic parent-touch entries) before
// emitting matching change_log rows. All-or-nothing: any failure rolls
// the whole batch back and the ledger sees nothing.
func (s *Store) WriteSyncChanges(ctx context.Context, inputs []WriteInput, actor mmodel.Actor) (WriteResult, error) {
	if len(inputs) == 0 {
		return WriteResult{}, nil
	}

	db, err := s.conn.DB()
	if err != nil {
		return WriteResult{}, apperrors.StorageUnavailableError{Err: err}
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return WriteResult{}, apperrors.StorageUnavailableError{Err: err}
	}
	defer func() { _ = tx.Rollback() }()

	result, entries, err := s.WriteSyncChangesTx(ctx, tx, inputs, actor)
	if err != nil {
		return WriteResult{}, err
	}

	if err := tx.Commit(); err != nil {
		return WriteResult{}, apperrors.StorageUnavailableError{Err: err}
	}

	s.mirrorAfterCommit(ctx, entries)

	return result, nil
}

// WriteSyncChangesTx is the transaction-scoped core of WriteSyncChanges.
// Callers that need to combine this write with another state transition
// in the same transaction (the Change-Request Gate's apply decision)
// use this directly and own the commit themselves.
func (s *Store) WriteSyncChangesTx(ctx context.Context, tx *sql.Tx, inputs []WriteInput, actor mmodel.Actor) (WriteResult, []mmodel.LedgerEntry, error) {
	if len(inputs) == 0 {
		return WriteResult{}, nil, nil
	}

	observedLastSeq, err := s.ledger.LastSeq(ctx)
	if err != nil {
		return WriteResult{}, nil, err
	}

	var (
		txPayloads   []ledger.TxPayload
		payloadOwner []struct {
			table string
			rowID string
		}
	)

	touchedParents := make(map[string]bool) // "table:id" already touched this batch

	for _, in := range inputs {
		def, ok := s.registry.Lookup(in.Table)
		if !ok {
			return WriteResult{}, nil, apperrors.ValidationError{EntityType: in.Table, Code: constant.CodeUnknownTable, Message: fmt.Sprintf("table %q is not registered", in.Table)}
		}

		merged, isNew, err := s.mergeAndUpsert(ctx, tx, def, in)
		if err != nil {
			return WriteResult{}, nil, err
		}

		wireRow, err := def.ToWireRow(merged)
		if err != nil {
			return WriteResult{}, nil, fmt.Errorf("to wire row: %w", err)
		}

		txPayloads = append(txPayloads, ledger.TxPayload{Op: in.Op, TableName: in.Table, RowID: in.RowID, Row: wireRow, Actor: actor})
		payloadOwner = append(payloadOwner, struct {
			table string
			rowID string
		}{in.Table, in.RowID})

		if isNew {
			if err := s.insertRowOwner(ctx, tx, in.Table, in.RowID, actor); err != nil {
				return WriteResult{}, nil, err
			}
		}

		if parentField, isChild := childParent[in.Table]; isChild {
			parentID, _ := merged[parentField].(string)
			key := registry.Entities + ":" + parentID

			if parentID != "" && !touchedParents[key] {
				touchedParents[key] = true

				parentWire, err := s.touchParentEntity(ctx, tx, parentID)
				if err != nil {
					return WriteResult{}, nil, err
				}

				txPayloads = append(txPayloads, ledger.TxPayload{Op: mmodel.ChangeOpUpsert, TableName: registry.Entities, RowID: parentID, Row: parentWire, Actor: actor})
				payloadOwner = append(payloadOwner, struct {
					table string
					rowID string
				}{registry.Entities, parentID})
			}
		}
	}

	entries, err := s.ledger.AppendTx(ctx, tx, observedLastSeq, txPayloads)
	if err != nil {
		return WriteResult{}, nil, err
	}

	result := WriteResult{Applied: make([]WriteOutcome, 0, len(entries))}

	insert := sqrl.Insert("change_log").
		Columns("server_seq", "table_name", "row_id", "op", "payload_json", "created_at").
		PlaceholderFormat(sqrl.Dollar)

	for i, entry := range entries {
		insert = insert.Values(entry.Seq, entry.TableName, entry.RowID, string(entry.Op), entry.RowJSON, entry.TS)
		result.Applied = append(result.Applied, WriteOutcome{Table: payloadOwner[i].table, RowID: payloadOwner[i].rowID, ServerSeq: entry.Seq})
	}

	query, args, err := insert.ToSql()
	if err != nil {
		return WriteResult{}, nil, fmt.Errorf("build change_log insert: %w", err)
	}

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return WriteResult{}, nil, apperrors.StorageUnavailableError{Err: err}
	}

	return result, entries, nil
}

// mergeAndUpsert applies spec.md §4.C rule 1-2: merge updated_at/created_at
// against any pre-existing row, then UPSERT keyed by the table's conflict
// target. Returns the final DB-column row and whether the row was new.
//
// Conflict resolution compares the incoming row's updated_at against the
// *stored* row's updated_at, not wall-clock time: spec.md §8 scenario 2
// requires max(updated_at) to win regardless of network arrival order, and
// scenario 5 requires a retried push whose updated_at the server already
// holds (or exceeds) to be a no-op rather than overwriting a fresher row.
func (s *Store) mergeAndUpsert(ctx context.Context, tx *sql.Tx, def registry.TableDef, in WriteInput) (map[string]any, bool, error) {
	existing, found, err := s.fetchExisting(ctx, tx, def, in.Row)
	if err != nil {
		return nil, false, err
	}

	incomingUpdated, _ := in.Row["updated_at"].(*time.Time)

	var existingUpdated *time.Time

	if found {
		existingUpdated, _ = existing["updated_at"].(*time.Time)

		if existingUpdated != nil && incomingUpdated != nil && !incomingUpdated.After(*existingUpdated) {
			// Stale or replayed write: the stored row is already at least as
			// fresh as this one. Leave it untouched - no upsert, no field
			// changes applied.
			return existing, false, nil
		}
	}

	merged := make(map[string]any, len(in.Row))
	for k, v := range in.Row {
		merged[k] = v
	}

	now := time.Now().UTC()

	if found {
		merged["created_at"] = existing["created_at"]
	} else if merged["created_at"] == nil {
		merged["created_at"] = &now
	}

	finalUpdated := now
	if incomingUpdated != nil && incomingUpdated.After(finalUpdated) {
		finalUpdated = *incomingUpdated
	}

	if existingUpdated != nil && existingUpdated.After(finalUpdated) {
		finalUpdated = *existingUpdated
	}

	merged["updated_at"] = &finalUpdated

	if in.Op == mmodel.ChangeOpDelete {
		merged["deleted_at"] = &finalUpdated
	}

	if err := s.upsert(ctx, tx, def, merged); err != nil {
		return nil, false, err
	}

	return merged, !found, nil
}

func (s *Store) fetchExisting(ctx context.Context, tx *sql.Tx, def registry.TableDef, row map[string]any) (map[string]any, bool, error) {
	where := sqrl.Eq{}
	for _, col := range def.ConflictTarget {
		where[col] = row[col]
	}

	cols := make([]string, 0, len(def.Fields))
	for _, f := range def.Fields {
		cols = append(cols, f.DB)
	}

	query, args, err := sqrl.Select(cols...).
		From(def.SyncName).
		Where(where).
		Suffix("FOR UPDATE").
		PlaceholderFormat(sqrl.Dollar).
		ToSql()
	if err != nil {
		return nil, false, fmt.Errorf("build select: %w", err)
	}

	dest := make([]any, len(cols))
	scanTargets := make([]any, len(cols))

	for i := range dest {
		scanTargets[i] = &dest[i]
	}

	rowErr := tx.QueryRowContext(ctx, query, args...).Scan(scanTargets...)
	if rowErr != nil {
		if stderrors.Is(rowErr, sql.ErrNoRows) {
			return nil, false, nil
		}

		return nil, false, apperrors.StorageUnavailableError{Err: rowErr}
	}

	existing := make(map[string]any, len(cols))
	for i, c := range cols {
		existing[c] = dest[i]
	}

	return existing, true, nil
}

func (s *Store) upsert(ctx context.Context, tx *sql.Tx, def registry.TableDef, row map[string]any) error {
	cols := make([]string, 0, len(def.Fields))
	vals := make([]any, 0, len(def.Fields))

	for _, f := range def.Fields {
		cols = append(cols, f.DB)
		vals = append(vals, row[f.DB])
	}

	setClauses := ""

	for _, f := range def.Fields {
		if isConflictColumn(f.DB, def.ConflictTarget) {
			continue
		}

		if setClauses != "" {
			setClauses += ", "
		}

		setClauses += fmt.Sprintf("%s = EXCLUDED.%s", f.DB, f.DB)
	}

	query, args, err := sqrl.Insert(def.SyncName).
		Columns(cols...).
		Values(vals...).
		Suffix(fmt.Sprintf("ON CONFLICT (%s) DO UPDATE SET %s", joinCols(def.ConflictTarget), setClauses)).
		PlaceholderFormat(sqrl.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert: %w", err)
	}

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return apperrors.StorageUnavailableError{Err: err}
	}

	return nil
}

// touchParentEntity implements rule 4: bump the parent Entity's
// updated_at so pull-side clients learn the parent changed too, and
// return its wire row for the synthetic ledger/change_log entry.
func (s *Store) touchParentEntity(ctx context.Context, tx *sql.Tx, entityID string) (map[string]any, error) {
	now := time.Now().UTC()

	_, err := tx.ExecContext(ctx, `UPDATE entities SET updated_at = $1 WHERE id = $2`, now, entityID)
	if err != nil {
		return nil, apperrors.StorageUnavailableError{Err: err}
	}

	def, _ := s.registry.Lookup(registry.Entities)

	row, found, err := s.fetchExisting(ctx, tx, def, map[string]any{"id": entityID})
	if err != nil {
		return nil, err
	}

	if !found {
		return nil, apperrors.NotFoundError{EntityType: registry.Entities, Message: fmt.Sprintf("parent entity %s not found", entityID)}
	}

	return def.ToWireRow(row)
}

func (s *Store) insertRowOwner(ctx context.Context, tx *sql.Tx, table, rowID string, actor mmodel.Actor) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO row_owners (table_name, row_id, user_id, username, created_at) VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (table_name, row_id) DO NOTHING`,
		table, rowID, actor.UserID, actor.Username, time.Now().UTC())
	if err != nil {
		return apperrors.StorageUnavailableError{Err: err}
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

func joinCols(cols []string) string {
	out := ""

	for i, c := range cols {
		if i > 0 {
			out += ", "
		}

		out += c
	}

	return out
}
