package store

import (
	"context"
	"encoding/json"
	"fmt"

	sqrl "github.com/Masterminds/squirrel"

	apperrors "github.com/Valstan/MatricaRMZ-sub006/common/errors"
)

// TableChanges is one table's worth of rows in a pull response, in
// change_log order.
type TableChanges struct {
	Table string
	Rows  []map[string]any
}

// PullResult is the outcome of queryPullSince.
type PullResult struct {
	Changes    []TableChanges
	NextCursor uint64
	HasMore    bool
}

// QueryPullSince reads change_log where server_seq > cursorSeq ordered
// ascending, capped by limit, grouped by table while preserving order,
// and deduplicated by (table, row_id) keeping only the latest occurrence
// (spec.md §4.C).
func (s *Store) QueryPullSince(ctx context.Context, cursorSeq uint64, limit int) (PullResult, error) {
	db, err := s.conn.DB()
	if err != nil {
		return PullResult{}, apperrors.StorageUnavailableError{Err: err}
	}

	// Fetch one extra row to detect has_more without a second round trip.
	query, args, err := sqrl.Select("server_seq", "table_name", "row_id", "payload_json").
		From("change_log").
		Where(sqrl.Gt{"server_seq": cursorSeq}).
		OrderBy("server_seq ASC").
		Limit(uint64(limit + 1)).
		PlaceholderFormat(sqrl.Dollar).
		ToSql()
	if err != nil {
		return PullResult{}, fmt.Errorf("build select: %w", err)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return PullResult{}, apperrors.StorageUnavailableError{Err: err}
	}
	defer rows.Close()

	type rawRow struct {
		seq     uint64
		table   string
		rowID   string
		payload string
	}

	var raw []rawRow

	for rows.Next() {
		var r rawRow
		if err := rows.Scan(&r.seq, &r.table, &r.rowID, &r.payload); err != nil {
			return PullResult{}, apperrors.StorageUnavailableError{Err: err}
		}

		raw = append(raw, r)
	}

	if err := rows.Err(); err != nil {
		return PullResult{}, apperrors.StorageUnavailableError{Err: err}
	}

	hasMore := len(raw) > limit
	if hasMore {
		raw = raw[:limit]
	}

	var nextCursor = cursorSeq

	tableOrder := make([]string, 0)
	rowOrder := make(map[string][]string)     // table -> ordered row ids, first-seen
	rowValue := make(map[string]map[string]any) // table -> rowID -> latest decoded payload
	seen := make(map[string]bool)

	for _, r := range raw {
		if r.seq > nextCursor {
			nextCursor = r.seq
		}

		if !seen[r.table] {
			seen[r.table] = true
			tableOrder = append(tableOrder, r.table)
			rowOrder[r.table] = nil
			rowValue[r.table] = make(map[string]any)
		}

		if _, exists := rowValue[r.table][r.rowID]; !exists {
			rowOrder[r.table] = append(rowOrder[r.table], r.rowID)
		}

		var decoded map[string]any
		if err := json.Unmarshal([]byte(r.payload), &decoded); err != nil {
			return PullResult{}, fmt.Errorf("decode change_log payload: %w", err)
		}

		rowValue[r.table][r.rowID] = decoded
	}

	changes := make([]TableChanges, 0, len(tableOrder))

	for _, table := range tableOrder {
		ids := rowOrder[table]
		tableRows := make([]map[string]any, 0, len(ids))

		for _, id := range ids {
			tableRows = append(tableRows, rowValue[table][id])
		}

		changes = append(changes, TableChanges{Table: table, Rows: tableRows})
	}

	return PullResult{Changes: changes, NextCursor: nextCursor, HasMore: hasMore}, nil
}
