// Package gate implements the Change-Request Gate (spec.md §4.E): it
// interposes on writes that touch a row with a different owner, either
// admitting the write or deflecting it into a pending ChangeRequest.
package gate

import (
	"context"
	"database/sql"
	stderrors "errors"
	"time"

	"github.com/google/uuid"

	"github.com/Valstan/MatricaRMZ-sub006/common/constant"
	apperrors "github.com/Valstan/MatricaRMZ-sub006/common/errors"
	"github.com/Valstan/MatricaRMZ-sub006/common/mlog"
	"github.com/Valstan/MatricaRMZ-sub006/common/mpostgres"
	"github.com/Valstan/MatricaRMZ-sub006/internal/registry"
	"github.com/Valstan/MatricaRMZ-sub006/internal/store"
	"github.com/Valstan/MatricaRMZ-sub006/pkg/canonical"
	"github.com/Valstan/MatricaRMZ-sub006/pkg/mmodel"
)

// Decision is the outcome of the admission algorithm.
type Decision int

const (
	Admit Decision = iota
	Deflect
)

// AdmissionResult is returned once per incoming (table, row, actor).
type AdmissionResult struct {
	Decision        Decision
	ChangeRequestID string
}

// Gate is the Change-Request Gate.
type Gate struct {
	conn  *mpostgres.Connection
	reg   *registry.Registry
	store *store.Store
	logger mlog.Logger
}

// New builds a Change-Request Gate.
func New(conn *mpostgres.Connection, reg *registry.Registry, st *store.Store, logger mlog.Logger) *Gate {
	return &Gate{conn: conn, reg: reg, store: st, logger: logger}
}

// Admit runs the admission algorithm from spec.md §4.E for one incoming
// (table, row, actor). It never writes the row itself - the caller
// applies the returned decision.
func (g *Gate) Admit(ctx context.Context, table, rowID string, proposedRow map[string]any, actor mmodel.Actor) (AdmissionResult, error) {
	owner, found, err := g.lookupOwner(ctx, table, rowID)
	if err != nil {
		return AdmissionResult{}, err
	}

	if !found {
		return AdmissionResult{Decision: Admit}, nil
	}

	if actor.Role.IsElevated() {
		return AdmissionResult{Decision: Admit}, nil
	}

	if actor.UserID == owner.UserID {
		return AdmissionResult{Decision: Admit}, nil
	}

	crID, err := g.createChangeRequest(ctx, table, rowID, owner, actor, proposedRow)
	if err != nil {
		return AdmissionResult{}, err
	}

	return AdmissionResult{Decision: Deflect, ChangeRequestID: crID}, nil
}

func (g *Gate) lookupOwner(ctx context.Context, table, rowID string) (mmodel.RowOwner, bool, error) {
	db, err := g.conn.DB()
	if err != nil {
		return mmodel.RowOwner{}, false, apperrors.StorageUnavailableError{Err: err}
	}

	var owner mmodel.RowOwner

	row := db.QueryRowContext(ctx, `SELECT table_name, row_id, user_id, username, created_at FROM row_owners WHERE table_name = $1 AND row_id = $2`, table, rowID)
	if err := row.Scan(&owner.TableName, &owner.RowID, &owner.UserID, &owner.Username, &owner.CreatedAt); err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return mmodel.RowOwner{}, false, nil
		}

		return mmodel.RowOwner{}, false, apperrors.StorageUnavailableError{Err: err}
	}

	return owner, true, nil
}

func (g *Gate) currentRow(ctx context.Context, table, rowID string) (map[string]any, bool, error) {
	def, ok := g.reg.Lookup(table)
	if !ok {
		return nil, false, apperrors.ValidationError{EntityType: table, Code: constant.CodeUnknownTable, Message: "table is not registered"}
	}

	db, err := g.conn.DB()
	if err != nil {
		return nil, false, apperrors.StorageUnavailableError{Err: err}
	}

	cols := make([]string, 0, len(def.Fields))
	for _, f := range def.Fields {
		cols = append(cols, f.DB)
	}

	query := "SELECT "
	for i, c := range cols {
		if i > 0 {
			query += ", "
		}

		query += c
	}

	query += " FROM " + table + " WHERE id = $1"

	dest := make([]any, len(cols))
	scanTargets := make([]any, len(cols))

	for i := range dest {
		scanTargets[i] = &dest[i]
	}

	if err := db.QueryRowContext(ctx, query, rowID).Scan(scanTargets...); err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}

		return nil, false, apperrors.StorageUnavailableError{Err: err}
	}

	dbRow := make(map[string]any, len(cols))
	for i, c := range cols {
		dbRow[c] = dest[i]
	}

	wire, err := def.ToWireRow(dbRow)
	if err != nil {
		return nil, false, err
	}

	return wire, true, nil
}

func (g *Gate) createChangeRequest(ctx context.Context, table, rowID string, owner mmodel.RowOwner, changeAuthor mmodel.Actor, proposedRow map[string]any) (string, error) {
	before, found, err := g.currentRow(ctx, table, rowID)
	if err != nil {
		return "", err
	}

	var beforeJSON []byte
	if found {
		beforeJSON, err = canonical.Marshal(before)
		if err != nil {
			return "", err
		}
	}

	afterJSON, err := canonical.Marshal(proposedRow)
	if err != nil {
		return "", err
	}

	db, err := g.conn.DB()
	if err != nil {
		return "", apperrors.StorageUnavailableError{Err: err}
	}

	id := uuid.NewString()

	_, err = db.ExecContext(ctx,
		`INSERT INTO change_requests
			(id, table_name, row_id, before_json, after_json, change_author_id, change_author_username, record_owner_id, record_owner_username, status, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		id, table, rowID, string(beforeJSON), string(afterJSON),
		changeAuthor.UserID, changeAuthor.Username, owner.UserID, owner.Username,
		string(mmodel.ChangeRequestPending), time.Now().UTC())
	if err != nil {
		return "", apperrors.StorageUnavailableError{Err: err}
	}

	return id, nil
}
