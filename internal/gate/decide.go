package gate

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"time"

	"github.com/Valstan/MatricaRMZ-sub006/common/constant"
	apperrors "github.com/Valstan/MatricaRMZ-sub006/common/errors"
	"github.com/Valstan/MatricaRMZ-sub006/internal/store"
	"github.com/Valstan/MatricaRMZ-sub006/pkg/mmodel"
)

// Get loads one ChangeRequest by id.
func (g *Gate) Get(ctx context.Context, id string) (mmodel.ChangeRequest, error) {
	db, err := g.conn.DB()
	if err != nil {
		return mmodel.ChangeRequest{}, apperrors.StorageUnavailableError{Err: err}
	}

	return g.getTx(ctx, db, id)
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (g *Gate) getTx(ctx context.Context, q queryRower, id string) (mmodel.ChangeRequest, error) {
	var (
		cr          mmodel.ChangeRequest
		beforeJSON  sql.NullString
		decidedByID sql.NullString
		decidedBy   sql.NullString
		decidedAt   sql.NullTime
		note        sql.NullString
	)

	row := q.QueryRowContext(ctx, `
		SELECT id, table_name, row_id, before_json, after_json,
		       change_author_id, change_author_username, record_owner_id, record_owner_username,
		       status, decided_by_id, decided_by_username, decided_at, note, created_at
		FROM change_requests WHERE id = $1`, id)

	err := row.Scan(&cr.ID, &cr.TableName, &cr.RowID, &beforeJSON, &cr.AfterJSON,
		&cr.ChangeAuthorID, &cr.ChangeAuthorName, &cr.RecordOwnerID, &cr.RecordOwnerName,
		&cr.Status, &decidedByID, &decidedBy, &decidedAt, &note, &cr.CreatedAt)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return mmodel.ChangeRequest{}, apperrors.NotFoundError{EntityType: "change_request", Message: "change request " + id + " not found"}
		}

		return mmodel.ChangeRequest{}, apperrors.StorageUnavailableError{Err: err}
	}

	cr.BeforeJSON = beforeJSON.String
	cr.DecidedByID = decidedByID.String
	cr.DecidedByUsername = decidedBy.String
	cr.Note = note.String

	if decidedAt.Valid {
		cr.DecidedAt = &decidedAt.Time
	}

	return cr, nil
}

// Reject sets a pending ChangeRequest to rejected. It never writes the
// proposed row and never touches the ledger - spec.md §4.E: "reject only
// updates status; no ledger or change_log entry is produced."
func (g *Gate) Reject(ctx context.Context, changeRequestID string, decider mmodel.Actor, note string) error {
	db, err := g.conn.DB()
	if err != nil {
		return apperrors.StorageUnavailableError{Err: err}
	}

	cr, err := g.getTx(ctx, db, changeRequestID)
	if err != nil {
		return err
	}

	if err := authorizeDecision(cr, decider); err != nil {
		return err
	}

	if cr.Status != mmodel.ChangeRequestPending {
		return apperrors.StateConflictError{Reason: constant.ReasonNotPending, Message: "change request " + changeRequestID + " is no longer pending"}
	}

	res, err := db.ExecContext(ctx,
		`UPDATE change_requests SET status = $1, decided_by_id = $2, decided_by_username = $3, decided_at = $4, note = $5
		 WHERE id = $6 AND status = $7`,
		string(mmodel.ChangeRequestRejected), decider.UserID, decider.Username, time.Now().UTC(), note,
		changeRequestID, string(mmodel.ChangeRequestPending))
	if err != nil {
		return apperrors.StorageUnavailableError{Err: err}
	}

	n, err := res.RowsAffected()
	if err != nil {
		return apperrors.StorageUnavailableError{Err: err}
	}

	if n == 0 {
		return apperrors.StateConflictError{Reason: constant.ReasonNotPending, Message: "change request " + changeRequestID + " is no longer pending"}
	}

	return nil
}

// Apply admits a pending ChangeRequest's proposed row and marks it
// applied, atomically. Both effects happen in the same transaction -
// spec.md §4.E: "apply makes a single writeSyncChanges call... and the
// request is marked applied in the same transaction."
func (g *Gate) Apply(ctx context.Context, changeRequestID string, decider mmodel.Actor, note string) error {
	db, err := g.conn.DB()
	if err != nil {
		return apperrors.StorageUnavailableError{Err: err}
	}

	cr, err := g.getTx(ctx, db, changeRequestID)
	if err != nil {
		return err
	}

	if err := authorizeDecision(cr, decider); err != nil {
		return err
	}

	if cr.Status != mmodel.ChangeRequestPending {
		return apperrors.StateConflictError{Reason: constant.ReasonNotPending, Message: "change request " + changeRequestID + " is no longer pending"}
	}

	var after map[string]any
	if err := json.Unmarshal([]byte(cr.AfterJSON), &after); err != nil {
		return apperrors.ValidationError{EntityType: cr.TableName, Code: constant.CodeMalformedProposal, Message: "stored after_json is not valid JSON", Err: err}
	}

	def, ok := g.reg.Lookup(cr.TableName)
	if !ok {
		return apperrors.ValidationError{EntityType: cr.TableName, Code: constant.CodeUnknownTable, Message: "table is not registered"}
	}

	// Re-validate at apply time: the record may have drifted (e.g. a
	// referenced row since deleted) between deflection and decision -
	// dangling references must surface as a ValidationError here rather
	// than silently succeeding.
	if err := def.Validate(after); err != nil {
		return err
	}

	dbRow, err := def.ToDbRow(after)
	if err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return apperrors.StorageUnavailableError{Err: err}
	}
	defer func() { _ = tx.Rollback() }()

	changeAuthor := mmodel.Actor{UserID: cr.ChangeAuthorID, Username: cr.ChangeAuthorName, Role: mmodel.RoleUser}

	_, entries, err := g.store.WriteSyncChangesTx(ctx, tx, []store.WriteInput{
		{Table: cr.TableName, RowID: cr.RowID, Row: dbRow, Op: mmodel.ChangeOpUpsert},
	}, changeAuthor)
	if err != nil {
		return err
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE change_requests SET status = $1, decided_by_id = $2, decided_by_username = $3, decided_at = $4, note = $5
		 WHERE id = $6 AND status = $7`,
		string(mmodel.ChangeRequestApplied), decider.UserID, decider.Username, time.Now().UTC(), note,
		changeRequestID, string(mmodel.ChangeRequestPending))
	if err != nil {
		return apperrors.StorageUnavailableError{Err: err}
	}

	n, err := res.RowsAffected()
	if err != nil {
		return apperrors.StorageUnavailableError{Err: err}
	}

	if n == 0 {
		return apperrors.StateConflictError{Reason: constant.ReasonNotPending, Message: "change request " + changeRequestID + " is no longer pending"}
	}

	if err := tx.Commit(); err != nil {
		return apperrors.StorageUnavailableError{Err: err}
	}

	g.store.NotifyCommitted(ctx, entries)

	return nil
}

// authorizeDecision enforces spec.md §4.E: only the record owner or an
// elevated role may apply/reject a deflected change.
func authorizeDecision(cr mmodel.ChangeRequest, decider mmodel.Actor) error {
	if decider.Role.IsElevated() {
		return nil
	}

	if decider.UserID == cr.RecordOwnerID {
		return nil
	}

	return apperrors.ForbiddenError{Message: "only the record owner or an elevated role may decide this change request"}
}
