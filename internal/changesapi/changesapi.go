// Package changesapi implements the moderation HTTP surface over the
// Change-Request Gate: listing change requests by status (with the
// noise filter from spec.md §4.D applied) and deciding them.
package changesapi

import (
	"context"
	"encoding/json"

	"github.com/Valstan/MatricaRMZ-sub006/common/mhttp"
	"github.com/Valstan/MatricaRMZ-sub006/common/mlog"
	"github.com/Valstan/MatricaRMZ-sub006/common/mpostgres"
	"github.com/Valstan/MatricaRMZ-sub006/internal/gate"
	"github.com/Valstan/MatricaRMZ-sub006/internal/store"
	"github.com/Valstan/MatricaRMZ-sub006/pkg/mmodel"

	"github.com/gofiber/fiber/v2"

	apperrors "github.com/Valstan/MatricaRMZ-sub006/common/errors"
	"github.com/Valstan/MatricaRMZ-sub006/internal/auth"
)

// decisionService is the slice of *gate.Gate that Apply/Reject depend
// on, narrowed to an interface so handler tests can substitute a fake.
type decisionService interface {
	Apply(ctx context.Context, changeRequestID string, decider mmodel.Actor, note string) error
	Reject(ctx context.Context, changeRequestID string, decider mmodel.Actor, note string) error
}

// noiseFilter is the slice of *store.Store that List depends on.
type noiseFilter interface {
	SuppressNoise(table string, before, after map[string]any) bool
}

// Handler serves the /changes subtree.
type Handler struct {
	conn   *mpostgres.Connection
	gate   decisionService
	store  noiseFilter
	logger mlog.Logger
}

// New builds a changesapi Handler.
func New(conn *mpostgres.Connection, g *gate.Gate, st *store.Store, logger mlog.Logger) *Handler {
	return &Handler{conn: conn, gate: g, store: st, logger: logger}
}

// DefaultListLimit caps a `/changes` listing when the caller omits limit=.
const DefaultListLimit = 200

// ChangeRequestView is the wire shape returned by List.
type ChangeRequestView struct {
	mmodel.ChangeRequest
	Suppressed bool `json:"suppressed"`
}

// ListParams is the decoded `status=&limit=&includeNoise=` query for
// GET /changes (spec.md §6).
type ListParams struct {
	Status       mmodel.ChangeRequestStatus
	Limit        int
	IncludeNoise bool
}

// List returns change requests in the given status (defaulting to
// pending), oldest-first, capped at Limit rows. Unless IncludeNoise is
// set, entries whose before/after differ only in non-semantic fields
// are flagged Suppressed rather than dropped, so the UI can still
// offer a raw view on request.
func (h *Handler) List(ctx context.Context, params ListParams) ([]ChangeRequestView, error) {
	status := params.Status
	if status == "" {
		status = mmodel.ChangeRequestPending
	}

	switch status {
	case mmodel.ChangeRequestPending, mmodel.ChangeRequestApplied, mmodel.ChangeRequestRejected:
	default:
		return nil, apperrors.ValidationError{EntityType: "change_request", Message: "status must be one of pending, applied, rejected"}
	}

	limit := params.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}

	db, err := h.conn.DB()
	if err != nil {
		return nil, apperrors.StorageUnavailableError{Err: err}
	}

	rows, err := db.QueryContext(ctx, `
		SELECT id, table_name, row_id, before_json, after_json,
		       change_author_id, change_author_username, record_owner_id, record_owner_username,
		       status, created_at
		FROM change_requests WHERE status = $1 ORDER BY created_at ASC LIMIT $2`, string(status), limit)
	if err != nil {
		return nil, apperrors.StorageUnavailableError{Err: err}
	}
	defer rows.Close()

	var out []ChangeRequestView

	for rows.Next() {
		var cr mmodel.ChangeRequest

		if err := rows.Scan(&cr.ID, &cr.TableName, &cr.RowID, &cr.BeforeJSON, &cr.AfterJSON,
			&cr.ChangeAuthorID, &cr.ChangeAuthorName, &cr.RecordOwnerID, &cr.RecordOwnerName,
			&cr.Status, &cr.CreatedAt); err != nil {
			return nil, apperrors.StorageUnavailableError{Err: err}
		}

		view := ChangeRequestView{ChangeRequest: cr}

		if !params.IncludeNoise {
			var before, after map[string]any

			_ = json.Unmarshal([]byte(cr.BeforeJSON), &before)
			_ = json.Unmarshal([]byte(cr.AfterJSON), &after)

			view.Suppressed = h.store.SuppressNoise(cr.TableName, before, after)
		}

		out = append(out, view)
	}

	return out, rows.Err()
}

// RegisterRoutes wires /changes onto the given router group.
func (h *Handler) RegisterRoutes(router fiber.Router) {
	changes := router.Group("/changes")
	changes.Get("/", h.handleList)
	changes.Post("/:id/apply", h.handleApply)
	changes.Post("/:id/reject", h.handleReject)
}

func (h *Handler) handleList(c *fiber.Ctx) error {
	params := ListParams{
		Status:       mmodel.ChangeRequestStatus(c.Query("status")),
		Limit:        c.QueryInt("limit", 0),
		IncludeNoise: c.QueryBool("includeNoise", false),
	}

	views, err := h.List(c.UserContext(), params)
	if err != nil {
		return mhttp.WithError(c, err)
	}

	return mhttp.OK(c, fiber.Map{"change_requests": views})
}

type decisionBody struct {
	Note string `json:"note"`
}

func (h *Handler) handleApply(c *fiber.Ctx) error {
	var body decisionBody
	_ = c.BodyParser(&body)

	actor := auth.ActorFromCtx(c)

	if err := h.gate.Apply(c.UserContext(), c.Params("id"), actor, body.Note); err != nil {
		return mhttp.WithError(c, err)
	}

	return mhttp.NoContent(c)
}

func (h *Handler) handleReject(c *fiber.Ctx) error {
	var body decisionBody
	_ = c.BodyParser(&body)

	actor := auth.ActorFromCtx(c)

	if err := h.gate.Reject(c.UserContext(), c.Params("id"), actor, body.Note); err != nil {
		return mhttp.WithError(c, err)
	}

	return mhttp.NoContent(c)
}
