// Package syncapi implements the Sync Protocol HTTP surface (spec.md
// §4.D): push and pull handlers wiring the registry, Change-Request
// Gate, and Authoritative Store together behind Fiber routes.
package syncapi

import (
	"context"

	"github.com/Valstan/MatricaRMZ-sub006/common/mlog"
	"github.com/Valstan/MatricaRMZ-sub006/internal/gate"
	"github.com/Valstan/MatricaRMZ-sub006/internal/registry"
	"github.com/Valstan/MatricaRMZ-sub006/internal/store"
	"github.com/Valstan/MatricaRMZ-sub006/pkg/mmodel"
)

// gateService is the slice of *gate.Gate that Push depends on, narrowed
// to an interface so handler tests can substitute a fake instead of a
// Postgres-backed Gate.
type gateService interface {
	Admit(ctx context.Context, table, rowID string, proposedRow map[string]any, actor mmodel.Actor) (gate.AdmissionResult, error)
}

// writeStore is the slice of *store.Store that Push and Pull depend on.
type writeStore interface {
	WriteSyncChanges(ctx context.Context, inputs []store.WriteInput, actor mmodel.Actor) (store.WriteResult, error)
	QueryPullSince(ctx context.Context, cursorSeq uint64, limit int) (store.PullResult, error)
}

// Handler wires the Sync Protocol operations over a Registry, Gate and
// Store. It holds no HTTP-framework state; routes.go adapts it to Fiber.
type Handler struct {
	registry         *registry.Registry
	gate             gateService
	store            writeStore
	logger           mlog.Logger
	pullDefaultLimit int
}

// New builds a syncapi Handler. pullDefaultLimit configures the limit a
// pull request gets when it omits one (SYNC_PULL_DEFAULT_LIMIT); 0 falls
// back to DefaultPullLimit.
func New(reg *registry.Registry, g *gate.Gate, st *store.Store, logger mlog.Logger, pullDefaultLimit int) *Handler {
	return &Handler{registry: reg, gate: g, store: st, logger: logger, pullDefaultLimit: pullDefaultLimit}
}

// PushUpsert is one table's batch of rows in a push request.
type PushUpsert struct {
	Table string           `json:"table"`
	Rows  []map[string]any `json:"rows"`
}

// PushRequest is the wire shape of a push request (spec.md §4.D).
type PushRequest struct {
	ClientID string       `json:"client_id"`
	Upserts  []PushUpsert `json:"upserts"`
}

// PushError reports one row that could not be applied.
type PushError struct {
	Table  string `json:"table"`
	ID     string `json:"id"`
	Reason string `json:"reason"`
}

// PushDeflected reports one row redirected into a pending change request.
type PushDeflected struct {
	Table           string `json:"table"`
	ID              string `json:"id"`
	ChangeRequestID string `json:"change_request_id"`
}

// PushResponse is the wire shape of a push response.
type PushResponse struct {
	Applied   int             `json:"applied"`
	Errors    []PushError     `json:"errors"`
	Deflected []PushDeflected `json:"deflected"`
}

// Push runs the five-step algorithm from spec.md §4.D: schema-validate,
// resolve the actor (the caller already did so and passes it in), run
// every valid row through the Change-Request Gate, hand Admitted rows to
// the Authoritative Store in one transaction, and report outcomes.
func (h *Handler) Push(ctx context.Context, req PushRequest, actor mmodel.Actor) (PushResponse, error) {
	resp := PushResponse{}

	var admitted []store.WriteInput

	tables := h.registry.InDependencyOrder()
	byTable := make(map[string]PushUpsert, len(req.Upserts))

	for _, u := range req.Upserts {
		byTable[u.Table] = u
	}

	for _, def := range tables {
		upsert, ok := byTable[def.SyncName]
		if !ok {
			continue
		}

		for _, row := range upsert.Rows {
			rowID, _ := row["id"].(string)

			if err := def.Validate(row); err != nil {
				resp.Errors = append(resp.Errors, PushError{Table: def.SyncName, ID: rowID, Reason: err.Error()})
				continue
			}

			decision, err := h.gate.Admit(ctx, def.SyncName, rowID, row, actor)
			if err != nil {
				resp.Errors = append(resp.Errors, PushError{Table: def.SyncName, ID: rowID, Reason: err.Error()})
				continue
			}

			if decision.Decision == gate.Deflect {
				resp.Deflected = append(resp.Deflected, PushDeflected{Table: def.SyncName, ID: rowID, ChangeRequestID: decision.ChangeRequestID})
				continue
			}

			dbRow, err := def.ToDbRow(row)
			if err != nil {
				resp.Errors = append(resp.Errors, PushError{Table: def.SyncName, ID: rowID, Reason: err.Error()})
				continue
			}

			admitted = append(admitted, store.WriteInput{Table: def.SyncName, RowID: rowID, Row: dbRow, Op: opFor(row)})
		}
	}

	if len(admitted) > 0 {
		result, err := h.store.WriteSyncChanges(ctx, admitted, actor)
		if err != nil {
			return PushResponse{}, err
		}

		resp.Applied = len(result.Applied)
	}

	return resp, nil
}

func opFor(row map[string]any) mmodel.ChangeOp {
	if v, ok := row["deleted_at"]; ok && v != nil {
		return mmodel.ChangeOpDelete
	}

	return mmodel.ChangeOpUpsert
}
