package syncapi

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Valstan/MatricaRMZ-sub006/internal/gate"
	"github.com/Valstan/MatricaRMZ-sub006/internal/registry"
	"github.com/Valstan/MatricaRMZ-sub006/internal/store"
	"github.com/Valstan/MatricaRMZ-sub006/pkg/mmodel"
)

type fakeGate struct {
	decision gate.AdmissionResult
	err      error
	calls    int
}

func (f *fakeGate) Admit(_ context.Context, _, _ string, _ map[string]any, _ mmodel.Actor) (gate.AdmissionResult, error) {
	f.calls++
	return f.decision, f.err
}

type fakeStore struct {
	written []store.WriteInput
	result  store.WriteResult
	err     error
}

func (f *fakeStore) WriteSyncChanges(_ context.Context, inputs []store.WriteInput, _ mmodel.Actor) (store.WriteResult, error) {
	f.written = inputs
	return f.result, f.err
}

func (f *fakeStore) QueryPullSince(_ context.Context, _ uint64, _ int) (store.PullResult, error) {
	return store.PullResult{}, nil
}

func validEntityTypeRow(id string) map[string]any {
	return map[string]any{
		"id":         id,
		"code":       "engine",
		"name":       "Engine",
		"created_at": float64(1000),
		"updated_at": float64(1000),
	}
}

func TestPush_AdmittedRowIsWritten(t *testing.T) {
	reg := registry.New()
	g := &fakeGate{decision: gate.AdmissionResult{Decision: gate.Admit}}
	st := &fakeStore{result: store.WriteResult{Applied: []store.WriteOutcome{{Table: registry.EntityTypes, RowID: "et1", ServerSeq: 1}}}}
	h := &Handler{registry: reg, gate: g, store: st}

	req := PushRequest{ClientID: "c1", Upserts: []PushUpsert{
		{Table: registry.EntityTypes, Rows: []map[string]any{validEntityTypeRow("et1")}},
	}}

	resp, err := h.Push(context.Background(), req, mmodel.Actor{UserID: "u1", Role: mmodel.RoleUser})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Applied)
	assert.Empty(t, resp.Errors)
	assert.Empty(t, resp.Deflected)
	assert.Len(t, st.written, 1)
	assert.Equal(t, "et1", st.written[0].RowID)
}

func TestPush_InvalidRowReportsErrorWithoutTouchingGate(t *testing.T) {
	reg := registry.New()
	g := &fakeGate{decision: gate.AdmissionResult{Decision: gate.Admit}}
	st := &fakeStore{}
	h := &Handler{registry: reg, gate: g, store: st}

	badRow := validEntityTypeRow("et1")
	delete(badRow, "code")

	req := PushRequest{Upserts: []PushUpsert{{Table: registry.EntityTypes, Rows: []map[string]any{badRow}}}}

	resp, err := h.Push(context.Background(), req, mmodel.Actor{UserID: "u1"})
	require.NoError(t, err)
	assert.Equal(t, 0, resp.Applied)
	require.Len(t, resp.Errors, 1)
	assert.Equal(t, "et1", resp.Errors[0].ID)
	assert.Equal(t, 0, g.calls)
}

func TestPush_DeflectedRowIsReportedNotWritten(t *testing.T) {
	reg := registry.New()
	g := &fakeGate{decision: gate.AdmissionResult{Decision: gate.Deflect, ChangeRequestID: "cr1"}}
	st := &fakeStore{}
	h := &Handler{registry: reg, gate: g, store: st}

	req := PushRequest{Upserts: []PushUpsert{{Table: registry.EntityTypes, Rows: []map[string]any{validEntityTypeRow("et1")}}}}

	resp, err := h.Push(context.Background(), req, mmodel.Actor{UserID: "u2"})
	require.NoError(t, err)
	assert.Equal(t, 0, resp.Applied)
	require.Len(t, resp.Deflected, 1)
	assert.Equal(t, "cr1", resp.Deflected[0].ChangeRequestID)
	assert.Empty(t, st.written)
}

func TestPush_UnknownTableIsSkipped(t *testing.T) {
	reg := registry.New()
	h := &Handler{registry: reg, gate: &fakeGate{}, store: &fakeStore{}}

	req := PushRequest{Upserts: []PushUpsert{{Table: "not_a_table", Rows: []map[string]any{{"id": "x"}}}}}

	resp, err := h.Push(context.Background(), req, mmodel.Actor{})
	require.NoError(t, err)
	assert.Equal(t, 0, resp.Applied)
	assert.Empty(t, resp.Errors)
}
