package replica

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Valstan/MatricaRMZ-sub006/internal/registry"
	"github.com/Valstan/MatricaRMZ-sub006/internal/syncapi"
)

type fakeTransport struct {
	pushResp syncapi.PushResponse
	pushErr  error
	pullResp syncapi.PullResponse
	pullErr  error
	pushReqs []syncapi.PushRequest
	pullReqs []syncapi.PullRequest
}

func (f *fakeTransport) Push(_ context.Context, req syncapi.PushRequest) (syncapi.PushResponse, error) {
	f.pushReqs = append(f.pushReqs, req)
	return f.pushResp, f.pushErr
}

func (f *fakeTransport) Pull(_ context.Context, req syncapi.PullRequest) (syncapi.PullResponse, error) {
	f.pullReqs = append(f.pullReqs, req)
	return f.pullResp, f.pullErr
}

func newTestReplica(t *testing.T, transport Transport) *Replica {
	t.Helper()

	reg := registry.New()

	r, err := Open(":memory:", reg, transport, nil)
	require.NoError(t, err)

	t.Cleanup(func() { _ = r.Close() })

	require.NoError(t, r.CreateSchema(context.Background(), "test-client"))

	return r
}

func insertLocalEntityType(t *testing.T, r *Replica, id, code, status string) {
	t.Helper()

	_, err := r.conn.Exec(
		`INSERT INTO entity_types (id, code, name, display_name_attr, created_at, updated_at, deleted_at, sync_status)
		 VALUES (?, ?, ?, ?, ?, ?, NULL, ?)`,
		id, code, code, "", 1000, 1000, status)
	require.NoError(t, err)
}

func TestPush_SendsPendingRowsAndMarksSynced(t *testing.T) {
	transport := &fakeTransport{pushResp: syncapi.PushResponse{Applied: 1}}
	r := newTestReplica(t, transport)

	insertLocalEntityType(t, r, "et1", "engine", "pending")

	err := r.Push(context.Background(), "test-client", DefaultLimits)
	require.NoError(t, err)

	require.Len(t, transport.pushReqs, 1)
	require.Len(t, transport.pushReqs[0].Upserts, 1)
	assert.Equal(t, registry.EntityTypes, transport.pushReqs[0].Upserts[0].Table)

	var status string
	require.NoError(t, r.conn.QueryRow(`SELECT sync_status FROM entity_types WHERE id = ?`, "et1").Scan(&status))
	assert.Equal(t, "synced", status)
}

func TestPush_ErroredRowIsMarkedErrorNotSynced(t *testing.T) {
	transport := &fakeTransport{pushResp: syncapi.PushResponse{Errors: []syncapi.PushError{{Table: registry.EntityTypes, ID: "et1", Reason: "conflict"}}}}
	r := newTestReplica(t, transport)

	insertLocalEntityType(t, r, "et1", "engine", "pending")

	err := r.Push(context.Background(), "test-client", DefaultLimits)
	require.NoError(t, err)

	var status string
	require.NoError(t, r.conn.QueryRow(`SELECT sync_status FROM entity_types WHERE id = ?`, "et1").Scan(&status))
	assert.Equal(t, "error", status)
}

func TestPush_NoPendingRowsSkipsTransportCall(t *testing.T) {
	transport := &fakeTransport{}
	r := newTestReplica(t, transport)

	err := r.Push(context.Background(), "test-client", DefaultLimits)
	require.NoError(t, err)
	assert.Empty(t, transport.pushReqs)
}

func TestPull_ProjectsRowsAndAdvancesCursor(t *testing.T) {
	transport := &fakeTransport{pullResp: syncapi.PullResponse{
		Changes: []syncapi.PullChanges{
			{Table: registry.EntityTypes, Rows: []map[string]any{
				{"id": "et1", "code": "engine", "name": "Engine", "display_name_attr": "", "created_at": float64(1000), "updated_at": float64(1000), "deleted_at": nil},
			}},
		},
		NextCursor: 42,
		HasMore:    false,
	}}
	r := newTestReplica(t, transport)

	err := r.Pull(context.Background(), 500)
	require.NoError(t, err)

	var name, status string
	require.NoError(t, r.conn.QueryRow(`SELECT name, sync_status FROM entity_types WHERE id = ?`, "et1").Scan(&name, &status))
	assert.Equal(t, "Engine", name)
	assert.Equal(t, "synced", status)

	cursor, err := r.cursor(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(42), cursor)
}

func TestPull_SendsStoredCursor(t *testing.T) {
	transport := &fakeTransport{pullResp: syncapi.PullResponse{NextCursor: 10}}
	r := newTestReplica(t, transport)

	require.NoError(t, r.Pull(context.Background(), 0))
	require.NoError(t, r.Pull(context.Background(), 0))

	require.Len(t, transport.pullReqs, 2)
	assert.Equal(t, uint64(0), transport.pullReqs[0].CursorSeq)
	assert.Equal(t, uint64(10), transport.pullReqs[1].CursorSeq)
}
