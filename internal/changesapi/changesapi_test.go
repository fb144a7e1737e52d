package changesapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Valstan/MatricaRMZ-sub006/common/errors"
	"github.com/Valstan/MatricaRMZ-sub006/pkg/mmodel"
)

type fakeGate struct {
	applyErr  error
	rejectErr error
	applied   string
	rejected  string
}

func (f *fakeGate) Apply(_ context.Context, id string, _ mmodel.Actor, _ string) error {
	f.applied = id
	return f.applyErr
}

func (f *fakeGate) Reject(_ context.Context, id string, _ mmodel.Actor, _ string) error {
	f.rejected = id
	return f.rejectErr
}

type fakeNoise struct {
	suppress bool
}

func (f *fakeNoise) SuppressNoise(_ string, _, _ map[string]any) bool { return f.suppress }

func newTestApp(h *Handler) *fiber.App {
	app := fiber.New()
	h.RegisterRoutes(app)

	return app
}

func TestHandleApply_DelegatesIDFromPathToGate(t *testing.T) {
	g := &fakeGate{}
	h := &Handler{gate: g, store: &fakeNoise{}}
	app := newTestApp(h)

	req := httptest.NewRequest(http.MethodPost, "/changes/cr-123/apply", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "cr-123", g.applied)
}

func TestHandleReject_DelegatesIDFromPathToGate(t *testing.T) {
	g := &fakeGate{}
	h := &Handler{gate: g, store: &fakeNoise{}}
	app := newTestApp(h)

	req := httptest.NewRequest(http.MethodPost, "/changes/cr-456/reject", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "cr-456", g.rejected)
}

func TestList_RejectsUnknownStatus(t *testing.T) {
	h := &Handler{store: &fakeNoise{}}

	_, err := h.List(context.Background(), ListParams{Status: "bogus"})
	require.Error(t, err)
	assert.IsType(t, apperrors.ValidationError{}, err)
}

func TestHandleApply_GateErrorMapsToHTTPStatus(t *testing.T) {
	g := &fakeGate{applyErr: apperrors.StateConflictError{Reason: "not_pending", Message: "already decided"}}
	h := &Handler{gate: g, store: &fakeNoise{}}
	app := newTestApp(h)

	req := httptest.NewRequest(http.MethodPost, "/changes/cr-789/apply", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
}
