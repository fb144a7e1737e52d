package replica

import (
	"context"

	"github.com/Valstan/MatricaRMZ-sub006/internal/syncapi"
)

// Transport is the network boundary between a Replica and the
// authoritative server. Production wiring implements this over HTTP
// (cmd/replicad); tests substitute an in-process fake.
type Transport interface {
	Push(ctx context.Context, req syncapi.PushRequest) (syncapi.PushResponse, error)
	Pull(ctx context.Context, req syncapi.PullRequest) (syncapi.PullResponse, error)
}
