package syncapi

import "context"

// DefaultPullLimit is used when a pull request omits `limit`.
const DefaultPullLimit = 500

// PullRequest is the wire shape of a pull request (spec.md §4.D).
type PullRequest struct {
	CursorSeq uint64 `json:"cursor_seq"`
	Limit     int    `json:"limit,omitempty"`
}

// PullChanges is one table's rows in a pull response, in change_log order.
type PullChanges struct {
	Table string           `json:"table"`
	Rows  []map[string]any `json:"rows"`
}

// PullResponse is the wire shape of a pull response.
type PullResponse struct {
	Changes    []PullChanges `json:"changes"`
	NextCursor uint64        `json:"next_cursor"`
	HasMore    bool          `json:"has_more"`
}

// Pull answers a client's cursor-based pull request.
func (h *Handler) Pull(ctx context.Context, req PullRequest) (PullResponse, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = h.pullDefaultLimit
	}

	if limit <= 0 {
		limit = DefaultPullLimit
	}

	result, err := h.store.QueryPullSince(ctx, req.CursorSeq, limit)
	if err != nil {
		return PullResponse{}, err
	}

	resp := PullResponse{NextCursor: result.NextCursor, HasMore: result.HasMore}

	for _, tc := range result.Changes {
		resp.Changes = append(resp.Changes, PullChanges{Table: tc.Table, Rows: tc.Rows})
	}

	return resp, nil
}
