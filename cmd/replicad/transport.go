package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/Valstan/MatricaRMZ-sub006/internal/syncapi"
)

// httpTransport implements replica.Transport over cmd/syncd's HTTP
// surface, the network boundary replica.Transport documents as
// "production wiring implements this over HTTP".
type httpTransport struct {
	baseURL string
	token   string
	client  *http.Client
}

func newHTTPTransport(baseURL, token string) *httpTransport {
	return &httpTransport{
		baseURL: baseURL,
		token:   token,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (t *httpTransport) Push(ctx context.Context, req syncapi.PushRequest) (syncapi.PushResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return syncapi.PushResponse{}, fmt.Errorf("marshal push request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+"/sync/push", bytes.NewReader(body))
	if err != nil {
		return syncapi.PushResponse{}, err
	}

	httpReq.Header.Set("Content-Type", "application/json")
	t.authorize(httpReq)

	var resp syncapi.PushResponse
	if err := t.do(httpReq, &resp); err != nil {
		return syncapi.PushResponse{}, err
	}

	return resp, nil
}

func (t *httpTransport) Pull(ctx context.Context, req syncapi.PullRequest) (syncapi.PullResponse, error) {
	q := url.Values{}
	q.Set("cursor_seq", strconv.FormatUint(req.CursorSeq, 10))

	if req.Limit > 0 {
		q.Set("limit", strconv.Itoa(req.Limit))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, t.baseURL+"/sync/pull?"+q.Encode(), nil)
	if err != nil {
		return syncapi.PullResponse{}, err
	}

	t.authorize(httpReq)

	var resp syncapi.PullResponse
	if err := t.do(httpReq, &resp); err != nil {
		return syncapi.PullResponse{}, err
	}

	return resp, nil
}

func (t *httpTransport) authorize(req *http.Request) {
	if t.token != "" {
		req.Header.Set("Authorization", "Bearer "+t.token)
	}
}

func (t *httpTransport) do(req *http.Request, out any) error {
	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Title   string `json:"title"`
			Message string `json:"message"`
		}

		_ = json.NewDecoder(resp.Body).Decode(&apiErr)

		return fmt.Errorf("%s %s: %d %s: %s", req.Method, req.URL.Path, resp.StatusCode, apiErr.Title, apiErr.Message)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
