package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"study-client/internal/logger"
)

// Tracker receives lifecycle bookkeeping for every remote call.
type Tracker interface {
	Begin()
	End()
}

// SessionProvider supplies the bearer credential of the current session.
type SessionProvider interface {
	AccessToken(ctx context.Context) (string, error)
}

// Gateway is the single path for calls to the remote API.
type Gateway struct {
	baseURL  string
	client   *http.Client
	tracker  Tracker
	sessions SessionProvider
	log      *logger.Logger
}

// New constructs a gateway for baseURL. A zero timeout leaves calls unbounded;
// sessions may be nil for anonymous use.
func New(baseURL string, timeout time.Duration, tracker Tracker, sessions SessionProvider, log *logger.Logger) *Gateway {
	return &Gateway{
		baseURL:  strings.TrimRight(baseURL, "/"),
		client:   &http.Client{Timeout: timeout},
		tracker:  tracker,
		sessions: sessions,
		log:      log.With("component", "Gateway"),
	}
}

// Timeout is the per-call limit; zero means calls are never cut short.
func (g *Gateway) Timeout() time.Duration {
	return g.client.Timeout
}

// Do performs one call. body, when non-nil, is sent as JSON; out, when non-nil,
// receives the decoded 2xx response. The tracker sees exactly one Begin/End pair.
func (g *Gateway) Do(ctx context.Context, method, path string, body, out any) error {
	g.tracker.Begin()
	defer g.tracker.End()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, reader)
	if err != nil {
		return &TransportError{Method: method, Path: path, Err: err}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())
	if token := g.accessToken(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return &TransportError{Method: method, Path: path, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Method: method, Path: path, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeHTTPError(resp.StatusCode, data)
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: %s %s: %v", ErrDecode, method, path, err)
	}
	return nil
}

// accessToken never fails the call: the server decides what an anonymous
// request may do.
func (g *Gateway) accessToken(ctx context.Context) string {
	if g.sessions == nil {
		return ""
	}
	token, err := g.sessions.AccessToken(ctx)
	if err != nil {
		g.log.Warn("failed to get session, continuing without token", "error", err)
		return ""
	}
	return token
}
