// Package client is the shared API-client layer for the portal's backend
// services. Every service client is configured independently (base address,
// timeout) but runs the exact same outbound mutation, envelope
// normalization, and transport-failure mapping. Centralizing the mapping
// here is deliberate: per-service copies of the 401/403/5xx switch were the
// main source of latent auth-state desync in the portal.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

const defaultTimeout = 10 * time.Second

// TokenSource supplies the current bearer token and caller identity for
// outbound requests. Both lookups must be cheap and concurrency-safe; they
// run on every call.
type TokenSource interface {
	Token() (string, bool)
	Identity() (userID string, ok bool)
}

// UnauthorizedHandler is invoked exactly once per HTTP 401 response, before
// the call fails with ErrUnauthenticated. The application shell subscribes
// to clear the session and navigate to login; the client layer itself never
// navigates.
type UnauthorizedHandler func(ctx context.Context)

// Config holds the per-service client settings.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	// Name identifies the backend service, e.g. "user" or "approval".
	Name string
	// BaseURL is the service's base address, without a trailing slash.
	BaseURL string
	// Timeout bounds each call end to end. Zero means the 10s default.
	Timeout time.Duration
	// SendIdentity attaches the X-User-Id header derived from the current
	// profile when true.
	SendIdentity bool
}

// Client is one backend-service client. All service clients share the same
// request pipeline; only Config differs between them.
//
// Client instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Client struct {
	cfg            Config
	http           *http.Client
	tokens         TokenSource
	onUnauthorized UnauthorizedHandler
}

// New creates a Client for one backend service. tokens and onUnauthorized
// may be nil: a nil TokenSource sends unauthenticated requests, a nil
// handler makes 401 purely informational.
func New(cfg Config, tokens TokenSource, onUnauthorized UnauthorizedHandler) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	return &Client{
		cfg:            cfg,
		http:           &http.Client{Timeout: cfg.Timeout},
		tokens:         tokens,
		onUnauthorized: onUnauthorized,
	}
}

// Name returns the configured service name.
func (c *Client) Name() string { return c.cfg.Name }

// Get issues a GET request and unmarshals the envelope's data payload into
// out. out may be nil when the caller discards the payload.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, out)
}

// Post issues a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, nil, body, out)
}

// Put issues a PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPut, path, nil, body, out)
}

// Delete issues a DELETE request.
func (c *Client) Delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	target := c.cfg.BaseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json;charset=UTF-8")
	req.Header.Set("X-Request-Id", uuid.NewString())

	if c.tokens != nil {
		if token, ok := c.tokens.Token(); ok {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		if c.cfg.SendIdentity {
			if userID, ok := c.tokens.Identity(); ok {
				req.Header.Set("X-User-Id", userID)
			}
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return mapTransportError(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return mapTransportError(err)
	}

	if err := c.mapStatus(ctx, resp.StatusCode, raw); err != nil {
		return err
	}

	data, err := decodeEnvelope(raw)
	if err != nil {
		return err
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: %v", ErrEnvelopeInvalid, err)
	}
	return nil
}

// mapStatus converts a non-2xx HTTP status into the shared error taxonomy.
// A 401 is the single status with a side effect: the registered handler runs
// before the call fails.
func (c *Client) mapStatus(ctx context.Context, status int, body []byte) error {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusUnauthorized:
		if c.onUnauthorized != nil {
			c.onUnauthorized(ctx)
		}
		return ErrUnauthenticated
	case status == http.StatusForbidden:
		return ErrForbidden
	case status == http.StatusNotFound:
		return ErrNotFound
	case status >= 500:
		return fmt.Errorf("%w: status %d", ErrServerError, status)
	default:
		if msg := envelopeMessage(body); msg != "" {
			return NewBusinessError(msg)
		}
		return NewBusinessError(fmt.Sprintf("request failed (%d)", status))
	}
}

func envelopeMessage(body []byte) string {
	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return ""
	}
	return env.Message
}

// mapTransportError distinguishes a deadline expiry (a response never
// arrived in time) from plain connectivity failure (no response at all).
func mapTransportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrNetworkUnreachable, err)
}
