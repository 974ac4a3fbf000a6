// ABOUTME: Thin JSON HTTP client for the node API with one method per endpoint.
// ABOUTME: Stamps each request with a ULID request ID and logs method, path, status, and duration.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// DefaultTimeout bounds a single request when no other timeout is configured.
const DefaultTimeout = 10 * time.Second

// nodesPath is the fleet collection endpoint; node endpoints hang off it.
const nodesPath = "/api/nodes/"

// RequestIDHeader carries the per-request ULID to the node API.
const RequestIDHeader = "X-Request-Id"

// Client talks to the node API. It is safe for concurrent use; overlapping
// requests are independent and never cancel each other.
type Client struct {
	baseURL string
	http    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout sets the per-request timeout. Non-positive values are ignored.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// NewClient creates a client for the given dashboard origin (e.g. http://localhost:80).
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the origin the client was created with, without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// NodePath returns the API path of a single node. The name is not checked;
// an empty name yields the fleet collection path.
func NodePath(name string) string {
	return nodesPath + url.PathEscape(name)
}

// ListNodes fetches the names of all registered nodes.
func (c *Client) ListNodes(ctx context.Context) ([]string, error) {
	var names []string
	if err := c.do(ctx, http.MethodGet, nodesPath, nil, &names); err != nil {
		return nil, fmt.Errorf("list nodes: %w", err)
	}
	return names, nil
}

// RegisterNode asks the node host to start a node. The response body is ignored.
func (c *Client) RegisterNode(ctx context.Context, req RegisterRequest) error {
	if err := c.do(ctx, http.MethodPost, nodesPath, req, nil); err != nil {
		return fmt.Errorf("register node %s: %w", req.Name, err)
	}
	return nil
}

// Snapshot fetches the composite state of one node.
func (c *Client) Snapshot(ctx context.Context, name string) (NodeSnapshot, error) {
	var snap NodeSnapshot
	if err := c.do(ctx, http.MethodGet, NodePath(name), nil, &snap); err != nil {
		return NodeSnapshot{}, fmt.Errorf("fetch node %s: %w", name, err)
	}
	return snap, nil
}

// Send POSTs an operation envelope to a node. Only success or failure is
// reported; the node's response body is ignored.
func (c *Client) Send(ctx context.Context, name string, env OperationEnvelope) error {
	if err := c.do(ctx, http.MethodPost, NodePath(name), env, nil); err != nil {
		return fmt.Errorf("send %s to node %s: %w", env.Op, name, err)
	}
	return nil
}

// do performs one request. A nil body sends no payload; a nil out discards
// the response body after the status check.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	id := ulid.Make().String()
	req.Header.Set(RequestIDHeader, id)

	start := time.Now()
	res, err := c.http.Do(req)
	if err != nil {
		log.Printf("api request id=%s method=%s path=%s error=%q duration=%s",
			id, method, path, err, time.Since(start).Round(time.Microsecond))
		return err
	}
	defer res.Body.Close()

	log.Printf("api request id=%s method=%s path=%s status=%d duration=%s",
		id, method, path, res.StatusCode, time.Since(start).Round(time.Microsecond))

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		data, _ := io.ReadAll(res.Body)
		msg := strings.TrimSpace(string(data))
		if msg != "" {
			return fmt.Errorf("request failed: %s: %s", res.Status, msg)
		}
		return fmt.Errorf("request failed: %s", res.Status)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, res.Body)
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
