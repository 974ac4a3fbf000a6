// ABOUTME: Tests for the simulator chi router covering the four node API endpoints and their error paths.
// ABOUTME: Also runs the api.Client against an httptest server to exercise the full round trip.
package nodeapi

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/2389-research/natdash/api"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	return NewServer(ServerConfig{}, NewFleet(WithClock(func() time.Time { return fixedTime })))
}

func do(t *testing.T, srv http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func TestNewServerDefaults(t *testing.T) {
	srv := NewServer(ServerConfig{}, nil)
	if srv.Addr() != DefaultAddr {
		t.Errorf("Addr() = %q, want %q", srv.Addr(), DefaultAddr)
	}
	if srv.Fleet() == nil {
		t.Error("expected an empty fleet")
	}
}

func TestServerListEmpty(t *testing.T) {
	srv := newTestServer(t)
	rec := do(t, srv, http.MethodGet, "/api/nodes/", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != "[]" {
		t.Errorf("body = %q, want []", got)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
}

func TestServerRegisterAndList(t *testing.T) {
	srv := newTestServer(t)
	for _, body := range []string{`{"name":"beta","port":9002}`, `{"name":"alpha","port":9001}`} {
		if rec := do(t, srv, http.MethodPost, "/api/nodes/", body); rec.Code != http.StatusOK {
			t.Fatalf("register %s: status %d body %q", body, rec.Code, rec.Body.String())
		}
	}

	rec := do(t, srv, http.MethodGet, "/api/nodes/", "")
	var names []string
	if err := json.NewDecoder(rec.Body).Decode(&names); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !reflect.DeepEqual(names, []string{"alpha", "beta"}) {
		t.Errorf("names = %v, want sorted [alpha beta]", names)
	}
}

func TestServerRegisterErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "duplicate name", body: `{"name":"A","port":9100}`},
		{name: "port in use", body: `{"name":"B","port":9001}`},
		{name: "illegal name", body: `{"name":"a-b","port":9100}`},
		{name: "malformed json", body: `{"name":`},
		{name: "port not a number", body: `{"name":"B","port":"x"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t)
			do(t, srv, http.MethodPost, "/api/nodes/", `{"name":"A","port":9001}`)
			rec := do(t, srv, http.MethodPost, "/api/nodes/", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("expected status 400, got %d (%q)", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestServerSnapshot(t *testing.T) {
	srv := newTestServer(t)
	do(t, srv, http.MethodPost, "/api/nodes/", `{"name":"A","port":9001}`)

	rec := do(t, srv, http.MethodGet, "/api/nodes/A", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	var raw map[string]json.RawMessage
	if err := json.NewDecoder(rec.Body).Decode(&raw); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	for _, key := range []string{"local", "neigh", "addr", "routing", "chat"} {
		if _, ok := raw[key]; !ok {
			t.Errorf("snapshot missing key %q", key)
		}
	}
	if string(raw["local"]) != `"0.0.0.0:9001"` {
		t.Errorf("local = %s", raw["local"])
	}
}

func TestServerNotFound(t *testing.T) {
	srv := newTestServer(t)
	tests := []struct {
		method string
		path   string
		body   string
	}{
		{http.MethodGet, "/api/nodes/ghost", ""},
		{http.MethodPost, "/api/nodes/ghost", `{"op":"chat","data":{"dest":"A","text":"hi"}}`},
		{http.MethodGet, "/api/nodes/bad-name", ""},
		{http.MethodPost, "/api/nodes/bad-name", `{"op":"chat","data":{}}`},
		{http.MethodDelete, "/api/nodes/", ""},
		{http.MethodGet, "/elsewhere", ""},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := do(t, srv, tt.method, tt.path, tt.body)
			if rec.Code != http.StatusNotFound {
				t.Errorf("expected status 404, got %d", rec.Code)
			}
		})
	}
}

func TestServerOperations(t *testing.T) {
	srv := newTestServer(t)
	do(t, srv, http.MethodPost, "/api/nodes/", `{"name":"A","port":9001}`)
	do(t, srv, http.MethodPost, "/api/nodes/", `{"name":"B","port":9002}`)
	do(t, srv, http.MethodPost, "/api/nodes/", `{"name":"C","port":9003}`)

	steps := []struct {
		node string
		body string
	}{
		{"A", `{"op":"direct","data":{"addr":"127.0.0.1:9002"}}`},
		{"B", `{"op":"direct","data":{"addr":"127.0.0.1:9003"}}`},
		{"A", `{"op":"nat","data":{"dest":"C"}}`},
		{"A", `{"op":"chat","data":{"dest":"C","text":"hi"}}`},
	}
	for _, s := range steps {
		if rec := do(t, srv, http.MethodPost, "/api/nodes/"+s.node, s.body); rec.Code != http.StatusOK {
			t.Fatalf("%s %s: status %d body %q", s.node, s.body, rec.Code, rec.Body.String())
		}
	}

	snapA, _ := srv.Fleet().Snapshot("A")
	if snapA.Routing["C"] != "C" {
		t.Errorf("A routes C via %q after nat, want direct", snapA.Routing["C"])
	}
	snapC, _ := srv.Fleet().Snapshot("C")
	if len(snapC.Chat) != 1 || snapC.Chat[0].Text != "hi" || snapC.Chat[0].Source != "A" {
		t.Errorf("C chat = %v", snapC.Chat)
	}
}

func TestServerOperationErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "unknown op", body: `{"op":"teleport","data":{}}`},
		{name: "malformed envelope", body: `not json`},
		{name: "missing data", body: `{"op":"chat"}`},
		{name: "bad data type", body: `{"op":"direct","data":{"addr":5}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t)
			do(t, srv, http.MethodPost, "/api/nodes/", `{"name":"A","port":9001}`)
			rec := do(t, srv, http.MethodPost, "/api/nodes/A", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("expected status 400, got %d (%q)", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestServerRequestLogFormat(t *testing.T) {
	var buf bytes.Buffer
	prev := log.Writer()
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(prev) })

	srv := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/nodes/", nil)
	req.Header.Set(api.RequestIDHeader, "01HZX")
	srv.ServeHTTP(httptest.NewRecorder(), req)

	line := buf.String()
	for _, want := range []string{"web request", "id=01HZX", "method=GET", "path=/api/nodes/", "status=200"} {
		if !strings.Contains(line, want) {
			t.Errorf("log line %q missing %q", line, want)
		}
	}
}

func TestServerWithAPIClient(t *testing.T) {
	ts := httptest.NewServer(newTestServer(t))
	defer ts.Close()

	ctx := context.Background()
	client := api.NewClient(ts.URL)

	port := 9001
	if err := client.RegisterNode(ctx, api.RegisterRequest{Name: "A", Port: &port}); err != nil {
		t.Fatalf("RegisterNode: %v", err)
	}
	if err := client.RegisterNode(ctx, api.RegisterRequest{Name: "B", Port: nil}); err != nil {
		t.Fatalf("RegisterNode with null port: %v", err)
	}
	if err := client.RegisterNode(ctx, api.RegisterRequest{Name: "A", Port: &port}); err == nil {
		t.Error("expected duplicate registration to fail")
	}

	names, err := client.ListNodes(ctx)
	if err != nil {
		t.Fatalf("ListNodes: %v", err)
	}
	if !reflect.DeepEqual(names, []string{"A", "B"}) {
		t.Errorf("names = %v", names)
	}

	if err := client.Send(ctx, "B", api.Direct("127.0.0.1:9001")); err != nil {
		t.Fatalf("Send direct: %v", err)
	}
	if err := client.Send(ctx, "B", api.Chat("A", "hello")); err != nil {
		t.Fatalf("Send chat: %v", err)
	}

	snap, err := client.Snapshot(ctx, "A")
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if snap.Neighbors["B"] != "127.0.0.1:49152" {
		t.Errorf("A neighbors = %v", snap.Neighbors)
	}
	want := []api.ChatMessage{{Text: "hello", Source: "B", Time: "2026-03-01T12:00:00Z"}}
	if !reflect.DeepEqual(snap.Chat, want) {
		t.Errorf("A chat = %v, want %v", snap.Chat, want)
	}

	if _, err := client.Snapshot(ctx, "ghost"); err == nil {
		t.Error("expected an error for an unknown node")
	}
}
