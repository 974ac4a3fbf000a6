// ABOUTME: Node API simulator HTTP server: the /api/nodes/ JSON endpoints behind a chi router.
// ABOUTME: Lets the dashboard run end to end against an in-memory fleet instead of real overlay nodes.
package nodeapi

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/2389-research/natdash/api"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// DefaultAddr is the simulator listen address when none is configured.
const DefaultAddr = "127.0.0.1:80"

// ServerConfig holds the configuration for the simulator server.
type ServerConfig struct {
	Addr string // listen address (default: "127.0.0.1:80")
}

// Server serves the node API for a Fleet.
type Server struct {
	fleet  *Fleet
	router chi.Router
	addr   string
}

// NewServer creates a server for fleet. A nil fleet starts empty.
func NewServer(cfg ServerConfig, fleet *Fleet) *Server {
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if fleet == nil {
		fleet = NewFleet()
	}
	s := &Server{
		fleet: fleet,
		addr:  cfg.Addr,
	}
	s.router = s.buildRouter()
	return s
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.addr
}

// Fleet returns the fleet served by s.
func (s *Server) Fleet() *Fleet {
	return s.fleet
}

// ServeHTTP delegates to the chi router, satisfying http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves until ctx is cancelled, then closes the listener.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	go func() {
		<-ctx.Done()
		srv.Close()
	}()

	log.Printf("component=nodeapi action=listen addr=%s", s.addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// buildRouter constructs the chi router with all routes and middleware.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	r.NotFound(http.NotFound)
	r.MethodNotAllowed(http.NotFound)

	r.Route("/api/nodes", func(r chi.Router) {
		r.Get("/", s.handleList)
		r.Post("/", s.handleRegister)

		r.Group(func(r chi.Router) {
			r.Use(s.requireLegalName)
			r.Get("/{name}", s.handleSnapshot)
			r.Post("/{name}", s.handleOperation)
		})
	})

	return r
}

// requireLegalName answers 404 for node paths outside the name charset.
func (s *Server) requireLegalName(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !api.ValidName(chi.URLParam(r, "name")) {
			http.NotFound(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.fleet.Names())
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req api.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid registration: "+err.Error(), http.StatusBadRequest)
		return
	}
	if err := s.fleet.Register(req.Name, req.Port); err != nil {
		writeFleetError(w, r, err)
		return
	}
	log.Printf("component=nodeapi action=register name=%s", req.Name)
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := s.fleet.Snapshot(chi.URLParam(r, "name"))
	if err != nil {
		writeFleetError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// operationRequest is the decode-side view of api.OperationEnvelope.
type operationRequest struct {
	Op   api.OperationKind `json:"op"`
	Data json.RawMessage   `json:"data"`
}

func (s *Server) handleOperation(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	var req operationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid operation: "+err.Error(), http.StatusBadRequest)
		return
	}

	var err error
	switch req.Op {
	case api.OpDirect:
		var d api.DirectData
		if err = decodeData(req.Data, &d); err == nil {
			err = s.fleet.Direct(name, d.Addr)
		}
	case api.OpNat:
		var d api.NatData
		if err = decodeData(req.Data, &d); err == nil {
			err = s.fleet.Nat(name, d.Dest, d.Local)
		}
	case api.OpChat:
		var d api.ChatData
		if err = decodeData(req.Data, &d); err == nil {
			err = s.fleet.Chat(name, d.Dest, d.Text)
		}
	default:
		http.Error(w, "unknown op "+string(req.Op), http.StatusBadRequest)
		return
	}

	var bad *dataError
	if errors.As(err, &bad) {
		http.Error(w, bad.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		writeFleetError(w, r, err)
		return
	}
	log.Printf("component=nodeapi action=%s node=%s", req.Op, name)
	w.WriteHeader(http.StatusOK)
}

// dataError marks an undecodable operation payload.
type dataError struct {
	err error
}

func (e *dataError) Error() string { return "invalid operation data: " + e.err.Error() }
func (e *dataError) Unwrap() error { return e.err }

func decodeData(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		return &dataError{err: errors.New("missing data")}
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return &dataError{err: err}
	}
	return nil
}

// writeFleetError maps Fleet errors to HTTP status codes.
func writeFleetError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrNodeNotFound):
		http.NotFound(w, r)
	case errors.Is(err, api.ErrIllegalName),
		errors.Is(err, ErrDuplicateName),
		errors.Is(err, ErrPortInUse),
		errors.Is(err, ErrInvalidPort):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("component=nodeapi action=encode_failed err=%v", err)
	}
}
