// Package server wires the HTTP API.
//
// DESIGN: Request flow:
//   - middleware: request id -> access log -> panic recovery
//   - auth endpoints are open (login must be reachable pre-session)
//   - data endpoints pass through requireAuth (the four-channel gate)
//
// Every response body is JSON; failures use one envelope shape so clients
// never have to parse a bare-text error.
package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/railwatch/railwatch/internal/auth"
	"github.com/railwatch/railwatch/internal/catalog"
	"github.com/railwatch/railwatch/internal/config"
	"github.com/railwatch/railwatch/internal/railway"
	"github.com/railwatch/railwatch/internal/session"
	"github.com/railwatch/railwatch/internal/usage"
)

// Error envelope types, mapped from the failure taxonomy.
const (
	errAuthRequired = "auth_required"
	errValidation   = "validation_error"
	errUpstream     = "upstream_error"
	errPersistence  = "persistence_error"
	errInternal     = "internal_error"
)

// Server owns the handlers and their collaborators. Construct one at
// startup; nothing here is a package-level singleton.
type Server struct {
	cfg       *config.Config
	sessions  *session.Store
	passwords *auth.Passwords
	gate      *auth.Gate
	accounts  *catalog.Catalog
	client    *railway.Client
	agg       *usage.Aggregator
}

// New assembles the server from its collaborators.
func New(cfg *config.Config, sessions *session.Store, passwords *auth.Passwords, accounts *catalog.Catalog, client *railway.Client, agg *usage.Aggregator) *Server {
	return &Server{
		cfg:       cfg,
		sessions:  sessions,
		passwords: passwords,
		gate:      auth.NewGate(sessions, passwords),
		accounts:  accounts,
		client:    client,
		agg:       agg,
	}
}

// Handler builds the routed, middleware-wrapped handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Auth endpoints.
	mux.HandleFunc("GET /api/check-password", s.handleCheckPassword)
	mux.HandleFunc("POST /api/check-password", s.handleCheckPassword)
	mux.HandleFunc("POST /api/set-password", s.handleSetPassword)
	mux.HandleFunc("POST /api/verify-password", s.handleVerifyPassword)
	mux.HandleFunc("POST /api/login", s.handleLogin)
	mux.HandleFunc("POST /api/logout", s.handleLogout)
	mux.HandleFunc("GET /api/session", s.handleSession)

	// Data endpoints.
	mux.Handle("POST /api/temp-accounts", s.requireAuth(s.handleTempAccounts))
	mux.Handle("POST /api/temp-projects", s.requireAuth(s.handleTempProjects))
	mux.Handle("POST /api/validate-account", s.requireAuth(s.handleValidateAccount))
	mux.Handle("GET /api/server-accounts", s.requireAuth(s.handleListAccounts))
	mux.Handle("POST /api/server-accounts", s.requireAuth(s.handleAddAccount))
	mux.Handle("DELETE /api/server-accounts", s.requireAuth(s.handleDeleteAccount))
	mux.Handle("POST /api/project/rename", s.requireAuth(s.handleProjectRename))
	mux.Handle("POST /api/service/pause", s.requireAuth(s.handleServicePause))
	mux.Handle("POST /api/service/restart", s.requireAuth(s.handleServiceRestart))
	mux.Handle("POST /api/service/logs", s.requireAuth(s.handleServiceLogs))

	return s.withRequestID(s.withAccessLog(s.withRecovery(mux)))
}

// Start blocks on ListenAndServe.
func (s *Server) Start() error {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.cfg.Port),
		Handler:      s.Handler(),
		ReadTimeout:  config.DefaultServerReadTimeout,
		WriteTimeout: config.DefaultServerWriteTimeout,
	}
	return srv.ListenAndServe()
}

// writeJSON writes v with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes the JSON error envelope.
func writeError(w http.ResponseWriter, status int, errType, msg string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]string{"message": msg, "type": errType},
	})
}

// decodeBody parses a bounded JSON request body into v.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, config.MaxRequestBodySize)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, errValidation, "invalid JSON body")
		return false
	}
	return true
}
