package server

import (
	"errors"
	"net/http"

	"github.com/railwatch/railwatch/internal/auth"
)

func (s *Server) handleCheckPassword(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"hasPassword": s.passwords.Has()})
}

func (s *Server) handleSetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Password string `json:"password"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	switch err := s.passwords.Set(req.Password); {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
	case errors.Is(err, auth.ErrPasswordSet), errors.Is(err, auth.ErrPasswordTooShort):
		writeError(w, http.StatusBadRequest, errValidation, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, errPersistence, err.Error())
	}
}

func (s *Server) handleVerifyPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Password string `json:"password"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	if !s.passwords.Verify(req.Password) {
		writeError(w, http.StatusUnauthorized, errAuthRequired, "invalid password")
		return
	}
	// Verification does not establish a session; login is a distinct step.
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Password string `json:"password"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	if !s.passwords.Verify(req.Password) {
		writeError(w, http.StatusUnauthorized, errAuthRequired, "invalid password")
		return
	}

	id, err := s.sessions.Create(req.Password)
	if err != nil {
		writeError(w, http.StatusInternalServerError, errPersistence, err.Error())
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "sessionId": id})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(auth.SessionCookieName); err == nil && c.Value != "" {
		if _, err := s.sessions.Destroy(c.Value); err != nil {
			writeError(w, http.StatusInternalServerError, errPersistence, err.Error())
			return
		}
	}
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	_, ok := s.gate.Authenticate(r)
	writeJSON(w, http.StatusOK, map[string]bool{"authenticated": ok})
}
