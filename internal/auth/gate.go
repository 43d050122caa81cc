package auth

import (
	"net/http"
	"strings"

	"github.com/railwatch/railwatch/internal/session"
)

// Credential carriers, in evaluation order.
const (
	MethodCookie    = "cookie"
	MethodBearer    = "bearer"
	MethodHeader    = "header"
	MethodBootstrap = "bootstrap"
)

// SessionCookieName is the cookie carrying the session identifier.
const SessionCookieName = "sid"

// PasswordHeader is the legacy shared-secret header, compared by plain value
// equality against the configured admin password.
const PasswordHeader = "X-Admin-Password"

// Identity describes which credential authenticated a request.
type Identity struct {
	Method    string
	SessionID string
}

// extractor inspects one credential carrier. Returns false when the carrier
// is absent or does not resolve.
type extractor func(r *http.Request) (Identity, bool)

// Gate classifies requests as authenticated or not across four coexisting
// credential channels, first match wins:
//
//  1. cookie session (sid)
//  2. bearer session (same table, alternate carrier)
//  3. shared-secret password header
//  4. no-password bootstrap: until an admin password exists anywhere, every
//     request passes, so a fresh install can reach the password-setup call
type Gate struct {
	extractors []extractor
}

// NewGate builds the chain over the given session table and password config.
func NewGate(sessions *session.Store, passwords *Passwords) *Gate {
	return &Gate{extractors: []extractor{
		cookieSession(sessions),
		bearerSession(sessions),
		passwordHeader(passwords),
		bootstrap(passwords),
	}}
}

// Authenticate runs the chain. Fails closed: (Identity{}, false) when no
// channel matches and a password is configured.
func (g *Gate) Authenticate(r *http.Request) (Identity, bool) {
	for _, extract := range g.extractors {
		if id, ok := extract(r); ok {
			return id, true
		}
	}
	return Identity{}, false
}

func cookieSession(sessions *session.Store) extractor {
	return func(r *http.Request) (Identity, bool) {
		c, err := r.Cookie(SessionCookieName)
		if err != nil || c.Value == "" {
			return Identity{}, false
		}
		if _, ok := sessions.Get(c.Value); !ok {
			return Identity{}, false
		}
		return Identity{Method: MethodCookie, SessionID: c.Value}, true
	}
}

func bearerSession(sessions *session.Store) extractor {
	return func(r *http.Request) (Identity, bool) {
		header := r.Header.Get("Authorization")
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || token == "" {
			return Identity{}, false
		}
		if _, ok := sessions.Get(token); !ok {
			return Identity{}, false
		}
		return Identity{Method: MethodBearer, SessionID: token}, true
	}
}

func passwordHeader(passwords *Passwords) extractor {
	return func(r *http.Request) (Identity, bool) {
		candidate := r.Header.Get(PasswordHeader)
		if candidate == "" || !passwords.Verify(candidate) {
			return Identity{}, false
		}
		return Identity{Method: MethodHeader}, true
	}
}

func bootstrap(passwords *Passwords) extractor {
	return func(r *http.Request) (Identity, bool) {
		if passwords.Has() {
			return Identity{}, false
		}
		return Identity{Method: MethodBootstrap}, true
	}
}
