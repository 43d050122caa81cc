package auth

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/railwatch/railwatch/internal/session"
	"github.com/railwatch/railwatch/internal/store"
)

func newGateFixture(t *testing.T, envPassword string) (*Gate, *session.Store, *Passwords) {
	t.Helper()
	dir := t.TempDir()
	sessions, err := session.NewStore(store.NewFile(filepath.Join(dir, "sessions.json")))
	require.NoError(t, err)
	passwords, err := NewPasswords(envPassword, store.NewFile(filepath.Join(dir, "password.json")))
	require.NoError(t, err)
	return NewGate(sessions, passwords), sessions, passwords
}

func TestCookieChannel(t *testing.T) {
	gate, sessions, _ := newGateFixture(t, "hunter22")
	id, err := sessions.Create("hunter22")
	require.NoError(t, err)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: SessionCookieName, Value: id})

	ident, ok := gate.Authenticate(r)
	require.True(t, ok)
	assert.Equal(t, MethodCookie, ident.Method)
	assert.Equal(t, id, ident.SessionID)
}

func TestCookieChannelUnknownSession(t *testing.T) {
	gate, _, _ := newGateFixture(t, "hunter22")

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "bogus"})

	_, ok := gate.Authenticate(r)
	assert.False(t, ok)
}

func TestBearerChannel(t *testing.T) {
	gate, sessions, _ := newGateFixture(t, "hunter22")
	id, err := sessions.Create("hunter22")
	require.NoError(t, err)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer "+id)

	ident, ok := gate.Authenticate(r)
	require.True(t, ok)
	assert.Equal(t, MethodBearer, ident.Method)
	assert.Equal(t, id, ident.SessionID)
}

func TestPasswordHeaderChannel(t *testing.T) {
	gate, _, _ := newGateFixture(t, "hunter22")

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set(PasswordHeader, "hunter22")

	ident, ok := gate.Authenticate(r)
	require.True(t, ok)
	assert.Equal(t, MethodHeader, ident.Method)

	r2 := httptest.NewRequest(http.MethodGet, "/", nil)
	r2.Header.Set(PasswordHeader, "wrong")
	_, ok = gate.Authenticate(r2)
	assert.False(t, ok)
}

func TestBootstrapWhenNoPasswordConfigured(t *testing.T) {
	gate, _, _ := newGateFixture(t, "")

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	ident, ok := gate.Authenticate(r)
	require.True(t, ok)
	assert.Equal(t, MethodBootstrap, ident.Method)
}

func TestBootstrapClosesOncePasswordIsSet(t *testing.T) {
	gate, _, passwords := newGateFixture(t, "")

	require.NoError(t, passwords.Set("hunter22"))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	_, ok := gate.Authenticate(r)
	assert.False(t, ok, "gate must fail closed once a password exists")
}

func TestCookieWinsOverHeader(t *testing.T) {
	gate, sessions, _ := newGateFixture(t, "hunter22")
	id, err := sessions.Create("hunter22")
	require.NoError(t, err)

	// Both carriers present: evaluation order picks the cookie path. The
	// boolean outcome is the same either way; the method tells them apart.
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: SessionCookieName, Value: id})
	r.Header.Set(PasswordHeader, "hunter22")

	ident, ok := gate.Authenticate(r)
	require.True(t, ok)
	assert.Equal(t, MethodCookie, ident.Method)
}
