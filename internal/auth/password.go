// Package auth decides whether inbound requests are authenticated.
//
// Two pieces: Passwords manages the admin password (environment channel plus
// a persisted record; the environment always wins), and Gate evaluates the
// ordered credential chain on each request.
package auth

import (
	"errors"
	"fmt"
	"sync"

	"github.com/railwatch/railwatch/internal/store"
)

// MinPasswordLength is the floor for a newly configured admin password.
const MinPasswordLength = 6

var (
	// ErrPasswordSet means an admin password is already configured through
	// either channel; setup is unavailable.
	ErrPasswordSet = errors.New("password already set")
	// ErrPasswordTooShort rejects setup candidates below MinPasswordLength.
	ErrPasswordTooShort = fmt.Errorf("password must be at least %d characters", MinPasswordLength)
)

type passwordRecord struct {
	Password string `json:"password"`
}

// Passwords holds the configured admin password. The value from the
// environment is immutable and takes precedence over the persisted record,
// making Set permanently unavailable once ADMIN_PASSWORD is present.
type Passwords struct {
	mu     sync.RWMutex
	env    string
	stored string
	file   *store.File
}

// NewPasswords loads the persisted record, if any. env is the value of the
// ADMIN_PASSWORD environment variable (empty when unset).
func NewPasswords(env string, file *store.File) (*Passwords, error) {
	p := &Passwords{env: env, file: file}
	var rec passwordRecord
	found, err := file.Load(&rec)
	if err != nil {
		return nil, fmt.Errorf("loading password record: %w", err)
	}
	if found {
		p.stored = rec.Password
	}
	return p, nil
}

// Has reports whether an admin password is configured through any channel.
func (p *Passwords) Has() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.env != "" || p.stored != ""
}

// Set configures the admin password once. Rejected when either channel is
// already populated or the candidate is too short.
func (p *Passwords) Set(password string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.env != "" || p.stored != "" {
		return ErrPasswordSet
	}
	if len(password) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	if err := p.file.Save(passwordRecord{Password: password}); err != nil {
		return fmt.Errorf("persisting password: %w", err)
	}
	p.stored = password
	return nil
}

// Verify compares candidate against the configured password by plain value
// equality. Always false when no password is configured.
func (p *Passwords) Verify(candidate string) bool {
	current, ok := p.current()
	return ok && candidate == current
}

func (p *Passwords) current() (string, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.env != "" {
		return p.env, true
	}
	if p.stored != "" {
		return p.stored, true
	}
	return "", false
}
