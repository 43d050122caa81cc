// Package catalog merges environment-configured and persisted accounts into
// one ordered list.
package catalog

import (
	"errors"
	"fmt"
	"sync"

	"github.com/railwatch/railwatch/internal/store"
)

// Account is a named API token for one remote-platform user.
type Account struct {
	Name  string `json:"name" yaml:"name"`
	Token string `json:"token" yaml:"token"`
}

// Sources of an account entry.
const (
	SourceEnv    = "env"
	SourceServer = "server"
)

// ErrInvalidAccount rejects entries with an empty name or token.
var ErrInvalidAccount = errors.New("account needs a name and a token")

// Catalog is the merged account list. Environment-sourced entries always
// precede persisted ones, and no de-duplication by name happens: if a name
// appears in both sources, both entries are kept.
type Catalog struct {
	mu        sync.Mutex
	env       []Account
	persisted []Account
	file      *store.File
}

// New builds a catalog over the environment-sourced accounts and the
// persisted document.
func New(env []Account, file *store.File) (*Catalog, error) {
	c := &Catalog{
		env:  append([]Account(nil), env...),
		file: file,
	}
	if _, err := file.Load(&c.persisted); err != nil {
		return nil, fmt.Errorf("loading accounts: %w", err)
	}
	return c, nil
}

// All returns the merged list, environment entries first.
func (c *Catalog) All() []Account {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Account, 0, len(c.env)+len(c.persisted))
	out = append(out, c.env...)
	out = append(out, c.persisted...)
	return out
}

// Env returns the environment-sourced subset.
func (c *Catalog) Env() []Account {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Account(nil), c.env...)
}

// Persisted returns the server-managed subset.
func (c *Catalog) Persisted() []Account {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Account(nil), c.persisted...)
}

// Add appends one account to the persisted subset.
func (c *Catalog) Add(acc Account) error {
	if acc.Name == "" || acc.Token == "" {
		return ErrInvalidAccount
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.persisted = append(c.persisted, acc)
	if err := c.file.Save(c.persisted); err != nil {
		c.persisted = c.persisted[:len(c.persisted)-1]
		return fmt.Errorf("persisting accounts: %w", err)
	}
	return nil
}

// RemovePersisted deletes the persisted entry at index, reporting whether
// the index was in range. Indices shift after a delete; callers racing each
// other must tolerate that (no concurrency token is provided).
func (c *Catalog) RemovePersisted(index int) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if index < 0 || index >= len(c.persisted) {
		return false, nil
	}
	removed := c.persisted[index]
	c.persisted = append(c.persisted[:index], c.persisted[index+1:]...)
	if err := c.file.Save(c.persisted); err != nil {
		// Roll the entry back so memory and disk stay in step.
		c.persisted = append(c.persisted[:index], append([]Account{removed}, c.persisted[index:]...)...)
		return true, fmt.Errorf("persisting accounts: %w", err)
	}
	return true, nil
}
