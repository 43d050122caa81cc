// Package config - defaults.go centralizes default values and limits.
package config

import "time"

// DefaultPort is the HTTP listen port.
const DefaultPort = 3000

// DefaultDataDir holds the three persisted JSON documents.
const DefaultDataDir = "./data"

// Persisted document names under the data dir.
const (
	SessionsFile = "sessions.json"
	AccountsFile = "accounts.json"
	PasswordFile = "password.json"
)

// DefaultServerReadTimeout bounds reading a request.
const DefaultServerReadTimeout = 15 * time.Second

// DefaultServerWriteTimeout must exceed the upstream 10s call ceiling so a
// slow batch can still be marshaled out.
const DefaultServerWriteTimeout = 60 * time.Second

// MaxRequestBodySize caps inbound JSON bodies (1MB).
const MaxRequestBodySize = 1 << 20
