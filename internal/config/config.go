// Package config assembles runtime configuration from the environment and
// an optional YAML file.
//
// Environment variables:
//   - PORT:             listen port (default 3000)
//   - DATA_DIR:         persisted-state directory (default ./data)
//   - ADMIN_PASSWORD:   admin password; when set, password setup over the
//     API is permanently unavailable
//   - RAILWAY_ACCOUNTS: comma-separated name:token pairs
//   - RAILWAY_API_URL:  GraphQL endpoint override
//   - RAILWATCH_CONFIG: path to a YAML file (port, dataDir, accounts)
//   - LOG_LEVEL:        zerolog level name (default info)
//
// Environment accounts precede file accounts; both count as
// environment-configured and sort ahead of server-managed ones.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/railwatch/railwatch/internal/catalog"
)

// Config is the assembled runtime configuration.
type Config struct {
	Port          int
	DataDir       string
	AdminPassword string
	UpstreamURL   string
	LogLevel      string
	Accounts      []catalog.Account
}

type fileConfig struct {
	Port     int               `yaml:"port"`
	DataDir  string            `yaml:"dataDir"`
	Accounts []catalog.Account `yaml:"accounts"`
}

// Load reads configuration. The optional YAML file fills gaps the
// environment leaves; explicit environment values win.
func Load() (*Config, error) {
	cfg := &Config{
		Port:          DefaultPort,
		DataDir:       DefaultDataDir,
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		UpstreamURL:   os.Getenv("RAILWAY_API_URL"),
		LogLevel:      os.Getenv("LOG_LEVEL"),
	}

	var fromFile fileConfig
	if path := os.Getenv("RAILWATCH_CONFIG"); path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(b, &fromFile); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
		if fromFile.Port != 0 {
			cfg.Port = fromFile.Port
		}
		if fromFile.DataDir != "" {
			cfg.DataDir = fromFile.DataDir
		}
	}

	if raw := os.Getenv("PORT"); raw != "" {
		port, err := strconv.Atoi(raw)
		if err != nil || port <= 0 || port > 65535 {
			return nil, fmt.Errorf("invalid PORT %q", raw)
		}
		cfg.Port = port
	}
	if dir := os.Getenv("DATA_DIR"); dir != "" {
		cfg.DataDir = dir
	}

	envAccounts, err := ParseAccounts(os.Getenv("RAILWAY_ACCOUNTS"))
	if err != nil {
		return nil, err
	}
	cfg.Accounts = append(envAccounts, fromFile.Accounts...)

	return cfg, nil
}

// ParseAccounts parses comma-separated name:token pairs. Empty input yields
// an empty list.
func ParseAccounts(raw string) ([]catalog.Account, error) {
	accounts := []catalog.Account{}
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		name, token, found := strings.Cut(pair, ":")
		if !found || name == "" || token == "" {
			return nil, fmt.Errorf("invalid RAILWAY_ACCOUNTS entry %q (want name:token)", pair)
		}
		accounts = append(accounts, catalog.Account{
			Name:  strings.TrimSpace(name),
			Token: strings.TrimSpace(token),
		})
	}
	return accounts, nil
}
