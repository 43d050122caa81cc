// railwatch monitors multiple Railway accounts: aggregated usage and
// billing, plus pause/restart/rename controls, behind a session-
// authenticated JSON API.
package main

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/railwatch/railwatch/internal/auth"
	"github.com/railwatch/railwatch/internal/catalog"
	"github.com/railwatch/railwatch/internal/config"
	"github.com/railwatch/railwatch/internal/railway"
	"github.com/railwatch/railwatch/internal/server"
	"github.com/railwatch/railwatch/internal/session"
	"github.com/railwatch/railwatch/internal/store"
	"github.com/railwatch/railwatch/internal/usage"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("loading configuration")
	}
	setupLogging(cfg.LogLevel)

	sessions, err := session.NewStore(store.NewFile(filepath.Join(cfg.DataDir, config.SessionsFile)))
	if err != nil {
		log.Fatal().Err(err).Msg("loading session store")
	}
	passwords, err := auth.NewPasswords(cfg.AdminPassword, store.NewFile(filepath.Join(cfg.DataDir, config.PasswordFile)))
	if err != nil {
		log.Fatal().Err(err).Msg("loading password record")
	}
	accounts, err := catalog.New(cfg.Accounts, store.NewFile(filepath.Join(cfg.DataDir, config.AccountsFile)))
	if err != nil {
		log.Fatal().Err(err).Msg("loading account catalog")
	}

	client := railway.NewClient(cfg.UpstreamURL)
	aggregator := usage.New(client)
	srv := server.New(cfg, sessions, passwords, accounts, client, aggregator)

	log.Info().
		Int("port", cfg.Port).
		Str("data_dir", cfg.DataDir).
		Int("env_accounts", len(cfg.Accounts)).
		Bool("password_configured", passwords.Has()).
		Msg("railwatch listening")

	if err := srv.Start(); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func setupLogging(level string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	log.Logger = log.Output(os.Stderr).Level(lvl)
}
