package main

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/robalobadob/mastermind/internal/database"
	"github.com/robalobadob/mastermind/internal/game"
	"github.com/robalobadob/mastermind/internal/httpserver"
	"github.com/robalobadob/mastermind/internal/i18n"
	"github.com/robalobadob/mastermind/internal/store"
)

var (
	flagPort   string
	flagDBPath string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the JSON HTTP API",
	Long: `Start the HTTP server. Each POST /game/new creates an independent
session; rounds, accounts and daily results are stored in SQLite.

Configuration comes from the environment (and .env); flags override it.

Examples:
  mastermind serve
  mastermind serve --port 8080 --db ./mastermind.db`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagPort, "port", "", "Listen port (default: PORT or 5175)")
	serveCmd.Flags().StringVar(&flagDBPath, "db", "", "Path to SQLite database (default: DATABASE_PATH)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	if flagPort != "" {
		cfg.Port = flagPort
	}
	if flagDBPath != "" {
		cfg.DatabasePath = flagDBPath
	}

	db, err := database.OpenAndMigrate(context.Background(), cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	sessions, err := store.New(cfg.SessionCacheSize)
	if err != nil {
		return err
	}
	cat, err := i18n.Load(cfg.DefaultLocale)
	if err != nil {
		return err
	}

	opts := httpserver.Options{
		Config:   cfg,
		Catalog:  cat,
		Sessions: sessions,
		DB:       db,
	}
	if flagSeed != 0 {
		// Session n gets seed+n so secrets are reproducible across restarts.
		var n atomic.Uint64
		opts.NewSource = func() game.Source { return game.NewSeededSource(flagSeed + n.Add(1) - 1) }
		log.Warn().Uint64("seed", flagSeed).Msg("using a fixed RNG seed; secrets are predictable")
	}
	srv := httpserver.New(opts)

	log.Info().Str("port", cfg.Port).Str("db", cfg.DatabasePath).Msg("starting mastermind server")
	if err := srv.Start(":" + cfg.Port); err != nil {
		log.Error().Err(err).Msg("server exited")
		return err
	}
	return nil
}
