// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/pdiddy/clinibridge/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the clinibridge HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		log := newLogger(zerolog.InfoLevel)

		st, err := openStore(cfg)
		if err != nil {
			log.Warn().Err(err).Msg("store unavailable, audit log and criteria cache disabled")
			st = nil
		} else {
			defer st.Close()
		}

		var audit server.SearchLogger
		if st != nil {
			audit = st
		}

		srv := server.New(
			buildSearcher(cfg, log),
			buildScorer(cfg, log),
			buildExplainer(cfg, st, log),
			audit,
			log,
			cfg.Server,
		)

		go func() {
			if err := srv.Start(); err != nil && err != http.ErrServerClosed {
				log.Fatal().Err(err).Msg("server error")
			}
		}()

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		log.Info().Msg("shutting down server")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			return err
		}
		log.Info().Msg("server stopped")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
