// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/pdiddy/clinibridge/internal/ai"
	"github.com/pdiddy/clinibridge/internal/eligibility"
	"github.com/pdiddy/clinibridge/internal/match"
	"github.com/pdiddy/clinibridge/internal/registry"
	"github.com/pdiddy/clinibridge/internal/store"
	"github.com/pdiddy/clinibridge/internal/trials"
	"github.com/pdiddy/clinibridge/pkg/types"
)

// loadConfig builds the runtime configuration from viper (config file and
// CLINIBRIDGE_* environment), with hard defaults for anything unset.
func loadConfig() types.Config {
	v := viper.GetViper()

	v.SetDefault("search.timeout", 15*time.Second)
	v.SetDefault("search.location_timeout", 25*time.Second)
	v.SetDefault("search.user_agent", "clinibridge/"+version)
	v.SetDefault("search.page_size", 10)
	v.SetDefault("search.cache_ttl", 5*time.Minute)
	v.SetDefault("search.cache_size", 256)
	v.SetDefault("search.registry_rps", 2.0)
	v.SetDefault("ai.provider", "claude")
	v.SetDefault("ai.model", "claude-sonnet-4-5")
	v.SetDefault("eligibility.context_limit", 8000)
	v.SetDefault("store.path", "clinibridge.db")
	v.SetDefault("server.addr", ":8080")

	aiCfg := types.AIConfig{
		Provider: v.GetString("ai.provider"),
		Model:    v.GetString("ai.model"),
		APIKey:   v.GetString("ai.api_key"),
	}
	if aiCfg.APIKey == "" {
		aiCfg.APIKey = secretDefault(secretKeyFor(aiCfg.Provider), "")
	}

	return types.Config{
		Search: types.SearchConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:         v.GetDuration("search.timeout"),
				LocationTimeout: v.GetDuration("search.location_timeout"),
				UserAgent:       v.GetString("search.user_agent"),
			},
			PageSize:    v.GetInt("search.page_size"),
			CacheTTL:    v.GetDuration("search.cache_ttl"),
			CacheSize:   v.GetInt("search.cache_size"),
			RegistryRPS: v.GetFloat64("search.registry_rps"),
		},
		Match: types.MatchConfig{AIConfig: aiCfg},
		Eligibility: types.EligibilityConfig{
			AIConfig:     aiCfg,
			ContextLimit: v.GetInt("eligibility.context_limit"),
		},
		Store:  types.StoreConfig{Path: v.GetString("store.path")},
		Server: types.ServerConfig{Addr: v.GetString("server.addr")},
	}
}

// secretKeyFor maps an AI provider to its .secrets/ file name.
func secretKeyFor(provider string) string {
	if provider == "gemini" {
		return "gemini-api-key"
	}
	return "anthropic-api-key"
}

// newLogger returns the process logger. CLI commands keep it quiet; serve
// raises the level.
func newLogger(level zerolog.Level) zerolog.Logger {
	return zerolog.New(zerolog.NewConsoleWriter()).Level(level).With().Timestamp().Logger()
}

// buildSearcher wires the registry client and search orchestrator.
func buildSearcher(cfg types.Config, log zerolog.Logger) *trials.Searcher {
	client := registry.NewClient(cfg.Search.UserAgent, cfg.Search.RegistryRPS)
	return trials.NewSearcher(client, log, cfg.Search)
}

// buildBackend returns the configured AI backend, or nil when no API key
// is available. A nil backend leaves trials unscored and eligibility on
// the fallback path.
func buildBackend(aiCfg types.AIConfig, log zerolog.Logger) ai.Backend {
	if aiCfg.APIKey == "" {
		log.Debug().Str("provider", aiCfg.Provider).Msg("no AI API key configured")
		return nil
	}
	backend, err := ai.New(aiCfg)
	if err != nil {
		log.Warn().Err(err).Msg("AI backend unavailable")
		return nil
	}
	return backend
}

// buildScorer returns the trial scorer, which tolerates a nil backend.
func buildScorer(cfg types.Config, log zerolog.Logger) *match.Scorer {
	return &match.Scorer{Backend: buildBackend(cfg.Match.AIConfig, log), Log: log}
}

// buildExplainer wires the eligibility explainer on top of the registry
// client and the store-backed raw criteria cache.
func buildExplainer(cfg types.Config, st *store.Store, log zerolog.Logger) *eligibility.Explainer {
	client := registry.NewClient(cfg.Search.UserAgent, cfg.Search.RegistryRPS)
	var cache eligibility.RawCache
	if st != nil {
		cache = st
	}
	return eligibility.NewExplainer(client, cache, buildBackend(cfg.Eligibility.AIConfig, log), log, cfg.Eligibility)
}

// openStore opens the SQLite store at the configured path.
func openStore(cfg types.Config) (*store.Store, error) {
	st, err := store.Open(cfg.Store.Path)
	if err != nil {
		return nil, fmt.Errorf("opening store at %s: %w", cfg.Store.Path, err)
	}
	return st, nil
}
