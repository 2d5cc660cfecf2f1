// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package trials composes the registry client, result cache, and scorer
// into the trial search pipeline.
// See docs/ARCHITECTURE.md § Trial Search.
package trials

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/pdiddy/clinibridge/internal/httputil"
	"github.com/pdiddy/clinibridge/internal/registry"
	"github.com/pdiddy/clinibridge/pkg/types"
)

// User-facing failure messages. Every failure path degrades to an Output
// carrying one of these; Search never returns an error.
const (
	msgBadShape  = "The trial registry returned data in an unexpected format. Please try again later."
	msgRateLimit = "The trial registry is rate limiting requests. Please wait a moment and try again."
	msgTimeout   = "The trial registry took too long to respond. Please try a narrower search."
	msgUnreached = "Unable to reach the trial registry. Please check your connection and try again."
)

// noPreferenceRe matches location phrases that mean "no location filter".
var noPreferenceRe = regexp.MustCompile(`(?i)^\s*(anywhere|any\s*(location|where)?|worldwide|global(ly)?|no\s*preference|doesn'?t\s*matter|remote|all)\s*\.?\s*$`)

// Request holds one trial search.
type Request struct {
	Condition string   `json:"condition"`
	Synonyms  []string `json:"synonyms,omitempty"`
	Location  string   `json:"location,omitempty"`
}

// Output holds the result of one search. Failure is encoded as data: a
// non-empty Err with an empty trial list.
type Output struct {
	Trials []types.TrialSummary `json:"trials"`
	Err    string               `json:"error,omitempty"`
}

// StudySearcher is the slice of the registry client the orchestrator needs.
type StudySearcher interface {
	SearchStudies(ctx context.Context, opts registry.SearchOptions) ([]*registry.TrialRaw, error)
}

// Searcher answers "find recruiting trials for condition X near location Y".
type Searcher struct {
	Registry StudySearcher
	Cache    *Cache
	Log      zerolog.Logger
	Cfg      types.SearchConfig
}

// NewSearcher wires a Searcher with config defaults applied.
func NewSearcher(client StudySearcher, log zerolog.Logger, cfg types.SearchConfig) *Searcher {
	if cfg.PageSize <= 0 {
		cfg.PageSize = 10
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.LocationTimeout <= 0 {
		cfg.LocationTimeout = 25 * time.Second
	}
	return &Searcher{
		Registry: client,
		Cache:    NewCache(cfg.CacheSize, cfg.CacheTTL),
		Log:      log,
		Cfg:      cfg,
	}
}

// Search runs one trial search: cache lookup, registry query, parse,
// normalize, cache fill. Trials come back in upstream order, unscored.
func (s *Searcher) Search(ctx context.Context, req Request) Output {
	condition := strings.TrimSpace(req.Condition)
	if condition == "" {
		return Output{Trials: []types.TrialSummary{}, Err: "A condition is required to search for trials."}
	}

	location := NormalizeLocation(req.Location)
	key := cacheKey(condition, req.Synonyms, location)

	if cached, ok := s.Cache.Get(key); ok {
		s.Log.Debug().Str("condition", condition).Msg("search cache hit")
		return Output{Trials: cached}
	}

	timeout := s.Cfg.Timeout
	if location != "" {
		timeout = s.Cfg.LocationTimeout
	}

	raws, err := s.Registry.SearchStudies(ctx, registry.SearchOptions{
		CondQuery: buildCondQuery(condition, req.Synonyms),
		Location:  location,
		PageSize:  s.Cfg.PageSize,
		Timeout:   timeout,
	})
	if err != nil {
		s.Log.Warn().Err(err).Str("condition", condition).Msg("registry search failed")
		return Output{Trials: []types.TrialSummary{}, Err: searchErrMessage(err)}
	}

	summaries := make([]types.TrialSummary, 0, len(raws))
	for _, raw := range raws {
		summaries = append(summaries, registry.Normalize(raw))
	}

	s.Cache.Set(key, summaries)
	s.Log.Debug().Str("condition", condition).Int("trials", len(summaries)).Msg("search complete")
	return Output{Trials: summaries}
}

// NormalizeLocation maps "no preference" phrases to an empty location so
// they are never sent upstream.
func NormalizeLocation(location string) string {
	location = strings.TrimSpace(location)
	if location == "" || noPreferenceRe.MatchString(location) {
		return ""
	}
	return location
}

// buildCondQuery OR-joins the condition and its synonyms.
func buildCondQuery(condition string, synonyms []string) string {
	parts := []string{condition}
	for _, syn := range synonyms {
		if syn = strings.TrimSpace(syn); syn != "" {
			parts = append(parts, syn)
		}
	}
	return strings.Join(parts, " OR ")
}

// searchErrMessage maps a registry failure to its user-facing message.
func searchErrMessage(err error) string {
	var se *registry.StatusError
	switch {
	case errors.Is(err, registry.ErrBadShape):
		return msgBadShape
	case errors.As(err, &se):
		if se.Code == 429 {
			return msgRateLimit
		}
		return msgBadStatus(se.Code)
	case httputil.IsTimeout(err):
		return msgTimeout
	default:
		return msgUnreached
	}
}

func msgBadStatus(code int) string {
	return fmt.Sprintf("The trial registry returned an error (HTTP %d). Please try again later.", code)
}
