// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server exposes the trial search and eligibility pipeline over
// HTTP. Pipeline failures are encoded in response bodies, so every
// handler answers 200 unless the request itself is malformed.
// See docs/ARCHITECTURE.md § HTTP API.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/pdiddy/clinibridge/internal/trials"
	"github.com/pdiddy/clinibridge/pkg/types"
)

// Searcher runs one trial search.
type Searcher interface {
	Search(ctx context.Context, req trials.Request) trials.Output
}

// Scorer scores trials against a patient profile.
type Scorer interface {
	ScoreTrials(ctx context.Context, ts []types.TrialSummary, profile types.PatientProfile) []types.TrialSummary
}

// Explainer produces an eligibility breakdown for one trial.
type Explainer interface {
	Explain(ctx context.Context, nctID string, profile types.PatientProfile) *types.EligibilityBreakdown
}

// SearchLogger appends completed searches to the audit log.
type SearchLogger interface {
	LogSearch(ctx context.Context, profile types.PatientProfile, results []types.TrialSummary) (string, error)
}

// Server wires the pipeline behind the HTTP API.
type Server struct {
	Searcher  Searcher
	Scorer    Scorer
	Explainer Explainer

	// Audit is optional; nil disables search logging.
	Audit SearchLogger

	Log zerolog.Logger
	Cfg types.ServerConfig

	echo *echo.Echo
}

// New builds a Server with its routes registered.
func New(searcher Searcher, scorer Scorer, explainer Explainer, audit SearchLogger, log zerolog.Logger, cfg types.ServerConfig) *Server {
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}
	s := &Server{
		Searcher:  searcher,
		Scorer:    scorer,
		Explainer: explainer,
		Audit:     audit,
		Log:       log,
		Cfg:       cfg,
	}
	s.echo = s.buildEcho()
	return s
}

func (s *Server) buildEcho() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(echomw.RequestID())
	e.Use(requestLogger(s.Log))
	e.Use(echomw.Recover())

	e.GET("/healthz", s.handleHealthz)

	v1 := e.Group("/v1")
	v1.POST("/search", s.handleSearch)
	v1.POST("/trials/:nctID/eligibility", s.handleEligibility)

	return e
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start serves until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	s.Log.Info().Str("addr", s.Cfg.Addr).Msg("starting server")
	return s.echo.Start(s.Cfg.Addr)
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// requestLogger emits one structured line per request.
func requestLogger(logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()

			err := next(c)

			evt := logger.Info()
			if err != nil {
				evt = logger.Error().Err(err)
			}
			evt.
				Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Int("status", c.Response().Status).
				Dur("latency", time.Since(start)).
				Str("remote_ip", c.RealIP()).
				Msg("request")

			return err
		}
	}
}
