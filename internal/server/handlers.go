// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pdiddy/clinibridge/internal/trials"
	"github.com/pdiddy/clinibridge/pkg/types"
)

// SearchRequest is the POST /v1/search body. Profile is optional; when
// present the results are scored against it.
type SearchRequest struct {
	Condition string                `json:"condition"`
	Synonyms  []string              `json:"synonyms,omitempty"`
	Location  string                `json:"location,omitempty"`
	Profile   *types.PatientProfile `json:"profile,omitempty"`
}

// SearchResponse mirrors the pipeline's error-as-data output, plus the
// audit log ID when the search was recorded.
type SearchResponse struct {
	SearchID string               `json:"search_id,omitempty"`
	Trials   []types.TrialSummary `json:"trials"`
	Error    string               `json:"error,omitempty"`
}

// EligibilityRequest is the POST /v1/trials/:nctID/eligibility body.
type EligibilityRequest struct {
	Profile types.PatientProfile `json:"profile"`
}

func (s *Server) handleHealthz(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSearch(c echo.Context) error {
	var req SearchRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	out := s.Searcher.Search(ctx, trials.Request{
		Condition: req.Condition,
		Synonyms:  req.Synonyms,
		Location:  req.Location,
	})

	resp := SearchResponse{Trials: out.Trials, Error: out.Err}

	if req.Profile != nil && out.Err == "" {
		if s.Scorer != nil {
			resp.Trials = s.Scorer.ScoreTrials(ctx, out.Trials, *req.Profile)
		}
		if s.Audit != nil {
			id, err := s.Audit.LogSearch(ctx, *req.Profile, resp.Trials)
			if err != nil {
				s.Log.Warn().Err(err).Msg("search audit log failed")
			} else {
				resp.SearchID = id
			}
		}
	}

	return c.JSON(http.StatusOK, resp)
}

func (s *Server) handleEligibility(c echo.Context) error {
	nctID := c.Param("nctID")
	if nctID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing NCT ID")
	}

	var req EligibilityRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	breakdown := s.Explainer.Explain(c.Request().Context(), nctID, req.Profile)
	return c.JSON(http.StatusOK, breakdown)
}
