// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package registry queries the ClinicalTrials.gov API v2 and normalizes its
// heterogeneous study records into stable trial summaries.
// See docs/ARCHITECTURE.md § Registry.
package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/pdiddy/clinibridge/internal/httputil"
)

// registryBase is the ClinicalTrials.gov studies endpoint. Declared as a
// var so tests can substitute an httptest server.
var registryBase = "https://clinicaltrials.gov/api/v2/studies"

// ErrBadShape reports that the registry response no longer matches the
// expected document structure.
var ErrBadShape = errors.New("registry response shape mismatch")

// StatusError reports a non-OK HTTP status from the registry.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("registry returned HTTP %d", e.Code)
}

// Client calls the trial registry with retry, per-attempt timeouts, and
// client-side rate limiting.
type Client struct {
	HTTP      *http.Client
	UserAgent string

	// Limiter bounds outbound request rate. Nil disables limiting.
	Limiter *rate.Limiter
}

// NewClient returns a Client with the given requests-per-second budget.
func NewClient(userAgent string, rps float64) *Client {
	c := &Client{
		HTTP:      &http.Client{},
		UserAgent: userAgent,
	}
	if rps > 0 {
		c.Limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
	return c
}

// SearchOptions holds the upstream query parameters for one search.
type SearchOptions struct {
	// CondQuery is the OR-joined condition expression for query.cond.
	CondQuery string

	// Location is the query.locn value. Empty omits the parameter.
	Location string

	// PageSize is the number of studies requested.
	PageSize int

	// Timeout is the per-attempt budget for this request.
	Timeout time.Duration
}

// SearchStudies queries the registry for recruiting studies and returns the
// parsed records. Records missing their identifying fields are dropped, so
// the result count equals the valid-record count.
func (c *Client) SearchStudies(ctx context.Context, opts SearchOptions) ([]*TrialRaw, error) {
	params := url.Values{
		"query.cond":           {opts.CondQuery},
		"filter.overallStatus": {"RECRUITING"},
		"pageSize":             {fmt.Sprintf("%d", opts.PageSize)},
		"format":               {"json"},
	}
	if opts.Location != "" {
		params.Set("query.locn", opts.Location)
	}

	var sr studiesResponse
	if err := c.getJSON(ctx, registryBase+"?"+params.Encode(), opts.Timeout, &sr); err != nil {
		return nil, err
	}

	var raws []*TrialRaw
	for _, st := range sr.Studies {
		if raw := parseStudy(st); raw != nil {
			raws = append(raws, raw)
		}
	}
	return raws, nil
}

// GetStudy fetches a single study by NCT ID.
func (c *Client) GetStudy(ctx context.Context, nctID string, timeout time.Duration) (*TrialRaw, error) {
	var st study
	u := registryBase + "/" + url.PathEscape(nctID) + "?format=json"
	if err := c.getJSON(ctx, u, timeout, &st); err != nil {
		return nil, err
	}

	raw := parseStudy(st)
	if raw == nil {
		return nil, fmt.Errorf("study %s: %w", nctID, ErrBadShape)
	}
	return raw, nil
}

func (c *Client) getJSON(ctx context.Context, reqURL string, timeout time.Duration, out any) error {
	if c.Limiter != nil {
		if err := c.Limiter.Wait(ctx); err != nil {
			return err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	resp, err := httputil.DoWithRetry(ctx, c.HTTP, req, timeout)
	if err != nil {
		return fmt.Errorf("registry request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &StatusError{Code: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", ErrBadShape, err)
	}
	return nil
}
