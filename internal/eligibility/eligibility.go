// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package eligibility fetches a trial's raw eligibility criteria, splits
// them into inclusion/exclusion sections, and asks an AI backend to
// rewrite and classify each criterion against a patient profile. Every
// failure degrades to a deterministic fallback breakdown.
// See docs/ARCHITECTURE.md § Eligibility Explainer.
package eligibility

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/pdiddy/clinibridge/internal/ai"
	"github.com/pdiddy/clinibridge/internal/registry"
	"github.com/pdiddy/clinibridge/internal/store"
	"github.com/pdiddy/clinibridge/pkg/types"
)

// Disclaimer is attached to every breakdown this package returns.
const Disclaimer = "This is an automated summary to help you prepare. It is not medical advice, and only the trial's study team can determine eligibility. Discuss any trial with your doctor before making decisions."

const (
	defaultContextLimit = 8000
	defaultFetchTimeout = 15 * time.Second

	truncationNotice = "\n\n[Criteria text truncated for length.]"
)

// genericChecklist is the preparation checklist used when no AI-derived
// checklist is available.
var genericChecklist = []string{
	"Gather your medical records, including your diagnosis, recent test results, and treatment history.",
	"Write down your current medications and any prior treatments to review with the study team.",
}

// StudyGetter fetches one study from the trial registry.
type StudyGetter interface {
	GetStudy(ctx context.Context, nctID string, timeout time.Duration) (*registry.TrialRaw, error)
}

// RawCache persists raw eligibility records by NCT ID.
type RawCache interface {
	GetRawEligibility(ctx context.Context, nctID string) (*store.RawEligibility, error)
	PutRawEligibility(ctx context.Context, raw store.RawEligibility) error
}

// Explainer runs the eligibility breakdown flow for one (trial, patient)
// pair at a time.
type Explainer struct {
	Registry StudyGetter
	Cache    RawCache
	Backend  ai.Backend
	Log      zerolog.Logger
	Cfg      types.EligibilityConfig

	// FetchTimeout is the per-attempt budget for the registry fetch.
	FetchTimeout time.Duration
}

// NewExplainer fills config defaults.
func NewExplainer(reg StudyGetter, cache RawCache, backend ai.Backend, log zerolog.Logger, cfg types.EligibilityConfig) *Explainer {
	if cfg.ContextLimit <= 0 {
		cfg.ContextLimit = defaultContextLimit
	}
	return &Explainer{
		Registry:     reg,
		Cache:        cache,
		Backend:      backend,
		Log:          log,
		Cfg:          cfg,
		FetchTimeout: defaultFetchTimeout,
	}
}

// Explain produces the eligibility breakdown for one trial against one
// patient profile. It never fails: registry errors, missing criteria, and
// unusable AI responses all degrade to a fallback breakdown whose Meta
// says what happened.
func (e *Explainer) Explain(ctx context.Context, nctID string, profile types.PatientProfile) *types.EligibilityBreakdown {
	raw, err := e.fetchRaw(ctx, nctID)
	if err != nil {
		e.Log.Warn().Err(err).Str("nct_id", nctID).Msg("eligibility fetch failed")
		return fallbackBreakdown(nctID, segments{}, false,
			"The trial registry could not be reached, so the eligibility criteria are unavailable.")
	}

	criteria := strings.TrimSpace(raw.Criteria)
	if criteria == "" {
		return fallbackBreakdown(nctID, segments{}, false,
			"This trial record does not include eligibility criteria text.")
	}

	segs := segmentCriteria(criteria)
	capped, truncated := capContext(criteria, e.contextLimit())

	resp, err := e.classify(ctx, raw, profile, capped)
	if err != nil {
		e.Log.Warn().Err(err).Str("nct_id", nctID).Msg("eligibility classification failed")
		return fallbackBreakdown(nctID, segs, true,
			"Automatic criteria analysis was unavailable, so the criteria are shown as written.")
	}

	breakdown := &types.EligibilityBreakdown{
		NCTID:                nctID,
		InclusionCriteria:    convertCriteria(resp.InclusionCriteria),
		ExclusionCriteria:    convertCriteria(resp.ExclusionCriteria),
		PreparationChecklist: resp.PreparationChecklist,
		Disclaimer:           Disclaimer,
		Meta: types.BreakdownMeta{
			Source:          "ai",
			CriteriaPresent: true,
		},
	}
	if breakdown.PreparationChecklist == nil {
		breakdown.PreparationChecklist = []string{}
	}
	if truncated {
		breakdown.Meta.Notes = "The criteria text was truncated before analysis; the trial record may contain additional criteria."
	}
	return breakdown
}

// fetchRaw returns the raw eligibility record for nctID, cache-first. A
// fresh fetch is persisted best-effort; cache write failures do not fail
// the request.
func (e *Explainer) fetchRaw(ctx context.Context, nctID string) (*store.RawEligibility, error) {
	if e.Cache != nil {
		cached, err := e.Cache.GetRawEligibility(ctx, nctID)
		if err != nil {
			e.Log.Warn().Err(err).Str("nct_id", nctID).Msg("eligibility cache read failed")
		} else if cached != nil {
			return cached, nil
		}
	}

	timeout := e.FetchTimeout
	if timeout <= 0 {
		timeout = defaultFetchTimeout
	}
	trial, err := e.Registry.GetStudy(ctx, nctID, timeout)
	if err != nil {
		return nil, fmt.Errorf("fetching study %s: %w", nctID, err)
	}

	entry := store.RawEligibility{
		NCTID:      trial.NCTID,
		Criteria:   trial.EligibilityCriteria,
		Sex:        trial.Sex,
		MinimumAge: trial.MinimumAge,
		MaximumAge: trial.MaximumAge,
		StdAges:    trial.StdAges,
	}
	if e.Cache != nil {
		if err := e.Cache.PutRawEligibility(ctx, entry); err != nil {
			e.Log.Warn().Err(err).Str("nct_id", nctID).Msg("eligibility cache write failed")
		}
	}
	return &entry, nil
}

// classify runs the breakdown prompt with one schema-repair retry: first
// attempt at temperature 0; on validation failure the model's raw answer
// is echoed back with a repair instruction at temperature 0.1.
func (e *Explainer) classify(ctx context.Context, raw *store.RawEligibility, profile types.PatientProfile, criteria string) (*breakdownResponse, error) {
	if e.Backend == nil {
		return nil, fmt.Errorf("no AI backend configured")
	}

	prompt, err := renderBreakdownPrompt(raw, profile, criteria)
	if err != nil {
		return nil, fmt.Errorf("rendering breakdown prompt: %w", err)
	}

	messages := []ai.Message{{Role: "user", Content: prompt}}
	first, err := e.Backend.Complete(ctx, ai.Request{Messages: messages, Temperature: 0})
	if err != nil {
		return nil, fmt.Errorf("breakdown call: %w", err)
	}
	resp, parseErr := parseBreakdownResponse(first)
	if parseErr == nil {
		return resp, nil
	}

	e.Log.Debug().Err(parseErr).Str("backend", e.Backend.Name()).Msg("breakdown response rejected, retrying")
	messages = append(messages,
		ai.Message{Role: "assistant", Content: first},
		ai.Message{Role: "user", Content: repairPrompt},
	)
	second, err := e.Backend.Complete(ctx, ai.Request{Messages: messages, Temperature: 0.1})
	if err != nil {
		return nil, fmt.Errorf("breakdown repair call: %w", err)
	}
	resp, parseErr = parseBreakdownResponse(second)
	if parseErr != nil {
		return nil, fmt.Errorf("breakdown response invalid after repair: %w", parseErr)
	}
	return resp, nil
}

func (e *Explainer) contextLimit() int {
	if e.Cfg.ContextLimit > 0 {
		return e.Cfg.ContextLimit
	}
	return defaultContextLimit
}

// capContext bounds the criteria text sent to the model and marks the cut.
func capContext(text string, limit int) (string, bool) {
	if len(text) <= limit {
		return text, false
	}
	return text[:limit] + truncationNotice, true
}

// fallbackBreakdown is the deterministic shape returned when the AI path
// is unavailable. When segmented criteria exist they are preserved as
// written, classified unknown; otherwise a single placeholder criterion
// explains the gap.
func fallbackBreakdown(nctID string, segs segments, criteriaPresent bool, notes string) *types.EligibilityBreakdown {
	combined := make([]string, 0, len(segs.Unclassified)+len(segs.Inclusion))
	combined = append(combined, segs.Unclassified...)
	combined = append(combined, segs.Inclusion...)

	inclusion := unknownCriteria(combined)
	exclusion := unknownCriteria(segs.Exclusion)

	if len(inclusion) == 0 && len(exclusion) == 0 {
		inclusion = []types.EligibilityCriterion{{
			Plain:  "Automatic processing of this trial's eligibility criteria was unavailable.",
			Status: types.StatusUnknown,
			Reason: "Ask the study team for the full eligibility requirements.",
		}}
	}

	return &types.EligibilityBreakdown{
		NCTID:                nctID,
		InclusionCriteria:    inclusion,
		ExclusionCriteria:    exclusion,
		PreparationChecklist: append([]string{}, genericChecklist...),
		Disclaimer:           Disclaimer,
		Meta: types.BreakdownMeta{
			Source:          "fallback",
			CriteriaPresent: criteriaPresent,
			Notes:           notes,
		},
	}
}

func unknownCriteria(lines []string) []types.EligibilityCriterion {
	out := make([]types.EligibilityCriterion, 0, len(lines))
	for _, line := range lines {
		out = append(out, types.EligibilityCriterion{
			Original: line,
			Plain:    line,
			Status:   types.StatusUnknown,
		})
	}
	return out
}
