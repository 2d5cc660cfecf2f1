// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package match scores candidate trials against a patient profile with a
// structured AI call and merges the scores back onto the summaries.
// See docs/ARCHITECTURE.md § Match Scoring.
package match

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/rs/zerolog"

	"github.com/pdiddy/clinibridge/internal/ai"
	"github.com/pdiddy/clinibridge/pkg/types"
)

// scoreResponse is the JSON contract the scorer asks the model for.
type scoreResponse struct {
	Matches []scoreItem `json:"matches"`
}

type scoreItem struct {
	NCTID       string `json:"nct_id"`
	MatchLabel  string `json:"match_label"`
	MatchScore  int    `json:"match_score"`
	MatchReason string `json:"match_reason"`
}

// Scorer runs the trial scoring pass.
type Scorer struct {
	Backend ai.Backend
	Log     zerolog.Logger
}

// ScoreTrials sends the candidate trials and the patient profile to the AI
// backend and returns a new slice with scores merged in. The result has the
// same length and order as the input; trials the model did not score keep
// MatchScore zero. On any backend or validation failure the input comes
// back completely unscored — scoring never fails a search.
func (s *Scorer) ScoreTrials(ctx context.Context, trials []types.TrialSummary, profile types.PatientProfile) []types.TrialSummary {
	scored := make([]types.TrialSummary, len(trials))
	copy(scored, trials)

	if len(trials) == 0 || s.Backend == nil {
		return scored
	}

	prompt, err := renderScoringPrompt(trials, profile)
	if err != nil {
		s.Log.Warn().Err(err).Msg("scoring prompt render failed")
		return scored
	}

	raw, err := s.Backend.Complete(ctx, ai.Request{
		Messages:    []ai.Message{{Role: "user", Content: prompt}},
		Temperature: 0,
	})
	if err != nil {
		s.Log.Warn().Err(err).Str("backend", s.Backend.Name()).Msg("trial scoring failed")
		return scored
	}

	items, err := parseScoreResponse(raw)
	if err != nil {
		s.Log.Warn().Err(err).Msg("trial scoring response rejected")
		return scored
	}

	byID := make(map[string]scoreItem, len(items))
	for _, item := range items {
		byID[item.NCTID] = item
	}

	for i := range scored {
		item, ok := byID[scored[i].NCTID]
		if !ok {
			continue
		}
		label, ok := normalizeLabel(item.MatchLabel)
		if !ok {
			continue
		}
		scored[i].MatchLabel = label
		scored[i].MatchScore = clampScore(item.MatchScore)
		scored[i].MatchReason = item.MatchReason
	}
	return scored
}

// parseScoreResponse accepts either the {"matches": [...]} envelope or a
// bare array.
func parseScoreResponse(raw string) ([]scoreItem, error) {
	raw = strings.TrimSpace(raw)

	var resp scoreResponse
	if err := json.Unmarshal([]byte(raw), &resp); err == nil && resp.Matches != nil {
		return resp.Matches, nil
	}

	var items []scoreItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, err
	}
	return items, nil
}

// normalizeLabel maps case and spacing variants onto the fixed label set.
func normalizeLabel(raw string) (types.MatchLabel, bool) {
	key := strings.Join(strings.Fields(strings.ToLower(raw)), " ")
	for label := range types.ValidMatchLabels {
		if strings.ToLower(string(label)) == key {
			return label, true
		}
	}
	return "", false
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
