// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package eligibility

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pdiddy/clinibridge/pkg/types"
)

// breakdownResponse is the JSON contract requested from the model. Extra
// fields the model adds are dropped by the decoder; missing optional
// fields default below.
type breakdownResponse struct {
	InclusionCriteria    []criterionItem `json:"inclusion_criteria"`
	ExclusionCriteria    []criterionItem `json:"exclusion_criteria"`
	PreparationChecklist []string        `json:"preparation_checklist"`
}

type criterionItem struct {
	Original string `json:"original"`
	Plain    string `json:"plain"`
	Status   string `json:"status"`
	Reason   string `json:"reason"`
}

// parseBreakdownResponse validates a model response against the breakdown
// schema. The response must be a JSON object carrying at least one of the
// two criteria arrays; everything else is optional.
func parseBreakdownResponse(raw string) (*breakdownResponse, error) {
	raw = stripFences(raw)

	var resp breakdownResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return nil, fmt.Errorf("decoding breakdown response: %w", err)
	}
	if resp.InclusionCriteria == nil && resp.ExclusionCriteria == nil {
		return nil, fmt.Errorf("breakdown response carries no criteria arrays")
	}
	return &resp, nil
}

// stripFences removes a surrounding markdown code fence. Claude sometimes
// wraps JSON output in one even when told not to.
func stripFences(raw string) string {
	raw = strings.TrimSpace(raw)
	if !strings.HasPrefix(raw, "```") {
		return raw
	}
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(strings.TrimSpace(raw), "```")
	return strings.TrimSpace(raw)
}

// parseStatus maps case and spacing variants onto the status enum,
// defaulting to unknown.
func parseStatus(raw string) types.CriterionStatus {
	key := strings.Join(strings.Fields(strings.ToLower(raw)), "_")
	key = strings.ReplaceAll(key, "-", "_")
	switch key {
	case "met":
		return types.StatusMet
	case "not_met", "notmet", "unmet":
		return types.StatusNotMet
	default:
		return types.StatusUnknown
	}
}

// convertCriteria turns the model's items into typed criteria, skipping
// items that carry no text at all.
func convertCriteria(items []criterionItem) []types.EligibilityCriterion {
	out := make([]types.EligibilityCriterion, 0, len(items))
	for _, item := range items {
		if item.Original == "" && item.Plain == "" {
			continue
		}
		plain := item.Plain
		if plain == "" {
			plain = item.Original
		}
		out = append(out, types.EligibilityCriterion{
			Original: item.Original,
			Plain:    plain,
			Status:   parseStatus(item.Status),
			Reason:   item.Reason,
		})
	}
	return out
}
