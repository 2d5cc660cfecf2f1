// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package registry

import (
	"fmt"
	"strings"

	"github.com/pdiddy/clinibridge/pkg/types"
)

const (
	// snippetLimit caps the display excerpt of eligibility text.
	snippetLimit = 500

	// aiTextLimit caps the excerpt handed to the AI scorer.
	aiTextLimit = 1500

	// maxDisplayLocations caps the location list on a summary.
	maxDisplayLocations = 3

	notSpecified = "Not specified"
)

// Normalize converts a TrialRaw into the stable TrialSummary shape. The
// summary starts unscored (MatchScore zero, no label).
func Normalize(raw *TrialRaw) types.TrialSummary {
	bounds := NormalizeAgeBounds(raw.MinimumAge, raw.MaximumAge)

	s := types.TrialSummary{
		NCTID:              raw.NCTID,
		BriefTitle:         raw.BriefTitle,
		Status:             raw.Status,
		Phase:              formatPhase(raw.Phases),
		Conditions:         raw.Conditions,
		EligibilitySnippet: truncate(raw.EligibilityCriteria, snippetLimit),
		EligibilityText:    truncate(raw.EligibilityCriteria, aiTextLimit),
		AgeRange:           formatAgeRange(raw.MinimumAge, raw.MaximumAge),
		MinAgeYears:        bounds.MinYears,
		MaxAgeYears:        bounds.MaxYears,
		Sex:                raw.Sex,
		Interventions:      raw.Interventions,
		Sponsor:            raw.Sponsor,
	}

	if s.Sex == "" {
		s.Sex = "ALL"
	}
	if s.Sponsor == "" {
		s.Sponsor = notSpecified
	}

	for i, loc := range raw.Locations {
		if i >= maxDisplayLocations {
			break
		}
		s.Locations = append(s.Locations, loc)
	}

	return s
}

// formatAgeRange builds the human-readable age range string from the raw
// bound strings. Four cases: both, only min, only max, neither.
func formatAgeRange(minRaw, maxRaw string) string {
	minRaw = strings.TrimSpace(minRaw)
	maxRaw = strings.TrimSpace(maxRaw)
	if absentAgeTokens[strings.ToLower(minRaw)] {
		minRaw = ""
	}
	if absentAgeTokens[strings.ToLower(maxRaw)] {
		maxRaw = ""
	}

	switch {
	case minRaw != "" && maxRaw != "":
		return fmt.Sprintf("%s - %s", minRaw, maxRaw)
	case minRaw != "":
		return minRaw + "+"
	case maxRaw != "":
		return "Up to " + maxRaw
	default:
		return notSpecified
	}
}

func formatPhase(phases []string) string {
	if len(phases) == 0 {
		return notSpecified
	}
	return strings.Join(phases, ", ")
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}
