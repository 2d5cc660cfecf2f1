// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package registry

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// AgeBounds holds numeric age bounds in years. Nil means the registry did
// not state a bound; parsing never fails.
type AgeBounds struct {
	MinYears *float64
	MaxYears *float64
}

// absentAgeTokens are raw values treated as "no bound stated".
var absentAgeTokens = map[string]bool{
	"":              true,
	"n/a":           true,
	"na":            true,
	"none":          true,
	"not specified": true,
	"no limit":      true,
}

var firstNumberRe = regexp.MustCompile(`\d+(?:\.\d+)?`)

// NormalizeAgeBounds converts the registry's free-text minimum and maximum
// age strings ("2 Years", "6 Months", "Adult") into numeric year bounds.
func NormalizeAgeBounds(minRaw, maxRaw string) AgeBounds {
	return AgeBounds{
		MinYears: parseAgeYears(minRaw, true),
		MaxYears: parseAgeYears(maxRaw, false),
	}
}

// parseAgeYears extracts a year value from one age string. The first
// numeric substring wins; month/week/day units are converted to years and
// rounded to two decimals. Strings with no number fall back to keyword
// heuristics, which differ between the minimum and maximum side.
func parseAgeYears(raw string, isMin bool) *float64 {
	s := strings.ToLower(strings.TrimSpace(raw))
	if absentAgeTokens[s] {
		return nil
	}

	if m := firstNumberRe.FindString(s); m != "" {
		n, err := strconv.ParseFloat(m, 64)
		if err != nil {
			return nil
		}
		switch {
		case strings.Contains(s, "month"):
			n = round2(n / 12)
		case strings.Contains(s, "week"):
			n = round2(n / 52)
		case strings.Contains(s, "day"):
			n = round2(n / 365)
		}
		return &n
	}

	// Keyword heuristics for unit-less registry values.
	if isMin {
		switch {
		case strings.Contains(s, "older adult"):
			return ptr(65)
		case strings.Contains(s, "adult"):
			return ptr(18)
		case strings.Contains(s, "child"), strings.Contains(s, "pediatric"):
			return ptr(0)
		}
		return nil
	}
	switch {
	case strings.Contains(s, "child"), strings.Contains(s, "pediatric"):
		return ptr(17)
	case strings.Contains(s, "older adult"):
		return nil
	case strings.Contains(s, "adult"):
		return ptr(64)
	}
	return nil
}

func round2(n float64) float64 {
	return math.Round(n*100) / 100
}

func ptr(n float64) *float64 { return &n }
