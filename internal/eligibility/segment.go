// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package eligibility

import (
	"regexp"
	"strings"
)

// segments holds the criteria text split by section header. Lines that
// appear before any recognized header land in Unclassified.
type segments struct {
	Inclusion    []string
	Exclusion    []string
	Unclassified []string
}

func (s segments) empty() bool {
	return len(s.Inclusion) == 0 && len(s.Exclusion) == 0 && len(s.Unclassified) == 0
}

var (
	inclusionHeaderRe = regexp.MustCompile(`(?im)^[ \t]*(?:key[ \t]+)?inclusion[ \t]+criteria[ \t]*:?[ \t]*$`)
	exclusionHeaderRe = regexp.MustCompile(`(?im)^[ \t]*(?:key[ \t]+)?exclusion[ \t]+criteria[ \t]*:?[ \t]*$`)

	bulletRe = regexp.MustCompile(`^[-*•~][ \t]*|^\d+[.)][ \t]*`)
)

// segmentCriteria splits a raw eligibility block on its Inclusion/Exclusion
// headers. Either header may be missing and they may appear in either
// order; text before the first header (or all text when neither header
// exists) goes to the unclassified bucket.
func segmentCriteria(text string) segments {
	var out segments

	incLoc := inclusionHeaderRe.FindStringIndex(text)
	excLoc := exclusionHeaderRe.FindStringIndex(text)

	switch {
	case incLoc != nil && excLoc != nil && incLoc[0] < excLoc[0]:
		out.Unclassified = splitCriteria(text[:incLoc[0]])
		out.Inclusion = splitCriteria(text[incLoc[1]:excLoc[0]])
		out.Exclusion = splitCriteria(text[excLoc[1]:])
	case incLoc != nil && excLoc != nil:
		out.Unclassified = splitCriteria(text[:excLoc[0]])
		out.Exclusion = splitCriteria(text[excLoc[1]:incLoc[0]])
		out.Inclusion = splitCriteria(text[incLoc[1]:])
	case incLoc != nil:
		out.Unclassified = splitCriteria(text[:incLoc[0]])
		out.Inclusion = splitCriteria(text[incLoc[1]:])
	case excLoc != nil:
		out.Unclassified = splitCriteria(text[:excLoc[0]])
		out.Exclusion = splitCriteria(text[excLoc[1]:])
	default:
		out.Unclassified = splitCriteria(text)
	}
	return out
}

// splitCriteria breaks a section into individual criterion lines, stripping
// bullet markers and dropping blanks.
func splitCriteria(section string) []string {
	var items []string
	for _, line := range strings.Split(section, "\n") {
		line = strings.TrimSpace(line)
		line = bulletRe.ReplaceAllString(line, "")
		line = strings.TrimSpace(line)
		if line != "" {
			items = append(items, line)
		}
	}
	return items
}
