// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package registry

import (
	"regexp"
	"strings"

	"github.com/pdiddy/clinibridge/pkg/types"
)

// TrialRaw is the flattened form of one registry study document. It exists
// only between parsing and normalization and is discarded afterwards.
type TrialRaw struct {
	NCTID               string
	BriefTitle          string
	OfficialTitle       string
	Status              string
	StartDate           string
	Summary             string
	Phases              []string
	StudyType           string
	Conditions          []string
	EligibilityCriteria string
	Sex                 string
	MinimumAge          string
	MaximumAge          string
	StdAges             []string
	Locations           []types.TrialLocation
	Interventions       []string
	Sponsor             string
}

// parseStudy flattens one study document into a TrialRaw. It returns nil
// when the record is missing its identifying fields (NCT ID and brief
// title); every other field is optional and defaults downstream.
func parseStudy(st study) *TrialRaw {
	ps := st.ProtocolSection
	if ps == nil || ps.Identification == nil {
		return nil
	}
	if ps.Identification.NCTID == "" || ps.Identification.BriefTitle == "" {
		return nil
	}

	raw := &TrialRaw{
		NCTID:         ps.Identification.NCTID,
		BriefTitle:    ps.Identification.BriefTitle,
		OfficialTitle: ps.Identification.OfficialTitle,
	}

	if ps.Status != nil {
		raw.Status = ps.Status.OverallStatus
		if ps.Status.StartDateStruct != nil {
			raw.StartDate = ps.Status.StartDateStruct.Date
		}
	}
	if ps.Description != nil {
		raw.Summary = ps.Description.BriefSummary
	}
	if ps.Design != nil {
		raw.Phases = ps.Design.Phases
		raw.StudyType = ps.Design.StudyType
	}
	if ps.Conditions != nil {
		raw.Conditions = ps.Conditions.Conditions
	}
	if ps.Eligibility != nil {
		raw.EligibilityCriteria = sanitizeCriteria(ps.Eligibility.EligibilityCriteria)
		raw.Sex = ps.Eligibility.Sex
		raw.MinimumAge = ps.Eligibility.MinimumAge
		raw.MaximumAge = ps.Eligibility.MaximumAge
		raw.StdAges = ps.Eligibility.StdAges
	}
	if ps.Contacts != nil {
		for _, loc := range ps.Contacts.Locations {
			raw.Locations = append(raw.Locations, types.TrialLocation{
				Facility: loc.Facility,
				City:     loc.City,
				State:    loc.State,
				Country:  loc.Country,
			})
		}
	}
	if ps.Arms != nil {
		for _, iv := range ps.Arms.Interventions {
			if iv.Name != "" {
				raw.Interventions = append(raw.Interventions, iv.Name)
			}
		}
	}
	if ps.Sponsor != nil && ps.Sponsor.LeadSponsor != nil {
		raw.Sponsor = ps.Sponsor.LeadSponsor.Name
	}

	return raw
}

// entityReplacer unescapes the HTML entities that show up in registry
// eligibility text.
var entityReplacer = strings.NewReplacer(
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&#39;", "'",
	"&apos;", "'",
	"&nbsp;", " ",
)

var (
	spacesRe   = regexp.MustCompile(`[ \t]+`)
	newlinesRe = regexp.MustCompile(`\n{3,}`)
)

// sanitizeCriteria unescapes common HTML entities and collapses repeated
// whitespace and blank lines in eligibility free text.
func sanitizeCriteria(text string) string {
	if text == "" {
		return ""
	}
	text = entityReplacer.Replace(text)
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = spacesRe.ReplaceAllString(text, " ")
	text = newlinesRe.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
