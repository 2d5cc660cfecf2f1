// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the clinibridge pipeline.
// See docs/ARCHITECTURE.md § Data Structures.
package types

// MatchLabel categorizes how well a trial fits a patient profile.
type MatchLabel string

const (
	MatchStrong    MatchLabel = "Strong Match"
	MatchPossible  MatchLabel = "Possible Match"
	MatchExploring MatchLabel = "Worth Exploring"
	MatchUnlikely  MatchLabel = "Unlikely"
)

// ValidMatchLabels is the closed set of labels the scorer accepts.
var ValidMatchLabels = map[MatchLabel]bool{
	MatchStrong:    true,
	MatchPossible:  true,
	MatchExploring: true,
	MatchUnlikely:  true,
}

// TrialLocation is one facility where a trial recruits. It is only
// meaningful inside the TrialSummary that owns it.
type TrialLocation struct {
	Facility string `json:"facility,omitempty" yaml:"facility,omitempty"`
	City     string `json:"city,omitempty" yaml:"city,omitempty"`
	State    string `json:"state,omitempty" yaml:"state,omitempty"`
	Country  string `json:"country,omitempty" yaml:"country,omitempty"`
}

// TrialSummary is the stable, display- and AI-facing representation of one
// clinical trial record. It is created once per search result and mutated
// exactly once, by the scorer, which fills MatchScore, MatchLabel, and
// MatchReason.
type TrialSummary struct {
	// NCTID is the registry's stable identifier (e.g. "NCT01234567").
	NCTID string `json:"nct_id" yaml:"nct_id"`

	// BriefTitle is the short trial title as returned by the registry.
	BriefTitle string `json:"brief_title" yaml:"brief_title"`

	// Status is the overall recruitment status (e.g. "RECRUITING").
	Status string `json:"status" yaml:"status"`

	// Phase is the trial phase, or "Not specified" when absent.
	Phase string `json:"phase" yaml:"phase"`

	// Conditions lists the conditions the trial studies.
	Conditions []string `json:"conditions" yaml:"conditions"`

	// EligibilitySnippet is the eligibility text truncated to 500 characters
	// for display.
	EligibilitySnippet string `json:"eligibility_snippet" yaml:"eligibility_snippet"`

	// EligibilityText is the eligibility text truncated to 1500 characters
	// for AI consumption.
	EligibilityText string `json:"eligibility_text" yaml:"eligibility_text"`

	// AgeRange is the human-readable age range ("18 Years - 65 Years",
	// "18 Years+", "Up to 65 Years", or "Not specified").
	AgeRange string `json:"age_range" yaml:"age_range"`

	// MinAgeYears and MaxAgeYears are the numeric age bounds in years.
	// Nil means the registry did not state a bound.
	MinAgeYears *float64 `json:"min_age_years,omitempty" yaml:"min_age_years,omitempty"`
	MaxAgeYears *float64 `json:"max_age_years,omitempty" yaml:"max_age_years,omitempty"`

	// Sex is the sex restriction ("ALL", "FEMALE", "MALE"), or "ALL" when absent.
	Sex string `json:"sex" yaml:"sex"`

	// Locations lists up to three recruiting facilities.
	Locations []TrialLocation `json:"locations,omitempty" yaml:"locations,omitempty"`

	// Interventions lists intervention names.
	Interventions []string `json:"interventions,omitempty" yaml:"interventions,omitempty"`

	// Sponsor is the lead sponsor name.
	Sponsor string `json:"sponsor" yaml:"sponsor"`

	// MatchScore is the patient fit score in [0, 100]. Zero means unscored.
	MatchScore int `json:"match_score" yaml:"match_score"`

	// MatchLabel is the scorer's category. Empty until scored.
	MatchLabel MatchLabel `json:"match_label,omitempty" yaml:"match_label,omitempty"`

	// MatchReason is the scorer's one-sentence explanation. Empty until scored.
	MatchReason string `json:"match_reason,omitempty" yaml:"match_reason,omitempty"`
}

// PatientProfile describes the patient a search or eligibility check is
// run for. It is constructed per request and never persisted beyond the
// searches audit log.
type PatientProfile struct {
	// Condition is the diagnosis the patient is seeking trials for.
	Condition string `json:"condition" yaml:"condition"`

	// Age is the patient age in years. Zero means unknown.
	Age int `json:"age,omitempty" yaml:"age,omitempty"`

	// Location is the patient's preferred trial location, free text.
	Location string `json:"location,omitempty" yaml:"location,omitempty"`

	// Medications lists the patient's current medications.
	Medications []string `json:"medications,omitempty" yaml:"medications,omitempty"`

	// AdditionalInfo carries free-text context the patient provided.
	AdditionalInfo string `json:"additional_info,omitempty" yaml:"additional_info,omitempty"`
}
