// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// CriterionStatus classifies one eligibility criterion against a patient profile.
type CriterionStatus string

const (
	StatusMet     CriterionStatus = "met"
	StatusNotMet  CriterionStatus = "not_met"
	StatusUnknown CriterionStatus = "unknown"
)

// EligibilityCriterion is one inclusion or exclusion line, rewritten in
// plain English and classified against the patient profile. Immutable once
// returned.
type EligibilityCriterion struct {
	// Original is the criterion text as it appears in the registry record.
	Original string `json:"original" yaml:"original"`

	// Plain is the plain-English rewrite.
	Plain string `json:"plain" yaml:"plain"`

	// Status is met, not_met, or unknown.
	Status CriterionStatus `json:"status" yaml:"status"`

	// Reason explains the classification in one sentence.
	Reason string `json:"reason,omitempty" yaml:"reason,omitempty"`
}

// BreakdownMeta carries provenance for an EligibilityBreakdown.
type BreakdownMeta struct {
	// Source identifies how the breakdown was produced ("ai" or "fallback").
	Source string `json:"source" yaml:"source"`

	// CriteriaPresent reports whether the registry record carried any
	// eligibility criteria text at all.
	CriteriaPresent bool `json:"criteria_present" yaml:"criteria_present"`

	// Notes carries free-text caveats, e.g. why a fallback was returned.
	Notes string `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// EligibilityBreakdown is the structured criteria classification for one
// (trial, patient) pair. All slice fields are always non-nil and Disclaimer
// always carries the fixed disclaimer text, even when the AI response
// omitted them.
type EligibilityBreakdown struct {
	NCTID string `json:"nct_id" yaml:"nct_id"`

	// InclusionCriteria and ExclusionCriteria hold the classified criteria.
	InclusionCriteria []EligibilityCriterion `json:"inclusion_criteria" yaml:"inclusion_criteria"`
	ExclusionCriteria []EligibilityCriterion `json:"exclusion_criteria" yaml:"exclusion_criteria"`

	// PreparationChecklist lists concrete items the patient should gather or
	// ask about, derived from criteria with unknown status.
	PreparationChecklist []string `json:"preparation_checklist" yaml:"preparation_checklist"`

	// Disclaimer is the fixed disclaimer text.
	Disclaimer string `json:"disclaimer" yaml:"disclaimer"`

	Meta BreakdownMeta `json:"meta" yaml:"meta"`
}
