// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package match

import (
	"bytes"
	"text/template"

	"github.com/pdiddy/clinibridge/pkg/types"
)

// scoringPromptTmpl instructs the model to score each candidate trial
// against the patient profile and respond with the fixed label set.
var scoringPromptTmpl = template.Must(template.New("scoring").Parse(`You are a clinical trial matching assistant. Score each candidate trial below against the patient profile.

Scoring rules:
- If the patient's age falls outside the trial's stated age range, the label is "Unlikely" regardless of anything else.
- If the trial's conditions match the patient's condition (or a synonym of it) and you find no disqualifying factor, the label is "Strong Match".
- Cross-check the patient's medications against the trial's exclusion criteria and against inclusion language such as "failed prior X".
- Otherwise use "Possible Match" for partial fits and "Worth Exploring" for plausible but uncertain fits.

For each trial, produce:
- nct_id: the trial's NCT ID, copied exactly
- match_label: one of "Strong Match", "Possible Match", "Worth Exploring", "Unlikely"
- match_score: an integer from 0 to 100
- match_reason: one sentence explaining the label

Respond with a JSON object containing a "matches" array. Do not include any text outside the JSON object.

Example response:
{"matches": [{"nct_id": "NCT01234567", "match_label": "Strong Match", "match_score": 85, "match_reason": "Condition and age both fit and no exclusion applies."}]}

Patient profile:
- Condition: {{.Profile.Condition}}
{{- if .Profile.Age}}
- Age: {{.Profile.Age}}
{{- end}}
{{- if .Profile.Location}}
- Location: {{.Profile.Location}}
{{- end}}
{{- if .Profile.Medications}}
- Medications: {{range $i, $m := .Profile.Medications}}{{if $i}}, {{end}}{{$m}}{{end}}
{{- end}}
{{- if .Profile.AdditionalInfo}}
- Additional info: {{.Profile.AdditionalInfo}}
{{- end}}

Candidate trials:
{{range .Trials}}
---
NCT ID: {{.NCTID}}
Title: {{.BriefTitle}}
Phase: {{.Phase}}
Age range: {{.AgeRange}}
Conditions: {{range $i, $c := .Conditions}}{{if $i}}, {{end}}{{$c}}{{end}}
Interventions: {{range $i, $iv := .Interventions}}{{if $i}}, {{end}}{{$iv}}{{end}}
Eligibility: {{.EligibilityText}}
{{end}}`))

// renderScoringPrompt builds the scoring prompt from a compact projection
// of each trial plus the full patient profile.
func renderScoringPrompt(trials []types.TrialSummary, profile types.PatientProfile) (string, error) {
	var buf bytes.Buffer
	err := scoringPromptTmpl.Execute(&buf, struct {
		Profile types.PatientProfile
		Trials  []types.TrialSummary
	}{Profile: profile, Trials: trials})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}
