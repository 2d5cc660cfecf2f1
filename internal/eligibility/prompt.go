// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package eligibility

import (
	"bytes"
	"text/template"

	"github.com/pdiddy/clinibridge/internal/store"
	"github.com/pdiddy/clinibridge/pkg/types"
)

// breakdownPromptTmpl asks the model to rewrite and classify each
// criterion against the patient profile.
var breakdownPromptTmpl = template.Must(template.New("breakdown").Parse(`You are a clinical trial eligibility assistant. Rewrite each eligibility criterion below in plain English and classify it against the patient profile.

Classification rules:
- "met" means the profile satisfies the criterion (for an exclusion criterion: the patient is NOT excluded by it).
- "not_met" means the profile clearly fails the criterion (for an exclusion criterion: the patient IS excluded by it).
- "unknown" means the profile does not carry enough information to decide. When in doubt, use "unknown".
- Never guess lab values, diagnoses, or treatment history the profile does not state.

Also produce a preparation checklist: concrete documents or questions the patient should bring to the study team, derived from the "unknown" criteria.

Respond with a JSON object and nothing else:
{"inclusion_criteria": [{"original": "<criterion as written>", "plain": "<plain-English rewrite>", "status": "met" | "not_met" | "unknown", "reason": "<one sentence>"}], "exclusion_criteria": [<same shape>], "preparation_checklist": ["<item>"]}

Patient profile:
- Condition: {{.Profile.Condition}}
{{- if .Profile.Age}}
- Age: {{.Profile.Age}}
{{- end}}
{{- if .Profile.Medications}}
- Medications: {{range $i, $m := .Profile.Medications}}{{if $i}}, {{end}}{{$m}}{{end}}
{{- end}}
{{- if .Profile.AdditionalInfo}}
- Additional info: {{.Profile.AdditionalInfo}}
{{- end}}

Trial {{.Raw.NCTID}} eligibility record:
{{- if .Raw.Sex}}
- Sex restriction: {{.Raw.Sex}}
{{- end}}
{{- if .Raw.MinimumAge}}
- Minimum age: {{.Raw.MinimumAge}}
{{- end}}
{{- if .Raw.MaximumAge}}
- Maximum age: {{.Raw.MaximumAge}}
{{- end}}

Criteria text:
{{.Criteria}}`))

// repairPrompt is the single follow-up sent when the first response fails
// schema validation.
const repairPrompt = `Your previous response was not valid JSON matching the required schema. Fix your JSON: respond with only a JSON object containing "inclusion_criteria", "exclusion_criteria", and "preparation_checklist", where every criterion has "original", "plain", "status" ("met", "not_met", or "unknown"), and "reason". Do not include any text outside the JSON object.`

func renderBreakdownPrompt(raw *store.RawEligibility, profile types.PatientProfile, criteria string) (string, error) {
	var buf bytes.Buffer
	err := breakdownPromptTmpl.Execute(&buf, struct {
		Profile  types.PatientProfile
		Raw      *store.RawEligibility
		Criteria string
	}{Profile: profile, Raw: raw, Criteria: criteria})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}
