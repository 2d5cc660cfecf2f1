// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package eligibility

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/clinibridge/internal/ai"
	"github.com/pdiddy/clinibridge/internal/registry"
	"github.com/pdiddy/clinibridge/internal/store"
	"github.com/pdiddy/clinibridge/pkg/types"
)

const sampleCriteria = "Inclusion Criteria:\n- Age 18 or older\n- Confirmed NSCLC diagnosis\n\nExclusion Criteria:\n- Pregnancy\n- Active autoimmune disease"

const validResponse = `{
	"inclusion_criteria": [
		{"original": "Age 18 or older", "plain": "You must be at least 18.", "status": "met", "reason": "The profile states age 55."},
		{"original": "Confirmed NSCLC diagnosis", "plain": "You must have a confirmed lung cancer diagnosis.", "status": "unknown", "reason": "The profile does not mention a confirmed diagnosis."}
	],
	"exclusion_criteria": [
		{"original": "Pregnancy", "plain": "You cannot join if you are pregnant.", "status": "unknown", "reason": "Not stated in the profile."}
	],
	"preparation_checklist": ["Bring your pathology report."]
}`

// fakeRegistry returns a canned study and records calls.
type fakeRegistry struct {
	trial *registry.TrialRaw
	err   error
	calls int
}

func (f *fakeRegistry) GetStudy(_ context.Context, nctID string, _ time.Duration) (*registry.TrialRaw, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.trial, nil
}

// fakeCache is an in-memory RawCache recording puts.
type fakeCache struct {
	entries map[string]*store.RawEligibility
	puts    int
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: map[string]*store.RawEligibility{}}
}

func (f *fakeCache) GetRawEligibility(_ context.Context, nctID string) (*store.RawEligibility, error) {
	return f.entries[nctID], nil
}

func (f *fakeCache) PutRawEligibility(_ context.Context, raw store.RawEligibility) error {
	f.puts++
	if _, ok := f.entries[raw.NCTID]; !ok {
		f.entries[raw.NCTID] = &raw
	}
	return nil
}

// scriptedBackend returns responses in order and records requests.
type scriptedBackend struct {
	responses []string
	err       error
	requests  []ai.Request
}

func (s *scriptedBackend) Name() string { return "scripted" }

func (s *scriptedBackend) Complete(_ context.Context, req ai.Request) (string, error) {
	s.requests = append(s.requests, req)
	if s.err != nil {
		return "", s.err
	}
	i := len(s.requests) - 1
	if i >= len(s.responses) {
		i = len(s.responses) - 1
	}
	return s.responses[i], nil
}

func testRawTrial() *registry.TrialRaw {
	return &registry.TrialRaw{
		NCTID:               "NCT0001",
		BriefTitle:          "Test Trial",
		EligibilityCriteria: sampleCriteria,
		Sex:                 "ALL",
		MinimumAge:          "18 Years",
	}
}

func newTestExplainer(reg StudyGetter, cache RawCache, backend ai.Backend) *Explainer {
	return NewExplainer(reg, cache, backend, zerolog.Nop(), types.EligibilityConfig{})
}

func TestExplain_HappyPath(t *testing.T) {
	reg := &fakeRegistry{trial: testRawTrial()}
	cache := newFakeCache()
	backend := &scriptedBackend{responses: []string{validResponse}}

	e := newTestExplainer(reg, cache, backend)
	b := e.Explain(context.Background(), "NCT0001", types.PatientProfile{Condition: "lung cancer", Age: 55})

	require.NotNil(t, b)
	assert.Equal(t, "NCT0001", b.NCTID)
	assert.Equal(t, "ai", b.Meta.Source)
	assert.True(t, b.Meta.CriteriaPresent)
	require.Len(t, b.InclusionCriteria, 2)
	assert.Equal(t, types.StatusMet, b.InclusionCriteria[0].Status)
	assert.Equal(t, types.StatusUnknown, b.InclusionCriteria[1].Status)
	require.Len(t, b.ExclusionCriteria, 1)
	assert.Equal(t, []string{"Bring your pathology report."}, b.PreparationChecklist)
	assert.Equal(t, Disclaimer, b.Disclaimer)

	// One model call, temperature 0, profile and criteria in the prompt.
	require.Len(t, backend.requests, 1)
	assert.Equal(t, 0.0, backend.requests[0].Temperature)
	prompt := backend.requests[0].Messages[0].Content
	assert.Contains(t, prompt, "Age 18 or older")
	assert.Contains(t, prompt, "Condition: lung cancer")
	assert.Contains(t, prompt, "NCT0001")
}

func TestExplain_CacheFirst(t *testing.T) {
	reg := &fakeRegistry{trial: testRawTrial()}
	cache := newFakeCache()
	cache.entries["NCT0001"] = &store.RawEligibility{NCTID: "NCT0001", Criteria: sampleCriteria}
	backend := &scriptedBackend{responses: []string{validResponse}}

	e := newTestExplainer(reg, cache, backend)
	e.Explain(context.Background(), "NCT0001", types.PatientProfile{Condition: "lung cancer"})

	assert.Equal(t, 0, reg.calls)
	assert.Equal(t, 0, cache.puts)
}

func TestExplain_MissFetchesAndCaches(t *testing.T) {
	reg := &fakeRegistry{trial: testRawTrial()}
	cache := newFakeCache()
	backend := &scriptedBackend{responses: []string{validResponse}}

	e := newTestExplainer(reg, cache, backend)
	e.Explain(context.Background(), "NCT0001", types.PatientProfile{Condition: "lung cancer"})

	assert.Equal(t, 1, reg.calls)
	assert.Equal(t, 1, cache.puts)
	require.NotNil(t, cache.entries["NCT0001"])
	assert.Equal(t, sampleCriteria, cache.entries["NCT0001"].Criteria)
}

func TestExplain_RegistryErrorFallsBack(t *testing.T) {
	reg := &fakeRegistry{err: errors.New("connection refused")}
	backend := &scriptedBackend{responses: []string{validResponse}}

	e := newTestExplainer(reg, newFakeCache(), backend)
	b := e.Explain(context.Background(), "NCT0001", types.PatientProfile{Condition: "lung cancer"})

	assert.Equal(t, "fallback", b.Meta.Source)
	assert.False(t, b.Meta.CriteriaPresent)
	assert.NotEmpty(t, b.Meta.Notes)
	require.Len(t, b.InclusionCriteria, 1)
	assert.Equal(t, types.StatusUnknown, b.InclusionCriteria[0].Status)
	assert.Equal(t, genericChecklist, b.PreparationChecklist)
	assert.Equal(t, Disclaimer, b.Disclaimer)
	assert.Empty(t, backend.requests)
}

func TestExplain_NoCriteriaText(t *testing.T) {
	trial := testRawTrial()
	trial.EligibilityCriteria = "  "
	reg := &fakeRegistry{trial: trial}
	backend := &scriptedBackend{responses: []string{validResponse}}

	e := newTestExplainer(reg, newFakeCache(), backend)
	b := e.Explain(context.Background(), "NCT0001", types.PatientProfile{Condition: "lung cancer"})

	assert.Equal(t, "fallback", b.Meta.Source)
	assert.False(t, b.Meta.CriteriaPresent)
	assert.NotNil(t, b.ExclusionCriteria)
	assert.Empty(t, backend.requests)
}

func TestExplain_RepairRetrySucceeds(t *testing.T) {
	reg := &fakeRegistry{trial: testRawTrial()}
	backend := &scriptedBackend{responses: []string{"Sure! Here are the criteria as prose.", validResponse}}

	e := newTestExplainer(reg, newFakeCache(), backend)
	b := e.Explain(context.Background(), "NCT0001", types.PatientProfile{Condition: "lung cancer"})

	assert.Equal(t, "ai", b.Meta.Source)
	require.Len(t, backend.requests, 2)
	assert.Equal(t, 0.0, backend.requests[0].Temperature)
	assert.Equal(t, 0.1, backend.requests[1].Temperature)

	// The repair turn echoes the bad answer and appends the fix instruction.
	msgs := backend.requests[1].Messages
	require.Len(t, msgs, 3)
	assert.Equal(t, "assistant", msgs[1].Role)
	assert.Equal(t, "Sure! Here are the criteria as prose.", msgs[1].Content)
	assert.Equal(t, repairPrompt, msgs[2].Content)
}

func TestExplain_RepairRetryFailsFallsBack(t *testing.T) {
	reg := &fakeRegistry{trial: testRawTrial()}
	backend := &scriptedBackend{responses: []string{"not json", "still not json"}}

	e := newTestExplainer(reg, newFakeCache(), backend)
	b := e.Explain(context.Background(), "NCT0001", types.PatientProfile{Condition: "lung cancer"})

	assert.Len(t, backend.requests, 2)
	assert.Equal(t, "fallback", b.Meta.Source)
	assert.True(t, b.Meta.CriteriaPresent)

	// The fallback preserves the raw criteria lines, classified unknown.
	require.Len(t, b.InclusionCriteria, 2)
	assert.Equal(t, "Age 18 or older", b.InclusionCriteria[0].Original)
	assert.Equal(t, types.StatusUnknown, b.InclusionCriteria[0].Status)
	require.Len(t, b.ExclusionCriteria, 2)
	assert.Equal(t, "Pregnancy", b.ExclusionCriteria[0].Original)
}

func TestExplain_BackendErrorFallsBack(t *testing.T) {
	reg := &fakeRegistry{trial: testRawTrial()}
	backend := &scriptedBackend{err: errors.New("model unavailable")}

	e := newTestExplainer(reg, newFakeCache(), backend)
	b := e.Explain(context.Background(), "NCT0001", types.PatientProfile{Condition: "lung cancer"})

	assert.Equal(t, "fallback", b.Meta.Source)
	assert.True(t, b.Meta.CriteriaPresent)
	assert.Len(t, backend.requests, 1)
}

func TestExplain_ContextCap(t *testing.T) {
	trial := testRawTrial()
	trial.EligibilityCriteria = "Inclusion Criteria:\n- " + strings.Repeat("x", 9000)
	reg := &fakeRegistry{trial: trial}
	backend := &scriptedBackend{responses: []string{validResponse}}

	e := newTestExplainer(reg, newFakeCache(), backend)
	b := e.Explain(context.Background(), "NCT0001", types.PatientProfile{Condition: "lung cancer"})

	prompt := backend.requests[0].Messages[0].Content
	assert.Contains(t, prompt, truncationNotice)
	assert.NotContains(t, prompt, strings.Repeat("x", 8500))
	assert.Contains(t, b.Meta.Notes, "truncated")
}

func TestCapContext(t *testing.T) {
	short, truncated := capContext("abc", 8000)
	assert.Equal(t, "abc", short)
	assert.False(t, truncated)

	long, truncated := capContext(strings.Repeat("a", 9000), 8000)
	assert.True(t, truncated)
	assert.Len(t, long, 8000+len(truncationNotice))
	assert.True(t, strings.HasSuffix(long, truncationNotice))
}

func TestParseStatusVariants(t *testing.T) {
	tests := []struct {
		raw  string
		want types.CriterionStatus
	}{
		{"met", types.StatusMet},
		{"MET", types.StatusMet},
		{" Met ", types.StatusMet},
		{"not_met", types.StatusNotMet},
		{"Not Met", types.StatusNotMet},
		{"NOT-MET", types.StatusNotMet},
		{"unmet", types.StatusNotMet},
		{"unknown", types.StatusUnknown},
		{"", types.StatusUnknown},
		{"maybe", types.StatusUnknown},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseStatus(tt.raw), "status %q", tt.raw)
	}
}

func TestParseBreakdownResponse(t *testing.T) {
	t.Run("fenced", func(t *testing.T) {
		resp, err := parseBreakdownResponse("```json\n" + validResponse + "\n```")
		require.NoError(t, err)
		assert.Len(t, resp.InclusionCriteria, 2)
	})

	t.Run("no criteria arrays", func(t *testing.T) {
		_, err := parseBreakdownResponse(`{"preparation_checklist": []}`)
		assert.Error(t, err)
	})

	t.Run("not json", func(t *testing.T) {
		_, err := parseBreakdownResponse("I cannot classify these criteria.")
		assert.Error(t, err)
	})
}

func TestConvertCriteriaDefaults(t *testing.T) {
	items := []criterionItem{
		{Original: "Age 18+", Status: "met"},
		{Plain: "Plain only", Status: "bogus"},
		{},
	}
	got := convertCriteria(items)
	require.Len(t, got, 2)
	assert.Equal(t, "Age 18+", got[0].Plain)
	assert.Equal(t, types.StatusMet, got[0].Status)
	assert.Equal(t, types.StatusUnknown, got[1].Status)
}
