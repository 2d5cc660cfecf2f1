// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/clinibridge/pkg/types"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "clinibridge.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestLogSearchAndList(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	profile := types.PatientProfile{
		Condition:      "lung cancer",
		Age:            55,
		Location:       "Boston",
		Medications:    []string{"metformin"},
		AdditionalInfo: "former smoker",
	}
	trials := []types.TrialSummary{{NCTID: "NCT1", BriefTitle: "T"}}

	id, err := s.LogSearch(ctx, profile, trials)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	records, err := s.ListSearches(ctx, 10)
	require.NoError(t, err)
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, id, rec.ID)
	assert.Equal(t, "lung cancer", rec.Condition)
	assert.Equal(t, 55, rec.Age)
	assert.Equal(t, []string{"metformin"}, rec.Medications)
	require.Len(t, rec.Results, 1)
	assert.Equal(t, "NCT1", rec.Results[0].NCTID)
	assert.False(t, rec.CreatedAt.IsZero())
}

func TestListSearches_NewestFirst(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for _, cond := range []string{"first", "second", "third"} {
		_, err := s.LogSearch(ctx, types.PatientProfile{Condition: cond}, nil)
		require.NoError(t, err)
		time.Sleep(2 * time.Millisecond)
	}

	records, err := s.ListSearches(ctx, 2)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "third", records[0].Condition)
	assert.Equal(t, "second", records[1].Condition)
}

func TestRawEligibility_MissReturnsNil(t *testing.T) {
	s := openTestStore(t)

	raw, err := s.GetRawEligibility(context.Background(), "NCT0")
	require.NoError(t, err)
	assert.Nil(t, raw)
}

func TestRawEligibility_PutGet(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	err := s.PutRawEligibility(ctx, RawEligibility{
		NCTID:      "NCT1",
		Criteria:   "Inclusion Criteria:\n* Age >= 18",
		Sex:        "ALL",
		MinimumAge: "18 Years",
		StdAges:    []string{"ADULT"},
	})
	require.NoError(t, err)

	raw, err := s.GetRawEligibility(ctx, "NCT1")
	require.NoError(t, err)
	require.NotNil(t, raw)
	assert.Equal(t, "NCT1", raw.NCTID)
	assert.Contains(t, raw.Criteria, "Age >= 18")
	assert.Equal(t, []string{"ADULT"}, raw.StdAges)
	assert.False(t, raw.FetchedAt.IsZero())
}

func TestRawEligibility_SecondPutKeepsOriginal(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	first := RawEligibility{NCTID: "NCT1", Criteria: "original", FetchedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}
	require.NoError(t, s.PutRawEligibility(ctx, first))
	require.NoError(t, s.PutRawEligibility(ctx, RawEligibility{NCTID: "NCT1", Criteria: "rewritten"}))

	raw, err := s.GetRawEligibility(ctx, "NCT1")
	require.NoError(t, err)
	require.NotNil(t, raw)
	assert.Equal(t, "original", raw.Criteria)
	assert.True(t, raw.FetchedAt.Equal(first.FetchedAt))
}
