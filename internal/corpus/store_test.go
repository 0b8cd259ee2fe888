// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package corpus

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/lead-engine/pkg/types"
)

func testSamples() []types.Sample {
	return []types.Sample{
		{
			QueryParams: types.ResearchParams{
				WhoQuery:  "Professor | Researcher | Scientist",
				WhatQuery: "Clinical Nutrition (Nutrition and Dietetics)",
			},
			QueryString: "Find me as many leads as possible... nutrition",
			QueryType:   types.QueryInstitutionFocused,
			ExpectedResults: types.LeadResults{Leads: []types.Lead{
				{Name: "Carla Prado", Email: "carla.prado@ualberta.ca"},
				{Name: "Diana Mager"},
			}},
			OpenAlex: types.OpenAlexProvenance{
				TopicDisplayName:   "Clinical Nutrition",
				InstitutionID:      "https://openalex.org/I52357470",
				InstitutionCountry: "CA",
			},
		},
		{
			QueryParams: types.ResearchParams{
				WhoQuery:  "Professor | Researcher | Scientist",
				WhatQuery: "Machine Learning",
			},
			QueryString: "Find me as many leads as possible... machine learning",
			QueryType:   types.QueryLocationBased,
			ExpectedResults: types.LeadResults{Leads: []types.Lead{
				{Name: "Ada Lovelace"},
			}},
			OpenAlex: types.OpenAlexProvenance{
				TopicDisplayName:   "Machine Learning",
				City:               "Bristol",
				InstitutionCountry: "GB",
			},
		},
	}
}

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := NewStore(types.CorpusConfig{Dir: dir})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	data, err := json.Marshal(testSamples())
	require.NoError(t, err)
	path := filepath.Join(dir, "corpus.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return store, path
}

func TestImportAndStats(t *testing.T) {
	store, path := newTestStore(t)

	var buf bytes.Buffer
	summary, err := store.Import(context.Background(), path, &buf)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Imported)
	assert.Equal(t, 0, summary.Skipped)
	assert.Contains(t, buf.String(), "imported: 2, skipped: 0")

	stats, err := store.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Samples)
	assert.Equal(t, 3, stats.Leads)
	assert.Equal(t, map[string]int{
		"institution_focused": 1,
		"location_based":      1,
	}, stats.ByQueryType)
}

func TestImportSkipsDuplicates(t *testing.T) {
	store, path := newTestStore(t)

	var buf bytes.Buffer
	_, err := store.Import(context.Background(), path, &buf)
	require.NoError(t, err)

	summary, err := store.Import(context.Background(), path, &buf)
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Imported)
	assert.Equal(t, 2, summary.Skipped)

	stats, err := store.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Samples)
	assert.Equal(t, 3, stats.Leads)
}

func TestQueryByType(t *testing.T) {
	store, path := newTestStore(t)
	var buf bytes.Buffer
	_, err := store.Import(context.Background(), path, &buf)
	require.NoError(t, err)

	records, err := store.Query(context.Background(), QueryOptions{QueryType: "institution_focused"})
	require.NoError(t, err)
	require.Len(t, records, 1)

	r := records[0]
	assert.Equal(t, "Clinical Nutrition", r.Topic)
	assert.Equal(t, "CA", r.Country)
	require.Len(t, r.Leads, 2)
	assert.Equal(t, "Carla Prado", r.Leads[0].Name)
	assert.Equal(t, "carla.prado@ualberta.ca", r.Leads[0].Email)
}

func TestQueryByTopicSubstring(t *testing.T) {
	store, path := newTestStore(t)
	var buf bytes.Buffer
	_, err := store.Import(context.Background(), path, &buf)
	require.NoError(t, err)

	records, err := store.Query(context.Background(), QueryOptions{Topic: "Learning"})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Machine Learning", records[0].Topic)
	assert.Equal(t, "Bristol", records[0].City)

	none, err := store.Query(context.Background(), QueryOptions{Topic: "Astrophysics"})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestQueryLimit(t *testing.T) {
	store, path := newTestStore(t)
	var buf bytes.Buffer
	_, err := store.Import(context.Background(), path, &buf)
	require.NoError(t, err)

	records, err := store.Query(context.Background(), QueryOptions{Limit: 1})
	require.NoError(t, err)
	require.Len(t, records, 1)
	// Newest first.
	assert.Equal(t, "Machine Learning", records[0].Topic)
}
