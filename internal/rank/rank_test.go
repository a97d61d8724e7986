// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rank

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/pdiddy/citemap/internal/source"
	"github.com/pdiddy/citemap/internal/venue"
	"github.com/pdiddy/citemap/pkg/types"
)

func intPtr(n int) *int { return &n }

func fixedClock(year int) func() time.Time {
	return func() time.Time { return time.Date(year, 6, 1, 0, 0, 0, 0, time.UTC) }
}

func article(title string, year *int, citations int) types.CanonicalArticle {
	return types.CanonicalArticle{Title: title, PublicationYear: year, CitationCount: citations}
}

func TestScore_WorkedExample(t *testing.T) {
	got, ok := Score(article("A", intPtr(2020), 100), DefaultWeights(), 2024)
	require.True(t, ok)
	// 0.7*100 + 0.2*(1/5) + 0.1*4
	assert.InDelta(t, 70.44, got, 1e-9)
}

func TestScore_CurrentYearWithCitations(t *testing.T) {
	got, ok := Score(article("A", intPtr(2024), 100), DefaultWeights(), 2024)
	require.True(t, ok)
	assert.InDelta(t, 70.2, got, 1e-9)
}

func TestScore_CurrentYearNovelty(t *testing.T) {
	got, ok := Score(article("A", intPtr(2024), 0), Weights{Beta: 1}, 2024)
	require.True(t, ok)
	assert.InDelta(t, 1.0, got, 1e-9)
}

func TestScore_Ineligible(t *testing.T) {
	tests := []struct {
		name string
		year *int
	}{
		{"unknown year", nil},
		{"before 1900", intPtr(1899)},
		{"future", intPtr(2025)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := Score(article("A", tt.year, 10), DefaultWeights(), 2024)
			assert.False(t, ok)
		})
	}
}

func TestScore_MonotonicInCitations(t *testing.T) {
	w := DefaultWeights()
	prev := -1.0
	for _, c := range []int{0, 1, 5, 50, 500} {
		got, ok := Score(article("A", intPtr(2010), c), w, 2024)
		require.True(t, ok)
		assert.Greater(t, got, prev)
		prev = got
	}
}

func TestRank_OrdersAndExcludes(t *testing.T) {
	articles := []types.CanonicalArticle{
		article("A", intPtr(2020), 100),
		article("B", intPtr(2024), 0),
		article("C", nil, 1000),
	}
	r := NewRanker(DefaultWeights(), WithClock(fixedClock(2024)), WithLogger(zaptest.NewLogger(t)))

	got := r.Rank(context.Background(), source.CrossRef{}, articles)
	require.Len(t, got, 2)
	assert.Equal(t, "A", got[0].Article.Title)
	assert.InDelta(t, 70.44, got[0].Score, 1e-9)
	assert.Equal(t, "B", got[1].Article.Title)
	assert.InDelta(t, 0.2, got[1].Score, 1e-9)
	assert.Nil(t, got[0].Venue)
}

func TestRank_StableTies(t *testing.T) {
	articles := []types.CanonicalArticle{
		article("first", intPtr(2020), 3),
		article("second", intPtr(2020), 3),
		article("third", intPtr(2020), 3),
	}
	got := NewRanker(DefaultWeights(), WithClock(fixedClock(2024))).Rank(context.Background(), source.Scopus{}, articles)
	require.Len(t, got, 3)
	assert.Equal(t, "first", got[0].Article.Title)
	assert.Equal(t, "second", got[1].Article.Title)
	assert.Equal(t, "third", got[2].Article.Title)
}

func TestRank_Empty(t *testing.T) {
	got := NewRanker(DefaultWeights()).Rank(context.Background(), source.Scholar{}, nil)
	assert.Empty(t, got)
}

type countingSerials struct{ calls int }

func (c *countingSerials) Serial(context.Context, string) (json.RawMessage, error) {
	c.calls++
	return json.RawMessage(`{"serial-metadata-response": {"entry": [{"dc:publisher": "Graph Press"}]}}`), nil
}

func TestRank_AttachesVenueWithoutChangingScore(t *testing.T) {
	serials := &countingSerials{}
	e := venue.NewEnricher(serials, time.Second, zaptest.NewLogger(t))
	r := NewRanker(DefaultWeights(), WithClock(fixedClock(2024)), WithVenue(e))

	articles := []types.CanonicalArticle{
		{Title: "A", PublicationYear: intPtr(2020), CitationCount: 100, ISSN: "1"},
		{Title: "B", PublicationYear: intPtr(2021), CitationCount: 1, ISSN: "1"},
		{Title: "C", PublicationYear: intPtr(2022), CitationCount: 1},
	}
	got := r.Rank(context.Background(), source.Scopus{}, articles)
	require.Len(t, got, 3)

	require.NotNil(t, got[0].Venue)
	assert.Equal(t, "Graph Press", got[0].Venue.Publisher)
	assert.InDelta(t, 70.44, got[0].Score, 1e-9)
	assert.Nil(t, got[2].Venue, "article without ISSN")
	assert.Equal(t, 1, serials.calls, "same ISSN looked up once per pass")

	got = r.Rank(context.Background(), source.CrossRef{}, articles)
	assert.Nil(t, got[0].Venue, "crossref has no venue metrics")
}
