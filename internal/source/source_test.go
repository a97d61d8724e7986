// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/pdiddy/citemap/internal/apperr"
	"github.com/pdiddy/citemap/pkg/types"
)

func intPtr(n int) *int { return &n }

func TestFor(t *testing.T) {
	for _, src := range types.AllSources {
		s, err := For(src)
		require.NoError(t, err)
		assert.Equal(t, src, s.Source())
	}

	_, err := For("arxiv")
	assert.True(t, apperr.IsCode(err, apperr.CodeInvalidQueryParameters))
}

func TestStrategyCapabilities(t *testing.T) {
	tests := []struct {
		s         Strategy
		refs      bool
		venue     bool
		recordURL string
		noDOIOrID string
	}{
		{Scopus{}, true, true, "https://www.scopus.com/record/display.uri?eid=2-s2.0-1", ""},
		{CrossRef{}, true, false, "", ""},
		{Scholar{}, false, false, "", ""},
	}
	for _, tt := range tests {
		t.Run(string(tt.s.Source()), func(t *testing.T) {
			assert.Equal(t, tt.refs, tt.s.SupportsReferences())
			assert.Equal(t, tt.venue, tt.s.VenueMetricsApplicable())
			assert.Equal(t, "https://doi.org/10.1/x", tt.s.RecordURL("10.1/x", "2-s2.0-1"))
			assert.Equal(t, tt.recordURL, tt.s.RecordURL("", "2-s2.0-1"))
			assert.Equal(t, tt.noDOIOrID, tt.s.RecordURL("", ""))
		})
	}
}

func TestEligible(t *testing.T) {
	tests := []struct {
		name string
		year *int
		want bool
	}{
		{"current year", intPtr(2024), true},
		{"lower bound", intPtr(1900), true},
		{"before 1900", intPtr(1899), false},
		{"future", intPtr(2025), false},
		{"unknown", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := types.CanonicalArticle{PublicationYear: tt.year}
			for _, src := range types.AllSources {
				s, _ := For(src)
				assert.Equal(t, tt.want, s.Eligible(a, 2024), string(src))
			}
		})
	}
}

func TestNormalizeAll_SkipsMalformed(t *testing.T) {
	raws := []json.RawMessage{
		json.RawMessage(`{"title": ["Kept"], "DOI": "10.1/a"}`),
		json.RawMessage(`{"publisher": "nobody"}`),
		json.RawMessage(`not json`),
		json.RawMessage(`{"title": ["Also kept"]}`),
	}
	articles, skipped := NormalizeAll(CrossRef{}, raws, zaptest.NewLogger(t))
	assert.Equal(t, 2, skipped)
	require.Len(t, articles, 2)
	assert.Equal(t, "Kept", articles[0].Title)
	assert.Equal(t, "Also kept", articles[1].Title)
}

func TestFlexInt(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{`12`, 12},
		{`"34"`, 34},
		{`" 5 "`, 5},
		{`"n/a"`, 0},
		{`null`, 0},
		{`{}`, 0},
	}
	for _, tt := range tests {
		var f flexInt
		require.NoError(t, json.Unmarshal([]byte(tt.in), &f))
		assert.Equal(t, tt.want, int(f), tt.in)
	}
}

func TestSurname(t *testing.T) {
	assert.Equal(t, "Smith", Surname("Smith J."))
	assert.Equal(t, "Smith", Surname("Smith, John"))
	assert.Equal(t, "", Surname("   "))
}
