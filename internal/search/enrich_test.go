// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/pdiddy/citemap/pkg/types"
)

type fakeProfiles struct {
	mu        sync.Mutex
	hindex    map[string]int
	interests map[string][]string
	hCalls    []string
	delay     time.Duration
}

func (f *fakeProfiles) AuthorHIndex(ctx context.Context, id string) (int, error) {
	f.mu.Lock()
	f.hCalls = append(f.hCalls, id)
	f.mu.Unlock()
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	}
	h, ok := f.hindex[id]
	if !ok {
		return 0, errors.New("no profile")
	}
	return h, nil
}

func (f *fakeProfiles) AuthorInterests(_ context.Context, name string) ([]string, error) {
	kws, ok := f.interests[name]
	if !ok {
		return nil, errors.New("no profile")
	}
	return kws, nil
}

func TestAuthorEnricherFillsHIndexAndInterests(t *testing.T) {
	p := &fakeProfiles{
		hindex:    map[string]int{"a1": 12},
		interests: map[string][]string{"Ann Smith": {"Graphs", "bibliometrics"}},
	}
	e := &AuthorEnricher{HIndex: p, Interests: p, Logger: zaptest.NewLogger(t)}

	a := types.CanonicalArticle{
		Title: "X",
		Authors: []types.Author{
			{GivenName: "Ann", FamilyName: "Smith", ExternalID: "a1"},
			{GivenName: "Bo", FamilyName: "Lee", ExternalID: "missing"},
			{FamilyName: "Kim"},
		},
		Keywords: []string{"graphs"},
	}
	e.Enrich(context.Background(), &a)

	require.NotNil(t, a.Authors[0].HIndex)
	assert.Equal(t, 12, *a.Authors[0].HIndex)
	assert.Nil(t, a.Authors[1].HIndex, "failed lookup leaves h-index unknown")
	assert.Nil(t, a.Authors[2].HIndex)
	assert.Equal(t, []string{"a1", "missing"}, p.hCalls)
	assert.Equal(t, []string{"graphs", "bibliometrics"}, a.Keywords)
}

func TestAuthorEnricherMaxAuthors(t *testing.T) {
	p := &fakeProfiles{hindex: map[string]int{"a": 1, "b": 2, "c": 3}}
	e := &AuthorEnricher{HIndex: p, MaxAuthors: 2}

	a := types.CanonicalArticle{Authors: []types.Author{
		{FamilyName: "A", ExternalID: "a"},
		{FamilyName: "B", ExternalID: "b"},
		{FamilyName: "C", ExternalID: "c"},
	}}
	e.Enrich(context.Background(), &a)

	assert.Equal(t, []string{"a", "b"}, p.hCalls)
	assert.Nil(t, a.Authors[2].HIndex)
}

func TestAuthorEnricherTimeout(t *testing.T) {
	p := &fakeProfiles{hindex: map[string]int{"a": 1}, delay: time.Second}
	e := &AuthorEnricher{HIndex: p, Timeout: 10 * time.Millisecond}

	a := types.CanonicalArticle{Authors: []types.Author{{FamilyName: "A", ExternalID: "a"}}}
	start := time.Now()
	e.Enrich(context.Background(), &a)

	assert.Less(t, time.Since(start), 500*time.Millisecond)
	assert.Nil(t, a.Authors[0].HIndex)
}

func TestAuthorEnricherSkipsUnknownFirstAuthor(t *testing.T) {
	p := &fakeProfiles{interests: map[string][]string{types.UnknownAuthor: {"nope"}}}
	e := &AuthorEnricher{Interests: p}

	a := types.CanonicalArticle{Authors: []types.Author{{FamilyName: types.UnknownAuthor}}}
	e.Enrich(context.Background(), &a)
	assert.Empty(t, a.Keywords)
}

func TestAuthorEnricherNoLookups(t *testing.T) {
	e := &AuthorEnricher{}
	a := types.CanonicalArticle{Authors: []types.Author{{FamilyName: "A", ExternalID: "a"}}}
	e.Enrich(context.Background(), &a)
	assert.Nil(t, a.Authors[0].HIndex)
}
