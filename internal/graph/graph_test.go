// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package graph

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/pdiddy/citemap/internal/apperr"
	"github.com/pdiddy/citemap/internal/source"
	"github.com/pdiddy/citemap/pkg/types"
)

func intPtr(n int) *int { return &n }

// fakeLookups answers citation counts and surnames from maps keyed by
// DOI or record id. Unknown keys fail.
type fakeLookups struct {
	counts   map[string]int
	surnames map[string]string
	delay    time.Duration

	inFlight int32
	peak     int32
	calls    int32
}

func (f *fakeLookups) id(k LookupKey) string {
	if k.DOI != "" {
		return k.DOI
	}
	return k.RecordID
}

func (f *fakeLookups) enter() func() {
	atomic.AddInt32(&f.calls, 1)
	n := atomic.AddInt32(&f.inFlight, 1)
	for {
		p := atomic.LoadInt32(&f.peak)
		if n <= p || atomic.CompareAndSwapInt32(&f.peak, p, n) {
			break
		}
	}
	return func() { atomic.AddInt32(&f.inFlight, -1) }
}

func (f *fakeLookups) wait(ctx context.Context) error {
	if f.delay == 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(f.delay):
		return nil
	}
}

func (f *fakeLookups) CitationCount(ctx context.Context, k LookupKey) (int, error) {
	defer f.enter()()
	if err := f.wait(ctx); err != nil {
		return 0, err
	}
	n, ok := f.counts[f.id(k)]
	if !ok {
		return 0, errors.New("not found")
	}
	return n, nil
}

func (f *fakeLookups) FirstAuthorSurname(ctx context.Context, k LookupKey) (string, error) {
	defer f.enter()()
	if err := f.wait(ctx); err != nil {
		return "", err
	}
	s, ok := f.surnames[f.id(k)]
	if !ok {
		return "", errors.New("not found")
	}
	return s, nil
}

// smithDocument is a Scopus primary with one usable and one empty reference.
func smithDocument() types.CanonicalArticle {
	return types.CanonicalArticle{
		Title:           "Citation graphs",
		Authors:         []types.Author{{FamilyName: "Smith"}},
		DOI:             "10.1/abc",
		PublicationYear: source.ExtractYear("2023-05"),
		CitationCount:   12,
		Source:          types.SourceScopus,
		References: []types.RawReference{
			{"doi": "10.1/xyz", "family": "Lee", "pub_date": "2019-01-01"},
			{"doi": nil, "family": nil, "pub_date": nil},
		},
	}
}

func TestBuild_EndToEndScenario(t *testing.T) {
	b := NewBuilder(WithLogger(zaptest.NewLogger(t)))

	res, err := b.Build(context.Background(), source.Scopus{}, []types.CanonicalArticle{smithDocument()})
	require.NoError(t, err)

	g := res.Graph
	require.Len(t, g.Nodes, 2)
	assert.Equal(t, "Smith-2023", g.Nodes[0].IdentityKey)
	assert.Equal(t, "Smith - 2023", g.Nodes[0].DisplayLabel)
	assert.Equal(t, types.RolePrimary, g.Nodes[0].Role)
	assert.Equal(t, "https://doi.org/10.1/abc", g.Nodes[0].ResolvedURL)
	require.NotNil(t, g.Nodes[0].CitationCount)
	assert.Equal(t, 12, *g.Nodes[0].CitationCount, "normalized count kept without a counter")

	assert.Equal(t, "Lee-2019", g.Nodes[1].IdentityKey)
	assert.Equal(t, types.RoleReference, g.Nodes[1].Role)
	assert.Nil(t, g.Nodes[1].CitationCount)

	assert.Equal(t, []types.CitationEdge{{From: "Smith-2023", To: "Lee-2019"}}, g.Edges)

	require.Len(t, res.Documents, 1)
	assert.Equal(t, StateCommitted, res.Documents[0].State)
	assert.Equal(t, 2, res.Documents[0].References)
	assert.Equal(t, 1, res.Documents[0].ReferencesIncluded)
}

func TestBuild_RejectsDocumentWithoutIdentifier(t *testing.T) {
	doc := smithDocument()
	doc.DOI = ""
	doc.SourceRecordID = ""

	res, err := NewBuilder().Build(context.Background(), source.Scopus{}, []types.CanonicalArticle{doc})
	require.NoError(t, err)

	assert.Empty(t, res.Graph.Nodes, "references of a rejected document are ignored")
	assert.Empty(t, res.Graph.Edges)
	require.Len(t, res.Documents, 1)
	assert.Equal(t, StateRejected, res.Documents[0].State)
}

func TestBuild_RecordIDOnlyPrimary(t *testing.T) {
	doc := smithDocument()
	doc.DOI = ""
	doc.SourceRecordID = "2-s2.0-1"

	res, err := NewBuilder().Build(context.Background(), source.Scopus{}, []types.CanonicalArticle{doc})
	require.NoError(t, err)
	require.NotEmpty(t, res.Graph.Nodes)
	assert.Equal(t, "https://www.scopus.com/record/display.uri?eid=2-s2.0-1", res.Graph.Nodes[0].ResolvedURL)
}

func TestBuild_UnsupportedSource(t *testing.T) {
	_, err := NewBuilder().Build(context.Background(), source.Scholar{}, nil)
	assert.True(t, apperr.IsCode(err, apperr.CodeInvalidQueryParameters))
}

func TestBuild_MergesSharedIdentityWithoutDuplicateEdges(t *testing.T) {
	doc := types.CanonicalArticle{
		Title:           "Primary",
		Authors:         []types.Author{{FamilyName: "Smith"}},
		DOI:             "10.1/p",
		PublicationYear: intPtr(2023),
		References: []types.RawReference{
			{"doi": "10.1/a", "family": "Lee", "pub_date": "2019", "title": "First Lee"},
			{"doi": "10.1/b", "family": "Lee", "pub_date": "2019", "title": "Second Lee"},
		},
	}

	res, err := NewBuilder().Build(context.Background(), source.Scopus{}, []types.CanonicalArticle{doc})
	require.NoError(t, err)

	require.Len(t, res.Graph.Nodes, 2)
	assert.Equal(t, "First Lee", res.Graph.Nodes[1].Title, "first writer wins")
	assert.Len(t, res.Graph.Edges, 1)
}

func TestBuild_SelfLoopSuppressed(t *testing.T) {
	doc := types.CanonicalArticle{
		Title:           "Primary",
		Authors:         []types.Author{{FamilyName: "Smith"}},
		DOI:             "10.1/p",
		PublicationYear: intPtr(2023),
		References: []types.RawReference{
			{"doi": "10.1/other", "family": "Smith", "pub_date": "2023"},
		},
	}

	res, err := NewBuilder().Build(context.Background(), source.Scopus{}, []types.CanonicalArticle{doc})
	require.NoError(t, err)
	assert.Len(t, res.Graph.Nodes, 1)
	assert.Empty(t, res.Graph.Edges)
}

func TestBuild_ReferenceExclusion(t *testing.T) {
	doc := types.CanonicalArticle{
		Title:           "Primary",
		Authors:         []types.Author{{FamilyName: "Smith"}},
		DOI:             "10.1/p",
		PublicationYear: intPtr(2023),
		References: []types.RawReference{
			{"doi": "10.1/no-year", "family": "Lee"},
			{"family": "Park", "pub_date": "2018"},
			{"id": "850001", "family": "Kim", "pub_date": "2017"},
		},
	}

	res, err := NewBuilder().Build(context.Background(), source.Scopus{}, []types.CanonicalArticle{doc})
	require.NoError(t, err)

	keys := nodeKeys(res.Graph)
	assert.Equal(t, []string{"Smith-2023", "Kim-2017"}, keys)
	assert.LessOrEqual(t, len(res.Graph.Nodes), 1+1)
}

func TestBuild_CrossRefReferencesNeedDOI(t *testing.T) {
	doc := types.CanonicalArticle{
		Title:           "Primary",
		Authors:         []types.Author{{FamilyName: "Smith"}},
		DOI:             "10.1/p",
		PublicationYear: intPtr(2020),
		References: []types.RawReference{
			{"DOI": "10.1/r", "year": "2015", "author": "Lee"},
			{"year": "2014", "author": "Park", "unstructured": "Park 2014"},
		},
	}

	res, err := NewBuilder().Build(context.Background(), source.CrossRef{}, []types.CanonicalArticle{doc})
	require.NoError(t, err)
	assert.Equal(t, []string{"Smith-2020", "Lee-2015"}, nodeKeys(res.Graph))
}

func TestBuild_LookupsResolveCountsAndSurnames(t *testing.T) {
	lookups := &fakeLookups{
		counts:   map[string]int{"10.1/abc": 40, "10.1/xyz": 0},
		surnames: map[string]string{"10.1/anon": "Garcia Lopez"},
	}
	doc := smithDocument()
	doc.References = append(doc.References,
		types.RawReference{"doi": "10.1/anon", "pub_date": "2020"},
		types.RawReference{"doi": "10.1/missing", "pub_date": "2021"},
	)

	b := NewBuilder(WithCitationCounter(lookups), WithAuthorResolver(lookups), WithLogger(zaptest.NewLogger(t)))
	res, err := b.Build(context.Background(), source.Scopus{}, []types.CanonicalArticle{doc})
	require.NoError(t, err)

	byKey := map[string]types.CitationNode{}
	for _, n := range res.Graph.Nodes {
		byKey[n.IdentityKey] = n
	}
	require.Contains(t, byKey, "Smith-2023")
	require.Contains(t, byKey, "Lee-2019")
	require.Contains(t, byKey, "Garcia-2020")
	require.Contains(t, byKey, "unknown-2021")

	assert.Equal(t, 40, *byKey["Smith-2023"].CitationCount)
	require.NotNil(t, byKey["Lee-2019"].CitationCount)
	assert.Equal(t, 0, *byKey["Lee-2019"].CitationCount, "zero is a real count")
	assert.Nil(t, byKey["Garcia-2020"].CitationCount, "failed lookup is unknown")
	assert.Equal(t, "unknown - 2021", byKey["unknown-2021"].DisplayLabel)
}

func TestBuild_BoundedConcurrency(t *testing.T) {
	lookups := &fakeLookups{counts: map[string]int{}, delay: 5 * time.Millisecond}
	doc := smithDocument()
	doc.References = nil
	for i := 0; i < 20; i++ {
		doc.References = append(doc.References, types.RawReference{
			"doi": fmt.Sprintf("10.1/r%d", i), "family": fmt.Sprintf("A%d", i), "pub_date": "2010",
		})
	}

	b := NewBuilder(WithCitationCounter(lookups), WithConcurrency(3))
	res, err := b.Build(context.Background(), source.Scopus{}, []types.CanonicalArticle{doc})
	require.NoError(t, err)

	assert.Len(t, res.Graph.Nodes, 21)
	assert.LessOrEqual(t, atomic.LoadInt32(&lookups.peak), int32(3))
	assert.Equal(t, int32(21), atomic.LoadInt32(&lookups.calls))
}

func TestBuild_LookupTimeoutYieldsUnknown(t *testing.T) {
	lookups := &fakeLookups{counts: map[string]int{"10.1/abc": 1, "10.1/xyz": 1}, delay: time.Second}
	b := NewBuilder(WithCitationCounter(lookups), WithLookupTimeout(10*time.Millisecond))

	start := time.Now()
	res, err := b.Build(context.Background(), source.Scopus{}, []types.CanonicalArticle{smithDocument()})
	require.NoError(t, err)
	assert.Less(t, time.Since(start), 500*time.Millisecond)
	for _, n := range res.Graph.Nodes {
		assert.Nil(t, n.CitationCount, n.IdentityKey)
	}
}

func TestBuild_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewBuilder().Build(ctx, source.Scopus{}, []types.CanonicalArticle{smithDocument()})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBuild_Idempotent(t *testing.T) {
	lookups := &fakeLookups{counts: map[string]int{"10.1/abc": 3}}
	b := NewBuilder(WithCitationCounter(lookups), WithConcurrency(8))
	docs := []types.CanonicalArticle{smithDocument(), smithDocument()}
	docs[1].Authors = []types.Author{{FamilyName: "Lee"}}
	docs[1].PublicationYear = intPtr(2019)

	var wg sync.WaitGroup
	results := make([]Result, 5)
	for i := range results {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			r, err := b.Build(context.Background(), source.Scopus{}, docs)
			assert.NoError(t, err)
			results[i] = r
		}()
	}
	wg.Wait()

	for i := 1; i < len(results); i++ {
		assert.Equal(t, results[0].Graph, results[i].Graph)
	}
	assert.Equal(t, []string{"Smith-2023", "Lee-2019"}, nodeKeys(results[0].Graph))
	assert.Len(t, results[0].Graph.Edges, 1, "second document re-cites Lee-2019 from itself: self loop dropped")
}

func TestWriteJSON(t *testing.T) {
	res, err := NewBuilder().Build(context.Background(), source.Scopus{}, []types.CanonicalArticle{smithDocument()})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(res.Graph, &buf))

	var decoded struct {
		Nodes []map[string]any `json:"nodes"`
		Edges []map[string]any `json:"edges"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded.Nodes, 2)
	assert.Equal(t, "Smith-2023", decoded.Nodes[0]["id"])
	assert.Nil(t, decoded.Nodes[1]["citation_count"])
	assert.Equal(t, "Lee-2019", decoded.Edges[0]["to"])
}

func TestFormatTable(t *testing.T) {
	doc := smithDocument()
	orphan := smithDocument()
	orphan.DOI = ""
	orphan.Title = "Orphan"

	res, err := NewBuilder().Build(context.Background(), source.Scopus{}, []types.CanonicalArticle{doc, orphan})
	require.NoError(t, err)

	var buf bytes.Buffer
	FormatTable(res, &buf)
	out := buf.String()
	assert.Contains(t, out, "Smith - 2023")
	assert.Contains(t, out, "Smith-2023 -> Lee-2019")
	assert.Contains(t, out, "rejected: Orphan")
	assert.Contains(t, out, "2 nodes, 1 edges from 2 documents (1 rejected)")
}

func TestIdentityKey(t *testing.T) {
	assert.Equal(t, "Smith-2023", IdentityKey("Smith", intPtr(2023)))
	assert.Equal(t, "unknown-2023", IdentityKey(types.UnknownAuthor, intPtr(2023)))
	assert.Equal(t, "Smith-unknown", IdentityKey("Smith", nil))
	assert.Equal(t, "unknown - unknown", DisplayLabel("", nil))
}

func nodeKeys(g types.CitationGraph) []string {
	keys := make([]string, len(g.Nodes))
	for i, n := range g.Nodes {
		keys[i] = n.IdentityKey
	}
	return keys
}
