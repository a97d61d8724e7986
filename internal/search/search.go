// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package search fans a query out to the configured bibliographic sources
// and returns one ranked list per source. Each source runs in its own
// goroutine with its own slice of results; lists are only gathered once
// every source has finished. Results are never merged or de-duplicated
// across sources.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/citemap/internal/apperr"
	"github.com/pdiddy/citemap/internal/logging"
	"github.com/pdiddy/citemap/internal/rank"
	"github.com/pdiddy/citemap/internal/source"
	"github.com/pdiddy/citemap/pkg/types"
)

// Fetcher retrieves raw records from one source. Each provider client
// implements this interface.
type Fetcher interface {
	Source() types.Source
	Search(ctx context.Context, q types.Query) ([]json.RawMessage, error)
}

// ArticleEnricher adds data to a normalized article from secondary
// lookups. Enrichers never fail the article.
type ArticleEnricher interface {
	Enrich(ctx context.Context, a *types.CanonicalArticle)
}

// ReferenceLoader fetches the bibliography of an article whose search
// payload does not include one.
type ReferenceLoader interface {
	References(ctx context.Context, a types.CanonicalArticle) ([]types.RawReference, error)
}

// enrichConcurrency caps simultaneous enrichment calls per source.
const enrichConcurrency = 4

// DateRange is an inclusive publication-year filter. A nil bound is open.
type DateRange struct {
	Start *int `json:"start,omitempty" yaml:"start,omitempty"`
	End   *int `json:"end,omitempty" yaml:"end,omitempty"`
}

// ParseDateRange parses optional year bounds. Blank strings are open
// bounds; anything non-numeric, or a start after the end, is rejected.
func ParseDateRange(start, end string) (DateRange, error) {
	var dr DateRange
	var err error
	if dr.Start, err = parseBound("start", start); err != nil {
		return DateRange{}, err
	}
	if dr.End, err = parseBound("end", end); err != nil {
		return DateRange{}, err
	}
	return dr, dr.Validate()
}

func parseBound(name, s string) (*int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil, apperr.New(apperr.CodeInvalidQueryParameters, "%s year %q is not a number", name, s)
	}
	return &n, nil
}

// Validate rejects a range whose start is after its end.
func (d DateRange) Validate() error {
	if d.Start != nil && d.End != nil && *d.Start > *d.End {
		return apperr.New(apperr.CodeInvalidQueryParameters, "start year %d is after end year %d", *d.Start, *d.End)
	}
	return nil
}

// Contains reports whether year falls in the range. An unknown year is
// only contained by the fully open range.
func (d DateRange) Contains(year *int) bool {
	if d.Start == nil && d.End == nil {
		return true
	}
	if year == nil {
		return false
	}
	if d.Start != nil && *year < *d.Start {
		return false
	}
	if d.End != nil && *year > *d.End {
		return false
	}
	return true
}

// ParseSources maps source names onto types.Source. An empty list selects
// every source. Duplicates are dropped.
func ParseSources(names []string) ([]types.Source, error) {
	var out []types.Source
	seen := make(map[types.Source]bool)
	for _, n := range names {
		if strings.TrimSpace(n) == "" {
			continue
		}
		s, err := types.ParseSource(n)
		if err != nil {
			return nil, apperr.Wrap(err, apperr.CodeInvalidQueryParameters, "sources")
		}
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return append([]types.Source(nil), types.AllSources...), nil
	}
	return out, nil
}

// Status summarizes how one source fared.
type Status string

const (
	StatusOK                Status = "ok"
	StatusNoEligibleResults Status = Status(apperr.CodeNoEligibleResults)
	StatusUnavailable       Status = "unavailable"
)

// SourceResult is the ranked list and bookkeeping for one source.
type SourceResult struct {
	Source    types.Source          `json:"source" yaml:"source"`
	Status    Status                `json:"status" yaml:"status"`
	Fetched   int                   `json:"fetched" yaml:"fetched"`
	Malformed int                   `json:"malformed" yaml:"malformed"`
	Error     string                `json:"error,omitempty" yaml:"error,omitempty"`
	Articles  []types.ScoredArticle `json:"articles" yaml:"articles"`
}

// Results holds one SourceResult per requested source, in request order.
type Results struct {
	Query   types.Query    `json:"query" yaml:"query"`
	Range   DateRange      `json:"date_range" yaml:"date_range"`
	Sources []SourceResult `json:"sources" yaml:"sources"`
}

// For returns the result of src.
func (r Results) For(src types.Source) (SourceResult, bool) {
	for _, sr := range r.Sources {
		if sr.Source == src {
			return sr, true
		}
	}
	return SourceResult{}, false
}

// Total counts ranked articles across sources.
func (r Results) Total() int {
	n := 0
	for _, sr := range r.Sources {
		n += len(sr.Articles)
	}
	return n
}

// Aggregator runs searches across sources.
type Aggregator struct {
	fetchers  map[types.Source]Fetcher
	enrichers map[types.Source][]ArticleEnricher
	refs      map[types.Source]ReferenceLoader
	ranker    *rank.Ranker
	log       *zap.Logger
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithFetcher registers the fetcher for its source.
func WithFetcher(f Fetcher) Option {
	return func(a *Aggregator) { a.fetchers[f.Source()] = f }
}

// WithEnricher adds an enricher applied to every article of src.
func WithEnricher(src types.Source, e ArticleEnricher) Option {
	return func(a *Aggregator) { a.enrichers[src] = append(a.enrichers[src], e) }
}

// WithReferenceLoader registers the bibliography loader of src.
func WithReferenceLoader(src types.Source, l ReferenceLoader) Option {
	return func(a *Aggregator) { a.refs[src] = l }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(a *Aggregator) { a.log = logging.OrNop(l) }
}

// NewAggregator returns an Aggregator ranking with r.
func NewAggregator(r *rank.Ranker, opts ...Option) *Aggregator {
	a := &Aggregator{
		fetchers:  make(map[types.Source]Fetcher),
		enrichers: make(map[types.Source][]ArticleEnricher),
		refs:      make(map[types.Source]ReferenceLoader),
		ranker:    r,
		log:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Search queries every source in sources (all of them when empty)
// concurrently. A failing source is reported as unavailable and the
// others still return; only when every source fails does Search return
// an apperr.CodeSourceUnavailable error, alongside the per-source report.
func (a *Aggregator) Search(ctx context.Context, q types.Query, sources []types.Source, dr DateRange) (Results, error) {
	q.Text = strings.TrimSpace(q.Text)
	if q.Text == "" {
		return Results{}, apperr.New(apperr.CodeInvalidQueryParameters, "query is empty")
	}
	if q.Type == "" {
		q.Type = types.SearchTitle
	}
	if err := dr.Validate(); err != nil {
		return Results{}, err
	}
	if len(sources) == 0 {
		sources = types.AllSources
	}

	strategies := make([]source.Strategy, len(sources))
	for i, src := range sources {
		s, err := source.For(src)
		if err != nil {
			return Results{}, err
		}
		strategies[i] = s
	}

	type indexed struct {
		i  int
		sr SourceResult
	}
	ch := make(chan indexed, len(strategies))
	var wg sync.WaitGroup

	for i, s := range strategies {
		wg.Add(1)
		go func(i int, s source.Strategy) {
			defer wg.Done()
			ch <- indexed{i: i, sr: a.searchSource(ctx, s, q, dr)}
		}(i, s)
	}

	go func() {
		wg.Wait()
		close(ch)
	}()

	out := Results{Query: q, Range: dr, Sources: make([]SourceResult, len(strategies))}
	unavailable := 0
	for r := range ch {
		out.Sources[r.i] = r.sr
		if r.sr.Status == StatusUnavailable {
			unavailable++
			a.log.Warn("source unavailable", zap.String("source", string(r.sr.Source)), zap.String("error", r.sr.Error))
		}
	}

	if unavailable == len(strategies) {
		return out, apperr.New(apperr.CodeSourceUnavailable, "all %d sources failed", unavailable)
	}
	return out, nil
}

// searchSource runs fetch, normalize, enrich, rank and filter for one
// source. It owns its result slice until it returns.
func (a *Aggregator) searchSource(ctx context.Context, s source.Strategy, q types.Query, dr DateRange) SourceResult {
	sr := SourceResult{Source: s.Source(), Articles: []types.ScoredArticle{}}

	f, ok := a.fetchers[s.Source()]
	if !ok {
		sr.Status = StatusUnavailable
		sr.Error = "source not configured"
		return sr
	}

	raws, err := f.Search(ctx, q)
	if err != nil {
		sr.Status = StatusUnavailable
		sr.Error = err.Error()
		return sr
	}
	sr.Fetched = len(raws)

	articles, skipped := source.NormalizeAll(s, raws, a.log)
	sr.Malformed = skipped

	a.enrich(ctx, s.Source(), articles)

	for _, sa := range a.ranker.Rank(ctx, s, articles) {
		if dr.Contains(sa.Article.PublicationYear) {
			sr.Articles = append(sr.Articles, sa)
		}
	}

	sr.Status = StatusOK
	if len(sr.Articles) == 0 {
		sr.Status = StatusNoEligibleResults
	}
	a.log.Debug("source searched",
		zap.String("source", string(sr.Source)),
		zap.Int("fetched", sr.Fetched),
		zap.Int("malformed", sr.Malformed),
		zap.Int("ranked", len(sr.Articles)))
	return sr
}

// enrich applies the source's enrichers to every article. Each goroutine
// touches only its own article.
func (a *Aggregator) enrich(ctx context.Context, src types.Source, articles []types.CanonicalArticle) {
	enrichers := a.enrichers[src]
	if len(enrichers) == 0 {
		return
	}
	var g errgroup.Group
	g.SetLimit(enrichConcurrency)
	for i := range articles {
		i := i
		g.Go(func() error {
			for _, e := range enrichers {
				e.Enrich(ctx, &articles[i])
			}
			return nil
		})
	}
	g.Wait()
}

// Documents fetches and normalizes records of src for graph building.
// Articles without a reference list get one from the source's
// ReferenceLoader when configured; a failed load leaves the list empty.
func (a *Aggregator) Documents(ctx context.Context, q types.Query, src types.Source) ([]types.CanonicalArticle, error) {
	q.Text = strings.TrimSpace(q.Text)
	if q.Text == "" {
		return nil, apperr.New(apperr.CodeInvalidQueryParameters, "query is empty")
	}
	if q.Type == "" {
		q.Type = types.SearchTitle
	}
	s, err := source.For(src)
	if err != nil {
		return nil, err
	}
	if !s.SupportsReferences() {
		return nil, apperr.New(apperr.CodeInvalidQueryParameters, "source %s does not provide reference lists", src)
	}
	f, ok := a.fetchers[src]
	if !ok {
		return nil, apperr.New(apperr.CodeSourceUnavailable, "source %s not configured", src)
	}

	raws, err := f.Search(ctx, q)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.CodeSourceUnavailable, "fetching %s", src)
	}
	articles, _ := source.NormalizeAll(s, raws, a.log)

	loader, ok := a.refs[src]
	if !ok {
		return articles, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(enrichConcurrency)
	for i := range articles {
		if len(articles[i].References) > 0 {
			continue
		}
		i := i
		g.Go(func() error {
			refs, err := loader.References(gctx, articles[i])
			if err != nil {
				a.log.Warn("reference list unavailable",
					zap.String("title", articles[i].Title),
					zap.Error(apperr.Wrap(err, apperr.CodeLookupUnavailable, "references")))
				return nil
			}
			articles[i].References = refs
			return nil
		})
	}
	g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return articles, nil
}

// FormatTable writes results as human-readable tables, one per source.
func FormatTable(res Results, w io.Writer) {
	for i, sr := range res.Sources {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "== %s (%s)", sr.Source, sr.Status)
		if sr.Malformed > 0 {
			fmt.Fprintf(w, ", %d malformed records skipped", sr.Malformed)
		}
		fmt.Fprintln(w)
		if sr.Error != "" {
			fmt.Fprintf(w, "error: %s\n", sr.Error)
		}
		if len(sr.Articles) == 0 {
			fmt.Fprintln(w, "No results found.")
			continue
		}

		fmt.Fprintf(w, "%-4s  %-60s  %-20s  %-4s  %-9s  %s\n",
			"Rank", "Title", "Authors", "Year", "Citations", "Score")
		fmt.Fprintln(w, strings.Repeat("-", 116))
		for j, sa := range sr.Articles {
			a := sa.Article
			year := ""
			if a.PublicationYear != nil {
				year = strconv.Itoa(*a.PublicationYear)
			}
			fmt.Fprintf(w, "%-4d  %-60s  %-20s  %-4s  %-9d  %.2f\n",
				j+1, truncate(a.Title, 60), formatAuthors(a.Authors), year, a.CitationCount, sa.Score)
		}
	}
	fmt.Fprintf(w, "\n%d results\n", res.Total())
}

// FormatJSON writes results as indented JSON to w.
func FormatJSON(res Results, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

func formatAuthors(authors []types.Author) string {
	switch len(authors) {
	case 0:
		return ""
	case 1:
		return truncate(authors[0].DisplayName(), 20)
	default:
		return truncate(authors[0].FamilyName, 14) + " et al."
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
