// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"

	"go.uber.org/zap"

	"github.com/pdiddy/citemap/internal/graph"
	"github.com/pdiddy/citemap/internal/lookupcache"
	"github.com/pdiddy/citemap/internal/provider"
	"github.com/pdiddy/citemap/internal/rank"
	"github.com/pdiddy/citemap/internal/search"
	"github.com/pdiddy/citemap/internal/venue"
	"github.com/pdiddy/citemap/pkg/types"
)

// app holds the provider clients and the optional cache for one command.
// A source whose credentials are missing has a nil client.
type app struct {
	cfg types.Config
	log *zap.Logger

	scopus   *provider.ScopusClient
	crossref *provider.CrossRefClient
	scholar  *provider.ScholarClient

	cache  lookupcache.Cache
	cached *lookupcache.Lookups
}

func newApp(ctx context.Context, c types.Config, log *zap.Logger) (*app, error) {
	a := &app{
		cfg:      c,
		log:      log,
		crossref: provider.NewCrossRefClient(c.CrossRef),
	}
	if c.Scopus.APIKey != "" {
		a.scopus = provider.NewScopusClient(c.Scopus)
	} else {
		log.Debug("scopus disabled: no api key")
	}
	if c.Scholar.APIKey != "" {
		a.scholar = provider.NewScholarClient(c.Scholar)
	} else {
		log.Debug("scholar disabled: no api key")
	}

	cache, err := lookupcache.Open(ctx, c.Cache)
	if err != nil {
		return nil, err
	}
	if cache != nil {
		a.cache = cache
		a.cached = lookupcache.New(cache, c.Cache.TTL, log)
		log.Debug("lookup cache enabled", zap.String("backend", string(c.Cache.Backend)))
	}
	return a, nil
}

func (a *app) Close() {
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.log.Warn("closing cache", zap.Error(err))
		}
	}
}

// venueEnricher returns nil when Scopus is not configured.
func (a *app) venueEnricher() *venue.Enricher {
	if a.scopus == nil {
		return nil
	}
	var serials venue.SerialLookup = a.scopus
	if a.cached != nil {
		serials = a.cached.Serials(serials)
	}
	return venue.NewEnricher(serials, a.cfg.Search.EnrichTimeout, a.log)
}

func (a *app) aggregator(w rank.Weights) *search.Aggregator {
	rankOpts := []rank.Option{rank.WithLogger(a.log)}
	if v := a.venueEnricher(); v != nil {
		rankOpts = append(rankOpts, rank.WithVenue(v))
	}

	opts := []search.Option{
		search.WithLogger(a.log),
		search.WithFetcher(a.crossref),
	}
	if a.scopus != nil {
		opts = append(opts, search.WithFetcher(a.scopus))
		if a.cfg.Scopus.LoadReferences {
			opts = append(opts, search.WithReferenceLoader(types.SourceScopus, a.scopus))
		}
		if a.cfg.Scopus.EnrichAuthors {
			opts = append(opts, search.WithEnricher(types.SourceScopus, &search.AuthorEnricher{
				HIndex:  a.scopus,
				Timeout: a.cfg.Search.EnrichTimeout,
				Logger:  a.log,
			}))
		}
	}
	if a.scholar != nil {
		opts = append(opts, search.WithFetcher(a.scholar))
		if a.cfg.Scholar.EnrichAuthors {
			opts = append(opts, search.WithEnricher(types.SourceScholar, &search.AuthorEnricher{
				HIndex:    a.scholar,
				Interests: a.scholar,
				Timeout:   a.cfg.Search.EnrichTimeout,
				Logger:    a.log,
			}))
		}
	}
	return search.NewAggregator(rank.NewRanker(w, rankOpts...), opts...)
}

func (a *app) builder() *graph.Builder {
	lookups := &provider.Lookups{Scopus: a.scopus, CrossRef: a.crossref}
	var counter graph.CitationCounter = lookups
	var resolver graph.AuthorResolver = lookups
	if a.cached != nil {
		counter = a.cached.Counter(counter)
		resolver = a.cached.Resolver(resolver)
	}
	return graph.NewBuilder(
		graph.WithCitationCounter(counter),
		graph.WithAuthorResolver(resolver),
		graph.WithConcurrency(a.cfg.Graph.Concurrency),
		graph.WithLookupTimeout(a.cfg.Graph.LookupTimeout),
		graph.WithLogger(a.log),
	)
}
