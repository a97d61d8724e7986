// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package rank scores canonical articles and orders them for display.
//
// The score of an eligible article published in year y, evaluated in
// year c, is
//
//	alpha*citations + beta*1/max(c-y+1, 1) + gamma*(c-y)
//
// Venue metrics are attached for display only and never enter the score.
package rank

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/citemap/internal/logging"
	"github.com/pdiddy/citemap/internal/source"
	"github.com/pdiddy/citemap/internal/venue"
	"github.com/pdiddy/citemap/pkg/types"
)

// Weights are the coefficients of the scoring formula. They need not sum
// to one.
type Weights struct {
	Alpha float64 `json:"alpha" yaml:"alpha"`
	Beta  float64 `json:"beta" yaml:"beta"`
	Gamma float64 `json:"gamma" yaml:"gamma"`
}

// DefaultWeights favours citations, then recency, then age.
func DefaultWeights() Weights {
	return Weights{Alpha: 0.7, Beta: 0.2, Gamma: 0.1}
}

// WeightsFromConfig converts the configured weights.
func WeightsFromConfig(cfg types.ScoringConfig) Weights {
	return Weights{Alpha: cfg.Alpha, Beta: cfg.Beta, Gamma: cfg.Gamma}
}

// Score computes the relevance of a in currentYear. It reports false when
// the publication year is unknown or outside [1900, currentYear].
func Score(a types.CanonicalArticle, w Weights, currentYear int) (float64, bool) {
	if a.PublicationYear == nil {
		return 0, false
	}
	year := *a.PublicationYear
	if year < source.MinYear || year > currentYear {
		return 0, false
	}
	age := currentYear - year
	novelty := 1.0 / float64(max(age+1, 1))
	return w.Alpha*float64(a.CitationCount) + w.Beta*novelty + w.Gamma*float64(age), true
}

// Ranker orders a batch of articles from one source.
type Ranker struct {
	weights Weights
	now     func() time.Time
	venue   *venue.Enricher
	log     *zap.Logger
}

// Option configures a Ranker.
type Option func(*Ranker)

// WithClock overrides the clock used to determine the current year.
func WithClock(now func() time.Time) Option {
	return func(r *Ranker) { r.now = now }
}

// WithVenue attaches venue metrics to articles whose source supports them.
func WithVenue(e *venue.Enricher) Option {
	return func(r *Ranker) { r.venue = e }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(r *Ranker) { r.log = logging.OrNop(l) }
}

// NewRanker returns a Ranker using w.
func NewRanker(w Weights, opts ...Option) *Ranker {
	r := &Ranker{weights: w, now: time.Now, log: zap.NewNop()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Rank scores articles, drops ineligible ones and sorts the rest by
// descending score. Ties keep their input order. Each ranking pass
// looks up a given ISSN at most once.
func (r *Ranker) Rank(ctx context.Context, s source.Strategy, articles []types.CanonicalArticle) []types.ScoredArticle {
	currentYear := r.now().Year()

	var memo *venue.Memo
	if r.venue != nil {
		memo = r.venue.Memo()
	}

	scored := make([]types.ScoredArticle, 0, len(articles))
	dropped := 0
	for _, a := range articles {
		if !s.Eligible(a, currentYear) {
			dropped++
			continue
		}
		score, ok := Score(a, r.weights, currentYear)
		if !ok {
			dropped++
			continue
		}
		sa := types.ScoredArticle{Article: a, Score: score}
		if memo != nil {
			if m, ok := memo.Enrich(ctx, s, a); ok {
				sa.Venue = &m
			}
		}
		scored = append(scored, sa)
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	r.log.Debug("ranked articles",
		zap.String("source", string(s.Source())),
		zap.Int("ranked", len(scored)),
		zap.Int("ineligible", dropped))
	return scored
}
