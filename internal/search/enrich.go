// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/citemap/internal/apperr"
	"github.com/pdiddy/citemap/internal/logging"
	"github.com/pdiddy/citemap/pkg/types"
)

// HIndexLookup returns the h-index of an author by source identifier.
type HIndexLookup interface {
	AuthorHIndex(ctx context.Context, authorID string) (int, error)
}

// InterestLookup returns the research interests listed on an author profile.
type InterestLookup interface {
	AuthorInterests(ctx context.Context, name string) ([]string, error)
}

// defaultMaxAuthors bounds h-index lookups per article.
const defaultMaxAuthors = 3

// AuthorEnricher fills author h-indexes and adds the first author's
// interests as keywords. Either lookup may be nil.
type AuthorEnricher struct {
	HIndex     HIndexLookup
	Interests  InterestLookup
	Timeout    time.Duration
	MaxAuthors int
	Logger     *zap.Logger
}

// Enrich implements ArticleEnricher. Failed lookups leave the fields unset.
func (e *AuthorEnricher) Enrich(ctx context.Context, a *types.CanonicalArticle) {
	log := logging.OrNop(e.Logger)

	if e.HIndex != nil {
		limit := e.MaxAuthors
		if limit <= 0 {
			limit = defaultMaxAuthors
		}
		done := 0
		for i := range a.Authors {
			if done == limit {
				break
			}
			au := &a.Authors[i]
			if au.ExternalID == "" || au.HIndex != nil {
				continue
			}
			done++
			lctx, cancel := e.withTimeout(ctx)
			h, err := e.HIndex.AuthorHIndex(lctx, au.ExternalID)
			cancel()
			if err != nil {
				log.Debug("author h-index unavailable",
					zap.String("author_id", au.ExternalID),
					zap.Error(apperr.Wrap(err, apperr.CodeLookupUnavailable, "h-index")))
				continue
			}
			au.HIndex = &h
		}
	}

	if e.Interests != nil {
		first := a.FirstAuthor()
		if first.IsUnknown() {
			return
		}
		lctx, cancel := e.withTimeout(ctx)
		interests, err := e.Interests.AuthorInterests(lctx, first.DisplayName())
		cancel()
		if err != nil {
			log.Debug("author interests unavailable",
				zap.String("author", first.DisplayName()),
				zap.Error(apperr.Wrap(err, apperr.CodeLookupUnavailable, "interests")))
			return
		}
		a.AddKeywords(interests...)
	}
}

func (e *AuthorEnricher) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, e.Timeout)
}
