// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package provider

import (
	"context"
	"fmt"

	"github.com/pdiddy/citemap/internal/graph"
	"github.com/pdiddy/citemap/pkg/types"
)

// Lookups dispatches graph lookups to the client of the key's source.
// It implements graph.CitationCounter and graph.AuthorResolver.
type Lookups struct {
	Scopus   *ScopusClient
	CrossRef *CrossRefClient
}

var (
	_ graph.CitationCounter = (*Lookups)(nil)
	_ graph.AuthorResolver  = (*Lookups)(nil)
)

// CitationCount routes to Scopus or CrossRef.
func (l *Lookups) CitationCount(ctx context.Context, key graph.LookupKey) (int, error) {
	switch {
	case key.Source == types.SourceScopus && l.Scopus != nil:
		return l.Scopus.CitationCount(ctx, key)
	case key.Source == types.SourceCrossRef && l.CrossRef != nil:
		return l.CrossRef.CitationCount(ctx, key)
	}
	return 0, fmt.Errorf("no citation lookup for source %q", key.Source)
}

// FirstAuthorSurname routes to Scopus or CrossRef.
func (l *Lookups) FirstAuthorSurname(ctx context.Context, key graph.LookupKey) (string, error) {
	switch {
	case key.Source == types.SourceScopus && l.Scopus != nil:
		return l.Scopus.FirstAuthorSurname(ctx, key)
	case key.Source == types.SourceCrossRef && l.CrossRef != nil:
		return l.CrossRef.FirstAuthorSurname(ctx, key)
	}
	return "", fmt.Errorf("no author lookup for source %q", key.Source)
}
