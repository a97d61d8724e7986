// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package lookupcache

import (
	"context"
	"encoding/json"

	"github.com/pdiddy/citemap/internal/venue"
)

// Serials caches a venue.SerialLookup.
func (l *Lookups) Serials(next venue.SerialLookup) venue.SerialLookup {
	return serialFunc(func(ctx context.Context, issn string) (json.RawMessage, error) {
		b, err := l.fetch(ctx, "serial:"+issn, func() ([]byte, error) {
			return next.Serial(ctx, issn)
		})
		if err != nil {
			return nil, err
		}
		return json.RawMessage(b), nil
	})
}

type serialFunc func(context.Context, string) (json.RawMessage, error)

func (f serialFunc) Serial(ctx context.Context, issn string) (json.RawMessage, error) {
	return f(ctx, issn)
}
