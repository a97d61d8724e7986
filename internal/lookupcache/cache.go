// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package lookupcache provides an opt-in cache for provider lookups
// (citation counts, author surnames, serial records). The aggregation core
// stays stateless; the cache decorates the lookup interfaces it consumes.
package lookupcache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/pdiddy/citemap/internal/graph"
	"github.com/pdiddy/citemap/internal/logging"
	"github.com/pdiddy/citemap/pkg/types"
)

// Cache stores opaque values with a time to live.
type Cache interface {
	// Get returns the value and true on a hit, or false on a miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Close() error
}

// Open returns the cache selected by cfg, or nil when caching is disabled.
func Open(ctx context.Context, cfg types.CacheConfig) (Cache, error) {
	switch cfg.Backend {
	case "", types.CacheNone:
		return nil, nil
	case types.CacheSQLite:
		s, err := OpenSQLite(cfg.Path)
		if err != nil {
			return nil, err
		}
		return s, nil
	case types.CacheRedis:
		r, err := OpenRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, err
		}
		return r, nil
	}
	return nil, fmt.Errorf("unknown cache backend %q (want none, sqlite or redis)", cfg.Backend)
}

// Lookups wraps provider lookups with a cache. Concurrent requests for
// the same key share one upstream call.
type Lookups struct {
	cache Cache
	ttl   time.Duration
	log   *zap.Logger
	group singleflight.Group
}

// New returns a Lookups decorator storing entries for ttl.
func New(c Cache, ttl time.Duration, log *zap.Logger) *Lookups {
	return &Lookups{cache: c, ttl: ttl, log: logging.OrNop(log)}
}

// fetch serves key from the cache or calls load and stores the result.
// Cache failures are logged and bypassed.
func (l *Lookups) fetch(ctx context.Context, key string, load func() ([]byte, error)) ([]byte, error) {
	if v, ok, err := l.cache.Get(ctx, key); err != nil {
		l.log.Warn("cache read failed", zap.String("key", key), zap.Error(err))
	} else if ok {
		return v, nil
	}

	v, err, _ := l.group.Do(key, func() (any, error) {
		b, err := load()
		if err != nil {
			return nil, err
		}
		if err := l.cache.Set(ctx, key, b, l.ttl); err != nil {
			l.log.Warn("cache write failed", zap.String("key", key), zap.Error(err))
		}
		return b, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

// Counter caches a graph.CitationCounter.
func (l *Lookups) Counter(next graph.CitationCounter) graph.CitationCounter {
	return counterFunc(func(ctx context.Context, key graph.LookupKey) (int, error) {
		b, err := l.fetch(ctx, "count:"+key.String(), func() ([]byte, error) {
			n, err := next.CitationCount(ctx, key)
			if err != nil {
				return nil, err
			}
			return []byte(strconv.Itoa(n)), nil
		})
		if err != nil {
			return 0, err
		}
		return strconv.Atoi(string(b))
	})
}

// Resolver caches a graph.AuthorResolver.
func (l *Lookups) Resolver(next graph.AuthorResolver) graph.AuthorResolver {
	return resolverFunc(func(ctx context.Context, key graph.LookupKey) (string, error) {
		b, err := l.fetch(ctx, "surname:"+key.String(), func() ([]byte, error) {
			s, err := next.FirstAuthorSurname(ctx, key)
			if err != nil {
				return nil, err
			}
			return []byte(s), nil
		})
		if err != nil {
			return "", err
		}
		return string(b), nil
	})
}

type counterFunc func(context.Context, graph.LookupKey) (int, error)

func (f counterFunc) CitationCount(ctx context.Context, key graph.LookupKey) (int, error) {
	return f(ctx, key)
}

type resolverFunc func(context.Context, graph.LookupKey) (string, error)

func (f resolverFunc) FirstAuthorSurname(ctx context.Context, key graph.LookupKey) (string, error) {
	return f(ctx, key)
}
