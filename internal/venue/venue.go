// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package venue attaches journal metrics to articles whose source exposes
// an ISSN lookup. A failed lookup never fails the article: it yields the
// default metrics (publisher "unknown", every number absent).
package venue

import (
	"context"
	"encoding/json"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/citemap/internal/apperr"
	"github.com/pdiddy/citemap/internal/logging"
	"github.com/pdiddy/citemap/internal/source"
	"github.com/pdiddy/citemap/pkg/types"
)

// DefaultTimeout bounds a single serial lookup when none is configured.
const DefaultTimeout = 10 * time.Second

// SerialLookup fetches the raw serial-title record for an ISSN.
type SerialLookup interface {
	Serial(ctx context.Context, issn string) (json.RawMessage, error)
}

// Enricher resolves venue metrics through a SerialLookup.
type Enricher struct {
	lookup  SerialLookup
	timeout time.Duration
	log     *zap.Logger
}

// NewEnricher returns an Enricher. A zero timeout uses DefaultTimeout.
func NewEnricher(lookup SerialLookup, timeout time.Duration, log *zap.Logger) *Enricher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Enricher{lookup: lookup, timeout: timeout, log: logging.OrNop(log)}
}

// Enrich returns the venue metrics for a, or false when metrics do not
// apply (the source has no venue lookup or the article has no ISSN).
func (e *Enricher) Enrich(ctx context.Context, s source.Strategy, a types.CanonicalArticle) (types.VenueMetrics, bool) {
	if !s.VenueMetricsApplicable() || a.ISSN == "" {
		return types.VenueMetrics{}, false
	}
	return e.Metrics(ctx, a.ISSN), true
}

// Metrics looks up one ISSN. Errors, timeouts and unparsable payloads all
// degrade to types.DefaultVenueMetrics.
func (e *Enricher) Metrics(ctx context.Context, issn string) types.VenueMetrics {
	if e.lookup == nil {
		return types.DefaultVenueMetrics(issn)
	}

	lctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	raw, err := e.lookup.Serial(lctx, issn)
	if err != nil {
		e.log.Warn("venue lookup failed",
			zap.String("issn", issn),
			zap.Error(apperr.Wrap(err, apperr.CodeLookupUnavailable, "serial %s", issn)))
		return types.DefaultVenueMetrics(issn)
	}

	m, err := ParseSerial(issn, raw)
	if err != nil {
		e.log.Warn("venue payload unusable", zap.String("issn", issn), zap.Error(err))
		return types.DefaultVenueMetrics(issn)
	}
	return m
}

// JournalMetrics looks up each ISSN in order, skipping blank entries.
// Repeated ISSNs are looked up once.
func (e *Enricher) JournalMetrics(ctx context.Context, issns []string) []types.VenueMetrics {
	memo := e.Memo()
	out := make([]types.VenueMetrics, 0, len(issns))
	for _, issn := range issns {
		issn = strings.TrimSpace(issn)
		if issn == "" {
			continue
		}
		out = append(out, memo.Metrics(ctx, issn))
	}
	return out
}

// Memo returns a request-scoped view of e that performs each ISSN lookup
// at most once. It is safe for concurrent use.
func (e *Enricher) Memo() *Memo {
	return &Memo{e: e, seen: make(map[string]types.VenueMetrics)}
}

// Memo caches lookups for the lifetime of one ranking pass.
type Memo struct {
	e    *Enricher
	mu   sync.Mutex
	seen map[string]types.VenueMetrics
}

// Enrich behaves like Enricher.Enrich with memoized lookups.
func (m *Memo) Enrich(ctx context.Context, s source.Strategy, a types.CanonicalArticle) (types.VenueMetrics, bool) {
	if !s.VenueMetricsApplicable() || a.ISSN == "" {
		return types.VenueMetrics{}, false
	}
	return m.Metrics(ctx, a.ISSN), true
}

// Metrics behaves like Enricher.Metrics with memoized lookups.
func (m *Memo) Metrics(ctx context.Context, issn string) types.VenueMetrics {
	m.mu.Lock()
	if v, ok := m.seen[issn]; ok {
		m.mu.Unlock()
		return v
	}
	m.mu.Unlock()

	v := m.e.Metrics(ctx, issn)

	m.mu.Lock()
	m.seen[issn] = v
	m.mu.Unlock()
	return v
}

type serialResponse struct {
	Response struct {
		Entry []serialEntry `json:"entry"`
	} `json:"serial-metadata-response"`
}

type serialEntry struct {
	Title     string `json:"dc:title"`
	Publisher string `json:"dc:publisher"`
	SJRList   struct {
		SJR []metricValue `json:"SJR"`
	} `json:"SJRList"`
	SNIPList struct {
		SNIP []metricValue `json:"SNIP"`
	} `json:"SNIPList"`
	CiteScore struct {
		Current  any             `json:"citeScoreCurrentMetric"`
		YearInfo []citeScoreYear `json:"citeScoreYearInfo"`
	} `json:"citeScoreYearInfoList"`
}

type metricValue struct {
	Year  string `json:"@year"`
	Value any    `json:"$"`
}

type citeScoreYear struct {
	Year string `json:"@year"`
	Info []struct {
		Info []struct {
			CiteScore any `json:"citeScore"`
		} `json:"citeScoreInfo"`
	} `json:"citeScoreInformationList"`
}

// ParseSerial reads a Scopus serial-title response. A response without an
// entry yields the default metrics, not an error.
func ParseSerial(issn string, raw json.RawMessage) (types.VenueMetrics, error) {
	var resp serialResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return types.DefaultVenueMetrics(issn), apperr.Wrap(err, apperr.CodeLookupUnavailable, "decoding serial %s", issn)
	}
	m := types.DefaultVenueMetrics(issn)
	if len(resp.Response.Entry) == 0 {
		return m, nil
	}
	entry := resp.Response.Entry[0]

	m.Title = entry.Title
	if p := strings.TrimSpace(entry.Publisher); p != "" {
		m.Publisher = p
	}
	if len(entry.SJRList.SJR) > 0 {
		m.Rank = parseFloat(entry.SJRList.SJR[0].Value)
	}
	if len(entry.SNIPList.SNIP) > 0 {
		m.ImpactProxy = parseFloat(entry.SNIPList.SNIP[0].Value)
	}
	m.CiteScore = parseFloat(entry.CiteScore.Current)

	for _, y := range entry.CiteScore.YearInfo {
		year, err := strconv.Atoi(y.Year)
		if err != nil || len(y.Info) == 0 || len(y.Info[0].Info) == 0 {
			continue
		}
		if v := parseFloat(y.Info[0].Info[0].CiteScore); v != nil {
			m.HIndexHistory = append(m.HIndexHistory, types.YearValue{Year: year, Value: *v})
		}
	}
	sort.Slice(m.HIndexHistory, func(i, j int) bool {
		return m.HIndexHistory[i].Year < m.HIndexHistory[j].Year
	})
	return m, nil
}

func parseFloat(v any) *float64 {
	switch x := v.(type) {
	case float64:
		return &x
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return nil
		}
		return &f
	}
	return nil
}
