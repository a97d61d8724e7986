// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package source turns raw provider payloads into canonical articles.
// Each provider has one Strategy that owns every source-specific rule:
// field mapping, reference shape, eligibility and record URLs. Callers
// select the strategy once with For and never branch on the source again.
package source

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/citemap/internal/apperr"
	"github.com/pdiddy/citemap/pkg/types"
)

// MinYear is the earliest publication year considered for ranking.
const MinYear = 1900

// Strategy encapsulates the rules of one bibliographic source.
type Strategy interface {
	Source() types.Source

	// Normalize maps one raw record onto the canonical model. It fails with
	// apperr.CodeMalformedRecord only when the record has neither a title
	// nor an identifier.
	Normalize(raw json.RawMessage) (types.CanonicalArticle, error)

	// ReferenceFields reads the fields the graph builder needs from one
	// raw reference in this source's shape.
	ReferenceFields(ref types.RawReference) ReferenceFields

	// SupportsReferences reports whether documents from this source carry
	// reference lists usable for graph building.
	SupportsReferences() bool

	// VenueMetricsApplicable reports whether journal metrics can be looked
	// up for this source's ISSNs.
	VenueMetricsApplicable() bool

	// Eligible reports whether the article can be ranked in currentYear.
	Eligible(a types.CanonicalArticle, currentYear int) bool

	// RecordURL returns a clickable URL for a record, preferring the DOI.
	// It returns "" when neither identifier yields a URL.
	RecordURL(doi, recordID string) string
}

// ReferenceFields is the source-independent view of one raw reference.
type ReferenceFields struct {
	DOI        string
	RecordID   string
	FamilyName string
	Title      string
	Venue      string
	Year       *int
}

// For returns the strategy for src.
func For(src types.Source) (Strategy, error) {
	switch src {
	case types.SourceScopus:
		return Scopus{}, nil
	case types.SourceCrossRef:
		return CrossRef{}, nil
	case types.SourceScholar:
		return Scholar{}, nil
	}
	return nil, apperr.New(apperr.CodeInvalidQueryParameters, "unsupported source %q", src)
}

// NormalizeAll normalizes a batch, skipping malformed records. It returns
// the articles in input order and the number of records skipped.
func NormalizeAll(s Strategy, raws []json.RawMessage, log *zap.Logger) ([]types.CanonicalArticle, int) {
	articles := make([]types.CanonicalArticle, 0, len(raws))
	skipped := 0
	for i, raw := range raws {
		a, err := s.Normalize(raw)
		if err != nil {
			skipped++
			if log != nil {
				log.Warn("skipping record",
					zap.String("source", string(s.Source())),
					zap.Int("index", i),
					zap.Error(err))
			}
			continue
		}
		articles = append(articles, a)
	}
	return articles, skipped
}

// eligibleYear is the ranking window shared by every source.
func eligibleYear(a types.CanonicalArticle, currentYear int) bool {
	if a.PublicationYear == nil {
		return false
	}
	y := *a.PublicationYear
	return y >= MinYear && y <= currentYear
}

// DOIURL returns the resolver URL for doi.
func DOIURL(doi string) string {
	return "https://doi.org/" + doi
}

// finish applies the rules shared by every normalizer: the malformed
// check, the title sentinel and the source tag.
func finish(a types.CanonicalArticle, src types.Source) (types.CanonicalArticle, error) {
	a.Source = src
	if a.Title == "" {
		if !a.HasIdentifier() {
			return types.CanonicalArticle{}, apperr.New(apperr.CodeMalformedRecord,
				"%s record has neither title nor identifier", src)
		}
		a.Title = types.UnknownTitle
	}
	if len(a.Authors) == 0 {
		a.Authors = []types.Author{{FamilyName: types.UnknownAuthor}}
	}
	return a, nil
}

func decode(raw json.RawMessage, v any, src types.Source) error {
	if err := json.Unmarshal(raw, v); err != nil {
		return apperr.Wrap(err, apperr.CodeMalformedRecord, "decoding %s record", src)
	}
	return nil
}

// flexInt decodes counts that providers send as either numbers or strings.
// Unparsable values decode to zero.
type flexInt int

func (f *flexInt) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		*f = 0
		return nil
	}
	switch x := v.(type) {
	case float64:
		*f = flexInt(x)
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(x))
		if err != nil {
			n = 0
		}
		*f = flexInt(n)
	default:
		*f = 0
	}
	return nil
}

// field returns the first non-empty string value among keys.
func field(ref types.RawReference, keys ...string) string {
	for _, k := range keys {
		v, ok := ref[k]
		if !ok || v == nil {
			continue
		}
		var s string
		switch x := v.(type) {
		case string:
			s = x
		case float64:
			s = strconv.FormatFloat(x, 'f', -1, 64)
		case json.Number:
			s = x.String()
		case int:
			s = strconv.Itoa(x)
		default:
			s = fmt.Sprint(x)
		}
		if s = strings.TrimSpace(s); s != "" {
			return s
		}
	}
	return ""
}

// Surname returns the first whitespace-delimited token of name with
// trailing punctuation removed ("Smith, J." -> "Smith").
func Surname(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return ""
	}
	return strings.TrimRight(fields[0], ",.;")
}

// splitList splits s on sep, trimming entries and dropping empty ones.
func splitList(s, sep string) []string {
	var out []string
	for _, p := range strings.Split(s, sep) {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
