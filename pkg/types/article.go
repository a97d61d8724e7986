// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the shared data structures for citemap: the
// canonical article record every source is normalized into, the scored and
// venue-enriched views built on top of it, the citation graph model, and
// the configuration structs loaded by the CLI.
package types

import (
	"fmt"
	"strings"
)

// Source identifies the bibliographic provider a record came from.
type Source string

const (
	SourceScopus   Source = "scopus"
	SourceCrossRef Source = "crossref"
	SourceScholar  Source = "scholar"
)

// AllSources lists every supported source in presentation order.
var AllSources = []Source{SourceScopus, SourceCrossRef, SourceScholar}

// ParseSource maps a user-supplied name onto a Source. Matching is
// case-insensitive and ignores surrounding whitespace.
func ParseSource(s string) (Source, error) {
	switch Source(strings.ToLower(strings.TrimSpace(s))) {
	case SourceScopus:
		return SourceScopus, nil
	case SourceCrossRef:
		return SourceCrossRef, nil
	case SourceScholar:
		return SourceScholar, nil
	}
	return "", fmt.Errorf("unknown source %q (want scopus, crossref or scholar)", s)
}

const (
	// UnknownTitle is stored when a record carries no usable title.
	UnknownTitle = "unknown"

	// UnknownAuthor is the literal used for an author with no usable name.
	UnknownAuthor = "unknown author"
)

// Author is one entry of an article's ordered author list.
type Author struct {
	GivenName  string `json:"given_name,omitempty" yaml:"given_name,omitempty"`
	FamilyName string `json:"family_name" yaml:"family_name"`

	// ExternalID is the provider's author identifier (Scopus author id,
	// Scholar author_id). Empty when the source does not expose one.
	ExternalID string `json:"external_id,omitempty" yaml:"external_id,omitempty"`

	// HIndex is filled by author enrichment; nil means unknown.
	HIndex *int `json:"h_index,omitempty" yaml:"h_index,omitempty"`
}

// DisplayName renders the author as "Given Family", or the family name alone.
func (a Author) DisplayName() string {
	if a.GivenName == "" {
		return a.FamilyName
	}
	return a.GivenName + " " + a.FamilyName
}

// IsUnknown reports whether the author carries no usable name.
func (a Author) IsUnknown() bool {
	return a.FamilyName == "" || a.FamilyName == UnknownAuthor
}

// RawReference is one bibliography entry exactly as the source returned it.
// Its keys are source-specific and only the graph builder interprets them.
type RawReference map[string]any

// CanonicalArticle is the source-independent representation of one
// scholarly work. Normalizers create it; nothing downstream mutates Source.
type CanonicalArticle struct {
	Title   string   `json:"title" yaml:"title"`
	Authors []Author `json:"authors" yaml:"authors"`

	DOI            string `json:"doi,omitempty" yaml:"doi,omitempty"`
	SourceRecordID string `json:"source_record_id,omitempty" yaml:"source_record_id,omitempty"`

	// PublicationYear is nil when no 4-digit year could be derived.
	PublicationYear *int `json:"publication_year,omitempty" yaml:"publication_year,omitempty"`
	CitationCount   int  `json:"citation_count" yaml:"citation_count"`

	VenueName string `json:"venue_name,omitempty" yaml:"venue_name,omitempty"`
	ISSN      string `json:"issn,omitempty" yaml:"issn,omitempty"`
	Volume    string `json:"volume,omitempty" yaml:"volume,omitempty"`
	Issue     string `json:"issue,omitempty" yaml:"issue,omitempty"`

	Abstract string   `json:"abstract,omitempty" yaml:"abstract,omitempty"`
	Link     string   `json:"link,omitempty" yaml:"link,omitempty"`
	Keywords []string `json:"keywords,omitempty" yaml:"keywords,omitempty"`

	Source     Source         `json:"source" yaml:"source"`
	References []RawReference `json:"references,omitempty" yaml:"references,omitempty"`
}

// HasIdentifier reports whether the article has a DOI or a provider record id.
func (a CanonicalArticle) HasIdentifier() bool {
	return a.DOI != "" || a.SourceRecordID != ""
}

// FirstAuthor returns the first listed author, or an unknown author.
func (a CanonicalArticle) FirstAuthor() Author {
	if len(a.Authors) == 0 {
		return Author{FamilyName: UnknownAuthor}
	}
	return a.Authors[0]
}

// AddKeywords merges kws into the keyword set. Duplicates are detected
// case-insensitively; the first spelling wins and order is preserved.
func (a *CanonicalArticle) AddKeywords(kws ...string) {
	seen := make(map[string]bool, len(a.Keywords)+len(kws))
	for _, k := range a.Keywords {
		seen[strings.ToLower(k)] = true
	}
	for _, k := range kws {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		key := strings.ToLower(k)
		if seen[key] {
			continue
		}
		seen[key] = true
		a.Keywords = append(a.Keywords, k)
	}
}

// ScoredArticle pairs an article with its relevance score and, when the
// source supports it, the metrics of the venue it appeared in.
type ScoredArticle struct {
	Article CanonicalArticle `json:"article" yaml:"article"`
	Score   float64          `json:"score" yaml:"score"`
	Venue   *VenueMetrics    `json:"venue,omitempty" yaml:"venue,omitempty"`
}
