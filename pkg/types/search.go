// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"strings"
)

// SearchType selects which field of a source the query text is matched
// against.
type SearchType string

const (
	SearchTitle    SearchType = "title"
	SearchAuthor   SearchType = "author"
	SearchKeywords SearchType = "keywords"
)

// ParseSearchType maps a user-supplied name onto a SearchType. An empty
// name selects title search.
func ParseSearchType(s string) (SearchType, error) {
	switch SearchType(strings.ToLower(strings.TrimSpace(s))) {
	case "", SearchTitle:
		return SearchTitle, nil
	case SearchAuthor:
		return SearchAuthor, nil
	case SearchKeywords, "keyword":
		return SearchKeywords, nil
	}
	return "", fmt.Errorf("unknown search type %q (want title, author or keywords)", s)
}

// Query is what a provider is asked for.
type Query struct {
	Text string     `json:"text" yaml:"text"`
	Type SearchType `json:"type" yaml:"type"`

	// Limit caps the number of records fetched per source.
	Limit int `json:"limit" yaml:"limit"`
}
