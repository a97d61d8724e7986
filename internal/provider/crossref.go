// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/pdiddy/citemap/internal/graph"
	"github.com/pdiddy/citemap/internal/httputil"
	"github.com/pdiddy/citemap/pkg/types"
)

// crossrefBase is the CrossRef REST API root. Declared as a var so tests
// can substitute an httptest server.
var crossrefBase = "https://api.crossref.org"

const maxCrossRefRows = 100

// CrossRefClient queries the CrossRef works API.
type CrossRefClient struct {
	http *httputil.Client
	// mailto is sent for polite pool access.
	mailto string
}

// NewCrossRefClient returns a client using cfg.
func NewCrossRefClient(cfg types.CrossRefConfig) *CrossRefClient {
	return &CrossRefClient{http: httputil.NewClient(cfg.HTTPConfig), mailto: cfg.Mailto}
}

// Source returns types.SourceCrossRef.
func (c *CrossRefClient) Source() types.Source { return types.SourceCrossRef }

// crossrefParams maps a query onto works-search parameters.
func crossrefParams(q types.Query) url.Values {
	rows := q.Limit
	if rows <= 0 || rows > maxCrossRefRows {
		rows = 20
	}
	params := url.Values{"rows": {strconv.Itoa(rows)}}
	switch q.Type {
	case types.SearchAuthor:
		params.Set("query.author", q.Text)
	case types.SearchTitle:
		params.Set("query.bibliographic", q.Text)
	default:
		params.Set("query", q.Text)
	}
	return params
}

// Search returns the raw work items of one CrossRef search page.
func (c *CrossRefClient) Search(ctx context.Context, q types.Query) ([]json.RawMessage, error) {
	params := crossrefParams(q)
	if c.mailto != "" {
		params.Set("mailto", c.mailto)
	}

	var resp struct {
		Message struct {
			Items []json.RawMessage `json:"items"`
		} `json:"message"`
	}
	if err := c.http.GetJSON(ctx, crossrefBase+"/works?"+params.Encode(), nil, &resp); err != nil {
		return nil, fmt.Errorf("crossref search: %w", err)
	}
	return resp.Message.Items, nil
}

type crossrefWorkSummary struct {
	ReferencedBy json.RawMessage `json:"is-referenced-by-count"`
	Author       []struct {
		Family string `json:"family"`
		Name   string `json:"name"`
	} `json:"author"`
}

// Work fetches the raw work record for a DOI.
func (c *CrossRefClient) Work(ctx context.Context, doi string) (json.RawMessage, error) {
	if strings.TrimSpace(doi) == "" {
		return nil, fmt.Errorf("crossref lookup needs a DOI")
	}
	u := crossrefBase + "/works/" + doi
	if c.mailto != "" {
		u += "?" + url.Values{"mailto": {c.mailto}}.Encode()
	}
	var resp struct {
		Message json.RawMessage `json:"message"`
	}
	if err := c.http.GetJSON(ctx, u, nil, &resp); err != nil {
		return nil, fmt.Errorf("crossref work: %w", err)
	}
	return resp.Message, nil
}

func (c *CrossRefClient) summary(ctx context.Context, key graph.LookupKey) (crossrefWorkSummary, error) {
	raw, err := c.Work(ctx, key.DOI)
	if err != nil {
		return crossrefWorkSummary{}, err
	}
	var w crossrefWorkSummary
	if err := json.Unmarshal(raw, &w); err != nil {
		return crossrefWorkSummary{}, fmt.Errorf("parsing crossref work: %w", err)
	}
	return w, nil
}

// CitationCount returns is-referenced-by-count for a DOI.
func (c *CrossRefClient) CitationCount(ctx context.Context, key graph.LookupKey) (int, error) {
	w, err := c.summary(ctx, key)
	if err != nil {
		return 0, err
	}
	return parseCount(w.ReferencedBy)
}

// FirstAuthorSurname returns the first author's family name for a DOI.
func (c *CrossRefClient) FirstAuthorSurname(ctx context.Context, key graph.LookupKey) (string, error) {
	w, err := c.summary(ctx, key)
	if err != nil {
		return "", err
	}
	for _, a := range w.Author {
		if name := firstNonBlank(a.Family, a.Name); name != "" {
			return name, nil
		}
	}
	return "", fmt.Errorf("crossref work %s lists no authors", key.DOI)
}
