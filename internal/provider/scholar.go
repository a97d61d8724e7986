// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/pdiddy/citemap/internal/httputil"
	"github.com/pdiddy/citemap/pkg/types"
)

// serpAPIBase is the SerpApi search endpoint. Declared as a var so tests
// can substitute an httptest server.
var serpAPIBase = "https://serpapi.com/search.json"

const maxScholarResults = 20

// ScholarClient queries Google Scholar through SerpApi.
type ScholarClient struct {
	http   *httputil.Client
	apiKey string
}

// NewScholarClient returns a client authenticated with cfg.APIKey.
func NewScholarClient(cfg types.ScholarConfig) *ScholarClient {
	return &ScholarClient{http: httputil.NewClient(cfg.HTTPConfig), apiKey: cfg.APIKey}
}

// Source returns types.SourceScholar.
func (c *ScholarClient) Source() types.Source { return types.SourceScholar }

// ScholarQuery renders the Scholar query string for q.
func ScholarQuery(q types.Query) string {
	switch q.Type {
	case types.SearchAuthor:
		return "author:" + q.Text
	case types.SearchTitle:
		return `"` + strings.ReplaceAll(q.Text, `"`, "") + `"`
	default:
		return q.Text
	}
}

func (c *ScholarClient) get(ctx context.Context, params url.Values, v any) error {
	params.Set("api_key", c.apiKey)
	body, err := c.http.GetRaw(ctx, serpAPIBase+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}
	var probe struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &probe) == nil && probe.Error != "" {
		return fmt.Errorf("serpapi: %s", probe.Error)
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("parsing serpapi response: %w", err)
	}
	return nil
}

// Search returns the raw organic results of one Scholar page.
func (c *ScholarClient) Search(ctx context.Context, q types.Query) ([]json.RawMessage, error) {
	num := q.Limit
	if num <= 0 || num > maxScholarResults {
		num = maxScholarResults
	}
	params := url.Values{
		"engine": {"google_scholar"},
		"q":      {ScholarQuery(q)},
		"num":    {strconv.Itoa(num)},
	}
	var resp struct {
		OrganicResults []json.RawMessage `json:"organic_results"`
	}
	if err := c.get(ctx, params, &resp); err != nil {
		return nil, fmt.Errorf("scholar search: %w", err)
	}
	return resp.OrganicResults, nil
}

// AuthorHIndex returns the all-time h-index from a Scholar author profile.
func (c *ScholarClient) AuthorHIndex(ctx context.Context, authorID string) (int, error) {
	params := url.Values{
		"engine":    {"google_scholar_author"},
		"author_id": {authorID},
	}
	var resp struct {
		CitedBy struct {
			Table []map[string]json.RawMessage `json:"table"`
		} `json:"cited_by"`
	}
	if err := c.get(ctx, params, &resp); err != nil {
		return 0, fmt.Errorf("scholar author: %w", err)
	}
	for _, row := range resp.CitedBy.Table {
		raw, ok := row["h_index"]
		if !ok {
			continue
		}
		var h struct {
			All json.RawMessage `json:"all"`
		}
		if err := json.Unmarshal(raw, &h); err != nil {
			break
		}
		return parseCount(h.All)
	}
	return 0, fmt.Errorf("scholar author %s has no h-index", authorID)
}

// AuthorInterests returns the research interests listed on the first
// Scholar profile matching name.
func (c *ScholarClient) AuthorInterests(ctx context.Context, name string) ([]string, error) {
	params := url.Values{
		"engine":   {"google_scholar_profiles"},
		"mauthors": {name},
	}
	var resp struct {
		Profiles []struct {
			Interests []struct {
				Title string `json:"title"`
			} `json:"interests"`
		} `json:"profiles"`
	}
	if err := c.get(ctx, params, &resp); err != nil {
		return nil, fmt.Errorf("scholar profiles: %w", err)
	}
	if len(resp.Profiles) == 0 {
		return nil, nil
	}
	var interests []string
	for _, in := range resp.Profiles[0].Interests {
		if t := strings.TrimSpace(in.Title); t != "" {
			interests = append(interests, t)
		}
	}
	return interests, nil
}
