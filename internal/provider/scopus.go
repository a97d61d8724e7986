// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package provider implements thin clients for the bibliographic APIs
// citemap aggregates: Elsevier Scopus, CrossRef and Google Scholar through
// SerpApi. Clients return raw records; normalization happens in
// internal/source.
package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/pdiddy/citemap/internal/graph"
	"github.com/pdiddy/citemap/internal/httputil"
	"github.com/pdiddy/citemap/pkg/types"
)

// scopusBase is the Elsevier content API root. Declared as a var so tests
// can substitute an httptest server.
var scopusBase = "https://api.elsevier.com/content"

// maxScopusCount is the largest page the Scopus Search API serves.
const maxScopusCount = 25

// ScopusClient queries the Elsevier Scopus APIs.
type ScopusClient struct {
	http   *httputil.Client
	apiKey string
}

// NewScopusClient returns a client authenticated with cfg.APIKey.
func NewScopusClient(cfg types.ScopusConfig) *ScopusClient {
	return &ScopusClient{http: httputil.NewClient(cfg.HTTPConfig), apiKey: cfg.APIKey}
}

// Source returns types.SourceScopus.
func (c *ScopusClient) Source() types.Source { return types.SourceScopus }

func (c *ScopusClient) header() http.Header {
	return http.Header{"X-ELS-APIKey": {c.apiKey}}
}

// ScopusQuery renders a Scopus advanced-search expression for q.
func ScopusQuery(q types.Query) string {
	text := strings.ReplaceAll(q.Text, `"`, "")
	switch q.Type {
	case types.SearchAuthor:
		return `AUTH("` + text + `")`
	case types.SearchKeywords:
		return `KEY("` + text + `")`
	default:
		return `TITLE("` + text + `")`
	}
}

// Search returns the raw entries of one Scopus Search page. The API's
// placeholder entry for an empty result set is dropped.
func (c *ScopusClient) Search(ctx context.Context, q types.Query) ([]json.RawMessage, error) {
	count := q.Limit
	if count <= 0 || count > maxScopusCount {
		count = maxScopusCount
	}
	params := url.Values{
		"query": {ScopusQuery(q)},
		"count": {strconv.Itoa(count)},
	}

	var resp struct {
		Results struct {
			Entry []json.RawMessage `json:"entry"`
		} `json:"search-results"`
	}
	if err := c.http.GetJSON(ctx, scopusBase+"/search/scopus?"+params.Encode(), c.header(), &resp); err != nil {
		return nil, fmt.Errorf("scopus search: %w", err)
	}

	entries := make([]json.RawMessage, 0, len(resp.Results.Entry))
	for _, e := range resp.Results.Entry {
		var probe struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(e, &probe) == nil && probe.Error != "" {
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// abstractPath addresses a record in the Abstract Retrieval API.
func abstractPath(key graph.LookupKey) (string, error) {
	switch {
	case key.DOI != "":
		return "/abstract/doi/" + key.DOI, nil
	case strings.HasPrefix(key.RecordID, "2-s2.0-"):
		return "/abstract/eid/" + url.PathEscape(key.RecordID), nil
	case key.RecordID != "":
		return "/abstract/scopus_id/" + url.PathEscape(key.RecordID), nil
	}
	return "", fmt.Errorf("scopus lookup needs a DOI or record id")
}

type scopusAbstract struct {
	Response struct {
		Coredata struct {
			CitedBy json.RawMessage `json:"citedby-count"`
		} `json:"coredata"`
		Authors struct {
			Author []scopusAbstractAuthor `json:"author"`
		} `json:"authors"`
		References struct {
			Reference []scopusReference `json:"reference"`
		} `json:"references"`
	} `json:"abstracts-retrieval-response"`
}

type scopusAbstractAuthor struct {
	Surname     string `json:"ce:surname"`
	IndexedName string `json:"ce:indexed-name"`
}

type scopusReference struct {
	ID          string `json:"@id"`
	EID         string `json:"scopus-eid"`
	DOI         string `json:"ce:doi"`
	Title       string `json:"title"`
	SourceTitle string `json:"sourcetitle"`
	CoverDate   string `json:"prism:coverDate"`
	AuthorList  struct {
		Author []scopusAbstractAuthor `json:"author"`
	} `json:"author-list"`
}

func (c *ScopusClient) abstract(ctx context.Context, key graph.LookupKey, view string) (scopusAbstract, error) {
	path, err := abstractPath(key)
	if err != nil {
		return scopusAbstract{}, err
	}
	var a scopusAbstract
	if err := c.http.GetJSON(ctx, scopusBase+path+"?view="+view, c.header(), &a); err != nil {
		return scopusAbstract{}, fmt.Errorf("scopus abstract: %w", err)
	}
	return a, nil
}

// CitationCount returns the cited-by count of a Scopus record.
func (c *ScopusClient) CitationCount(ctx context.Context, key graph.LookupKey) (int, error) {
	a, err := c.abstract(ctx, key, "META")
	if err != nil {
		return 0, err
	}
	return parseCount(a.Response.Coredata.CitedBy)
}

// FirstAuthorSurname returns the surname of a record's first author.
func (c *ScopusClient) FirstAuthorSurname(ctx context.Context, key graph.LookupKey) (string, error) {
	a, err := c.abstract(ctx, key, "META")
	if err != nil {
		return "", err
	}
	for _, au := range a.Response.Authors.Author {
		if name := firstNonBlank(au.Surname, au.IndexedName); name != "" {
			return name, nil
		}
	}
	return "", fmt.Errorf("scopus record %s lists no authors", key)
}

// References loads an article's bibliography from the REF view and maps
// each entry onto the keys the Scopus normalizer reads: doi, id, title,
// sourcetitle, pub_date and authors.
func (c *ScopusClient) References(ctx context.Context, a types.CanonicalArticle) ([]types.RawReference, error) {
	abs, err := c.abstract(ctx, graph.LookupKey{DOI: a.DOI, RecordID: a.SourceRecordID, Source: types.SourceScopus}, "REF")
	if err != nil {
		return nil, err
	}
	refs := make([]types.RawReference, 0, len(abs.Response.References.Reference))
	for _, r := range abs.Response.References.Reference {
		ref := types.RawReference{
			"doi":         r.DOI,
			"id":          firstNonBlank(r.EID, r.ID),
			"title":       r.Title,
			"sourcetitle": r.SourceTitle,
			"pub_date":    r.CoverDate,
		}
		var authors []any
		for _, au := range r.AuthorList.Author {
			if name := firstNonBlank(au.IndexedName, au.Surname); name != "" {
				authors = append(authors, name)
			}
		}
		if len(authors) > 0 {
			ref["authors"] = authors
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

// AuthorProfile is the part of a Scopus author record citemap uses.
type AuthorProfile struct {
	Surname   string
	GivenName string
	HIndex    int
}

// Author fetches an author's metrics by Scopus author id.
func (c *ScopusClient) Author(ctx context.Context, authorID string) (AuthorProfile, error) {
	var resp struct {
		Authors []struct {
			HIndex        json.RawMessage `json:"h-index"`
			PreferredName struct {
				Surname   string `json:"surname"`
				GivenName string `json:"given-name"`
			} `json:"preferred-name"`
		} `json:"author-retrieval-response"`
	}
	u := scopusBase + "/author/author_id/" + url.PathEscape(authorID) + "?view=METRICS"
	if err := c.http.GetJSON(ctx, u, c.header(), &resp); err != nil {
		return AuthorProfile{}, fmt.Errorf("scopus author: %w", err)
	}
	if len(resp.Authors) == 0 {
		return AuthorProfile{}, fmt.Errorf("scopus author %s not found", authorID)
	}
	h, err := parseCount(resp.Authors[0].HIndex)
	if err != nil {
		return AuthorProfile{}, fmt.Errorf("scopus author %s: %w", authorID, err)
	}
	return AuthorProfile{
		Surname:   resp.Authors[0].PreferredName.Surname,
		GivenName: resp.Authors[0].PreferredName.GivenName,
		HIndex:    h,
	}, nil
}

// AuthorHIndex returns an author's h-index.
func (c *ScopusClient) AuthorHIndex(ctx context.Context, authorID string) (int, error) {
	p, err := c.Author(ctx, authorID)
	if err != nil {
		return 0, err
	}
	return p.HIndex, nil
}

// Serial returns the raw serial-title record for an ISSN.
func (c *ScopusClient) Serial(ctx context.Context, issn string) (json.RawMessage, error) {
	issn = strings.ReplaceAll(strings.TrimSpace(issn), "-", "")
	body, err := c.http.GetRaw(ctx, scopusBase+"/serial/title/issn/"+url.PathEscape(issn)+"?view=ENHANCED", c.header())
	if err != nil {
		return nil, fmt.Errorf("scopus serial: %w", err)
	}
	return json.RawMessage(body), nil
}

// parseCount reads a count sent as a JSON number or numeric string.
func parseCount(raw json.RawMessage) (int, error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0, fmt.Errorf("missing count")
	}
	switch x := v.(type) {
	case float64:
		return int(x), nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(x))
		if err != nil {
			return 0, fmt.Errorf("count %q is not a number", x)
		}
		return n, nil
	}
	return 0, fmt.Errorf("missing count")
}

func firstNonBlank(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
