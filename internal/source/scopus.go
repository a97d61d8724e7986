// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"encoding/json"
	"net/url"
	"strings"

	"github.com/pdiddy/citemap/pkg/types"
)

// scopusRecordBase is the Scopus record page; the EID is appended.
const scopusRecordBase = "https://www.scopus.com/record/display.uri?eid="

// Scopus normalizes entries of the Scopus Search API.
type Scopus struct{}

type scopusEntry struct {
	Title           string  `json:"dc:title"`
	DOI             string  `json:"prism:doi"`
	EID             string  `json:"eid"`
	Identifier      string  `json:"dc:identifier"`
	CoverDate       string  `json:"prism:coverDate"`
	PublicationName string  `json:"prism:publicationName"`
	ISSN            string  `json:"prism:issn"`
	EISSN           string  `json:"prism:eIssn"`
	CitedBy         flexInt `json:"citedby-count"`
	AuthKeywords    string  `json:"authkeywords"`
	Description     string  `json:"dc:description"`
	Volume          string  `json:"prism:volume"`
	Issue           string  `json:"prism:issueIdentifier"`

	Creator     string         `json:"dc:creator"`
	AuthorNames string         `json:"author_names"`
	AuthorIDs   string         `json:"author_ids"`
	Authors     []scopusAuthor `json:"author"`

	Links      []scopusLink         `json:"link"`
	References []types.RawReference `json:"references"`
}

type scopusAuthor struct {
	AuthID    string `json:"authid"`
	AuthName  string `json:"authname"`
	Surname   string `json:"surname"`
	GivenName string `json:"given-name"`
	Initials  string `json:"initials"`
}

type scopusLink struct {
	Ref  string `json:"@ref"`
	Href string `json:"@href"`
}

func (Scopus) Source() types.Source { return types.SourceScopus }

// Normalize maps a Scopus search entry. Authors come from the structured
// author array when present, otherwise from the semicolon-joined
// author_names (or dc:creator) with author_ids matched by position.
func (Scopus) Normalize(raw json.RawMessage) (types.CanonicalArticle, error) {
	var e scopusEntry
	if err := decode(raw, &e, types.SourceScopus); err != nil {
		return types.CanonicalArticle{}, err
	}

	a := types.CanonicalArticle{
		Title:           strings.TrimSpace(e.Title),
		DOI:             strings.TrimSpace(e.DOI),
		SourceRecordID:  scopusRecordID(e),
		PublicationYear: ExtractYear(e.CoverDate),
		CitationCount:   int(e.CitedBy),
		VenueName:       e.PublicationName,
		ISSN:            firstNonEmpty(e.ISSN, e.EISSN),
		Volume:          e.Volume,
		Issue:           e.Issue,
		Abstract:        strings.TrimSpace(e.Description),
		Link:            scopusLinkHref(e.Links),
		Authors:         scopusAuthors(e),
		References:      e.References,
	}
	a.AddKeywords(splitList(e.AuthKeywords, "|")...)
	return finish(a, types.SourceScopus)
}

// ReferenceFields reads a reference loaded from the Scopus abstract
// REF view: doi, id, title, sourcetitle, pub_date and authors.
func (Scopus) ReferenceFields(ref types.RawReference) ReferenceFields {
	return ReferenceFields{
		DOI:        field(ref, "doi"),
		RecordID:   field(ref, "id", "eid"),
		FamilyName: Surname(firstAuthorName(ref, "family", "authors", "author")),
		Title:      field(ref, "title"),
		Venue:      field(ref, "sourcetitle"),
		Year:       ExtractYear(firstPresent(ref, "pub_date", "coverDate", "year")),
	}
}

func (Scopus) SupportsReferences() bool     { return true }
func (Scopus) VenueMetricsApplicable() bool { return true }

func (Scopus) Eligible(a types.CanonicalArticle, currentYear int) bool {
	return eligibleYear(a, currentYear)
}

func (Scopus) RecordURL(doi, recordID string) string {
	if doi != "" {
		return DOIURL(doi)
	}
	if recordID != "" {
		return scopusRecordBase + url.QueryEscape(recordID)
	}
	return ""
}

func scopusRecordID(e scopusEntry) string {
	if e.EID != "" {
		return e.EID
	}
	return strings.TrimPrefix(e.Identifier, "SCOPUS_ID:")
}

func scopusLinkHref(links []scopusLink) string {
	for _, l := range links {
		if l.Ref == "scopus" {
			return l.Href
		}
	}
	return ""
}

func scopusAuthors(e scopusEntry) []types.Author {
	if len(e.Authors) > 0 {
		authors := make([]types.Author, 0, len(e.Authors))
		for _, sa := range e.Authors {
			au := types.Author{
				FamilyName: strings.TrimSpace(sa.Surname),
				GivenName:  strings.TrimSpace(firstNonEmpty(sa.GivenName, sa.Initials)),
				ExternalID: sa.AuthID,
			}
			if au.FamilyName == "" {
				parsed := parseScopusName(sa.AuthName)
				au.FamilyName, au.GivenName = parsed.FamilyName, parsed.GivenName
			}
			if au.FamilyName == "" {
				au.FamilyName = types.UnknownAuthor
			}
			authors = append(authors, au)
		}
		return authors
	}

	names := splitList(firstNonEmpty(e.AuthorNames, e.Creator), ";")
	ids := splitList(e.AuthorIDs, ";")
	authors := make([]types.Author, 0, len(names))
	for i, n := range names {
		au := parseScopusName(n)
		if i < len(ids) {
			au.ExternalID = ids[i]
		}
		authors = append(authors, au)
	}
	return authors
}

// parseScopusName handles "Smith, John" and "Smith J." forms.
func parseScopusName(name string) types.Author {
	name = strings.TrimSpace(name)
	if name == "" {
		return types.Author{FamilyName: types.UnknownAuthor}
	}
	if family, given, ok := strings.Cut(name, ","); ok {
		return types.Author{FamilyName: strings.TrimSpace(family), GivenName: strings.TrimSpace(given)}
	}
	family := Surname(name)
	given := strings.TrimSpace(strings.TrimPrefix(name, strings.Fields(name)[0]))
	return types.Author{FamilyName: family, GivenName: given}
}

// firstAuthorName returns the first author string found under keys. The
// value may be a string (possibly semicolon-joined) or a list.
func firstAuthorName(ref types.RawReference, keys ...string) string {
	for _, k := range keys {
		switch v := ref[k].(type) {
		case string:
			if parts := splitList(v, ";"); len(parts) > 0 {
				return parts[0]
			}
		case []any:
			for _, item := range v {
				switch it := item.(type) {
				case string:
					if strings.TrimSpace(it) != "" {
						return it
					}
				case map[string]any:
					if name := field(types.RawReference(it), "family", "surname", "ce:surname", "authname", "name"); name != "" {
						return name
					}
				}
			}
		case []string:
			if len(v) > 0 {
				return v[0]
			}
		}
	}
	return ""
}

func firstPresent(ref types.RawReference, keys ...string) any {
	for _, k := range keys {
		if v, ok := ref[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
