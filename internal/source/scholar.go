// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/pdiddy/citemap/internal/textutil"
	"github.com/pdiddy/citemap/pkg/types"
)

// Scholar normalizes SerpApi Google Scholar organic results. Scholar
// exposes no reference lists and no ISSNs.
type Scholar struct{}

type scholarResult struct {
	Title           string             `json:"title"`
	Link            string             `json:"link"`
	ResultID        string             `json:"result_id"`
	Snippet         string             `json:"snippet"`
	PublicationInfo scholarPublication `json:"publication_info"`
	InlineLinks     scholarInlineLinks `json:"inline_links"`
}

type scholarPublication struct {
	Summary string          `json:"summary"`
	Authors []scholarAuthor `json:"authors"`
}

type scholarAuthor struct {
	Name     string `json:"name"`
	AuthorID string `json:"author_id"`
}

type scholarInlineLinks struct {
	CitedBy *struct {
		Total flexInt `json:"total"`
	} `json:"cited_by"`
}

func (Scholar) Source() types.Source { return types.SourceScholar }

// Normalize maps one organic result. The summary line has the shape
// "J Smith, A Lee - Journal of Graphs, 2023 - publisher.com"; it supplies
// the year, the venue, and the authors when no structured list is given.
func (Scholar) Normalize(raw json.RawMessage) (types.CanonicalArticle, error) {
	var r scholarResult
	if err := decode(raw, &r, types.SourceScholar); err != nil {
		return types.CanonicalArticle{}, err
	}

	summary := r.PublicationInfo.Summary
	authorPart, venuePart := splitScholarSummary(summary)

	a := types.CanonicalArticle{
		Title:           textutil.StripMarkup(r.Title),
		SourceRecordID:  r.ResultID,
		DOI:             doiFromLink(r.Link),
		Link:            r.Link,
		Abstract:        textutil.StripMarkup(r.Snippet),
		PublicationYear: ScholarYear(summary),
		VenueName:       scholarVenue(venuePart),
	}
	if r.InlineLinks.CitedBy != nil {
		a.CitationCount = int(r.InlineLinks.CitedBy.Total)
	}

	if len(r.PublicationInfo.Authors) > 0 {
		for _, sa := range r.PublicationInfo.Authors {
			au := parseScholarName(sa.Name)
			au.ExternalID = sa.AuthorID
			a.Authors = append(a.Authors, au)
		}
	} else {
		for _, n := range splitList(authorPart, ",") {
			if strings.Trim(n, "…. ") == "" {
				continue
			}
			a.Authors = append(a.Authors, parseScholarName(n))
		}
	}

	return finish(a, types.SourceScholar)
}

func (Scholar) ReferenceFields(types.RawReference) ReferenceFields { return ReferenceFields{} }
func (Scholar) SupportsReferences() bool                           { return false }
func (Scholar) VenueMetricsApplicable() bool                       { return false }

func (Scholar) Eligible(a types.CanonicalArticle, currentYear int) bool {
	return eligibleYear(a, currentYear)
}

func (Scholar) RecordURL(doi, _ string) string {
	if doi == "" {
		return ""
	}
	return DOIURL(doi)
}

// ScholarYear returns the first whitespace token of summary that is
// exactly four digits once surrounding punctuation is trimmed.
func ScholarYear(summary string) *int {
	for _, tok := range strings.Fields(summary) {
		tok = strings.Trim(tok, ",.;:()[]-…")
		if len(tok) != 4 {
			continue
		}
		n, err := strconv.Atoi(tok)
		if err != nil {
			continue
		}
		return validYear(n)
	}
	return nil
}

func splitScholarSummary(summary string) (authors, venue string) {
	parts := strings.Split(summary, " - ")
	authors = strings.TrimSpace(parts[0])
	if len(parts) > 1 {
		venue = strings.TrimSpace(parts[1])
	}
	return authors, venue
}

// scholarVenue strips the trailing year from "Journal of Graphs, 2023".
// A segment that is only a year or a domain yields no venue.
func scholarVenue(segment string) string {
	segment = strings.Trim(segment, " …")
	if i := strings.LastIndex(segment, ","); i >= 0 && ScholarYear(segment[i+1:]) != nil {
		segment = strings.TrimSpace(segment[:i])
	}
	if ScholarYear(segment) != nil && len(strings.Fields(segment)) == 1 {
		return ""
	}
	return segment
}

// parseScholarName splits "J Smith" into given "J" and family "Smith".
func parseScholarName(name string) types.Author {
	fields := strings.Fields(strings.Trim(name, "… "))
	switch len(fields) {
	case 0:
		return types.Author{FamilyName: types.UnknownAuthor}
	case 1:
		return types.Author{FamilyName: fields[0]}
	}
	return types.Author{
		GivenName:  strings.Join(fields[:len(fields)-1], " "),
		FamilyName: fields[len(fields)-1],
	}
}

func doiFromLink(link string) string {
	const marker = "doi.org/"
	i := strings.Index(link, marker)
	if i < 0 {
		return ""
	}
	return strings.TrimSpace(link[i+len(marker):])
}
