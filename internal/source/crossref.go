// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"encoding/json"
	"strings"

	"github.com/pdiddy/citemap/internal/textutil"
	"github.com/pdiddy/citemap/pkg/types"
)

// CrossRef normalizes items of the CrossRef works API.
type CrossRef struct{}

type crossrefWork struct {
	Title           []string         `json:"title"`
	Author          []crossrefAuthor `json:"author"`
	DOI             string           `json:"DOI"`
	Issued          crossrefDate     `json:"issued"`
	PublishedPrint  crossrefDate     `json:"published-print"`
	PublishedOnline crossrefDate     `json:"published-online"`
	Created         crossrefDate     `json:"created"`
	ReferencedBy    flexInt          `json:"is-referenced-by-count"`
	ContainerTitle  []string         `json:"container-title"`
	ISSN            []string         `json:"ISSN"`
	Subject         []string         `json:"subject"`
	Abstract        string           `json:"abstract"`
	URL             string           `json:"URL"`
	Volume          string           `json:"volume"`
	Issue           string           `json:"issue"`

	Reference []types.RawReference `json:"reference"`
}

type crossrefAuthor struct {
	Given  string `json:"given"`
	Family string `json:"family"`
	Name   string `json:"name"`
	ORCID  string `json:"ORCID"`
}

// crossrefDate holds date-parts as decoded JSON so null parts survive.
type crossrefDate struct {
	DateParts any `json:"date-parts"`
}

func (CrossRef) Source() types.Source { return types.SourceCrossRef }

// Normalize maps a CrossRef work. The year is taken from the first date
// block that yields one: issued, published-print, published-online, created.
func (CrossRef) Normalize(raw json.RawMessage) (types.CanonicalArticle, error) {
	var w crossrefWork
	if err := decode(raw, &w, types.SourceCrossRef); err != nil {
		return types.CanonicalArticle{}, err
	}

	a := types.CanonicalArticle{
		DOI:           strings.TrimSpace(w.DOI),
		CitationCount: int(w.ReferencedBy),
		VenueName:     first(w.ContainerTitle),
		ISSN:          first(w.ISSN),
		Volume:        w.Volume,
		Issue:         w.Issue,
		Abstract:      textutil.StripMarkup(w.Abstract),
		Link:          w.URL,
		References:    w.Reference,
	}
	a.Title = textutil.StripMarkup(first(w.Title))

	for _, d := range []crossrefDate{w.Issued, w.PublishedPrint, w.PublishedOnline, w.Created} {
		if y := ExtractYear(d.DateParts); y != nil {
			a.PublicationYear = y
			break
		}
	}

	for _, ca := range w.Author {
		au := types.Author{
			GivenName:  strings.TrimSpace(ca.Given),
			FamilyName: strings.TrimSpace(ca.Family),
			ExternalID: ca.ORCID,
		}
		if au.FamilyName == "" {
			au.FamilyName = strings.TrimSpace(ca.Name)
		}
		if au.FamilyName == "" {
			au.FamilyName = types.UnknownAuthor
		}
		a.Authors = append(a.Authors, au)
	}

	a.AddKeywords(w.Subject...)
	return finish(a, types.SourceCrossRef)
}

// ReferenceFields reads a CrossRef reference: DOI, year, journal-title,
// article-title and author (first author surname). CrossRef references
// have no record id.
func (CrossRef) ReferenceFields(ref types.RawReference) ReferenceFields {
	return ReferenceFields{
		DOI:        field(ref, "DOI", "doi"),
		FamilyName: Surname(field(ref, "author")),
		Title:      field(ref, "article-title", "volume-title"),
		Venue:      field(ref, "journal-title", "series-title"),
		Year:       ExtractYear(firstPresent(ref, "year")),
	}
}

func (CrossRef) SupportsReferences() bool     { return true }
func (CrossRef) VenueMetricsApplicable() bool { return false }

func (CrossRef) Eligible(a types.CanonicalArticle, currentYear int) bool {
	return eligibleYear(a, currentYear)
}

func (CrossRef) RecordURL(doi, _ string) string {
	if doi == "" {
		return ""
	}
	return DOIURL(doi)
}

func first(values []string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
