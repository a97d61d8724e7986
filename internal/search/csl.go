// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"io"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/citemap/pkg/types"
)

// CSLItem represents a bibliographic entry in CSL (Citation Style Language)
// format. The field names and structure follow the CSL-JSON/CSL-YAML schema
// so that output is consumable by Pandoc and reference managers.
type CSLItem struct {
	ID             string    `yaml:"id"`
	Type           string    `yaml:"type"`
	Title          string    `yaml:"title"`
	Author         []CSLName `yaml:"author,omitempty"`
	ContainerTitle string    `yaml:"container-title,omitempty"`
	Volume         string    `yaml:"volume,omitempty"`
	Issue          string    `yaml:"issue,omitempty"`
	ISSN           string    `yaml:"ISSN,omitempty"`
	Abstract       string    `yaml:"abstract,omitempty"`
	Issued         *CSLDate  `yaml:"issued,omitempty"`
	DOI            string    `yaml:"DOI,omitempty"`
	URL            string    `yaml:"URL,omitempty"`
	Keyword        string    `yaml:"keyword,omitempty"`
}

// CSLName represents a person's name in CSL format.
type CSLName struct {
	Family  string `yaml:"family,omitempty"`
	Given   string `yaml:"given,omitempty"`
	Literal string `yaml:"literal,omitempty"`
}

// CSLDate represents a date in CSL format using date-parts.
type CSLDate struct {
	DateParts [][]int `yaml:"date-parts"`
}

// FormatCSL writes every ranked article of res as one CSL-YAML list,
// sources in request order.
func FormatCSL(res Results, w io.Writer) error {
	items := []CSLItem{}
	for _, sr := range res.Sources {
		for _, sa := range sr.Articles {
			items = append(items, toCSLItem(sa.Article))
		}
	}
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(items)
}

// toCSLItem converts a CanonicalArticle to a CSLItem.
func toCSLItem(a types.CanonicalArticle) CSLItem {
	item := CSLItem{
		ID:             cslID(a),
		Type:           "article-journal",
		Title:          a.Title,
		ContainerTitle: a.VenueName,
		Volume:         a.Volume,
		Issue:          a.Issue,
		ISSN:           a.ISSN,
		Abstract:       a.Abstract,
		DOI:            a.DOI,
		URL:            a.Link,
	}

	for _, au := range a.Authors {
		item.Author = append(item.Author, toCSLName(au))
	}

	if a.PublicationYear != nil {
		item.Issued = &CSLDate{DateParts: [][]int{{*a.PublicationYear}}}
	}

	for i, k := range a.Keywords {
		if i > 0 {
			item.Keyword += ", "
		}
		item.Keyword += k
	}
	return item
}

func cslID(a types.CanonicalArticle) string {
	if a.DOI != "" {
		return a.DOI
	}
	if a.SourceRecordID != "" {
		return string(a.Source) + ":" + a.SourceRecordID
	}
	return a.Title
}

// toCSLName maps an author onto CSL name parts. Unknown authors become a
// literal name.
func toCSLName(au types.Author) CSLName {
	if au.IsUnknown() {
		return CSLName{Literal: types.UnknownAuthor}
	}
	if au.GivenName == "" {
		return CSLName{Literal: au.FamilyName}
	}
	return CSLName{Family: au.FamilyName, Given: au.GivenName}
}
