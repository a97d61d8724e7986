// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package textutil cleans text fields returned by bibliographic APIs.
package textutil

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// StripMarkup removes HTML and JATS tags (CrossRef abstracts arrive as
// <jats:p> fragments, Scholar titles carry <b> highlights), decodes
// entities, and collapses whitespace.
func StripMarkup(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return CollapseSpace(s)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return CollapseSpace(s)
	}
	return CollapseSpace(doc.Text())
}

// CollapseSpace trims s and replaces every whitespace run with one space.
func CollapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
