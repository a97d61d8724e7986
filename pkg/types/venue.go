// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// UnknownPublisher is the publisher reported when venue metrics are missing.
const UnknownPublisher = "unknown"

// YearValue is one point of a per-year metric series.
type YearValue struct {
	Year  int     `json:"year" yaml:"year"`
	Value float64 `json:"value" yaml:"value"`
}

// VenueMetrics describes the journal an article was published in.
// Every numeric metric is optional; nil means the provider did not report it.
type VenueMetrics struct {
	ISSN  string `json:"issn" yaml:"issn"`
	Title string `json:"title,omitempty" yaml:"title,omitempty"`

	// Rank is the SCImago Journal Rank.
	Rank *float64 `json:"rank,omitempty" yaml:"rank,omitempty"`

	// ImpactProxy is the Source Normalized Impact per Paper.
	ImpactProxy *float64 `json:"impact_proxy,omitempty" yaml:"impact_proxy,omitempty"`

	CiteScore     *float64    `json:"cite_score,omitempty" yaml:"cite_score,omitempty"`
	HIndexHistory []YearValue `json:"h_index_history,omitempty" yaml:"h_index_history,omitempty"`
	Publisher     string      `json:"publisher" yaml:"publisher"`
}

// DefaultVenueMetrics is returned whenever a venue lookup cannot complete.
func DefaultVenueMetrics(issn string) VenueMetrics {
	return VenueMetrics{ISSN: issn, Publisher: UnknownPublisher}
}
