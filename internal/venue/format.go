// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package venue

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pdiddy/citemap/pkg/types"
)

// FormatTable writes one row per journal.
func FormatTable(metrics []types.VenueMetrics, w io.Writer) {
	if len(metrics) == 0 {
		fmt.Fprintln(w, "No journals.")
		return
	}
	fmt.Fprintf(w, "%-9s  %-40s  %-7s  %-7s  %-9s  %s\n",
		"ISSN", "Title", "SJR", "SNIP", "CiteScore", "Publisher")
	fmt.Fprintln(w, strings.Repeat("-", 100))
	for _, m := range metrics {
		fmt.Fprintf(w, "%-9s  %-40s  %-7s  %-7s  %-9s  %s\n",
			m.ISSN, truncate(m.Title, 40), metric(m.Rank), metric(m.ImpactProxy), metric(m.CiteScore), m.Publisher)
	}
}

// FormatJSON writes the metrics as an indented JSON array.
func FormatJSON(metrics []types.VenueMetrics, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(metrics)
}

func metric(v *float64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', 3, 64)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
