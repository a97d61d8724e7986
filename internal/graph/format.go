// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package graph

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/pdiddy/citemap/pkg/types"
)

// WriteJSON writes the graph as an indented {nodes, edges} document.
func WriteJSON(g types.CitationGraph, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(g)
}

// FormatTable writes the nodes, edges and rejected documents of r as
// human-readable text.
func FormatTable(r Result, w io.Writer) {
	if len(r.Graph.Nodes) == 0 {
		fmt.Fprintln(w, "Empty graph.")
	} else {
		fmt.Fprintf(w, "%-24s  %-9s  %-9s  %s\n", "Node", "Role", "Citations", "Title")
		fmt.Fprintln(w, strings.Repeat("-", 90))
		for _, n := range r.Graph.Nodes {
			cites := "?"
			if n.CitationCount != nil {
				cites = fmt.Sprintf("%d", *n.CitationCount)
			}
			fmt.Fprintf(w, "%-24s  %-9s  %-9s  %s\n",
				truncate(n.DisplayLabel, 24), n.Role, cites, truncate(n.Title, 50))
		}

		if len(r.Graph.Edges) > 0 {
			fmt.Fprintln(w)
			for _, e := range r.Graph.Edges {
				fmt.Fprintf(w, "%s -> %s\n", e.From, e.To)
			}
		}
	}

	for _, d := range r.Documents {
		if d.State == StateRejected {
			fmt.Fprintf(w, "rejected: %s (%s)\n", truncate(d.Title, 60), d.Reason)
		}
	}
	fmt.Fprintf(w, "\n%s\n", r.Summary())
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
