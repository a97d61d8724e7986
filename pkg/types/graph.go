// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// NodeRole tells whether a graph node was a searched document or one of
// its references.
type NodeRole string

const (
	RolePrimary   NodeRole = "primary"
	RoleReference NodeRole = "reference"
)

// CitationNode is one vertex of a citation graph. IdentityKey is the
// heuristic "surname-year" key; distinct works sharing it collapse into one
// node.
type CitationNode struct {
	IdentityKey  string   `json:"id" yaml:"id"`
	DisplayLabel string   `json:"label" yaml:"label"`
	Title        string   `json:"title" yaml:"title"`
	Role         NodeRole `json:"role" yaml:"role"`

	// CitationCount is nil when the count lookup failed. Zero is a real count.
	CitationCount *int `json:"citation_count" yaml:"citation_count"`

	VenueName   string `json:"venue,omitempty" yaml:"venue,omitempty"`
	ResolvedURL string `json:"url" yaml:"url"`
}

// CitationEdge points from a citing document to a work it references.
type CitationEdge struct {
	From string `json:"from" yaml:"from"`
	To   string `json:"to" yaml:"to"`
}

// CitationGraph is the node/edge list handed to renderers.
type CitationGraph struct {
	Nodes []CitationNode `json:"nodes" yaml:"nodes"`
	Edges []CitationEdge `json:"edges" yaml:"edges"`
}
