// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package graph builds directed citation graphs from canonical documents
// and their raw reference lists.
//
// Nodes are identified by the heuristic key "surname-year". Distinct works
// whose first authors share a surname and a year collapse into one node;
// the first document or reference to claim a key defines the node.
//
// Each document moves through Pending, Identified, Enriched and Committed,
// or ends Rejected when it has neither a DOI nor a provider record id.
// Reference lookups for one document run concurrently into per-reference
// slots; a single writer commits nodes and edges in input order, so the
// same input always yields the same graph.
package graph

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/citemap/internal/apperr"
	"github.com/pdiddy/citemap/internal/logging"
	"github.com/pdiddy/citemap/internal/source"
	"github.com/pdiddy/citemap/pkg/types"
)

const (
	// DefaultConcurrency caps simultaneous lookups per document.
	DefaultConcurrency = 4

	// DefaultLookupTimeout bounds each lookup.
	DefaultLookupTimeout = 10 * time.Second

	unknown = "unknown"
)

// LookupKey addresses a work in a provider. DOI is preferred when set.
type LookupKey struct {
	DOI      string
	RecordID string
	Source   types.Source
}

func (k LookupKey) String() string {
	if k.DOI != "" {
		return string(k.Source) + ":doi:" + k.DOI
	}
	return string(k.Source) + ":id:" + k.RecordID
}

// CitationCounter returns the current citation count of a work.
type CitationCounter interface {
	CitationCount(ctx context.Context, key LookupKey) (int, error)
}

// AuthorResolver returns the first author's surname of a work.
type AuthorResolver interface {
	FirstAuthorSurname(ctx context.Context, key LookupKey) (string, error)
}

// State is the lifecycle position of one document during a build.
type State string

const (
	StatePending    State = "pending"
	StateIdentified State = "identified"
	StateEnriched   State = "enriched"
	StateCommitted  State = "committed"
	StateRejected   State = "rejected"
)

// DocumentOutcome reports what happened to one input document.
type DocumentOutcome struct {
	Key                string `json:"key,omitempty"`
	Title              string `json:"title"`
	State              State  `json:"state"`
	Reason             string `json:"reason,omitempty"`
	References         int    `json:"references"`
	ReferencesIncluded int    `json:"references_included"`
}

// Result is the graph plus a per-document report.
type Result struct {
	Graph     types.CitationGraph `json:"graph"`
	Documents []DocumentOutcome   `json:"documents"`
}

// Builder constructs citation graphs. A Builder holds no per-build state
// and may be reused and shared.
type Builder struct {
	counts      CitationCounter
	authors     AuthorResolver
	concurrency int
	timeout     time.Duration
	log         *zap.Logger
}

// Option configures a Builder.
type Option func(*Builder)

// WithCitationCounter enables citation-count lookups for every node.
// Without one, primaries keep their normalized count and references are
// reported with an unknown count.
func WithCitationCounter(c CitationCounter) Option {
	return func(b *Builder) { b.counts = c }
}

// WithAuthorResolver enables surname lookups for references that lack one.
func WithAuthorResolver(r AuthorResolver) Option {
	return func(b *Builder) { b.authors = r }
}

// WithConcurrency caps simultaneous lookups per document.
func WithConcurrency(n int) Option {
	return func(b *Builder) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// WithLookupTimeout bounds each lookup.
func WithLookupTimeout(d time.Duration) Option {
	return func(b *Builder) {
		if d > 0 {
			b.timeout = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(b *Builder) { b.log = logging.OrNop(l) }
}

// NewBuilder returns a Builder with the given options.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{
		concurrency: DefaultConcurrency,
		timeout:     DefaultLookupTimeout,
		log:         zap.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// IdentityKey returns "{surname}-{year}" with "unknown" for missing parts.
func IdentityKey(surname string, year *int) string {
	s, y := keyParts(surname, year)
	return s + "-" + y
}

// DisplayLabel returns "{surname} - {year}" with "unknown" for missing parts.
func DisplayLabel(surname string, year *int) string {
	s, y := keyParts(surname, year)
	return s + " - " + y
}

func keyParts(surname string, year *int) (string, string) {
	if surname == "" || surname == types.UnknownAuthor {
		surname = unknown
	}
	y := unknown
	if year != nil {
		y = strconv.Itoa(*year)
	}
	return surname, y
}

// Build assembles a graph from documents of one source. It fails with
// apperr.CodeInvalidQueryParameters when the source has no reference
// lists, and with the context error when ctx is cancelled. Lookup
// failures never fail the build.
func (b *Builder) Build(ctx context.Context, s source.Strategy, docs []types.CanonicalArticle) (Result, error) {
	if !s.SupportsReferences() {
		return Result{}, apperr.New(apperr.CodeInvalidQueryParameters,
			"source %s does not provide reference lists", s.Source())
	}

	acc := newAccumulator()
	outcomes := make([]DocumentOutcome, 0, len(docs))

	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}

		out := DocumentOutcome{Title: doc.Title, State: StatePending, References: len(doc.References)}
		url := s.RecordURL(doc.DOI, doc.SourceRecordID)
		if url == "" {
			out.State = StateRejected
			out.Reason = "document has neither DOI nor record id"
			b.log.Warn("rejecting document", zap.String("title", doc.Title), zap.String("reason", out.Reason))
			outcomes = append(outcomes, out)
			continue
		}

		primary := types.CitationNode{
			IdentityKey:  IdentityKey(doc.FirstAuthor().FamilyName, doc.PublicationYear),
			DisplayLabel: DisplayLabel(doc.FirstAuthor().FamilyName, doc.PublicationYear),
			Title:        doc.Title,
			Role:         types.RolePrimary,
			VenueName:    doc.VenueName,
			ResolvedURL:  url,
		}
		out.Key = primary.IdentityKey
		out.State = StateIdentified

		refs, err := b.enrich(ctx, s, doc, &primary)
		if err != nil {
			return Result{}, err
		}
		out.State = StateEnriched

		acc.commit(primary, refs)
		out.ReferencesIncluded = len(refs)
		out.State = StateCommitted
		outcomes = append(outcomes, out)
	}

	b.log.Info("citation graph built",
		zap.String("source", string(s.Source())),
		zap.Int("documents", len(docs)),
		zap.Int("nodes", len(acc.graph.Nodes)),
		zap.Int("edges", len(acc.graph.Edges)))

	return Result{Graph: acc.graph, Documents: outcomes}, nil
}

// refSlot receives the resolution of one reference.
type refSlot struct {
	node     types.CitationNode
	included bool
}

// enrich resolves the primary's citation count and every reference of doc
// concurrently. Each goroutine writes only its own slot.
func (b *Builder) enrich(ctx context.Context, s source.Strategy, doc types.CanonicalArticle, primary *types.CitationNode) ([]types.CitationNode, error) {
	slots := make([]refSlot, len(doc.References))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.concurrency)

	g.Go(func() error {
		if b.counts == nil {
			n := doc.CitationCount
			primary.CitationCount = &n
			return nil
		}
		primary.CitationCount = b.count(gctx, LookupKey{DOI: doc.DOI, RecordID: doc.SourceRecordID, Source: s.Source()})
		return nil
	})

	for i, ref := range doc.References {
		i, ref := i, ref
		g.Go(func() error {
			slots[i] = b.resolveReference(gctx, s, ref)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	refs := make([]types.CitationNode, 0, len(slots))
	for _, sl := range slots {
		if sl.included {
			refs = append(refs, sl.node)
		}
	}
	return refs, nil
}

// resolveReference turns one raw reference into a node. References with
// no year or no resolvable URL are excluded.
func (b *Builder) resolveReference(ctx context.Context, s source.Strategy, ref types.RawReference) refSlot {
	f := s.ReferenceFields(ref)
	if f.Year == nil {
		return refSlot{}
	}
	url := s.RecordURL(f.DOI, f.RecordID)
	if url == "" {
		return refSlot{}
	}

	key := LookupKey{DOI: f.DOI, RecordID: f.RecordID, Source: s.Source()}
	surname := f.FamilyName
	if surname == "" {
		surname = b.surname(ctx, key)
	}

	return refSlot{
		included: true,
		node: types.CitationNode{
			IdentityKey:   IdentityKey(surname, f.Year),
			DisplayLabel:  DisplayLabel(surname, f.Year),
			Title:         f.Title,
			Role:          types.RoleReference,
			CitationCount: b.count(ctx, key),
			VenueName:     f.Venue,
			ResolvedURL:   url,
		},
	}
}

// count returns nil when no counter is configured or the lookup fails.
func (b *Builder) count(ctx context.Context, key LookupKey) *int {
	if b.counts == nil {
		return nil
	}
	lctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	n, err := b.counts.CitationCount(lctx, key)
	if err != nil {
		b.log.Debug("citation count unavailable",
			zap.Stringer("key", key),
			zap.Error(apperr.Wrap(err, apperr.CodeLookupUnavailable, "citation count")))
		return nil
	}
	return &n
}

// surname returns "unknown" when no resolver is configured or it fails.
func (b *Builder) surname(ctx context.Context, key LookupKey) string {
	if b.authors == nil {
		return unknown
	}
	lctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	name, err := b.authors.FirstAuthorSurname(lctx, key)
	if err != nil || name == "" {
		b.log.Debug("author lookup unavailable", zap.Stringer("key", key), zap.Error(err))
		return unknown
	}
	return source.Surname(name)
}

// accumulator is the single writer of a build's nodes and edges.
type accumulator struct {
	graph types.CitationGraph
	nodes map[string]bool
	edges map[types.CitationEdge]bool
}

func newAccumulator() *accumulator {
	return &accumulator{
		graph: types.CitationGraph{Nodes: []types.CitationNode{}, Edges: []types.CitationEdge{}},
		nodes: make(map[string]bool),
		edges: make(map[types.CitationEdge]bool),
	}
}

func (a *accumulator) addNode(n types.CitationNode) {
	if a.nodes[n.IdentityKey] {
		return
	}
	a.nodes[n.IdentityKey] = true
	a.graph.Nodes = append(a.graph.Nodes, n)
}

// commit adds the primary, its references and the citing edges. Self
// loops, which arise when a reference shares the primary's key, are
// dropped.
func (a *accumulator) commit(primary types.CitationNode, refs []types.CitationNode) {
	a.addNode(primary)
	for _, r := range refs {
		a.addNode(r)
		if r.IdentityKey == primary.IdentityKey {
			continue
		}
		e := types.CitationEdge{From: primary.IdentityKey, To: r.IdentityKey}
		if a.edges[e] {
			continue
		}
		a.edges[e] = true
		a.graph.Edges = append(a.graph.Edges, e)
	}
}

// Summary renders a one-line description of r.
func (r Result) Summary() string {
	rejected := 0
	for _, d := range r.Documents {
		if d.State == StateRejected {
			rejected++
		}
	}
	return fmt.Sprintf("%d nodes, %d edges from %d documents (%d rejected)",
		len(r.Graph.Nodes), len(r.Graph.Edges), len(r.Documents), rejected)
}
