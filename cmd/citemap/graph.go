// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pdiddy/citemap/internal/apperr"
	"github.com/pdiddy/citemap/internal/graph"
	"github.com/pdiddy/citemap/internal/rank"
	"github.com/pdiddy/citemap/internal/source"
	"github.com/pdiddy/citemap/pkg/types"
)

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Build a citation graph from a source's documents",
	Long: `Graph fetches documents matching the query from Scopus or CrossRef,
loads each document's reference list, and links every document to the
references that have a known year and a resolvable URL. Nodes are keyed by
first-author surname and year, so references shared between documents merge
into one node.

The graph is printed as a node/edge listing, or as JSON with --json for an
external renderer.`,
	RunE: runGraph,
}

func init() {
	graphCmd.Flags().String("query", "", "query text")
	graphCmd.Flags().String("type", "title", "search field: title, author or keywords")
	graphCmd.Flags().String("source", string(types.SourceScopus), "document source: scopus or crossref")
	graphCmd.Flags().Int("limit", 0, "documents to fetch (default graph.document_limit)")
	graphCmd.Flags().Bool("json", false, "output the graph as JSON")

	rootCmd.AddCommand(graphCmd)
}

func runGraph(cmd *cobra.Command, args []string) error {
	text, _ := cmd.Flags().GetString("query")
	typ, _ := cmd.Flags().GetString("type")
	st, err := types.ParseSearchType(typ)
	if err != nil {
		return apperr.Wrap(err, apperr.CodeInvalidQueryParameters, "type")
	}
	name, _ := cmd.Flags().GetString("source")
	src, err := types.ParseSource(name)
	if err != nil {
		return apperr.Wrap(err, apperr.CodeInvalidQueryParameters, "source")
	}
	strategy, err := source.For(src)
	if err != nil {
		return err
	}
	limit, _ := cmd.Flags().GetInt("limit")
	if limit <= 0 {
		limit = cfg.Graph.DocumentLimit
	}

	a, err := newApp(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	q := types.Query{Text: text, Type: st, Limit: limit}
	docs, err := a.aggregator(rank.WeightsFromConfig(cfg.Scoring)).Documents(cmd.Context(), q, src)
	if err != nil {
		return err
	}

	res, err := a.builder().Build(cmd.Context(), strategy, docs)
	if err != nil {
		return err
	}
	logger.Info("graph built", zap.String("source", string(src)), zap.String("summary", res.Summary()))

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return graph.WriteJSON(res.Graph, cmd.OutOrStdout())
	}
	graph.FormatTable(res, cmd.OutOrStdout())
	return nil
}
