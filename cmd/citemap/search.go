// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pdiddy/citemap/internal/apperr"
	"github.com/pdiddy/citemap/internal/rank"
	"github.com/pdiddy/citemap/internal/search"
	"github.com/pdiddy/citemap/pkg/types"
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search bibliographic sources and rank each source's results",
	Long: `Search sends one query to every selected source concurrently. Each
source's records are normalized, filtered to known publication years, scored
as alpha*citations + beta*novelty + gamma*age, and listed separately. A
source that fails is reported as unavailable; the others still return.

A search can be saved with --save and re-rendered later with --load
without querying any source.`,
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().String("query", "", "query text")
	searchCmd.Flags().String("type", "title", "search field: title, author or keywords")
	searchCmd.Flags().StringSlice("sources", nil, "sources to query (default scopus,crossref,scholar)")
	searchCmd.Flags().String("from", "", "earliest publication year (inclusive)")
	searchCmd.Flags().String("to", "", "latest publication year (inclusive)")
	searchCmd.Flags().Int("limit", 0, "records fetched per source (default search.max_results)")
	searchCmd.Flags().Float64("alpha", 0, "citation weight (default scoring.alpha)")
	searchCmd.Flags().Float64("beta", 0, "novelty weight (default scoring.beta)")
	searchCmd.Flags().Float64("gamma", 0, "age weight (default scoring.gamma)")
	searchCmd.Flags().Bool("json", false, "output results as JSON")
	searchCmd.Flags().Bool("csl", false, "output results as CSL-YAML")
	searchCmd.Flags().String("save", "", "save the query and results to a YAML file")
	searchCmd.Flags().String("load", "", "render results from a saved YAML file instead of searching")

	searchCmd.MarkFlagsMutuallyExclusive("json", "csl")
	searchCmd.MarkFlagsMutuallyExclusive("save", "load")

	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	asJSON, _ := cmd.Flags().GetBool("json")
	asCSL, _ := cmd.Flags().GetBool("csl")

	if load, _ := cmd.Flags().GetString("load"); load != "" {
		qf, err := search.ReadQueryFile(load)
		if err != nil {
			return err
		}
		res, err := qf.Results()
		if err != nil {
			return err
		}
		return renderResults(out, res, asJSON, asCSL)
	}

	text, _ := cmd.Flags().GetString("query")
	typ, _ := cmd.Flags().GetString("type")
	st, err := types.ParseSearchType(typ)
	if err != nil {
		return apperr.Wrap(err, apperr.CodeInvalidQueryParameters, "type")
	}
	names, _ := cmd.Flags().GetStringSlice("sources")
	sources, err := search.ParseSources(names)
	if err != nil {
		return err
	}
	from, _ := cmd.Flags().GetString("from")
	to, _ := cmd.Flags().GetString("to")
	dr, err := search.ParseDateRange(from, to)
	if err != nil {
		return err
	}
	limit, _ := cmd.Flags().GetInt("limit")
	if limit <= 0 {
		limit = cfg.Search.MaxResults
	}

	w := rank.WeightsFromConfig(cfg.Scoring)
	if cmd.Flags().Changed("alpha") {
		w.Alpha, _ = cmd.Flags().GetFloat64("alpha")
	}
	if cmd.Flags().Changed("beta") {
		w.Beta, _ = cmd.Flags().GetFloat64("beta")
	}
	if cmd.Flags().Changed("gamma") {
		w.Gamma, _ = cmd.Flags().GetFloat64("gamma")
	}

	a, err := newApp(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	q := types.Query{Text: text, Type: st, Limit: limit}
	res, searchErr := a.aggregator(w).Search(cmd.Context(), q, sources, dr)
	if searchErr != nil && !apperr.IsCode(searchErr, apperr.CodeSourceUnavailable) {
		return searchErr
	}

	logger.Info("search finished",
		zap.String("query", q.Text),
		zap.String("type", string(q.Type)),
		zap.Int("results", res.Total()))

	if err := renderResults(out, res, asJSON, asCSL); err != nil {
		return err
	}
	if save, _ := cmd.Flags().GetString("save"); save != "" {
		if err := search.WriteQueryFile(save, res, w); err != nil {
			return err
		}
		logger.Info("saved search", zap.String("path", save))
	}
	return searchErr
}

func renderResults(out io.Writer, res search.Results, asJSON, asCSL bool) error {
	switch {
	case asJSON:
		return search.FormatJSON(res, out)
	case asCSL:
		if err := search.FormatCSL(res, out); err != nil {
			return fmt.Errorf("writing CSL: %w", err)
		}
		return nil
	default:
		search.FormatTable(res, out)
		return nil
	}
}
