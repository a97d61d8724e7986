// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"github.com/spf13/cobra"

	"github.com/pdiddy/citemap/internal/apperr"
	"github.com/pdiddy/citemap/internal/venue"
)

var journalsCmd = &cobra.Command{
	Use:   "journals",
	Short: "Report Scopus metrics for journals by ISSN",
	Long: `Journals looks up each ISSN in the Scopus Serial Title API and prints
its SJR, SNIP, CiteScore and publisher. A journal that cannot be looked up
is reported with empty metrics and an unknown publisher.`,
	RunE: runJournals,
}

func init() {
	journalsCmd.Flags().StringSlice("issn", nil, "journal ISSN (repeatable)")
	journalsCmd.Flags().Bool("json", false, "output metrics as JSON")

	rootCmd.AddCommand(journalsCmd)
}

func runJournals(cmd *cobra.Command, args []string) error {
	issns, _ := cmd.Flags().GetStringSlice("issn")
	issns = append(issns, args...)
	if len(issns) == 0 {
		return apperr.New(apperr.CodeInvalidQueryParameters, "provide at least one --issn")
	}

	a, err := newApp(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	enricher := a.venueEnricher()
	if enricher == nil {
		return apperr.New(apperr.CodeSourceUnavailable, "journal metrics need a Scopus API key")
	}
	metrics := enricher.JournalMetrics(cmd.Context(), issns)

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return venue.FormatJSON(metrics, cmd.OutOrStdout())
	}
	venue.FormatTable(metrics, cmd.OutOrStdout())
	return nil
}
