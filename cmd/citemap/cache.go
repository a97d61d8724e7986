// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/citemap/internal/lookupcache"
	"github.com/pdiddy/citemap/pkg/types"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the lookup cache",
	Long: `The lookup cache stores citation counts, author surnames and journal
metrics fetched during searches and graph builds. It is off by default; set
cache.backend to sqlite or redis to enable it.`,
}

var cachePurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete expired entries from the SQLite cache",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Cache.Backend != types.CacheSQLite {
			fmt.Fprintf(cmd.OutOrStdout(), "cache backend %q expires entries on its own\n", cfg.Cache.Backend)
			return nil
		}
		s, err := lookupcache.OpenSQLite(cfg.Cache.Path)
		if err != nil {
			return err
		}
		defer s.Close()

		n, err := s.Purge(cmd.Context())
		if err != nil {
			return fmt.Errorf("purging cache: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "removed %d expired entries from %s\n", n, cfg.Cache.Path)
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cachePurgeCmd)
	rootCmd.AddCommand(cacheCmd)
}
