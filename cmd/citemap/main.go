// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the citemap CLI.
package main

import (
	"context"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/citemap/internal/apperr"
	"github.com/pdiddy/citemap/internal/logging"
	"github.com/pdiddy/citemap/internal/secrets"
	"github.com/pdiddy/citemap/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	// cfg is the merged configuration, loaded before any subcommand runs.
	cfg types.Config

	// logger carries the request id of this invocation.
	logger = zap.NewNop()
)

// rootCmd is the base command for the citemap CLI.
var rootCmd = &cobra.Command{
	Use:   "citemap",
	Short: "Search bibliographic sources and map citation graphs",
	Long: `citemap queries Scopus, CrossRef and Google Scholar (through SerpApi),
normalizes every record into one article model, and ranks each source's
results by citations and recency. It can also turn a source's documents and
their reference lists into a citation graph, and report journal metrics.

API keys are read from the config file, CITEMAP_* environment variables,
a .env file, or one file per key under .secrets/.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load()

		c, err := loadConfig(viper.GetViper())
		if err != nil {
			return err
		}

		l, err := logging.New(c.Log)
		if err != nil {
			return err
		}
		logger = l.With(zap.String("request_id", uuid.NewString()))
		if f := viper.ConfigFileUsed(); f != "" {
			logger.Debug("using config file", zap.String("path", f))
		}

		s, err := secrets.Load(".secrets/", logger)
		if err != nil {
			return err
		}
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			logger.Debug("loaded secrets", zap.Strings("keys", keys))
		}
		secrets.Apply(&c, s)

		cfg = c
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./citemap.yaml or ~/.config/citemap/citemap.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("cache", "", "lookup cache backend: none, sqlite, redis")
	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("cache.backend", rootCmd.PersistentFlags().Lookup("cache"))
}

// exitCode maps an error onto the process exit status.
func exitCode(err error) int {
	if apperr.IsCode(err, apperr.CodeInvalidQueryParameters) {
		return 2
	}
	return 1
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(exitCode(err))
	}
}
