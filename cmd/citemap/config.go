// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/pdiddy/citemap/pkg/types"
)

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("citemap")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "citemap"))
		}
	}

	configureViper(viper.GetViper())

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Fprintf(os.Stderr, "warning: reading config: %v\n", err)
		}
	}
}

// configureViper binds CITEMAP_* environment variables and the defaults.
func configureViper(v *viper.Viper) {
	v.SetEnvPrefix("CITEMAP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v, types.DefaultConfig())
}

// setDefaults registers every config key so that environment variables
// reach Unmarshal even when no config file sets them.
func setDefaults(v *viper.Viper, c types.Config) {
	setHTTPDefaults(v, "scopus", c.Scopus.HTTPConfig)
	v.SetDefault("scopus.api_key", c.Scopus.APIKey)
	v.SetDefault("scopus.load_references", c.Scopus.LoadReferences)
	v.SetDefault("scopus.enrich_authors", c.Scopus.EnrichAuthors)

	setHTTPDefaults(v, "crossref", c.CrossRef.HTTPConfig)
	v.SetDefault("crossref.mailto", c.CrossRef.Mailto)

	setHTTPDefaults(v, "scholar", c.Scholar.HTTPConfig)
	v.SetDefault("scholar.api_key", c.Scholar.APIKey)
	v.SetDefault("scholar.enrich_authors", c.Scholar.EnrichAuthors)

	v.SetDefault("scoring.alpha", c.Scoring.Alpha)
	v.SetDefault("scoring.beta", c.Scoring.Beta)
	v.SetDefault("scoring.gamma", c.Scoring.Gamma)

	v.SetDefault("search.max_results", c.Search.MaxResults)
	v.SetDefault("search.enrich_timeout", c.Search.EnrichTimeout)

	v.SetDefault("graph.concurrency", c.Graph.Concurrency)
	v.SetDefault("graph.lookup_timeout", c.Graph.LookupTimeout)
	v.SetDefault("graph.document_limit", c.Graph.DocumentLimit)

	v.SetDefault("cache.backend", string(c.Cache.Backend))
	v.SetDefault("cache.path", c.Cache.Path)
	v.SetDefault("cache.redis_addr", c.Cache.RedisAddr)
	v.SetDefault("cache.redis_password", c.Cache.RedisPassword)
	v.SetDefault("cache.redis_db", c.Cache.RedisDB)
	v.SetDefault("cache.ttl", c.Cache.TTL)

	v.SetDefault("log.level", c.Log.Level)
	v.SetDefault("log.format", c.Log.Format)
}

func setHTTPDefaults(v *viper.Viper, prefix string, h types.HTTPConfig) {
	v.SetDefault(prefix+".timeout", h.Timeout)
	v.SetDefault(prefix+".user_agent", h.UserAgent)
	v.SetDefault(prefix+".rate_limit", h.RateLimit)
	v.SetDefault(prefix+".max_retries", h.MaxRetries)
}

// loadConfig decodes v into a Config.
func loadConfig(v *viper.Viper) (types.Config, error) {
	var c types.Config
	if err := v.Unmarshal(&c); err != nil {
		return types.Config{}, fmt.Errorf("decoding config: %w", err)
	}
	return c, nil
}
