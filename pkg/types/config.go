package types

import "time"

// HTTPConfig holds shared HTTP settings used by every provider client.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "citemap/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`

	// RateLimit caps outgoing requests per second. Zero disables limiting.
	RateLimit float64 `json:"rate_limit" yaml:"rate_limit" mapstructure:"rate_limit"`

	// MaxRetries bounds the HTTP 429 retries (0 uses the client default).
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`
}

// ScopusConfig holds settings for the Elsevier Scopus API.
type ScopusConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// APIKey is sent as the X-ELS-APIKey header.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// LoadReferences fetches each document's reference list for graph builds.
	LoadReferences bool `json:"load_references" yaml:"load_references" mapstructure:"load_references"`

	// EnrichAuthors fetches each author's h-index from the Author Retrieval API.
	EnrichAuthors bool `json:"enrich_authors" yaml:"enrich_authors" mapstructure:"enrich_authors"`
}

// CrossRefConfig holds settings for the CrossRef REST API.
type CrossRefConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// Mailto is sent as the mailto parameter for polite pool access.
	Mailto string `json:"mailto,omitempty" yaml:"mailto,omitempty" mapstructure:"mailto"`
}

// ScholarConfig holds settings for Google Scholar access through SerpApi.
type ScholarConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// APIKey is the SerpApi key.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// EnrichAuthors fetches author h-index and interests for each result.
	EnrichAuthors bool `json:"enrich_authors" yaml:"enrich_authors" mapstructure:"enrich_authors"`
}

// ScoringConfig holds the relevance weights.
type ScoringConfig struct {
	Alpha float64 `json:"alpha" yaml:"alpha" mapstructure:"alpha"`
	Beta  float64 `json:"beta" yaml:"beta" mapstructure:"beta"`
	Gamma float64 `json:"gamma" yaml:"gamma" mapstructure:"gamma"`
}

// SearchConfig holds settings for the aggregated search.
type SearchConfig struct {
	// MaxResults is the per-source fetch size (default 25).
	MaxResults int `json:"max_results" yaml:"max_results" mapstructure:"max_results"`

	// EnrichTimeout bounds each venue or author enrichment lookup.
	EnrichTimeout time.Duration `json:"enrich_timeout" yaml:"enrich_timeout" mapstructure:"enrich_timeout"`
}

// GraphConfig holds settings for citation graph construction.
type GraphConfig struct {
	// Concurrency caps simultaneous reference lookups per document (default 4).
	Concurrency int `json:"concurrency" yaml:"concurrency" mapstructure:"concurrency"`

	// LookupTimeout bounds each citation-count or author lookup.
	LookupTimeout time.Duration `json:"lookup_timeout" yaml:"lookup_timeout" mapstructure:"lookup_timeout"`

	// DocumentLimit is how many documents a graph build fetches (default 10).
	DocumentLimit int `json:"document_limit" yaml:"document_limit" mapstructure:"document_limit"`
}

// CacheBackend selects the optional lookup cache.
type CacheBackend string

const (
	CacheNone   CacheBackend = "none"
	CacheSQLite CacheBackend = "sqlite"
	CacheRedis  CacheBackend = "redis"
)

// CacheConfig holds settings for the opt-in lookup cache.
type CacheConfig struct {
	Backend CacheBackend `json:"backend" yaml:"backend" mapstructure:"backend"`

	// Path is the SQLite database file.
	Path string `json:"path" yaml:"path" mapstructure:"path"`

	// RedisAddr is the host:port of the Redis server.
	RedisAddr     string `json:"redis_addr" yaml:"redis_addr" mapstructure:"redis_addr"`
	RedisPassword string `json:"redis_password,omitempty" yaml:"redis_password,omitempty" mapstructure:"redis_password"`
	RedisDB       int    `json:"redis_db" yaml:"redis_db" mapstructure:"redis_db"`

	// TTL is how long a cached lookup stays valid.
	TTL time.Duration `json:"ttl" yaml:"ttl" mapstructure:"ttl"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `json:"level" yaml:"level" mapstructure:"level"`

	// Format is json or console.
	Format string `json:"format" yaml:"format" mapstructure:"format"`
}

// Config groups every setting the CLI loads.
type Config struct {
	Scopus   ScopusConfig   `json:"scopus" yaml:"scopus" mapstructure:"scopus"`
	CrossRef CrossRefConfig `json:"crossref" yaml:"crossref" mapstructure:"crossref"`
	Scholar  ScholarConfig  `json:"scholar" yaml:"scholar" mapstructure:"scholar"`
	Scoring  ScoringConfig  `json:"scoring" yaml:"scoring" mapstructure:"scoring"`
	Search   SearchConfig   `json:"search" yaml:"search" mapstructure:"search"`
	Graph    GraphConfig    `json:"graph" yaml:"graph" mapstructure:"graph"`
	Cache    CacheConfig    `json:"cache" yaml:"cache" mapstructure:"cache"`
	Log      LogConfig      `json:"log" yaml:"log" mapstructure:"log"`
}

const defaultUserAgent = "citemap/0.1"

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() Config {
	http := HTTPConfig{Timeout: 30 * time.Second, UserAgent: defaultUserAgent, RateLimit: 5, MaxRetries: 3}
	scholarHTTP := http
	scholarHTTP.RateLimit = 1
	return Config{
		Scopus:   ScopusConfig{HTTPConfig: http, LoadReferences: true},
		CrossRef: CrossRefConfig{HTTPConfig: http},
		Scholar:  ScholarConfig{HTTPConfig: scholarHTTP, EnrichAuthors: true},
		Scoring:  ScoringConfig{Alpha: 0.7, Beta: 0.2, Gamma: 0.1},
		Search:   SearchConfig{MaxResults: 25, EnrichTimeout: 10 * time.Second},
		Graph:    GraphConfig{Concurrency: 4, LookupTimeout: 10 * time.Second, DocumentLimit: 10},
		Cache:    CacheConfig{Backend: CacheNone, Path: ".citemap/cache.db", RedisAddr: "localhost:6379", TTL: 24 * time.Hour},
		Log:      LogConfig{Level: "info", Format: "console"},
	}
}
