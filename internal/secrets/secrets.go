// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads API keys and credentials from a directory of plain-text files.
// Each file in the directory represents one secret: the filename is the key name and the
// file contents (trimmed) are the value.
//
// Supported key files: scopus-api-key, serpapi-api-key, crossref-mailto.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/citemap/internal/logging"
	"github.com/pdiddy/citemap/pkg/types"
)

// Key file names.
const (
	ScopusAPIKey   = "scopus-api-key"
	SerpAPIKey     = "serpapi-api-key"
	CrossRefMailto = "crossref-mailto"
)

// Load reads all files in dir and returns a map of filename to trimmed contents.
// A missing directory or missing files are not errors; Load returns an empty map.
// Unreadable files are logged as warnings but do not abort.
func Load(dir string, log *zap.Logger) (map[string]string, error) {
	log = logging.OrNop(log)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			log.Warn("could not read secret", zap.String("name", name), zap.Error(err))
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}

// Apply copies secrets into cfg. Values already set through the config
// file or environment take precedence.
func Apply(cfg *types.Config, secrets map[string]string) {
	if cfg.Scopus.APIKey == "" {
		cfg.Scopus.APIKey = secrets[ScopusAPIKey]
	}
	if cfg.Scholar.APIKey == "" {
		cfg.Scholar.APIKey = secrets[SerpAPIKey]
	}
	if cfg.CrossRef.Mailto == "" {
		cfg.CrossRef.Mailto = secrets[CrossRefMailto]
	}
}
