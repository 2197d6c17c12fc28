// Package config holds vaultlink's tunables and loads them from a YAML file
// in the vault root.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// FileName is the config file looked up in the vault root.
const FileName = ".vaultlink.yaml"

// Config is the full set of tunables. Zero values are not meaningful; start
// from Default and overlay a file with Load.
type Config struct {
	MinTermLength       int               `yaml:"min_term_length"`
	MaxWords            int               `yaml:"max_words"`
	PreferLonger        bool              `yaml:"prefer_longer"`
	CaseSensitive       bool              `yaml:"case_sensitive"`
	SimilarityThreshold float64           `yaml:"similarity_threshold"`
	SimilarityPolicy    string            `yaml:"similarity_policy"`            // "first" or "best"
	Synonyms            map[string]string `yaml:"synonyms,omitempty"`           // abbreviation -> expansion
	ExcludeExtensions   []string          `yaml:"exclude_extensions,omitempty"`
	ExcludePaths        []string          `yaml:"exclude_paths,omitempty"`      // vault-relative prefixes
	PoolSize            int               `yaml:"pool_size,omitempty"`          // 0 = derive from CPU count
}

// Default returns the settings used when no file is present.
func Default() Config {
	return Config{
		MinTermLength:       3,
		MaxWords:            5,
		PreferLonger:        true,
		SimilarityThreshold: 0.9,
		SimilarityPolicy:    "first",
		Synonyms:            map[string]string{},
	}
}

// Load reads path over Default. A missing file is not an error: the defaults
// are returned as-is.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// LoadVault loads FileName from the vault root.
func LoadVault(vault string) (Config, error) {
	return Load(filepath.Join(vault, FileName))
}

// Validate checks ranges and enumerations.
func (c Config) Validate() error {
	switch {
	case c.MinTermLength < 1:
		return fmt.Errorf("%w: min_term_length must be >= 1, got %d", ErrInvalidConfig, c.MinTermLength)
	case c.MaxWords < 1:
		return fmt.Errorf("%w: max_words must be >= 1, got %d", ErrInvalidConfig, c.MaxWords)
	case c.SimilarityThreshold < 0 || c.SimilarityThreshold > 1:
		return fmt.Errorf("%w: similarity_threshold must be in [0,1], got %g", ErrInvalidConfig, c.SimilarityThreshold)
	case c.PoolSize < 0:
		return fmt.Errorf("%w: pool_size must be >= 0, got %d", ErrInvalidConfig, c.PoolSize)
	}
	switch c.SimilarityPolicy {
	case "", "first", "best":
	default:
		return fmt.Errorf("%w: similarity_policy must be \"first\" or \"best\", got %q", ErrInvalidConfig, c.SimilarityPolicy)
	}
	for abbr, exp := range c.Synonyms {
		if strings.TrimSpace(abbr) == "" || strings.TrimSpace(exp) == "" {
			return fmt.Errorf("%w: synonym entries must be non-empty", ErrInvalidConfig)
		}
	}
	return nil
}

// Excluded reports whether a vault-relative path is filtered out by
// ExcludeExtensions or ExcludePaths. Paths use forward slashes; extensions
// match case-insensitively with or without the leading dot.
func (c Config) Excluded(rel string) bool {
	rel = filepath.ToSlash(rel)
	lower := strings.ToLower(rel)
	for _, ext := range c.ExcludeExtensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	for _, prefix := range c.ExcludePaths {
		prefix = strings.Trim(filepath.ToSlash(strings.TrimSpace(prefix)), "/")
		if prefix == "" {
			continue
		}
		if rel == prefix || strings.HasPrefix(rel, prefix+"/") {
			return true
		}
	}
	return false
}

// Marshal renders c as YAML, for `vaultlink config`.
func (c Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
