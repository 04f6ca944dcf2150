// Package config loads the restdoc configuration.
//
// Values are merged with increasing priority from built-in defaults, a YAML
// file, RESTDOC_ prefixed environment variables and explicit overrides (the
// command-line flags). Keys are lower case and dot separated, e.g.
// doc.contextpath; the matching variable is RESTDOC_DOC_CONTEXTPATH.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	envprovider "github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

const (
	// DefaultFile is read when present and no file is named explicitly
	DefaultFile = "restdoc.yaml"
	// EnvPrefix is the prefix of configuration environment variables
	EnvPrefix = "RESTDOC_"
)

// listKeys hold lists when set from the environment. Items are separated by
// a newline or by a comma followed by whitespace, so a bare comma inside a
// pattern such as "[0-9]{1,3}" is kept.
var listKeys = []string{"doc.pathexclude"}

var listSeparator = regexp.MustCompile(`\n|,\s+`)

// LoadOptions select the configuration sources.
type LoadOptions struct {
	// File is a YAML file; a missing explicit file is an error
	File string
	// Overrides take precedence over every other source
	Overrides map[string]any
	// Environ replaces os.Environ, mainly for tests
	Environ func() []string
}

// Load loads configuration from multiple sources with priority:
// 1. Overrides (highest priority)
// 2. Environment variables
// 3. YAML configuration file
// 4. Default values (lowest priority)
func Load(opts LoadOptions) (*Config, error) {
	k := koanf.New(".")

	if err := loadDefaults(k); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	path := opts.File
	if path == "" {
		if _, err := os.Stat(DefaultFile); err == nil {
			path = DefaultFile
		}
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, NewMissingFileError(path)
			}
			return nil, fmt.Errorf("failed to load %s: %w", path, err)
		}
	}

	return finish(k, opts)
}

// LoadBytes loads configuration from an in-memory YAML document instead of a file.
func LoadBytes(data []byte, opts LoadOptions) (*Config, error) {
	k := koanf.New(".")

	if err := loadDefaults(k); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}
	if err := k.Load(rawbytes.Provider(data), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	return finish(k, opts)
}

func finish(k *koanf.Koanf, opts LoadOptions) (*Config, error) {
	if err := k.Load(envprovider.Provider(".", envprovider.Opt{
		Prefix:        EnvPrefix,
		TransformFunc: transformEnv,
		EnvironFunc:   opts.Environ,
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if len(opts.Overrides) > 0 {
		if err := k.Load(confmap.Provider(opts.Overrides, "."), nil); err != nil {
			return nil, fmt.Errorf("failed to load overrides: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.k = k

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// transformEnv converts RESTDOC_DOC_CONTEXTPATH to doc.contextpath.
func transformEnv(key, value string) (string, any) {
	key = strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(key, EnvPrefix)), "_", ".")
	for _, lk := range listKeys {
		if key == lk {
			var items []string
			for _, item := range listSeparator.Split(value, -1) {
				if item = strings.TrimSpace(item); item != "" {
					items = append(items, item)
				}
			}
			return key, items
		}
	}
	return key, value
}

func loadDefaults(k *koanf.Koanf) error {
	defaults := map[string]any{
		"source.root":     "",
		"source.manifest": "",

		"output.dir":         "restdoc-out",
		"output.format":      FormatYAML,
		"output.concurrency": 1,

		"doc.contextpath":        "",
		"doc.enablepojo":         false,
		"doc.pathexclude":        []string{},
		"doc.matchingresources":  "",
		"doc.matchingpojos":      "",
		"doc.disablehttpexample": false,
		"doc.disablejsexample":   false,

		"log.level":  "info",
		"log.pretty": false,

		"strict": false,
	}

	return k.Load(confmap.Provider(defaults, "."), nil)
}

// GetString retrieves a raw string value by key, or the provided default.
func (c *Config) GetString(key string, defaultVal ...string) string {
	if c == nil || c.k == nil || !c.k.Exists(key) {
		if len(defaultVal) > 0 {
			return defaultVal[0]
		}
		return ""
	}
	return c.k.String(key)
}

// Keys returns every loaded key, sorted.
func (c *Config) Keys() []string {
	if c == nil || c.k == nil {
		return nil
	}
	return c.k.Keys()
}
