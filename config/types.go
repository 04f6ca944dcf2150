package config

import (
	"regexp"

	"github.com/knadh/koanf/v2"
)

// Output formats.
const (
	FormatYAML = "yaml"
	FormatJSON = "json"
)

// Config represents the restdoc configuration.
type Config struct {
	Source SourceConfig `koanf:"source" json:"source" yaml:"source"`
	Output OutputConfig `koanf:"output" json:"output" yaml:"output"`
	Doc    DocConfig    `koanf:"doc" json:"doc" yaml:"doc"`
	Log    LogConfig    `koanf:"log" json:"log" yaml:"log"`
	// Strict turns warnings into a failing run
	Strict bool `koanf:"strict" json:"strict" yaml:"strict"`

	k       *koanf.Koanf
	filters *Filters
}

// SourceConfig selects what is documented. Root is a Go module directory;
// Manifest a YAML declaration manifest. Exactly one is required.
type SourceConfig struct {
	Root     string `koanf:"root" json:"root" yaml:"root" validate:"required_without=Manifest,excluded_with=Manifest"`
	Manifest string `koanf:"manifest" json:"manifest" yaml:"manifest" validate:"required_without=Root"`
}

// OutputConfig controls where and how pages are written.
type OutputConfig struct {
	Dir         string `koanf:"dir" json:"dir" yaml:"dir" validate:"required"`
	Format      string `koanf:"format" json:"format" yaml:"format" validate:"oneof=yaml json"`
	Concurrency int    `koanf:"concurrency" json:"concurrency" yaml:"concurrency" validate:"min=1,max=64"`
}

// DocConfig holds the documentation options.
type DocConfig struct {
	ContextPath        string   `koanf:"contextpath" json:"contextpath" yaml:"contextpath"`
	EnablePOJO         bool     `koanf:"enablepojo" json:"enablepojo" yaml:"enablepojo"`
	PathExclude        []string `koanf:"pathexclude" json:"pathexclude" yaml:"pathexclude"`
	MatchingResources  string   `koanf:"matchingresources" json:"matchingresources" yaml:"matchingresources"`
	MatchingPOJOs      string   `koanf:"matchingpojos" json:"matchingpojos" yaml:"matchingpojos"`
	DisableHTTPExample bool     `koanf:"disablehttpexample" json:"disablehttpexample" yaml:"disablehttpexample"`
	DisableJSExample   bool     `koanf:"disablejsexample" json:"disablejsexample" yaml:"disablejsexample"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `koanf:"level" json:"level" yaml:"level" validate:"oneof=trace debug info warn error fatal panic disabled"`
	Pretty bool   `koanf:"pretty" json:"pretty" yaml:"pretty"`
}

// Filters are the compiled regular expressions of the doc options.
type Filters struct {
	PathExclude       []*regexp.Regexp
	MatchingResources *regexp.Regexp
	MatchingPOJOs     *regexp.Regexp
}
