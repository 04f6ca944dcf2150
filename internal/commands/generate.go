package commands

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/gaborage/restdoc/analyzer"
	"github.com/gaborage/restdoc/config"
	"github.com/gaborage/restdoc/declaration"
	"github.com/gaborage/restdoc/diagnostic"
	"github.com/gaborage/restdoc/logger"
	"github.com/gaborage/restdoc/pipeline"
	"github.com/gaborage/restdoc/writer"
)

// ErrWarnings is returned in strict mode when the run reported warnings.
var ErrWarnings = errors.New("warnings reported in strict mode")

// flagKeys maps command-line flags onto configuration keys. Only flags set
// explicitly override the file and the environment.
var flagKeys = map[string]string{
	"project":              "source.root",
	"manifest":             "source.manifest",
	"output":               "output.dir",
	"format":               "output.format",
	"concurrency":          "output.concurrency",
	"context-path":         "doc.contextpath",
	"enable-pojo":          "doc.enablepojo",
	"path-exclude":         "doc.pathexclude",
	"matching-resources":   "doc.matchingresources",
	"matching-pojos":       "doc.matchingpojos",
	"disable-http-example": "doc.disablehttpexample",
	"disable-js-example":   "doc.disablejsexample",
	"log-level":            "log.level",
	"pretty":               "log.pretty",
	"strict":               "strict",
}

// legacyFlags maps single-word option names onto the hyphenated flags.
var legacyFlags = map[string]string{
	"jaxrscontext":             "context-path",
	"enablepojojson":           "enable-pojo",
	"pathexcludefilter":        "path-exclude",
	"matchingresourcesonly":    "matching-resources",
	"matchingpojonamesonly":    "matching-pojos",
	"disablehttpexample":       "disable-http-example",
	"disablejavascriptexample": "disable-js-example",
}

// GenerateOptions holds options for the generate command
type GenerateOptions struct {
	ConfigFile         string
	ProjectRoot        string
	Manifest           string
	OutputDir          string
	Format             string
	Concurrency        int
	ContextPath        string
	EnablePOJO         bool
	PathExclude        []string
	MatchingResources  string
	MatchingPOJOs      string
	DisableHTTPExample bool
	DisableJSExample   bool
	LogLevel           string
	Pretty             bool
	Strict             bool
}

// NewGenerateCommand creates the generate command
func NewGenerateCommand() *cobra.Command {
	opts := &GenerateOptions{}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate REST API documentation",
		Long: `Reads the resource declarations of a Go module (or a YAML declaration
manifest), builds the resource tree and writes one page per resource, an
index, a summary and, with --enable-pojo, one page per data-object type.

Flags override restdoc.yaml and RESTDOC_* environment variables.`,
		Example: `  # Document the module in the current directory
  restdoc generate --project .

  # Mount under /api, skip internal resources, JSON output
  restdoc generate -p ./service --context-path /api --path-exclude '^/api/internal' -f json

  # Feed declarations from a manifest and fail on warnings
  restdoc generate --manifest api.yaml --strict`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runGenerate(cmd, opts)
		},
	}

	flags := cmd.Flags()
	flags.SetNormalizeFunc(normalizeLegacyFlags)
	flags.StringVarP(&opts.ConfigFile, "config", "c", "", "Configuration file (default restdoc.yaml when present)")
	flags.StringVarP(&opts.ProjectRoot, "project", "p", "", "Go module root to document")
	flags.StringVarP(&opts.Manifest, "manifest", "m", "", "YAML declaration manifest to document")
	flags.StringVarP(&opts.OutputDir, "output", "o", "", "Output directory")
	flags.StringVarP(&opts.Format, "format", "f", "", "Output format (yaml|json)")
	flags.IntVar(&opts.Concurrency, "concurrency", 0, "Type pages written in parallel")
	flags.StringVar(&opts.ContextPath, "context-path", "", "Path every resource is mounted under")
	flags.BoolVar(&opts.EnablePOJO, "enable-pojo", false, "Document the data-object types")
	flags.StringArrayVar(&opts.PathExclude, "path-exclude", nil, "Regex of resource paths to leave out (repeatable)")
	flags.StringVar(&opts.MatchingResources, "matching-resources", "", "Only document operations of resources matching this regex")
	flags.StringVar(&opts.MatchingPOJOs, "matching-pojos", "", "Only publish data-object types matching this regex")
	flags.BoolVar(&opts.DisableHTTPExample, "disable-http-example", false, "Omit HTTP request examples")
	flags.BoolVar(&opts.DisableJSExample, "disable-js-example", false, "Omit JavaScript examples")
	flags.StringVar(&opts.LogLevel, "log-level", "", "Log level (debug|info|warn|error)")
	flags.BoolVar(&opts.Pretty, "pretty", false, "Human readable logs")
	flags.BoolVar(&opts.Strict, "strict", false, "Fail when warnings are reported")

	return cmd
}

func normalizeLegacyFlags(_ *pflag.FlagSet, name string) pflag.NormalizedName {
	if canonical, ok := legacyFlags[name]; ok {
		name = canonical
	}
	return pflag.NormalizedName(name)
}

// overrides collects the explicitly set flags as configuration overrides.
func overrides(flags *pflag.FlagSet, opts *GenerateOptions) map[string]any {
	values := map[string]any{
		"project":              opts.ProjectRoot,
		"manifest":             opts.Manifest,
		"output":               opts.OutputDir,
		"format":               opts.Format,
		"concurrency":          opts.Concurrency,
		"context-path":         opts.ContextPath,
		"enable-pojo":          opts.EnablePOJO,
		"path-exclude":         opts.PathExclude,
		"matching-resources":   opts.MatchingResources,
		"matching-pojos":       opts.MatchingPOJOs,
		"disable-http-example": opts.DisableHTTPExample,
		"disable-js-example":   opts.DisableJSExample,
		"log-level":            opts.LogLevel,
		"pretty":               opts.Pretty,
		"strict":               opts.Strict,
	}

	out := make(map[string]any)
	for flag, key := range flagKeys {
		if flags.Changed(flag) {
			out[key] = values[flag]
		}
	}
	return out
}

func runGenerate(cmd *cobra.Command, opts *GenerateOptions) error {
	cfg, err := config.Load(config.LoadOptions{
		File:      opts.ConfigFile,
		Overrides: overrides(cmd.Flags(), opts),
	})
	if err != nil {
		return err
	}

	log := logger.NewWithWriter(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Pretty)
	start := time.Now()

	sourceProblems := diagnostic.NewCollector(log)
	src, err := loadSource(cfg, sourceProblems)
	if err != nil {
		return err
	}

	out := writer.New(cfg)
	result, err := pipeline.Generate(cmd.Context(), cfg, src, out.Writers(), log,
		pipeline.WithSourceDiagnostics(sourceProblems))
	if err != nil {
		return err
	}

	printResult(cmd.OutOrStdout(), out.Dir(), result.Run, time.Since(start))

	if cfg.Strict && result.Run.Warnings > 0 {
		return fmt.Errorf("%w: %d", ErrWarnings, result.Run.Warnings)
	}
	return nil
}

// loadSource reads the declarations selected by source.root or source.manifest.
func loadSource(cfg *config.Config, rep diagnostic.Reporter) (declaration.Source, error) {
	if cfg.Source.Manifest != "" {
		return declaration.LoadManifestFile(cfg.Source.Manifest)
	}

	catalog, err := analyzer.New(cfg.Source.Root, rep).Analyze()
	if err != nil {
		return nil, err
	}
	if catalog.Len() == 0 {
		return nil, fmt.Errorf("%w in %s", analyzer.ErrNoSources, cfg.Source.Root)
	}
	return catalog, nil
}

func printResult(w io.Writer, dir string, run pipeline.RunInfo, elapsed time.Duration) {
	fmt.Fprintf(w, "✓ Documentation written to %s\n", dir)
	fmt.Fprintf(w, "  resources: %d, operations: %d, types: %d\n", run.Resources, run.Operations, run.Types)
	if run.Warnings > 0 {
		fmt.Fprintf(w, "  warnings: %d\n", run.Warnings)
	}
	fmt.Fprintf(w, "  run %s in %s\n", run.ID, elapsed.Round(time.Millisecond))
}
