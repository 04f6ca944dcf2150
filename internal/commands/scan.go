package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/gaborage/restdoc/analyzer"
	"github.com/gaborage/restdoc/declaration"
	"github.com/gaborage/restdoc/diagnostic"
	"github.com/gaborage/restdoc/logger"
)

// ScanOptions holds options for the scan command
type ScanOptions struct {
	ProjectRoot string
	OutputFile  string
	LogLevel    string
}

// NewScanCommand creates the scan command, which dumps the declarations found
// in a Go module as a manifest.
func NewScanCommand() *cobra.Command {
	opts := &ScanOptions{}

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Write the declarations of a Go module as a manifest",
		Long: `Analyzes a Go module and writes the discovered types, methods and
//rest: directives as a YAML declaration manifest. The manifest can be edited
and fed back with "restdoc generate --manifest".`,
		Example: `  # Print the manifest of the current module
  restdoc scan

  # Save it for later runs
  restdoc scan -p ./service -o api.yaml`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runScan(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.ProjectRoot, "project", "p", ".", "Go module root to analyze")
	cmd.Flags().StringVarP(&opts.OutputFile, "output", "o", "", "Manifest file (default stdout)")
	cmd.Flags().StringVar(&opts.LogLevel, "log-level", "info", "Log level (debug|info|warn|error)")

	return cmd
}

func runScan(cmd *cobra.Command, opts *ScanOptions) error {
	log := logger.NewWithWriter(cmd.ErrOrStderr(), opts.LogLevel, false)
	problems := diagnostic.NewCollector(log)

	catalog, err := analyzer.New(opts.ProjectRoot, problems).Analyze()
	if err != nil {
		return err
	}

	if opts.OutputFile == "" {
		return writeTo(cmd.OutOrStdout(), catalog)
	}

	if err := writeManifestFile(opts.OutputFile, catalog); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ %d types written to %s\n", catalog.Len(), opts.OutputFile)
	if n := problems.Count(); n > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "  warnings: %d\n", n)
	}
	return nil
}

func writeManifestFile(path string, catalog *declaration.Catalog) (err error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	// #nosec G304 - manifest path is provided by the operator
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create manifest %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	return writeTo(f, catalog)
}

func writeTo(w io.Writer, catalog *declaration.Catalog) error {
	if err := declaration.WriteManifest(w, catalog); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}
