package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/mod/semver"

	"github.com/gaborage/restdoc/config"
	"github.com/gaborage/restdoc/declaration"
)

const minGoVersion = "v1.24.0"

// ErrHealthCheck is returned when at least one doctor check failed.
var ErrHealthCheck = errors.New("health check failed")

// DoctorOptions holds options for the doctor command
type DoctorOptions struct {
	ConfigFile  string
	ProjectRoot string
	Manifest    string
	OutputDir   string
}

// NewDoctorCommand creates the doctor command
func NewDoctorCommand() *cobra.Command {
	opts := &DoctorOptions{}

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check environment and project compatibility",
		Long: `Performs health checks to ensure restdoc can run successfully.

Checks include:
- Go version compatibility
- Configuration and filter patterns
- Declaration source (Go files or manifest)
- Output directory is writable`,
		Example: `  # Check the configuration in the current directory
  restdoc doctor -p .

  # Check a manifest based setup
  restdoc doctor --manifest api.yaml -o docs`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDoctor(cmd.OutOrStdout(), cmd.Flags().Changed, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.ConfigFile, "config", "c", "", "Configuration file (default restdoc.yaml when present)")
	cmd.Flags().StringVarP(&opts.ProjectRoot, "project", "p", "", "Go module root to document")
	cmd.Flags().StringVarP(&opts.Manifest, "manifest", "m", "", "YAML declaration manifest to document")
	cmd.Flags().StringVarP(&opts.OutputDir, "output", "o", "", "Output directory")

	return cmd
}

func runDoctor(w io.Writer, changed func(string) bool, opts *DoctorOptions) error {
	fmt.Fprintln(w, "🏥 Running restdoc health check...")
	fmt.Fprintln(w)

	var hasErrors bool
	check := func(label string, err error) {
		if err != nil {
			fmt.Fprintf(w, "❌ %s: %v\n", label, err)
			hasErrors = true
			return
		}
		fmt.Fprintf(w, "✅ %s\n", label)
	}

	goVersion := runtime.Version()
	fmt.Fprintf(w, "📋 Go Version: %s\n", goVersion)
	if !isGoVersionSupported(goVersion) {
		check("Go version", fmt.Errorf("%s or newer required", strings.TrimPrefix(minGoVersion, "v")))
	} else {
		check("Go version compatible", nil)
	}

	values := make(map[string]any)
	for flag, value := range map[string]string{
		"project":  opts.ProjectRoot,
		"manifest": opts.Manifest,
		"output":   opts.OutputDir,
	} {
		if changed(flag) {
			values[flagKeys[flag]] = value
		}
	}

	cfg, err := config.Load(config.LoadOptions{File: opts.ConfigFile, Overrides: values})
	check("Configuration", err)
	if cfg != nil {
		if cfg.Source.Manifest != "" {
			fmt.Fprintf(w, "📄 Manifest: %s\n", cfg.Source.Manifest)
			check("Manifest", checkManifest(cfg.Source.Manifest))
		} else {
			fmt.Fprintf(w, "📁 Project Root: %s\n", cfg.Source.Root)
			check("Project structure", checkProjectStructure(cfg.Source.Root))
		}

		fmt.Fprintf(w, "📂 Output: %s\n", cfg.Output.Dir)
		check("Output directory", checkOutputDir(cfg.Output.Dir))
	}

	fmt.Fprintln(w)
	if hasErrors {
		fmt.Fprintln(w, "❌ Health check failed - please fix the issues above")
		return ErrHealthCheck
	}

	fmt.Fprintln(w, "✅ All checks passed - ready to generate documentation!")
	return nil
}

func isGoVersionSupported(version string) bool {
	if !strings.HasPrefix(version, "go") {
		return false
	}

	semverVersion := "v" + strings.TrimPrefix(version, "go")
	if !semver.IsValid(semverVersion) {
		return false
	}

	return semver.Compare(semverVersion, minGoVersion) >= 0
}

func checkProjectStructure(projectRoot string) error {
	absRoot, err := resolveProjectPath(projectRoot)
	if err != nil {
		return err
	}
	if err := validatePath(absRoot); err != nil {
		return err
	}

	var goFilesFound bool
	err = filepath.WalkDir(absRoot, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}

		if d.IsDir() {
			name := d.Name()
			if path != absRoot && (strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") ||
				name == "vendor" || name == "testdata" || name == "node_modules") {
				return filepath.SkipDir
			}
			return nil
		}

		if strings.HasSuffix(path, ".go") && !strings.HasSuffix(path, "_test.go") {
			goFilesFound = true
			return filepath.SkipAll
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to walk project directory: %w", err)
	}

	if !goFilesFound {
		return fmt.Errorf("no Go files found in project")
	}
	return nil
}

func checkManifest(path string) error {
	catalog, err := declaration.LoadManifestFile(path)
	if err != nil {
		return err
	}
	if catalog.Len() == 0 {
		return fmt.Errorf("manifest declares no types")
	}
	return nil
}

// checkOutputDir verifies the output directory, or its nearest existing
// ancestor, accepts new files.
func checkOutputDir(dir string) error {
	target, err := resolveProjectPath(dir)
	if err != nil {
		return err
	}
	for {
		info, err := os.Stat(target)
		if err == nil {
			if !info.IsDir() {
				return fmt.Errorf("%s is not a directory", target)
			}
			break
		}
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to access path %s: %w", target, err)
		}
		parent := filepath.Dir(target)
		if parent == target {
			return fmt.Errorf("path does not exist: %s", dir)
		}
		target = parent
	}

	probe, err := os.CreateTemp(target, ".restdoc-*")
	if err != nil {
		return fmt.Errorf("%s is not writable: %w", target, err)
	}
	name := probe.Name()
	_ = probe.Close()
	return os.Remove(name)
}

// resolveProjectPath converts a relative project path to absolute path
func resolveProjectPath(projectRoot string) (string, error) {
	cleanPath := filepath.Clean(projectRoot)
	if filepath.IsAbs(cleanPath) {
		return cleanPath, nil
	}

	absPath, err := filepath.Abs(cleanPath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve absolute path for %s: %w", projectRoot, err)
	}
	return absPath, nil
}

// validatePath ensures the path exists and is accessible
func validatePath(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return fmt.Errorf("path does not exist: %s", path)
	} else if err != nil {
		return fmt.Errorf("failed to access path %s: %w", path, err)
	}
	return nil
}
