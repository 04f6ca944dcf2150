package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gaborage/restdoc/internal/commands"
)

var version = "dev" // Will be set during build

func main() {
	rootCmd := &cobra.Command{
		Use:   "restdoc",
		Short: "Generate REST API documentation for Go services",
		Long: `Static analysis-based REST API documentation generator.

restdoc reads resource types annotated with //rest: directives (or a YAML
declaration manifest), resolves sub-resource locators into a resource tree and
writes per-resource pages, an index, a summary and data-object type pages.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		commands.NewGenerateCommand(),
		commands.NewScanCommand(),
		commands.NewDoctorCommand(),
		commands.NewVersionCommand(version),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
