// Package cli wires the lifeweeks commands together.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCommand creates the top-level Cobra command hosting the
// render, convert and validate subcommands.
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lifeweeks",
		Short: "Generate one-square-per-week life calendar charts from a config file.",
		Long: `lifeweeks reads a chart definition (JSON or YAML) describing a
birthdate, life events, eras and era spans, lays the annotations out
without overlaps, and renders the chart as SVG, HTML or a raster image.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(
		newRenderCommand(),
		newConvertCommand(),
		newValidateCommand(),
	)

	return cmd
}

// Main is the entry point used by cmd/lifeweeks/main.go.
func Main() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
