package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/buffos/lifeweeks/chart"
	"github.com/buffos/lifeweeks/render"
)

func newRenderCommand() *cobra.Command {
	var (
		format string
		output string
	)

	cmd := &cobra.Command{
		Use:   "render <config>",
		Short: "Render a chart config to SVG, HTML, PNG or JPEG.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := chart.LoadConfig(args[0])
			if err != nil {
				return err
			}

			f := strings.ToLower(format)
			if f == "" {
				f = formatFromOutput(output)
			}

			var w io.Writer = cmd.OutOrStdout()
			if output != "" {
				file, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("create output file: %w", err)
				}
				defer file.Close()
				w = file
			}

			switch f {
			case "svg":
				return render.SVG(c, w)
			case "html":
				return render.HTML(c, w)
			case "png", "jpg", "jpeg":
				return render.Raster(c, f, w)
			default:
				return fmt.Errorf("unsupported format %q (want svg, html, png or jpg)", f)
			}
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "Output format: svg, html, png, jpg (default: from output extension, else svg)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file path (default: stdout)")

	return cmd
}

// formatFromOutput infers the render format from the output file
// extension, defaulting to svg for stdout.
func formatFromOutput(output string) string {
	switch strings.ToLower(filepath.Ext(output)) {
	case ".html", ".htm":
		return "html"
	case ".png":
		return "png"
	case ".jpg", ".jpeg":
		return "jpg"
	default:
		return "svg"
	}
}
