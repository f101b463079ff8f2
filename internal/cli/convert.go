package cli

import (
	"github.com/spf13/cobra"

	"github.com/buffos/lifeweeks/chart"
)

func newConvertCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "convert <in> <out>",
		Short: "Convert a chart config between JSON and YAML.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := chart.LoadConfig(args[0])
			if err != nil {
				return err
			}
			return c.ExportConfig(args[1])
		},
	}
}
