package cli

import (
	"github.com/spf13/cobra"

	"github.com/buffos/lifeweeks/chart"
)

func newValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <config>",
		Short: "Check that a chart config parses and all its dates and options are valid.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := chart.LoadConfig(args[0])
			if err != nil {
				return err
			}
			cmd.Printf("%s: ok (%d events, %d eras, %d spans)\n", args[0],
				len(c.EventRecords()), len(c.EraRecords()), len(c.EraSpanRecords()))
			return nil
		},
	}
}
