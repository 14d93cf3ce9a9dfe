package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/okian/aimtrack/internal/domain/benchmark"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog [board]",
	Short: "List divisions, benchmarks and thresholds",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var divs []*benchmark.Division
		if len(args) == 1 {
			d, err := loadDivision(args[0])
			if err != nil {
				return err
			}
			divs = []*benchmark.Division{d}
		} else {
			c, err := loadCatalog()
			if err != nil {
				return err
			}
			divs = c.Divisions()
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		for _, d := range divs {
			fmt.Fprintf(tw, "%s\tband %v\n", d.Board, d.Tier.Band)
			for _, b := range d.Benchmarks {
				for _, s := range []benchmark.Scenario{b.A, b.B} {
					fmt.Fprintf(tw, "  %s\t%s\t%s\t%v\n", b.ID, s.Name, s.Hash, s.Thresholds)
				}
			}
		}
		return tw.Flush()
	},
}

func init() {
	rootCmd.AddCommand(catalogCmd)
}
