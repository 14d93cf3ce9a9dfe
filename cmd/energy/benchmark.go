package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/okian/aimtrack/internal/domain/energy"
)

var benchmarkCmd = &cobra.Command{
	Use:   "benchmark <board> <benchmark> <scoreA> <scoreB>",
	Short: "Combined energy of a benchmark's two scenarios",
	Long: `benchmark scores both scenarios of a benchmark and combines them the
way leaderboards do. Scores are given in catalog order.`,
	Args: cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		div, err := loadDivision(args[0])
		if err != nil {
			return err
		}
		b, err := div.Benchmark(args[1])
		if err != nil {
			return err
		}
		a, err := parseScore(args[2])
		if err != nil {
			return err
		}
		bs, err := parseScore(args[3])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		ea := div.Tier.Score(a, b.A.Thresholds)
		eb := div.Tier.Score(bs, b.B.Thresholds)
		e := energy.BenchmarkEnergy(a, bs, b.Pair(div.Tier))
		fmt.Fprintf(out, "%s\t%.2f\n", b.A.Name, ea)
		fmt.Fprintf(out, "%s\t%.2f\n", b.B.Name, eb)
		fmt.Fprintf(out, "%s\t%.2f\t%s\n", b.ID, e, energy.RankName(e))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(benchmarkCmd)
}
