package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/okian/aimtrack/internal/domain/energy"
)

var scoreCmd = &cobra.Command{
	Use:   "score <board> <hash> <score>",
	Short: "Energy of one scenario score",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		div, err := loadDivision(args[0])
		if err != nil {
			return err
		}
		sc, err := div.Scenario(args[1])
		if err != nil {
			return err
		}
		score, err := parseScore(args[2])
		if err != nil {
			return err
		}
		e := div.Tier.Score(score, sc.Thresholds)
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%.2f\t%s\n", sc.Name, e, energy.RankName(e))
		return nil
	},
}

func parseScore(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid score %q: %w", s, err)
	}
	return v, nil
}

func init() {
	rootCmd.AddCommand(scoreCmd)
}
