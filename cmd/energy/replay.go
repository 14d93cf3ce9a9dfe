package main

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/aimtrack/internal/replay"
)

var (
	replayURL      string
	replayToken    string
	replayUser     string
	replayWorkers  int
	replayTimeout  time.Duration
	replayAll      bool
	replayGenerate int
	replayBoard    string
	replaySeed     uint64
)

var replayCmd = &cobra.Command{
	Use:   "replay [entries.json]",
	Short: "Upload an entry history to a running server",
	Long: `replay uploads a JSON array of entries to POST /me/entries. Entries
not newer than the server's latest timestamp are skipped unless --all is set.

With --generate N, N synthetic entries for --board are uploaded instead.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var entries []replay.Entry
		switch {
		case replayGenerate > 0:
			div, err := loadDivision(replayBoard)
			if err != nil {
				return err
			}
			rng := rand.New(rand.NewPCG(replaySeed, replaySeed^0x9e3779b97f4a7c15))
			entries = replay.Synthesize(div, replayGenerate, time.Now().Add(-24*time.Hour), rng)
		case len(args) == 1:
			var err error
			if entries, err = replay.LoadFile(args[0]); err != nil {
				return err
			}
		default:
			return fmt.Errorf("%w: give an entries file or --generate", replay.ErrNoEntries)
		}

		stats, err := replay.Run(cmd.Context(), replay.Config{
			BaseURL: replayURL,
			Token:   replayToken,
			User:    replayUser,
			Workers: replayWorkers,
			Timeout: replayTimeout,
			All:     replayAll,
		}, entries)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "accepted %d, duplicate %d, failed %d, skipped %d in %s\n",
			stats.Accepted, stats.Duplicate, stats.Failed, stats.Skipped, stats.Duration.Round(time.Millisecond))
		return nil
	},
}

func init() {
	f := replayCmd.Flags()
	f.StringVar(&replayURL, "url", "http://localhost:9080", "Server base URL")
	f.StringVar(&replayToken, "token", "", "Bearer token for jwt-auth servers")
	f.StringVar(&replayUser, "user", "", "User id for noop-auth servers")
	f.IntVarP(&replayWorkers, "workers", "w", 8, "Concurrent uploads")
	f.DurationVar(&replayTimeout, "timeout", 10*time.Second, "Per-request timeout")
	f.BoolVar(&replayAll, "all", false, "Upload every entry, ignoring the server's latest timestamp")
	f.IntVar(&replayGenerate, "generate", 0, "Upload N synthetic entries instead of a file")
	f.StringVar(&replayBoard, "board", "vt-s5-intermediate", "Board for synthetic entries")
	f.Uint64Var(&replaySeed, "seed", 1, "Seed for synthetic entries")
	rootCmd.AddCommand(replayCmd)
}
