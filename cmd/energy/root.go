package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/okian/aimtrack/internal/domain/benchmark"
	"github.com/okian/aimtrack/pkg/logger"
)

var (
	catalogPath string
	logLevel    string
)

var rootCmd = &cobra.Command{
	Use:   "energy",
	Short: "Benchmark energy calculator",
	Long: `energy converts scenario scores into benchmark energy using the same
catalog as the aimtrack server.

Boards name a season and difficulty, e.g. vt-s5-intermediate.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if err := logger.Init(logger.WithWriter(cmd.ErrOrStderr())); err != nil {
			return err
		}
		return logger.SetLevelString(logLevel)
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&catalogPath, "catalog", "c", "", "Catalog YAML file (built-in season catalog if empty)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug|info|warn|error)")
}

func loadCatalog() (*benchmark.Catalog, error) {
	if catalogPath == "" {
		return benchmark.Default()
	}
	c, err := benchmark.Load(catalogPath)
	if err != nil {
		return nil, fmt.Errorf("load catalog %s: %w", catalogPath, err)
	}
	return c, nil
}

func loadDivision(board string) (*benchmark.Division, error) {
	b, err := benchmark.ParseBoard(board)
	if err != nil {
		return nil, err
	}
	c, err := loadCatalog()
	if err != nil {
		return nil, err
	}
	return c.Lookup(b)
}
