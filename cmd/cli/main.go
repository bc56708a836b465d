package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "cli",
		Short: "Backtest trading strategies over snapshot feeds",
		Long: `Backtest trading strategies over snapshot feeds.

  cli backtest --config examples/config.yaml --out results/ledger.csv
  cli rank --data data/feeds
  cli strategies`,
		SilenceUsage: true,
	}
	root.AddCommand(NewBacktestCommand())
	root.AddCommand(NewRankCommand())
	root.AddCommand(NewStrategiesCommand())
	return root
}
