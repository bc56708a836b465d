package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"tick-backtest/internal/analysis"
	"tick-backtest/internal/backtest"
	"tick-backtest/internal/config"
	"tick-backtest/internal/logging"
	"tick-backtest/internal/runner"
)

func NewBacktestCommand() *cobra.Command {
	var (
		cfgPath  string
		dataPath string
		format   string
		outPath  string
		limit    int
	)

	command := &cobra.Command{
		Use:   "backtest",
		Short: "Run one backtest and write its ledger as CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.NewLogger().Named("backtest")
			defer func() { _ = logger.Sync() }()

			cfg, err := config.LoadUnchecked(cfgPath)
			if err != nil {
				return err
			}
			if dataPath != "" {
				cfg.Data = config.DataConfig{Path: dataPath, Format: format}
			}
			if limit > 0 {
				cfg.Data.Limit = limit
			}
			cfg.ApplyDefaults()
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()
			ctx = logging.WithLogger(ctx, logger)

			r, err := runner.New(logger)
			if err != nil {
				return err
			}
			res, feed, err := r.RunConfig(ctx, cfg)
			if err != nil {
				logger.Errorw("Backtest failed", zap.Error(err))
				return err
			}
			if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
				return err
			}
			if err := backtest.WriteLedgerCSV(outPath, res.Ledger); err != nil {
				return err
			}

			perf := analysis.ComputePerformance(res, feed.Bars)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote %d rows to %s\n", len(res.Ledger), outPath)
			fmt.Fprintf(out, "Strategy=%s Fills=%d Total PnL=$%.2f Return=%.2f%% Sharpe=%.2f MaxDD=%.2f%%\n",
				perf.Strategy, perf.Fills, perf.TotalPNL, perf.TotalReturn*100, perf.Sharpe, perf.MaxDrawdown*100)
			return nil
		},
	}
	command.Flags().StringVar(&cfgPath, "config", "", "Path to YAML config")
	command.Flags().StringVar(&dataPath, "data", "", "Feed path, overriding data in the config")
	command.Flags().StringVar(&format, "format", "json", "Feed format for --data (json or csv)")
	command.Flags().StringVar(&outPath, "out", "results/ledger.csv", "Output CSV path")
	command.Flags().IntVarP(&limit, "n", "n", 0, "Limit to the first N snapshots (0=all)")
	_ = command.MarkFlagRequired("config")
	return command
}
