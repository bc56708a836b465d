package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"tick-backtest/internal/analysis"
	"tick-backtest/internal/data"
)

func NewRankCommand() *cobra.Command {
	var dataPaths string

	command := &cobra.Command{
		Use:   "rank",
		Short: "Rank assets by oracle profit",
		Long:  "Rank every asset in one or more feeds by the profit of a one-share perfect-foresight trader.",
		RunE: func(cmd *cobra.Command, args []string) error {
			paths, err := expandPaths(splitPaths(dataPaths))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, p := range paths {
				feed, err := data.LoadFeed(p, formatOf(p))
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%s (%d snapshots)\n", feed.Name, len(feed.Snapshots))
				printRanking(out, analysis.RankByOracleProfit(feed.Snapshots))
			}
			return nil
		},
	}
	command.Flags().StringVar(&dataPaths, "data", data.DefaultFeedsDir(), "Comma-separated feed paths or directories")
	return command
}

func printRanking(w io.Writer, ranked []analysis.AssetPotential) {
	fmt.Fprintf(w, "%-4s %-8s %-8s %-10s %-17s %-12s\n", "rank", "asset", "count", "p95-p05", "min/max", "oracle$")
	for i, r := range ranked {
		fmt.Fprintf(w, "%-4d %-8d %-8d %-10.2f %-8.2f/%-8.2f %-12.2f\n",
			i+1, r.Asset, r.Count, r.SpreadP95P05, r.MinPrice, r.MaxPrice, r.OracleProfit)
	}
}

// expandPaths replaces directories with the feed files directly inside them.
func expandPaths(paths []string) ([]string, error) {
	var out []string
	var errs error
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		if !info.IsDir() {
			out = append(out, p)
			continue
		}
		entries, err := os.ReadDir(p)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			if f := formatOf(e.Name()); f == "json" || f == "csv" {
				out = append(out, filepath.Join(p, e.Name()))
			}
		}
	}
	return out, errs
}

func formatOf(path string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
}

func splitPaths(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
