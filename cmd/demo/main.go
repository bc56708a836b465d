package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"tick-backtest/internal/backtest"
	"tick-backtest/internal/batch"
	"tick-backtest/internal/data"
	"tick-backtest/internal/indicator"
	"tick-backtest/internal/model"
	"tick-backtest/internal/strategy"
)

// Demo:
//   - Generate a small synthetic feed
//   - Drive a batch transform by hand to show warm-up and refresh
//   - Run a moving average crossover and print the ledger
func main() {
	n := flag.Int("n", 30, "Number of snapshots to simulate")
	seed := flag.Int64("seed", 42, "Random seed for the synthetic feed")
	window := flag.Int("window", 5, "Window length of the demo transform")
	outCSV := flag.String("out", "", "Optional path to write ledger CSV (e.g. results/ledger.csv)")
	flag.Parse()

	feed, err := data.Generate(data.SyntheticParams{Assets: 2, Ticks: *n, Seed: *seed})
	if err != nil {
		panic(err)
	}

	cfg := batch.DefaultConfig()
	cfg.Name = "demo_mavg"
	cfg.WindowLength = *window
	cfg.RefreshPeriod = 2
	mavg, err := batch.New[indicator.Values](cfg, indicator.MovingAverage(model.FieldPrice))
	if err != nil {
		panic(err)
	}

	fmt.Printf("%-4s %-10s %-8s %-10s %-10s\n", "tick", "date", "state", "mavg[0]", "mavg[1]")
	for i, snap := range feed.Snapshots {
		if i >= 10 {
			break
		}
		vals, ok, err := mavg.HandleData(snap, batch.NoArgs)
		if err != nil {
			panic(err)
		}
		if !ok {
			fmt.Printf("%-4d %-10s %-8s %-10s %-10s\n", i, snap.Dt.Format("2006-01-02"), mavg.State(), "-", "-")
			continue
		}
		a0, _ := vals.Get(0)
		a1, _ := vals.Get(1)
		fmt.Printf("%-4d %-10s %-8s %-10.4f %-10.4f\n", i, snap.Dt.Format("2006-01-02"), mavg.State(), a0, a1)
	}
	fmt.Println()

	strat := &strategy.MavgCrossover{
		Params: strategy.MavgParams{ShortWindow: 3, LongWindow: *window, Percent: 0.4},
		Base:   batch.DefaultConfig(),
	}
	engine := backtest.New(backtest.Options{StartingCash: 100000})
	res, err := engine.Run(context.Background(), feed.Snapshots, strat)
	if err != nil {
		panic(err)
	}

	fmt.Printf("%-4s %-10s %-12s %-12s %-6s %-6s %-10s\n", "idx", "date", "cash", "value", "fills", "action", "cum_pnl")
	for _, row := range res.Ledger {
		fmt.Printf("%-4d %-10s %-12.2f %-12.2f %-6d %-6s %-10.2f\n",
			row.Index, row.Dt.Format("2006-01-02"), row.Cash, row.PortfolioValue, row.Fills, row.Action, row.CumPNL)
	}
	fmt.Printf("\nTotal PnL=$%.2f over %d fills\n", res.TotalPNL, len(res.Transactions))

	if *outCSV != "" {
		if err := backtest.WriteLedgerCSV(*outCSV, res.Ledger); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Printf("Wrote ledger to %s\n", *outCSV)
	}
}
