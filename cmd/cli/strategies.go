package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"tick-backtest/internal/strategy"
)

func NewStrategiesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "strategies",
		Short: "List available strategies and their parameters",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, info := range strategy.Infos() {
				fmt.Fprintf(out, "%s\n  %s\n", info.Name, info.Description)
				for _, p := range info.Parameters {
					fmt.Fprintf(out, "    %-14s %-6s %v  %s\n", p.Name, p.Type, p.Default, p.Description)
				}
			}
			return nil
		},
	}
}
