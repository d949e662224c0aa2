package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func reportPruneCmd() *cobra.Command {
	var keep int
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete all but the most recent runs from the ledger",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReportPrune(keep)
		},
	}
	cmd.Flags().IntVar(&keep, "keep", 50, "Number of recent runs to keep")
	return cmd
}

func runReportPrune(keep int) error {
	ctx := context.Background()

	p, err := loadProject()
	if err != nil {
		return err
	}

	ledger, err := requireLedger(ctx, p.cfg)
	if err != nil {
		return err
	}
	defer ledger.Close(ctx)

	removed, err := ledger.PruneRuns(ctx, keep)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "Removed %d runs.\n", removed)
	return nil
}
