package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"casegen/internal/store"
)

func reportRunsCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recent runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReportRuns(limit)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of runs")
	return cmd
}

func runReportRuns(limit int) error {
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

	runs, err := ledger.ListRuns(ctx, limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(os.Stdout, "No runs recorded.")
		return nil
	}

	for _, run := range runs {
		fmt.Fprintf(os.Stdout, "%s  %s  %s  %d/%d succeeded, %d failed, %d skipped, %d not run\n",
			run.ID,
			run.StartedAt.Local().Format(time.DateTime),
			runStatus(run.Status),
			run.Succeeded, run.Total, run.Failed, run.Skipped, run.NotRun)
		if run.Error != "" {
			fmt.Fprintf(os.Stdout, "    %s\n", run.Error)
		}
	}
	return nil
}

func runStatus(status string) string {
	switch status {
	case store.RunCompleted:
		return color.GreenString("%-9s", status)
	case store.RunAborted:
		return color.YellowString("%-9s", status)
	case store.RunFailed:
		return color.RedString("%-9s", status)
	}
	return fmt.Sprintf("%-9s", status)
}
