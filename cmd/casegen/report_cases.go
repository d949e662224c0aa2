package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func reportCasesCmd() *cobra.Command {
	var status string
	cmd := &cobra.Command{
		Use:   "cases <run-id>",
		Short: "List the case outcomes of a run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReportCases(args[0], status)
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "Only cases with this status (succeeded, failed, skipped, not_run)")
	return cmd
}

func runReportCases(runID, status string) error {
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

	run, err := ledger.GetRun(ctx, runID)
	if err != nil {
		return err
	}
	records, err := ledger.ListCases(ctx, runID, status)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "Run %s (%s): %s\n\n", run.ID, run.Project, runStatus(run.Status))
	if len(records) == 0 {
		fmt.Fprintln(os.Stdout, "No cases found.")
		return nil
	}
	for _, rec := range records {
		fmt.Fprintf(os.Stdout, "%4d  %-9s %s", rec.Index+1, rec.Status, rec.Name)
		if len(rec.InactiveSinks) > 0 {
			fmt.Fprintf(os.Stdout, "  inactive: %s", strings.Join(rec.InactiveSinks, ", "))
		}
		fmt.Fprintln(os.Stdout)
		if rec.Error != "" {
			fmt.Fprintf(os.Stdout, "      %s\n", rec.Error)
		}
	}
	return nil
}
