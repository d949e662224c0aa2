package main

import "github.com/spf13/cobra"

func reportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Inspect recorded generation runs",
	}
	cmd.AddCommand(reportRunsCmd())
	cmd.AddCommand(reportCasesCmd())
	cmd.AddCommand(reportSQLCmd())
	cmd.AddCommand(reportPruneCmd())
	return cmd
}
