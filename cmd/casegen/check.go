package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"casegen/internal/check"
)

func checkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Resolve every case without writing and report problems",
		RunE:  runCheck,
	}
	return cmd
}

func runCheck(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	p, err := loadProject()
	if err != nil {
		return err
	}

	report, err := check.Run(ctx, p.cfg, p.schema)
	if err != nil {
		return err
	}

	var errorIssues []check.Issue
	var warnIssues []check.Issue
	for _, issue := range report.Issues {
		switch issue.Severity {
		case check.SeverityError:
			errorIssues = append(errorIssues, issue)
		case check.SeverityWarn:
			warnIssues = append(warnIssues, issue)
		}
	}

	if len(errorIssues) == 0 && len(warnIssues) == 0 {
		fmt.Fprintf(os.Stdout, "%d cases, no issues found.\n", report.Cases)
		return nil
	}

	if len(errorIssues) > 0 {
		color.New(color.FgRed, color.Bold).Fprintf(os.Stdout, "Errors (%d):\n", len(errorIssues))
		printIssues(os.Stdout, errorIssues)
	}
	if len(warnIssues) > 0 {
		if len(errorIssues) > 0 {
			fmt.Fprintln(os.Stdout, "")
		}
		color.New(color.FgYellow, color.Bold).Fprintf(os.Stdout, "Warnings (%d):\n", len(warnIssues))
		printIssues(os.Stdout, warnIssues)
	}

	if len(errorIssues) > 0 {
		return fmt.Errorf("check found errors")
	}
	return nil
}

func printIssues(out io.Writer, issues []check.Issue) {
	for _, issue := range issues {
		location := issue.Case
		if issue.Component != "" {
			if location != "" {
				location = fmt.Sprintf("%s [%s]", location, issue.Component)
			} else {
				location = issue.Component
			}
		}
		if location == "" {
			fmt.Fprintf(out, "  - %s (%s)\n", issue.Message, issue.Code)
			continue
		}
		fmt.Fprintf(out, "  - %s: %s (%s)\n", location, issue.Message, issue.Code)
	}
}
