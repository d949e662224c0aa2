package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"casegen/internal/generate"
	"casegen/internal/logging"
)

func generateCmd() *cobra.Command {
	var opts generate.Options
	var strict bool
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write one model per profile and condition",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(opts, strict)
		},
	}
	cmd.Flags().BoolVar(&opts.Resume, "resume", false, "Skip cases whose artifact already exists")
	cmd.Flags().BoolVar(&opts.Overwrite, "overwrite", false, "Replace existing artifacts")
	cmd.Flags().IntVar(&opts.Workers, "workers", 0, "Concurrent cases (default from config)")
	cmd.Flags().BoolVar(&strict, "strict", false, "Exit non-zero when any case fails")
	return cmd
}

func runGenerate(opts generate.Options, strict bool) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p, err := loadProject()
	if err != nil {
		return err
	}

	ledger, err := openLedger(ctx, p.cfg)
	if err != nil {
		return err
	}
	if ledger != nil {
		defer ledger.Close(context.WithoutCancel(ctx))
	}

	plan, err := generate.LoadPlan(p.cfg, p.schema)
	if err != nil {
		p.log.Error(ctx, "run aborted before any case", logging.String("scope", generate.Classify(err).String()), logging.Err(err))
		if ledger != nil {
			if _, recErr := generate.RecordFailure(context.WithoutCancel(ctx), p.cfg, ledger, err); recErr != nil {
				p.log.Warn(ctx, "recording failed run", logging.Err(recErr))
			}
		}
		return err
	}

	opts.Logger = p.log
	if p.cfg.MetricsFile != "" {
		opts.Metrics = generate.NewMetrics()
	}
	result, err := generate.Run(ctx, p.cfg, plan, ledger, opts)
	return finishGenerate(result, err, strict)
}

func finishGenerate(result *generate.Result, err error, strict bool) error {
	if err != nil {
		return err
	}
	printResult(os.Stdout, result)

	failed := result.Count(generate.StatusFailed)
	switch {
	case result.Aborted:
		return fmt.Errorf("run %s aborted", result.RunID)
	case strict && failed > 0:
		return fmt.Errorf("%d cases failed", failed)
	}
	return nil
}

func printResult(out io.Writer, result *generate.Result) {
	statusColor := map[generate.Status]*color.Color{
		generate.StatusSucceeded: color.New(color.FgGreen),
		generate.StatusFailed:    color.New(color.FgRed),
		generate.StatusSkipped:   color.New(color.FgCyan),
		generate.StatusNotRun:    color.New(color.FgYellow),
	}

	for _, rec := range result.Records {
		label := statusColor[rec.Status].Sprintf("%-9s", rec.Status)
		if rec.Err != nil {
			fmt.Fprintf(out, "%s %s: %v\n", label, rec.Name, rec.Err)
			continue
		}
		fmt.Fprintf(out, "%s %s\n", label, rec.Name)
	}

	fmt.Fprintf(out, "\nRun %s\n", result.RunID)
	fmt.Fprintf(out, "  Succeeded: %d\n", result.Count(generate.StatusSucceeded))
	fmt.Fprintf(out, "  Failed:    %d\n", result.Count(generate.StatusFailed))
	fmt.Fprintf(out, "  Skipped:   %d\n", result.Count(generate.StatusSkipped))
	fmt.Fprintf(out, "  Not run:   %d\n", result.Count(generate.StatusNotRun))
	if len(result.LedgerErrors) > 0 {
		fmt.Fprintf(out, "  Ledger errors: %d (first: %v)\n", len(result.LedgerErrors), result.LedgerErrors[0])
	}
}
