package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"casegen/internal/generate"
	"casegen/internal/materialize"
)

func planCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "List the cases the workbook expands to",
		RunE:  runPlan,
	}
	return cmd
}

func runPlan(cmd *cobra.Command, args []string) error {
	p, err := loadProject()
	if err != nil {
		return err
	}

	plan, err := generate.LoadPlan(p.cfg, p.schema)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "%d profiles x %d conditions = %d cases\n", len(plan.Profiles), len(plan.Conditions), len(plan.Cases))
	fmt.Fprintf(os.Stdout, "Output directory: %s\n\n", p.cfg.OutputDir())
	for _, c := range plan.Cases {
		marker := " "
		exists, err := materialize.Exists(p.cfg.OutputDir(), c.ArtifactName)
		if err != nil {
			return err
		}
		if exists {
			marker = "*"
		}
		fmt.Fprintf(os.Stdout, "%s %4d  %s\n", marker, c.Index+1, c.ArtifactName)
	}
	return nil
}
