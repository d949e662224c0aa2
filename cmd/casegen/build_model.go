package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"casegen/internal/generate"
	"casegen/internal/materialize"
)

func buildModelCmd() *cobra.Command {
	var output string
	var name string
	var force bool
	cmd := &cobra.Command{
		Use:   "build-model",
		Short: "Lay out a base model from the workbook's component catalog sheet",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuildModel(output, name, force)
		},
	}
	cmd.Flags().StringVar(&output, "output", "", "Model file to write (default: base_model from config)")
	cmd.Flags().StringVar(&name, "name", "", "Model name (default: output file stem)")
	cmd.Flags().BoolVar(&force, "force", false, "Replace an existing model file")
	return cmd
}

func runBuildModel(output, name string, force bool) error {
	p, err := loadProject()
	if err != nil {
		return err
	}

	model, listing, err := generate.BuildModel(p.cfg, name)
	if err != nil {
		return err
	}

	path := p.cfg.BaseModelPath()
	if output != "" {
		path = output
	}
	if err := materialize.WriteModel(model, path, force); err != nil {
		return err
	}

	if listing.DroppedColumn {
		fmt.Fprintln(os.Stderr, "warning: the catalog sheet has an odd number of columns; the last one was ignored")
	}
	fmt.Fprintf(os.Stdout, "Wrote %s: %d sections, %d components, %d connections.\n",
		path, len(listing.Sections), len(model.Components), len(model.Connections))
	return nil
}
