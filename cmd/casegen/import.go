package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"casegen/internal/logging"
	"casegen/internal/materialize"
	"casegen/internal/populate"
	"casegen/internal/sheet"
	"casegen/internal/topology"
)

func importCmd() *cobra.Command {
	var modelPath, sheetName, output string
	cmd := &cobra.Command{
		Use:   "import <workbook>",
		Short: "Apply component values from a workbook to the model",
		Long: "Without --sheet, every sheet named after a component type is applied in the layout\n" +
			"export writes. With --sheet, that one sheet is read by its Name and Component columns\n" +
			"and only parameters the components already carry are set.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd.Context(), modelPath, args[0], sheetName, output)
		},
	}
	cmd.Flags().StringVar(&modelPath, "model", "", "Model to update (default: base_model from config)")
	cmd.Flags().StringVar(&sheetName, "sheet", "", "Import a single Name/Component sheet")
	cmd.Flags().StringVar(&output, "output", "", "Write the updated model here instead of replacing --model")
	return cmd
}

func runImport(ctx context.Context, modelPath, workbook, sheetName, output string) error {
	p, err := loadProject()
	if err != nil {
		return err
	}
	if modelPath == "" {
		modelPath = p.cfg.BaseModelPath()
	}
	if output == "" {
		output = modelPath
	}
	base, err := topology.Load(modelPath)
	if err != nil {
		return err
	}

	wb, err := sheet.Open(workbook)
	if err != nil {
		return err
	}
	defer wb.Close()

	var (
		updated *topology.Model
		report  *populate.Report
	)
	if sheetName != "" {
		t, err := wb.Sheet(sheetName)
		if err != nil {
			return err
		}
		updated, report, err = populate.SimpleImport(base, t, p.schema)
		if err != nil {
			return err
		}
	} else {
		updated, report, err = populate.BulkImport(base, wb, p.schema)
		if err != nil {
			return err
		}
	}

	if err := materialize.WriteModel(updated, output, true); err != nil {
		return err
	}
	printSkips(os.Stderr, report.Skipped)
	p.log.Info(ctx, "import finished",
		logging.String("model", output),
		logging.Int("updated", report.Updated),
		logging.Int("skipped", len(report.Skipped)))
	fmt.Fprintf(os.Stdout, "Updated %d values in %s.\n", report.Updated, output)
	return nil
}

func printSkips(w io.Writer, skipped []populate.Skip) {
	for _, s := range skipped {
		switch {
		case s.Component == "":
			fmt.Fprintf(w, "skipped sheet %s: %s\n", s.Sheet, s.Reason)
		default:
			fmt.Fprintf(w, "skipped %s (sheet %s row %d): %s\n", s.Component, s.Sheet, s.Row, s.Reason)
		}
	}
}
