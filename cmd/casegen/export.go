package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"casegen/internal/logging"
	"casegen/internal/populate"
	"casegen/internal/topology"
)

func exportCmd() *cobra.Command {
	var modelPath string
	var force bool
	cmd := &cobra.Command{
		Use:   "export <workbook.xlsx|dir>",
		Short: "Write the model's component values to one sheet per component type",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd.Context(), modelPath, args[0], force)
		},
	}
	cmd.Flags().StringVar(&modelPath, "model", "", "Model to export (default: base_model from config)")
	cmd.Flags().BoolVar(&force, "force", false, "Replace existing export files")
	return cmd
}

func runExport(ctx context.Context, modelPath, output string, force bool) error {
	p, err := loadProject()
	if err != nil {
		return err
	}
	if modelPath == "" {
		modelPath = p.cfg.BaseModelPath()
	}
	m, err := topology.Load(modelPath)
	if err != nil {
		return err
	}

	sheets, err := populate.Export(m, output, force)
	if err != nil {
		return err
	}
	for _, s := range sheets {
		p.log.Debug(ctx, "exported sheet",
			logging.String("sheet", string(s.Type)),
			logging.Int("components", len(s.Rows)),
			logging.Int("parameters", len(s.Parameters)))
	}
	fmt.Fprintf(os.Stdout, "Exported %s to %s: %d sheets.\n", m.Name, output, len(sheets))
	return nil
}
