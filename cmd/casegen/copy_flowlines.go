package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"casegen/internal/logging"
	"casegen/internal/materialize"
	"casegen/internal/populate"
	"casegen/internal/topology"
)

func copyFlowlinesCmd() *cobra.Command {
	var from string
	cmd := &cobra.Command{
		Use:   "copy-flowlines <dir>",
		Short: "Copy flowline values from one model into every model in a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCopyFlowlines(cmd.Context(), from, args[0])
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "Source model (default: base_model from config)")
	return cmd
}

func runCopyFlowlines(ctx context.Context, from, dir string) error {
	p, err := loadProject()
	if err != nil {
		return err
	}
	if from == "" {
		from = p.cfg.BaseModelPath()
	}
	src, err := topology.Load(from)
	if err != nil {
		return err
	}

	targets, err := modelFiles(dir, from)
	if err != nil {
		return err
	}
	if len(targets) == 0 {
		return fmt.Errorf("no models found in %s", dir)
	}

	for i, path := range targets {
		if err := ctx.Err(); err != nil {
			return err
		}
		dst, err := topology.Load(path)
		if err != nil {
			return err
		}
		copied, err := populate.CopyFlowlines(src, dst)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		if err := materialize.WriteModel(dst, path, true); err != nil {
			return err
		}
		log := p.log.With(logging.String("model", filepath.Base(path)))
		if len(copied.Missing) > 0 {
			log.Warn(ctx, "flowlines missing from model", logging.Any("flowlines", copied.Missing))
		}
		log.Info(ctx, "flowlines copied",
			logging.Int("copied", len(copied.Copied)),
			logging.Int("done", i+1),
			logging.Int("total", len(targets)))
	}
	fmt.Fprintf(os.Stdout, "Copied flowlines from %s into %d models.\n", filepath.Base(from), len(targets))
	return nil
}

// modelFiles lists the model documents in dir, leaving out exclude.
func modelFiles(dir, exclude string) ([]string, error) {
	var out []string
	skip, _ := filepath.Abs(exclude)
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, err
		}
		for _, match := range matches {
			if abs, _ := filepath.Abs(match); abs == skip {
				continue
			}
			out = append(out, match)
		}
	}
	return out, nil
}
