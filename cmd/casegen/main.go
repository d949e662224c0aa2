package main

import (
	"os"

	"github.com/spf13/cobra"
)

var configPath string

func main() {
	root := &cobra.Command{
		Use:   "casegen",
		Short: "Generate one hydraulic model per flow profile and operating condition",
	}
	root.Version = version
	root.SetVersionTemplate("{{.Version}}\n")
	root.PersistentFlags().StringVar(&configPath, "config", "casegen.yaml", "Project config file")
	root.AddCommand(initCmd())
	root.AddCommand(checkCmd())
	root.AddCommand(planCmd())
	root.AddCommand(generateCmd())
	root.AddCommand(buildModelCmd())
	root.AddCommand(exportCmd())
	root.AddCommand(importCmd())
	root.AddCommand(copyFlowlinesCmd())
	root.AddCommand(reportCmd())
	root.AddCommand(serveCmd())
	root.AddCommand(versionCmd())
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
