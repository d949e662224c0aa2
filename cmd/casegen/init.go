package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

const parametersTemplate = `version: 1
component_types:
  - name: Source
    parameters:
      - { name: Pressure, type: number }
      - { name: Temperature, type: number }
  - name: Pump
    parameters:
      - { name: PressureDifferential, type: number }
  - name: Sink
    parameters:
      - { name: FlowRate, type: number }
      - { name: FlowRateType, type: enum, values: [FlowRate, LiquidFlowRate, GasFlowRate, MassFlowRate] }
  - name: SimulationSetting
    parameters:
      - { name: AmbientTemperature, type: number }
      - { name: FlowCorrelation, type: string }
`

func initCmd() *cobra.Command {
	var projectName string
	var workbook string
	var baseModel string
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Scaffold a new casegen project",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(projectName) == "" {
				return fmt.Errorf("--name is required")
			}
			return runInit(projectName, workbook, baseModel)
		},
	}
	cmd.Flags().StringVar(&projectName, "name", "", "Project name")
	cmd.Flags().StringVar(&workbook, "workbook", "inputs/cases.xlsx", "Workbook holding the profile and condition sheets")
	cmd.Flags().StringVar(&baseModel, "base-model", "models/base.yaml", "Base network model")
	return cmd
}

func runInit(projectName, workbook, baseModel string) error {
	schemaPath := filepath.Join(filepath.Dir(configPath), "parameters.yaml")
	for _, path := range []string{configPath, schemaPath} {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists", path)
		}
	}

	configContents := fmt.Sprintf(`project: %s
version: 1
base_model: %s
workbook: %s
sheets:
  profiles: Sink Profiles
  conditions: Conditions
  catalog: Components
output:
  dir: Models
  extension: yaml
  separator: "_"
activation:
  flow_parameter: FlowRate
  threshold: 0.001
workers: 4
schema: parameters.yaml
ledger:
  dsn: sqlite://casegen.db
log:
  level: info
  format: text
`, projectName, baseModel, workbook)
	if err := os.WriteFile(configPath, []byte(configContents), 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", configPath, err)
	}
	if err := os.WriteFile(schemaPath, []byte(parametersTemplate), 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", schemaPath, err)
	}

	fmt.Fprintf(os.Stdout, "Wrote %s and %s.\n", configPath, schemaPath)
	return nil
}
