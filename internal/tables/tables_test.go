package tables

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"casegen/internal/catalog"
	"casegen/internal/config"
	"casegen/internal/sheet"
	"casegen/internal/topology"
)

func table(name string, rows ...[]string) *sheet.Table {
	return &sheet.Table{Name: name, Rows: rows}
}

func TestNormalizeProfiles(t *testing.T) {
	sentinels := []string{"Sinks", "Wells"}

	t.Run("header after metadata rows", func(t *testing.T) {
		tbl := table("Profiles",
			[]string{"Field A flow forecast"},
			[]string{""},
			[]string{"Wells", "P2030", "P2035", ""},
			[]string{"Sk-1", "10", "8.5"},
			[]string{"Sk-2", "0.0001", ""},
			[]string{"", "99", "99"},
		)

		profiles, err := NormalizeProfiles(tbl, sentinels, "_")
		require.NoError(t, err)
		require.Len(t, profiles, 2)

		assert.Equal(t, "P2030", profiles[0].Name)
		assert.Equal(t, []string{"Sk-1", "Sk-2"}, profiles[0].Sinks())
		flow, ok := profiles[0].Flow("Sk-2")
		require.True(t, ok)
		assert.Equal(t, 0.0001, flow)

		assert.Equal(t, "P2035", profiles[1].Name)
		_, ok = profiles[1].Flow("Sk-2")
		assert.False(t, ok, "blank cell is not a zero flow")
		assert.Equal(t, []string{"Sk-1"}, profiles[1].Sinks())
	})

	t.Run("zero flow is kept", func(t *testing.T) {
		tbl := table("Profiles", []string{"Sinks", "Shut"}, []string{"Sk-1", "0"})
		profiles, err := NormalizeProfiles(tbl, sentinels, "_")
		require.NoError(t, err)
		flow, ok := profiles[0].Flow("Sk-1")
		require.True(t, ok)
		assert.Equal(t, 0.0, flow)
	})

	tests := []struct {
		name   string
		tbl    *sheet.Table
		target error
		row    int
		column int
	}{
		{
			name:   "no header row",
			tbl:    table("Profiles", []string{"Name", "P1"}, []string{"Sk-1", "1"}),
			target: ErrHeaderNotFound,
		},
		{
			name:   "separator in profile name",
			tbl:    table("Profiles", []string{"Sinks", "High_Rate"}, []string{"Sk-1", "1"}),
			target: ErrInvalidColumnName,
			row:    1,
			column: 2,
		},
		{
			name:   "non-numeric flow",
			tbl:    table("Profiles", []string{"Sinks", "P1"}, []string{"Sk-1", "1"}, []string{"Sk-2", "lots"}),
			target: ErrInvalidValue,
			row:    3,
			column: 2,
		},
		{
			name:   "unnamed column with data",
			tbl:    table("Profiles", []string{"Sinks", "P1", ""}, []string{"Sk-1", "1", "2"}),
			target: ErrInvalidColumnName,
			row:    1,
			column: 3,
		},
		{
			name:   "sink listed twice",
			tbl:    table("Profiles", []string{"Sinks", "P1"}, []string{"Sk-1", "1"}, []string{"Sk-1", "2"}),
			target: ErrDuplicateEntry,
			row:    3,
			column: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NormalizeProfiles(tt.tbl, sentinels, "_")
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.target), "got %v", err)

			var formatErr *InputFormatError
			require.True(t, errors.As(err, &formatErr))
			assert.Equal(t, "Profiles", formatErr.Sheet)
			assert.Equal(t, tt.row, formatErr.Row)
			assert.Equal(t, tt.column, formatErr.Column)
		})
	}
}

func conditionTable(rows ...[]string) *sheet.Table {
	header := []string{"Conditions", "Component Name", "Component Type", "Parameter", "Value"}
	return table("Conditions", append([][]string{{"Scenario register v3"}, header}, rows...)...)
}

func TestNormalizeConditions(t *testing.T) {
	sentinels := []string{"Conditions"}

	t.Run("rows merge by condition name", func(t *testing.T) {
		tbl := conditionTable(
			[]string{"S-HP", "Src-1", "Source", "Pressure", "100"},
			[]string{"S-LP", "Src-1", "Source", "Pressure", "40"},
			[]string{"S-HP", "", "SimulationSetting", "AmbientTemperature", "25"},
			[]string{"", "Src-1", "Source", "Pressure", "1"},
			[]string{"S-HP", "P-101", "pump", "PressureDifferential", "12.5"},
		)

		conditions, err := NormalizeConditions(tbl, sentinels, "_", nil)
		require.NoError(t, err)
		require.Len(t, conditions, 2)

		hp := conditions[0]
		assert.Equal(t, "S-HP", hp.Name)
		require.Len(t, hp.Entries, 3)
		assert.Equal(t, ConditionEntry{
			ConditionName: "S-HP",
			ComponentName: "Src-1",
			ComponentType: catalog.Source,
			Parameter:     "Pressure",
			Value:         topology.Number(100),
			Row:           3,
		}, hp.Entries[0])
		assert.True(t, hp.Entries[1].IsSetting())
		assert.Equal(t, catalog.SimulationSetting, hp.Entries[1].ComponentType)
		assert.Equal(t, catalog.Pump, hp.Entries[2].ComponentType)

		assert.Equal(t, "S-LP", conditions[1].Name)
	})

	t.Run("header columns matched case-insensitively in any order", func(t *testing.T) {
		tbl := table("Conditions",
			[]string{"Conditions", "value", "PARAMETER", "component type", "component name"},
			[]string{"C1", "3", "Speed", "Pump", "P-101"},
		)
		conditions, err := NormalizeConditions(tbl, sentinels, "_", nil)
		require.NoError(t, err)
		entry := conditions[0].Entries[0]
		assert.Equal(t, "P-101", entry.ComponentName)
		assert.Equal(t, "Speed", entry.Parameter)
		assert.Equal(t, topology.Number(3), entry.Value)
	})

	tests := []struct {
		name   string
		tbl    *sheet.Table
		target error
	}{
		{
			name:   "missing mandatory column",
			tbl:    table("Conditions", []string{"Conditions", "Component Name", "Parameter", "Value"}),
			target: ErrMissingColumn,
		},
		{
			name:   "header not found",
			tbl:    table("Conditions", []string{"Case", "Component Name"}),
			target: ErrHeaderNotFound,
		},
		{
			name:   "separator in condition name",
			tbl:    conditionTable([]string{"S_HP", "Src-1", "Source", "Pressure", "100"}),
			target: ErrInvalidColumnName,
		},
		{
			name:   "unknown component type",
			tbl:    conditionTable([]string{"S-HP", "V-1", "Valve", "Opening", "1"}),
			target: ErrUnknownComponentType,
		},
		{
			name:   "non-numeric value",
			tbl:    conditionTable([]string{"S-HP", "Src-1", "Source", "Pressure", "high"}),
			target: ErrInvalidValue,
		},
		{
			name:   "blank value",
			tbl:    conditionTable([]string{"S-HP", "Src-1", "Source", "Pressure", ""}),
			target: ErrInvalidValue,
		},
		{
			name:   "blank component name on a physical type",
			tbl:    conditionTable([]string{"S-HP", "", "Pump", "Speed", "1"}),
			target: ErrInvalidValue,
		},
		{
			name:   "named whole-model setting",
			tbl:    conditionTable([]string{"S-HP", "Src-1", "SimulationSetting", "AmbientTemperature", "1"}),
			target: ErrInvalidValue,
		},
		{
			name:   "blank parameter",
			tbl:    conditionTable([]string{"S-HP", "Src-1", "Source", "", "1"}),
			target: ErrInvalidValue,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NormalizeConditions(tt.tbl, sentinels, "_", nil)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.target), "got %v", err)
		})
	}
}

func TestNormalizeConditionsWithSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "parameters.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`version: 1
component_types:
  - name: Sink
    parameters:
      - { name: FlowRate, type: number }
      - { name: FlowRateType, type: enum, values: [LiquidFlowRate, GasFlowRate] }
  - name: SimulationSetting
    parameters:
      - { name: FlowCorrelation, type: string }
      - { name: AmbientTemperature, type: number }
`), 0o600))
	schema, err := config.LoadSchema(path)
	require.NoError(t, err)

	t.Run("typed values", func(t *testing.T) {
		tbl := conditionTable(
			[]string{"Gas", "Sk-1", "Sink", "flowratetype", "GasFlowRate"},
			[]string{"Gas", "", "SimulationSetting", "FlowCorrelation", "Beggs-Brill"},
			[]string{"Gas", "Src-1", "Source", "Pressure", "80"},
		)
		conditions, err := NormalizeConditions(tbl, []string{"Conditions"}, "_", schema)
		require.NoError(t, err)
		entries := conditions[0].Entries
		assert.Equal(t, "FlowRateType", entries[0].Parameter, "declared spelling wins")
		assert.Equal(t, topology.Text("GasFlowRate"), entries[0].Value)
		assert.Equal(t, topology.Text("Beggs-Brill"), entries[1].Value)
		assert.Equal(t, topology.Number(80), entries[2].Value, "undeclared type stays numeric")
	})

	t.Run("value outside enum", func(t *testing.T) {
		tbl := conditionTable([]string{"Gas", "Sk-1", "Sink", "FlowRateType", "VolumeFlowRate"})
		_, err := NormalizeConditions(tbl, []string{"Conditions"}, "_", schema)
		assert.ErrorIs(t, err, ErrInvalidValue)
	})

	t.Run("undeclared parameter", func(t *testing.T) {
		tbl := conditionTable([]string{"Gas", "Sk-1", "Sink", "Watercut", "0.3"})
		_, err := NormalizeConditions(tbl, []string{"Conditions"}, "_", schema)
		assert.ErrorIs(t, err, ErrUnknownParameter)
	})
}

func TestNormalizeCatalogSheet(t *testing.T) {
	t.Run("column pairs become sections", func(t *testing.T) {
		tbl := table("Components",
			[]string{"Name", "Type", "Name", "Type", "Notes"},
			[]string{"Src-1", "Source", "Src-2", "Source", "x"},
			[]string{"FL-1", "Flowline", "P-101", "Pump"},
			[]string{"Sk-1", "Sink", "", ""},
		)
		result, err := NormalizeCatalogSheet(tbl)
		require.NoError(t, err)
		assert.True(t, result.DroppedColumn)
		require.Len(t, result.Sections, 2)
		assert.Equal(t, []catalog.Component{
			{Name: "Src-1", Type: catalog.Source},
			{Name: "FL-1", Type: catalog.Flowline},
			{Name: "Sk-1", Type: catalog.Sink},
		}, result.Sections[0])
		assert.Len(t, result.Sections[1], 2)
	})

	t.Run("unknown type", func(t *testing.T) {
		tbl := table("Components", []string{"Name", "Type"}, []string{"V-1", "Valve"})
		_, err := NormalizeCatalogSheet(tbl)
		assert.ErrorIs(t, err, ErrUnknownComponentType)
	})

	t.Run("settings are not components", func(t *testing.T) {
		tbl := table("Components", []string{"Name", "Type"}, []string{"Ambient", "SimulationSetting"})
		_, err := NormalizeCatalogSheet(tbl)
		assert.ErrorIs(t, err, ErrUnknownComponentType)
	})

	t.Run("type without name", func(t *testing.T) {
		tbl := table("Components", []string{"Name", "Type"}, []string{"", "Sink"})
		_, err := NormalizeCatalogSheet(tbl)
		assert.ErrorIs(t, err, ErrInvalidValue)
	})
}
