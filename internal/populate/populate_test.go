package populate

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"casegen/internal/catalog"
	"casegen/internal/sheet"
	"casegen/internal/tables"
	"casegen/internal/topology"
)

func loadBase(t *testing.T) *topology.Model {
	t.Helper()
	base, err := topology.Load(filepath.Join("..", "topology", "testdata", "base.yaml"))
	require.NoError(t, err)
	return base
}

func writeSheets(t *testing.T, files map[string]string) sheet.Workbook {
	t.Helper()
	dir := t.TempDir()
	for name, contents := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name+".csv"), []byte(contents), 0o644))
	}
	wb, err := sheet.Open(dir)
	require.NoError(t, err)
	t.Cleanup(func() { wb.Close() })
	return wb
}

func TestSheets(t *testing.T) {
	base := loadBase(t)
	require.NoError(t, base.SetParameter("Sk-2", "FlowRateType", topology.Text("GasFlowRate")))

	sheets := Sheets(base)
	var types []catalog.ComponentType
	for _, s := range sheets {
		types = append(types, s.Type)
	}
	assert.Equal(t, []catalog.ComponentType{catalog.Source, catalog.Flowline, catalog.Pump, catalog.Junction, catalog.Sink}, types)

	sinks := sheets[len(sheets)-1]
	assert.Equal(t, []string{"FlowRate", "FlowRateType"}, sinks.Parameters)
	require.Len(t, sinks.Rows, 2)
	assert.Equal(t, "Sk-1", sinks.Rows[0].Name)
	assert.Nil(t, sinks.Rows[0].Values[1], "Sk-1 has no flow type")
	assert.Equal(t, topology.Text("GasFlowRate"), *sinks.Rows[1].Values[1])

	flowlines := sheets[1]
	assert.Empty(t, flowlines.Parameters)
	assert.Equal(t, "FL-1", flowlines.Rows[0].Name)
}

func TestExportThenBulkImport(t *testing.T) {
	tests := []struct {
		name string
		path func(dir string) string
	}{
		{name: "xlsx workbook", path: func(dir string) string { return filepath.Join(dir, "values.xlsx") }},
		{name: "csv directory", path: func(dir string) string { return filepath.Join(dir, "values") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base := loadBase(t)
			path := tt.path(t.TempDir())
			_, err := Export(base, path, false)
			require.NoError(t, err)

			_, err = Export(base, path, false)
			assert.Error(t, err, "existing export is not replaced")
			_, err = Export(base, path, true)
			require.NoError(t, err)

			wb, err := sheet.Open(path)
			require.NoError(t, err)
			defer wb.Close()
			assert.ElementsMatch(t, []string{"Source", "Flowline", "Pump", "Junction", "Sink"}, wb.SheetNames())

			edited := base.Clone()
			require.NoError(t, edited.SetParameter("Src-1", "Pressure", topology.Number(1)))
			restored, report, err := BulkImport(edited, wb, nil)
			require.NoError(t, err)
			assert.Equal(t, 4, report.Updated)
			assert.Empty(t, report.Skipped)

			pressure, _ := restored.Parameter("Src-1", "Pressure")
			assert.Equal(t, topology.Number(50), pressure)
			pressure, _ = edited.Parameter("Src-1", "Pressure")
			assert.Equal(t, topology.Number(1), pressure, "input model untouched")
		})
	}

	t.Run("unsupported extension", func(t *testing.T) {
		_, err := Export(loadBase(t), filepath.Join(t.TempDir(), "values.ods"), false)
		assert.Error(t, err)
	})
}

func TestBulkImport(t *testing.T) {
	base := loadBase(t)
	wb := writeSheets(t, map[string]string{
		"Sink": "Name,flowrate,FlowRateType\n" +
			"Sk-1,7,\n" +
			"Sk-2,,GasFlowRate\n" +
			"Sk-9,1,\n" +
			"Src-1,1,\n",
		"Notes": "anything\n",
	})

	m, report, err := BulkImport(base, wb, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Updated)

	flow, _ := m.Parameter("Sk-1", "FlowRate")
	assert.Equal(t, topology.Number(7), flow)
	_, lowered := m.Parameter("Sk-1", "flowrate")
	assert.False(t, lowered, "existing spelling reused")
	flowType, _ := m.Parameter("Sk-2", "FlowRateType")
	assert.Equal(t, topology.Text("GasFlowRate"), flowType)
	flow, _ = m.Parameter("Sk-2", "FlowRate")
	assert.Equal(t, topology.Number(1), flow, "blank cell leaves the value")

	skipped := make(map[string]string)
	for _, s := range report.Skipped {
		skipped[s.Sheet+"/"+s.Component] = s.Reason
	}
	assert.Equal(t, map[string]string{
		"Notes/":     "sheet is not named after a component type",
		"Sink/Sk-9":  "not in the model",
		"Sink/Src-1": "is a Source, not a Sink",
	}, skipped)
}

func TestSimpleImport(t *testing.T) {
	base := loadBase(t)
	table := &sheet.Table{Name: "Isometric", Rows: [][]string{
		{"Name", "Component", "Pressure", "Elevation", "PressureDifferential"},
		{"Src-1", "Source", "75", "10", ""},
		{"P-101", "pump", "", "", "12"},
		{"Sk-1", "Valve", "1", "", ""},
		{"Sk-9", "Sink", "", "", ""},
		{"", "", "", "", ""},
	}}

	m, report, err := SimpleImport(base, table, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Updated)

	pressure, _ := m.Parameter("Src-1", "Pressure")
	assert.Equal(t, topology.Number(75), pressure)
	_, added := m.Parameter("Src-1", "Elevation")
	assert.False(t, added, "only parameters the component carries are set")
	dp, _ := m.Parameter("P-101", "PressureDifferential")
	assert.Equal(t, topology.Number(12), dp)

	require.Len(t, report.Skipped, 2)
	assert.Equal(t, "Sk-1", report.Skipped[0].Component)
	assert.Equal(t, 4, report.Skipped[0].Row)
	assert.Contains(t, report.Skipped[0].Reason, "invalid component type")
	assert.Equal(t, "Sk-9", report.Skipped[1].Component)

	pressure, _ = base.Parameter("Src-1", "Pressure")
	assert.Equal(t, topology.Number(50), pressure)
}

func TestSimpleImportErrors(t *testing.T) {
	tests := []struct {
		name string
		rows [][]string
		want error
	}{
		{name: "empty sheet", rows: nil, want: tables.ErrHeaderNotFound},
		{name: "no component column", rows: [][]string{{"Name", "Pressure"}, {"Src-1", "1"}}, want: tables.ErrMissingColumn},
		{name: "no name column", rows: [][]string{{"Component", "Pressure"}, {"Source", "1"}}, want: tables.ErrMissingColumn},
		{name: "repeated name", rows: [][]string{{"Name", "Component"}, {"Src-1", "Source"}, {"Src-1", "Source"}}, want: tables.ErrDuplicateEntry},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := SimpleImport(loadBase(t), &sheet.Table{Name: "Isometric", Rows: tt.rows}, nil)
			var inputErr *tables.InputFormatError
			require.True(t, errors.As(err, &inputErr))
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestCopyFlowlines(t *testing.T) {
	src := loadBase(t)
	require.NoError(t, src.SetParameter("FL-1", "Length", topology.Number(1200)))
	require.NoError(t, src.SetParameter("FL-1", "Environment", topology.Text("Buried")))
	require.NoError(t, src.AddComponent("FL-2", catalog.Flowline, map[string]topology.Value{"Length": topology.Number(5)}))
	require.NoError(t, src.SetParameter("Src-1", "Pressure", topology.Number(99)))

	dst := loadBase(t)
	require.NoError(t, dst.SetParameter("FL-1", "Diameter", topology.Number(0.2)))

	copied, err := CopyFlowlines(src, dst)
	require.NoError(t, err)
	assert.Equal(t, []string{"FL-1"}, copied.Copied)
	assert.Equal(t, []string{"FL-2"}, copied.Missing)

	length, _ := dst.Parameter("FL-1", "Length")
	assert.Equal(t, topology.Number(1200), length)
	env, _ := dst.Parameter("FL-1", "Environment")
	assert.Equal(t, topology.Text("Buried"), env)
	diameter, _ := dst.Parameter("FL-1", "Diameter")
	assert.Equal(t, topology.Number(0.2), diameter)
	pressure, _ := dst.Parameter("Src-1", "Pressure")
	assert.Equal(t, topology.Number(50), pressure, "only flowlines are copied")
}
