package generate

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"casegen/internal/tables"
	"casegen/internal/topology"
)

func TestBuildModel(t *testing.T) {
	cfg := writeProject(t, twoProfiles, twoConds, "")
	listing := "Section A,,Section B,,Notes\n" +
		"Src-1,Source,Src-2,Source,first\n" +
		"FL-1,Flowline,FL-2,Flowline,\n" +
		"Sk-1,Sink,,,\n"
	require.NoError(t, os.WriteFile(filepath.Join(cfg.WorkbookPath(), "Components.csv"), []byte(listing), 0o644))
	cfg.Sheets.Catalog = "Components"

	model, sheet, err := BuildModel(cfg, "")
	require.NoError(t, err)
	assert.True(t, sheet.DroppedColumn)
	assert.Equal(t, "base", model.Name)

	junction, ok := model.Component("LJ(1_1)")
	require.True(t, ok)
	assert.Equal(t, "Junction", string(junction.Type))
	assert.Contains(t, model.Connections, topology.Connection{From: "FL-2", To: "LJ(1_1)"})
	assert.Contains(t, model.Connections, topology.Connection{From: "FL-1", To: "Sk-1"})

	x, _ := model.Parameter("Sk-1", "X")
	assert.Equal(t, topology.Number(4200), x)
	y, _ := model.Parameter("Src-2", "Y")
	assert.Equal(t, topology.Number(100), y)
}

func TestBuildModel_Errors(t *testing.T) {
	cfg := writeProject(t, twoProfiles, twoConds, "")

	_, _, err := BuildModel(cfg, "")
	assert.ErrorContains(t, err, "sheets.catalog")

	cfg.Sheets.Catalog = "Components"
	_, _, err = BuildModel(cfg, "")
	var inputErr *tables.InputFormatError
	require.True(t, errors.As(err, &inputErr))
	assert.ErrorIs(t, err, tables.ErrSheetNotFound)

	require.NoError(t, os.WriteFile(filepath.Join(cfg.WorkbookPath(), "Components.csv"), []byte("A,\nSrc-1,Reservoir\n"), 0o644))
	_, _, err = BuildModel(cfg, "")
	assert.ErrorIs(t, err, tables.ErrUnknownComponentType)
}
