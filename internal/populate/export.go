package populate

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"

	"casegen/internal/catalog"
	"casegen/internal/topology"
)

// NameColumn heads the first column of every exported sheet.
const NameColumn = "Name"

// Sheet is one exported component type: a header of NameColumn followed by
// the sorted union of parameter names, and one row per component.
type Sheet struct {
	Type       catalog.ComponentType
	Parameters []string
	Rows       []ExportRow
}

type ExportRow struct {
	Name   string
	Values []*topology.Value
}

// Sheets lays m out as one Sheet per component type present in the model.
func Sheets(m *topology.Model) []Sheet {
	var out []Sheet
	for _, t := range exportTypes() {
		var components []topology.Component
		params := make(map[string]bool)
		for _, c := range m.Components {
			if c.Type != t {
				continue
			}
			components = append(components, c)
			for p := range c.Parameters {
				params[p] = true
			}
		}
		if len(components) == 0 {
			continue
		}

		s := Sheet{Type: t, Parameters: make([]string, 0, len(params))}
		for p := range params {
			s.Parameters = append(s.Parameters, p)
		}
		sort.Strings(s.Parameters)
		for _, c := range components {
			row := ExportRow{Name: c.Name, Values: make([]*topology.Value, len(s.Parameters))}
			for i, p := range s.Parameters {
				if v, ok := c.Parameters[p]; ok {
					row.Values[i] = &v
				}
			}
			s.Rows = append(s.Rows, row)
		}
		out = append(out, s)
	}
	return out
}

// Export writes the component values of m to path: an .xlsx workbook, or a
// directory of <type>.csv files that sheet.Open reads back the same way.
func Export(m *topology.Model, path string, overwrite bool) ([]Sheet, error) {
	sheets := Sheets(m)
	if len(sheets) == 0 {
		return nil, fmt.Errorf("model %s has no components to export", m.Name)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return sheets, exportXLSX(sheets, path, overwrite)
	case "":
		return sheets, exportCSVDir(sheets, path, overwrite)
	default:
		return nil, fmt.Errorf("exporting to %s: use an .xlsx file or a directory", path)
	}
}

func exportXLSX(sheets []Sheet, path string, overwrite bool) error {
	if err := refuseExisting(path, overwrite); err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	for i, s := range sheets {
		name := string(s.Type)
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), name); err != nil {
				return fmt.Errorf("naming sheet %s: %w", name, err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("adding sheet %s: %w", name, err)
		}

		header := []any{NameColumn}
		for _, p := range s.Parameters {
			header = append(header, p)
		}
		if err := f.SetSheetRow(name, "A1", &header); err != nil {
			return fmt.Errorf("writing %s header: %w", name, err)
		}
		for r, row := range s.Rows {
			cells := []any{row.Name}
			for _, v := range row.Values {
				cells = append(cells, cellValue(v))
			}
			addr, err := excelize.CoordinatesToCellName(1, r+2)
			if err != nil {
				return err
			}
			if err := f.SetSheetRow(name, addr, &cells); err != nil {
				return fmt.Errorf("writing %s row %d: %w", name, r+2, err)
			}
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(path), err)
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving %s: %w", path, err)
	}
	return nil
}

func cellValue(v *topology.Value) any {
	switch {
	case v == nil:
		return nil
	case v.IsText:
		return v.Text
	default:
		return v.Number
	}
}

func exportCSVDir(sheets []Sheet, dir string, overwrite bool) error {
	for _, s := range sheets {
		if err := refuseExisting(filepath.Join(dir, string(s.Type)+".csv"), overwrite); err != nil {
			return err
		}
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}

	for _, s := range sheets {
		records := [][]string{append([]string{NameColumn}, s.Parameters...)}
		for _, row := range s.Rows {
			record := []string{row.Name}
			for _, v := range row.Values {
				if v == nil {
					record = append(record, "")
					continue
				}
				record = append(record, v.String())
			}
			records = append(records, record)
		}
		if err := writeCSV(filepath.Join(dir, string(s.Type)+".csv"), records); err != nil {
			return err
		}
	}
	return nil
}

func writeCSV(path string, records [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	w := csv.NewWriter(f)
	if err := w.WriteAll(records); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func refuseExisting(path string, overwrite bool) error {
	if overwrite {
		return nil
	}
	_, err := os.Stat(path)
	switch {
	case err == nil:
		return fmt.Errorf("%s already exists", path)
	case errors.Is(err, fs.ErrNotExist):
		return nil
	default:
		return fmt.Errorf("checking %s: %w", path, err)
	}
}
