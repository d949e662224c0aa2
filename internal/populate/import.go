package populate

import (
	"fmt"
	"strings"

	"casegen/internal/catalog"
	"casegen/internal/config"
	"casegen/internal/sheet"
	"casegen/internal/tables"
	"casegen/internal/topology"
)

// Column headers of a simple import sheet.
const (
	ColumnName      = "Name"
	ColumnComponent = "Component"
)

// BulkImport applies every sheet of wb named after a component type, in the
// layout Export writes: the first column names the component and each other
// column is a parameter. Blank cells leave the parameter alone. Rows naming a
// component missing from base, or one of another type, are skipped. base is
// not modified.
func BulkImport(base *topology.Model, wb sheet.Workbook, schema *config.Schema) (*topology.Model, *Report, error) {
	m := base.Clone()
	report := &Report{}

	for _, name := range wb.SheetNames() {
		t, ok := catalog.ParseComponentType(name)
		if !ok || t.IsSetting() {
			report.skip(name, 0, "", "sheet is not named after a component type")
			continue
		}
		table, err := wb.Sheet(name)
		if err != nil {
			return nil, nil, err
		}
		if len(table.Rows) == 0 {
			continue
		}

		for row := 1; row < len(table.Rows); row++ {
			component := table.Cell(row, 0)
			if component == "" {
				continue
			}
			if reason := checkComponent(m, component, t); reason != "" {
				report.skip(name, row+1, component, reason)
				continue
			}
			for col := 1; col < table.Width(); col++ {
				parameter := table.Cell(0, col)
				raw := table.Cell(row, col)
				if parameter == "" || raw == "" {
					continue
				}
				value, err := parseCell(schema, t, parameter, raw, cell{table: table, row: row, col: col, header: parameter})
				if err != nil {
					return nil, nil, err
				}
				existing, _ := m.Component(component)
				key, _ := parameterKey(existing, parameter)
				if err := m.SetParameter(component, key, value); err != nil {
					return nil, nil, err
				}
				report.Updated++
			}
		}
	}
	return m, report, nil
}

// SimpleImport applies one sheet with a Name and a Component column. Only
// parameters the component already carries are set, so a sheet with extra
// columns can be imported as-is. Rows with an unknown component type, or
// naming a component missing from base, are skipped. Names must be unique.
func SimpleImport(base *topology.Model, table *sheet.Table, schema *config.Schema) (*topology.Model, *Report, error) {
	if len(table.Rows) == 0 {
		return nil, nil, &tables.InputFormatError{Sheet: table.Name, Detail: "the sheet is empty", Err: tables.ErrHeaderNotFound}
	}
	nameCol, typeCol := -1, -1
	for col := 0; col < table.Width(); col++ {
		switch {
		case strings.EqualFold(table.Cell(0, col), ColumnName):
			nameCol = col
		case strings.EqualFold(table.Cell(0, col), ColumnComponent):
			typeCol = col
		}
	}
	for _, required := range []struct {
		header string
		col    int
	}{{ColumnName, nameCol}, {ColumnComponent, typeCol}} {
		if required.col < 0 {
			return nil, nil, &tables.InputFormatError{Sheet: table.Name, Row: 1, Header: required.header,
				Detail: fmt.Sprintf("missing required column %q", required.header), Err: tables.ErrMissingColumn}
		}
	}

	seen := make(map[string]int)
	for row := 1; row < len(table.Rows); row++ {
		name := table.Cell(row, nameCol)
		if name == "" {
			continue
		}
		if first, dup := seen[name]; dup {
			return nil, nil, cell{table: table, row: row, col: nameCol, header: ColumnName}.errorf(
				tables.ErrDuplicateEntry, "%s repeats row %d; names must be unique", name, first)
		}
		seen[name] = row + 1
	}

	m := base.Clone()
	report := &Report{}
	for row := 1; row < len(table.Rows); row++ {
		name := table.Cell(row, nameCol)
		if name == "" {
			continue
		}
		t, ok := catalog.ParseComponentType(table.Cell(row, typeCol))
		if !ok || t.IsSetting() {
			report.skip(table.Name, row+1, name, fmt.Sprintf("invalid component type %q", table.Cell(row, typeCol)))
			continue
		}
		if reason := checkComponent(m, name, t); reason != "" {
			report.skip(table.Name, row+1, name, reason)
			continue
		}

		existing, _ := m.Component(name)
		for col := 0; col < table.Width(); col++ {
			if col == nameCol || col == typeCol {
				continue
			}
			parameter := table.Cell(0, col)
			raw := table.Cell(row, col)
			key, carried := parameterKey(existing, parameter)
			if parameter == "" || raw == "" || !carried {
				continue
			}
			value, err := parseCell(schema, t, key, raw, cell{table: table, row: row, col: col, header: parameter})
			if err != nil {
				return nil, nil, err
			}
			if err := m.SetParameter(name, key, value); err != nil {
				return nil, nil, err
			}
			report.Updated++
		}
	}
	return m, report, nil
}

func checkComponent(m *topology.Model, name string, t catalog.ComponentType) string {
	c, ok := m.Component(name)
	switch {
	case !ok:
		return "not in the model"
	case c.Type != t:
		return fmt.Sprintf("is a %s, not a %s", c.Type, t)
	}
	return ""
}
