package tables

import (
	"fmt"

	"casegen/internal/catalog"
	"casegen/internal/sheet"
)

// CatalogSheet is the component listing used to build a new base model. Each
// pair of columns (name, type) is one section of the network.
type CatalogSheet struct {
	Sections [][]catalog.Component
	// DroppedColumn is set when an odd trailing column was ignored.
	DroppedColumn bool
}

func NormalizeCatalogSheet(t *sheet.Table) (*CatalogSheet, error) {
	width := t.Width()
	result := &CatalogSheet{}
	if width%2 != 0 {
		result.DroppedColumn = true
		width--
	}

	for col := 0; col < width; col += 2 {
		var section []catalog.Component
		for row := 1; row < len(t.Rows); row++ {
			name, rawType := t.Cell(row, col), t.Cell(row, col+1)
			if name == "" && rawType == "" {
				continue
			}
			if name == "" {
				return nil, cellError(t, row, col, t.Cell(0, col), ErrInvalidValue, "component name is required")
			}
			componentType, ok := catalog.ParseComponentType(rawType)
			if !ok || componentType.IsSetting() {
				return nil, cellError(t, row, col+1, t.Cell(0, col+1), ErrUnknownComponentType,
					fmt.Sprintf("%q for %s", rawType, name))
			}
			section = append(section, catalog.Component{Name: name, Type: componentType})
		}
		if len(section) > 0 {
			result.Sections = append(result.Sections, section)
		}
	}
	return result, nil
}
