// Package populate moves component values between a topology model and a
// workbook. Export writes one sheet per component type; the imports apply an
// edited workbook back onto a copy of the model.
package populate

import (
	"fmt"
	"strconv"
	"strings"

	"casegen/internal/catalog"
	"casegen/internal/config"
	"casegen/internal/sheet"
	"casegen/internal/tables"
	"casegen/internal/topology"
)

// Skip records a row or sheet that was read but not applied.
type Skip struct {
	Sheet     string
	Row       int
	Component string
	Reason    string
}

type Report struct {
	Updated int
	Skipped []Skip
}

func (r *Report) skip(sheetName string, row int, component, reason string) {
	r.Skipped = append(r.Skipped, Skip{Sheet: sheetName, Row: row, Component: component, Reason: reason})
}

// exportTypes lists the sheet-per-type component types in workbook order.
func exportTypes() []catalog.ComponentType {
	var out []catalog.ComponentType
	for _, t := range catalog.ComponentTypes() {
		if !t.IsSetting() {
			out = append(out, t)
		}
	}
	return out
}

// parseCell turns raw into a value for parameter of t. Declared text and enum
// parameters stay text; anything else is a number when it parses as one.
func parseCell(schema *config.Schema, t catalog.ComponentType, parameter, raw string, at cell) (topology.Value, error) {
	decl, declared := schema.Parameter(t, parameter)
	switch {
	case declared && decl.Kind() == config.KindString:
		return topology.Text(raw), nil
	case declared && decl.Kind() == config.KindEnum:
		if !decl.Allows(raw) {
			return topology.Value{}, at.errorf(tables.ErrInvalidValue, "%s must be one of %v, got %q", parameter, decl.Values, raw)
		}
		return topology.Text(raw), nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err == nil {
		return topology.Number(f), nil
	}
	if declared {
		return topology.Value{}, at.errorf(tables.ErrInvalidValue, "%s expects a number, got %q", parameter, raw)
	}
	return topology.Text(raw), nil
}

// cell locates a value in a table for error reporting; row and col are
// zero-based.
type cell struct {
	table  *sheet.Table
	row    int
	col    int
	header string
}

func (c cell) errorf(err error, format string, args ...any) error {
	return &tables.InputFormatError{
		Sheet:  c.table.Name,
		Row:    c.row + 1,
		Column: c.col + 1,
		Header: c.header,
		Detail: fmt.Sprintf(format, args...),
		Err:    err,
	}
}

// parameterKey returns the spelling of parameter already used on c, so an
// import does not add a second key that differs only in case.
func parameterKey(c topology.Component, parameter string) (string, bool) {
	if _, ok := c.Parameters[parameter]; ok {
		return parameter, true
	}
	for existing := range c.Parameters {
		if strings.EqualFold(existing, parameter) {
			return existing, true
		}
	}
	return parameter, false
}
