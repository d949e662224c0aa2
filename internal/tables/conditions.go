package tables

import (
	"fmt"
	"strconv"
	"strings"

	"casegen/internal/catalog"
	"casegen/internal/config"
	"casegen/internal/sheet"
	"casegen/internal/topology"
)

const (
	ColumnComponentName = "Component Name"
	ColumnComponentType = "Component Type"
	ColumnParameter     = "Parameter"
	ColumnValue         = "Value"
)

// Condition is a named set of parameter overrides. Entries keep sheet order.
type Condition struct {
	Name    string
	Entries []ConditionEntry
}

// ConditionEntry is one row of the condition table. A SimulationSetting row
// has no ComponentName and targets a whole-model setting.
type ConditionEntry struct {
	ConditionName string
	ComponentName string
	ComponentType catalog.ComponentType
	Parameter     string
	Value         topology.Value
	Row           int
}

func (e ConditionEntry) IsSetting() bool {
	return e.ComponentType.IsSetting()
}

// NormalizeConditions reads the condition table. Rows sharing a condition name
// are merged into one Condition in order of first appearance. Values are
// coerced through schema; a nil schema treats every value as a number.
func NormalizeConditions(t *sheet.Table, sentinels []string, separator string, schema *config.Schema) ([]Condition, error) {
	header, _, err := findHeader(t, sentinels)
	if err != nil {
		return nil, err
	}

	index := make(map[string]int)
	for col := 1; col < t.Width(); col++ {
		name := strings.ToLower(t.Cell(header, col))
		if name == "" {
			continue
		}
		if _, ok := index[name]; !ok {
			index[name] = col
		}
	}
	cols := make(map[string]int, 4)
	var missing []string
	for _, name := range []string{ColumnComponentName, ColumnComponentType, ColumnParameter, ColumnValue} {
		col, ok := index[strings.ToLower(name)]
		if !ok {
			missing = append(missing, name)
			continue
		}
		cols[name] = col
	}
	if len(missing) > 0 {
		return nil, &InputFormatError{
			Sheet:  t.Name,
			Row:    header + 1,
			Detail: strings.Join(missing, ", "),
			Err:    ErrMissingColumn,
		}
	}

	var conditions []*Condition
	byName := make(map[string]*Condition)
	for row := header + 1; row < len(t.Rows); row++ {
		name := t.Cell(row, 0)
		if name == "" {
			continue
		}
		if separator != "" && strings.Contains(name, separator) {
			return nil, cellError(t, row, 0, name, ErrInvalidColumnName,
				fmt.Sprintf("condition name must not contain %q", separator))
		}

		entry, err := parseConditionRow(t, row, cols, schema)
		if err != nil {
			return nil, err
		}
		entry.ConditionName = name

		cond, ok := byName[name]
		if !ok {
			cond = &Condition{Name: name}
			byName[name] = cond
			conditions = append(conditions, cond)
		}
		cond.Entries = append(cond.Entries, entry)
	}

	result := make([]Condition, len(conditions))
	for i, c := range conditions {
		result[i] = *c
	}
	return result, nil
}

func parseConditionRow(t *sheet.Table, row int, cols map[string]int, schema *config.Schema) (ConditionEntry, error) {
	typeCol := cols[ColumnComponentType]
	rawType := t.Cell(row, typeCol)
	componentType, ok := catalog.ParseComponentType(rawType)
	if !ok {
		return ConditionEntry{}, cellError(t, row, typeCol, ColumnComponentType, ErrUnknownComponentType, fmt.Sprintf("%q", rawType))
	}

	nameCol := cols[ColumnComponentName]
	componentName := t.Cell(row, nameCol)
	switch {
	case componentName == "" && !componentType.IsSetting():
		return ConditionEntry{}, cellError(t, row, nameCol, ColumnComponentName, ErrInvalidValue,
			fmt.Sprintf("component name is required for %s", componentType))
	case componentName != "" && componentType.IsSetting():
		return ConditionEntry{}, cellError(t, row, nameCol, ColumnComponentName, ErrInvalidValue,
			fmt.Sprintf("%s rows apply to the whole model and take no component name, got %q", componentType, componentName))
	}

	paramCol := cols[ColumnParameter]
	parameter := t.Cell(row, paramCol)
	if parameter == "" {
		return ConditionEntry{}, cellError(t, row, paramCol, ColumnParameter, ErrInvalidValue, "parameter is required")
	}

	valueCol := cols[ColumnValue]
	raw := t.Cell(row, valueCol)
	if raw == "" {
		return ConditionEntry{}, cellError(t, row, valueCol, ColumnValue, ErrInvalidValue,
			fmt.Sprintf("no value for %s", parameter))
	}

	var value topology.Value
	decl, declared := schema.Parameter(componentType, parameter)
	switch {
	case !declared && schema.Declares(componentType):
		return ConditionEntry{}, cellError(t, row, paramCol, ColumnParameter, ErrUnknownParameter,
			fmt.Sprintf("%s does not declare %q", componentType, parameter))
	case declared && decl.Kind() == config.KindString:
		value = topology.Text(raw)
	case declared && decl.Kind() == config.KindEnum:
		if !decl.Allows(raw) {
			return ConditionEntry{}, cellError(t, row, valueCol, ColumnValue, ErrInvalidValue,
				fmt.Sprintf("%s must be one of %v, got %q", parameter, decl.Values, raw))
		}
		value = topology.Text(raw)
	default:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return ConditionEntry{}, cellError(t, row, valueCol, ColumnValue, ErrInvalidValue,
				fmt.Sprintf("%s expects a number, got %q", parameter, raw))
		}
		value = topology.Number(f)
	}
	if declared {
		parameter = decl.Name
	}

	return ConditionEntry{
		ComponentName: componentName,
		ComponentType: componentType,
		Parameter:     parameter,
		Value:         value,
		Row:           row + 1,
	}, nil
}
