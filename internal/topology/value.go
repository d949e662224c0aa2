package topology

import (
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Value is a scalar parameter value: a number, or text for enumerated and
// free-form parameters.
type Value struct {
	Number float64
	Text   string
	IsText bool
}

func Number(f float64) Value {
	return Value{Number: f}
}

func Text(s string) Value {
	return Value{Text: s, IsText: true}
}

func (v Value) Float() (float64, bool) {
	if v.IsText {
		return 0, false
	}
	return v.Number, true
}

func (v Value) String() string {
	if v.IsText {
		return v.Text
	}
	return strconv.FormatFloat(v.Number, 'g', -1, 64)
}

func (v Value) Equal(other Value) bool {
	if v.IsText != other.IsText {
		return false
	}
	if v.IsText {
		return v.Text == other.Text
	}
	return v.Number == other.Number
}

func (v Value) MarshalYAML() (any, error) {
	if v.IsText {
		return v.Text, nil
	}
	return v.Number, nil
}

func (v *Value) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: parameter value must be a scalar", node.Line)
	}
	switch node.Tag {
	case "!!int", "!!float":
		var f float64
		if err := node.Decode(&f); err != nil {
			return fmt.Errorf("line %d: %w", node.Line, err)
		}
		*v = Number(f)
	default:
		*v = Text(node.Value)
	}
	return nil
}
