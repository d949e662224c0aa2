// Package catalog is the identity authority for network components: every
// name read from a spreadsheet resolves through a Catalog before a value is
// applied to it.
package catalog

import (
	"fmt"
	"strings"
)

type ComponentType string

const (
	Source            ComponentType = "Source"
	Flowline          ComponentType = "Flowline"
	Pump              ComponentType = "Pump"
	Junction          ComponentType = "Junction"
	Sink              ComponentType = "Sink"
	GenericEquipment  ComponentType = "GenericEquipment"
	SimulationSetting ComponentType = "SimulationSetting"
)

var componentTypes = []ComponentType{
	Source,
	Flowline,
	Pump,
	Junction,
	Sink,
	GenericEquipment,
	SimulationSetting,
}

// ComponentTypes returns every known component type in declaration order.
func ComponentTypes() []ComponentType {
	return append([]ComponentType{}, componentTypes...)
}

// ParseComponentType matches s against the known types ignoring case and
// inner whitespace, so "generic equipment" and "GenericEquipment" agree.
func ParseComponentType(s string) (ComponentType, bool) {
	key := normalizeTypeName(s)
	if key == "" {
		return "", false
	}
	for _, t := range componentTypes {
		if normalizeTypeName(string(t)) == key {
			return t, true
		}
	}
	return "", false
}

func normalizeTypeName(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), ""))
}

// IsSetting reports whether the type names a whole-model setting namespace
// rather than a physical component.
func (t ComponentType) IsSetting() bool {
	return t == SimulationSetting
}

type Component struct {
	Name string
	Type ComponentType
}

type Catalog struct {
	index map[string]Component
	order []string
}

func New(components []Component) (*Catalog, error) {
	c := &Catalog{
		index: make(map[string]Component, len(components)),
		order: make([]string, 0, len(components)),
	}
	for i, component := range components {
		if strings.TrimSpace(component.Name) == "" {
			return nil, fmt.Errorf("component %d name is required", i)
		}
		if _, ok := ParseComponentType(string(component.Type)); !ok {
			return nil, fmt.Errorf("component %s has unknown type %q", component.Name, component.Type)
		}
		if component.Type.IsSetting() {
			return nil, fmt.Errorf("component %s: %s is not a component type", component.Name, component.Type)
		}
		if existing, exists := c.index[component.Name]; exists {
			return nil, &DuplicateComponentError{Name: component.Name, First: existing.Type, Second: component.Type}
		}
		c.index[component.Name] = component
		c.order = append(c.order, component.Name)
	}
	return c, nil
}

// Resolve looks name up exactly; names are case-sensitive.
func (c *Catalog) Resolve(name string) (Component, error) {
	if c != nil {
		if component, ok := c.index[name]; ok {
			return component, nil
		}
	}
	return Component{}, &UnknownComponentError{Name: name}
}

func (c *Catalog) TypeOf(name string) (ComponentType, error) {
	component, err := c.Resolve(name)
	if err != nil {
		return "", err
	}
	return component.Type, nil
}

func (c *Catalog) Contains(name string) bool {
	_, err := c.Resolve(name)
	return err == nil
}

func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.order)
}

// Components returns the catalog contents in the order they were declared.
func (c *Catalog) Components() []Component {
	if c == nil {
		return nil
	}
	out := make([]Component, 0, len(c.order))
	for _, name := range c.order {
		out = append(out, c.index[name])
	}
	return out
}

func (c *Catalog) OfType(t ComponentType) []Component {
	var out []Component
	for _, component := range c.Components() {
		if component.Type == t {
			out = append(out, component)
		}
	}
	return out
}
