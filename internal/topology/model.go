// Package topology holds the network model document: the base topology that
// cases are generated from and the format every generated artifact is
// written in.
package topology

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"casegen/internal/catalog"
)

var ErrConnectionExists = errors.New("connection already exists")

type Model struct {
	Name        string                      `yaml:"name"`
	Settings    map[string]map[string]Value `yaml:"settings,omitempty"`
	Components  []Component                 `yaml:"components"`
	Connections []Connection                `yaml:"connections,omitempty"`
	Excluded    []string                    `yaml:"excluded,omitempty"`

	index map[string]int
}

type Component struct {
	Name       string                `yaml:"name"`
	Type       catalog.ComponentType `yaml:"type"`
	Parameters map[string]Value      `yaml:"parameters,omitempty"`
}

type Connection struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

func New(name string) *Model {
	return &Model{Name: name, index: make(map[string]int)}
}

// Load reads a model document. A document without a name takes the file
// name stem.
func Load(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading model %s: %w", path, err)
	}
	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("loading model %s: %w", path, err)
	}
	if strings.TrimSpace(m.Name) == "" {
		m.Name = Stem(path)
	}
	return m, nil
}

func Parse(data []byte) (*Model, error) {
	var m Model
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	if err := m.reindex(); err != nil {
		return nil, err
	}
	if err := m.validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Stem returns the file name of path without directory or extension.
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func (m *Model) reindex() error {
	m.index = make(map[string]int, len(m.Components))
	for i, component := range m.Components {
		if strings.TrimSpace(component.Name) == "" {
			return fmt.Errorf("component %d name is required", i)
		}
		if _, exists := m.index[component.Name]; exists {
			return fmt.Errorf("duplicate component name: %s", component.Name)
		}
		m.index[component.Name] = i
	}
	return nil
}

func (m *Model) validate() error {
	for _, component := range m.Components {
		t, ok := catalog.ParseComponentType(string(component.Type))
		if !ok || t.IsSetting() {
			return fmt.Errorf("component %s has invalid type %q", component.Name, component.Type)
		}
	}
	for _, conn := range m.Connections {
		if _, ok := m.index[conn.From]; !ok {
			return fmt.Errorf("connection references unknown component: %s", conn.From)
		}
		if _, ok := m.index[conn.To]; !ok {
			return fmt.Errorf("connection references unknown component: %s", conn.To)
		}
	}
	for _, name := range m.Excluded {
		component, ok := m.component(name)
		if !ok {
			return fmt.Errorf("excluded component is unknown: %s", name)
		}
		if component.Type != catalog.Sink {
			return fmt.Errorf("excluded component %s is not a sink", name)
		}
	}
	return nil
}

// Catalog builds the identity catalog from the model's component listing.
func (m *Model) Catalog() (*catalog.Catalog, error) {
	components := make([]catalog.Component, 0, len(m.Components))
	for _, component := range m.Components {
		t, _ := catalog.ParseComponentType(string(component.Type))
		components = append(components, catalog.Component{Name: component.Name, Type: t})
	}
	return catalog.New(components)
}

// Clone returns a deep copy that shares no maps or slices with m.
func (m *Model) Clone() *Model {
	out := &Model{
		Name:        m.Name,
		Components:  make([]Component, len(m.Components)),
		Connections: append([]Connection(nil), m.Connections...),
		Excluded:    append([]string(nil), m.Excluded...),
		index:       make(map[string]int, len(m.Components)),
	}
	if m.Settings != nil {
		out.Settings = make(map[string]map[string]Value, len(m.Settings))
		for ns, params := range m.Settings {
			out.Settings[ns] = copyValues(params)
		}
	}
	for i, component := range m.Components {
		out.Components[i] = Component{
			Name:       component.Name,
			Type:       component.Type,
			Parameters: copyValues(component.Parameters),
		}
		out.index[component.Name] = i
	}
	return out
}

func copyValues(in map[string]Value) map[string]Value {
	if in == nil {
		return nil
	}
	out := make(map[string]Value, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func (m *Model) component(name string) (*Component, bool) {
	i, ok := m.index[name]
	if !ok {
		return nil, false
	}
	return &m.Components[i], true
}

func (m *Model) Component(name string) (Component, bool) {
	c, ok := m.component(name)
	if !ok {
		return Component{}, false
	}
	return *c, true
}

func (m *Model) AddComponent(name string, t catalog.ComponentType, params map[string]Value) error {
	if m.index == nil {
		m.index = make(map[string]int)
	}
	if _, exists := m.index[name]; exists {
		return fmt.Errorf("component %s already exists", name)
	}
	m.Components = append(m.Components, Component{Name: name, Type: t, Parameters: copyValues(params)})
	m.index[name] = len(m.Components) - 1
	return nil
}

func (m *Model) Connect(from, to string) error {
	if _, ok := m.index[from]; !ok {
		return &catalog.UnknownComponentError{Name: from}
	}
	if _, ok := m.index[to]; !ok {
		return &catalog.UnknownComponentError{Name: to}
	}
	for _, conn := range m.Connections {
		if conn.From == from && conn.To == to {
			return fmt.Errorf("%s -> %s: %w", from, to, ErrConnectionExists)
		}
	}
	m.Connections = append(m.Connections, Connection{From: from, To: to})
	return nil
}

func (m *Model) Parameter(name, parameter string) (Value, bool) {
	c, ok := m.component(name)
	if !ok {
		return Value{}, false
	}
	v, ok := c.Parameters[parameter]
	return v, ok
}

func (m *Model) SetParameter(name, parameter string, value Value) error {
	c, ok := m.component(name)
	if !ok {
		return &catalog.UnknownComponentError{Name: name}
	}
	if c.Parameters == nil {
		c.Parameters = make(map[string]Value)
	}
	c.Parameters[parameter] = value
	return nil
}

func (m *Model) Setting(namespace, parameter string) (Value, bool) {
	v, ok := m.Settings[namespace][parameter]
	return v, ok
}

func (m *Model) SetSetting(namespace, parameter string, value Value) {
	if m.Settings == nil {
		m.Settings = make(map[string]map[string]Value)
	}
	if m.Settings[namespace] == nil {
		m.Settings[namespace] = make(map[string]Value)
	}
	m.Settings[namespace][parameter] = value
}

// IsActive reports whether a component takes part in the active-flow set.
func (m *Model) IsActive(name string) bool {
	for _, excluded := range m.Excluded {
		if excluded == name {
			return false
		}
	}
	return true
}

// SetActive moves a sink in or out of the excluded set. The component and its
// parameters are kept either way.
func (m *Model) SetActive(name string, active bool) error {
	c, ok := m.component(name)
	if !ok {
		return &catalog.UnknownComponentError{Name: name}
	}
	if c.Type != catalog.Sink {
		return fmt.Errorf("component %s is a %s, only sinks can be shut in", name, c.Type)
	}
	kept := m.Excluded[:0:0]
	for _, excluded := range m.Excluded {
		if excluded != name {
			kept = append(kept, excluded)
		}
	}
	if !active {
		kept = append(kept, name)
		sort.Strings(kept)
	}
	m.Excluded = kept
	return nil
}

func (m *Model) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encoding model %s: %w", m.Name, err)
	}
	return data, nil
}
