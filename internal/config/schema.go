package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"casegen/internal/catalog"
)

type ParameterKind string

const (
	KindNumber ParameterKind = "number"
	KindString ParameterKind = "string"
	KindEnum   ParameterKind = "enum"
)

// Schema declares which parameters each component type accepts and how
// spreadsheet text for them is coerced.
type Schema struct {
	Version        int             `yaml:"version"`
	ComponentTypes []ComponentType `yaml:"component_types"`

	typeIndex map[string]*ComponentType
}

type ComponentType struct {
	Name       string      `yaml:"name"`
	Parameters []Parameter `yaml:"parameters"`

	paramIndex map[string]*Parameter
}

type Parameter struct {
	Name   string        `yaml:"name"`
	Type   ParameterKind `yaml:"type"`
	Values []string      `yaml:"values"`
}

func LoadSchema(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading schema: %w", err)
	}

	var schema Schema
	if err := yaml.Unmarshal(data, &schema); err != nil {
		return nil, fmt.Errorf("loading schema: %w", err)
	}

	if err := validateSchema(&schema); err != nil {
		return nil, fmt.Errorf("loading schema: %w", err)
	}

	schema.typeIndex = make(map[string]*ComponentType)
	for i := range schema.ComponentTypes {
		ct := &schema.ComponentTypes[i]
		schema.typeIndex[strings.ToLower(ct.Name)] = ct
		ct.paramIndex = make(map[string]*Parameter)
		for j := range ct.Parameters {
			param := &ct.Parameters[j]
			if param.Type == "" {
				param.Type = KindNumber
			}
			ct.paramIndex[strings.ToLower(param.Name)] = param
		}
	}

	return &schema, nil
}

func validateSchema(s *Schema) error {
	if s.Version != 1 {
		return fmt.Errorf("unsupported version: %d", s.Version)
	}
	if len(s.ComponentTypes) == 0 {
		return fmt.Errorf("at least one component type is required")
	}

	typeNames := make(map[string]struct{})
	for i, ct := range s.ComponentTypes {
		if strings.TrimSpace(ct.Name) == "" {
			return fmt.Errorf("component type %d name is required", i)
		}
		if _, ok := catalog.ParseComponentType(ct.Name); !ok {
			return fmt.Errorf("unknown component type: %s", ct.Name)
		}
		key := strings.ToLower(ct.Name)
		if _, exists := typeNames[key]; exists {
			return fmt.Errorf("duplicate component type name: %s", ct.Name)
		}
		typeNames[key] = struct{}{}

		paramNames := make(map[string]struct{})
		for _, param := range ct.Parameters {
			name := strings.ToLower(strings.TrimSpace(param.Name))
			if name == "" {
				return fmt.Errorf("component type %s has parameter with empty name", ct.Name)
			}
			if _, exists := paramNames[name]; exists {
				return fmt.Errorf("component type %s has duplicate parameter: %s", ct.Name, param.Name)
			}
			paramNames[name] = struct{}{}
			switch ParameterKind(strings.ToLower(string(param.Type))) {
			case "", KindNumber, KindString:
			case KindEnum:
				if len(param.Values) == 0 {
					return fmt.Errorf("component type %s parameter %s enum has no values", ct.Name, param.Name)
				}
			default:
				return fmt.Errorf("component type %s parameter %s has unknown type %q", ct.Name, param.Name, param.Type)
			}
		}
	}

	return nil
}

func (s *Schema) componentType(t catalog.ComponentType) (*ComponentType, bool) {
	if s == nil {
		return nil, false
	}
	ct, ok := s.typeIndex[strings.ToLower(string(t))]
	return ct, ok
}

// Declares reports whether the schema restricts the parameters of t.
func (s *Schema) Declares(t catalog.ComponentType) bool {
	ct, ok := s.componentType(t)
	return ok && len(ct.Parameters) > 0
}

// Parameter looks a parameter up case-insensitively.
func (s *Schema) Parameter(t catalog.ComponentType, name string) (*Parameter, bool) {
	ct, ok := s.componentType(t)
	if !ok {
		return nil, false
	}
	param, ok := ct.paramIndex[strings.ToLower(strings.TrimSpace(name))]
	return param, ok
}

func (p *Parameter) Kind() ParameterKind {
	return ParameterKind(strings.ToLower(string(p.Type)))
}

func (p *Parameter) Allows(value string) bool {
	for _, allowed := range p.Values {
		if allowed == value {
			return true
		}
	}
	return false
}
