// Package resolve turns one case into the boundary values to apply to the
// base model and decides which sinks flow.
package resolve

import (
	"fmt"
	"sort"
	"strings"

	"casegen/internal/cases"
	"casegen/internal/catalog"
	"casegen/internal/topology"
)

// FlowRateTypeParameter names, on every sink a profile addresses, which
// parameter carries its flow.
const FlowRateTypeParameter = "FlowRateType"

type Key struct {
	Component string
	Parameter string
}

type SettingKey struct {
	Namespace catalog.ComponentType
	Parameter string
}

type Options struct {
	FlowParameter   string
	RequireComplete bool
}

// ResolvedBoundarySet is the conflict-free set of values for one case. It is
// read-only once Resolve returns.
type ResolvedBoundarySet struct {
	Case          string
	FlowParameter string

	parameters map[Key]topology.Value
	settings   map[SettingKey]topology.Value
	sources    map[string]string
}

func (s *ResolvedBoundarySet) Parameter(component, parameter string) (topology.Value, bool) {
	v, ok := s.parameters[Key{Component: component, Parameter: parameter}]
	return v, ok
}

func (s *ResolvedBoundarySet) Setting(namespace catalog.ComponentType, parameter string) (topology.Value, bool) {
	v, ok := s.settings[SettingKey{Namespace: namespace, Parameter: parameter}]
	return v, ok
}

// Flow returns the resolved flow of a sink when it is numeric.
func (s *ResolvedBoundarySet) Flow(sink string) (float64, bool) {
	v, ok := s.Parameter(sink, s.FlowParameter)
	if !ok {
		return 0, false
	}
	return v.Float()
}

// Source names the row that produced a component parameter.
func (s *ResolvedBoundarySet) Source(component, parameter string) string {
	return s.sources[parameterID(component, parameter)]
}

// Parameters returns the component keys sorted by component then parameter.
func (s *ResolvedBoundarySet) Parameters() []Key {
	keys := make([]Key, 0, len(s.parameters))
	for k := range s.parameters {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Component != keys[j].Component {
			return keys[i].Component < keys[j].Component
		}
		return keys[i].Parameter < keys[j].Parameter
	})
	return keys
}

func (s *ResolvedBoundarySet) Settings() []SettingKey {
	keys := make([]SettingKey, 0, len(s.settings))
	for k := range s.settings {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Namespace != keys[j].Namespace {
			return keys[i].Namespace < keys[j].Namespace
		}
		return keys[i].Parameter < keys[j].Parameter
	})
	return keys
}

func (s *ResolvedBoundarySet) Len() int {
	return len(s.parameters) + len(s.settings)
}

// claim records source as the writer of id, or reports a conflict with the
// earlier writer.
func (s *ResolvedBoundarySet) claim(id, component, parameter, source string) error {
	if prior, ok := s.sources[id]; ok {
		return &ConflictingOverrideError{Component: component, Parameter: parameter, Sources: []string{prior, source}}
	}
	s.sources[id] = source
	return nil
}

func (s *ResolvedBoundarySet) putParameter(key Key, value topology.Value, source string) error {
	if err := s.claim(parameterID(key.Component, key.Parameter), key.Component, key.Parameter, source); err != nil {
		return err
	}
	s.parameters[key] = value
	return nil
}

func (s *ResolvedBoundarySet) putSetting(key SettingKey, value topology.Value, source string) error {
	namespace := string(key.Namespace)
	if err := s.claim(settingID(namespace, key.Parameter), namespace, key.Parameter, source); err != nil {
		return err
	}
	s.settings[key] = value
	return nil
}

// Parameter names are matched case-insensitively; component names are not.
func parameterID(component, parameter string) string {
	return component + "\x00" + strings.ToLower(parameter)
}

func settingID(namespace, parameter string) string {
	return "\x01" + namespace + "\x00" + strings.ToLower(parameter)
}

// canonical returns the spelling of parameter used by the profile keyspace
// when it names the flow or flow-type parameter.
func canonical(parameter, flowParameter string) string {
	switch {
	case strings.EqualFold(parameter, flowParameter):
		return flowParameter
	case strings.EqualFold(parameter, FlowRateTypeParameter):
		return FlowRateTypeParameter
	}
	return parameter
}

// Resolve merges the case's profile flows and condition overrides. Every
// component name is resolved through the catalog first; any failure aborts
// the case and no partial set is returned.
func Resolve(c cases.Case, cat *catalog.Catalog, opts Options) (*ResolvedBoundarySet, error) {
	flowParameter := opts.FlowParameter
	if flowParameter == "" {
		flowParameter = "FlowRate"
	}
	set := &ResolvedBoundarySet{
		Case:          c.Name,
		FlowParameter: flowParameter,
		parameters:    make(map[Key]topology.Value),
		settings:      make(map[SettingKey]topology.Value),
		sources:       make(map[string]string),
	}

	for _, entry := range c.Profile.Entries {
		if err := expectType(cat, entry.Sink, catalog.Sink); err != nil {
			return nil, fmt.Errorf("profile %s: %w", c.Profile.Name, err)
		}
		source := fmt.Sprintf("profile %s row %d", c.Profile.Name, entry.Row)
		key := Key{Component: entry.Sink, Parameter: flowParameter}
		if err := set.putParameter(key, topology.Number(entry.Value), source); err != nil {
			return nil, err
		}
		key = Key{Component: entry.Sink, Parameter: FlowRateTypeParameter}
		if err := set.putParameter(key, topology.Text(flowParameter), source); err != nil {
			return nil, err
		}
	}

	if opts.RequireComplete {
		var missing []string
		for _, sink := range cat.OfType(catalog.Sink) {
			if _, ok := set.parameters[Key{Component: sink.Name, Parameter: flowParameter}]; !ok {
				missing = append(missing, sink.Name)
			}
		}
		if len(missing) > 0 {
			return nil, &IncompleteProfileError{Profile: c.Profile.Name, Missing: missing}
		}
	}

	for _, entry := range c.Condition.Entries {
		source := fmt.Sprintf("condition %s row %d", c.Condition.Name, entry.Row)
		if entry.IsSetting() {
			key := SettingKey{Namespace: entry.ComponentType, Parameter: entry.Parameter}
			if err := set.putSetting(key, entry.Value, source); err != nil {
				return nil, err
			}
			continue
		}

		if err := expectType(cat, entry.ComponentName, entry.ComponentType); err != nil {
			return nil, fmt.Errorf("condition %s row %d: %w", c.Condition.Name, entry.Row, err)
		}
		key := Key{Component: entry.ComponentName, Parameter: canonical(entry.Parameter, flowParameter)}
		if err := set.putParameter(key, entry.Value, source); err != nil {
			return nil, err
		}
	}

	return set, nil
}

func expectType(cat *catalog.Catalog, name string, declared catalog.ComponentType) error {
	component, err := cat.Resolve(name)
	if err != nil {
		return err
	}
	if component.Type != declared {
		return &ComponentTypeMismatchError{Name: name, Declared: declared, Recorded: component.Type}
	}
	return nil
}
