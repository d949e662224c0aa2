package resolve

import (
	"fmt"
	"strings"

	"casegen/internal/catalog"
)

// ComponentTypeMismatchError is returned when a row declares a component
// type that disagrees with the type recorded in the catalog.
type ComponentTypeMismatchError struct {
	Name     string
	Declared catalog.ComponentType
	Recorded catalog.ComponentType
}

func (e *ComponentTypeMismatchError) Error() string {
	return fmt.Sprintf("component %q is declared as %s but the model records %s", e.Name, e.Declared, e.Recorded)
}

// ConflictingOverrideError is returned when one case writes the same
// (component, parameter) key twice. Identical values still conflict.
type ConflictingOverrideError struct {
	Component string
	Parameter string
	Sources   []string
}

func (e *ConflictingOverrideError) Error() string {
	return fmt.Sprintf("conflicting overrides for %s.%s from %s", e.Component, e.Parameter, strings.Join(e.Sources, " and "))
}

type IncompleteProfileError struct {
	Profile string
	Missing []string
}

func (e *IncompleteProfileError) Error() string {
	return fmt.Sprintf("profile %q has no flow for sinks %s", e.Profile, strings.Join(e.Missing, ", "))
}
