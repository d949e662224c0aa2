package catalog

import "fmt"

type UnknownComponentError struct {
	Name string
}

func (e *UnknownComponentError) Error() string {
	return fmt.Sprintf("unknown component %q", e.Name)
}

type DuplicateComponentError struct {
	Name   string
	First  ComponentType
	Second ComponentType
}

func (e *DuplicateComponentError) Error() string {
	return fmt.Sprintf("duplicate component %q (%s, %s)", e.Name, e.First, e.Second)
}
