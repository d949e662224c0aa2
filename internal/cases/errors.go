package cases

import (
	"errors"
	"fmt"
)

var ErrEmptyAxis = errors.New("empty case axis")

type EmptyAxisError struct {
	Axis string
}

func (e *EmptyAxisError) Error() string {
	return fmt.Sprintf("no %s to build cases from", e.Axis)
}

func (e *EmptyAxisError) Is(target error) bool {
	return target == ErrEmptyAxis
}

// DuplicateCaseNameError reports two cases whose derived names collide after
// sanitizing. First and Second identify the cases as profile/condition.
type DuplicateCaseNameError struct {
	Name   string
	First  string
	Second string
}

func (e *DuplicateCaseNameError) Error() string {
	return fmt.Sprintf("case name %q is produced by both %s and %s", e.Name, e.First, e.Second)
}

type EmptyCaseNameError struct {
	Axis string
	Raw  string
}

func (e *EmptyCaseNameError) Error() string {
	return fmt.Sprintf("%s name %q is empty after sanitizing", e.Axis, e.Raw)
}
