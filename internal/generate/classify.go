package generate

import (
	"errors"

	"casegen/internal/cases"
	"casegen/internal/catalog"
	"casegen/internal/tables"
)

type Scope int

const (
	// ScopeCase errors fail one case; the run continues.
	ScopeCase Scope = iota
	// ScopeRun errors stop the run before any case is processed.
	ScopeRun
)

func (s Scope) String() string {
	if s == ScopeRun {
		return "run"
	}
	return "case"
}

// Classify reports whether err is a structural input problem or a failure of
// a single case.
func Classify(err error) Scope {
	var (
		formatErr    *tables.InputFormatError
		duplicateErr *cases.DuplicateCaseNameError
		emptyNameErr *cases.EmptyCaseNameError
		catalogErr   *catalog.DuplicateComponentError
	)
	switch {
	case errors.As(err, &formatErr),
		errors.Is(err, cases.ErrEmptyAxis),
		errors.As(err, &duplicateErr),
		errors.As(err, &emptyNameErr),
		errors.As(err, &catalogErr):
		return ScopeRun
	}
	return ScopeCase
}
