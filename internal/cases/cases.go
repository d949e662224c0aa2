// Package cases builds the matrix of cases to generate: one per pair of
// profile and condition, each with a derived artifact name.
package cases

import (
	"strings"
	"unicode"

	"casegen/internal/tables"
)

type Naming struct {
	Base      string
	Separator string
	Extension string
}

type Case struct {
	Index     int
	Profile   tables.Profile
	Condition tables.Condition
	// Name is the sanitized base, profile and condition joined by the
	// separator. ArtifactName adds the extension.
	Name         string
	ArtifactName string
}

// ID identifies the case by its unsanitized inputs.
func (c Case) ID() string {
	return c.Profile.Name + "/" + c.Condition.Name
}

// Build returns one case per (profile, condition) pair in profile-major
// order. Every name is derived and checked for collisions before returning,
// so a structurally invalid matrix never reaches materialization.
func Build(naming Naming, profiles []tables.Profile, conditions []tables.Condition) ([]Case, error) {
	if len(profiles) == 0 {
		return nil, &EmptyAxisError{Axis: "profiles"}
	}
	if len(conditions) == 0 {
		return nil, &EmptyAxisError{Axis: "conditions"}
	}

	base, err := sanitizePart("base model", naming.Base, naming.Separator)
	if err != nil {
		return nil, err
	}
	profileNames := make([]string, len(profiles))
	for i, p := range profiles {
		if profileNames[i], err = sanitizePart("profile", p.Name, naming.Separator); err != nil {
			return nil, err
		}
	}
	conditionNames := make([]string, len(conditions))
	for i, c := range conditions {
		if conditionNames[i], err = sanitizePart("condition", c.Name, naming.Separator); err != nil {
			return nil, err
		}
	}

	ext := strings.TrimPrefix(naming.Extension, ".")
	result := make([]Case, 0, len(profiles)*len(conditions))
	seen := make(map[string]string, cap(result))
	for i, p := range profiles {
		for j, c := range conditions {
			name := strings.Join([]string{base, profileNames[i], conditionNames[j]}, naming.Separator)
			cs := Case{
				Index:        len(result),
				Profile:      p,
				Condition:    c,
				Name:         name,
				ArtifactName: name,
			}
			if ext != "" {
				cs.ArtifactName = name + "." + ext
			}

			key := strings.ToLower(name)
			if first, ok := seen[key]; ok {
				return nil, &DuplicateCaseNameError{Name: name, First: first, Second: cs.ID()}
			}
			seen[key] = cs.ID()
			result = append(result, cs)
		}
	}
	return result, nil
}

func sanitizePart(axis, raw, separator string) (string, error) {
	clean := Sanitize(raw, separator)
	if clean == "" {
		return "", &EmptyCaseNameError{Axis: axis, Raw: raw}
	}
	return clean, nil
}

// Sanitize replaces characters that are illegal in file names, control
// characters and the separator with "-", then trims surrounding spaces and
// dots.
func Sanitize(s, separator string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case strings.ContainsRune(`<>:"/\|?*`, r), unicode.IsControl(r):
			b.WriteRune('-')
		case separator != "" && strings.ContainsRune(separator, r):
			b.WriteRune('-')
		default:
			b.WriteRune(r)
		}
	}
	return strings.Trim(b.String(), " .")
}
