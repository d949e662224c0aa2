package topology

import (
	"fmt"

	"casegen/internal/catalog"
)

const (
	sectionOriginX  = 4000
	sectionSpacingY = 100
	componentStep   = 100
)

// Build lays out one chain per section and connects consecutive components.
// Junctions are inserted wherever a flowline would otherwise have an open end
// or touch another flowline directly.
func Build(name string, sections [][]catalog.Component) (*Model, error) {
	m := New(name)
	for idx, section := range sections {
		chain := insertJunctions(section, idx)
		for i, component := range chain {
			var params map[string]Value
			if component.Type != catalog.Flowline {
				params = map[string]Value{
					"X": Number(float64(sectionOriginX + i*componentStep)),
					"Y": Number(float64(idx * sectionSpacingY)),
				}
			}
			if existing, ok := m.Component(component.Name); ok {
				if existing.Type != component.Type {
					return nil, fmt.Errorf("section %d: component %s declared as %s and %s", idx, component.Name, existing.Type, component.Type)
				}
			} else if err := m.AddComponent(component.Name, component.Type, params); err != nil {
				return nil, fmt.Errorf("section %d: %w", idx, err)
			}
			if i == 0 {
				continue
			}
			if err := m.Connect(chain[i-1].Name, component.Name); err != nil {
				return nil, fmt.Errorf("section %d: %w", idx, err)
			}
		}
	}
	return m, nil
}

func insertJunctions(section []catalog.Component, idx int) []catalog.Component {
	if len(section) == 0 {
		return nil
	}
	counter := 1
	junction := func() catalog.Component {
		j := catalog.Component{Name: fmt.Sprintf("LJ(%d_%d)", idx, counter), Type: catalog.Junction}
		counter++
		return j
	}

	out := make([]catalog.Component, 0, len(section)+2)
	for i, component := range section {
		if i == 0 && component.Type == catalog.Flowline {
			out = append(out, junction())
		}
		if i > 0 && section[i-1].Type == catalog.Flowline && component.Type == catalog.Flowline {
			out = append(out, junction())
		}
		out = append(out, component)
	}
	if section[len(section)-1].Type == catalog.Flowline {
		out = append(out, junction())
	}
	return out
}
