package tables

import (
	"fmt"
	"strconv"
	"strings"

	"casegen/internal/sheet"
)

// Profile is one named flow scenario: a column of the well profile table.
type Profile struct {
	Name    string
	Entries []FlowEntry
}

type FlowEntry struct {
	Sink  string
	Value float64
	Row   int
}

func (p Profile) Flow(sink string) (float64, bool) {
	for _, e := range p.Entries {
		if e.Sink == sink {
			return e.Value, true
		}
	}
	return 0, false
}

func (p Profile) Sinks() []string {
	sinks := make([]string, len(p.Entries))
	for i, e := range p.Entries {
		sinks[i] = e.Sink
	}
	return sinks
}

// NormalizeProfiles reads the well profile table. The header row is the first
// row whose leading cell is a sentinel; the first column holds sink names and
// every further header cell names a profile. Blank flow cells are left out of
// the profile instead of being read as zero.
func NormalizeProfiles(t *sheet.Table, sentinels []string, separator string) ([]Profile, error) {
	header, _, err := findHeader(t, sentinels)
	if err != nil {
		return nil, err
	}

	type column struct {
		index   int
		profile *Profile
	}
	var columns []column
	var profiles []*Profile
	for col := 1; col < t.Width(); col++ {
		name := t.Cell(header, col)
		if name == "" {
			if columnHasData(t, header+1, col) {
				return nil, cellError(t, header, col, "", ErrInvalidColumnName, "profile column has no name")
			}
			continue
		}
		if separator != "" && strings.Contains(name, separator) {
			return nil, cellError(t, header, col, name, ErrInvalidColumnName,
				fmt.Sprintf("profile name must not contain %q", separator))
		}
		p := &Profile{Name: name}
		profiles = append(profiles, p)
		columns = append(columns, column{index: col, profile: p})
	}

	seen := make(map[string]int)
	for row := header + 1; row < len(t.Rows); row++ {
		sink := t.Cell(row, 0)
		if sink == "" {
			continue
		}
		if first, ok := seen[sink]; ok {
			return nil, cellError(t, row, 0, sink, ErrDuplicateEntry,
				fmt.Sprintf("sink already listed on row %d", first+1))
		}
		seen[sink] = row

		for _, c := range columns {
			raw := t.Cell(row, c.index)
			if raw == "" {
				continue
			}
			value, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, cellError(t, row, c.index, c.profile.Name, ErrInvalidValue,
					fmt.Sprintf("flow for %s is not a number: %q", sink, raw))
			}
			c.profile.Entries = append(c.profile.Entries, FlowEntry{Sink: sink, Value: value, Row: row + 1})
		}
	}

	result := make([]Profile, len(profiles))
	for i, p := range profiles {
		result[i] = *p
	}
	return result, nil
}
