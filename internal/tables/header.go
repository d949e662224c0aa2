package tables

import (
	"fmt"
	"strings"

	"casegen/internal/sheet"
)

// findHeader returns the first row whose leading cell equals one of the
// sentinels (case-insensitive), and the sentinel that matched.
func findHeader(t *sheet.Table, sentinels []string) (int, string, error) {
	for row := range t.Rows {
		first := t.Cell(row, 0)
		for _, sentinel := range sentinels {
			if strings.EqualFold(first, strings.TrimSpace(sentinel)) {
				return row, first, nil
			}
		}
	}
	return 0, "", &InputFormatError{
		Sheet:  t.Name,
		Detail: fmt.Sprintf("no row starts with any of %q", sentinels),
		Err:    ErrHeaderNotFound,
	}
}

func columnHasData(t *sheet.Table, from, col int) bool {
	for row := from; row < len(t.Rows); row++ {
		if t.Cell(row, col) != "" {
			return true
		}
	}
	return false
}
