package tables

import (
	"errors"
	"fmt"
	"strings"

	"casegen/internal/sheet"
)

var (
	ErrHeaderNotFound       = errors.New("header row not found")
	ErrInvalidColumnName    = errors.New("invalid column name")
	ErrInvalidValue         = errors.New("invalid value")
	ErrMissingColumn        = errors.New("missing mandatory column")
	ErrUnknownParameter     = errors.New("unknown parameter")
	ErrUnknownComponentType = errors.New("unknown component type")
	ErrDuplicateEntry       = errors.New("duplicate entry")
	ErrSheetNotFound        = sheet.ErrSheetNotFound
)

// InputFormatError reports a problem with an input table. Row and Column are
// 1-based spreadsheet coordinates; zero means the error is not tied to a cell.
type InputFormatError struct {
	Sheet  string
	Row    int
	Column int
	Header string
	Detail string
	Err    error
}

func (e *InputFormatError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "sheet %q", e.Sheet)
	if e.Row > 0 {
		fmt.Fprintf(&b, " row %d", e.Row)
	}
	if e.Column > 0 {
		fmt.Fprintf(&b, " column %d", e.Column)
	}
	if e.Header != "" {
		fmt.Fprintf(&b, " (%s)", e.Header)
	}
	fmt.Fprintf(&b, ": %v", e.Err)
	if e.Detail != "" {
		fmt.Fprintf(&b, ": %s", e.Detail)
	}
	return b.String()
}

func (e *InputFormatError) Unwrap() error {
	return e.Err
}

func cellError(t *sheet.Table, row, col int, header string, err error, detail string) *InputFormatError {
	return &InputFormatError{
		Sheet:  t.Name,
		Row:    row + 1,
		Column: col + 1,
		Header: header,
		Detail: detail,
		Err:    err,
	}
}
