// Package sheet reads rectangular tables out of spreadsheet workbooks. An
// .xlsx workbook, a single .csv file, or a directory of <sheet>.csv files
// are all presented through the same Workbook interface.
package sheet

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"
)

var ErrSheetNotFound = errors.New("sheet not found")

type Table struct {
	Name string
	Rows [][]string
}

// Cell returns the trimmed text at (row, col), or "" outside the table.
func (t *Table) Cell(row, col int) string {
	if t == nil || row < 0 || row >= len(t.Rows) || col < 0 || col >= len(t.Rows[row]) {
		return ""
	}
	return strings.TrimSpace(t.Rows[row][col])
}

// Width is the length of the longest row.
func (t *Table) Width() int {
	width := 0
	for _, row := range t.Rows {
		if len(row) > width {
			width = len(row)
		}
	}
	return width
}

type Workbook interface {
	Path() string
	SheetNames() []string
	Sheet(name string) (*Table, error)
	Close() error
}

func Open(path string) (Workbook, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	if info.IsDir() {
		return &csvDir{dir: path}, nil
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		f, err := excelize.OpenFile(path, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("opening workbook: %w", err)
		}
		return &xlsxBook{path: path, file: f}, nil
	case ".csv":
		return &csvFile{path: path}, nil
	default:
		return nil, fmt.Errorf("opening workbook: unsupported file type %q", filepath.Ext(path))
	}
}

type xlsxBook struct {
	path string
	file *excelize.File
}

func (b *xlsxBook) Path() string { return b.path }

func (b *xlsxBook) SheetNames() []string {
	return b.file.GetSheetList()
}

func (b *xlsxBook) Sheet(name string) (*Table, error) {
	if idx, _ := b.file.GetSheetIndex(name); idx < 0 {
		return nil, fmt.Errorf("%s: %w", name, ErrSheetNotFound)
	}
	rows, err := b.file.GetRows(name)
	if err != nil {
		return nil, fmt.Errorf("reading sheet %s: %w", name, err)
	}
	return &Table{Name: name, Rows: rows}, nil
}

func (b *xlsxBook) Close() error {
	return b.file.Close()
}

type csvFile struct {
	path string
}

func (c *csvFile) Path() string { return c.path }

func (c *csvFile) SheetNames() []string {
	return []string{stem(c.path)}
}

// Sheet ignores the requested name when it cannot be satisfied otherwise:
// a lone CSV file holds exactly one table.
func (c *csvFile) Sheet(name string) (*Table, error) {
	rows, err := readCSV(c.path)
	if err != nil {
		return nil, err
	}
	return &Table{Name: name, Rows: rows}, nil
}

func (c *csvFile) Close() error { return nil }

type csvDir struct {
	dir string
}

func (d *csvDir) Path() string { return d.dir }

func (d *csvDir) SheetNames() []string {
	matches, _ := filepath.Glob(filepath.Join(d.dir, "*.csv"))
	names := make([]string, 0, len(matches))
	for _, match := range matches {
		names = append(names, stem(match))
	}
	sort.Strings(names)
	return names
}

func (d *csvDir) Sheet(name string) (*Table, error) {
	path := filepath.Join(d.dir, name+".csv")
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", name, ErrSheetNotFound)
		}
		return nil, fmt.Errorf("reading sheet %s: %w", name, err)
	}
	rows, err := readCSV(path)
	if err != nil {
		return nil, err
	}
	return &Table{Name: name, Rows: rows}, nil
}

func (d *csvDir) Close() error { return nil }

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if len(rows) > 0 && len(rows[0]) > 0 {
		rows[0][0] = strings.TrimPrefix(rows[0][0], "\ufeff")
	}
	return rows, nil
}

func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
