package generate

import (
	"fmt"

	"casegen/internal/config"
	"casegen/internal/sheet"
	"casegen/internal/tables"
	"casegen/internal/topology"
)

// BuildModel lays out a new base model from the workbook's component catalog
// sheet. The returned CatalogSheet reports whether a trailing column was
// ignored.
func BuildModel(cfg *config.ProjectConfig, name string) (*topology.Model, *tables.CatalogSheet, error) {
	if cfg.Sheets.Catalog == "" {
		return nil, nil, fmt.Errorf("sheets.catalog is not configured")
	}

	wb, err := sheet.Open(cfg.WorkbookPath())
	if err != nil {
		return nil, nil, err
	}
	defer wb.Close()

	t, err := readSheet(wb, cfg.Sheets.Catalog)
	if err != nil {
		return nil, nil, err
	}
	listing, err := tables.NormalizeCatalogSheet(t)
	if err != nil {
		return nil, nil, err
	}
	if name == "" {
		name = topology.Stem(cfg.BaseModelPath())
	}
	model, err := topology.Build(name, listing.Sections)
	if err != nil {
		return nil, nil, fmt.Errorf("building %s: %w", name, err)
	}
	return model, listing, nil
}
