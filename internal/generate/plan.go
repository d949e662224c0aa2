package generate

import (
	"errors"
	"fmt"

	"casegen/internal/cases"
	"casegen/internal/catalog"
	"casegen/internal/config"
	"casegen/internal/sheet"
	"casegen/internal/tables"
	"casegen/internal/topology"
)

// Plan is everything a run needs before the first case is processed. The base
// model and catalog are shared read-only by all cases.
type Plan struct {
	Base       *topology.Model
	Catalog    *catalog.Catalog
	Profiles   []tables.Profile
	Conditions []tables.Condition
	Cases      []cases.Case
}

// LoadPlan reads the base model and both input tables and builds the case
// matrix. Every error it returns is run-scoped.
func LoadPlan(cfg *config.ProjectConfig, schema *config.Schema) (*Plan, error) {
	base, err := topology.Load(cfg.BaseModelPath())
	if err != nil {
		return nil, err
	}

	wb, err := sheet.Open(cfg.WorkbookPath())
	if err != nil {
		return nil, err
	}
	defer wb.Close()

	profileSheet, err := readSheet(wb, cfg.Sheets.Profiles)
	if err != nil {
		return nil, err
	}
	profiles, err := tables.NormalizeProfiles(profileSheet, cfg.Sentinels.Profiles, cfg.Output.Separator)
	if err != nil {
		return nil, err
	}

	conditionSheet, err := readSheet(wb, cfg.Sheets.Conditions)
	if err != nil {
		return nil, err
	}
	conditions, err := tables.NormalizeConditions(conditionSheet, cfg.Sentinels.Conditions, cfg.Output.Separator, schema)
	if err != nil {
		return nil, err
	}

	return NewPlan(cfg, base, profiles, conditions)
}

func NewPlan(cfg *config.ProjectConfig, base *topology.Model, profiles []tables.Profile, conditions []tables.Condition) (*Plan, error) {
	cat, err := base.Catalog()
	if err != nil {
		return nil, fmt.Errorf("building catalog from %s: %w", base.Name, err)
	}
	matrix, err := cases.Build(cases.Naming{
		Base:      base.Name,
		Separator: cfg.Output.Separator,
		Extension: cfg.Output.Extension,
	}, profiles, conditions)
	if err != nil {
		return nil, err
	}
	return &Plan{
		Base:       base,
		Catalog:    cat,
		Profiles:   profiles,
		Conditions: conditions,
		Cases:      matrix,
	}, nil
}

// LoadSchema loads the optional parameter schema named by the config.
func LoadSchema(cfg *config.ProjectConfig) (*config.Schema, error) {
	if cfg.Schema == "" {
		return nil, nil
	}
	return config.LoadSchema(cfg.SchemaPath())
}

func readSheet(wb sheet.Workbook, name string) (*sheet.Table, error) {
	t, err := wb.Sheet(name)
	if err != nil {
		if errors.Is(err, sheet.ErrSheetNotFound) {
			return nil, &tables.InputFormatError{Sheet: name, Detail: wb.Path(), Err: tables.ErrSheetNotFound}
		}
		return nil, err
	}
	return t, nil
}
