package main

import (
	"os"

	"casegen/internal/config"
	"casegen/internal/generate"
	"casegen/internal/logging"
)

type project struct {
	cfg    *config.ProjectConfig
	schema *config.Schema
	log    logging.Logger
}

func loadProject() (*project, error) {
	cfg, err := config.LoadProjectConfig(configPath)
	if err != nil {
		return nil, err
	}
	schema, err := generate.LoadSchema(cfg)
	if err != nil {
		return nil, err
	}
	log := logging.New(logging.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Writer: os.Stderr,
	})
	return &project{cfg: cfg, schema: schema, log: log}, nil
}
