package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const DefaultPath = "casegen.yaml"

type ProjectConfig struct {
	Project     string           `yaml:"project"`
	Version     int              `yaml:"version"`
	BaseModel   string           `yaml:"base_model"`
	Workbook    string           `yaml:"workbook"`
	Sheets      SheetsConfig     `yaml:"sheets"`
	Sentinels   SentinelsConfig  `yaml:"sentinels"`
	Output      OutputConfig     `yaml:"output"`
	Activation  ActivationConfig `yaml:"activation"`
	Workers     int              `yaml:"workers"`
	MaxFailures int              `yaml:"max_failures"`
	Schema      string           `yaml:"schema"`
	Ledger      LedgerConfig     `yaml:"ledger"`
	MetricsFile string           `yaml:"metrics_file"`
	Log         LogConfig        `yaml:"log"`

	dir string
}

type SheetsConfig struct {
	Profiles   string `yaml:"profiles"`
	Conditions string `yaml:"conditions"`
	Catalog    string `yaml:"catalog"`
}

type SentinelsConfig struct {
	Profiles   []string `yaml:"profiles"`
	Conditions []string `yaml:"conditions"`
}

type OutputConfig struct {
	Dir          string `yaml:"dir"`
	Extension    string `yaml:"extension"`
	Separator    string `yaml:"separator"`
	Overwrite    bool   `yaml:"overwrite"`
	SkipExisting bool   `yaml:"skip_existing"`
}

type ActivationConfig struct {
	FlowParameter           string   `yaml:"flow_parameter"`
	Threshold               *float64 `yaml:"threshold"`
	RequireCompleteProfiles bool     `yaml:"require_complete_profiles"`
}

type LedgerConfig struct {
	DSN string `yaml:"dsn"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

const (
	DefaultSeparator     = "_"
	DefaultExtension     = "yaml"
	DefaultOutputDir     = "Models"
	DefaultFlowParameter = "FlowRate"
	DefaultThreshold     = 0.001
)

func LoadProjectConfig(path string) (*ProjectConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	cfg.dir = filepath.Dir(path)
	if err := applyEnv(&cfg, filepath.Join(cfg.dir, ".env")); err != nil {
		return nil, fmt.Errorf("loading project config: %w", err)
	}
	applyDefaults(&cfg)

	if err := validateProjectConfig(&cfg); err != nil {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	return &cfg, nil
}

// applyEnv overlays an optional .env file next to the config, then the
// process environment, onto the values read from YAML.
func applyEnv(cfg *ProjectConfig, envFile string) error {
	env, err := godotenv.Read(envFile)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("reading %s: %w", envFile, err)
	}
	lookup := func(key string) string {
		if v, ok := os.LookupEnv(key); ok {
			return v
		}
		return env[key]
	}

	if v := lookup("CASEGEN_LEDGER_DSN"); v != "" {
		cfg.Ledger.DSN = v
	}
	if v := lookup("CASEGEN_WORKERS"); v != "" {
		workers, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("CASEGEN_WORKERS: %w", err)
		}
		cfg.Workers = workers
	}
	if v := lookup("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := lookup("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	return nil
}

func applyDefaults(cfg *ProjectConfig) {
	if len(cfg.Sentinels.Profiles) == 0 {
		cfg.Sentinels.Profiles = []string{"Sinks", "Wells"}
	}
	if len(cfg.Sentinels.Conditions) == 0 {
		cfg.Sentinels.Conditions = []string{"Conditions"}
	}
	if cfg.Output.Dir == "" {
		cfg.Output.Dir = DefaultOutputDir
	}
	if cfg.Output.Extension == "" {
		cfg.Output.Extension = DefaultExtension
	}
	cfg.Output.Extension = strings.TrimPrefix(cfg.Output.Extension, ".")
	if cfg.Output.Separator == "" {
		cfg.Output.Separator = DefaultSeparator
	}
	if cfg.Activation.FlowParameter == "" {
		cfg.Activation.FlowParameter = DefaultFlowParameter
	}
	if cfg.Activation.Threshold == nil {
		threshold := DefaultThreshold
		cfg.Activation.Threshold = &threshold
	}
	if cfg.Workers == 0 {
		cfg.Workers = 1
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}

func validateProjectConfig(cfg *ProjectConfig) error {
	if strings.TrimSpace(cfg.Project) == "" {
		return fmt.Errorf("project name is required")
	}
	if cfg.Version != 1 {
		return fmt.Errorf("unsupported version: %d", cfg.Version)
	}
	if strings.TrimSpace(cfg.BaseModel) == "" {
		return fmt.Errorf("base_model is required")
	}
	if strings.TrimSpace(cfg.Workbook) == "" {
		return fmt.Errorf("workbook is required")
	}
	if strings.TrimSpace(cfg.Sheets.Profiles) == "" {
		return fmt.Errorf("sheets.profiles is required")
	}
	if strings.TrimSpace(cfg.Sheets.Conditions) == "" {
		return fmt.Errorf("sheets.conditions is required")
	}
	if len([]rune(cfg.Output.Separator)) != 1 {
		return fmt.Errorf("output.separator must be a single character, got %q", cfg.Output.Separator)
	}
	if strings.ContainsAny(cfg.Output.Separator, `<>:"/\|?*. `) {
		return fmt.Errorf("output.separator %q is not allowed in file names", cfg.Output.Separator)
	}
	if strings.ContainsAny(cfg.Output.Extension, `<>:"/\|?* `) {
		return fmt.Errorf("output.extension %q is not a valid extension", cfg.Output.Extension)
	}
	if *cfg.Activation.Threshold < 0 {
		return fmt.Errorf("activation.threshold must not be negative")
	}
	if cfg.Workers < 1 {
		return fmt.Errorf("workers must be at least 1")
	}
	if cfg.MaxFailures < 0 {
		return fmt.Errorf("max_failures must not be negative")
	}
	if cfg.Output.Overwrite && cfg.Output.SkipExisting {
		return fmt.Errorf("output.overwrite and output.skip_existing are mutually exclusive")
	}
	switch strings.ToLower(cfg.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("unsupported log format: %s", cfg.Log.Format)
	}
	for _, sentinel := range append(append([]string{}, cfg.Sentinels.Profiles...), cfg.Sentinels.Conditions...) {
		if strings.TrimSpace(sentinel) == "" {
			return fmt.Errorf("sentinels must not be blank")
		}
	}
	return nil
}

// Resolve makes path absolute relative to the directory holding the config
// file. Absolute paths and empty strings are returned unchanged.
func (c *ProjectConfig) Resolve(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.dir, path)
}

func (c *ProjectConfig) BaseModelPath() string {
	return c.Resolve(c.BaseModel)
}

func (c *ProjectConfig) WorkbookPath() string {
	return c.Resolve(c.Workbook)
}

func (c *ProjectConfig) SchemaPath() string {
	return c.Resolve(c.Schema)
}

// OutputDir resolves against the workbook's directory, where generated
// models sit next to the inputs that produced them.
func (c *ProjectConfig) OutputDir() string {
	if filepath.IsAbs(c.Output.Dir) {
		return c.Output.Dir
	}
	return filepath.Join(filepath.Dir(c.WorkbookPath()), c.Output.Dir)
}

func (c *ProjectConfig) Threshold() float64 {
	if c.Activation.Threshold == nil {
		return DefaultThreshold
	}
	return *c.Activation.Threshold
}
