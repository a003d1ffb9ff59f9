// Package config resolves wfgraph settings.
// Priority: CLI flags > env vars > settings file > defaults.
package config

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"strconv"

	"github.com/rendis/wfgraph/pkg/schema"
)

const (
	// EnvConfigPath names the settings file to load.
	EnvConfigPath = "WFGRAPH_CONFIG"
	// DefaultConfigPath is tried when no settings file is named.
	DefaultConfigPath = "wfgraph.json"
)

// Config holds all wfgraph settings.
type Config struct {
	OutputDir            string `json:"output_dir" validate:"required"`
	WorkDir              string `json:"work_dir" validate:"required"`
	DefaultName          string `json:"default_name" validate:"required,excludesall=/\\"`
	Prefix               string `json:"prefix" validate:"excludesall= :/"`
	StatusChangeExecutor string `json:"status_change_executor" validate:"required"`
	LogLevel             string `json:"log_level" validate:"oneof=debug info warn error"`
	Mermaid              bool   `json:"mermaid"`
	Parallel             int    `json:"parallel" validate:"gte=0,lte=64"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		OutputDir:            "output",
		WorkDir:              ".",
		DefaultName:          "output",
		Prefix:               "workflow",
		StatusChangeExecutor: "WORKFLOWCHANGESTATUS",
		LogLevel:             "info",
	}
}

// Load layers defaults, the settings file and WFGRAPH_* env vars, then
// validates the result. path names the settings file; when empty,
// WFGRAPH_CONFIG is consulted and then ./wfgraph.json, which may be absent.
// A file named explicitly must exist. The returned report carries the
// warnings of a successful load and every issue of a failed one.
func Load(path string) (Config, *schema.ValidationResult, error) {
	cfg := Default()
	report := &schema.ValidationResult{}

	explicit := true
	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}
	if path == "" {
		path, explicit = DefaultConfigPath, false
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		fileReport, err := validateFile(data)
		if err != nil {
			return cfg, report, err
		}
		report.Merge(fileReport)
		if !report.Valid() {
			return cfg, report, report.ToError(schema.ErrCodeConfig)
		}
		if err := json.Unmarshal(data, &cfg); err != nil {
			return cfg, report, schema.NewError(schema.ErrCodeConfig, "decode settings file").WithCause(err)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	default:
		return cfg, report, schema.NewErrorf(schema.ErrCodeConfig, "read settings file %s", path).
			WithCause(err).WithDetails(map[string]any{"path": path})
	}

	if err := applyEnv(&cfg); err != nil {
		return cfg, report, err
	}
	report.Merge(cfg.check())
	return cfg, report, report.ToError(schema.ErrCodeConfig)
}

func applyEnv(cfg *Config) error {
	strs := []struct {
		env string
		dst *string
	}{
		{"WFGRAPH_OUTPUT_DIR", &cfg.OutputDir},
		{"WFGRAPH_WORK_DIR", &cfg.WorkDir},
		{"WFGRAPH_DEFAULT_NAME", &cfg.DefaultName},
		{"WFGRAPH_PREFIX", &cfg.Prefix},
		{"WFGRAPH_STATUS_CHANGE_EXECUTOR", &cfg.StatusChangeExecutor},
		{"WFGRAPH_LOG_LEVEL", &cfg.LogLevel},
	}
	for _, s := range strs {
		if v := os.Getenv(s.env); v != "" {
			*s.dst = v
		}
	}

	if v := os.Getenv("WFGRAPH_MERMAID"); v != "" {
		cfg.Mermaid = v == "true" || v == "1"
	}
	if v := os.Getenv("WFGRAPH_PARALLEL"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return schema.NewErrorf(schema.ErrCodeConfig, "WFGRAPH_PARALLEL: %q is not an integer", v)
		}
		cfg.Parallel = n
	}
	return nil
}
