package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// DefaultConfigPath is the path to the canonical pipeline defaults file.
// This is the single source of truth for all default pipeline values.
const DefaultConfigPath = "config/pipeline.defaults.json"

// PipelineConfig represents the root configuration for the conversion
// pipeline. All fields are pointers so a partial JSON file only overrides
// what it names; the Get* methods supply defaults for the rest.
type PipelineConfig struct {
	// Conversion params
	AnnotationsDir *string `json:"annotations_dir,omitempty"`
	OutputDir      *string `json:"output_dir,omitempty"`
	DatasetSplit   *string `json:"dataset_split,omitempty"` // "train", "val", or "" to infer from the file name
	CleanOutput    *bool   `json:"clean_output,omitempty"`

	// Database params
	DatabasePath *string `json:"database_path,omitempty"`

	// Reporting params
	ReportPath *string `json:"report_path,omitempty"`
}

// Helper functions to create pointers
func ptrBool(v bool) *bool       { return &v }
func ptrString(v string) *string { return &v }

// DefaultPipelineConfig returns a PipelineConfig with every field set to
// its default value.
func DefaultPipelineConfig() *PipelineConfig {
	return &PipelineConfig{
		AnnotationsDir: ptrString("data/annotations"),
		OutputDir:      ptrString("data/parquet"),
		DatasetSplit:   ptrString(""),
		CleanOutput:    ptrBool(false),
		DatabasePath:   ptrString("data/seadronessee.db"),
		ReportPath:     ptrString("data/report.html"),
	}
}

// EmptyPipelineConfig returns a PipelineConfig with all fields set to nil.
// Use LoadPipelineConfig to load actual values from a file.
func EmptyPipelineConfig() *PipelineConfig {
	return &PipelineConfig{}
}

// LoadPipelineConfig loads a PipelineConfig from a JSON file.
// The file is validated to ensure it has a .json extension and is under the max file size.
// Fields omitted from the JSON file retain their default values, so
// partial configs are safe.
func LoadPipelineConfig(path string) (*PipelineConfig, error) {
	// Validate the config file path.
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	// Check file size for safety (max 1MB)
	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Parse JSON into empty config. The Get* methods provide fallback
	// defaults for any fields not specified in the JSON.
	cfg := EmptyPipelineConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	// Validate the configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// MustLoadDefaultConfig loads the canonical pipeline defaults from DefaultConfigPath.
// It searches for the file in the current directory and common parent directories.
// Panics if the file cannot be loaded, intended for test setup.
func MustLoadDefaultConfig() *PipelineConfig {
	// Try paths from current dir up to repo root
	candidates := []string{
		DefaultConfigPath,
		"../../" + DefaultConfigPath,    // from internal/config/
		"../../../" + DefaultConfigPath, // deeper packages
	}
	for _, path := range candidates {
		if cfg, err := LoadPipelineConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that the configuration values are valid.
func (c *PipelineConfig) Validate() error {
	// Validate DatasetSplit if set
	if c.DatasetSplit != nil && *c.DatasetSplit != "" {
		switch *c.DatasetSplit {
		case "train", "val":
		default:
			return fmt.Errorf("dataset_split must be \"train\" or \"val\", got %q", *c.DatasetSplit)
		}
	}

	// An explicitly empty output dir would write into the working
	// directory by accident.
	if c.OutputDir != nil && *c.OutputDir == "" {
		return fmt.Errorf("output_dir must not be empty")
	}
	if c.AnnotationsDir != nil && *c.AnnotationsDir == "" {
		return fmt.Errorf("annotations_dir must not be empty")
	}

	return nil
}

// GetAnnotationsDir returns the annotations_dir value or the default.
func (c *PipelineConfig) GetAnnotationsDir() string {
	if c.AnnotationsDir == nil || *c.AnnotationsDir == "" {
		return "data/annotations" // default
	}
	return *c.AnnotationsDir
}

// GetOutputDir returns the output_dir value or the default.
func (c *PipelineConfig) GetOutputDir() string {
	if c.OutputDir == nil || *c.OutputDir == "" {
		return "data/parquet" // default
	}
	return *c.OutputDir
}

// GetDatasetSplit returns the dataset_split value. Empty means infer the
// split from the input file name.
func (c *PipelineConfig) GetDatasetSplit() string {
	if c.DatasetSplit == nil {
		return ""
	}
	return *c.DatasetSplit
}

// GetCleanOutput returns the clean_output value or the default.
func (c *PipelineConfig) GetCleanOutput() bool {
	if c.CleanOutput == nil {
		return false // default: keep previous output
	}
	return *c.CleanOutput
}

// GetDatabasePath returns the database_path value or the default.
func (c *PipelineConfig) GetDatabasePath() string {
	if c.DatabasePath == nil || *c.DatabasePath == "" {
		return "data/seadronessee.db" // default
	}
	return *c.DatabasePath
}

// GetReportPath returns the report_path value or the default.
func (c *PipelineConfig) GetReportPath() string {
	if c.ReportPath == nil || *c.ReportPath == "" {
		return "data/report.html" // default
	}
	return *c.ReportPath
}
