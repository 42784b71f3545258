package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// DefaultConfigPath is the path to the canonical pipeline defaults file.
const DefaultConfigPath = "config/pipeline.defaults.json"

// Built-in defaults, used for any field the config file leaves out.
const (
	DefaultRawDir       = "raw_data"
	DefaultCleanDir     = "clean_data"
	DefaultSourcePrefix = "train"
	DefaultTargetOffset = 5
	DefaultDatasetFile  = "training_dataset.csv"
	DefaultModelPath    = "ml_model/number_reflectivity_knn_model"
	DefaultTestFraction = 0.3
	DefaultRandomSeed   = 21
	DefaultNeighbours   = 10
	DefaultSweepMinK    = 1
	DefaultSweepMaxK    = 11
	DefaultDBPath       = "reflectivity.db"
)

// PipelineConfig holds the settings for cleaning and training. Every field
// is optional; the Get* accessors supply defaults for unset fields.
type PipelineConfig struct {
	// Cleaning
	RawDir       *string `json:"raw_dir,omitempty"`
	CleanDir     *string `json:"clean_dir,omitempty"`
	SourcePrefix *string `json:"source_prefix,omitempty"`
	TargetOffset *int    `json:"target_offset,omitempty"`
	DatasetFile  *string `json:"dataset_file,omitempty"` // written inside clean_dir

	// Training
	ModelPath    *string  `json:"model_path,omitempty"`
	TestFraction *float64 `json:"test_fraction,omitempty"`
	RandomSeed   *uint64  `json:"random_seed,omitempty"`
	Neighbours   *int     `json:"neighbours,omitempty"`
	SweepMinK    *int     `json:"sweep_min_k,omitempty"`
	SweepMaxK    *int     `json:"sweep_max_k,omitempty"`

	// Outputs
	DBPath      *string `json:"db_path,omitempty"`
	PlotsDir    *string `json:"plots_dir,omitempty"`    // empty disables curve rendering
	MetricsFile *string `json:"metrics_file,omitempty"` // empty disables the textfile export
}

// EmptyPipelineConfig returns a PipelineConfig with all fields unset.
func EmptyPipelineConfig() *PipelineConfig {
	return &PipelineConfig{}
}

// LoadPipelineConfig loads a PipelineConfig from a JSON file. The file must
// have a .json extension and be under 1MB. Omitted fields keep their
// defaults, so partial configs are safe.
func LoadPipelineConfig(path string) (*PipelineConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyPipelineConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// MustLoadDefaultConfig loads DefaultConfigPath, searching from the current
// directory up towards the repository root. Panics if the file cannot be
// loaded; intended for test setup.
func MustLoadDefaultConfig() *PipelineConfig {
	candidates := []string{
		DefaultConfigPath,
		"../" + DefaultConfigPath,
		"../../" + DefaultConfigPath,
		"../../../" + DefaultConfigPath,
	}
	for _, path := range candidates {
		if cfg, err := LoadPipelineConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that the set values are usable.
func (c *PipelineConfig) Validate() error {
	if c.TestFraction != nil {
		if *c.TestFraction <= 0 || *c.TestFraction >= 1 {
			return fmt.Errorf("test_fraction must be between 0 and 1 exclusive, got %g", *c.TestFraction)
		}
	}
	if c.TargetOffset != nil && *c.TargetOffset < 0 {
		return fmt.Errorf("target_offset must be non-negative, got %d", *c.TargetOffset)
	}
	if c.Neighbours != nil && *c.Neighbours < 1 {
		return fmt.Errorf("neighbours must be at least 1, got %d", *c.Neighbours)
	}
	if c.SweepMinK != nil && *c.SweepMinK < 1 {
		return fmt.Errorf("sweep_min_k must be at least 1, got %d", *c.SweepMinK)
	}
	if c.SweepMaxK != nil && *c.SweepMaxK < 0 {
		return fmt.Errorf("sweep_max_k must be non-negative (0 skips the sweep), got %d", *c.SweepMaxK)
	}
	if c.GetSweepMaxK() != 0 && c.GetSweepMaxK() < c.GetSweepMinK() {
		return fmt.Errorf("sweep_max_k (%d) must not be below sweep_min_k (%d)", c.GetSweepMaxK(), c.GetSweepMinK())
	}
	if c.SourcePrefix != nil && *c.SourcePrefix != "" && filepath.Base(*c.SourcePrefix) != *c.SourcePrefix {
		return fmt.Errorf("source_prefix must not contain path separators, got %q", *c.SourcePrefix)
	}
	return nil
}

// GetRawDir returns the raw_dir value or the default.
func (c *PipelineConfig) GetRawDir() string {
	if c.RawDir == nil || *c.RawDir == "" {
		return DefaultRawDir
	}
	return *c.RawDir
}

// GetCleanDir returns the clean_dir value or the default.
func (c *PipelineConfig) GetCleanDir() string {
	if c.CleanDir == nil || *c.CleanDir == "" {
		return DefaultCleanDir
	}
	return *c.CleanDir
}

// GetSourcePrefix returns the source_prefix value or the default. An
// explicit empty prefix selects every file.
func (c *PipelineConfig) GetSourcePrefix() string {
	if c.SourcePrefix == nil {
		return DefaultSourcePrefix
	}
	return *c.SourcePrefix
}

// GetTargetOffset returns the target_offset value or the default.
func (c *PipelineConfig) GetTargetOffset() int {
	if c.TargetOffset == nil {
		return DefaultTargetOffset
	}
	return *c.TargetOffset
}

// GetDatasetFile returns the dataset_file value or the default.
func (c *PipelineConfig) GetDatasetFile() string {
	if c.DatasetFile == nil || *c.DatasetFile == "" {
		return DefaultDatasetFile
	}
	return *c.DatasetFile
}

// GetDatasetPath joins the clean directory and the dataset file name.
func (c *PipelineConfig) GetDatasetPath() string {
	return filepath.Join(c.GetCleanDir(), c.GetDatasetFile())
}

// GetModelPath returns the model_path value or the default.
func (c *PipelineConfig) GetModelPath() string {
	if c.ModelPath == nil || *c.ModelPath == "" {
		return DefaultModelPath
	}
	return *c.ModelPath
}

// GetTestFraction returns the test_fraction value or the default.
func (c *PipelineConfig) GetTestFraction() float64 {
	if c.TestFraction == nil {
		return DefaultTestFraction
	}
	return *c.TestFraction
}

// GetRandomSeed returns the random_seed value or the default.
func (c *PipelineConfig) GetRandomSeed() uint64 {
	if c.RandomSeed == nil {
		return DefaultRandomSeed
	}
	return *c.RandomSeed
}

// GetNeighbours returns the neighbours value or the default.
func (c *PipelineConfig) GetNeighbours() int {
	if c.Neighbours == nil {
		return DefaultNeighbours
	}
	return *c.Neighbours
}

// GetSweepMinK returns the sweep_min_k value or the default.
func (c *PipelineConfig) GetSweepMinK() int {
	if c.SweepMinK == nil {
		return DefaultSweepMinK
	}
	return *c.SweepMinK
}

// GetSweepMaxK returns the sweep_max_k value or the default.
func (c *PipelineConfig) GetSweepMaxK() int {
	if c.SweepMaxK == nil {
		return DefaultSweepMaxK
	}
	return *c.SweepMaxK
}

// GetDBPath returns the db_path value or the default.
func (c *PipelineConfig) GetDBPath() string {
	if c.DBPath == nil || *c.DBPath == "" {
		return DefaultDBPath
	}
	return *c.DBPath
}

// GetPlotsDir returns the plots_dir value; empty means no plots.
func (c *PipelineConfig) GetPlotsDir() string {
	if c.PlotsDir == nil {
		return ""
	}
	return *c.PlotsDir
}

// GetMetricsFile returns the metrics_file value; empty means no export.
func (c *PipelineConfig) GetMetricsFile() string {
	if c.MetricsFile == nil {
		return ""
	}
	return *c.MetricsFile
}

// Helper functions to create pointers, used by flag overrides and tests.
func PtrString(v string) *string    { return &v }
func PtrInt(v int) *int             { return &v }
func PtrUint64(v uint64) *uint64    { return &v }
func PtrFloat64(v float64) *float64 { return &v }
