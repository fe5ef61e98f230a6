// Package config loads synthgen's own ambient engine configuration: the
// validator's default tolerances and family weights, output sink
// defaults, and logging verbosity. This is distinct from a dataset
// specification document (JSON, spec §6.1) — it tunes the engine itself,
// and is optional: every field defaults sensibly when no file is given.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config is the top-level TOML document, mirroring the teacher's
// schemaFile -> tomlValidation conversion pattern: nil sub-blocks fall
// back to defaults rather than zero values.
type Config struct {
	Validation *ValidationConfig `toml:"validation"`
	Sink       *SinkConfig       `toml:"sink"`
	Logging    *LoggingConfig    `toml:"logging"`
}

// ValidationConfig tunes the post-generation validator (spec §4.6).
type ValidationConfig struct {
	QualityThreshold    float64 `toml:"quality_threshold"`
	StructuralWeight    float64 `toml:"structural_weight"`
	ValueWeight         float64 `toml:"value_weight"`
	BehavioralWeight    float64 `toml:"behavioral_weight"`
	DefaultMAETolerance float64 `toml:"default_mae_tolerance"`
	DefaultMAPETolerance float64 `toml:"default_mape_tolerance"`
}

// SinkConfig tunes the reference CSV sink (spec §6.2).
type SinkConfig struct {
	Directory string `toml:"directory"`
	Delimiter string `toml:"delimiter"`
}

// LoggingConfig tunes internal/telemetry's zap logger.
type LoggingConfig struct {
	Level string `toml:"level"` // "debug", "info", "warn", "error"
}

// Default returns the configuration used when no file is loaded.
func Default() *Config {
	return &Config{
		Validation: &ValidationConfig{
			QualityThreshold:     80,
			StructuralWeight:     0.50,
			ValueWeight:          0.30,
			BehavioralWeight:     0.20,
			DefaultMAETolerance:  0.05,
			DefaultMAPETolerance: 0.15,
		},
		Sink: &SinkConfig{
			Directory: "out",
			Delimiter: ",",
		},
		Logging: &LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads a TOML configuration file at path, layering its values over
// Default() so a file only needs to declare what it overrides. An empty
// path returns Default() unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	var file Config
	if _, err := toml.NewDecoder(f).Decode(&file); err != nil {
		return nil, fmt.Errorf("config: decode %q: %w", path, err)
	}

	if file.Validation != nil {
		cfg.Validation = mergeValidation(cfg.Validation, file.Validation)
	}
	if file.Sink != nil {
		cfg.Sink = mergeSink(cfg.Sink, file.Sink)
	}
	if file.Logging != nil {
		cfg.Logging = mergeLogging(cfg.Logging, file.Logging)
	}
	return cfg, nil
}

func mergeValidation(base, override *ValidationConfig) *ValidationConfig {
	merged := *base
	if override.QualityThreshold != 0 {
		merged.QualityThreshold = override.QualityThreshold
	}
	if override.StructuralWeight != 0 {
		merged.StructuralWeight = override.StructuralWeight
	}
	if override.ValueWeight != 0 {
		merged.ValueWeight = override.ValueWeight
	}
	if override.BehavioralWeight != 0 {
		merged.BehavioralWeight = override.BehavioralWeight
	}
	if override.DefaultMAETolerance != 0 {
		merged.DefaultMAETolerance = override.DefaultMAETolerance
	}
	if override.DefaultMAPETolerance != 0 {
		merged.DefaultMAPETolerance = override.DefaultMAPETolerance
	}
	return &merged
}

func mergeSink(base, override *SinkConfig) *SinkConfig {
	merged := *base
	if override.Directory != "" {
		merged.Directory = override.Directory
	}
	if override.Delimiter != "" {
		merged.Delimiter = override.Delimiter
	}
	return &merged
}

func mergeLogging(base, override *LoggingConfig) *LoggingConfig {
	merged := *base
	if override.Level != "" {
		merged.Level = override.Level
	}
	return &merged
}
