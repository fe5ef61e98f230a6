// Package main contains a thin cobra-based CLI wrapper over the synthgen
// library: "gensynth generate" materializes a specification to a CSV
// sink, "gensynth validate" scores an already-generated dataset. This is
// a convenience wrapper, not the library's specified surface.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"synthgen/internal/config"
	"synthgen/internal/core"
	"synthgen/internal/exec"
	"synthgen/internal/sink/csv"
	"synthgen/internal/telemetry"
	"synthgen/internal/validate"
)

type generateFlags struct {
	specPath   string
	outDir     string
	seed       uint64
	configPath string
}

type validateFlags struct {
	specPath   string
	dataDir    string
	configPath string
	threshold  float64
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "gensynth",
		Short: "Synthetic relational dataset generator",
	}

	rootCmd.AddCommand(generateCmd())
	rootCmd.AddCommand(validateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func generateCmd() *cobra.Command {
	flags := &generateFlags{}
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a dataset from a specification",
		RunE: func(_ *cobra.Command, _ []string) error {
			return runGenerate(flags)
		},
	}
	cmd.Flags().StringVar(&flags.specPath, "spec", "", "Path to the specification JSON file (required)")
	cmd.Flags().StringVar(&flags.outDir, "out", "out", "Output directory for the generated CSV dataset")
	cmd.Flags().Uint64Var(&flags.seed, "seed", 42, "Master seed for deterministic generation")
	cmd.Flags().StringVar(&flags.configPath, "config", "", "Optional engine configuration TOML file")
	return cmd
}

func validateCmd() *cobra.Command {
	flags := &validateFlags{}
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Score an already-generated dataset against its specification",
		RunE: func(_ *cobra.Command, _ []string) error {
			return runValidate(flags)
		},
	}
	cmd.Flags().StringVar(&flags.specPath, "spec", "", "Path to the specification JSON file (required)")
	cmd.Flags().StringVar(&flags.dataDir, "dir", "", "Directory containing the generated CSV dataset (required)")
	cmd.Flags().StringVar(&flags.configPath, "config", "", "Optional engine configuration TOML file")
	cmd.Flags().Float64Var(&flags.threshold, "threshold", 0, "Quality score threshold; 0 uses the config/engine default")
	return cmd
}

func runGenerate(flags *generateFlags) error {
	if flags.specPath == "" {
		return fmt.Errorf("--spec is required")
	}

	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return err
	}
	logger, err := telemetry.NewLogger(cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	spec, err := core.LoadFile(flags.specPath)
	if err != nil {
		return fmt.Errorf("failed to load specification: %w", err)
	}
	if err := spec.Validate(); err != nil {
		return fmt.Errorf("specification failed preflight validation: %w", err)
	}

	logger.Info("starting generation run", zap.String("spec", flags.specPath), zap.Uint64("seed", flags.seed))

	e := &exec.Executor{Spec: spec, MasterSeed: flags.seed, Logger: logger}
	tables, err := e.Run()
	if err != nil {
		return fmt.Errorf("generation failed: %w", err)
	}

	outDir := flags.outDir
	if outDir == "" {
		outDir = cfg.Sink.Directory
	}
	s, err := csv.New(outDir, spec, flags.seed)
	if err != nil {
		return fmt.Errorf("failed to initialize sink: %w", err)
	}
	for _, node := range spec.Nodes {
		t, ok := tables[node.Name]
		if !ok {
			continue
		}
		if err := s.WriteTable(t); err != nil {
			return fmt.Errorf("failed to write table %q: %w", node.Name, err)
		}
	}
	if err := s.Close(); err != nil {
		return fmt.Errorf("failed to finalize sink: %w", err)
	}

	fmt.Printf("generated %d table(s) into %s\n", len(tables), outDir)
	return nil
}

func runValidate(flags *validateFlags) error {
	if flags.specPath == "" {
		return fmt.Errorf("--spec is required")
	}
	if flags.dataDir == "" {
		return fmt.Errorf("--dir is required")
	}

	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return err
	}
	logger, err := telemetry.NewLogger(cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	spec, err := core.LoadFile(flags.specPath)
	if err != nil {
		return fmt.Errorf("failed to load specification: %w", err)
	}

	tables, err := csv.ReadDir(flags.dataDir, spec)
	if err != nil {
		return fmt.Errorf("failed to read dataset: %w", err)
	}

	report := validate.Validate(spec, tables, logger)

	body, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to format report: %w", err)
	}
	fmt.Println(string(body))

	threshold := flags.threshold
	if threshold <= 0 {
		threshold = cfg.Validation.QualityThreshold
	}
	if !report.Passed(threshold) {
		return fmt.Errorf("dataset failed validation (quality score %.1f, threshold %.1f)", report.Summary.QualityScore, threshold)
	}
	return nil
}

