package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"gometa/app"
	"gometa/domain/core"
	"gometa/domain/meta"
	"gometa/internal/config"
	"gometa/internal/testkit"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "gometa-dev",
		Short: "GoMeta development tools",
	}

	rootCmd.AddCommand(
		newSeedCmd(),
		newSmokeTestCmd(),
		newDeterminismTestCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newSeedCmd() *cobra.Command {
	var (
		kind   string
		count  int
		seed   int64
		effect float64
	)
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Generate a synthetic study set as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			return generateSeedData(kind, count, seed, effect)
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "continuous", "study shape: continuous, binary or precomputed")
	cmd.Flags().IntVar(&count, "count", 10, "number of studies")
	cmd.Flags().Int64Var(&seed, "seed", 42, "generator seed")
	cmd.Flags().Float64Var(&effect, "effect", 0.5, "true effect on the pooling scale")
	return cmd
}

func newSmokeTestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "smoke",
		Short: "Run smoke tests",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSmokeTests(cmd.Context())
		},
	}
	return cmd
}

func newDeterminismTestCmd() *cobra.Command {
	var seed int64
	cmd := &cobra.Command{
		Use:   "determinism",
		Short: "Verify batch replay produces identical fingerprints",
		RunE: func(cmd *cobra.Command, args []string) error {
			return testDeterminism(cmd.Context(), seed)
		},
	}
	cmd.Flags().Int64Var(&seed, "seed", 42, "generator seed")
	return cmd
}

func generateSeedData(kind string, count int, seed int64, effect float64) error {
	cfg := testkit.DefaultTrialConfig()
	cfg.StudyCount = count
	cfg.Seed = seed
	cfg.TrueEffect = effect
	generator := testkit.NewTrialGenerator(cfg)

	var studies []meta.StudyRecord
	switch kind {
	case "continuous":
		studies = generator.GenerateContinuousStudies()
	case "binary":
		studies = generator.GenerateBinaryStudies()
	case "precomputed":
		studies = generator.GeneratePrecomputedEffects()
	default:
		return fmt.Errorf("unknown study kind: %s", kind)
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(studies)
}

func devSynthesisConfig() config.SynthesisConfig {
	return config.SynthesisConfig{
		MaxConcurrent:  4,
		MinStudies:     1,
		StoreArtifacts: true,
		CodeVersion:    "dev",
	}
}

func runSmokeTests(ctx context.Context) error {
	fmt.Println("Running smoke tests...")

	kit, err := testkit.NewTestKit()
	if err != nil {
		return fmt.Errorf("failed to initialize test kit: %w", err)
	}

	synthesis := kit.SynthesisService(devSynthesisConfig())
	screening := kit.ScreeningService(config.DedupeConfig{FuzzyThreshold: 0.90, YearTolerance: 1})
	generator := testkit.NewTrialGenerator(testkit.DefaultTrialConfig())

	tests := []struct {
		name string
		fn   func(context.Context) error
	}{
		{"screening", func(ctx context.Context) error {
			refs := generator.WithDuplicateVariants(generator.GenerateReferences(8), 3)
			result, err := screening.DedupeReferences(ctx, app.DedupeRequest{References: refs})
			if err != nil {
				return err
			}
			if result.Stats.Unique != 8 {
				return fmt.Errorf("expected 8 unique references, got %d", result.Stats.Unique)
			}
			return nil
		}},
		{"fixed_pooling", func(ctx context.Context) error {
			outcome, err := synthesis.RunAnalysis(ctx, app.AnalysisRequest{
				Label:   "smoke fixed",
				Studies: generator.GenerateContinuousStudies(),
				Measure: meta.MeasureMD,
				Method:  meta.MethodFixed,
			})
			if err != nil {
				return err
			}
			if outcome.Result == nil {
				return fmt.Errorf("no pooled result")
			}
			return nil
		}},
		{"random_pooling", func(ctx context.Context) error {
			outcome, err := synthesis.RunAnalysis(ctx, app.AnalysisRequest{
				Label:   "smoke random",
				Studies: generator.GenerateBinaryStudies(),
				Measure: meta.MeasureOR,
				Method:  meta.MethodRandom,
			})
			if err != nil {
				return err
			}
			if outcome.Result == nil {
				return fmt.Errorf("no pooled result")
			}
			return nil
		}},
		{"manifest_readable", func(ctx context.Context) error {
			res, err := synthesis.RunBatch(ctx, app.BatchRequest{
				Analyses: []app.AnalysisRequest{
					{Label: "smoke batch", Studies: generator.GeneratePrecomputedEffects(), Measure: meta.MeasureHR, Method: meta.MethodFixed},
				},
			})
			if err != nil {
				return err
			}
			manifest, err := kit.LedgerReaderAdapter().GetBatchManifest(ctx, res.BatchID)
			if err != nil {
				return err
			}
			if manifest.Completed != 1 {
				return fmt.Errorf("manifest reports %d completed, expected 1", manifest.Completed)
			}
			return nil
		}},
	}

	passed := 0
	for _, test := range tests {
		fmt.Printf("  Running %s...", test.name)
		if err := test.fn(ctx); err != nil {
			fmt.Printf(" FAILED: %v\n", err)
		} else {
			fmt.Println(" PASSED")
			passed++
		}
	}

	fmt.Printf("\nSmoke tests: %d/%d passed\n", passed, len(tests))
	if passed < len(tests) {
		return fmt.Errorf("some smoke tests failed")
	}

	return nil
}

func testDeterminism(ctx context.Context, seed int64) error {
	fmt.Printf("Testing batch determinism with seed %d...\n", seed)

	first, err := runBatchOnce(ctx, seed)
	if err != nil {
		return fmt.Errorf("first run failed: %w", err)
	}

	fmt.Println("Re-running with the same seed...")
	second, err := runBatchOnce(ctx, seed)
	if err != nil {
		return fmt.Errorf("second run failed: %w", err)
	}

	if first != second {
		return fmt.Errorf("determinism test failed: fingerprints differ: %s vs %s", first, second)
	}

	fmt.Println("Determinism test passed - fingerprints identical")
	return nil
}

// runBatchOnce builds a fresh kit and service so nothing carries over
// between runs except the seed.
func runBatchOnce(ctx context.Context, seed int64) (core.BatchFingerprint, error) {
	kit, err := testkit.NewTestKit()
	if err != nil {
		return "", err
	}
	service := kit.SynthesisService(devSynthesisConfig())

	cfg := testkit.DefaultTrialConfig()
	cfg.Seed = seed
	generator := testkit.NewTrialGenerator(cfg)

	res, err := service.RunBatch(ctx, app.BatchRequest{
		Analyses: []app.AnalysisRequest{
			{Label: "md fixed", Studies: generator.GenerateContinuousStudies(), Measure: meta.MeasureMD, Method: meta.MethodFixed},
			{Label: "or random", Studies: generator.GenerateBinaryStudies(), Measure: meta.MeasureOR, Method: meta.MethodRandom},
		},
	})
	if err != nil {
		return "", err
	}

	return res.Fingerprint, nil
}
