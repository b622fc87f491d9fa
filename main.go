package main

import (
	"context"
	"fmt"
	"log"
	"math"

	"github.com/joho/godotenv"

	"gometa/app"
	"gometa/domain/meta"
	"gometa/internal"
	"gometa/internal/config"
	"gometa/internal/testkit"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	// Load application configuration
	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	kit, err := testkit.NewTestKit()
	if err != nil {
		log.Fatalf("Failed to initialize adapters: %v", err)
	}

	logger := internal.DefaultLogger
	screening := app.NewScreeningService(appConfig.Dedupe, kit.LedgerAdapter(), logger)
	synthesis := app.NewSynthesisService(appConfig.Synthesis, kit.LedgerAdapter(), logger)

	if err := runPipeline(context.Background(), screening, synthesis, kit); err != nil {
		log.Fatalf("Pipeline failed: %v", err)
	}
}

// runPipeline walks the whole review flow once on synthetic data:
// screen an overlapping reference library, pool one batch across
// measures, then read the manifest back from the ledger.
func runPipeline(ctx context.Context, screening *app.ScreeningService, synthesis *app.SynthesisService, kit *testkit.TestKit) error {
	generator := testkit.NewTrialGenerator(testkit.DefaultTrialConfig())

	refs := generator.WithDuplicateVariants(generator.GenerateReferences(20), 6)
	screened, err := screening.DedupeReferences(ctx, app.DedupeRequest{References: refs})
	if err != nil {
		return err
	}
	fmt.Printf("Screening: %d references in, %d unique, %d removed\n",
		screened.Stats.Total, screened.Stats.Unique, screened.Stats.Removed)

	continuous := generator.GenerateContinuousStudies()
	binary := generator.GenerateBinaryStudies()
	hazard := generator.GeneratePrecomputedEffects()

	res, err := synthesis.RunBatch(ctx, app.BatchRequest{
		Analyses: []app.AnalysisRequest{
			{Label: "Mean difference, fixed effect", Studies: continuous, Measure: meta.MeasureMD, Method: meta.MethodFixed},
			{Label: "Hedges g, random effects", Studies: continuous, Measure: meta.MeasureSMD, Method: meta.MethodRandom},
			{Label: "Odds ratio, random effects", Studies: binary, Measure: meta.MeasureOR, Method: meta.MethodRandom},
			{Label: "Risk ratio, fixed effect", Studies: binary, Measure: meta.MeasureRR, Method: meta.MethodFixed},
			{Label: "Hazard ratio, fixed effect", Studies: hazard, Measure: meta.MeasureHR, Method: meta.MethodFixed},
			{Label: "Empty extraction", Studies: nil, Measure: meta.MeasureMD, Method: meta.MethodFixed},
		},
	})
	if err != nil {
		return err
	}

	fmt.Printf("\nBatch %s: %d completed, %d skipped in %dms\n",
		res.BatchID, res.Completed, res.Skipped, res.RuntimeMs)
	for _, outcome := range res.Outcomes {
		if outcome.Skipped {
			fmt.Printf("  %-32s skipped (%s)\n", outcome.Label, outcome.SkipCode)
			continue
		}
		printResult(outcome)
	}

	manifest, err := kit.LedgerReaderAdapter().GetBatchManifest(ctx, res.BatchID)
	if err != nil {
		return err
	}
	fmt.Printf("\nManifest: %d requested, %d completed, %d skipped\n",
		manifest.Requested, manifest.Completed, manifest.Skipped)
	fmt.Printf("Batch fingerprint: %s\n", res.Fingerprint)

	return nil
}

func printResult(outcome *app.AnalysisOutcome) {
	result := outcome.Result

	effect, lower, upper := result.Effect, result.CILower, result.CIUpper
	if outcome.Measure.IsLogScale() {
		// Ratio measures pool on the log scale; report them as ratios
		effect, lower, upper = math.Exp(effect), math.Exp(lower), math.Exp(upper)
	}

	fmt.Printf("  %-32s %.4f [%.4f, %.4f]  p=%.4g  I2=%.1f%%  (%d studies)\n",
		outcome.Label, effect, lower, upper, result.P, result.I2, outcome.Included)
}
