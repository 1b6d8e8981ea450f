package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/emedosmotr/vvk-validator/internal/pipeline"
	"github.com/emedosmotr/vvk-validator/internal/worker"
	"github.com/spf13/cobra"
)

var (
	concurrency  int
	outputDir    string
	batchTimeout time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <records.yaml>",
	Short: "Validate multiple examination records in parallel",
	Long: `Batch validates many records concurrently:
- Read records from a YAML file (top-level "records" list)
- Run the full pipeline per record with a configurable worker count
- Write one verdict JSON per record

Example:
  vvk-validator batch records.yaml
  vvk-validator batch records.yaml --concurrency 8 --output-dir ./verdicts
  vvk-validator batch records.yaml --timeout 15m`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	// Concurrency flags
	batchCmd.Flags().IntVar(&concurrency, "concurrency", runtime.NumCPU(), "number of concurrent workers")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./vvk-verdicts", "output directory for verdicts")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for batch processing")

	// Pipeline flags shared with validate
	batchCmd.Flags().StringVar(&criteriaPath, "criteria", "", "criteria YAML path (default from config)")
	batchCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the embedding cache")
	batchCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")
	batchCmd.Flags().StringVar(&llmModel, "llm-model", "", "override the completion model")
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  vvk-validator Batch Validation\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Input file:   %s\n", file)
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", concurrency)
	fmt.Fprintf(os.Stderr, "  Output dir:   %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "  Timeout:      %v\n", batchTimeout)
	fmt.Fprintf(os.Stderr, "\n")

	cfg, err := buildConfig()
	if err != nil {
		return err
	}
	cfg.Cache.Enabled = !noCache
	cfg.Concurrency.Workers = concurrency
	cfg.Output.IncludeFooter = !noFooter
	if llmModel != "" {
		cfg.LLM.Model = llmModel
	}

	store, _, err := loadStore(ctx, cfg, criteriaPath)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	p, err := pipeline.New(cfg, store, nil)
	if err != nil {
		return fmt.Errorf("build pipeline: %w", err)
	}

	fmt.Fprintf(os.Stderr, "⚙️  Reading records from file...\n")
	records, err := worker.ReadRecordsFromFile(file)
	if err != nil {
		return fmt.Errorf("read records: %w", err)
	}

	completeness := pipeline.CheckCompleteness(records)
	if !completeness.Complete {
		fmt.Fprintf(os.Stderr, "⚠ Record set incomplete:\n")
		for _, specialty := range completeness.MissingSpecialties {
			fmt.Fprintf(os.Stderr, "    missing specialty: %s\n", specialty)
		}
		for _, specialty := range completeness.EmptyDiagnoses {
			fmt.Fprintf(os.Stderr, "    empty diagnosis: %s\n", specialty)
		}
		for _, specialty := range completeness.MissingCategories {
			fmt.Fprintf(os.Stderr, "    missing category: %s\n", specialty)
		}
		fmt.Fprintf(os.Stderr, "\n")
	}

	limiter := worker.NewLimiter(cfg.Concurrency.RequestsPerSecond, cfg.Concurrency.BurstSize)
	processor := worker.NewBatchProcessor(p, concurrency).WithLimiter(limiter, cfg.LLM.Provider)

	results := processor.ProcessRecords(ctx, records, pipeline.Options{})

	fmt.Fprintf(os.Stderr, "✓ Validated %d records\n", len(results))
	fmt.Fprintf(os.Stderr, "\n")

	renderer := pipeline.NewRenderer(cfg.Output.IncludeFooter)
	successCount := 0
	failureCount := 0
	reviewCount := 0

	for _, result := range results {
		if result.Error != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ record %d (%s): %v\n", result.Index, result.Record.Specialty, result.Error)
			continue
		}

		successCount++
		if result.Verdict.ShouldReview {
			reviewCount++
		}

		name := fmt.Sprintf("verdict-%03d-%s.json", result.Index, sanitizeFilename(result.Record.Specialty))
		jsonPath := filepath.Join(outputDir, name)
		if err := renderer.RenderJSON(result.Verdict, jsonPath); err != nil {
			fmt.Fprintf(os.Stderr, "✗ record %d: failed to write JSON: %v\n", result.Index, err)
			continue
		}

		fmt.Fprintf(os.Stderr, "✓ record %d (%s): %s / %s\n",
			result.Index, result.Record.Specialty,
			result.Verdict.OverallStatus, result.Verdict.RiskLevel)
	}

	// Summary
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Batch Complete\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Total:          %d records\n", len(results))
	fmt.Fprintf(os.Stderr, "  Success:        %d\n", successCount)
	fmt.Fprintf(os.Stderr, "  Failures:       %d\n", failureCount)
	fmt.Fprintf(os.Stderr, "  Need review:    %d\n", reviewCount)
	if !completeness.Complete {
		fmt.Fprintf(os.Stderr, "  Completeness:   missing %d of %d required specialties\n",
			len(completeness.MissingSpecialties), len(pipeline.RequiredSpecialties))
	}
	fmt.Fprintf(os.Stderr, "  Output:         %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "\n")

	return nil
}
