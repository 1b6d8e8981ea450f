package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/emedosmotr/vvk-validator/internal/pipeline"
	"github.com/spf13/cobra"
)

var (
	outJSON      string
	outMD        string
	timeout      time.Duration
	criteriaPath string
	noCache      bool
	noFooter     bool
	saveResult   bool
	resultsDir   string
	llmModel     string
)

// validateCmd represents the validate command
var validateCmd = &cobra.Command{
	Use:   "validate <record.yaml>",
	Short: "Validate a single examination record and generate a verdict",
	Long: `Validate runs the full three-stage pipeline over one examination record:
- Detect contradictions between the diagnosis and the narrative fields
- Classify the applicable statute article and subpoint
- Resolve the expected fitness category for the conscription graph
- Aggregate everything into a verdict with a risk level and review reasons

Example:
  vvk-validator validate record.yaml
  vvk-validator validate record.yaml --json verdict.json --md verdict.md
  vvk-validator validate record.yaml --save --results-dir ./verdicts`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	// Output flags
	validateCmd.Flags().StringVar(&outJSON, "json", "", "output JSON path (optional)")
	validateCmd.Flags().StringVar(&outMD, "md", "", "output Markdown path (optional)")
	validateCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")

	// Pipeline flags
	validateCmd.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "overall validation timeout")
	validateCmd.Flags().StringVar(&criteriaPath, "criteria", "", "criteria YAML path (default from config)")
	validateCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the embedding cache")
	validateCmd.Flags().StringVar(&llmModel, "llm-model", "", "override the completion model")

	// Persistence flags
	validateCmd.Flags().BoolVar(&saveResult, "save", false, "save the verdict to the results directory")
	validateCmd.Flags().StringVar(&resultsDir, "results-dir", "./vvk-verdicts", "directory for saved verdicts")
}

func runValidate(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	record, err := loadSingleRecord(args[0])
	if err != nil {
		return fmt.Errorf("load record: %w", err)
	}

	cfg, err := buildConfig()
	if err != nil {
		return err
	}
	cfg.Cache.Enabled = !noCache
	cfg.Output.IncludeFooter = !noFooter
	if llmModel != "" {
		cfg.LLM.Model = llmModel
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Validating: %s (%s)\n", args[0], record.Specialty)
		fmt.Fprintf(os.Stderr, "Graph: %d\n", record.Graph())
		fmt.Fprintln(os.Stderr)
	}

	store, _, err := loadStore(ctx, cfg, criteriaPath)
	if err != nil {
		return err
	}

	var sink pipeline.ResultSink
	if saveResult {
		fileSink, err := NewFileSink(resultsDir)
		if err != nil {
			return err
		}
		sink = fileSink
	}

	p, err := pipeline.New(cfg, store, sink)
	if err != nil {
		return fmt.Errorf("build pipeline: %w", err)
	}

	verdict, err := p.Validate(ctx, record, pipeline.Options{SaveResult: saveResult})
	if err != nil {
		return fmt.Errorf("validate: %w", err)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "✓ Stage 0: %s (%d findings)\n", verdict.Stage0.Status, len(verdict.Stage0Findings))
		fmt.Fprintf(os.Stderr, "✓ Stage 1: %s (confidence %.2f)\n", verdict.Stage1.Status, verdict.Confidence)
		fmt.Fprintf(os.Stderr, "✓ Stage 2: %s\n", verdict.Stage2.Status)
		fmt.Fprintln(os.Stderr)
	}

	if err := p.RenderReport(verdict, outJSON, outMD, verbose); err != nil {
		return fmt.Errorf("render failed: %w", err)
	}
	return nil
}
