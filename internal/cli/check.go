package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/emedosmotr/vvk-validator/internal/cache"
	"github.com/emedosmotr/vvk-validator/internal/contradiction"
	"github.com/emedosmotr/vvk-validator/internal/retrieval"
)

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check <record.yaml>",
	Short: "Run only the contradiction checks over a record",
	Long: `Check runs Stage 0 standalone: the six contradiction checks over the
record's fields, without classification or category resolution.

Example:
  vvk-validator check record.yaml
  vvk-validator check record.yaml --criteria criteria.yaml -v`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().DurationVar(&timeout, "timeout", time.Minute, "overall check timeout")
	checkCmd.Flags().StringVar(&criteriaPath, "criteria", "", "criteria YAML path (default from config)")
}

func runCheck(cmd *cobra.Command, args []string) error {
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

	store, provider, err := loadStore(ctx, cfg, criteriaPath)
	if err != nil {
		return err
	}

	searcher := retrieval.NewSearcher(provider, store,
		cache.NewMemoryCache(cfg.Cache.TTL, 10*time.Minute),
		cfg.LLM.EmbeddingModel, cfg.Cache.TTL)
	checker := contradiction.NewChecker(searcher, verbose)

	findings := checker.Check(ctx, record)
	if len(findings) == 0 {
		fmt.Println("✓ Противоречий не обнаружено")
		return nil
	}

	fmt.Fprintf(os.Stderr, "Обнаружено противоречий: %d\n\n", len(findings))
	for i, f := range findings {
		fmt.Printf("%d. [%s] %s\n", i+1, f.Severity, f.Type)
		fmt.Printf("   %s\n", f.Description)
		if f.Recommendation != "" {
			fmt.Printf("   Рекомендация: %s\n", f.Recommendation)
		}
		fmt.Println()
	}
	return nil
}
