package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/emedosmotr/vvk-validator/internal/retrieval"
)

var (
	searchTopK      int
	searchThreshold float64
)

// searchCmd represents the search command
var searchCmd = &cobra.Command{
	Use:   "search <text>",
	Short: "Search the criteria reference by semantic similarity",
	Long: `Search embeds the query text and ranks schedule-of-diseases criteria by
cosine similarity. Useful for diagnosing retrieval behavior.

Example:
  vvk-validator search "гипертоническая болезнь 1 стадии"
  vvk-validator search "плоскостопие" --top-k 10 --threshold 0.5`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().IntVar(&searchTopK, "top-k", 5, "number of results")
	searchCmd.Flags().Float64Var(&searchThreshold, "threshold", 0.65, "minimum similarity")
	searchCmd.Flags().StringVar(&criteriaPath, "criteria", "", "criteria YAML path (default from config)")
	searchCmd.Flags().DurationVar(&timeout, "timeout", time.Minute, "search timeout")
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	cfg, err := buildConfig()
	if err != nil {
		return err
	}

	store, provider, err := loadStore(ctx, cfg, criteriaPath)
	if err != nil {
		return err
	}

	searcher := retrieval.NewSearcher(provider, store, nil, cfg.LLM.EmbeddingModel, 0)
	matches, err := searcher.SearchSimilar(ctx, args[0], searchTopK, searchThreshold)
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}

	if len(matches) == 0 {
		fmt.Println("Совпадений не найдено")
		return nil
	}

	for i, m := range matches {
		fmt.Printf("%d. Статья %d", i+1, m.Article)
		if m.Subpoint != "" {
			fmt.Printf(", подпункт %s", m.Subpoint)
		}
		fmt.Printf(" (сходство %.4f)\n", m.Similarity)
		fmt.Printf("   %s\n", m.Description)
		if len(m.Categories) > 0 {
			fmt.Printf("   Категории по графам: I=%s II=%s III=%s IV=%s\n",
				m.Categories[1], m.Categories[2], m.Categories[3], m.Categories[4])
		}
		fmt.Println()
	}
	return nil
}
