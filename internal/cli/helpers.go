package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/emedosmotr/vvk-validator/internal/llm"
	"github.com/emedosmotr/vvk-validator/internal/model"
	"github.com/emedosmotr/vvk-validator/internal/reference"
	"github.com/emedosmotr/vvk-validator/internal/worker"
	"github.com/spf13/viper"
)

// buildConfig assembles the effective configuration from defaults, the
// config file and environment.
func buildConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()

	if v := viper.GetString("llm.model"); v != "" {
		cfg.LLM.Model = v
	}
	if v := viper.GetString("llm.embedding_model"); v != "" {
		cfg.LLM.EmbeddingModel = v
	}
	if v := viper.GetString("llm.base_url"); v != "" {
		cfg.LLM.BaseURL = v
	}
	if v := viper.GetString("reference.criteria_path"); v != "" {
		cfg.Reference.CriteriaPath = v
	}
	if v := viper.GetInt("concurrency.workers"); v > 0 {
		cfg.Concurrency.Workers = v
	}
	cfg.Output.Verbose = verbose

	cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
	if cfg.LLM.APIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
	}
	return cfg, nil
}

// loadStore builds the provider and loads the criteria reference,
// embedding entries that ship without vectors.
func loadStore(ctx context.Context, cfg *model.Config, criteriaPath string) (*reference.Store, llm.Provider, error) {
	provider, err := llm.NewProvider(llm.ConfigFromModel(cfg.LLM))
	if err != nil {
		return nil, nil, fmt.Errorf("initialize LLM provider: %w", err)
	}

	if criteriaPath == "" {
		criteriaPath = cfg.Reference.CriteriaPath
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "Loading criteria: %s\n", criteriaPath)
	}
	store, err := reference.LoadFile(ctx, criteriaPath, provider)
	if err != nil {
		return nil, nil, fmt.Errorf("load criteria: %w", err)
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "✓ Loaded %d criteria\n", store.Len())
	}
	return store, provider, nil
}

// loadSingleRecord reads a records file that must contain exactly one
// record.
func loadSingleRecord(path string) (*model.ExaminationRecord, error) {
	records, err := worker.ReadRecordsFromFile(path)
	if err != nil {
		return nil, err
	}
	if len(records) > 1 {
		return nil, fmt.Errorf("%s contains %d records; use 'vvk-validator batch' for multiple records", path, len(records))
	}
	return &records[0], nil
}
