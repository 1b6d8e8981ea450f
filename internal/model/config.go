package model

import "time"

// Config holds the full tool configuration. It is YAML-serializable so the
// CLI can render and initialize config files.
type Config struct {
	LLM         LLMConfig         `yaml:"llm"`
	Retrieval   RetrievalConfig   `yaml:"retrieval"`
	Reference   ReferenceConfig   `yaml:"reference"`
	Cache       CacheConfig       `yaml:"cache"`
	Concurrency ConcurrencyConfig `yaml:"concurrency"`
	Output      OutputConfig      `yaml:"output"`
}

// LLMConfig configures the embedding/completion provider.
type LLMConfig struct {
	Provider            string  `yaml:"provider"`
	Model               string  `yaml:"model"`
	EmbeddingModel      string  `yaml:"embedding_model"`
	EmbeddingDimensions int     `yaml:"embedding_dimensions"`
	APIKey              string  `yaml:"api_key,omitempty"`
	BaseURL             string  `yaml:"base_url,omitempty"`
	Timeout             int     `yaml:"timeout"` // seconds
	MaxTokens           int     `yaml:"max_tokens"`
	Temperature         float32 `yaml:"temperature"`
}

// RetrievalConfig tunes the semantic search over the reference table.
type RetrievalConfig struct {
	TopK                int     `yaml:"top_k"`
	SimilarityThreshold float64 `yaml:"similarity_threshold"`
	// MinQueryChars is the minimum trimmed query length; shorter queries
	// return no matches instead of embedding noise.
	MinQueryChars int `yaml:"min_query_chars"`
}

// ReferenceConfig locates the statutory criteria table.
type ReferenceConfig struct {
	CriteriaPath string `yaml:"criteria_path"`
}

// CacheConfig controls embedding memoization.
type CacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	TTL     time.Duration `yaml:"ttl"`
}

// ConcurrencyConfig controls batch processing.
type ConcurrencyConfig struct {
	Workers           int     `yaml:"workers"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size"`
}

// OutputConfig controls report rendering.
type OutputConfig struct {
	Verbose       bool `yaml:"verbose"`
	IncludeFooter bool `yaml:"include_footer"`
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider:            "openai",
			Model:               "gpt-4o-mini",
			EmbeddingModel:      "text-embedding-3-small",
			EmbeddingDimensions: 1536,
			Timeout:             30,
			MaxTokens:           4000,
			Temperature:         0, // deterministic: identical record, identical result
		},
		Retrieval: RetrievalConfig{
			TopK:                5,
			SimilarityThreshold: 0.65,
			MinQueryChars:       10,
		},
		Reference: ReferenceConfig{
			CriteriaPath: "criteria.yaml",
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     24 * time.Hour,
		},
		Concurrency: ConcurrencyConfig{
			Workers:           4,
			RequestsPerSecond: 5,
			BurstSize:         5,
		},
		Output: OutputConfig{
			Verbose:       false,
			IncludeFooter: true,
		},
	}
}
