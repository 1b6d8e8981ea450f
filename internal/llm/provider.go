package llm

import (
	"context"

	"github.com/emedosmotr/vvk-validator/internal/model"
)

// Provider is the opaque embedding/completion capability consumed by the
// retriever and the clinical classifier.
type Provider interface {
	// Name returns the provider name
	Name() string

	// Embed returns the embedding vector for a single text. The vector length
	// is deterministic for a given provider configuration.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch embeds many texts in provider-sized batches; used by the
	// reference loader at startup.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Complete runs a chat completion and returns the raw content plus token
	// usage. JSONMode requests a structured JSON object response.
	Complete(ctx context.Context, req CompleteRequest) (*CompleteResponse, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// CompleteRequest contains the input for a completion call.
type CompleteRequest struct {
	SystemPrompt string
	UserText     string
	JSONMode     bool

	// Model overrides the configured model (provider-specific).
	Model string

	// MaxTokens limits the response length.
	MaxTokens int
}

// CompleteResponse contains the completion output.
type CompleteResponse struct {
	Content    string
	Model      string
	TokensUsed int
}

// Config holds LLM provider configuration.
type Config struct {
	// Provider name: "openai" or "" (disabled)
	Provider string

	// Model is the completion model name
	Model string

	// EmbeddingModel and EmbeddingDimensions pin the embedding space; the
	// reference table and every query must use the same space.
	EmbeddingModel      string
	EmbeddingDimensions int

	// APIKey for the provider
	APIKey string

	// BaseURL for custom endpoints
	BaseURL string

	// Timeout for API requests
	Timeout int // seconds

	// MaxTokens for response generation
	MaxTokens int

	// Temperature, pinned to 0 for reproducible verdicts
	Temperature float32
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Provider:            "openai",
		Model:               "gpt-4o-mini",
		EmbeddingModel:      "text-embedding-3-small",
		EmbeddingDimensions: 1536,
		Timeout:             30,
		MaxTokens:           4000,
		Temperature:         0,
	}
}

// ConfigFromModel converts model.LLMConfig to llm.Config.
func ConfigFromModel(mc model.LLMConfig) Config {
	return Config{
		Provider:            mc.Provider,
		Model:               mc.Model,
		EmbeddingModel:      mc.EmbeddingModel,
		EmbeddingDimensions: mc.EmbeddingDimensions,
		APIKey:              mc.APIKey,
		BaseURL:             mc.BaseURL,
		Timeout:             mc.Timeout,
		MaxTokens:           mc.MaxTokens,
		Temperature:         mc.Temperature,
	}
}
