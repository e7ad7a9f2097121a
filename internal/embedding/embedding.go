package embedding

import (
	"context"
	"fmt"
	"strings"

	"portfolio-rag/internal/config"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
)

// Provider converts text into fixed-dimension vectors. Identical input text
// always yields an identical vector for a fixed model.
type Provider interface {
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
	ModelName() string
}

// LangchainProvider backs Provider with a langchaingo embedder.
type LangchainProvider struct {
	embedder *embeddings.EmbedderImpl
	model    string
}

// NewProvider builds the embedding provider selected by config. A model that
// cannot be initialized is a fatal startup error for the caller; there is no
// degraded mode without embeddings.
func NewProvider(llmConfig *config.LLMConfig) (*LangchainProvider, error) {
	switch llmConfig.Provider {
	case "ollama":
		return NewOllamaProvider(llmConfig)
	case "openai":
		return NewOpenAIProvider(llmConfig)
	default:
		return nil, fmt.Errorf("unknown embedding provider: %q", llmConfig.Provider)
	}
}

// NewOllamaProvider embeds with a locally served model.
func NewOllamaProvider(llmConfig *config.LLMConfig) (*LangchainProvider, error) {
	opts := []ollama.Option{ollama.WithModel(llmConfig.Model)}
	if llmConfig.BaseURL != "" {
		opts = append(opts, ollama.WithServerURL(llmConfig.BaseURL))
	}
	llm, err := ollama.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("initializing ollama embedding model: %w", err)
	}
	embedder, err := embeddings.NewEmbedder(llm)
	if err != nil {
		return nil, fmt.Errorf("creating embedder: %w", err)
	}
	return &LangchainProvider{embedder: embedder, model: llmConfig.Model}, nil
}

// NewOpenAIProvider embeds through an OpenAI-compatible endpoint.
func NewOpenAIProvider(llmConfig *config.LLMConfig) (*LangchainProvider, error) {
	opts := []openai.Option{
		openai.WithToken(strings.TrimPrefix(llmConfig.Key, "Bearer ")),
		openai.WithModel(llmConfig.Model),
		openai.WithEmbeddingModel(llmConfig.Model),
	}
	if llmConfig.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(llmConfig.BaseURL))
	}
	llm, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("initializing openai embedding model: %w", err)
	}
	embedder, err := embeddings.NewEmbedder(llm)
	if err != nil {
		return nil, fmt.Errorf("creating embedder: %w", err)
	}
	return &LangchainProvider{embedder: embedder, model: llmConfig.Model}, nil
}

func (p *LangchainProvider) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	return p.embedder.EmbedDocuments(ctx, texts)
}

func (p *LangchainProvider) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	return p.embedder.EmbedQuery(ctx, text)
}

func (p *LangchainProvider) ModelName() string {
	return p.model
}

var _ Provider = (*LangchainProvider)(nil)
