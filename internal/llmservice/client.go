package llmservice

import (
	"context"
	"fmt"
	"strings"

	"portfolio-rag/internal/config"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

const temperature = 0.7

// Client wraps the remote chat-completion endpoint. Calls are slow and can
// fail; no retries here, the caller decides what a failure means.
type Client struct {
	llm   *openai.LLM
	model string
}

func NewClient(llmConfig *config.LLMConfig) (*Client, error) {
	opts := []openai.Option{
		openai.WithToken(strings.TrimPrefix(llmConfig.Key, "Bearer ")),
		openai.WithModel(llmConfig.Model),
	}
	if llmConfig.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(llmConfig.BaseURL))
	}
	llm, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("initializing llm client: %w", err)
	}
	return &Client{llm: llm, model: llmConfig.Model}, nil
}

// Complete sends one prompt and returns the raw generated text.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	messages := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextContent{Text: prompt}},
		},
	}

	res, err := c.llm.GenerateContent(ctx, messages, llms.WithTemperature(temperature))
	if err != nil {
		return "", err
	}
	if len(res.Choices) == 0 {
		return "", fmt.Errorf("llm returned no choices")
	}
	return res.Choices[0].Content, nil
}

func (c *Client) Model() string {
	return c.model
}
