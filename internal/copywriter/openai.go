package copywriter

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/lukman83/promobot/internal/caption"
	"github.com/lukman83/promobot/internal/models"
	openai "github.com/sashabaranov/go-openai"
)

const (
	DefaultModel = openai.GPT4oMini

	systemPrompt = "You write short promotional posts for deal channels. " +
		"Reply with the post text only, in the same language as the product name."
)

type OpenAIOptions struct {
	APIKey    string
	BaseURL   string
	Model     string
	MaxTokens int
}

// OpenAIGenerator calls an OpenAI-compatible chat completion endpoint.
type OpenAIGenerator struct {
	client    *openai.Client
	formatter *caption.Formatter
	model     string
	maxTokens int
}

// NewOpenAIGenerator returns Disabled when no API key is configured.
func NewOpenAIGenerator(httpClient *http.Client, opts OpenAIOptions, formatter *caption.Formatter) Generator {
	if opts.APIKey == "" {
		return Disabled
	}
	cfg := openai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		cfg.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	}
	if httpClient != nil {
		cfg.HTTPClient = httpClient
	}
	if opts.Model == "" {
		opts.Model = DefaultModel
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 300
	}
	return &OpenAIGenerator{
		client:    openai.NewClientWithConfig(cfg),
		formatter: formatter,
		model:     opts.Model,
		maxTokens: opts.MaxTokens,
	}
}

func (g *OpenAIGenerator) Generate(ctx context.Context, p models.Product) (string, error) {
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: g.formatter.Prompt(p)},
		},
		MaxTokens:   g.maxTokens,
		Temperature: 0.8,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", fmt.Errorf("chat completion returned empty text")
	}
	return text, nil
}
