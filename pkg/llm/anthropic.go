package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"study-assistant-go/internal/config"
)

const defaultAnthropicMaxTokens = 4096

type anthropicClient struct {
	cfg    config.LLMConfig
	client anthropic.Client
}

func newAnthropicClient(cfg config.LLMConfig) *anthropicClient {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
		option.WithRequestTimeout(requestTimeout(cfg)),
	}
	if base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"); base != "" {
		opts = append(opts, option.WithBaseURL(base))
	}
	return &anthropicClient{cfg: cfg, client: anthropic.NewClient(opts...)}
}

func (c *anthropicClient) Generate(ctx context.Context, prompt string) (string, error) {
	maxTokens := int64(defaultAnthropicMaxTokens)
	if c.cfg.Generation.MaxTokens > 0 {
		maxTokens = int64(c.cfg.Generation.MaxTokens)
	}
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.cfg.Model),
		MaxTokens: maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}
	if c.cfg.Generation.Temperature != 0 {
		params.Temperature = anthropic.Float(c.cfg.Generation.Temperature)
	}

	msg, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("anthropic message failed: %w", err)
	}
	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if strings.TrimSpace(sb.String()) == "" {
		return "", ErrEmptyResponse
	}
	return sb.String(), nil
}
