package provider

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const defaultAnthropicMaxTokens = 1024

func init() {
	Register("anthropic", func(cfg Config) (Provider, error) { return NewAnthropic(cfg) })
}

type anthropicMessages interface {
	New(ctx context.Context, params anthropic.MessageNewParams, opts ...option.RequestOption) (*anthropic.Message, error)
}

// Anthropic generates diagnoses with Claude.
type Anthropic struct {
	msgs      anthropicMessages
	model     anthropic.Model
	maxTokens int64
}

// NewAnthropic builds a Claude-backed provider. The API key comes from cfg.APIKeyEnv,
// falling back to the SDK's own ANTHROPIC_API_KEY lookup.
func NewAnthropic(cfg Config) (*Anthropic, error) {
	var opts []option.RequestOption
	if key := cfg.APIKey(); key != "" {
		opts = append(opts, option.WithAPIKey(key))
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	client := anthropic.NewClient(opts...)
	return newAnthropic(&client.Messages, cfg), nil
}

func newAnthropic(msgs anthropicMessages, cfg Config) *Anthropic {
	m := anthropic.Model(strings.TrimSpace(cfg.Model))
	if m == "" {
		m = anthropic.Model("claude-haiku-4-5") // ModelClaudeHaiku4_5 in newer SDKs
	}
	maxTokens := int64(cfg.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = defaultAnthropicMaxTokens
	}
	return &Anthropic{msgs: msgs, model: m, maxTokens: maxTokens}
}

func (a *Anthropic) Name() string { return "anthropic" }

// Generate sends prompt as a single user message and returns the concatenated text blocks.
func (a *Anthropic) Generate(ctx context.Context, prompt string, _ ProfileContext) (string, error) {
	msg, err := a.msgs.New(ctx, anthropic.MessageNewParams{
		Model:     a.model,
		MaxTokens: a.maxTokens,
		System:    []anthropic.TextBlockParam{{Text: SystemPrompt}},
		Messages: []anthropic.MessageParam{
			{
				Role: anthropic.MessageParamRoleUser,
				Content: []anthropic.ContentBlockParamUnion{
					{OfText: &anthropic.TextBlockParam{Text: prompt}},
				},
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic: %w", errors.Join(ErrUnavailable, err))
	}

	var text strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return "", fmt.Errorf("anthropic: empty response: %w", ErrUnavailable)
	}
	return text.String(), nil
}
