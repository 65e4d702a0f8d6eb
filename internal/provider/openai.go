package provider

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
)

const (
	defaultOpenAIModel       = "gpt-4o-mini"
	defaultOpenAIMaxTokens   = 1024
	defaultOpenAITemperature = 0.2
)

func init() {
	Register("openai", func(cfg Config) (Provider, error) { return NewOpenAI(cfg) })
}

type openaiChatCompletions interface {
	New(ctx context.Context, params openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error)
}

// OpenAI generates diagnoses with the chat completions API.
type OpenAI struct {
	completions openaiChatCompletions
	model       string
	maxTokens   int
	temperature float64
}

// NewOpenAI builds an OpenAI-backed provider. An API key is required.
func NewOpenAI(cfg Config) (*OpenAI, error) {
	apiKey := cfg.APIKey()
	if apiKey == "" {
		return nil, errors.New("openai: api key required")
	}
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	client := openai.NewClient(opts...)
	return newOpenAI(&client.Chat.Completions, cfg), nil
}

func newOpenAI(completions openaiChatCompletions, cfg Config) *OpenAI {
	o := &OpenAI{
		completions: completions,
		model:       strings.TrimSpace(cfg.Model),
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
	}
	if o.model == "" {
		o.model = defaultOpenAIModel
	}
	if o.maxTokens <= 0 {
		o.maxTokens = defaultOpenAIMaxTokens
	}
	if o.temperature <= 0 {
		o.temperature = defaultOpenAITemperature
	}
	return o
}

func (o *OpenAI) Name() string { return "openai" }

func (o *OpenAI) Generate(ctx context.Context, prompt string, _ ProfileContext) (string, error) {
	completion, err := o.completions.New(ctx, openai.ChatCompletionNewParams{
		Model:               shared.ChatModel(o.model),
		MaxCompletionTokens: openai.Int(int64(o.maxTokens)),
		Temperature:         openai.Float(o.temperature),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(SystemPrompt),
			openai.UserMessage(prompt),
		},
	})
	if err != nil {
		return "", fmt.Errorf("openai: %w", errors.Join(ErrUnavailable, err))
	}
	if len(completion.Choices) == 0 || strings.TrimSpace(completion.Choices[0].Message.Content) == "" {
		return "", fmt.Errorf("openai: empty response: %w", ErrUnavailable)
	}
	return completion.Choices[0].Message.Content, nil
}
