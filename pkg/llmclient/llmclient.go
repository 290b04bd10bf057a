package llmclient

import (
	"context"
	"fmt"
	"strings"
	"time"

	openaimodel "github.com/cloudwego/eino-ext/components/model/openai"
	einomodel "github.com/cloudwego/eino/components/model"
	openaisdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

type Config struct {
	BaseURL             string        `envconfig:"BASE_URL" split_words:"true" default:"https://api.openai.com/v1"`
	APIKey              string        `envconfig:"API_KEY" split_words:"true" required:"true"`
	Model               string        `envconfig:"MODEL" split_words:"true" default:"gpt-4o"`
	ClassifierModel     string        `envconfig:"CLASSIFIER_MODEL" split_words:"true"`
	EmbeddingModel      string        `envconfig:"EMBEDDING_MODEL" split_words:"true" default:"text-embedding-3-small"`
	MaxCompletionTokens int           `envconfig:"MAX_COMPLETION_TOKENS" split_words:"true" default:"2000"`
	Temperature         float64       `envconfig:"TEMPERATURE" split_words:"true" default:"0.2"`
	Timeout             time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"30s"`
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return fmt.Errorf("llm api key is required")
	}
	if strings.TrimSpace(c.Model) == "" {
		return fmt.Errorf("completion model is required")
	}
	return nil
}

func (c Config) classifierModel() string {
	if v := strings.TrimSpace(c.ClassifierModel); v != "" {
		return v
	}
	return strings.TrimSpace(c.Model)
}

// Client is the reasoning/embedding collaborator: one-shot chat completions
// and query embeddings over the OpenAI-compatible API.
type Client struct {
	api openaisdk.Client
	cfg Config
}

func New(cfg Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	opts := []option.RequestOption{
		option.WithAPIKey(strings.TrimSpace(cfg.APIKey)),
	}
	if trimmed := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"); trimmed != "" {
		opts = append(opts, option.WithBaseURL(trimmed))
	}

	return &Client{
		api: openaisdk.NewClient(opts...),
		cfg: cfg,
	}, nil
}

func MustNew(cfg Config) *Client {
	client, err := New(cfg)
	if err != nil {
		panic(err)
	}
	return client
}

// Complete runs a single chat completion. Context cancellation is surfaced
// unchanged so callers can distinguish deadline from backend failure.
func (c *Client) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	resp, err := c.api.Chat.Completions.New(ctx, openaisdk.ChatCompletionNewParams{
		Messages: []openaisdk.ChatCompletionMessageParamUnion{
			openaisdk.SystemMessage(systemPrompt),
			openaisdk.UserMessage(userPrompt),
		},
		Model:               openaisdk.ChatModel(c.cfg.Model),
		MaxCompletionTokens: openaisdk.Int(int64(c.cfg.MaxCompletionTokens)),
		Temperature:         openaisdk.Float(c.cfg.Temperature),
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// Embed returns the embedding vector for one text.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := c.api.Embeddings.New(ctx, openaisdk.EmbeddingNewParams{
		Input: openaisdk.EmbeddingNewParamsInputUnion{
			OfString: openaisdk.String(text),
		},
		Model: openaisdk.EmbeddingModel(c.cfg.EmbeddingModel),
	})
	if err != nil {
		return nil, fmt.Errorf("embed: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("embedding response is empty")
	}

	raw := resp.Data[0].Embedding
	vec := make([]float32, len(raw))
	for i, v := range raw {
		vec[i] = float32(v)
	}
	return vec, nil
}

// NewChatModel builds an eino chat model for the router's classifier path,
// using the classifier model override when configured.
func (c Config) NewChatModel(ctx context.Context) (einomodel.ToolCallingChatModel, error) {
	temperature := float32(c.Temperature)
	maxTokens := c.MaxCompletionTokens

	conf := &openaimodel.ChatModelConfig{
		BaseURL:     strings.TrimRight(strings.TrimSpace(c.BaseURL), "/"),
		APIKey:      strings.TrimSpace(c.APIKey),
		Model:       c.classifierModel(),
		MaxTokens:   &maxTokens,
		Temperature: &temperature,
		Timeout:     c.Timeout,
	}

	m, err := openaimodel.NewChatModel(ctx, conf)
	if err != nil {
		return nil, fmt.Errorf("llmclient: create chat model: %w", err)
	}
	return m, nil
}
