// Package ai asks an OpenAI-compatible chat model for song suggestions.
package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"go.uber.org/zap"

	"github.com/justestif/moodtune/internal/recommend"
)

// Defaults used when Config leaves a field empty.
const (
	DefaultModel     = "gpt-3.5-turbo"
	DefaultMaxTokens = 500
	temperature      = 0.7
)

// Sentinel errors. Each wraps the recommend sentinel it is classified as.
var (
	// ErrMissingAPIKey is returned before any request when no usable key is configured.
	ErrMissingAPIKey = fmt.Errorf("missing OPENAI_API_KEY: %w", recommend.ErrConfig)

	// ErrEmptyResponse is returned when the model answers with no content or no songs.
	ErrEmptyResponse = fmt.Errorf("ai returned no suggestions: %w", recommend.ErrEmptyResponse)

	// ErrParse is returned when the model's answer is not the expected JSON.
	ErrParse = fmt.Errorf("ai response is not valid JSON: %w", recommend.ErrParse)
)

// Config holds chat model settings.
type Config struct {
	APIKey    string
	BaseURL   string
	Model     string
	MaxTokens int
}

// Client implements recommend.AIRecommender.
type Client struct {
	model     llms.Model
	maxTokens int
	logger    *zap.Logger
}

var _ recommend.AIRecommender = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the client logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates a Client for an OpenAI-compatible endpoint. A missing or
// placeholder key is not an error here; Recommend reports ErrMissingAPIKey.
func New(cfg Config, opts ...Option) (*Client, error) {
	if !usableKey(cfg.APIKey) {
		return newClient(nil, cfg.MaxTokens, opts), nil
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	llmOpts := []openai.Option{
		openai.WithToken(cfg.APIKey),
		openai.WithModel(model),
	}
	if cfg.BaseURL != "" {
		llmOpts = append(llmOpts, openai.WithBaseURL(cfg.BaseURL))
	}

	llm, err := openai.New(llmOpts...)
	if err != nil {
		return nil, fmt.Errorf("creating chat model: %w", err)
	}
	return newClient(llm, cfg.MaxTokens, opts), nil
}

// NewWithModel creates a Client around an existing model.
func NewWithModel(model llms.Model, opts ...Option) *Client {
	return newClient(model, 0, opts)
}

func newClient(model llms.Model, maxTokens int, opts []Option) *Client {
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	c := &Client{model: model, maxTokens: maxTokens, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Configured reports whether the client can make requests.
func (c *Client) Configured() bool {
	return c.model != nil
}

// Recommend sends the user's state to the model and parses its suggestion.
func (c *Client) Recommend(ctx context.Context, data recommend.UserData) (recommend.Suggestion, error) {
	if c.model == nil {
		return recommend.Suggestion{}, ErrMissingAPIKey
	}

	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, systemPrompt),
		llms.TextParts(llms.ChatMessageTypeHuman, userPrompt(data)),
	}

	resp, err := c.model.GenerateContent(ctx, messages,
		llms.WithTemperature(temperature),
		llms.WithMaxTokens(c.maxTokens),
	)
	if err != nil {
		return recommend.Suggestion{}, fmt.Errorf("requesting ai suggestion: %w", err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return recommend.Suggestion{}, ErrEmptyResponse
	}

	s, err := ParseSuggestion(resp.Choices[0].Content)
	if err != nil {
		c.logger.Warn("unusable ai response", zap.Error(err))
		return recommend.Suggestion{}, err
	}
	return s, nil
}

// ParseSuggestion decodes {summary, suggestedSongs} from model output,
// stripping markdown code fences first. Blank song entries are dropped.
func ParseSuggestion(content string) (recommend.Suggestion, error) {
	content = StripFences(content)
	if content == "" {
		return recommend.Suggestion{}, ErrEmptyResponse
	}

	var raw recommend.Suggestion
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return recommend.Suggestion{}, fmt.Errorf("%w: %w", ErrParse, err)
	}

	s := recommend.Suggestion{Summary: strings.TrimSpace(raw.Summary), Songs: []string{}}
	for _, song := range raw.Songs {
		if song = strings.TrimSpace(song); song != "" {
			s.Songs = append(s.Songs, song)
		}
	}
	if len(s.Songs) == 0 {
		return recommend.Suggestion{}, ErrEmptyResponse
	}
	return s, nil
}

// StripFences removes a surrounding ``` or ```json block.
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		// drop the language tag line
		s = s[nl+1:]
	} else {
		s = strings.TrimPrefix(s, "json")
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func usableKey(key string) bool {
	key = strings.ToLower(strings.TrimSpace(key))
	return key != "" &&
		!strings.HasPrefix(key, "your_") &&
		!strings.HasPrefix(key, "your-") &&
		!strings.HasPrefix(key, "<") &&
		key != "changeme"
}
