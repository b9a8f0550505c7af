package summarize

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"go.uber.org/zap"
)

const (
	// DefaultModel is the chat model used when none is configured.
	DefaultModel = "gpt-3.5-turbo"
	// DefaultTemperature keeps the benchmarking output close to deterministic.
	DefaultTemperature = 0.3

	promptTemplate = `
You are a benchmarking assistant. Analyze the contractor quote below and generate a benchmarking quote summary including:

1. A plain English summary of the work proposed
2. Labour and material cost checks
3. Risk rating (severity and likelihood)
4. Final recommendation (Approved / Request More Info / Declined)

Quote:
%s
`
)

// ErrNoChoices is returned when the completion response carries no choices.
var ErrNoChoices = errors.New("completion returned no choices")

// OpenAIConfig configures the completion client. It is built by the caller;
// nothing here reads the process environment.
type OpenAIConfig struct {
	APIKey      string
	Model       string
	BaseURL     string
	Temperature *float64 // nil means DefaultTemperature; 0 is sent as 0
	Timeout     time.Duration
}

// OpenAISummarizer calls the Chat Completions API to produce summaries.
type OpenAISummarizer struct {
	client      openai.Client
	model       string
	temperature float64
	logger      *zap.Logger
}

// NewOpenAISummarizer builds a summarizer from cfg. A missing API key is not
// checked here; it surfaces as an authentication error on the first call.
func NewOpenAISummarizer(cfg OpenAIConfig, logger *zap.Logger) *OpenAISummarizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	temperature := DefaultTemperature
	if cfg.Temperature != nil {
		temperature = *cfg.Temperature
	}
	return &OpenAISummarizer{
		client:      openai.NewClient(opts...),
		model:       model,
		temperature: temperature,
		logger:      logger,
	}
}

// RenderPrompt interpolates the quote text into the benchmarking prompt.
func RenderPrompt(text string) string {
	return fmt.Sprintf(promptTemplate, text)
}

// Summarize sends a single-turn request and returns the first choice, trimmed.
func (s *OpenAISummarizer) Summarize(ctx context.Context, text string) (string, error) {
	start := time.Now()
	resp, err := s.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(s.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(RenderPrompt(text)),
		},
		Temperature: openai.Float(s.temperature),
	})
	if err != nil {
		return "", fmt.Errorf("do request: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrNoChoices
	}
	s.logger.Debug("completion received",
		zap.String("model", resp.Model),
		zap.Int64("total_tokens", resp.Usage.TotalTokens),
		zap.Duration("elapsed", time.Since(start)),
	)
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
