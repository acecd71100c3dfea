package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"github.com/spigell/mock-interviewer/internal/ai"
	"github.com/spigell/mock-interviewer/internal/utils"
	"go.uber.org/zap"
)

const (
	defaultModel        = "gpt-4o-mini"
	defaultMaxTokens    = 1024
	defaultMaxLogLength = 200
	temperature         = 0.2
)

type completer interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Generator implements ai.Generator on top of the OpenAI chat completion API.
// BaseURL allows OpenAI-compatible endpoints.
type Generator struct {
	client       completer
	model        string
	maxLogLength int
	logger       *zap.Logger
}

// Options configure a Generator.
type Options struct {
	APIKey       string
	Model        string
	BaseURL      string
	MaxLogLength int
}

// NewGenerator creates an OpenAI backed generator.
func NewGenerator(opts Options, logger *zap.Logger) (*Generator, error) {
	apiKey := strings.TrimSpace(opts.APIKey)
	if apiKey == "" {
		return nil, errors.New("openai api key is required")
	}

	config := openai.DefaultConfig(apiKey)
	if baseURL := strings.TrimSpace(opts.BaseURL); baseURL != "" {
		config.BaseURL = baseURL
	}

	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = defaultModel
	}

	maxLogLength := opts.MaxLogLength
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &Generator{
		client:       openai.NewClientWithConfig(config),
		model:        model,
		maxLogLength: maxLogLength,
		logger:       logger,
	}, nil
}

func (g *Generator) GenerateContent(ctx context.Context, systemPrompt, message string) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", errors.New("message must not be empty")
	}

	var messages []openai.ChatCompletionMessage
	if systemPrompt = strings.TrimSpace(systemPrompt); systemPrompt != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: systemPrompt,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: message,
	})

	g.logger.Debug("openai request",
		zap.String("message_preview", utils.TruncateForLog(message, g.maxLogLength)),
	)

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:               g.model,
		Messages:            messages,
		MaxCompletionTokens: defaultMaxTokens,
		Temperature:         temperature,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return "", mapError(err)
	}

	if len(resp.Choices) == 0 {
		return "", &ai.ErrInvalidResponse{Err: errors.New("no choices in openai response")}
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", &ai.ErrInvalidResponse{Err: errors.New("openai returned empty content")}
	}

	g.logger.Debug("openai response",
		zap.Int("total_tokens", resp.Usage.TotalTokens),
		zap.String("response_preview", utils.TruncateForLog(content, g.maxLogLength)),
	)

	return content, nil
}

func (g *Generator) Model() string {
	return g.model
}

func mapError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.HTTPStatusCode == http.StatusTooManyRequests:
			return &ai.ErrRateLimit{Err: err}
		case apiErr.HTTPStatusCode >= 500:
			return &ai.ErrProviderUnavailable{Err: err}
		}
	}
	return &ai.ErrProviderUnavailable{Err: fmt.Errorf("openai chat completion: %w", err)}
}
