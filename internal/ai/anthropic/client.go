package anthropic

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/spigell/mock-interviewer/internal/ai"
	"github.com/spigell/mock-interviewer/internal/utils"
	"go.uber.org/zap"
)

const (
	defaultModel        = "claude-haiku-4-5"
	defaultMaxTokens    = 1024
	defaultMaxLogLength = 200
	temperature         = 0.2
)

type messenger interface {
	New(ctx context.Context, params anthropic.MessageNewParams, opts ...option.RequestOption) (*anthropic.Message, error)
}

// Generator implements ai.Generator using the Anthropic messages API.
type Generator struct {
	messages     messenger
	model        string
	maxLogLength int
	logger       *zap.Logger
}

// Options configure a Generator.
type Options struct {
	APIKey       string
	Model        string
	MaxLogLength int
}

// NewGenerator creates an Anthropic backed generator.
func NewGenerator(opts Options, logger *zap.Logger) (*Generator, error) {
	apiKey := strings.TrimSpace(opts.APIKey)
	if apiKey == "" {
		return nil, errors.New("anthropic api key is required")
	}

	client := anthropic.NewClient(option.WithAPIKey(apiKey))

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
		messages:     &client.Messages,
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

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(g.model),
		MaxTokens: defaultMaxTokens,
		Messages: []anthropic.MessageParam{{
			Role:    anthropic.MessageParamRoleUser,
			Content: []anthropic.ContentBlockParamUnion{anthropic.NewTextBlock(message)},
		}},
		Temperature: anthropic.Float(temperature),
	}
	if systemPrompt = strings.TrimSpace(systemPrompt); systemPrompt != "" {
		params.System = []anthropic.TextBlockParam{{Text: systemPrompt}}
	}

	g.logger.Debug("anthropic request",
		zap.String("message_preview", utils.TruncateForLog(message, g.maxLogLength)),
	)

	msg, err := g.messages.New(ctx, params)
	if err != nil {
		return "", mapError(err)
	}

	content := messageText(msg)
	if content == "" {
		return "", &ai.ErrInvalidResponse{Err: errors.New("no text content in anthropic response")}
	}

	g.logger.Debug("anthropic response",
		zap.Int64("output_tokens", msg.Usage.OutputTokens),
		zap.String("response_preview", utils.TruncateForLog(content, g.maxLogLength)),
	)

	return content, nil
}

func (g *Generator) Model() string {
	return g.model
}

func messageText(msg *anthropic.Message) string {
	if msg == nil {
		return ""
	}
	var parts []string
	for _, block := range msg.Content {
		if block.Type == "text" && strings.TrimSpace(block.Text) != "" {
			parts = append(parts, strings.TrimSpace(block.Text))
		}
	}
	return strings.Join(parts, "\n")
}

func mapError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.StatusCode == http.StatusTooManyRequests:
			return &ai.ErrRateLimit{Err: err}
		case apiErr.StatusCode >= 500:
			return &ai.ErrProviderUnavailable{Err: err}
		}
	}
	return &ai.ErrProviderUnavailable{Err: fmt.Errorf("anthropic messages: %w", err)}
}
