package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spigell/mock-interviewer/internal/ai"
	"github.com/spigell/mock-interviewer/internal/ai/anthropic"
	"github.com/spigell/mock-interviewer/internal/ai/gemini"
	"github.com/spigell/mock-interviewer/internal/ai/openai"
	"github.com/spigell/mock-interviewer/internal/bank"
	"github.com/spigell/mock-interviewer/internal/evaluator"
	"github.com/spigell/mock-interviewer/internal/interview"
	"github.com/spigell/mock-interviewer/internal/logger"
	"github.com/spigell/mock-interviewer/internal/secrets"
	"github.com/spigell/mock-interviewer/internal/store"
	"go.uber.org/zap"
)

// deps holds everything built from the configuration.
type deps struct {
	bank    *bank.Bank
	store   *store.Store
	service *interview.Service
}

func (d *deps) Close() {
	if d.store != nil {
		d.store.Close()
	}
}

func buildDeps(ctx context.Context, config *Config, log *zap.Logger) (*deps, error) {
	questions, err := loadBank(config.QuestionBank)
	if err != nil {
		return nil, err
	}
	log.Info("question bank loaded", zap.Int("questions", questions.Len()), zap.String("path", config.QuestionBank))

	st, err := openStore(config.Database)
	if err != nil {
		return nil, err
	}

	svc, err := interview.NewService(interview.Options{
		Bank:          questions,
		Evaluator:     newEvaluator(ctx, config.AI, log),
		Stats:         st,
		Archive:       st,
		QuestionCount: config.Interview.QuestionCount,
		Role:          config.Interview.Role,
		SessionTTL:    config.Interview.SessionTTL,
		CompletedTTL:  config.Interview.CompletedTTL,
		Logger:        log,
	})
	if err != nil {
		st.Close()
		return nil, err
	}

	return &deps{bank: questions, store: st, service: svc}, nil
}

func loadBank(path string) (*bank.Bank, error) {
	if strings.TrimSpace(path) == "" {
		return bank.Default(), nil
	}
	b, err := bank.Load(path)
	if err != nil {
		return nil, fmt.Errorf("loading question bank: %w", err)
	}
	return b, nil
}

func openStore(path string) (*store.Store, error) {
	if strings.TrimSpace(path) == "" {
		var err error
		if path, err = store.DefaultPath(); err != nil {
			return nil, err
		}
	}
	st, err := store.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening database %s: %w", path, err)
	}
	return st, nil
}

// newEvaluator returns the hybrid evaluator. A provider that cannot be built
// leaves the evaluator rule-based only.
func newEvaluator(ctx context.Context, cfg AIConfig, log *zap.Logger) *evaluator.Hybrid {
	rules := evaluator.NewRuleBased(nil, log)
	if !cfg.Enabled {
		log.Info("ai evaluation disabled, using rule-based scoring")
		return evaluator.NewHybrid(rules, nil, cfg.Timeout, log)
	}

	generator, maxLogLength, err := newGenerator(ctx, cfg, log)
	if err != nil {
		log.Warn("skipping ai evaluation", zap.Error(err))
		return evaluator.NewHybrid(rules, nil, cfg.Timeout, log)
	}

	llmLogger := logger.WithCommonFields(log, cfg.Provider, generator.Model())
	llmLogger.Info("ai evaluation enabled", zap.Duration("timeout", cfg.Timeout))
	return evaluator.NewHybrid(rules, evaluator.NewLLM(generator, llmLogger, maxLogLength), cfg.Timeout, log)
}

func newGenerator(ctx context.Context, cfg AIConfig, log *zap.Logger) (ai.Generator, int, error) {
	switch cfg.Provider {
	case ai.ProviderGemini, "":
		apiKey, err := secrets.Load(secrets.Source{
			Name:  "gemini api key",
			Value: cfg.Gemini.APIKey,
			File:  cfg.Gemini.APIKeyFile,
			Env:   "GEMINI_API_KEY",
		})
		if err != nil {
			return nil, 0, fmt.Errorf("%w (set ai.gemini.api-key-file or GEMINI_API_KEY)", err)
		}

		genLogger := logger.WithCommonFields(log, ai.ProviderGemini, cfg.Gemini.Model).
			With(zap.Int("ai_retry_attempts", cfg.Gemini.MaxRetries))

		// The Gemini client retries temporary errors itself.
		generator, err := gemini.NewGenerator(ctx, gemini.Options{
			APIKey:       apiKey,
			Model:        cfg.Gemini.Model,
			MaxRetries:   cfg.Gemini.MaxRetries,
			MaxLogLength: cfg.Gemini.MaxLogLength,
		}, genLogger)
		if err != nil {
			return nil, 0, err
		}
		return generator, cfg.Gemini.MaxLogLength, nil

	case ai.ProviderOpenAI:
		apiKey, err := secrets.Load(secrets.Source{
			Name:  "openai api key",
			Value: cfg.OpenAI.APIKey,
			File:  cfg.OpenAI.APIKeyFile,
			Env:   "OPENAI_API_KEY",
		})
		if err != nil {
			return nil, 0, fmt.Errorf("%w (set ai.openai.api-key-file or OPENAI_API_KEY)", err)
		}

		genLogger := logger.WithCommonFields(log, ai.ProviderOpenAI, cfg.OpenAI.Model)
		generator, err := openai.NewGenerator(openai.Options{
			APIKey:       apiKey,
			Model:        cfg.OpenAI.Model,
			BaseURL:      cfg.OpenAI.BaseURL,
			MaxLogLength: cfg.OpenAI.MaxLogLength,
		}, genLogger)
		if err != nil {
			return nil, 0, err
		}
		return ai.WithRetry(generator, retryConfig(cfg.OpenAI.MaxRetries), genLogger), cfg.OpenAI.MaxLogLength, nil

	case ai.ProviderAnthropic:
		apiKey, err := secrets.Load(secrets.Source{
			Name:  "anthropic api key",
			Value: cfg.Anthropic.APIKey,
			File:  cfg.Anthropic.APIKeyFile,
			Env:   "ANTHROPIC_API_KEY",
		})
		if err != nil {
			return nil, 0, fmt.Errorf("%w (set ai.anthropic.api-key-file or ANTHROPIC_API_KEY)", err)
		}

		genLogger := logger.WithCommonFields(log, ai.ProviderAnthropic, cfg.Anthropic.Model)
		generator, err := anthropic.NewGenerator(anthropic.Options{
			APIKey:       apiKey,
			Model:        cfg.Anthropic.Model,
			MaxLogLength: cfg.Anthropic.MaxLogLength,
		}, genLogger)
		if err != nil {
			return nil, 0, err
		}
		return ai.WithRetry(generator, retryConfig(cfg.Anthropic.MaxRetries), genLogger), cfg.Anthropic.MaxLogLength, nil

	default:
		return nil, 0, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}
}

func retryConfig(maxRetries int) ai.RetryConfig {
	cfg := ai.DefaultRetryConfig()
	if maxRetries > 0 {
		cfg.MaxAttempts = maxRetries
	}
	return cfg
}
