package ai

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"time"

	"github.com/spigell/mock-interviewer/internal/utils"
	"go.uber.org/zap"
)

// RetryConfig controls the backoff used by WithRetry.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// DefaultRetryConfig returns the backoff used when nothing is configured.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		InitialWait: 500 * time.Millisecond,
		MaxWait:     5 * time.Second,
		Multiplier:  2,
	}
}

var wait = utils.WaitFor

type retryGenerator struct {
	inner  Generator
	config RetryConfig
	logger *zap.Logger
}

// WithRetry wraps g so that transient failures are retried with exponential backoff and jitter.
// Invalid responses are retried once; context errors are returned immediately.
func WithRetry(g Generator, cfg RetryConfig, logger *zap.Logger) Generator {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	if cfg.Multiplier <= 0 {
		cfg.Multiplier = 2
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &retryGenerator{inner: g, config: cfg, logger: logger}
}

func (r *retryGenerator) GenerateContent(ctx context.Context, systemPrompt, message string) (string, error) {
	var lastErr error
	invalidRetried := false

	for attempt := range r.config.MaxAttempts {
		out, err := r.inner.GenerateContent(ctx, systemPrompt, message)
		if err == nil {
			return out, nil
		}
		lastErr = err

		if !shouldRetry(err, &invalidRetried) {
			return "", err
		}

		if attempt == r.config.MaxAttempts-1 {
			break
		}

		delay := r.backoff(attempt, err)
		r.logger.Warn("retrying llm request",
			zap.Int("attempt", attempt+1),
			zap.Duration("delay", delay),
			zap.Error(err),
		)
		if err := wait(ctx, delay); err != nil {
			return "", err
		}
	}

	return "", lastErr
}

func (r *retryGenerator) Model() string {
	return r.inner.Model()
}

func shouldRetry(err error, invalidRetried *bool) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var invalid *ErrInvalidResponse
	if errors.As(err, &invalid) {
		if *invalidRetried {
			return false
		}
		*invalidRetried = true
		return true
	}

	return true
}

func (r *retryGenerator) backoff(attempt int, err error) time.Duration {
	var rl *ErrRateLimit
	if errors.As(err, &rl) && rl.RetryAfter > 0 {
		return rl.RetryAfter
	}

	d := float64(r.config.InitialWait) * math.Pow(r.config.Multiplier, float64(attempt))
	if r.config.MaxWait > 0 && d > float64(r.config.MaxWait) {
		d = float64(r.config.MaxWait)
	}

	// ±20% jitter
	d += d * 0.2 * (2*rand.Float64() - 1)
	if d < 0 {
		d = 0
	}
	return time.Duration(d)
}
