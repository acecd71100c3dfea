package evaluator

import (
	"context"
	"strings"
	"time"

	"github.com/spigell/mock-interviewer/internal/bank"
	"go.uber.org/zap"
)

// DefaultTimeout bounds a single LLM evaluation.
const DefaultTimeout = 20 * time.Second

// Hybrid evaluates with the LLM when one is configured and falls back to the
// rule-based evaluator on any LLM failure. It never returns an error.
type Hybrid struct {
	rules   *RuleBased
	llm     Evaluator
	timeout time.Duration
	logger  *zap.Logger
}

// NewHybrid combines rules with an optional llm evaluator. A nil llm disables
// the LLM path. A non-positive timeout selects DefaultTimeout.
func NewHybrid(rules *RuleBased, llm Evaluator, timeout time.Duration, logger *zap.Logger) *Hybrid {
	if rules == nil {
		rules = NewRuleBased(nil, logger)
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hybrid{rules: rules, llm: llm, timeout: timeout, logger: logger}
}

// AIEnabled reports whether the LLM path is configured.
func (h *Hybrid) AIEnabled() bool {
	return h.llm != nil
}

func (h *Hybrid) Evaluate(ctx context.Context, q bank.Question, answer string) (*Evaluation, error) {
	if h.llm == nil || strings.TrimSpace(answer) == "" {
		return h.rules.evaluate(q, answer), nil
	}

	llmCtx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	eval, err := h.llm.Evaluate(llmCtx, q, answer)
	if err == nil && eval != nil {
		return eval, nil
	}

	reason := "llm evaluation returned no result"
	if err != nil {
		reason = err.Error()
	}

	h.logger.Warn("llm evaluation failed, using rule-based result",
		zap.Int("question_id", q.ID),
		zap.String("reason", reason),
	)

	fallback := h.rules.evaluate(q, answer)
	fallback.Source = SourceFallback
	fallback.Degraded = true
	fallback.DegradedReason = reason
	return fallback, nil
}
