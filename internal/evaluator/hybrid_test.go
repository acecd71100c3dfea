package evaluator

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/spigell/mock-interviewer/internal/ai"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestHybridWithoutLLMUsesRules(t *testing.T) {
	h := NewHybrid(nil, nil, 0, nil)
	if h.AIEnabled() {
		t.Fatal("expected AI to be disabled")
	}

	eval, err := h.Evaluate(context.Background(), mustQuestion(t, 1), "SUM formula")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if eval.Source != SourceRuleBased || eval.Degraded {
		t.Fatalf("expected plain rule-based result, got %s degraded=%v", eval.Source, eval.Degraded)
	}
	if eval.Score != MaxScore {
		t.Fatalf("expected max score, got %d", eval.Score)
	}
}

func TestHybridUsesLLMResult(t *testing.T) {
	stub := &stubGenerator{response: `{"score": 77, "overall_feedback": "fine"}`}
	h := NewHybrid(nil, NewLLM(stub, nil, 0), time.Second, nil)
	if !h.AIEnabled() {
		t.Fatal("expected AI to be enabled")
	}

	eval, err := h.Evaluate(context.Background(), mustQuestion(t, 1), "SUM formula")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if eval.Source != SourceAI || eval.Score != 77 {
		t.Fatalf("expected ai result with score 77, got %s %d", eval.Source, eval.Score)
	}
}

func TestHybridFallsBackOnLLMError(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	stub := &stubGenerator{err: &ai.ErrRateLimit{Err: errors.New("quota exhausted")}}
	h := NewHybrid(nil, NewLLM(stub, nil, 0), time.Second, zap.New(core))
	q := mustQuestion(t, 3)
	answer := "VLOOKUP searches the first column of a table"

	eval, err := h.Evaluate(context.Background(), q, answer)
	if err != nil {
		t.Fatalf("hybrid must not fail, got %v", err)
	}

	want := NewRuleBased(nil, nil).evaluate(q, answer)
	if eval.Score != want.Score || eval.Depth != want.Depth {
		t.Fatalf("expected rule-based scores %d/%d, got %d/%d", want.Score, want.Depth, eval.Score, eval.Depth)
	}
	if eval.Source != SourceFallback || !eval.Degraded {
		t.Fatalf("expected degraded fallback, got %s degraded=%v", eval.Source, eval.Degraded)
	}
	if !strings.Contains(eval.DegradedReason, "quota exhausted") {
		t.Fatalf("unexpected degraded reason: %q", eval.DegradedReason)
	}

	entries := logs.FilterMessage("llm evaluation failed, using rule-based result").All()
	if len(entries) != 1 {
		t.Fatalf("expected one warning, got %d", len(entries))
	}
	if got := entries[0].ContextMap()["question_id"]; got != int64(q.ID) {
		t.Fatalf("unexpected question_id field: %v", got)
	}
}

func TestHybridFallsBackOnInvalidResponse(t *testing.T) {
	stub := &stubGenerator{response: "no idea"}
	h := NewHybrid(nil, NewLLM(stub, nil, 0), time.Second, nil)

	eval, _ := h.Evaluate(context.Background(), mustQuestion(t, 6), "SUMIF adds conditional totals")
	if eval.Source != SourceFallback || !eval.Degraded {
		t.Fatalf("expected fallback, got %s", eval.Source)
	}
	if eval.Score != MaxScore {
		t.Fatalf("expected rule-based max score, got %d", eval.Score)
	}
}

func TestHybridSkipsLLMForEmptyAnswer(t *testing.T) {
	stub := &stubGenerator{response: `{"score": 90}`}
	h := NewHybrid(nil, NewLLM(stub, nil, 0), time.Second, nil)

	eval, _ := h.Evaluate(context.Background(), mustQuestion(t, 2), "  ")
	if stub.calls != 0 {
		t.Fatalf("expected llm not to be called, got %d calls", stub.calls)
	}
	if eval.Score != MinScore || eval.Source != SourceRuleBased {
		t.Fatalf("expected rule-based min score, got %+v", eval)
	}
}

func TestHybridTimeoutFallsBack(t *testing.T) {
	stub := &stubGenerator{block: true}
	h := NewHybrid(nil, NewLLM(stub, nil, 0), 10*time.Millisecond, nil)

	start := time.Now()
	eval, err := h.Evaluate(context.Background(), mustQuestion(t, 1), "SUM formula")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if time.Since(start) > 5*time.Second {
		t.Fatal("timeout was not applied")
	}
	if eval.Source != SourceFallback || !strings.Contains(eval.DegradedReason, context.DeadlineExceeded.Error()) {
		t.Fatalf("expected deadline fallback, got %s %q", eval.Source, eval.DegradedReason)
	}
}
