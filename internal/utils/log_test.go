package utils

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestTruncateForLog(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		limit  int
		expect string
	}{
		{
			name:   "returns empty when limit non-positive",
			input:  "What does VLOOKUP do?",
			limit:  0,
			expect: "",
		},
		{
			name:   "shorter than limit",
			input:  "=SUM(A1:A10)",
			limit:  20,
			expect: "=SUM(A1:A10)",
		},
		{
			name:   "truncates and adds ellipsis",
			input:  "pivot tables summarise data",
			limit:  5,
			expect: "pivot...",
		},
		{
			name:   "trims surrounding whitespace",
			input:  "  answer  ",
			limit:  5,
			expect: "answe...",
		},
		{
			name:   "counts runes not bytes",
			input:  "формула",
			limit:  3,
			expect: "фор...",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := TruncateForLog(tt.input, tt.limit); got != tt.expect {
				t.Fatalf("expected %q, got %q", tt.expect, got)
			}
		})
	}
}

func TestUniqueStrings(t *testing.T) {
	got := UniqueStrings([]string{"clear", " clear ", "", "concise", "examples", "clear"}, 0)
	want := []string{"clear", "concise", "examples"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}

	limited := UniqueStrings([]string{"a", "b", "c"}, 2)
	if len(limited) != 2 || limited[1] != "b" {
		t.Fatalf("unexpected limited result: %v", limited)
	}
}

func TestWords(t *testing.T) {
	if got := Words("  use\tSUM\nhere "); len(got) != 3 {
		t.Fatalf("expected 3 words, got %v", got)
	}
	if got := Words("   "); len(got) != 0 {
		t.Fatalf("expected no words, got %v", got)
	}
}

func TestWaitFor(t *testing.T) {
	original := newTimer
	t.Cleanup(func() { newTimer = original })

	var stopped int
	stub := func(ch <-chan time.Time) func(time.Duration) (<-chan time.Time, func() bool) {
		return func(time.Duration) (<-chan time.Time, func() bool) {
			return ch, func() bool { stopped++; return true }
		}
	}

	fired := make(chan time.Time, 1)
	fired <- time.Now()
	newTimer = stub(fired)
	if err := WaitFor(context.Background(), time.Hour); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	newTimer = stub(make(chan time.Time))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := WaitFor(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	if stopped != 2 {
		t.Fatalf("expected the timer to be stopped after each wait, got %d", stopped)
	}

	if err := WaitFor(context.Background(), 0); err != nil {
		t.Fatalf("expected no error for zero duration, got %v", err)
	}
}

func TestWaitForRealTimerHonoursDeadline(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	start := time.Now()
	if err := WaitFor(ctx, time.Minute); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected context.DeadlineExceeded, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Fatalf("expected WaitFor to return at the deadline, took %s", elapsed)
	}
}
