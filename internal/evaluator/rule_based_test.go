package evaluator

import (
	"context"
	"reflect"
	"strings"
	"testing"

	"github.com/spigell/mock-interviewer/internal/bank"
	"go.uber.org/zap"
)

func mustQuestion(t *testing.T, id int) bank.Question {
	t.Helper()
	q, ok := bank.Default().Get(id)
	if !ok {
		t.Fatalf("question %d not found in default bank", id)
	}
	return q
}

func TestRuleBasedAllKeywordsYieldMaxScore(t *testing.T) {
	e := NewRuleBased(nil, zap.NewNop())

	for _, q := range bank.Default().All() {
		answer := strings.Join(q.Keywords, " ")
		eval, err := e.Evaluate(context.Background(), q, answer)
		if err != nil {
			t.Fatalf("question %d: unexpected error: %v", q.ID, err)
		}
		if eval.Score != MaxScore {
			t.Fatalf("question %d: expected max score for %q, got %d (missing %v)", q.ID, answer, eval.Score, eval.MissingKeywords)
		}
		if len(eval.MissingKeywords) != 0 {
			t.Fatalf("question %d: expected no missing keywords, got %v", q.ID, eval.MissingKeywords)
		}
	}
}

func TestRuleBasedEmptyAnswerYieldsMinScore(t *testing.T) {
	e := NewRuleBased(nil, nil)

	for _, answer := range []string{"", "   ", "\n\t"} {
		for _, q := range bank.Default().All() {
			eval, err := e.Evaluate(context.Background(), q, answer)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if eval.Score != MinScore || eval.Depth != MinScore || eval.PracticalApplication != MinScore {
				t.Fatalf("question %d: expected min scores, got %+v", q.ID, eval)
			}
			if strings.TrimSpace(eval.Feedback) == "" {
				t.Fatalf("question %d: expected feedback for empty answer", q.ID)
			}
			if !reflect.DeepEqual(eval.MissingKeywords, q.Keywords) {
				t.Fatalf("question %d: expected every keyword missing, got %v", q.ID, eval.MissingKeywords)
			}
			if eval.Source != SourceRuleBased {
				t.Fatalf("unexpected source %s", eval.Source)
			}
		}
	}
}

func TestRuleBasedPartialCoverage(t *testing.T) {
	e := NewRuleBased(nil, nil)
	q := mustQuestion(t, 3)

	eval, _ := e.Evaluate(context.Background(), q, "VLOOKUP searches the first column of a table")
	if eval.Score != 50 {
		t.Fatalf("expected 50, got %d", eval.Score)
	}
	if !reflect.DeepEqual(eval.MatchedKeywords, []string{"VLOOKUP", "table"}) {
		t.Fatalf("unexpected matched keywords: %v", eval.MatchedKeywords)
	}
	if !reflect.DeepEqual(eval.MissingKeywords, []string{"lookup", "match"}) {
		t.Fatalf("unexpected missing keywords: %v", eval.MissingKeywords)
	}
	if !strings.Contains(eval.Feedback, "Consider mentioning: lookup, match.") {
		t.Fatalf("feedback should name missing keywords: %q", eval.Feedback)
	}
	if eval.Depth != 40 {
		t.Fatalf("expected brief answer depth penalty, got %d", eval.Depth)
	}
}

func TestRuleBasedHeuristicsWithoutKeywords(t *testing.T) {
	e := NewRuleBased(nil, nil)
	q := bank.Question{ID: 42, Prompt: "Sum a column", Category: bank.CategoryBasics}

	tests := []struct {
		name          string
		answer        string
		wantScore     int
		wantDepth     int
		wantPractical int
	}{
		{
			name:          "function and formula",
			answer:        "Use =SUM(A1:A10) to add the range",
			wantScore:     85,
			wantDepth:     75,
			wantPractical: 85,
		},
		{
			name:          "long prose without formulas",
			answer:        strings.Repeat("explain the approach step by step ", 7),
			wantScore:     65,
			wantDepth:     65,
			wantPractical: 60,
		},
		{
			name:          "single word",
			answer:        "dunno",
			wantScore:     40,
			wantDepth:     20,
			wantPractical: 35,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eval, _ := e.Evaluate(context.Background(), q, tt.answer)
			if eval.Score != tt.wantScore || eval.Depth != tt.wantDepth || eval.PracticalApplication != tt.wantPractical {
				t.Fatalf("expected %d/%d/%d, got %d/%d/%d", tt.wantScore, tt.wantDepth, tt.wantPractical,
					eval.Score, eval.Depth, eval.PracticalApplication)
			}
		})
	}
}

func TestRuleBasedCustomRules(t *testing.T) {
	e := NewRuleBased([]Rule{&keywordCoverageRule{}}, nil)
	q := mustQuestion(t, 1)

	eval, _ := e.Evaluate(context.Background(), q, "SUM")
	if eval.Score != 50 || eval.Depth != 50 {
		t.Fatalf("expected only coverage to apply, got %+v", eval)
	}
}

func TestContainsKeyword(t *testing.T) {
	tests := []struct {
		text string
		kw   string
		want bool
	}{
		{text: "=sum(a1:a10)", kw: "sum", want: true},
		{text: "use sumif here", kw: "sum", want: false},
		{text: "vlookup finds values", kw: "lookup", want: false},
		{text: "build pivot tables", kw: "pivot table", want: true},
		{text: "press f4 to add $ signs", kw: "$", want: true},
		{text: "=a1&\" \"&b1", kw: "&", want: true},
		{text: "specify a condition", kw: "if", want: false},
		{text: "=if(a1>50,\"pass\",\"fail\")", kw: "if", want: true},
		{text: "", kw: "sum", want: false},
		{text: "sum", kw: " ", want: false},
	}

	for _, tt := range tests {
		if got := containsKeyword(tt.text, tt.kw); got != tt.want {
			t.Fatalf("containsKeyword(%q, %q) = %v, want %v", tt.text, tt.kw, got, tt.want)
		}
	}
}

func TestMeasure(t *testing.T) {
	tests := []struct {
		answer  string
		words   int
		quality string
	}{
		{answer: "", words: 0, quality: QualityMinimal},
		{answer: "use SUM", words: 2, quality: QualityMinimal},
		{answer: "use the SUM function over the range", words: 7, quality: QualityBrief},
		{answer: strings.Repeat("word ", 21), words: 21, quality: QualityDetailed},
	}

	for _, tt := range tests {
		got := Measure(tt.answer)
		if got.Words != tt.words || got.Quality != tt.quality {
			t.Fatalf("Measure(%q) = %+v", tt.answer, got)
		}
	}
}
