package evaluator

import (
	"context"
	"math"
	"time"
	"unicode/utf8"

	"github.com/spigell/mock-interviewer/internal/bank"
	"github.com/spigell/mock-interviewer/internal/utils"
)

// Source tells which path produced an evaluation.
type Source string

const (
	SourceRuleBased Source = "rule_based"
	SourceAI        Source = "ai"
	SourceAIText    Source = "ai_text"
	SourceFallback  Source = "fallback"
)

// Answer quality buckets by word count.
const (
	QualityMinimal  = "minimal"
	QualityBrief    = "brief"
	QualityDetailed = "detailed"
)

const (
	MinScore = 0
	MaxScore = 100
)

// ResponseLength describes the size of an answer.
type ResponseLength struct {
	Words      int    `json:"words"`
	Characters int    `json:"characters"`
	Quality    string `json:"quality"`
}

// Evaluation is the immutable result of scoring one answer.
type Evaluation struct {
	QuestionID           int            `json:"question_id"`
	Score                int            `json:"score"`
	TechnicalAccuracy    int            `json:"technical_accuracy"`
	Depth                int            `json:"depth"`
	PracticalApplication int            `json:"practical_application"`
	Strengths            []string       `json:"strengths"`
	Weaknesses           []string       `json:"weaknesses"`
	Feedback             string         `json:"feedback"`
	MatchedKeywords      []string       `json:"matched_keywords,omitempty"`
	MissingKeywords      []string       `json:"missing_keywords,omitempty"`
	Source               Source         `json:"source"`
	Degraded             bool           `json:"degraded"`
	DegradedReason       string         `json:"degraded_reason,omitempty"`
	ResponseLength       ResponseLength `json:"response_length"`
	EvaluatedAt          time.Time      `json:"evaluated_at"`
}

// Evaluator scores a candidate answer to a question.
type Evaluator interface {
	Evaluate(ctx context.Context, q bank.Question, answer string) (*Evaluation, error)
}

// Measure returns the response length metrics of answer.
func Measure(answer string) ResponseLength {
	words := len(utils.Words(answer))
	quality := QualityMinimal
	switch {
	case words > 20:
		quality = QualityDetailed
	case words > 5:
		quality = QualityBrief
	}
	return ResponseLength{
		Words:      words,
		Characters: utf8.RuneCountInString(answer),
		Quality:    quality,
	}
}

func clamp(v int) int {
	if v < MinScore {
		return MinScore
	}
	if v > MaxScore {
		return MaxScore
	}
	return v
}

// clampFloat bounds v before converting it, so huge values cannot overflow int.
func clampFloat(v float64) int {
	return int(math.Round(math.Max(MinScore, math.Min(MaxScore, v))))
}
