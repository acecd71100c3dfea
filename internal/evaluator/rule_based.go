package evaluator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spigell/mock-interviewer/internal/bank"
	"go.uber.org/zap"
)

// RuleBased scores answers with keyword coverage and heuristics. It has no
// external dependencies and never fails.
type RuleBased struct {
	rules  []Rule
	logger *zap.Logger
	now    func() time.Time
}

// NewRuleBased creates a rule-based evaluator. Nil rules select DefaultRules.
func NewRuleBased(rules []Rule, logger *zap.Logger) *RuleBased {
	if rules == nil {
		rules = DefaultRules()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RuleBased{rules: rules, logger: logger, now: time.Now}
}

func (e *RuleBased) Evaluate(_ context.Context, q bank.Question, answer string) (*Evaluation, error) {
	return e.evaluate(q, answer), nil
}

func (e *RuleBased) evaluate(q bank.Question, answer string) *Evaluation {
	answer = strings.TrimSpace(answer)
	length := Measure(answer)

	if answer == "" {
		return &Evaluation{
			QuestionID:      q.ID,
			Strengths:       []string{},
			Weaknesses:      []string{"No answer was provided"},
			Feedback:        emptyAnswerFeedback(q),
			MissingKeywords: append([]string(nil), q.Keywords...),
			Source:          SourceRuleBased,
			ResponseLength:  length,
			EvaluatedAt:     e.now(),
		}
	}

	in := input{question: q, answer: answer, length: length}
	card := &scorecard{}
	for _, rule := range e.rules {
		before := card.score
		rule.Apply(in, card)
		e.logger.Debug("evaluation rule",
			zap.String("name", rule.Name()),
			zap.Int("question_id", q.ID),
			zap.Int("score_before", before),
			zap.Int("score_after", card.score),
		)
	}

	score := clamp(card.score)
	return &Evaluation{
		QuestionID:           q.ID,
		Score:                score,
		TechnicalAccuracy:    score,
		Depth:                clamp(score - card.depthPenalty),
		PracticalApplication: clamp(score - card.practicalPenalty),
		Strengths:            nonNil(card.strengths),
		Weaknesses:           nonNil(card.weaknesses),
		Feedback:             feedback(score, q, card),
		MatchedKeywords:      card.matched,
		MissingKeywords:      card.missing,
		Source:               SourceRuleBased,
		ResponseLength:       length,
		EvaluatedAt:          e.now(),
	}
}

func emptyAnswerFeedback(q bank.Question) string {
	if len(q.Keywords) == 0 {
		return "No answer was provided. Explain your approach and give a concrete example."
	}
	return fmt.Sprintf("No answer was provided. A good answer would cover: %s.", strings.Join(q.Keywords, ", "))
}

func feedback(score int, q bank.Question, card *scorecard) string {
	var b strings.Builder
	switch {
	case score >= 80:
		b.WriteString("Strong answer.")
	case score >= 50:
		b.WriteString("Partially correct answer.")
	default:
		b.WriteString("The answer misses most of the expected points.")
	}

	switch {
	case len(q.Keywords) == 0:
	case len(card.missing) == 0:
		b.WriteString(" All key concepts were covered.")
	default:
		fmt.Fprintf(&b, " Consider mentioning: %s.", strings.Join(card.missing, ", "))
	}

	if card.depthPenalty >= depthPenaltyMinimal {
		b.WriteString(" Expand the answer with an explanation of how and why.")
	}
	if card.practicalPenalty > 0 {
		b.WriteString(" A short example or formula would make it more convincing.")
	}
	return b.String()
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
