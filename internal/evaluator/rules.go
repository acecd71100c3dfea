package evaluator

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/spigell/mock-interviewer/internal/bank"
)

// Heuristic weights used when a question has no expected keywords.
const (
	heuristicBase         = 40
	bonusDetailed         = 25
	bonusModerate         = 15
	bonusShort            = 10
	bonusFunctionMention  = 20
	bonusFormulaSyntax    = 15
	depthPenaltyBrief     = 10
	depthPenaltyMinimal   = 20
	practicalNoExamplePen = 5
)

var (
	formulaPattern = regexp.MustCompile(`=\s*[A-Za-z]+\s*\(|[A-Za-z]+\([^)]*\)|\$[A-Za-z]+\$?[0-9]+|[A-Za-z]+[0-9]+:[A-Za-z]+[0-9]+`)
	examplePhrases = []string{"for example", "e.g.", "for instance", "such as", "like ="}
)

// input is the immutable view of an answer shared by the rules.
type input struct {
	question bank.Question
	answer   string
	length   ResponseLength
}

// scorecard accumulates rule results. Score is the headline score, depth and
// practical penalties are subtracted from it for the sub-scores.
type scorecard struct {
	score            int
	depthPenalty     int
	practicalPenalty int
	matched          []string
	missing          []string
	functions        []string
	strengths        []string
	weaknesses       []string
}

// Rule is a single heuristic applied to an answer.
type Rule interface {
	Name() string
	Apply(in input, card *scorecard)
}

// DefaultRules returns the rule chain used by the rule-based evaluator.
func DefaultRules() []Rule {
	return []Rule{
		&keywordCoverageRule{},
		&lengthRule{},
		&functionMentionRule{},
		&formulaSyntaxRule{},
	}
}

type keywordCoverageRule struct{}

func (r *keywordCoverageRule) Name() string { return "keyword_coverage" }

func (r *keywordCoverageRule) Apply(in input, card *scorecard) {
	if len(in.question.Keywords) == 0 {
		card.score = heuristicBase
		return
	}

	card.matched, card.missing = matchKeywords(in.answer, in.question.Keywords)
	card.score = roundDiv(MaxScore*len(card.matched), len(in.question.Keywords))

	if len(card.matched) > 0 {
		card.strengths = append(card.strengths, fmt.Sprintf("Covered key concepts: %s", strings.Join(card.matched, ", ")))
	}
	if len(card.missing) > 0 {
		card.weaknesses = append(card.weaknesses, fmt.Sprintf("Did not mention: %s", strings.Join(card.missing, ", ")))
	}
}

type lengthRule struct{}

func (r *lengthRule) Name() string { return "answer_length" }

func (r *lengthRule) Apply(in input, card *scorecard) {
	heuristic := len(in.question.Keywords) == 0
	words := in.length.Words

	switch {
	case words > 30:
		if heuristic {
			card.score += bonusDetailed
		}
	case words > 15:
		if heuristic {
			card.score += bonusModerate
		}
	case words > 5:
		if heuristic {
			card.score += bonusShort
		}
	}

	switch in.length.Quality {
	case QualityDetailed:
		card.strengths = append(card.strengths, "Detailed explanation")
	case QualityBrief:
		card.depthPenalty += depthPenaltyBrief
		card.weaknesses = append(card.weaknesses, "Could explain the reasoning in more detail")
	default:
		card.depthPenalty += depthPenaltyMinimal
		card.weaknesses = append(card.weaknesses, "Answer is too brief")
	}
}

type functionMentionRule struct{}

func (r *functionMentionRule) Name() string { return "function_mention" }

func (r *functionMentionRule) Apply(in input, card *scorecard) {
	card.functions = mentionedFunctions(in.answer)
	if len(card.functions) == 0 {
		return
	}
	if len(in.question.Keywords) == 0 {
		card.score += bonusFunctionMention
	}
	shown := card.functions
	if len(shown) > 2 {
		shown = shown[:2]
	}
	card.strengths = append(card.strengths, fmt.Sprintf("Mentioned: %s", strings.Join(shown, ", ")))
}

type formulaSyntaxRule struct{}

func (r *formulaSyntaxRule) Name() string { return "formula_syntax" }

func (r *formulaSyntaxRule) Apply(in input, card *scorecard) {
	hasFormula := formulaPattern.MatchString(in.answer)
	hasExample := hasFormula || containsAny(strings.ToLower(in.answer), examplePhrases)

	if hasFormula {
		if len(in.question.Keywords) == 0 {
			card.score += bonusFormulaSyntax
		}
		card.strengths = append(card.strengths, "Uses concrete formula syntax")
	}
	if !hasExample {
		card.practicalPenalty += practicalNoExamplePen
		card.weaknesses = append(card.weaknesses, "Add a concrete example or formula")
	}
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func roundDiv(a, b int) int {
	if b == 0 {
		return 0
	}
	return (2*a + b) / (2 * b)
}
