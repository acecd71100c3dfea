package evaluator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"text/template"
	"time"
	"unicode"
	"unicode/utf8"

	_ "embed"

	"github.com/mitchellh/mapstructure"
	"github.com/spigell/mock-interviewer/internal/ai"
	"github.com/spigell/mock-interviewer/internal/bank"
	"github.com/spigell/mock-interviewer/internal/utils"
	"go.uber.org/zap"
)

//go:embed prompt.md
var promptTemplate string

const (
	systemPrompt = "You are an expert spreadsheet interviewer. You grade candidate answers on a 0-100 scale " +
		"and reply with JSON only."
	defaultMaxLogLength = 200
	maxAnswerRunes      = 3000
	maxTextFeedbackRune = 200
)

var (
	promptTmpl    = template.Must(template.New("prompt").Funcs(template.FuncMap{"join": strings.Join}).Parse(promptTemplate))
	numberPattern = regexp.MustCompile(`\d+`)
)

// LLM delegates scoring to a language model through an ai.Generator.
type LLM struct {
	generator ai.Generator
	logger    *zap.Logger
	maxLogLen int
	now       func() time.Time
}

// NewLLM creates an LLM-assisted evaluator.
func NewLLM(generator ai.Generator, logger *zap.Logger, maxLogLength int) *LLM {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LLM{generator: generator, logger: logger, maxLogLen: maxLogLength, now: time.Now}
}

// Evaluate asks the model to grade answer. Generator failures and responses
// without any usable score are returned as errors.
func (e *LLM) Evaluate(ctx context.Context, q bank.Question, answer string) (*Evaluation, error) {
	if e.generator == nil {
		return nil, errors.New("llm evaluator has no generator")
	}

	prompt, err := buildPrompt(q, answer)
	if err != nil {
		return nil, err
	}

	e.logger.Debug("llm evaluation request",
		zap.Int("question_id", q.ID),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, e.maxLogLen)),
	)

	raw, err := e.generator.GenerateContent(ctx, systemPrompt, prompt)
	if err != nil {
		return nil, err
	}

	e.logger.Debug("llm evaluation response",
		zap.Int("question_id", q.ID),
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, e.maxLogLen)),
	)

	eval, err := parseResponse(raw)
	if err != nil {
		return nil, err
	}

	eval.QuestionID = q.ID
	eval.EvaluatedAt = e.now()
	eval.ResponseLength = Measure(strings.TrimSpace(answer))
	if len(q.Keywords) > 0 {
		eval.MatchedKeywords, eval.MissingKeywords = matchKeywords(answer, q.Keywords)
	}
	return eval, nil
}

type promptData struct {
	Type       string
	Difficulty string
	Category   string
	Question   string
	Answer     string
	Keywords   []string
}

func buildPrompt(q bank.Question, answer string) (string, error) {
	var buf bytes.Buffer
	err := promptTmpl.Execute(&buf, promptData{
		Type:       q.Type,
		Difficulty: string(q.Difficulty),
		Category:   string(q.Category),
		Question:   q.Prompt,
		Answer:     sanitizeAnswer(answer),
		Keywords:   q.Keywords,
	})
	if err != nil {
		return "", fmt.Errorf("render evaluation prompt: %w", err)
	}
	return buf.String(), nil
}

// sanitizeAnswer keeps the candidate text inside its prompt block: brackets
// that could fake a section header are softened, triple quotes collapsed,
// control characters dropped and the length capped.
func sanitizeAnswer(answer string) string {
	answer = strings.ReplaceAll(answer, "\r\n", "\n")
	answer = strings.ReplaceAll(answer, `"""`, `"`)
	answer = strings.NewReplacer("[", "(", "]", ")").Replace(answer)
	answer = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, answer)
	answer = strings.TrimSpace(answer)

	if runes := []rune(answer); len(runes) > maxAnswerRunes {
		answer = string(runes[:maxAnswerRunes])
	}
	return answer
}

type llmPayload struct {
	Score                float64  `mapstructure:"score"`
	TechnicalAccuracy    *float64 `mapstructure:"technical_accuracy"`
	Depth                *float64 `mapstructure:"depth"`
	PracticalApplication *float64 `mapstructure:"practical_application"`
	Strengths            []string `mapstructure:"strengths"`
	Improvements         []string `mapstructure:"improvements"`
	OverallFeedback      string   `mapstructure:"overall_feedback"`
}

func parseResponse(raw string) (*Evaluation, error) {
	var data map[string]any
	if err := json.Unmarshal([]byte(extractJSON(raw)), &data); err == nil {
		eval, err := decodePayload(data)
		if err == nil {
			return eval, nil
		}
		if text, ok := parseTextResponse(raw); ok {
			return text, nil
		}
		return nil, &ai.ErrInvalidResponse{Content: raw, Err: err}
	}

	if text, ok := parseTextResponse(raw); ok {
		return text, nil
	}
	return nil, &ai.ErrInvalidResponse{Content: raw, Err: errors.New("no JSON object or score found in llm response")}
}

func decodePayload(data map[string]any) (*Evaluation, error) {
	if err := validatePayload(data); err != nil {
		return nil, err
	}

	var payload llmPayload
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &payload,
	})
	if err != nil {
		return nil, fmt.Errorf("create payload decoder: %w", err)
	}
	if err := decoder.Decode(data); err != nil {
		return nil, fmt.Errorf("decode llm payload: %w", err)
	}
	if math.IsNaN(payload.Score) || math.IsInf(payload.Score, 0) {
		return nil, errors.New("llm score is not a number")
	}

	score := clampFloat(payload.Score)
	sub := func(v *float64) int {
		if v == nil || math.IsNaN(*v) {
			return score
		}
		return clampFloat(*v)
	}

	feedback := strings.TrimSpace(payload.OverallFeedback)
	if feedback == "" {
		feedback = "Response evaluated"
	}

	return &Evaluation{
		Score:                score,
		TechnicalAccuracy:    sub(payload.TechnicalAccuracy),
		Depth:                sub(payload.Depth),
		PracticalApplication: sub(payload.PracticalApplication),
		Strengths:            utils.UniqueStrings(payload.Strengths, 0),
		Weaknesses:           utils.UniqueStrings(payload.Improvements, 0),
		Feedback:             feedback,
		Source:               SourceAI,
	}, nil
}

// parseTextResponse reads a score from the first line that mentions "score"
// or "/100". It reports false when no such line carries a number.
func parseTextResponse(raw string) (*Evaluation, bool) {
	raw = strings.TrimSpace(raw)
	score := -1
	for _, line := range strings.Split(raw, "\n") {
		lower := strings.ToLower(line)
		if !strings.Contains(lower, "score") && !strings.Contains(lower, "/100") {
			continue
		}
		if n := numberPattern.FindString(line); n != "" {
			v, err := strconv.Atoi(n)
			if errors.Is(err, strconv.ErrRange) {
				v, err = MaxScore, nil
			}
			if err == nil {
				score = clamp(v)
				break
			}
		}
	}
	if score < 0 {
		return nil, false
	}

	feedback := raw
	if utf8.RuneCountInString(feedback) > maxTextFeedbackRune {
		feedback = string([]rune(feedback)[:maxTextFeedbackRune]) + "..."
	}

	return &Evaluation{
		Score:                score,
		TechnicalAccuracy:    score,
		Depth:                clamp(score - 10),
		PracticalApplication: clamp(score - 5),
		Strengths:            []string{"Model provided free-form feedback"},
		Weaknesses:           []string{"See detailed feedback"},
		Feedback:             feedback,
		Source:               SourceAIText,
	}, true
}

// extractJSON strips markdown code fences and surrounding prose, returning the
// outermost {...} block when one exists.
func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	raw = strings.TrimSpace(raw)

	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start != -1 && end > start {
		return raw[start : end+1]
	}
	return raw
}
