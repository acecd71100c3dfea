package report

import (
	"errors"
	"math"
	"sort"
	"time"

	"github.com/spigell/mock-interviewer/internal/bank"
	"github.com/spigell/mock-interviewer/internal/evaluator"
	"github.com/spigell/mock-interviewer/internal/utils"
)

// ErrNoEvaluations is returned when a report is requested for zero turns.
var ErrNoEvaluations = errors.New("no evaluations to report on")

const (
	maxListItems  = 5
	previewRunes  = 60
	sectionStrong = 80
	sectionOK     = 60
)

// Section levels.
const (
	LevelStrong   = "STRONG"
	LevelAdequate = "ADEQUATE"
	LevelWeak     = "WEAK"
)

// Entry pairs a question with the evaluation of its answer.
type Entry struct {
	Question   bank.Question
	Evaluation *evaluator.Evaluation
}

// Section aggregates the turns of one category.
type Section struct {
	Category  bank.Category `json:"category"`
	Score     float64       `json:"score"`
	Questions int           `json:"questions"`
	Level     string        `json:"level"`
	AtMax     bool          `json:"at_max"`
}

// DetailedScores are the per-axis means.
type DetailedScores struct {
	TechnicalAccuracy    float64 `json:"technical_accuracy"`
	Depth                float64 `json:"depth"`
	PracticalApplication float64 `json:"practical_application"`
}

// QuestionResult is one row of the per-question breakdown.
type QuestionResult struct {
	Number     int              `json:"number"`
	QuestionID int              `json:"question_id"`
	Preview    string           `json:"preview"`
	Score      int              `json:"score"`
	Category   bank.Category    `json:"category"`
	Difficulty bank.Difficulty  `json:"difficulty"`
	Source     evaluator.Source `json:"source"`
}

// Distribution describes the spread of turn scores.
type Distribution struct {
	Highest     int     `json:"highest"`
	Lowest      int     `json:"lowest"`
	StdDev      float64 `json:"std_dev"`
	Consistency string  `json:"consistency"`
}

// Report is the aggregated outcome of a completed interview.
type Report struct {
	Role              string           `json:"role"`
	QuestionCount     int              `json:"question_count"`
	OverallScore      float64          `json:"overall_score"`
	DetailedScores    DetailedScores   `json:"detailed_scores"`
	Sections          []Section        `json:"sections"`
	PerformanceLevel  string           `json:"performance_level"`
	Recommendation    string           `json:"recommendation"`
	Decision          HiringDecision   `json:"hiring_decision"`
	ExecutiveSummary  string           `json:"executive_summary"`
	CriticalGaps      []string         `json:"critical_gaps"`
	Strengths         []string         `json:"strengths"`
	ImprovementAreas  []string         `json:"improvement_areas"`
	QuestionBreakdown []QuestionResult `json:"question_breakdown"`
	Distribution      Distribution     `json:"distribution"`
	RoleInsights      RoleInsights     `json:"role_insights"`
	DegradedTurns     int              `json:"degraded_turns"`
	StartedAt         time.Time        `json:"started_at"`
	CompletedAt       time.Time        `json:"completed_at"`
	DurationSeconds   float64          `json:"duration_seconds"`
}

// Duration returns the wall time of the interview.
func (r *Report) Duration() time.Duration {
	return time.Duration(r.DurationSeconds * float64(time.Second))
}

// Generate aggregates entries into a report. Entries without an evaluation
// are skipped; ErrNoEvaluations is returned when none remain.
func Generate(role string, entries []Entry, started, completed time.Time) (*Report, error) {
	scored := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.Evaluation != nil {
			scored = append(scored, e)
		}
	}
	if len(scored) == 0 {
		return nil, ErrNoEvaluations
	}

	role = bank.NormalizeRole(role)
	scores := make([]int, len(scored))
	var total, technical, depth, practical float64
	var strengths, improvements []string
	degraded := 0

	breakdown := make([]QuestionResult, 0, len(scored))
	for i, e := range scored {
		ev := e.Evaluation
		scores[i] = ev.Score
		total += float64(ev.Score)
		technical += float64(ev.TechnicalAccuracy)
		depth += float64(ev.Depth)
		practical += float64(ev.PracticalApplication)
		strengths = append(strengths, ev.Strengths...)
		improvements = append(improvements, ev.Weaknesses...)
		if ev.Degraded {
			degraded++
		}

		breakdown = append(breakdown, QuestionResult{
			Number:     i + 1,
			QuestionID: e.Question.ID,
			Preview:    preview(e.Question.Prompt),
			Score:      ev.Score,
			Category:   e.Question.Category,
			Difficulty: e.Question.Difficulty,
			Source:     ev.Source,
		})
	}

	n := float64(len(scored))
	average := total / n

	decision := decide(role, average, scores)

	r := &Report{
		Role:          role,
		QuestionCount: len(scored),
		OverallScore:  round1(average),
		DetailedScores: DetailedScores{
			TechnicalAccuracy:    round1(technical / n),
			Depth:                round1(depth / n),
			PracticalApplication: round1(practical / n),
		},
		Sections:          sections(scored),
		PerformanceLevel:  performanceLevel(average),
		Recommendation:    recommendation(decision.Decision),
		Decision:          decision,
		ExecutiveSummary:  executiveSummary(decision.Decision, average),
		CriticalGaps:      criticalGaps(role, average, scores),
		Strengths:         utils.UniqueStrings(strengths, maxListItems),
		ImprovementAreas:  utils.UniqueStrings(improvements, maxListItems),
		QuestionBreakdown: breakdown,
		Distribution:      distribution(scores),
		RoleInsights:      roleInsights(role, scored),
		DegradedTurns:     degraded,
		StartedAt:         started,
		CompletedAt:       completed,
	}
	if !started.IsZero() && completed.After(started) {
		r.DurationSeconds = math.Round(completed.Sub(started).Seconds()*10) / 10
	}
	return r, nil
}

func sections(entries []Entry) []Section {
	type acc struct {
		total, count int
		atMax        bool
	}
	byCategory := make(map[bank.Category]*acc)
	for _, e := range entries {
		a, ok := byCategory[e.Question.Category]
		if !ok {
			a = &acc{atMax: true}
			byCategory[e.Question.Category] = a
		}
		a.total += e.Evaluation.Score
		a.count++
		if e.Evaluation.Score < evaluator.MaxScore {
			a.atMax = false
		}
	}

	order := make([]bank.Category, 0, len(byCategory))
	known := make(map[bank.Category]struct{}, len(bank.Categories))
	for _, c := range bank.Categories {
		known[c] = struct{}{}
		if _, ok := byCategory[c]; ok {
			order = append(order, c)
		}
	}
	var extra []bank.Category
	for c := range byCategory {
		if _, ok := known[c]; !ok {
			extra = append(extra, c)
		}
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i] < extra[j] })
	order = append(order, extra...)

	out := make([]Section, 0, len(order))
	for _, c := range order {
		a := byCategory[c]
		score := float64(a.total) / float64(a.count)
		out = append(out, Section{
			Category:  c,
			Score:     round1(score),
			Questions: a.count,
			Level:     sectionLevel(score),
			AtMax:     a.atMax,
		})
	}
	return out
}

func sectionLevel(score float64) string {
	switch {
	case score >= sectionStrong:
		return LevelStrong
	case score >= sectionOK:
		return LevelAdequate
	default:
		return LevelWeak
	}
}

func performanceLevel(average float64) string {
	switch {
	case average >= 90:
		return "Exceptional"
	case average >= 80:
		return "Excellent"
	case average >= 70:
		return "Good"
	case average >= 60:
		return "Average"
	case average >= 50:
		return "Below Average"
	default:
		return "Poor"
	}
}

func distribution(scores []int) Distribution {
	d := Distribution{Highest: scores[0], Lowest: scores[0]}
	var sum float64
	for _, s := range scores {
		if s > d.Highest {
			d.Highest = s
		}
		if s < d.Lowest {
			d.Lowest = s
		}
		sum += float64(s)
	}
	if len(scores) < 2 {
		d.Consistency = "insufficient_data"
		return d
	}

	mean := sum / float64(len(scores))
	var variance float64
	for _, s := range scores {
		diff := float64(s) - mean
		variance += diff * diff
	}
	std := math.Sqrt(variance / float64(len(scores)))
	d.StdDev = round1(std)

	switch {
	case std <= 10:
		d.Consistency = "very_consistent"
	case std <= 20:
		d.Consistency = "consistent"
	case std <= 30:
		d.Consistency = "somewhat_variable"
	default:
		d.Consistency = "highly_variable"
	}
	return d
}

func preview(prompt string) string {
	runes := []rune(prompt)
	if len(runes) <= previewRunes {
		return prompt
	}
	return string(runes[:previewRunes]) + "..."
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
