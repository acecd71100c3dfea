package bank

import (
	"fmt"
	"strings"
)

// Category groups questions into report sections.
type Category string

const (
	CategoryBasics   Category = "basics"
	CategoryAdvanced Category = "advanced"
	CategoryScenario Category = "scenario"
)

// Categories lists the known categories in report order.
var Categories = []Category{CategoryBasics, CategoryAdvanced, CategoryScenario}

// Difficulty of a question.
type Difficulty string

const (
	DifficultyBasic        Difficulty = "basic"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

// Question types.
const (
	TypeFormula  = "formula"
	TypeConcept  = "concept"
	TypeScenario = "scenario"
)

// Question is a single immutable interview question.
type Question struct {
	ID         int        `json:"id" yaml:"id"`
	Prompt     string     `json:"prompt" yaml:"prompt"`
	Category   Category   `json:"category" yaml:"category"`
	Difficulty Difficulty `json:"difficulty" yaml:"difficulty"`
	Type       string     `json:"type" yaml:"type"`
	Topic      string     `json:"topic,omitempty" yaml:"topic"`
	Keywords   []string   `json:"keywords,omitempty" yaml:"keywords"`
}

func (q *Question) normalize() {
	q.Prompt = strings.TrimSpace(q.Prompt)
	q.Category = Category(strings.ToLower(strings.TrimSpace(string(q.Category))))
	q.Difficulty = Difficulty(strings.ToLower(strings.TrimSpace(string(q.Difficulty))))
	if q.Difficulty == "" {
		q.Difficulty = DifficultyIntermediate
	}
	q.Type = strings.ToLower(strings.TrimSpace(q.Type))
	if q.Type == "" {
		q.Type = TypeConcept
	}
	q.Topic = strings.ToLower(strings.TrimSpace(q.Topic))

	keywords := make([]string, 0, len(q.Keywords))
	for _, kw := range q.Keywords {
		if kw = strings.TrimSpace(kw); kw != "" {
			keywords = append(keywords, kw)
		}
	}
	q.Keywords = keywords
}

func (q Question) validate() error {
	if q.ID <= 0 {
		return fmt.Errorf("question id must be positive, got %d", q.ID)
	}
	if q.Prompt == "" {
		return fmt.Errorf("question %d: prompt is required", q.ID)
	}
	switch q.Category {
	case CategoryBasics, CategoryAdvanced, CategoryScenario:
	default:
		return fmt.Errorf("question %d: unknown category %q", q.ID, q.Category)
	}
	switch q.Difficulty {
	case DifficultyBasic, DifficultyIntermediate, DifficultyAdvanced:
	default:
		return fmt.Errorf("question %d: unknown difficulty %q", q.ID, q.Difficulty)
	}
	return nil
}
