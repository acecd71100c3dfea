package bank

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Bank is an ordered, read-only set of questions. The order is the order
// in which questions are asked.
type Bank struct {
	questions []Question
	index     map[int]int
}

type bankFile struct {
	Questions []Question `json:"questions" yaml:"questions"`
}

// New validates questions and builds a bank preserving their order.
func New(questions []Question) (*Bank, error) {
	if len(questions) == 0 {
		return nil, errors.New("question bank is empty")
	}

	b := &Bank{
		questions: make([]Question, 0, len(questions)),
		index:     make(map[int]int, len(questions)),
	}

	for _, q := range questions {
		q.normalize()
		if err := q.validate(); err != nil {
			return nil, err
		}
		if _, ok := b.index[q.ID]; ok {
			return nil, fmt.Errorf("duplicate question id %d", q.ID)
		}
		b.index[q.ID] = len(b.questions)
		b.questions = append(b.questions, q)
	}

	return b, nil
}

// Load reads a bank from a YAML (.yaml, .yml) or JSON (.json) file. The file
// holds either a list of questions or an object with a questions list.
func Load(path string) (*Bank, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading question bank %q: %w", path, err)
	}

	var questions []Question
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		questions, err = decode(data, yaml.Unmarshal)
	case ".json":
		questions, err = decode(data, json.Unmarshal)
	default:
		return nil, fmt.Errorf("unsupported question bank format %q", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing question bank %q: %w", path, err)
	}

	b, err := New(questions)
	if err != nil {
		return nil, fmt.Errorf("question bank %q: %w", path, err)
	}
	return b, nil
}

func decode(data []byte, unmarshal func([]byte, any) error) ([]Question, error) {
	var file bankFile
	if err := unmarshal(data, &file); err == nil && len(file.Questions) > 0 {
		return file.Questions, nil
	}

	var list []Question
	if err := unmarshal(data, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// Get returns the question with the given id.
func (b *Bank) Get(id int) (Question, bool) {
	i, ok := b.index[id]
	if !ok {
		return Question{}, false
	}
	return b.questions[i], true
}

// Index returns the position of the question in the bank order, or -1.
func (b *Bank) Index(id int) int {
	i, ok := b.index[id]
	if !ok {
		return -1
	}
	return i
}

// All returns a copy of every question in bank order.
func (b *Bank) All() []Question {
	out := make([]Question, len(b.questions))
	copy(out, b.questions)
	return out
}

// Len returns the number of questions.
func (b *Bank) Len() int {
	return len(b.questions)
}
