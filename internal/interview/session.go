package interview

import (
	"errors"
	"math"
	"time"

	"github.com/spigell/mock-interviewer/internal/bank"
	"github.com/spigell/mock-interviewer/internal/evaluator"
	"github.com/spigell/mock-interviewer/internal/report"
)

var (
	ErrSessionNotFound    = errors.New("session not found")
	ErrUnknownQuestion    = errors.New("unknown question")
	ErrQuestionMismatch   = errors.New("answer does not match the current question")
	ErrSessionComplete    = errors.New("session is already complete")
	ErrSessionPaused      = errors.New("session is paused")
	ErrSessionNotPaused   = errors.New("session is not paused")
	ErrSessionNotComplete = errors.New("session is not complete")
	ErrNoQuestions        = errors.New("no questions available")
	ErrArchiveDisabled    = errors.New("interview archive is not configured")
)

// Status of a session.
type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusPaused     Status = "paused"
	StatusCompleted  Status = "completed"
)

// Answer is the raw candidate input for one question.
type Answer struct {
	QuestionID  int       `json:"question_id"`
	Text        string    `json:"text"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// Turn is one answered question.
type Turn struct {
	Question   bank.Question         `json:"question"`
	Answer     Answer                `json:"answer"`
	Evaluation *evaluator.Evaluation `json:"evaluation"`
}

// Progress through the question list.
type Progress struct {
	Answered   int     `json:"answered"`
	Total      int     `json:"total"`
	Percentage float64 `json:"percentage"`
}

// Session is one candidate's interview.
type Session struct {
	ID          string            `json:"id"`
	Role        string            `json:"role"`
	Candidate   map[string]string `json:"candidate,omitempty"`
	Questions   []bank.Question   `json:"questions"`
	Turns       []Turn            `json:"turns"`
	Status      Status            `json:"status"`
	StartedAt   time.Time         `json:"started_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
	CompletedAt *time.Time        `json:"completed_at,omitempty"`
	Report      *report.Report    `json:"report,omitempty"`
}

// Current returns the next unanswered question, or nil once every question
// has been answered.
func (s *Session) Current() *bank.Question {
	if len(s.Turns) >= len(s.Questions) {
		return nil
	}
	q := s.Questions[len(s.Turns)]
	return &q
}

// Progress reports how many questions have been answered.
func (s *Session) Progress() Progress {
	p := Progress{Answered: len(s.Turns), Total: len(s.Questions)}
	if p.Total > 0 {
		p.Percentage = math.Round(float64(p.Answered)/float64(p.Total)*1000) / 10
	}
	return p
}

func (s *Session) entries() []report.Entry {
	entries := make([]report.Entry, 0, len(s.Turns))
	for _, t := range s.Turns {
		entries = append(entries, report.Entry{Question: t.Question, Evaluation: t.Evaluation})
	}
	return entries
}

// clone copies the mutable parts of the session. Questions, evaluations and
// reports are never modified after creation and are shared.
func (s *Session) clone() *Session {
	c := *s
	c.Questions = append(make([]bank.Question, 0, len(s.Questions)), s.Questions...)
	c.Turns = append(make([]Turn, 0, len(s.Turns)), s.Turns...)
	if s.Candidate != nil {
		c.Candidate = make(map[string]string, len(s.Candidate))
		for k, v := range s.Candidate {
			c.Candidate[k] = v
		}
	}
	if s.CompletedAt != nil {
		t := *s.CompletedAt
		c.CompletedAt = &t
	}
	return &c
}
