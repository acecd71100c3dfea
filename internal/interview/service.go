package interview

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/spigell/mock-interviewer/internal/bank"
	"github.com/spigell/mock-interviewer/internal/evaluator"
	"github.com/spigell/mock-interviewer/internal/logger"
	"github.com/spigell/mock-interviewer/internal/report"
	"github.com/spigell/mock-interviewer/internal/store"
	"go.uber.org/zap"
)

// DefaultQuestionCount is used when neither the request nor the service
// configuration asks for a specific number of questions.
const DefaultQuestionCount = 6

// Sessions are kept in memory only. Idle sessions are dropped after
// DefaultSessionTTL, completed ones after DefaultCompletedTTL; the archive
// keeps their reports.
const (
	DefaultSessionTTL   = 24 * time.Hour
	DefaultCompletedTTL = time.Hour
)

// QuestionStats records per-question performance and feeds selection.
type QuestionStats interface {
	RecordScore(ctx context.Context, questionID, score int) error
	Effectiveness(ctx context.Context) (map[int]float64, error)
}

// Archive keeps completed interviews.
type Archive interface {
	SaveInterview(ctx context.Context, rec store.InterviewRecord) error
	RecentInterviews(ctx context.Context, limit int) ([]store.InterviewRecord, error)
	Analytics(ctx context.Context) (*store.Analytics, error)
}

// Options configure a Service. Bank and Evaluator are required.
type Options struct {
	Bank          *bank.Bank
	Evaluator     evaluator.Evaluator
	Stats         QuestionStats
	Archive       Archive
	QuestionCount int
	Role          string
	SessionTTL    time.Duration
	CompletedTTL  time.Duration
	Logger        *zap.Logger
}

// StartRequest opens a new session.
type StartRequest struct {
	Role          string            `json:"role"`
	Candidate     map[string]string `json:"candidate,omitempty"`
	QuestionCount int               `json:"question_count,omitempty"`
}

// SubmitRequest answers a question. QuestionID 0 targets the current question.
type SubmitRequest struct {
	QuestionID int    `json:"question_id"`
	Answer     string `json:"answer"`
}

// SubmitResult is returned after a turn is recorded.
type SubmitResult struct {
	Evaluation *evaluator.Evaluation `json:"evaluation"`
	Next       *bank.Question        `json:"next,omitempty"`
	Progress   Progress              `json:"progress"`
	Completed  bool                  `json:"completed"`
	Report     *report.Report        `json:"report,omitempty"`
}

type sessionEntry struct {
	mu      sync.Mutex
	session *Session
}

// Service runs interview sessions. Sessions are independent; turns of one
// session are serialised.
type Service struct {
	bank      *bank.Bank
	evaluator evaluator.Evaluator
	stats     QuestionStats
	archive   Archive
	count     int
	role      string
	ttl       time.Duration
	doneTTL   time.Duration
	logger    *zap.Logger

	mu       sync.RWMutex
	sessions map[string]*sessionEntry

	now   func() time.Time
	newID func() string
}

// NewService creates a Service.
func NewService(opts Options) (*Service, error) {
	if opts.Bank == nil || opts.Bank.Len() == 0 {
		return nil, fmt.Errorf("interview service: %w", ErrNoQuestions)
	}
	if opts.Evaluator == nil {
		return nil, fmt.Errorf("interview service: evaluator is required")
	}
	if opts.QuestionCount <= 0 {
		opts.QuestionCount = DefaultQuestionCount
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = DefaultSessionTTL
	}
	if opts.CompletedTTL <= 0 {
		opts.CompletedTTL = DefaultCompletedTTL
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	return &Service{
		bank:      opts.Bank,
		evaluator: opts.Evaluator,
		stats:     opts.Stats,
		archive:   opts.Archive,
		count:     opts.QuestionCount,
		role:      bank.NormalizeRole(opts.Role),
		ttl:       opts.SessionTTL,
		doneTTL:   opts.CompletedTTL,
		logger:    opts.Logger,
		sessions:  make(map[string]*sessionEntry),
		now:       time.Now,
		newID:     uuid.NewString,
	}, nil
}

// Start opens a session and returns a snapshot positioned at the first question.
func (s *Service) Start(ctx context.Context, req StartRequest) (*Session, error) {
	role := s.role
	if strings.TrimSpace(req.Role) != "" {
		role = bank.NormalizeRole(req.Role)
	}
	count := req.QuestionCount
	if count <= 0 {
		count = s.count
	}

	var effectiveness map[int]float64
	if s.stats != nil {
		eff, err := s.stats.Effectiveness(ctx)
		if err != nil {
			s.logger.Warn("failed to load question effectiveness, using defaults", zap.Error(err))
		}
		effectiveness = eff
	}

	questions := s.bank.Select(role, count, effectiveness)
	if len(questions) == 0 {
		return nil, ErrNoQuestions
	}

	now := s.now()
	session := &Session{
		ID:        s.newID(),
		Role:      role,
		Questions: questions,
		Turns:     []Turn{},
		Status:    StatusInProgress,
		StartedAt: now,
		UpdatedAt: now,
	}
	if len(req.Candidate) > 0 {
		session.Candidate = req.Candidate
	}

	s.Sweep()

	s.mu.Lock()
	s.sessions[session.ID] = &sessionEntry{session: session}
	s.mu.Unlock()

	s.logger.Info("interview started",
		append(logger.SessionFields(session.ID, 0),
			zap.String(logger.FieldRole, role),
			zap.Int("questions", len(questions)),
		)...,
	)
	return session.clone(), nil
}

// Sweep drops expired sessions and returns how many were removed. Sessions
// with a turn in flight are skipped.
func (s *Service) Sweep() int {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, e := range s.sessions {
		if !e.mu.TryLock() {
			continue
		}
		ttl := s.ttl
		if e.session.Status == StatusCompleted {
			ttl = s.doneTTL
		}
		expired := now.Sub(e.session.UpdatedAt) > ttl
		e.mu.Unlock()

		if expired {
			delete(s.sessions, id)
			removed++
		}
	}
	if removed > 0 {
		s.logger.Debug("expired sessions removed", zap.Int("removed", removed), zap.Int("active", len(s.sessions)))
	}
	return removed
}

func (s *Service) entry(id string) (*sessionEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return e, nil
}

// Get returns a snapshot of the session.
func (s *Service) Get(id string) (*Session, error) {
	e, err := s.entry(id)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session.clone(), nil
}

// CurrentQuestion returns the next unanswered question, or nil when the
// session is complete.
func (s *Service) CurrentQuestion(id string) (*bank.Question, error) {
	e, err := s.entry(id)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session.Current(), nil
}

// Submit evaluates an answer to the current question and advances the
// session. Answering the last question completes the session and builds its
// report.
func (s *Service) Submit(ctx context.Context, id string, req SubmitRequest) (*SubmitResult, error) {
	e, err := s.entry(id)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	session := e.session
	switch session.Status {
	case StatusCompleted:
		return nil, ErrSessionComplete
	case StatusPaused:
		return nil, ErrSessionPaused
	}

	current := session.Current()
	if current == nil {
		return nil, ErrSessionComplete
	}
	if req.QuestionID != 0 && req.QuestionID != current.ID {
		if !s.knownQuestion(session, req.QuestionID) {
			return nil, fmt.Errorf("%w: %d", ErrUnknownQuestion, req.QuestionID)
		}
		return nil, fmt.Errorf("%w: expected %d, got %d", ErrQuestionMismatch, current.ID, req.QuestionID)
	}

	log := s.logger.With(logger.SessionFields(session.ID, current.ID)...)

	eval, err := s.evaluator.Evaluate(ctx, *current, req.Answer)
	if err != nil {
		return nil, fmt.Errorf("evaluate answer: %w", err)
	}

	now := s.now()
	session.Turns = append(session.Turns, Turn{
		Question:   *current,
		Answer:     Answer{QuestionID: current.ID, Text: req.Answer, SubmittedAt: now},
		Evaluation: eval,
	})
	session.UpdatedAt = now

	log.Info("answer evaluated",
		zap.Int("score", eval.Score),
		zap.String("source", string(eval.Source)),
		zap.Bool("degraded", eval.Degraded),
	)

	if s.stats != nil {
		if err := s.stats.RecordScore(ctx, current.ID, eval.Score); err != nil {
			log.Warn("failed to record question score", zap.Error(err))
		}
	}

	result := &SubmitResult{Evaluation: eval}
	if next := session.Current(); next != nil {
		result.Next = next
		result.Progress = session.Progress()
		return result, nil
	}

	if err := s.complete(ctx, session, log); err != nil {
		return nil, err
	}
	result.Progress = session.Progress()
	result.Completed = true
	result.Report = session.Report
	return result, nil
}

func (s *Service) knownQuestion(session *Session, id int) bool {
	if _, ok := s.bank.Get(id); ok {
		return true
	}
	for _, q := range session.Questions {
		if q.ID == id {
			return true
		}
	}
	return false
}

func (s *Service) complete(ctx context.Context, session *Session, log *zap.Logger) error {
	now := s.now()
	rep, err := report.Generate(session.Role, session.entries(), session.StartedAt, now)
	if err != nil {
		return fmt.Errorf("generate report: %w", err)
	}

	session.Status = StatusCompleted
	session.CompletedAt = &now
	session.UpdatedAt = now
	session.Report = rep

	log.Info("interview completed",
		zap.Float64("overall_score", rep.OverallScore),
		zap.String("recommendation", rep.Recommendation),
		zap.Int("degraded_turns", rep.DegradedTurns),
	)

	if s.archive == nil {
		return nil
	}
	err = s.archive.SaveInterview(ctx, store.InterviewRecord{
		ID:          session.ID,
		Role:        session.Role,
		Candidate:   session.Candidate,
		StartedAt:   session.StartedAt,
		CompletedAt: now,
		Report:      rep,
	})
	if err != nil {
		log.Warn("failed to archive interview", zap.Error(err))
	}
	return nil
}

// Pause suspends an in-progress session.
func (s *Service) Pause(id string) (*Session, error) {
	return s.transition(id, func(session *Session) error {
		switch session.Status {
		case StatusCompleted:
			return ErrSessionComplete
		case StatusPaused:
			return ErrSessionPaused
		}
		session.Status = StatusPaused
		return nil
	})
}

// Resume continues a paused session.
func (s *Service) Resume(id string) (*Session, error) {
	return s.transition(id, func(session *Session) error {
		if session.Status != StatusPaused {
			return ErrSessionNotPaused
		}
		session.Status = StatusInProgress
		return nil
	})
}

func (s *Service) transition(id string, apply func(*Session) error) (*Session, error) {
	e, err := s.entry(id)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := apply(e.session); err != nil {
		return nil, err
	}
	e.session.UpdatedAt = s.now()
	s.logger.Info("interview status changed",
		append(logger.SessionFields(id, 0), zap.String("status", string(e.session.Status)))...,
	)
	return e.session.clone(), nil
}

// Report returns the final report of a completed session.
func (s *Service) Report(id string) (*report.Report, error) {
	e, err := s.entry(id)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.session.Status != StatusCompleted || e.session.Report == nil {
		return nil, ErrSessionNotComplete
	}
	return e.session.Report, nil
}

// History returns archived interviews, newest first.
func (s *Service) History(ctx context.Context, limit int) ([]store.InterviewRecord, error) {
	if s.archive == nil {
		return []store.InterviewRecord{}, nil
	}
	return s.archive.RecentInterviews(ctx, limit)
}

// Analytics aggregates the archive.
func (s *Service) Analytics(ctx context.Context) (*store.Analytics, error) {
	if s.archive == nil {
		return nil, ErrArchiveDisabled
	}
	return s.archive.Analytics(ctx)
}

// Questions returns the whole bank in its fixed order.
func (s *Service) Questions() []bank.Question {
	return s.bank.All()
}
