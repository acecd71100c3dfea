package store

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/spigell/mock-interviewer/internal/report"
)

const defaultHistoryLimit = 10

// InterviewRecord is an archived, completed interview.
type InterviewRecord struct {
	ID          string            `json:"id"`
	Role        string            `json:"role"`
	Candidate   map[string]string `json:"candidate,omitempty"`
	StartedAt   time.Time         `json:"started_at"`
	CompletedAt time.Time         `json:"completed_at"`
	Report      *report.Report    `json:"report"`
}

// RoleSummary aggregates archived interviews of one role.
type RoleSummary struct {
	Interviews   int     `json:"interviews"`
	AverageScore float64 `json:"average_score"`
}

// Analytics summarises every archived interview.
type Analytics struct {
	TotalInterviews int                    `json:"total_interviews"`
	AverageScore    float64                `json:"average_score"`
	DegradedTurns   int                    `json:"degraded_turns"`
	Recommendations map[string]int         `json:"recommendations"`
	Roles           map[string]RoleSummary `json:"roles"`
	Questions       []QuestionStat         `json:"questions"`
}

// SaveInterview inserts or replaces the archived interview with rec.ID.
func (s *Store) SaveInterview(ctx context.Context, rec InterviewRecord) error {
	if rec.Report == nil {
		return fmt.Errorf("interview %s has no report", rec.ID)
	}

	candidate, err := json.Marshal(rec.Candidate)
	if err != nil {
		return fmt.Errorf("encode candidate: %w", err)
	}
	payload, err := json.Marshal(rec.Report)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}

	const stmt = `
INSERT INTO interviews (id, role, candidate, overall_score, recommendation, question_count, degraded_turns, started_at, completed_at, report)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
  role=excluded.role,
  candidate=excluded.candidate,
  overall_score=excluded.overall_score,
  recommendation=excluded.recommendation,
  question_count=excluded.question_count,
  degraded_turns=excluded.degraded_turns,
  started_at=excluded.started_at,
  completed_at=excluded.completed_at,
  report=excluded.report;
`
	_, err = s.db.ExecContext(ctx, stmt,
		rec.ID,
		rec.Role,
		string(candidate),
		rec.Report.OverallScore,
		rec.Report.Recommendation,
		rec.Report.QuestionCount,
		rec.Report.DegradedTurns,
		formatTime(rec.StartedAt),
		formatTime(rec.CompletedAt),
		string(payload),
	)
	if err != nil {
		return fmt.Errorf("save interview %s: %w", rec.ID, err)
	}
	return nil
}

// RecentInterviews returns up to limit archived interviews, newest first.
func (s *Store) RecentInterviews(ctx context.Context, limit int) ([]InterviewRecord, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT id, role, candidate, started_at, completed_at, report
FROM interviews
ORDER BY completed_at DESC, id
LIMIT ?;
`, limit)
	if err != nil {
		return nil, fmt.Errorf("query interviews: %w", err)
	}
	defer rows.Close()

	records := []InterviewRecord{}
	for rows.Next() {
		var (
			rec                           InterviewRecord
			candidate, started, completed string
			payload                       string
		)
		if err := rows.Scan(&rec.ID, &rec.Role, &candidate, &started, &completed, &payload); err != nil {
			return nil, fmt.Errorf("scan interview: %w", err)
		}
		if err := json.Unmarshal([]byte(candidate), &rec.Candidate); err != nil {
			return nil, fmt.Errorf("decode candidate of %s: %w", rec.ID, err)
		}
		if rec.StartedAt, err = parseTime(started); err != nil {
			return nil, err
		}
		if rec.CompletedAt, err = parseTime(completed); err != nil {
			return nil, err
		}
		rec.Report = &report.Report{}
		if err := json.Unmarshal([]byte(payload), rec.Report); err != nil {
			return nil, fmt.Errorf("decode report of %s: %w", rec.ID, err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate interviews: %w", err)
	}
	return records, nil
}

// Analytics aggregates the archive and the question statistics.
func (s *Store) Analytics(ctx context.Context) (*Analytics, error) {
	a := &Analytics{
		Recommendations: map[string]int{},
		Roles:           map[string]RoleSummary{},
	}

	err := s.db.QueryRowContext(ctx, `
SELECT COUNT(*), COALESCE(AVG(overall_score), 0), COALESCE(SUM(degraded_turns), 0)
FROM interviews;
`).Scan(&a.TotalInterviews, &a.AverageScore, &a.DegradedTurns)
	if err != nil {
		return nil, fmt.Errorf("query interview totals: %w", err)
	}
	a.AverageScore = math.Round(a.AverageScore*10) / 10

	recRows, err := s.db.QueryContext(ctx, `
SELECT recommendation, COUNT(*) FROM interviews GROUP BY recommendation;
`)
	if err != nil {
		return nil, fmt.Errorf("query recommendations: %w", err)
	}
	defer recRows.Close()
	for recRows.Next() {
		var (
			label string
			count int
		)
		if err := recRows.Scan(&label, &count); err != nil {
			return nil, fmt.Errorf("scan recommendation: %w", err)
		}
		a.Recommendations[label] = count
	}
	if err := recRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recommendations: %w", err)
	}

	roleRows, err := s.db.QueryContext(ctx, `
SELECT role, COUNT(*), AVG(overall_score) FROM interviews GROUP BY role;
`)
	if err != nil {
		return nil, fmt.Errorf("query roles: %w", err)
	}
	defer roleRows.Close()
	for roleRows.Next() {
		var (
			role    string
			summary RoleSummary
		)
		if err := roleRows.Scan(&role, &summary.Interviews, &summary.AverageScore); err != nil {
			return nil, fmt.Errorf("scan role: %w", err)
		}
		summary.AverageScore = math.Round(summary.AverageScore*10) / 10
		a.Roles[role] = summary
	}
	if err := roleRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate roles: %w", err)
	}

	if a.Questions, err = s.QuestionStats(ctx); err != nil {
		return nil, err
	}
	if a.Questions == nil {
		a.Questions = []QuestionStat{}
	}
	return a, nil
}
