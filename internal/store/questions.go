package store

import (
	"context"
	"fmt"
	"math"
	"time"
)

const (
	successScore     = 70
	targetScore      = 60.0
	priorUsage       = 3
	priorEffectivity = 0.5
)

// QuestionStat is the recorded performance of one question.
type QuestionStat struct {
	QuestionID    int       `json:"question_id"`
	UsageCount    int       `json:"usage_count"`
	AverageScore  float64   `json:"average_score"`
	SuccessRate   float64   `json:"success_rate"`
	Effectiveness float64   `json:"effectiveness"`
	LastUsedAt    time.Time `json:"last_used_at"`
}

// RecordScore adds score to the running statistics of questionID.
func (s *Store) RecordScore(ctx context.Context, questionID, score int) error {
	const stmt = `
INSERT INTO question_stats (question_id, usage_count, avg_score, success_count, last_used_at)
VALUES (?, 1, ?, ?, ?)
ON CONFLICT(question_id) DO UPDATE SET
  avg_score=(question_stats.avg_score * question_stats.usage_count + excluded.avg_score) / (question_stats.usage_count + 1),
  usage_count=question_stats.usage_count + 1,
  success_count=question_stats.success_count + excluded.success_count,
  last_used_at=excluded.last_used_at;
`
	success := 0
	if score >= successScore {
		success = 1
	}
	if _, err := s.db.ExecContext(ctx, stmt, questionID, float64(score), success, formatTime(s.now())); err != nil {
		return fmt.Errorf("record score for question %d: %w", questionID, err)
	}
	return nil
}

// QuestionStats returns statistics for every question that has been asked.
func (s *Store) QuestionStats(ctx context.Context) ([]QuestionStat, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT question_id, usage_count, avg_score, success_count, last_used_at
FROM question_stats
ORDER BY question_id;
`)
	if err != nil {
		return nil, fmt.Errorf("query question stats: %w", err)
	}
	defer rows.Close()

	var stats []QuestionStat
	for rows.Next() {
		var (
			st      QuestionStat
			success int
			usedAt  string
		)
		if err := rows.Scan(&st.QuestionID, &st.UsageCount, &st.AverageScore, &success, &usedAt); err != nil {
			return nil, fmt.Errorf("scan question stats: %w", err)
		}
		if st.LastUsedAt, err = parseTime(usedAt); err != nil {
			return nil, err
		}
		st.AverageScore = math.Round(st.AverageScore*10) / 10
		if st.UsageCount > 0 {
			st.SuccessRate = math.Round(float64(success)/float64(st.UsageCount)*1000) / 1000
		}
		st.Effectiveness = effectiveness(st.AverageScore, st.UsageCount)
		stats = append(stats, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate question stats: %w", err)
	}
	return stats, nil
}

// Effectiveness returns the effectiveness of every recorded question keyed by id.
func (s *Store) Effectiveness(ctx context.Context) (map[int]float64, error) {
	stats, err := s.QuestionStats(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[int]float64, len(stats))
	for _, st := range stats {
		out[st.QuestionID] = st.Effectiveness
	}
	return out, nil
}

// effectiveness rates how well a question separates candidates: questions
// averaging near targetScore score 1, trivial or impossible ones approach 0.
// Until priorUsage answers exist the value is pulled towards priorEffectivity.
func effectiveness(avg float64, usage int) float64 {
	raw := 1 - math.Abs(avg-targetScore)/targetScore
	raw = math.Max(0, math.Min(1, raw))
	if usage < priorUsage {
		raw = (raw*float64(usage) + priorEffectivity*float64(priorUsage-usage)) / priorUsage
	}
	return math.Round(raw*1000) / 1000
}
