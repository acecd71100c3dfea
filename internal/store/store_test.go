package store

import (
	"context"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/spigell/mock-interviewer/internal/report"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "test.db"))
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)

	tests := []struct {
		pragma string
		want   string
	}{
		{"journal_mode", "wal"},
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
		{"busy_timeout", "5000"},
	}

	for _, tt := range tests {
		var got string
		if err := s.db.QueryRow("PRAGMA " + tt.pragma).Scan(&got); err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestDefaultPath(t *testing.T) {
	t.Setenv("MOCK_INTERVIEWER_DATABASE", "")
	t.Setenv("XDG_DATA_HOME", "/data")
	got, err := DefaultPath()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := filepath.Join("/data", "mock-interviewer", "interviews.db"); got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}

	t.Setenv("MOCK_INTERVIEWER_DATABASE", "/tmp/custom.db")
	if got, _ := DefaultPath(); got != "/tmp/custom.db" {
		t.Fatalf("expected env override, got %s", got)
	}
}

func TestRecordScore(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	for _, score := range []int{80, 40, 60} {
		if err := s.RecordScore(ctx, 3, score); err != nil {
			t.Fatalf("record score: %v", err)
		}
	}
	if err := s.RecordScore(ctx, 1, 100); err != nil {
		t.Fatalf("record score: %v", err)
	}

	stats, err := s.QuestionStats(ctx)
	if err != nil {
		t.Fatalf("question stats: %v", err)
	}
	if len(stats) != 2 {
		t.Fatalf("expected 2 stats, got %d", len(stats))
	}

	first, third := stats[0], stats[1]
	if third.QuestionID != 3 || third.UsageCount != 3 || third.AverageScore != 60 {
		t.Fatalf("unexpected stats for question 3: %+v", third)
	}
	if math.Abs(third.SuccessRate-0.333) > 1e-9 {
		t.Fatalf("unexpected success rate %v", third.SuccessRate)
	}
	if third.Effectiveness != 1 {
		t.Fatalf("expected full effectiveness, got %v", third.Effectiveness)
	}
	if !third.LastUsedAt.Equal(fixed) {
		t.Fatalf("unexpected last used %v", third.LastUsedAt)
	}

	// One perfect answer: raw 1-40/60 = 0.333, blended with two prior slots of 0.5.
	if first.QuestionID != 1 || first.Effectiveness != 0.444 {
		t.Fatalf("unexpected stats for question 1: %+v", first)
	}

	eff, err := s.Effectiveness(ctx)
	if err != nil {
		t.Fatalf("effectiveness: %v", err)
	}
	if len(eff) != 2 || eff[3] != 1 {
		t.Fatalf("unexpected effectiveness map %v", eff)
	}
}

func TestEffectiveness(t *testing.T) {
	tests := []struct {
		avg   float64
		usage int
		want  float64
	}{
		{avg: 60, usage: 10, want: 1},
		{avg: 0, usage: 10, want: 0},
		{avg: 120, usage: 10, want: 0},
		{avg: 90, usage: 5, want: 0.5},
		{avg: 60, usage: 0, want: 0.5},
	}
	for _, tt := range tests {
		if got := effectiveness(tt.avg, tt.usage); got != tt.want {
			t.Fatalf("effectiveness(%v, %d) = %v, want %v", tt.avg, tt.usage, got, tt.want)
		}
	}
}

func record(id, role, recommendation string, score float64, completed time.Time) InterviewRecord {
	return InterviewRecord{
		ID:          id,
		Role:        role,
		Candidate:   map[string]string{"name": "Candidate " + id},
		StartedAt:   completed.Add(-10 * time.Minute),
		CompletedAt: completed,
		Report: &report.Report{
			Role:           role,
			QuestionCount:  3,
			OverallScore:   score,
			Recommendation: recommendation,
			DegradedTurns:  1,
		},
	}
}

func TestInterviewArchive(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

	records := []InterviewRecord{
		record("a", "finance", report.RecommendStrong, 90, base),
		record("b", "finance", report.RecommendReject, 20, base.Add(time.Hour)),
		record("c", "operations", report.RecommendConditional, 71, base.Add(2*time.Hour)),
	}
	for _, rec := range records {
		if err := s.SaveInterview(ctx, rec); err != nil {
			t.Fatalf("save: %v", err)
		}
	}

	// Upsert replaces the existing row.
	updated := record("b", "finance", report.RecommendNotRecommended, 55, base.Add(time.Hour))
	if err := s.SaveInterview(ctx, updated); err != nil {
		t.Fatalf("save updated: %v", err)
	}

	recent, err := s.RecentInterviews(ctx, 2)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(recent) != 2 || recent[0].ID != "c" || recent[1].ID != "b" {
		t.Fatalf("unexpected order: %+v", recent)
	}
	if recent[1].Report.Recommendation != report.RecommendNotRecommended || recent[1].Report.OverallScore != 55 {
		t.Fatalf("expected updated report, got %+v", recent[1].Report)
	}
	if recent[0].Candidate["name"] != "Candidate c" || !recent[0].CompletedAt.Equal(base.Add(2*time.Hour)) {
		t.Fatalf("unexpected record %+v", recent[0])
	}

	a, err := s.Analytics(ctx)
	if err != nil {
		t.Fatalf("analytics: %v", err)
	}
	if a.TotalInterviews != 3 || a.AverageScore != 72 || a.DegradedTurns != 3 {
		t.Fatalf("unexpected totals %+v", a)
	}
	if a.Recommendations[report.RecommendStrong] != 1 || a.Recommendations[report.RecommendReject] != 0 {
		t.Fatalf("unexpected recommendations %v", a.Recommendations)
	}
	if got := a.Roles["finance"]; got.Interviews != 2 || got.AverageScore != 72.5 {
		t.Fatalf("unexpected finance summary %+v", got)
	}
}

func TestSaveInterviewRequiresReport(t *testing.T) {
	s := openTestStore(t)
	if err := s.SaveInterview(context.Background(), InterviewRecord{ID: "x"}); err == nil {
		t.Fatal("expected error for missing report")
	}
}

func TestAnalyticsEmpty(t *testing.T) {
	s := openTestStore(t)
	a, err := s.Analytics(context.Background())
	if err != nil {
		t.Fatalf("analytics: %v", err)
	}
	if a.TotalInterviews != 0 || a.AverageScore != 0 || len(a.Questions) != 0 {
		t.Fatalf("unexpected analytics %+v", a)
	}
}
