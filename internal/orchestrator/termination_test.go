package orchestrator

import (
	"testing"
	"time"

	"github.com/mockpanel/mockpanel/internal/models"
)

func TestShouldEndSession(t *testing.T) {
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	cfg := models.InterviewConfig{DurationMinutes: 30}

	cases := []struct {
		name          string
		questionCount int
		elapsed       time.Duration
		want          bool
	}{
		{"fresh session", 0, 0, false},
		{"mid session", 5, 10 * time.Minute, false},
		{"time budget exhausted", 5, 30 * time.Minute, true},
		{"time budget exceeded", 5, 45 * time.Minute, true},
		{"question budget reached", 15, 10 * time.Minute, true},
		{"one question short", 14, 29 * time.Minute, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			state := models.NewSessionState("iv", "s", start)
			state.QuestionCount = c.questionCount
			if got := ShouldEndSession(state, cfg, start.Add(c.elapsed)); got != c.want {
				t.Fatalf("ShouldEndSession = %v, want %v", got, c.want)
			}
		})
	}
}
