package orchestrator

import (
	"time"

	"github.com/mockpanel/mockpanel/internal/models"
)

// ShouldEndSession reports whether the session has exhausted its time or
// question budget. Advisory: the caller polls it after each submitted
// response and invokes session end explicitly; the orchestrator never
// terminates a session on its own.
func ShouldEndSession(state models.SessionState, cfg models.InterviewConfig, now time.Time) bool {
	if state.ElapsedMinutes(now) >= float64(cfg.DurationMinutes) {
		return true
	}
	return state.QuestionCount >= MaxQuestions(cfg.DurationMinutes)
}
