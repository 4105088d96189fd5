package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Session is the persisted MongoDB document for one interview session. The
// embedded State snapshot is round-tripped between orchestrator calls.
type Session struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SessionID string             `bson:"session_id" json:"session_id"` // uuid v4
	UserID    string             `bson:"user_id" json:"user_id"`

	InterviewID string `bson:"interview_id" json:"interview_id"`
	Status      string `bson:"status" json:"status"` // active|ended

	State SessionState `bson:"state" json:"state"`

	CreatedAt time.Time  `bson:"created_at" json:"created_at"`
	EndedAt   *time.Time `bson:"ended_at,omitempty" json:"ended_at,omitempty"`

	DurationSeconds int64 `bson:"duration_seconds" json:"duration_seconds"`
}

// SessionState is the conversation cursor for one session. It is a value:
// transition methods return a new state instead of mutating the receiver,
// so a failed turn leaves the caller's copy untouched and an identical
// retry is safe.
type SessionState struct {
	InterviewID string `bson:"interview_id" json:"interview_id"`
	SessionID   string `bson:"session_id" json:"session_id"`

	// Opaque handle into an external conversational-memory store.
	MemorySessionID string `bson:"memory_session_id,omitempty" json:"memory_session_id,omitempty"`

	PersonaIndex  int       `bson:"persona_index" json:"persona_index"` // monotonic; resolve modulo persona count
	QuestionCount int       `bson:"question_count" json:"question_count"`
	StartedAt     time.Time `bson:"started_at" json:"started_at"`

	History        []ConversationEntry `bson:"history" json:"history"`
	QuestionsAsked []string            `bson:"questions_asked" json:"questions_asked"`
	Responses      []string            `bson:"responses" json:"responses"`
}

// NewSessionState returns the initial state for a freshly started session.
func NewSessionState(interviewID, sessionID string, now time.Time) SessionState {
	return SessionState{
		InterviewID: interviewID,
		SessionID:   sessionID,
		StartedAt:   now.UTC(),
	}
}

// ElapsedMinutes reports session age at the given instant.
func (s SessionState) ElapsedMinutes(now time.Time) float64 {
	return now.Sub(s.StartedAt).Minutes()
}

// WithInterviewerTurn appends an interviewer entry. Greetings, questions and
// follow-ups occupy a question slot; only greetings and brand-new questions
// advance the persona index, so a persona always follows up on its own
// question.
func (s SessionState) WithInterviewerTurn(turn ConversationalTurn, now time.Time) SessionState {
	next := s.clone()
	next.History = append(next.History, ConversationEntry{
		Speaker:   SpeakerInterviewer,
		Text:      turn.Text,
		Type:      turn.Type,
		Timestamp: now.UTC(),
	})
	switch turn.Type {
	case TurnQuestion, TurnGreeting:
		next.QuestionsAsked = append(next.QuestionsAsked, turn.Text)
		next.QuestionCount++
		next.PersonaIndex++
	case TurnFollowUp:
		next.QuestionsAsked = append(next.QuestionsAsked, turn.Text)
		next.QuestionCount++
	}
	return next
}

// WithAcknowledgment records the short reactive entry spoken before a
// question or follow-up. Acknowledgments never advance the persona index.
func (s SessionState) WithAcknowledgment(text string, now time.Time) SessionState {
	next := s.clone()
	next.History = append(next.History, ConversationEntry{
		Speaker:   SpeakerInterviewer,
		Text:      text,
		Type:      TurnAcknowledgment,
		Timestamp: now.UTC(),
	})
	return next
}

// WithCandidateResponse appends the candidate's answer to the pending question.
func (s SessionState) WithCandidateResponse(text string, now time.Time) SessionState {
	next := s.clone()
	next.History = append(next.History, ConversationEntry{
		Speaker:   SpeakerCandidate,
		Text:      text,
		Timestamp: now.UTC(),
	})
	next.Responses = append(next.Responses, text)
	return next
}

// LastQuestion returns the most recent question or follow-up text.
func (s SessionState) LastQuestion() string {
	if len(s.QuestionsAsked) == 0 {
		return ""
	}
	return s.QuestionsAsked[len(s.QuestionsAsked)-1]
}

// LastResponse returns the candidate's most recent answer.
func (s SessionState) LastResponse() string {
	if len(s.Responses) == 0 {
		return ""
	}
	return s.Responses[len(s.Responses)-1]
}

// HasPendingAnswer reports whether the most recent history entry is a
// candidate answer that has not been reacted to yet.
func (s SessionState) HasPendingAnswer() bool {
	if len(s.History) == 0 {
		return false
	}
	return s.History[len(s.History)-1].Speaker == SpeakerCandidate
}

// clone copies the state with fresh slice headers so appends on the copy
// never alias the original's backing arrays.
func (s SessionState) clone() SessionState {
	next := s
	next.History = append([]ConversationEntry(nil), s.History...)
	next.QuestionsAsked = append([]string(nil), s.QuestionsAsked...)
	next.Responses = append([]string(nil), s.Responses...)
	return next
}
