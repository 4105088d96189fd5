package models

import (
	"testing"
	"time"
)

func TestSessionState_TransitionsReturnNewState(t *testing.T) {
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	s0 := NewSessionState("iv", "sess", start)

	s1 := s0.WithInterviewerTurn(ConversationalTurn{Text: "hello", Type: TurnGreeting, PersonaID: "p-0"}, start)
	if s0.QuestionCount != 0 || len(s0.History) != 0 {
		t.Fatalf("original state mutated: %+v", s0)
	}
	if s1.QuestionCount != 1 || s1.PersonaIndex != 1 || len(s1.QuestionsAsked) != 1 {
		t.Fatalf("unexpected post-greeting state: %+v", s1)
	}

	s2 := s1.WithCandidateResponse("my answer", start.Add(time.Minute))
	if len(s1.Responses) != 0 {
		t.Fatalf("intermediate state mutated: %+v", s1)
	}
	if !s2.HasPendingAnswer() || s2.LastResponse() != "my answer" {
		t.Fatalf("unexpected post-answer state: %+v", s2)
	}

	// invariant: a question slot per asked question
	s3 := s2.WithInterviewerTurn(ConversationalTurn{Text: "q2", Type: TurnQuestion, PersonaID: "p-1"}, start.Add(2*time.Minute))
	if len(s3.QuestionsAsked) != s3.QuestionCount {
		t.Fatalf("len(questionsAsked)=%d != questionCount=%d", len(s3.QuestionsAsked), s3.QuestionCount)
	}
	if s3.HasPendingAnswer() {
		t.Fatal("question turn should clear the pending-answer signal")
	}
}

func TestSessionState_FollowUpKeepsPersonaIndex(t *testing.T) {
	start := time.Now()
	s := NewSessionState("iv", "sess", start)
	s = s.WithInterviewerTurn(ConversationalTurn{Text: "q1", Type: TurnQuestion}, start)

	idx := s.PersonaIndex
	s = s.WithInterviewerTurn(ConversationalTurn{Text: "f1", Type: TurnFollowUp}, start)
	if s.PersonaIndex != idx {
		t.Fatalf("follow-up advanced persona index %d -> %d", idx, s.PersonaIndex)
	}
	if s.QuestionCount != 2 {
		t.Fatalf("follow-up should occupy a question slot, count=%d", s.QuestionCount)
	}
}

func TestSessionState_AppendsDoNotAliasAcrossCopies(t *testing.T) {
	start := time.Now()
	base := NewSessionState("iv", "sess", start)
	base = base.WithInterviewerTurn(ConversationalTurn{Text: "q1", Type: TurnQuestion}, start)

	a := base.WithCandidateResponse("answer a", start)
	b := base.WithCandidateResponse("answer b", start)
	if a.LastResponse() != "answer a" || b.LastResponse() != "answer b" {
		t.Fatalf("branched states alias each other: %q vs %q", a.LastResponse(), b.LastResponse())
	}
	if base.HasPendingAnswer() {
		t.Fatal("base state mutated by branching")
	}
}

func TestSessionState_ElapsedMinutes(t *testing.T) {
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	s := NewSessionState("iv", "sess", start)
	if got := s.ElapsedMinutes(start.Add(90 * time.Second)); got < 1.49 || got > 1.51 {
		t.Fatalf("elapsed = %v, want 1.5", got)
	}
}
