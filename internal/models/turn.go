package models

import "time"

type TurnType string

const (
	TurnGreeting       TurnType = "greeting"
	TurnQuestion       TurnType = "question"
	TurnAcknowledgment TurnType = "acknowledgment"
	TurnFollowUp       TurnType = "followup"
	TurnTransition     TurnType = "transition"
	TurnClosing        TurnType = "closing"
)

type Speaker string

const (
	SpeakerInterviewer Speaker = "interviewer"
	SpeakerCandidate   Speaker = "candidate"
)

// ConversationalTurn is one produced artifact of the generation engine.
// Ephemeral: constructed, returned, and persisted by the caller.
type ConversationalTurn struct {
	Text                  string   `json:"text"`
	Type                  TurnType `json:"type"`
	PersonaID             string   `json:"persona_id"`
	ShouldWaitForResponse bool     `json:"should_wait_for_response"`
	Audio                 []byte   `json:"audio,omitempty"`
}

// ConversationEntry is one line of session history. The turn type is tagged
// at creation time instead of being re-inferred from the text later.
type ConversationEntry struct {
	Speaker   Speaker   `bson:"speaker" json:"speaker"`
	Text      string    `bson:"text" json:"text"`
	Type      TurnType  `bson:"type,omitempty" json:"type,omitempty"` // empty for candidate entries
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`
}
