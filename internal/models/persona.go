package models

import "github.com/lib/pq"

type PersonaStyle string

const (
	StyleFriendly PersonaStyle = "friendly"
	StyleNeutral  PersonaStyle = "neutral"
	StyleTough    PersonaStyle = "tough"
)

// Persona is one synthetic interviewer. Immutable for the lifetime of a
// session; loaded from the interview record at session start.
type Persona struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Role       string         `json:"role"`               // ex: "Engineering Manager"
	VoiceID    string         `json:"voice_id,omitempty"` // TTS voice; empty = no audio
	Gender     string         `json:"gender,omitempty"`   // cosmetic only
	Style      PersonaStyle   `json:"style"`              // friendly|neutral|tough
	FocusAreas pq.StringArray `json:"focus_areas" gorm:"type:text[]"`
}
