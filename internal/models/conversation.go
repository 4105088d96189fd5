package models

import (
	"time"

	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

// ConversationLog is the relational mirror of session history, one row per
// spoken line. The embedding column backs conversational-memory lookups
// and may be left zero when no embedder is configured.
type ConversationLog struct {
	ID        string          `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	UserID    string          `gorm:"column:user_id;type:uuid;index" json:"user_id"`
	SessionID string          `gorm:"column:session_id;type:uuid;index" json:"session_id"`
	Speaker   string          `gorm:"column:speaker;type:text" json:"speaker"` // "interviewer" | "candidate"
	TurnType  string          `gorm:"column:turn_type;type:text" json:"turn_type,omitempty"`
	PersonaID string          `gorm:"column:persona_id;type:text" json:"persona_id,omitempty"`
	Content   string          `gorm:"column:content;type:text" json:"content"`
	Embedding pgvector.Vector `gorm:"column:embedding;type:vector(768)" json:"embedding"`
	Timestamp time.Time       `gorm:"column:timestamp;type:timestamptz;index" json:"timestamp"`
	Metadata  datatypes.JSON  `gorm:"column:metadata;type:jsonb" json:"metadata"`
}

func (ConversationLog) TableName() string { return "conversation_logs" }
