package models

import (
	"time"

	"gorm.io/datatypes"
)

type InterviewMode string

const (
	ModePractice InterviewMode = "practice"
	ModeGraded   InterviewMode = "graded"
)

// Interview is the persisted record of a scheduled interview.
type Interview struct {
	ID     string `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	UserID string `gorm:"column:user_id;type:uuid;index" json:"user_id"`

	ScenarioType string `gorm:"column:scenario_type;type:text" json:"scenario_type"` // ex: "behavioral", "system_design"
	Position     string `gorm:"column:position;type:text" json:"position"`
	Description  string `gorm:"column:description;type:text" json:"description"`

	// Document-derived context (resume / job description text), optional.
	DocumentID      *string `gorm:"column:document_id;type:uuid" json:"document_id,omitempty"`
	DocumentContext string  `gorm:"column:document_context;type:text" json:"document_context,omitempty"`

	// Personas serialized as JSONB; 1..N, cycled round-robin.
	Personas datatypes.JSON `gorm:"column:personas;type:jsonb" json:"personas"`

	DurationMinutes int           `gorm:"column:duration_minutes;type:integer" json:"duration_minutes"`
	Mode            InterviewMode `gorm:"column:mode;type:text" json:"mode"`

	Status    string    `gorm:"column:status;type:text" json:"status"` // scheduled|active|completed
	CreatedAt time.Time `gorm:"column:created_at;type:timestamptz" json:"created_at"`
}

func (Interview) TableName() string { return "interviews" }

// InterviewConfig is the static, read-only view of an interview that the
// orchestrator consumes. Built once from the Interview record at session
// start; never mutated afterward.
type InterviewConfig struct {
	InterviewID     string        `json:"interview_id"`
	UserID          string        `json:"user_id"`
	ScenarioType    string        `json:"scenario_type"`
	Position        string        `json:"position"`
	Description     string        `json:"description"`
	DocumentContext string        `json:"document_context,omitempty"`
	Personas        []Persona     `json:"personas"`
	DurationMinutes int           `json:"duration_minutes"`
	Mode            InterviewMode `json:"mode"`
}
