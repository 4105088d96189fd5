package models

import (
	"time"

	"github.com/lib/pq"
)

// QuestionRecord is one question (or follow-up) asked during a session.
type QuestionRecord struct {
	ID        string `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	SessionID string `gorm:"column:session_id;type:uuid;index" json:"session_id"`

	Text      string   `gorm:"column:text;type:text" json:"text"`
	Type      TurnType `gorm:"column:type;type:text" json:"type"` // greeting|question|followup
	Number    int      `gorm:"column:number;type:integer" json:"number"`
	PersonaID string   `gorm:"column:persona_id;type:text" json:"persona_id"`

	AskedAt time.Time `gorm:"column:asked_at;type:timestamptz" json:"asked_at"`
}

func (QuestionRecord) TableName() string { return "questions" }

// ResponseRecord is one candidate answer, graded asynchronously in graded
// mode. GradeStatus mirrors the grading worker pipeline.
type ResponseRecord struct {
	ID         string `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	SessionID  string `gorm:"column:session_id;type:uuid;index" json:"session_id"`
	QuestionID string `gorm:"column:question_id;type:uuid;index" json:"question_id"`

	Text string `gorm:"column:text;type:text" json:"text"`

	GradeStatus string `gorm:"column:grade_status;type:text" json:"grade_status"` // pending|processing|done|failed|skipped

	OverallScore    int `gorm:"column:overall_score;type:integer" json:"overall_score"`
	ConfidenceScore int `gorm:"column:confidence_score;type:integer" json:"confidence_score"`
	ClarityScore    int `gorm:"column:clarity_score;type:integer" json:"clarity_score"`
	RelevanceScore  int `gorm:"column:relevance_score;type:integer" json:"relevance_score"`

	Strengths    pq.StringArray `gorm:"column:strengths;type:text[]" json:"strengths"`
	Improvements pq.StringArray `gorm:"column:improvements;type:text[]" json:"improvements"`

	AnsweredAt time.Time `gorm:"column:answered_at;type:timestamptz" json:"answered_at"`
}

func (ResponseRecord) TableName() string { return "responses" }

// Grade returns the response's scores as an orchestrator Grade value.
func (r ResponseRecord) Grade() Grade {
	return Grade{
		Overall:      r.OverallScore,
		Confidence:   r.ConfidenceScore,
		Clarity:      r.ClarityScore,
		Relevance:    r.RelevanceScore,
		Strengths:    r.Strengths,
		Improvements: r.Improvements,
	}
}
