package models

import (
	"time"

	"github.com/lib/pq"
)

// Grade is the four-score evaluation of one candidate response, each score
// on a 0-100 integer scale.
type Grade struct {
	Overall    int `json:"overall"`
	Confidence int `json:"confidence"`
	Clarity    int `json:"clarity"`
	Relevance  int `json:"relevance"`

	Strengths    []string `json:"strengths,omitempty"`
	Improvements []string `json:"improvements,omitempty"`
}

// SessionAnalytics is the session-level aggregate, computed exactly once at
// session end and immutable afterward.
type SessionAnalytics struct {
	ID        string `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	SessionID string `gorm:"column:session_id;type:uuid;uniqueIndex" json:"session_id"`
	UserID    string `gorm:"column:user_id;type:uuid;index" json:"user_id"`

	OverallGrade    int `gorm:"column:overall_grade;type:integer" json:"overall_grade"`
	ConfidenceScore int `gorm:"column:confidence_score;type:integer" json:"confidence_score"`
	ClarityScore    int `gorm:"column:clarity_score;type:integer" json:"clarity_score"`
	RelevanceScore  int `gorm:"column:relevance_score;type:integer" json:"relevance_score"`

	Strengths    pq.StringArray `gorm:"column:strengths;type:text[]" json:"strengths"`
	Improvements pq.StringArray `gorm:"column:improvements;type:text[]" json:"improvements"`

	PerformanceSummary string `gorm:"column:performance_summary;type:text" json:"performance_summary"`
	ResponseCount      int    `gorm:"column:response_count;type:integer" json:"response_count"`

	CreatedAt time.Time `gorm:"column:created_at;type:timestamptz" json:"created_at"`
}

func (SessionAnalytics) TableName() string { return "session_analytics" }
