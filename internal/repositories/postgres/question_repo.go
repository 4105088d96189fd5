package postgres

import (
	"context"

	"github.com/mockpanel/mockpanel/internal/models"
	"gorm.io/gorm"
)

type QuestionRepository interface {
	Insert(ctx context.Context, q *models.QuestionRecord) error
	ListBySession(ctx context.Context, sessionID string) ([]models.QuestionRecord, error)
}

type questionRepo struct {
	db *gorm.DB
}

func NewQuestionRepo(db *gorm.DB) QuestionRepository {
	return &questionRepo{db: db}
}

func (r *questionRepo) Insert(ctx context.Context, q *models.QuestionRecord) error {
	return r.db.WithContext(ctx).Create(q).Error
}

func (r *questionRepo) ListBySession(ctx context.Context, sessionID string) ([]models.QuestionRecord, error) {
	var rows []models.QuestionRecord
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("number ASC").
		Find(&rows).Error
	return rows, err
}
