package postgres

import (
	"context"
	"errors"

	"github.com/lib/pq"
	"github.com/mockpanel/mockpanel/internal/models"
	"github.com/mockpanel/mockpanel/internal/utils"
	"gorm.io/gorm"
)

type ResponseRepository interface {
	Insert(ctx context.Context, resp *models.ResponseRecord) error
	GetByID(ctx context.Context, id string) (*models.ResponseRecord, error)
	ListBySession(ctx context.Context, sessionID string) ([]models.ResponseRecord, error)
	SetGradeStatus(ctx context.Context, id, status string) error
	SetGrade(ctx context.Context, id string, grade models.Grade, status string) error
}

type responseRepo struct {
	db *gorm.DB
}

func NewResponseRepo(db *gorm.DB) ResponseRepository {
	return &responseRepo{db: db}
}

func (r *responseRepo) Insert(ctx context.Context, resp *models.ResponseRecord) error {
	return r.db.WithContext(ctx).Create(resp).Error
}

func (r *responseRepo) GetByID(ctx context.Context, id string) (*models.ResponseRecord, error) {
	var row models.ResponseRecord
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return &row, err
}

func (r *responseRepo) ListBySession(ctx context.Context, sessionID string) ([]models.ResponseRecord, error) {
	var rows []models.ResponseRecord
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("answered_at ASC").
		Find(&rows).Error
	return rows, err
}

func (r *responseRepo) SetGradeStatus(ctx context.Context, id, status string) error {
	return r.db.WithContext(ctx).
		Model(&models.ResponseRecord{}).
		Where("id = ?", id).
		Update("grade_status", status).Error
}

func (r *responseRepo) SetGrade(ctx context.Context, id string, grade models.Grade, status string) error {
	return r.db.WithContext(ctx).
		Model(&models.ResponseRecord{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"grade_status":     status,
			"overall_score":    grade.Overall,
			"confidence_score": grade.Confidence,
			"clarity_score":    grade.Clarity,
			"relevance_score":  grade.Relevance,
			"strengths":        pq.StringArray(grade.Strengths),
			"improvements":     pq.StringArray(grade.Improvements),
		}).Error
}
