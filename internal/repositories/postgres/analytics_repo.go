package postgres

import (
	"context"
	"errors"

	"github.com/mockpanel/mockpanel/internal/models"
	"github.com/mockpanel/mockpanel/internal/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AnalyticsRepository interface {
	// Insert writes the analytics row once; a second write for the same
	// session is silently ignored.
	Insert(ctx context.Context, a *models.SessionAnalytics) error
	GetBySessionID(ctx context.Context, sessionID string) (*models.SessionAnalytics, error)
}

type analyticsRepo struct {
	db *gorm.DB
}

func NewAnalyticsRepo(db *gorm.DB) AnalyticsRepository {
	return &analyticsRepo{db: db}
}

func (r *analyticsRepo) Insert(ctx context.Context, a *models.SessionAnalytics) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "session_id"}},
			DoNothing: true,
		}).
		Create(a).Error
}

func (r *analyticsRepo) GetBySessionID(ctx context.Context, sessionID string) (*models.SessionAnalytics, error) {
	var row models.SessionAnalytics
	err := r.db.WithContext(ctx).Where("session_id = ?", sessionID).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return &row, err
}
