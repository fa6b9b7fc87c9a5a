package postgres

import (
	"context"
	"errors"

	"github.com/frosttechequities/migratio-assessment-service/internal/models"
	"github.com/frosttechequities/migratio-assessment-service/internal/repositories"
	"gorm.io/gorm"
)

type ResponsePostgreSQL struct {
	db *gorm.DB
}

func NewResponsePostgreSQL(db *gorm.DB) repositories.ResponseRepository {
	return &ResponsePostgreSQL{db: db}
}

func (r ResponsePostgreSQL) Create(ctx context.Context, response *models.Response) error {
	return r.db.WithContext(ctx).Create(response).Error
}

func (r ResponsePostgreSQL) Update(ctx context.Context, response *models.Response) error {
	return r.db.WithContext(ctx).Save(response).Error
}

func (r ResponsePostgreSQL) GetBySessionAndQuestion(ctx context.Context, sessionID, questionID string) (*models.Response, error) {
	var response models.Response
	if err := r.db.WithContext(ctx).
		Where("session_id = ? AND question_id = ?", sessionID, questionID).
		First(&response).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &response, nil
}

func (r ResponsePostgreSQL) ListBySession(ctx context.Context, sessionID string) ([]*models.Response, error) {
	var responses []*models.Response
	if err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at ASC").
		Find(&responses).Error; err != nil {
		return nil, err
	}
	return responses, nil
}
