package postgres

import (
	"context"

	"github.com/frosttechequities/migratio-assessment-service/internal/models"
	"github.com/frosttechequities/migratio-assessment-service/internal/repositories"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProfilePostgreSQL struct {
	db *gorm.DB
}

func NewProfilePostgreSQL(db *gorm.DB) repositories.ProfileRepository {
	return &ProfilePostgreSQL{db: db}
}

func (p ProfilePostgreSQL) GetByUserID(ctx context.Context, userID string) (*models.Profile, error) {
	var profile models.Profile
	if err := p.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

func (p ProfilePostgreSQL) Upsert(ctx context.Context, profile *models.Profile) error {
	return p.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"personal_info",
				"education",
				"work_experience",
				"language_proficiency",
				"financial_info",
				"immigration_preferences",
				"completion_status",
				"updated_at",
			}),
		}).
		Create(profile).Error
}
