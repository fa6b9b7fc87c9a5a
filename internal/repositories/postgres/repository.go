package postgres

import (
	"context"

	"github.com/frosttechequities/migratio-assessment-service/internal/repositories"
	"gorm.io/gorm"
)

type gormRepository struct {
	db       *gorm.DB
	question repositories.QuestionRepository
	session  repositories.SessionRepository
	response repositories.ResponseRepository
	profile  repositories.ProfileRepository
}

func NewRepository(db *gorm.DB) repositories.Repository {
	return &gormRepository{
		db:       db,
		question: NewQuestionPostgreSQL(db),
		session:  NewSessionPostgreSQL(db),
		response: NewResponsePostgreSQL(db),
		profile:  NewProfilePostgreSQL(db),
	}
}

func (r *gormRepository) Question() repositories.QuestionRepository { return r.question }
func (r *gormRepository) Session() repositories.SessionRepository   { return r.session }
func (r *gormRepository) Response() repositories.ResponseRepository { return r.response }
func (r *gormRepository) Profile() repositories.ProfileRepository   { return r.profile }

func (r *gormRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepository(tx))
	})
}
