package repositories

import (
	"context"
	"errors"

	"github.com/frosttechequities/migratio-assessment-service/internal/models"
	"gorm.io/gorm"
)

// Repository aggregates the per-entity stores. WithTransaction runs fn
// against a repository bound to a single database transaction; any error
// rolls the whole unit back.
type Repository interface {
	Question() QuestionRepository
	Session() SessionRepository
	Response() ResponseRepository
	Profile() ProfileRepository

	WithTransaction(ctx context.Context, fn func(Repository) error) error
}

// QuestionRepository is the read-mostly question catalog. Writes come only
// from the administrative import/CRUD path; quiz sessions never mutate it.
type QuestionRepository interface {
	Create(ctx context.Context, question *models.Question) error
	CreateBatch(ctx context.Context, questions []*models.Question) error
	Update(ctx context.Context, question *models.Question) error
	Deactivate(ctx context.Context, questionID string) error

	GetByQuestionID(ctx context.Context, questionID string) (*models.Question, error)
	List(ctx context.Context, filters QuestionFilters) ([]*models.Question, int64, error)

	// GetBySection returns active questions of a section ordered by their
	// within-section order, the working set for next-question selection.
	GetBySection(ctx context.Context, section models.QuizSection) ([]*models.Question, error)
	CountActive(ctx context.Context) (int64, error)
}

type SessionRepository interface {
	Create(ctx context.Context, session *models.QuizSession) error
	Update(ctx context.Context, session *models.QuizSession) error
	GetBySessionID(ctx context.Context, sessionID string) (*models.QuizSession, error)

	// FindActiveByUser returns the user's in_progress session, or nil when
	// none exists. The single-active-session invariant is enforced by
	// resume-or-create on top of this lookup; the check-then-insert is not
	// atomic, so concurrent creates can race (last write wins).
	FindActiveByUser(ctx context.Context, userID string) (*models.QuizSession, error)
	MarkAbandoned(ctx context.Context, sessionID string) error
}

type ResponseRepository interface {
	Create(ctx context.Context, response *models.Response) error
	Update(ctx context.Context, response *models.Response) error

	// GetBySessionAndQuestion returns nil when no response exists yet.
	GetBySessionAndQuestion(ctx context.Context, sessionID, questionID string) (*models.Response, error)
	ListBySession(ctx context.Context, sessionID string) ([]*models.Response, error)
}

type ProfileRepository interface {
	GetByUserID(ctx context.Context, userID string) (*models.Profile, error)
	// Upsert inserts the profile or replaces the existing row for the same
	// user id, preserving the one-profile-per-user invariant.
	Upsert(ctx context.Context, profile *models.Profile) error
}

// ===== SHARED FILTER STRUCTS =====

type QuestionFilters struct {
	Section   *models.QuizSection  `json:"section"`
	Type      *models.QuestionType `json:"type"`
	IsActive  *bool                `json:"is_active"`
	CreatedBy *string              `json:"created_by"`
	Limit     int                  `json:"limit"`
	Offset    int                  `json:"offset"`
	SortBy    string               `json:"sort_by"`    // "order", "created_at", "question_id"
	SortOrder string               `json:"sort_order"` // "asc", "desc"
}

// IsNotFoundError reports whether err is the underlying store's missing-row
// error, letting services translate it into their own sentinel errors.
func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
