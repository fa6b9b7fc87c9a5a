package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/frosttechequities/migratio-assessment-service/internal/models"
	"github.com/frosttechequities/migratio-assessment-service/internal/repositories"
	"github.com/frosttechequities/migratio-assessment-service/internal/validator"
	"gorm.io/datatypes"
)

// QuestionService is the administrative write path of the question catalog.
type QuestionService interface {
	Create(ctx context.Context, req *CreateQuestionRequest, creatorID string) (*models.Question, error)
	Update(ctx context.Context, questionID string, req *UpdateQuestionRequest) (*models.Question, error)
	Deactivate(ctx context.Context, questionID string) error
	Get(ctx context.Context, questionID string) (*models.Question, error)
	List(ctx context.Context, filters repositories.QuestionFilters) (*QuestionListResult, error)
}

type CreateQuestionRequest struct {
	QuestionID string              `json:"question_id" validate:"required,max=100"`
	Text       string              `json:"text" validate:"required"`
	HelpText   *string             `json:"help_text"`
	Section    models.QuizSection  `json:"section" validate:"required,quiz_section"`
	Type       models.QuestionType `json:"type" validate:"required,question_type"`
	Required   bool                `json:"required"`
	Order      int                 `json:"order" validate:"min=0"`

	Options            []models.QuestionOption    `json:"options"`
	Validation         *models.NumericValidation  `json:"validation"`
	ConditionalDisplay *models.ConditionalDisplay `json:"conditional_display"`
}

type UpdateQuestionRequest struct {
	Text     *string `json:"text"`
	HelpText *string `json:"help_text"`
	Required *bool   `json:"required"`
	Order    *int    `json:"order" validate:"omitempty,min=0"`
	IsActive *bool   `json:"is_active"`

	Options            []models.QuestionOption    `json:"options"`
	Validation         *models.NumericValidation  `json:"validation"`
	ConditionalDisplay *models.ConditionalDisplay `json:"conditional_display"`
}

type QuestionListResult struct {
	Questions []*models.Question `json:"questions"`
	Total     int64              `json:"total"`
	Limit     int                `json:"limit"`
	Offset    int                `json:"offset"`
}

type questionService struct {
	repo      repositories.Repository
	catalog   QuestionCatalog
	logger    *slog.Logger
	validator *validator.Validator
}

func NewQuestionService(repo repositories.Repository, catalog QuestionCatalog, logger *slog.Logger, v *validator.Validator) QuestionService {
	return &questionService{
		repo:      repo,
		catalog:   catalog,
		logger:    logger,
		validator: v,
	}
}

func (s *questionService) Create(ctx context.Context, req *CreateQuestionRequest, creatorID string) (*models.Question, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	existing, err := s.repo.Question().GetByQuestionID(ctx, req.QuestionID)
	if err != nil && !repositories.IsNotFoundError(err) {
		return nil, fmt.Errorf("failed to check question id: %w", err)
	}
	if existing != nil {
		return nil, ErrQuestionDuplicateID
	}

	question := &models.Question{
		QuestionID: req.QuestionID,
		Text:       req.Text,
		HelpText:   req.HelpText,
		Section:    req.Section,
		Type:       req.Type,
		Required:   req.Required,
		Order:      req.Order,
		Options:    datatypes.NewJSONSlice(req.Options),
		IsActive:   true,
	}
	if creatorID != "" {
		question.CreatedBy = &creatorID
	}
	if req.Validation != nil {
		v := datatypes.NewJSONType(*req.Validation)
		question.Validation = &v
	}
	if req.ConditionalDisplay != nil {
		cd := datatypes.NewJSONType(*req.ConditionalDisplay)
		question.ConditionalDisplay = &cd
	}

	if err := s.repo.Question().Create(ctx, question); err != nil {
		return nil, fmt.Errorf("failed to create question: %w", err)
	}

	s.invalidateCatalog(ctx)
	s.logger.Info("Question created", "question_id", question.QuestionID, "section", question.Section)
	return question, nil
}

func (s *questionService) Update(ctx context.Context, questionID string, req *UpdateQuestionRequest) (*models.Question, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	question, err := s.Get(ctx, questionID)
	if err != nil {
		return nil, err
	}

	if req.Text != nil {
		question.Text = *req.Text
	}
	if req.HelpText != nil {
		question.HelpText = req.HelpText
	}
	if req.Required != nil {
		question.Required = *req.Required
	}
	if req.Order != nil {
		question.Order = *req.Order
	}
	if req.IsActive != nil {
		question.IsActive = *req.IsActive
	}
	if req.Options != nil {
		question.Options = datatypes.NewJSONSlice(req.Options)
	}
	if req.Validation != nil {
		v := datatypes.NewJSONType(*req.Validation)
		question.Validation = &v
	}
	if req.ConditionalDisplay != nil {
		cd := datatypes.NewJSONType(*req.ConditionalDisplay)
		question.ConditionalDisplay = &cd
	}

	if err := s.repo.Question().Update(ctx, question); err != nil {
		return nil, fmt.Errorf("failed to update question: %w", err)
	}

	s.invalidateCatalog(ctx)
	s.logger.Info("Question updated", "question_id", questionID)
	return question, nil
}

func (s *questionService) Deactivate(ctx context.Context, questionID string) error {
	if _, err := s.Get(ctx, questionID); err != nil {
		return err
	}
	if err := s.repo.Question().Deactivate(ctx, questionID); err != nil {
		return fmt.Errorf("failed to deactivate question: %w", err)
	}
	s.invalidateCatalog(ctx)
	s.logger.Info("Question deactivated", "question_id", questionID)
	return nil
}

func (s *questionService) Get(ctx context.Context, questionID string) (*models.Question, error) {
	question, err := s.repo.Question().GetByQuestionID(ctx, questionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuestionNotFound
		}
		return nil, fmt.Errorf("failed to get question: %w", err)
	}
	return question, nil
}

func (s *questionService) List(ctx context.Context, filters repositories.QuestionFilters) (*QuestionListResult, error) {
	questions, total, err := s.repo.Question().List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}
	return &QuestionListResult{
		Questions: questions,
		Total:     total,
		Limit:     filters.Limit,
		Offset:    filters.Offset,
	}, nil
}

func (s *questionService) invalidateCatalog(ctx context.Context) {
	if s.catalog == nil {
		return
	}
	if err := s.catalog.Invalidate(ctx); err != nil {
		s.logger.Warn("Question cache invalidation failed", "error", err)
	}
}
