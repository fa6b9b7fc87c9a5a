package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/frosttechequities/migratio-assessment-service/internal/cache"
	"github.com/frosttechequities/migratio-assessment-service/internal/models"
	"github.com/frosttechequities/migratio-assessment-service/internal/repositories"
)

const (
	catalogSectionKeyPrefix = "quiz:questions:section:"
	catalogCountKey         = "quiz:questions:active_count"
	catalogCacheTTL         = 15 * time.Minute
)

// QuestionCatalog serves the read side of the question catalog to the quiz
// engine. Section lookups and the active-question count are cached; the
// administrative write path calls Invalidate after every catalog change.
type QuestionCatalog interface {
	SectionQuestions(ctx context.Context, section models.QuizSection) ([]*models.Question, error)
	CountActive(ctx context.Context) (int, error)

	// NextEligibleQuestion returns the first active question of the section,
	// in order, that is unanswered and whose conditional display (if any) is
	// satisfied by the answers so far. Returns nil when the section has no
	// eligible question left.
	NextEligibleQuestion(ctx context.Context, section models.QuizSection, answers map[string]interface{}) (*models.Question, error)

	// InitialQuestion returns the entry question of a section: the first
	// active unconditional question by order.
	InitialQuestion(ctx context.Context, section models.QuizSection) (*models.Question, error)

	Invalidate(ctx context.Context) error
}

type questionCatalog struct {
	repo   repositories.Repository
	cache  cache.CacheService
	logger *slog.Logger
}

func NewQuestionCatalog(repo repositories.Repository, cacheService cache.CacheService, logger *slog.Logger) QuestionCatalog {
	return &questionCatalog{
		repo:   repo,
		cache:  cacheService,
		logger: logger,
	}
}

func (c *questionCatalog) SectionQuestions(ctx context.Context, section models.QuizSection) ([]*models.Question, error) {
	key := catalogSectionKeyPrefix + string(section)

	if c.cache != nil {
		var cached []*models.Question
		err := c.cache.Get(ctx, key, &cached)
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			c.logger.Warn("Question cache read failed, falling back to database",
				"section", section, "error", err)
		}
	}

	questions, err := c.repo.Question().GetBySection(ctx, section)
	if err != nil {
		return nil, fmt.Errorf("failed to load questions for section %s: %w", section, err)
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, key, questions, catalogCacheTTL); err != nil {
			c.logger.Warn("Question cache write failed", "section", section, "error", err)
		}
	}

	return questions, nil
}

func (c *questionCatalog) CountActive(ctx context.Context) (int, error) {
	if c.cache != nil {
		var cached int
		if err := c.cache.Get(ctx, catalogCountKey, &cached); err == nil {
			return cached, nil
		}
	}

	count, err := c.repo.Question().CountActive(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count active questions: %w", err)
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, catalogCountKey, int(count), catalogCacheTTL); err != nil {
			c.logger.Warn("Question count cache write failed", "error", err)
		}
	}

	return int(count), nil
}

func (c *questionCatalog) NextEligibleQuestion(ctx context.Context, section models.QuizSection, answers map[string]interface{}) (*models.Question, error) {
	questions, err := c.SectionQuestions(ctx, section)
	if err != nil {
		return nil, err
	}

	for _, question := range questions {
		if _, answered := answers[question.QuestionID]; answered {
			continue
		}
		if question.EligibleGiven(answers) {
			return question, nil
		}
	}
	return nil, nil
}

func (c *questionCatalog) InitialQuestion(ctx context.Context, section models.QuizSection) (*models.Question, error) {
	questions, err := c.SectionQuestions(ctx, section)
	if err != nil {
		return nil, err
	}

	for _, question := range questions {
		if question.Conditional() == nil {
			return question, nil
		}
	}
	return nil, nil
}

func (c *questionCatalog) Invalidate(ctx context.Context) error {
	if c.cache == nil {
		return nil
	}
	if err := c.cache.DeletePattern(ctx, catalogSectionKeyPrefix+"*"); err != nil {
		return err
	}
	return c.cache.Delete(ctx, catalogCountKey)
}
