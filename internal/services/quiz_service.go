package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/frosttechequities/migratio-assessment-service/internal/events"
	"github.com/frosttechequities/migratio-assessment-service/internal/models"
	"github.com/frosttechequities/migratio-assessment-service/internal/repositories"
	"github.com/frosttechequities/migratio-assessment-service/internal/validator"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// QuizService drives the adaptive questionnaire: session lifecycle, answer
// submission with conditional next-question selection, and section
// progression through the fixed section order.
type QuizService interface {
	StartSession(ctx context.Context, userID *string, opts *SessionOptions) (*SessionStart, error)
	ResumeSession(ctx context.Context, userID string) (*SessionStart, error)
	GetSession(ctx context.Context, sessionID string) (*models.QuizSession, error)
	SubmitAnswer(ctx context.Context, req *SubmitAnswerRequest) (*SubmitAnswerResult, error)
	AbandonSession(ctx context.Context, sessionID string) error
}

// SessionOptions customizes a new quiz session.
type SessionOptions struct {
	ResumeSession bool                   `json:"resume_session"`
	StartSection  models.QuizSection     `json:"start_section" validate:"omitempty,quiz_section"`
	Language      string                 `json:"language" validate:"omitempty,max=10"`
	DeviceInfo    map[string]interface{} `json:"device_info"`
	Referrer      string                 `json:"referrer" validate:"omitempty,max=500"`
	QuizVersion   string                 `json:"quiz_version" validate:"omitempty,max=20"`
	IsAnonymous   bool                   `json:"is_anonymous"`
}

// SessionStart is returned when a session is created or resumed: the session
// itself, the question to show next, and (on resume) the answers so far.
type SessionStart struct {
	Session         *models.QuizSession    `json:"session"`
	CurrentQuestion *models.Question       `json:"current_question"`
	Responses       map[string]interface{} `json:"responses,omitempty"`
	Resumed         bool                   `json:"resumed"`
}

type SubmitAnswerRequest struct {
	SessionID  string      `json:"session_id" validate:"required,max=64"`
	QuestionID string      `json:"question_id" validate:"required,max=100"`
	Answer     interface{} `json:"answer"`
}

// SubmitAnswerResult reports the state machine's move after one answer.
type SubmitAnswerResult struct {
	Session        *models.QuizSession `json:"session"`
	NextQuestion   *models.Question    `json:"next_question"`
	Progress       int                 `json:"progress"`
	CurrentSection models.QuizSection  `json:"current_section"`
	IsComplete     bool                `json:"is_complete"`
}

type quizService struct {
	repo      repositories.Repository
	catalog   QuestionCatalog
	profiles  ProfileService
	publisher events.EventPublisher
	logger    *slog.Logger
	validator *validator.Validator
}

func NewQuizService(
	repo repositories.Repository,
	catalog QuestionCatalog,
	profiles ProfileService,
	publisher events.EventPublisher,
	logger *slog.Logger,
	v *validator.Validator,
) QuizService {
	return &quizService{
		repo:      repo,
		catalog:   catalog,
		profiles:  profiles,
		publisher: publisher,
		logger:    logger,
		validator: v,
	}
}

// ===== SESSION LIFECYCLE =====

func (s *quizService) StartSession(ctx context.Context, userID *string, opts *SessionOptions) (*SessionStart, error) {
	if opts == nil {
		opts = &SessionOptions{ResumeSession: true}
	}
	if err := s.validator.Validate(opts); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	// Resume-or-create: a signed-in user with an in_progress session picks
	// it up instead of starting a second one.
	if userID != nil && opts.ResumeSession {
		resumed, err := s.ResumeSession(ctx, *userID)
		if err != nil {
			return nil, err
		}
		if resumed != nil {
			return resumed, nil
		}
	}

	section := opts.StartSection
	if section == "" {
		section = models.SectionOrder[0]
	}
	language := opts.Language
	if language == "" {
		language = "en"
	}
	quizVersion := opts.QuizVersion
	if quizVersion == "" {
		quizVersion = "1.0"
	}

	now := time.Now().UTC()
	session := &models.QuizSession{
		SessionID:      uuid.NewString(),
		UserID:         userID,
		IsAnonymous:    userID == nil || opts.IsAnonymous,
		Status:         models.SessionInProgress,
		CurrentSection: section,
		Language:       language,
		DeviceInfo:     datatypes.JSONMap(opts.DeviceInfo),
		Referrer:       opts.Referrer,
		QuizVersion:    quizVersion,
		StartedAt:      now,
		LastActivityAt: now,
	}

	first, err := s.catalog.InitialQuestion(ctx, section)
	if err != nil {
		return nil, err
	}
	if first != nil {
		session.CurrentQuestionID = &first.QuestionID
	}

	if err := s.repo.Session().Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create quiz session: %w", err)
	}

	s.logger.Info("Quiz session started",
		"session_id", session.SessionID,
		"anonymous", session.IsAnonymous,
		"section", section)

	s.publish(ctx, events.NewSessionStartedEvent(session))

	return &SessionStart{
		Session:         session,
		CurrentQuestion: first,
	}, nil
}

func (s *quizService) ResumeSession(ctx context.Context, userID string) (*SessionStart, error) {
	session, err := s.repo.Session().FindActiveByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up active session: %w", err)
	}
	if session == nil {
		return nil, nil
	}

	responses, err := s.repo.Response().ListBySession(ctx, session.SessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session responses: %w", err)
	}
	answers := models.ResponseMap(responses)

	var current *models.Question
	if session.CurrentQuestionID != nil {
		current, err = s.repo.Question().GetByQuestionID(ctx, *session.CurrentQuestionID)
		if err != nil && !repositories.IsNotFoundError(err) {
			return nil, fmt.Errorf("failed to load current question: %w", err)
		}
	}
	if current == nil {
		current, err = s.catalog.NextEligibleQuestion(ctx, session.CurrentSection, answers)
		if err != nil {
			return nil, err
		}
	}

	session.UpdateActivity()
	if err := s.repo.Session().Update(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to update session activity: %w", err)
	}

	s.logger.Info("Quiz session resumed",
		"session_id", session.SessionID,
		"progress", session.Progress)

	return &SessionStart{
		Session:         session,
		CurrentQuestion: current,
		Responses:       answers,
		Resumed:         true,
	}, nil
}

func (s *quizService) GetSession(ctx context.Context, sessionID string) (*models.QuizSession, error) {
	session, err := s.repo.Session().GetBySessionID(ctx, sessionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return session, nil
}

func (s *quizService) AbandonSession(ctx context.Context, sessionID string) error {
	session, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return err
	}
	if session.Status != models.SessionInProgress {
		return ErrSessionNotActive
	}

	if err := s.repo.Session().MarkAbandoned(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to mark session abandoned: %w", err)
	}

	session.Status = models.SessionAbandoned
	s.publish(ctx, events.NewSessionAbandonedEvent(session))

	s.logger.Info("Quiz session abandoned", "session_id", sessionID)
	return nil
}

// ===== ANSWER SUBMISSION =====

func (s *quizService) SubmitAnswer(ctx context.Context, req *SubmitAnswerRequest) (*SubmitAnswerResult, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	session, err := s.GetSession(ctx, req.SessionID)
	if err != nil {
		return nil, err
	}
	if session.Status != models.SessionInProgress {
		return nil, ErrSessionNotActive
	}

	question, err := s.repo.Question().GetByQuestionID(ctx, req.QuestionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuestionNotFound
		}
		return nil, fmt.Errorf("failed to get question: %w", err)
	}
	if !question.IsActive {
		return nil, ErrQuestionInactive
	}

	formatted, err := FormatAnswer(question, req.Answer)
	if err != nil {
		return nil, err
	}

	totalQuestions, err := s.catalog.CountActive(ctx)
	if err != nil {
		return nil, err
	}

	var next *models.Question
	err = s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		if err := s.upsertResponse(ctx, tx, session, question, formatted); err != nil {
			return err
		}

		// Every submission counts, edits included. Progress is clamped so
		// re-answering cannot push it past 100.
		session.ResponseCount++
		session.UpdateActivity()

		responses, err := tx.Response().ListBySession(ctx, session.SessionID)
		if err != nil {
			return fmt.Errorf("failed to reload session responses: %w", err)
		}
		answers := models.ResponseMap(responses)

		next, err = s.advance(ctx, session, answers)
		if err != nil {
			return err
		}

		// Complete() already pinned progress at 100; recomputing from the
		// response count would undercount when conditional questions were
		// skipped for good.
		if session.Status != models.SessionCompleted {
			session.UpdateProgress(totalQuestions)
		}
		if err := tx.Session().Update(ctx, session); err != nil {
			return fmt.Errorf("failed to update session: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if session.Status == models.SessionCompleted {
		s.onSessionCompleted(ctx, session)
	}

	return &SubmitAnswerResult{
		Session:        session,
		NextQuestion:   next,
		Progress:       session.Progress,
		CurrentSection: session.CurrentSection,
		IsComplete:     session.Status == models.SessionCompleted,
	}, nil
}

// upsertResponse writes the answer for (session, question), preserving the
// superseded value in the edit history when the question was answered before.
func (s *quizService) upsertResponse(ctx context.Context, tx repositories.Repository, session *models.QuizSession, question *models.Question, formatted *FormattedAnswer) error {
	existing, err := tx.Response().GetBySessionAndQuestion(ctx, session.SessionID, question.QuestionID)
	if err != nil {
		return fmt.Errorf("failed to look up existing response: %w", err)
	}

	if existing != nil {
		existing.EditHistory = append(existing.EditHistory, models.ResponseEdit{
			PreviousValue: existing.Value(),
			EditedAt:      time.Now().UTC(),
		})
		existing.IsEdited = true
		if err := formatted.Apply(existing); err != nil {
			return err
		}
		if err := tx.Response().Update(ctx, existing); err != nil {
			return fmt.Errorf("failed to update response: %w", err)
		}
		return nil
	}

	response := &models.Response{
		SessionID:    session.SessionID,
		QuestionID:   question.QuestionID,
		UserID:       session.UserID,
		QuestionText: question.Text,
		QuestionType: question.Type,
		Section:      question.Section,
	}
	if err := formatted.Apply(response); err != nil {
		return err
	}
	if err := tx.Response().Create(ctx, response); err != nil {
		return fmt.Errorf("failed to create response: %w", err)
	}
	return nil
}

// advance picks the next question within the current section, or walks the
// section order forward when the section is exhausted. Completing the final
// section completes the session.
func (s *quizService) advance(ctx context.Context, session *models.QuizSession, answers map[string]interface{}) (*models.Question, error) {
	section := session.CurrentSection
	for {
		next, err := s.catalog.NextEligibleQuestion(ctx, section, answers)
		if err != nil {
			return nil, err
		}
		if next != nil {
			session.CurrentSection = section
			session.CurrentQuestionID = &next.QuestionID
			return next, nil
		}

		session.CompleteSection(section)
		section = models.NextSection(section, session.CompletedSections)
		if section == "" {
			session.Complete()
			return nil, nil
		}
		session.CurrentSection = section
	}
}

// onSessionCompleted runs the one-time completion side effects: the profile
// rebuild for signed-in users and the completion event.
func (s *quizService) onSessionCompleted(ctx context.Context, session *models.QuizSession) {
	if session.UserID != nil && s.profiles != nil {
		if _, err := s.profiles.RebuildFromSession(ctx, session.SessionID); err != nil {
			s.logger.Error("Profile rebuild after completion failed",
				"session_id", session.SessionID,
				"user_id", *session.UserID,
				"error", err)
		}
	}

	s.publish(ctx, events.NewSessionCompletedEvent(session))

	s.logger.Info("Quiz session completed",
		"session_id", session.SessionID,
		"response_count", session.ResponseCount)
}

func (s *quizService) publish(ctx context.Context, event *events.AssessmentEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishAssessmentEvent(ctx, event); err != nil {
		s.logger.Error("Failed to publish event", "event_type", event.Type, "error", err)
	}
}
