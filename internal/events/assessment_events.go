package events

import (
	"time"

	"github.com/frosttechequities/migratio-assessment-service/internal/models"
	"github.com/google/uuid"
)

// EventType represents different types of assessment events
type EventType string

const (
	// Quiz session events
	EventSessionStarted   EventType = "quiz.session_started"
	EventSessionCompleted EventType = "quiz.session_completed"
	EventSessionAbandoned EventType = "quiz.session_abandoned"

	// Profile events
	EventProfileUpdated EventType = "profile.updated"
	EventProfileScored  EventType = "profile.scored"
)

// AssessmentEvent is the base event structure for all assessment events
type AssessmentEvent struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// Quiz session event payloads

type SessionStartedEvent struct {
	SessionID   string  `json:"session_id"`
	UserID      *string `json:"user_id,omitempty"`
	IsAnonymous bool    `json:"is_anonymous"`
	Language    string  `json:"language"`
	Referrer    string  `json:"referrer,omitempty"`
	QuizVersion string  `json:"quiz_version"`
}

type SessionCompletedEvent struct {
	SessionID     string    `json:"session_id"`
	UserID        *string   `json:"user_id,omitempty"`
	ResponseCount int       `json:"response_count"`
	StartedAt     time.Time `json:"started_at"`
	CompletedAt   time.Time `json:"completed_at"`
	QuizVersion   string    `json:"quiz_version"`
}

type SessionAbandonedEvent struct {
	SessionID      string    `json:"session_id"`
	UserID         *string   `json:"user_id,omitempty"`
	Progress       int       `json:"progress"`
	LastActivityAt time.Time `json:"last_activity_at"`
}

// Profile event payloads

type ProfileUpdatedEvent struct {
	UserID            string `json:"user_id"`
	SessionID         string `json:"session_id"`
	OverallCompletion int    `json:"overall_completion"`
}

type ProfileScoredEvent struct {
	UserID    string                  `json:"user_id"`
	Age       int                     `json:"age"`
	Education int                     `json:"education"`
	Work      int                     `json:"work"`
	Language  int                     `json:"language"`
	Financial int                     `json:"financial"`
	Overall   int                     `json:"overall"`
	Category  models.StrengthCategory `json:"category"`
}

// Event factory functions

func NewSessionStartedEvent(session *models.QuizSession) *AssessmentEvent {
	return newEvent(EventSessionStarted, SessionStartedEvent{
		SessionID:   session.SessionID,
		UserID:      session.UserID,
		IsAnonymous: session.IsAnonymous,
		Language:    session.Language,
		Referrer:    session.Referrer,
		QuizVersion: session.QuizVersion,
	})
}

func NewSessionCompletedEvent(session *models.QuizSession) *AssessmentEvent {
	completedAt := time.Now()
	if session.CompletedAt != nil {
		completedAt = *session.CompletedAt
	}
	return newEvent(EventSessionCompleted, SessionCompletedEvent{
		SessionID:     session.SessionID,
		UserID:        session.UserID,
		ResponseCount: session.ResponseCount,
		StartedAt:     session.StartedAt,
		CompletedAt:   completedAt,
		QuizVersion:   session.QuizVersion,
	})
}

func NewSessionAbandonedEvent(session *models.QuizSession) *AssessmentEvent {
	return newEvent(EventSessionAbandoned, SessionAbandonedEvent{
		SessionID:      session.SessionID,
		UserID:         session.UserID,
		Progress:       session.Progress,
		LastActivityAt: session.LastActivityAt,
	})
}

func NewProfileUpdatedEvent(userID, sessionID string, overallCompletion int) *AssessmentEvent {
	return newEvent(EventProfileUpdated, ProfileUpdatedEvent{
		UserID:            userID,
		SessionID:         sessionID,
		OverallCompletion: overallCompletion,
	})
}

func NewProfileScoredEvent(userID string, result *models.ScoreResult) *AssessmentEvent {
	return newEvent(EventProfileScored, ProfileScoredEvent{
		UserID:    userID,
		Age:       result.Age,
		Education: result.Education,
		Work:      result.Work,
		Language:  result.Language,
		Financial: result.Financial,
		Overall:   result.Overall,
		Category:  result.Category,
	})
}

func newEvent(eventType EventType, data interface{}) *AssessmentEvent {
	return &AssessmentEvent{
		ID:        GenerateEventID(),
		Type:      eventType,
		Timestamp: time.Now(),
		Source:    "migratio-assessment-service",
		Version:   "1.0",
		Data:      data,
	}
}

// GenerateEventID returns a unique identifier for a new event.
func GenerateEventID() string {
	return uuid.NewString()
}
