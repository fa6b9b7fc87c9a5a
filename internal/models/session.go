package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type SessionStatus string

const (
	SessionInProgress SessionStatus = "in_progress"
	SessionCompleted  SessionStatus = "completed"
	SessionAbandoned  SessionStatus = "abandoned"
)

// QuizSession tracks one quiz attempt: the current position in the section
// sequence, accumulated progress, and lifecycle timestamps. A user has at
// most one in_progress session at a time; the quiz service enforces this via
// resume-or-create (best effort, see SessionRepository.FindActiveByUser).
type QuizSession struct {
	ID        uint    `json:"id" gorm:"primaryKey"`
	SessionID string  `json:"session_id" gorm:"not null;uniqueIndex;size:64"`
	UserID    *string `json:"user_id" gorm:"size:100;index"`

	IsAnonymous bool          `json:"is_anonymous" gorm:"default:false"`
	Status      SessionStatus `json:"status" gorm:"not null;default:in_progress;size:20;index" validate:"omitempty,session_status"`

	CurrentSection    QuizSection                      `json:"current_section" gorm:"not null;size:20"`
	CurrentQuestionID *string                          `json:"current_question_id" gorm:"size:100"`
	CompletedSections datatypes.JSONSlice[QuizSection] `json:"completed_sections" gorm:"type:jsonb"`

	Progress      int `json:"progress" gorm:"default:0"`
	ResponseCount int `json:"response_count" gorm:"default:0"`

	Language    string            `json:"language" gorm:"size:10;default:en"`
	DeviceInfo  datatypes.JSONMap `json:"device_info" gorm:"type:jsonb"`
	Referrer    string            `json:"referrer" gorm:"size:500"`
	QuizVersion string            `json:"quiz_version" gorm:"size:20;default:1.0"`

	StartedAt      time.Time      `json:"started_at"`
	LastActivityAt time.Time      `json:"last_activity_at"`
	CompletedAt    *time.Time     `json:"completed_at"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `json:"-" gorm:"index"`
}

func (QuizSession) TableName() string {
	return "quiz_sessions"
}

// CompleteSection records a section as finished. Adding an already completed
// section is a no-op.
func (s *QuizSession) CompleteSection(section QuizSection) {
	for _, done := range s.CompletedSections {
		if done == section {
			return
		}
	}
	s.CompletedSections = append(s.CompletedSections, section)
}

// UpdateProgress recomputes the progress percentage from the response count.
// Clamped to 100: editing an answer bumps ResponseCount past the distinct
// answer count, which must never push progress over the top.
func (s *QuizSession) UpdateProgress(totalQuestions int) {
	if totalQuestions <= 0 {
		s.Progress = 0
		return
	}
	progress := int(float64(s.ResponseCount)/float64(totalQuestions)*100 + 0.5)
	if progress > 100 {
		progress = 100
	}
	s.Progress = progress
}

// UpdateActivity stamps the session with the current time.
func (s *QuizSession) UpdateActivity() {
	s.LastActivityAt = time.Now().UTC()
}

// Complete transitions the session to its terminal completed state.
func (s *QuizSession) Complete() {
	now := time.Now().UTC()
	s.Status = SessionCompleted
	s.CompletedAt = &now
	s.Progress = 100
	s.CurrentQuestionID = nil
}
