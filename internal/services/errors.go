package services

import (
	"errors"
	"fmt"

	apperrors "github.com/frosttechequities/migratio-assessment-service/internal/errors"
)

// ===== COMMON SERVICE ERRORS =====

var (
	// Generic errors
	ErrNotFound         = errors.New("resource not found")
	ErrValidationFailed = errors.New("validation failed")
	ErrInternalError    = errors.New("internal server error")
	ErrBadRequest       = errors.New("bad request")

	// Session specific errors
	ErrSessionNotFound     = errors.New("quiz session not found")
	ErrSessionNotActive    = errors.New("quiz session is not in progress")
	ErrSessionAccessDenied = errors.New("access denied to quiz session")

	// Question specific errors
	ErrQuestionNotFound    = errors.New("question not found")
	ErrQuestionInactive    = errors.New("question is no longer active")
	ErrQuestionDuplicateID = errors.New("question id already exists")

	// Answer specific errors
	ErrAnswerInvalidType   = errors.New("answer does not match question type")
	ErrAnswerUnknownOption = errors.New("answer references an unknown option")
	ErrAnswerOutOfRange    = errors.New("answer is outside the allowed range")

	// Profile specific errors
	ErrProfileNotFound = errors.New("profile not found")
	ErrProfileNoUser   = errors.New("session has no user, profile cannot be built")
)

// ===== CUSTOM ERROR TYPES =====

// Use shared validation errors from errors package
type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors

// AnswerError carries the failing question and the reason an answer was
// rejected, so handlers can point the client at the exact field.
type AnswerError struct {
	QuestionID string      `json:"question_id"`
	Reason     error       `json:"-"`
	Message    string      `json:"message"`
	Value      interface{} `json:"value,omitempty"`
}

func (ae *AnswerError) Error() string {
	return fmt.Sprintf("invalid answer for question %s: %s", ae.QuestionID, ae.Message)
}

func (ae *AnswerError) Unwrap() error {
	return ae.Reason
}

func NewAnswerError(questionID string, reason error, message string, value interface{}) *AnswerError {
	return &AnswerError{
		QuestionID: questionID,
		Reason:     reason,
		Message:    message,
		Value:      value,
	}
}

// ===== ERROR HELPERS =====

// NewValidationError creates a new validation error using the shared type
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return apperrors.NewValidationError(field, message, value)
}

// IsNotFound checks if error represents a "not found" condition
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrSessionNotFound) ||
		errors.Is(err, ErrQuestionNotFound) ||
		errors.Is(err, ErrProfileNotFound)
}

// IsValidation checks if error represents a validation failure
func IsValidation(err error) bool {
	if errors.Is(err, ErrValidationFailed) ||
		errors.Is(err, ErrAnswerInvalidType) ||
		errors.Is(err, ErrAnswerUnknownOption) ||
		errors.Is(err, ErrAnswerOutOfRange) {
		return true
	}
	var ae *AnswerError
	if errors.As(err, &ae) {
		return true
	}
	var single *apperrors.ValidationError
	if errors.As(err, &single) {
		return true
	}
	var ve apperrors.ValidationErrors
	return errors.As(err, &ve)
}

// IsConflict checks if error represents a resource conflict
func IsConflict(err error) bool {
	return errors.Is(err, ErrSessionNotActive) ||
		errors.Is(err, ErrQuestionDuplicateID)
}
