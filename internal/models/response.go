package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// FileResponse references an uploaded document attached to a file_upload
// answer. The file itself lives in the document service; only metadata is
// kept here.
type FileResponse struct {
	FileID   string `json:"file_id"`
	FileName string `json:"file_name"`
	MimeType string `json:"mime_type,omitempty"`
	Size     int64  `json:"size,omitempty"`
}

// ResponseEdit is one entry of a response's edit history.
type ResponseEdit struct {
	PreviousValue interface{} `json:"previous_value"`
	EditedAt      time.Time   `json:"edited_at"`
}

// Response holds the current answer to one question within one session.
// The (SessionID, QuestionID) pair is unique; edits overwrite in place and
// push the superseded value onto EditHistory.
type Response struct {
	ID         uint    `json:"id" gorm:"primaryKey"`
	SessionID  string  `json:"session_id" gorm:"not null;size:64;uniqueIndex:idx_responses_session_question"`
	QuestionID string  `json:"question_id" gorm:"not null;size:100;uniqueIndex:idx_responses_session_question"`
	UserID     *string `json:"user_id" gorm:"size:100;index"`

	QuestionText string       `json:"question_text" gorm:"type:text"`
	QuestionType QuestionType `json:"question_type" gorm:"size:20"`
	Section      QuizSection  `json:"section" gorm:"size:20;index"`

	// ResponseValue is the canonical answer as submitted; the typed columns
	// below are projections derived from it by the answer formatter.
	ResponseValue   datatypes.JSON                      `json:"response_value" gorm:"type:jsonb"`
	SelectedOptions datatypes.JSONSlice[QuestionOption] `json:"selected_options" gorm:"type:jsonb"`
	TextResponse    *string                             `json:"text_response" gorm:"type:text"`
	NumericResponse *float64                            `json:"numeric_response"`
	DateResponse    *time.Time                          `json:"date_response"`
	FileResponses   datatypes.JSONSlice[FileResponse]   `json:"file_responses" gorm:"type:jsonb"`

	IsEdited    bool                              `json:"is_edited" gorm:"default:false"`
	EditHistory datatypes.JSONSlice[ResponseEdit] `json:"edit_history" gorm:"type:jsonb"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (Response) TableName() string {
	return "responses"
}

// Value decodes the canonical response value. Returns nil when the stored
// value is empty or malformed.
func (r *Response) Value() interface{} {
	if len(r.ResponseValue) == 0 {
		return nil
	}
	var v interface{}
	if err := json.Unmarshal(r.ResponseValue, &v); err != nil {
		return nil
	}
	return v
}

// ResponseMap folds a slice of responses into questionId -> canonical value,
// the shape consumed by conditional-display evaluation.
func ResponseMap(responses []*Response) map[string]interface{} {
	m := make(map[string]interface{}, len(responses))
	for _, r := range responses {
		m[r.QuestionID] = r.Value()
	}
	return m
}
