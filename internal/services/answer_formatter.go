package services

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/frosttechequities/migratio-assessment-service/internal/models"
	"gorm.io/datatypes"
)

// FormattedAnswer carries the canonical value plus the typed projections the
// response row stores alongside it.
type FormattedAnswer struct {
	Value           interface{}
	SelectedOptions []models.QuestionOption
	TextResponse    *string
	NumericResponse *float64
	DateResponse    *time.Time
	FileResponses   []models.FileResponse
}

// FormatAnswer validates raw against the question's type and projects it into
// the typed response columns. Numeric bounds from the question's validation
// block are enforced here so slider and number answers can never land outside
// the configured range.
func FormatAnswer(question *models.Question, raw interface{}) (*FormattedAnswer, error) {
	switch question.Type {
	case models.QuestionSingleChoice:
		return formatSingleChoice(question, raw)
	case models.QuestionMultipleChoice:
		return formatMultipleChoice(question, raw)
	case models.QuestionSlider, models.QuestionNumber:
		return formatNumeric(question, raw)
	case models.QuestionDate:
		return formatDate(question, raw)
	case models.QuestionText:
		return formatText(question, raw)
	case models.QuestionFileUpload:
		return formatFileUpload(question, raw)
	default:
		return nil, NewAnswerError(question.QuestionID, ErrAnswerInvalidType,
			fmt.Sprintf("unsupported question type %q", question.Type), raw)
	}
}

// Apply writes the formatted answer onto a response row.
func (fa *FormattedAnswer) Apply(response *models.Response) error {
	canonical, err := json.Marshal(fa.Value)
	if err != nil {
		return fmt.Errorf("failed to encode response value: %w", err)
	}
	response.ResponseValue = datatypes.JSON(canonical)
	response.SelectedOptions = fa.SelectedOptions
	response.TextResponse = fa.TextResponse
	response.NumericResponse = fa.NumericResponse
	response.DateResponse = fa.DateResponse
	response.FileResponses = fa.FileResponses
	return nil
}

func formatSingleChoice(question *models.Question, raw interface{}) (*FormattedAnswer, error) {
	value, ok := raw.(string)
	if !ok || value == "" {
		return nil, NewAnswerError(question.QuestionID, ErrAnswerInvalidType,
			"single choice answer must be a non-empty option value", raw)
	}
	option := question.OptionByValue(value)
	if option == nil {
		return nil, NewAnswerError(question.QuestionID, ErrAnswerUnknownOption,
			fmt.Sprintf("option %q is not defined for this question", value), raw)
	}
	return &FormattedAnswer{
		Value:           value,
		SelectedOptions: []models.QuestionOption{*option},
	}, nil
}

func formatMultipleChoice(question *models.Question, raw interface{}) (*FormattedAnswer, error) {
	values, err := stringSlice(raw)
	if err != nil || len(values) == 0 {
		return nil, NewAnswerError(question.QuestionID, ErrAnswerInvalidType,
			"multiple choice answer must be a non-empty list of option values", raw)
	}

	options := make([]models.QuestionOption, 0, len(values))
	canonical := make([]interface{}, 0, len(values))
	for _, value := range values {
		option := question.OptionByValue(value)
		if option == nil {
			return nil, NewAnswerError(question.QuestionID, ErrAnswerUnknownOption,
				fmt.Sprintf("option %q is not defined for this question", value), raw)
		}
		options = append(options, *option)
		canonical = append(canonical, value)
	}

	return &FormattedAnswer{
		Value:           canonical,
		SelectedOptions: options,
	}, nil
}

func formatNumeric(question *models.Question, raw interface{}) (*FormattedAnswer, error) {
	number, err := coerceNumber(raw)
	if err != nil {
		return nil, NewAnswerError(question.QuestionID, ErrAnswerInvalidType,
			"answer must be a number", raw)
	}

	if question.Validation != nil {
		bounds := question.Validation.Data()
		if bounds.Min != nil && number < *bounds.Min {
			return nil, NewAnswerError(question.QuestionID, ErrAnswerOutOfRange,
				fmt.Sprintf("value must be at least %v", *bounds.Min), raw)
		}
		if bounds.Max != nil && number > *bounds.Max {
			return nil, NewAnswerError(question.QuestionID, ErrAnswerOutOfRange,
				fmt.Sprintf("value must be at most %v", *bounds.Max), raw)
		}
	}

	return &FormattedAnswer{
		Value:           number,
		NumericResponse: &number,
	}, nil
}

func formatDate(question *models.Question, raw interface{}) (*FormattedAnswer, error) {
	value, ok := raw.(string)
	if !ok || value == "" {
		return nil, NewAnswerError(question.QuestionID, ErrAnswerInvalidType,
			"date answer must be a date string", raw)
	}
	parsed, err := ParseDate(value)
	if err != nil {
		return nil, NewAnswerError(question.QuestionID, ErrAnswerInvalidType,
			fmt.Sprintf("cannot parse %q as a date", value), raw)
	}
	return &FormattedAnswer{
		Value:        value,
		DateResponse: &parsed,
	}, nil
}

func formatText(question *models.Question, raw interface{}) (*FormattedAnswer, error) {
	text := stringify(raw)
	if question.Required && strings.TrimSpace(text) == "" {
		return nil, NewAnswerError(question.QuestionID, ErrAnswerInvalidType,
			"text answer must not be empty", raw)
	}
	return &FormattedAnswer{
		Value:        text,
		TextResponse: &text,
	}, nil
}

func formatFileUpload(question *models.Question, raw interface{}) (*FormattedAnswer, error) {
	encoded, err := json.Marshal(raw)
	if err != nil {
		return nil, NewAnswerError(question.QuestionID, ErrAnswerInvalidType,
			"file answer has an invalid shape", raw)
	}

	// Accept either a single file object or a list of them.
	var files []models.FileResponse
	if err := json.Unmarshal(encoded, &files); err != nil {
		var single models.FileResponse
		if err := json.Unmarshal(encoded, &single); err != nil {
			return nil, NewAnswerError(question.QuestionID, ErrAnswerInvalidType,
				"file answer must contain file metadata", raw)
		}
		files = []models.FileResponse{single}
	}

	for _, f := range files {
		if f.FileID == "" {
			return nil, NewAnswerError(question.QuestionID, ErrAnswerInvalidType,
				"file answer is missing a file_id", raw)
		}
	}

	return &FormattedAnswer{
		Value:         raw,
		FileResponses: files,
	}, nil
}

// ParseDate accepts RFC3339 timestamps and bare YYYY-MM-DD dates.
func ParseDate(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", value)
}

func coerceNumber(raw interface{}) (float64, error) {
	switch v := raw.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case json.Number:
		return v.Float64()
	case string:
		return strconv.ParseFloat(strings.TrimSpace(v), 64)
	default:
		return 0, fmt.Errorf("value of type %T is not numeric", raw)
	}
}

func stringify(raw interface{}) string {
	switch v := raw.(type) {
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case nil:
		return ""
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(encoded)
	}
}

func stringSlice(raw interface{}) ([]string, error) {
	switch v := raw.(type) {
	case []string:
		return v, nil
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("list item of type %T is not a string", item)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("value of type %T is not a string list", raw)
	}
}
