package services

import (
	"testing"
	"time"

	"github.com/frosttechequities/migratio-assessment-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func numberQuestion(id string, min, max float64) *models.Question {
	validation := datatypes.NewJSONType(models.NumericValidation{Min: &min, Max: &max})
	return &models.Question{
		QuestionID: id,
		Text:       id,
		Section:    models.SectionFinancial,
		Type:       models.QuestionNumber,
		Required:   true,
		Validation: &validation,
		IsActive:   true,
	}
}

func TestFormatAnswer_SingleChoice(t *testing.T) {
	question := choiceQuestion("personal_gender", models.SectionPersonal, 1, "male", "female")

	formatted, err := FormatAnswer(question, "female")
	require.NoError(t, err)
	assert.Equal(t, "female", formatted.Value)
	require.Len(t, formatted.SelectedOptions, 1)
	assert.Equal(t, "female", formatted.SelectedOptions[0].Value)

	_, err = FormatAnswer(question, "dragon")
	assert.ErrorIs(t, err, ErrAnswerUnknownOption)

	_, err = FormatAnswer(question, 42)
	assert.ErrorIs(t, err, ErrAnswerInvalidType)
}

func TestFormatAnswer_MultipleChoice(t *testing.T) {
	question := choiceQuestion("preferences_destination_countries", models.SectionPreferences, 1, "canada", "australia", "germany")
	question.Type = models.QuestionMultipleChoice

	formatted, err := FormatAnswer(question, []interface{}{"canada", "germany"})
	require.NoError(t, err)
	assert.Equal(t, []interface{}{"canada", "germany"}, formatted.Value)
	assert.Len(t, formatted.SelectedOptions, 2)

	_, err = FormatAnswer(question, []interface{}{"canada", "mars"})
	assert.ErrorIs(t, err, ErrAnswerUnknownOption)

	_, err = FormatAnswer(question, []interface{}{})
	assert.ErrorIs(t, err, ErrAnswerInvalidType)
}

func TestFormatAnswer_NumericBounds(t *testing.T) {
	question := numberQuestion("financial_liquid_assets", 0, 1000000)

	formatted, err := FormatAnswer(question, 50000.0)
	require.NoError(t, err)
	require.NotNil(t, formatted.NumericResponse)
	assert.Equal(t, 50000.0, *formatted.NumericResponse)

	// Strings coerce when numeric
	formatted, err = FormatAnswer(question, "75000")
	require.NoError(t, err)
	assert.Equal(t, 75000.0, *formatted.NumericResponse)

	_, err = FormatAnswer(question, -1)
	assert.ErrorIs(t, err, ErrAnswerOutOfRange)

	_, err = FormatAnswer(question, 2000000)
	assert.ErrorIs(t, err, ErrAnswerOutOfRange)

	_, err = FormatAnswer(question, "lots")
	assert.ErrorIs(t, err, ErrAnswerInvalidType)
}

func TestFormatAnswer_Date(t *testing.T) {
	question := dateQuestion("personal_dob", models.SectionPersonal, 1)

	formatted, err := FormatAnswer(question, "1990-06-15")
	require.NoError(t, err)
	assert.Equal(t, "1990-06-15", formatted.Value)
	require.NotNil(t, formatted.DateResponse)
	assert.Equal(t, time.Date(1990, 6, 15, 0, 0, 0, 0, time.UTC), *formatted.DateResponse)

	formatted, err = FormatAnswer(question, "1990-06-15T12:30:00Z")
	require.NoError(t, err)
	assert.Equal(t, 12, formatted.DateResponse.Hour())

	_, err = FormatAnswer(question, "june 15th")
	assert.ErrorIs(t, err, ErrAnswerInvalidType)
}

func TestFormatAnswer_Text(t *testing.T) {
	question := &models.Question{
		QuestionID: "work_1_job_title",
		Text:       "job title",
		Section:    models.SectionWork,
		Type:       models.QuestionText,
		Required:   true,
		IsActive:   true,
	}

	formatted, err := FormatAnswer(question, "Software Developer")
	require.NoError(t, err)
	require.NotNil(t, formatted.TextResponse)
	assert.Equal(t, "Software Developer", *formatted.TextResponse)

	_, err = FormatAnswer(question, "   ")
	assert.ErrorIs(t, err, ErrAnswerInvalidType)

	// Optional text questions accept empty answers
	question.Required = false
	formatted, err = FormatAnswer(question, "")
	require.NoError(t, err)
	assert.Equal(t, "", *formatted.TextResponse)
}

func TestFormatAnswer_FileUpload(t *testing.T) {
	question := &models.Question{
		QuestionID: "immigration_passport_scan",
		Text:       "passport",
		Section:    models.SectionImmigration,
		Type:       models.QuestionFileUpload,
		IsActive:   true,
	}

	formatted, err := FormatAnswer(question, map[string]interface{}{
		"file_id":   "doc-123",
		"file_name": "passport.pdf",
	})
	require.NoError(t, err)
	require.Len(t, formatted.FileResponses, 1)
	assert.Equal(t, "doc-123", formatted.FileResponses[0].FileID)

	formatted, err = FormatAnswer(question, []interface{}{
		map[string]interface{}{"file_id": "doc-1", "file_name": "a.pdf"},
		map[string]interface{}{"file_id": "doc-2", "file_name": "b.pdf"},
	})
	require.NoError(t, err)
	assert.Len(t, formatted.FileResponses, 2)

	_, err = FormatAnswer(question, map[string]interface{}{"file_name": "no-id.pdf"})
	assert.ErrorIs(t, err, ErrAnswerInvalidType)
}

func TestFormatAnswer_UnsupportedType(t *testing.T) {
	question := &models.Question{
		QuestionID: "weird",
		Type:       models.QuestionType("hologram"),
	}
	_, err := FormatAnswer(question, "x")
	assert.ErrorIs(t, err, ErrAnswerInvalidType)
}

func TestFormattedAnswer_Apply(t *testing.T) {
	question := choiceQuestion("personal_gender", models.SectionPersonal, 1, "male", "female")
	formatted, err := FormatAnswer(question, "male")
	require.NoError(t, err)

	response := &models.Response{SessionID: "s1", QuestionID: question.QuestionID}
	require.NoError(t, formatted.Apply(response))

	assert.Equal(t, "male", response.Value())
	require.Len(t, response.SelectedOptions, 1)
	assert.Nil(t, response.NumericResponse)
	assert.Nil(t, response.DateResponse)
}

func TestAnswerError_CarriesQuestion(t *testing.T) {
	question := choiceQuestion("personal_gender", models.SectionPersonal, 1, "male")
	_, err := FormatAnswer(question, "other")

	var answerErr *AnswerError
	require.ErrorAs(t, err, &answerErr)
	assert.Equal(t, "personal_gender", answerErr.QuestionID)
	assert.True(t, IsValidation(err))
}
