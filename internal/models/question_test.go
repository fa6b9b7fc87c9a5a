package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/datatypes"
)

func TestConditionalDisplay_Evaluate(t *testing.T) {
	tests := []struct {
		name      string
		condition ConditionOperator
		value     interface{}
		answer    interface{}
		want      bool
	}{
		{"equals match", ConditionEquals, "yes", "yes", true},
		{"equals mismatch", ConditionEquals, "yes", "no", false},
		{"equals numeric across types", ConditionEquals, 5, 5.0, true},
		{"not equals", ConditionNotEquals, "yes", "no", true},
		{"contains match", ConditionContains, "canada", []interface{}{"canada", "australia"}, true},
		{"contains mismatch", ConditionContains, "germany", []interface{}{"canada"}, false},
		{"contains non-list answer", ConditionContains, "canada", "canada", false},
		{"not contains", ConditionNotContains, "germany", []interface{}{"canada"}, true},
		{"not contains present", ConditionNotContains, "canada", []interface{}{"canada"}, false},
		{"greater than", ConditionGreaterThan, 18, 21.0, true},
		{"greater than equal boundary", ConditionGreaterThan, 18, 18.0, false},
		{"less than", ConditionLessThan, 5, 3.0, true},
		{"less than non-numeric answer", ConditionLessThan, 5, "three", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cd := &ConditionalDisplay{DependsOn: "q1", Condition: tt.condition, Value: tt.value}
			assert.Equal(t, tt.want, cd.Evaluate(tt.answer))
		})
	}
}

func TestQuestion_EligibleGiven(t *testing.T) {
	cd := datatypes.NewJSONType(ConditionalDisplay{
		DependsOn: "personal_has_partner",
		Condition: ConditionEquals,
		Value:     "yes",
	})
	conditional := &Question{QuestionID: "personal_partner_joining", ConditionalDisplay: &cd}
	unconditional := &Question{QuestionID: "personal_gender"}

	t.Run("unconditional is always eligible", func(t *testing.T) {
		assert.True(t, unconditional.EligibleGiven(nil))
	})

	t.Run("unanswered dependency blocks the question", func(t *testing.T) {
		assert.False(t, conditional.EligibleGiven(map[string]interface{}{}))
	})

	t.Run("satisfied condition", func(t *testing.T) {
		answers := map[string]interface{}{"personal_has_partner": "yes"}
		assert.True(t, conditional.EligibleGiven(answers))
	})

	t.Run("unsatisfied condition", func(t *testing.T) {
		answers := map[string]interface{}{"personal_has_partner": "no"}
		assert.False(t, conditional.EligibleGiven(answers))
	})
}

func TestQuestion_OptionByValue(t *testing.T) {
	q := &Question{
		Options: datatypes.NewJSONSlice([]QuestionOption{
			{Value: "male", Label: "Male"},
			{Value: "female", Label: "Female"},
		}),
	}

	option := q.OptionByValue("female")
	assert.NotNil(t, option)
	assert.Equal(t, "Female", option.Label)
	assert.Nil(t, q.OptionByValue("other"))
}

func TestNextSection(t *testing.T) {
	assert.Equal(t, SectionEducation, NextSection(SectionPersonal, nil))
	assert.Equal(t, SectionWork, NextSection(SectionPersonal, []QuizSection{SectionEducation}))
	assert.Equal(t, QuizSection(""), NextSection(SectionPreferences, nil))

	// All remaining sections completed
	assert.Equal(t, QuizSection(""), NextSection(SectionFinancial, []QuizSection{SectionImmigration, SectionPreferences}))
}

func TestQuizSession_UpdateProgress(t *testing.T) {
	session := &QuizSession{ResponseCount: 1}
	session.UpdateProgress(3)
	assert.Equal(t, 33, session.Progress)

	session.ResponseCount = 5
	session.UpdateProgress(3)
	assert.Equal(t, 100, session.Progress)

	session.UpdateProgress(0)
	assert.Equal(t, 0, session.Progress)
}

func TestQuizSession_CompleteSection(t *testing.T) {
	session := &QuizSession{}
	session.CompleteSection(SectionPersonal)
	session.CompleteSection(SectionPersonal)
	assert.Len(t, session.CompletedSections, 1)
}

func TestQuizSession_Complete(t *testing.T) {
	questionID := "personal_gender"
	session := &QuizSession{
		Status:            SessionInProgress,
		CurrentQuestionID: &questionID,
	}
	session.Complete()

	assert.Equal(t, SessionCompleted, session.Status)
	assert.NotNil(t, session.CompletedAt)
	assert.Equal(t, 100, session.Progress)
	assert.Nil(t, session.CurrentQuestionID)
}
