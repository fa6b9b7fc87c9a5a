package models

import (
	"encoding/json"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type QuizSection string

const (
	SectionPersonal    QuizSection = "personal"
	SectionEducation   QuizSection = "education"
	SectionWork        QuizSection = "work"
	SectionLanguage    QuizSection = "language"
	SectionFinancial   QuizSection = "financial"
	SectionImmigration QuizSection = "immigration"
	SectionPreferences QuizSection = "preferences"
)

// SectionOrder is the single source of truth for section sequencing. Both the
// quiz engine and any reporting code must consume this list rather than
// keeping their own copy.
var SectionOrder = []QuizSection{
	SectionPersonal,
	SectionEducation,
	SectionWork,
	SectionLanguage,
	SectionFinancial,
	SectionImmigration,
	SectionPreferences,
}

// NextSection returns the next section after current, skipping sections
// already completed. Returns empty string when no section remains.
func NextSection(current QuizSection, completed []QuizSection) QuizSection {
	currentIndex := -1
	for i, s := range SectionOrder {
		if s == current {
			currentIndex = i
			break
		}
	}

	done := make(map[QuizSection]bool, len(completed))
	for _, s := range completed {
		done[s] = true
	}

	for i := currentIndex + 1; i < len(SectionOrder); i++ {
		if !done[SectionOrder[i]] {
			return SectionOrder[i]
		}
	}
	return ""
}

type QuestionType string

const (
	QuestionSingleChoice   QuestionType = "single_choice"
	QuestionMultipleChoice QuestionType = "multiple_choice"
	QuestionSlider         QuestionType = "slider"
	QuestionDate           QuestionType = "date"
	QuestionText           QuestionType = "text"
	QuestionNumber         QuestionType = "number"
	QuestionFileUpload     QuestionType = "file_upload"
)

type ConditionOperator string

const (
	ConditionEquals      ConditionOperator = "equals"
	ConditionNotEquals   ConditionOperator = "not_equals"
	ConditionContains    ConditionOperator = "contains"
	ConditionNotContains ConditionOperator = "not_contains"
	ConditionGreaterThan ConditionOperator = "greater_than"
	ConditionLessThan    ConditionOperator = "less_than"
)

type QuestionOption struct {
	Value    string  `json:"value"`
	Label    string  `json:"label"`
	HelpText *string `json:"help_text,omitempty"`
}

// NumericValidation holds min/max/step bounds for number and slider questions.
type NumericValidation struct {
	Min  *float64 `json:"min,omitempty"`
	Max  *float64 `json:"max,omitempty"`
	Step *float64 `json:"step,omitempty"`
}

// ConditionalDisplay gates a question on a previously answered one.
type ConditionalDisplay struct {
	DependsOn string            `json:"depends_on"`
	Condition ConditionOperator `json:"condition"`
	Value     interface{}       `json:"value"`
}

// Evaluate reports whether the conditional is satisfied by the answer given
// to the dependent question. The caller is responsible for checking that the
// dependent question has actually been answered.
func (cd *ConditionalDisplay) Evaluate(answer interface{}) bool {
	switch cd.Condition {
	case ConditionEquals:
		return answersEqual(answer, cd.Value)
	case ConditionNotEquals:
		return !answersEqual(answer, cd.Value)
	case ConditionContains:
		return answerContains(answer, cd.Value)
	case ConditionNotContains:
		list, ok := answer.([]interface{})
		if !ok {
			return false
		}
		for _, item := range list {
			if answersEqual(item, cd.Value) {
				return false
			}
		}
		return true
	case ConditionGreaterThan:
		a, aok := toFloat(answer)
		b, bok := toFloat(cd.Value)
		return aok && bok && a > b
	case ConditionLessThan:
		a, aok := toFloat(answer)
		b, bok := toFloat(cd.Value)
		return aok && bok && a < b
	default:
		return true
	}
}

func answersEqual(a, b interface{}) bool {
	if af, aok := toFloat(a); aok {
		if bf, bok := toFloat(b); bok {
			return af == bf
		}
	}
	as, aok := a.(string)
	bs, bok := b.(string)
	if aok && bok {
		return as == bs
	}
	return a == b
}

func answerContains(answer, value interface{}) bool {
	switch v := answer.(type) {
	case []interface{}:
		for _, item := range v {
			if answersEqual(item, value) {
				return true
			}
		}
	case []string:
		s, ok := value.(string)
		if !ok {
			return false
		}
		for _, item := range v {
			if item == s {
				return true
			}
		}
	}
	return false
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		trimmed := strings.TrimSpace(n)
		if trimmed == "" {
			return 0, false
		}
		var f float64
		if err := json.Unmarshal([]byte(trimmed), &f); err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// Question is one catalog entry of the adaptive questionnaire. Questions are
// immutable during a quiz session and soft-deleted via IsActive so existing
// responses keep a valid reference.
type Question struct {
	ID         uint         `json:"id" gorm:"primaryKey"`
	QuestionID string       `json:"question_id" gorm:"not null;uniqueIndex;size:100" validate:"required,max=100"`
	Text       string       `json:"text" gorm:"not null;type:text" validate:"required"`
	HelpText   *string      `json:"help_text" gorm:"type:text"`
	Section    QuizSection  `json:"section" gorm:"not null;size:20;index:idx_questions_section_order" validate:"required,quiz_section"`
	Type       QuestionType `json:"type" gorm:"not null;size:20" validate:"required,question_type"`
	Required   bool         `json:"required" gorm:"default:true"`
	Order      int          `json:"order" gorm:"not null;index:idx_questions_section_order" validate:"min=0"`

	Options            datatypes.JSONSlice[QuestionOption]     `json:"options" gorm:"type:jsonb"`
	Validation         *datatypes.JSONType[NumericValidation]  `json:"validation,omitempty" gorm:"type:jsonb"`
	ConditionalDisplay *datatypes.JSONType[ConditionalDisplay] `json:"conditional_display,omitempty" gorm:"type:jsonb"`

	IsActive bool `json:"is_active" gorm:"default:true;index"`

	CreatedBy *string        `json:"created_by" gorm:"size:100;index"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (Question) TableName() string {
	return "questions"
}

// Conditional returns the parsed conditional-display rule, or nil when the
// question is unconditional.
func (q *Question) Conditional() *ConditionalDisplay {
	if q.ConditionalDisplay == nil {
		return nil
	}
	cd := q.ConditionalDisplay.Data()
	if cd.DependsOn == "" {
		return nil
	}
	return &cd
}

// EligibleGiven reports whether the question may be shown given the answers
// collected so far. An unconditional question is always eligible; a
// conditional one is eligible only once its dependency has been answered and
// the configured comparison holds.
func (q *Question) EligibleGiven(answers map[string]interface{}) bool {
	cd := q.Conditional()
	if cd == nil {
		return true
	}
	dependentAnswer, answered := answers[cd.DependsOn]
	if !answered {
		return false
	}
	return cd.Evaluate(dependentAnswer)
}

// OptionByValue looks up a choice option by its stored value.
func (q *Question) OptionByValue(value string) *QuestionOption {
	for i := range q.Options {
		if q.Options[i].Value == value {
			return &q.Options[i]
		}
	}
	return nil
}
