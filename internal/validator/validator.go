package validator

import (
	"reflect"
	"strings"

	"github.com/frosttechequities/migratio-assessment-service/internal/models"
	"github.com/go-playground/validator/v10"
)

// Validator wraps struct-tag validation with the custom domain validators.
type Validator struct {
	structValidator *validator.Validate
}

// New creates a new centralized validator instance
func New() *Validator {
	structValidator := validator.New()
	registerCustomValidators(structValidator)

	return &Validator{
		structValidator: structValidator,
	}
}

// Validate validates struct tags
func (v *Validator) Validate(s interface{}) error {
	return v.structValidator.Struct(s)
}

// registerCustomValidators registers all custom validation functions
func registerCustomValidators(validate *validator.Validate) {
	validate.RegisterValidation("question_type", validateQuestionType)
	validate.RegisterValidation("quiz_section", validateQuizSection)
	validate.RegisterValidation("session_status", validateSessionStatus)
	validate.RegisterValidation("condition_operator", validateConditionOperator)

	// Custom tag name function for better error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

func validateQuestionType(fl validator.FieldLevel) bool {
	validTypes := []models.QuestionType{
		models.QuestionSingleChoice,
		models.QuestionMultipleChoice,
		models.QuestionSlider,
		models.QuestionDate,
		models.QuestionText,
		models.QuestionNumber,
		models.QuestionFileUpload,
	}

	value := fl.Field().String()
	for _, validType := range validTypes {
		if string(validType) == value {
			return true
		}
	}
	return false
}

func validateQuizSection(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	for _, section := range models.SectionOrder {
		if string(section) == value {
			return true
		}
	}
	return false
}

func validateSessionStatus(fl validator.FieldLevel) bool {
	validStatuses := []models.SessionStatus{
		models.SessionInProgress,
		models.SessionCompleted,
		models.SessionAbandoned,
	}

	value := fl.Field().String()
	for _, validStatus := range validStatuses {
		if string(validStatus) == value {
			return true
		}
	}
	return false
}

func validateConditionOperator(fl validator.FieldLevel) bool {
	validOperators := []models.ConditionOperator{
		models.ConditionEquals,
		models.ConditionNotEquals,
		models.ConditionContains,
		models.ConditionNotContains,
		models.ConditionGreaterThan,
		models.ConditionLessThan,
	}

	value := fl.Field().String()
	for _, validOperator := range validOperators {
		if string(validOperator) == value {
			return true
		}
	}
	return false
}
