package models

type StrengthCategory string

const (
	StrengthExcellent StrengthCategory = "excellent"
	StrengthStrong    StrengthCategory = "strong"
	StrengthModerate  StrengthCategory = "moderate"
	StrengthLimited   StrengthCategory = "limited"
)

// ScoreResult is the computed profile-strength bundle consumed by the
// recommendation service. It is derived on demand and never persisted.
type ScoreResult struct {
	Age       int              `json:"age"`
	Education int              `json:"education"`
	Work      int              `json:"work"`
	Language  int              `json:"language"`
	Financial int              `json:"financial"`
	Overall   int              `json:"overall"`
	Category  StrengthCategory `json:"category"`
}

// Sub-score weights; they sum to 100.
const (
	WeightAge       = 15
	WeightEducation = 25
	WeightWork      = 25
	WeightLanguage  = 25
	WeightFinancial = 10
)

// CategoryFor maps an overall score to its strength bucket.
func CategoryFor(overall int) StrengthCategory {
	switch {
	case overall >= 85:
		return StrengthExcellent
	case overall >= 70:
		return StrengthStrong
	case overall >= 50:
		return StrengthModerate
	default:
		return StrengthLimited
	}
}
