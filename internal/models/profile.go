package models

import (
	"time"

	"gorm.io/datatypes"
)

type Nationality struct {
	Country   string `json:"country"`
	IsPrimary bool   `json:"is_primary"`
}

type Residence struct {
	Country string     `json:"country,omitempty"`
	Region  string     `json:"region,omitempty"`
	City    string     `json:"city,omitempty"`
	Since   *time.Time `json:"since,omitempty"`
}

type PersonalInfo struct {
	DateOfBirth      *time.Time    `json:"date_of_birth,omitempty"`
	Gender           string        `json:"gender,omitempty"`
	MaritalStatus    string        `json:"marital_status,omitempty"`
	Nationality      []Nationality `json:"nationality,omitempty"`
	CurrentResidence *Residence    `json:"current_residence,omitempty"`
	Phone            string        `json:"phone,omitempty"`
}

type EducationEntry struct {
	Level       string     `json:"level,omitempty"`
	Field       string     `json:"field,omitempty"`
	Institution string     `json:"institution,omitempty"`
	Country     string     `json:"country,omitempty"`
	StartDate   *time.Time `json:"start_date,omitempty"`
	EndDate     *time.Time `json:"end_date,omitempty"`
	Completed   bool       `json:"completed"`
	// DurationYears is derived from the start/end dates at projection time
	// and feeds the local-study scoring bonus.
	DurationYears float64 `json:"duration_years,omitempty"`
}

type WorkExperienceEntry struct {
	JobTitle     string     `json:"job_title,omitempty"`
	Employer     string     `json:"employer,omitempty"`
	Country      string     `json:"country,omitempty"`
	Industry     string     `json:"industry,omitempty"`
	StartDate    *time.Time `json:"start_date,omitempty"`
	EndDate      *time.Time `json:"end_date,omitempty"`
	IsCurrentJob bool       `json:"is_current_job"`
	Description  string     `json:"description,omitempty"`
	Skills       []string   `json:"skills,omitempty"`
}

type LanguageProficiency struct {
	Language     string     `json:"language"`
	Reading      *float64   `json:"reading,omitempty"`
	Writing      *float64   `json:"writing,omitempty"`
	Speaking     *float64   `json:"speaking,omitempty"`
	Listening    *float64   `json:"listening,omitempty"`
	OverallScore *float64   `json:"overall_score,omitempty"`
	CLBLevel     *int       `json:"clb_level,omitempty"`
	TestType     string     `json:"test_type,omitempty"`
	TestDate     *time.Time `json:"test_date,omitempty"`
}

type FinancialInfo struct {
	Currency               string  `json:"currency,omitempty"`
	LiquidAssets           float64 `json:"liquid_assets,omitempty"`
	NetWorth               float64 `json:"net_worth,omitempty"`
	AnnualIncome           float64 `json:"annual_income,omitempty"`
	OwnsRealEstate         bool    `json:"owns_real_estate,omitempty"`
	HasBusinessInvestments bool    `json:"has_business_investments,omitempty"`
}

type ImmigrationPreferences struct {
	DestinationCountries []string `json:"destination_countries,omitempty"`
	PathwayTypes         []string `json:"pathway_types,omitempty"`
	Timeframe            string   `json:"timeframe,omitempty"`
	BudgetRange          string   `json:"budget_range,omitempty"`
	PriorityFactors      []string `json:"priority_factors,omitempty"`
}

// CompletionStatus holds per-section coverage percentages and their weighted
// overall. Weights: personal 20, education 15, work 15, language 20,
// financial 10, preferences 20.
type CompletionStatus struct {
	PersonalInfo           int `json:"personal_info"`
	Education              int `json:"education"`
	WorkExperience         int `json:"work_experience"`
	LanguageProficiency    int `json:"language_proficiency"`
	FinancialInfo          int `json:"financial_info"`
	ImmigrationPreferences int `json:"immigration_preferences"`
	Overall                int `json:"overall"`
}

// Profile is the consolidated applicant profile, one row per user. It is
// rebuilt wholesale from a session's responses at quiz completion; the
// projector produces a fresh value and the repository upserts it by user id.
type Profile struct {
	ID     uint   `json:"id" gorm:"primaryKey"`
	UserID string `json:"user_id" gorm:"not null;uniqueIndex;size:100"`

	PersonalInfo           datatypes.JSONType[PersonalInfo]           `json:"personal_info" gorm:"type:jsonb"`
	Education              datatypes.JSONSlice[EducationEntry]        `json:"education" gorm:"type:jsonb"`
	WorkExperience         datatypes.JSONSlice[WorkExperienceEntry]   `json:"work_experience" gorm:"type:jsonb"`
	LanguageProficiency    datatypes.JSONSlice[LanguageProficiency]   `json:"language_proficiency" gorm:"type:jsonb"`
	FinancialInfo          datatypes.JSONType[FinancialInfo]          `json:"financial_info" gorm:"type:jsonb"`
	ImmigrationPreferences datatypes.JSONType[ImmigrationPreferences] `json:"immigration_preferences" gorm:"type:jsonb"`
	CompletionStatus       datatypes.JSONType[CompletionStatus]       `json:"completion_status" gorm:"type:jsonb"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Profile) TableName() string {
	return "profiles"
}
