package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/frosttechequities/migratio-assessment-service/internal/events"
	"github.com/frosttechequities/migratio-assessment-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func rawResponse(questionID string, value interface{}) *models.Response {
	encoded, _ := json.Marshal(value)
	return &models.Response{
		SessionID:     "s1",
		QuestionID:    questionID,
		ResponseValue: datatypes.JSON(encoded),
	}
}

func textResponse(questionID, value string) *models.Response {
	r := rawResponse(questionID, value)
	r.TextResponse = &value
	return r
}

func numericResponse(questionID string, value float64) *models.Response {
	r := rawResponse(questionID, value)
	r.NumericResponse = &value
	return r
}

func dateResponse(questionID, value string) *models.Response {
	r := rawResponse(questionID, value)
	parsed, _ := ParseDate(value)
	r.DateResponse = &parsed
	return r
}

func TestParseResponseKey(t *testing.T) {
	tests := []struct {
		questionID string
		want       ResponseKey
		ok         bool
	}{
		{"personal_dob", ResponseKey{Kind: KeyScalar, Section: models.SectionPersonal, Field: "dob"}, true},
		{"financial_liquid_assets", ResponseKey{Kind: KeyScalar, Section: models.SectionFinancial, Field: "liquid_assets"}, true},
		{"preferences_timeframe", ResponseKey{Kind: KeyScalar, Section: models.SectionPreferences, Field: "timeframe"}, true},
		{"education_2_level", ResponseKey{Kind: KeyIndexed, Section: models.SectionEducation, Field: "level", EntryIndex: 2}, true},
		{"work_1_job_title", ResponseKey{Kind: KeyIndexed, Section: models.SectionWork, Field: "job_title", EntryIndex: 1}, true},
		{"language_english_reading", ResponseKey{Kind: KeyLanguage, Section: models.SectionLanguage, Field: "reading", Language: "english"}, true},
		{"language_french_test_type", ResponseKey{Kind: KeyLanguage, Section: models.SectionLanguage, Field: "test_type", Language: "french"}, true},
		{"immigration_status", ResponseKey{}, false},
		{"not_a_profile_key", ResponseKey{}, false},
	}

	for _, tt := range tests {
		got, ok := ParseResponseKey(tt.questionID)
		assert.Equal(t, tt.ok, ok, tt.questionID)
		if tt.ok {
			assert.Equal(t, tt.want, got, tt.questionID)
		}
	}
}

func TestBuildProfile_FoldsAllSections(t *testing.T) {
	responses := []*models.Response{
		dateResponse("personal_dob", "1990-06-15"),
		rawResponse("personal_gender", "female"),
		rawResponse("personal_marital_status", "married"),
		textResponse("personal_nationality", "india"),
		textResponse("personal_dual_nationality", "portugal"),
		textResponse("personal_residence_country", "india"),
		textResponse("personal_residence_city", "pune"),
		textResponse("personal_phone", "+91 555 0100"),

		textResponse("education_1_level", "bachelors"),
		textResponse("education_1_field", "computer_science"),
		textResponse("education_1_country", "india"),
		dateResponse("education_1_start_date", "2008-09-01"),
		dateResponse("education_1_end_date", "2012-06-01"),
		rawResponse("education_1_completed", "yes"),

		textResponse("work_1_job_title", "Software Developer"),
		textResponse("work_1_employer", "Acme"),
		textResponse("work_1_country", "india"),
		dateResponse("work_1_start_date", "2015-01-01"),
		rawResponse("work_1_is_current", "yes"),
		textResponse("work_1_skills", "Go, SQL,  Kubernetes ,"),

		numericResponse("language_english_reading", 8),
		numericResponse("language_english_overall", 7.5),
		textResponse("language_english_test_type", "ielts"),
		numericResponse("language_french_overall", 5),

		textResponse("financial_currency", "USD"),
		numericResponse("financial_liquid_assets", 80000),
		numericResponse("financial_net_worth", 200000),
		numericResponse("financial_annual_income", 65000),
		rawResponse("financial_owns_real_estate", "yes"),
		rawResponse("financial_business_investments", "no"),

		rawResponse("preferences_destination_countries", []string{"canada", "australia"}),
		rawResponse("preferences_pathway_types", []string{"skilled_worker"}),
		rawResponse("preferences_timeframe", "within_1_year"),
		rawResponse("preferences_budget_range", "10k_25k"),

		// Non-profile responses are ignored
		rawResponse("immigration_previous_applications", "no"),
	}

	profile := BuildProfile("user-1", responses)
	require.Equal(t, "user-1", profile.UserID)

	personal := profile.PersonalInfo.Data()
	require.NotNil(t, personal.DateOfBirth)
	assert.Equal(t, 1990, personal.DateOfBirth.Year())
	assert.Equal(t, "female", personal.Gender)
	assert.Equal(t, "married", personal.MaritalStatus)
	require.Len(t, personal.Nationality, 2)
	assert.True(t, personal.Nationality[0].IsPrimary)
	assert.Equal(t, "portugal", personal.Nationality[1].Country)
	require.NotNil(t, personal.CurrentResidence)
	assert.Equal(t, "pune", personal.CurrentResidence.City)

	education := []models.EducationEntry(profile.Education)
	require.Len(t, education, 1)
	assert.Equal(t, "bachelors", education[0].Level)
	assert.True(t, education[0].Completed)
	assert.InDelta(t, 3.75, education[0].DurationYears, 0.1)

	work := []models.WorkExperienceEntry(profile.WorkExperience)
	require.Len(t, work, 1)
	assert.Equal(t, "Software Developer", work[0].JobTitle)
	assert.True(t, work[0].IsCurrentJob)
	assert.Equal(t, []string{"Go", "SQL", "Kubernetes"}, work[0].Skills)

	languages := []models.LanguageProficiency(profile.LanguageProficiency)
	require.Len(t, languages, 2)
	// Sorted by language name
	assert.Equal(t, "english", languages[0].Language)
	assert.Equal(t, "ielts", languages[0].TestType)
	require.NotNil(t, languages[0].Reading)
	assert.Equal(t, 8.0, *languages[0].Reading)
	assert.Equal(t, "french", languages[1].Language)

	financial := profile.FinancialInfo.Data()
	assert.Equal(t, "USD", financial.Currency)
	assert.Equal(t, 80000.0, financial.LiquidAssets)
	assert.True(t, financial.OwnsRealEstate)
	assert.False(t, financial.HasBusinessInvestments)

	preferences := profile.ImmigrationPreferences.Data()
	assert.Equal(t, []string{"canada", "australia"}, preferences.DestinationCountries)
	assert.Equal(t, "within_1_year", preferences.Timeframe)

	completion := profile.CompletionStatus.Data()
	assert.Equal(t, 100, completion.PersonalInfo)
	assert.Equal(t, 100, completion.Education)
	assert.Equal(t, 100, completion.WorkExperience)
	assert.Equal(t, 100, completion.LanguageProficiency)
	assert.Equal(t, 100, completion.FinancialInfo)
	assert.Equal(t, 100, completion.ImmigrationPreferences)
	assert.Equal(t, 100, completion.Overall)
}

func TestBuildProfile_DualNationalityDeduplicates(t *testing.T) {
	profile := BuildProfile("user-1", []*models.Response{
		textResponse("personal_nationality", "india"),
		textResponse("personal_dual_nationality", "india"),
	})

	personal := profile.PersonalInfo.Data()
	require.Len(t, personal.Nationality, 1)
	assert.Equal(t, "india", personal.Nationality[0].Country)
}

func TestBuildProfile_PartialCompletion(t *testing.T) {
	profile := BuildProfile("user-1", []*models.Response{
		rawResponse("personal_gender", "male"),
		textResponse("personal_nationality", "brazil"),
	})

	completion := profile.CompletionStatus.Data()
	// 2 of 6 personal fields
	assert.Equal(t, 33, completion.PersonalInfo)
	assert.Equal(t, 0, completion.Education)
	assert.Equal(t, 0, completion.FinancialInfo)
	// 33 * 20 / 100, rounded
	assert.Equal(t, 7, completion.Overall)
}

func TestBuildProfile_Empty(t *testing.T) {
	profile := BuildProfile("user-1", nil)
	completion := profile.CompletionStatus.Data()
	assert.Equal(t, 0, completion.Overall)
	assert.Empty(t, []models.EducationEntry(profile.Education))
}

func TestRebuildFromSession(t *testing.T) {
	repo := newFakeRepository()
	publisher := events.NewMockEventPublisher(testLogger())
	svc := NewProfileService(repo, publisher, testLogger())

	userID := "user-1"
	session := &models.QuizSession{
		SessionID: "s1",
		UserID:    &userID,
		Status:    models.SessionCompleted,
		StartedAt: time.Now(),
	}
	require.NoError(t, repo.Session().Create(context.Background(), session))
	require.NoError(t, repo.Response().Create(context.Background(), rawResponse("personal_gender", "male")))

	profile, err := svc.RebuildFromSession(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, "male", profile.PersonalInfo.Data().Gender)
	assert.Equal(t, 1, repo.profileUpserts)

	published := publisher.GetPublishedEvents()
	require.Len(t, published, 1)
	assert.Equal(t, events.EventProfileUpdated, published[0].Type)
}

func TestRebuildFromSession_AnonymousSession(t *testing.T) {
	repo := newFakeRepository()
	svc := NewProfileService(repo, nil, testLogger())

	session := &models.QuizSession{
		SessionID:   "s1",
		IsAnonymous: true,
		Status:      models.SessionCompleted,
		StartedAt:   time.Now(),
	}
	require.NoError(t, repo.Session().Create(context.Background(), session))

	_, err := svc.RebuildFromSession(context.Background(), "s1")
	assert.ErrorIs(t, err, ErrProfileNoUser)
}

func TestRebuildFromSession_SessionNotFound(t *testing.T) {
	svc := NewProfileService(newFakeRepository(), nil, testLogger())
	_, err := svc.RebuildFromSession(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestGetProfile_NotFound(t *testing.T) {
	svc := NewProfileService(newFakeRepository(), nil, testLogger())
	_, err := svc.GetProfile(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrProfileNotFound)
}
