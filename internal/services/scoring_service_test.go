package services

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/frosttechequities/migratio-assessment-service/internal/events"
	"github.com/frosttechequities/migratio-assessment-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func floatPtr(v float64) *float64 { return &v }

func TestAgeScore(t *testing.T) {
	tests := []struct {
		age  int
		want int
	}{
		{17, 0},
		{18, 80},
		{24, 80},
		{25, 100},
		{28, 100},
		{32, 100},
		{33, 95},
		{40, 60},
		{44, 35},
		{45, 25},
		{46, 15},
		{50, 15},
		{51, 0},
		{60, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, AgeScore(tt.age), "age %d", tt.age)
	}
}

func TestAgeFromDOB(t *testing.T) {
	at := time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, 28, AgeFromDOB(time.Date(1998, 1, 1, 0, 0, 0, 0, time.UTC), at))
	// Birthday later in the year has not happened yet
	assert.Equal(t, 27, AgeFromDOB(time.Date(1998, 12, 1, 0, 0, 0, 0, time.UTC), at))
	assert.Equal(t, 0, AgeFromDOB(time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC), at))
}

func TestEducationScore(t *testing.T) {
	t.Run("base levels", func(t *testing.T) {
		for level, want := range map[string]int{
			"high_school": 0,
			"certificate": 40,
			"diploma":     50,
			"associate":   60,
			"bachelors":   75,
			"masters":     90,
			"doctoral":    100,
		} {
			got := EducationScore([]models.EducationEntry{{Level: level, Field: "history"}}, nil)
			assert.Equal(t, want, got, "level %s", level)
		}
	})

	t.Run("highest credential wins", func(t *testing.T) {
		entries := []models.EducationEntry{
			{Level: "bachelors", Field: "history"},
			{Level: "masters", Field: "history"},
		}
		assert.Equal(t, 90, EducationScore(entries, nil))
	})

	t.Run("stem and destination bonuses cap at 100", func(t *testing.T) {
		entries := []models.EducationEntry{
			{Level: "bachelors", Field: "computer_science", Country: "canada", DurationYears: 3},
		}
		// 75 base + 15 destination + 15 stem + 10 local study, capped
		assert.Equal(t, 100, EducationScore(entries, []string{"canada"}))
		// No destination match: 75 base + 15 stem
		assert.Equal(t, 90, EducationScore(entries, []string{"australia"}))
	})

	t.Run("local study bonus needs two years", func(t *testing.T) {
		entries := []models.EducationEntry{
			{Level: "diploma", Field: "history", Country: "canada", DurationYears: 1},
		}
		// 50 base + 15 destination, no local-study bonus
		assert.Equal(t, 65, EducationScore(entries, []string{"canada"}))
	})

	t.Run("empty education scores zero", func(t *testing.T) {
		assert.Equal(t, 0, EducationScore(nil, []string{"canada"}))
	})
}

func TestWorkScore(t *testing.T) {
	now := time.Now()
	start := func(yearsAgo float64) *time.Time {
		t := now.Add(-time.Duration(yearsAgo * 365 * 24 * float64(time.Hour)))
		return &t
	}

	t.Run("years of experience tiers", func(t *testing.T) {
		tests := []struct {
			years float64
			want  int
		}{
			{9, 100},
			{6.5, 90},
			{4.5, 80},
			{3.5, 70},
			{2.5, 60},
			{1.5, 40},
			{0.5, 0},
		}
		for _, tt := range tests {
			entries := []models.WorkExperienceEntry{
				{JobTitle: "clerk", StartDate: start(tt.years), IsCurrentJob: true},
			}
			assert.Equal(t, tt.want, WorkScore(entries, nil), "%v years", tt.years)
		}
	})

	t.Run("managerial and high demand bonuses", func(t *testing.T) {
		entries := []models.WorkExperienceEntry{
			{JobTitle: "Software Engineering Manager", StartDate: start(2.5), IsCurrentJob: true},
		}
		// 60 base + 10 managerial + 15 high demand (software)
		assert.Equal(t, 85, WorkScore(entries, nil))
	})

	t.Run("destination country experience", func(t *testing.T) {
		entries := []models.WorkExperienceEntry{
			{JobTitle: "clerk", Country: "canada", StartDate: start(3.5), IsCurrentJob: true},
		}
		// 70 base + 20 for 3+ destination years
		assert.Equal(t, 90, WorkScore(entries, []string{"canada"}))
	})

	t.Run("no work scores zero", func(t *testing.T) {
		assert.Equal(t, 0, WorkScore(nil, []string{"canada"}))
	})
}

func TestConvertToCLB(t *testing.T) {
	t.Run("explicit clb level wins", func(t *testing.T) {
		level := 9
		assert.Equal(t, 9, ConvertToCLB(&models.LanguageProficiency{CLBLevel: &level}))
	})

	t.Run("ielts uses weakest skill", func(t *testing.T) {
		p := &models.LanguageProficiency{
			TestType:  "ielts",
			Reading:   floatPtr(7.0),
			Writing:   floatPtr(7.0),
			Speaking:  floatPtr(7.0),
			Listening: floatPtr(6.0),
		}
		assert.Equal(t, 6, ConvertToCLB(p))
	})

	t.Run("celpip maps directly", func(t *testing.T) {
		p := &models.LanguageProficiency{
			TestType:  "celpip",
			Reading:   floatPtr(9),
			Writing:   floatPtr(8),
			Speaking:  floatPtr(10),
			Listening: floatPtr(9),
		}
		assert.Equal(t, 8, ConvertToCLB(p))
	})

	t.Run("tef averages skills", func(t *testing.T) {
		p := &models.LanguageProficiency{
			TestType:  "tef",
			Reading:   floatPtr(400),
			Writing:   floatPtr(420),
			Speaking:  floatPtr(380),
			Listening: floatPtr(400),
		}
		assert.Equal(t, 9, ConvertToCLB(p))
	})

	t.Run("overall score fallback", func(t *testing.T) {
		p := &models.LanguageProficiency{TestType: "ielts", OverallScore: floatPtr(6.5)}
		assert.Equal(t, 7, ConvertToCLB(p))

		selfAssessed := &models.LanguageProficiency{OverallScore: floatPtr(8.2)}
		assert.Equal(t, 8, ConvertToCLB(selfAssessed))
	})

	t.Run("nothing known scores zero", func(t *testing.T) {
		assert.Equal(t, 0, ConvertToCLB(&models.LanguageProficiency{Language: "english"}))
		assert.Equal(t, 0, ConvertToCLB(nil))
	})
}

func TestLanguageScore(t *testing.T) {
	t.Run("english only", func(t *testing.T) {
		clb := 9
		languages := []models.LanguageProficiency{
			{Language: "english", CLBLevel: &clb},
		}
		assert.Equal(t, 90, LanguageScore(languages))
	})

	t.Run("bilingual bonus", func(t *testing.T) {
		englishCLB, frenchCLB := 8, 7
		languages := []models.LanguageProficiency{
			{Language: "english", CLBLevel: &englishCLB},
			{Language: "french", CLBLevel: &frenchCLB},
		}
		// 80 english + 30*0.5 french + 20 bilingual
		assert.Equal(t, 100, LanguageScore(languages))
	})

	t.Run("no languages", func(t *testing.T) {
		assert.Equal(t, 0, LanguageScore(nil))
	})
}

func TestFinancialScore(t *testing.T) {
	t.Run("weighted assets and income", func(t *testing.T) {
		financial := models.FinancialInfo{LiquidAssets: 100000, AnnualIncome: 60000}
		// 70*0.4 + 70*0.4 = 56
		assert.Equal(t, 56, FinancialScore(financial))
	})

	t.Run("bonuses", func(t *testing.T) {
		financial := models.FinancialInfo{
			LiquidAssets:           1500000,
			AnnualIncome:           150000,
			OwnsRealEstate:         true,
			HasBusinessInvestments: true,
		}
		// 40 + 40 + 10 + 15 capped at 100
		assert.Equal(t, 100, FinancialScore(financial))
	})

	t.Run("empty scores zero", func(t *testing.T) {
		assert.Equal(t, 0, FinancialScore(models.FinancialInfo{}))
	})
}

func TestCategoryFor(t *testing.T) {
	assert.Equal(t, models.StrengthExcellent, models.CategoryFor(85))
	assert.Equal(t, models.StrengthStrong, models.CategoryFor(70))
	assert.Equal(t, models.StrengthStrong, models.CategoryFor(84))
	assert.Equal(t, models.StrengthModerate, models.CategoryFor(50))
	assert.Equal(t, models.StrengthLimited, models.CategoryFor(49))
	assert.Equal(t, models.StrengthLimited, models.CategoryFor(0))
}

func TestScoreProfile(t *testing.T) {
	dob := time.Now().AddDate(-28, 0, 0)
	clb := 9
	profile := &models.Profile{
		UserID: "user-1",
		PersonalInfo: datatypes.NewJSONType(models.PersonalInfo{
			DateOfBirth: &dob,
		}),
		Education: datatypes.NewJSONSlice([]models.EducationEntry{
			{Level: "masters", Field: "computer_science"},
		}),
		WorkExperience: datatypes.NewJSONSlice([]models.WorkExperienceEntry{
			{
				JobTitle:     "software developer",
				StartDate:    timePtr(time.Now().AddDate(-5, 0, 0)),
				IsCurrentJob: true,
			},
		}),
		LanguageProficiency: datatypes.NewJSONSlice([]models.LanguageProficiency{
			{Language: "english", CLBLevel: &clb},
		}),
		FinancialInfo: datatypes.NewJSONType(models.FinancialInfo{
			LiquidAssets: 50000,
			AnnualIncome: 80000,
		}),
	}

	svc := NewScoringService(nil, nil, testLogger()).(*scoringService)
	result := svc.ScoreProfile(profile)

	assert.Equal(t, 100, result.Age)
	// 90 masters + 15 stem
	assert.Equal(t, 100, result.Education)
	// 80 base + 15 high demand (software)
	assert.Equal(t, 95, result.Work)
	assert.Equal(t, 90, result.Language)
	// 60*0.4 + 80*0.4 = 56
	assert.Equal(t, 56, result.Financial)

	// 100*15 + 100*25 + 95*25 + 90*25 + 56*10 = 8835 -> 88
	assert.Equal(t, 88, result.Overall)
	assert.Equal(t, models.StrengthExcellent, result.Category)
}

func TestScoreUser_PublishesEvent(t *testing.T) {
	repo := newFakeRepository()
	publisher := events.NewMockEventPublisher(testLogger())
	profiles := NewProfileService(repo, nil, testLogger())

	dob := time.Now().AddDate(-30, 0, 0)
	profile := &models.Profile{
		UserID:       "user-1",
		PersonalInfo: datatypes.NewJSONType(models.PersonalInfo{DateOfBirth: &dob}),
	}
	require.NoError(t, repo.Profile().Upsert(context.Background(), profile))

	svc := NewScoringService(profiles, publisher, testLogger())
	result, err := svc.ScoreUser(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, 100, result.Age)

	published := publisher.GetPublishedEvents()
	require.Len(t, published, 1)
	assert.Equal(t, events.EventProfileScored, published[0].Type)
}

func TestScoreUser_ProfileNotFound(t *testing.T) {
	repo := newFakeRepository()
	profiles := NewProfileService(repo, nil, testLogger())
	svc := NewScoringService(profiles, nil, testLogger())

	_, err := svc.ScoreUser(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrProfileNotFound)
}

func timePtr(t time.Time) *time.Time { return &t }
