package services

import (
	"context"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/frosttechequities/migratio-assessment-service/internal/events"
	"github.com/frosttechequities/migratio-assessment-service/internal/models"
)

// ScoringService turns a profile into immigration-readiness sub-scores and an
// overall strength category. The point tables mirror the Canadian Express
// Entry and Australian skilled-migration systems.
type ScoringService interface {
	ScoreUser(ctx context.Context, userID string) (*models.ScoreResult, error)
	ScoreProfile(profile *models.Profile) *models.ScoreResult
}

type scoringService struct {
	profiles  ProfileService
	publisher events.EventPublisher
	logger    *slog.Logger
}

func NewScoringService(profiles ProfileService, publisher events.EventPublisher, logger *slog.Logger) ScoringService {
	return &scoringService{
		profiles:  profiles,
		publisher: publisher,
		logger:    logger,
	}
}

func (s *scoringService) ScoreUser(ctx context.Context, userID string) (*models.ScoreResult, error) {
	profile, err := s.profiles.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	result := s.ScoreProfile(profile)

	s.logger.Info("Profile scored",
		"user_id", userID,
		"overall", result.Overall,
		"category", result.Category)

	if s.publisher != nil {
		event := events.NewProfileScoredEvent(userID, result)
		if err := s.publisher.PublishAssessmentEvent(ctx, event); err != nil {
			s.logger.Error("Failed to publish score event", "user_id", userID, "error", err)
		}
	}

	return result, nil
}

func (s *scoringService) ScoreProfile(profile *models.Profile) *models.ScoreResult {
	personal := profile.PersonalInfo.Data()
	education := []models.EducationEntry(profile.Education)
	work := []models.WorkExperienceEntry(profile.WorkExperience)
	languages := []models.LanguageProficiency(profile.LanguageProficiency)
	financial := profile.FinancialInfo.Data()
	preferences := profile.ImmigrationPreferences.Data()

	age := 0
	if personal.DateOfBirth != nil {
		age = AgeFromDOB(*personal.DateOfBirth, time.Now())
	}

	result := &models.ScoreResult{
		Age:       AgeScore(age),
		Education: EducationScore(education, preferences.DestinationCountries),
		Work:      WorkScore(work, preferences.DestinationCountries),
		Language:  LanguageScore(languages),
		Financial: FinancialScore(financial),
	}

	overall := float64(result.Age*models.WeightAge+
		result.Education*models.WeightEducation+
		result.Work*models.WeightWork+
		result.Language*models.WeightLanguage+
		result.Financial*models.WeightFinancial) / 100
	result.Overall = int(overall + 0.5)
	result.Category = models.CategoryFor(result.Overall)
	return result
}

// AgeFromDOB computes whole years of age at the reference time.
func AgeFromDOB(dob, at time.Time) int {
	age := at.Year() - dob.Year()
	if at.YearDay() < dob.YearDay() {
		age--
	}
	if age < 0 {
		return 0
	}
	return age
}

// AgeScore awards points for age, peaking in the 25-32 band and stepping down
// year by year to zero past 50.
func AgeScore(age int) int {
	switch {
	case age < 18:
		return 0
	case age <= 24:
		return 80
	case age <= 32:
		return 100
	case age == 33:
		return 95
	case age == 34:
		return 90
	case age == 35:
		return 85
	case age == 36:
		return 80
	case age == 37:
		return 75
	case age == 38:
		return 70
	case age == 39:
		return 65
	case age == 40:
		return 60
	case age == 41:
		return 55
	case age == 42:
		return 50
	case age == 43:
		return 45
	case age == 44:
		return 35
	case age == 45:
		return 25
	case age <= 50:
		return 15
	default:
		return 0
	}
}

// educationLevelRanks orders credential levels from high school to doctoral.
var educationLevelRanks = map[string]int{
	"high_school":           1,
	"certificate":           2,
	"diploma":               3,
	"associate":             4,
	"bachelors":             5,
	"post_graduate_diploma": 6,
	"masters":               7,
	"doctoral":              8,
	"professional":          8,
}

var educationLevelScores = map[int]int{
	1: 0,
	2: 40,
	3: 50,
	4: 60,
	5: 75,
	6: 85,
	7: 90,
	8: 100,
}

var stemFields = []string{
	"computer_science", "engineering", "mathematics", "physics", "chemistry", "biology",
}

// EducationScore scores the highest credential plus bonuses for destination
// country study, STEM fields, and multi-year local study.
func EducationScore(education []models.EducationEntry, destinations []string) int {
	if len(education) == 0 {
		return 0
	}

	highestLevel := 0
	var highest *models.EducationEntry
	for i := range education {
		level := educationLevelRanks[education[i].Level]
		if level > highestLevel {
			highestLevel = level
			highest = &education[i]
		}
	}
	if highestLevel == 0 {
		return 0
	}

	baseScore := educationLevelScores[highestLevel]

	inDestination := false
	for _, entry := range education {
		if containsString(destinations, entry.Country) {
			inDestination = true
			break
		}
	}

	hasStem := false
	for _, entry := range education {
		if containsString(stemFields, entry.Field) {
			hasStem = true
			break
		}
	}

	destinationBonus := 0
	if inDestination {
		destinationBonus = 15
	}
	stemBonus := 0
	if hasStem {
		stemBonus = 15
	}
	localStudyBonus := 0
	if inDestination && highest != nil && highest.DurationYears >= 2 {
		localStudyBonus = 10
	}

	return capScore(baseScore + destinationBonus + stemBonus + localStudyBonus)
}

var highDemandFields = []string{
	"software", "healthcare", "nursing", "medicine", "engineering",
	"data", "ai", "machine learning", "construction", "trades",
}

var managerialTitles = []string{"manager", "director", "lead"}

// WorkScore scores total years of experience plus bonuses for destination
// country experience, managerial roles, and high-demand occupations.
func WorkScore(work []models.WorkExperienceEntry, destinations []string) int {
	if len(work) == 0 {
		return 0
	}

	totalYears := 0.0
	destinationYears := 0.0
	for _, job := range work {
		years := yearsBetween(job.StartDate, job.EndDate, job.IsCurrentJob)
		totalYears += years
		if containsString(destinations, job.Country) {
			destinationYears += years
		}
	}

	baseScore := 0
	switch {
	case totalYears >= 8:
		baseScore = 100
	case totalYears >= 6:
		baseScore = 90
	case totalYears >= 4:
		baseScore = 80
	case totalYears >= 3:
		baseScore = 70
	case totalYears >= 2:
		baseScore = 60
	case totalYears >= 1:
		baseScore = 40
	}

	destinationBonus := 0
	switch {
	case destinationYears >= 5:
		destinationBonus = 25
	case destinationYears >= 3:
		destinationBonus = 20
	case destinationYears >= 1:
		destinationBonus = 15
	}

	managerialBonus := 0
	for _, job := range work {
		title := strings.ToLower(job.JobTitle)
		for _, keyword := range managerialTitles {
			if strings.Contains(title, keyword) {
				managerialBonus = 10
				break
			}
		}
		if managerialBonus > 0 {
			break
		}
	}

	highDemandBonus := 0
	for _, job := range work {
		title := strings.ToLower(job.JobTitle)
		industry := strings.ToLower(job.Industry)
		for _, field := range highDemandFields {
			if strings.Contains(title, field) || strings.Contains(industry, field) {
				highDemandBonus = 15
				break
			}
		}
		if highDemandBonus > 0 {
			break
		}
	}

	return capScore(baseScore + destinationBonus + managerialBonus + highDemandBonus)
}

// LanguageScore scores English CLB with half-weighted French points and a
// bilingual bonus when both languages reach CLB 5.
func LanguageScore(languages []models.LanguageProficiency) int {
	englishCLB := 0
	frenchCLB := 0
	for i := range languages {
		clb := ConvertToCLB(&languages[i])
		switch strings.ToLower(languages[i].Language) {
		case "english":
			if clb > englishCLB {
				englishCLB = clb
			}
		case "french":
			if clb > frenchCLB {
				frenchCLB = clb
			}
		}
	}

	englishScore := 0
	switch {
	case englishCLB >= 10:
		englishScore = 100
	case englishCLB == 9:
		englishScore = 90
	case englishCLB == 8:
		englishScore = 80
	case englishCLB == 7:
		englishScore = 70
	case englishCLB == 6:
		englishScore = 60
	case englishCLB == 5:
		englishScore = 50
	case englishCLB == 4:
		englishScore = 30
	}

	frenchScore := 0
	switch {
	case frenchCLB >= 7:
		frenchScore = 30
	case frenchCLB >= 5:
		frenchScore = 20
	case frenchCLB >= 4:
		frenchScore = 10
	}

	bilingualBonus := 0
	if englishCLB >= 5 && frenchCLB >= 5 {
		bilingualBonus = 20
	}

	total := float64(englishScore) + float64(frenchScore)*0.5 + float64(bilingualBonus)
	return capScore(int(math.Round(total)))
}

// ConvertToCLB maps a test result onto the Canadian Language Benchmark scale.
// Per-skill scores take precedence over the overall score; for IELTS the
// weakest skill determines the level.
func ConvertToCLB(p *models.LanguageProficiency) int {
	if p == nil {
		return 0
	}
	if p.CLBLevel != nil {
		return *p.CLBLevel
	}

	testType := strings.ToLower(p.TestType)
	hasAllSkills := p.Reading != nil && p.Writing != nil && p.Speaking != nil && p.Listening != nil

	if hasAllSkills {
		switch testType {
		case "ielts":
			min := minOf(*p.Reading, *p.Writing, *p.Speaking, *p.Listening)
			switch {
			case min >= 8.0:
				return 10
			case min >= 7.5:
				return 9
			case min >= 7.0:
				return 8
			case min >= 6.5:
				return 7
			case min >= 6.0:
				return 6
			case min >= 5.5:
				return 5
			case min >= 5.0:
				return 4
			case min >= 4.0:
				return 3
			default:
				return 0
			}
		case "celpip":
			// CELPIP band scores align directly with CLB levels.
			return int(minOf(*p.Reading, *p.Writing, *p.Speaking, *p.Listening))
		case "tef", "tcf":
			avg := (*p.Reading + *p.Writing + *p.Speaking + *p.Listening) / 4
			return frenchTestCLB(avg)
		}
	}

	if p.OverallScore != nil {
		overall := *p.OverallScore
		switch testType {
		case "ielts":
			switch {
			case overall >= 8.0:
				return 10
			case overall >= 7.5:
				return 9
			case overall >= 7.0:
				return 8
			case overall >= 6.5:
				return 7
			case overall >= 6.0:
				return 6
			case overall >= 5.5:
				return 5
			case overall >= 5.0:
				return 4
			default:
				return 0
			}
		case "celpip":
			if overall > 10 {
				return 10
			}
			return int(overall)
		case "tef", "tcf":
			return frenchTestCLB(overall)
		default:
			// Self-assessment and other tests report on a 0-10 scale.
			clb := int(math.Round(overall))
			if clb > 10 {
				return 10
			}
			return clb
		}
	}

	return 0
}

func frenchTestCLB(score float64) int {
	switch {
	case score >= 450:
		return 10
	case score >= 400:
		return 9
	case score >= 350:
		return 8
	case score >= 300:
		return 7
	case score >= 250:
		return 6
	case score >= 200:
		return 5
	case score >= 150:
		return 4
	default:
		return 0
	}
}

// FinancialScore weighs liquid assets and income at 40% each with flat
// bonuses for real estate and business investments.
func FinancialScore(financial models.FinancialInfo) int {
	liquidScore := 0
	switch {
	case financial.LiquidAssets >= 1500000:
		liquidScore = 100
	case financial.LiquidAssets >= 500000:
		liquidScore = 90
	case financial.LiquidAssets >= 300000:
		liquidScore = 80
	case financial.LiquidAssets >= 100000:
		liquidScore = 70
	case financial.LiquidAssets >= 50000:
		liquidScore = 60
	case financial.LiquidAssets >= 25000:
		liquidScore = 50
	case financial.LiquidAssets >= 15000:
		liquidScore = 40
	case financial.LiquidAssets >= 10000:
		liquidScore = 30
	case financial.LiquidAssets >= 5000:
		liquidScore = 20
	}

	incomeScore := 0
	switch {
	case financial.AnnualIncome >= 150000:
		incomeScore = 100
	case financial.AnnualIncome >= 100000:
		incomeScore = 90
	case financial.AnnualIncome >= 80000:
		incomeScore = 80
	case financial.AnnualIncome >= 60000:
		incomeScore = 70
	case financial.AnnualIncome >= 45000:
		incomeScore = 60
	case financial.AnnualIncome >= 38700:
		incomeScore = 50
	case financial.AnnualIncome >= 30000:
		incomeScore = 40
	case financial.AnnualIncome >= 20000:
		incomeScore = 20
	}

	realEstateBonus := 0
	if financial.OwnsRealEstate {
		realEstateBonus = 10
	}
	businessBonus := 0
	if financial.HasBusinessInvestments {
		businessBonus = 15
	}

	total := float64(liquidScore)*0.4 + float64(incomeScore)*0.4 + float64(realEstateBonus) + float64(businessBonus)
	return capScore(int(math.Round(total)))
}

func capScore(score int) int {
	if score > 100 {
		return 100
	}
	if score < 0 {
		return 0
	}
	return score
}

func containsString(list []string, value string) bool {
	if value == "" {
		return false
	}
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}

func minOf(values ...float64) float64 {
	min := values[0]
	for _, v := range values[1:] {
		if v < min {
			min = v
		}
	}
	return min
}
