package services

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/frosttechequities/migratio-assessment-service/internal/events"
	"github.com/frosttechequities/migratio-assessment-service/internal/models"
	"github.com/frosttechequities/migratio-assessment-service/internal/repositories"
	"gorm.io/datatypes"
)

// ProfileService projects quiz responses into the consolidated applicant
// profile. Rebuilds are immutable: a fresh profile value is computed from the
// session's full response set and upserted, never patched in place.
type ProfileService interface {
	RebuildFromSession(ctx context.Context, sessionID string) (*models.Profile, error)
	GetProfile(ctx context.Context, userID string) (*models.Profile, error)
}

type profileService struct {
	repo      repositories.Repository
	publisher events.EventPublisher
	logger    *slog.Logger
}

func NewProfileService(repo repositories.Repository, publisher events.EventPublisher, logger *slog.Logger) ProfileService {
	return &profileService{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
	}
}

func (s *profileService) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	profile, err := s.repo.Profile().GetByUserID(ctx, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return profile, nil
}

func (s *profileService) RebuildFromSession(ctx context.Context, sessionID string) (*models.Profile, error) {
	session, err := s.repo.Session().GetBySessionID(ctx, sessionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if session.UserID == nil {
		return nil, ErrProfileNoUser
	}

	responses, err := s.repo.Response().ListBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session responses: %w", err)
	}

	profile := BuildProfile(*session.UserID, responses)

	if err := s.repo.Profile().Upsert(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to persist profile: %w", err)
	}

	completion := profile.CompletionStatus.Data()
	s.logger.Info("Profile rebuilt from session",
		"user_id", *session.UserID,
		"session_id", sessionID,
		"completion", completion.Overall)

	if s.publisher != nil {
		event := events.NewProfileUpdatedEvent(*session.UserID, sessionID, completion.Overall)
		if err := s.publisher.PublishAssessmentEvent(ctx, event); err != nil {
			s.logger.Error("Failed to publish profile event", "error", err)
		}
	}

	return profile, nil
}

// ===== RESPONSE KEY PARSING =====

// ResponseKeyKind distinguishes the three question-id shapes the profile
// projector understands.
type ResponseKeyKind int

const (
	// KeyScalar is a flat section field, e.g. personal_dob.
	KeyScalar ResponseKeyKind = iota
	// KeyIndexed is an entry-list field, e.g. education_1_level.
	KeyIndexed
	// KeyLanguage carries a language token, e.g. language_english_reading.
	KeyLanguage
)

// ResponseKey is the parsed, typed form of a profile-bound question id.
// Parsing happens once per response at fold time; all downstream dispatch is
// on the typed key rather than repeated string matching.
type ResponseKey struct {
	Kind       ResponseKeyKind
	Section    models.QuizSection
	Field      string
	EntryIndex int
	Language   string
}

var (
	indexedKeyPattern  = regexp.MustCompile(`^(education|work)_(\d+)_(.+)$`)
	languageKeyPattern = regexp.MustCompile(`^language_([a-z]+)_(.+)$`)
)

// ParseResponseKey parses a question id into its typed key. The second return
// is false when the id does not map to any profile field.
func ParseResponseKey(questionID string) (ResponseKey, bool) {
	if m := indexedKeyPattern.FindStringSubmatch(questionID); m != nil {
		index, err := strconv.Atoi(m[2])
		if err != nil {
			return ResponseKey{}, false
		}
		section := models.SectionEducation
		if m[1] == "work" {
			section = models.SectionWork
		}
		return ResponseKey{
			Kind:       KeyIndexed,
			Section:    section,
			Field:      m[3],
			EntryIndex: index,
		}, true
	}

	if m := languageKeyPattern.FindStringSubmatch(questionID); m != nil {
		return ResponseKey{
			Kind:     KeyLanguage,
			Section:  models.SectionLanguage,
			Field:    m[2],
			Language: m[1],
		}, true
	}

	for _, prefix := range []struct {
		prefix  string
		section models.QuizSection
	}{
		{"personal_", models.SectionPersonal},
		{"financial_", models.SectionFinancial},
		{"preferences_", models.SectionPreferences},
	} {
		if strings.HasPrefix(questionID, prefix.prefix) {
			return ResponseKey{
				Kind:    KeyScalar,
				Section: prefix.section,
				Field:   strings.TrimPrefix(questionID, prefix.prefix),
			}, true
		}
	}

	return ResponseKey{}, false
}

// ===== PROFILE PROJECTION =====

// BuildProfile folds a session's responses into a fresh profile value.
func BuildProfile(userID string, responses []*models.Response) *models.Profile {
	personal := models.PersonalInfo{}
	financial := models.FinancialInfo{}
	preferences := models.ImmigrationPreferences{}
	educationEntries := map[int]map[string]*models.Response{}
	workEntries := map[int]map[string]*models.Response{}
	languageEntries := map[string]map[string]*models.Response{}

	for _, response := range responses {
		key, ok := ParseResponseKey(response.QuestionID)
		if !ok {
			continue
		}
		switch key.Kind {
		case KeyScalar:
			switch key.Section {
			case models.SectionPersonal:
				foldPersonalField(&personal, key.Field, response)
			case models.SectionFinancial:
				foldFinancialField(&financial, key.Field, response)
			case models.SectionPreferences:
				foldPreferencesField(&preferences, key.Field, response)
			}
		case KeyIndexed:
			entries := educationEntries
			if key.Section == models.SectionWork {
				entries = workEntries
			}
			if entries[key.EntryIndex] == nil {
				entries[key.EntryIndex] = map[string]*models.Response{}
			}
			entries[key.EntryIndex][key.Field] = response
		case KeyLanguage:
			if languageEntries[key.Language] == nil {
				languageEntries[key.Language] = map[string]*models.Response{}
			}
			languageEntries[key.Language][key.Field] = response
		}
	}

	education := buildEducationEntries(educationEntries)
	work := buildWorkEntries(workEntries)
	languages := buildLanguageEntries(languageEntries)

	profile := &models.Profile{
		UserID:                 userID,
		PersonalInfo:           datatypes.NewJSONType(personal),
		Education:              datatypes.NewJSONSlice(education),
		WorkExperience:         datatypes.NewJSONSlice(work),
		LanguageProficiency:    datatypes.NewJSONSlice(languages),
		FinancialInfo:          datatypes.NewJSONType(financial),
		ImmigrationPreferences: datatypes.NewJSONType(preferences),
	}
	profile.CompletionStatus = datatypes.NewJSONType(calculateCompletion(personal, education, work, languages, financial, preferences))
	return profile
}

func foldPersonalField(personal *models.PersonalInfo, field string, response *models.Response) {
	switch field {
	case "dob":
		personal.DateOfBirth = response.DateResponse
	case "gender":
		personal.Gender = responseString(response)
	case "marital_status":
		personal.MaritalStatus = responseString(response)
	case "nationality":
		if country := responseString(response); country != "" {
			personal.Nationality = []models.Nationality{{Country: country, IsPrimary: true}}
		}
	case "dual_nationality":
		country := responseString(response)
		if country == "" {
			return
		}
		if len(personal.Nationality) > 0 && personal.Nationality[0].Country == country {
			return
		}
		personal.Nationality = append(personal.Nationality, models.Nationality{Country: country})
	case "residence_country":
		ensureResidence(personal).Country = responseString(response)
	case "residence_region":
		ensureResidence(personal).Region = responseString(response)
	case "residence_city":
		ensureResidence(personal).City = responseString(response)
	case "residence_since":
		ensureResidence(personal).Since = response.DateResponse
	case "phone":
		personal.Phone = responseString(response)
	}
}

func ensureResidence(personal *models.PersonalInfo) *models.Residence {
	if personal.CurrentResidence == nil {
		personal.CurrentResidence = &models.Residence{}
	}
	return personal.CurrentResidence
}

func foldFinancialField(financial *models.FinancialInfo, field string, response *models.Response) {
	switch field {
	case "currency":
		financial.Currency = responseString(response)
	case "liquid_assets":
		financial.LiquidAssets = responseNumber(response)
	case "net_worth":
		financial.NetWorth = responseNumber(response)
	case "annual_income":
		financial.AnnualIncome = responseNumber(response)
	case "owns_real_estate":
		financial.OwnsRealEstate = responseString(response) == "yes"
	case "business_investments":
		financial.HasBusinessInvestments = responseString(response) == "yes"
	}
}

func foldPreferencesField(preferences *models.ImmigrationPreferences, field string, response *models.Response) {
	switch field {
	case "destination_countries":
		preferences.DestinationCountries = responseStringList(response)
	case "pathway_types":
		preferences.PathwayTypes = responseStringList(response)
	case "timeframe":
		preferences.Timeframe = responseString(response)
	case "budget_range":
		preferences.BudgetRange = responseString(response)
	case "priority_factors":
		preferences.PriorityFactors = responseStringList(response)
	}
}

func buildEducationEntries(grouped map[int]map[string]*models.Response) []models.EducationEntry {
	entries := make([]models.EducationEntry, 0, len(grouped))
	for _, index := range sortedIndexes(grouped) {
		fields := grouped[index]
		entry := models.EducationEntry{
			Level:       fieldString(fields, "level"),
			Field:       fieldString(fields, "field"),
			Institution: fieldString(fields, "institution"),
			Country:     fieldString(fields, "country"),
			StartDate:   fieldDate(fields, "start_date"),
			EndDate:     fieldDate(fields, "end_date"),
			Completed:   fieldString(fields, "completed") == "yes",
		}
		entry.DurationYears = yearsBetween(entry.StartDate, entry.EndDate, false)
		entries = append(entries, entry)
	}
	return entries
}

func buildWorkEntries(grouped map[int]map[string]*models.Response) []models.WorkExperienceEntry {
	entries := make([]models.WorkExperienceEntry, 0, len(grouped))
	for _, index := range sortedIndexes(grouped) {
		fields := grouped[index]
		entry := models.WorkExperienceEntry{
			JobTitle:     fieldString(fields, "job_title"),
			Employer:     fieldString(fields, "employer"),
			Country:      fieldString(fields, "country"),
			Industry:     fieldString(fields, "industry"),
			StartDate:    fieldDate(fields, "start_date"),
			EndDate:      fieldDate(fields, "end_date"),
			IsCurrentJob: fieldString(fields, "is_current") == "yes",
			Description:  fieldString(fields, "description"),
		}
		if skills := fieldString(fields, "skills"); skills != "" {
			for _, skill := range strings.Split(skills, ",") {
				if trimmed := strings.TrimSpace(skill); trimmed != "" {
					entry.Skills = append(entry.Skills, trimmed)
				}
			}
		}
		entries = append(entries, entry)
	}
	return entries
}

func buildLanguageEntries(grouped map[string]map[string]*models.Response) []models.LanguageProficiency {
	languages := make([]string, 0, len(grouped))
	for language := range grouped {
		languages = append(languages, language)
	}
	sort.Strings(languages)

	entries := make([]models.LanguageProficiency, 0, len(grouped))
	for _, language := range languages {
		fields := grouped[language]
		entry := models.LanguageProficiency{
			Language:     language,
			Reading:      fieldNumber(fields, "reading"),
			Writing:      fieldNumber(fields, "writing"),
			Speaking:     fieldNumber(fields, "speaking"),
			Listening:    fieldNumber(fields, "listening"),
			OverallScore: fieldNumber(fields, "overall"),
			TestType:     fieldString(fields, "test_type"),
			TestDate:     fieldDate(fields, "test_date"),
		}
		entries = append(entries, entry)
	}
	return entries
}

func sortedIndexes(grouped map[int]map[string]*models.Response) []int {
	indexes := make([]int, 0, len(grouped))
	for index := range grouped {
		indexes = append(indexes, index)
	}
	sort.Ints(indexes)
	return indexes
}

// ===== COMPLETION =====

// Section weights for the overall completion percentage.
const (
	completionWeightPersonal    = 20
	completionWeightEducation   = 15
	completionWeightWork        = 15
	completionWeightLanguage    = 20
	completionWeightFinancial   = 10
	completionWeightPreferences = 20
)

func calculateCompletion(
	personal models.PersonalInfo,
	education []models.EducationEntry,
	work []models.WorkExperienceEntry,
	languages []models.LanguageProficiency,
	financial models.FinancialInfo,
	preferences models.ImmigrationPreferences,
) models.CompletionStatus {
	personalCompletion := fieldCoverage(
		personal.DateOfBirth != nil,
		personal.Gender != "",
		personal.MaritalStatus != "",
		len(personal.Nationality) > 0,
		residencePopulated(personal.CurrentResidence),
		personal.Phone != "",
	)

	educationCompletion := 0
	if len(education) > 0 {
		educationCompletion = 100
	}
	workCompletion := 0
	if len(work) > 0 {
		workCompletion = 100
	}
	languageCompletion := 0
	if len(languages) > 0 {
		languageCompletion = 100
	}

	financialCompletion := fieldCoverage(
		financial.Currency != "",
		financial.LiquidAssets != 0,
		financial.NetWorth != 0,
		financial.AnnualIncome != 0,
	)

	preferencesCompletion := fieldCoverage(
		len(preferences.DestinationCountries) > 0,
		len(preferences.PathwayTypes) > 0,
		preferences.Timeframe != "",
		preferences.BudgetRange != "",
	)

	overall := float64(personalCompletion*completionWeightPersonal+
		educationCompletion*completionWeightEducation+
		workCompletion*completionWeightWork+
		languageCompletion*completionWeightLanguage+
		financialCompletion*completionWeightFinancial+
		preferencesCompletion*completionWeightPreferences) / 100

	return models.CompletionStatus{
		PersonalInfo:           personalCompletion,
		Education:              educationCompletion,
		WorkExperience:         workCompletion,
		LanguageProficiency:    languageCompletion,
		FinancialInfo:          financialCompletion,
		ImmigrationPreferences: preferencesCompletion,
		Overall:                int(overall + 0.5),
	}
}

func fieldCoverage(populated ...bool) int {
	if len(populated) == 0 {
		return 0
	}
	count := 0
	for _, p := range populated {
		if p {
			count++
		}
	}
	return int(float64(count)/float64(len(populated))*100 + 0.5)
}

func residencePopulated(residence *models.Residence) bool {
	if residence == nil {
		return false
	}
	return residence.Country != "" || residence.Region != "" || residence.City != "" || residence.Since != nil
}

// ===== FIELD EXTRACTION HELPERS =====

func responseString(response *models.Response) string {
	if response.TextResponse != nil {
		return *response.TextResponse
	}
	if value, ok := response.Value().(string); ok {
		return value
	}
	return ""
}

func responseNumber(response *models.Response) float64 {
	if response.NumericResponse != nil {
		return *response.NumericResponse
	}
	if value, ok := toFloatValue(response.Value()); ok {
		return value
	}
	return 0
}

func responseStringList(response *models.Response) []string {
	value := response.Value()
	switch v := value.(type) {
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	case string:
		if v == "" {
			return nil
		}
		return []string{v}
	default:
		return nil
	}
}

func fieldString(fields map[string]*models.Response, name string) string {
	response, ok := fields[name]
	if !ok {
		return ""
	}
	return responseString(response)
}

func fieldNumber(fields map[string]*models.Response, name string) *float64 {
	response, ok := fields[name]
	if !ok {
		return nil
	}
	if response.NumericResponse != nil {
		return response.NumericResponse
	}
	if value, ok := toFloatValue(response.Value()); ok {
		return &value
	}
	return nil
}

func fieldDate(fields map[string]*models.Response, name string) *time.Time {
	response, ok := fields[name]
	if !ok {
		return nil
	}
	if response.DateResponse != nil {
		return response.DateResponse
	}
	if value, ok := response.Value().(string); ok && value != "" {
		if parsed, err := ParseDate(value); err == nil {
			return &parsed
		}
	}
	return nil
}

func toFloatValue(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}

// yearsBetween returns the span between two dates in fractional years. When
// openEnded is true and end is nil, the span runs to now.
func yearsBetween(start, end *time.Time, openEnded bool) float64 {
	if start == nil {
		return 0
	}
	var until time.Time
	switch {
	case end != nil:
		until = *end
	case openEnded:
		until = time.Now()
	default:
		return 0
	}
	years := until.Sub(*start).Hours() / (24 * 365)
	if years < 0 {
		return 0
	}
	return years
}
