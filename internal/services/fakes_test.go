package services

import (
	"context"
	"sort"
	"sync"

	"github.com/frosttechequities/migratio-assessment-service/internal/models"
	"github.com/frosttechequities/migratio-assessment-service/internal/repositories"
	"gorm.io/gorm"
)

// fakeRepository is an in-memory Repository used across the service tests.
type fakeRepository struct {
	mu        sync.Mutex
	questions []*models.Question
	sessions  map[string]*models.QuizSession
	responses []*models.Response
	profiles  map[string]*models.Profile

	profileUpserts int
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		sessions: make(map[string]*models.QuizSession),
		profiles: make(map[string]*models.Profile),
	}
}

func (f *fakeRepository) Question() repositories.QuestionRepository { return (*fakeQuestions)(f) }
func (f *fakeRepository) Session() repositories.SessionRepository   { return (*fakeSessions)(f) }
func (f *fakeRepository) Response() repositories.ResponseRepository { return (*fakeResponses)(f) }
func (f *fakeRepository) Profile() repositories.ProfileRepository   { return (*fakeProfiles)(f) }

func (f *fakeRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return fn(f)
}

// ===== QUESTIONS =====

type fakeQuestions fakeRepository

func (f *fakeQuestions) Create(ctx context.Context, question *models.Question) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.questions = append(f.questions, question)
	return nil
}

func (f *fakeQuestions) CreateBatch(ctx context.Context, questions []*models.Question) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.questions = append(f.questions, questions...)
	return nil
}

func (f *fakeQuestions) Update(ctx context.Context, question *models.Question) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, q := range f.questions {
		if q.QuestionID == question.QuestionID {
			f.questions[i] = question
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeQuestions) Deactivate(ctx context.Context, questionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, q := range f.questions {
		if q.QuestionID == questionID {
			q.IsActive = false
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeQuestions) GetByQuestionID(ctx context.Context, questionID string) (*models.Question, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, q := range f.questions {
		if q.QuestionID == questionID {
			return q, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeQuestions) List(ctx context.Context, filters repositories.QuestionFilters) ([]*models.Question, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Question
	for _, q := range f.questions {
		if filters.Section != nil && q.Section != *filters.Section {
			continue
		}
		if filters.IsActive != nil && q.IsActive != *filters.IsActive {
			continue
		}
		out = append(out, q)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, int64(len(out)), nil
}

func (f *fakeQuestions) GetBySection(ctx context.Context, section models.QuizSection) ([]*models.Question, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Question
	for _, q := range f.questions {
		if q.Section == section && q.IsActive {
			out = append(out, q)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}

func (f *fakeQuestions) CountActive(ctx context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := int64(0)
	for _, q := range f.questions {
		if q.IsActive {
			count++
		}
	}
	return count, nil
}

// ===== SESSIONS =====

type fakeSessions fakeRepository

func (f *fakeSessions) Create(ctx context.Context, session *models.QuizSession) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions[session.SessionID] = session
	return nil
}

func (f *fakeSessions) Update(ctx context.Context, session *models.QuizSession) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions[session.SessionID] = session
	return nil
}

func (f *fakeSessions) GetBySessionID(ctx context.Context, sessionID string) (*models.QuizSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	session, ok := f.sessions[sessionID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return session, nil
}

func (f *fakeSessions) FindActiveByUser(ctx context.Context, userID string) (*models.QuizSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var latest *models.QuizSession
	for _, session := range f.sessions {
		if session.UserID == nil || *session.UserID != userID || session.Status != models.SessionInProgress {
			continue
		}
		if latest == nil || session.StartedAt.After(latest.StartedAt) {
			latest = session
		}
	}
	return latest, nil
}

func (f *fakeSessions) MarkAbandoned(ctx context.Context, sessionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	session, ok := f.sessions[sessionID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if session.Status == models.SessionInProgress {
		session.Status = models.SessionAbandoned
	}
	return nil
}

// ===== RESPONSES =====

type fakeResponses fakeRepository

func (f *fakeResponses) Create(ctx context.Context, response *models.Response) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses = append(f.responses, response)
	return nil
}

func (f *fakeResponses) Update(ctx context.Context, response *models.Response) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, r := range f.responses {
		if r.SessionID == response.SessionID && r.QuestionID == response.QuestionID {
			f.responses[i] = response
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeResponses) GetBySessionAndQuestion(ctx context.Context, sessionID, questionID string) (*models.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.responses {
		if r.SessionID == sessionID && r.QuestionID == questionID {
			return r, nil
		}
	}
	return nil, nil
}

func (f *fakeResponses) ListBySession(ctx context.Context, sessionID string) ([]*models.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Response
	for _, r := range f.responses {
		if r.SessionID == sessionID {
			out = append(out, r)
		}
	}
	return out, nil
}

// ===== PROFILES =====

type fakeProfiles fakeRepository

func (f *fakeProfiles) GetByUserID(ctx context.Context, userID string) (*models.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	profile, ok := f.profiles[userID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return profile, nil
}

func (f *fakeProfiles) Upsert(ctx context.Context, profile *models.Profile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.profiles[profile.UserID] = profile
	f.profileUpserts++
	return nil
}
