package usecase_test

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/xavierca1/taskflow/internal/entity"
	"github.com/xavierca1/taskflow/internal/usecase"
)

// MockLeadRepository
type MockLeadRepository struct {
	mock.Mock
}

func (m *MockLeadRepository) FindByID(ctx context.Context, id string) (*entity.Lead, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Lead), args.Error(1)
}

func (m *MockLeadRepository) FindByEmail(ctx context.Context, email string) (*entity.Lead, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Lead), args.Error(1)
}

func (m *MockLeadRepository) FindOrCreateByEmail(ctx context.Context, lead *entity.Lead) (*entity.Lead, bool, error) {
	args := m.Called(ctx, lead)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*entity.Lead), args.Bool(1), args.Error(2)
}

func (m *MockLeadRepository) Create(ctx context.Context, lead *entity.Lead) error {
	args := m.Called(ctx, lead)
	return args.Error(0)
}

func (m *MockLeadRepository) IncrementScore(ctx context.Context, id string, delta int) (int, error) {
	args := m.Called(ctx, id, delta)
	return args.Int(0), args.Error(1)
}

func (m *MockLeadRepository) UpdateStatus(ctx context.Context, id string, status entity.LeadStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockLeadRepository) List(ctx context.Context, filter entity.LeadFilter) ([]*entity.Lead, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Lead), args.Error(1)
}

func (m *MockLeadRepository) ArchiveStale(ctx context.Context, inactiveSince time.Time) (int64, error) {
	args := m.Called(ctx, inactiveSince)
	return args.Get(0).(int64), args.Error(1)
}

// MockActivityRepository
type MockActivityRepository struct {
	mock.Mock
}

func (m *MockActivityRepository) Create(ctx context.Context, activity *entity.LeadActivity) error {
	args := m.Called(ctx, activity)
	return args.Error(0)
}

func (m *MockActivityRepository) ListByLead(ctx context.Context, leadID string, limit int) ([]*entity.LeadActivity, error) {
	args := m.Called(ctx, leadID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.LeadActivity), args.Error(1)
}

// MockUserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindByID(ctx context.Context, id string) (*entity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepository) FindByIDForUpdate(ctx context.Context, id string) (*entity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepository) UpdateProgress(ctx context.Context, id string, xp, level int) error {
	args := m.Called(ctx, id, xp, level)
	return args.Error(0)
}

func (m *MockUserRepository) RepairLevel(ctx context.Context, id string, readXP, level int) (bool, error) {
	args := m.Called(ctx, id, readXP, level)
	return args.Bool(0), args.Error(1)
}

// MockEventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) PublishActivityRecorded(ctx context.Context, event entity.ActivityRecordedEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockEventPublisher) PublishLevelUp(ctx context.Context, event entity.LevelUpEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// MockEmailService
type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) SendLeadWelcome(to, name string) error {
	args := m.Called(to, name)
	return args.Error(0)
}

func (m *MockEmailService) SendLevelUp(to, name string, level int) error {
	args := m.Called(to, name, level)
	return args.Error(0)
}

// fakeUoW roda a função direto com os repositórios informados, sem transação.
type fakeUoW struct {
	repos usecase.Repositories
	calls int
}

func (f *fakeUoW) Do(ctx context.Context, fn func(ctx context.Context, repos usecase.Repositories) error) error {
	f.calls++
	return fn(ctx, f.repos)
}

// memLeadStore is an in-memory lead + activity store used for round-trip scenarios.
type memLeadStore struct {
	mu         sync.Mutex
	leads      map[string]*entity.Lead
	byEmail    map[string]string
	activities []*entity.LeadActivity
}

func newMemLeadStore() *memLeadStore {
	return &memLeadStore{
		leads:   map[string]*entity.Lead{},
		byEmail: map[string]string{},
	}
}

func (s *memLeadStore) repos() usecase.Repositories {
	return usecase.Repositories{Leads: s, Activities: memActivityStore{s}}
}

func (s *memLeadStore) FindByID(_ context.Context, id string) (*entity.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.leads[id]
	if !ok {
		return nil, entity.ErrLeadNotFound
	}
	cp := *l
	return &cp, nil
}

func (s *memLeadStore) FindByEmail(ctx context.Context, email string) (*entity.Lead, error) {
	s.mu.Lock()
	id, ok := s.byEmail[email]
	s.mu.Unlock()
	if !ok {
		return nil, entity.ErrLeadNotFound
	}
	return s.FindByID(ctx, id)
}

func (s *memLeadStore) FindOrCreateByEmail(ctx context.Context, lead *entity.Lead) (*entity.Lead, bool, error) {
	s.mu.Lock()
	if id, ok := s.byEmail[lead.Email]; ok {
		s.mu.Unlock()
		existing, err := s.FindByID(ctx, id)
		return existing, false, err
	}
	cp := *lead
	s.leads[lead.ID] = &cp
	s.byEmail[lead.Email] = lead.ID
	s.mu.Unlock()
	return lead, true, nil
}

func (s *memLeadStore) Create(_ context.Context, lead *entity.Lead) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *lead
	s.leads[lead.ID] = &cp
	if lead.Email != "" {
		s.byEmail[lead.Email] = lead.ID
	}
	return nil
}

func (s *memLeadStore) IncrementScore(_ context.Context, id string, delta int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.leads[id]
	if !ok {
		return 0, entity.ErrLeadNotFound
	}
	l.Score += delta
	return l.Score, nil
}

func (s *memLeadStore) UpdateStatus(_ context.Context, id string, status entity.LeadStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.leads[id]
	if !ok {
		return entity.ErrLeadNotFound
	}
	l.Status = status
	return nil
}

func (s *memLeadStore) List(context.Context, entity.LeadFilter) ([]*entity.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*entity.Lead, 0, len(s.leads))
	for _, l := range s.leads {
		cp := *l
		out = append(out, &cp)
	}
	return out, nil
}

func (s *memLeadStore) ArchiveStale(context.Context, time.Time) (int64, error) {
	return 0, nil
}

type memActivityStore struct {
	s *memLeadStore
}

func (a memActivityStore) Create(_ context.Context, activity *entity.LeadActivity) error {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	a.s.activities = append(a.s.activities, activity)
	return nil
}

func (a memActivityStore) ListByLead(_ context.Context, leadID string, _ int) ([]*entity.LeadActivity, error) {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	var out []*entity.LeadActivity
	for _, act := range a.s.activities {
		if act.LeadID == leadID {
			out = append(out, act)
		}
	}
	return out, nil
}
