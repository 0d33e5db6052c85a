package handlers_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/xavierca1/taskflow/internal/entity"
	"github.com/xavierca1/taskflow/internal/progression"
	"github.com/xavierca1/taskflow/internal/usecase"
)

type MockActivityRecorder struct {
	mock.Mock
}

func (m *MockActivityRecorder) Execute(ctx context.Context, input usecase.RecordActivityInput) (*usecase.RecordActivityOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.RecordActivityOutput), args.Error(1)
}

// MockProgressUseCase serve tanto para leitura quanto para reset
type MockProgressUseCase struct {
	mock.Mock
}

func (m *MockProgressUseCase) Execute(ctx context.Context, userID string) (*progression.Progress, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*progression.Progress), args.Error(1)
}

type MockXPAwarder struct {
	mock.Mock
}

func (m *MockXPAwarder) Execute(ctx context.Context, input usecase.AwardXPInput) (*usecase.AwardXPOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.AwardXPOutput), args.Error(1)
}

type MockLeadGetter struct {
	mock.Mock
}

func (m *MockLeadGetter) Execute(ctx context.Context, id string) (*usecase.LeadDetailsOutput, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.LeadDetailsOutput), args.Error(1)
}

type MockLeadLister struct {
	mock.Mock
}

func (m *MockLeadLister) Execute(ctx context.Context, input usecase.ListLeadsInput) ([]*entity.Lead, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Lead), args.Error(1)
}

type MockLeadStatusUpdater struct {
	mock.Mock
}

func (m *MockLeadStatusUpdater) Execute(ctx context.Context, id, rawStatus string) (*entity.Lead, error) {
	args := m.Called(ctx, id, rawStatus)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Lead), args.Error(1)
}

type stubPinger struct {
	err error
}

func (s stubPinger) PingContext(context.Context) error { return s.err }
