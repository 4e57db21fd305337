package mocks

import (
	"context"
	"time"

	"expertaid/requests-service/internal/app/requests/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockRequestRepository мок для RequestRepository
type MockRequestRepository struct {
	mock.Mock
}

func (m *MockRequestRepository) Create(ctx context.Context, request *entity.ServiceRequest) error {
	args := m.Called(ctx, request)
	return args.Error(0)
}

func (m *MockRequestRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.ServiceRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.ServiceRequest), args.Error(1)
}

func (m *MockRequestRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.ServiceRequest, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.ServiceRequest), args.Error(1)
}

func (m *MockRequestRepository) ListPending(ctx context.Context) ([]entity.ServiceRequest, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.ServiceRequest), args.Error(1)
}

func (m *MockRequestRepository) ListPendingByExpert(ctx context.Context, expertID uuid.UUID) ([]entity.ServiceRequest, error) {
	args := m.Called(ctx, expertID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.ServiceRequest), args.Error(1)
}

func (m *MockRequestRepository) ListDoneByExpert(ctx context.Context, expertID uuid.UUID) ([]entity.ServiceRequest, error) {
	args := m.Called(ctx, expertID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.ServiceRequest), args.Error(1)
}

func (m *MockRequestRepository) Assign(ctx context.Context, id uuid.UUID, expertID uuid.UUID) error {
	args := m.Called(ctx, id, expertID)
	return args.Error(0)
}

func (m *MockRequestRepository) Complete(ctx context.Context, id uuid.UUID, expertID uuid.UUID, amount float64, paymentType, remarks string, solvedDate time.Time) error {
	args := m.Called(ctx, id, expertID, amount, paymentType, remarks, solvedDate)
	return args.Error(0)
}

func (m *MockRequestRepository) Reject(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRequestRepository) SetFeedback(ctx context.Context, id uuid.UUID, userID uuid.UUID, rating int, feedback string) error {
	args := m.Called(ctx, id, userID, rating, feedback)
	return args.Error(0)
}

func (m *MockRequestRepository) ExpertRatingStats(ctx context.Context, expertID uuid.UUID) (*entity.ExpertRatingStats, error) {
	args := m.Called(ctx, expertID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.ExpertRatingStats), args.Error(1)
}

// MockHistoryRepository мок для HistoryRepository
type MockHistoryRepository struct {
	mock.Mock
}

func (m *MockHistoryRepository) Append(ctx context.Context, entry *entity.HistoryEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockHistoryRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]entity.HistoryEntry, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.HistoryEntry), args.Error(1)
}

// MockReputationCache мок для ReputationCache
type MockReputationCache struct {
	mock.Mock
}

func (m *MockReputationCache) Get(ctx context.Context, expertID uuid.UUID) (*entity.ExpertReputation, error) {
	args := m.Called(ctx, expertID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.ExpertReputation), args.Error(1)
}

func (m *MockReputationCache) Set(ctx context.Context, reputation *entity.ExpertReputation) error {
	args := m.Called(ctx, reputation)
	return args.Error(0)
}

func (m *MockReputationCache) Delete(ctx context.Context, expertID uuid.UUID) error {
	args := m.Called(ctx, expertID)
	return args.Error(0)
}

// MockMessagePublisher мок для MessagePublisher
type MockMessagePublisher struct {
	mock.Mock
}

func (m *MockMessagePublisher) PublishMessage(ctx context.Context, key string, value []byte) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func (m *MockMessagePublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockReputationService мок для ReputationServiceInterface
type MockReputationService struct {
	mock.Mock
}

func (m *MockReputationService) GetReputation(ctx context.Context, expertID uuid.UUID) (*entity.ExpertReputation, error) {
	args := m.Called(ctx, expertID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.ExpertReputation), args.Error(1)
}

func (m *MockReputationService) Recompute(ctx context.Context, expertID uuid.UUID) (*entity.ExpertReputation, error) {
	args := m.Called(ctx, expertID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.ExpertReputation), args.Error(1)
}
