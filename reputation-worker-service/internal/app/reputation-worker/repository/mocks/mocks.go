package mocks

import (
	"context"

	"expertaid/reputation-worker-service/internal/app/reputation-worker/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockRatingRepository мок для RatingRepository
type MockRatingRepository struct {
	mock.Mock
}

func (m *MockRatingRepository) ExpertRatingStats(ctx context.Context, expertID uuid.UUID) (*entity.RatingStats, error) {
	args := m.Called(ctx, expertID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.RatingStats), args.Error(1)
}

func (m *MockRatingRepository) ListRatedExperts(ctx context.Context) ([]uuid.UUID, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

func (m *MockRatingRepository) CountByStatus(ctx context.Context) ([]entity.StatusCount, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.StatusCount), args.Error(1)
}

// MockReputationStore мок для ReputationStore
type MockReputationStore struct {
	mock.Mock
}

func (m *MockReputationStore) Get(ctx context.Context, expertID uuid.UUID) (*entity.ExpertReputation, error) {
	args := m.Called(ctx, expertID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.ExpertReputation), args.Error(1)
}

func (m *MockReputationStore) Set(ctx context.Context, reputation *entity.ExpertReputation) error {
	args := m.Called(ctx, reputation)
	return args.Error(0)
}

func (m *MockReputationStore) Delete(ctx context.Context, expertID uuid.UUID) error {
	args := m.Called(ctx, expertID)
	return args.Error(0)
}
