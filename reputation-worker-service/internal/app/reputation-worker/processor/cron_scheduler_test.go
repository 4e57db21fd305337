package processor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockReputationService мок для ReputationServiceInterface
type MockReputationService struct {
	mock.Mock
}

func (m *MockReputationService) RecomputeExpert(ctx context.Context, expertID uuid.UUID) error {
	args := m.Called(ctx, expertID)
	return args.Error(0)
}

func (m *MockReputationService) ReconcileAll(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// ===================== NewCronScheduler Tests =====================

func TestNewCronScheduler(t *testing.T) {
	mockSvc := new(MockReputationService)

	scheduler := NewCronScheduler(mockSvc)

	assert.NotNil(t, scheduler)
	assert.NotNil(t, scheduler.cron)
	assert.Equal(t, mockSvc, scheduler.reputationSvc)
}

// ===================== Start Tests =====================

func TestCronScheduler_Start_Success(t *testing.T) {
	mockSvc := new(MockReputationService)
	scheduler := NewCronScheduler(mockSvc)

	ctx := context.Background()

	// Начальная сверка при старте
	mockSvc.On("ReconcileAll", mock.Anything).Return(nil)

	err := scheduler.Start(ctx, "@every 10m")

	assert.NoError(t, err)
	assert.Len(t, scheduler.GetEntries(), 1)

	scheduler.Stop()
	mockSvc.AssertExpectations(t)
}

func TestCronScheduler_Start_InvalidSchedule(t *testing.T) {
	mockSvc := new(MockReputationService)
	scheduler := NewCronScheduler(mockSvc)

	ctx := context.Background()

	err := scheduler.Start(ctx, "invalid cron expression")

	assert.Error(t, err)
}

func TestCronScheduler_Start_InitialSweepError_ContinuesWork(t *testing.T) {
	mockSvc := new(MockReputationService)
	scheduler := NewCronScheduler(mockSvc)

	ctx := context.Background()

	// Ошибка начальной сверки не мешает запуску
	mockSvc.On("ReconcileAll", mock.Anything).Return(errors.New("db unavailable"))

	err := scheduler.Start(ctx, "@every 10m")

	assert.NoError(t, err)
	assert.Len(t, scheduler.GetEntries(), 1)

	scheduler.Stop()
}

// ===================== Cron Job Execution Tests =====================

func TestCronScheduler_JobExecution(t *testing.T) {
	mockSvc := new(MockReputationService)
	scheduler := NewCronScheduler(mockSvc)

	ctx := context.Background()

	mockSvc.On("ReconcileAll", mock.Anything).Return(nil)

	err := scheduler.Start(ctx, "@every 100ms")
	assert.NoError(t, err)

	time.Sleep(350 * time.Millisecond)

	scheduler.Stop()

	// Минимум два вызова: начальная сверка + срабатывания расписания
	assert.GreaterOrEqual(t, len(mockSvc.Calls), 2)
}

func TestCronScheduler_JobExecution_WithError(t *testing.T) {
	// Сверки продолжаются несмотря на ошибки
	mockSvc := new(MockReputationService)
	scheduler := NewCronScheduler(mockSvc)

	ctx := context.Background()

	mockSvc.On("ReconcileAll", mock.Anything).Return(errors.New("db timeout"))

	err := scheduler.Start(ctx, "@every 100ms")
	assert.NoError(t, err)

	time.Sleep(350 * time.Millisecond)

	scheduler.Stop()

	assert.GreaterOrEqual(t, len(mockSvc.Calls), 2)
}

// ===================== GetEntries Tests =====================

func TestCronScheduler_GetEntries_Empty(t *testing.T) {
	mockSvc := new(MockReputationService)
	scheduler := NewCronScheduler(mockSvc)

	entries := scheduler.GetEntries()

	assert.Empty(t, entries)
}
