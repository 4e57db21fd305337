package service

import (
	"context"
	"testing"
	"time"

	"expertaid/requests-service/internal/app/requests/entity"
	"expertaid/requests-service/internal/app/requests/repository/mocks"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// ===================== UserHistory Tests =====================

func TestUserHistory_MergesLiveState(t *testing.T) {
	requestRepo := new(mocks.MockRequestRepository)
	historyRepo := new(mocks.MockHistoryRepository)
	svc := NewProjectionService(requestRepo, historyRepo)

	ctx := context.Background()
	userID := uuid.New()
	expertID := uuid.New()
	serviceID := uuid.New()
	solvedDate := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)

	// Кешированная запись устарела: на момент создания не было ни
	// эксперта, ни финального статуса
	entries := []entity.HistoryEntry{
		{
			ServiceID:   serviceID,
			UserID:      userID,
			ExpertID:    "",
			Date:        "2026-08-15",
			ServiceName: "AC servicing",
			Status:      "pending",
		},
	}

	live := []entity.ServiceRequest{
		{
			ID:         serviceID,
			UserID:     userID,
			ExpertID:   &expertID,
			Status:     entity.RequestStatusDone,
			Rating:     intPtr(5),
			SolvedDate: &solvedDate,
		},
	}

	historyRepo.On("ListByUser", ctx, userID).Return(entries, nil)
	requestRepo.On("GetByIDs", ctx, []uuid.UUID{serviceID}).Return(live, nil)

	result, err := svc.UserHistory(ctx, userID)

	assert.NoError(t, err)
	assert.Len(t, result.Items, 1)
	assert.Equal(t, "done", result.Items[0].Status)
	assert.Equal(t, expertID, *result.Items[0].ExpertID)
	assert.Equal(t, 5, *result.Items[0].Rating)
	assert.Equal(t, 1, result.Stats.Completed)
	assert.Equal(t, 0, result.Stats.Pending)
}

func TestUserHistory_KeepsCachedCopyForMissingRequest(t *testing.T) {
	// Живая заявка могла быть удалена администратором - запись истории
	// остается и показывает кешированное состояние
	requestRepo := new(mocks.MockRequestRepository)
	historyRepo := new(mocks.MockHistoryRepository)
	svc := NewProjectionService(requestRepo, historyRepo)

	ctx := context.Background()
	userID := uuid.New()
	serviceID := uuid.New()

	entries := []entity.HistoryEntry{
		{
			ServiceID:   serviceID,
			UserID:      userID,
			ServiceName: "Carpentry",
			Date:        "2026-08-10",
			Status:      "pending",
		},
	}

	historyRepo.On("ListByUser", ctx, userID).Return(entries, nil)
	requestRepo.On("GetByIDs", ctx, []uuid.UUID{serviceID}).Return([]entity.ServiceRequest{}, nil)

	result, err := svc.UserHistory(ctx, userID)

	assert.NoError(t, err)
	assert.Len(t, result.Items, 1)
	assert.Equal(t, "pending", result.Items[0].Status)
	assert.Nil(t, result.Items[0].ExpertID)
}

func TestUserHistory_EmptyHistory(t *testing.T) {
	requestRepo := new(mocks.MockRequestRepository)
	historyRepo := new(mocks.MockHistoryRepository)
	svc := NewProjectionService(requestRepo, historyRepo)

	ctx := context.Background()
	userID := uuid.New()

	historyRepo.On("ListByUser", ctx, userID).Return([]entity.HistoryEntry{}, nil)

	result, err := svc.UserHistory(ctx, userID)

	assert.NoError(t, err)
	assert.Empty(t, result.Items)
	assert.Equal(t, 0, result.Stats.Total)
	// Живые заявки не запрашиваются для пустой истории
	requestRepo.AssertNotCalled(t, "GetByIDs", mock.Anything, mock.Anything)
}

func TestUserHistory_StatsCountByStatus(t *testing.T) {
	requestRepo := new(mocks.MockRequestRepository)
	historyRepo := new(mocks.MockHistoryRepository)
	svc := NewProjectionService(requestRepo, historyRepo)

	ctx := context.Background()
	userID := uuid.New()

	ids := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	entries := make([]entity.HistoryEntry, len(ids))
	for i, id := range ids {
		entries[i] = entity.HistoryEntry{ServiceID: id, UserID: userID, Status: "pending"}
	}

	live := []entity.ServiceRequest{
		{ID: ids[0], Status: entity.RequestStatusPending},
		{ID: ids[1], Status: entity.RequestStatusDone},
		{ID: ids[2], Status: entity.RequestStatusRejected},
	}

	historyRepo.On("ListByUser", ctx, userID).Return(entries, nil)
	requestRepo.On("GetByIDs", ctx, ids).Return(live, nil)

	result, err := svc.UserHistory(ctx, userID)

	assert.NoError(t, err)
	assert.Equal(t, 3, result.Stats.Total)
	assert.Equal(t, 1, result.Stats.Pending)
	assert.Equal(t, 1, result.Stats.Completed)
	assert.Equal(t, 1, result.Stats.Rejected)
}

// ===================== ExpertCompleted Tests =====================

func TestExpertCompleted_Aggregates(t *testing.T) {
	requestRepo := new(mocks.MockRequestRepository)
	historyRepo := new(mocks.MockHistoryRepository)
	svc := NewProjectionService(requestRepo, historyRepo)

	ctx := context.Background()
	expertID := uuid.New()

	completed := []entity.ServiceRequest{
		{ID: uuid.New(), ExpertID: &expertID, Status: entity.RequestStatusDone, PaymentAmount: floatPtr(500)},
		{ID: uuid.New(), ExpertID: &expertID, Status: entity.RequestStatusDone, PaymentAmount: floatPtr(300)},
	}

	requestRepo.On("ListDoneByExpert", ctx, expertID).Return(completed, nil)

	result, err := svc.ExpertCompleted(ctx, expertID)

	assert.NoError(t, err)
	assert.Equal(t, 2, result.Stats.Count)
	assert.Equal(t, 800.0, result.Stats.TotalRevenue)
	assert.Equal(t, 400.0, result.Stats.AveragePerJob)
}

func TestExpertCompleted_EmptySetYieldsZeroAverage(t *testing.T) {
	// Деление на ноль защищено: пустой список дает нулевые агрегаты
	requestRepo := new(mocks.MockRequestRepository)
	historyRepo := new(mocks.MockHistoryRepository)
	svc := NewProjectionService(requestRepo, historyRepo)

	ctx := context.Background()
	expertID := uuid.New()

	requestRepo.On("ListDoneByExpert", ctx, expertID).Return([]entity.ServiceRequest{}, nil)

	result, err := svc.ExpertCompleted(ctx, expertID)

	assert.NoError(t, err)
	assert.Equal(t, 0, result.Stats.Count)
	assert.Equal(t, 0.0, result.Stats.TotalRevenue)
	assert.Equal(t, 0.0, result.Stats.AveragePerJob)
}

// ===================== ExpertQueue Tests =====================

func TestExpertQueue_ReturnsAssignedPending(t *testing.T) {
	requestRepo := new(mocks.MockRequestRepository)
	historyRepo := new(mocks.MockHistoryRepository)
	svc := NewProjectionService(requestRepo, historyRepo)

	ctx := context.Background()
	expertID := uuid.New()

	queue := []entity.ServiceRequest{
		{ID: uuid.New(), ExpertID: &expertID, Status: entity.RequestStatusPending},
	}

	requestRepo.On("ListPendingByExpert", ctx, expertID).Return(queue, nil)

	result, err := svc.ExpertQueue(ctx, expertID)

	assert.NoError(t, err)
	assert.Len(t, result, 1)
	assert.True(t, result[0].IsAccepted())
}
