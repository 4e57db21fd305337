package service

import (
	"context"
	"fmt"

	"expertaid/requests-service/internal/app/requests/entity"
	"expertaid/requests-service/internal/app/requests/repository"

	"github.com/google/uuid"
)

// ProjectionService строит витрины поверх Request Store: историю
// пользователя (кеш из Mongo, объединенный с живыми заявками) и
// дашборд эксперта. Только чтение, без блокировок; допустима
// небольшая устарелость, каллер всегда может перечитать
type ProjectionService struct {
	requestRepo repository.RequestRepository
	historyRepo repository.HistoryRepository
}

// NewProjectionService создает новый сервис проекций
func NewProjectionService(
	requestRepo repository.RequestRepository,
	historyRepo repository.HistoryRepository,
) *ProjectionService {
	return &ProjectionService{
		requestRepo: requestRepo,
		historyRepo: historyRepo,
	}
}

// UserHistory возвращает историю пользователя: записи из Mongo,
// обогащенные актуальными статусами из Request Store. Кешированные
// записи не мутируются - merge происходит только в ответе
func (s *ProjectionService) UserHistory(ctx context.Context, userID uuid.UUID) (*entity.UserHistoryResponse, error) {
	entries, err := s.historyRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list history entries: %w", err)
	}

	if len(entries) == 0 {
		return &entity.UserHistoryResponse{
			Items: []entity.HistoryItemResponse{},
		}, nil
	}

	ids := make([]uuid.UUID, len(entries))
	for i, entry := range entries {
		ids[i] = entry.ServiceID
	}

	requests, err := s.requestRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch live requests: %w", err)
	}

	live := make(map[uuid.UUID]entity.ServiceRequest, len(requests))
	for _, req := range requests {
		live[req.ID] = req
	}

	response := &entity.UserHistoryResponse{
		Items: make([]entity.HistoryItemResponse, 0, len(entries)),
	}

	for _, entry := range entries {
		item := entity.HistoryItemResponse{
			ServiceID:   entry.ServiceID,
			ServiceName: entry.ServiceName,
			Date:        entry.Date,
			Status:      entry.Status,
		}

		// Живая заявка перекрывает кешированные status/expert_id
		if req, ok := live[entry.ServiceID]; ok {
			item.Status = string(req.Status)
			item.ExpertID = req.ExpertID
			item.Rating = req.Rating
			item.SolvedDate = req.SolvedDate
		}

		response.Items = append(response.Items, item)

		response.Stats.Total++
		switch item.Status {
		case string(entity.RequestStatusPending):
			response.Stats.Pending++
		case string(entity.RequestStatusDone):
			response.Stats.Completed++
		case string(entity.RequestStatusRejected):
			response.Stats.Rejected++
		}
	}

	return response, nil
}

// ExpertQueue возвращает принятые, но не завершенные заявки эксперта
func (s *ProjectionService) ExpertQueue(ctx context.Context, expertID uuid.UUID) ([]entity.ServiceRequest, error) {
	requests, err := s.requestRepo.ListPendingByExpert(ctx, expertID)
	if err != nil {
		return nil, fmt.Errorf("failed to list expert queue: %w", err)
	}

	return requests, nil
}

// ExpertCompleted возвращает завершенные заявки эксперта с финансовыми
// агрегатами: количество, суммарная выручка, среднее за работу
// (0 при пустом списке)
func (s *ProjectionService) ExpertCompleted(ctx context.Context, expertID uuid.UUID) (*entity.ExpertCompletedResponse, error) {
	requests, err := s.requestRepo.ListDoneByExpert(ctx, expertID)
	if err != nil {
		return nil, fmt.Errorf("failed to list completed requests: %w", err)
	}

	response := &entity.ExpertCompletedResponse{
		Requests: requests,
	}

	response.Stats.Count = len(requests)
	for _, req := range requests {
		if req.PaymentAmount != nil {
			response.Stats.TotalRevenue += *req.PaymentAmount
		}
	}
	if response.Stats.Count > 0 {
		response.Stats.AveragePerJob = response.Stats.TotalRevenue / float64(response.Stats.Count)
	}

	return response, nil
}
