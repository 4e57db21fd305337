package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"expertaid/pkg/logger"
	"expertaid/pkg/metrics"
	"expertaid/requests-service/internal/app/requests/entity"
	"expertaid/requests-service/internal/app/requests/infrastructure"
	"expertaid/requests-service/internal/app/requests/repository"
	"expertaid/requests-service/internal/app/requests/util"

	"github.com/google/uuid"
)

var (
	// Ошибки бизнес-логики для обработки в handlers
	ErrRequestNotFound = errors.New("service request not found")
	// ErrValidation - некорректные поля при создании заявки
	ErrValidation = errors.New("validation failed")
	// ErrConflict - guard не прошел: заявка уже занята или в финальном статусе
	ErrConflict = errors.New("request state conflict")
	// ErrPreconditionFailed - операция не применима к текущему состоянию:
	// завершение без назначенного эксперта, отзыв на незавершенной заявке
	ErrPreconditionFailed = errors.New("request precondition failed")
	ErrUnauthorized       = errors.New("unauthorized access to request")
)

// GeoFilter - опциональный гео-фильтр пула pending заявок
type GeoFilter struct {
	Longitude float64
	Latitude  float64
	RadiusKm  float64
}

// RequestService реализует жизненный цикл заявки: pending -> done/rejected,
// с неявным состоянием "принята" через expert_id. Все мутации идут через
// условные UPDATE репозитория; при нулевом числе затронутых строк сервис
// перечитывает заявку и возвращает именованную ошибку
type RequestService struct {
	requestRepo   repository.RequestRepository
	historyRepo   repository.HistoryRepository
	reputationSvc ReputationServiceInterface
	kafkaProducer infrastructure.MessagePublisher
}

// NewRequestService создает новый сервис заявок с внедрением зависимостей
func NewRequestService(
	requestRepo repository.RequestRepository,
	historyRepo repository.HistoryRepository,
	reputationSvc ReputationServiceInterface,
	kafkaProducer infrastructure.MessagePublisher,
) *RequestService {
	return &RequestService{
		requestRepo:   requestRepo,
		historyRepo:   historyRepo,
		reputationSvc: reputationSvc,
		kafkaProducer: kafkaProducer,
	}
}

// CreateRequest создает новую заявку
// 1. Проверяет обязательные поля и координаты
// 2. Сохраняет заявку в статусе pending без эксперта
// 3. Добавляет запись в историю пользователя (fire-and-forget)
// 4. Отправляет событие REQUEST_CREATED в Kafka
func (s *RequestService) CreateRequest(ctx context.Context, userID uuid.UUID, req *entity.CreateRequestRequest) (*entity.ServiceRequest, error) {
	if strings.TrimSpace(req.ServiceName) == "" ||
		strings.TrimSpace(req.Description) == "" ||
		strings.TrimSpace(req.Date) == "" ||
		strings.TrimSpace(req.Time) == "" {
		return nil, ErrValidation
	}

	// Координаты либо заданы парой, либо отсутствуют вовсе
	if (req.Longitude == nil) != (req.Latitude == nil) {
		return nil, ErrValidation
	}
	if req.Longitude != nil && !util.IsValidCoordinates(*req.Longitude, *req.Latitude) {
		return nil, ErrValidation
	}

	request := &entity.ServiceRequest{
		ID:               uuid.New(),
		UserID:           userID,
		ServiceName:      req.ServiceName,
		Description:      req.Description,
		Date:             req.Date,
		Time:             req.Time,
		Longitude:        req.Longitude,
		Latitude:         req.Latitude,
		FemalePreference: req.FemalePreference,
		Status:           entity.RequestStatusPending,
		UserName:         req.UserName,
		MobileNo:         req.MobileNo,
		Email:            req.Email,
		Address:          req.Address,
		CreatedAt:        time.Now(),
	}

	if err := s.requestRepo.Create(ctx, request); err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	// Запись истории не блокирует создание: при сбое пользователь
	// теряет строку в списке, но заявка остается адресуемой по id
	entry := &entity.HistoryEntry{
		ServiceID:   request.ID,
		UserID:      userID,
		ExpertID:    "",
		Date:        request.Date,
		ServiceName: request.ServiceName,
		Status:      string(entity.RequestStatusPending),
	}
	if err := s.historyRepo.Append(ctx, entry); err != nil {
		logger.Error().Err(err).
			Str("request_id", request.ID.String()).
			Msg("Failed to append history entry")
	}

	s.publishRequestEvent(ctx, entity.RequestEvent{
		EventType: entity.EventRequestCreated,
		RequestID: request.ID,
		UserID:    request.UserID,
		Status:    request.Status,
		Timestamp: time.Now(),
	})

	metrics.RequestsCreated.Inc()

	return request, nil
}

// GetRequest получает заявку по ID
func (s *RequestService) GetRequest(ctx context.Context, requestID uuid.UUID) (*entity.ServiceRequest, error) {
	request, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, repository.ErrRequestNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, fmt.Errorf("failed to get request: %w", err)
	}

	return request, nil
}

// GetRequestsBatch получает заявки по списку ID одним чтением.
// Отсутствующие id молча пропускаются - порядок за вызывающим
func (s *RequestService) GetRequestsBatch(ctx context.Context, ids []uuid.UUID) ([]entity.ServiceRequest, error) {
	if len(ids) == 0 {
		return []entity.ServiceRequest{}, nil
	}

	requests, err := s.requestRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to get requests batch: %w", err)
	}

	return requests, nil
}

// ListPending возвращает глобальный пул pending заявок.
// С гео-фильтром: только заявки с координатами в радиусе, ближайшие
// первыми; без фильтра: все pending, включая заявки без локации
func (s *RequestService) ListPending(ctx context.Context, filter *GeoFilter) ([]entity.PendingRequestResponse, error) {
	requests, err := s.requestRepo.ListPending(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending requests: %w", err)
	}

	if filter == nil {
		responses := make([]entity.PendingRequestResponse, len(requests))
		for i, req := range requests {
			responses[i] = entity.PendingRequestResponse{ServiceRequest: req}
		}
		return responses, nil
	}

	if !util.IsValidCoordinates(filter.Longitude, filter.Latitude) || filter.RadiusKm <= 0 {
		return nil, ErrValidation
	}

	nearby := util.FilterNearby(requests, filter.Longitude, filter.Latitude, filter.RadiusKm)

	responses := make([]entity.PendingRequestResponse, len(nearby))
	for i, n := range nearby {
		distance := n.DistanceKm
		responses[i] = entity.PendingRequestResponse{
			ServiceRequest: n.Request,
			DistanceKm:     &distance,
		}
	}

	return responses, nil
}

// AcceptRequest назначает эксперта на pending заявку.
// Единственный арбитр гонки - условный UPDATE в хранилище: из N
// конкурирующих экспертов выигрывает ровно один, остальные получают
// ErrConflict и должны перечитать состояние
func (s *RequestService) AcceptRequest(ctx context.Context, requestID uuid.UUID, expertID uuid.UUID) (*entity.ServiceRequest, error) {
	err := s.requestRepo.Assign(ctx, requestID, expertID)
	if err != nil {
		if errors.Is(err, repository.ErrGuardFailed) {
			metrics.RequestsAccepted.WithLabelValues("conflict").Inc()
			return nil, s.resolveAssignFailure(ctx, requestID)
		}
		return nil, fmt.Errorf("failed to assign request: %w", err)
	}

	metrics.RequestsAccepted.WithLabelValues("won").Inc()

	request, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to get request after assign: %w", err)
	}

	s.publishRequestEvent(ctx, entity.RequestEvent{
		EventType: entity.EventRequestAccepted,
		RequestID: request.ID,
		UserID:    request.UserID,
		ExpertID:  request.ExpertID,
		Status:    request.Status,
		Timestamp: time.Now(),
	})

	return request, nil
}

// CompleteRequest переводит заявку в done с полями завершения.
// Завершить может только назначенный эксперт; solved_date по умолчанию -
// текущее время
func (s *RequestService) CompleteRequest(ctx context.Context, requestID uuid.UUID, expertID uuid.UUID, req *entity.CompleteRequestRequest) (*entity.ServiceRequest, error) {
	if req.PaymentAmount < 0 {
		return nil, ErrValidation
	}

	solvedDate := time.Now()
	if req.SolvedDate != nil {
		current, err := s.requestRepo.GetByID(ctx, requestID)
		if err != nil {
			if errors.Is(err, repository.ErrRequestNotFound) {
				return nil, ErrRequestNotFound
			}
			return nil, fmt.Errorf("failed to get request: %w", err)
		}

		// Завершение не может предшествовать созданию заявки
		if req.SolvedDate.Before(current.CreatedAt) {
			return nil, ErrValidation
		}
		solvedDate = *req.SolvedDate
	}

	err := s.requestRepo.Complete(ctx, requestID, expertID, req.PaymentAmount, req.PaymentType, req.Remarks, solvedDate)
	if err != nil {
		if errors.Is(err, repository.ErrGuardFailed) {
			return nil, s.resolveCompleteFailure(ctx, requestID, expertID)
		}
		return nil, fmt.Errorf("failed to complete request: %w", err)
	}

	metrics.RequestsCompleted.Inc()

	request, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to get request after complete: %w", err)
	}

	s.publishRequestEvent(ctx, entity.RequestEvent{
		EventType: entity.EventRequestCompleted,
		RequestID: request.ID,
		UserID:    request.UserID,
		ExpertID:  request.ExpertID,
		Status:    request.Status,
		Timestamp: time.Now(),
	})

	return request, nil
}

// RejectRequest отклоняет заявку из pending (в том числе уже принятую,
// но не завершенную). Доступно заказчику и назначенному эксперту
func (s *RequestService) RejectRequest(ctx context.Context, requestID uuid.UUID, actorID uuid.UUID) (*entity.ServiceRequest, error) {
	current, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, repository.ErrRequestNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, fmt.Errorf("failed to get request: %w", err)
	}

	if current.UserID != actorID && (current.ExpertID == nil || *current.ExpertID != actorID) {
		return nil, ErrUnauthorized
	}

	// Авторизация выше - только подсказка; сам переход охраняется
	// условным UPDATE и повторная проверка статуса происходит в БД
	if err := s.requestRepo.Reject(ctx, requestID); err != nil {
		if errors.Is(err, repository.ErrGuardFailed) {
			return nil, s.resolveRejectFailure(ctx, requestID)
		}
		return nil, fmt.Errorf("failed to reject request: %w", err)
	}

	metrics.RequestsRejected.Inc()

	request, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to get request after reject: %w", err)
	}

	s.publishRequestEvent(ctx, entity.RequestEvent{
		EventType: entity.EventRequestRejected,
		RequestID: request.ID,
		UserID:    request.UserID,
		ExpertID:  request.ExpertID,
		Status:    request.Status,
		Timestamp: time.Now(),
	})

	return request, nil
}

// SetFeedback устанавливает оценку и отзыв на done заявке.
// Повторный вызов перезаписывает прежние значения; после каждой записи
// репутация эксперта пересчитывается
func (s *RequestService) SetFeedback(ctx context.Context, requestID uuid.UUID, userID uuid.UUID, req *entity.FeedbackRequest) (*entity.ServiceRequest, error) {
	if req.Rating < 1 || req.Rating > 5 {
		return nil, ErrValidation
	}

	err := s.requestRepo.SetFeedback(ctx, requestID, userID, req.Rating, req.Feedback)
	if err != nil {
		if errors.Is(err, repository.ErrGuardFailed) {
			return nil, s.resolveFeedbackFailure(ctx, requestID, userID)
		}
		return nil, fmt.Errorf("failed to set feedback: %w", err)
	}

	metrics.FeedbackSubmitted.Inc()
	metrics.FeedbackRating.Observe(float64(req.Rating))

	request, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to get request after feedback: %w", err)
	}

	// Пересчет репутации не связан транзакционно с записью отзыва:
	// короткое окно несогласованности закрывается worker-ом
	if request.ExpertID != nil {
		if _, err := s.reputationSvc.Recompute(ctx, *request.ExpertID); err != nil {
			logger.Error().Err(err).
				Str("expert_id", request.ExpertID.String()).
				Msg("Failed to recompute expert reputation")
		}
	}

	s.publishRequestEvent(ctx, entity.RequestEvent{
		EventType: entity.EventRequestFeedback,
		RequestID: request.ID,
		UserID:    request.UserID,
		ExpertID:  request.ExpertID,
		Status:    request.Status,
		Rating:    request.Rating,
		Timestamp: time.Now(),
	})

	return request, nil
}

// resolveAssignFailure выясняет причину несработавшего guard назначения
func (s *RequestService) resolveAssignFailure(ctx context.Context, requestID uuid.UUID) error {
	if _, err := s.requestRepo.GetByID(ctx, requestID); err != nil {
		if errors.Is(err, repository.ErrRequestNotFound) {
			return ErrRequestNotFound
		}
		return fmt.Errorf("failed to resolve assign failure: %w", err)
	}

	// Заявка существует, но занята другим экспертом или уже закрыта
	return ErrConflict
}

// resolveCompleteFailure выясняет причину несработавшего guard завершения
func (s *RequestService) resolveCompleteFailure(ctx context.Context, requestID uuid.UUID, expertID uuid.UUID) error {
	current, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, repository.ErrRequestNotFound) {
			return ErrRequestNotFound
		}
		return fmt.Errorf("failed to resolve complete failure: %w", err)
	}

	if current.ExpertID == nil {
		// Незанятую заявку завершить нельзя в принципе
		return ErrPreconditionFailed
	}
	if *current.ExpertID != expertID {
		return ErrUnauthorized
	}
	return ErrConflict
}

// resolveRejectFailure выясняет причину несработавшего guard отклонения
func (s *RequestService) resolveRejectFailure(ctx context.Context, requestID uuid.UUID) error {
	_, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, repository.ErrRequestNotFound) {
			return ErrRequestNotFound
		}
		return fmt.Errorf("failed to resolve reject failure: %w", err)
	}

	// Заявка уже в финальном статусе
	return ErrConflict
}

// resolveFeedbackFailure выясняет причину несработавшего guard отзыва
func (s *RequestService) resolveFeedbackFailure(ctx context.Context, requestID uuid.UUID, userID uuid.UUID) error {
	current, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, repository.ErrRequestNotFound) {
			return ErrRequestNotFound
		}
		return fmt.Errorf("failed to resolve feedback failure: %w", err)
	}

	if current.UserID != userID {
		return ErrUnauthorized
	}
	if current.Status != entity.RequestStatusDone {
		// Оценивать можно только завершенную работу
		return ErrPreconditionFailed
	}
	return ErrConflict
}

// publishRequestEvent отправляет событие о заявке в Kafka.
// Ошибки публикации логируются и не откатывают выполненную запись
func (s *RequestService) publishRequestEvent(ctx context.Context, event entity.RequestEvent) {
	eventData, err := json.Marshal(event)
	if err != nil {
		logger.Error().Err(err).
			Str("event_type", event.EventType).
			Msg("Failed to marshal request event")
		return
	}

	// Ключ = RequestID для партиционирования
	if err := s.kafkaProducer.PublishMessage(ctx, event.RequestID.String(), eventData); err != nil {
		logger.Error().Err(err).
			Str("event_type", event.EventType).
			Str("request_id", event.RequestID.String()).
			Msg("Failed to publish request event")
	}
}
