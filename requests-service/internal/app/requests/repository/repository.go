package repository

import (
	"context"
	"errors"
	"time"

	"expertaid/requests-service/internal/app/requests/entity"

	"github.com/google/uuid"
)

var (
	// Стандартные ошибки репозитория для обработки в service layer
	ErrRequestNotFound = errors.New("service request not found")
	// ErrGuardFailed - условный UPDATE не затронул ни одной строки:
	// либо заявки нет, либо ее текущее состояние не прошло guard.
	// Разделение делает service layer повторным чтением
	ErrGuardFailed = errors.New("conditional update guard failed")
)

// RequestRepository интерфейс для работы с заявками в PostgreSQL.
// Все мутации - одиночные условные UPDATE: guard перепроверяется
// атомарно на стороне БД, никакого read-then-write
type RequestRepository interface {
	Create(ctx context.Context, request *entity.ServiceRequest) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.ServiceRequest, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.ServiceRequest, error)

	// ListPending возвращает весь пул pending заявок, старые первыми
	ListPending(ctx context.Context) ([]entity.ServiceRequest, error)
	// ListPendingByExpert - принятые, но не завершенные заявки эксперта
	ListPendingByExpert(ctx context.Context, expertID uuid.UUID) ([]entity.ServiceRequest, error)
	// ListDoneByExpert - завершенные заявки эксперта, свежие первыми
	ListDoneByExpert(ctx context.Context, expertID uuid.UUID) ([]entity.ServiceRequest, error)

	// Assign устанавливает expert_id, если заявка pending и никем не занята
	Assign(ctx context.Context, id uuid.UUID, expertID uuid.UUID) error
	// Complete переводит заявку в done с полями завершения,
	// если она pending и назначена именно этому эксперту
	Complete(ctx context.Context, id uuid.UUID, expertID uuid.UUID, amount float64, paymentType, remarks string, solvedDate time.Time) error
	// Reject переводит pending заявку в rejected
	Reject(ctx context.Context, id uuid.UUID) error
	// SetFeedback перезаписывает оценку и отзыв на done заявке владельца
	SetFeedback(ctx context.Context, id uuid.UUID, userID uuid.UUID, rating int, feedback string) error

	// ExpertRatingStats считает среднее и количество оценок по done заявкам
	ExpertRatingStats(ctx context.Context, expertID uuid.UUID) (*entity.ExpertRatingStats, error)
}

// HistoryRepository интерфейс для работы с историей пользователей в MongoDB
type HistoryRepository interface {
	// Append добавляет запись истории; вызывается ровно один раз на заявку
	Append(ctx context.Context, entry *entity.HistoryEntry) error
	// ListByUser возвращает записи истории пользователя, свежие первыми
	ListByUser(ctx context.Context, userID uuid.UUID) ([]entity.HistoryEntry, error)
}

// ReputationCache интерфейс для кеша репутации экспертов в Redis
type ReputationCache interface {
	Get(ctx context.Context, expertID uuid.UUID) (*entity.ExpertReputation, error)
	Set(ctx context.Context, reputation *entity.ExpertReputation) error
	Delete(ctx context.Context, expertID uuid.UUID) error
}
