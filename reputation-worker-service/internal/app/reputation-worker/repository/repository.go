package repository

import (
	"context"

	"expertaid/reputation-worker-service/internal/app/reputation-worker/entity"

	"github.com/google/uuid"
)

// RatingRepository интерфейс чтения агрегатов оценок из PostgreSQL.
// Worker ничего не пишет в Request Store - только читает
type RatingRepository interface {
	// ExpertRatingStats считает среднее и количество оценок
	// по завершенным и оцененным заявкам эксперта
	ExpertRatingStats(ctx context.Context, expertID uuid.UUID) (*entity.RatingStats, error)

	// ListRatedExperts возвращает всех экспертов, у которых есть
	// хотя бы одна оцененная завершенная заявка
	ListRatedExperts(ctx context.Context) ([]uuid.UUID, error)

	// CountByStatus возвращает количество заявок в каждом статусе
	CountByStatus(ctx context.Context) ([]entity.StatusCount, error)
}

// ReputationStore интерфейс записи материализованной репутации в Redis
type ReputationStore interface {
	Get(ctx context.Context, expertID uuid.UUID) (*entity.ExpertReputation, error)
	Set(ctx context.Context, reputation *entity.ExpertReputation) error
	Delete(ctx context.Context, expertID uuid.UUID) error
}
