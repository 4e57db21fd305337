package service

import (
	"context"

	"github.com/google/uuid"
)

// ReputationServiceInterface определяет интерфейс пересчета репутации
type ReputationServiceInterface interface {
	// RecomputeExpert пересчитывает репутацию одного эксперта
	// по событию из Kafka
	RecomputeExpert(ctx context.Context, expertID uuid.UUID) error
	// ReconcileAll заново выводит репутацию каждого оцененного
	// эксперта из Request Store
	ReconcileAll(ctx context.Context) error
}
