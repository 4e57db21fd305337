package repository

import (
	"context"
	"errors"
	"time"

	"expertaid/pkg/metrics"
	"expertaid/requests-service/internal/app/requests/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const serviceName = "requests-service"

type requestRepository struct {
	db *gorm.DB // GORM DB для работы с PostgreSQL
}

// NewRequestRepository создает новый репозиторий заявок
func NewRequestRepository(db *gorm.DB) RequestRepository {
	return &requestRepository{db: db}
}

// Create создает новую заявку в PostgreSQL
func (r *requestRepository) Create(ctx context.Context, request *entity.ServiceRequest) error {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpInsert, "service_requests")
	defer timer.ObserveDuration()

	result := r.db.WithContext(ctx).Create(request)
	if result.Error != nil {
		metrics.RecordDbError(serviceName, metrics.DbOpInsert)
	}
	return result.Error
}

// GetByID получает заявку по ID
func (r *requestRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.ServiceRequest, error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpSelect, "service_requests")
	defer timer.ObserveDuration()

	var request entity.ServiceRequest
	result := r.db.WithContext(ctx).First(&request, "id = ?", id)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrRequestNotFound
		}
		metrics.RecordDbError(serviceName, metrics.DbOpSelect)
		return nil, result.Error
	}

	return &request, nil
}

// GetByIDs получает заявки по списку ID одним запросом
func (r *requestRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.ServiceRequest, error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpSelect, "service_requests")
	defer timer.ObserveDuration()

	var requests []entity.ServiceRequest
	result := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&requests)

	if result.Error != nil {
		metrics.RecordDbError(serviceName, metrics.DbOpSelect)
		return nil, result.Error
	}

	return requests, nil
}

// ListPending получает глобальный пул pending заявок, старые первыми
func (r *requestRepository) ListPending(ctx context.Context) ([]entity.ServiceRequest, error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpSelect, "service_requests")
	defer timer.ObserveDuration()

	var requests []entity.ServiceRequest
	result := r.db.WithContext(ctx).
		Where("status = ?", entity.RequestStatusPending).
		Order("created_at ASC").
		Find(&requests)

	if result.Error != nil {
		metrics.RecordDbError(serviceName, metrics.DbOpSelect)
		return nil, result.Error
	}

	return requests, nil
}

// ListPendingByExpert получает очередь принятых заявок эксперта
func (r *requestRepository) ListPendingByExpert(ctx context.Context, expertID uuid.UUID) ([]entity.ServiceRequest, error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpSelect, "service_requests")
	defer timer.ObserveDuration()

	var requests []entity.ServiceRequest
	result := r.db.WithContext(ctx).
		Where("status = ? AND expert_id = ?", entity.RequestStatusPending, expertID).
		Order("created_at ASC").
		Find(&requests)

	if result.Error != nil {
		metrics.RecordDbError(serviceName, metrics.DbOpSelect)
		return nil, result.Error
	}

	return requests, nil
}

// ListDoneByExpert получает завершенные заявки эксперта, свежие первыми
func (r *requestRepository) ListDoneByExpert(ctx context.Context, expertID uuid.UUID) ([]entity.ServiceRequest, error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpSelect, "service_requests")
	defer timer.ObserveDuration()

	var requests []entity.ServiceRequest
	result := r.db.WithContext(ctx).
		Where("status = ? AND expert_id = ?", entity.RequestStatusDone, expertID).
		Order("solved_date DESC").
		Find(&requests)

	if result.Error != nil {
		metrics.RecordDbError(serviceName, metrics.DbOpSelect)
		return nil, result.Error
	}

	return requests, nil
}

// Assign назначает эксперта на заявку условным UPDATE.
// Guard: status = pending и expert_id еще не установлен. При гонке
// двух экспертов строка достанется ровно одному, второй получит
// ErrGuardFailed
func (r *requestRepository) Assign(ctx context.Context, id uuid.UUID, expertID uuid.UUID) error {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpUpdate, "service_requests")
	defer timer.ObserveDuration()

	result := r.db.WithContext(ctx).Model(&entity.ServiceRequest{}).
		Where("id = ? AND status = ? AND expert_id IS NULL", id, entity.RequestStatusPending).
		Update("expert_id", expertID)

	if result.Error != nil {
		metrics.RecordDbError(serviceName, metrics.DbOpUpdate)
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrGuardFailed
	}

	return nil
}

// Complete переводит заявку в done вместе с полями завершения.
// Guard: status = pending и заявка назначена именно этому эксперту
func (r *requestRepository) Complete(ctx context.Context, id uuid.UUID, expertID uuid.UUID, amount float64, paymentType, remarks string, solvedDate time.Time) error {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpUpdate, "service_requests")
	defer timer.ObserveDuration()

	result := r.db.WithContext(ctx).Model(&entity.ServiceRequest{}).
		Where("id = ? AND status = ? AND expert_id = ?", id, entity.RequestStatusPending, expertID).
		Updates(map[string]interface{}{
			"status":         entity.RequestStatusDone,
			"payment_amount": amount,
			"payment_type":   paymentType,
			"remarks":        remarks,
			"solved_date":    solvedDate,
		})

	if result.Error != nil {
		metrics.RecordDbError(serviceName, metrics.DbOpUpdate)
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrGuardFailed
	}

	return nil
}

// Reject переводит pending заявку в rejected. Финальные статусы
// guard не пропускает
func (r *requestRepository) Reject(ctx context.Context, id uuid.UUID) error {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpUpdate, "service_requests")
	defer timer.ObserveDuration()

	result := r.db.WithContext(ctx).Model(&entity.ServiceRequest{}).
		Where("id = ? AND status = ?", id, entity.RequestStatusPending).
		Update("status", entity.RequestStatusRejected)

	if result.Error != nil {
		metrics.RecordDbError(serviceName, metrics.DbOpUpdate)
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrGuardFailed
	}

	return nil
}

// SetFeedback перезаписывает оценку и текст отзыва на done заявке.
// Повторный вызов с новыми значениями легален (last-write-wins)
func (r *requestRepository) SetFeedback(ctx context.Context, id uuid.UUID, userID uuid.UUID, rating int, feedback string) error {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpUpdate, "service_requests")
	defer timer.ObserveDuration()

	result := r.db.WithContext(ctx).Model(&entity.ServiceRequest{}).
		Where("id = ? AND status = ? AND user_id = ?", id, entity.RequestStatusDone, userID).
		Updates(map[string]interface{}{
			"rating":   rating,
			"feedback": feedback,
		})

	if result.Error != nil {
		metrics.RecordDbError(serviceName, metrics.DbOpUpdate)
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrGuardFailed
	}

	return nil
}

// ExpertRatingStats считает среднее и количество оценок эксперта
// по done заявкам с установленным rating
func (r *requestRepository) ExpertRatingStats(ctx context.Context, expertID uuid.UUID) (*entity.ExpertRatingStats, error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpSelect, "service_requests")
	defer timer.ObserveDuration()

	var stats entity.ExpertRatingStats
	result := r.db.WithContext(ctx).Model(&entity.ServiceRequest{}).
		Select("COALESCE(AVG(rating), 0) AS average, COUNT(rating) AS count").
		Where("expert_id = ? AND status = ? AND rating IS NOT NULL", expertID, entity.RequestStatusDone).
		Scan(&stats)

	if result.Error != nil {
		metrics.RecordDbError(serviceName, metrics.DbOpSelect)
		return nil, result.Error
	}

	return &stats, nil
}
