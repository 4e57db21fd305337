package repository

import (
	"context"
	"fmt"

	"expertaid/reputation-worker-service/internal/app/reputation-worker/entity"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ratingRepository реализует RatingRepository поверх pgx connection pool.
// Читает ту же таблицу service_requests, которую ведет requests-service
type ratingRepository struct {
	pool *pgxpool.Pool
}

// NewRatingRepository создает новый репозиторий агрегатов оценок
func NewRatingRepository(pool *pgxpool.Pool) RatingRepository {
	return &ratingRepository{pool: pool}
}

// ExpertRatingStats считает среднее и количество оценок эксперта.
// COALESCE дает 0 при отсутствии строк; отсутствие различается по Count
func (r *ratingRepository) ExpertRatingStats(ctx context.Context, expertID uuid.UUID) (*entity.RatingStats, error) {
	var stats entity.RatingStats

	err := r.pool.QueryRow(ctx,
		`SELECT COALESCE(AVG(rating), 0), COUNT(rating)
		 FROM service_requests
		 WHERE expert_id = $1 AND status = 'done' AND rating IS NOT NULL`,
		expertID,
	).Scan(&stats.Average, &stats.Count)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate expert ratings: %w", err)
	}

	return &stats, nil
}

// ListRatedExperts возвращает экспертов с хотя бы одной оценкой
func (r *ratingRepository) ListRatedExperts(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT DISTINCT expert_id
		 FROM service_requests
		 WHERE expert_id IS NOT NULL AND status = 'done' AND rating IS NOT NULL`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list rated experts: %w", err)
	}
	defer rows.Close()

	var experts []uuid.UUID
	for rows.Next() {
		var expertID uuid.UUID
		if err := rows.Scan(&expertID); err != nil {
			return nil, fmt.Errorf("failed to scan expert id: %w", err)
		}
		experts = append(experts, expertID)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rated experts: %w", err)
	}

	return experts, nil
}

// CountByStatus возвращает количество заявок по статусам
func (r *ratingRepository) CountByStatus(ctx context.Context) ([]entity.StatusCount, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT status, COUNT(*) FROM service_requests GROUP BY status`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to count requests by status: %w", err)
	}
	defer rows.Close()

	var counts []entity.StatusCount
	for rows.Next() {
		var sc entity.StatusCount
		if err := rows.Scan(&sc.Status, &sc.Count); err != nil {
			return nil, fmt.Errorf("failed to scan status count: %w", err)
		}
		counts = append(counts, sc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate status counts: %w", err)
	}

	return counts, nil
}
