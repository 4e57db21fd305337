package entity

import (
	"time"

	"github.com/google/uuid"
)

// RequestEvent - событие жизненного цикла заявки из топика request_events.
// Формат должен совпадать с producer в requests-service
type RequestEvent struct {
	EventType string     `json:"event_type"`
	RequestID uuid.UUID  `json:"request_id"`
	UserID    uuid.UUID  `json:"user_id"`
	ExpertID  *uuid.UUID `json:"expert_id,omitempty"`
	Status    string     `json:"status"`
	Rating    *int       `json:"rating,omitempty"`
	Timestamp time.Time  `json:"timestamp"`
}

const (
	EventRequestCreated   = "REQUEST_CREATED"
	EventRequestAccepted  = "REQUEST_ACCEPTED"
	EventRequestCompleted = "REQUEST_COMPLETED"
	EventRequestRejected  = "REQUEST_REJECTED"
	EventRequestFeedback  = "REQUEST_FEEDBACK"
)

// ExpertReputation - материализованная репутация эксперта.
// Rating nil, когда у эксперта нет ни одной оценки. JSON формат
// совпадает с кешем requests-service
type ExpertReputation struct {
	ExpertID    uuid.UUID `json:"expert_id"`
	Rating      *float64  `json:"rating,omitempty"`
	RatingCount int       `json:"rating_count"`
	ComputedAt  time.Time `json:"computed_at"`
}

// RatingStats - агрегат оценок эксперта из Request Store
type RatingStats struct {
	Average float64
	Count   int64
}

// StatusCount - количество заявок в статусе, для метрик
type StatusCount struct {
	Status string
	Count  int64
}

const (
	// RedisKeyPrefixReputation - префикс ключей репутации: expert_reputation:<uuid>
	RedisKeyPrefixReputation = "expert_reputation:"
)

func GetRedisKeyForReputation(expertID uuid.UUID) string {
	return RedisKeyPrefixReputation + expertID.String()
}
