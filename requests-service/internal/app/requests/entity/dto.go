package entity

import (
	"time"

	"github.com/google/uuid"
)

type CreateRequestRequest struct {
	ServiceName      string    `json:"service_name" validate:"required"`
	Description      string    `json:"service_des" validate:"required"`
	Date             string    `json:"date" validate:"required"`
	Time             string    `json:"time" validate:"required"`
	Longitude        *float64  `json:"longitude" validate:"omitempty,gte=-180,lte=180"`
	Latitude         *float64  `json:"latitude" validate:"omitempty,gte=-90,lte=90"`
	FemalePreference bool      `json:"female_preference"`
	UserName         string    `json:"user_name"`
	MobileNo         string    `json:"mobile_no"`
	Email            string    `json:"email" validate:"omitempty,email"`
	Address          string    `json:"address"`
}

type CompleteRequestRequest struct {
	PaymentAmount float64    `json:"payment_amount" validate:"gte=0"`
	PaymentType   string     `json:"payment_type" validate:"required"`
	Remarks       string     `json:"remarks"`
	SolvedDate    *time.Time `json:"solved_date"`
}

type FeedbackRequest struct {
	Rating   int    `json:"rating" validate:"required,gte=1,lte=5"`
	Feedback string `json:"feedback"`
}

type BatchGetRequest struct {
	IDs []uuid.UUID `json:"ids" validate:"required,min=1,max=100"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// PendingRequestResponse - заявка из пула с расстоянием до эксперта,
// DistanceKm заполняется только в гео-выборке
type PendingRequestResponse struct {
	ServiceRequest
	DistanceKm *float64 `json:"distance_km,omitempty"`
}

// HistoryItemResponse - запись истории, объединенная с живой заявкой
type HistoryItemResponse struct {
	ServiceID   uuid.UUID  `json:"service_id"`
	ServiceName string     `json:"service_name"`
	Date        string     `json:"date"`
	ExpertID    *uuid.UUID `json:"expert_id,omitempty"`
	Status      string     `json:"status"`
	Rating      *int       `json:"rating,omitempty"`
	SolvedDate  *time.Time `json:"solved_date,omitempty"`
}

// HistoryStatsResponse - счетчики по объединенной истории пользователя
type HistoryStatsResponse struct {
	Total     int `json:"total"`
	Pending   int `json:"pending"`
	Completed int `json:"completed"`
	Rejected  int `json:"rejected"`
}

type UserHistoryResponse struct {
	Items []HistoryItemResponse `json:"items"`
	Stats HistoryStatsResponse  `json:"stats"`
}

// CompletedStatsResponse - финансовые агрегаты по завершенным заявкам эксперта
type CompletedStatsResponse struct {
	Count         int     `json:"count"`
	TotalRevenue  float64 `json:"total_revenue"`
	AveragePerJob float64 `json:"average_per_job"`
}

type ExpertCompletedResponse struct {
	Requests []ServiceRequest       `json:"requests"`
	Stats    CompletedStatsResponse `json:"stats"`
}

type ReputationResponse struct {
	ExpertID    uuid.UUID `json:"expert_id"`
	Rating      *float64  `json:"rating,omitempty"`
	RatingCount int       `json:"rating_count"`
}
