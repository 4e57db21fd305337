package service

import (
	"context"

	"expertaid/requests-service/internal/app/requests/entity"

	"github.com/google/uuid"
)

type RequestServiceInterface interface {
	CreateRequest(ctx context.Context, userID uuid.UUID, req *entity.CreateRequestRequest) (*entity.ServiceRequest, error)
	GetRequest(ctx context.Context, requestID uuid.UUID) (*entity.ServiceRequest, error)
	GetRequestsBatch(ctx context.Context, ids []uuid.UUID) ([]entity.ServiceRequest, error)
	ListPending(ctx context.Context, filter *GeoFilter) ([]entity.PendingRequestResponse, error)
	AcceptRequest(ctx context.Context, requestID uuid.UUID, expertID uuid.UUID) (*entity.ServiceRequest, error)
	CompleteRequest(ctx context.Context, requestID uuid.UUID, expertID uuid.UUID, req *entity.CompleteRequestRequest) (*entity.ServiceRequest, error)
	RejectRequest(ctx context.Context, requestID uuid.UUID, actorID uuid.UUID) (*entity.ServiceRequest, error)
	SetFeedback(ctx context.Context, requestID uuid.UUID, userID uuid.UUID, req *entity.FeedbackRequest) (*entity.ServiceRequest, error)
}

type ReputationServiceInterface interface {
	GetReputation(ctx context.Context, expertID uuid.UUID) (*entity.ExpertReputation, error)
	Recompute(ctx context.Context, expertID uuid.UUID) (*entity.ExpertReputation, error)
}

type ProjectionServiceInterface interface {
	UserHistory(ctx context.Context, userID uuid.UUID) (*entity.UserHistoryResponse, error)
	ExpertQueue(ctx context.Context, expertID uuid.UUID) ([]entity.ServiceRequest, error)
	ExpertCompleted(ctx context.Context, expertID uuid.UUID) (*entity.ExpertCompletedResponse, error)
}
