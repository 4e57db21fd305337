package handler

import (
	"net/http"

	"expertaid/requests-service/internal/app/requests/entity"
	"expertaid/requests-service/internal/app/requests/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ExpertHandler обрабатывает витрины: история пользователя,
// дашборд эксперта, репутация
type ExpertHandler struct {
	projectionService service.ProjectionServiceInterface
	reputationService service.ReputationServiceInterface
}

// NewExpertHandler создает новый обработчик витрин
func NewExpertHandler(
	projectionService service.ProjectionServiceInterface,
	reputationService service.ReputationServiceInterface,
) *ExpertHandler {
	return &ExpertHandler{
		projectionService: projectionService,
		reputationService: reputationService,
	}
}

// GetUserHistory обрабатывает GET /users/me/history
// История заявок пользователя со счетчиками по статусам
func (h *ExpertHandler) GetUserHistory(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	history, err := h.projectionService.UserHistory(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get history"})
		return
	}

	c.JSON(http.StatusOK, history)
}

// GetExpertQueue обрабатывает GET /experts/me/pending
// Принятые, но не завершенные заявки текущего эксперта
func (h *ExpertHandler) GetExpertQueue(c *gin.Context) {
	expertID, ok := currentUserID(c)
	if !ok {
		return
	}

	requests, err := h.projectionService.ExpertQueue(c.Request.Context(), expertID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get expert queue"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"requests": requests,
		"total":    len(requests),
	})
}

// GetExpertCompleted обрабатывает GET /experts/me/completed
// Завершенные заявки эксперта с финансовыми агрегатами
func (h *ExpertHandler) GetExpertCompleted(c *gin.Context) {
	expertID, ok := currentUserID(c)
	if !ok {
		return
	}

	completed, err := h.projectionService.ExpertCompleted(c.Request.Context(), expertID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get completed requests"})
		return
	}

	c.JSON(http.StatusOK, completed)
}

// GetReputation обрабатывает GET /experts/{id}/reputation
// Средняя оценка эксперта; поле rating отсутствует, пока нет ни
// одного оцененного завершения
func (h *ExpertHandler) GetReputation(c *gin.Context) {
	expertID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid expert ID"})
		return
	}

	reputation, err := h.reputationService.GetReputation(c.Request.Context(), expertID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get reputation"})
		return
	}

	c.JSON(http.StatusOK, entity.ReputationResponse{
		ExpertID:    reputation.ExpertID,
		Rating:      reputation.Rating,
		RatingCount: reputation.RatingCount,
	})
}
