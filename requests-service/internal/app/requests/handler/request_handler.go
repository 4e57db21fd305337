package handler

import (
	"errors"
	"net/http"
	"strconv"

	"expertaid/requests-service/internal/app/requests/entity"
	"expertaid/requests-service/internal/app/requests/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// RequestHandler обрабатывает HTTP запросы жизненного цикла заявок
type RequestHandler struct {
	requestService service.RequestServiceInterface
	validator      *validator.Validate
}

// NewRequestHandler создает новый обработчик заявок
func NewRequestHandler(requestService service.RequestServiceInterface) *RequestHandler {
	return &RequestHandler{
		requestService: requestService,
		validator:      validator.New(),
	}
}

// CreateRequest обрабатывает POST /requests
// Создает новую заявку в статусе pending
func (h *RequestHandler) CreateRequest(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req entity.CreateRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	// Валидация
	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": formatValidationError(err)})
		return
	}

	request, err := h.requestService.CreateRequest(c.Request.Context(), userID, &req)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing or malformed required fields"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create request"})
		return
	}

	c.JSON(http.StatusCreated, request)
}

// GetRequest обрабатывает GET /requests/{id}
func (h *RequestHandler) GetRequest(c *gin.Context) {
	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request ID"})
		return
	}

	request, err := h.requestService.GetRequest(c.Request.Context(), requestID)
	if err != nil {
		if errors.Is(err, service.ErrRequestNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Request not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get request"})
		return
	}

	c.JSON(http.StatusOK, request)
}

// GetRequestsBatch обрабатывает POST /requests/batch
// Пакетная выборка заявок по списку ID
func (h *RequestHandler) GetRequestsBatch(c *gin.Context) {
	var req entity.BatchGetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": formatValidationError(err)})
		return
	}

	requests, err := h.requestService.GetRequestsBatch(c.Request.Context(), req.IDs)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get requests"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"requests": requests,
		"total":    len(requests),
	})
}

// ListPending обрабатывает GET /requests/pending?lng=&lat=&radius_km=
// Глобальный пул pending заявок, с опциональным гео-фильтром
func (h *RequestHandler) ListPending(c *gin.Context) {
	filter, err := parseGeoFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	requests, err := h.requestService.ListPending(c.Request.Context(), filter)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid geo filter"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list pending requests"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"requests": requests,
		"total":    len(requests),
	})
}

// AcceptRequest обрабатывает POST /requests/{id}/accept
// Назначает текущего эксперта на заявку; при гонке проигравший
// получает 409
func (h *RequestHandler) AcceptRequest(c *gin.Context) {
	expertID, ok := currentUserID(c)
	if !ok {
		return
	}

	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request ID"})
		return
	}

	request, err := h.requestService.AcceptRequest(c.Request.Context(), requestID, expertID)
	if err != nil {
		respondLifecycleError(c, err, "Failed to accept request")
		return
	}

	c.JSON(http.StatusOK, request)
}

// CompleteRequest обрабатывает POST /requests/{id}/complete
// Переводит заявку в done с полями завершения
func (h *RequestHandler) CompleteRequest(c *gin.Context) {
	expertID, ok := currentUserID(c)
	if !ok {
		return
	}

	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request ID"})
		return
	}

	var req entity.CompleteRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": formatValidationError(err)})
		return
	}

	request, err := h.requestService.CompleteRequest(c.Request.Context(), requestID, expertID, &req)
	if err != nil {
		respondLifecycleError(c, err, "Failed to complete request")
		return
	}

	c.JSON(http.StatusOK, request)
}

// RejectRequest обрабатывает POST /requests/{id}/reject
// Отклоняет заявку; доступно заказчику и назначенному эксперту
func (h *RequestHandler) RejectRequest(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		return
	}

	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request ID"})
		return
	}

	request, err := h.requestService.RejectRequest(c.Request.Context(), requestID, actorID)
	if err != nil {
		respondLifecycleError(c, err, "Failed to reject request")
		return
	}

	c.JSON(http.StatusOK, request)
}

// SetFeedback обрабатывает PUT /requests/{id}/feedback
// Устанавливает или перезаписывает оценку и отзыв
func (h *RequestHandler) SetFeedback(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request ID"})
		return
	}

	var req entity.FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": formatValidationError(err)})
		return
	}

	request, err := h.requestService.SetFeedback(c.Request.Context(), requestID, userID, &req)
	if err != nil {
		respondLifecycleError(c, err, "Failed to set feedback")
		return
	}

	c.JSON(http.StatusOK, request)
}

// respondLifecycleError транслирует ошибки service layer в HTTP статусы:
// 404 - нет заявки, 409 - guard не прошел (занята/финальный статус),
// 412 - операция не применима (отзыв до завершения, завершение без
// эксперта), 403 - чужая заявка
func respondLifecycleError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrRequestNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Request not found"})
	case errors.Is(err, service.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "Request already taken or in terminal state"})
	case errors.Is(err, service.ErrPreconditionFailed):
		c.JSON(http.StatusPreconditionFailed, gin.H{"error": "Operation not applicable to current request state"})
	case errors.Is(err, service.ErrUnauthorized):
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
	case errors.Is(err, service.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}

// parseGeoFilter читает опциональные параметры lng/lat/radius_km.
// Либо заданы все три, либо ни одного
func parseGeoFilter(c *gin.Context) (*service.GeoFilter, error) {
	lngStr := c.Query("lng")
	latStr := c.Query("lat")
	radiusStr := c.Query("radius_km")

	if lngStr == "" && latStr == "" && radiusStr == "" {
		return nil, nil
	}

	if lngStr == "" || latStr == "" || radiusStr == "" {
		return nil, errors.New("geo filter requires lng, lat and radius_km together")
	}

	lng, err := strconv.ParseFloat(lngStr, 64)
	if err != nil {
		return nil, errors.New("invalid lng parameter")
	}
	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return nil, errors.New("invalid lat parameter")
	}
	radius, err := strconv.ParseFloat(radiusStr, 64)
	if err != nil {
		return nil, errors.New("invalid radius_km parameter")
	}

	return &service.GeoFilter{
		Longitude: lng,
		Latitude:  lat,
		RadiusKm:  radius,
	}, nil
}

// formatValidationError форматирует ошибки валидации
func formatValidationError(err error) string {
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		for _, fieldError := range validationErrors {
			return fieldError.Field() + " is " + fieldError.Tag()
		}
	}
	return "Validation failed"
}
