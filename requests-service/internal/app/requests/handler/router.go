package handler

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"expertaid/pkg/logger"
	"expertaid/pkg/metrics"
)

// SetupRoutes настраивает все маршруты Requests Service с использованием Gin
func SetupRoutes(requestHandler *RequestHandler, expertHandler *ExpertHandler, authMiddleware *AuthMiddleware) *gin.Engine {
	router := gin.New()

	// Recovery middleware для обработки panic
	router.Use(gin.Recovery())

	// JSON logging middleware для HTTP-запросов
	router.Use(logger.GinLoggerMiddleware())

	// Prometheus metrics middleware
	router.Use(metrics.GinPrometheusMiddleware("requests-service"))

	// CORS настройки
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"https://*", "http://*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposeHeaders:    []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "requests-service",
		})
	})

	// Prometheus metrics endpoint
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Эндпоинты заявок - все требуют аутентификации
	requests := router.Group("/requests")
	requests.Use(authMiddleware.Authenticate())
	{
		requests.POST("", requestHandler.CreateRequest)
		requests.POST("/batch", requestHandler.GetRequestsBatch)
		requests.GET("/:id", requestHandler.GetRequest)
		requests.POST("/:id/reject", requestHandler.RejectRequest)
		requests.PUT("/:id/feedback", requestHandler.SetFeedback)

		// Пул и операции принятия/завершения доступны только экспертам
		requests.GET("/pending", authMiddleware.RequireRole("expert"), requestHandler.ListPending)
		requests.POST("/:id/accept", authMiddleware.RequireRole("expert"), requestHandler.AcceptRequest)
		requests.POST("/:id/complete", authMiddleware.RequireRole("expert"), requestHandler.CompleteRequest)
	}

	// История пользователя
	users := router.Group("/users")
	users.Use(authMiddleware.Authenticate())
	{
		users.GET("/me/history", expertHandler.GetUserHistory)
	}

	// Витрины эксперта и репутация
	experts := router.Group("/experts")
	experts.Use(authMiddleware.Authenticate())
	{
		experts.GET("/me/pending", authMiddleware.RequireRole("expert"), expertHandler.GetExpertQueue)
		experts.GET("/me/completed", authMiddleware.RequireRole("expert"), expertHandler.GetExpertCompleted)
		experts.GET("/:id/reputation", expertHandler.GetReputation)
	}

	return router
}
