package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"expertaid/reputation-worker-service/internal/app/reputation-worker/config"
	"expertaid/reputation-worker-service/internal/app/reputation-worker/handler"
	"expertaid/reputation-worker-service/internal/app/reputation-worker/processor"
	"expertaid/reputation-worker-service/internal/app/reputation-worker/repository"
	"expertaid/reputation-worker-service/internal/app/reputation-worker/service"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

func main() {
	log.Println("Starting Reputation Worker Service...")

	// === ИНИЦИАЛИЗАЦИЯ КОНФИГУРАЦИИ ===
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Создаем основной контекст приложения
	ctx := context.Background()

	// === ПОДКЛЮЧЕНИЕ К POSTGRESQL ===
	// Worker читает БД Requests Service только для агрегации оценок
	pool, err := connectDB(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()
	log.Println("Successfully connected to PostgreSQL (requests_service)")

	// === ПОДКЛЮЧЕНИЕ К REDIS ===
	// В Redis хранится материализованная репутация экспертов
	redisClient, err := connectRedis(ctx, cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()
	log.Println("Successfully connected to Redis")

	// === ИНИЦИАЛИЗАЦИЯ РЕПОЗИТОРИЕВ ===
	ratingRepo := repository.NewRatingRepository(pool)
	reputationStore := repository.NewReputationStore(redisClient, cfg.Redis.TTL)
	log.Println("Repositories initialized")

	// === ИНИЦИАЛИЗАЦИЯ СЕРВИСОВ ===
	reputationSvc := service.NewReputationService(ratingRepo, reputationStore)
	log.Println("Services initialized")

	// === ИНИЦИАЛИЗАЦИЯ KAFKA CONSUMER ===
	kafkaConsumer := processor.NewKafkaConsumer(
		cfg.Kafka.Brokers,
		cfg.Kafka.Topic,
		cfg.Kafka.GroupID,
		cfg.Kafka.MinBytes,
		cfg.Kafka.MaxBytes,
		reputationSvc,
	)

	// Запускаем Kafka consumer
	kafkaConsumer.Start(ctx)
	defer kafkaConsumer.Stop()
	log.Printf("Kafka consumer started (topic: %s, group: %s)", cfg.Kafka.Topic, cfg.Kafka.GroupID)

	// === ИНИЦИАЛИЗАЦИЯ CRON SCHEDULER ===
	cronScheduler := processor.NewCronScheduler(reputationSvc)

	// Запускаем cron для периодической сверки репутаций
	if err := cronScheduler.Start(ctx, cfg.CronSchedule.Reconcile); err != nil {
		log.Fatalf("Failed to start cron scheduler: %v", err)
	}
	defer cronScheduler.Stop()
	log.Printf("Cron scheduler started (schedule: %s)", cfg.CronSchedule.Reconcile)

	// === ИНИЦИАЛИЗАЦИЯ HEALTHCHECK HTTP СЕРВЕРА ===
	healthHandler := handler.NewHealthCheckHandler(pool, redisClient)

	mux := http.NewServeMux()
	healthHandler.RegisterRoutes(mux)

	// Prometheus metrics endpoint
	mux.Handle("/metrics", promhttp.Handler())

	httpServer := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: mux,
	}

	// Запускаем HTTP сервер в отдельной горутине
	go func() {
		log.Printf("Starting healthcheck HTTP server on :%s...", cfg.HTTPPort)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("HTTP server error: %v", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		httpServer.Shutdown(shutdownCtx)
	}()
	log.Println("Healthcheck and metrics endpoints available:")
	log.Printf("  - GET http://localhost:%s/health", cfg.HTTPPort)
	log.Printf("  - GET http://localhost:%s/health/readiness", cfg.HTTPPort)
	log.Printf("  - GET http://localhost:%s/health/liveness", cfg.HTTPPort)
	log.Printf("  - GET http://localhost:%s/metrics", cfg.HTTPPort)

	// === ЗАПУСК ЗАВЕРШЕН ===
	log.Println("Reputation Worker Service is running")
	log.Println("Waiting for REQUEST_FEEDBACK events from Kafka...")
	log.Printf("Reputations will be reconciled according to schedule: %s", cfg.CronSchedule.Reconcile)

	// === GRACEFUL SHUTDOWN ===
	// Ожидаем сигнала завершения (SIGINT или SIGTERM)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down Reputation Worker Service...")
	log.Println("Reputation Worker Service stopped gracefully")
}

// connectDB устанавливает соединение с PostgreSQL через pgxpool
func connectDB(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	poolConfig.MaxConns = 10
	poolConfig.MinConns = 2
	poolConfig.MaxConnLifetime = 5 * time.Minute
	poolConfig.MaxConnIdleTime = 1 * time.Minute

	// Retry logic для устойчивости при запуске в Docker
	var pool *pgxpool.Pool

	for i := 0; i < 10; i++ {
		pool, err = pgxpool.NewWithConfig(ctx, poolConfig)
		if err == nil {
			if pingErr := pool.Ping(ctx); pingErr != nil {
				err = pingErr
				pool.Close()
			} else {
				return pool, nil
			}
		}
		log.Printf("Failed to connect to database (attempt %d/10): %v", i+1, err)
		time.Sleep(3 * time.Second)
	}

	return nil, fmt.Errorf("failed to connect after 10 attempts: %w", err)
}

// connectRedis устанавливает соединение с Redis
func connectRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Address(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 5,
	})

	// Проверяем соединение с retry logic
	for i := 0; i < 10; i++ {
		if err := client.Ping(ctx).Err(); err == nil {
			return client, nil
		}
		log.Printf("Failed to connect to Redis (attempt %d/10)", i+1)
		time.Sleep(3 * time.Second)
	}

	return nil, fmt.Errorf("failed to connect to Redis after 10 attempts")
}
