package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// =============================================================================
// HTTP Метрики (общие для всех сервисов)
// =============================================================================

// HttpRequestsTotal - счётчик всех HTTP запросов
// Labels: service, method, path, status
// Пример запроса PromQL: rate(http_requests_total{service="requests"}[5m])
var HttpRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	},
	[]string{"service", "method", "path", "status"},
)

// HttpRequestDuration - гистограмма времени ответа
// Labels: service, method, path
// Пример: histogram_quantile(0.95, rate(http_request_duration_seconds_bucket[5m]))
var HttpRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name: "http_request_duration_seconds",
		Help: "Duration of HTTP requests in seconds",
		// Бакеты для микросервисов: от 1ms до 10s
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	},
	[]string{"service", "method", "path"},
)

// HttpRequestsInFlight - текущее количество обрабатываемых запросов
var HttpRequestsInFlight = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "http_requests_in_flight",
		Help: "Current number of HTTP requests being processed",
	},
	[]string{"service"},
)

// =============================================================================
// Database Метрики
// =============================================================================

// DbQueryDuration - время выполнения SQL запросов
var DbQueryDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "db_query_duration_seconds",
		Help:    "Duration of database queries in seconds",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	},
	[]string{"service", "operation", "table"},
)

// DbConnectionsOpen - количество открытых соединений с БД
var DbConnectionsOpen = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "db_connections_open",
		Help: "Number of open database connections",
	},
	[]string{"service", "state"}, // state: idle, in_use
)

// DbErrors - счётчик ошибок базы данных
var DbErrors = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "db_errors_total",
		Help: "Total number of database errors",
	},
	[]string{"service", "operation"},
)

// =============================================================================
// Redis Метрики
// =============================================================================

// RedisCacheHits - попадания в кеш
var RedisCacheHits = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "redis_cache_hits_total",
		Help: "Total number of Redis cache hits",
	},
	[]string{"service", "key_prefix"},
)

// RedisCacheMisses - промахи кеша
var RedisCacheMisses = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "redis_cache_misses_total",
		Help: "Total number of Redis cache misses",
	},
	[]string{"service", "key_prefix"},
)

// RedisOperationDuration - время операций Redis
var RedisOperationDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "redis_operation_duration_seconds",
		Help:    "Duration of Redis operations in seconds",
		Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
	},
	[]string{"service", "operation"}, // operation: get, set, del, etc.
)

// RedisErrors - ошибки Redis
var RedisErrors = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "redis_errors_total",
		Help: "Total number of Redis errors",
	},
	[]string{"service", "operation"},
)

// =============================================================================
// Kafka Метрики
// =============================================================================

// KafkaMessagesProduced - отправленные сообщения
var KafkaMessagesProduced = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "kafka_messages_produced_total",
		Help: "Total number of Kafka messages produced",
	},
	[]string{"service", "topic"},
)

// KafkaMessagesConsumed - полученные сообщения
var KafkaMessagesConsumed = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "kafka_messages_consumed_total",
		Help: "Total number of Kafka messages consumed",
	},
	[]string{"service", "topic", "group"},
)

// KafkaProduceDuration - время отправки сообщения
var KafkaProduceDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "kafka_produce_duration_seconds",
		Help:    "Duration of Kafka produce operations",
		Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
	},
	[]string{"service", "topic"},
)

// KafkaConsumeDuration - время обработки сообщения
var KafkaConsumeDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "kafka_consume_duration_seconds",
		Help:    "Duration of Kafka message processing",
		Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10},
	},
	[]string{"service", "topic"},
)

// KafkaErrors - ошибки Kafka
var KafkaErrors = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "kafka_errors_total",
		Help: "Total number of Kafka errors",
	},
	[]string{"service", "topic", "operation"}, // operation: produce, consume
)

// =============================================================================
// Business Метрики (специфичные для ExpertAid)
// =============================================================================

// --- Requests Service ---

// RequestsCreated - созданные заявки
var RequestsCreated = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: "requests_created_total",
		Help: "Total number of service requests created",
	},
)

// RequestsAccepted - попытки принятия заявки экспертом
var RequestsAccepted = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "requests_accepted_total",
		Help: "Total number of request accept attempts",
	},
	[]string{"outcome"}, // won, conflict
)

// RequestsCompleted - завершённые заявки
var RequestsCompleted = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: "requests_completed_total",
		Help: "Total number of service requests completed",
	},
)

// RequestsRejected - отклонённые заявки
var RequestsRejected = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: "requests_rejected_total",
		Help: "Total number of service requests rejected",
	},
)

// FeedbackSubmitted - оставленные отзывы (включая повторные правки)
var FeedbackSubmitted = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: "feedback_submitted_total",
		Help: "Total number of feedback submissions",
	},
)

// FeedbackRating - распределение оценок
var FeedbackRating = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Name:    "feedback_rating",
		Help:    "Distribution of feedback ratings",
		Buckets: []float64{1, 2, 3, 4, 5},
	},
)

// RequestsByStatus - заявки по статусам
var RequestsByStatus = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "requests_by_status",
		Help: "Number of service requests by status",
	},
	[]string{"status"}, // pending, done, rejected
)

// --- Reputation Worker ---

// ReputationRecomputes - пересчёты репутации экспертов
var ReputationRecomputes = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "reputation_recomputes_total",
		Help: "Total number of expert reputation recomputations",
	},
	[]string{"trigger", "status"}, // trigger: event, cron; status: success, failed
)

// ReputationSweepDuration - время полного обхода репутаций по cron
var ReputationSweepDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Name:    "reputation_sweep_duration_seconds",
		Help:    "Duration of the full reputation reconciliation sweep",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
	},
)

// WorkerEventsProcessed - обработанные события заявок
var WorkerEventsProcessed = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "worker_request_events_processed_total",
		Help: "Total number of request events processed by worker",
	},
	[]string{"event_type", "status"}, // status: success, failed, skipped
)
