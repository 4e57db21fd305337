package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config содержит все настройки приложения Reputation Worker Service
// Включает конфигурацию для PostgreSQL, Redis, Kafka и расписания сверки
type Config struct {
	Database     DatabaseConfig
	Redis        RedisConfig
	Kafka        KafkaConfig
	CronSchedule CronScheduleConfig
	HTTPPort     string
}

// DatabaseConfig - настройки подключения к PostgreSQL Requests Service
// Worker читает заявки только для агрегации оценок
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string // requests_service
	SSLMode  string
}

// RedisConfig - настройки подключения к Redis
// Worker пишет материализованную репутацию в тот же кеш,
// который читает requests-service
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	TTL      time.Duration // TTL записей репутации
}

// KafkaConfig - настройки Kafka для подписки на события заявок
type KafkaConfig struct {
	Brokers  []string
	Topic    string // request_events
	GroupID  string
	MinBytes int
	MaxBytes int
}

// CronScheduleConfig - настройки расписания сверки репутаций
type CronScheduleConfig struct {
	Reconcile string // например, "@every 10m"
}

// Load загружает конфигурацию из переменных окружения
func Load() (*Config, error) {
	ttlMinutes := getEnvInt("REDIS_TTL_MINUTES", 30)

	return &Config{
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "requests_service"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0), // Та же БД, что у requests-service
			TTL:      time.Duration(ttlMinutes) * time.Minute,
		},
		Kafka: KafkaConfig{
			Brokers:  []string{getEnv("KAFKA_BROKERS", "localhost:9092")},
			Topic:    getEnv("KAFKA_TOPIC", "request_events"),
			GroupID:  getEnv("KAFKA_GROUP_ID", "reputation-worker-group"),
			MinBytes: getEnvInt("KAFKA_MIN_BYTES", 1),
			MaxBytes: getEnvInt("KAFKA_MAX_BYTES", 10e6),
		},
		CronSchedule: CronScheduleConfig{
			// По умолчанию сверяем все репутации каждые 10 минут
			Reconcile: getEnv("CRON_RECONCILE", "@every 10m"),
		},
		HTTPPort: getEnv("HTTP_PORT", "8084"),
	}, nil
}

// DSN возвращает строку подключения к PostgreSQL в формате libpq
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// Address возвращает адрес Redis в формате host:port
func (c *RedisConfig) Address() string {
	return c.Host + ":" + c.Port
}

// getEnv получает значение переменной окружения или возвращает значение по умолчанию
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt получает значение переменной окружения как int
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
