package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config содержит все настройки Audit Worker Service
type Config struct {
	Server    ServerConfig
	MongoDB   MongoDBConfig
	Kafka     KafkaConfig
	Retention RetentionConfig
	LogLevel  string
}

// ServerConfig - настройки HTTP сервера (healthcheck и метрики)
type ServerConfig struct {
	Host string
	Port string
}

// MongoDBConfig - настройки подключения к MongoDB
type MongoDBConfig struct {
	URI      string
	Database string
}

// KafkaConfig - настройки чтения событий каталога
type KafkaConfig struct {
	Brokers  []string
	Topic    string
	GroupID  string
	MinBytes int
	MaxBytes int
}

// RetentionConfig - политика хранения журнала аудита
type RetentionConfig struct {
	Schedule string // cron выражение для чистки
	Days     int    // записи старше удаляются
}

// Load загружает конфигурацию из .env файла и переменных окружения.
// Переменные окружения имеют приоритет над .env.
func Load() (*Config, error) {
	// .env опционален: в Docker конфигурация приходит через environment
	_ = godotenv.Load()

	retentionDays, err := strconv.Atoi(getEnv("AUDIT_RETENTION_DAYS", "90"))
	if err != nil || retentionDays < 1 {
		return nil, fmt.Errorf("invalid AUDIT_RETENTION_DAYS value: %q", getEnv("AUDIT_RETENTION_DAYS", "90"))
	}

	return &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnv("SERVER_PORT", "8081"),
		},
		MongoDB: MongoDBConfig{
			URI:      getEnv("MONGODB_URI", "mongodb://localhost:27017"),
			Database: getEnv("MONGODB_DATABASE", "pinemarket_audit"),
		},
		Kafka: KafkaConfig{
			Brokers:  []string{getEnv("KAFKA_BROKERS", "localhost:9092")},
			Topic:    getEnv("KAFKA_TOPIC", "catalog_events"),
			GroupID:  getEnv("KAFKA_GROUP_ID", "audit-worker"),
			MinBytes: 1,
			MaxBytes: 10e6,
		},
		Retention: RetentionConfig{
			// Каждый день в 03:00
			Schedule: getEnv("RETENTION_SCHEDULE", "0 3 * * *"),
			Days:     retentionDays,
		},
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}, nil
}

// Address возвращает адрес HTTP сервера в формате host:port
func (c *ServerConfig) Address() string {
	return c.Host + ":" + c.Port
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
