package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config содержит все настройки Admin Service
type Config struct {
	Server     ServerConfig
	Catalog    CatalogConfig
	Redis      RedisConfig
	Cloudinary CloudinaryConfig
	CORS       CORSConfig
	PageSize   int           // Размер видимой страницы списков
	SessionTTL time.Duration // Время жизни брошенной формы редактирования
	LogLevel   string
}

// ServerConfig - настройки HTTP сервера
type ServerConfig struct {
	Host string
	Port string
}

// CatalogConfig - настройки клиента Catalog Service
type CatalogConfig struct {
	BaseURL string
	Timeout time.Duration
}

// RedisConfig - настройки Redis для сессий редактирования
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// CloudinaryConfig - учетные данные для загрузки изображений товаров
type CloudinaryConfig struct {
	CloudName    string
	APIKey       string
	APISecret    string
	UploadPreset string
}

// CORSConfig - источники, которым разрешен доступ к админ-панели
type CORSConfig struct {
	AllowedOrigins []string
}

// Load загружает конфигурацию из .env файла и переменных окружения.
// Переменные окружения имеют приоритет над .env.
func Load() (*Config, error) {
	// .env опционален: в Docker конфигурация приходит через environment
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB value: %w", err)
	}

	pageSize, err := strconv.Atoi(getEnv("PAGE_SIZE", "5"))
	if err != nil || pageSize < 1 {
		return nil, fmt.Errorf("invalid PAGE_SIZE value: %q", getEnv("PAGE_SIZE", "5"))
	}

	sessionTTL, err := time.ParseDuration(getEnv("SESSION_TTL", "30m"))
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_TTL value: %w", err)
	}

	catalogTimeout, err := time.ParseDuration(getEnv("CATALOG_TIMEOUT", "10s"))
	if err != nil {
		return nil, fmt.Errorf("invalid CATALOG_TIMEOUT value: %w", err)
	}

	return &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnv("SERVER_PORT", "8080"),
		},
		Catalog: CatalogConfig{
			// Бэкенд каталога админ-панель ждет на 3001
			BaseURL: getEnv("CATALOG_BASE_URL", "http://localhost:3001"),
			Timeout: catalogTimeout,
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		Cloudinary: CloudinaryConfig{
			CloudName:    getEnv("CLOUDINARY_CLOUD_NAME", ""),
			APIKey:       getEnv("CLOUDINARY_API_KEY", ""),
			APISecret:    getEnv("CLOUDINARY_API_SECRET", ""),
			UploadPreset: getEnv("CLOUDINARY_UPLOAD_PRESET", "pinemarket_products"),
		},
		CORS: CORSConfig{
			AllowedOrigins: strings.Split(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"), ","),
		},
		PageSize:   pageSize,
		SessionTTL: sessionTTL,
		LogLevel:   getEnv("LOG_LEVEL", "info"),
	}, nil
}

// Address возвращает адрес HTTP сервера в формате host:port
func (c *ServerConfig) Address() string {
	return c.Host + ":" + c.Port
}

// Address возвращает адрес Redis в формате host:port
func (c *RedisConfig) Address() string {
	return c.Host + ":" + c.Port
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
