// Пакет config — загрузка и валидация конфигурации FileVault
// из переменных окружения.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Версия приложения, задаётся при сборке через -ldflags.
var Version = "dev"

// Config содержит все параметры конфигурации FileVault.
type Config struct {
	// --- Сервер ---

	// Порт HTTP-сервера (health, metrics)
	Port int
	// Уровень логирования (debug, info, warn, error)
	LogLevel slog.Level
	// Формат логов (json, text)
	LogFormat string

	// --- HTTP Server Timeouts ---

	// Таймаут чтения HTTP-сервера (по умолчанию 30s)
	HTTPReadTimeout time.Duration
	// Таймаут записи HTTP-сервера (по умолчанию 60s)
	HTTPWriteTimeout time.Duration
	// Таймаут простоя HTTP-сервера (по умолчанию 120s)
	HTTPIdleTimeout time.Duration

	// --- Graceful shutdown ---

	// Таймаут graceful shutdown (по умолчанию 5s)
	ShutdownTimeout time.Duration

	// --- PostgreSQL ---

	// Хост PostgreSQL
	DBHost string
	// Порт PostgreSQL
	DBPort int
	// Имя базы данных
	DBName string
	// Имя пользователя PostgreSQL
	DBUser string
	// Пароль пользователя PostgreSQL
	DBPassword string
	// Режим SSL: disable, require, verify-ca, verify-full
	DBSSLMode string
	// Максимальное число соединений пула pgxpool
	DBMaxConns int

	// --- Объектное хранилище (S3) ---

	// Endpoint S3-совместимого хранилища
	S3Endpoint string
	// Регион (для MinIO — произвольная строка)
	S3Region string
	// Имя бакета
	S3Bucket string
	// Ключ доступа
	S3AccessKey string
	// Секретный ключ
	S3SecretKey string
	// Path-style адресация (нужна для MinIO)
	S3UsePathStyle bool

	// --- Лимиты ---

	// Максимальный размер загружаемого файла в байтах
	MaxFileSize int64

	// --- Кэш ---

	// Размер LRU-кэша метаданных (записей)
	CacheSize int
	// TTL записей кэша
	CacheTTL time.Duration
}

// Load загружает конфигурацию из переменных окружения.
// Возвращает ошибку, если обязательные переменные не заданы
// или значения некорректны.
func Load() (*Config, error) {
	cfg := &Config{}
	var err error

	// --- Сервер ---

	// FV_PORT — порт HTTP-сервера (по умолчанию 8040)
	cfg.Port, err = getEnvInt("FV_PORT", 8040)
	if err != nil {
		return nil, fmt.Errorf("FV_PORT: %w", err)
	}

	// FV_LOG_LEVEL — уровень логирования (по умолчанию info)
	logLevel := getEnvDefault("FV_LOG_LEVEL", "info")
	cfg.LogLevel, err = parseLogLevel(logLevel)
	if err != nil {
		return nil, fmt.Errorf("FV_LOG_LEVEL: %w", err)
	}

	// FV_LOG_FORMAT — формат логов (по умолчанию json)
	cfg.LogFormat = getEnvDefault("FV_LOG_FORMAT", "json")
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return nil, fmt.Errorf("FV_LOG_FORMAT: недопустимый формат %q, допустимые: json, text", cfg.LogFormat)
	}

	// --- HTTP Server Timeouts ---

	// FV_HTTP_READ_TIMEOUT — таймаут чтения (по умолчанию 30s)
	cfg.HTTPReadTimeout, err = getEnvDuration("FV_HTTP_READ_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("FV_HTTP_READ_TIMEOUT: %w", err)
	}

	// FV_HTTP_WRITE_TIMEOUT — таймаут записи (по умолчанию 60s)
	cfg.HTTPWriteTimeout, err = getEnvDuration("FV_HTTP_WRITE_TIMEOUT", 60*time.Second)
	if err != nil {
		return nil, fmt.Errorf("FV_HTTP_WRITE_TIMEOUT: %w", err)
	}

	// FV_HTTP_IDLE_TIMEOUT — таймаут простоя (по умолчанию 120s)
	cfg.HTTPIdleTimeout, err = getEnvDuration("FV_HTTP_IDLE_TIMEOUT", 120*time.Second)
	if err != nil {
		return nil, fmt.Errorf("FV_HTTP_IDLE_TIMEOUT: %w", err)
	}

	// --- Graceful shutdown ---

	// FV_SHUTDOWN_TIMEOUT — таймаут graceful shutdown (по умолчанию 5s)
	cfg.ShutdownTimeout, err = getEnvDuration("FV_SHUTDOWN_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("FV_SHUTDOWN_TIMEOUT: %w", err)
	}

	// --- PostgreSQL ---

	// FV_DB_HOST — обязательный
	cfg.DBHost, err = getEnvRequired("FV_DB_HOST")
	if err != nil {
		return nil, err
	}

	// FV_DB_PORT — порт PostgreSQL (по умолчанию 5432)
	cfg.DBPort, err = getEnvInt("FV_DB_PORT", 5432)
	if err != nil {
		return nil, fmt.Errorf("FV_DB_PORT: %w", err)
	}

	// FV_DB_NAME — обязательный
	cfg.DBName, err = getEnvRequired("FV_DB_NAME")
	if err != nil {
		return nil, err
	}

	// FV_DB_USER — обязательный
	cfg.DBUser, err = getEnvRequired("FV_DB_USER")
	if err != nil {
		return nil, err
	}

	// FV_DB_PASSWORD — обязательный
	cfg.DBPassword, err = getEnvRequired("FV_DB_PASSWORD")
	if err != nil {
		return nil, err
	}

	// FV_DB_SSL_MODE — режим SSL (по умолчанию disable)
	cfg.DBSSLMode = getEnvDefault("FV_DB_SSL_MODE", "disable")
	validSSLModes := map[string]bool{
		"disable": true, "require": true, "verify-ca": true, "verify-full": true,
	}
	if !validSSLModes[cfg.DBSSLMode] {
		return nil, fmt.Errorf("FV_DB_SSL_MODE: недопустимое значение %q, допустимые: disable, require, verify-ca, verify-full", cfg.DBSSLMode)
	}

	// FV_DB_MAX_CONNS — размер пула pgxpool (по умолчанию 10)
	cfg.DBMaxConns, err = getEnvInt("FV_DB_MAX_CONNS", 10)
	if err != nil {
		return nil, fmt.Errorf("FV_DB_MAX_CONNS: %w", err)
	}
	if cfg.DBMaxConns <= 0 {
		return nil, fmt.Errorf("FV_DB_MAX_CONNS: значение должно быть положительным, получено %d", cfg.DBMaxConns)
	}

	// --- Объектное хранилище (S3) ---

	// FV_S3_ENDPOINT — обязательный
	cfg.S3Endpoint, err = getEnvRequired("FV_S3_ENDPOINT")
	if err != nil {
		return nil, err
	}
	// Убираем trailing slash
	cfg.S3Endpoint = strings.TrimRight(cfg.S3Endpoint, "/")

	// FV_S3_REGION — регион (по умолчанию us-east-1)
	cfg.S3Region = getEnvDefault("FV_S3_REGION", "us-east-1")

	// FV_S3_BUCKET — обязательный
	cfg.S3Bucket, err = getEnvRequired("FV_S3_BUCKET")
	if err != nil {
		return nil, err
	}

	// FV_S3_ACCESS_KEY — обязательный
	cfg.S3AccessKey, err = getEnvRequired("FV_S3_ACCESS_KEY")
	if err != nil {
		return nil, err
	}

	// FV_S3_SECRET_KEY — обязательный
	cfg.S3SecretKey, err = getEnvRequired("FV_S3_SECRET_KEY")
	if err != nil {
		return nil, err
	}

	// FV_S3_USE_PATH_STYLE — path-style адресация (по умолчанию true)
	cfg.S3UsePathStyle, err = getEnvBool("FV_S3_USE_PATH_STYLE", true)
	if err != nil {
		return nil, fmt.Errorf("FV_S3_USE_PATH_STYLE: %w", err)
	}

	// --- Лимиты ---

	// FV_MAX_FILE_SIZE — максимальный размер файла в байтах (по умолчанию 5000000)
	maxSize, err := getEnvInt("FV_MAX_FILE_SIZE", 5_000_000)
	if err != nil {
		return nil, fmt.Errorf("FV_MAX_FILE_SIZE: %w", err)
	}
	if maxSize <= 0 {
		return nil, fmt.Errorf("FV_MAX_FILE_SIZE: значение должно быть > 0")
	}
	cfg.MaxFileSize = int64(maxSize)

	// --- Кэш ---

	// FV_CACHE_SIZE — размер LRU-кэша метаданных (по умолчанию 1000)
	cfg.CacheSize, err = getEnvInt("FV_CACHE_SIZE", 1000)
	if err != nil {
		return nil, fmt.Errorf("FV_CACHE_SIZE: %w", err)
	}

	// FV_CACHE_TTL — TTL записей кэша (по умолчанию 5m)
	cfg.CacheTTL, err = getEnvDuration("FV_CACHE_TTL", 5*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("FV_CACHE_TTL: %w", err)
	}

	return cfg, nil
}

// DatabaseDSN возвращает строку подключения к PostgreSQL.
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBName, c.DBUser, c.DBPassword, c.DBSSLMode,
	)
}

// SetupLogger настраивает глобальный slog-логгер на основе конфигурации.
func SetupLogger(cfg *Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}

	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// --- Вспомогательные функции ---

// getEnvRequired возвращает значение переменной окружения или ошибку, если она не задана.
func getEnvRequired(key string) (string, error) {
	val := os.Getenv(key)
	if val == "" {
		return "", fmt.Errorf("%s: обязательная переменная окружения не задана", key)
	}
	return val, nil
}

// getEnvDefault возвращает значение переменной окружения или значение по умолчанию.
func getEnvDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

// getEnvInt возвращает целочисленное значение переменной окружения или значение по умолчанию.
func getEnvInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("некорректное целое число: %q", val)
	}
	return n, nil
}

// getEnvDuration возвращает time.Duration из переменной окружения или значение по умолчанию.
func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("некорректная длительность: %q (используйте формат Go: 30s, 1h, 15m)", val)
	}
	return d, nil
}

// getEnvBool возвращает булево значение переменной окружения или значение по умолчанию.
func getEnvBool(key string, defaultVal bool) (bool, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return false, fmt.Errorf("некорректное булево значение: %q (допустимые: true, false, 1, 0)", val)
	}
	return b, nil
}

// parseLogLevel преобразует строку уровня логирования в slog.Level.
func parseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("недопустимый уровень %q, допустимые: debug, info, warn, error", level)
	}
}
