// Package config собирает настройки импортёра из окружения и .env файла.
//
// Приоритет: флаги CLI > переменные окружения > .env > значения по умолчанию.
// Флаги применяет пакет cli, здесь только окружение и .env.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

// DefaultBaseURL — адрес n8n по умолчанию.
const DefaultBaseURL = "http://localhost:5678"

// DefaultEnvFile — .env файл, читаемый по умолчанию.
const DefaultEnvFile = ".env"

// Переменные окружения.
const (
	EnvBaseURL      = "N8N_URL"
	EnvWorkflowFile = "WORKFLOW_FILE"
	EnvAPIKey       = "N8N_API_KEY"
	EnvUsername     = "N8N_USERNAME"
	EnvPassword     = "N8N_PASSWORD"
	EnvDBURL        = "DB_URL"
	EnvRabbitMQURL  = "RABBITMQ_URL"
	EnvMetricsFile  = "METRICS_FILE"
)

// ErrNoWorkflowFile — путь к workflow не задан ни аргументом, ни окружением.
var ErrNoWorkflowFile = errors.New("workflow file is not set (argument or " + EnvWorkflowFile + ")")

// Config — настройки одного запуска.
type Config struct {
	// BaseURL — адрес сервера n8n.
	BaseURL string

	// WorkflowFile — путь к JSON workflow.
	WorkflowFile string

	// Учётные данные. Пустые значения отключают соответствующую схему.
	APIKey   string
	Username string
	Password string

	// DBURL — PostgreSQL для журнала импортов.
	DBURL string

	// RabbitMQURL — брокер для событий импорта.
	RabbitMQURL string

	// MetricsFile — файл для выгрузки Prometheus метрик.
	MetricsFile string
}

// LoadEnvFile загружает переменные из .env файла.
//
// Отсутствующий файл не является ошибкой. Уже заданные переменные
// окружения не перезаписываются.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	err := godotenv.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

// FromEnv читает настройки из окружения.
func FromEnv() Config {
	return Config{
		BaseURL:      getenv(EnvBaseURL, DefaultBaseURL),
		WorkflowFile: os.Getenv(EnvWorkflowFile),
		APIKey:       os.Getenv(EnvAPIKey),
		Username:     os.Getenv(EnvUsername),
		Password:     os.Getenv(EnvPassword),
		DBURL:        os.Getenv(EnvDBURL),
		RabbitMQURL:  os.Getenv(EnvRabbitMQURL),
		MetricsFile:  os.Getenv(EnvMetricsFile),
	}
}

// ResolveWorkflowFile возвращает путь из аргумента или из окружения.
func (c Config) ResolveWorkflowFile(arg string) (string, error) {
	if arg != "" {
		return arg, nil
	}
	if c.WorkflowFile != "" {
		return c.WorkflowFile, nil
	}
	return "", ErrNoWorkflowFile
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
