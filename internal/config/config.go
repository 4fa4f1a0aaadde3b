package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

const (
	StorageGorm   = "gorm"
	StorageSqlx   = "sqlx"
	StorageMemory = "memory"

	PasswordHashingBcrypt = "bcrypt"
	PasswordHashingNone   = "none"
)

// Config хранит все конфигурационные параметры приложения.
type Config struct {
	DatabaseURL   string `env:"DATABASE_URL"`
	ServerPort    string `env:"SERVER_PORT"`
	StorageDriver string `env:"STORAGE_DRIVER" envDefault:"gorm"`

	// Настройки пула соединений и миграций
	DBAutoMigrate     bool          `env:"DB_AUTO_MIGRATE" envDefault:"true"`
	DBMaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS" envDefault:"25"`
	DBMaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS" envDefault:"10"`
	DBConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"5m"`
	DBLogging         bool          `env:"DB_LOGGING"`

	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"15s"`
	GraphQLPath    string        `env:"GRAPHQL_PATH" envDefault:"/graphql"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// CORS берётся из окружения, а не зашивается в код
	CORSAllowedOrigins   []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`
	CORSAllowCredentials bool     `env:"CORS_ALLOW_CREDENTIALS" envDefault:"true"`

	// PASSWORD_HASHING=none сохраняет пароль как есть, для совместимости со старыми данными
	PasswordHashing string `env:"PASSWORD_HASHING" envDefault:"bcrypt"`

	RabbitMQ struct {
		RabbitMQURL       string `env:"RABBITMQ_URL"`
		RabbitMQQueueName string `env:"RABBITMQ_QUEUE_NAME" envDefault:"user_events"`
	}
}

// LoadConfig загружает конфигурацию из переменных окружения.
// В режиме разработки пытается загрузить .env файл.
func LoadConfig() (*Config, error) {
	if _, err := os.Stat(".env"); !os.IsNotExist(err) {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("load .env file: %w", err)
		}
	}

	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse config from environment: %w", err)
	}

	// Значения по умолчанию, которые зависят от других полей или нормализуются
	if cfg.ServerPort == "" {
		cfg.ServerPort = "8080"
	}
	cfg.StorageDriver = strings.ToLower(strings.TrimSpace(cfg.StorageDriver))
	cfg.PasswordHashing = strings.ToLower(strings.TrimSpace(cfg.PasswordHashing))
	if !strings.HasPrefix(cfg.GraphQLPath, "/") {
		cfg.GraphQLPath = "/" + cfg.GraphQLPath
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate проверяет согласованность параметров.
func (c *Config) Validate() error {
	switch c.StorageDriver {
	case StorageGorm, StorageSqlx:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for storage driver %q", c.StorageDriver)
		}
	case StorageMemory:
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q (use gorm, sqlx or memory)", c.StorageDriver)
	}

	switch c.PasswordHashing {
	case PasswordHashingBcrypt, PasswordHashingNone:
	default:
		return fmt.Errorf("unknown PASSWORD_HASHING %q (use bcrypt or none)", c.PasswordHashing)
	}

	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive, got %s", c.RequestTimeout)
	}
	return nil
}

// EventsEnabled сообщает, настроена ли публикация событий в RabbitMQ.
func (c *Config) EventsEnabled() bool {
	return c.RabbitMQ.RabbitMQURL != ""
}
