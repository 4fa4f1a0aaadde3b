package di

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/GoArmGo/UserApp/internal/app"
	"github.com/GoArmGo/UserApp/internal/config"
	"github.com/GoArmGo/UserApp/internal/core/ports"
	"github.com/GoArmGo/UserApp/internal/database/client"
	"github.com/GoArmGo/UserApp/internal/database/memory"
	"github.com/GoArmGo/UserApp/internal/database/migrations"
	"github.com/GoArmGo/UserApp/internal/database/postgres"
	"github.com/GoArmGo/UserApp/internal/database/storage"
	"github.com/GoArmGo/UserApp/internal/logger"
	"github.com/GoArmGo/UserApp/internal/rabbitmq"
	"github.com/GoArmGo/UserApp/internal/usecase"
	"github.com/GoArmGo/UserApp/internal/validation"
)

// BuildApp инициализирует все зависимости и возвращает готовый объект App.
func BuildApp(ctx context.Context) (*app.App, error) {
	// 1. Загрузка конфигурации
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	slogger := logger.NewSlog(logger.SlogConfig{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})
	slogger.Info("logger initialized", "level", cfg.LogLevel, "format", cfg.LogFormat)

	return Build(ctx, cfg, slogger)
}

// Build собирает приложение из готовой конфигурации
func Build(ctx context.Context, cfg *config.Config, slogger *slog.Logger) (*app.App, error) {
	var closers []io.Closer
	fail := func(err error) (*app.App, error) {
		for i := len(closers) - 1; i >= 0; i-- {
			_ = closers[i].Close()
		}
		return nil, err
	}

	// 2. Хранилище пользователей
	userStorage, health, dbCloser, err := buildStorage(ctx, cfg, slogger)
	if err != nil {
		return fail(err)
	}
	if dbCloser != nil {
		closers = append(closers, dbCloser)
	}

	// 3. Политика хранения паролей
	hasher, err := usecase.NewPasswordHasher(cfg.PasswordHashing)
	if err != nil {
		return fail(err)
	}
	if cfg.PasswordHashing == config.PasswordHashingNone {
		slogger.Warn("PASSWORD_HASHING=none: passwords are stored as plain text")
	}

	// 4. RabbitMQ, только если задан RABBITMQ_URL
	var (
		publisher ports.UserEventPublisher
		consumer  ports.UserEventConsumer
	)
	if cfg.EventsEnabled() {
		rabbitMQClient, err := rabbitmq.NewClient(cfg, slogger)
		if err != nil {
			return fail(err)
		}
		closers = append(closers, rabbitMQClient)
		publisher = rabbitMQClient
		consumer = rabbitMQClient
	} else {
		slogger.Info("RABBITMQ_URL is not set, user events are disabled")
	}

	// 5. Бизнес-логика
	userUseCase := usecase.NewUserUseCase(userStorage, hasher, publisher, slogger)

	application := app.NewApp(
		cfg,
		slogger,
		userUseCase,
		validation.New(),
		health,
		consumer,
		closers...,
	)

	slogger.Info("all dependencies initialized", "storage_driver", cfg.StorageDriver)
	return application, nil
}

// buildStorage выбирает реализацию ports.UserStorage по STORAGE_DRIVER
func buildStorage(
	ctx context.Context,
	cfg *config.Config,
	slogger *slog.Logger,
) (ports.UserStorage, ports.HealthChecker, io.Closer, error) {
	if cfg.StorageDriver == config.StorageMemory {
		slogger.Warn("using in-memory storage, data is lost on restart")
		store := memory.NewUserStorage(slogger)
		return store, store, nil, nil
	}

	dbClient, err := client.NewClient(ctx, cfg, slogger)
	if err != nil {
		return nil, nil, nil, err
	}

	if cfg.DBAutoMigrate {
		if err := migrations.Apply(cfg.DatabaseURL, slogger); err != nil {
			_ = dbClient.Close()
			return nil, nil, nil, err
		}
	}

	switch cfg.StorageDriver {
	case config.StorageSqlx:
		return storage.NewUserStorage(dbClient.DB, slogger), dbClient, dbClient, nil
	case config.StorageGorm:
		gdb, err := postgres.NewGormDB(dbClient.DB.DB, cfg.DBLogging, slogger)
		if err != nil {
			_ = dbClient.Close()
			return nil, nil, nil, err
		}
		return postgres.NewGormUserStorage(gdb, slogger), dbClient, dbClient, nil
	default:
		_ = dbClient.Close()
		return nil, nil, nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}
