package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/GoArmGo/UserApp/internal/config"
	"github.com/GoArmGo/UserApp/internal/core/ports"
	"github.com/GoArmGo/UserApp/internal/usecase"
	"github.com/GoArmGo/UserApp/internal/validation"
)

const (
	ModeServer = "server"
	ModeWorker = "worker"
)

type App struct {
	Config        *config.Config
	logger        *slog.Logger
	userUseCase   usecase.UserUseCase
	validator     *validation.Validator
	health        ports.HealthChecker
	eventConsumer ports.UserEventConsumer
	closers       []io.Closer
}

// NewApp собирает приложение. eventConsumer может быть nil, если RabbitMQ не настроен.
// closers закрываются в обратном порядке при Shutdown.
func NewApp(
	cfg *config.Config,
	logger *slog.Logger,
	userUseCase usecase.UserUseCase,
	validator *validation.Validator,
	health ports.HealthChecker,
	eventConsumer ports.UserEventConsumer,
	closers ...io.Closer,
) *App {
	return &App{
		Config:        cfg,
		logger:        logger,
		userUseCase:   userUseCase,
		validator:     validator,
		health:        health,
		eventConsumer: eventConsumer,
		closers:       closers,
	}
}

// LoggerIns возвращает основной логгер приложения
func (a *App) LoggerIns() *slog.Logger {
	return a.logger
}

// Run запускает приложение в выбранном режиме и блокируется до SIGINT/SIGTERM
func (a *App) Run(ctx context.Context, mode string) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a.logger.Info("starting", "mode", mode)

	var err error
	switch mode {
	case ModeServer:
		err = a.runServer(ctx)
	case ModeWorker:
		err = a.runWorker(ctx)
	default:
		err = fmt.Errorf("unknown mode %q (use %q or %q)", mode, ModeServer, ModeWorker)
	}

	if closeErr := a.Shutdown(); closeErr != nil {
		a.logger.Error("shutdown failed", "error", closeErr)
	}
	if err != nil {
		return err
	}

	a.logger.Info("stopped gracefully")
	return nil
}

// Shutdown закрывает все ресурсы приложения
func (a *App) Shutdown() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
