package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/GoArmGo/UserApp/internal/messaging/payloads"
)

// runWorker запускает потребителя событий о пользователях и пишет журнал аудита
func (a *App) runWorker(ctx context.Context) error {
	if a.eventConsumer == nil {
		return errors.New("worker mode requires RABBITMQ_URL")
	}

	workerCtx, cancelWorker := context.WithCancel(ctx)
	defer cancelWorker()

	done, err := a.eventConsumer.StartConsumingUserEvents(workerCtx, auditHandler(a.logger))
	if err != nil {
		return fmt.Errorf("start RabbitMQ consumer: %w", err)
	}
	a.logger.Info("worker started, waiting for user events")

	select {
	case <-ctx.Done():
	case err, ok := <-done:
		// закрытый без ошибки канал означает отмену ctx
		if ok {
			a.logger.Error("consumer stopped", "error", err)
			return fmt.Errorf("consume user events: %w", err)
		}
	}
	a.logger.Info("shutdown signal received, stopping worker")
	return nil
}

// auditHandler пишет одну строку журнала на каждое событие
func auditHandler(logger *slog.Logger) func(context.Context, payloads.UserEventPayload) error {
	audit := logger.With("component", "audit")
	return func(ctx context.Context, payload payloads.UserEventPayload) error {
		switch payload.Event {
		case payloads.UserCreated, payloads.UserUpdated, payloads.UserDeleted:
		default:
			// повторная доставка не поможет
			audit.Warn("unknown user event skipped", "event", payload.Event)
			return nil
		}

		attrs := []any{
			"event", payload.Event,
			"user_id", payload.UserID,
			"occurred_at", payload.OccurredAt,
		}
		if payload.Email != "" {
			attrs = append(attrs, "email", payload.Email)
		}
		audit.InfoContext(ctx, "user event", attrs...)
		return nil
	}
}
