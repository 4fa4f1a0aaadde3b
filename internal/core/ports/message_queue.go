package ports

import (
	"context"

	"github.com/GoArmGo/UserApp/internal/messaging/payloads"
)

// UserEventPublisher определяет методы для публикации событий жизненного цикла пользователя
// Этот интерфейс используется юзкейсом после успешной мутации
type UserEventPublisher interface {
	PublishUserEvent(ctx context.Context, payload payloads.UserEventPayload) error
}

// UserEventConsumer определяет методы для потребления событий о пользователях
// будет использоваться воркером аудита
type UserEventConsumer interface {
	// StartConsumingUserEvents начинает прослушивание очереди событий
	// принимает функцию-обработчик, которая будет вызываться для каждого полученного сообщения.
	// Канал получает ошибку, если потребление прекратилось не по отмене ctx.
	StartConsumingUserEvents(ctx context.Context, handler func(context.Context, payloads.UserEventPayload) error) (<-chan error, error)
}
