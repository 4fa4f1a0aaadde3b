package payloads

import (
	"time"

	"github.com/google/uuid"
)

// UserEventType - тип события жизненного цикла пользователя.
type UserEventType string

const (
	UserCreated UserEventType = "user.created"
	UserUpdated UserEventType = "user.updated"
	UserDeleted UserEventType = "user.deleted"
)

// UserEventPayload представляет событие о пользователе, публикуемое в RabbitMQ.
// Пароль в событие не попадает.
type UserEventPayload struct {
	Event      UserEventType `json:"event"`
	UserID     uuid.UUID     `json:"user_id"`
	Email      string        `json:"email,omitempty"`
	OccurredAt time.Time     `json:"occurred_at"`
}
