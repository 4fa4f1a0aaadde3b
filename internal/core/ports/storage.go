package ports

import (
	"context"

	"github.com/GoArmGo/UserApp/internal/domain"
	"github.com/google/uuid"
)

// UserStorage определяет методы для взаимодействия с хранилищем пользователей.
// Каждый вызов - один запрос к хранилищу. Реализации переводят ошибки хранилища
// в domain.ErrNotFound, domain.ErrConflict и domain.ErrStoreUnavailable.
type UserStorage interface {
	// CreateUser сохраняет нового пользователя; ID и временные метки выставляет хранилище.
	CreateUser(ctx context.Context, user domain.NewUser) (*domain.User, error)

	// GetUserByID возвращает пользователя или domain.ErrNotFound.
	GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// ListUsers возвращает всех пользователей в порядке создания.
	ListUsers(ctx context.Context) ([]domain.User, error)

	// UpdateUser применяет патч и продвигает updated_at, возвращает обновлённую запись.
	UpdateUser(ctx context.Context, id uuid.UUID, patch domain.UserPatch) (*domain.User, error)

	// DeleteUser удаляет строку физически.
	DeleteUser(ctx context.Context, id uuid.UUID) error
}

// HealthChecker проверяет доступность хранилища
type HealthChecker interface {
	Ping(ctx context.Context) error
}
