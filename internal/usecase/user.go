package usecase

import (
	"context"

	"github.com/GoArmGo/UserApp/internal/domain"
)

// PasswordHasher определяет политику хранения пароля
type PasswordHasher interface {
	// Hash возвращает значение, которое будет сохранено в колонке password
	Hash(password string) (string, error)
	// Compare сверяет открытый пароль с сохранённым значением
	Compare(stored, password string) bool
}

// UserUseCase определяет интерфейс для бизнес-логики работы с пользователями.
// Идентификаторы принимаются в том виде, в каком пришли от клиента:
// некорректный UUID означает отсутствие пользователя.
type UserUseCase interface {
	// FindAll возвращает всех пользователей в порядке создания
	FindAll(ctx context.Context) ([]domain.User, error)

	// FindByID возвращает пользователя или nil, если его нет
	FindByID(ctx context.Context, id string) (*domain.User, error)

	// FindOne возвращает пользователя или domain.ErrNotFound
	FindOne(ctx context.Context, id string) (*domain.User, error)

	// Create создает пользователя; занятый email дает domain.ErrConflict
	Create(ctx context.Context, input domain.NewUser) (*domain.User, error)

	// Update меняет только переданные поля
	Update(ctx context.Context, id string, patch domain.UserPatch) (*domain.User, error)

	// Delete удаляет пользователя, повторный вызов вернет domain.ErrNotFound
	Delete(ctx context.Context, id string) error
}
