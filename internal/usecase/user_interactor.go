package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/GoArmGo/UserApp/internal/core/ports"
	"github.com/GoArmGo/UserApp/internal/domain"
	"github.com/GoArmGo/UserApp/internal/messaging/payloads"
	"github.com/google/uuid"
)

// userUseCase implements UserUseCase
type userUseCase struct {
	userStorage ports.UserStorage
	hasher      PasswordHasher
	publisher   ports.UserEventPublisher
	logger      *slog.Logger
}

// NewUserUseCase создает новый экземпляр UserUseCase.
// publisher может быть nil - тогда события не отправляются.
func NewUserUseCase(
	userStorage ports.UserStorage,
	hasher PasswordHasher,
	publisher ports.UserEventPublisher,
	logger *slog.Logger,
) UserUseCase {
	if hasher == nil {
		hasher = BcryptHasher{}
	}
	return &userUseCase{
		userStorage: userStorage,
		hasher:      hasher,
		publisher:   publisher,
		logger:      logger,
	}
}

func (uc *userUseCase) FindAll(ctx context.Context) ([]domain.User, error) {
	users, err := uc.userStorage.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("usecase: list users: %w", err)
	}
	return users, nil
}

func (uc *userUseCase) FindByID(ctx context.Context, id string) (*domain.User, error) {
	user, err := uc.FindOne(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	return user, err
}

func (uc *userUseCase) FindOne(ctx context.Context, id string) (*domain.User, error) {
	userID, err := domain.ParseUserID(id)
	if err != nil {
		return nil, err
	}

	user, err := uc.userStorage.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("usecase: get user %s: %w", userID, err)
	}
	return user, nil
}

func (uc *userUseCase) Create(ctx context.Context, input domain.NewUser) (*domain.User, error) {
	hash, err := uc.hasher.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("usecase: %w", err)
	}
	input.Password = hash

	user, err := uc.userStorage.CreateUser(ctx, input)
	if err != nil {
		if errors.Is(err, domain.ErrConflict) {
			uc.logger.Info("user with this email already exists", "email", input.Email)
		}
		return nil, fmt.Errorf("usecase: create user: %w", err)
	}

	uc.logger.Info("user registered", "user_id", user.ID)
	uc.publish(ctx, payloads.UserCreated, user.ID, user.Email)
	return user, nil
}

func (uc *userUseCase) Update(ctx context.Context, id string, patch domain.UserPatch) (*domain.User, error) {
	userID, err := domain.ParseUserID(id)
	if err != nil {
		return nil, err
	}

	if patch.IsEmpty() {
		uc.logger.Debug("empty patch, only updated_at advances", "user_id", userID)
	}

	if patch.Password != nil {
		hash, err := uc.hasher.Hash(*patch.Password)
		if err != nil {
			return nil, fmt.Errorf("usecase: %w", err)
		}
		patch.Password = &hash
	}

	user, err := uc.userStorage.UpdateUser(ctx, userID, patch)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("usecase: update user %s: %w", userID, err)
	}

	uc.publish(ctx, payloads.UserUpdated, user.ID, user.Email)
	return user, nil
}

func (uc *userUseCase) Delete(ctx context.Context, id string) error {
	userID, err := domain.ParseUserID(id)
	if err != nil {
		return err
	}

	if err := uc.userStorage.DeleteUser(ctx, userID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return err
		}
		return fmt.Errorf("usecase: delete user %s: %w", userID, err)
	}

	uc.publish(ctx, payloads.UserDeleted, userID, "")
	return nil
}

// publish отправляет событие, ошибка доставки не влияет на результат операции
func (uc *userUseCase) publish(ctx context.Context, event payloads.UserEventType, id uuid.UUID, email string) {
	if uc.publisher == nil {
		return
	}

	payload := payloads.UserEventPayload{
		Event:      event,
		UserID:     id,
		Email:      email,
		OccurredAt: time.Now().UTC(),
	}
	if err := uc.publisher.PublishUserEvent(ctx, payload); err != nil {
		uc.logger.Error("failed to publish user event",
			"event", event,
			"user_id", id,
			"error", err,
		)
	}
}
