package memory

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/GoArmGo/UserApp/internal/domain"
	"github.com/google/uuid"
)

// UserStorage - хранилище пользователей в памяти процесса.
// Используется для локального запуска без базы и в тестах сценариев.
type UserStorage struct {
	mu     sync.RWMutex
	users  map[uuid.UUID]domain.User
	order  []uuid.UUID
	emails map[string]uuid.UUID

	now    func() time.Time
	logger *slog.Logger
}

// Option настраивает UserStorage
type Option func(*UserStorage)

// WithClock подменяет источник времени
func WithClock(now func() time.Time) Option {
	return func(s *UserStorage) { s.now = now }
}

// NewUserStorage создает пустое хранилище
func NewUserStorage(logger *slog.Logger, opts ...Option) *UserStorage {
	s := &UserStorage{
		users:  make(map[uuid.UUID]domain.User),
		emails: make(map[string]uuid.UUID),
		now:    time.Now,
		logger: logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *UserStorage) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

func (s *UserStorage) CreateUser(_ context.Context, user domain.NewUser) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.emails[user.Email]; taken {
		s.logger.Warn("email already taken", "email", user.Email)
		return nil, fmt.Errorf("%w: email %q already exists", domain.ErrConflict, user.Email)
	}

	now := s.timestamp()
	u := domain.User{
		ID:        uuid.New(),
		Email:     user.Email,
		Username:  user.Username,
		Password:  user.Password,
		FirstName: clone(user.FirstName),
		LastName:  clone(user.LastName),
		CreatedAt: now,
		UpdatedAt: now,
	}

	s.users[u.ID] = u
	s.order = append(s.order, u.ID)
	s.emails[u.Email] = u.ID

	s.logger.Info("user created", "user_id", u.ID)
	return copyUser(u), nil
}

func (s *UserStorage) GetUserByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return copyUser(u), nil
}

func (s *UserStorage) ListUsers(_ context.Context) ([]domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]domain.User, 0, len(s.order))
	for _, id := range s.order {
		users = append(users, *copyUser(s.users[id]))
	}
	return users, nil
}

// UpdateUser применяет патч атомарно; updated_at строго больше прежнего
func (s *UserStorage) UpdateUser(_ context.Context, id uuid.UUID, patch domain.UserPatch) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}

	if patch.Email != nil && *patch.Email != current.Email {
		if _, taken := s.emails[*patch.Email]; taken {
			s.logger.Warn("email already taken", "email", *patch.Email)
			return nil, fmt.Errorf("%w: email %q already exists", domain.ErrConflict, *patch.Email)
		}
	}

	updated := *copyUser(patch.Apply(current))
	now := s.timestamp()
	if !now.After(current.UpdatedAt) {
		now = current.UpdatedAt.Add(time.Microsecond)
	}
	updated.UpdatedAt = now

	if updated.Email != current.Email {
		delete(s.emails, current.Email)
		s.emails[updated.Email] = id
	}
	s.users[id] = updated

	s.logger.Info("user updated", "user_id", id)
	return copyUser(updated), nil
}

func (s *UserStorage) DeleteUser(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return domain.ErrNotFound
	}

	delete(s.users, id)
	delete(s.emails, u.Email)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}

	s.logger.Info("user deleted", "user_id", id)
	return nil
}

// Ping всегда успешен, реализует ports.HealthChecker
func (s *UserStorage) Ping(context.Context) error {
	return nil
}

func copyUser(u domain.User) *domain.User {
	u.FirstName = clone(u.FirstName)
	u.LastName = clone(u.LastName)
	return &u
}

func clone(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
