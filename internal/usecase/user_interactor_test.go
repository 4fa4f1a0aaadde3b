package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/GoArmGo/UserApp/internal/core/ports"
	"github.com/GoArmGo/UserApp/internal/database/memory"
	"github.com/GoArmGo/UserApp/internal/domain"
	"github.com/GoArmGo/UserApp/internal/logger"
	"github.com/GoArmGo/UserApp/internal/messaging/payloads"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

// countingStorage считает обращения к хранилищу
type countingStorage struct {
	ports.UserStorage
	mu    sync.Mutex
	calls int
}

func (s *countingStorage) hit() {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
}

func (s *countingStorage) CreateUser(ctx context.Context, u domain.NewUser) (*domain.User, error) {
	s.hit()
	return s.UserStorage.CreateUser(ctx, u)
}

func (s *countingStorage) GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	s.hit()
	return s.UserStorage.GetUserByID(ctx, id)
}

func (s *countingStorage) UpdateUser(ctx context.Context, id uuid.UUID, p domain.UserPatch) (*domain.User, error) {
	s.hit()
	return s.UserStorage.UpdateUser(ctx, id, p)
}

func (s *countingStorage) DeleteUser(ctx context.Context, id uuid.UUID) error {
	s.hit()
	return s.UserStorage.DeleteUser(ctx, id)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []payloads.UserEventPayload
	err    error
}

func (p *recordingPublisher) PublishUserEvent(_ context.Context, e payloads.UserEventPayload) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

func newUseCase(t *testing.T) (UserUseCase, *countingStorage) {
	t.Helper()
	store := &countingStorage{UserStorage: memory.NewUserStorage(logger.NewNop())}
	return NewUserUseCase(store, PlainHasher{}, nil, logger.NewNop()), store
}

func TestCreateScenario(t *testing.T) {
	ctx := context.Background()
	uc, _ := newUseCase(t)

	created, err := uc.Create(ctx, domain.NewUser{Email: "a@b.com", Username: "ab", Password: "secret1"})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, created.ID)
	assert.Equal(t, created.CreatedAt, created.UpdatedAt)

	all, err := uc.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, *created, all[0])
}

func TestCreateThenFind(t *testing.T) {
	ctx := context.Background()
	uc, _ := newUseCase(t)

	created, err := uc.Create(ctx, domain.NewUser{
		Email: "a@b.com", Username: "ab", Password: "secret1", LastName: strPtr("Lee"),
	})
	require.NoError(t, err)

	byID, err := uc.FindByID(ctx, created.ID.String())
	require.NoError(t, err)
	assert.Equal(t, created, byID)

	one, err := uc.FindOne(ctx, created.ID.String())
	require.NoError(t, err)
	assert.Equal(t, created, one)
}

func TestUnknownID(t *testing.T) {
	ctx := context.Background()
	uc, _ := newUseCase(t)
	id := uuid.NewString()

	user, err := uc.FindByID(ctx, id)
	assert.NoError(t, err)
	assert.Nil(t, user)

	_, err = uc.FindOne(ctx, id)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = uc.Update(ctx, id, domain.UserPatch{Username: strPtr("x")})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.ErrorIs(t, uc.Delete(ctx, id), domain.ErrNotFound)
}

func TestMalformedIDNeverReachesStorage(t *testing.T) {
	ctx := context.Background()
	uc, store := newUseCase(t)

	for _, id := range []string{"", "42", "not-a-uuid", "xyz"} {
		user, err := uc.FindByID(ctx, id)
		assert.NoError(t, err)
		assert.Nil(t, user)

		_, err = uc.FindOne(ctx, id)
		assert.ErrorIs(t, err, domain.ErrNotFound)

		_, err = uc.Update(ctx, id, domain.UserPatch{Username: strPtr("x")})
		assert.ErrorIs(t, err, domain.ErrNotFound)

		assert.ErrorIs(t, uc.Delete(ctx, id), domain.ErrNotFound)
	}
	assert.Zero(t, store.calls)
}

func TestConcurrentDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	uc, _ := newUseCase(t)

	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = uc.Create(ctx, domain.NewUser{Email: "dup@b.com", Username: "d", Password: "secret1"})
		}(i)
	}
	wg.Wait()

	var ok, conflict int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, domain.ErrConflict):
			conflict++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, conflict)
}

func TestUpdateChangesOnlyGivenField(t *testing.T) {
	ctx := context.Background()
	uc, _ := newUseCase(t)

	created, err := uc.Create(ctx, domain.NewUser{
		Email: "a@b.com", Username: "ab", Password: "secret1", FirstName: strPtr("Ann"),
	})
	require.NoError(t, err)

	updated, err := uc.Update(ctx, created.ID.String(), domain.UserPatch{Username: strPtr("abc")})
	require.NoError(t, err)

	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "abc", updated.Username)
	assert.Equal(t, created.Email, updated.Email)
	assert.Equal(t, created.Password, updated.Password)
	assert.Equal(t, created.FirstName, updated.FirstName)
	assert.Nil(t, updated.LastName)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)
	assert.True(t, updated.UpdatedAt.After(created.UpdatedAt))
}

func TestUpdateEmailConflict(t *testing.T) {
	ctx := context.Background()
	uc, _ := newUseCase(t)

	a, err := uc.Create(ctx, domain.NewUser{Email: "a@b.com", Username: "a", Password: "secret1"})
	require.NoError(t, err)
	_, err = uc.Create(ctx, domain.NewUser{Email: "c@d.com", Username: "c", Password: "secret1"})
	require.NoError(t, err)

	_, err = uc.Update(ctx, a.ID.String(), domain.UserPatch{Email: strPtr("c@d.com")})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestDeleteTwice(t *testing.T) {
	ctx := context.Background()
	uc, _ := newUseCase(t)

	created, err := uc.Create(ctx, domain.NewUser{Email: "a@b.com", Username: "ab", Password: "secret1"})
	require.NoError(t, err)

	require.NoError(t, uc.Delete(ctx, created.ID.String()))
	assert.ErrorIs(t, uc.Delete(ctx, created.ID.String()), domain.ErrNotFound)
}

func TestPasswordIsHashedWithBcrypt(t *testing.T) {
	ctx := context.Background()
	hasher := BcryptHasher{Cost: 4}
	uc := NewUserUseCase(memory.NewUserStorage(logger.NewNop()), hasher, nil, logger.NewNop())

	created, err := uc.Create(ctx, domain.NewUser{Email: "a@b.com", Username: "ab", Password: "secret1"})
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", created.Password)
	assert.True(t, hasher.Compare(created.Password, "secret1"))

	updated, err := uc.Update(ctx, created.ID.String(), domain.UserPatch{Password: strPtr("secret2")})
	require.NoError(t, err)
	assert.True(t, hasher.Compare(updated.Password, "secret2"))
	assert.False(t, hasher.Compare(updated.Password, "secret1"))
}

func TestLongPasswordIsValidationError(t *testing.T) {
	ctx := context.Background()
	store := &countingStorage{UserStorage: memory.NewUserStorage(logger.NewNop())}
	uc := NewUserUseCase(store, BcryptHasher{Cost: 4}, nil, logger.NewNop())

	// 40 символов, но 80 байт
	long := strings.Repeat("ж", 40)

	_, err := uc.Create(ctx, domain.NewUser{Email: "a@b.com", Username: "ab", Password: long})
	require.ErrorIs(t, err, domain.ErrValidation)
	var ve *domain.ValidationError
	require.True(t, errors.As(err, &ve))
	require.Len(t, ve.Fields, 1)
	assert.Equal(t, "password", ve.Fields[0].Field)
	assert.Equal(t, 0, store.calls)

	created, err := uc.Create(ctx, domain.NewUser{Email: "a@b.com", Username: "ab", Password: "secret1"})
	require.NoError(t, err)
	callsBefore := store.calls

	_, err = uc.Update(ctx, created.ID.String(), domain.UserPatch{Password: &long})
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, callsBefore, store.calls)
}

func TestEmptyPatchAdvancesUpdatedAt(t *testing.T) {
	ctx := context.Background()
	uc, _ := newUseCase(t)

	created, err := uc.Create(ctx, domain.NewUser{Email: "a@b.com", Username: "ab", Password: "secret1"})
	require.NoError(t, err)

	updated, err := uc.Update(ctx, created.ID.String(), domain.UserPatch{})
	require.NoError(t, err)
	assert.Equal(t, created.Username, updated.Username)
	assert.Equal(t, created.Email, updated.Email)
	assert.True(t, updated.UpdatedAt.After(created.UpdatedAt))
}

func TestLifecycleEvents(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{}
	uc := NewUserUseCase(memory.NewUserStorage(logger.NewNop()), PlainHasher{}, pub, logger.NewNop())

	created, err := uc.Create(ctx, domain.NewUser{Email: "a@b.com", Username: "ab", Password: "secret1"})
	require.NoError(t, err)
	_, err = uc.Update(ctx, created.ID.String(), domain.UserPatch{Username: strPtr("abc")})
	require.NoError(t, err)
	require.NoError(t, uc.Delete(ctx, created.ID.String()))

	// неуспешная операция событий не порождает
	assert.Error(t, uc.Delete(ctx, created.ID.String()))

	require.Len(t, pub.events, 3)
	assert.Equal(t, payloads.UserCreated, pub.events[0].Event)
	assert.Equal(t, payloads.UserUpdated, pub.events[1].Event)
	assert.Equal(t, payloads.UserDeleted, pub.events[2].Event)
	for _, e := range pub.events {
		assert.Equal(t, created.ID, e.UserID)
	}
	assert.Equal(t, "a@b.com", pub.events[0].Email)
}

func TestPublishFailureDoesNotFailRequest(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("broker down")}
	uc := NewUserUseCase(memory.NewUserStorage(logger.NewNop()), PlainHasher{}, pub, logger.NewNop())

	_, err := uc.Create(context.Background(), domain.NewUser{Email: "a@b.com", Username: "ab", Password: "secret1"})
	assert.NoError(t, err)
	assert.Len(t, pub.events, 1)
}

func TestNewPasswordHasher(t *testing.T) {
	h, err := NewPasswordHasher("bcrypt")
	require.NoError(t, err)
	assert.IsType(t, BcryptHasher{}, h)

	h, err = NewPasswordHasher("none")
	require.NoError(t, err)
	assert.IsType(t, PlainHasher{}, h)

	_, err = NewPasswordHasher("md5")
	assert.Error(t, err)
}
