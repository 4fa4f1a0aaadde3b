package storage

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/GoArmGo/UserApp/internal/domain"
	"github.com/GoArmGo/UserApp/internal/logger"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var columns = []string{"id", "email", "username", "password", "first_name", "last_name", "created_at", "updated_at"}

func newMockStorage(t *testing.T) (*UserStorage, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return NewUserStorage(sqlx.NewDb(db, "postgres"), logger.NewNop()), mock
}

func TestCreateUser(t *testing.T) {
	s, mock := newMockStorage(t)
	id := uuid.New()
	now := time.Now().UTC().Truncate(time.Microsecond)
	first := "Ann"

	mock.ExpectQuery(`INSERT INTO users \(email, username, password, first_name, last_name\)`).
		WithArgs("a@b.com", "ab", "hash", "Ann", nil).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow(id.String(), "a@b.com", "ab", "hash", "Ann", nil, now, now))

	got, err := s.CreateUser(context.Background(), domain.NewUser{
		Email: "a@b.com", Username: "ab", Password: "hash", FirstName: &first,
	})
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, got.CreatedAt, got.UpdatedAt)
	require.NotNil(t, got.FirstName)
	assert.Equal(t, "Ann", *got.FirstName)
	assert.Nil(t, got.LastName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	s, mock := newMockStorage(t)

	mock.ExpectQuery(`INSERT INTO users`).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "uq_users_email"})

	_, err := s.CreateUser(context.Background(), domain.NewUser{Email: "a@b.com", Username: "ab", Password: "x"})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestGetUserByID(t *testing.T) {
	s, mock := newMockStorage(t)
	id := uuid.New()
	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT .* FROM users WHERE id = \$1`).
		WithArgs(id.String()).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow(id.String(), "a@b.com", "ab", "hash", nil, "Lee", now, now))

	got, err := s.GetUserByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", got.Email)
	require.NotNil(t, got.LastName)
	assert.Equal(t, "Lee", *got.LastName)
}

func TestGetUserByID_NotFound(t *testing.T) {
	s, mock := newMockStorage(t)

	mock.ExpectQuery(`SELECT .* FROM users WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows(columns))

	_, err := s.GetUserByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGetUserByID_StoreUnavailable(t *testing.T) {
	s, mock := newMockStorage(t)

	mock.ExpectQuery(`SELECT .* FROM users`).
		WillReturnError(&pq.Error{Code: "57P01"})

	_, err := s.GetUserByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
}

func TestListUsers(t *testing.T) {
	s, mock := newMockStorage(t)
	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT .* FROM users ORDER BY created_at ASC, id ASC`).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow(uuid.NewString(), "a@b.com", "a", "h", nil, nil, now, now).
			AddRow(uuid.NewString(), "c@d.com", "c", "h", nil, nil, now.Add(time.Millisecond), now.Add(time.Millisecond)))

	users, err := s.ListUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "a@b.com", users[0].Email)
	assert.Equal(t, "c@d.com", users[1].Email)
}

func TestListUsers_Empty(t *testing.T) {
	s, mock := newMockStorage(t)

	mock.ExpectQuery(`SELECT .* FROM users`).WillReturnRows(sqlmock.NewRows(columns))

	users, err := s.ListUsers(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, users)
	assert.Empty(t, users)
}

func TestUpdateUser(t *testing.T) {
	s, mock := newMockStorage(t)
	id := uuid.New()
	created := time.Now().UTC().Add(-time.Minute)
	updated := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta(
		`UPDATE users SET username = $1, updated_at = GREATEST(now(), updated_at + interval '1 microsecond') WHERE id = $2 RETURNING`)).
		WithArgs("abc", id.String()).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow(id.String(), "a@b.com", "abc", "hash", nil, nil, created, updated))

	name := "abc"
	got, err := s.UpdateUser(context.Background(), id, domain.UserPatch{Username: &name})
	require.NoError(t, err)
	assert.Equal(t, "abc", got.Username)
	assert.True(t, got.UpdatedAt.After(got.CreatedAt))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateUser_NotFound(t *testing.T) {
	s, mock := newMockStorage(t)

	mock.ExpectQuery(`UPDATE users SET`).WillReturnRows(sqlmock.NewRows(columns))

	name := "abc"
	_, err := s.UpdateUser(context.Background(), uuid.New(), domain.UserPatch{Username: &name})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdateUser_EmailTaken(t *testing.T) {
	s, mock := newMockStorage(t)

	mock.ExpectQuery(`UPDATE users SET email = \$1`).
		WillReturnError(&pq.Error{Code: "23505"})

	email := "taken@b.com"
	_, err := s.UpdateUser(context.Background(), uuid.New(), domain.UserPatch{Email: &email})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestDeleteUser_Twice(t *testing.T) {
	s, mock := newMockStorage(t)
	id := uuid.New()

	mock.ExpectExec(`DELETE FROM users WHERE id = \$1`).
		WithArgs(id.String()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM users WHERE id = \$1`).
		WithArgs(id.String()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, s.DeleteUser(context.Background(), id))
	assert.ErrorIs(t, s.DeleteUser(context.Background(), id), domain.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBuildUpdate(t *testing.T) {
	id := uuid.New()
	email, last := "x@y.z", ""

	query, args := buildUpdate(id, domain.UserPatch{Email: &email, LastName: &last})

	assert.Contains(t, query, "email = $1, last_name = $2, updated_at = GREATEST(")
	assert.Contains(t, query, "WHERE id = $3 RETURNING id,")
	assert.Equal(t, []any{"x@y.z", "", id}, args)
}
