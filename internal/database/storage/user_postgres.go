package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/GoArmGo/UserApp/internal/database/client"
	"github.com/GoArmGo/UserApp/internal/domain"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const userColumns = `id, email, username, password, first_name, last_name, created_at, updated_at`

// userRow - маппинг строки таблицы users для sqlx
type userRow struct {
	ID        uuid.UUID `db:"id"`
	Email     string    `db:"email"`
	Username  string    `db:"username"`
	Password  string    `db:"password"`
	FirstName *string   `db:"first_name"`
	LastName  *string   `db:"last_name"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r userRow) toDomain() *domain.User {
	return &domain.User{
		ID:        r.ID,
		Email:     r.Email,
		Username:  r.Username,
		Password:  r.Password,
		FirstName: r.FirstName,
		LastName:  r.LastName,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

// UserStorage реализует интерфейс ports.UserStorage на sqlx с ручным SQL
type UserStorage struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewUserStorage создает новый экземпляр UserStorage
func NewUserStorage(db *sqlx.DB, logger *slog.Logger) *UserStorage {
	return &UserStorage{db: db, logger: logger}
}

// CreateUser сохраняет пользователя. id, created_at и updated_at ставит база,
// now() в одной транзакции даёт одинаковые метки.
func (s *UserStorage) CreateUser(ctx context.Context, user domain.NewUser) (*domain.User, error) {
	start := time.Now()

	query := `
	INSERT INTO users (email, username, password, first_name, last_name)
	VALUES ($1, $2, $3, $4, $5)
	RETURNING ` + userColumns

	var row userRow
	err := s.db.GetContext(ctx, &row, query,
		user.Email, user.Username, user.Password, user.FirstName, user.LastName)
	if err != nil {
		err = client.TranslateError(err)
		s.logger.Error("failed to insert user", "email", user.Email, "error", err)
		return nil, fmt.Errorf("insert user: %w", err)
	}

	s.logger.Info("user created",
		"user_id", row.ID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return row.toDomain(), nil
}

// GetUserByID получает пользователя по ID
func (s *UserStorage) GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	start := time.Now()

	var row userRow
	err := s.db.GetContext(ctx, &row, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	if err != nil {
		err = client.TranslateError(err)
		if errors.Is(err, domain.ErrNotFound) {
			s.logger.Warn("user not found by id", "user_id", id)
			return nil, err
		}
		s.logger.Error("failed to select user by id", "user_id", id, "error", err)
		return nil, fmt.Errorf("select user %s: %w", id, err)
	}

	s.logger.Info("user retrieved by id",
		"user_id", id,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return row.toDomain(), nil
}

// ListUsers получает всех пользователей в порядке создания
func (s *UserStorage) ListUsers(ctx context.Context) ([]domain.User, error) {
	start := time.Now()

	var rows []userRow
	q := `SELECT ` + userColumns + ` FROM users ORDER BY created_at ASC, id ASC`
	if err := s.db.SelectContext(ctx, &rows, q); err != nil {
		err = client.TranslateError(err)
		s.logger.Error("failed to list users", "error", err)
		return nil, fmt.Errorf("select users: %w", err)
	}

	users := make([]domain.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, *row.toDomain())
	}

	s.logger.Info("listed users successfully",
		"count", len(users),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return users, nil
}

// UpdateUser меняет только переданные поля одним UPDATE ... RETURNING
func (s *UserStorage) UpdateUser(ctx context.Context, id uuid.UUID, patch domain.UserPatch) (*domain.User, error) {
	start := time.Now()

	query, args := buildUpdate(id, patch)

	var row userRow
	err := s.db.GetContext(ctx, &row, query, args...)
	if err != nil {
		err = client.TranslateError(err)
		if errors.Is(err, domain.ErrNotFound) {
			s.logger.Warn("user to update not found", "user_id", id)
			return nil, err
		}
		s.logger.Error("failed to update user", "user_id", id, "error", err)
		return nil, fmt.Errorf("update user %s: %w", id, err)
	}

	s.logger.Info("user updated",
		"user_id", id,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return row.toDomain(), nil
}

// DeleteUser удаляет строку, повторное удаление вернёт ErrNotFound
func (s *UserStorage) DeleteUser(ctx context.Context, id uuid.UUID) error {
	start := time.Now()

	res, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		err = client.TranslateError(err)
		s.logger.Error("failed to delete user", "user_id", id, "error", err)
		return fmt.Errorf("delete user %s: %w", id, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete user %s: rows affected: %w", id, err)
	}
	if n == 0 {
		s.logger.Warn("user to delete not found", "user_id", id)
		return domain.ErrNotFound
	}

	s.logger.Info("user deleted",
		"user_id", id,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// buildUpdate собирает UPDATE только по присутствующим полям.
// updated_at = GREATEST(now(), updated_at + 1мкс) гарантирует строгий рост.
func buildUpdate(id uuid.UUID, patch domain.UserPatch) (string, []any) {
	sets := make([]string, 0, 6)
	args := make([]any, 0, 6)

	add := func(column string, value *string) {
		if value == nil {
			return
		}
		args = append(args, *value)
		sets = append(sets, column+" = $"+strconv.Itoa(len(args)))
	}
	add("email", patch.Email)
	add("username", patch.Username)
	add("password", patch.Password)
	add("first_name", patch.FirstName)
	add("last_name", patch.LastName)

	sets = append(sets, "updated_at = GREATEST(now(), updated_at + interval '1 microsecond')")
	args = append(args, id)

	query := `UPDATE users SET ` + strings.Join(sets, ", ") +
		` WHERE id = $` + strconv.Itoa(len(args)) +
		` RETURNING ` + userColumns
	return query, args
}
