package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/GoArmGo/UserApp/internal/database/client"
	"github.com/GoArmGo/UserApp/internal/domain"
	"github.com/google/uuid"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

// userRecord - маппинг пользователя на таблицу users для GORM
type userRecord struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Email     string    `gorm:"not null;uniqueIndex:uq_users_email"`
	Username  string    `gorm:"not null"`
	Password  string    `gorm:"not null"`
	FirstName *string
	LastName  *string
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (userRecord) TableName() string {
	return "users"
}

func (r userRecord) toDomain() *domain.User {
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

// NewGormDB открывает GORM поверх уже созданного пула соединений.
// Транзакция по умолчанию отключена: каждая операция затрагивает одну строку
// и выполняется одним запросом.
func NewGormDB(sqlDB *sql.DB, logSQL bool, logger *slog.Logger) (*gorm.DB, error) {
	level := gormlogger.Warn
	if logSQL {
		level = gormlogger.Info
	}

	gl := gormlogger.New(
		slog.NewLogLogger(logger.Handler(), slog.LevelInfo),
		gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 gl,
		NowFunc: func() time.Time {
			// postgres хранит микросекунды
			return time.Now().UTC().Truncate(time.Microsecond)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("open gorm: %w", err)
	}
	return db, nil
}

// GormUserStorage реализует интерфейс ports.UserStorage с использованием GORM
type GormUserStorage struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewGormUserStorage создает новый экземпляр GormUserStorage
func NewGormUserStorage(db *gorm.DB, logger *slog.Logger) *GormUserStorage {
	return &GormUserStorage{db: db, logger: logger}
}

// CreateUser сохраняет пользователя; id генерирует база, метки времени - GORM (одно значение на обе)
func (s *GormUserStorage) CreateUser(ctx context.Context, user domain.NewUser) (*domain.User, error) {
	start := time.Now()

	rec := userRecord{
		Email:     user.Email,
		Username:  user.Username,
		Password:  user.Password,
		FirstName: user.FirstName,
		LastName:  user.LastName,
	}

	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		err = translate(err)
		s.logger.Error("failed to create user", "email", user.Email, "error", err)
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info("user created",
		"user_id", rec.ID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return rec.toDomain(), nil
}

// GetUserByID получает пользователя по ID
func (s *GormUserStorage) GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	start := time.Now()

	var rec userRecord
	err := s.db.WithContext(ctx).Where("id = ?", id).Take(&rec).Error
	if err != nil {
		err = translate(err)
		if errors.Is(err, domain.ErrNotFound) {
			s.logger.Debug("user not found by id", "user_id", id)
			return nil, err
		}
		s.logger.Error("failed to get user by id", "user_id", id, "error", err)
		return nil, fmt.Errorf("get user %s: %w", id, err)
	}

	s.logger.Debug("user retrieved by id",
		"user_id", id,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return rec.toDomain(), nil
}

// ListUsers получает всех пользователей в порядке создания
func (s *GormUserStorage) ListUsers(ctx context.Context) ([]domain.User, error) {
	start := time.Now()

	var recs []userRecord
	err := s.db.WithContext(ctx).
		Order("created_at ASC").
		Order("id ASC").
		Find(&recs).Error
	if err != nil {
		err = translate(err)
		s.logger.Error("failed to list users", "error", err)
		return nil, fmt.Errorf("list users: %w", err)
	}

	users := make([]domain.User, 0, len(recs))
	for _, rec := range recs {
		users = append(users, *rec.toDomain())
	}

	s.logger.Debug("listed users",
		"count", len(users),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return users, nil
}

// UpdateUser меняет только переданные поля. updated_at строго растёт даже
// при совпадении часов: берётся максимум из now и прошлого значения + 1мкс.
func (s *GormUserStorage) UpdateUser(ctx context.Context, id uuid.UUID, patch domain.UserPatch) (*domain.User, error) {
	start := time.Now()

	values := patchValues(patch)
	values["updated_at"] = gorm.Expr("GREATEST(?, updated_at + interval '1 microsecond')", s.db.NowFunc())

	var rec userRecord
	res := s.db.WithContext(ctx).
		Model(&rec).
		Clauses(clause.Returning{}).
		Where("id = ?", id).
		Updates(values)
	if res.Error != nil {
		err := translate(res.Error)
		s.logger.Error("failed to update user", "user_id", id, "error", err)
		return nil, fmt.Errorf("update user %s: %w", id, err)
	}
	if res.RowsAffected == 0 {
		s.logger.Debug("user to update not found", "user_id", id)
		return nil, domain.ErrNotFound
	}

	s.logger.Info("user updated",
		"user_id", id,
		"fields", len(values)-1,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return rec.toDomain(), nil
}

// DeleteUser удаляет пользователя без мягкого удаления
func (s *GormUserStorage) DeleteUser(ctx context.Context, id uuid.UUID) error {
	start := time.Now()

	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&userRecord{})
	if res.Error != nil {
		err := translate(res.Error)
		s.logger.Error("failed to delete user", "user_id", id, "error", err)
		return fmt.Errorf("delete user %s: %w", id, err)
	}
	if res.RowsAffected == 0 {
		s.logger.Debug("user to delete not found", "user_id", id)
		return domain.ErrNotFound
	}

	s.logger.Info("user deleted",
		"user_id", id,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

func patchValues(patch domain.UserPatch) map[string]any {
	values := make(map[string]any, 6)
	if patch.Email != nil {
		values["email"] = *patch.Email
	}
	if patch.Username != nil {
		values["username"] = *patch.Username
	}
	if patch.Password != nil {
		values["password"] = *patch.Password
	}
	if patch.FirstName != nil {
		values["first_name"] = *patch.FirstName
	}
	if patch.LastName != nil {
		values["last_name"] = *patch.LastName
	}
	return values
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrNotFound
	}
	return client.TranslateError(err)
}
