package usecase

import (
	"errors"
	"fmt"

	"github.com/GoArmGo/UserApp/internal/config"
	"github.com/GoArmGo/UserApp/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

// maxBcryptPasswordBytes - предел входа bcrypt
const maxBcryptPasswordBytes = 72

// BcryptHasher хранит bcrypt-хэш пароля
type BcryptHasher struct {
	Cost int
}

func (h BcryptHasher) Hash(password string) (string, error) {
	cost := h.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		// max=72 в правилах считает символы, bcrypt - байты
		return "", domain.NewValidationError(domain.FieldError{
			Field:   "password",
			Message: fmt.Sprintf("must be at most %d bytes long", maxBcryptPasswordBytes),
		})
	}
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func (h BcryptHasher) Compare(stored, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)) == nil
}

// PlainHasher сохраняет пароль как есть. Только для совместимости со старыми данными.
type PlainHasher struct{}

func (PlainHasher) Hash(password string) (string, error) { return password, nil }

func (PlainHasher) Compare(stored, password string) bool { return stored == password }

// NewPasswordHasher выбирает политику по значению PASSWORD_HASHING
func NewPasswordHasher(policy string) (PasswordHasher, error) {
	switch policy {
	case config.PasswordHashingBcrypt, "":
		return BcryptHasher{}, nil
	case config.PasswordHashingNone:
		return PlainHasher{}, nil
	default:
		return nil, fmt.Errorf("unknown password hashing policy %q", policy)
	}
}
