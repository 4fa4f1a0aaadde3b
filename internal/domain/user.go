// internal/domain/user.go
package domain

import (
	"time"

	"github.com/google/uuid"
)

// User представляет модель пользователя в системе.
// Доменная модель не знает ни о таблице, ни о формате передачи:
// маппинги на БД и на JSON/GraphQL живут в соответствующих адаптерах.
type User struct {
	ID        uuid.UUID
	Email     string
	Username  string
	Password  string
	FirstName *string
	LastName  *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewUser - данные для создания пользователя. ID и временные метки выставляет хранилище.
type NewUser struct {
	Email     string
	Username  string
	Password  string
	FirstName *string
	LastName  *string
}

// UserPatch описывает частичное обновление: nil означает "поле не меняется".
// Поля ID здесь нет намеренно - идентификатор после создания не меняется.
type UserPatch struct {
	Email     *string
	Username  *string
	Password  *string
	FirstName *string
	LastName  *string
}

// IsEmpty сообщает, что в патче нет ни одного поля.
func (p UserPatch) IsEmpty() bool {
	return p.Email == nil && p.Username == nil && p.Password == nil &&
		p.FirstName == nil && p.LastName == nil
}

// Apply возвращает копию пользователя с применённым патчем.
func (p UserPatch) Apply(u User) User {
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.Username != nil {
		u.Username = *p.Username
	}
	if p.Password != nil {
		u.Password = *p.Password
	}
	if p.FirstName != nil {
		v := *p.FirstName
		u.FirstName = &v
	}
	if p.LastName != nil {
		v := *p.LastName
		u.LastName = &v
	}
	return u
}

// ParseUserID разбирает внешний идентификатор. Некорректный ID не адресует
// ни одной строки, поэтому возвращается ErrNotFound.
func ParseUserID(id string) (uuid.UUID, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, ErrNotFound
	}
	return parsed, nil
}
