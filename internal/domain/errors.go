package domain

import (
	"errors"
	"strings"
)

var (
	// ErrValidation - входные данные не прошли проверку или значение отвергнуто базой.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound - операция адресует несуществующего пользователя.
	ErrNotFound = errors.New("user not found")

	// ErrConflict - нарушение уникальности email.
	ErrConflict = errors.New("user with this email already exists")

	// ErrStoreUnavailable - хранилище недоступно (соединение, инфраструктура).
	ErrStoreUnavailable = errors.New("store unavailable")
)

// FieldError - ошибка проверки одного поля.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError собирает все ошибки проверки входных данных.
// errors.Is(err, ErrValidation) для неё возвращает true.
type ValidationError struct {
	Fields []FieldError
}

func NewValidationError(fields ...FieldError) *ValidationError {
	return &ValidationError{Fields: fields}
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return ErrValidation.Error()
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return ErrValidation.Error() + ": " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}
