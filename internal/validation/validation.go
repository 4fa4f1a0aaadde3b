// Package validation содержит правила проверки входных данных для создания и
// обновления пользователя. Правила общие для REST и GraphQL и применяются на
// границе транспорта, до вызова юзкейса.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/GoArmGo/UserApp/internal/domain"
	"github.com/go-playground/validator/v10"
)

// CreateUserInput - входные данные для создания пользователя.
type CreateUserInput struct {
	Email     string  `json:"email" validate:"required,email"`
	Username  string  `json:"username" validate:"required"`
	Password  string  `json:"password" validate:"required,min=6,max=72"`
	FirstName *string `json:"firstName,omitempty"`
	LastName  *string `json:"lastName,omitempty"`
}

// ToNewUser переводит проверенный ввод в доменную модель.
func (in CreateUserInput) ToNewUser() domain.NewUser {
	return domain.NewUser{
		Email:     in.Email,
		Username:  in.Username,
		Password:  in.Password,
		FirstName: in.FirstName,
		LastName:  in.LastName,
	}
}

// UpdateUserInput - частичное обновление. Отсутствующее поле не меняется,
// присутствующее должно удовлетворять тем же правилам, что и при создании.
// required для указателя проверяет только nil, поэтому непустоту задаёт min.
type UpdateUserInput struct {
	Email     *string `json:"email,omitempty" validate:"omitnil,email"`
	Username  *string `json:"username,omitempty" validate:"omitnil,min=1"`
	Password  *string `json:"password,omitempty" validate:"omitnil,min=6,max=72"`
	FirstName *string `json:"firstName,omitempty"`
	LastName  *string `json:"lastName,omitempty"`
}

// ToPatch переводит проверенный ввод в доменный патч.
func (in UpdateUserInput) ToPatch() domain.UserPatch {
	return domain.UserPatch{
		Email:     in.Email,
		Username:  in.Username,
		Password:  in.Password,
		FirstName: in.FirstName,
		LastName:  in.LastName,
	}
}

// Validator оборачивает validator.Validate и переводит его ошибки в domain.ValidationError.
type Validator struct {
	validate *validator.Validate
}

func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	// в ошибках используем имена полей из json, как их видит клиент
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	return &Validator{validate: v}
}

// ValidateCreate проверяет ввод для создания пользователя.
func (v *Validator) ValidateCreate(in CreateUserInput) error {
	return v.check(in)
}

// ValidateUpdate проверяет ввод для частичного обновления.
func (v *Validator) ValidateUpdate(in UpdateUserInput) error {
	return v.check(in)
}

func (v *Validator) check(in any) error {
	err := v.validate.Struct(in)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate input: %w", err)
	}

	fields := make([]domain.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, domain.FieldError{
			Field:   fe.Field(),
			Message: message(fe),
		})
	}
	return domain.NewValidationError(fields...)
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "must not be empty"
	case "email":
		return "must be a valid email address"
	case "min":
		if fe.Param() == "1" {
			return "must not be empty"
		}
		return fmt.Sprintf("must be at least %s characters long", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters long", fe.Param())
	default:
		return fmt.Sprintf("failed %q rule", fe.Tag())
	}
}
