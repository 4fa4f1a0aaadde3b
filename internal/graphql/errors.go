package graphql

import (
	"errors"

	"github.com/GoArmGo/UserApp/internal/domain"
)

const (
	codeValidation       = "VALIDATION_FAILED"
	codeNotFound         = "NOT_FOUND"
	codeConflict         = "CONFLICT"
	codeStoreUnavailable = "STORE_UNAVAILABLE"
	codeInternal         = "INTERNAL"
)

// resolverError попадает в ответ с кодом в extensions
type resolverError struct {
	message string
	code    string
	fields  []domain.FieldError
}

func (e *resolverError) Error() string {
	return e.message
}

func (e *resolverError) Extensions() map[string]interface{} {
	ext := map[string]interface{}{"code": e.code}
	if len(e.fields) > 0 {
		fields := make([]map[string]string, 0, len(e.fields))
		for _, f := range e.fields {
			fields = append(fields, map[string]string{"field": f.Field, "message": f.Message})
		}
		ext["fields"] = fields
	}
	return ext
}

// toResolverError переводит доменную ошибку в ошибку GraphQL
func (r *Resolver) toResolverError(err error) error {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		return &resolverError{message: domain.ErrValidation.Error(), code: codeValidation, fields: verr.Fields}
	case errors.Is(err, domain.ErrValidation):
		r.logger.Warn("value rejected by storage", "error", err)
		return &resolverError{message: domain.ErrValidation.Error(), code: codeValidation}
	case errors.Is(err, domain.ErrNotFound):
		return &resolverError{message: domain.ErrNotFound.Error(), code: codeNotFound}
	case errors.Is(err, domain.ErrConflict):
		return &resolverError{message: domain.ErrConflict.Error(), code: codeConflict}
	case errors.Is(err, domain.ErrStoreUnavailable):
		r.logger.Error("storage unavailable", "error", err)
		return &resolverError{message: domain.ErrStoreUnavailable.Error(), code: codeStoreUnavailable}
	default:
		r.logger.Error("unexpected resolver error", "error", err)
		return &resolverError{message: "internal server error", code: codeInternal}
	}
}
