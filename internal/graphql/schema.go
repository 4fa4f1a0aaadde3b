// Package graphql отдаёт пользователей через GraphQL. Схема описана в
// schema.graphql, резолверы только переводят аргументы и вызывают юзкейс.
package graphql

import (
	_ "embed"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/GoArmGo/UserApp/internal/usecase"
	"github.com/GoArmGo/UserApp/internal/validation"
	graphqlgo "github.com/graph-gophers/graphql-go"
	"github.com/graph-gophers/graphql-go/relay"
)

//go:embed schema.graphql
var schemaSDL string

// NewSchema разбирает схему и связывает её с резолверами
func NewSchema(uc usecase.UserUseCase, v *validation.Validator, logger *slog.Logger) (*graphqlgo.Schema, error) {
	schema, err := graphqlgo.ParseSchema(schemaSDL, &Resolver{
		userUseCase: uc,
		validator:   v,
		logger:      logger,
	})
	if err != nil {
		return nil, fmt.Errorf("parse graphql schema: %w", err)
	}
	return schema, nil
}

// NewHandler возвращает HTTP-обработчик для POST {query, operationName, variables}
func NewHandler(schema *graphqlgo.Schema) http.Handler {
	return &relay.Handler{Schema: schema}
}
