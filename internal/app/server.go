package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/GoArmGo/UserApp/internal/graphql"
	"github.com/GoArmGo/UserApp/internal/handler"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

const shutdownTimeout = 30 * time.Second

// Router собирает все HTTP-маршруты: REST, GraphQL и health
func (a *App) Router() (http.Handler, error) {
	userHandler := handler.NewUserHandler(a.userUseCase, a.validator, a.logger)

	schema, err := graphql.NewSchema(a.userUseCase, a.validator, a.logger)
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(handler.RequestLogger(a.logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   a.Config.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: a.Config.CORSAllowCredentials,
		MaxAge:           300,
	}))
	r.Use(middleware.Timeout(a.Config.RequestTimeout))

	r.Get("/health", handler.HealthHandler(a.health, a.logger))
	r.Route("/users", userHandler.Routes)
	r.Method(http.MethodPost, a.Config.GraphQLPath, graphql.NewHandler(schema))

	return r, nil
}

// runServer запускает HTTP сервер и ждёт отмены контекста
func (a *App) runServer(ctx context.Context) error {
	router, err := a.Router()
	if err != nil {
		return err
	}

	serverAddr := fmt.Sprintf(":%s", a.Config.ServerPort)
	server := &http.Server{
		Addr:              serverAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("server started", "addr", serverAddr, "graphql_path", a.Config.GraphQLPath)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	a.logger.Info("shutdown signal received, stopping server")

	ctxServer, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctxServer); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	a.logger.Info("server stopped")
	return nil
}
