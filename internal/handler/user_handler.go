package handler

import (
	"log/slog"
	"net/http"

	"github.com/GoArmGo/UserApp/internal/usecase"
	"github.com/GoArmGo/UserApp/internal/validation"
	"github.com/go-chi/chi/v5"
)

// UserHandler - обработчик HTTP-запросов для работы с пользователями.
type UserHandler struct {
	userUseCase usecase.UserUseCase
	validator   *validation.Validator
	logger      *slog.Logger
}

// NewUserHandler создаёт новый экземпляр UserHandler.
func NewUserHandler(uc usecase.UserUseCase, v *validation.Validator, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		userUseCase: uc,
		validator:   v,
		logger:      logger,
	}
}

// Routes регистрирует маршруты /users
func (h *UserHandler) Routes(r chi.Router) {
	r.Post("/", h.CreateUser)
	r.Get("/", h.ListUsers)
	r.Get("/{id}", h.GetUser)
	r.Patch("/{id}", h.UpdateUser)
	r.Delete("/{id}", h.DeleteUser)
}

// CreateUser - POST /users
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var in validation.CreateUserInput
	if err := decodeJSON(w, r, &in); err != nil {
		h.logger.Warn("invalid request body", "endpoint", "CreateUser", "error", err)
		respondWithError(w, http.StatusBadRequest, err.Error(), h.logger)
		return
	}
	if err := h.validator.ValidateCreate(in); err != nil {
		h.logger.Warn("validation failed", "endpoint", "CreateUser", "error", err)
		respondWithDomainError(w, err, h.logger)
		return
	}

	user, err := h.userUseCase.Create(r.Context(), in.ToNewUser())
	if err != nil {
		respondWithDomainError(w, err, h.logger)
		return
	}

	respondWithJSON(w, http.StatusCreated, toUserResponse(*user), h.logger)
}

// ListUsers - GET /users
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.userUseCase.FindAll(r.Context())
	if err != nil {
		respondWithDomainError(w, err, h.logger)
		return
	}

	resp := make([]userResponse, 0, len(users))
	for _, u := range users {
		resp = append(resp, toUserResponse(u))
	}
	respondWithJSON(w, http.StatusOK, resp, h.logger)
}

// GetUser - GET /users/{id}
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	user, err := h.userUseCase.FindOne(r.Context(), id)
	if err != nil {
		respondWithDomainError(w, err, h.logger)
		return
	}

	respondWithJSON(w, http.StatusOK, toUserResponse(*user), h.logger)
}

// UpdateUser - PATCH /users/{id}. id в теле не принимается.
func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var in validation.UpdateUserInput
	if err := decodeJSON(w, r, &in); err != nil {
		h.logger.Warn("invalid request body", "endpoint", "UpdateUser", "user_id", id, "error", err)
		respondWithError(w, http.StatusBadRequest, err.Error(), h.logger)
		return
	}
	if err := h.validator.ValidateUpdate(in); err != nil {
		h.logger.Warn("validation failed", "endpoint", "UpdateUser", "user_id", id, "error", err)
		respondWithDomainError(w, err, h.logger)
		return
	}

	user, err := h.userUseCase.Update(r.Context(), id, in.ToPatch())
	if err != nil {
		respondWithDomainError(w, err, h.logger)
		return
	}

	respondWithJSON(w, http.StatusOK, toUserResponse(*user), h.logger)
}

// DeleteUser - DELETE /users/{id}
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.userUseCase.Delete(r.Context(), id); err != nil {
		respondWithDomainError(w, err, h.logger)
		return
	}

	h.logger.Info("user removed", "user_id", id)
	respondWithJSON(w, http.StatusOK, deleteResponse{Deleted: true, ID: id}, h.logger)
}
