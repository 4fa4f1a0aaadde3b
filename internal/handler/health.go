package handler

import (
	"log/slog"
	"net/http"

	"github.com/GoArmGo/UserApp/internal/core/ports"
)

// HealthHandler проверяет доступность хранилища
func HealthHandler(checker ports.HealthChecker, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := checker.Ping(r.Context()); err != nil {
			logger.Warn("health check failed", "error", err)
			respondWithJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"}, logger)
			return
		}
		respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"}, logger)
	}
}
