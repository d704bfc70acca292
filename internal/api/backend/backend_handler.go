package backend

import (
	"log/slog"
	"net/http"

	"github.com/FACorreiaa/go-travel-planner/internal/api"
)

// HealthHandler reports the session backend's health.
func HealthHandler(c *Client, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status, err := c.Health(r.Context())
		if err != nil {
			logger.WarnContext(r.Context(), "Backend health check failed", slog.Any("error", err))
			api.ErrorResponse(w, r, http.StatusServiceUnavailable, "Session backend is unavailable")
			return
		}
		api.WriteJSONResponse(w, r, http.StatusOK, status)
	}
}
