package handlers

import (
	"net/http"
	"time"

	"github.com/camp-rental/backend/internal/calendar"
	"github.com/camp-rental/backend/internal/storage"
	"github.com/camp-rental/backend/internal/websocket"
)

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status           string               `json:"status"`
	Version          string               `json:"version"`
	DBConnected      bool                 `json:"db_connected"`
	WebSocketClients int                  `json:"websocket_clients"`
	NextRuns         map[string]time.Time `json:"next_runs,omitempty"`
}

// HealthCheck returns a handler that performs a health check.
// hub and scheduler may be nil.
func HealthCheck(db *storage.DB, hub *websocket.Hub, scheduler *calendar.Scheduler, version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dbConnected := db.PingContext(r.Context()) == nil

		response := HealthResponse{
			Status:      "healthy",
			Version:     version,
			DBConnected: dbConnected,
		}
		if hub != nil {
			response.WebSocketClients = hub.ClientCount()
		}
		if scheduler != nil {
			response.NextRuns = scheduler.NextRuns()
		}

		status := http.StatusOK
		if !dbConnected {
			response.Status = "degraded"
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, response)
	}
}
