package httpapi

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/asymonsziebart/TempHumidityMonitor/internal/utils"
)

type healthchecker interface {
	handleHealthz(w http.ResponseWriter, r *http.Request)
}

type healthcheckerImpl struct {
	db     *sql.DB
	device DeviceStatus
}

func NewHealthchecker(db *sql.DB, device DeviceStatus) healthchecker {
	return &healthcheckerImpl{db: db, device: device}
}

// handleHealthz fails only when the database is unreachable. A detached board
// is reported but does not make the service unhealthy.
func (h *healthcheckerImpl) handleHealthz(w http.ResponseWriter, r *http.Request) {
	var ok int
	if err := h.db.QueryRowContext(r.Context(), `SELECT 1`).Scan(&ok); err != nil {
		slog.Error("failed to check database connectivity", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to check database connectivity")
		return
	}
	device := "disconnected"
	if h.device != nil && h.device.Connected() {
		device = "connected"
	}
	utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok", "device": device})
}

func registerHealthcheck(mux *http.ServeMux, db *sql.DB, device DeviceStatus) {
	healthchecker := NewHealthchecker(db, device)
	mux.HandleFunc("GET /healthz", healthchecker.handleHealthz)
}
