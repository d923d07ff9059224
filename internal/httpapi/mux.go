package httpapi

import (
	"database/sql"
	"net/http"

	"github.com/asymonsziebart/TempHumidityMonitor/internal/metrics"
)

// DeviceStatus reports whether the sensor board is currently attached.
type DeviceStatus interface {
	Connected() bool
}

func NewMux(db *sql.DB, device DeviceStatus, m *metrics.Metrics) *http.ServeMux {
	mux := http.NewServeMux()
	registerHealthcheck(mux, db, device)
	mux.Handle("GET /metrics", m.Handler())
	return mux
}
