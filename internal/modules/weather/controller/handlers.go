package controller

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/asymonsziebart/TempHumidityMonitor/internal/modules/weather/service"
	"github.com/asymonsziebart/TempHumidityMonitor/internal/utils"
)

func (c *weatherControllerImpl) handleWeather(w http.ResponseWriter, r *http.Request) {
	conditions, err := c.service.Current(r.Context())
	if errors.Is(err, service.ErrDisabled) {
		utils.WriteError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	if err != nil {
		// The last good value, or the zero value, is still served.
		slog.Debug("weather: serving cached conditions", "error", err)
	}
	utils.WriteJSON(w, http.StatusOK, conditions)
}
