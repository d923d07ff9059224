package weather

import (
	"log/slog"
	"net/http"

	"github.com/asymonsziebart/TempHumidityMonitor/internal/config"
	"github.com/asymonsziebart/TempHumidityMonitor/internal/metrics"
	"github.com/asymonsziebart/TempHumidityMonitor/internal/modules/weather/client"
	"github.com/asymonsziebart/TempHumidityMonitor/internal/modules/weather/controller"
	"github.com/asymonsziebart/TempHumidityMonitor/internal/modules/weather/service"
)

func RegisterFeature(mux *http.ServeMux, cfg config.Config, logger *slog.Logger, m *metrics.Metrics) *service.Service {
	var fetcher service.Fetcher
	if cfg.WeatherAPIKey != "" {
		fetcher = client.New(cfg.WeatherAPIURL, cfg.WeatherAPIKey, cfg.WeatherQuery, cfg.WeatherTimeout)
	} else {
		logger.Info("weather disabled: WEATHER_API_KEY not set")
	}
	weatherService := service.NewService(fetcher, cfg.WeatherRefreshInterval, logger, m)
	weatherController := controller.NewWeatherController(weatherService)
	weatherController.RegisterRoutes(mux)
	return weatherService
}
