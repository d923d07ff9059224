package controller

import (
	"net/http"

	"github.com/asymonsziebart/TempHumidityMonitor/internal/modules/weather/service"
)

type WeatherController interface {
	RegisterRoutes(mux *http.ServeMux)
}

type weatherControllerImpl struct {
	service *service.Service
}

func NewWeatherController(s *service.Service) WeatherController {
	return &weatherControllerImpl{service: s}
}

func (c *weatherControllerImpl) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /weather", c.handleWeather)
}
