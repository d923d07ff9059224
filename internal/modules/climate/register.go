package climate

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/asymonsziebart/TempHumidityMonitor/internal/metrics"
	"github.com/asymonsziebart/TempHumidityMonitor/internal/modules/climate/controller"
	"github.com/asymonsziebart/TempHumidityMonitor/internal/modules/climate/live"
	"github.com/asymonsziebart/TempHumidityMonitor/internal/modules/climate/repository"
	"github.com/asymonsziebart/TempHumidityMonitor/internal/modules/climate/service"
	"github.com/asymonsziebart/TempHumidityMonitor/internal/modules/climate/types"
	"github.com/asymonsziebart/TempHumidityMonitor/internal/mqtt"
)

// Publisher mirrors stored readings to an external system.
type Publisher interface {
	PublishReading(r types.Reading) error
}

type Dependencies struct {
	Repository repository.ReadingRepository
	Pipeline   *service.Pipeline
	Thresholds types.Thresholds
	// Publisher is optional.
	Publisher      Publisher
	WeatherEnabled bool
	Logger         *slog.Logger
	Metrics        *metrics.Metrics
}

// RegisterFeature mounts the climate routes and subscribes the live hub and
// the publisher to the pipeline. The returned hub must be closed on shutdown.
func RegisterFeature(mux *http.ServeMux, deps Dependencies) *live.Hub {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	current := func() controller.DataResponse {
		return controller.NewDataResponse(deps.Pipeline.Snapshot(), deps.Pipeline.Connected(), deps.Thresholds)
	}
	hub := live.NewHub(logger, func() any { return current() })

	deps.Pipeline.OnIngest(func(_ types.Reading, snap types.Snapshot) {
		hub.Broadcast(controller.NewDataResponse(snap, deps.Pipeline.Connected(), deps.Thresholds))
	})

	if deps.Publisher != nil {
		deps.Pipeline.OnIngest(func(r types.Reading, _ types.Snapshot) {
			err := deps.Publisher.PublishReading(r)
			switch {
			case err == nil:
			case errors.Is(err, mqtt.ErrNotConnected):
				logger.Debug("mqtt publish skipped", "error", err)
			default:
				deps.Metrics.PublishFailed()
				logger.Warn("mqtt publish failed", "error", err)
			}
		})
	}

	climateController := controller.NewClimateController(controller.Options{
		Repository:     deps.Repository,
		Pipeline:       deps.Pipeline,
		Thresholds:     deps.Thresholds,
		Live:           hub,
		WeatherEnabled: deps.WeatherEnabled,
	})
	climateController.RegisterRoutes(mux)
	return hub
}
