package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/asymonsziebart/TempHumidityMonitor/internal/modules/climate/repository"
	"github.com/asymonsziebart/TempHumidityMonitor/internal/modules/climate/service"
	"github.com/asymonsziebart/TempHumidityMonitor/internal/modules/climate/types"
)

// Pipeline is the part of service.Pipeline the HTTP layer needs.
type Pipeline interface {
	Poll(ctx context.Context) (service.Outcome, error)
	Snapshot() types.Snapshot
	Connected() bool
}

type ClimateController interface {
	RegisterRoutes(mux *http.ServeMux)
}

type Options struct {
	Repository repository.ReadingRepository
	Pipeline   Pipeline
	Thresholds types.Thresholds
	// Live serves GET /ws when set.
	Live           http.Handler
	WeatherEnabled bool
}

type climateControllerImpl struct {
	repository     repository.ReadingRepository
	pipeline       Pipeline
	thresholds     types.Thresholds
	live           http.Handler
	weatherEnabled bool
	now            func() time.Time
}

func NewClimateController(opts Options) ClimateController {
	return &climateControllerImpl{
		repository:     opts.Repository,
		pipeline:       opts.Pipeline,
		thresholds:     opts.Thresholds,
		live:           opts.Live,
		weatherEnabled: opts.WeatherEnabled,
		now:            time.Now,
	}
}

func (c *climateControllerImpl) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /", c.handleDashboard)
	mux.HandleFunc("GET /data", c.handleData)
	mux.HandleFunc("GET /export_csv", c.handleExportCSV)
	mux.HandleFunc("GET /export_xlsx", c.handleExportXLSX)

	mux.HandleFunc("GET /api/v1/series", c.handleSeries)
	mux.HandleFunc("GET /api/v1/extrema", c.handleExtrema)
	mux.HandleFunc("POST /api/v1/poll", c.handlePoll)

	if c.live != nil {
		mux.Handle("GET /ws", c.live)
	}
}
