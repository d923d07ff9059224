package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/asymonsziebart/TempHumidityMonitor/internal/config"
	"github.com/asymonsziebart/TempHumidityMonitor/internal/db"
	"github.com/asymonsziebart/TempHumidityMonitor/internal/device"
	"github.com/asymonsziebart/TempHumidityMonitor/internal/httpapi"
	"github.com/asymonsziebart/TempHumidityMonitor/internal/metrics"
	"github.com/asymonsziebart/TempHumidityMonitor/internal/modules/climate"
	"github.com/asymonsziebart/TempHumidityMonitor/internal/modules/climate/repository"
	"github.com/asymonsziebart/TempHumidityMonitor/internal/modules/climate/service"
	"github.com/asymonsziebart/TempHumidityMonitor/internal/modules/climate/snapshot"
	"github.com/asymonsziebart/TempHumidityMonitor/internal/modules/climate/types"
	climateviews "github.com/asymonsziebart/TempHumidityMonitor/internal/modules/climate/views"
	"github.com/asymonsziebart/TempHumidityMonitor/internal/modules/weather"
	"github.com/asymonsziebart/TempHumidityMonitor/internal/mqtt"
)

func Run(ctx context.Context, cfg config.Config) error {
	logger := slog.Default()
	logger.Info("config loaded",
		"appEnv", cfg.AppEnv,
		"logLevel", cfg.LogLevel.String(),
		"httpAddr", cfg.HTTPAddr,
		"rateLimitRPS", cfg.RateLimitRPS,
		"sqliteDriver", cfg.SQLiteDriver,
		"sqlitePath", cfg.SQLitePath,
		"sqliteMaxOpenConns", cfg.SQLiteMaxOpenConns,
		"sqliteLogQueries", cfg.SQLiteLogQueries,
		"serialPort", cfg.SerialPort,
		"serialBaud", cfg.SerialBaud,
		"pollInterval", cfg.PollInterval,
		"weatherEnabled", cfg.WeatherAPIKey != "",
		"mqttBroker", cfg.MQTTBroker,
		"mqttTopic", cfg.MQTTTopic,
	)

	dbConn, err := db.Open(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(dbConn); closeErr != nil {
			logger.Error("db close", "error", closeErr)
		}
	}()

	readings := repository.NewRepository(dbConn)
	if err := readings.Initialize(ctx); err != nil {
		return err
	}
	logger.Info("database ready")

	if err := climateviews.LoadTemplates(); err != nil {
		return err
	}

	m := metrics.New()

	dev := device.NewManager(device.Options{
		Address:  cfg.SerialPort,
		BaudRate: cfg.SerialBaud,
		Logger:   logger,
		Metrics:  m,
	})
	defer func() {
		if err := dev.Close(); err != nil {
			logger.Warn("device close", "error", err)
		}
	}()

	pipeline := service.NewPipeline(dev, readings, snapshot.NewStore(), logger, m)

	// MQTT is optional; the service runs without a broker.
	var publisher climate.Publisher
	var mqttPublisher *mqtt.Publisher
	if cfg.MQTTBroker != "" {
		mqttPublisher = mqtt.NewPublisher(cfg, logger)
		connectCtx, connectCancel := context.WithTimeout(ctx, 5*time.Second)
		err := mqttPublisher.Connect(connectCtx)
		connectCancel()
		if err != nil {
			logger.Warn("mqtt connection failed (continuing, client keeps retrying)", "error", err)
		}
		publisher = mqttPublisher
	}

	mux := httpapi.NewMux(dbConn, dev, m)
	weatherService := weather.RegisterFeature(mux, cfg, logger, m)
	hub := climate.RegisterFeature(mux, climate.Dependencies{
		Repository: readings,
		Pipeline:   pipeline,
		Thresholds: types.Thresholds{
			TempMin:  cfg.AlertTempMin,
			TempMax:  cfg.AlertTempMax,
			HumidMin: cfg.AlertHumidMin,
			HumidMax: cfg.AlertHumidMax,
		},
		Publisher:      publisher,
		WeatherEnabled: weatherService.Enabled(),
		Logger:         logger,
		Metrics:        m,
	})

	ingestCtx, stopIngest := context.WithCancel(ctx)
	defer stopIngest()
	ingestDone := make(chan struct{})
	go func() {
		defer close(ingestDone)
		_ = service.NewScheduler(pipeline, cfg.PollInterval, logger).Run(ingestCtx)
	}()

	srv := httpapi.NewServer(cfg, mux)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http listening", "addr", cfg.HTTPAddr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		stopIngest()
		<-ingestDone
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	stopIngest()
	<-ingestDone
	logger.Info("ingestion stopped")

	hub.Close()

	if mqttPublisher != nil {
		logger.Info("mqtt disconnecting")
		mqttPublisher.Disconnect()
	}

	logger.Info("http shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	err = <-errCh
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return ctx.Err()
}
