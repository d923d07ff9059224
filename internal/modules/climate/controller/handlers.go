package controller

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/asymonsziebart/TempHumidityMonitor/internal/modules/climate/export"
	"github.com/asymonsziebart/TempHumidityMonitor/internal/modules/climate/service"
	"github.com/asymonsziebart/TempHumidityMonitor/internal/modules/climate/types"
	"github.com/asymonsziebart/TempHumidityMonitor/internal/modules/climate/views"
	"github.com/asymonsziebart/TempHumidityMonitor/internal/utils"
)

func (c *climateControllerImpl) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	readings, err := c.repository.SeriesSince(r.Context(), c.now().Add(-defaultSeriesHours*time.Hour))
	if err != nil {
		slog.Error("dashboard: get series failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to load readings")
		return
	}

	snap := c.pipeline.Snapshot()
	data := &views.DashboardData{
		Connected:      c.pipeline.Connected(),
		HasReading:     snap.HasReading(),
		TemperatureF:   snap.TemperatureF,
		HumidityPct:    snap.HumidityPct,
		Extrema:        snap.Extrema,
		Alerts:         c.thresholds.Evaluate(snap),
		Thresholds:     c.thresholds,
		Series:         types.NewSeries(readings),
		WeatherEnabled: c.weatherEnabled,
	}
	if snap.HasReading() {
		data.Timestamp = snap.Timestamp.Format(types.TimestampLayout)
	}

	var buf bytes.Buffer
	if err := views.RenderDashboard(&buf, data); err != nil {
		slog.Error("dashboard template render failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to render page")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := w.Write(buf.Bytes()); err != nil {
		slog.Error("dashboard: write response failed", "error", err)
	}
}

func (c *climateControllerImpl) handleData(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, NewDataResponse(c.pipeline.Snapshot(), c.pipeline.Connected(), c.thresholds))
}

func (c *climateControllerImpl) handleSeries(w http.ResponseWriter, r *http.Request) {
	hours, err := parseSeriesQuery(r)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	readings, err := c.repository.SeriesSince(r.Context(), c.now().Add(-time.Duration(hours)*time.Hour))
	if err != nil {
		slog.Error("series: query failed", "hours", hours, "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to load readings")
		return
	}
	utils.WriteJSON(w, http.StatusOK, types.NewSeries(readings))
}

func (c *climateControllerImpl) handleExtrema(w http.ResponseWriter, r *http.Request) {
	day, err := parseDay(r, c.now())
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	e, err := c.repository.DailyExtrema(r.Context(), day)
	if err != nil {
		slog.Error("extrema: query failed", "day", day.Format(types.DayLayout), "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to load extrema")
		return
	}
	utils.WriteJSON(w, http.StatusOK, extremaResponse{
		Day:       day.Format(types.DayLayout),
		Extrema:   e,
		Available: e.HasData(),
	})
}

func (c *climateControllerImpl) handlePoll(w http.ResponseWriter, r *http.Request) {
	// A client going away must not abort a half-done ingestion.
	outcome, err := c.pipeline.Poll(context.WithoutCancel(r.Context()))
	if err != nil {
		if errors.Is(err, service.ErrStorage) {
			utils.WriteError(w, http.StatusInternalServerError, "failed to store reading")
			return
		}
		utils.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]any{
		"outcome": outcome.String(),
		"data":    NewDataResponse(c.pipeline.Snapshot(), c.pipeline.Connected(), c.thresholds),
	})
}

func (c *climateControllerImpl) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	readings, err := c.repository.ExportAll(r.Context())
	if err != nil {
		slog.Error("export csv: query failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to load readings")
		return
	}
	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, readings); err != nil {
		slog.Error("export csv: encode failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to export readings")
		return
	}
	utils.SetAttachment(w, export.CSVContentType, export.Filename(c.now(), "csv"))
	if _, err := w.Write(buf.Bytes()); err != nil {
		slog.Error("export csv: write response failed", "error", err)
	}
}

func (c *climateControllerImpl) handleExportXLSX(w http.ResponseWriter, r *http.Request) {
	readings, err := c.repository.ExportAll(r.Context())
	if err != nil {
		slog.Error("export xlsx: query failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to load readings")
		return
	}
	var buf bytes.Buffer
	if err := export.WriteXLSX(&buf, readings); err != nil {
		slog.Error("export xlsx: encode failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to export readings")
		return
	}
	utils.SetAttachment(w, export.XLSXContentType, export.Filename(c.now(), "xlsx"))
	if _, err := w.Write(buf.Bytes()); err != nil {
		slog.Error("export xlsx: write response failed", "error", err)
	}
}
