package repository

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"
	"time"

	"github.com/asymonsziebart/TempHumidityMonitor/internal/migrate"
	"github.com/asymonsziebart/TempHumidityMonitor/internal/modules/climate/types"
)

//go:embed sql/insert-reading.sql
var insertReadingSQL string

//go:embed sql/get-daily-extrema.sql
var getDailyExtremaSQL string

//go:embed sql/get-series-since.sql
var getSeriesSinceSQL string

//go:embed sql/get-all-readings.sql
var getAllReadingsSQL string

type ReadingRepository interface {
	Initialize(ctx context.Context) error
	Append(ctx context.Context, r types.Reading) error
	DailyExtrema(ctx context.Context, day time.Time) (types.Extrema, error)
	SeriesSince(ctx context.Context, cutoff time.Time) ([]types.Reading, error)
	ExportAll(ctx context.Context) ([]types.Reading, error)
}

type repositoryImpl struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) ReadingRepository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) Initialize(ctx context.Context) error {
	if err := migrate.Run(ctx, r.db); err != nil {
		return fmt.Errorf("initialize readings schema: %w", err)
	}
	return nil
}

func (r *repositoryImpl) Append(ctx context.Context, rd types.Reading) error {
	ts := rd.Timestamp.In(time.Local).Format(types.TimestampLayout)
	if _, err := r.db.ExecContext(ctx, insertReadingSQL, ts, rd.TemperatureF, rd.HumidityPct); err != nil {
		return fmt.Errorf("insert reading: %w", err)
	}
	return nil
}

func (r *repositoryImpl) DailyExtrema(ctx context.Context, day time.Time) (types.Extrema, error) {
	local := day.In(time.Local)
	prefix := local.Format(types.DayLayout)
	// Half-open text range over the day prefix, so the timestamp index applies.
	next := time.Date(local.Year(), local.Month(), local.Day()+1, 0, 0, 0, 0, time.Local).Format(types.DayLayout)
	var (
		count                            int
		tempMin, tempMax, humMin, humMax sql.NullFloat64
	)
	err := r.db.QueryRowContext(ctx, getDailyExtremaSQL, prefix, next).
		Scan(&count, &tempMin, &tempMax, &humMin, &humMax)
	if err != nil {
		return types.Extrema{}, fmt.Errorf("daily extrema %s: %w", prefix, err)
	}
	if count == 0 {
		return types.Extrema{}, nil
	}
	return types.Extrema{
		TempMin:  tempMin.Float64,
		TempMax:  tempMax.Float64,
		HumidMin: humMin.Float64,
		HumidMax: humMax.Float64,
		Count:    count,
	}, nil
}

func (r *repositoryImpl) SeriesSince(ctx context.Context, cutoff time.Time) ([]types.Reading, error) {
	rows, err := r.db.QueryContext(ctx, getSeriesSinceSQL, cutoff.In(time.Local).Format(types.TimestampLayout))
	if err != nil {
		return nil, fmt.Errorf("query series: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("close series rows", "error", err)
		}
	}()
	return scanReadings(rows)
}

func (r *repositoryImpl) ExportAll(ctx context.Context) ([]types.Reading, error) {
	rows, err := r.db.QueryContext(ctx, getAllReadingsSQL)
	if err != nil {
		return nil, fmt.Errorf("query all readings: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("close export rows", "error", err)
		}
	}()
	return scanReadings(rows)
}

func scanReadings(rows *sql.Rows) ([]types.Reading, error) {
	out := []types.Reading{}
	for rows.Next() {
		var (
			ts          string
			temp, humid sql.NullFloat64
		)
		if err := rows.Scan(&ts, &temp, &humid); err != nil {
			return nil, fmt.Errorf("scan reading: %w", err)
		}
		t, err := time.ParseInLocation(types.TimestampLayout, ts, time.Local)
		if err != nil {
			return nil, fmt.Errorf("parse timestamp %q: %w", ts, err)
		}
		out = append(out, types.Reading{Timestamp: t, TemperatureF: temp.Float64, HumidityPct: humid.Float64})
	}
	return out, rows.Err()
}
