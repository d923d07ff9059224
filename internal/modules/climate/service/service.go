// Package service runs the ingestion pipeline: device line, parse, store,
// recompute daily extrema, publish the snapshot.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/asymonsziebart/TempHumidityMonitor/internal/metrics"
	"github.com/asymonsziebart/TempHumidityMonitor/internal/modules/climate/parser"
	"github.com/asymonsziebart/TempHumidityMonitor/internal/modules/climate/repository"
	"github.com/asymonsziebart/TempHumidityMonitor/internal/modules/climate/snapshot"
	"github.com/asymonsziebart/TempHumidityMonitor/internal/modules/climate/types"
)

// ErrStorage wraps persistence failures surfaced by Poll.
var ErrStorage = errors.New("storage failure")

type Outcome int

const (
	Disconnected Outcome = iota
	Empty
	ParseFailed
	Parsed
	// IOFailed means the read itself failed and the device was dropped.
	IOFailed
)

func (o Outcome) String() string {
	switch o {
	case Disconnected:
		return "disconnected"
	case Empty:
		return "empty"
	case ParseFailed:
		return "parse_failed"
	case Parsed:
		return "parsed"
	case IOFailed:
		return "io_failed"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

type Device interface {
	EnsureConnected(ctx context.Context) bool
	ReadAvailableLine() ([]byte, bool)
	Connected() bool
}

// Listener is told about every stored reading and the snapshot it produced.
// Listeners run on the polling goroutine after the pipeline lock is released.
type Listener func(r types.Reading, snap types.Snapshot)

type Pipeline struct {
	device     Device
	repository repository.ReadingRepository
	store      *snapshot.Store
	logger     *slog.Logger
	metrics    *metrics.Metrics
	now        func() time.Time

	mu sync.Mutex

	listenersMu sync.RWMutex
	listeners   []Listener
}

func NewPipeline(device Device, repo repository.ReadingRepository, store *snapshot.Store, logger *slog.Logger, m *metrics.Metrics) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		device:     device,
		repository: repo,
		store:      store,
		logger:     logger.With("component", "pipeline"),
		metrics:    m,
		now:        time.Now,
	}
}

func (p *Pipeline) OnIngest(l Listener) {
	p.listenersMu.Lock()
	p.listeners = append(p.listeners, l)
	p.listenersMu.Unlock()
}

// Poll performs one ingestion attempt. Only storage failures are returned as
// errors; they wrap ErrStorage and leave the snapshot untouched.
func (p *Pipeline) Poll(ctx context.Context) (Outcome, error) {
	outcome, reading, snap, err := p.poll(ctx)
	if outcome == Parsed && err == nil {
		p.notify(reading, snap)
	}
	return outcome, err
}

func (p *Pipeline) poll(ctx context.Context) (Outcome, types.Reading, types.Snapshot, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.device.EnsureConnected(ctx) {
		return Disconnected, types.Reading{}, types.Snapshot{}, nil
	}

	line, ok := p.device.ReadAvailableLine()
	if !ok && !p.device.Connected() {
		return IOFailed, types.Reading{}, types.Snapshot{}, nil
	}
	if !ok {
		return Empty, types.Reading{}, types.Snapshot{}, nil
	}

	raw, ok, err := parser.Parse(line)
	if err != nil {
		p.logger.Warn("dropping unparseable line", "line", string(line), "error", err)
		p.metrics.ParseFailed()
		return ParseFailed, types.Reading{}, types.Snapshot{}, nil
	}
	if !ok {
		return Empty, types.Reading{}, types.Snapshot{}, nil
	}

	reading := types.Reading{
		Timestamp:    p.now().In(time.Local).Truncate(time.Second),
		TemperatureF: parser.CelsiusToFahrenheit(raw.TemperatureC),
		HumidityPct:  raw.HumidityPct,
	}

	if err := p.repository.Append(ctx, reading); err != nil {
		p.metrics.StorageFailed()
		return Parsed, reading, types.Snapshot{}, fmt.Errorf("%w: %w", ErrStorage, err)
	}

	extrema, err := p.repository.DailyExtrema(ctx, reading.Timestamp)
	if err != nil {
		p.metrics.StorageFailed()
		return Parsed, reading, types.Snapshot{}, fmt.Errorf("%w: %w", ErrStorage, err)
	}

	p.store.Update(reading, extrema)
	p.metrics.ReadingStored(reading.TemperatureF, reading.HumidityPct)
	p.logger.Debug("reading stored",
		"temperature_f", reading.TemperatureF,
		"humidity_pct", reading.HumidityPct,
		"readings_today", extrema.Count,
	)
	return Parsed, reading, p.store.Read(), nil
}

func (p *Pipeline) notify(r types.Reading, snap types.Snapshot) {
	p.listenersMu.RLock()
	ls := append([]Listener(nil), p.listeners...)
	p.listenersMu.RUnlock()
	for _, l := range ls {
		l(r, snap)
	}
}

func (p *Pipeline) Snapshot() types.Snapshot {
	return p.store.Read()
}

func (p *Pipeline) Connected() bool {
	return p.device.Connected()
}
