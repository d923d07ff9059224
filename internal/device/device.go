// Package device owns the serial link to the sensor board.
package device

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/asymonsziebart/TempHumidityMonitor/internal/metrics"
)

const (
	// ReadTimeout bounds a single read on the port.
	ReadTimeout = time.Second
	// SettleDelay is waited after opening while the board resets.
	SettleDelay = 2 * time.Second

	maxLineLen = 1024
	readChunk  = 256
)

// Port is the part of a serial port the manager needs. A Read that returns
// 0, nil means the read timeout elapsed.
type Port interface {
	io.Reader
	io.Closer
}

type OpenFunc func(address string, baud int) (Port, error)

type Options struct {
	Address  string
	BaudRate int
	// Open defaults to OpenSerial.
	Open    OpenFunc
	Logger  *slog.Logger
	Metrics *metrics.Metrics
}

// Manager connects lazily and reads newline-terminated records. Connect,
// read and close are serialized; Connected never blocks on I/O.
type Manager struct {
	address string
	baud    int
	open    OpenFunc
	settle  time.Duration
	logger  *slog.Logger
	metrics *metrics.Metrics

	mu        sync.Mutex
	port      Port
	pending   []byte
	connected atomic.Bool
	// failing is set after a failed open so repeats log at debug.
	failing bool
}

func NewManager(opts Options) *Manager {
	open := opts.Open
	if open == nil {
		open = OpenSerial
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		address: opts.Address,
		baud:    opts.BaudRate,
		open:    open,
		settle:  SettleDelay,
		logger:  logger.With("component", "device", "port", opts.Address),
		metrics: opts.Metrics,
	}
}

// EnsureConnected opens the port if it is not open yet and reports whether
// it is open. Failures are logged, never returned; the next call retries.
func (m *Manager) EnsureConnected(ctx context.Context) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.port != nil {
		return true
	}

	p, err := m.open(m.address, m.baud)
	if err != nil {
		if m.failing {
			m.logger.Debug("device connect failed", "error", err)
		} else {
			m.logger.Warn("device connect failed, retrying quietly", "error", err)
			m.failing = true
		}
		m.metrics.DeviceConnectFailed()
		return false
	}

	if err := sleepCtx(ctx, m.settle); err != nil {
		_ = p.Close()
		return false
	}

	m.port = p
	m.failing = false
	m.pending = m.pending[:0]
	m.connected.Store(true)
	m.metrics.DeviceConnected()
	m.logger.Info("device connected", "baud", m.baud)
	return true
}

// ReadAvailableLine returns the next record without its newline, or ok=false
// when nothing arrived within the read timeout. Bytes received without a
// newline before the timeout are returned as they are. An I/O error closes
// the port.
func (m *Manager) ReadAvailableLine() (line []byte, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.port == nil {
		return nil, false
	}
	if line, ok := m.takeLine(); ok {
		return line, true
	}

	buf := make([]byte, readChunk)
	for {
		n, err := m.port.Read(buf)
		if err != nil {
			m.logger.Warn("device read failed, closing port", "error", err)
			m.metrics.DeviceReadFailed()
			m.closeLocked()
			return nil, false
		}
		if n == 0 {
			if len(m.pending) == 0 {
				return nil, false
			}
			partial := bytes.Clone(m.pending)
			m.pending = m.pending[:0]
			return partial, true
		}
		m.pending = append(m.pending, buf[:n]...)
		if line, ok := m.takeLine(); ok {
			return line, true
		}
		if len(m.pending) >= maxLineLen {
			long := bytes.Clone(m.pending)
			m.pending = m.pending[:0]
			return long, true
		}
	}
}

func (m *Manager) takeLine() ([]byte, bool) {
	i := bytes.IndexByte(m.pending, '\n')
	if i < 0 {
		return nil, false
	}
	line := bytes.Clone(m.pending[:i])
	m.pending = append(m.pending[:0], m.pending[i+1:]...)
	return line, true
}

func (m *Manager) Connected() bool {
	return m.connected.Load()
}

func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closeLocked()
}

func (m *Manager) closeLocked() error {
	if m.port == nil {
		return nil
	}
	err := m.port.Close()
	m.port = nil
	m.pending = m.pending[:0]
	m.connected.Store(false)
	return err
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
