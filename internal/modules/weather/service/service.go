// Package service caches outdoor conditions so that page loads never wait on,
// or hammer, the upstream weather API.
package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/asymonsziebart/TempHumidityMonitor/internal/metrics"
	"github.com/asymonsziebart/TempHumidityMonitor/internal/modules/weather/types"
)

// ErrDisabled is returned when no API key is configured.
var ErrDisabled = errors.New("weather lookups disabled: WEATHER_API_KEY not set")

// ErrUnavailable is returned when nothing is cached and the upstream may not
// be retried yet.
var ErrUnavailable = errors.New("weather not available yet")

// minFetchGap bounds how often the upstream is retried while it is failing.
const minFetchGap = 30 * time.Second

type Fetcher interface {
	Current(ctx context.Context) (types.Conditions, error)
}

type Service struct {
	fetcher Fetcher
	ttl     time.Duration
	limiter *rate.Limiter
	logger  *slog.Logger
	metrics *metrics.Metrics
	now     func() time.Time

	mu        sync.Mutex
	last      types.Conditions
	fetchedAt time.Time
}

// NewService returns a service that refetches once the cached value is older
// than ttl. A nil fetcher disables lookups.
func NewService(fetcher Fetcher, ttl time.Duration, logger *slog.Logger, m *metrics.Metrics) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		fetcher: fetcher,
		ttl:     ttl,
		limiter: rate.NewLimiter(rate.Every(minFetchGap), 1),
		logger:  logger,
		metrics: m,
		now:     time.Now,
	}
}

func (s *Service) Enabled() bool { return s.fetcher != nil }

// Current returns cached conditions, refreshing them when stale. When the
// upstream fails the last good value is returned along with the error; it is
// the zero value if nothing was ever fetched.
func (s *Service) Current(ctx context.Context) (types.Conditions, error) {
	if s.fetcher == nil {
		return types.Conditions{}, ErrDisabled
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.fetchedAt.IsZero() && s.now().Sub(s.fetchedAt) < s.ttl {
		return s.last, nil
	}
	if !s.limiter.Allow() {
		if s.fetchedAt.IsZero() {
			return s.last, ErrUnavailable
		}
		return s.last, nil
	}

	c, err := s.fetcher.Current(ctx)
	s.metrics.WeatherFetched(err)
	if err != nil {
		s.logger.Warn("weather fetch failed", "error", err)
		return s.last, err
	}
	s.last = c
	s.fetchedAt = s.now()
	return c, nil
}
