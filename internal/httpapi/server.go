package httpapi

import (
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/asymonsziebart/TempHumidityMonitor/internal/config"
)

func NewServer(config config.Config, handler http.Handler) *http.Server {
	var limiter *rate.Limiter
	if config.RateLimitRPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(config.RateLimitRPS), config.RateLimitBurst)
	}
	return &http.Server{
		Addr:              config.HTTPAddr,
		Handler:           requestLogger(rateLimit(limiter, handler)),
		ReadHeaderTimeout: 10 * time.Second,
	}
}
