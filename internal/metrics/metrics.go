// Package metrics exposes ingestion counters and sensor histograms in
// Prometheus text format. All methods are safe on a nil *Metrics.
package metrics

import (
	"io"
	"math"
	"net/http"
	"sync/atomic"

	vm "github.com/VictoriaMetrics/metrics"
)

type Metrics struct {
	set *vm.Set

	readingsStored   *vm.Counter
	parseFailures    *vm.Counter
	storageErrors    *vm.Counter
	deviceConnects   *vm.Counter
	deviceFailures   *vm.Counter
	deviceReadErrors *vm.Counter
	weatherFetches   *vm.Counter
	weatherFailures  *vm.Counter
	mqttPublishErrs  *vm.Counter

	temperature *vm.Histogram
	humidity    *vm.Histogram

	// last values are float64 bits
	lastTemperature atomic.Uint64
	lastHumidity    atomic.Uint64
	deviceConnected atomic.Bool
}

func New() *Metrics {
	s := vm.NewSet()
	m := &Metrics{
		set:              s,
		readingsStored:   s.NewCounter("climate_readings_stored_total"),
		parseFailures:    s.NewCounter("climate_parse_failures_total"),
		storageErrors:    s.NewCounter("climate_storage_errors_total"),
		deviceConnects:   s.NewCounter("climate_device_connects_total"),
		deviceFailures:   s.NewCounter("climate_device_connect_failures_total"),
		deviceReadErrors: s.NewCounter("climate_device_read_errors_total"),
		weatherFetches:   s.NewCounter(`weather_fetches_total{result="ok"}`),
		weatherFailures:  s.NewCounter(`weather_fetches_total{result="error"}`),
		mqttPublishErrs:  s.NewCounter("mqtt_publish_errors_total"),
		temperature:      s.NewHistogram("climate_temperature_fahrenheit"),
		humidity:         s.NewHistogram("climate_humidity_percent"),
	}
	s.NewGauge("climate_temperature_fahrenheit_last", func() float64 { return fromBits(m.lastTemperature.Load()) })
	s.NewGauge("climate_humidity_percent_last", func() float64 { return fromBits(m.lastHumidity.Load()) })
	s.NewGauge("climate_device_connected", func() float64 {
		if m.deviceConnected.Load() {
			return 1
		}
		return 0
	})
	return m
}

func (m *Metrics) ReadingStored(temperatureF, humidityPct float64) {
	if m == nil {
		return
	}
	m.readingsStored.Inc()
	m.temperature.Update(temperatureF)
	m.humidity.Update(humidityPct)
	m.lastTemperature.Store(toBits(temperatureF))
	m.lastHumidity.Store(toBits(humidityPct))
}

func (m *Metrics) ParseFailed() {
	if m == nil {
		return
	}
	m.parseFailures.Inc()
}

func (m *Metrics) StorageFailed() {
	if m == nil {
		return
	}
	m.storageErrors.Inc()
}

func (m *Metrics) DeviceConnected() {
	if m == nil {
		return
	}
	m.deviceConnects.Inc()
	m.deviceConnected.Store(true)
}

func (m *Metrics) DeviceConnectFailed() {
	if m == nil {
		return
	}
	m.deviceFailures.Inc()
	m.deviceConnected.Store(false)
}

func (m *Metrics) DeviceReadFailed() {
	if m == nil {
		return
	}
	m.deviceReadErrors.Inc()
	m.deviceConnected.Store(false)
}

func (m *Metrics) WeatherFetched(err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.weatherFailures.Inc()
		return
	}
	m.weatherFetches.Inc()
}

func (m *Metrics) PublishFailed() {
	if m == nil {
		return
	}
	m.mqttPublishErrs.Inc()
}

// WritePrometheus writes this set followed by Go process metrics.
func (m *Metrics) WritePrometheus(w io.Writer) {
	if m != nil {
		m.set.WritePrometheus(w)
	}
	vm.WriteProcessMetrics(w)
}

func (m *Metrics) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
		m.WritePrometheus(w)
	})
}

func toBits(f float64) uint64 { return math.Float64bits(f) }

func fromBits(b uint64) float64 { return math.Float64frombits(b) }
