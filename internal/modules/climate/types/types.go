package types

import "time"

// TimestampLayout is how reading timestamps are stored, in local time.
const TimestampLayout = "2006-01-02 15:04:05"

// DayLayout is the day prefix of TimestampLayout.
const DayLayout = "2006-01-02"

// Reading is one stored measurement.
type Reading struct {
	Timestamp    time.Time `json:"timestamp"`
	TemperatureF float64   `json:"temperature"`
	HumidityPct  float64   `json:"humidity"`
}

// Extrema holds the daily minimum and maximum of both quantities.
// Count is the number of readings they were computed from; zero means no data
// and every bound is zero.
type Extrema struct {
	TempMin  float64 `json:"temp_min"`
	TempMax  float64 `json:"temp_max"`
	HumidMin float64 `json:"humid_min"`
	HumidMax float64 `json:"humid_max"`
	Count    int     `json:"count"`
}

func (e Extrema) HasData() bool { return e.Count > 0 }

// Snapshot is the latest reading together with the extrema of its day.
type Snapshot struct {
	TemperatureF float64
	HumidityPct  float64
	Timestamp    time.Time
	Extrema      Extrema
}

func (s Snapshot) HasReading() bool { return !s.Timestamp.IsZero() }

type Thresholds struct {
	TempMin  float64
	TempMax  float64
	HumidMin float64
	HumidMax float64
}

func DefaultThresholds() Thresholds {
	return Thresholds{TempMin: 60, TempMax: 80, HumidMin: 30, HumidMax: 60}
}

type Alerts struct {
	Temperature string `json:"temperature,omitempty"`
	Humidity    string `json:"humidity,omitempty"`
}

func (a Alerts) Any() bool { return a.Temperature != "" || a.Humidity != "" }

// Evaluate compares the snapshot against the thresholds. A snapshot without a
// reading raises nothing.
func (t Thresholds) Evaluate(s Snapshot) Alerts {
	if !s.HasReading() {
		return Alerts{}
	}
	return Alerts{
		Temperature: bound("Temperature", s.TemperatureF, t.TempMin, t.TempMax),
		Humidity:    bound("Humidity", s.HumidityPct, t.HumidMin, t.HumidMax),
	}
}

func bound(name string, v, lo, hi float64) string {
	switch {
	case v < lo:
		return name + " is below minimum threshold!"
	case v > hi:
		return name + " is above maximum threshold!"
	}
	return ""
}

// SeriesPoint is a reading as plotted, with the timestamp in TimestampLayout.
type SeriesPoint struct {
	Timestamp    string  `json:"timestamp"`
	TemperatureF float64 `json:"temperature"`
	HumidityPct  float64 `json:"humidity"`
}

func NewSeries(readings []Reading) []SeriesPoint {
	out := make([]SeriesPoint, 0, len(readings))
	for _, r := range readings {
		out = append(out, SeriesPoint{
			Timestamp:    r.Timestamp.Format(TimestampLayout),
			TemperatureF: r.TemperatureF,
			HumidityPct:  r.HumidityPct,
		})
	}
	return out
}
