package types

import (
	"testing"
	"time"
)

func TestExtrema_HasData(t *testing.T) {
	if (Extrema{}).HasData() {
		t.Error("zero Extrema reports data")
	}
	// A day whose readings really were all zero is still data.
	if !(Extrema{Count: 3}).HasData() {
		t.Error("Extrema with Count=3 reports no data")
	}
}

func TestThresholds_Evaluate(t *testing.T) {
	th := DefaultThresholds()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.Local)

	tests := []struct {
		name      string
		snap      Snapshot
		wantTemp  string
		wantHumid string
	}{
		{name: "no reading", snap: Snapshot{TemperatureF: 10, HumidityPct: 99}},
		{name: "in range", snap: Snapshot{Timestamp: now, TemperatureF: 68, HumidityPct: 45.5}},
		{name: "on the bounds", snap: Snapshot{Timestamp: now, TemperatureF: 80, HumidityPct: 30}},
		{
			name:      "cold and dry",
			snap:      Snapshot{Timestamp: now, TemperatureF: 59.9, HumidityPct: 29},
			wantTemp:  "Temperature is below minimum threshold!",
			wantHumid: "Humidity is below minimum threshold!",
		},
		{
			name:      "hot and humid",
			snap:      Snapshot{Timestamp: now, TemperatureF: 81, HumidityPct: 61},
			wantTemp:  "Temperature is above maximum threshold!",
			wantHumid: "Humidity is above maximum threshold!",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := th.Evaluate(tt.snap)
			if got.Temperature != tt.wantTemp {
				t.Errorf("Temperature = %q; want %q", got.Temperature, tt.wantTemp)
			}
			if got.Humidity != tt.wantHumid {
				t.Errorf("Humidity = %q; want %q", got.Humidity, tt.wantHumid)
			}
			if got.Any() != (tt.wantTemp != "" || tt.wantHumid != "") {
				t.Errorf("Any() = %v", got.Any())
			}
		})
	}
}

func TestNewSeries(t *testing.T) {
	if got := NewSeries(nil); got == nil || len(got) != 0 {
		t.Errorf("NewSeries(nil) = %#v; want empty non-nil", got)
	}
	ts := time.Date(2024, 3, 5, 10, 0, 2, 0, time.Local)
	got := NewSeries([]Reading{{Timestamp: ts, TemperatureF: 68, HumidityPct: 45.5}})
	want := SeriesPoint{Timestamp: "2024-03-05 10:00:02", TemperatureF: 68, HumidityPct: 45.5}
	if len(got) != 1 || got[0] != want {
		t.Errorf("NewSeries = %+v; want [%+v]", got, want)
	}
}
