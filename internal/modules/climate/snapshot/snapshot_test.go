package snapshot

import (
	"sync"
	"testing"
	"time"

	"github.com/asymonsziebart/TempHumidityMonitor/internal/modules/climate/types"
)

func TestStore_initiallyEmpty(t *testing.T) {
	s := NewStore()
	got := s.Read()
	if got.HasReading() {
		t.Errorf("new store has reading: %+v", got)
	}
	if got.Extrema.HasData() {
		t.Errorf("new store has extrema: %+v", got.Extrema)
	}
}

func TestStore_UpdateReplacesWholeRecord(t *testing.T) {
	s := NewStore()
	ts := time.Date(2024, 3, 5, 10, 0, 0, 0, time.Local)
	s.Update(
		types.Reading{Timestamp: ts, TemperatureF: 68, HumidityPct: 45.5},
		types.Extrema{TempMin: 60, TempMax: 70, HumidMin: 40, HumidMax: 50, Count: 4},
	)
	s.Update(
		types.Reading{Timestamp: ts.Add(2 * time.Second), TemperatureF: 77, HumidityPct: 50},
		types.Extrema{TempMin: 60, TempMax: 77, HumidMin: 40, HumidMax: 50, Count: 5},
	)

	got := s.Read()
	if got.TemperatureF != 77 || got.HumidityPct != 50 {
		t.Errorf("values = %v/%v; want 77/50", got.TemperatureF, got.HumidityPct)
	}
	if !got.Timestamp.Equal(ts.Add(2 * time.Second)) {
		t.Errorf("timestamp = %s", got.Timestamp)
	}
	if got.Extrema.TempMax != 77 || got.Extrema.Count != 5 {
		t.Errorf("extrema = %+v", got.Extrema)
	}
}

// Each writer stores a reading whose temperature equals its extrema max, so a
// torn read would show them disagreeing.
func TestStore_concurrentReadersSeeConsistentRecords(t *testing.T) {
	s := NewStore()
	var wg sync.WaitGroup
	stop := make(chan struct{})

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 1; i <= 2000; i++ {
			v := float64(i)
			s.Update(
				types.Reading{Timestamp: time.Unix(int64(i), 0), TemperatureF: v, HumidityPct: v},
				types.Extrema{TempMin: v, TempMax: v, HumidMin: v, HumidMax: v, Count: i},
			)
		}
		close(stop)
	}()

	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				got := s.Read()
				if !got.HasReading() {
					continue
				}
				if got.TemperatureF != got.Extrema.TempMax || float64(got.Extrema.Count) != got.HumidityPct {
					t.Errorf("torn snapshot: %+v", got)
					return
				}
			}
		}()
	}
	wg.Wait()
}
