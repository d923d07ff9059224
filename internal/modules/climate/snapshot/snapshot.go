// Package snapshot holds the most recent reading and the extrema of its day.
package snapshot

import (
	"sync"

	"github.com/asymonsziebart/TempHumidityMonitor/internal/modules/climate/types"
)

// Store is safe for one writer and many readers. Readers always see a
// reading together with the extrema computed for it.
type Store struct {
	mu   sync.RWMutex
	snap types.Snapshot
}

func NewStore() *Store {
	return &Store{}
}

func (s *Store) Update(r types.Reading, e types.Extrema) {
	next := types.Snapshot{
		TemperatureF: r.TemperatureF,
		HumidityPct:  r.HumidityPct,
		Timestamp:    r.Timestamp,
		Extrema:      e,
	}
	s.mu.Lock()
	s.snap = next
	s.mu.Unlock()
}

func (s *Store) Read() types.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}
