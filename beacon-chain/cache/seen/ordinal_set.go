package seen

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// ordinal is any monotonically increasing scalar a cache can be keyed and
// pruned by — in practice primitives.Slot or primitives.Epoch.
type ordinal interface {
	~uint64
}

// ordinalSet is the shared implementation behind every fixed-horizon seen
// cache in this package: a set of identities per ordinal key, with a
// watermark below which writes are rejected.
type ordinalSet[K ordinal, ID comparable] struct {
	mu      sync.Mutex
	horizon K
	low     K
	byKey   map[K]map[ID]struct{}

	hit, miss prometheus.Counter
}

// newOrdinalSet takes already-registered counters rather than creating its
// own: every Seen* cache in this package is a long-lived singleton, so its
// metrics are declared once at package scope (see caches.go) instead of
// per-instance, which would panic on duplicate registration if a cache
// were ever constructed more than once (e.g. from tests).
func newOrdinalSet[K ordinal, ID comparable](horizon K, hit, miss prometheus.Counter) *ordinalSet[K, ID] {
	return &ordinalSet[K, ID]{
		horizon: horizon,
		byKey:   make(map[K]map[ID]struct{}),
		hit:     hit,
		miss:    miss,
	}
}

// IsKnown reports whether id has already been recorded under key.
func (s *ordinalSet[K, ID]) IsKnown(key K, id ID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.byKey[key]
	if !ok {
		s.miss.Inc()
		return false
	}
	if _, present := m[id]; present {
		s.hit.Inc()
		return true
	}
	s.miss.Inc()
	return false
}

// Add records id under key, rejecting keys below the current watermark.
func (s *ordinalSet[K, ID]) Add(key K, id ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if key < s.low {
		return ErrBelowWatermark
	}
	m, ok := s.byKey[key]
	if !ok {
		m = make(map[ID]struct{})
		s.byKey[key] = m
	}
	m[id] = struct{}{}
	return nil
}

// Prune advances the watermark to max(current-horizon, 0) and discards
// every key now below it.
func (s *ordinalSet[K, ID]) Prune(current K) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var low K
	if current > s.horizon {
		low = current - s.horizon
	}
	s.low = low

	for k := range s.byKey {
		if k < low {
			delete(s.byKey, k)
		}
	}
}

// LowWatermark returns the current watermark, for tests/metrics.
func (s *ordinalSet[K, ID]) LowWatermark() K {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.low
}
