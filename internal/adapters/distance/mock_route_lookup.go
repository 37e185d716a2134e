package distance

import (
	"context"
	"fmt"
	"store-rebalance-service/internal/domain"
	"store-rebalance-service/internal/ports"
	"sync"
)

// MockRouteLookup answers from a fixed coordinate-pair table and counts calls.
// A missing pair fails with Err (or a no_route LookupError when Err is nil).
type MockRouteLookup struct {
	Err error

	mu    sync.Mutex
	m     map[[2]domain.Coordinates]float64
	calls int
}

func NewMockRouteLookup() *MockRouteLookup {
	return &MockRouteLookup{m: make(map[[2]domain.Coordinates]float64)}
}

func (l *MockRouteLookup) Set(from, to domain.Coordinates, km float64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.m[[2]domain.Coordinates{from, to}] = km
}

func (l *MockRouteLookup) Calls() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls
}

func (l *MockRouteLookup) RoadDistance(ctx context.Context, from, to domain.Coordinates) (float64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls++

	km, ok := l.m[[2]domain.Coordinates{from, to}]
	if !ok {
		if l.Err != nil {
			return 0, l.Err
		}
		return 0, lookupErr(FailureNoRoute, fmt.Errorf("missing pair %v -> %v", from, to))
	}
	return km, nil
}

type MockPair struct {
	From, To string
	Km       float64
}

// NewTableProvider returns a DistanceProvider backed only by pairs.
// Unlisted pairs fail with ErrUnknownStore, which keeps tests honest
// about every distance they rely on.
func NewTableProvider(pairs []MockPair) ports.DistanceProvider {
	m := make(map[domain.StorePair]float64, len(pairs))
	for _, p := range pairs {
		m[domain.StorePair{From: p.From, To: p.To}] = p.Km
	}

	return ports.DistanceFunc(func(ctx context.Context, from, to string) (float64, error) {
		km, ok := m[domain.StorePair{From: from, To: to}]
		if !ok {
			return 0, fmt.Errorf("missing pair %q -> %q: %w", from, to, ports.ErrUnknownStore)
		}
		return km, nil
	})
}
