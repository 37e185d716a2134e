package ports

import (
	"context"
	"errors"
)

// ErrUnknownStore is returned when a store id has no known coordinates.
// It is an input error and aborts the run.
var ErrUnknownStore = errors.New("unknown store")

// Contract for resolving the travel distance between two stores.
//
// Implementations never surface lookup failures; a distance is always
// produced for known stores. The only error is ErrUnknownStore.
type DistanceProvider interface {
	// Return the distance in kilometres from one store to another.
	Distance(ctx context.Context, from string, to string) (float64, error)
}

// DistanceFunc adapts a plain function to DistanceProvider.
type DistanceFunc func(ctx context.Context, from, to string) (float64, error)

func (f DistanceFunc) Distance(ctx context.Context, from, to string) (float64, error) {
	return f(ctx, from, to)
}
