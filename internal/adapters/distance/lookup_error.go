package distance

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// FailureKind classifies why a live route lookup did not produce a distance.
type FailureKind string

const (
	FailureTimeout   FailureKind = "timeout"
	FailureTransport FailureKind = "transport"
	FailureDecode    FailureKind = "decode"
	FailureNoRoute   FailureKind = "no_route"
)

// LookupError is the only error type a RouteLookup in this package returns.
type LookupError struct {
	Kind FailureKind
	Err  error
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("route lookup %s: %v", e.Kind, e.Err)
}

func (e *LookupError) Unwrap() error { return e.Err }

func lookupErr(kind FailureKind, err error) *LookupError {
	return &LookupError{Kind: kind, Err: err}
}

// Classify maps any lookup failure to a FailureKind.
// Errors from foreign RouteLookup implementations are classified by shape.
func Classify(err error) FailureKind {
	var le *LookupError
	if errors.As(err, &le) {
		return le.Kind
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return FailureTimeout
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return FailureTimeout
	}

	return FailureTransport
}
