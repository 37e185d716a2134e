package distance

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"store-rebalance-service/internal/domain"
	"store-rebalance-service/internal/platform/metrics"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultMapboxBaseURL = "https://api.mapbox.com"
	defaultLookupTimeout = 5 * time.Second
)

type directionsResponse struct {
	Code   string `json:"code"`
	Routes []struct {
		Distance *float64 `json:"distance"`
		Duration *float64 `json:"duration"`
	} `json:"routes"`
}

// MapboxRouteLookup implements RouteLookup using the Mapbox Directions API.
//
// Every call is bounded by a single timeout that also covers waiting on the
// optional rate limiter. Failures are returned as *LookupError.
type MapboxRouteLookup struct {
	session *http.Client
	token   string
	baseURL string
	profile string
	timeout time.Duration
	limiter *rate.Limiter
}

type MapboxOption func(*MapboxRouteLookup)

func WithBaseURL(u string) MapboxOption {
	return func(m *MapboxRouteLookup) {
		if u != "" {
			m.baseURL = u
		}
	}
}

func WithTimeout(d time.Duration) MapboxOption {
	return func(m *MapboxRouteLookup) {
		if d > 0 {
			m.timeout = d
		}
	}
}

// WithRateLimit caps outbound requests per second; rps <= 0 means unlimited.
func WithRateLimit(rps float64) MapboxOption {
	return func(m *MapboxRouteLookup) {
		if rps > 0 {
			m.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

func WithHTTPClient(c *http.Client) MapboxOption {
	return func(m *MapboxRouteLookup) {
		if c != nil {
			m.session = c
		}
	}
}

func NewMapboxRouteLookup(token string, opts ...MapboxOption) (*MapboxRouteLookup, error) {
	if token == "" {
		return nil, errors.New("mapbox access token is empty")
	}

	m := &MapboxRouteLookup{
		session: &http.Client{},
		token:   token,
		baseURL: defaultMapboxBaseURL,
		profile: "mapbox/driving",
		timeout: defaultLookupTimeout,
	}
	for _, opt := range opts {
		opt(m)
	}

	return m, nil
}

// RoadDistance returns the driving distance in kilometres of the first route.
func (m *MapboxRouteLookup) RoadDistance(
	ctx context.Context,
	from domain.Coordinates,
	to domain.Coordinates,
) (float64, error) {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	if m.limiter != nil {
		if err := m.limiter.Wait(ctx); err != nil {
			return 0, lookupErr(FailureTimeout, fmt.Errorf("rate limiter: %w", err))
		}
	}

	endpoint := fmt.Sprintf(
		"%s/directions/v5/%s/%s;%s",
		m.baseURL, m.profile, from.PathSegment(), to.PathSegment(),
	)

	req, err := m.newRequest(ctx, endpoint)
	if err != nil {
		return 0, lookupErr(FailureTransport, err)
	}

	start := time.Now()
	resp, err := m.do(req)
	metrics.LiveLookupDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	var dr directionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&dr); err != nil {
		// A deadline hit while reading the body surfaces here.
		if ctx.Err() != nil {
			return 0, lookupErr(FailureTimeout, ctx.Err())
		}
		return 0, lookupErr(FailureDecode, fmt.Errorf("decode directions response: %w", err))
	}

	if len(dr.Routes) == 0 {
		return 0, lookupErr(FailureNoRoute, fmt.Errorf("no route returned (code=%q)", dr.Code))
	}

	meters := dr.Routes[0].Distance
	if meters == nil || math.IsNaN(*meters) || math.IsInf(*meters, 0) || *meters < 0 {
		return 0, lookupErr(FailureDecode, errors.New("route has no usable distance"))
	}

	return *meters / 1000, nil
}
