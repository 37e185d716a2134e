package distance

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
)

type httpStatusError struct {
	Code int
	Body string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("Code %d: %s", e.Code, e.Body)
}

func (m *MapboxRouteLookup) newRequest(ctx context.Context, endpoint string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	q := req.URL.Query()
	q.Set("access_token", m.token)
	q.Set("geometries", "geojson")
	q.Set("overview", "false")
	req.URL.RawQuery = q.Encode()

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "store-rebalance-service")

	return req, nil
}

// do performs a single attempt. Failed lookups are not retried;
// the caller falls back to a geometric estimate instead.
func (m *MapboxRouteLookup) do(req *http.Request) (*http.Response, error) {
	resp, err := m.session.Do(req)
	if err != nil {
		return nil, classifyTransport(err)
	}
	if resp.StatusCode >= 400 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		return nil, lookupErr(FailureTransport, &httpStatusError{
			Code: resp.StatusCode,
			Body: strings.TrimSpace(string(b)),
		})
	}
	return resp, nil
}

// classifyTransport strips the request URL (it carries the access token)
// and tags the failure as timeout or transport.
func classifyTransport(err error) *LookupError {
	var ue *url.Error
	if errors.As(err, &ue) {
		err = ue.Err
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return lookupErr(FailureTimeout, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return lookupErr(FailureTimeout, err)
	}

	return lookupErr(FailureTransport, err)
}
