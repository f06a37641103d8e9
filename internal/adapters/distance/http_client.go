package distance

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"quick-route/internal/platform/obs"
)

const defaultTimeout = 10 * time.Second

type httpStatusError struct {
	Code int
	Body string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("Code %d: %s", e.Code, e.Body)
}

// apiClient is the HTTP plumbing shared by the provider adapters:
// request construction, pacing, status checks and retry with backoff.
type apiClient struct {
	name    string
	session *http.Client
	limiter *rate.Limiter
	headers map[string]string

	maxAttempts int
	backoff     time.Duration
}

// newAPIClient paces requests at ratePerSec (<= 0 disables pacing).
func newAPIClient(name string, ratePerSec float64, headers map[string]string) *apiClient {
	limiter := rate.NewLimiter(rate.Inf, 1)
	if ratePerSec > 0 {
		limiter = rate.NewLimiter(rate.Limit(ratePerSec), 1)
	}
	return &apiClient{
		name:        name,
		session:     &http.Client{Timeout: defaultTimeout},
		limiter:     limiter,
		headers:     headers,
		maxAttempts: 4,
		backoff:     200 * time.Millisecond,
	}
}

func (c *apiClient) newRequest(
	ctx context.Context,
	method string,
	url string,
	body io.Reader,
) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return req, nil
}

func (c *apiClient) do(req *http.Request, op string) (*http.Response, error) {
	if err := c.limiter.Wait(req.Context()); err != nil {
		return nil, err
	}

	resp, err := c.session.Do(req)
	if err != nil {
		obs.ProviderRequests.WithLabelValues(c.name, op, "error").Inc()
		return nil, err
	}
	obs.ProviderRequests.WithLabelValues(c.name, op, strconv.Itoa(resp.StatusCode)).Inc()

	if resp.StatusCode >= 400 {
		b, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, &httpStatusError{
			Code: resp.StatusCode,
			Body: strings.TrimSpace(string(b)),
		}
	}
	return resp, nil
}

// doWithRetry retries transient failures (network errors, 429 and 5xx responses)
// using exponential backoff while respecting context cancellation.
func (c *apiClient) doWithRetry(
	ctx context.Context,
	op string,
	makeReq func() (*http.Request, error),
) (*http.Response, error) {
	backoff := c.backoff

	var lastErr error

	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		req, err := makeReq()
		if err != nil {
			return nil, fmt.Errorf("make request: %w", err)
		}

		resp, err := c.do(req, op)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if !retryable(err) || attempt == c.maxAttempts {
			return nil, lastErr
		}

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}

		backoff *= 2
	}

	return nil, lastErr
}

func retryable(err error) bool {
	var he *httpStatusError
	if errors.As(err, &he) {
		switch he.Code {
		case 429, 500, 502, 503, 504:
			return true
		}
		return false
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}

// statusCode returns the HTTP status carried by err, or 0.
func statusCode(err error) int {
	var he *httpStatusError
	if errors.As(err, &he) {
		return he.Code
	}
	return 0
}
