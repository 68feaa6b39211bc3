package providers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/sony/gobreaker"

	"github.com/i474232898/district-weather-advisor/internal/weather"
)

var (
	errServerError  = errors.New("server error")
	errUnexpected   = errors.New("unexpected status code")
	errCircuitOpen  = errors.New("circuit breaker open")
	errNoHTTPClient = errors.New("http client not configured")
)

// maxErrorBody bounds how much of a failed response body is kept for the error message.
const maxErrorBody = 512

// doRequest executes the HTTP request once through the circuit breaker.
// Every transport, timeout or status failure is reported as weather.ErrUpstreamUnavailable;
// cancellation by the caller is returned as context.Canceled.
func doRequest(
	ctx context.Context,
	client *http.Client,
	cb *gobreaker.CircuitBreaker,
	req *http.Request,
) (*http.Response, error) {
	if client == nil {
		return nil, errNoHTTPClient
	}

	// Ensure the request obeys context cancellation.
	req = req.WithContext(ctx)

	result, err := cb.Execute(func() (interface{}, error) {
		resp, execErr := client.Do(req)
		if execErr != nil {
			return nil, execErr
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
			resp.Body.Close()

			if resp.StatusCode >= 500 {
				return nil, fmt.Errorf("%w: %d", errServerError, resp.StatusCode)
			}
			return nil, fmt.Errorf("%w: %d: %s", errUnexpected, resp.StatusCode, body)
		}

		return resp, nil
	})

	if err == nil {
		resp, ok := result.(*http.Response)
		if !ok {
			return nil, fmt.Errorf("unexpected result type from circuit breaker")
		}
		return resp, nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, callerError(ctxErr)
	}

	// If circuit is open, fail fast.
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %w: %v", weather.ErrUpstreamUnavailable, errCircuitOpen, err)
	}

	return nil, fmt.Errorf("%w: %w", weather.ErrUpstreamUnavailable, err)
}

// callerError maps an ended caller context. Cancellation is returned as is;
// an expired deadline is reported as an upstream timeout.
func callerError(ctxErr error) error {
	if errors.Is(ctxErr, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", weather.ErrUpstreamUnavailable, ctxErr)
	}
	return ctxErr
}
