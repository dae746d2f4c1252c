package probe

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// Policy controls timeout and retry behavior for one probe call.
type Policy struct {
	Timeout     time.Duration
	MaxAttempts int
	Backoff     time.Duration
}

// DefaultPolicy is used for named provider families.
func DefaultPolicy() Policy {
	return Policy{
		Timeout:     10 * time.Second,
		MaxAttempts: 3,
		Backoff:     500 * time.Millisecond,
	}
}

// CustomPolicy is used for custom endpoints: one quick attempt plus a
// single retry, since these are usually local servers that either
// answer immediately or not at all.
func CustomPolicy() Policy {
	return Policy{
		Timeout:     4 * time.Second,
		MaxAttempts: 2,
		Backoff:     250 * time.Millisecond,
	}
}

// Client executes probe requests with bounded retries. Server errors
// and transport failures are retried with backoff; authentication,
// permission, and rate-limit responses are returned immediately, those
// are answers, not failures to reach the endpoint.
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a probing client over http.DefaultTransport.
func NewClient(logger *slog.Logger) *Client {
	return NewClientWithHTTP(&http.Client{}, logger)
}

// NewClientWithHTTP creates a probing client over the given HTTP
// client. Tests inject an httptest client here.
func NewClientWithHTTP(hc *http.Client, logger *slog.Logger) *Client {
	return &Client{httpClient: hc, logger: logger}
}

// Do runs build to create a fresh request for each attempt (request
// bodies cannot be replayed) and executes it under the policy's
// per-attempt timeout. It returns the last response or the last
// transport error once attempts are exhausted.
func (c *Client) Do(ctx context.Context, build func(ctx context.Context) (*http.Request, error), policy Policy) (*http.Response, error) {
	attempts := policy.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error

	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(policy.Backoff):
			}
		}

		attemptCtx := ctx
		var cancel context.CancelFunc
		if policy.Timeout > 0 {
			attemptCtx, cancel = context.WithTimeout(ctx, policy.Timeout)
		}

		req, err := build(attemptCtx)
		if err != nil {
			if cancel != nil {
				cancel()
			}
			return nil, err
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if cancel != nil {
				cancel()
			}
			lastErr = err
			c.logger.Debug("probe attempt failed", "attempt", attempt, "error", err)
			continue
		}

		if resp.StatusCode >= 500 && attempt < attempts {
			resp.Body.Close()
			if cancel != nil {
				cancel()
			}
			lastErr = nil
			c.logger.Debug("probe got server error, retrying", "attempt", attempt, "status", resp.StatusCode)
			continue
		}

		// The response body outlives this call; tie the timeout's
		// cancel to body close so the caller reads at leisure.
		if cancel != nil {
			resp.Body = &cancelOnClose{body: resp.Body, cancel: cancel}
		}
		return resp, nil
	}

	return nil, lastErr
}

type cancelOnClose struct {
	body   io.ReadCloser
	cancel context.CancelFunc
}

func (c *cancelOnClose) Read(p []byte) (int, error) { return c.body.Read(p) }

func (c *cancelOnClose) Close() error {
	err := c.body.Close()
	c.cancel()
	return err
}
