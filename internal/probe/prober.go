// Package probe checks provider connectivity. Each provider family gets
// its own request shape and its own reading of the response; the point
// is "can this configuration reach its API", not "does the API work".
package probe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/billie-coop/roster/internal/catalog"
)

// ErrorType classifies a failed probe by origin.
type ErrorType string

const (
	ErrorAuth       ErrorType = "auth"
	ErrorPermission ErrorType = "permission"
	ErrorRateLimit  ErrorType = "rate_limit"
	ErrorServer     ErrorType = "server"
	ErrorNotFound   ErrorType = "not_found"
	ErrorNetwork    ErrorType = "network"
)

// Details carries the measurable facts of one probe.
type Details struct {
	Status    int           `json:"status,omitempty"`
	Duration  time.Duration `json:"duration"`
	Timestamp time.Time     `json:"timestamp"`
	Endpoint  string        `json:"endpoint"`
	ErrorType ErrorType     `json:"errorType,omitempty"`
}

// Result is the outcome of one connectivity test.
type Result struct {
	Valid   bool     `json:"isValid"`
	Errors  []string `json:"errors,omitempty"`
	Message string   `json:"message"`
	Details Details  `json:"details"`
}

// Prober runs connectivity tests. It holds no state and mutates
// nothing; retries and timeouts live in the injected client.
type Prober struct {
	client *Client
	logger *slog.Logger
}

// NewProber creates a prober over the given client.
func NewProber(client *Client, logger *slog.Logger) *Prober {
	return &Prober{client: client, logger: logger}
}

// Test checks whether the provider is reachable. Static validation runs
// first; a provider that fails the rule checks is never probed. A probe
// that outlives its timeout is reported as a network failure; whatever
// the straggling request eventually returns is discarded with it.
func (p *Prober) Test(ctx context.Context, provider catalog.Provider) Result {
	if res := catalog.ValidateProvider(provider); !res.Valid {
		return Result{
			Valid:   false,
			Errors:  res.Errors,
			Message: "provider configuration is invalid",
			Details: Details{
				Timestamp: time.Now(),
				Endpoint:  provider.Endpoint,
			},
		}
	}

	start := time.Now()
	var (
		status int
		err    error
	)
	switch provider.Type {
	case catalog.KindOpenAI:
		status, err = p.probeOpenAI(ctx, provider)
	case catalog.KindAnthropic:
		status, err = p.probeAnthropic(ctx, provider)
	case catalog.KindGoogle:
		status, err = p.probeGoogle(ctx, provider)
	case catalog.KindCustom:
		status, err = p.probeCustom(ctx, provider)
	default:
		return Result{
			Valid:   false,
			Errors:  []string{fmt.Sprintf("unknown provider type %q", provider.Type)},
			Message: "provider configuration is invalid",
			Details: Details{Timestamp: time.Now(), Endpoint: provider.Endpoint},
		}
	}

	details := Details{
		Status:    status,
		Duration:  time.Since(start),
		Timestamp: time.Now(),
		Endpoint:  provider.Endpoint,
	}

	if err != nil {
		errType, message := classifyTransport(err)
		details.ErrorType = errType
		p.logger.Debug("probe failed",
			"provider", provider.Name,
			"errorType", string(errType),
			"error", err,
		)
		return Result{
			Valid:   false,
			Errors:  []string{err.Error()},
			Message: message,
			Details: details,
		}
	}

	if ok, message := acceptStatus(provider.Type, status); ok {
		return Result{Valid: true, Message: message, Details: details}
	}

	errType, message := classifyStatus(provider.Type, status)
	details.ErrorType = errType
	p.logger.Debug("probe rejected",
		"provider", provider.Name,
		"status", status,
		"errorType", string(errType),
	)
	return Result{
		Valid:   false,
		Errors:  []string{fmt.Sprintf("endpoint returned HTTP %d", status)},
		Message: message,
		Details: details,
	}
}

// probeOpenAI lists models; every OpenAI-compatible server exposes
// GET /v1/models and an authenticated 200 proves key and endpoint.
func (p *Prober) probeOpenAI(ctx context.Context, provider catalog.Provider) (int, error) {
	url := joinURL(provider.Endpoint, "/v1/models")
	resp, err := p.client.Do(ctx, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+provider.APIKey)
		return req, nil
	}, DefaultPolicy())
	if err != nil {
		return 0, err
	}
	defer drain(resp)

	if resp.StatusCode == http.StatusOK {
		// A collection is expected; an empty server still answers with
		// a data array.
		var body struct {
			Data []json.RawMessage `json:"data"`
		}
		if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&body); err != nil {
			return resp.StatusCode, fmt.Errorf("model listing is not valid JSON: %w", err)
		}
	}
	return resp.StatusCode, nil
}

// probeAnthropic sends a deliberately tiny chat request. The API
// answers HTTP 400 to malformed-but-authenticated requests, so a 400
// here is a reachability success, not a failure.
func (p *Prober) probeAnthropic(ctx context.Context, provider catalog.Provider) (int, error) {
	url := joinURL(provider.Endpoint, "/v1/messages")
	payload, err := json.Marshal(map[string]any{
		"model":      "claude-3-5-haiku-latest",
		"max_tokens": 1,
		"messages": []map[string]string{
			{"role": "user", "content": "ping"},
		},
	})
	if err != nil {
		return 0, err
	}

	resp, err := p.client.Do(ctx, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("x-api-key", provider.APIKey)
		req.Header.Set("anthropic-version", "2023-06-01")
		return req, nil
	}, DefaultPolicy())
	if err != nil {
		return 0, err
	}
	defer drain(resp)
	return resp.StatusCode, nil
}

// probeGoogle lists models with the key as a query parameter, the way
// the Gemini API authenticates.
func (p *Prober) probeGoogle(ctx context.Context, provider catalog.Provider) (int, error) {
	url := joinURL(provider.Endpoint, "/v1beta/models") + "?key=" + provider.APIKey
	resp, err := p.client.Do(ctx, func(ctx context.Context) (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	}, DefaultPolicy())
	if err != nil {
		return 0, err
	}
	defer drain(resp)
	return resp.StatusCode, nil
}

// probeCustom hits the base endpoint as-is under the tighter custom
// policy. Anything the server answers counts as reachable except 404,
// which means the URL itself is wrong.
func (p *Prober) probeCustom(ctx context.Context, provider catalog.Provider) (int, error) {
	resp, err := p.client.Do(ctx, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, provider.Endpoint, nil)
		if err != nil {
			return nil, err
		}
		if provider.APIKey != "" {
			req.Header.Set("Authorization", "Bearer "+provider.APIKey)
		}
		return req, nil
	}, CustomPolicy())
	if err != nil {
		return 0, err
	}
	defer drain(resp)
	return resp.StatusCode, nil
}

// acceptStatus reports whether the status counts as a successful
// reachability signal for the family.
func acceptStatus(kind catalog.Kind, status int) (bool, string) {
	switch kind {
	case catalog.KindAnthropic:
		if status == http.StatusOK || status == http.StatusBadRequest {
			return true, "provider is reachable"
		}
	case catalog.KindCustom:
		if status >= 200 && status < 400 {
			return true, "endpoint is reachable"
		}
	default:
		if status == http.StatusOK {
			return true, "provider is reachable"
		}
	}
	return false, ""
}

// classifyStatus maps a rejected HTTP status to the error taxonomy.
func classifyStatus(kind catalog.Kind, status int) (ErrorType, string) {
	switch {
	case status == http.StatusUnauthorized:
		return ErrorAuth, "authentication failed; check the API key"
	case status == http.StatusForbidden:
		return ErrorPermission, "the API key does not have permission for this endpoint"
	case status == http.StatusTooManyRequests:
		return ErrorRateLimit, "rate limited; try again later"
	case status >= 500:
		return ErrorServer, "the provider's server is having trouble; try again later"
	case status == http.StatusNotFound && kind == catalog.KindCustom:
		return ErrorNotFound, "nothing answered at that endpoint; check the URL"
	default:
		return ErrorNetwork, fmt.Sprintf("unexpected response from the provider (HTTP %d)", status)
	}
}

// classifyTransport maps a transport-level failure to the taxonomy.
// Everything at this level is some flavor of can't-reach-it.
func classifyTransport(err error) (ErrorType, string) {
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrorNetwork, "the connection timed out"
	}
	if errors.Is(err, context.Canceled) {
		return ErrorNetwork, "the test was cancelled"
	}
	return ErrorNetwork, "could not connect to the provider"
}

// joinURL appends a path to a base endpoint without doubling slashes.
func joinURL(base, path string) string {
	return strings.TrimRight(base, "/") + path
}

// drain finishes a response so the connection can be reused.
func drain(resp *http.Response) {
	io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<16)) //nolint:errcheck
	resp.Body.Close()
}
