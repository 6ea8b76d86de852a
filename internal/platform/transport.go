package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/retrypolicy"
)

// apiError is a non-2xx platform response.
type apiError struct {
	StatusCode int
	Message    string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("platform request failed (%d): %s", e.StatusCode, e.Message)
}

// retryableError reports whether an attempt should be retried. Network
// errors, rate limits, and server errors qualify; other API responses
// fail immediately.
func retryableError(err error) bool {
	if err == nil {
		return false
	}
	var respErr *apiError
	if errors.As(err, &respErr) {
		switch respErr.StatusCode {
		case http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout:
			return true
		}
		return false
	}
	return true
}

// RetryConfig bounds request retries with exponential backoff.
type RetryConfig struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

// DefaultRetryConfig returns the retry bounds the clients ship with.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries: 3,
		BaseDelay:  200 * time.Millisecond,
		MaxDelay:   10 * time.Second,
	}
}

// newExecutor builds the failsafe executor requests run through. Each
// attempt consumes the whole response before returning, so abandoned
// attempts never hold an open body.
func newExecutor(cfg RetryConfig) failsafe.Executor[[]byte] {
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = 200 * time.Millisecond
	}
	if cfg.MaxDelay < cfg.BaseDelay {
		cfg.MaxDelay = cfg.BaseDelay
	}

	policy := retrypolicy.NewBuilder[[]byte]().
		WithBackoff(cfg.BaseDelay, cfg.MaxDelay).
		WithJitterFactor(0.1).
		WithMaxRetries(cfg.MaxRetries).
		HandleIf(func(_ []byte, err error) bool {
			return retryableError(err)
		}).
		Build()

	return failsafe.With(policy)
}

// restClient is the HTTP plumbing shared by the real platform clients.
// Static headers carry auth; a missing Authorization header fails every
// call up front rather than surfacing as a platform 401.
type restClient struct {
	base     string
	client   *http.Client
	executor failsafe.Executor[[]byte]
	headers  map[string]string
}

func newRESTClient(base string, timeout time.Duration, headers map[string]string) *restClient {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &restClient{
		base:     strings.TrimRight(strings.TrimSpace(base), "/"),
		client:   &http.Client{Timeout: timeout},
		executor: newExecutor(DefaultRetryConfig()),
		headers:  headers,
	}
}

func (rc *restClient) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	target := rc.base + path
	if len(params) > 0 {
		target += "?" + params.Encode()
	}
	body, err := rc.do(ctx, http.MethodGet, target, nil)
	if err != nil {
		return err
	}
	return decodeJSON(body, out)
}

func (rc *restClient) postJSON(ctx context.Context, path string, payload, out any) error {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}
	body, err := rc.do(ctx, http.MethodPost, rc.base+path, encoded)
	if err != nil {
		return err
	}
	return decodeJSON(body, out)
}

func (rc *restClient) do(ctx context.Context, method, target string, payload []byte) ([]byte, error) {
	if rc.headers["Authorization"] == "" {
		return nil, ErrMissingCredentials
	}
	if ctx == nil {
		ctx = context.Background()
	}

	return rc.executor.WithContext(ctx).Get(func() ([]byte, error) {
		var reader io.Reader
		if payload != nil {
			reader = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, target, reader)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		for key, value := range rc.headers {
			req.Header.Set(key, value)
		}
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := rc.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("read response: %w", err)
		}
		if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
			msg := strings.TrimSpace(string(body))
			if msg == "" {
				msg = resp.Status
			}
			return nil, &apiError{StatusCode: resp.StatusCode, Message: msg}
		}
		return body, nil
	})
}

func decodeJSON(body []byte, out any) error {
	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// notFound reports whether err is a platform 404.
func notFound(err error) bool {
	var respErr *apiError
	return errors.As(err, &respErr) && respErr.StatusCode == http.StatusNotFound
}
