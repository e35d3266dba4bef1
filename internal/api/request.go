package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"net/url"
	"time"
)

// FetchErrorKind classifies a failed upstream call.
type FetchErrorKind int

const (
	KindUpstream FetchErrorKind = iota
	KindRateLimited
	KindMalformedResponse
)

func (k FetchErrorKind) String() string {
	switch k {
	case KindRateLimited:
		return "rate_limited"
	case KindMalformedResponse:
		return "malformed_response"
	default:
		return "upstream"
	}
}

// Sentinels matched by FetchError.Is.
var (
	ErrRateLimited       = errors.New("rate limited")
	ErrUpstream          = errors.New("upstream error")
	ErrMalformedResponse = errors.New("malformed response")
)

// FetchError represents a failed call to the CoinGecko API.
type FetchError struct {
	Kind       FetchErrorKind
	StatusCode int // 0 for transport and decode failures
	Message    string
	Body       []byte
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("coingecko api error %d: %s", e.StatusCode, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("coingecko %s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("coingecko %s: %s", e.Kind, e.Message)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Is matches the kind sentinels.
func (e *FetchError) Is(target error) bool {
	switch target {
	case ErrRateLimited:
		return e.Kind == KindRateLimited
	case ErrUpstream:
		return e.Kind == KindUpstream
	case ErrMalformedResponse:
		return e.Kind == KindMalformedResponse
	}
	return false
}

// IsRetryable returns true for 5xx and transport failures. 429 is never retried.
func (e *FetchError) IsRetryable() bool {
	return e.Kind == KindUpstream && (e.StatusCode == 0 || e.StatusCode >= 500)
}

// KindOf extracts the FetchErrorKind from err.
func KindOf(err error) (FetchErrorKind, bool) {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Kind, true
	}
	return 0, false
}

// doRequest performs a GET request. The API key header is only sent when authenticated is set.
func (c *Client) doRequest(ctx context.Context, path string, query url.Values, authenticated bool) ([]byte, error) {
	fullURL := c.baseURL + path
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, &FetchError{Kind: KindUpstream, Message: "create request", Err: err}
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if authenticated && c.apiKey != "" {
		req.Header.Set(c.apiKeyHeader, c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &FetchError{Kind: KindUpstream, Message: "do request", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{Kind: KindUpstream, Message: "read response", Err: err}
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		c.logger.Warn("coingecko rate limit hit",
			"path", path,
			"retry_after", resp.Header.Get("Retry-After"),
		)
		return nil, &FetchError{
			Kind:       KindRateLimited,
			StatusCode: resp.StatusCode,
			Message:    http.StatusText(resp.StatusCode),
			Body:       body,
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{
			Kind:       KindUpstream,
			StatusCode: resp.StatusCode,
			Message:    http.StatusText(resp.StatusCode),
			Body:       body,
		}
	}

	return body, nil
}

// doWithRetry performs a request with exponential backoff retry.
func (c *Client) doWithRetry(ctx context.Context, path string, query url.Values, authenticated bool, maxRetries int) ([]byte, error) {
	var lastErr error
	backoff := c.retryBackoff

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			// Add jitter: backoff * (0.5 to 1.5)
			jitter := backoff/2 + time.Duration(rand.Int64N(int64(backoff)))
			c.logger.Debug("retrying request",
				"attempt", attempt,
				"backoff", jitter,
				"path", path,
			)

			select {
			case <-ctx.Done():
				return nil, &FetchError{Kind: KindUpstream, Message: "retry aborted", Err: ctx.Err()}
			case <-time.After(jitter):
			}

			backoff *= 2
		}

		body, err := c.doRequest(ctx, path, query, authenticated)
		if err == nil {
			return body, nil
		}

		lastErr = err

		var fe *FetchError
		if !errors.As(err, &fe) || !fe.IsRetryable() || ctx.Err() != nil {
			return nil, err
		}
	}

	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}

// get performs a GET request and decodes the JSON body into result.
func (c *Client) get(ctx context.Context, path string, query url.Values, authenticated bool, maxRetries int, result any) error {
	body, err := c.doWithRetry(ctx, path, query, authenticated, maxRetries)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, result); err != nil {
		return &FetchError{Kind: KindMalformedResponse, Message: "unmarshal response", Body: body, Err: err}
	}

	return nil
}
