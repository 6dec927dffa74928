package amadeus

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sheriph/chat-bot/internal/models"
	"github.com/sheriph/chat-bot/internal/obs"
	"github.com/sheriph/chat-bot/internal/ratelimit"
)

const shoppingPath = "/v2/shopping/flight-offers"

const (
	defaultMaxRetries  = 3
	defaultBackoffBase = 400 * time.Millisecond
	defaultBackoffCap  = 5 * time.Second
	maxJitter          = 150 * time.Millisecond

	// Bounds for a server-supplied Retry-After.
	retryAfterMin = 500 * time.Millisecond
	retryAfterMax = 5 * time.Second
)

// Client wraps outbound calls to the flight provider with bearer-token
// injection and retry/backoff on transient failures. HTTP-level errors are
// returned as responses, not errors; only exhausted network retries fail the
// call outright.
type Client struct {
	httpClient *http.Client
	baseURL    string
	tokens     TokenSource
	limiter    *ratelimit.EndpointLimiter
	metrics    *obs.Metrics

	// Retry knobs, overridable in tests.
	MaxRetries  int
	BackoffBase time.Duration
	BackoffCap  time.Duration
}

func NewClient(baseURL string, tokens TokenSource, limiter *ratelimit.EndpointLimiter, httpClient *http.Client, metrics *obs.Metrics) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{
		httpClient:  httpClient,
		baseURL:     strings.TrimRight(baseURL, "/"),
		tokens:      tokens,
		limiter:     limiter,
		metrics:     metrics,
		MaxRetries:  defaultMaxRetries,
		BackoffBase: defaultBackoffBase,
		BackoffCap:  defaultBackoffCap,
	}
}

// Do executes one authenticated call with up to MaxRetries additional
// attempts on network failures and retriable statuses. The token is fetched
// fresh inside every attempt, so a token expiring mid-retry-sequence is
// picked up naturally. The caller owns the returned body.
func (c *Client) Do(ctx context.Context, method, path string, body []byte) (*http.Response, error) {
	endpoint := endpointLabel(path)
	var lastErr error

	for attempt := 0; attempt <= c.MaxRetries; attempt++ {
		if attempt > 0 {
			c.metrics.IncUpstreamRetries()
		}

		if c.limiter != nil {
			if err := c.limiter.Wait(ctx, endpoint); err != nil {
				return nil, err
			}
		}

		token, err := c.tokens.Token(ctx)
		if err != nil {
			return nil, err
		}

		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+token)
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		start := time.Now()
		resp, err := c.httpClient.Do(req)
		c.metrics.ObserveUpstreamLatency(endpoint, time.Since(start).Seconds())

		if err != nil {
			lastErr = err
			if attempt == c.MaxRetries {
				break
			}
			if err := sleepCtx(ctx, c.backoffDelay(attempt)); err != nil {
				return nil, err
			}
			continue
		}

		if !retriableStatus(resp.StatusCode) || attempt == c.MaxRetries {
			// 2xx, auth failures and other 4xx come back as-is; so does the
			// final retriable response once attempts are spent.
			return resp, nil
		}

		delay := c.backoffDelay(attempt)
		if ra, ok := retryAfter(resp.Header); ok {
			delay = ra
		}
		drain(resp)
		if err := sleepCtx(ctx, delay); err != nil {
			return nil, err
		}
	}

	c.metrics.IncUpstreamErrors("network")
	return nil, &models.UpstreamTransientError{Err: lastErr}
}

// SearchFlightOffers posts a search request and decodes the offer payload,
// returning the raw body alongside so it can be cached verbatim.
func (c *Client) SearchFlightOffers(ctx context.Context, req SearchRequest) (*models.OfferResponse, []byte, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, nil, err
	}

	resp, err := c.Do(ctx, http.MethodPost, shoppingPath, payload)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		c.metrics.IncUpstreamErrors("read")
		return nil, nil, &models.UpstreamTransientError{Err: err}
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		c.metrics.IncUpstreamErrors("auth")
		return nil, nil, &models.AuthError{Err: fmt.Errorf("search returned %d: %s", resp.StatusCode, upstreamDetail(body))}
	case retriableStatus(resp.StatusCode):
		c.metrics.IncUpstreamErrors("transient")
		return nil, nil, &models.UpstreamTransientError{Status: resp.StatusCode}
	default:
		c.metrics.IncUpstreamErrors("rejected")
		return nil, nil, &models.UpstreamRejectedError{Status: resp.StatusCode, Detail: upstreamDetail(body)}
	}

	var offers models.OfferResponse
	if err := json.Unmarshal(body, &offers); err != nil {
		c.metrics.IncUpstreamErrors("decode")
		return nil, nil, &models.UpstreamRejectedError{Status: resp.StatusCode, Detail: "unparseable offer payload: " + err.Error()}
	}

	return &offers, body, nil
}

// Transient failures worth another attempt: server-side errors, request
// timeout and rate limiting. Auth and other client errors are not the kind
// of failure a retry fixes.
func retriableStatus(status int) bool {
	return status >= 500 || status == http.StatusRequestTimeout || status == http.StatusTooManyRequests
}

func (c *Client) backoffDelay(attempt int) time.Duration {
	delay := c.BackoffBase << attempt
	if delay > c.BackoffCap {
		delay = c.BackoffCap
	}
	delay += time.Duration(rand.Int63n(int64(maxJitter) + 1))
	if delay > c.BackoffCap {
		delay = c.BackoffCap
	}
	return delay
}

// retryAfter reads a server-supplied Retry-After (seconds form), clamped so
// a confused upstream can neither stampede us nor stall the request.
func retryAfter(h http.Header) (time.Duration, bool) {
	raw := h.Get("Retry-After")
	if raw == "" {
		return 0, false
	}
	secs, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, false
	}
	d := time.Duration(secs) * time.Second
	if d < retryAfterMin {
		d = retryAfterMin
	}
	if d > retryAfterMax {
		d = retryAfterMax
	}
	return d, true
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func drain(resp *http.Response) {
	io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<20))
	resp.Body.Close()
}

func endpointLabel(path string) string {
	if strings.HasPrefix(path, "/v2/shopping") {
		return "shopping"
	}
	return "other"
}

// upstreamDetail pulls the human-readable error out of the provider's error
// payload, falling back to the raw body.
func upstreamDetail(body []byte) string {
	var parsed struct {
		Errors []struct {
			Title  string `json:"title"`
			Detail string `json:"detail"`
		} `json:"errors"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil && len(parsed.Errors) > 0 {
		e := parsed.Errors[0]
		if e.Detail != "" {
			return e.Detail
		}
		if e.Title != "" {
			return e.Title
		}
	}
	s := strings.TrimSpace(string(body))
	if len(s) > 500 {
		s = s[:500]
	}
	return s
}
