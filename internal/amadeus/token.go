package amadeus

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/sheriph/chat-bot/internal/models"
	"github.com/sheriph/chat-bot/internal/obs"
)

const tokenPath = "/v1/security/oauth2/token"

// refreshBuffer keeps us from handing out a token that could expire while a
// search call is in flight.
const refreshBuffer = 5 * time.Minute

// TokenSource yields a bearer token for the flight provider.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// TokenCache holds at most one cached bearer token and performs the
// client-credentials exchange when the cached one is missing or inside the
// refresh buffer. The mutex serializes refreshes so concurrent requests do
// not each run their own exchange.
type TokenCache struct {
	httpClient   *http.Client
	baseURL      string
	clientID     string
	clientSecret string
	metrics      *obs.Metrics
	now          func() time.Time

	mu        sync.Mutex
	token     string
	expiresAt time.Time
}

func NewTokenCache(baseURL, clientID, clientSecret string, httpClient *http.Client, metrics *obs.Metrics) *TokenCache {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &TokenCache{
		httpClient:   httpClient,
		baseURL:      strings.TrimRight(baseURL, "/"),
		clientID:     clientID,
		clientSecret: clientSecret,
		metrics:      metrics,
		now:          time.Now,
	}
}

// Token returns the cached token when more than the refresh buffer remains
// before expiry, otherwise exchanges credentials for a fresh one.
func (t *TokenCache) Token(ctx context.Context) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.token != "" && t.now().Add(refreshBuffer).Before(t.expiresAt) {
		return t.token, nil
	}

	token, expiresIn, err := t.exchange(ctx)
	if err != nil {
		return "", err
	}

	t.token = token
	t.expiresAt = t.now().Add(time.Duration(expiresIn) * time.Second)
	t.metrics.IncTokenRefreshes()
	return t.token, nil
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
	TokenType   string `json:"token_type"`
}

func (t *TokenCache) exchange(ctx context.Context) (string, int, error) {
	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", t.clientID)
	form.Set("client_secret", t.clientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+tokenPath, strings.NewReader(form.Encode()))
	if err != nil {
		return "", 0, &models.AuthError{Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return "", 0, &models.AuthError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", 0, &models.AuthError{Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", 0, &models.AuthError{Err: fmt.Errorf("token endpoint returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))}
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return "", 0, &models.AuthError{Err: fmt.Errorf("decoding token response: %w", err)}
	}
	if tr.AccessToken == "" || tr.ExpiresIn <= 0 {
		return "", 0, &models.AuthError{Err: fmt.Errorf("token endpoint returned an empty or already-expired token")}
	}

	return tr.AccessToken, tr.ExpiresIn, nil
}
