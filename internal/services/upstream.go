package services

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
	"sync"
	"time"
)

// ErrOrderNotFound is returned when the upstream API has no record for the
// requested order id.
var ErrOrderNotFound = errors.New("order not found")

const tokenRefreshLeeway = 30 * time.Second

// UpstreamClient talks to the restaurant API that owns all business state.
// It caches the bearer token and retries once on 401.
type UpstreamClient struct {
	baseURL string
	authURL string
	apiKey  string
	client  *http.Client

	tokenMu     sync.RWMutex
	token       string
	tokenExpiry time.Time
}

// NewUpstreamClient constructs an UpstreamClient.
func NewUpstreamClient(baseURL, authURL, apiKey string) *UpstreamClient {
	return &UpstreamClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		authURL: strings.TrimRight(authURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

type upstreamAuthRequest struct {
	APIKey string `json:"api_key"`
}

type upstreamAuthResponse struct {
	Data struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	} `json:"data"`
	Error any `json:"error,omitempty"`
}

// Token returns a cached upstream access token, fetching a new one if needed.
func (c *UpstreamClient) Token(ctx context.Context) (string, error) {
	if token, ok := c.cachedToken(); ok {
		return token, nil
	}
	return c.refreshToken(ctx)
}

func (c *UpstreamClient) cachedToken() (string, bool) {
	c.tokenMu.RLock()
	defer c.tokenMu.RUnlock()

	token := c.currentTokenLocked()
	if token == "" {
		return "", false
	}
	return token, true
}

func (c *UpstreamClient) currentTokenLocked() string {
	if c.token == "" {
		return ""
	}
	if time.Now().Add(tokenRefreshLeeway).After(c.tokenExpiry) {
		return ""
	}
	return c.token
}

func (c *UpstreamClient) refreshToken(ctx context.Context) (string, error) {
	c.tokenMu.Lock()
	defer c.tokenMu.Unlock()

	// Another goroutine may have refreshed while we waited for the lock.
	if token := c.currentTokenLocked(); token != "" {
		return token, nil
	}

	if c.apiKey == "" {
		return "", errors.New("UPSTREAM_API_KEY is not configured")
	}

	body, err := json.Marshal(upstreamAuthRequest{APIKey: c.apiKey})
	if err != nil {
		return "", fmt.Errorf("marshal auth payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.authURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create auth request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("execute auth request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read auth response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("auth request failed: status %d, body: %s", resp.StatusCode, string(respBody))
	}

	var authResp upstreamAuthResponse
	if err := json.Unmarshal(respBody, &authResp); err != nil {
		return "", fmt.Errorf("unmarshal auth response: %w", err)
	}

	if authResp.Data.AccessToken == "" {
		return "", errors.New("auth response missing access_token")
	}

	c.token = authResp.Data.AccessToken
	if authResp.Data.ExpiresIn > 0 {
		c.tokenExpiry = time.Now().Add(time.Duration(authResp.Data.ExpiresIn) * time.Second)
	} else {
		// Fallback to a short lifetime when expiry is not provided.
		c.tokenExpiry = time.Now().Add(5 * time.Minute)
	}

	return c.token, nil
}

func (c *UpstreamClient) invalidateToken() {
	c.tokenMu.Lock()
	c.token = ""
	c.tokenMu.Unlock()
}

type upstreamResponse struct {
	Status int
	Body   []byte
}

// do performs an authenticated request against the upstream API, refreshing
// the token and retrying once on 401.
func (c *UpstreamClient) do(ctx context.Context, method, path string, query map[string]string, payload any) (*upstreamResponse, error) {
	buildRequest := func(token string) (*http.Request, error) {
		u, err := url.Parse(c.baseURL + "/" + strings.TrimLeft(path, "/"))
		if err != nil {
			return nil, fmt.Errorf("parse upstream URL: %w", err)
		}
		if len(query) > 0 {
			values := u.Query()
			for k, v := range query {
				values.Set(k, v)
			}
			u.RawQuery = values.Encode()
		}

		var bodyReader io.Reader
		if payload != nil {
			body, err := json.Marshal(payload)
			if err != nil {
				return nil, fmt.Errorf("marshal request body: %w", err)
			}
			bodyReader = bytes.NewReader(body)
		}

		req, err := http.NewRequestWithContext(ctx, method, u.String(), bodyReader)
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		req.Header.Set("Authorization", "Bearer "+token)
		return req, nil
	}

	send := func(token string) (*upstreamResponse, error) {
		req, err := buildRequest(token)
		if err != nil {
			return nil, err
		}
		resp, err := c.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("execute request: %w", err)
		}
		defer resp.Body.Close()

		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("read response: %w", err)
		}
		return &upstreamResponse{Status: resp.StatusCode, Body: respBody}, nil
	}

	token, err := c.Token(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := send(token)
	if err != nil {
		return nil, err
	}
	if resp.Status != http.StatusUnauthorized {
		return resp, nil
	}

	// Token likely expired; refresh and retry once.
	c.invalidateToken()
	token, err = c.refreshToken(ctx)
	if err != nil {
		return nil, err
	}
	return send(token)
}

// decode unwraps the upstream {"success": ..., "data": ...} envelope.
func decode(resp *upstreamResponse, out any) error {
	if resp.Status < 200 || resp.Status >= 300 {
		return fmt.Errorf("upstream returned status %d: %s", resp.Status, string(resp.Body))
	}
	if out == nil {
		return nil
	}
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(resp.Body, &envelope); err != nil {
		return fmt.Errorf("unmarshal response envelope: %w", err)
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("unmarshal response data: %w", err)
	}
	return nil
}
