package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/singleflight"
)

// tokenRefreshLeeway renews the management token a little before it
// actually expires, so requests never race the deadline.
const tokenRefreshLeeway = 60 * time.Second

var ErrManagementUserNotFound = errors.New("management api user not found")

// ManagementUserProfile is the subset of the identity provider's user
// record used to enrich local accounts.
type ManagementUserProfile struct {
	UserID   string  `json:"user_id"`
	Email    string  `json:"email"`
	Name     string  `json:"name"`
	Nickname *string `json:"nickname"`
	Picture  *string `json:"picture"`
}

// ManagementClient reads user profiles from the identity provider's
// management API.
type ManagementClient interface {
	GetUser(ctx context.Context, userID string) (*ManagementUserProfile, error)
}

// managementTokenCache holds one machine-to-machine access token and
// coalesces concurrent refreshes into a single upstream call.
type managementTokenCache struct {
	clock clockwork.Clock
	fetch func(ctx context.Context) (string, time.Time, error)

	mu        sync.Mutex
	token     string
	expiresAt time.Time

	group singleflight.Group
}

func newManagementTokenCache(clock clockwork.Clock, fetch func(ctx context.Context) (string, time.Time, error)) *managementTokenCache {
	return &managementTokenCache{clock: clock, fetch: fetch}
}

func (c *managementTokenCache) current() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token != "" && c.clock.Now().Before(c.expiresAt.Add(-tokenRefreshLeeway)) {
		return c.token, true
	}
	return "", false
}

func (c *managementTokenCache) Token(ctx context.Context) (string, error) {
	if token, ok := c.current(); ok {
		return token, nil
	}

	value, err, _ := c.group.Do("token", func() (interface{}, error) {
		// Another caller may have refreshed while we queued.
		if token, ok := c.current(); ok {
			return token, nil
		}
		token, expiresAt, err := c.fetch(ctx)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.token = token
		c.expiresAt = expiresAt
		c.mu.Unlock()
		return token, nil
	})
	if err != nil {
		return "", err
	}
	return value.(string), nil
}

type Auth0ManagementConfig struct {
	Domain       string
	ClientID     string
	ClientSecret string
	Audience     string
}

type auth0ManagementClient struct {
	cfg        Auth0ManagementConfig
	httpClient *http.Client
	tokenCache *managementTokenCache
}

func NewAuth0ManagementClient(cfg Auth0ManagementConfig, httpClient *http.Client, clock clockwork.Clock) (ManagementClient, error) {
	if cfg.Domain == "" || cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, errors.New("invalid auth0 management configuration: domain, client id and client secret are required")
	}
	if cfg.Audience == "" {
		cfg.Audience = fmt.Sprintf("https://%s/api/v2/", cfg.Domain)
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	client := &auth0ManagementClient{
		cfg:        cfg,
		httpClient: httpClient,
	}
	client.tokenCache = newManagementTokenCache(clock, client.fetchToken)
	return client, nil
}

func (c *auth0ManagementClient) fetchToken(ctx context.Context) (string, time.Time, error) {
	body, err := json.Marshal(map[string]string{
		"grant_type":    "client_credentials",
		"client_id":     c.cfg.ClientID,
		"client_secret": c.cfg.ClientSecret,
		"audience":      c.cfg.Audience,
	})
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to encode token request: %w", err)
	}

	tokenURL := fmt.Sprintf("https://%s/oauth/token", c.cfg.Domain)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenURL, bytes.NewReader(body))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("management token request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", time.Time{}, fmt.Errorf("management token request returned status %d", resp.StatusCode)
	}

	var payload struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", time.Time{}, fmt.Errorf("failed to decode token response: %w", err)
	}
	if payload.AccessToken == "" {
		return "", time.Time{}, errors.New("management token response contained no access token")
	}

	expiresAt := c.tokenCache.clock.Now().Add(time.Duration(payload.ExpiresIn) * time.Second)
	return payload.AccessToken, expiresAt, nil
}

func (c *auth0ManagementClient) GetUser(ctx context.Context, userID string) (*ManagementUserProfile, error) {
	token, err := c.tokenCache.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to obtain management token: %w", err)
	}

	userURL := fmt.Sprintf("https://%s/api/v2/users/%s", c.cfg.Domain, url.PathEscape(userID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, userURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build user request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("management user request failed: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, ErrManagementUserNotFound
	default:
		return nil, fmt.Errorf("management user request returned status %d", resp.StatusCode)
	}

	var profile ManagementUserProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("failed to decode user response: %w", err)
	}
	return &profile, nil
}
