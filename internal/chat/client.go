// Package chat exchanges a username for a bearer token on the external chat server.
package chat

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
)

// TokenLifetime is how long issued chat tokens stay valid, in seconds (ten years).
const TokenLifetime = 315360000

const (
	defaultRequestTimeout = 10 * time.Second
	responseBodyReadLimit = 1024
)

var errServerRequired = errors.New("chat server url is required")

// Client issues chat access tokens.
type Client struct {
	httpClient *http.Client
	server     string
	apiKey     string
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout sets the request timeout of the default HTTP client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient = &http.Client{Timeout: timeout}
		}
	}
}

// NewClient builds a chat client for the given server.
func NewClient(server, apiKey string, opts ...Option) (*Client, error) {
	server = strings.TrimRight(strings.TrimSpace(server), "/")
	if server == "" {
		return nil, errServerRequired
	}

	client := &Client{
		server:     server,
		apiKey:     strings.TrimSpace(apiKey),
		httpClient: &http.Client{Timeout: defaultRequestTimeout},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client, nil
}

type tokenRequest struct {
	Name      string `json:"name"`
	ExpiresIn int    `json:"expires_in"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
}

// IssueToken requests an access token for username.
func (c *Client) IssueToken(ctx context.Context, username string) (string, error) {
	payload, err := json.Marshal(tokenRequest{Name: username, ExpiresIn: TokenLifetime})
	if err != nil {
		return "", fmt.Errorf("failed to marshal token request: %w", err)
	}

	reqURL := fmt.Sprintf("%s/api/users/%s/tokens", c.server, url.PathEscape(username))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to request chat token: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
		return "", fmt.Errorf("chat token request failed: status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var out tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to decode chat token response: %w", err)
	}
	if out.AccessToken == "" {
		return "", errors.New("chat server returned an empty access token")
	}
	return out.AccessToken, nil
}
