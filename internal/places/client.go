// Package places is a client for the Google Places find-from-text and
// details endpoints.
package places

import (
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

const (
	defaultBaseURL        = "https://maps.googleapis.com/maps/api/place"
	placeFields           = "formatted_address,name,types,geometry,place_id"
	responseBodyReadLimit = 1024
	statusOK              = "OK"
	statusZeroResults     = "ZERO_RESULTS"
	statusNotFound        = "NOT_FOUND"
	statusInvalidRequest  = "INVALID_REQUEST"
	defaultRequestTimeout = 10 * time.Second
)

var (
	// ErrNoResults is returned when the lookup finds no place
	ErrNoResults = errors.New("no results")

	errAPIKeyRequired = errors.New("google places api key is required")
)

// Client wraps the Google Places APIs used to resolve places.
type Client struct {
	httpClient *http.Client
	baseURL    string
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

// WithBaseURL overrides the Places base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		trimmed := strings.TrimSpace(baseURL)
		if trimmed != "" {
			c.baseURL = strings.TrimRight(trimmed, "/")
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

// NewClient builds the Places client given an API key.
func NewClient(apiKey string, opts ...Option) (*Client, error) {
	trimmedKey := strings.TrimSpace(apiKey)
	if trimmedKey == "" {
		return nil, errAPIKeyRequired
	}

	client := &Client{
		apiKey:     trimmedKey,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: defaultRequestTimeout},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client, nil
}

// Place is the normalized data returned by both endpoints.
type Place struct {
	PlaceID          string
	Name             string
	FormattedAddress string
	Lat              float64
	Lng              float64
	Types            []string
}

// Type returns the primary category of the place.
func (p *Place) Type() string {
	if len(p.Types) == 0 {
		return ""
	}
	return p.Types[0]
}

type apiPlace struct {
	PlaceID          string   `json:"place_id"`
	Name             string   `json:"name"`
	FormattedAddress string   `json:"formatted_address"`
	Types            []string `json:"types"`
	Geometry         struct {
		Location struct {
			Lat float64 `json:"lat"`
			Lng float64 `json:"lng"`
		} `json:"location"`
	} `json:"geometry"`
}

func (p apiPlace) normalize() *Place {
	return &Place{
		PlaceID:          p.PlaceID,
		Name:             p.Name,
		FormattedAddress: p.FormattedAddress,
		Lat:              p.Geometry.Location.Lat,
		Lng:              p.Geometry.Location.Lng,
		Types:            p.Types,
	}
}

// FindFromText returns the best candidate for a free-text query.
func (c *Client) FindFromText(ctx context.Context, input string) (*Place, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, ErrNoResults
	}

	params := url.Values{}
	params.Set("fields", placeFields)
	params.Set("input", input)
	params.Set("inputtype", "textquery")

	var resp struct {
		Candidates   []apiPlace `json:"candidates"`
		Status       string     `json:"status"`
		ErrorMessage string     `json:"error_message"`
	}
	if err := c.get(ctx, "findplacefromtext", params, &resp); err != nil {
		return nil, err
	}
	if err := checkStatus(resp.Status, resp.ErrorMessage); err != nil {
		return nil, err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].PlaceID == "" {
		return nil, ErrNoResults
	}
	return resp.Candidates[0].normalize(), nil
}

// Details returns the place with the given id.
func (c *Client) Details(ctx context.Context, placeID string) (*Place, error) {
	placeID = strings.TrimSpace(placeID)
	if placeID == "" {
		return nil, ErrNoResults
	}

	params := url.Values{}
	params.Set("fields", placeFields)
	params.Set("place_id", placeID)

	var resp struct {
		Result       *apiPlace `json:"result"`
		Status       string    `json:"status"`
		ErrorMessage string    `json:"error_message"`
	}
	if err := c.get(ctx, "details", params, &resp); err != nil {
		return nil, err
	}
	if err := checkStatus(resp.Status, resp.ErrorMessage); err != nil {
		return nil, err
	}
	if resp.Result == nil || resp.Result.PlaceID == "" {
		return nil, ErrNoResults
	}
	return resp.Result.normalize(), nil
}

func (c *Client) get(ctx context.Context, endpoint string, params url.Values, out any) error {
	params.Set("key", c.apiKey)
	reqURL := fmt.Sprintf("%s/%s/json?%s", c.baseURL, endpoint, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to build %s request: %w", endpoint, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute %s request: %w", endpoint, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
		return fmt.Errorf("%s request failed: status %d: %s", endpoint, resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", endpoint, err)
	}
	return nil
}

func checkStatus(status, message string) error {
	switch status {
	case "", statusOK:
		return nil
	case statusZeroResults, statusNotFound, statusInvalidRequest:
		return ErrNoResults
	default:
		if message != "" {
			return fmt.Errorf("places api status %s: %s", status, message)
		}
		return fmt.Errorf("places api status %s", status)
	}
}
