package places

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func stubClient(t *testing.T, status int, body string, capture *http.Request) *Client {
	t.Helper()
	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		if capture != nil {
			*capture = *req
		}
		return &http.Response{
			StatusCode: status,
			Body:       io.NopCloser(strings.NewReader(body)),
			Header:     http.Header{},
		}, nil
	})
	client, err := NewClient("test-key", WithBaseURL("http://places.test/api/"), WithHTTPClient(&http.Client{Transport: rt}))
	require.NoError(t, err)
	return client
}

func TestNewClientRequiresKey(t *testing.T) {
	_, err := NewClient("  ")
	assert.Error(t, err)
}

func TestFindFromText(t *testing.T) {
	body := `{"candidates":[{"place_id":"ChIJ123","name":"Ottawa","formatted_address":"Ottawa, ON, Canada",
		"types":["locality","political"],"geometry":{"location":{"lat":45.4215296,"lng":-75.6971931}}}],"status":"OK"}`

	var req http.Request
	client := stubClient(t, http.StatusOK, body, &req)

	place, err := client.FindFromText(context.Background(), "Ottawa Canada")
	require.NoError(t, err)

	assert.Equal(t, "/api/findplacefromtext/json", req.URL.Path)
	q := req.URL.Query()
	assert.Equal(t, "Ottawa Canada", q.Get("input"))
	assert.Equal(t, "textquery", q.Get("inputtype"))
	assert.Equal(t, "test-key", q.Get("key"))
	assert.Equal(t, placeFields, q.Get("fields"))

	assert.Equal(t, "ChIJ123", place.PlaceID)
	assert.Equal(t, "Ottawa, ON, Canada", place.FormattedAddress)
	assert.Equal(t, "locality", place.Type())
	assert.InDelta(t, 45.4215296, place.Lat, 1e-9)
	assert.InDelta(t, -75.6971931, place.Lng, 1e-9)
}

func TestFindFromTextNoCandidates(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"zero results", `{"candidates":[],"status":"ZERO_RESULTS"}`},
		{"empty candidates", `{"candidates":[],"status":"OK"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := stubClient(t, http.StatusOK, tt.body, nil)
			_, err := client.FindFromText(context.Background(), "nowhere")
			assert.ErrorIs(t, err, ErrNoResults)
		})
	}
}

func TestDetails(t *testing.T) {
	body := `{"result":{"place_id":"place_1","name":"Splash Park","formatted_address":"1 Park Rd",
		"types":["park"],"geometry":{"location":{"lat":1.5,"lng":2.5}}},"status":"OK"}`

	var req http.Request
	client := stubClient(t, http.StatusOK, body, &req)

	place, err := client.Details(context.Background(), "place_1")
	require.NoError(t, err)

	assert.Equal(t, "/api/details/json", req.URL.Path)
	assert.Equal(t, "place_1", req.URL.Query().Get("place_id"))
	assert.Equal(t, "Splash Park", place.Name)
	assert.Equal(t, "park", place.Type())
}

func TestDetailsEmptyResult(t *testing.T) {
	client := stubClient(t, http.StatusOK, `{"result":{},"status":"OK"}`, nil)
	_, err := client.Details(context.Background(), "place_1")
	assert.ErrorIs(t, err, ErrNoResults)

	client = stubClient(t, http.StatusOK, `{"status":"NOT_FOUND"}`, nil)
	_, err = client.Details(context.Background(), "place_1")
	assert.ErrorIs(t, err, ErrNoResults)
}

func TestUpstreamFailures(t *testing.T) {
	client := stubClient(t, http.StatusInternalServerError, "boom", nil)
	_, err := client.Details(context.Background(), "place_1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoResults)
	assert.Contains(t, err.Error(), "status 500")

	client = stubClient(t, http.StatusOK, `{"status":"REQUEST_DENIED","error_message":"bad key"}`, nil)
	_, err = client.FindFromText(context.Background(), "park")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad key")
}
