package chat

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/users/u1/tokens", r.URL.Path)
		assert.Equal(t, "Bearer api-key", r.Header.Get("Authorization"))

		var body tokenRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "u1", body.Name)
		assert.Equal(t, TokenLifetime, body.ExpiresIn)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"chat-token-1"}`))
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL+"/", "api-key")
	require.NoError(t, err)

	token, err := client.IssueToken(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "chat-token-1", token)
}

func TestIssueTokenFailures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{"server error", http.StatusBadGateway, "upstream down", "status 502"},
		{"empty token", http.StatusOK, `{}`, "empty access token"},
		{"bad json", http.StatusOK, `not json`, "decode"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			client, err := NewClient(srv.URL, "api-key")
			require.NoError(t, err)

			_, err = client.IssueToken(context.Background(), "u1")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestNewClientRequiresServer(t *testing.T) {
	_, err := NewClient("", "key")
	assert.Error(t, err)
}
