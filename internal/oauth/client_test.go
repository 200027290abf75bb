package oauth

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fitexport/pkg/logging"
)

func newTestClient(tokenURL string) *Client {
	return NewClient(ClientConfig{
		ClientID:     "23ABCD",
		ClientSecret: "s3cret",
		RedirectURI:  "http://127.0.0.1:8080/",
		AuthorizeURL: "https://www.fitbit.com/oauth2/authorize",
		TokenURL:     tokenURL,
		Scopes:       []string{"heartrate", "activity"},
	})
}

func TestClient_NewAuthRequest(t *testing.T) {
	client := newTestClient("https://api.fitbit.com/oauth2/token")

	req, err := client.NewAuthRequest()
	require.NoError(t, err)
	require.NotNil(t, req.PKCE)
	assert.Len(t, req.State, 43)

	u, err := url.Parse(req.URL)
	require.NoError(t, err)
	assert.Equal(t, "www.fitbit.com", u.Host)
	assert.Equal(t, "/oauth2/authorize", u.Path)

	q := u.Query()
	assert.Equal(t, "code", q.Get("response_type"))
	assert.Equal(t, "23ABCD", q.Get("client_id"))
	assert.Equal(t, "http://127.0.0.1:8080/", q.Get("redirect_uri"))
	assert.Equal(t, "heartrate activity", q.Get("scope"))
	assert.Equal(t, req.State, q.Get("state"))
	assert.Equal(t, req.PKCE.CodeChallenge, q.Get("code_challenge"))
	assert.Equal(t, "S256", q.Get("code_challenge_method"))

	other, err := client.NewAuthRequest()
	require.NoError(t, err)
	assert.NotEqual(t, req.State, other.State)
}

func TestClient_Exchange(t *testing.T) {
	var authReq *AuthRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok, "client credentials must be sent as basic auth")
		assert.Equal(t, "23ABCD", user)
		assert.Equal(t, "s3cret", pass)

		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "authorization_code", r.PostForm.Get("grant_type"))
		assert.Equal(t, "the-code", r.PostForm.Get("code"))
		assert.Equal(t, "http://127.0.0.1:8080/", r.PostForm.Get("redirect_uri"))
		assert.Equal(t, authReq.PKCE.CodeVerifier, r.PostForm.Get("code_verifier"))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token":  "access-123",
			"refresh_token": "refresh-456",
			"token_type":    "Bearer",
			"expires_in":    28800,
			"user_id":       "ABC123",
		})
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	var err error
	authReq, err = client.NewAuthRequest()
	require.NoError(t, err)

	token, err := client.Exchanger(authReq).Exchange(context.Background(), "the-code")
	require.NoError(t, err)
	assert.Equal(t, "access-123", token.AccessToken)
	assert.Equal(t, "refresh-456", token.RefreshToken)
	assert.Equal(t, "ABC123", token.Extra("user_id"))
	assert.False(t, token.Expiry.IsZero())
}

func TestClient_Exchange_RequiresRequest(t *testing.T) {
	client := newTestClient("http://127.0.0.1:1/token")
	_, err := client.Exchange(context.Background(), nil, "code")
	assert.Error(t, err)
}

func TestClient_Exchange_ErrorClassification(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		expected OutcomeKind
	}{
		{
			name:     "wrong client secret",
			status:   http.StatusUnauthorized,
			body:     `{"errors":[{"errorType":"invalid_client","message":"Invalid authorization header."}],"success":false}`,
			expected: OutcomeMissingToken,
		},
		{
			name:     "standard invalid_client",
			status:   http.StatusBadRequest,
			body:     `{"error":"invalid_client"}`,
			expected: OutcomeMissingToken,
		},
		{
			name:     "no access token in response",
			status:   http.StatusOK,
			body:     `{"token_type":"Bearer"}`,
			expected: OutcomeMissingToken,
		},
		{
			name:     "replayed code",
			status:   http.StatusBadRequest,
			body:     `{"error":"invalid_grant","error_description":"Authorization code invalid"}`,
			expected: OutcomeStateMismatch,
		},
		{
			name:     "replayed code in fitbit format",
			status:   http.StatusBadRequest,
			body:     `{"errors":[{"errorType":"invalid_grant","message":"Authorization code invalid: abc Visit https://dev.fitbit.com/docs/oauth2 for more information on the Fitbit Web API authorization process."}],"success":false}`,
			expected: OutcomeStateMismatch,
		},
		{
			name:     "rejected client in fitbit format with 400",
			status:   http.StatusBadRequest,
			body:     `{"errors":[{"errorType":"invalid_client","message":"Invalid client_id"}],"success":false}`,
			expected: OutcomeMissingToken,
		},
		{
			name:     "unrecognised fitbit error",
			status:   http.StatusBadRequest,
			body:     `{"errors":[{"errorType":"system","message":"Something went wrong"}],"success":false}`,
			expected: OutcomeExchangeFault,
		},
		{
			name:     "server error",
			status:   http.StatusBadGateway,
			body:     `upstream unavailable`,
			expected: OutcomeExchangeFault,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if strings.HasPrefix(tt.body, "{") {
					w.Header().Set("Content-Type", "application/json")
				}
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := newTestClient(server.URL)
			req, err := client.NewAuthRequest()
			require.NoError(t, err)

			_, err = client.Exchange(context.Background(), req, "code")
			require.Error(t, err)
			assert.Equal(t, tt.expected, classifyExchangeError(err).Kind)
		})
	}
}

func TestClient_HTTPClientAuthorizes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer access-123", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := newTestClient(server.URL + "/token")
	httpClient := client.HTTPClient(context.Background(), tokenWithAccess("access-123"))

	resp, err := httpClient.Get(server.URL + "/1/user/-/profile.json")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, server.URL+"/token", client.TokenURL())
}

func TestClient_ExchangeAudited(t *testing.T) {
	var buf bytes.Buffer
	logging.InitForCLI(logging.LevelInfo, &buf)
	t.Cleanup(func() { logging.InitForCLI(logging.LevelInfo, nil) })

	var fail atomic.Bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if fail.Load() {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"errors":[{"errorType":"invalid_grant","message":"Authorization code invalid"}],"success":false}`))
			return
		}
		_, _ = w.Write([]byte(`{"access_token":"access-123","token_type":"Bearer","expires_in":28800,"scope":"heartrate activity"}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL + "/oauth2/token")
	req, err := client.NewAuthRequest()
	require.NoError(t, err)
	host := strings.TrimPrefix(server.URL, "http://")

	_, err = client.Exchange(context.Background(), req, "the-code")
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "[AUDIT] action=token_exchange outcome=success target="+host)
	assert.Contains(t, buf.String(), "scope=heartrate activity")
	assert.NotContains(t, buf.String(), "access-123")

	buf.Reset()
	fail.Store(true)
	_, err = client.Exchange(context.Background(), req, "the-code")
	require.Error(t, err)
	assert.Contains(t, buf.String(), "[AUDIT] action=token_exchange outcome=state_mismatch target="+host)
}

func TestClient_TokenHost(t *testing.T) {
	assert.Equal(t, "api.fitbit.com", newTestClient("https://api.fitbit.com/oauth2/token").tokenHost())
	assert.Equal(t, "not a url", newTestClient("not a url").tokenHost())
}
