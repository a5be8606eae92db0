package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/tmdbx/internal/models"
	"github.com/desertthunder/tmdbx/internal/shared"
	tu "github.com/desertthunder/tmdbx/internal/testing"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client := NewClient(ClientOpts{
		BaseURL: server.URL,
		APIKey:  "test-key",
		Logger:  shared.NewLogger(io.Discard),
	})
	return client, server
}

func TestClient(t *testing.T) {
	t.Run("New", func(t *testing.T) {
		t.Run("Defaults", func(t *testing.T) {
			c := NewClient(ClientOpts{})

			if c.baseURL != DefaultBaseURL {
				t.Errorf("expected baseURL %s, got %s", DefaultBaseURL, c.baseURL)
			}
			if c.httpClient != http.DefaultClient {
				t.Error("expected http.DefaultClient to be used")
			}
			if c.limiter != nil {
				t.Error("expected no limiter without a rate limit")
			}
			if c.language != "en" {
				t.Errorf("expected language en, got %s", c.language)
			}
		})

		t.Run("Trims Trailing Slash", func(t *testing.T) {
			c := NewClient(ClientOpts{BaseURL: "http://example.com/3/"})
			if c.baseURL != "http://example.com/3" {
				t.Errorf("expected trimmed baseURL, got %s", c.baseURL)
			}
		})

		t.Run("Timeout Copies Client", func(t *testing.T) {
			custom := &http.Client{}
			c := NewClient(ClientOpts{HTTPClient: custom, Timeout: 5 * time.Second})
			if c.httpClient == custom {
				t.Error("expected the supplied client to be copied, not mutated")
			}
			if c.httpClient.Timeout != 5*time.Second {
				t.Errorf("expected 5s timeout, got %v", c.httpClient.Timeout)
			}
			if custom.Timeout != 0 {
				t.Error("supplied client should be untouched")
			}
		})

		t.Run("Rate Limit", func(t *testing.T) {
			c := NewClient(ClientOpts{RateLimit: 10, Burst: 3})
			if c.limiter == nil {
				t.Fatal("expected limiter")
			}
			if c.limiter.Burst() != 3 {
				t.Errorf("expected burst 3, got %d", c.limiter.Burst())
			}
		})
	})

	t.Run("Do", func(t *testing.T) {
		t.Run("Injects API Key And Params", func(t *testing.T) {
			client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Query().Get("api_key") != "test-key" {
					t.Errorf("expected api_key test-key, got %s", r.URL.Query().Get("api_key"))
				}
				if r.URL.Query().Get("page") != "2" {
					t.Errorf("expected page 2, got %s", r.URL.Query().Get("page"))
				}
				w.Write([]byte(`{"ok":true}`))
			})

			res := client.Get(context.Background(), "/movie/popular", pageParams(2))
			if !res.OK() {
				t.Fatalf("expected success, got %s", res.Error)
			}
			if res.Status != http.StatusOK {
				t.Errorf("expected status 200, got %d", res.Status)
			}
			if string(res.Data) != `{"ok":true}` {
				t.Errorf("unexpected body %s", res.Data)
			}
		})

		t.Run("Sends JSON Body", func(t *testing.T) {
			client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost {
					t.Errorf("expected POST, got %s", r.Method)
				}
				if !strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
					t.Errorf("expected JSON content type, got %s", r.Header.Get("Content-Type"))
				}
				var body map[string]string
				json.NewDecoder(r.Body).Decode(&body)
				if body["name"] != "Favourites" {
					t.Errorf("expected name Favourites, got %s", body["name"])
				}
				w.WriteHeader(http.StatusCreated)
				w.Write([]byte(`{}`))
			})

			res := client.Post(context.Background(), "/list", nil, map[string]string{"name": "Favourites"})
			if !res.OK() || res.Status != http.StatusCreated {
				t.Errorf("expected 201 success, got %d %q", res.Status, res.Error)
			}
		})

		t.Run("API Error Uses Status Message", func(t *testing.T) {
			client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"status_code":7,"status_message":"Invalid API key: You must be granted a valid key."}`))
			})

			res := client.Get(context.Background(), "/account", nil)
			if res.OK() {
				t.Fatal("expected failure")
			}
			if res.Status != http.StatusUnauthorized {
				t.Errorf("expected status 401, got %d", res.Status)
			}
			if res.Error != "Invalid API key: You must be granted a valid key." {
				t.Errorf("unexpected error %q", res.Error)
			}
			if len(res.Data) != 0 {
				t.Errorf("expected no data on failure, got %s", res.Data)
			}
		})

		t.Run("API Error Without Message", func(t *testing.T) {
			client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
				w.Write([]byte(`<html>bad gateway</html>`))
			})

			res := client.Get(context.Background(), "/movie/popular", nil)
			if res.Error != "An error occurred" {
				t.Errorf("expected default message, got %q", res.Error)
			}
			if res.Status != http.StatusBadGateway {
				t.Errorf("expected status 502, got %d", res.Status)
			}
		})

		t.Run("Transport Error", func(t *testing.T) {
			httpClient := &http.Client{Transport: tu.NewMockRoundTripper(nil, errors.New("connection refused"))}
			client := NewClient(ClientOpts{HTTPClient: httpClient, Logger: shared.NewLogger(io.Discard)})

			res := client.Get(context.Background(), "/movie/popular", nil)
			if res.Error != "An error occurred" {
				t.Errorf("expected default message, got %q", res.Error)
			}
			if res.Status != http.StatusInternalServerError {
				t.Errorf("expected status 500, got %d", res.Status)
			}
			if !IsTransient(res.Err()) {
				t.Error("expected transport failure to be transient")
			}
		})

		t.Run("Read Error", func(t *testing.T) {
			resp := &http.Response{StatusCode: http.StatusOK, Body: &tu.FCloser{}, Header: http.Header{}}
			httpClient := &http.Client{Transport: tu.NewMockRoundTripper(resp, nil)}
			client := NewClient(ClientOpts{HTTPClient: httpClient, Logger: shared.NewLogger(io.Discard)})

			res := client.Get(context.Background(), "/movie/popular", nil)
			if res.OK() {
				t.Error("expected failure when body cannot be read")
			}
		})

		t.Run("Bearer Token", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Header.Get("Authorization") != "Bearer v4-token" {
					t.Errorf("expected bearer header, got %q", r.Header.Get("Authorization"))
				}
				w.Write([]byte(`{}`))
			}))
			defer server.Close()

			client := NewClient(ClientOpts{BaseURL: server.URL, AccessToken: "v4-token", Logger: shared.NewLogger(io.Discard)})
			if res := client.Get(context.Background(), "/configuration", nil); !res.OK() {
				t.Errorf("expected success, got %q", res.Error)
			}
		})

		t.Run("Cancelled Context", func(t *testing.T) {
			client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{}`))
			})
			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			res := client.Get(ctx, "/movie/popular", nil)
			if res.OK() {
				t.Error("expected failure for cancelled context")
			}
		})
	})

	t.Run("Decode", func(t *testing.T) {
		t.Run("Validates", func(t *testing.T) {
			var tok models.RequestTokenResponse
			err := Decode(&Result{Data: []byte(`{"success":true}`), Status: 200}, &tok)
			if !errors.Is(err, shared.ErrInvalidResponse) {
				t.Errorf("expected ErrInvalidResponse, got %v", err)
			}
		})

		t.Run("Malformed JSON", func(t *testing.T) {
			var tok models.RequestTokenResponse
			err := Decode(&Result{Data: []byte(`{`), Status: 200}, &tok)
			if !errors.Is(err, shared.ErrInvalidResponse) {
				t.Errorf("expected ErrInvalidResponse, got %v", err)
			}
		})

		t.Run("Propagates API Error", func(t *testing.T) {
			var tok models.RequestTokenResponse
			err := Decode(&Result{Error: "nope", Status: 404}, &tok)

			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected APIError, got %v", err)
			}
			if apiErr.Status != 404 || apiErr.Transient() {
				t.Errorf("expected permanent 404, got %+v", apiErr)
			}
			if !errors.Is(err, shared.ErrAPIRequest) {
				t.Error("expected APIError to wrap ErrAPIRequest")
			}
		})
	})

	t.Run("APIError StatusMessage", func(t *testing.T) {
		if got := (&APIError{Status: 401, Message: "Invalid API key"}).StatusMessage(); got != "Invalid API key" {
			t.Errorf("expected API message, got %q", got)
		}
		if got := (&APIError{Status: 500, Message: defaultMessage}).StatusMessage(); got != "" {
			t.Errorf("expected empty message for the default text, got %q", got)
		}
	})

	t.Run("APIError Transient", func(t *testing.T) {
		tc := []struct {
			status int
			want   bool
		}{
			{http.StatusInternalServerError, true},
			{http.StatusServiceUnavailable, true},
			{http.StatusTooManyRequests, true},
			{http.StatusUnauthorized, false},
			{http.StatusNotFound, false},
		}
		for _, tt := range tc {
			if got := (&APIError{Status: tt.status}).Transient(); got != tt.want {
				t.Errorf("status %d: expected transient=%v, got %v", tt.status, tt.want, got)
			}
		}
	})
}
