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
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tmdbx/internal/models"
	"github.com/desertthunder/tmdbx/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL = "https://api.themoviedb.org/3"
	defaultMessage = "An error occurred"
)

// Result is the uniform outcome of a single API call.
//
// Error is empty on success. Status is the HTTP status, or 500 when the request never produced a response.
type Result struct {
	Data   []byte
	Error  string
	Status int
}

// OK reports whether the call succeeded.
func (r *Result) OK() bool { return r.Error == "" }

// Err converts a failed result into an [*APIError], or nil on success.
func (r *Result) Err() error {
	if r.OK() {
		return nil
	}
	return &APIError{Status: r.Status, Message: r.Error}
}

// APIError is a failed call carrying the HTTP status and the API's status_message.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string { return e.Message }

func (e *APIError) Unwrap() error { return shared.ErrAPIRequest }

// StatusMessage returns the API's status_message, or "" when the response carried none.
func (e *APIError) StatusMessage() string {
	if e.Message == defaultMessage {
		return ""
	}
	return e.Message
}

// Transient reports whether retrying the same call could succeed (5xx, 429).
func (e *APIError) Transient() bool {
	return e.Status >= 500 || e.Status == http.StatusTooManyRequests
}

// IsTransient reports whether err is an [*APIError] for which [APIError.Transient] holds.
func IsTransient(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Transient()
}

// ClientOpts configures a [Client]. Zero values fall back to defaults.
type ClientOpts struct {
	BaseURL     string
	APIKey      string
	AccessToken string // v4 read access token, sent as a bearer token when set
	Language    string
	RateLimit   float64 // requests per second, 0 disables limiting
	Burst       int
	Timeout     time.Duration
	HTTPClient  *http.Client
	Logger      *log.Logger
}

// Client talks to the TMDB v3 API. Every request carries the api_key query parameter.
type Client struct {
	baseURL    string
	apiKey     string
	language   string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *log.Logger
}

// NewClient creates a new [Client].
func NewClient(opts ClientOpts) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Language == "" {
		opts.Language = "en"
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	httpClient := opts.HTTPClient
	if opts.AccessToken != "" || opts.Timeout > 0 {
		cp := *httpClient
		if opts.AccessToken != "" {
			src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: opts.AccessToken, TokenType: "Bearer"})
			cp.Transport = &oauth2.Transport{Source: src, Base: httpClient.Transport}
		}
		if opts.Timeout > 0 {
			cp.Timeout = opts.Timeout
		}
		httpClient = &cp
	}

	var limiter *rate.Limiter
	if opts.RateLimit > 0 {
		burst := opts.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}

	return &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		apiKey:     opts.APIKey,
		language:   opts.Language,
		httpClient: httpClient,
		limiter:    limiter,
		logger:     shared.WithLogger(opts.Logger, "component", "tmdb"),
	}
}

// SetLogger replaces the client's logger. Call it before issuing requests.
func (c *Client) SetLogger(logger *log.Logger) {
	c.logger = shared.WithLogger(logger, "component", "tmdb")
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, path string, params url.Values) *Result {
	return c.Do(ctx, http.MethodGet, path, params, nil)
}

// Post performs a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, params url.Values, body any) *Result {
	return c.Do(ctx, http.MethodPost, path, params, body)
}

// Put performs a PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, path string, params url.Values, body any) *Result {
	return c.Do(ctx, http.MethodPut, path, params, body)
}

// Delete performs a DELETE request. body may be nil.
func (c *Client) Delete(ctx context.Context, path string, params url.Values, body any) *Result {
	return c.Do(ctx, http.MethodDelete, path, params, body)
}

// Do performs a single best-effort request and never returns a Go error.
//
// Failures are folded into [Result]: non-2xx responses carry the API's status_message,
// anything else carries "An error occurred" with status 500.
func (c *Client) Do(ctx context.Context, method, path string, params url.Values, body any) *Result {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			c.logger.Debug("rate limiter wait aborted", "path", path, "error", err)
			return &Result{Error: defaultMessage, Status: http.StatusInternalServerError}
		}
	}

	query := url.Values{}
	for k, v := range params {
		query[k] = v
	}
	if c.apiKey != "" {
		query.Set("api_key", c.apiKey)
	}

	fullURL := c.baseURL + path
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			c.logger.Error("failed to encode request body", "path", path, "error", err)
			return &Result{Error: defaultMessage, Status: http.StatusInternalServerError}
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, reader)
	if err != nil {
		c.logger.Error("failed to create request", "path", path, "error", err)
		return &Result{Error: defaultMessage, Status: http.StatusInternalServerError}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json;charset=utf-8")
	}

	c.logger.Debug("request", "method", method, "path", path)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("request failed", "method", method, "path", path, "error", err)
		return &Result{Error: defaultMessage, Status: http.StatusInternalServerError}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.Warn("failed to read response", "path", path, "error", err)
		return &Result{Error: defaultMessage, Status: resp.StatusCode}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := defaultMessage
		var status models.StatusResponse
		if err := json.Unmarshal(data, &status); err == nil && status.StatusMessage != "" {
			msg = status.StatusMessage
		}
		c.logger.Debug("API error", "method", method, "path", path, "status", resp.StatusCode, "message", msg)
		return &Result{Error: msg, Status: resp.StatusCode}
	}

	return &Result{Data: data, Status: resp.StatusCode}
}

// Decode unmarshals a successful result into v and validates it when v implements [models.Validator].
func Decode(r *Result, v any) error {
	if err := r.Err(); err != nil {
		return err
	}
	if err := json.Unmarshal(r.Data, v); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidResponse, err)
	}
	if val, ok := v.(models.Validator); ok {
		if err := val.Validate(); err != nil {
			return fmt.Errorf("%w: %v", shared.ErrInvalidResponse, err)
		}
	}
	return nil
}

// fetch performs a request and decodes the result into a new T.
func fetch[T any](ctx context.Context, c *Client, method, path string, params url.Values, body any) (*T, error) {
	var v T
	if err := Decode(c.Do(ctx, method, path, params, body), &v); err != nil {
		return nil, err
	}
	return &v, nil
}
