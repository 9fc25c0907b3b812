// Package api is the shared HTTP layer every store goes through. It maps
// non-2xx responses to a structured *Error and evicts the persisted token
// whenever the backend answers 401.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"librairie/pkg/store"
)

const defaultTimeout = 10 * time.Second

// Error represents a bookstore API error response.
type Error struct {
	Status  int
	Message string
	Details json.RawMessage
}

func (e *Error) Error() string {
	return e.Message
}

// Config configures the API client.
type Config struct {
	BaseURL string
	Timeout time.Duration
	Tokens  store.TokenStore
	Logger  *slog.Logger
}

// Client calls the bookstore backend over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     store.TokenStore
	logger     *slog.Logger
}

// New constructs an API client.
func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	tokens := cfg.Tokens
	if tokens == nil {
		tokens = store.NewMemoryTokenStore()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		tokens:     tokens,
		logger:     logger,
	}
}

// Get issues a GET request and decodes the response into out (nil to discard).
func (c *Client) Get(ctx context.Context, endpoint string, requiresAuth bool, out any) error {
	return c.do(ctx, http.MethodGet, endpoint, nil, requiresAuth, out)
}

// Post issues a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, endpoint string, payload any, requiresAuth bool, out any) error {
	return c.do(ctx, http.MethodPost, endpoint, payload, requiresAuth, out)
}

// Put issues a PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, endpoint string, payload any, requiresAuth bool, out any) error {
	return c.do(ctx, http.MethodPut, endpoint, payload, requiresAuth, out)
}

// Delete issues a DELETE request.
func (c *Client) Delete(ctx context.Context, endpoint string, requiresAuth bool, out any) error {
	return c.do(ctx, http.MethodDelete, endpoint, nil, requiresAuth, out)
}

func (c *Client) do(ctx context.Context, method, endpoint string, payload any, requiresAuth bool, out any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())
	if requiresAuth {
		token, err := c.tokens.Load()
		if err != nil {
			return fmt.Errorf("load token: %w", err)
		}
		if strings.TrimSpace(token) != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := c.mapError(resp)
		c.logger.Debug("api request failed",
			"method", method, "endpoint", endpoint, "status", resp.StatusCode)
		return apiErr
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s %s: read body: %w", method, endpoint, err)
	}
	// Some endpoints answer 200 with an empty body; treat it like 204.
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%s %s: decode body: %w", method, endpoint, err)
	}
	return nil
}

// mapError turns a non-2xx response into an *Error with a message selected by
// status category. The body is parsed best-effort; when it is not JSON the
// message falls back to one carrying only the status code.
func (c *Client) mapError(resp *http.Response) *Error {
	var payload struct {
		Message string          `json:"message"`
		Errors  json.RawMessage `json:"errors"`
		Details json.RawMessage `json:"details"`
	}
	parsed := json.NewDecoder(resp.Body).Decode(&payload) == nil
	details := payload.Errors
	if details == nil {
		details = payload.Details
	}

	apiErr := &Error{Status: resp.StatusCode}
	switch resp.StatusCode {
	case http.StatusBadRequest:
		apiErr.Message = messageOr(payload.Message, "invalid request")
		apiErr.Details = details
	case http.StatusUnauthorized:
		apiErr.Message = "authentication required"
		// Any 401 invalidates the stored session, no matter which store
		// triggered the call.
		if err := c.tokens.Clear(); err != nil {
			c.logger.Warn("clear token after 401", "err", err)
		}
	case http.StatusNotFound:
		apiErr.Message = messageOr(payload.Message, "resource not found")
	case http.StatusConflict:
		apiErr.Message = messageOr(payload.Message, "conflict with an existing resource")
		apiErr.Details = details
	case http.StatusUnprocessableEntity:
		apiErr.Message = messageOr(payload.Message, "validation failed")
		apiErr.Details = details
	case http.StatusInternalServerError:
		apiErr.Message = "server error, try again later"
	default:
		apiErr.Message = messageOr(payload.Message, fmt.Sprintf("request failed with status %d", resp.StatusCode))
	}
	if !parsed && resp.StatusCode != http.StatusUnauthorized && resp.StatusCode != http.StatusInternalServerError {
		apiErr.Message = fmt.Sprintf("request failed with status %d", resp.StatusCode)
		apiErr.Details = nil
	}
	return apiErr
}

func messageOr(message, fallback string) string {
	if strings.TrimSpace(message) == "" {
		return fallback
	}
	return message
}
