// Package api is a client for the NovelAI HTTP API and the output helpers
// the CLI renders its results with.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jackzampolin/novelai/version"
)

const (
	// DefaultBaseURL is the NovelAI API endpoint.
	DefaultBaseURL = "https://api.novelai.net"

	// DefaultTimeout bounds a single request. Voice generation for a full
	// segment can take tens of seconds.
	DefaultTimeout = 120 * time.Second
)

// DefaultUserAgent identifies this client to the API.
func DefaultUserAgent() string {
	return fmt.Sprintf("NovelAI-API-Client/%s/go", version.GitRelease)
}

// Config holds configuration for the NovelAI client.
type Config struct {
	BaseURL     string        // default: DefaultBaseURL
	AccessToken string        // sent as a bearer token when set
	UserAgent   string        // default: DefaultUserAgent()
	Timeout     time.Duration // ignored when HTTPClient is set
	HTTPClient  *http.Client  // optional (tests)
	Metrics     *Metrics      // optional
	Logger      *slog.Logger
}

// Client is an HTTP client for the NovelAI API. It performs no retries;
// callers that need them layer them on top.
type Client struct {
	baseURL     string
	accessToken string
	userAgent   string
	httpClient  *http.Client
	metrics     *Metrics
	logger      *slog.Logger
}

// NewClient creates a new API client.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent()
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	return &Client{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		accessToken: cfg.AccessToken,
		userAgent:   cfg.UserAgent,
		httpClient:  httpClient,
		metrics:     cfg.Metrics,
		logger:      cfg.Logger,
	}
}

// BaseURL returns the configured base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// setupRequest adds the authentication and identification headers.
func (c *Client) setupRequest(req *http.Request) {
	if c.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.accessToken)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
}

// do sends a request and returns the body of a 2xx response. Every failure
// comes back as a *RequestError tagged with op.
func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, body any) ([]byte, error) {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var bodyReader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		if err != nil {
			return nil, &RequestError{Op: op, Err: fmt.Errorf("failed to marshal body: %w", err)}
		}
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, bodyReader)
	if err != nil {
		return nil, &RequestError{Op: op, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.setupRequest(req)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.observe(op, 0, time.Since(start))
		c.logger.Debug("novelai request failed", "op", op, "error", err)
		return nil, &RequestError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	elapsed := time.Since(start)
	c.metrics.observe(op, resp.StatusCode, elapsed)
	if err != nil {
		c.logger.Debug("novelai response read failed", "op", op, "status", resp.StatusCode, "error", err)
		return nil, &RequestError{
			Op:         op,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("failed to read response: %w", err),
		}
	}

	c.logger.Debug("novelai request",
		"op", op,
		"status", resp.StatusCode,
		"bytes", len(respBody),
		"duration", elapsed)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &RequestError{
			Op:         op,
			StatusCode: resp.StatusCode,
			Body:       errorMessage(respBody),
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
		}
	}

	return respBody, nil
}

// errorResponse matches the API's JSON error body.
type errorResponse struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
}

func errorMessage(body []byte) string {
	var errResp errorResponse
	if json.Unmarshal(body, &errResp) == nil && errResp.Message != "" {
		return errResp.Message
	}
	return truncateBody(body)
}
