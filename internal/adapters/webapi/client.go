// Package webapi talks to an OData business-application Web API for option
// metadata and record updates.
package webapi

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

	"github.com/tidwall/gjson"
)

// DefaultAPIVersion is the Web API version used when none is configured.
const DefaultAPIVersion = "9.1"

// maxResponseBytes caps how much of one response body is read.
const maxResponseBytes = 8 << 20

// ErrRequestFailed reports a non-success HTTP status.
var ErrRequestFailed = errors.New("web api request failed")

// Config holds Web API connection settings.
type Config struct {
	BaseURL    string
	APIVersion string
	Token      string
	Procedure  string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client issues authenticated OData requests.
type Client struct {
	apiURL string
	token  string
	cfg    Config
	http   *http.Client
}

// NewClient validates cfg and constructs a client.
func NewClient(cfg Config) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, errors.New("web api base url is required")
	}
	parsed, err := url.Parse(base)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("invalid web api base url %q", cfg.BaseURL)
	}
	version := strings.TrimPrefix(strings.TrimSpace(cfg.APIVersion), "v")
	if version == "" {
		version = DefaultAPIVersion
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{
		apiURL: base + "/api/data/v" + version + "/",
		token:  strings.TrimSpace(cfg.Token),
		cfg:    cfg,
		http:   httpClient,
	}, nil
}

// APIURL returns the versioned Web API root.
func (c *Client) APIURL() string {
	return c.apiURL
}

// StatusError carries a failed response's status and provider message.
type StatusError struct {
	StatusCode int
	Message    string
}

// Error formats the status and message.
func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: status %d", ErrRequestFailed, e.StatusCode)
	}
	return fmt.Sprintf("%s: status %d: %s", ErrRequestFailed, e.StatusCode, e.Message)
}

// Unwrap exposes ErrRequestFailed.
func (e *StatusError) Unwrap() error {
	return ErrRequestFailed
}

// do sends one request and reads the whole response body.
func (c *Client) do(ctx context.Context, method, path string, body any) (int, []byte, error) {
	return c.doWithHeaders(ctx, method, path, body, nil)
}

func (c *Client) doWithHeaders(ctx context.Context, method, path string, body any, headers map[string]string) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return 0, nil, fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.apiURL+strings.TrimLeft(path, "/"), reader)
	if err != nil {
		return 0, nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("OData-MaxVersion", "4.0")
	req.Header.Set("OData-Version", "4.0")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("read %s %s response: %w", method, path, err)
	}
	return resp.StatusCode, raw, nil
}

// getJSON issues a GET and requires a 200 response with a valid JSON body.
func (c *Client) getJSON(ctx context.Context, path string) ([]byte, error) {
	status, raw, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, &StatusError{StatusCode: status, Message: errorMessage(raw)}
	}
	if !gjson.ValidBytes(raw) {
		return nil, fmt.Errorf("GET %s: malformed JSON response", path)
	}
	return raw, nil
}

// errorMessage extracts {"error":{"message"}} from a failure body.
func errorMessage(raw []byte) string {
	if len(raw) == 0 || !gjson.ValidBytes(raw) {
		return strings.TrimSpace(string(raw))
	}
	return gjson.GetBytes(raw, "error.message").String()
}

// quoteLiteral escapes one OData string literal.
func quoteLiteral(v string) string {
	return "'" + strings.ReplaceAll(v, "'", "''") + "'"
}
