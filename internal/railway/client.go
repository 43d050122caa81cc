// Package railway talks to the Railway GraphQL API.
//
// FILES:
//   - client.go:    transport (Execute) and error taxonomy
//   - queries.go:   GraphQL operation strings
//   - normalize.go: default-on-missing parsing of response payloads
package railway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// DefaultEndpoint is the production Railway GraphQL endpoint.
const DefaultEndpoint = "https://backboard.railway.app/graphql/v2"

// DefaultTimeout is the per-call ceiling. There are no retries; a slow
// upstream fails the single attempt.
const DefaultTimeout = 10 * time.Second

var (
	// ErrTimeout means the upstream did not answer within the ceiling.
	ErrTimeout = errors.New("upstream timeout")
	// ErrTransport means the connection itself failed.
	ErrTransport = errors.New("upstream transport error")
	// ErrMalformed means the response body is not valid JSON.
	ErrMalformed = errors.New("upstream returned malformed response")
)

// Client executes GraphQL operations. It is transport only: callers
// interpret the data/errors envelope themselves.
type Client struct {
	endpoint   string
	httpClient *http.Client
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithEndpoint overrides the GraphQL endpoint (tests point this at a stub).
func WithEndpoint(endpoint string) ClientOption {
	return func(c *Client) {
		if endpoint != "" {
			c.endpoint = endpoint
		}
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the per-call ceiling.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a Railway API client. Reads RAILWAY_API_URL from the
// environment when endpoint is empty.
func NewClient(endpoint string, opts ...ClientOption) *Client {
	if endpoint == "" {
		endpoint = os.Getenv("RAILWAY_API_URL")
	}
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}

	c := &Client{
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Execute posts one GraphQL operation authorized by token and returns the
// parsed body. Any HTTP status with a valid JSON body is handed to the
// caller; error interpretation of the envelope happens downstream.
func (c *Client) Execute(ctx context.Context, token, operation string, variables map[string]any) (gjson.Result, error) {
	body, err := buildBody(operation, variables)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return gjson.Result{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			return gjson.Result{}, fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		return gjson.Result{}, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("%w: reading body: %v", ErrTransport, err)
	}
	if !gjson.ValidBytes(raw) {
		return gjson.Result{}, fmt.Errorf("%w: status %d", ErrMalformed, resp.StatusCode)
	}
	return gjson.ParseBytes(raw), nil
}

func buildBody(operation string, variables map[string]any) ([]byte, error) {
	body, err := sjson.SetBytes([]byte(`{}`), "query", operation)
	if err != nil {
		return nil, err
	}
	if len(variables) == 0 {
		return body, nil
	}
	vars, err := json.Marshal(variables)
	if err != nil {
		return nil, err
	}
	return sjson.SetRawBytes(body, "variables", vars)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
