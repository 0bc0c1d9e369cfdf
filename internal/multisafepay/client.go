package multisafepay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/yourorg/multisafepay-gateway/internal/logger"
	"github.com/yourorg/multisafepay-gateway/internal/settings"
)

const (
	LiveBaseURL = "https://api.multisafepay.com/v1/json"
	TestBaseURL = "https://testapi.multisafepay.com/v1/json"

	defaultTimeout = 30 * time.Second
)

// ErrMissingAPIKey is returned by the factory when no API key is configured.
var ErrMissingAPIKey = errors.New("multisafepay api key is not configured")

// envelope is the common response wrapper of the JSON API.
type envelope struct {
	Success   bool            `json:"success"`
	Data      json.RawMessage `json:"data"`
	ErrorCode int             `json:"error_code"`
	ErrorInfo string          `json:"error_info"`
}

// Client implements Manager over HTTP. Calls are never retried.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	debug      bool
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		if c != nil {
			cl.httpClient = c
		}
	}
}

// WithBaseURL overrides the environment base URL.
func WithBaseURL(u string) Option {
	return func(cl *Client) { cl.baseURL = strings.TrimRight(u, "/") }
}

// WithDebug logs outbound request bodies.
func WithDebug(debug bool) Option {
	return func(cl *Client) { cl.debug = debug }
}

// NewClient creates a client for the given environment ("live" or "test").
func NewClient(apiKey, environment string, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		baseURL:    TestBaseURL,
		apiKey:     apiKey,
	}
	if strings.EqualFold(environment, "live") {
		c.baseURL = LiveBaseURL
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Create posts a new order.
func (c *Client) Create(ctx context.Context, req *OrderRequest) (*TransactionResponse, error) {
	if req == nil {
		return nil, invalidArgument("order request cannot be nil")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	var out TransactionResponse
	if err := c.do(ctx, http.MethodPost, "/orders", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Update patches an order.
func (c *Client) Update(ctx context.Context, orderID string, req UpdateRequest) error {
	if orderID == "" {
		return invalidArgument("order id is required")
	}
	return c.do(ctx, http.MethodPatch, "/orders/"+url.PathEscape(orderID), req, nil)
}

// Get fetches an order.
func (c *Client) Get(ctx context.Context, orderID string) (*TransactionResponse, error) {
	if orderID == "" {
		return nil, invalidArgument("order id is required")
	}
	var out TransactionResponse
	if err := c.do(ctx, http.MethodGet, "/orders/"+url.PathEscape(orderID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Issuers lists the issuers of a gateway, e.g. "ideal".
func (c *Client) Issuers(ctx context.Context, gateway string) ([]Issuer, error) {
	var out []Issuer
	if err := c.do(ctx, http.MethodGet, "/issuers/"+url.PathEscape(strings.ToLower(gateway)), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return &ClientError{Op: "encode request", Err: err}
		}
		if c.debug {
			logger.FromContext(ctx).Info().
				Str("method", method).
				Str("path", path).
				RawJSON("body", payload).
				Msg("MultiSafepay request")
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return &ClientError{Op: "create request", Err: err}
	}
	req.Header.Set("api_key", c.apiKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &ClientError{Op: method + " " + path, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &ClientError{Op: "read response", Err: err}
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		if resp.StatusCode >= 300 {
			return &APIError{HTTPStatus: resp.StatusCode, Info: http.StatusText(resp.StatusCode)}
		}
		return &ClientError{Op: "decode response", Err: err}
	}
	if !env.Success || resp.StatusCode >= 300 {
		return &APIError{HTTPStatus: resp.StatusCode, Code: env.ErrorCode, Info: env.ErrorInfo}
	}
	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return &ClientError{Op: "decode response data", Err: err}
	}
	return nil
}

// Factory builds a Manager per sales channel from its settings.
type Factory struct {
	opts []Option
}

// NewFactory creates a factory whose clients share the given options.
func NewFactory(opts ...Option) *Factory {
	return &Factory{opts: opts}
}

// Manager returns a client for the channel's API key and environment.
func (f *Factory) Manager(cfg settings.Settings) (Manager, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrMissingAPIKey
	}
	opts := append([]Option{WithDebug(cfg.DebugMode)}, f.opts...)
	return NewClient(cfg.APIKey, cfg.Environment, opts...), nil
}

var _ Manager = (*Client)(nil)
