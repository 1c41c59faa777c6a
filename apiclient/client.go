// Package apiclient is the single request pipeline for every backend call.
// All outbound requests share one configured client: base endpoint
// resolution, timeout enforcement, bearer credential attachment, and
// centralized expired-session interception happen here exactly once, so no
// call site can get them wrong.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/authdoc/go-authdoc-client/internal/config"
	"github.com/authdoc/go-authdoc-client/token"
)

// Client wraps http.Client with the session interceptor pipeline. Fixed at
// construction: base URL, request timeout, and content negotiation defaults.
type Client struct {
	httpClient *http.Client
	baseURL    string
	tokens     token.Repo
	log        zerolog.Logger

	invalidatedMu sync.RWMutex
	onInvalidated func()
}

// Option defines a function type to modify the Client instance.
type Option func(*Client)

// WithLogger sets the client's logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.log = logger
	}
}

// WithBaseTransport replaces the underlying transport. The interceptor
// pipeline is layered on top of whatever is supplied here.
func WithBaseTransport(rt http.RoundTripper) Option {
	return func(c *Client) {
		c.httpClient.Transport = rt
	}
}

// WithBaseURL overrides the configured base URL (primarily for testing).
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// New creates the shared API client. cfg fixes the base URL and timeout,
// tokens supplies the credential for bearer attachment and is cleared by the
// pipeline on any unauthorized response.
func New(cfg config.APIConfig, tokens token.Repo, options ...Option) (*Client, error) {
	if cfg == nil {
		return nil, errors.New("[apiclient.New] config is required")
	}
	if tokens == nil {
		return nil, errors.New("[apiclient.New] token repo is required")
	}

	c := &Client{
		httpClient: &http.Client{Timeout: cfg.GetRequestTimeout()},
		baseURL:    strings.TrimRight(cfg.GetAPIBaseURL(), "/"),
		tokens:     tokens,
		log:        zerolog.Nop(),
	}

	for _, opt := range options {
		opt(c)
	}
	c.log = c.log.With().Str("component", "api_client").Logger()

	base := c.httpClient.Transport
	if base == nil {
		base = http.DefaultTransport
	}

	// Fixed, deterministic interceptor order for every request: stamp a
	// request ID, negotiate JSON, attach the bearer credential, then watch
	// the response for session expiry. No per-call opt-out.
	c.httpClient.Transport = ChainInterceptors(base,
		RequestIDInterceptor(c.log),
		AcceptJSONInterceptor(),
		BearerInterceptor(c.tokens),
		UnauthorizedWatcher(c.tokens, c.fireInvalidated, c.log),
	)

	return c, nil
}

// OnSessionInvalidated registers the hook the pipeline notifies after any
// 401 response has cleared the token store. The session owner subscribes
// here; transport never touches navigation itself.
func (c *Client) OnSessionInvalidated(fn func()) {
	c.invalidatedMu.Lock()
	defer c.invalidatedMu.Unlock()
	c.onInvalidated = fn
}

func (c *Client) fireInvalidated() {
	c.invalidatedMu.RLock()
	fn := c.onInvalidated
	c.invalidatedMu.RUnlock()
	if fn != nil {
		fn()
	}
}

// BaseURL returns the resolved backend base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) url(path string) string {
	return c.baseURL + path
}

// do executes req and enforces wantStatus, decoding the error body into an
// *Error on mismatch. On success the JSON body is decoded into out when out
// is non-nil.
func (c *Client) do(req *http.Request, wantStatus int, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		// No HTTP response received: propagate unchanged, no retry.
		return errors.Wrap(err, "[Client.do] "+req.Method+" "+req.URL.Path)
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		return decodeError(resp)
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrap(err, "[Client.do] decode response")
	}
	return nil
}

func (c *Client) postJSON(ctx context.Context, path string, body any, wantStatus int, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return errors.Wrap(err, "[Client.postJSON] Marshal")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url(path), bytes.NewReader(payload))
	if err != nil {
		return errors.Wrap(err, "[Client.postJSON] NewRequest")
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, wantStatus, out)
}

func (c *Client) getJSON(ctx context.Context, path string, wantStatus int, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url(path), nil)
	if err != nil {
		return errors.Wrap(err, "[Client.getJSON] NewRequest")
	}
	return c.do(req, wantStatus, out)
}
