// Package transport provides the authenticated JSON-over-HTTP client used by
// the remote adapters.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"

	"github.com/xbfighting/google-sheet-to-github-issues/pkg/constants"
	"github.com/xbfighting/google-sheet-to-github-issues/pkg/errors"
	"github.com/xbfighting/google-sheet-to-github-issues/pkg/logging"
)

// DefaultHTTPTimeout is the default timeout for HTTP requests.
var DefaultHTTPTimeout = constants.DefaultHTTPTimeout

// maxResponseSize bounds how much of a response body is read.
const maxResponseSize = 50 * 1024 * 1024

// Client provides HTTP client functionality with authentication.
type Client struct {
	http       *http.Client
	auth       Authenticator
	baseURL    string
	service    string
	headers    http.Header
	maxRetries int
	retryBase  time.Duration
	logger     *zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithHeader adds a header sent on every request.
func WithHeader(key, value string) Option {
	return func(c *Client) {
		c.headers.Set(key, value)
	}
}

// WithService names the remote service in returned APIErrors.
func WithService(name string) Option {
	return func(c *Client) {
		c.service = name
	}
}

// WithMaxRetries enables exponential-backoff retries for rate-limited
// responses. Zero disables retries.
func WithMaxRetries(n int) Option {
	return func(c *Client) {
		if n >= 0 {
			c.maxRetries = n
		}
	}
}

// WithRetryInterval sets the initial backoff interval.
func WithRetryInterval(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.retryBase = d
		}
	}
}

// WithLogger sets the logger used for retry diagnostics.
func WithLogger(logger *zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New creates a new transport client rooted at baseURL.
func New(baseURL string, auth Authenticator, opts ...Option) *Client {
	if auth == nil {
		auth = &NoAuth{}
	}
	c := &Client{
		http:       &http.Client{Timeout: DefaultHTTPTimeout},
		auth:       auth,
		baseURL:    strings.TrimRight(baseURL, "/"),
		service:    "remote",
		headers:    http.Header{},
		maxRetries: constants.DefaultMaxRetries,
		retryBase:  constants.RetryBackoff,
		logger:     &logging.Nop,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// URL resolves path against the base URL. Absolute URLs, such as the ones
// found in Link headers, are returned unchanged.
func (c *Client) URL(path string, query url.Values) string {
	u := path
	if !strings.HasPrefix(path, "http://") && !strings.HasPrefix(path, "https://") {
		u = c.baseURL + "/" + strings.TrimLeft(path, "/")
	}
	if len(query) > 0 {
		sep := "?"
		if strings.Contains(u, "?") {
			sep = "&"
		}
		u += sep + query.Encode()
	}
	return u
}

// Do sends a JSON request and decodes a 2xx JSON response into out (when
// out is non-nil). Non-2xx responses are returned as *errors.APIError.
// The response headers are returned for pagination.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body, out any) (http.Header, error) {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, errors.WrapParse("json", "request body", err)
		}
	}
	endpoint := c.URL(path, query)

	var (
		respBody []byte
		headers  http.Header
	)
	op := func() error {
		b, h, err := c.roundTrip(ctx, method, endpoint, payload)
		if err != nil {
			if errors.IsRateLimited(err) && c.maxRetries > 0 {
				return err
			}
			return backoff.Permanent(err)
		}
		respBody, headers = b, h
		return nil
	}

	if err := backoff.RetryNotify(op, c.backoffPolicy(ctx), func(err error, wait time.Duration) {
		logging.FromContextOr(ctx, c.logger).Warn().Err(err).Dur("wait", wait).Str("endpoint", endpoint).Msg("Rate limited, retrying")
	}); err != nil {
		return nil, err
	}

	if out != nil && len(bytes.TrimSpace(respBody)) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return headers, errors.WrapParse("json", "response", err)
		}
	}
	return headers, nil
}

func (c *Client) backoffPolicy(ctx context.Context) backoff.BackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.retryBase
	bo.MaxInterval = constants.MaxRetryBackoff
	bo.MaxElapsedTime = 0
	return backoff.WithContext(backoff.WithMaxRetries(bo, uint64(c.maxRetries)), ctx)
}

func (c *Client) roundTrip(ctx context.Context, method, endpoint string, payload []byte) ([]byte, http.Header, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, nil, errors.WrapResource("create", "request", method+" "+endpoint, err)
	}

	for k, vs := range c.headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json")
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.auth.Apply(req)

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, nil, ctx.Err()
		}
		return nil, nil, &errors.APIError{Service: c.service, Endpoint: endpoint, Message: err.Error(), Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, nil, errors.WrapIO("read", "response body", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, resp.Header, c.apiError(resp, endpoint, body)
	}
	return body, resp.Header, nil
}

// apiError builds an APIError, preferring the JSON "message" field that
// GitHub and Google both return.
func (c *Client) apiError(resp *http.Response, endpoint string, body []byte) error {
	msg := strings.TrimSpace(string(body))
	var envelope struct {
		Message string `json:"message"`
		Error   struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(body, &envelope) == nil {
		switch {
		case envelope.Message != "":
			msg = envelope.Message
		case envelope.Error.Message != "":
			msg = envelope.Error.Message
		}
	}
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	apiErr := errors.NewAPIError(c.service, resp.StatusCode, msg)
	apiErr.Endpoint = endpoint
	apiErr.RateLimited = resp.StatusCode == http.StatusForbidden && resp.Header.Get("X-RateLimit-Remaining") == "0"
	return apiErr
}
