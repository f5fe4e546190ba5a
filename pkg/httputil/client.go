package httputil

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/zf1976/pancli/pkg/logging"
)

const (
	DefaultKeepAlive = 30 * time.Second

	contentTypeForm = "application/x-www-form-urlencoded"
	contentTypeJSON = "application/json"
)

var (
	ErrRequest  = errors.New("request failed")
	ErrReadBody = errors.New("read response body")
	ErrDecode   = errors.New("decode response body")
)

// ClientConfig holds the transport settings shared by every request a Client issues.
type ClientConfig struct {
	// ConnectTimeout bounds connection establishment (dial + TLS handshake).
	ConnectTimeout time.Duration
	// Timeout bounds a whole request, including reading the response body.
	Timeout time.Duration
	// UserAgent, when set, is sent on every request.
	UserAgent           string
	MaxIdleConnsPerHost int
}

// Client issues requests to the login provider.  It never retries on its own: the only retry
// policy in a login is the scan status poller's.
type Client struct {
	client    *retryablehttp.Client
	userAgent string
}

func NewClient(cfg ClientConfig) *Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DialContext = (&net.Dialer{
		Timeout:   cfg.ConnectTimeout,
		KeepAlive: DefaultKeepAlive,
	}).DialContext
	transport.TLSHandshakeTimeout = cfg.ConnectTimeout
	if cfg.MaxIdleConnsPerHost > 0 {
		transport.MaxIdleConnsPerHost = cfg.MaxIdleConnsPerHost
	}

	retryClient := retryablehttp.NewClient()
	retryClient.HTTPClient = &http.Client{
		Transport: transport,
		Timeout:   cfg.Timeout,
	}
	retryClient.Logger = nil
	retryClient.RetryMax = 0
	retryClient.CheckRetry = neverRetry
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler
	retryClient.RequestLogHook = logRequest
	retryClient.ResponseLogHook = logResponse
	return &Client{
		client:    retryClient,
		userAgent: cfg.UserAgent,
	}
}

// neverRetry keeps the transport single-shot while still surfacing context errors.
func neverRetry(ctx context.Context, _ *http.Response, _ error) (bool, error) {
	return false, ctx.Err()
}

func logRequest(_ retryablehttp.Logger, req *http.Request, _ int) {
	logging.FromContext(req.Context()).
		WithFields(logging.Fields{
			logging.MethodFieldKey: req.Method,
			logging.URLFieldKey:    req.URL.Redacted(),
		}).
		Trace("sending request")
}

func logResponse(_ retryablehttp.Logger, resp *http.Response) {
	logging.FromContext(resp.Request.Context()).
		WithField(logging.StatusCodeFieldKey, resp.StatusCode).
		Trace("received response")
}

type requestOptions struct {
	header  http.Header
	cookies []*http.Cookie
}

type RequestOption func(*requestOptions)

// WithCookie attaches a cookie to the request.
func WithCookie(name, value string) RequestOption {
	return func(o *requestOptions) {
		o.cookies = append(o.cookies, &http.Cookie{Name: name, Value: value})
	}
}

func WithHeader(key, value string) RequestOption {
	return func(o *requestOptions) {
		o.header.Set(key, value)
	}
}

// Response is a fully read provider response.  The body is kept so callers can attach it to
// errors.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	cookies    []*http.Cookie
}

func (r *Response) IsSuccess() bool {
	return r.StatusCode >= http.StatusOK && r.StatusCode < http.StatusMultipleChoices
}

// Cookie returns the value of the named cookie set by the response.
func (r *Response) Cookie(name string) (string, bool) {
	for _, c := range r.cookies {
		if c.Name == name {
			return c.Value, true
		}
	}
	return "", false
}

func (r *Response) Text() string {
	return string(r.Body)
}

func (r *Response) DecodeJSON(v interface{}) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return nil
}

// Get issues a GET.  endpoint names the provider endpoint for logs and metrics.
func (c *Client) Get(ctx context.Context, endpoint, rawURL string, opts ...RequestOption) (*Response, error) {
	return c.do(ctx, endpoint, http.MethodGet, rawURL, "", nil, opts)
}

// PostForm issues a form-encoded POST.
func (c *Client) PostForm(ctx context.Context, endpoint, rawURL string, form url.Values, opts ...RequestOption) (*Response, error) {
	return c.do(ctx, endpoint, http.MethodPost, rawURL, contentTypeForm, []byte(form.Encode()), opts)
}

// PostJSON issues a POST with body encoded as JSON.
func (c *Client) PostJSON(ctx context.Context, endpoint, rawURL string, body interface{}, opts ...RequestOption) (*Response, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("%s: encode request: %w", endpoint, err)
	}
	return c.do(ctx, endpoint, http.MethodPost, rawURL, contentTypeJSON, data, opts)
}

func (c *Client) do(ctx context.Context, endpoint, method, rawURL, contentType string, body []byte, opts []RequestOption) (*Response, error) {
	o := &requestOptions{header: http.Header{}}
	for _, opt := range opts {
		opt(o)
	}

	ctx = logging.AddFields(ctx, logging.Fields{logging.EndpointFieldKey: endpoint})
	ctx = SetClientTrace(ctx, endpoint)

	var reqBody interface{}
	if body != nil {
		reqBody = bytes.NewReader(body)
	}
	req, err := retryablehttp.NewRequestWithContext(ctx, method, rawURL, reqBody)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", endpoint, ErrRequest, err)
	}
	for k, v := range o.header {
		req.Header[k] = v
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	for _, cookie := range o.cookies {
		req.AddCookie(cookie)
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	requestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	if err != nil {
		if resp != nil {
			_ = resp.Body.Close()
		}
		requestsTotal.WithLabelValues(endpoint, "error").Inc()
		return nil, fmt.Errorf("%s %s: %w: %w", method, endpoint, ErrRequest, err)
	}
	defer func() { _ = resp.Body.Close() }()
	requestsTotal.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Inc()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w: %w", method, endpoint, ErrReadBody, err)
	}
	logging.FromContext(ctx).
		WithFields(logging.Fields{
			logging.StatusCodeFieldKey: resp.StatusCode,
			logging.TookFieldKey:       time.Since(start),
		}).
		Debug(strings.ToLower(method) + " " + endpoint)
	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       data,
		cookies:    resp.Cookies(),
	}, nil
}
