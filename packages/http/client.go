package http

import (
	"bytes"
	"context"
	"crypto/tls"
	"io"
	"log/slog"
	"net/http"
	neturl "net/url"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/abdul-hamid-achik/hitcore/packages/reqerr"
)

const (
	// DefaultTimeout is the default HTTP request timeout
	DefaultTimeout = 30 * time.Second
	// DefaultMaxRedirects is the maximum number of redirects to follow
	DefaultMaxRedirects = 10
	// DefaultMaxIdleConns is the maximum number of idle connections in the pool
	DefaultMaxIdleConns = 100
	// DefaultMaxIdleConnsPerHost is the maximum number of idle connections per host
	DefaultMaxIdleConnsPerHost = 10
	// DefaultIdleConnTimeout is how long idle connections stay in the pool
	DefaultIdleConnTimeout = 90 * time.Second
)

// Transport sends a built Request. Any failure to obtain a response is a
// *reqerr.Error of Kind Connection.
type Transport interface {
	RoundTrip(ctx context.Context, req *Request) (*Response, error)
}

type Client struct {
	httpClient      *http.Client
	timeout         time.Duration
	followRedirect  bool
	maxRedirects    int
	validateSSL     bool
	proxyURL        string
	defaultHeaders  *Headers
	rateLimit       float64
	rateBurst       int
	requestIDHeader string
	logger          *slog.Logger
}

var _ Transport = (*Client)(nil)

type ClientOption func(*Client)

func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		timeout:        DefaultTimeout,
		followRedirect: true,
		maxRedirects:   DefaultMaxRedirects,
		validateSSL:    true,
		defaultHeaders: NewHeaders(),
		logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient == nil {
		c.httpClient = c.newHTTPClient()
	}

	if c.rateLimit > 0 {
		hc := *c.httpClient
		next := hc.Transport
		if next == nil {
			next = http.DefaultTransport
		}
		hc.Transport = newThrottle(c.rateLimit, c.rateBurst, c.logger, next)
		c.httpClient = &hc
	}

	return c
}

func (c *Client) newHTTPClient() *http.Client {
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		ForceAttemptHTTP2:   true,
		MaxIdleConns:        DefaultMaxIdleConns,
		MaxIdleConnsPerHost: DefaultMaxIdleConnsPerHost,
		IdleConnTimeout:     DefaultIdleConnTimeout,
	}

	// Configure TLS verification
	if !c.validateSSL {
		transport.TLSClientConfig = &tls.Config{
			InsecureSkipVerify: true,
		}
	}

	// Configure proxy if specified
	if c.proxyURL != "" {
		proxyURL, err := neturl.Parse(c.proxyURL)
		if err == nil {
			transport.Proxy = http.ProxyURL(proxyURL)
		} else {
			c.logger.Warn("ignoring invalid proxy url", "proxy", c.proxyURL, "error", err)
		}
	}

	redirectPolicy := func(req *http.Request, via []*http.Request) error {
		if !c.followRedirect {
			return http.ErrUseLastResponse
		}
		if len(via) >= c.maxRedirects {
			return http.ErrUseLastResponse
		}
		return nil
	}

	return &http.Client{
		Transport:     transport,
		Timeout:       c.timeout,
		CheckRedirect: redirectPolicy,
	}
}

func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = d
	}
}

func WithFollowRedirects(follow bool) ClientOption {
	return func(c *Client) {
		c.followRedirect = follow
	}
}

func WithMaxRedirects(max int) ClientOption {
	return func(c *Client) {
		c.maxRedirects = max
	}
}

func WithDefaultHeader(key, value string) ClientOption {
	return func(c *Client) {
		c.defaultHeaders.Set(key, value)
	}
}

// WithDefaultHeaders sets multiple default headers for all requests
func WithDefaultHeaders(headers map[string]string) ClientOption {
	return func(c *Client) {
		HeadersFromMap(headers).Each(func(name, value string) {
			c.defaultHeaders.Set(name, value)
		})
	}
}

// WithValidateSSL enables or disables SSL certificate validation
func WithValidateSSL(validate bool) ClientOption {
	return func(c *Client) {
		c.validateSSL = validate
	}
}

// WithProxy sets the proxy URL for all requests
func WithProxy(proxyURL string) ClientOption {
	return func(c *Client) {
		c.proxyURL = proxyURL
	}
}

// WithRateLimit caps outbound requests at rps per second with the given
// burst. A non-positive rps disables limiting.
func WithRateLimit(rps float64, burst int) ClientOption {
	return func(c *Client) {
		c.rateLimit = rps
		c.rateBurst = burst
	}
}

// WithRequestID stamps every request that lacks the named header with a
// random UUID, and records it on the Response.
func WithRequestID(header string) ClientOption {
	return func(c *Client) {
		c.requestIDHeader = header
	}
}

// WithLogger sets the logger for request tracing at debug level.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithHTTPClient sends through hc instead of a client built from the other
// options. Timeout, redirect, proxy and TLS options are then ignored.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// RoundTrip implements Transport.
func (c *Client) RoundTrip(ctx context.Context, req *Request) (*Response, error) {
	return c.Do(ctx, req)
}

// Do sends req once. Transport failures come back as a Connection error; a
// response that breaks the request's Expectation comes back as an
// InvalidResponse build error. Nothing is retried.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	if req == nil {
		return nil, reqerr.New("nil request")
	}

	httpReq, requestID, err := c.toHTTP(ctx, req)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("sending request",
		"method", req.Method(),
		"url", req.URL().String(),
		"version", req.Version().String(),
		"request_id", requestID,
	)

	start := time.Now()
	httpResp, err := c.httpClient.Do(httpReq)
	duration := time.Since(start)

	if err != nil {
		c.logger.Debug("request failed", "url", req.URL().String(), "error", err)
		return nil, reqerr.Wrap(req.Method(), req.URL().HostPort(), err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, reqerr.Wrap("read body", req.URL().HostPort(), err)
	}

	resp := &Response{
		StatusCode: httpResp.StatusCode,
		Status:     httpResp.Status,
		Proto:      httpResp.Proto,
		Headers:    fromHTTPHeader(httpResp.Header),
		Body:       respBody,
		Duration:   duration,
		RequestID:  requestID,
	}
	c.logger.Debug("received response",
		"status", resp.StatusCode,
		"bytes", len(respBody),
		"duration", duration.String(),
		"request_id", requestID,
	)

	if err := checkExpectation(req, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) toHTTP(ctx context.Context, req *Request) (*http.Request, string, error) {
	var body io.Reader
	if req.HasBody() {
		body = bytes.NewReader(req.body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method(), req.URL().String(), body)
	if err != nil {
		return nil, "", reqerr.Newf("prepare request: %w", err)
	}

	c.defaultHeaders.Each(func(name, value string) {
		httpReq.Header.Set(name, value)
	})
	explicit := make(map[string]bool)
	req.headers.Each(func(name, value string) {
		key := http.CanonicalHeaderKey(name)
		switch key {
		case "Host":
			httpReq.Host = value
			return
		case "Content-Length":
			return
		case "Transfer-Encoding":
			httpReq.TransferEncoding = []string{value}
			httpReq.ContentLength = -1
			return
		}
		if !explicit[key] {
			httpReq.Header.Del(key)
			explicit[key] = true
		}
		httpReq.Header.Add(key, value)
	})

	var requestID string
	if c.requestIDHeader != "" {
		requestID = req.Header(c.requestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
			httpReq.Header.Set(c.requestIDHeader, requestID)
		}
	}
	return httpReq, requestID, nil
}

func fromHTTPHeader(h http.Header) *Headers {
	names := make([]string, 0, len(h))
	for k := range h {
		names = append(names, k)
	}
	sort.Strings(names)

	out := NewHeaders()
	for _, name := range names {
		for _, v := range h[name] {
			out.Add(name, v)
		}
	}
	return out
}

func checkExpectation(req *Request, resp *Response) error {
	if !req.expect.Allows(resp.StatusCode) {
		return reqerr.Buildf(reqerr.InvalidResponse, "status %d is not one of %v", resp.StatusCode, req.expect.Status)
	}
	if req.schema != nil {
		if err := req.schema.Validate(resp.Body); err != nil {
			return reqerr.Build(reqerr.InvalidResponse, err.Error())
		}
	}
	return nil
}

// Get builds and sends a GET request.
func (c *Client) Get(ctx context.Context, url string, headers map[string]string) (*Response, error) {
	return c.send(ctx, "GET", url, "", headers)
}

func (c *Client) Post(ctx context.Context, url, body string, headers map[string]string) (*Response, error) {
	return c.send(ctx, "POST", url, body, headers)
}

func (c *Client) Put(ctx context.Context, url, body string, headers map[string]string) (*Response, error) {
	return c.send(ctx, "PUT", url, body, headers)
}

func (c *Client) Patch(ctx context.Context, url, body string, headers map[string]string) (*Response, error) {
	return c.send(ctx, "PATCH", url, body, headers)
}

func (c *Client) Delete(ctx context.Context, url string, headers map[string]string) (*Response, error) {
	return c.send(ctx, "DELETE", url, "", headers)
}

func (c *Client) send(ctx context.Context, method, url, body string, headers map[string]string) (*Response, error) {
	req, err := NewBuilder(method, url).
		Headers(HeadersFromMap(headers)).
		BodyString(body).
		Build()
	if err != nil {
		return nil, err
	}
	return c.Do(ctx, req)
}
