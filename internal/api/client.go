package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/systmms/commonspack/internal/config"
	"github.com/systmms/commonspack/internal/featureflags"
	"github.com/systmms/commonspack/internal/logging"
	"github.com/systmms/commonspack/internal/secure"
	"github.com/systmms/commonspack/internal/storage"
	"github.com/systmms/commonspack/pkg/apierror"
	"github.com/systmms/commonspack/pkg/protocol"
)

// maxRetries is the number of resubmissions after a lost connection
const maxRetries = 1

// Options configures a Client
type Options struct {
	Reader  *config.Reader
	Storage *storage.Storage
	Flags   *featureflags.Store
	Logger  *logging.Logger

	// HTTPClient is shared by every request. When nil a client is built
	// around Transport.
	HTTPClient *http.Client
	Transport  http.RoundTripper

	// Executor runs async completions. Defaults to Inline.
	Executor Executor

	// Metrics enables the Prometheus request metrics
	Metrics bool

	// ProxyFunc reports the proxy used for a request. Defaults to
	// http.ProxyFromEnvironment.
	ProxyFunc func(*http.Request) (*url.URL, error)
}

// Call describes one request
type Call struct {
	Method   string
	URL      string
	Params   map[string]interface{}
	Encoding Encoding

	// Headers override the base headers
	Headers map[string]string

	// ValidStatus reports whether a status code counts as success.
	// Defaults to [200, 399).
	ValidStatus func(code int) bool

	Encrypted bool

	// NoAuth leaves out the Authorization header
	NoAuth bool

	// RequireToken fails the call with apierror.NoToken, without sending
	// it, when no token is stored.
	RequireToken bool

	Adapters protocol.AdapterSet
}

func (c Call) method() string {
	if c.Method == "" {
		return http.MethodGet
	}
	return strings.ToUpper(c.Method)
}

func (c Call) valid(code int) bool {
	if c.ValidStatus != nil {
		return c.ValidStatus(code)
	}
	return DefaultValidStatus(code)
}

// DefaultValidStatus accepts [200, 399)
func DefaultValidStatus(code int) bool {
	return code >= 200 && code < 399
}

// Response is a received response with its body fully read
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte

	// Request is the request as sent, after adapters
	Request protocol.Request

	// Attempts counts submissions, retries included
	Attempts int
}

// Client submits authenticated requests
type Client struct {
	reader   *config.Reader
	storage  *storage.Storage
	flags    *featureflags.Store
	logger   *logging.Logger
	http     *http.Client
	exec     Executor
	metrics  *RequestMetrics
	proxy    func(*http.Request) (*url.URL, error)
	inflight *inflight

	deviceMu sync.Mutex
	deviceID string
}

// New creates a client. Missing options get defaults: an empty reader, no
// storage (no token, device id kept in memory), a discarding logger and
// inline completions.
func New(opts Options) *Client {
	c := &Client{
		reader:   opts.Reader,
		storage:  opts.Storage,
		flags:    opts.Flags,
		logger:   opts.Logger,
		http:     opts.HTTPClient,
		exec:     opts.Executor,
		proxy:    opts.ProxyFunc,
		inflight: newInflight(),
	}
	if c.reader == nil {
		c.reader = &config.Reader{}
	}
	if c.flags == nil {
		c.flags = featureflags.NewStore()
	}
	if c.logger == nil {
		c.logger = logging.Discard()
	}
	if c.http == nil {
		c.http = &http.Client{Transport: opts.Transport}
	}
	if c.exec == nil {
		c.exec = Inline{}
	}
	if c.proxy == nil {
		c.proxy = http.ProxyFromEnvironment
	}
	if opts.Metrics {
		c.metrics = NewRequestMetrics()
	}
	return c
}

// Flags returns the feature flag store the client was built with
func (c *Client) Flags() *featureflags.Store {
	return c.flags
}

// Scheme returns the active build scheme
func (c *Client) Scheme() featureflags.Scheme {
	name := c.reader.SchemeName()
	if s, ok := featureflags.ParseScheme(name); ok {
		return s
	}
	return featureflags.Scheme(name)
}

// Do runs the request pipeline for call. When the response status is not
// accepted, or the body is cut short, both the response and the translated
// error are returned.
func (c *Client) Do(ctx context.Context, call Call) (*Response, error) {
	start := time.Now()
	method := call.method()

	resp, err := c.do(ctx, call)
	if err != nil {
		translated := apierror.Translate(err, nil)
		c.metrics.RecordFailure(string(translated.Kind))
		c.metrics.RecordRequest(method, "failure", time.Since(start).Seconds())
		return resp, translated
	}
	c.metrics.RecordRequest(method, "success", time.Since(start).Seconds())
	return resp, nil
}

func (c *Client) do(ctx context.Context, call Call) (*Response, error) {
	ctx, done := c.inflight.track(ctx)
	defer done()

	req, cred, err := c.prepare(call)
	if err != nil {
		return nil, err
	}
	if cred != nil {
		defer cred.Destroy()
	}
	target := req.URL.Redacted()

	for attempt := 0; ; attempt++ {
		c.logger.Debug("%s %s (attempt %d)", req.Method, target, attempt+1)

		httpResp, body, err := c.submit(ctx, req)
		if err != nil && httpResp == nil {
			if apierror.IsRetryable(err) && attempt < maxRetries {
				c.logger.Debug("connection lost on %s %s, resubmitting", req.Method, target)
				c.metrics.RecordRetry()
				continue
			}
			if apierror.CodeOf(err) == apierror.CodeOffline {
				c.logger.Warn("no connectivity for %s %s", req.Method, target)
			}
			return nil, err
		}

		settled := req
		settled.Credential = nil
		resp := &Response{
			StatusCode: httpResp.StatusCode,
			Header:     httpResp.Header,
			Body:       body,
			Request:    settled,
			Attempts:   attempt + 1,
		}
		if err != nil {
			// the backend answered; never resubmit
			c.logger.Warn("%s %s: response body cut short after %d bytes", req.Method, target, len(body))
			return resp, &apierror.Error{Kind: apierror.Unknown, StatusCode: httpResp.StatusCode, Body: body, Err: err}
		}
		if !call.valid(httpResp.StatusCode) {
			c.logger.Debug("%s %s answered %d", req.Method, target, httpResp.StatusCode)
			return resp, apierror.Translate(&apierror.ValidationError{StatusCode: httpResp.StatusCode}, body)
		}
		return resp, nil
	}
}

// prepare builds the request value for call: URL, parameters, encryption,
// headers and adapters, in that order. The returned credential holds the
// stored token, if any, and must be destroyed once the request is done.
func (c *Client) prepare(call Call) (protocol.Request, *secure.SecureBuffer, error) {
	method := call.method()

	req, err := protocol.NewRequest(method, c.resolveURL(call.URL))
	if err != nil {
		return protocol.Request{}, nil, err
	}
	req.Timeout = c.reader.Api().Timeout()

	if err := encodeParams(&req, call.Params, call.Encoding); err != nil {
		return protocol.Request{}, nil, err
	}

	encrypted, adapters := c.resolveEncryption(call.Encrypted, call.Adapters, req.URL)
	adapters = adapters.WithConnection()

	var cred *secure.SecureBuffer
	if !call.NoAuth {
		cred, _ = c.token()
	}
	if call.RequireToken && !call.NoAuth && cred == nil {
		return protocol.Request{}, nil, apierror.ErrNoToken
	}

	base := c.Headers(false)
	if encrypted || adapters.Contains(protocol.KindEncrypted) {
		base[protocol.HeaderEncrypt] = protocol.EncryptOn
	}
	for k, v := range base {
		if protocol.HeaderValue(req.Header, k) == "" {
			protocol.SetHeader(req.Header, k, v)
		}
	}
	for k, v := range call.Headers {
		protocol.SetHeader(req.Header, k, v)
	}
	if cred != nil {
		req.Credential = cred
	}

	return adapters.Apply(req, c.environment(adapters)), cred, nil
}

// resolveURL joins relative paths to Api.BaseURL + Api.BasePath
func (c *Client) resolveURL(raw string) string {
	if u, err := url.Parse(raw); err == nil && u.IsAbs() {
		return raw
	}
	api := c.reader.Api()
	base := strings.TrimSuffix(api.BaseURL()+api.BasePath(), "/")
	if raw == "" {
		return base
	}
	return base + "/" + strings.TrimPrefix(raw, "/")
}

func (c *Client) environment(adapters protocol.AdapterSet) protocol.Environment {
	env := protocol.Environment{ChannelID: c.channelID()}
	if adapters.Contains(protocol.KindDeviceID) || adapters.Contains(protocol.KindTrackingID) {
		env.DeviceID = c.DeviceID()
	}
	return env
}

// submit sends r once. A failure after the status line arrived returns the
// response with whatever body was read.
func (c *Client) submit(ctx context.Context, r protocol.Request) (*http.Response, []byte, error) {
	req, cancel, err := r.Build(ctx)
	if err != nil {
		return nil, nil, err
	}
	defer cancel()

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp, body, fmt.Errorf("read response body: %w", err)
	}
	return resp, body, nil
}

// CancelAll cancels every in-flight request, sync or async. It returns the
// number of requests cancelled.
func (c *Client) CancelAll() int {
	n := c.inflight.cancelAll()
	if n > 0 {
		c.logger.Debug("cancelled %d in-flight requests", n)
	}
	return n
}

// InFlight returns the number of requests currently tracked
func (c *Client) InFlight() int {
	return c.inflight.len()
}
