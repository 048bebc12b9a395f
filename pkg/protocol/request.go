package protocol

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Request is an outgoing request as a value. Adapters receive a Request and
// return a modified copy; nothing is sent until Build is called.
type Request struct {
	Method  string
	URL     *url.URL
	Header  http.Header
	Body    []byte
	Timeout time.Duration

	// Credential supplies the bearer token. It is opened only by Build, so
	// the token never sits in Header. An explicit Authorization header wins.
	Credential Credential
}

// Credential exposes a secret for the duration of fn. fn must not retain
// the slice.
type Credential interface {
	WithBytes(fn func([]byte) error) error
}

// NewRequest parses rawURL and returns a request with an empty header.
// The URL must be absolute.
func NewRequest(method, rawURL string) (Request, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return Request{}, err
	}
	if !u.IsAbs() || u.Host == "" {
		return Request{}, &url.Error{Op: "parse", URL: rawURL, Err: fmt.Errorf("absolute URL required")}
	}
	return Request{
		Method: method,
		URL:    u,
		Header: make(http.Header),
	}, nil
}

// Clone returns a deep copy of r
func (r Request) Clone() Request {
	out := r
	out.Header = r.Header.Clone()
	if out.Header == nil {
		out.Header = make(http.Header)
	}
	if r.URL != nil {
		u := *r.URL
		out.URL = &u
	}
	if r.Body != nil {
		out.Body = append([]byte(nil), r.Body...)
	}
	return out
}

// Build turns the request into an *http.Request bound to ctx. When a timeout
// is set the returned context carries it; the cancel func must always be
// called.
func (r Request) Build(ctx context.Context) (*http.Request, context.CancelFunc, error) {
	cancel := context.CancelFunc(func() {})
	if r.Timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
	}

	var body *bytes.Reader
	if r.Body != nil {
		body = bytes.NewReader(r.Body)
	}

	var req *http.Request
	var err error
	if body != nil {
		req, err = http.NewRequestWithContext(ctx, r.Method, r.URL.String(), body)
	} else {
		req, err = http.NewRequestWithContext(ctx, r.Method, r.URL.String(), nil)
	}
	if err != nil {
		cancel()
		return nil, nil, err
	}
	req.Header = r.Header.Clone()
	if req.Header == nil {
		req.Header = make(http.Header)
	}
	if r.Credential != nil && HeaderValue(req.Header, HeaderAuthorization) == "" {
		err := r.Credential.WithBytes(func(token []byte) error {
			req.Header[HeaderAuthorization] = []string{BearerScheme + " " + string(token)}
			return nil
		})
		if err != nil {
			cancel()
			return nil, nil, fmt.Errorf("open credential: %w", err)
		}
	}
	return req, cancel, nil
}
