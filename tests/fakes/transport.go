package fakes

import (
	"bytes"
	"io"
	"net/http"
	"sync"
)

// Step is one scripted round trip outcome
type Step func(req *http.Request) (*http.Response, error)

// Fail returns a step failing with err and no response
func Fail(err error) Step {
	return func(*http.Request) (*http.Response, error) {
		return nil, err
	}
}

// Respond returns a step answering with status and body
func Respond(status int, body string) Step {
	return func(req *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: status,
			Status:     http.StatusText(status),
			Header:     http.Header{"Content-Type": []string{"application/json"}},
			Body:       io.NopCloser(bytes.NewBufferString(body)),
			Request:    req,
		}, nil
	}
}

// RespondTruncated returns a step whose body yields partial and then fails
// with io.ErrUnexpectedEOF, as a connection dropped mid-body does.
func RespondTruncated(status int, partial string) Step {
	return func(req *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: status,
			Status:     http.StatusText(status),
			Header:     http.Header{"Content-Type": []string{"application/json"}},
			Body:       io.NopCloser(io.MultiReader(bytes.NewBufferString(partial), failingReader{io.ErrUnexpectedEOF})),
			Request:    req,
		}, nil
	}
}

type failingReader struct{ err error }

func (r failingReader) Read([]byte) (int, error) { return 0, r.err }

// ScriptedTransport is an http.RoundTripper replaying steps in order. The
// last step repeats once the script is exhausted.
type ScriptedTransport struct {
	mu       sync.Mutex
	steps    []Step
	requests []*http.Request
}

// NewScriptedTransport creates a transport replaying steps
func NewScriptedTransport(steps ...Step) *ScriptedTransport {
	return &ScriptedTransport{steps: steps}
}

// RoundTrip implements http.RoundTripper
func (t *ScriptedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	t.mu.Lock()
	idx := len(t.requests)
	t.requests = append(t.requests, req)
	if idx >= len(t.steps) {
		idx = len(t.steps) - 1
	}
	step := t.steps[idx]
	t.mu.Unlock()

	return step(req)
}

// Requests returns every request seen so far
func (t *ScriptedTransport) Requests() []*http.Request {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]*http.Request(nil), t.requests...)
}

// Calls returns the number of round trips
func (t *ScriptedTransport) Calls() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.requests)
}
