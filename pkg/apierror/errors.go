package apierror

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Kind classifies a failed request
type Kind string

const (
	InvalidURL        Kind = "invalid url"
	ParameterEncoding Kind = "parameter encoding failed"
	Decode            Kind = "response decoding failed"
	NoToken           Kind = "no token"
	NoConnectivity    Kind = "no connectivity"
	Timeout           Kind = "request timed out"
	Cancelled         Kind = "request cancelled"
	Backend           Kind = "backend error"
	BackendRaw        Kind = "backend error (raw body)"
	Unknown           Kind = "unknown error"
)

// Error is the translated form of every request failure
type Error struct {
	Kind       Kind
	StatusCode int
	Backend    *BackendError
	Body       []byte
	Err        error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Kind))
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, " (status %d)", e.StatusCode)
	}
	if e.Backend != nil {
		if e.Backend.Title != "" {
			fmt.Fprintf(&b, ": %s: %s", e.Backend.Title, e.Backend.Body)
		} else {
			fmt.Fprintf(&b, ": %s", e.Backend.Body)
		}
	} else if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ValidationError reports a response whose status is outside the accepted set
type ValidationError struct {
	StatusCode int
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("response status code %d was unacceptable", e.StatusCode)
}

// EncodingError reports parameters that could not be encoded into a request
type EncodingError struct {
	Err error
}

func (e *EncodingError) Error() string {
	return "parameter encoding: " + e.Err.Error()
}

func (e *EncodingError) Unwrap() error {
	return e.Err
}

// DecodeError reports a response body that could not be decoded into the
// caller's type.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return "decode response: " + e.Err.Error()
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// ErrNoToken is returned when an authenticated call finds no stored token
var ErrNoToken = &PlatformError{Code: CodeNoToken, Err: errors.New("no token stored")}

// Translate converts err into an *Error. body is the raw response body, if
// any. It never returns nil.
func Translate(err error, body []byte) *Error {
	if err == nil {
		return &Error{Kind: Unknown, StatusCode: CodeUnknown, Body: body}
	}

	var already *Error
	if errors.As(err, &already) {
		return already
	}

	var verr *ValidationError
	if errors.As(err, &verr) {
		backend, derr := DecodeBackendError(body)
		if derr != nil {
			return &Error{Kind: BackendRaw, StatusCode: verr.StatusCode, Body: body, Err: err}
		}
		return &Error{Kind: Backend, StatusCode: verr.StatusCode, Backend: backend, Body: body, Err: err}
	}

	var eerr *EncodingError
	if errors.As(err, &eerr) {
		return &Error{Kind: ParameterEncoding, Err: err}
	}

	var derr *DecodeError
	if errors.As(err, &derr) {
		return &Error{Kind: Decode, Body: body, Err: err}
	}

	var uerr *url.Error
	if errors.As(err, &uerr) && uerr.Op == "parse" {
		return &Error{Kind: InvalidURL, StatusCode: CodeInvalidURL, Err: err}
	}

	switch code := CodeOf(err); code {
	case CodeOffline:
		return &Error{Kind: NoConnectivity, StatusCode: CodeNoInternet, Err: err}
	case CodeTimedOut, CodeStreamTimedOut:
		return &Error{Kind: Timeout, StatusCode: code, Err: err}
	case CodeCancelled:
		return &Error{Kind: Cancelled, StatusCode: code, Err: err}
	case CodeInvalidURL:
		return &Error{Kind: InvalidURL, StatusCode: code, Err: err}
	case CodeNoToken:
		return &Error{Kind: NoToken, StatusCode: code, Err: err}
	}

	return &Error{Kind: Unknown, StatusCode: CodeUnknown, Body: body, Err: err}
}

// IsRetryable reports whether err is a lost connection, the only failure
// that is resubmitted.
func IsRetryable(err error) bool {
	return CodeOf(err) == CodeConnectionLost
}

// Is reports whether err translates to kind
func Is(err error, kind Kind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == kind
}
