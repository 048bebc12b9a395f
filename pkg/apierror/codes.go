package apierror

import (
	"context"
	"errors"
	"io"
	"net"
	"net/url"
	"strconv"
	"syscall"
)

// Platform error codes. Negative values follow the URL loading system codes
// the backend contract was written against.
const (
	CodeConnectionLost  = -1005
	CodeOffline         = -1009
	CodeTimedOut        = -1001
	CodeStreamTimedOut  = -72007
	CodeCancelled       = -999
	CodeInvalidURL      = -1010
	CodeNoInternet      = -1011
	CodeNoToken         = -1012
	CodeUnknown         = -1
	CodeTooManyRequests = 429
)

// PlatformError carries an explicit platform code
type PlatformError struct {
	Code int
	Err  error
}

func (e *PlatformError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return "platform error " + strconv.Itoa(e.Code)
}

func (e *PlatformError) Unwrap() error {
	return e.Err
}

// PlatformCode returns the code
func (e *PlatformError) PlatformCode() int {
	return e.Code
}

type coded interface {
	PlatformCode() int
}

// CodeOf maps an error from the HTTP transport onto a platform code.
// It returns 0 for nil and CodeUnknown for anything unrecognised.
func CodeOf(err error) int {
	if err == nil {
		return 0
	}

	var c coded
	if errors.As(err, &c) {
		return c.PlatformCode()
	}

	if errors.Is(err, context.Canceled) {
		return CodeCancelled
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return CodeTimedOut
	}

	var uerr *url.Error
	if errors.As(err, &uerr) && uerr.Op == "parse" {
		return CodeInvalidURL
	}

	switch {
	case errors.Is(err, syscall.ECONNRESET),
		errors.Is(err, syscall.EPIPE),
		errors.Is(err, syscall.ECONNABORTED),
		errors.Is(err, io.ErrUnexpectedEOF),
		errors.Is(err, io.EOF):
		return CodeConnectionLost
	case errors.Is(err, syscall.ECONNREFUSED),
		errors.Is(err, syscall.ENETUNREACH),
		errors.Is(err, syscall.EHOSTUNREACH):
		return CodeOffline
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		if dnsErr.IsTimeout {
			return CodeTimedOut
		}
		return CodeOffline
	}

	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		return CodeTimedOut
	}

	return CodeUnknown
}
