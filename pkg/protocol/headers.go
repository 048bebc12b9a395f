package protocol

import (
	"net/http"
	"strings"
)

// Header names understood by the backend
const (
	HeaderApplicationID      = "Application-id"
	HeaderAuthorization      = "Authorization"
	HeaderChannel            = "Channel"
	HeaderReferenceService   = "Reference-Service"
	HeaderReferenceOperation = "Reference-Operation"
	HeaderDeviceID           = "DeviceId"
	HeaderDomainTracker      = "X-DOMAIN-TRACKER"
	HeaderEncrypt            = "x-main-encrypt"
	HeaderTrackingID         = "Tracking-Id"
	HeaderConnection         = "Connection"
	HeaderOriginAddress      = "Origin-addr"
	HeaderContentType        = "Content-Type"
)

// Fixed header values
const (
	ConnectionClose     = "close"
	EncryptOn           = "on"
	OriginAddressLegacy = "111"
	ContentTypeJSON     = "application/json"
	ContentTypeForm     = "application/x-www-form-urlencoded; charset=utf-8"
)

// BearerScheme prefixes the token in the Authorization header
const BearerScheme = "Bearer"

// SetHeader stores value under name spelled exactly as given. http.Header.Set
// would canonicalize DeviceId to Deviceid; the backend expects the literal
// names above. Any other spelling of name is removed first.
func SetHeader(h http.Header, name, value string) {
	DelHeader(h, name)
	h[name] = []string{value}
}

// DelHeader removes name in every spelling
func DelHeader(h http.Header, name string) {
	for k := range h {
		if strings.EqualFold(k, name) {
			delete(h, k)
		}
	}
}

// HeaderValue returns the first value of name, matching it case-insensitively
func HeaderValue(h http.Header, name string) string {
	if v := h[name]; len(v) > 0 {
		return v[0]
	}
	for k, v := range h {
		if strings.EqualFold(k, name) && len(v) > 0 {
			return v[0]
		}
	}
	return ""
}
