package protocol

import (
	"fmt"
	"time"
)

// Kind identifies an adapter variant. An AdapterSet holds at most one
// adapter per kind.
type Kind string

// Adapter kinds
const (
	KindEncrypted          Kind = "encrypted"
	KindTimeout            Kind = "timeout"
	KindWithoutToken       Kind = "without-token"
	KindDeviceID           Kind = "device-id"
	KindChannel            Kind = "channel"
	KindDomain             Kind = "domain"
	KindConnection         Kind = "connection"
	KindContentType        Kind = "content-type"
	KindTrackingID         Kind = "tracking-id"
	KindOriginAddress      Kind = "origin-address"
	KindReferenceOperation Kind = "reference-operation"
)

// Environment carries the values adapters copy into headers
type Environment struct {
	ChannelID string
	DeviceID  string
}

// Adapter is a stateless request mutation. Build one with the constructors
// below; the zero value is not a valid adapter.
type Adapter struct {
	kind    Kind
	value   string
	timeout time.Duration
}

// Encrypted marks the request body as encrypted
func Encrypted() Adapter { return Adapter{kind: KindEncrypted} }

// Timeout overrides the request timeout
func Timeout(d time.Duration) Adapter { return Adapter{kind: KindTimeout, timeout: d} }

// WithoutToken strips the Authorization header
func WithoutToken() Adapter { return Adapter{kind: KindWithoutToken} }

// DeviceID sets DeviceId and Tracking-Id to the device id
func DeviceID() Adapter { return Adapter{kind: KindDeviceID} }

// Channel sets the Channel header to the configured channel id
func Channel() Adapter { return Adapter{kind: KindChannel} }

// Domain sets Channel and X-DOMAIN-TRACKER
func Domain(name string) Adapter { return Adapter{kind: KindDomain, value: name} }

// Connection sets Connection: close
func Connection() Adapter { return Adapter{kind: KindConnection} }

// ContentType sets Content-Type
func ContentType(t string) Adapter { return Adapter{kind: KindContentType, value: t} }

// TrackingID sets Tracking-Id to the device id
func TrackingID() Adapter { return Adapter{kind: KindTrackingID} }

// OriginAddress sets the legacy Origin-addr header
func OriginAddress() Adapter { return Adapter{kind: KindOriginAddress} }

// ReferenceOperation sets Reference-Operation
func ReferenceOperation(op string) Adapter {
	return Adapter{kind: KindReferenceOperation, value: op}
}

// Kind returns the adapter variant
func (a Adapter) Kind() Kind {
	return a.kind
}

// Adapt returns a copy of r with this adapter applied
func (a Adapter) Adapt(r Request, env Environment) Request {
	out := r.Clone()

	switch a.kind {
	case KindTimeout:
		out.Timeout = a.timeout
	case KindWithoutToken:
		DelHeader(out.Header, HeaderAuthorization)
		out.Credential = nil
	case KindDeviceID:
		SetHeader(out.Header, HeaderDeviceID, env.DeviceID)
		SetHeader(out.Header, HeaderTrackingID, env.DeviceID)
	case KindChannel:
		SetHeader(out.Header, HeaderChannel, env.ChannelID)
	case KindDomain:
		SetHeader(out.Header, HeaderChannel, env.ChannelID)
		SetHeader(out.Header, HeaderDomainTracker, a.value)
	case KindEncrypted:
		SetHeader(out.Header, HeaderEncrypt, EncryptOn)
	case KindConnection:
		SetHeader(out.Header, HeaderConnection, ConnectionClose)
	case KindTrackingID:
		SetHeader(out.Header, HeaderTrackingID, env.DeviceID)
	case KindOriginAddress:
		SetHeader(out.Header, HeaderOriginAddress, OriginAddressLegacy)
	case KindReferenceOperation:
		SetHeader(out.Header, HeaderReferenceOperation, a.value)
	case KindContentType:
		SetHeader(out.Header, HeaderContentType, a.value)
	}

	return out
}

// String renders the adapter the way ParseAdapter reads it
func (a Adapter) String() string {
	switch a.kind {
	case KindTimeout:
		return fmt.Sprintf("%s=%s", a.kind, a.timeout)
	case KindDomain, KindContentType, KindReferenceOperation:
		return fmt.Sprintf("%s=%s", a.kind, a.value)
	}
	return string(a.kind)
}

// AdapterSet is an ordered set of adapters, unique by kind. It is a value;
// every method returns a new set.
type AdapterSet struct {
	adapters []Adapter
}

// NewAdapterSet builds a set from adapters. A later adapter replaces an
// earlier one of the same kind, keeping the earlier position.
func NewAdapterSet(adapters ...Adapter) AdapterSet {
	var s AdapterSet
	for _, a := range adapters {
		s = s.With(a)
	}
	return s
}

// With returns a set containing a
func (s AdapterSet) With(a Adapter) AdapterSet {
	out := make([]Adapter, 0, len(s.adapters)+1)
	replaced := false
	for _, existing := range s.adapters {
		if existing.kind == a.kind {
			out = append(out, a)
			replaced = true
			continue
		}
		out = append(out, existing)
	}
	if !replaced {
		out = append(out, a)
	}
	return AdapterSet{adapters: out}
}

// Without returns a set with no adapter of kind k
func (s AdapterSet) Without(k Kind) AdapterSet {
	out := make([]Adapter, 0, len(s.adapters))
	for _, a := range s.adapters {
		if a.kind != k {
			out = append(out, a)
		}
	}
	return AdapterSet{adapters: out}
}

// Contains reports whether an adapter of kind k is present
func (s AdapterSet) Contains(k Kind) bool {
	for _, a := range s.adapters {
		if a.kind == k {
			return true
		}
	}
	return false
}

// WithConnection appends the Connection adapter when it is absent
func (s AdapterSet) WithConnection() AdapterSet {
	if s.Contains(KindConnection) {
		return s
	}
	return s.With(Connection())
}

// Kinds returns the kinds in application order
func (s AdapterSet) Kinds() []Kind {
	kinds := make([]Kind, len(s.adapters))
	for i, a := range s.adapters {
		kinds[i] = a.kind
	}
	return kinds
}

// Adapters returns a copy of the adapters in application order
func (s AdapterSet) Adapters() []Adapter {
	return append([]Adapter(nil), s.adapters...)
}

// Len returns the number of adapters
func (s AdapterSet) Len() int {
	return len(s.adapters)
}

// Apply folds every adapter over r in order
func (s AdapterSet) Apply(r Request, env Environment) Request {
	out := r.Clone()
	for _, a := range s.adapters {
		out = a.Adapt(out, env)
	}
	return out
}
