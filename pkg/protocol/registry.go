package protocol

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Factory builds an adapter from the text after "=" in an expression
type Factory func(arg string) (Adapter, error)

// Registry maps adapter kinds to factories, so adapters can be named in
// configuration and on the command line ("timeout=5", "domain=cards").
type Registry struct {
	factories map[Kind]Factory
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{factories: make(map[Kind]Factory)}
}

// Register adds a factory for kind
func (r *Registry) Register(kind Kind, f Factory) error {
	if f == nil {
		return fmt.Errorf("factory cannot be nil")
	}
	if _, exists := r.factories[kind]; exists {
		return fmt.Errorf("adapter kind %s already registered", kind)
	}
	r.factories[kind] = f
	return nil
}

// Parse builds an adapter from "kind" or "kind=arg"
func (r *Registry) Parse(expr string) (Adapter, error) {
	name, arg, _ := strings.Cut(strings.TrimSpace(expr), "=")
	f, ok := r.factories[Kind(name)]
	if !ok {
		return Adapter{}, fmt.Errorf("unknown adapter %q (known: %s)", name, strings.Join(r.names(), ", "))
	}
	return f(arg)
}

// ParseSet builds an AdapterSet from exprs
func (r *Registry) ParseSet(exprs []string) (AdapterSet, error) {
	var set AdapterSet
	for _, expr := range exprs {
		a, err := r.Parse(expr)
		if err != nil {
			return AdapterSet{}, err
		}
		set = set.With(a)
	}
	return set, nil
}

func (r *Registry) names() []string {
	names := make([]string, 0, len(r.factories))
	for k := range r.factories {
		names = append(names, string(k))
	}
	sort.Strings(names)
	return names
}

func noArg(a Adapter) Factory {
	return func(arg string) (Adapter, error) {
		if arg != "" {
			return Adapter{}, fmt.Errorf("adapter %s takes no argument", a.kind)
		}
		return a, nil
	}
}

func requiredArg(kind Kind, build func(string) Adapter) Factory {
	return func(arg string) (Adapter, error) {
		if arg == "" {
			return Adapter{}, fmt.Errorf("adapter %s requires an argument", kind)
		}
		return build(arg), nil
	}
}

// parseTimeout accepts Go durations ("1500ms") or plain seconds ("2.5")
func parseTimeout(arg string) (Adapter, error) {
	if d, err := time.ParseDuration(arg); err == nil {
		return Timeout(d), nil
	}
	secs, err := strconv.ParseFloat(arg, 64)
	if err != nil || secs <= 0 {
		return Adapter{}, fmt.Errorf("invalid timeout %q", arg)
	}
	return Timeout(time.Duration(secs * float64(time.Second))), nil
}

// DefaultRegistry knows every built-in adapter
var DefaultRegistry = func() *Registry {
	r := NewRegistry()
	_ = r.Register(KindEncrypted, noArg(Encrypted()))
	_ = r.Register(KindTimeout, parseTimeout)
	_ = r.Register(KindWithoutToken, noArg(WithoutToken()))
	_ = r.Register(KindDeviceID, noArg(DeviceID()))
	_ = r.Register(KindChannel, noArg(Channel()))
	_ = r.Register(KindDomain, requiredArg(KindDomain, Domain))
	_ = r.Register(KindConnection, noArg(Connection()))
	_ = r.Register(KindContentType, requiredArg(KindContentType, ContentType))
	_ = r.Register(KindTrackingID, noArg(TrackingID()))
	_ = r.Register(KindOriginAddress, noArg(OriginAddress()))
	_ = r.Register(KindReferenceOperation, requiredArg(KindReferenceOperation, ReferenceOperation))
	return r
}()

// ParseAdapter parses expr with the default registry
func ParseAdapter(expr string) (Adapter, error) {
	return DefaultRegistry.Parse(expr)
}

// ParseAdapterSet parses exprs with the default registry
func ParseAdapterSet(exprs []string) (AdapterSet, error) {
	return DefaultRegistry.ParseSet(exprs)
}
