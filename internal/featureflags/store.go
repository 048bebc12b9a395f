// Package featureflags keeps feature toggle values keyed by build scheme and
// module. A Store is created explicitly and shared by reference; it is safe
// for concurrent use.
package featureflags

import (
	"strings"
	"sync"
)

// Scheme is a build scheme name such as "main-dev"
type Scheme string

// Build schemes
const (
	Debug       Scheme = "main-dev"
	Integration Scheme = "main-int"
	Local       Scheme = "main-loc"
	Production  Scheme = "main-prod"
	QA          Scheme = "main-qa"
)

// Schemes lists the known build schemes
var Schemes = []Scheme{Debug, Integration, Local, Production, QA}

// ParseScheme maps a raw scheme name onto a known scheme, case-insensitively
func ParseScheme(name string) (Scheme, bool) {
	for _, s := range Schemes {
		if strings.EqualFold(string(s), name) {
			return s, true
		}
	}
	return "", false
}

// Module namespaces features
type Module string

// Known modules
const (
	MainApp      Module = "mainApp"
	BasicCommons Module = "basicCommons"
	BankUnited   Module = "bankUnited"
	CuotasModule Module = "cuotasModule"
)

// Store holds scheme → module → feature → value
type Store struct {
	mu    sync.RWMutex
	flags map[Scheme]map[Module]map[string]interface{}
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{flags: make(map[Scheme]map[Module]map[string]interface{})}
}

// Set merges features into module for every scheme, overwriting existing
// keys. With no schemes the Debug scheme is used; an empty module means
// MainApp.
func (s *Store) Set(features map[string]interface{}, schemes []Scheme, module Module) {
	if len(schemes) == 0 {
		schemes = []Scheme{Debug}
	}
	if module == "" {
		module = MainApp
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, scheme := range schemes {
		modules, ok := s.flags[scheme]
		if !ok {
			modules = make(map[Module]map[string]interface{})
			s.flags[scheme] = modules
		}
		values, ok := modules[module]
		if !ok {
			values = make(map[string]interface{}, len(features))
			modules[module] = values
		}
		for k, v := range features {
			values[k] = v
		}
	}
}

func (s *Store) lookup(key string, scheme Scheme, module Module) (interface{}, bool) {
	if s == nil {
		return nil, false
	}
	if module == "" {
		module = MainApp
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.flags[scheme][module][key]
	return v, ok
}

// Value returns the flag stored under key, or def when the flag is absent or
// holds a value of another type.
func Value[V any](s *Store, key string, scheme Scheme, module Module, def V) V {
	raw, ok := s.lookup(key, scheme, module)
	if !ok {
		return def
	}
	v, ok := raw.(V)
	if !ok {
		return def
	}
	return v
}

// String returns the flag as a string, or "" when absent
func (s *Store) String(key string, scheme Scheme, module Module) string {
	return Value(s, key, scheme, module, "")
}

// Bool returns the flag as a bool, or false when absent
func (s *Store) Bool(key string, scheme Scheme, module Module) bool {
	return Value(s, key, scheme, module, false)
}

// Snapshot returns a deep copy of every stored flag
func (s *Store) Snapshot() map[Scheme]map[Module]map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[Scheme]map[Module]map[string]interface{}, len(s.flags))
	for scheme, modules := range s.flags {
		mcopy := make(map[Module]map[string]interface{}, len(modules))
		for module, values := range modules {
			vcopy := make(map[string]interface{}, len(values))
			for k, v := range values {
				vcopy[k] = v
			}
			mcopy[module] = vcopy
		}
		out[scheme] = mcopy
	}
	return out
}
