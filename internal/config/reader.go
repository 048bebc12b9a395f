package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
	"howett.net/plist"
)

// Well-known values shared by the request layer and the CLI.
const (
	TokenKey    = "apiToken"
	DeviceIDKey = "deviceId"

	DefaultScheme        = "main-dev"
	DefaultVersion       = "1.0.0"
	DefaultBundleVersion = "1"

	ReferenceService      = "app_ios"
	ApplicationIDPrefix   = "ios_v"
	ConnectionHeaderValue = "close"
	Bearer                = "Bearer"
	EncryptHeaderValue    = "on"
	DefaultChannel        = "910"

	MockServerProxyPort = 8080
)

// Reader looks up values in a configuration document. The document is read
// from disk on every lookup; nothing is cached.
//
// A document is a mapping of keys (Api, App, Info, FeatureToggle, ...) to
// mappings of subkeys. A subkey may itself hold a mapping keyed by the
// lower-cased scheme name, in which case the active scheme selects the value.
type Reader struct {
	Path string

	// Scheme overrides the scheme declared in the Info section.
	Scheme string
}

// NewReader creates a reader for the document at path
func NewReader(path string) *Reader {
	return &Reader{Path: path}
}

// Load reads and decodes the whole document. The format is chosen by file
// extension: .yaml/.yml are YAML, everything else is a property list.
func (r *Reader) Load() (map[string]interface{}, error) {
	if r == nil || r.Path == "" {
		return nil, fmt.Errorf("configuration path is empty")
	}

	data, err := os.ReadFile(r.Path)
	if err != nil {
		return nil, err
	}

	return decodeDocument(r.Path, data)
}

func decodeDocument(path string, data []byte) (map[string]interface{}, error) {
	doc := map[string]interface{}{}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, err
		}
	default:
		if err := plist.NewDecoder(bytes.NewReader(data)).Decode(&doc); err != nil {
			return nil, fmt.Errorf("plist: %w", err)
		}
	}

	return doc, nil
}

// document returns the decoded document or an empty one
func (r *Reader) document() map[string]interface{} {
	doc, err := r.Load()
	if err != nil || doc == nil {
		return map[string]interface{}{}
	}
	return doc
}

// Value returns the raw value stored under key/subKey for the active scheme
func (r *Reader) Value(key, subKey string) (interface{}, bool) {
	return r.lookup(r.document(), key, subKey, r.SchemeName)
}

func (r *Reader) lookup(doc map[string]interface{}, key, subKey string, scheme func() string) (interface{}, bool) {
	section, ok := asMap(doc[key])
	if !ok {
		return nil, false
	}

	raw, ok := section[subKey]
	if !ok {
		return nil, false
	}

	if overlay, isOverlay := asMap(raw); isOverlay {
		v, found := overlay[strings.ToLower(scheme())]
		return v, found
	}

	return raw, true
}

// String returns the value as a string, or "" when absent or not a string
func (r *Reader) String(key, subKey string) string {
	v, _ := r.Value(key, subKey)
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

// Bool returns the value as a bool, or false when absent or not a bool
func (r *Reader) Bool(key, subKey string) bool {
	v, _ := r.Value(key, subKey)
	if b, ok := v.(bool); ok {
		return b
	}
	return false
}

// Float returns the value as a float64, or 0 when absent or not numeric
func (r *Reader) Float(key, subKey string) float64 {
	v, _ := r.Value(key, subKey)
	f, _ := asFloat(v)
	return f
}

// Duration interprets the value as seconds
func (r *Reader) Duration(key, subKey string) time.Duration {
	return time.Duration(r.Float(key, subKey) * float64(time.Second))
}

// SchemeName returns the active build scheme. An explicit Scheme wins, then
// Info.Scheme, then the legacy Info.DisplayName, then DefaultScheme.
func (r *Reader) SchemeName() string {
	if r != nil && r.Scheme != "" {
		return r.Scheme
	}
	info, _ := asMap(r.document()["Info"])
	for _, k := range []string{"Scheme", "DisplayName"} {
		if s, ok := info[k].(string); ok && s != "" {
			return s
		}
	}
	return DefaultScheme
}

// DisplayName returns Info.DisplayName or DefaultScheme
func (r *Reader) DisplayName() string {
	return r.infoString("DisplayName", DefaultScheme)
}

// AppVersion returns Info.Version or DefaultVersion
func (r *Reader) AppVersion() string {
	return r.infoString("Version", DefaultVersion)
}

// BundleVersion returns Info.BundleVersion or DefaultBundleVersion
func (r *Reader) BundleVersion() string {
	return r.infoString("BundleVersion", DefaultBundleVersion)
}

func (r *Reader) infoString(name, def string) string {
	info, _ := asMap(r.document()["Info"])
	if s, ok := info[name].(string); ok && s != "" {
		return s
	}
	return def
}

// Section returns the raw mapping stored under key
func (r *Reader) Section(key string) map[string]interface{} {
	m, _ := asMap(r.document()[key])
	return m
}

func asMap(v interface{}) (map[string]interface{}, bool) {
	switch m := v.(type) {
	case map[string]interface{}:
		return m, true
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(m))
		for k, val := range m {
			out[fmt.Sprint(k)] = val
		}
		return out, true
	}
	return nil, false
}

func asFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	case int32:
		return float64(n), true
	case uint32:
		return float64(n), true
	}
	return 0, false
}
