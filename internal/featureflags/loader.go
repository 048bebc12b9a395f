package featureflags

import (
	"fmt"
)

// SectionSource yields a raw configuration section. *config.Reader
// satisfies it.
type SectionSource interface {
	Section(key string) map[string]interface{}
}

// ConfigSection is the configuration key flags are seeded from
const ConfigSection = "FeatureToggle"

// LoadFromConfig seeds the store from the FeatureToggle section, laid out as
// scheme → module → feature → value. Scheme names are matched
// case-insensitively; unknown schemes are kept under their raw name.
// It returns the number of features loaded.
func (s *Store) LoadFromConfig(src SectionSource) int {
	section := src.Section(ConfigSection)
	loaded := 0

	for rawScheme, rawModules := range section {
		scheme, ok := ParseScheme(rawScheme)
		if !ok {
			scheme = Scheme(rawScheme)
		}
		modules, ok := toStringMap(rawModules)
		if !ok {
			continue
		}
		for module, rawFeatures := range modules {
			features, ok := toStringMap(rawFeatures)
			if !ok {
				continue
			}
			s.Set(features, []Scheme{scheme}, Module(module))
			loaded += len(features)
		}
	}
	return loaded
}

func toStringMap(v interface{}) (map[string]interface{}, bool) {
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
