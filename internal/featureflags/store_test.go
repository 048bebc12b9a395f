package featureflags

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueDefaultsWithoutSet(t *testing.T) {
	t.Parallel()

	store := NewStore()

	assert.Equal(t, 7, Value(store, "retries", Debug, MainApp, 7))
	assert.Equal(t, "fallback", Value(store, "banner", QA, BankUnited, "fallback"))
	assert.Equal(t, "", store.String("banner", Debug, MainApp))
	assert.False(t, store.Bool("x", Production, MainApp))

	var nilStore *Store
	assert.Equal(t, 3.5, Value(nilStore, "x", Debug, MainApp, 3.5))
}

func TestSetThenValue(t *testing.T) {
	t.Parallel()

	store := NewStore()
	store.Set(map[string]interface{}{"x": true}, []Scheme{Debug}, MainApp)

	assert.True(t, Value(store, "x", Debug, MainApp, false))
	assert.True(t, store.Bool("x", Debug, MainApp))

	// other scheme or module keeps the default
	assert.False(t, store.Bool("x", Production, MainApp))
	assert.False(t, store.Bool("x", Debug, CuotasModule))
}

func TestSetDefaults(t *testing.T) {
	t.Parallel()

	store := NewStore()
	store.Set(map[string]interface{}{"new-home": "v2"}, nil, "")

	assert.Equal(t, "v2", store.String("new-home", Debug, MainApp))
	assert.Equal(t, "v2", store.String("new-home", Debug, ""))
}

func TestSetMergesAndOverwrites(t *testing.T) {
	t.Parallel()

	store := NewStore()
	store.Set(map[string]interface{}{"a": 1, "b": 2}, []Scheme{Debug, QA}, BasicCommons)
	store.Set(map[string]interface{}{"b": 20, "c": 30}, []Scheme{QA}, BasicCommons)

	assert.Equal(t, 1, Value(store, "a", QA, BasicCommons, 0))
	assert.Equal(t, 20, Value(store, "b", QA, BasicCommons, 0))
	assert.Equal(t, 30, Value(store, "c", QA, BasicCommons, 0))
	assert.Equal(t, 2, Value(store, "b", Debug, BasicCommons, 0))
	assert.Equal(t, 0, Value(store, "c", Debug, BasicCommons, 0))
}

func TestWrongTypeFallsBack(t *testing.T) {
	t.Parallel()

	store := NewStore()
	store.Set(map[string]interface{}{"limit": "ten"}, []Scheme{Debug}, MainApp)

	assert.Equal(t, 10, Value(store, "limit", Debug, MainApp, 10))
	assert.False(t, store.Bool("limit", Debug, MainApp))
	assert.Equal(t, "ten", store.String("limit", Debug, MainApp))
}

func TestParseScheme(t *testing.T) {
	t.Parallel()

	s, ok := ParseScheme("MAIN-PROD")
	require.True(t, ok)
	assert.Equal(t, Production, s)

	_, ok = ParseScheme("staging")
	assert.False(t, ok)
}

func TestSnapshotIsACopy(t *testing.T) {
	t.Parallel()

	store := NewStore()
	store.Set(map[string]interface{}{"x": true}, nil, MainApp)

	snap := store.Snapshot()
	snap[Debug][MainApp]["x"] = false

	assert.True(t, store.Bool("x", Debug, MainApp))
}

func TestConcurrentWriters(t *testing.T) {
	t.Parallel()

	store := NewStore()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("f%d", i)
			store.Set(map[string]interface{}{key: i}, []Scheme{Debug, QA}, MainApp)
			_ = Value(store, key, QA, MainApp, -1)
		}(i)
	}
	wg.Wait()

	for i := 0; i < 50; i++ {
		assert.Equal(t, i, Value(store, fmt.Sprintf("f%d", i), QA, MainApp, -1))
	}
}

type fakeSections map[string]map[string]interface{}

func (f fakeSections) Section(key string) map[string]interface{} {
	return f[key]
}

func TestLoadFromConfig(t *testing.T) {
	t.Parallel()

	src := fakeSections{
		ConfigSection: {
			"MAIN-DEV": map[string]interface{}{
				"mainApp": map[string]interface{}{"onboarding": true, "theme": "dark"},
			},
			"staging": map[interface{}]interface{}{
				"bankUnited": map[string]interface{}{"transfers": false},
			},
			"main-qa": "not a mapping",
		},
	}

	store := NewStore()
	assert.Equal(t, 3, store.LoadFromConfig(src))

	assert.True(t, store.Bool("onboarding", Debug, MainApp))
	assert.Equal(t, "dark", store.String("theme", Debug, MainApp))
	assert.False(t, Value(store, "transfers", Scheme("staging"), BankUnited, true))
}
