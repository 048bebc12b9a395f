package commands

import (
	"github.com/systmms/commonspack/internal/config"
	"github.com/systmms/commonspack/internal/featureflags"
	"github.com/systmms/commonspack/internal/storage"
)

// openStorage returns the secure storage for the configured service
func openStorage(cfg *config.Config) *storage.Storage {
	service := cfg.Service
	if service == "" {
		service = config.DefaultService
	}
	if cfg.Keyring != nil {
		return storage.NewWithClient(service, cfg.Keyring, cfg.Logger)
	}
	return storage.New(service, cfg.Logger)
}

// loadFlags seeds a feature store from the configuration document
func loadFlags(cfg *config.Config) (*featureflags.Store, int) {
	store := featureflags.NewStore()
	n := store.LoadFromConfig(cfg.MustReader())
	return store, n
}

func activeScheme(reader *config.Reader) featureflags.Scheme {
	name := reader.SchemeName()
	if s, ok := featureflags.ParseScheme(name); ok {
		return s
	}
	return featureflags.Scheme(name)
}
