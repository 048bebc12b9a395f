package config

import (
	"os"

	dserrors "github.com/systmms/commonspack/internal/errors"
	"github.com/systmms/commonspack/internal/logging"
	"github.com/systmms/commonspack/internal/storage/contracts"
)

// DefaultService is the keyring service entries are stored under
const DefaultService = "commonspack"

// Config holds the runtime configuration
type Config struct {
	Path    string
	Scheme  string
	Service string
	Logger  *logging.Logger

	// Keyring replaces the OS keyring when set
	Keyring contracts.KeyringClient

	Reader *Reader
}

// Load checks that the configuration document can be read and decoded, and
// prepares the Reader. Lookups made through the Reader afterwards still
// re-read the file.
func (c *Config) Load() error {
	reader := &Reader{Path: c.Path, Scheme: c.Scheme}

	if _, err := os.Stat(c.Path); err != nil {
		if os.IsNotExist(err) {
			return dserrors.ConfigError{
				Field:      "path",
				Value:      c.Path,
				Message:    "configuration file not found",
				Suggestion: "Pass --config with the path to Configurations.plist or a YAML equivalent",
				Err:        err,
			}
		}
		return dserrors.UserError{
			Message:    "Failed to read configuration file",
			Details:    err.Error(),
			Suggestion: "Check file permissions and path",
			Err:        err,
		}
	}

	if _, err := reader.Load(); err != nil {
		return dserrors.ConfigError{
			Field:      "path",
			Value:      c.Path,
			Message:    "configuration file could not be decoded",
			Suggestion: "Check the document is a valid property list or YAML mapping",
			Err:        err,
		}
	}

	if c.Service == "" {
		c.Service = DefaultService
	}
	c.Reader = reader
	return nil
}

// MustReader returns the loaded reader, or a reader that yields only
// defaults when Load has not succeeded.
func (c *Config) MustReader() *Reader {
	if c.Reader != nil {
		return c.Reader
	}
	return &Reader{Path: c.Path, Scheme: c.Scheme}
}
