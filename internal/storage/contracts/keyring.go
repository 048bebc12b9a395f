// Package contracts defines the keyring client abstraction so storage can be
// tested without an OS keyring.
package contracts

// KeyringClient abstracts OS keyring operations
type KeyringClient interface {
	// Get returns the secret for service/account
	Get(service, account string) (string, error)

	// Set stores a secret, replacing any existing value
	Set(service, account, value string) error

	// Delete removes a single secret
	Delete(service, account string) error

	// DeleteAll removes every secret stored under service
	DeleteAll(service string) error

	// IsAvailable returns true if a keyring exists on this platform
	IsAvailable() bool

	// IsHeadless returns true if running without a desktop session
	IsHeadless() bool
}
