package storage

import (
	"errors"
	"fmt"
)

// KeyringError wraps OS keyring errors with context
type KeyringError struct {
	Op      string // set, get, delete, delete-all
	Service string
	Key     string
	Err     error
}

func (e *KeyringError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("keyring %s error for %s: %v", e.Op, e.Service, e.Err)
	}
	return fmt.Sprintf("keyring %s error for %s/%s: %v", e.Op, e.Service, e.Key, e.Err)
}

func (e *KeyringError) Unwrap() error {
	return e.Err
}

// Keyring sentinel errors
var (
	ErrItemNotFound        = errors.New("keyring item not found")
	ErrAccessDenied        = errors.New("keyring access denied")
	ErrUnsupportedPlatform = errors.New("keyring not supported on this platform")
	ErrHeadless            = errors.New("keyring requires a desktop session (headless environment detected)")
)
