// Package storage is the secure storage facade: string and object values
// kept in the OS keyring under a single service name.
//
// Stored values are credentials. They are never written to logs; log lines
// only carry keys.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/systmms/commonspack/internal/config"
	"github.com/systmms/commonspack/internal/logging"
	"github.com/systmms/commonspack/internal/secure"
	"github.com/systmms/commonspack/internal/storage/contracts"
)

// Storage proxies set/retrieve/remove calls to a keyring client
type Storage struct {
	service string
	client  contracts.KeyringClient
	logger  *logging.Logger
}

// New creates a storage backed by the OS keyring
func New(service string, logger *logging.Logger) *Storage {
	return NewWithClient(service, NewPlatformKeyringClient(), logger)
}

// NewWithClient creates a storage with a custom keyring client.
// This is primarily for testing.
func NewWithClient(service string, client contracts.KeyringClient, logger *logging.Logger) *Storage {
	if service == "" {
		service = config.DefaultService
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &Storage{
		service: service,
		client:  client,
		logger:  logger,
	}
}

// Service returns the keyring service name
func (s *Storage) Service() string {
	return s.service
}

// Set stores a string value under key
func (s *Storage) Set(key, value string) error {
	if err := s.client.Set(s.service, key, value); err != nil {
		return s.wrap("set", key, err)
	}
	s.logger.Debug("stored %s/%s", s.service, key)
	return nil
}

// SetObject stores v as JSON under key
func (s *Storage) SetObject(key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.Set(key, string(data))
}

// HasValue reports whether key holds a value
func (s *Storage) HasValue(key string) bool {
	_, ok := s.Retrieve(key)
	return ok
}

// Retrieve returns the string stored under key. Absent keys and keyring
// failures both report false; failures other than not-found are logged.
func (s *Storage) Retrieve(key string) (string, bool) {
	value, err := s.client.Get(s.service, key)
	if err != nil {
		if !errors.Is(err, ErrItemNotFound) {
			s.logger.Warn("keyring read failed for %s/%s: %v", s.service, key, err)
		}
		return "", false
	}
	return value, true
}

// RetrieveObject decodes the JSON stored under key into out. It reports
// false when the key is absent.
func (s *Storage) RetrieveObject(key string, out interface{}) (bool, error) {
	raw, ok := s.Retrieve(key)
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return true, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

// RetrieveSecret returns the value under key inside a memguard enclave.
// Empty values are treated as absent. The caller must Destroy the buffer.
func (s *Storage) RetrieveSecret(key string) (*secure.SecureBuffer, bool) {
	raw, ok := s.Retrieve(key)
	if !ok || raw == "" {
		return nil, false
	}
	buf, err := secure.NewSecureBuffer([]byte(raw))
	if err != nil {
		return nil, false
	}
	return buf, true
}

// Remove deletes key. Removing an absent key is not an error.
func (s *Storage) Remove(key string) error {
	if err := s.client.Delete(s.service, key); err != nil && !errors.Is(err, ErrItemNotFound) {
		return s.wrap("delete", key, err)
	}
	return nil
}

// RemoveAll deletes every entry stored under the service
func (s *Storage) RemoveAll() error {
	if err := s.client.DeleteAll(s.service); err != nil && !errors.Is(err, ErrItemNotFound) {
		return s.wrap("delete-all", "", err)
	}
	s.logger.Debug("cleared keyring service %s", s.service)
	return nil
}

// RemoveToken deletes only the auth token entry, and only if one exists.
// Other credentials are left untouched.
func (s *Storage) RemoveToken() error {
	if !s.HasValue(config.TokenKey) {
		return nil
	}
	return s.Remove(config.TokenKey)
}

// CleanOnLogout removes the session credentials
func (s *Storage) CleanOnLogout() error {
	return s.RemoveToken()
}

// Validate checks if the keyring is usable from this process
func (s *Storage) Validate() error {
	if !s.client.IsAvailable() {
		return ErrUnsupportedPlatform
	}
	if s.client.IsHeadless() {
		return ErrHeadless
	}
	return nil
}

func (s *Storage) wrap(op, key string, err error) error {
	return &KeyringError{
		Op:      op,
		Service: s.service,
		Key:     key,
		Err:     err,
	}
}
