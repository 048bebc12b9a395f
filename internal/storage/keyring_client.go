package storage

import (
	"errors"
	"strings"

	"github.com/zalando/go-keyring"

	"github.com/systmms/commonspack/internal/storage/contracts"
)

// platformKeyringClient talks to the OS keyring through go-keyring: the
// macOS Keychain, the Secret Service on Linux, the Credential Manager on
// Windows.
type platformKeyringClient struct{}

// NewPlatformKeyringClient returns the OS keyring client
func NewPlatformKeyringClient() contracts.KeyringClient {
	return &platformKeyringClient{}
}

func (c *platformKeyringClient) Get(service, account string) (string, error) {
	secret, err := keyring.Get(service, account)
	if err != nil {
		return "", translateKeyringError(err)
	}
	return secret, nil
}

func (c *platformKeyringClient) Set(service, account, value string) error {
	return translateKeyringError(keyring.Set(service, account, value))
}

func (c *platformKeyringClient) Delete(service, account string) error {
	return translateKeyringError(keyring.Delete(service, account))
}

func (c *platformKeyringClient) DeleteAll(service string) error {
	return translateKeyringError(keyring.DeleteAll(service))
}

func (c *platformKeyringClient) IsAvailable() bool {
	return platformAvailable()
}

func (c *platformKeyringClient) IsHeadless() bool {
	return platformHeadless()
}

func translateKeyringError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, keyring.ErrNotFound) {
		return ErrItemNotFound
	}
	if errors.Is(err, keyring.ErrUnsupportedPlatform) {
		return ErrUnsupportedPlatform
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "access denied") || strings.Contains(msg, "user denied") || strings.Contains(msg, "canceled") {
		return ErrAccessDenied
	}
	return err
}

// Ensure platformKeyringClient implements contracts.KeyringClient
var _ contracts.KeyringClient = (*platformKeyringClient)(nil)
