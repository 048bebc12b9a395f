package fakes

import (
	"sync"

	"github.com/systmms/commonspack/internal/storage"
	"github.com/systmms/commonspack/internal/storage/contracts"
)

// FakeKeyring is an in-memory contracts.KeyringClient
type FakeKeyring struct {
	mu sync.Mutex

	// Secrets is a map of service -> account -> value
	Secrets map[string]map[string]string

	// Available controls whether the keyring reports as available
	Available bool

	// Headless controls whether the environment is reported as headless
	Headless bool

	// GetErr, SetErr and DeleteErr override normal behavior when set
	GetErr    error
	SetErr    error
	DeleteErr error

	// Calls counts operations by name
	Calls map[string]int
}

// NewFakeKeyring creates an available, empty fake keyring
func NewFakeKeyring() *FakeKeyring {
	return &FakeKeyring{
		Secrets:   make(map[string]map[string]string),
		Available: true,
		Calls:     make(map[string]int),
	}
}

// SetSecret seeds a secret without counting a call
func (f *FakeKeyring) SetSecret(service, account, value string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.put(service, account, value)
}

func (f *FakeKeyring) put(service, account, value string) {
	if f.Secrets[service] == nil {
		f.Secrets[service] = make(map[string]string)
	}
	f.Secrets[service][account] = value
}

func (f *FakeKeyring) count(op string) {
	if f.Calls == nil {
		f.Calls = make(map[string]int)
	}
	f.Calls[op]++
}

// CallCount returns how many times op was called
func (f *FakeKeyring) CallCount(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Calls[op]
}

// Get returns a secret or storage.ErrItemNotFound
func (f *FakeKeyring) Get(service, account string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.count("get")

	if f.GetErr != nil {
		return "", f.GetErr
	}
	if v, ok := f.Secrets[service][account]; ok {
		return v, nil
	}
	return "", storage.ErrItemNotFound
}

// Set stores a secret
func (f *FakeKeyring) Set(service, account, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.count("set")

	if f.SetErr != nil {
		return f.SetErr
	}
	f.put(service, account, value)
	return nil
}

// Delete removes a secret
func (f *FakeKeyring) Delete(service, account string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.count("delete")

	if f.DeleteErr != nil {
		return f.DeleteErr
	}
	if _, ok := f.Secrets[service][account]; !ok {
		return storage.ErrItemNotFound
	}
	delete(f.Secrets[service], account)
	return nil
}

// DeleteAll removes every secret under service
func (f *FakeKeyring) DeleteAll(service string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.count("delete-all")

	if f.DeleteErr != nil {
		return f.DeleteErr
	}
	delete(f.Secrets, service)
	return nil
}

// IsAvailable returns whether the keyring is available
func (f *FakeKeyring) IsAvailable() bool {
	return f.Available
}

// IsHeadless returns whether running in headless environment
func (f *FakeKeyring) IsHeadless() bool {
	return f.Headless
}

// Ensure FakeKeyring implements contracts.KeyringClient
var _ contracts.KeyringClient = (*FakeKeyring)(nil)
