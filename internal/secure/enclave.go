package secure

import (
	"errors"
	"sync"

	"github.com/awnumar/memguard"
)

// ErrEmpty is returned when a buffer would hold no data
var ErrEmpty = errors.New("secure buffer: empty secret")

// ErrDestroyed is returned when a destroyed buffer is opened
var ErrDestroyed = errors.New("secure buffer: destroyed")

// SecureBuffer keeps a secret inside a memguard enclave
type SecureBuffer struct {
	mu        sync.RWMutex
	enclave   *memguard.Enclave
	destroyed bool
}

// NewSecureBuffer copies data into an encrypted enclave. The caller should
// zero its own copy afterwards.
func NewSecureBuffer(data []byte) (*SecureBuffer, error) {
	if len(data) == 0 {
		return nil, ErrEmpty
	}
	return &SecureBuffer{enclave: memguard.NewEnclave(data)}, nil
}

// Open decrypts the enclave into a locked buffer. The caller must Destroy
// the returned buffer.
func (s *SecureBuffer) Open() (*memguard.LockedBuffer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.destroyed {
		return nil, ErrDestroyed
	}
	return s.enclave.Open()
}

// WithBytes opens the enclave, passes the plaintext to fn and wipes it
// afterwards. fn must not retain the slice.
func (s *SecureBuffer) WithBytes(fn func([]byte) error) error {
	locked, err := s.Open()
	if err != nil {
		return err
	}
	defer locked.Destroy()
	return fn(locked.Bytes())
}

// Destroy drops the enclave. It is idempotent.
func (s *SecureBuffer) Destroy() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.enclave = nil
	s.destroyed = true
}

// String never reveals the content
func (s *SecureBuffer) String() string {
	return "[REDACTED]"
}
