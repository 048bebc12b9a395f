// Package secure holds credentials in memguard enclaves so that plaintext
// only exists inside a locked buffer for the duration of a callback.
//
// The enclave is encrypted at rest (XSalsa20Poly1305) and its locked
// buffers are mlocked and wiped on destroy. If mlock is unavailable memguard
// falls back to ordinary memory.
//
//	buf, err := secure.NewSecureBuffer([]byte(token))
//	if err != nil {
//	    return err
//	}
//	defer buf.Destroy()
//
//	err = buf.WithBytes(func(b []byte) error {
//	    req.Header.Set("Authorization", "Bearer "+string(b))
//	    return nil
//	})
//
// It does not protect against attackers with access to the running process.
package secure
