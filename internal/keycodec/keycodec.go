// Package keycodec wraps API keys in Fernet tokens so the browser can hold an
// opaque string instead of resending the literal key on every request. The
// key is fixed and ships with the service, so this is convenience, not a
// security boundary.
package keycodec

import (
	"errors"
	"fmt"

	"github.com/fernet/fernet-go"
)

var ErrInvalidToken = errors.New("invalid api key token")

type Codec struct {
	keys []*fernet.Key
}

// New builds a codec from a base64 Fernet key.
func New(encryptionKey string) (*Codec, error) {
	keys, err := fernet.DecodeKeys(encryptionKey)
	if err != nil {
		return nil, fmt.Errorf("decode encryption key: %w", err)
	}
	return &Codec{keys: keys}, nil
}

func (c *Codec) Encrypt(plaintext string) (string, error) {
	tok, err := fernet.EncryptAndSign([]byte(plaintext), c.keys[0])
	if err != nil {
		return "", err
	}
	return string(tok), nil
}

// Decrypt recovers the plaintext key. A tampered or malformed token yields
// ErrInvalidToken; callers must not leak anything more specific to clients.
// Tokens never expire (ttl 0) - the browser may reuse one indefinitely.
func (c *Codec) Decrypt(token string) (string, error) {
	msg := fernet.VerifyAndDecrypt([]byte(token), 0, c.keys)
	if msg == nil {
		return "", ErrInvalidToken
	}
	return string(msg), nil
}
