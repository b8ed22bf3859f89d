// Package vault keeps OAuth tokens for connected social accounts out of
// client-readable tables. Secrets are sealed with XChaCha20-Poly1305 under a
// key derived from TOKEN_ENCRYPTION_KEY and addressed by an opaque reference.
package vault

import (
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

const keyInfo = "social-account-tokens/v1"

var ErrEmptyKey = errors.New("encryption key is empty")

type Sealer struct {
	aead cipher.AEAD
}

// NewSealer derives a 32-byte key from secret, so any passphrase length works.
func NewSealer(secret string) (*Sealer, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, ErrEmptyKey
	}

	key := make([]byte, chacha20poly1305.KeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, []byte(keyInfo)), key); err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("init cipher: %w", err)
	}

	return &Sealer{aead: aead}, nil
}

// Seal encrypts plaintext bound to aad. The returned nonce must be stored with the ciphertext.
func (s *Sealer) Seal(plaintext []byte, aad []byte) (ciphertext []byte, nonce []byte, err error) {
	nonce = make([]byte, s.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, nil, err
	}

	ciphertext = s.aead.Seal(nil, nonce, plaintext, aad)
	return ciphertext, nonce, nil
}

func (s *Sealer) Open(ciphertext []byte, nonce []byte, aad []byte) ([]byte, error) {
	if len(nonce) != s.aead.NonceSize() {
		return nil, fmt.Errorf("invalid nonce length %d", len(nonce))
	}
	return s.aead.Open(nil, nonce, ciphertext, aad)
}
