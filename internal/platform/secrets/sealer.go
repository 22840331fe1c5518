package secrets

import (
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/hkdf"
	"golang.org/x/crypto/nacl/secretbox"
)

const nonceSize = 24

var ErrOpen = errors.New("sealed value could not be opened")

// Sealer encrypts small secrets (provider API keys) for storage at rest.
type Sealer interface {
	Seal(plaintext string) ([]byte, error)
	Open(sealed []byte) (string, error)
}

type boxSealer struct {
	key [32]byte
}

// NewSealer derives a secretbox key from the passphrase with HKDF-SHA256.
func NewSealer(passphrase string) (Sealer, error) {
	passphrase = strings.TrimSpace(passphrase)
	if passphrase == "" {
		return nil, fmt.Errorf("missing encryption passphrase")
	}
	s := &boxSealer{}
	r := hkdf.New(sha256.New, []byte(passphrase), []byte("storygrid/api-keys"), []byte("secretbox v1"))
	if _, err := io.ReadFull(r, s.key[:]); err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}
	return s, nil
}

func (s *boxSealer) Seal(plaintext string) ([]byte, error) {
	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return nil, fmt.Errorf("nonce: %w", err)
	}
	return secretbox.Seal(nonce[:], []byte(plaintext), &nonce, &s.key), nil
}

func (s *boxSealer) Open(sealed []byte) (string, error) {
	if len(sealed) < nonceSize+secretbox.Overhead {
		return "", ErrOpen
	}
	var nonce [nonceSize]byte
	copy(nonce[:], sealed[:nonceSize])
	out, ok := secretbox.Open(nil, sealed[nonceSize:], &nonce, &s.key)
	if !ok {
		return "", ErrOpen
	}
	return string(out), nil
}

// Hint keeps the last four characters for display.
func Hint(secret string) string {
	secret = strings.TrimSpace(secret)
	if len(secret) <= 4 {
		return strings.Repeat("*", len(secret))
	}
	return "..." + secret[len(secret)-4:]
}
