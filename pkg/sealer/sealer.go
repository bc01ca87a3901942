// Package sealer mints opaque, tamper-proof tokens that carry two identifiers,
// such as the store and order behind a public order tracking link.
package sealer

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"
)

var ErrInvalidToken = errors.New("invalid token")

const separator = ":"

type Sealer struct {
	aead cipher.AEAD
}

// New builds a Sealer from a standard base64 AES key of 16, 24 or 32 bytes.
func New(base64Key string) (*Sealer, error) {
	key, err := base64.StdEncoding.DecodeString(base64Key)
	if err != nil {
		return nil, fmt.Errorf("decode key: %w", err)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	return &Sealer{aead: aead}, nil
}

// Seal encrypts first and second into a URL-safe token. first must not contain ':'.
func (s *Sealer) Seal(first, second string) (string, error) {
	if first == "" || second == "" || strings.Contains(first, separator) {
		return "", fmt.Errorf("%w: cannot seal %q", ErrInvalidToken, first)
	}

	nonce := make([]byte, s.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}

	ct := s.aead.Seal(nonce, nonce, []byte(first+separator+second), nil)
	return base64.RawURLEncoding.EncodeToString(ct), nil
}

// Open reverses Seal. Any malformed or tampered token yields ErrInvalidToken.
func (s *Sealer) Open(token string) (string, string, error) {
	data, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return "", "", ErrInvalidToken
	}

	nonceSize := s.aead.NonceSize()
	if len(data) < nonceSize+s.aead.Overhead() {
		return "", "", ErrInvalidToken
	}

	pt, err := s.aead.Open(nil, data[:nonceSize], data[nonceSize:], nil)
	if err != nil {
		return "", "", ErrInvalidToken
	}

	first, second, ok := strings.Cut(string(pt), separator)
	if !ok || first == "" || second == "" {
		return "", "", ErrInvalidToken
	}
	return first, second, nil
}
