package security

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

// sealedPrefix marks a stored value produced by Seal
const sealedPrefix = "enc:v1:"

var (
	ErrInvalidCiphertext = errors.New("invalid ciphertext")
	ErrInvalidKeyLength  = errors.New("encryption key must be 32 bytes for AES-256")
)

// CredentialVault seals stored connection passwords with AES-256-GCM
type CredentialVault struct {
	gcm cipher.AEAD
}

// NewCredentialVault creates a vault from a 32 byte master key
func NewCredentialVault(masterKey []byte) (*CredentialVault, error) {
	if len(masterKey) != 32 {
		return nil, ErrInvalidKeyLength
	}

	block, err := aes.NewCipher(masterKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return &CredentialVault{gcm: gcm}, nil
}

// NewCredentialVaultFromString accepts the key either base64 encoded or as 32 raw characters
func NewCredentialVaultFromString(key string) (*CredentialVault, error) {
	if decoded, err := base64.StdEncoding.DecodeString(key); err == nil && len(decoded) == 32 {
		return NewCredentialVault(decoded)
	}
	return NewCredentialVault([]byte(key))
}

// Seal encrypts plaintext and returns a prefixed base64 string of nonce || ciphertext
func (cv *CredentialVault) Seal(plaintext string) (string, error) {
	nonce := make([]byte, cv.gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	sealed := cv.gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return sealedPrefix + base64.StdEncoding.EncodeToString(sealed), nil
}

// Open reverses Seal. Values without the sealed prefix are returned unchanged.
func (cv *CredentialVault) Open(stored string) (string, error) {
	if !IsSealed(stored) {
		return stored, nil
	}

	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(stored, sealedPrefix))
	if err != nil {
		return "", fmt.Errorf("failed to decode base64: %w", err)
	}

	nonceSize := cv.gcm.NonceSize()
	if len(raw) < nonceSize {
		return "", ErrInvalidCiphertext
	}

	plaintext, err := cv.gcm.Open(nil, raw[:nonceSize], raw[nonceSize:], nil)
	if err != nil {
		return "", fmt.Errorf("failed to decrypt: %w", err)
	}
	return string(plaintext), nil
}

// IsSealed reports whether a stored value was produced by Seal
func IsSealed(stored string) bool {
	return strings.HasPrefix(stored, sealedPrefix)
}
