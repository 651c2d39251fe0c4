package security

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testKey = []byte("0123456789abcdef0123456789abcdef")

func TestSealOpen(t *testing.T) {
	vault, err := NewCredentialVault(testKey)
	require.NoError(t, err)

	sealed, err := vault.Seal("hunter2")
	require.NoError(t, err)
	assert.True(t, IsSealed(sealed))
	assert.NotContains(t, sealed, "hunter2")

	again, err := vault.Seal("hunter2")
	require.NoError(t, err)
	assert.NotEqual(t, sealed, again, "nonce must differ per seal")

	plain, err := vault.Open(sealed)
	require.NoError(t, err)
	assert.Equal(t, "hunter2", plain)
}

func TestOpenPlainValue(t *testing.T) {
	vault, err := NewCredentialVault(testKey)
	require.NoError(t, err)

	plain, err := vault.Open("legacy-password")
	require.NoError(t, err)
	assert.Equal(t, "legacy-password", plain)
}

func TestOpenWithWrongKey(t *testing.T) {
	vault, err := NewCredentialVault(testKey)
	require.NoError(t, err)
	sealed, err := vault.Seal("hunter2")
	require.NoError(t, err)

	other, err := NewCredentialVault([]byte("abcdef0123456789abcdef0123456789"))
	require.NoError(t, err)
	_, err = other.Open(sealed)
	assert.Error(t, err)

	_, err = vault.Open(sealedPrefix + "AA==")
	assert.ErrorIs(t, err, ErrInvalidCiphertext)
}

func TestNewCredentialVaultKeys(t *testing.T) {
	_, err := NewCredentialVault([]byte("short"))
	assert.ErrorIs(t, err, ErrInvalidKeyLength)

	_, err = NewCredentialVaultFromString(base64.StdEncoding.EncodeToString(testKey))
	assert.NoError(t, err)

	_, err = NewCredentialVaultFromString(string(testKey))
	assert.NoError(t, err)
}
