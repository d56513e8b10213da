package cryptox

import (
	"bytes"
	"testing"

	"github.com/dmitrijs2005/otpkeeper/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncryptDecrypt_RoundTrip(t *testing.T) {
	key := common.GenerateRandByteArray(KeySize)

	for _, pt := range []string{"x", "[github]\nkey = \"ABC\"\n", string(bytes.Repeat([]byte("a"), 4096))} {
		ct, nonce, err := Encrypt([]byte(pt), key)
		require.NoError(t, err)
		require.Len(t, nonce, NonceSize)
		require.NotEqual(t, []byte(pt), ct)

		got, err := DecryptString(ct, key, nonce)
		require.NoError(t, err)
		assert.Equal(t, pt, got)
	}
}

func TestEncrypt_FreshNonceEachCall(t *testing.T) {
	key := common.GenerateRandByteArray(KeySize)
	pt := []byte("same plaintext")

	ct1, n1, err := Encrypt(pt, key)
	require.NoError(t, err)
	ct2, n2, err := Encrypt(pt, key)
	require.NoError(t, err)

	assert.NotEqual(t, n1, n2)
	assert.NotEqual(t, ct1, ct2)
}

func TestEncrypt_BadKeySize(t *testing.T) {
	_, _, err := Encrypt([]byte("x"), []byte("short"))
	require.Error(t, err)
}

func TestDecrypt_Failures(t *testing.T) {
	key := common.GenerateRandByteArray(KeySize)
	ct, nonce, err := Encrypt([]byte("secret"), key)
	require.NoError(t, err)

	tampered := append([]byte(nil), ct...)
	tampered[0] ^= 0xff

	otherNonce := append([]byte(nil), nonce...)
	otherNonce[0] ^= 0x01

	tests := []struct {
		name  string
		ct    []byte
		key   []byte
		nonce []byte
	}{
		{"wrong key", ct, common.GenerateRandByteArray(KeySize), nonce},
		{"wrong nonce", ct, key, otherNonce},
		{"tampered", tampered, key, nonce},
		{"short nonce", ct, key, nonce[:12]},
		{"short key", ct, key[:16], nonce},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Decrypt(tc.ct, tc.key, tc.nonce)
			require.ErrorIs(t, err, ErrAuthenticationFailed)
		})
	}
}

func TestDecrypt_EmptyShortCircuits(t *testing.T) {
	got, err := DecryptString(nil, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "", got)
}

func TestDecryptString_InvalidUTF8(t *testing.T) {
	key := common.GenerateRandByteArray(KeySize)
	ct, nonce, err := Encrypt([]byte{0xff, 0xfe, 0xfd}, key)
	require.NoError(t, err)

	_, err = DecryptString(ct, key, nonce)
	require.ErrorIs(t, err, ErrInvalidUTF8)

	raw, err := Decrypt(ct, key, nonce)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xff, 0xfe, 0xfd}, raw)
}
