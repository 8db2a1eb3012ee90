package crypto

import (
	"context"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Tests run with a small iteration count; the production default would make
// every cache-miss derivation take a noticeable fraction of a second.
const testIterations = 64

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	return NewEngine(NewKeyCache(16), testIterations)
}

func TestEngine_EncryptDecryptRoundTrip(t *testing.T) {
	e := newTestEngine(t)
	secret := []byte("correct horse battery staple")

	env, err := e.Encrypt([]byte("the meeting notes"), secret)
	require.NoError(t, err)
	assert.False(t, env.IsZero())

	plaintext, err := e.Decrypt(env, secret)
	require.NoError(t, err)
	assert.Equal(t, "the meeting notes", string(plaintext))
}

func TestEngine_FreshSaltAndNoncePerEncryption(t *testing.T) {
	e := newTestEngine(t)
	secret := []byte("secret")

	env1, err := e.Encrypt([]byte("same plaintext"), secret)
	require.NoError(t, err)
	env2, err := e.Encrypt([]byte("same plaintext"), secret)
	require.NoError(t, err)

	assert.NotEqual(t, env1.Salt, env2.Salt)
	assert.NotEqual(t, env1.Nonce, env2.Nonce)
	assert.NotEqual(t, env1.Ciphertext, env2.Ciphertext)
}

func TestEngine_WrongSecretFailsClosed(t *testing.T) {
	e := newTestEngine(t)

	env, err := e.Encrypt([]byte("sensitive"), []byte("right secret"))
	require.NoError(t, err)

	_, err = e.Decrypt(env, []byte("wrong secret"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAuthentication)
}

func TestEngine_TamperedCiphertextDetected(t *testing.T) {
	e := newTestEngine(t)
	secret := []byte("secret")

	env, err := e.Encrypt([]byte("do not touch"), secret)
	require.NoError(t, err)

	raw, err := base64.StdEncoding.DecodeString(env.Ciphertext)
	require.NoError(t, err)

	// Flip one bit in each byte position in turn; every variant must fail.
	for i := range raw {
		tampered := make([]byte, len(raw))
		copy(tampered, raw)
		tampered[i] ^= 0x01
		env2 := env
		env2.Ciphertext = base64.StdEncoding.EncodeToString(tampered)

		_, err := e.Decrypt(env2, secret)
		assert.ErrorIs(t, err, ErrAuthentication, "bit flip at byte %d must not decrypt", i)
	}
}

func TestEngine_TamperedNonceDetected(t *testing.T) {
	e := newTestEngine(t)
	secret := []byte("secret")

	env, err := e.Encrypt([]byte("payload"), secret)
	require.NoError(t, err)

	raw, err := base64.StdEncoding.DecodeString(env.Nonce)
	require.NoError(t, err)
	raw[0] ^= 0xFF
	env.Nonce = base64.StdEncoding.EncodeToString(raw)

	_, err = e.Decrypt(env, secret)
	assert.ErrorIs(t, err, ErrAuthentication)
}

func TestEngine_RejectsMalformedEnvelope(t *testing.T) {
	e := newTestEngine(t)
	secret := []byte("secret")

	env, err := e.Encrypt([]byte("payload"), secret)
	require.NoError(t, err)

	t.Run("bad base64", func(t *testing.T) {
		bad := env
		bad.Salt = "not-base64!!"
		_, err := e.Decrypt(bad, secret)
		require.Error(t, err)
	})

	t.Run("short nonce", func(t *testing.T) {
		bad := env
		bad.Nonce = base64.StdEncoding.EncodeToString([]byte("short"))
		_, err := e.Decrypt(bad, secret)
		require.Error(t, err)
	})

	t.Run("ciphertext shorter than tag", func(t *testing.T) {
		bad := env
		bad.Ciphertext = base64.StdEncoding.EncodeToString([]byte("tiny"))
		_, err := e.Decrypt(bad, secret)
		require.Error(t, err)
	})
}

func TestEngine_DeriveKeyCaches(t *testing.T) {
	cache := NewKeyCache(16)
	e := NewEngine(cache, testIterations)
	secret := []byte("secret")
	salt := []byte("salt-value-01234")

	key1 := e.DeriveKey(secret, salt)
	require.Len(t, key1, KeySize)
	require.Equal(t, 1, cache.Len())

	key2 := e.DeriveKey(secret, salt)
	assert.Equal(t, key1, key2)
	assert.Equal(t, 1, cache.Len())
}

func TestEngine_DeriveKeyDiffersBySecretAndSalt(t *testing.T) {
	e := newTestEngine(t)

	base := e.DeriveKey([]byte("secret-a"), []byte("salt-a"))
	otherSecret := e.DeriveKey([]byte("secret-b"), []byte("salt-a"))
	otherSalt := e.DeriveKey([]byte("secret-a"), []byte("salt-b"))

	assert.NotEqual(t, base, otherSecret)
	assert.NotEqual(t, base, otherSalt)
}

func TestEngine_DeriveKeyContextCancellation(t *testing.T) {
	// A large iteration count makes the KDF slow enough that an already
	// cancelled context wins the select.
	e := NewEngine(NewKeyCache(16), 5_000_000)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.DeriveKeyContext(ctx, []byte("secret"), []byte("salt"))
	require.ErrorIs(t, err, context.Canceled)
}

func TestEngine_ContextVariantsRoundTrip(t *testing.T) {
	e := newTestEngine(t)
	secret := []byte("secret")
	ctx := context.Background()

	env, err := e.EncryptContext(ctx, []byte("ctx payload"), secret)
	require.NoError(t, err)

	plaintext, err := e.DecryptContext(ctx, env, secret)
	require.NoError(t, err)
	assert.Equal(t, "ctx payload", string(plaintext))
}
