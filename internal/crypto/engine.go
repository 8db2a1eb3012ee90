package crypto

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"time"

	"golang.org/x/crypto/pbkdf2"

	"github.com/chirino/document-service/internal/security"
)

const (
	// KeySize is the derived AES-256 key length.
	KeySize = 32
	// SaltSize is the per-envelope KDF salt length.
	SaltSize = 16
	// NonceSize is the AES-GCM nonce length.
	NonceSize = 12
	// TagSize is the GCM authentication tag length; the tag is stored as the
	// trailing TagSize bytes of the envelope ciphertext, not separately.
	TagSize = 16

	// DefaultKDFIterations is the PBKDF2-SHA256 iteration count.
	DefaultKDFIterations = 100_000
)

// ErrAuthentication is returned when an envelope's GCM tag does not verify:
// wrong secret, wrong nonce, or tampered ciphertext. Decryption fails closed;
// altered plaintext is never returned.
var ErrAuthentication = errors.New("crypto: message authentication failed")

// Engine derives keys and seals/opens field envelopes. Derivation is
// deliberately slow (password-hashing KDF), so derived keys are cached per
// (secret, salt) pair — without the cache every encrypted field read or
// write would cost one full KDF run.
type Engine struct {
	cache      *KeyCache
	iterations int
}

// NewEngine returns an Engine backed by the given cache. An iteration count
// <= 0 falls back to DefaultKDFIterations.
func NewEngine(cache *KeyCache, iterations int) *Engine {
	if iterations <= 0 {
		iterations = DefaultKDFIterations
	}
	return &Engine{cache: cache, iterations: iterations}
}

// DeriveKey returns the 32-byte key for (secret, salt), consulting the cache
// first and running PBKDF2-SHA256 on a miss.
func (e *Engine) DeriveKey(secret, salt []byte) []byte {
	if key, ok := e.cache.Get(secret, salt); ok {
		if security.KeyCacheHitsTotal != nil {
			security.KeyCacheHitsTotal.Inc()
		}
		return key
	}
	if security.KeyCacheMissesTotal != nil {
		security.KeyCacheMissesTotal.Inc()
	}
	start := time.Now()
	key := pbkdf2.Key(secret, salt, e.iterations, KeySize, sha256.New)
	if security.KDFDuration != nil {
		security.KDFDuration.Observe(time.Since(start).Seconds())
	}
	e.cache.Put(secret, salt, key)
	return key
}

// DeriveKeyContext is DeriveKey with cancellation: the KDF runs on its own
// goroutine and the call returns early when ctx is done. The discarded KDF
// result is still cached so the work is not wasted on a later retry.
func (e *Engine) DeriveKeyContext(ctx context.Context, secret, salt []byte) ([]byte, error) {
	if key, ok := e.cache.Get(secret, salt); ok {
		if security.KeyCacheHitsTotal != nil {
			security.KeyCacheHitsTotal.Inc()
		}
		return key, nil
	}
	done := make(chan []byte, 1)
	go func() {
		done <- e.DeriveKey(secret, salt)
	}()
	select {
	case key := <-done:
		return key, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Encrypt seals plaintext under a key derived from secret and a fresh random
// salt, with a fresh random nonce. Salt and nonce are never reused, so the
// derived key differs for every envelope even under a single secret.
func (e *Engine) Encrypt(plaintext, secret []byte) (Envelope, error) {
	salt := make([]byte, SaltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return Envelope{}, fmt.Errorf("generating salt: %w", err)
	}
	nonce := make([]byte, NonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return Envelope{}, fmt.Errorf("generating nonce: %w", err)
	}
	gcm, err := newGCM(e.DeriveKey(secret, salt))
	if err != nil {
		return Envelope{}, err
	}
	ciphertext := gcm.Seal(nil, nonce, plaintext, nil)
	return NewEnvelope(ciphertext, salt, nonce), nil
}

// EncryptContext is Encrypt with the KDF bounded by ctx.
func (e *Engine) EncryptContext(ctx context.Context, plaintext, secret []byte) (Envelope, error) {
	salt := make([]byte, SaltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return Envelope{}, fmt.Errorf("generating salt: %w", err)
	}
	nonce := make([]byte, NonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return Envelope{}, fmt.Errorf("generating nonce: %w", err)
	}
	key, err := e.DeriveKeyContext(ctx, secret, salt)
	if err != nil {
		return Envelope{}, err
	}
	gcm, err := newGCM(key)
	if err != nil {
		return Envelope{}, err
	}
	ciphertext := gcm.Seal(nil, nonce, plaintext, nil)
	return NewEnvelope(ciphertext, salt, nonce), nil
}

// Decrypt re-derives the key from the envelope's salt (a cache hit on repeat
// reads) and opens the ciphertext. A failed tag check returns
// ErrAuthentication.
func (e *Engine) Decrypt(env Envelope, secret []byte) ([]byte, error) {
	ciphertext, salt, nonce, err := env.Decode()
	if err != nil {
		return nil, err
	}
	if len(nonce) != NonceSize {
		return nil, fmt.Errorf("crypto: nonce must be %d bytes, got %d", NonceSize, len(nonce))
	}
	if len(ciphertext) < TagSize {
		return nil, fmt.Errorf("crypto: ciphertext shorter than GCM tag")
	}
	gcm, err := newGCM(e.DeriveKey(secret, salt))
	if err != nil {
		return nil, err
	}
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAuthentication, err)
	}
	return plaintext, nil
}

// DecryptContext is Decrypt with the KDF bounded by ctx.
func (e *Engine) DecryptContext(ctx context.Context, env Envelope, secret []byte) ([]byte, error) {
	ciphertext, salt, nonce, err := env.Decode()
	if err != nil {
		return nil, err
	}
	if len(nonce) != NonceSize {
		return nil, fmt.Errorf("crypto: nonce must be %d bytes, got %d", NonceSize, len(nonce))
	}
	if len(ciphertext) < TagSize {
		return nil, fmt.Errorf("crypto: ciphertext shorter than GCM tag")
	}
	key, err := e.DeriveKeyContext(ctx, secret, salt)
	if err != nil {
		return nil, err
	}
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAuthentication, err)
	}
	return plaintext, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("crypto: AES cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("crypto: GCM: %w", err)
	}
	return gcm, nil
}
