// Package gormstore implements the document store on GORM. The same Store
// serves both the "postgres" and "sqlite" plugins; only the driver setup in
// postgres.go and sqlite.go differs.
package gormstore

import (
	"strings"
	"sync"

	"gorm.io/gorm"

	"github.com/chirino/document-service/internal/config"
	"github.com/chirino/document-service/internal/crypto"
	registrystore "github.com/chirino/document-service/internal/registry/store"
)

// Re-export error types from registry/store so store code reads naturally.
type NotFoundError = registrystore.NotFoundError
type ValidationError = registrystore.ValidationError
type CycleError = registrystore.CycleError
type ConflictError = registrystore.ConflictError
type ForbiddenError = registrystore.ForbiddenError
type DecryptionError = registrystore.DecryptionError

// encryptedSentinel is written to the legacy plaintext column when the real
// value lives in the envelope columns. Rows predating encryption hold their
// original plaintext there instead, and reads fall back to it.
const encryptedSentinel = "[encrypted]"

// Store implements registrystore.DocumentStore using GORM.
type Store struct {
	db     *gorm.DB
	cfg    *config.Config
	engine *crypto.Engine
	secret []byte

	// folderMoveLocks serializes folder moves per owner so two concurrent
	// moves cannot each pass the cycle check and then combine into a cycle.
	folderMoveLocks sync.Map // ownerID -> *sync.Mutex
}

func newStore(db *gorm.DB, cfg *config.Config) *Store {
	cache := crypto.NewKeyCache(cfg.KeyCacheSize)
	return &Store{
		db:     db,
		cfg:    cfg,
		engine: crypto.NewEngine(cache, cfg.KDFIterations),
		secret: []byte(cfg.EncryptionSecret),
	}
}

// ownerLock returns the mutex serializing folder moves for one owner.
// Entries are never evicted: removing a mutex another goroutine still holds
// would let two moves for the same owner interleave. The map grows one mutex
// per owner that has ever moved a folder in this process.
func (s *Store) ownerLock(ownerID string) *sync.Mutex {
	mu, _ := s.folderMoveLocks.LoadOrStore(ownerID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// encryptField seals value into raw envelope columns. The returned legacy
// string is the sentinel placeholder stored in the plaintext column.
func (s *Store) encryptField(value string) (legacy string, ciphertext, salt, nonce []byte, err error) {
	env, err := s.engine.Encrypt([]byte(value), s.secret)
	if err != nil {
		return "", nil, nil, nil, err
	}
	ciphertext, salt, nonce, err = env.Decode()
	if err != nil {
		return "", nil, nil, nil, err
	}
	return encryptedSentinel, ciphertext, salt, nonce, nil
}

// decryptField opens one field's envelope columns, falling back to the legacy
// plaintext column for pre-encryption rows. It returns the value and the
// field state reported to API clients.
func (s *Store) decryptField(legacy string, ciphertext, salt, nonce []byte) (string, string, error) {
	var env *crypto.Envelope
	if len(ciphertext) > 0 {
		e := crypto.NewEnvelope(ciphertext, salt, nonce)
		env = &e
	}
	res := s.engine.DecryptField(legacy, env, s.secret)
	switch res.State {
	case crypto.FieldDecrypted:
		return res.Value, registrystore.FieldStateDecrypted, nil
	case crypto.FieldFellBack:
		return res.Value, registrystore.FieldStatePlaintext, nil
	default:
		// Envelope present but unreadable. If the legacy column still holds
		// real plaintext (not the sentinel, not empty), serve that.
		if legacy != "" && legacy != encryptedSentinel {
			return legacy, registrystore.FieldStatePlaintext, nil
		}
		return "", "", res.Err
	}
}

// decryptFieldLenient is decryptField for titles and folder names, which
// never hard-fail: an unreadable envelope degrades to the legacy column so a
// bad row shows its "[encrypted]" placeholder instead of breaking a listing.
func (s *Store) decryptFieldLenient(legacy string, ciphertext, salt, nonce []byte) (string, string) {
	value, state, err := s.decryptField(legacy, ciphertext, salt, nonce)
	if err != nil {
		return legacy, registrystore.FieldStatePlaintext
	}
	return value, state
}

func validateName(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return &ValidationError{Field: field, Message: "must not be empty"}
	}
	return nil
}
