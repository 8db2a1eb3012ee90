// Package crypto implements the field-encryption engine for the document
// service: PBKDF2 key derivation with a bounded LRU key cache, AES-256-GCM
// sealing into a three-field envelope, and the legacy-plaintext field codec.
package crypto

import (
	"encoding/base64"
	"fmt"
)

// Envelope is one encrypted field: ciphertext (with the 16-byte GCM tag
// appended), the KDF salt, and the GCM nonce, each base64 encoded.
type Envelope struct {
	Ciphertext string `json:"ciphertext"`
	Salt       string `json:"salt"`
	Nonce      string `json:"nonce"`
}

// NewEnvelope base64-encodes the raw envelope fields.
func NewEnvelope(ciphertext, salt, nonce []byte) Envelope {
	return Envelope{
		Ciphertext: base64.StdEncoding.EncodeToString(ciphertext),
		Salt:       base64.StdEncoding.EncodeToString(salt),
		Nonce:      base64.StdEncoding.EncodeToString(nonce),
	}
}

// IsZero reports whether the envelope carries no ciphertext. Rows written
// before encryption was enabled have zero envelopes.
func (e Envelope) IsZero() bool {
	return e.Ciphertext == "" && e.Salt == "" && e.Nonce == ""
}

// Decode returns the raw ciphertext, salt, and nonce bytes.
func (e Envelope) Decode() (ciphertext, salt, nonce []byte, err error) {
	if ciphertext, err = base64.StdEncoding.DecodeString(e.Ciphertext); err != nil {
		return nil, nil, nil, fmt.Errorf("decoding ciphertext: %w", err)
	}
	if salt, err = base64.StdEncoding.DecodeString(e.Salt); err != nil {
		return nil, nil, nil, fmt.Errorf("decoding salt: %w", err)
	}
	if nonce, err = base64.StdEncoding.DecodeString(e.Nonce); err != nil {
		return nil, nil, nil, fmt.Errorf("decoding nonce: %w", err)
	}
	return ciphertext, salt, nonce, nil
}
