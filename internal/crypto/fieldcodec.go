package crypto

// FieldState tags the outcome of a field decryption.
type FieldState int

const (
	// FieldDecrypted means the envelope decrypted cleanly.
	FieldDecrypted FieldState = iota
	// FieldFellBack means no envelope was present and the legacy plaintext
	// column value was returned verbatim (pre-encryption rows).
	FieldFellBack
	// FieldFailed means an envelope was present but did not decrypt.
	FieldFailed
)

// FieldResult is a decrypted field value with its provenance, letting callers
// pick a per-field failure policy: titles and folder names fall back to the
// legacy column, document bodies treat FieldFailed as a hard error.
type FieldResult struct {
	Value string
	State FieldState
	Err   error
}

// DecryptField decrypts one field. When env is nil or zero the legacy value
// is returned as FieldFellBack. A decryption failure is reported as
// FieldFailed with the legacy value still populated, so callers that tolerate
// migration inconsistencies can use it directly.
func (e *Engine) DecryptField(legacy string, env *Envelope, secret []byte) FieldResult {
	if env == nil || env.IsZero() {
		return FieldResult{Value: legacy, State: FieldFellBack}
	}
	plaintext, err := e.Decrypt(*env, secret)
	if err != nil {
		return FieldResult{Value: legacy, State: FieldFailed, Err: err}
	}
	return FieldResult{Value: string(plaintext), State: FieldDecrypted}
}

// DecryptFieldWithFallback decrypts one field and degrades to the legacy
// plaintext on any failure. The legacy column typically holds a sentinel like
// "[encrypted]" once the real value is enveloped, so an inconsistent row shows
// a visible placeholder instead of failing the whole read. Do not tighten this
// into an error: the fallback is the designed migration behavior.
func (e *Engine) DecryptFieldWithFallback(legacy string, env *Envelope, secret []byte) string {
	return e.DecryptField(legacy, env, secret).Value
}
