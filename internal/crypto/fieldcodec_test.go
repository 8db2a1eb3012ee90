package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecryptField_DecryptedEnvelope(t *testing.T) {
	e := newTestEngine(t)
	secret := []byte("secret")

	env, err := e.Encrypt([]byte("Quarterly plan"), secret)
	require.NoError(t, err)

	res := e.DecryptField("[encrypted]", &env, secret)
	assert.Equal(t, FieldDecrypted, res.State)
	assert.Equal(t, "Quarterly plan", res.Value)
	assert.NoError(t, res.Err)
}

func TestDecryptField_MissingEnvelopeFallsBack(t *testing.T) {
	e := newTestEngine(t)

	res := e.DecryptField("legacy title", nil, []byte("secret"))
	assert.Equal(t, FieldFellBack, res.State)
	assert.Equal(t, "legacy title", res.Value)
	assert.NoError(t, res.Err)

	zero := Envelope{}
	res = e.DecryptField("legacy title", &zero, []byte("secret"))
	assert.Equal(t, FieldFellBack, res.State)
	assert.Equal(t, "legacy title", res.Value)
}

func TestDecryptField_FailureKeepsLegacyValue(t *testing.T) {
	e := newTestEngine(t)

	env, err := e.Encrypt([]byte("original"), []byte("right secret"))
	require.NoError(t, err)

	res := e.DecryptField("[encrypted]", &env, []byte("wrong secret"))
	assert.Equal(t, FieldFailed, res.State)
	assert.Equal(t, "[encrypted]", res.Value)
	assert.ErrorIs(t, res.Err, ErrAuthentication)
}

func TestDecryptFieldWithFallback(t *testing.T) {
	e := newTestEngine(t)
	secret := []byte("secret")

	env, err := e.Encrypt([]byte("readable"), secret)
	require.NoError(t, err)

	assert.Equal(t, "readable", e.DecryptFieldWithFallback("[encrypted]", &env, secret))
	assert.Equal(t, "[encrypted]", e.DecryptFieldWithFallback("[encrypted]", &env, []byte("other")))
	assert.Equal(t, "plain row", e.DecryptFieldWithFallback("plain row", nil, secret))
}
