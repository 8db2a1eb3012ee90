package security

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chirino/document-service/internal/config"
)

func newTestResolver(mode string, apiKeys map[string]string) *TokenResolver {
	cfg := config.DefaultConfig()
	cfg.Mode = mode
	cfg.APIKeys = apiKeys
	return NewTokenResolver(&cfg)
}

func TestResolve_OpaqueTokenIsUserID(t *testing.T) {
	r := newTestResolver(config.ModeTesting, nil)

	id, err := r.Resolve(context.Background(), "alice", "", "")
	require.NoError(t, err)
	assert.Equal(t, "alice", id.UserID)
	assert.Empty(t, id.ClientID)
}

func TestResolve_APIKeyMapsToClientID(t *testing.T) {
	r := newTestResolver(config.ModeProd, map[string]string{"key-123": "assistant-app"})

	id, err := r.Resolve(context.Background(), "alice", "key-123", "")
	require.NoError(t, err)
	assert.Equal(t, "alice", id.UserID)
	assert.Equal(t, "assistant-app", id.ClientID)

	// Unknown API keys are ignored, not fatal.
	id, err = r.Resolve(context.Background(), "alice", "bogus", "")
	require.NoError(t, err)
	assert.Empty(t, id.ClientID)
}

func TestResolve_ClientIDHeaderOnlyInTestingMode(t *testing.T) {
	r := newTestResolver(config.ModeTesting, nil)
	id, err := r.Resolve(context.Background(), "alice", "", "dev-client")
	require.NoError(t, err)
	assert.Equal(t, "dev-client", id.ClientID)

	r = newTestResolver(config.ModeProd, nil)
	id, err = r.Resolve(context.Background(), "alice", "", "dev-client")
	require.NoError(t, err)
	assert.Empty(t, id.ClientID)
}

func TestAuthMiddleware_RejectsMissingAndMalformedHeaders(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AuthMiddleware(newTestResolver(config.ModeTesting, nil)))
	r.GET("/whoami", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"userId": GetUserID(c)})
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/whoami", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Token abc")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer alice")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "alice")
}
