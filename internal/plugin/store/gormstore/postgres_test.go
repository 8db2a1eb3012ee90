package gormstore_test

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chirino/document-service/internal/config"
	_ "github.com/chirino/document-service/internal/plugin/store/gormstore"
	registrymigrate "github.com/chirino/document-service/internal/registry/migrate"
	registrystore "github.com/chirino/document-service/internal/registry/store"
	"github.com/chirino/document-service/internal/testutil/testpg"
)

// TestPostgresStore exercises the real Postgres schema and driver through a
// disposable container. Set TEST_SKIP_CONTAINERS to run the suite without
// Docker.
func TestPostgresStore(t *testing.T) {
	if os.Getenv("TEST_SKIP_CONTAINERS") != "" {
		t.Skip("container tests disabled")
	}
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	dsn := testpg.StartPostgres(t)

	cfg := config.DefaultConfig()
	cfg.Mode = config.ModeTesting
	cfg.DatastoreType = "postgres"
	cfg.DBURL = dsn
	cfg.EncryptionSecret = "container-test-secret"
	cfg.KDFIterations = 64

	ctx, cancel := context.WithCancel(config.WithContext(context.Background(), &cfg))
	defer cancel()

	require.NoError(t, registrymigrate.RunAll(ctx))
	// Idempotent: running migrations twice must not fail.
	require.NoError(t, registrymigrate.RunAll(ctx))

	loader, err := registrystore.Select("postgres")
	require.NoError(t, err)
	s, err := loader(ctx)
	require.NoError(t, err)

	t.Run("document round trip", func(t *testing.T) {
		doc, err := s.CreateDocument(ctx, "alice", "Container Doc", "body text", nil)
		require.NoError(t, err)

		got, err := s.GetDocument(ctx, doc.ID)
		require.NoError(t, err)
		assert.Equal(t, "Container Doc", got.Title)
		assert.Equal(t, "body text", got.Body)
		assert.Equal(t, registrystore.FieldStateDecrypted, got.TitleState)
	})

	t.Run("ownership isolation", func(t *testing.T) {
		doc, err := s.CreateDocument(ctx, "alice", "Private", "body", nil)
		require.NoError(t, err)

		var notFound *registrystore.NotFoundError
		_, err = s.RenameDocumentForOwner(ctx, "mallory", doc.ID, "Stolen")
		assert.ErrorAs(t, err, &notFound)
	})

	t.Run("pin is idempotent on conflict", func(t *testing.T) {
		doc, err := s.CreateDocument(ctx, "alice", "Pin Me", "body", nil)
		require.NoError(t, err)

		// Second pin hits the primary key and must still succeed.
		require.NoError(t, s.PinDocument(ctx, "alice", doc.ID))
		require.NoError(t, s.PinDocument(ctx, "alice", doc.ID))

		items, err := s.GetActiveContext(ctx, "alice")
		require.NoError(t, err)
		found := 0
		for _, item := range items {
			if item.DocumentID == doc.ID {
				found++
			}
		}
		assert.Equal(t, 1, found)
	})

	t.Run("folder cycle rejected", func(t *testing.T) {
		a, err := s.CreateFolder(ctx, "alice", "A", nil)
		require.NoError(t, err)
		b, err := s.CreateFolder(ctx, "alice", "B", &a.ID)
		require.NoError(t, err)

		var cycleErr *registrystore.CycleError
		_, err = s.MoveFolderForOwner(ctx, "alice", a.ID, &b.ID)
		assert.ErrorAs(t, err, &cycleErr)
	})
}
