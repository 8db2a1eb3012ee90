package gormstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chirino/document-service/internal/config"
	"github.com/chirino/document-service/internal/model"
)

func TestIsMemoryDSN(t *testing.T) {
	assert.True(t, isMemoryDSN(""))
	assert.True(t, isMemoryDSN("file::memory:?cache=shared"))
	assert.True(t, isMemoryDSN("file:scratch?mode=memory&cache=shared"))
	assert.False(t, isMemoryDSN("file:/var/lib/document-service/documents.db"))
	assert.False(t, isMemoryDSN("documents.db"))
}

func sqliteMigratorConfig(dsn string) context.Context {
	cfg := config.DefaultConfig()
	cfg.DatastoreType = "sqlite"
	cfg.DBURL = dsn
	return config.WithContext(context.Background(), &cfg)
}

// The migrator must leave a shared in-memory database alive for the store
// connection that opens after it.
func TestSQLiteMigrator_MemoryDatabaseSurvivesMigration(t *testing.T) {
	dsn := "file:migrator_mem_test?mode=memory&cache=shared"
	require.NoError(t, (&sqliteMigrator{}).Migrate(sqliteMigratorConfig(dsn)))

	db, err := openSQLite(dsn)
	require.NoError(t, err)
	assert.True(t, db.Migrator().HasTable(&model.Document{}))
	assert.True(t, db.Migrator().HasTable(&model.Folder{}))
	assert.True(t, db.Migrator().HasTable(&model.ActiveContextEntry{}))
}

// File databases persist past the migration handle, which is closed.
func TestSQLiteMigrator_FileDatabase(t *testing.T) {
	dsn := "file:" + filepath.Join(t.TempDir(), "documents.db")
	require.NoError(t, (&sqliteMigrator{}).Migrate(sqliteMigratorConfig(dsn)))

	db, err := openSQLite(dsn)
	require.NoError(t, err)
	assert.True(t, db.Migrator().HasTable(&model.Document{}))
}
