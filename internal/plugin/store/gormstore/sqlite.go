package gormstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/chirino/document-service/internal/config"
	"github.com/chirino/document-service/internal/model"
	registrymigrate "github.com/chirino/document-service/internal/registry/migrate"
	registrystore "github.com/chirino/document-service/internal/registry/store"
)

func init() {
	registrystore.Register(registrystore.Plugin{
		Name: "sqlite",
		Loader: func(ctx context.Context) (registrystore.DocumentStore, error) {
			cfg := config.FromContext(ctx)
			if cfg.EncryptionSecret == "" {
				return nil, fmt.Errorf("encryption secret is required")
			}
			db, err := openSQLite(cfg.DBURL)
			if err != nil {
				return nil, err
			}
			return newStore(db, cfg), nil
		},
	})

	registrymigrate.Register(100, &sqliteMigrator{})
}

func openSQLite(dsn string) (*gorm.DB, error) {
	if dsn == "" {
		dsn = "file::memory:?cache=shared"
	}
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// SQLite serializes writers; a single connection avoids database-locked
	// errors under concurrent requests.
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying db: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	return db, nil
}

type sqliteMigrator struct{}

func (m *sqliteMigrator) Name() string { return "sqlite-schema" }

func (m *sqliteMigrator) Migrate(ctx context.Context) error {
	cfg := config.FromContext(ctx)
	if cfg != nil && !cfg.DatastoreMigrateAtStart {
		return nil
	}
	if cfg.DatastoreType != "sqlite" {
		return nil // skip if not using sqlite
	}
	log.Info("Running migration", "name", m.Name())
	db, err := openSQLite(cfg.DBURL)
	if err != nil {
		return fmt.Errorf("migration: %w", err)
	}
	if err := db.WithContext(ctx).AutoMigrate(
		&model.Document{},
		&model.Folder{},
		&model.ActiveContextEntry{},
	); err != nil {
		return fmt.Errorf("migration: failed to auto-migrate schema: %w", err)
	}
	// A shared in-memory database is destroyed when its last connection
	// closes, and the store has not opened its own connection yet, so only
	// file databases release the migration handle.
	if !isMemoryDSN(cfg.DBURL) {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	log.Info("SQLite schema migration complete")
	return nil
}

func isMemoryDSN(dsn string) bool {
	return dsn == "" || strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory")
}
