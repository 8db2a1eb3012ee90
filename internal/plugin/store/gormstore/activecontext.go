package gormstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	sqlite3 "github.com/mattn/go-sqlite3"
	"gorm.io/gorm"

	"github.com/chirino/document-service/internal/model"
	registrystore "github.com/chirino/document-service/internal/registry/store"
)

// GetActiveContext returns the owner's pinned documents, oldest pin first.
func (s *Store) GetActiveContext(ctx context.Context, userID string) ([]registrystore.ActiveContextItem, error) {
	type row struct {
		DocumentID      uuid.UUID `gorm:"column:document_id"`
		PinnedAt        time.Time `gorm:"column:pinned_at"`
		Title           string    `gorm:"column:title"`
		TitleCiphertext []byte    `gorm:"column:title_ciphertext"`
		TitleSalt       []byte    `gorm:"column:title_salt"`
		TitleNonce      []byte    `gorm:"column:title_nonce"`
	}
	var rows []row
	err := s.db.WithContext(ctx).
		Table("active_context_entries ace").
		Select("ace.document_id, ace.pinned_at, d.title, d.title_ciphertext, d.title_salt, d.title_nonce").
		Joins("JOIN documents d ON d.id = ace.document_id").
		Where("ace.owner_id = ?", userID).
		Order("ace.pinned_at ASC").Order("ace.document_id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load active context: %w", err)
	}

	items := make([]registrystore.ActiveContextItem, len(rows))
	for i, r := range rows {
		title, _ := s.decryptFieldLenient(r.Title, r.TitleCiphertext, r.TitleSalt, r.TitleNonce)
		items[i] = registrystore.ActiveContextItem{
			DocumentID: r.DocumentID,
			Title:      title,
			PinnedAt:   r.PinnedAt,
		}
	}
	return items, nil
}

// ReplaceActiveContext swaps the owner's entire pin set in one transaction.
// Per-entry microsecond offsets on a shared base time keep the requested
// order stable even on backends with coarse timestamp resolution.
func (s *Store) ReplaceActiveContext(ctx context.Context, userID string, documentIDs []uuid.UUID) error {
	seen := make(map[uuid.UUID]bool, len(documentIDs))
	for _, id := range documentIDs {
		if seen[id] {
			return &ValidationError{Field: "documentIds", Message: fmt.Sprintf("duplicate document id %s", id)}
		}
		seen[id] = true
	}
	if len(documentIDs) > 0 {
		var owned int64
		err := s.db.WithContext(ctx).Model(&model.Document{}).
			Where("owner_id = ? AND id IN ?", userID, documentIDs).
			Count(&owned).Error
		if err != nil {
			return fmt.Errorf("failed to verify documents: %w", err)
		}
		if owned != int64(len(documentIDs)) {
			return &NotFoundError{Resource: "document", ID: "one or more requested documents"}
		}
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("owner_id = ?", userID).Delete(&model.ActiveContextEntry{}).Error; err != nil {
			return fmt.Errorf("failed to clear active context: %w", err)
		}
		if len(documentIDs) == 0 {
			return nil
		}
		base := time.Now().UTC()
		entries := make([]model.ActiveContextEntry, len(documentIDs))
		for i, id := range documentIDs {
			entries[i] = model.ActiveContextEntry{
				OwnerID:    userID,
				DocumentID: id,
				PinnedAt:   base.Add(time.Duration(i) * time.Microsecond),
			}
		}
		if err := tx.Create(&entries).Error; err != nil {
			return fmt.Errorf("failed to insert active context entries: %w", err)
		}
		return nil
	})
}

// PinDocument is idempotent: pinning an already pinned document keeps the
// original pinned_at and returns success.
func (s *Store) PinDocument(ctx context.Context, userID string, documentID uuid.UUID) error {
	owner, err := s.GetDocumentOwner(ctx, documentID)
	if err != nil {
		return err
	}
	if owner != userID {
		return &NotFoundError{Resource: "document", ID: documentID.String()}
	}

	entry := model.ActiveContextEntry{
		OwnerID:    userID,
		DocumentID: documentID,
		PinnedAt:   time.Now().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(&entry).Error; err != nil {
		if isUniqueViolation(err) {
			return nil
		}
		return fmt.Errorf("failed to pin document: %w", err)
	}
	return nil
}

// UnpinDocument is idempotent: unpinning a document that is not pinned is a no-op.
func (s *Store) UnpinDocument(ctx context.Context, userID string, documentID uuid.UUID) error {
	err := s.db.WithContext(ctx).
		Where("owner_id = ? AND document_id = ?", userID, documentID).
		Delete(&model.ActiveContextEntry{}).Error
	if err != nil {
		return fmt.Errorf("failed to unpin document: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
		return true
	}
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
