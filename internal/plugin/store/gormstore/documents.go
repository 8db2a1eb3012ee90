package gormstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/chirino/document-service/internal/model"
	registrystore "github.com/chirino/document-service/internal/registry/store"
)

func (s *Store) CreateDocument(ctx context.Context, userID string, title string, body string, folderID *uuid.UUID) (*registrystore.DocumentDetail, error) {
	if err := validateName("title", title); err != nil {
		return nil, err
	}
	if folderID != nil {
		if err := s.requireFolderOwned(ctx, userID, *folderID); err != nil {
			return nil, err
		}
	}

	legacyTitle, titleCt, titleSalt, titleNonce, err := s.encryptField(title)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt title: %w", err)
	}
	_, bodyCt, bodySalt, bodyNonce, err := s.encryptField(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt body: %w", err)
	}

	now := time.Now().UTC()
	doc := model.Document{
		ID:              uuid.New(),
		OwnerID:         userID,
		Title:           legacyTitle,
		TitleCiphertext: titleCt,
		TitleSalt:       titleSalt,
		TitleNonce:      titleNonce,
		BodyCiphertext:  bodyCt,
		BodySalt:        bodySalt,
		BodyNonce:       bodyNonce,
		FolderID:        folderID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.db.WithContext(ctx).Create(&doc).Error; err != nil {
		return nil, fmt.Errorf("failed to create document: %w", err)
	}

	return &registrystore.DocumentDetail{
		DocumentSummary: registrystore.DocumentSummary{
			ID:          doc.ID,
			Title:       title,
			OwnerUserID: userID,
			FolderID:    folderID,
			TitleState:  registrystore.FieldStateDecrypted,
			CreatedAt:   now,
			UpdatedAt:   now,
		},
		Body:      body,
		BodyState: registrystore.FieldStateDecrypted,
	}, nil
}

func (s *Store) ListDocuments(ctx context.Context, userID string, filter *registrystore.FolderFilter) ([]registrystore.DocumentSummary, error) {
	tx := s.db.WithContext(ctx).Where("owner_id = ?", userID)
	if filter != nil {
		switch filter.Mode {
		case registrystore.FolderFilterModeRoot:
			tx = tx.Where("folder_id IS NULL")
		case registrystore.FolderFilterModeFolder:
			tx = tx.Where("folder_id = ?", *filter.FolderID)
		}
	}

	var docs []model.Document
	// Secondary id ordering keeps the listing stable when rows share an
	// updated_at timestamp.
	if err := tx.Order("updated_at DESC").Order("id DESC").Find(&docs).Error; err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}

	summaries := make([]registrystore.DocumentSummary, len(docs))
	for i, doc := range docs {
		summaries[i] = s.documentSummary(&doc)
	}
	return summaries, nil
}

func (s *Store) GetDocument(ctx context.Context, documentID uuid.UUID) (*registrystore.DocumentDetail, error) {
	doc, err := s.getDocumentRow(ctx, documentID)
	if err != nil {
		return nil, err
	}
	return s.documentDetail(doc)
}

func (s *Store) GetDocumentOwner(ctx context.Context, documentID uuid.UUID) (string, error) {
	var doc model.Document
	err := s.db.WithContext(ctx).Select("owner_id").Where("id = ?", documentID).First(&doc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", &NotFoundError{Resource: "document", ID: documentID.String()}
	}
	if err != nil {
		return "", fmt.Errorf("failed to load document owner: %w", err)
	}
	return doc.OwnerID, nil
}

// UpdateDocument takes no user ID. Callers resolve GetDocumentOwner first and
// enforce access at the boundary before mutating.
func (s *Store) UpdateDocument(ctx context.Context, documentID uuid.UUID, update registrystore.DocumentUpdate) (*registrystore.DocumentDetail, error) {
	doc, err := s.getDocumentRow(ctx, documentID)
	if err != nil {
		return nil, err
	}

	changes := map[string]interface{}{
		"updated_at": time.Now().UTC(),
	}
	if update.Title != nil {
		if err := validateName("title", *update.Title); err != nil {
			return nil, err
		}
		legacy, ct, salt, nonce, err := s.encryptField(*update.Title)
		if err != nil {
			return nil, fmt.Errorf("failed to encrypt title: %w", err)
		}
		changes["title"] = legacy
		changes["title_ciphertext"] = ct
		changes["title_salt"] = salt
		changes["title_nonce"] = nonce
	}
	if update.Body != nil {
		_, ct, salt, nonce, err := s.encryptField(*update.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to encrypt body: %w", err)
		}
		changes["body_ciphertext"] = ct
		changes["body_salt"] = salt
		changes["body_nonce"] = nonce
	}
	if update.FolderID != nil {
		if target := *update.FolderID; target != nil {
			if err := s.requireFolderOwned(ctx, doc.OwnerID, *target); err != nil {
				return nil, err
			}
		}
		changes["folder_id"] = *update.FolderID
	}

	if err := s.db.WithContext(ctx).Model(&model.Document{}).Where("id = ?", documentID).Updates(changes).Error; err != nil {
		return nil, fmt.Errorf("failed to update document: %w", err)
	}
	return s.GetDocument(ctx, documentID)
}

// RenameDocumentForOwner folds the ownership check into the UPDATE itself; a
// document owned by someone else is indistinguishable from a missing one.
func (s *Store) RenameDocumentForOwner(ctx context.Context, userID string, documentID uuid.UUID, title string) (*registrystore.DocumentDetail, error) {
	if err := validateName("title", title); err != nil {
		return nil, err
	}
	legacy, ct, salt, nonce, err := s.encryptField(title)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt title: %w", err)
	}
	return s.updateDocumentForOwner(ctx, userID, documentID, map[string]interface{}{
		"title":            legacy,
		"title_ciphertext": ct,
		"title_salt":       salt,
		"title_nonce":      nonce,
	})
}

func (s *Store) MoveDocumentForOwner(ctx context.Context, userID string, documentID uuid.UUID, folderID *uuid.UUID) (*registrystore.DocumentDetail, error) {
	if folderID != nil {
		if err := s.requireFolderOwned(ctx, userID, *folderID); err != nil {
			return nil, err
		}
	}
	return s.updateDocumentForOwner(ctx, userID, documentID, map[string]interface{}{
		"folder_id": folderID,
	})
}

func (s *Store) SetDocumentLockedForOwner(ctx context.Context, userID string, documentID uuid.UUID, locked bool) (*registrystore.DocumentDetail, error) {
	return s.updateDocumentForOwner(ctx, userID, documentID, map[string]interface{}{
		"locked": locked,
	})
}

func (s *Store) DeleteDocumentForOwner(ctx context.Context, userID string, documentID uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND owner_id = ?", documentID, userID).Delete(&model.Document{})
		if res.Error != nil {
			return fmt.Errorf("failed to delete document: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return &NotFoundError{Resource: "document", ID: documentID.String()}
		}
		// Drop the owner's pin of this document too. Explicit rather than FK
		// cascade so the behavior is identical on both backends.
		if err := tx.Where("owner_id = ? AND document_id = ?", userID, documentID).
			Delete(&model.ActiveContextEntry{}).Error; err != nil {
			return fmt.Errorf("failed to remove pins for deleted document: %w", err)
		}
		return nil
	})
}

// --- helpers ---

func (s *Store) getDocumentRow(ctx context.Context, documentID uuid.UUID) (*model.Document, error) {
	var doc model.Document
	err := s.db.WithContext(ctx).Where("id = ?", documentID).First(&doc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &NotFoundError{Resource: "document", ID: documentID.String()}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load document: %w", err)
	}
	return &doc, nil
}

func (s *Store) updateDocumentForOwner(ctx context.Context, userID string, documentID uuid.UUID, changes map[string]interface{}) (*registrystore.DocumentDetail, error) {
	changes["updated_at"] = time.Now().UTC()
	res := s.db.WithContext(ctx).Model(&model.Document{}).
		Where("id = ? AND owner_id = ?", documentID, userID).
		Updates(changes)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to update document: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, &NotFoundError{Resource: "document", ID: documentID.String()}
	}
	return s.GetDocument(ctx, documentID)
}

func (s *Store) requireFolderOwned(ctx context.Context, userID string, folderID uuid.UUID) error {
	owner, err := s.GetFolderOwner(ctx, folderID)
	if err != nil {
		return err
	}
	if owner != userID {
		// Report the folder as missing rather than leaking its existence.
		return &NotFoundError{Resource: "folder", ID: folderID.String()}
	}
	return nil
}

func (s *Store) documentSummary(doc *model.Document) registrystore.DocumentSummary {
	title, titleState := s.decryptFieldLenient(doc.Title, doc.TitleCiphertext, doc.TitleSalt, doc.TitleNonce)
	return registrystore.DocumentSummary{
		ID:          doc.ID,
		Title:       title,
		OwnerUserID: doc.OwnerID,
		FolderID:    doc.FolderID,
		Locked:      doc.Locked,
		TitleState:  titleState,
		CreatedAt:   doc.CreatedAt,
		UpdatedAt:   doc.UpdatedAt,
	}
}

func (s *Store) documentDetail(doc *model.Document) (*registrystore.DocumentDetail, error) {
	// Bodies have no usable legacy column, so an unreadable envelope is a
	// hard error rather than a placeholder.
	body, bodyState, err := s.decryptField("", doc.BodyCiphertext, doc.BodySalt, doc.BodyNonce)
	if err != nil {
		return nil, &DecryptionError{Resource: "document", ID: doc.ID.String(), Field: "body"}
	}
	return &registrystore.DocumentDetail{
		DocumentSummary: s.documentSummary(doc),
		Body:            body,
		BodyState:       bodyState,
	}, nil
}
