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

func (s *Store) CreateFolder(ctx context.Context, userID string, name string, parentFolderID *uuid.UUID) (*registrystore.FolderSummary, error) {
	if err := validateName("name", name); err != nil {
		return nil, err
	}
	if parentFolderID != nil {
		if err := s.requireFolderOwned(ctx, userID, *parentFolderID); err != nil {
			return nil, err
		}
	}

	legacy, ct, salt, nonce, err := s.encryptField(name)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt folder name: %w", err)
	}

	now := time.Now().UTC()
	folder := model.Folder{
		ID:             uuid.New(),
		OwnerID:        userID,
		Name:           legacy,
		NameCiphertext: ct,
		NameSalt:       salt,
		NameNonce:      nonce,
		ParentFolderID: parentFolderID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.db.WithContext(ctx).Create(&folder).Error; err != nil {
		return nil, fmt.Errorf("failed to create folder: %w", err)
	}

	return &registrystore.FolderSummary{
		ID:             folder.ID,
		Name:           name,
		OwnerUserID:    userID,
		ParentFolderID: parentFolderID,
		NameState:      registrystore.FieldStateDecrypted,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

func (s *Store) ListFolders(ctx context.Context, userID string) ([]registrystore.FolderSummary, error) {
	var folders []model.Folder
	err := s.db.WithContext(ctx).
		Where("owner_id = ?", userID).
		Order("updated_at DESC").Order("id DESC").
		Find(&folders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list folders: %w", err)
	}

	summaries := make([]registrystore.FolderSummary, len(folders))
	for i, folder := range folders {
		summaries[i] = s.folderSummary(&folder)
	}
	return summaries, nil
}

func (s *Store) GetFolder(ctx context.Context, folderID uuid.UUID) (*registrystore.FolderSummary, error) {
	folder, err := s.getFolderRow(ctx, folderID)
	if err != nil {
		return nil, err
	}
	summary := s.folderSummary(folder)
	return &summary, nil
}

func (s *Store) GetFolderOwner(ctx context.Context, folderID uuid.UUID) (string, error) {
	var folder model.Folder
	err := s.db.WithContext(ctx).Select("owner_id").Where("id = ?", folderID).First(&folder).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", &NotFoundError{Resource: "folder", ID: folderID.String()}
	}
	if err != nil {
		return "", fmt.Errorf("failed to load folder owner: %w", err)
	}
	return folder.OwnerID, nil
}

// GetFolderHierarchy returns the owner's full parent-pointer map in one query,
// so cycle checks walk memory instead of issuing a query per ancestor.
func (s *Store) GetFolderHierarchy(ctx context.Context, userID string) (map[uuid.UUID]*uuid.UUID, error) {
	var folders []model.Folder
	err := s.db.WithContext(ctx).
		Select("id", "parent_folder_id").
		Where("owner_id = ?", userID).
		Find(&folders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load folder hierarchy: %w", err)
	}

	hierarchy := make(map[uuid.UUID]*uuid.UUID, len(folders))
	for _, folder := range folders {
		hierarchy[folder.ID] = folder.ParentFolderID
	}
	return hierarchy, nil
}

func (s *Store) RenameFolderForOwner(ctx context.Context, userID string, folderID uuid.UUID, name string) (*registrystore.FolderSummary, error) {
	if err := validateName("name", name); err != nil {
		return nil, err
	}
	legacy, ct, salt, nonce, err := s.encryptField(name)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt folder name: %w", err)
	}
	return s.updateFolderForOwner(ctx, userID, folderID, map[string]interface{}{
		"name":            legacy,
		"name_ciphertext": ct,
		"name_salt":       salt,
		"name_nonce":      nonce,
	})
}

// MoveFolderForOwner re-parents a folder after proving the move cannot create
// a cycle. Moves are serialized per owner; without that, two concurrent moves
// could each pass the ancestor walk and together close a loop.
func (s *Store) MoveFolderForOwner(ctx context.Context, userID string, folderID uuid.UUID, parentFolderID *uuid.UUID) (*registrystore.FolderSummary, error) {
	mu := s.ownerLock(userID)
	mu.Lock()
	defer mu.Unlock()

	if parentFolderID != nil {
		if *parentFolderID == folderID {
			return nil, &CycleError{FolderID: folderID.String(), ParentID: parentFolderID.String()}
		}
		if err := s.requireFolderOwned(ctx, userID, *parentFolderID); err != nil {
			return nil, err
		}

		hierarchy, err := s.GetFolderHierarchy(ctx, userID)
		if err != nil {
			return nil, err
		}
		// Walk up from the proposed parent. Reaching the moved folder means
		// the move would make it its own ancestor. The step bound guards
		// against a corrupted hierarchy that already loops.
		ancestor := parentFolderID
		for steps := 0; ancestor != nil && steps <= len(hierarchy); steps++ {
			if *ancestor == folderID {
				return nil, &CycleError{FolderID: folderID.String(), ParentID: parentFolderID.String()}
			}
			ancestor = hierarchy[*ancestor]
		}
	}

	return s.updateFolderForOwner(ctx, userID, folderID, map[string]interface{}{
		"parent_folder_id": parentFolderID,
	})
}

func (s *Store) SetFolderLockedForOwner(ctx context.Context, userID string, folderID uuid.UUID, locked bool) (*registrystore.FolderSummary, error) {
	return s.updateFolderForOwner(ctx, userID, folderID, map[string]interface{}{
		"locked": locked,
	})
}

// DeleteFolderForOwner removes a folder and reparents its contents to root,
// so child folders and documents never dangle on a missing parent.
func (s *Store) DeleteFolderForOwner(ctx context.Context, userID string, folderID uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND owner_id = ?", folderID, userID).Delete(&model.Folder{})
		if res.Error != nil {
			return fmt.Errorf("failed to delete folder: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return &NotFoundError{Resource: "folder", ID: folderID.String()}
		}
		if err := tx.Model(&model.Folder{}).
			Where("owner_id = ? AND parent_folder_id = ?", userID, folderID).
			Update("parent_folder_id", nil).Error; err != nil {
			return fmt.Errorf("failed to reparent child folders: %w", err)
		}
		if err := tx.Model(&model.Document{}).
			Where("owner_id = ? AND folder_id = ?", userID, folderID).
			Update("folder_id", nil).Error; err != nil {
			return fmt.Errorf("failed to reparent documents: %w", err)
		}
		return nil
	})
}

// --- helpers ---

func (s *Store) getFolderRow(ctx context.Context, folderID uuid.UUID) (*model.Folder, error) {
	var folder model.Folder
	err := s.db.WithContext(ctx).Where("id = ?", folderID).First(&folder).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &NotFoundError{Resource: "folder", ID: folderID.String()}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load folder: %w", err)
	}
	return &folder, nil
}

func (s *Store) updateFolderForOwner(ctx context.Context, userID string, folderID uuid.UUID, changes map[string]interface{}) (*registrystore.FolderSummary, error) {
	changes["updated_at"] = time.Now().UTC()
	res := s.db.WithContext(ctx).Model(&model.Folder{}).
		Where("id = ? AND owner_id = ?", folderID, userID).
		Updates(changes)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to update folder: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, &NotFoundError{Resource: "folder", ID: folderID.String()}
	}
	return s.GetFolder(ctx, folderID)
}

func (s *Store) folderSummary(folder *model.Folder) registrystore.FolderSummary {
	name, nameState := s.decryptFieldLenient(folder.Name, folder.NameCiphertext, folder.NameSalt, folder.NameNonce)
	return registrystore.FolderSummary{
		ID:             folder.ID,
		Name:           name,
		OwnerUserID:    folder.OwnerID,
		ParentFolderID: folder.ParentFolderID,
		Locked:         folder.Locked,
		NameState:      nameState,
		CreatedAt:      folder.CreatedAt,
		UpdatedAt:      folder.UpdatedAt,
	}
}
