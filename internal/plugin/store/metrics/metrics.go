package metrics

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/chirino/document-service/internal/registry/store"
	"github.com/chirino/document-service/internal/security"
)

// Wrap returns a DocumentStore that records StoreLatency for every operation.
func Wrap(inner store.DocumentStore) store.DocumentStore {
	return &metricsStore{inner: inner}
}

type metricsStore struct {
	inner store.DocumentStore
}

func observe(op string, start time.Time) {
	if security.StoreLatency != nil {
		security.StoreLatency.WithLabelValues(op).Observe(time.Since(start).Seconds())
	}
}

func (m *metricsStore) CreateDocument(ctx context.Context, userID string, title string, body string, folderID *uuid.UUID) (*store.DocumentDetail, error) {
	defer observe("create_document", time.Now())
	return m.inner.CreateDocument(ctx, userID, title, body, folderID)
}

func (m *metricsStore) ListDocuments(ctx context.Context, userID string, filter *store.FolderFilter) ([]store.DocumentSummary, error) {
	defer observe("list_documents", time.Now())
	return m.inner.ListDocuments(ctx, userID, filter)
}

func (m *metricsStore) GetDocument(ctx context.Context, documentID uuid.UUID) (*store.DocumentDetail, error) {
	defer observe("get_document", time.Now())
	return m.inner.GetDocument(ctx, documentID)
}

func (m *metricsStore) GetDocumentOwner(ctx context.Context, documentID uuid.UUID) (string, error) {
	defer observe("get_document_owner", time.Now())
	return m.inner.GetDocumentOwner(ctx, documentID)
}

func (m *metricsStore) UpdateDocument(ctx context.Context, documentID uuid.UUID, update store.DocumentUpdate) (*store.DocumentDetail, error) {
	defer observe("update_document", time.Now())
	return m.inner.UpdateDocument(ctx, documentID, update)
}

func (m *metricsStore) RenameDocumentForOwner(ctx context.Context, userID string, documentID uuid.UUID, title string) (*store.DocumentDetail, error) {
	defer observe("rename_document", time.Now())
	return m.inner.RenameDocumentForOwner(ctx, userID, documentID, title)
}

func (m *metricsStore) MoveDocumentForOwner(ctx context.Context, userID string, documentID uuid.UUID, folderID *uuid.UUID) (*store.DocumentDetail, error) {
	defer observe("move_document", time.Now())
	return m.inner.MoveDocumentForOwner(ctx, userID, documentID, folderID)
}

func (m *metricsStore) SetDocumentLockedForOwner(ctx context.Context, userID string, documentID uuid.UUID, locked bool) (*store.DocumentDetail, error) {
	defer observe("set_document_locked", time.Now())
	return m.inner.SetDocumentLockedForOwner(ctx, userID, documentID, locked)
}

func (m *metricsStore) DeleteDocumentForOwner(ctx context.Context, userID string, documentID uuid.UUID) error {
	defer observe("delete_document", time.Now())
	return m.inner.DeleteDocumentForOwner(ctx, userID, documentID)
}

func (m *metricsStore) CreateFolder(ctx context.Context, userID string, name string, parentFolderID *uuid.UUID) (*store.FolderSummary, error) {
	defer observe("create_folder", time.Now())
	return m.inner.CreateFolder(ctx, userID, name, parentFolderID)
}

func (m *metricsStore) ListFolders(ctx context.Context, userID string) ([]store.FolderSummary, error) {
	defer observe("list_folders", time.Now())
	return m.inner.ListFolders(ctx, userID)
}

func (m *metricsStore) GetFolder(ctx context.Context, folderID uuid.UUID) (*store.FolderSummary, error) {
	defer observe("get_folder", time.Now())
	return m.inner.GetFolder(ctx, folderID)
}

func (m *metricsStore) GetFolderOwner(ctx context.Context, folderID uuid.UUID) (string, error) {
	defer observe("get_folder_owner", time.Now())
	return m.inner.GetFolderOwner(ctx, folderID)
}

func (m *metricsStore) GetFolderHierarchy(ctx context.Context, userID string) (map[uuid.UUID]*uuid.UUID, error) {
	defer observe("get_folder_hierarchy", time.Now())
	return m.inner.GetFolderHierarchy(ctx, userID)
}

func (m *metricsStore) RenameFolderForOwner(ctx context.Context, userID string, folderID uuid.UUID, name string) (*store.FolderSummary, error) {
	defer observe("rename_folder", time.Now())
	return m.inner.RenameFolderForOwner(ctx, userID, folderID, name)
}

func (m *metricsStore) MoveFolderForOwner(ctx context.Context, userID string, folderID uuid.UUID, parentFolderID *uuid.UUID) (*store.FolderSummary, error) {
	defer observe("move_folder", time.Now())
	return m.inner.MoveFolderForOwner(ctx, userID, folderID, parentFolderID)
}

func (m *metricsStore) SetFolderLockedForOwner(ctx context.Context, userID string, folderID uuid.UUID, locked bool) (*store.FolderSummary, error) {
	defer observe("set_folder_locked", time.Now())
	return m.inner.SetFolderLockedForOwner(ctx, userID, folderID, locked)
}

func (m *metricsStore) DeleteFolderForOwner(ctx context.Context, userID string, folderID uuid.UUID) error {
	defer observe("delete_folder", time.Now())
	return m.inner.DeleteFolderForOwner(ctx, userID, folderID)
}

func (m *metricsStore) GetActiveContext(ctx context.Context, userID string) ([]store.ActiveContextItem, error) {
	defer observe("get_active_context", time.Now())
	return m.inner.GetActiveContext(ctx, userID)
}

func (m *metricsStore) ReplaceActiveContext(ctx context.Context, userID string, documentIDs []uuid.UUID) error {
	defer observe("replace_active_context", time.Now())
	return m.inner.ReplaceActiveContext(ctx, userID, documentIDs)
}

func (m *metricsStore) PinDocument(ctx context.Context, userID string, documentID uuid.UUID) error {
	defer observe("pin_document", time.Now())
	return m.inner.PinDocument(ctx, userID, documentID)
}

func (m *metricsStore) UnpinDocument(ctx context.Context, userID string, documentID uuid.UUID) error {
	defer observe("unpin_document", time.Now())
	return m.inner.UnpinDocument(ctx, userID, documentID)
}
