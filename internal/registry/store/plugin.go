package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DocumentSummary is a lightweight document representation for lists.
type DocumentSummary struct {
	ID          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	OwnerUserID string     `json:"ownerUserId"`
	FolderID    *uuid.UUID `json:"folderId,omitempty"`
	Locked      bool       `json:"locked"`
	TitleState  string     `json:"titleState,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// DocumentDetail is the full document for get/create/update.
type DocumentDetail struct {
	DocumentSummary
	Body      string `json:"body"`
	BodyState string `json:"bodyState,omitempty"`
}

// Content field states reported on decrypted documents and folders.
// A plaintext state means the row predates encryption and was served
// from its legacy column.
const (
	FieldStateDecrypted = "decrypted"
	FieldStatePlaintext = "plaintext"
)

// FolderSummary is a folder representation for lists and get.
type FolderSummary struct {
	ID             uuid.UUID  `json:"id"`
	Name           string     `json:"name"`
	OwnerUserID    string     `json:"ownerUserId"`
	ParentFolderID *uuid.UUID `json:"parentFolderId,omitempty"`
	Locked         bool       `json:"locked"`
	NameState      string     `json:"nameState,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// ActiveContextItem is a pinned document in a user's active context.
type ActiveContextItem struct {
	DocumentID uuid.UUID `json:"documentId"`
	Title      string    `json:"title"`
	PinnedAt   time.Time `json:"pinnedAt"`
}

// FolderFilter filters document listings by folder.
type FolderFilter struct {
	Mode     string // "any", "root", "folder"
	FolderID *uuid.UUID
}

const (
	FolderFilterModeAny    = "any"
	FolderFilterModeRoot   = "root"
	FolderFilterModeFolder = "folder"
)

// ParseFolderFilter parses API folder filter values:
// ""/"any"  => documents in any folder
// "root"    => documents not in any folder
// "<uuid>"  => documents in that folder
func ParseFolderFilter(raw string) (*FolderFilter, error) {
	value := strings.TrimSpace(strings.ToLower(raw))
	switch value {
	case "", FolderFilterModeAny:
		return &FolderFilter{Mode: FolderFilterModeAny}, nil
	case FolderFilterModeRoot:
		return &FolderFilter{Mode: FolderFilterModeRoot}, nil
	default:
		id, err := uuid.Parse(value)
		if err != nil {
			return nil, fmt.Errorf("invalid folder filter %q; expected any, root, or a folder id", raw)
		}
		return &FolderFilter{Mode: FolderFilterModeFolder, FolderID: &id}, nil
	}
}

// DocumentUpdate defines mutable document fields. Nil fields are left unchanged.
type DocumentUpdate struct {
	Title    *string
	Body     *string
	FolderID **uuid.UUID
}

// DocumentStore defines the primary data access interface for the document service.
//
// Two ownership styles coexist by design. Get/Update take no user ID; callers
// resolve GetDocumentOwner first and enforce access at the boundary. The
// *ForOwner operations fold the ownership check into the write itself so a row
// owned by someone else is indistinguishable from a missing row.
type DocumentStore interface {
	// Documents
	CreateDocument(ctx context.Context, userID string, title string, body string, folderID *uuid.UUID) (*DocumentDetail, error)
	ListDocuments(ctx context.Context, userID string, filter *FolderFilter) ([]DocumentSummary, error)
	GetDocument(ctx context.Context, documentID uuid.UUID) (*DocumentDetail, error)
	GetDocumentOwner(ctx context.Context, documentID uuid.UUID) (string, error)
	UpdateDocument(ctx context.Context, documentID uuid.UUID, update DocumentUpdate) (*DocumentDetail, error)
	RenameDocumentForOwner(ctx context.Context, userID string, documentID uuid.UUID, title string) (*DocumentDetail, error)
	MoveDocumentForOwner(ctx context.Context, userID string, documentID uuid.UUID, folderID *uuid.UUID) (*DocumentDetail, error)
	SetDocumentLockedForOwner(ctx context.Context, userID string, documentID uuid.UUID, locked bool) (*DocumentDetail, error)
	DeleteDocumentForOwner(ctx context.Context, userID string, documentID uuid.UUID) error

	// Folders
	CreateFolder(ctx context.Context, userID string, name string, parentFolderID *uuid.UUID) (*FolderSummary, error)
	ListFolders(ctx context.Context, userID string) ([]FolderSummary, error)
	GetFolder(ctx context.Context, folderID uuid.UUID) (*FolderSummary, error)
	GetFolderOwner(ctx context.Context, folderID uuid.UUID) (string, error)
	GetFolderHierarchy(ctx context.Context, userID string) (map[uuid.UUID]*uuid.UUID, error)
	RenameFolderForOwner(ctx context.Context, userID string, folderID uuid.UUID, name string) (*FolderSummary, error)
	MoveFolderForOwner(ctx context.Context, userID string, folderID uuid.UUID, parentFolderID *uuid.UUID) (*FolderSummary, error)
	SetFolderLockedForOwner(ctx context.Context, userID string, folderID uuid.UUID, locked bool) (*FolderSummary, error)
	DeleteFolderForOwner(ctx context.Context, userID string, folderID uuid.UUID) error

	// Active context
	GetActiveContext(ctx context.Context, userID string) ([]ActiveContextItem, error)
	ReplaceActiveContext(ctx context.Context, userID string, documentIDs []uuid.UUID) error
	PinDocument(ctx context.Context, userID string, documentID uuid.UUID) error
	UnpinDocument(ctx context.Context, userID string, documentID uuid.UUID) error
}

// Loader creates a DocumentStore from config.
type Loader func(ctx context.Context) (DocumentStore, error)

// Plugin represents a store plugin.
type Plugin struct {
	Name   string
	Loader Loader
}

var plugins []Plugin

// Register adds a store plugin.
func Register(p Plugin) {
	plugins = append(plugins, p)
}

// Names returns all registered store plugin names.
func Names() []string {
	names := make([]string, len(plugins))
	for i, p := range plugins {
		names[i] = p.Name
	}
	return names
}

// Select returns the loader for the named store plugin.
func Select(name string) (Loader, error) {
	for _, p := range plugins {
		if p.Name == name {
			return p.Loader, nil
		}
	}
	return nil, fmt.Errorf("unknown store %q; valid: %v", name, Names())
}
