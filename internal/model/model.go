package model

import (
	"time"

	"github.com/google/uuid"
)

// Document is a workspace document. Title and body are encrypted at rest:
// the *_Ciphertext/Salt/Nonce columns hold the envelope, and the plain Title
// column holds either a pre-encryption legacy value or the "[encrypted]"
// sentinel written alongside new envelopes.
type Document struct {
	ID              uuid.UUID  `json:"id"                 gorm:"primaryKey;type:uuid"`
	OwnerID         string     `json:"ownerId"            gorm:"not null;index"`
	Title           string     `json:"-"                  gorm:"not null"`
	TitleCiphertext []byte     `json:"-"                  gorm:"type:bytea"`
	TitleSalt       []byte     `json:"-"                  gorm:"type:bytea"`
	TitleNonce      []byte     `json:"-"                  gorm:"type:bytea"`
	BodyCiphertext  []byte     `json:"-"                  gorm:"type:bytea"`
	BodySalt        []byte     `json:"-"                  gorm:"type:bytea"`
	BodyNonce       []byte     `json:"-"                  gorm:"type:bytea"`
	FolderID        *uuid.UUID `json:"folderId,omitempty" gorm:"type:uuid;index"`
	Locked          bool       `json:"locked"             gorm:"not null"`
	CreatedAt       time.Time  `json:"createdAt"          gorm:"not null"`
	UpdatedAt       time.Time  `json:"updatedAt"          gorm:"not null"`
}

func (Document) TableName() string { return "documents" }

// Folder is a node in a per-owner folder tree. ParentFolderID nil means the
// folder sits at root level. Name is encrypted the same way document titles are.
type Folder struct {
	ID             uuid.UUID  `json:"id"                       gorm:"primaryKey;type:uuid"`
	OwnerID        string     `json:"ownerId"                  gorm:"not null;index"`
	Name           string     `json:"-"                        gorm:"not null"`
	NameCiphertext []byte     `json:"-"                        gorm:"type:bytea"`
	NameSalt       []byte     `json:"-"                        gorm:"type:bytea"`
	NameNonce      []byte     `json:"-"                        gorm:"type:bytea"`
	ParentFolderID *uuid.UUID `json:"parentFolderId,omitempty" gorm:"type:uuid;index"`
	Locked         bool       `json:"locked"                   gorm:"not null"`
	CreatedAt      time.Time  `json:"createdAt"                gorm:"not null"`
	UpdatedAt      time.Time  `json:"updatedAt"                gorm:"not null"`
}

func (Folder) TableName() string { return "folders" }

// ActiveContextEntry is one pinned document in a user's working set.
// Uniqueness over (owner_id, document_id) makes pinning idempotent.
type ActiveContextEntry struct {
	OwnerID    string    `json:"ownerId"    gorm:"primaryKey"`
	DocumentID uuid.UUID `json:"documentId" gorm:"primaryKey;type:uuid"`
	PinnedAt   time.Time `json:"pinnedAt"   gorm:"not null"`
}

func (ActiveContextEntry) TableName() string { return "active_context_entries" }
