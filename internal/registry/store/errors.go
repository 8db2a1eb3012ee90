package store

import "fmt"

// NotFoundError indicates the resource was not found (or user lacks access).
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ValidationError indicates a client-side validation failure.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on %s: %s", e.Field, e.Message)
}

// CycleError indicates a folder move that would make a folder its own ancestor.
type CycleError struct {
	FolderID string
	ParentID string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("moving folder %s under %s would create a cycle", e.FolderID, e.ParentID)
}

// ConflictError indicates a uniqueness/conflict violation.
type ConflictError struct {
	Message string
	Code    string
	Details map[string]interface{}
}

func (e *ConflictError) Error() string {
	return e.Message
}

// ForbiddenError indicates insufficient access.
type ForbiddenError struct{}

func (e *ForbiddenError) Error() string {
	return "forbidden"
}

// DecryptionError indicates stored content could not be decrypted and no
// legacy plaintext fallback was available.
type DecryptionError struct {
	Resource string
	ID       string
	Field    string
}

func (e *DecryptionError) Error() string {
	return fmt.Sprintf("failed to decrypt %s for %s %s", e.Field, e.Resource, e.ID)
}
