package documents

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/chirino/document-service/internal/config"
	registryroute "github.com/chirino/document-service/internal/registry/route"
	registrystore "github.com/chirino/document-service/internal/registry/store"
	"github.com/chirino/document-service/internal/security"
)

func init() {
	registryroute.Register(registryroute.Plugin{
		Order: 100,
		Loader: func(r *gin.Engine) error {
			return nil // routes are mounted by the serve command after store init
		},
	})
}

// MountRoutes mounts document routes on the given router.
// Called after store initialization so the store is available.
func MountRoutes(r *gin.Engine, store registrystore.DocumentStore, cfg *config.Config, auth gin.HandlerFunc) {
	g := r.Group("/v1", auth)

	g.POST("/documents", func(c *gin.Context) {
		createDocument(c, store)
	})
	g.GET("/documents", func(c *gin.Context) {
		listDocuments(c, store)
	})
	g.GET("/documents/:documentId", func(c *gin.Context) {
		getDocument(c, store)
	})
	g.PUT("/documents/:documentId", func(c *gin.Context) {
		updateDocument(c, store)
	})
	g.POST("/documents/:documentId/rename", func(c *gin.Context) {
		renameDocument(c, store)
	})
	g.POST("/documents/:documentId/move", func(c *gin.Context) {
		moveDocument(c, store)
	})
	g.POST("/documents/:documentId/lock", func(c *gin.Context) {
		lockDocument(c, store)
	})
	g.DELETE("/documents/:documentId", func(c *gin.Context) {
		deleteDocument(c, store)
	})
}

func createDocument(c *gin.Context, store registrystore.DocumentStore) {
	userID := security.GetUserID(c)
	var req struct {
		Title    string  `json:"title"`
		Body     string  `json:"body"`
		FolderID *string `json:"folderId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var folderID *uuid.UUID
	if req.FolderID != nil {
		id, err := uuid.Parse(*req.FolderID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid folderId"})
			return
		}
		folderID = &id
	}

	doc, err := store.CreateDocument(c.Request.Context(), userID, req.Title, req.Body, folderID)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, doc)
}

func listDocuments(c *gin.Context, store registrystore.DocumentStore) {
	userID := security.GetUserID(c)
	filter, err := registrystore.ParseFolderFilter(c.Query("folder"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	summaries, err := store.ListDocuments(c.Request.Context(), userID, filter)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": summaries})
}

func getDocument(c *gin.Context, store registrystore.DocumentStore) {
	userID := security.GetUserID(c)
	documentID, ok := pathUUID(c, "documentId")
	if !ok {
		return
	}

	// Ownership is checked here at the boundary; GetDocument itself takes no
	// user ID.
	owner, err := store.GetDocumentOwner(c.Request.Context(), documentID)
	if err != nil {
		handleError(c, err)
		return
	}
	if owner != userID {
		handleError(c, &registrystore.ForbiddenError{})
		return
	}

	doc, err := store.GetDocument(c.Request.Context(), documentID)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

func updateDocument(c *gin.Context, store registrystore.DocumentStore) {
	userID := security.GetUserID(c)
	documentID, ok := pathUUID(c, "documentId")
	if !ok {
		return
	}

	var req struct {
		Title    *string         `json:"title"`
		Body     *string         `json:"body"`
		FolderID json.RawMessage `json:"folderId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	update := registrystore.DocumentUpdate{Title: req.Title, Body: req.Body}
	// folderId distinguishes absent (leave unchanged) from null (move to root),
	// which a plain pointer field cannot represent.
	if len(req.FolderID) > 0 {
		if bytes.Equal(req.FolderID, []byte("null")) {
			var root *uuid.UUID
			update.FolderID = &root
		} else {
			var raw string
			if err := json.Unmarshal(req.FolderID, &raw); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid folderId"})
				return
			}
			id, err := uuid.Parse(raw)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid folderId"})
				return
			}
			target := &id
			update.FolderID = &target
		}
	}

	owner, err := store.GetDocumentOwner(c.Request.Context(), documentID)
	if err != nil {
		handleError(c, err)
		return
	}
	if owner != userID {
		handleError(c, &registrystore.ForbiddenError{})
		return
	}

	doc, err := store.UpdateDocument(c.Request.Context(), documentID, update)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

func renameDocument(c *gin.Context, store registrystore.DocumentStore) {
	userID := security.GetUserID(c)
	documentID, ok := pathUUID(c, "documentId")
	if !ok {
		return
	}
	var req struct {
		Title string `json:"title"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	doc, err := store.RenameDocumentForOwner(c.Request.Context(), userID, documentID, req.Title)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

func moveDocument(c *gin.Context, store registrystore.DocumentStore) {
	userID := security.GetUserID(c)
	documentID, ok := pathUUID(c, "documentId")
	if !ok {
		return
	}
	var req struct {
		FolderID *string `json:"folderId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var folderID *uuid.UUID
	if req.FolderID != nil {
		id, err := uuid.Parse(*req.FolderID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid folderId"})
			return
		}
		folderID = &id
	}

	doc, err := store.MoveDocumentForOwner(c.Request.Context(), userID, documentID, folderID)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

func lockDocument(c *gin.Context, store registrystore.DocumentStore) {
	userID := security.GetUserID(c)
	documentID, ok := pathUUID(c, "documentId")
	if !ok {
		return
	}
	var req struct {
		Locked bool `json:"locked"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	doc, err := store.SetDocumentLockedForOwner(c.Request.Context(), userID, documentID, req.Locked)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

func deleteDocument(c *gin.Context, store registrystore.DocumentStore) {
	userID := security.GetUserID(c)
	documentID, ok := pathUUID(c, "documentId")
	if !ok {
		return
	}
	if err := store.DeleteDocumentForOwner(c.Request.Context(), userID, documentID); err != nil {
		handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func pathUUID(c *gin.Context, key string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(key))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + key})
		return uuid.Nil, false
	}
	return id, true
}

func handleError(c *gin.Context, err error) {
	var notFound *registrystore.NotFoundError
	var validation *registrystore.ValidationError
	var cycle *registrystore.CycleError
	var conflict *registrystore.ConflictError
	var forbidden *registrystore.ForbiddenError
	var decryption *registrystore.DecryptionError

	switch {
	case errors.As(err, &notFound):
		c.JSON(http.StatusNotFound, gin.H{"code": "not_found", "error": err.Error()})
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, gin.H{"code": "validation_error", "error": err.Error(), "field": validation.Field})
	case errors.As(err, &cycle):
		c.JSON(http.StatusBadRequest, gin.H{"code": "cycle_error", "error": err.Error()})
	case errors.As(err, &conflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.As(err, &forbidden):
		c.JSON(http.StatusForbidden, gin.H{"code": "forbidden", "error": err.Error()})
	case errors.As(err, &decryption):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"code": "decryption_error", "error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
