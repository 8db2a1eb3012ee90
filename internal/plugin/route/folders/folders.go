package folders

import (
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
		Order: 110,
		Loader: func(r *gin.Engine) error {
			return nil // routes are mounted by the serve command after store init
		},
	})
}

// MountRoutes mounts folder routes on the given router.
func MountRoutes(r *gin.Engine, store registrystore.DocumentStore, cfg *config.Config, auth gin.HandlerFunc) {
	g := r.Group("/v1", auth)

	g.POST("/folders", func(c *gin.Context) {
		createFolder(c, store)
	})
	g.GET("/folders", func(c *gin.Context) {
		listFolders(c, store)
	})
	g.GET("/folders/:folderId", func(c *gin.Context) {
		getFolder(c, store)
	})
	g.GET("/folders/hierarchy", func(c *gin.Context) {
		getHierarchy(c, store)
	})
	g.POST("/folders/:folderId/rename", func(c *gin.Context) {
		renameFolder(c, store)
	})
	g.POST("/folders/:folderId/move", func(c *gin.Context) {
		moveFolder(c, store)
	})
	g.POST("/folders/:folderId/lock", func(c *gin.Context) {
		lockFolder(c, store)
	})
	g.DELETE("/folders/:folderId", func(c *gin.Context) {
		deleteFolder(c, store)
	})
}

func createFolder(c *gin.Context, store registrystore.DocumentStore) {
	userID := security.GetUserID(c)
	var req struct {
		Name           string  `json:"name"`
		ParentFolderID *string `json:"parentFolderId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var parentID *uuid.UUID
	if req.ParentFolderID != nil {
		id, err := uuid.Parse(*req.ParentFolderID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid parentFolderId"})
			return
		}
		parentID = &id
	}

	folder, err := store.CreateFolder(c.Request.Context(), userID, req.Name, parentID)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, folder)
}

func listFolders(c *gin.Context, store registrystore.DocumentStore) {
	userID := security.GetUserID(c)
	summaries, err := store.ListFolders(c.Request.Context(), userID)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": summaries})
}

func getFolder(c *gin.Context, store registrystore.DocumentStore) {
	userID := security.GetUserID(c)
	folderID, ok := pathUUID(c, "folderId")
	if !ok {
		return
	}

	owner, err := store.GetFolderOwner(c.Request.Context(), folderID)
	if err != nil {
		handleError(c, err)
		return
	}
	if owner != userID {
		handleError(c, &registrystore.ForbiddenError{})
		return
	}

	folder, err := store.GetFolder(c.Request.Context(), folderID)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, folder)
}

// getHierarchy returns the caller's folder parent map in one response, the
// bulk form clients use to render the tree without N lookups.
func getHierarchy(c *gin.Context, store registrystore.DocumentStore) {
	userID := security.GetUserID(c)
	hierarchy, err := store.GetFolderHierarchy(c.Request.Context(), userID)
	if err != nil {
		handleError(c, err)
		return
	}

	parents := make(map[string]*uuid.UUID, len(hierarchy))
	for id, parent := range hierarchy {
		parents[id.String()] = parent
	}
	c.JSON(http.StatusOK, gin.H{"parents": parents})
}

func renameFolder(c *gin.Context, store registrystore.DocumentStore) {
	userID := security.GetUserID(c)
	folderID, ok := pathUUID(c, "folderId")
	if !ok {
		return
	}
	var req struct {
		Name string `json:"name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	folder, err := store.RenameFolderForOwner(c.Request.Context(), userID, folderID, req.Name)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, folder)
}

func moveFolder(c *gin.Context, store registrystore.DocumentStore) {
	userID := security.GetUserID(c)
	folderID, ok := pathUUID(c, "folderId")
	if !ok {
		return
	}
	var req struct {
		ParentFolderID *string `json:"parentFolderId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var parentID *uuid.UUID
	if req.ParentFolderID != nil {
		id, err := uuid.Parse(*req.ParentFolderID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid parentFolderId"})
			return
		}
		parentID = &id
	}

	folder, err := store.MoveFolderForOwner(c.Request.Context(), userID, folderID, parentID)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, folder)
}

func lockFolder(c *gin.Context, store registrystore.DocumentStore) {
	userID := security.GetUserID(c)
	folderID, ok := pathUUID(c, "folderId")
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

	folder, err := store.SetFolderLockedForOwner(c.Request.Context(), userID, folderID, req.Locked)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, folder)
}

func deleteFolder(c *gin.Context, store registrystore.DocumentStore) {
	userID := security.GetUserID(c)
	folderID, ok := pathUUID(c, "folderId")
	if !ok {
		return
	}
	if err := store.DeleteFolderForOwner(c.Request.Context(), userID, folderID); err != nil {
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
