// Package workingset exposes the active context routes: the set of documents a
// user has pinned for inclusion in their assistant prompt.
package workingset

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
		Order: 120,
		Loader: func(r *gin.Engine) error {
			return nil // routes are mounted by the serve command after store init
		},
	})
}

// MountRoutes mounts active context routes on the given router.
func MountRoutes(r *gin.Engine, store registrystore.DocumentStore, cfg *config.Config, auth gin.HandlerFunc) {
	g := r.Group("/v1", auth)

	g.GET("/context", func(c *gin.Context) {
		getContext(c, store)
	})
	g.PUT("/context", func(c *gin.Context) {
		replaceContext(c, store)
	})
	g.POST("/context/documents/:documentId", func(c *gin.Context) {
		pinDocument(c, store)
	})
	g.DELETE("/context/documents/:documentId", func(c *gin.Context) {
		unpinDocument(c, store)
	})
}

func getContext(c *gin.Context, store registrystore.DocumentStore) {
	userID := security.GetUserID(c)
	items, err := store.GetActiveContext(c.Request.Context(), userID)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": items})
}

func replaceContext(c *gin.Context, store registrystore.DocumentStore) {
	userID := security.GetUserID(c)
	var req struct {
		DocumentIDs []string `json:"documentIds"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ids := make([]uuid.UUID, len(req.DocumentIDs))
	for i, raw := range req.DocumentIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid document id: " + raw})
			return
		}
		ids[i] = id
	}

	if err := store.ReplaceActiveContext(c.Request.Context(), userID, ids); err != nil {
		handleError(c, err)
		return
	}

	items, err := store.GetActiveContext(c.Request.Context(), userID)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": items})
}

func pinDocument(c *gin.Context, store registrystore.DocumentStore) {
	userID := security.GetUserID(c)
	documentID, err := uuid.Parse(c.Param("documentId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid documentId"})
		return
	}
	if err := store.PinDocument(c.Request.Context(), userID, documentID); err != nil {
		handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func unpinDocument(c *gin.Context, store registrystore.DocumentStore) {
	userID := security.GetUserID(c)
	documentID, err := uuid.Parse(c.Param("documentId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid documentId"})
		return
	}
	if err := store.UnpinDocument(c.Request.Context(), userID, documentID); err != nil {
		handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func handleError(c *gin.Context, err error) {
	var notFound *registrystore.NotFoundError
	var validation *registrystore.ValidationError
	var forbidden *registrystore.ForbiddenError

	switch {
	case errors.As(err, &notFound):
		c.JSON(http.StatusNotFound, gin.H{"code": "not_found", "error": err.Error()})
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, gin.H{"code": "validation_error", "error": err.Error(), "field": validation.Field})
	case errors.As(err, &forbidden):
		c.JSON(http.StatusForbidden, gin.H{"code": "forbidden", "error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
