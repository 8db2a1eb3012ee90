// Package system serves the operational endpoints of the document service:
// liveness, readiness, and Prometheus metrics. These mount on the management
// listener when one is configured, or on the API listener otherwise.
package system

import (
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	registryroute "github.com/chirino/document-service/internal/registry/route"
)

var (
	ready     atomic.Bool
	startedAt = time.Now()
)

// MarkReady flips the readiness probe to ready. StartServer calls it after
// migrations have run, the store is open, and the listener is bound; before
// that /ready reports 503 so orchestrators hold traffic.
func MarkReady() {
	ready.Store(true)
}

func init() {
	registryroute.Register(registryroute.Plugin{
		Order:  0,
		Target: registryroute.TargetManagement,
		Loader: mount,
	})
}

func mount(r *gin.Engine) error {
	r.GET("/health", health)
	r.GET("/ready", readiness)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	return nil
}

// health is the liveness probe: the process is up and serving.
func health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "up",
		"uptime": time.Since(startedAt).Round(time.Second).String(),
	})
}

// readiness reports whether initialization has completed.
func readiness(c *gin.Context) {
	if !ready.Load() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "initializing"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
