// Package route collects the HTTP surfaces of the document service. Feature
// packages (documents, folders, working set, system) register themselves from
// init(); the serve command drains the registry once the store is up and
// mounts everything in a fixed order.
package route

import (
	"sort"

	"github.com/gin-gonic/gin"
)

// Loader mounts a plugin's routes on the given engine.
type Loader func(r *gin.Engine) error

// Target selects which listener a plugin's routes are served from. Management
// routes move to a dedicated port when one is configured; otherwise they share
// the API listener.
type Target int

const (
	TargetAPI Target = iota
	TargetManagement
)

// Plugin is one registered route surface. Lower Order mounts first, keeping
// static routes like /folders/hierarchy ahead of parameterized siblings.
type Plugin struct {
	Order  int
	Target Target
	Loader Loader
}

var registered []Plugin

// Register adds a route plugin. Called from init() in route packages.
func Register(p Plugin) {
	registered = append(registered, p)
}

func loadersFor(target Target) []Loader {
	plugins := make([]Plugin, 0, len(registered))
	for _, p := range registered {
		if p.Target == target {
			plugins = append(plugins, p)
		}
	}
	sort.SliceStable(plugins, func(i, j int) bool { return plugins[i].Order < plugins[j].Order })

	loaders := make([]Loader, len(plugins))
	for i, p := range plugins {
		loaders[i] = p.Loader
	}
	return loaders
}

// APILoaders returns the loaders for the API listener, in mount order.
func APILoaders() []Loader {
	return loadersFor(TargetAPI)
}

// ManagementLoaders returns the loaders for the management surface, in mount order.
func ManagementLoaders() []Loader {
	return loadersFor(TargetManagement)
}
