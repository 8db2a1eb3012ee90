// Package migrate sequences schema migrations across store backends. Each
// store plugin registers its migrator from init(); a migrator decides for
// itself whether it applies to the configured backend, so RunAll can execute
// the whole registry unconditionally.
package migrate

import (
	"context"
	"fmt"
	"sort"
)

// Migrator applies one backend's schema changes. Migrations must be
// idempotent: they run at every service start when migrate-at-start is on.
type Migrator interface {
	Name() string
	Migrate(ctx context.Context) error
}

type entry struct {
	order    int
	migrator Migrator
}

var registered []entry

// Register adds a migrator; order fixes the execution sequence when several
// backends are compiled in.
func Register(order int, m Migrator) {
	registered = append(registered, entry{order: order, migrator: m})
}

// RunAll executes every registered migrator in order, stopping at the first
// failure.
func RunAll(ctx context.Context) error {
	entries := make([]entry, len(registered))
	copy(entries, registered)
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].order < entries[j].order })

	for _, e := range entries {
		if err := e.migrator.Migrate(ctx); err != nil {
			return fmt.Errorf("migration %s failed: %w", e.migrator.Name(), err)
		}
	}
	return nil
}
