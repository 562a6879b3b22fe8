// Package store persists project snapshots.  The engine treats
// persistence as an abstract durable key-value store: one opaque
// document per project, written after every accepted mutation and read
// back in full at startup.
package store

import (
    "context"

    "github.com/iliyamo/venue-ticketing/internal/model"
)

// Store is the durable collaborator consumed by the engine.  Save
// failures are logged by the engine and retried implicitly by the next
// mutation's save; the data loss window is at most one unsaved
// mutation.
type Store interface {
    // LoadAll returns every stored project.  It is called once at
    // startup; failure halts the process.
    LoadAll(ctx context.Context) ([]*model.Project, error)
    // SaveProject upserts one project document.
    SaveProject(ctx context.Context, p *model.Project) error
    // DeleteProject removes one project document.
    DeleteProject(ctx context.Context, id uint64) error
}
