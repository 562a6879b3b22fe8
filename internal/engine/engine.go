package engine

import (
    "context"
    "fmt"
    "log"
    "sort"
    "sync"
    "time"

    "github.com/iliyamo/venue-ticketing/internal/broadcast"
    "github.com/iliyamo/venue-ticketing/internal/model"
    "github.com/iliyamo/venue-ticketing/internal/store"
)

// Engine is the single authoritative owner of every project's seat map.
// All mutating operations on one project run under that project's
// critical section; operations on different projects run in parallel.
// Persistence and broadcast happen after the critical section is
// released, so slow I/O never blocks lock traffic on other seats.  The
// engine is constructed with an explicit store and sink; there are no
// ambient singletons.
type Engine struct {
    mu       sync.RWMutex
    projects map[uint64]*projectState
    nextID   uint64

    store store.Store
    sink  broadcast.Sink

    // now is the engine's clock; tests replace it for deterministic
    // expiry checks.
    now func() time.Time
}

// projectState pairs a project with the mutex that serializes every
// mutating operation touching it, including the sweep.
type projectState struct {
    mu      sync.Mutex
    project *model.Project
}

// New constructs an engine bound to the given durable store and
// broadcast sink.  The sink may be nil when running without viewers
// (tests, offline tooling).
func New(st store.Store, sink broadcast.Sink) *Engine {
    return &Engine{
        projects: make(map[uint64]*projectState),
        nextID:   1,
        store:    st,
        sink:     sink,
        now:      time.Now,
    }
}

// Load pulls the full snapshot from the durable store and normalizes
// every project (price colors, labels, missing ticket numbers, in that
// order).  Failure to obtain the snapshot is the one fatal startup
// condition, so the error is returned for main to act on.
func (e *Engine) Load(ctx context.Context) error {
    projects, err := e.store.LoadAll(ctx)
    if err != nil {
        return fmt.Errorf("load snapshot: %w", err)
    }
    e.mu.Lock()
    defer e.mu.Unlock()
    for _, p := range projects {
        if err := NormalizeProject(p); err != nil {
            // Capacity problems at load time are recoverable; the
            // project stays usable for already-numbered seats.
            log.Printf("engine: normalize project %d: %v", p.ID, err)
        }
        e.projects[p.ID] = &projectState{project: p}
        if p.ID >= e.nextID {
            e.nextID = p.ID + 1
        }
    }
    return nil
}

// Flush writes every project to the durable store.  Called on shutdown.
func (e *Engine) Flush(ctx context.Context) error {
    var firstErr error
    for _, ps := range e.states() {
        ps.mu.Lock()
        snap := ps.project.Clone()
        ps.mu.Unlock()
        if err := e.store.SaveProject(ctx, snap); err != nil && firstErr == nil {
            firstErr = err
        }
    }
    return firstErr
}

// state returns the projectState for an id.
func (e *Engine) state(id uint64) (*projectState, error) {
    e.mu.RLock()
    ps, ok := e.projects[id]
    e.mu.RUnlock()
    if !ok {
        return nil, ErrProjectNotFound
    }
    return ps, nil
}

// states returns all project states in id order.
func (e *Engine) states() []*projectState {
    e.mu.RLock()
    out := make([]*projectState, 0, len(e.projects))
    ids := make([]uint64, 0, len(e.projects))
    for id := range e.projects {
        ids = append(ids, id)
    }
    e.mu.RUnlock()
    sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
    for _, id := range ids {
        if ps, err := e.state(id); err == nil {
            out = append(out, ps)
        }
    }
    return out
}

// mutate runs fn on the project under its critical section.  When fn
// succeeds the project's UpdatedAt is bumped and a snapshot is taken;
// after the section is released the snapshot is persisted and broadcast
// exactly once.  When fn fails nothing is persisted or
// broadcast and the seat map is untouched: fn must not leave partial
// mutations behind on error.
func (e *Engine) mutate(projectID uint64, fn func(p *model.Project) error) error {
    ps, err := e.state(projectID)
    if err != nil {
        return err
    }
    ps.mu.Lock()
    if err := fn(ps.project); err != nil {
        ps.mu.Unlock()
        return err
    }
    ps.project.UpdatedAt = e.now().UTC()
    snap := ps.project.Clone()
    ps.mu.Unlock()
    return e.commit(snap)
}

// commit persists and broadcasts one project snapshot.  A store failure
// is logged and surfaced as ErrPersistence but the in-memory mutation is
// kept: the state is correct even if the write failed, and the next
// successful save will include it.  The broadcast still goes out so
// viewers track the authoritative in-memory state.
func (e *Engine) commit(snap *model.Project) error {
    var saveErr error
    if err := e.store.SaveProject(context.Background(), snap); err != nil {
        log.Printf("engine: save project %d: %v", snap.ID, err)
        saveErr = fmt.Errorf("%w: %v", ErrPersistence, err)
    }
    if e.sink != nil {
        e.sink.Publish(snap.ID, snap)
    }
    return saveErr
}

// Project returns a snapshot clone of one project.
func (e *Engine) Project(id uint64) (*model.Project, error) {
    ps, err := e.state(id)
    if err != nil {
        return nil, err
    }
    ps.mu.Lock()
    defer ps.mu.Unlock()
    return ps.project.Clone(), nil
}

// Projects returns snapshot clones of every project in id order.
func (e *Engine) Projects() []*model.Project {
    states := e.states()
    out := make([]*model.Project, 0, len(states))
    for _, ps := range states {
        ps.mu.Lock()
        out = append(out, ps.project.Clone())
        ps.mu.Unlock()
    }
    return out
}

// SweepExpired reverts every expired lock across all projects and
// returns the ids of the projects that were touched.  Each touched
// project is persisted and broadcast once, not once per seat.
func (e *Engine) SweepExpired() []uint64 {
    now := e.now()
    var touched []uint64
    for _, ps := range e.states() {
        ps.mu.Lock()
        changed := sweepProject(ps.project, now)
        var snap *model.Project
        if changed {
            ps.project.UpdatedAt = now.UTC()
            snap = ps.project.Clone()
        }
        ps.mu.Unlock()
        if snap != nil {
            touched = append(touched, snap.ID)
            if err := e.commit(snap); err != nil {
                log.Printf("engine: sweep commit project %d: %v", snap.ID, err)
            }
        }
    }
    return touched
}

// StartSweeper runs the expiry sweep on a fixed period until the context
// is cancelled.
func (e *Engine) StartSweeper(ctx context.Context) {
    go func() {
        ticker := time.NewTicker(SweepInterval)
        defer ticker.Stop()
        for {
            select {
            case <-ctx.Done():
                return
            case <-ticker.C:
                e.SweepExpired()
            }
        }
    }()
}

// ReleaseHolder drops every lock owned by the holder across all
// projects.  Invoked when a connection disappears; best-effort and
// idempotent, so racing a sweep or an explicit unlock is harmless.  It
// returns the number of projects that were touched.
func (e *Engine) ReleaseHolder(holder string) int {
    released := 0
    for _, ps := range e.states() {
        ps.mu.Lock()
        changed := releaseHolder(ps.project, holder)
        var snap *model.Project
        if changed {
            ps.project.UpdatedAt = e.now().UTC()
            snap = ps.project.Clone()
        }
        ps.mu.Unlock()
        if snap != nil {
            released++
            if err := e.commit(snap); err != nil {
                log.Printf("engine: holder cleanup commit project %d: %v", snap.ID, err)
            }
        }
    }
    return released
}
