package engine

import (
    "context"
    "fmt"
    "log"
    "sort"

    "github.com/iliyamo/venue-ticketing/internal/model"
)

// admin.go holds the elevated-privilege operations: creating and
// deleting projects, enabling and disabling seat ranges, administrative
// status overrides, relabeling and ticketing reconfiguration.  The
// access decision (who may call these) lives in the routing layer; the
// engine only exposes the transitions.

// Cell addresses one seat of a grid.
type Cell struct {
    Row int `json:"row"`
    Col int `json:"col"`
}

// maxGridDim bounds project dimensions to keep snapshots and broadcast
// payloads reasonable.
const maxGridDim = 200

// CreateProject allocates a new project whose seats are all DISABLED.
func (e *Engine) CreateProject(name string, rows, cols int) (*model.Project, error) {
    if name == "" || rows < 1 || cols < 1 || rows > maxGridDim || cols > maxGridDim {
        return nil, fmt.Errorf("%w: invalid project dimensions", ErrInvalidState)
    }
    e.mu.Lock()
    id := e.nextID
    e.nextID++
    p := model.NewProject(id, name, rows, cols, e.now().UTC())
    e.projects[id] = &projectState{project: p}
    e.mu.Unlock()

    snap := p.Clone()
    if err := e.commit(snap); err != nil {
        return snap, err
    }
    return snap, nil
}

// DeleteProject removes the project from the engine and the durable
// store.  Viewers of the project simply stop receiving snapshots.
func (e *Engine) DeleteProject(id uint64) error {
    e.mu.Lock()
    _, ok := e.projects[id]
    if ok {
        delete(e.projects, id)
    }
    e.mu.Unlock()
    if !ok {
        return ErrProjectNotFound
    }
    if err := e.store.DeleteProject(context.Background(), id); err != nil {
        log.Printf("engine: delete project %d from store: %v", id, err)
        return fmt.Errorf("%w: %v", ErrPersistence, err)
    }
    return nil
}

// EnableSeats opens the given cells for sale at the given price.
// DISABLED cells become AVAILABLE; cells that are already enabled only
// get their price updated, and LOCKED or SOLD cells are left untouched.
// The affected rows are relabeled and every enabled seat missing a
// ticket number receives one.  In SEQUENCE mode the remaining capacity
// is checked up front: when it cannot cover the missing numbers the
// whole call is rejected with ErrCapacityExceeded and no seat changes.
func (e *Engine) EnableSeats(projectID uint64, cells []Cell, priceCents uint32) error {
    return e.mutate(projectID, func(p *model.Project) error {
        targets := make([]*model.Seat, 0, len(cells))
        for _, c := range cells {
            s := p.Seat(c.Row, c.Col)
            if s == nil {
                return ErrSeatNotFound
            }
            if s.Status == model.SeatLocked || s.Status == model.SeatSold {
                continue
            }
            targets = append(targets, s)
        }

        // All-or-nothing: count the ticket numbers this call will need
        // before mutating anything.
        if p.Ticketing.Mode == model.TicketingSequence {
            need := uint64(0)
            enabling := make(map[*model.Seat]bool, len(targets))
            for _, s := range targets {
                enabling[s] = true
                if s.TicketNumber == nil {
                    need++
                }
            }
            p.EachSeat(func(s *model.Seat) {
                if !enabling[s] && s.Status != model.SeatDisabled && s.TicketNumber == nil {
                    need++
                }
            })
            if p.Ticketing.Remaining() < need {
                return ErrCapacityExceeded
            }
        }

        rows := make(map[int]bool)
        price := priceCents
        for _, s := range targets {
            s.Status = model.SeatAvailable
            v := price
            s.PriceCents = &v
            rows[s.Row] = true
        }

        RefreshPriceColors(p)
        AssignLabels(p, sortedRows(rows)...)
        return bulkEnsureTickets(p)
    })
}

// DisableSeats resets the given cells to DISABLED regardless of their
// current state, dropping price, ticket number, label, lock and
// check-in.  The affected rows are relabeled so the remaining enabled
// seats keep contiguous center-out numbering.
func (e *Engine) DisableSeats(projectID uint64, cells []Cell) error {
    return e.mutate(projectID, func(p *model.Project) error {
        rows := make(map[int]bool)
        for _, c := range cells {
            s := p.Seat(c.Row, c.Col)
            if s == nil {
                return ErrSeatNotFound
            }
            if s.Status == model.SeatDisabled {
                continue
            }
            s.Reset()
            rows[s.Row] = true
        }
        AssignLabels(p, sortedRows(rows)...)
        return nil
    })
}

// OverrideSeat forces a seat's status, bypassing the normal lifecycle.
// Supported targets: AVAILABLE (reopens a sold or locked seat, clearing
// issuance, check-in and lock state while keeping price, label and
// ticket number) and DISABLED (full reset).  Everything else goes
// through the regular operations.
func (e *Engine) OverrideSeat(projectID uint64, row, col int, to model.SeatStatus) (seat model.Seat, err error) {
    err = e.mutate(projectID, func(p *model.Project) error {
        s := p.Seat(row, col)
        if s == nil {
            return ErrSeatNotFound
        }
        switch to {
        case model.SeatAvailable:
            if s.Status == model.SeatDisabled {
                return ErrInvalidState
            }
            s.Status = model.SeatAvailable
            s.IssuedAt = nil
            s.CheckedInAt = nil
            s.CheckedInBy = nil
            s.ClearLock()
        case model.SeatDisabled:
            s.Reset()
            AssignLabels(p, row)
        default:
            return ErrInvalidState
        }
        seat = *s
        return nil
    })
    return seat, err
}

// RelabelRows recomputes seat labels for the given rows, or the whole
// grid when no rows are passed.
func (e *Engine) RelabelRows(projectID uint64, rows ...int) error {
    return e.mutate(projectID, func(p *model.Project) error {
        AssignLabels(p, rows...)
        return nil
    })
}

// ReconfigureTicketing switches the project's numbering scheme.
// Switching to RANDOM clears the sequence configuration entirely.
// Switching into SEQUENCE re-derives width, prefix and maximum from the
// template and validates the start value's digit length.  Without force
// existing ticket numbers are kept and the cursor only ever moves
// forward, so values already handed out stay unique.  With force the
// cursor is rewound and every enabled seat is renumbered in stable
// order; this is refused while any seat is SOLD, because already-issued
// tickets would become unresolvable.
func (e *Engine) ReconfigureTicketing(projectID uint64, mode model.TicketingMode, template, start string, force bool) error {
    return e.mutate(projectID, func(p *model.Project) error {
        var next model.TicketingConfig
        switch mode {
        case model.TicketingRandom:
            next = model.TicketingConfig{Mode: model.TicketingRandom}
        case model.TicketingSequence:
            cfg, err := SequenceConfig(template, start)
            if err != nil {
                return err
            }
            next = cfg
        default:
            return fmt.Errorf("%w: unknown ticketing mode %q", ErrInvalidState, mode)
        }
        if force {
            if p.HasSoldSeats() {
                return ErrInvalidState
            }
            prior := p.Ticketing
            p.Ticketing = next
            if err := regenerateTickets(p); err != nil {
                p.Ticketing = prior
                return err
            }
            return nil
        }
        prior := p.Ticketing
        if prior.Mode == model.TicketingSequence && next.NextValue < prior.NextValue {
            // Values below the live cursor are already burned.  Without
            // an explicit regeneration the cursor never rewinds, even
            // when the scheme is resubmitted or its start lowered.
            next.NextValue = prior.NextValue
        }
        p.Ticketing = next
        if err := bulkEnsureTickets(p); err != nil {
            // Capacity is verified before any assignment, so restoring
            // the config is enough to fully reject.
            p.Ticketing = prior
            return err
        }
        return nil
    })
}

func sortedRows(rows map[int]bool) []int {
    out := make([]int, 0, len(rows))
    for r := range rows {
        out = append(out, r)
    }
    sort.Ints(out)
    return out
}
