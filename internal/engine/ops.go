package engine

import (
    "github.com/iliyamo/venue-ticketing/internal/model"
)

// ops.go holds the seat lifecycle operations driven by sales
// connections: lock, unlock and issue.  Each either fully applies or
// fully rejects; no partial seat mutation is ever observable from
// outside the critical section.

// Lock grants (or refreshes) an exclusive hold on the seat for the given
// holder.  Before the hold is granted the seat is guaranteed a ticket
// number, so every locked seat shows a resolvable code the instant the
// holder sees it.  On any failure the seat is left untouched.
func (e *Engine) Lock(projectID uint64, row, col int, holder string) (seat model.Seat, err error) {
    err = e.mutate(projectID, func(p *model.Project) error {
        s := p.Seat(row, col)
        if s == nil {
            return ErrSeatNotFound
        }
        if s.Status == model.SeatDisabled || s.Status == model.SeatSold {
            return ErrInvalidState
        }
        if s.TicketNumber == nil {
            if err := assignTicket(p, s, true); err != nil {
                return err
            }
        }
        if err := acquireLock(s, holder, e.now()); err != nil {
            return err
        }
        seat = *s
        return nil
    })
    return seat, err
}

// Unlock releases the holder's lock on the seat and returns it to the
// pool.
func (e *Engine) Unlock(projectID uint64, row, col int, holder string) (seat model.Seat, err error) {
    err = e.mutate(projectID, func(p *model.Project) error {
        s := p.Seat(row, col)
        if s == nil {
            return ErrSeatNotFound
        }
        if err := releaseLock(s, holder); err != nil {
            return err
        }
        seat = *s
        return nil
    })
    return seat, err
}

// Issue finalizes the sale of a locked seat.  The caller must echo back
// the ticket number it was shown: a mismatch means the client never
// actually observed this seat and the issuance is rejected.  On success
// the seat becomes SOLD and the lock is cleared; a seat that was enabled
// out-of-band and still lacks a label gets its row relabeled.
func (e *Engine) Issue(projectID uint64, row, col int, holder, presented string) (seat model.Seat, err error) {
    err = e.mutate(projectID, func(p *model.Project) error {
        s := p.Seat(row, col)
        if s == nil {
            return ErrSeatNotFound
        }
        if s.TicketNumber == nil || *s.TicketNumber != presented {
            return ErrTicketMismatch
        }
        if s.LockedBy == nil || *s.LockedBy != holder {
            return ErrNotHolder
        }
        if s.Status != model.SeatLocked {
            return ErrInvalidState
        }
        now := e.now().UTC()
        s.Status = model.SeatSold
        s.IssuedAt = &now
        s.ClearLock()
        if s.SeatLabel == nil {
            AssignLabels(p, row)
        }
        seat = *s
        return nil
    })
    return seat, err
}

// CheckIn records that the ticket holder of a sold seat entered the
// venue.  Double check-in is rejected.
func (e *Engine) CheckIn(projectID uint64, row, col int, actor string) (seat model.Seat, err error) {
    err = e.mutate(projectID, func(p *model.Project) error {
        s := p.Seat(row, col)
        if s == nil {
            return ErrSeatNotFound
        }
        if s.Status != model.SeatSold || s.CheckedInAt != nil {
            return ErrInvalidState
        }
        now := e.now().UTC()
        s.CheckedInAt = &now
        s.CheckedInBy = &actor
        seat = *s
        return nil
    })
    return seat, err
}
