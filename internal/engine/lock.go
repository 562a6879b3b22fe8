package engine

import (
    "time"

    "github.com/iliyamo/venue-ticketing/internal/model"
)

// lock.go implements the per-seat exclusive hold semantics.  A lock is
// not a standalone entity: it lives in the seat's LockedBy and
// LockExpiresAt fields.  Exactly one holder may own a seat at a time;
// abandoned holds are reverted by the periodic sweep.  All functions
// here assume the caller holds the project's critical section.

// LockTTL is the validity window granted to a seat hold.  A holder that
// neither issues nor renews within this window loses the seat back to
// the pool.
const LockTTL = 2 * time.Minute

// SweepInterval is the period of the background pass that reverts
// expired locks.
const SweepInterval = 5 * time.Second

// acquireLock grants or refreshes an exclusive hold on the seat.
// Re-acquiring by the current holder is idempotent and only refreshes
// the expiry.  SOLD and DISABLED seats cannot be locked; a seat locked
// by someone else yields ErrHeldByOther.
func acquireLock(s *model.Seat, holder string, now time.Time) error {
    switch s.Status {
    case model.SeatSold, model.SeatDisabled:
        return ErrInvalidState
    case model.SeatLocked:
        if s.LockedBy == nil || *s.LockedBy != holder {
            return ErrHeldByOther
        }
    }
    exp := now.Add(LockTTL)
    s.Status = model.SeatLocked
    s.LockedBy = &holder
    s.LockExpiresAt = &exp
    return nil
}

// releaseLock clears the hold if the given holder owns it.  Issued seats
// cannot be released; their lock was already superseded by issuance.
func releaseLock(s *model.Seat, holder string) error {
    if s.Status == model.SeatSold {
        return ErrInvalidState
    }
    if s.LockedBy == nil || *s.LockedBy != holder {
        return ErrNotHolder
    }
    revertLock(s)
    return nil
}

// revertLock clears the lock fields without requiring holder identity
// and returns the seat to AVAILABLE only if it was LOCKED.  Shared by
// release, the expiry sweep and disconnection cleanup.
func revertLock(s *model.Seat) {
    if s.Status == model.SeatLocked {
        s.Status = model.SeatAvailable
    }
    s.ClearLock()
}

// sweepProject reverts every seat of the project whose lock expiry is in
// the past and reports whether anything changed.  The caller persists
// and broadcasts once per touched project, not once per seat.
func sweepProject(p *model.Project, now time.Time) bool {
    touched := false
    p.EachSeat(func(s *model.Seat) {
        if s.LockExpiresAt != nil && s.LockExpiresAt.Before(now) {
            revertLock(s)
            touched = true
        }
    })
    return touched
}

// releaseHolder drops every lock owned by the holder within the project.
// Best-effort: seats already released by a sweep or an explicit unlock
// are simply skipped.
func releaseHolder(p *model.Project, holder string) bool {
    touched := false
    p.EachSeat(func(s *model.Seat) {
        if s.LockedBy != nil && *s.LockedBy == holder && s.Status != model.SeatSold {
            revertLock(s)
            touched = true
        }
    })
    return touched
}
