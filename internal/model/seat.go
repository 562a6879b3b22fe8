package model

import "time"

// SeatStatus enumerates the lifecycle states of a single seat.  A seat
// starts DISABLED, is enabled by an administrator into AVAILABLE, moves
// between AVAILABLE and LOCKED while salespeople work, and ends SOLD once
// a ticket is issued.  SOLD is terminal except for administrative
// overrides back to AVAILABLE or DISABLED.
type SeatStatus string

const (
    SeatDisabled  SeatStatus = "DISABLED"  // not part of the sellable map
    SeatAvailable SeatStatus = "AVAILABLE" // enabled and free to lock
    SeatLocked    SeatStatus = "LOCKED"    // exclusively held by one connection
    SeatSold      SeatStatus = "SOLD"      // ticket issued
)

// Seat is one cell of a project's grid.  The (Row, Col) pair is the
// immutable key; seats are never deleted individually, only reset to
// DISABLED.  Optional fields are pointers so that a DISABLED seat can
// carry no price, ticket number or label at all.
//
// Fields:
//  Row           – zero-based row index within the grid.
//  Col           – zero-based column index within the grid.
//  Status        – current lifecycle state.
//  PriceCents    – price in cents; nil while DISABLED.
//  TicketNumber  – assigned ticket code; nil until first assignment.
//  SeatLabel     – human-facing label such as "3排5号"; nil while DISABLED.
//  LockedBy      – holder identity of the current lock; nil when unlocked.
//  LockExpiresAt – when the current lock lapses; nil when unlocked.
//  IssuedAt      – when the ticket was issued; nil unless SOLD.
//  CheckedInAt   – when the ticket holder was checked in at the door.
//  CheckedInBy   – actor who performed the check-in.
type Seat struct {
    Row           int        `json:"row"`
    Col           int        `json:"col"`
    Status        SeatStatus `json:"status"`
    PriceCents    *uint32    `json:"price_cents,omitempty"`
    TicketNumber  *string    `json:"ticket_number,omitempty"`
    SeatLabel     *string    `json:"seat_label,omitempty"`
    LockedBy      *string    `json:"locked_by,omitempty"`
    LockExpiresAt *time.Time `json:"lock_expires_at,omitempty"`
    IssuedAt      *time.Time `json:"issued_at,omitempty"`
    CheckedInAt   *time.Time `json:"checked_in_at,omitempty"`
    CheckedInBy   *string    `json:"checked_in_by,omitempty"`
}

// ClearLock removes the lock fields without touching any other state.
func (s *Seat) ClearLock() {
    s.LockedBy = nil
    s.LockExpiresAt = nil
}

// Reset returns the seat to DISABLED, dropping price, ticket number,
// label, lock and check-in state.  The (Row, Col) key is preserved.
func (s *Seat) Reset() {
    s.Status = SeatDisabled
    s.PriceCents = nil
    s.TicketNumber = nil
    s.SeatLabel = nil
    s.IssuedAt = nil
    s.CheckedInAt = nil
    s.CheckedInBy = nil
    s.ClearLock()
}

// clone returns a deep copy of the seat so that snapshots handed to the
// store and the broadcast sink never alias live engine state.
func (s *Seat) clone() Seat {
    out := *s
    out.PriceCents = cloneUint32(s.PriceCents)
    out.TicketNumber = cloneString(s.TicketNumber)
    out.SeatLabel = cloneString(s.SeatLabel)
    out.LockedBy = cloneString(s.LockedBy)
    out.LockExpiresAt = cloneTime(s.LockExpiresAt)
    out.IssuedAt = cloneTime(s.IssuedAt)
    out.CheckedInAt = cloneTime(s.CheckedInAt)
    out.CheckedInBy = cloneString(s.CheckedInBy)
    return out
}

func cloneString(p *string) *string {
    if p == nil {
        return nil
    }
    v := *p
    return &v
}

func cloneUint32(p *uint32) *uint32 {
    if p == nil {
        return nil
    }
    v := *p
    return &v
}

func cloneTime(p *time.Time) *time.Time {
    if p == nil {
        return nil
    }
    v := *p
    return &v
}
