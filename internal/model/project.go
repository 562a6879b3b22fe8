package model

import "time"

// Project owns one venue seat map and everything needed to sell it: the
// fixed rows×cols grid of seats, the ticket numbering configuration, the
// stable price-to-color mapping used by seat-map renderers, and the
// advisory per-row label cursors.  A project exclusively owns its seats;
// the grid dimensions are fixed at creation.
//
// Fields:
//  ID            – project identifier, allocated by the engine.
//  Name          – display name.
//  Rows, Cols    – grid dimensions, immutable after creation.
//  CreatedAt     – creation timestamp (UTC).
//  UpdatedAt     – bumped on every accepted mutation (UTC).
//  Seats         – row-major grid, Seats[row][col].
//  Ticketing     – ticket numbering configuration.
//  PriceColorMap – normalized price (cents, decimal string) → display color.
//  RowProgress   – advisory per-row label cursors, keyed by row index.
type Project struct {
    ID        uint64                 `json:"id"`
    Name      string                 `json:"name"`
    Rows      int                    `json:"rows"`
    Cols      int                    `json:"cols"`
    CreatedAt time.Time              `json:"created_at"`
    UpdatedAt time.Time              `json:"updated_at"`
    Seats     [][]Seat               `json:"seats"`
    Ticketing TicketingConfig        `json:"ticketing"`
    PriceColorMap map[string]string  `json:"price_color_map,omitempty"`
    RowProgress   map[int]RowProgress `json:"row_progress,omitempty"`
}

// NewProject builds a project whose seats are all DISABLED and whose
// ticketing defaults to RANDOM mode.
func NewProject(id uint64, name string, rows, cols int, now time.Time) *Project {
    seats := make([][]Seat, rows)
    for r := range seats {
        seats[r] = make([]Seat, cols)
        for c := range seats[r] {
            seats[r][c] = Seat{Row: r, Col: c, Status: SeatDisabled}
        }
    }
    return &Project{
        ID:        id,
        Name:      name,
        Rows:      rows,
        Cols:      cols,
        CreatedAt: now,
        UpdatedAt: now,
        Seats:     seats,
        Ticketing: TicketingConfig{Mode: TicketingRandom},
    }
}

// Seat returns the seat at (row, col), or nil when the coordinates fall
// outside the grid.
func (p *Project) Seat(row, col int) *Seat {
    if row < 0 || row >= p.Rows || col < 0 || col >= p.Cols {
        return nil
    }
    return &p.Seats[row][col]
}

// EachSeat invokes fn for every seat in row-major order.
func (p *Project) EachSeat(fn func(s *Seat)) {
    for r := range p.Seats {
        for c := range p.Seats[r] {
            fn(&p.Seats[r][c])
        }
    }
}

// HasSoldSeats reports whether any seat of the project is SOLD.
func (p *Project) HasSoldSeats() bool {
    for r := range p.Seats {
        for c := range p.Seats[r] {
            if p.Seats[r][c].Status == SeatSold {
                return true
            }
        }
    }
    return false
}

// Clone returns a deep copy of the project.  The engine hands clones to
// the durable store and the broadcast sink so that I/O never observes a
// project mid-mutation.
func (p *Project) Clone() *Project {
    out := *p
    out.Seats = make([][]Seat, len(p.Seats))
    for r := range p.Seats {
        out.Seats[r] = make([]Seat, len(p.Seats[r]))
        for c := range p.Seats[r] {
            out.Seats[r][c] = p.Seats[r][c].clone()
        }
    }
    if p.PriceColorMap != nil {
        out.PriceColorMap = make(map[string]string, len(p.PriceColorMap))
        for k, v := range p.PriceColorMap {
            out.PriceColorMap[k] = v
        }
    }
    if p.RowProgress != nil {
        out.RowProgress = make(map[int]RowProgress, len(p.RowProgress))
        for k, v := range p.RowProgress {
            out.RowProgress[k] = v
        }
    }
    return &out
}
