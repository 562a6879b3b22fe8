package model

// TicketingMode selects how ticket numbers are generated for a project.
type TicketingMode string

const (
    // TicketingRandom composes unique codes from the project, the seat
    // coordinates and a high-entropy random suffix.
    TicketingRandom TicketingMode = "RANDOM"
    // TicketingSequence draws consecutive bounded numeric codes from a
    // template such as "A-XX".
    TicketingSequence TicketingMode = "SEQUENCE"
)

// TicketingConfig describes the numbering scheme of one project.  In
// SEQUENCE mode the Template is a literal prefix followed by a trailing
// run of placeholder characters ('X', 'x' or '#'); the length of that run
// is Width and MaxValue is 10^Width − 1.  NextValue is the engine's
// monotonic cursor: the last value handed out, never decreased except by
// an explicit forced regeneration.  In RANDOM mode every sequence field
// is zero.
type TicketingConfig struct {
    Mode       TicketingMode `json:"mode"`
    Template   string        `json:"template,omitempty"`
    Prefix     string        `json:"prefix,omitempty"`
    Width      int           `json:"width,omitempty"`
    StartValue uint64        `json:"start_value,omitempty"`
    NextValue  uint64        `json:"next_value,omitempty"`
    MaxValue   uint64        `json:"max_value,omitempty"`
}

// Remaining reports how many sequence values are still unassigned.
func (c TicketingConfig) Remaining() uint64 {
    if c.Mode != TicketingSequence || c.NextValue >= c.MaxValue {
        return 0
    }
    return c.MaxValue - c.NextValue
}

// RowProgress records, per row, the next unused odd (left half) and even
// (right half) label numbers after the most recent labeling pass.  The
// cursor is advisory: full relabeling always recomputes from scratch, and
// the cursor only serves tooling that appends seats without triggering a
// full relabel.
type RowProgress struct {
    LeftNext  int `json:"left_next"`
    RightNext int `json:"right_next"`
}
