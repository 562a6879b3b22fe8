package engine

import (
    "crypto/rand"
    "encoding/hex"
    "fmt"
    "log"
    "sort"
    "strconv"
    "strings"

    "github.com/iliyamo/venue-ticketing/internal/model"
)

// sequence.go implements the ticket sequencer: RANDOM mode composes
// unique codes from the project, seat coordinates and a random suffix;
// SEQUENCE mode draws consecutive bounded numeric codes from a template.
// Callers must already hold the project's critical section, which gives
// the increment-then-check step its single-writer guarantee.

// placeholder characters recognized at the tail of a sequence template.
func isPlaceholder(r byte) bool {
    return r == 'X' || r == 'x' || r == '#'
}

// parseTemplate splits a sequence template into its literal prefix and
// the width of its trailing placeholder run.  "A-XX" parses to prefix
// "A-" and width 2.  A template without a trailing placeholder run is
// invalid.
func parseTemplate(template string) (prefix string, width int, err error) {
    i := len(template)
    for i > 0 && isPlaceholder(template[i-1]) {
        i--
    }
    width = len(template) - i
    if width == 0 {
        return "", 0, fmt.Errorf("%w: %q has no placeholder run", ErrInvalidTemplate, template)
    }
    return template[:i], width, nil
}

// SequenceConfig derives a full SEQUENCE-mode configuration from a
// template and a start value.  The start value must consist of exactly
// width digits, e.g. template "A-XX" with start "98".  The returned
// cursor (NextValue) is positioned one below the start so that the first
// assignment hands out the start value itself.
func SequenceConfig(template, start string) (model.TicketingConfig, error) {
    prefix, width, err := parseTemplate(template)
    if err != nil {
        return model.TicketingConfig{}, err
    }
    if len(start) != width {
        return model.TicketingConfig{}, fmt.Errorf("%w: start value %q must be exactly %d digits", ErrInvalidTemplate, start, width)
    }
    startVal, err := strconv.ParseUint(start, 10, 64)
    if err != nil {
        return model.TicketingConfig{}, fmt.Errorf("%w: start value %q is not numeric", ErrInvalidTemplate, start)
    }
    if startVal == 0 {
        return model.TicketingConfig{}, fmt.Errorf("%w: start value must be positive", ErrInvalidTemplate)
    }
    return model.TicketingConfig{
        Mode:       model.TicketingSequence,
        Template:   template,
        Prefix:     prefix,
        Width:      width,
        StartValue: startVal,
        NextValue:  startVal - 1,
        MaxValue:   pow10(width) - 1,
    }, nil
}

func pow10(w int) uint64 {
    v := uint64(1)
    for i := 0; i < w; i++ {
        v *= 10
    }
    return v
}

// deriveSequenceShape fills in the prefix, width and maximum of a
// sequence config that was persisted before those fields existed (a bare
// template written by an older version).  It reports whether the config
// is usable for sequential numbering; a config with an unparseable
// template is not, and callers degrade to random numbers.  Already-shaped
// configs pass through untouched.
func deriveSequenceShape(cfg *model.TicketingConfig) bool {
    if cfg.Mode != model.TicketingSequence {
        return false
    }
    if cfg.Width != 0 {
        return true
    }
    prefix, width, err := parseTemplate(cfg.Template)
    if err != nil {
        return false
    }
    cfg.Prefix = prefix
    cfg.Width = width
    cfg.MaxValue = pow10(width) - 1
    if cfg.StartValue == 0 {
        cfg.StartValue = 1
    }
    return true
}

// renderSequence produces the ticket code for one sequence value.
func renderSequence(cfg model.TicketingConfig, value uint64) string {
    return cfg.Prefix + fmt.Sprintf("%0*d", cfg.Width, value)
}

// randomSuffix returns n bytes of cryptographically secure randomness as
// a hex string.
func randomSuffix(n int) string {
    b := make([]byte, n)
    if _, err := rand.Read(b); err != nil {
        // crypto/rand never fails on supported platforms; treat a
        // failure as unrecoverable rather than degrade uniqueness.
        panic(err)
    }
    return hex.EncodeToString(b)
}

// randomTicket composes a RANDOM-mode ticket number.  The project and
// seat coordinates make the code self-describing; the suffix makes it
// unique by construction.  Random numbers are never recycled, even when
// a seat is reset.
func randomTicket(p *model.Project, s *model.Seat) string {
    return fmt.Sprintf("P%d-%d%d-%s", p.ID, s.Row, s.Col, strings.ToUpper(randomSuffix(4)))
}

// assignTicket ensures the seat carries a ticket number, generating one
// according to the project's ticketing mode.  With force=false an
// existing number is kept untouched; force=true discards it.  In
// SEQUENCE mode the cursor is incremented first and checked against the
// maximum: on exhaustion the cursor is left exactly where it was and
// ErrSequenceExhausted is returned.
func assignTicket(p *model.Project, s *model.Seat, force bool) error {
    if s.TicketNumber != nil && !force {
        return nil
    }
    cfg := &p.Ticketing
    if cfg.Mode == model.TicketingSequence {
        if !deriveSequenceShape(cfg) {
            // Recoverable, not fatal: the seat gets a random number
            // instead of blocking the sale.
            log.Printf("engine: project %d has unparseable sequence config %q, falling back to random for seat (%d,%d)",
                p.ID, cfg.Template, s.Row, s.Col)
            n := randomTicket(p, s)
            s.TicketNumber = &n
            return nil
        }
        next := cfg.NextValue + 1
        if next > cfg.MaxValue {
            return ErrSequenceExhausted
        }
        cfg.NextValue = next
        n := renderSequence(*cfg, next)
        s.TicketNumber = &n
        return nil
    }
    n := randomTicket(p, s)
    s.TicketNumber = &n
    return nil
}

// enabledSeatsInIssueOrder returns every non-DISABLED seat ordered by
// row ascending, then by the numeric seat number derived from its label,
// falling back to the column index.  This is the stable order used when
// sequence numbers are (re)assigned in bulk.
func enabledSeatsInIssueOrder(p *model.Project) []*model.Seat {
    var seats []*model.Seat
    p.EachSeat(func(s *model.Seat) {
        if s.Status != model.SeatDisabled {
            seats = append(seats, s)
        }
    })
    sort.SliceStable(seats, func(i, j int) bool {
        if seats[i].Row != seats[j].Row {
            return seats[i].Row < seats[j].Row
        }
        ni, oki := labelNumber(seats[i])
        nj, okj := labelNumber(seats[j])
        if oki && okj {
            return ni < nj
        }
        return seats[i].Col < seats[j].Col
    })
    return seats
}

// bulkEnsureTickets assigns a ticket number to every enabled seat that
// lacks one.  In SEQUENCE mode the remaining capacity is checked against
// the number of seats needing a value before anything is assigned: when
// it does not cover them, ErrCapacityExceeded is returned and every
// ticket number is left unchanged.  Exhaustion is therefore never
// discovered halfway through the grid.
func bulkEnsureTickets(p *model.Project) error {
    var missing []*model.Seat
    for _, s := range enabledSeatsInIssueOrder(p) {
        if s.TicketNumber == nil {
            missing = append(missing, s)
        }
    }
    if len(missing) == 0 {
        return nil
    }
    if p.Ticketing.Mode == model.TicketingSequence && p.Ticketing.Remaining() < uint64(len(missing)) {
        return ErrCapacityExceeded
    }
    for _, s := range missing {
        if err := assignTicket(p, s, false); err != nil {
            return err
        }
    }
    return nil
}

// regenerateTickets rewinds the sequence cursor to one below the start
// value and reassigns every enabled seat's ticket number in the stable
// issue order, discarding prior numbers.  This is the only path that may
// invalidate previously handed-out codes, which is why the engine
// refuses it while any seat is SOLD.
func regenerateTickets(p *model.Project) error {
    seats := enabledSeatsInIssueOrder(p)
    if p.Ticketing.Mode == model.TicketingSequence {
        if p.Ticketing.MaxValue-p.Ticketing.StartValue+1 < uint64(len(seats)) {
            return ErrCapacityExceeded
        }
        p.Ticketing.NextValue = p.Ticketing.StartValue - 1
    }
    for _, s := range seats {
        if err := assignTicket(p, s, true); err != nil {
            return err
        }
    }
    return nil
}
