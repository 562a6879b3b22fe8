package engine

import (
    "context"
    "errors"
    "fmt"
    "regexp"
    "sync"
    "testing"
    "time"

    "github.com/iliyamo/venue-ticketing/internal/model"
)

func TestParseTemplate(t *testing.T) {
    cases := []struct {
        template string
        prefix   string
        width    int
        wantErr  bool
    }{
        {"A-XX", "A-", 2, false},
        {"XXXX", "", 4, false},
        {"GA-###", "GA-", 3, false},
        {"B-xX#", "B-", 3, false},
        {"A-", "", 0, true},
        {"", "", 0, true},
    }
    for _, c := range cases {
        prefix, width, err := parseTemplate(c.template)
        if c.wantErr {
            if !errors.Is(err, ErrInvalidTemplate) {
                t.Errorf("parseTemplate(%q): err = %v, want ErrInvalidTemplate", c.template, err)
            }
            continue
        }
        if err != nil {
            t.Errorf("parseTemplate(%q): %v", c.template, err)
            continue
        }
        if prefix != c.prefix || width != c.width {
            t.Errorf("parseTemplate(%q) = (%q, %d), want (%q, %d)", c.template, prefix, width, c.prefix, c.width)
        }
    }
}

func TestSequenceConfig(t *testing.T) {
    cfg, err := SequenceConfig("A-XX", "98")
    if err != nil {
        t.Fatalf("SequenceConfig: %v", err)
    }
    if cfg.Prefix != "A-" || cfg.Width != 2 || cfg.StartValue != 98 || cfg.NextValue != 97 || cfg.MaxValue != 99 {
        t.Fatalf("unexpected config: %+v", cfg)
    }
    if got := cfg.Remaining(); got != 2 {
        t.Fatalf("Remaining() = %d, want 2", got)
    }

    for _, c := range []struct{ template, start string }{
        {"A-XX", "098"}, // wrong length
        {"A-XX", "9a"},  // not numeric
        {"A-XX", "00"},  // zero start
        {"A-", "12"},    // no placeholder run
    } {
        if _, err := SequenceConfig(c.template, c.start); !errors.Is(err, ErrInvalidTemplate) {
            t.Errorf("SequenceConfig(%q, %q): err = %v, want ErrInvalidTemplate", c.template, c.start, err)
        }
    }
}

// seqProject builds a bare one-row project with n enabled, labeled seats
// and the given sequence config, bypassing the engine.
func seqProject(t *testing.T, n int, template, start string) *model.Project {
    t.Helper()
    p := model.NewProject(1, "hall", 1, n, time.Now())
    for c := 0; c < n; c++ {
        p.Seats[0][c].Status = model.SeatAvailable
    }
    AssignLabels(p)
    cfg, err := SequenceConfig(template, start)
    if err != nil {
        t.Fatalf("SequenceConfig: %v", err)
    }
    p.Ticketing = cfg
    return p
}

func TestSequenceExhaustionLeavesCursor(t *testing.T) {
    p := seqProject(t, 3, "A-XX", "98")

    want := []string{"A-98", "A-99"}
    for i := 0; i < 2; i++ {
        s := p.Seat(0, i)
        if err := assignTicket(p, s, false); err != nil {
            t.Fatalf("assign %d: %v", i, err)
        }
        if *s.TicketNumber != want[i] {
            t.Fatalf("assign %d = %q, want %q", i, *s.TicketNumber, want[i])
        }
    }

    s := p.Seat(0, 2)
    if err := assignTicket(p, s, false); !errors.Is(err, ErrSequenceExhausted) {
        t.Fatalf("third assign: err = %v, want ErrSequenceExhausted", err)
    }
    if s.TicketNumber != nil {
        t.Fatalf("exhausted assign still wrote %q", *s.TicketNumber)
    }
    if p.Ticketing.NextValue != 99 {
        t.Fatalf("cursor moved to %d on exhaustion, want 99", p.Ticketing.NextValue)
    }
}

func TestBulkEnsureAllOrNothing(t *testing.T) {
    p := seqProject(t, 3, "A-XX", "98") // capacity 2, seats 3

    if err := bulkEnsureTickets(p); !errors.Is(err, ErrCapacityExceeded) {
        t.Fatalf("bulkEnsureTickets: err = %v, want ErrCapacityExceeded", err)
    }
    p.EachSeat(func(s *model.Seat) {
        if s.TicketNumber != nil {
            t.Fatalf("seat (%d,%d) got %q despite capacity rejection", s.Row, s.Col, *s.TicketNumber)
        }
    })
    if p.Ticketing.NextValue != 97 {
        t.Fatalf("cursor moved to %d on rejection, want 97", p.Ticketing.NextValue)
    }
}

func TestBulkEnsureFollowsLabelOrder(t *testing.T) {
    // Four seats: labels 3,1,2,4 on columns 0..3.  The sequence must
    // follow label order, not column order.
    p := seqProject(t, 4, "T-XXX", "001")
    if err := bulkEnsureTickets(p); err != nil {
        t.Fatalf("bulkEnsureTickets: %v", err)
    }
    byLabel := map[string]string{}
    p.EachSeat(func(s *model.Seat) {
        byLabel[*s.SeatLabel] = *s.TicketNumber
    })
    want := map[string]string{
        "1排1号": "T-001",
        "1排2号": "T-002",
        "1排3号": "T-003",
        "1排4号": "T-004",
    }
    for label, ticket := range want {
        if byLabel[label] != ticket {
            t.Errorf("seat %s has ticket %q, want %q", label, byLabel[label], ticket)
        }
    }
}

func TestRandomTicketFormat(t *testing.T) {
    p := model.NewProject(7, "hall", 2, 3, time.Now())
    s := p.Seat(1, 2)
    s.Status = model.SeatAvailable
    if err := assignTicket(p, s, false); err != nil {
        t.Fatalf("assignTicket: %v", err)
    }
    re := regexp.MustCompile(`^P7-12-[0-9A-F]{8}$`)
    if !re.MatchString(*s.TicketNumber) {
        t.Fatalf("random ticket %q does not match %v", *s.TicketNumber, re)
    }
}

func TestLegacySequenceConfigFallback(t *testing.T) {
    // A sequence config with only a template, as an older writer would
    // have stored it.  The numeric field is re-derived from the template.
    p := model.NewProject(1, "hall", 1, 2, time.Now())
    p.Seats[0][0].Status = model.SeatAvailable
    p.Seats[0][1].Status = model.SeatAvailable
    p.Ticketing = model.TicketingConfig{Mode: model.TicketingSequence, Template: "Z-XXX"}

    s := p.Seat(0, 0)
    if err := assignTicket(p, s, false); err != nil {
        t.Fatalf("assignTicket: %v", err)
    }
    if *s.TicketNumber != "Z-001" {
        t.Fatalf("re-derived ticket = %q, want Z-001", *s.TicketNumber)
    }

    // An unparseable template degrades that seat to a random number
    // instead of failing the operation.
    p.Ticketing = model.TicketingConfig{Mode: model.TicketingSequence, Template: "broken"}
    s = p.Seat(0, 1)
    if err := assignTicket(p, s, false); err != nil {
        t.Fatalf("assignTicket with broken template: %v", err)
    }
    if s.TicketNumber == nil {
        t.Fatal("no fallback ticket assigned")
    }
}

func TestConcurrentLocksGetDistinctTickets(t *testing.T) {
    e, _, _, _ := newTestEngine(t)
    // The seats start enabled but unnumbered, so every Lock call below
    // performs its own ticket assignment inside the project's critical
    // section.
    p := seqProject(t, 30, "T-XXX", "001")
    e.projects[p.ID] = &projectState{project: p}

    var wg sync.WaitGroup
    tickets := make([]string, 30)
    for c := 0; c < 30; c++ {
        wg.Add(1)
        go func(col int) {
            defer wg.Done()
            seat, err := e.Lock(p.ID, 0, col, fmt.Sprintf("conn-%d", col))
            if err != nil {
                t.Errorf("Lock col %d: %v", col, err)
                return
            }
            tickets[col] = *seat.TicketNumber
        }(c)
    }
    wg.Wait()

    seen := make(map[string]bool, 30)
    for col, n := range tickets {
        if n == "" {
            continue
        }
        if seen[n] {
            t.Fatalf("ticket %q handed out twice (col %d)", n, col)
        }
        seen[n] = true
    }
    // Exactly the 30 consecutive values from the start, no skips.
    for v := 1; v <= 30; v++ {
        want := fmt.Sprintf("T-%03d", v)
        if !seen[want] {
            t.Fatalf("value %s never handed out (%d distinct total)", want, len(seen))
        }
    }
}

func TestNonForceReconfigureNeverRewindsCursor(t *testing.T) {
    e, _, _, _ := newTestEngine(t)
    p, err := e.CreateProject("hall", 1, 3)
    if err != nil {
        t.Fatalf("CreateProject: %v", err)
    }
    if err := e.ReconfigureTicketing(p.ID, model.TicketingSequence, "T-XXX", "001", false); err != nil {
        t.Fatalf("ReconfigureTicketing: %v", err)
    }
    if err := e.EnableSeats(p.ID, []Cell{{Row: 0, Col: 0}, {Row: 0, Col: 1}}, 1000); err != nil {
        t.Fatalf("EnableSeats: %v", err)
    }
    snap, _ := e.Project(p.ID)
    if snap.Ticketing.NextValue != 2 {
        t.Fatalf("cursor after first enable = %d, want 2", snap.Ticketing.NextValue)
    }

    // Re-submitting the same scheme without force keeps every number
    // already handed out burned.
    if err := e.ReconfigureTicketing(p.ID, model.TicketingSequence, "T-XXX", "001", false); err != nil {
        t.Fatalf("re-submit ReconfigureTicketing: %v", err)
    }
    snap, _ = e.Project(p.ID)
    if snap.Ticketing.NextValue != 2 {
        t.Fatalf("cursor after re-submit = %d, want 2", snap.Ticketing.NextValue)
    }

    if err := e.EnableSeats(p.ID, []Cell{{Row: 0, Col: 2}}, 1000); err != nil {
        t.Fatalf("EnableSeats third seat: %v", err)
    }
    snap, _ = e.Project(p.ID)
    counts := map[string]int{}
    snap.EachSeat(func(s *model.Seat) {
        if s.TicketNumber != nil {
            counts[*s.TicketNumber]++
        }
    })
    for n, c := range counts {
        if c > 1 {
            t.Fatalf("ticket %q assigned to %d seats", n, c)
        }
    }
    if got := *snap.Seat(0, 2).TicketNumber; got != "T-003" {
        t.Fatalf("third seat ticket = %q, want T-003", got)
    }
}

func TestLoadDerivesLegacySequenceShape(t *testing.T) {
    st := newFakeStore()

    // A sequence config as an older writer stored it: bare template, no
    // derived fields.  The capacity must be computed from the template,
    // not read as zero.
    raw := model.NewProject(3, "restored hall", 1, 2, time.Now())
    raw.Seats[0][0].Status = model.SeatAvailable
    raw.Ticketing = model.TicketingConfig{Mode: model.TicketingSequence, Template: "Z-XX"}
    st.saved[3] = raw

    e := New(st, newFakeSink())
    e.now = newTestClock().now
    if err := e.Load(context.Background()); err != nil {
        t.Fatalf("Load: %v", err)
    }
    snap, _ := e.Project(3)
    if snap.Ticketing.Width != 2 || snap.Ticketing.MaxValue != 99 {
        t.Fatalf("derived shape wrong: %+v", snap.Ticketing)
    }
    if got := *snap.Seat(0, 0).TicketNumber; got != "Z-01" {
        t.Fatalf("restored seat ticket = %q, want Z-01", got)
    }

    // Enabling further seats draws from the derived capacity instead of
    // spuriously reporting exhaustion.
    if err := e.EnableSeats(3, []Cell{{Row: 0, Col: 1}}, 1000); err != nil {
        t.Fatalf("EnableSeats on legacy config: %v", err)
    }
    snap, _ = e.Project(3)
    if got := *snap.Seat(0, 1).TicketNumber; got != "Z-02" {
        t.Fatalf("second ticket = %q, want Z-02", got)
    }
}

func TestReconfigureCapacityRejectionRestoresConfig(t *testing.T) {
    e, _, _, _ := newTestEngine(t)
    p := enabledProject(t, e, 1, 5, 1000)

    // Random tickets exist; a forced switch must renumber all five, but
    // "B-X" starting at 8 covers only values 8 and 9.
    err := e.ReconfigureTicketing(p.ID, model.TicketingSequence, "B-X", "8", true)
    if !errors.Is(err, ErrCapacityExceeded) {
        t.Fatalf("forced reconfigure: err = %v, want ErrCapacityExceeded", err)
    }
    snap, _ := e.Project(p.ID)
    if snap.Ticketing.Mode != model.TicketingRandom {
        t.Fatalf("rejected reconfigure left mode %s", snap.Ticketing.Mode)
    }
    snap.EachSeat(func(s *model.Seat) {
        if s.TicketNumber == nil {
            t.Fatalf("seat (%d,%d) lost its ticket on rejected reconfigure", s.Row, s.Col)
        }
    })
}

func TestForcedReconfigureRefusedWithSoldSeats(t *testing.T) {
    e, _, _, _ := newTestEngine(t)
    p := enabledProject(t, e, 1, 4, 1000)

    seat, _ := e.Lock(p.ID, 0, 0, "conn-a")
    if _, err := e.Issue(p.ID, 0, 0, "conn-a", *seat.TicketNumber); err != nil {
        t.Fatalf("Issue: %v", err)
    }
    err := e.ReconfigureTicketing(p.ID, model.TicketingSequence, "T-XXX", "001", true)
    if !errors.Is(err, ErrInvalidState) {
        t.Fatalf("forced reconfigure with sold seats: err = %v, want ErrInvalidState", err)
    }
}
