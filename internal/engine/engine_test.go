package engine

import (
    "context"
    "errors"
    "sync"
    "testing"
    "time"

    "github.com/iliyamo/venue-ticketing/internal/model"
)

// fakeStore records saves and deletes in memory so tests can assert the
// persist-once-per-mutation behavior without a database.
type fakeStore struct {
    mu      sync.Mutex
    saved   map[uint64]*model.Project
    saves   int
    deletes int
    failing bool
}

func newFakeStore() *fakeStore {
    return &fakeStore{saved: make(map[uint64]*model.Project)}
}

func (f *fakeStore) LoadAll(ctx context.Context) ([]*model.Project, error) {
    f.mu.Lock()
    defer f.mu.Unlock()
    out := make([]*model.Project, 0, len(f.saved))
    for _, p := range f.saved {
        out = append(out, p.Clone())
    }
    return out, nil
}

func (f *fakeStore) SaveProject(ctx context.Context, p *model.Project) error {
    f.mu.Lock()
    defer f.mu.Unlock()
    if f.failing {
        return errors.New("disk on fire")
    }
    f.saved[p.ID] = p.Clone()
    f.saves++
    return nil
}

func (f *fakeStore) DeleteProject(ctx context.Context, id uint64) error {
    f.mu.Lock()
    defer f.mu.Unlock()
    delete(f.saved, id)
    f.deletes++
    return nil
}

func (f *fakeStore) saveCount() int {
    f.mu.Lock()
    defer f.mu.Unlock()
    return f.saves
}

// fakeSink counts snapshot publications per project.
type fakeSink struct {
    mu        sync.Mutex
    published map[uint64]int
}

func newFakeSink() *fakeSink {
    return &fakeSink{published: make(map[uint64]int)}
}

func (f *fakeSink) Publish(projectID uint64, snapshot *model.Project) {
    f.mu.Lock()
    defer f.mu.Unlock()
    f.published[projectID]++
}

func (f *fakeSink) count(projectID uint64) int {
    f.mu.Lock()
    defer f.mu.Unlock()
    return f.published[projectID]
}

// testClock is a manual clock for deterministic TTL checks.
type testClock struct {
    mu sync.Mutex
    t  time.Time
}

func newTestClock() *testClock {
    return &testClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *testClock) now() time.Time {
    c.mu.Lock()
    defer c.mu.Unlock()
    return c.t
}

func (c *testClock) advance(d time.Duration) {
    c.mu.Lock()
    c.t = c.t.Add(d)
    c.mu.Unlock()
}

func newTestEngine(t *testing.T) (*Engine, *fakeStore, *fakeSink, *testClock) {
    t.Helper()
    st := newFakeStore()
    sink := newFakeSink()
    clk := newTestClock()
    e := New(st, sink)
    e.now = clk.now
    return e, st, sink, clk
}

// enabledProject creates a project and opens rows×cols seats at the
// given price.
func enabledProject(t *testing.T, e *Engine, rows, cols int, price uint32) *model.Project {
    t.Helper()
    p, err := e.CreateProject("main hall", rows, cols)
    if err != nil {
        t.Fatalf("CreateProject: %v", err)
    }
    cells := make([]Cell, 0, rows*cols)
    for r := 0; r < rows; r++ {
        for c := 0; c < cols; c++ {
            cells = append(cells, Cell{Row: r, Col: c})
        }
    }
    if err := e.EnableSeats(p.ID, cells, price); err != nil {
        t.Fatalf("EnableSeats: %v", err)
    }
    return p
}

func TestDisabledSeatCarriesNothing(t *testing.T) {
    e, _, _, _ := newTestEngine(t)
    p, err := e.CreateProject("hall", 2, 3)
    if err != nil {
        t.Fatalf("CreateProject: %v", err)
    }
    snap, _ := e.Project(p.ID)
    snap.EachSeat(func(s *model.Seat) {
        if s.Status != model.SeatDisabled {
            t.Fatalf("new seat (%d,%d) status = %s, want DISABLED", s.Row, s.Col, s.Status)
        }
        if s.PriceCents != nil || s.TicketNumber != nil || s.SeatLabel != nil || s.LockedBy != nil {
            t.Fatalf("disabled seat (%d,%d) carries data", s.Row, s.Col)
        }
    })

    // Disabling an enabled, ticketed seat must drop everything again.
    if err := e.EnableSeats(p.ID, []Cell{{Row: 0, Col: 0}}, 1500); err != nil {
        t.Fatalf("EnableSeats: %v", err)
    }
    if err := e.DisableSeats(p.ID, []Cell{{Row: 0, Col: 0}}); err != nil {
        t.Fatalf("DisableSeats: %v", err)
    }
    snap, _ = e.Project(p.ID)
    s := snap.Seat(0, 0)
    if s.Status != model.SeatDisabled || s.PriceCents != nil || s.TicketNumber != nil || s.SeatLabel != nil {
        t.Fatalf("reset seat still carries data: %+v", s)
    }
}

func TestLockAssignsTicketAndBroadcastsOnce(t *testing.T) {
    e, st, sink, _ := newTestEngine(t)
    p := enabledProject(t, e, 1, 4, 2000)

    savesBefore := st.saveCount()
    publishedBefore := sink.count(p.ID)

    seat, err := e.Lock(p.ID, 0, 1, "conn-a")
    if err != nil {
        t.Fatalf("Lock: %v", err)
    }
    if seat.Status != model.SeatLocked || seat.LockedBy == nil || *seat.LockedBy != "conn-a" {
        t.Fatalf("locked seat state wrong: %+v", seat)
    }
    if seat.TicketNumber == nil {
        t.Fatal("locked seat has no ticket number")
    }
    if seat.LockExpiresAt == nil {
        t.Fatal("locked seat has no expiry")
    }
    if got := st.saveCount() - savesBefore; got != 1 {
        t.Fatalf("lock persisted %d times, want 1", got)
    }
    if got := sink.count(p.ID) - publishedBefore; got != 1 {
        t.Fatalf("lock broadcast %d times, want 1", got)
    }
}

func TestLockRejectsDisabledAndSold(t *testing.T) {
    e, _, _, _ := newTestEngine(t)
    p, _ := e.CreateProject("hall", 1, 4)
    if err := e.EnableSeats(p.ID, []Cell{{Row: 0, Col: 0}}, 1000); err != nil {
        t.Fatalf("EnableSeats: %v", err)
    }

    if _, err := e.Lock(p.ID, 0, 3, "conn-a"); !errors.Is(err, ErrInvalidState) {
        t.Fatalf("lock on disabled seat: err = %v, want ErrInvalidState", err)
    }
    if _, err := e.Lock(p.ID, 9, 9, "conn-a"); !errors.Is(err, ErrSeatNotFound) {
        t.Fatalf("lock out of grid: err = %v, want ErrSeatNotFound", err)
    }

    seat, err := e.Lock(p.ID, 0, 0, "conn-a")
    if err != nil {
        t.Fatalf("Lock: %v", err)
    }
    if _, err := e.Issue(p.ID, 0, 0, "conn-a", *seat.TicketNumber); err != nil {
        t.Fatalf("Issue: %v", err)
    }
    if _, err := e.Lock(p.ID, 0, 0, "conn-b"); !errors.Is(err, ErrInvalidState) {
        t.Fatalf("lock on sold seat: err = %v, want ErrInvalidState", err)
    }
}

func TestIssueAntiTamper(t *testing.T) {
    e, _, _, _ := newTestEngine(t)
    p := enabledProject(t, e, 1, 2, 1000)

    seat, err := e.Lock(p.ID, 0, 0, "conn-a")
    if err != nil {
        t.Fatalf("Lock: %v", err)
    }

    if _, err := e.Issue(p.ID, 0, 0, "conn-a", "not-the-number"); !errors.Is(err, ErrTicketMismatch) {
        t.Fatalf("issue with wrong number: err = %v, want ErrTicketMismatch", err)
    }
    snap, _ := e.Project(p.ID)
    if got := snap.Seat(0, 0).Status; got != model.SeatLocked {
        t.Fatalf("failed issue changed status to %s", got)
    }

    // The holder check comes after the tamper check.
    if _, err := e.Issue(p.ID, 0, 0, "conn-b", *seat.TicketNumber); !errors.Is(err, ErrNotHolder) {
        t.Fatalf("issue by non-holder: err = %v, want ErrNotHolder", err)
    }

    sold, err := e.Issue(p.ID, 0, 0, "conn-a", *seat.TicketNumber)
    if err != nil {
        t.Fatalf("Issue: %v", err)
    }
    if sold.Status != model.SeatSold || sold.IssuedAt == nil || sold.LockedBy != nil {
        t.Fatalf("sold seat state wrong: %+v", sold)
    }
}

func TestPersistenceFailureKeepsMutation(t *testing.T) {
    e, st, _, _ := newTestEngine(t)
    p := enabledProject(t, e, 1, 2, 1000)

    st.mu.Lock()
    st.failing = true
    st.mu.Unlock()

    _, err := e.Lock(p.ID, 0, 0, "conn-a")
    if !errors.Is(err, ErrPersistence) {
        t.Fatalf("lock with failing store: err = %v, want ErrPersistence", err)
    }
    // The in-memory mutation must survive the failed write.
    snap, _ := e.Project(p.ID)
    if got := snap.Seat(0, 0).Status; got != model.SeatLocked {
        t.Fatalf("seat status = %s after failed save, want LOCKED", got)
    }
}

func TestCheckIn(t *testing.T) {
    e, _, _, _ := newTestEngine(t)
    p := enabledProject(t, e, 1, 2, 1000)

    if _, err := e.CheckIn(p.ID, 0, 0, "door-1"); !errors.Is(err, ErrInvalidState) {
        t.Fatalf("check-in on unsold seat: err = %v, want ErrInvalidState", err)
    }
    seat, _ := e.Lock(p.ID, 0, 0, "conn-a")
    if _, err := e.Issue(p.ID, 0, 0, "conn-a", *seat.TicketNumber); err != nil {
        t.Fatalf("Issue: %v", err)
    }
    checked, err := e.CheckIn(p.ID, 0, 0, "door-1")
    if err != nil {
        t.Fatalf("CheckIn: %v", err)
    }
    if checked.CheckedInAt == nil || checked.CheckedInBy == nil || *checked.CheckedInBy != "door-1" {
        t.Fatalf("check-in state wrong: %+v", checked)
    }
    if _, err := e.CheckIn(p.ID, 0, 0, "door-2"); !errors.Is(err, ErrInvalidState) {
        t.Fatalf("double check-in: err = %v, want ErrInvalidState", err)
    }
}

func TestOverrideSoldSeat(t *testing.T) {
    e, _, _, _ := newTestEngine(t)
    p := enabledProject(t, e, 1, 2, 1000)

    seat, _ := e.Lock(p.ID, 0, 0, "conn-a")
    if _, err := e.Issue(p.ID, 0, 0, "conn-a", *seat.TicketNumber); err != nil {
        t.Fatalf("Issue: %v", err)
    }

    reopened, err := e.OverrideSeat(p.ID, 0, 0, model.SeatAvailable)
    if err != nil {
        t.Fatalf("OverrideSeat: %v", err)
    }
    if reopened.Status != model.SeatAvailable || reopened.IssuedAt != nil {
        t.Fatalf("reopened seat state wrong: %+v", reopened)
    }
    // Price and label survive the reopen; a full reset requires DISABLED.
    if reopened.PriceCents == nil || reopened.SeatLabel == nil {
        t.Fatalf("reopen dropped price or label: %+v", reopened)
    }

    wiped, err := e.OverrideSeat(p.ID, 0, 0, model.SeatDisabled)
    if err != nil {
        t.Fatalf("OverrideSeat to DISABLED: %v", err)
    }
    if wiped.Status != model.SeatDisabled || wiped.PriceCents != nil || wiped.TicketNumber != nil {
        t.Fatalf("disabled seat still carries data: %+v", wiped)
    }
}

func TestPriceColorsStableFirstCome(t *testing.T) {
    e, _, _, _ := newTestEngine(t)
    p, _ := e.CreateProject("hall", 1, 4)

    if err := e.EnableSeats(p.ID, []Cell{{Row: 0, Col: 0}, {Row: 0, Col: 1}}, 1000); err != nil {
        t.Fatalf("EnableSeats: %v", err)
    }
    snap, _ := e.Project(p.ID)
    first := snap.PriceColorMap["1000"]
    if first == "" {
        t.Fatal("no color assigned for price 1000")
    }

    if err := e.EnableSeats(p.ID, []Cell{{Row: 0, Col: 2}}, 2500); err != nil {
        t.Fatalf("EnableSeats: %v", err)
    }
    snap, _ = e.Project(p.ID)
    if snap.PriceColorMap["1000"] != first {
        t.Fatal("color for price 1000 was reassigned")
    }
    if snap.PriceColorMap["2500"] == "" || snap.PriceColorMap["2500"] == first {
        t.Fatalf("second price got color %q, want a distinct one", snap.PriceColorMap["2500"])
    }
}
