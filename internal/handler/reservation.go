package handler

import (
    "context"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/venue-ticketing/internal/engine"
    "github.com/iliyamo/venue-ticketing/internal/middleware"
    "github.com/iliyamo/venue-ticketing/internal/queue"
    queue_publisher "github.com/iliyamo/venue-ticketing/internal/service"
)

// ReservationHandler drives the seat lifecycle on behalf of sales
// connections: lock, unlock and issue.  The holder identity comes from
// the X-Holder-ID header (enforced by middleware); the handlers never
// interpret it beyond passing it to the engine.
type ReservationHandler struct {
    Engine *engine.Engine
}

// NewReservationHandler constructs a ReservationHandler.  The engine
// must be non-nil.
func NewReservationHandler(e *engine.Engine) *ReservationHandler {
    if e == nil {
        panic("nil engine passed to NewReservationHandler")
    }
    return &ReservationHandler{Engine: e}
}

type seatRef struct {
    Row int `json:"row"`
    Col int `json:"col"`
}

// Lock handles POST /v1/projects/:id/seats/lock.  On success the seat is
// exclusively held for the connection until the TTL lapses, and the
// response carries the ticket number the client must echo back on
// issuance.
func (h *ReservationHandler) Lock(c echo.Context) error {
    id, err := projectID(c)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
    }
    var body seatRef
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    seat, err := h.Engine.Lock(id, body.Row, body.Col, middleware.HolderID(c))
    if err != nil {
        return engineError(c, err)
    }
    return c.JSON(http.StatusOK, seat)
}

// Unlock handles POST /v1/projects/:id/seats/unlock.
func (h *ReservationHandler) Unlock(c echo.Context) error {
    id, err := projectID(c)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
    }
    var body seatRef
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    seat, err := h.Engine.Unlock(id, body.Row, body.Col, middleware.HolderID(c))
    if err != nil {
        return engineError(c, err)
    }
    return c.JSON(http.StatusOK, seat)
}

// Issue handles POST /v1/projects/:id/seats/issue.  The body must echo
// the ticket number the client was shown when it locked the seat; a
// mismatch rejects the issuance.  A sold seat is announced on the
// ticket.issued queue, fire-and-forget.
func (h *ReservationHandler) Issue(c echo.Context) error {
    id, err := projectID(c)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
    }
    var body struct {
        Row          int    `json:"row"`
        Col          int    `json:"col"`
        TicketNumber string `json:"ticket_number"`
    }
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    holder := middleware.HolderID(c)
    seat, err := h.Engine.Issue(id, body.Row, body.Col, holder, body.TicketNumber)
    if err != nil {
        return engineError(c, err)
    }

    ev := queue.TicketIssuedEvent{
        ProjectID:    id,
        Row:          seat.Row,
        Col:          seat.Col,
        TicketNumber: body.TicketNumber,
        HolderID:     holder,
    }
    if seat.SeatLabel != nil {
        ev.SeatLabel = *seat.SeatLabel
    }
    if seat.PriceCents != nil {
        ev.PriceCents = *seat.PriceCents
    }
    if seat.IssuedAt != nil {
        ev.IssuedAt = seat.IssuedAt.UTC().Format(time.RFC3339)
    }
    if p, perr := h.Engine.Project(id); perr == nil {
        ev.ProjectName = p.Name
    }
    // Broker failures must not fail the sale; the publisher logs them.
    go func() {
        ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
        defer cancel()
        _ = queue_publisher.PublishTicketIssued(ctx, ev)
    }()

    return c.JSON(http.StatusOK, seat)
}

// ReleaseHolder handles DELETE /v1/holders/:holder.  It drops every lock
// owned by the holder across all projects: the cleanup path for a
// connection that disappeared without unlocking.  Idempotent: a second
// call is a no-op.
func (h *ReservationHandler) ReleaseHolder(c echo.Context) error {
    holder := c.Param("holder")
    if holder == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid holder id"})
    }
    released := h.Engine.ReleaseHolder(holder)
    return c.JSON(http.StatusOK, echo.Map{"projects_touched": released})
}
