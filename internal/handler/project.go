package handler

import (
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/venue-ticketing/internal/engine"
    "github.com/iliyamo/venue-ticketing/internal/middleware"
    "github.com/iliyamo/venue-ticketing/internal/model"
)

// ProjectHandler exposes the administrative surface of the engine:
// project lifecycle, seat enabling, overrides, check-in, labeling and
// ticketing configuration.  JWT authentication with the ADMIN role is
// enforced by middleware before any of these run.
type ProjectHandler struct {
    Engine *engine.Engine
}

// NewProjectHandler constructs a ProjectHandler.  The engine must be
// non-nil.
func NewProjectHandler(e *engine.Engine) *ProjectHandler {
    if e == nil {
        panic("nil engine passed to NewProjectHandler")
    }
    return &ProjectHandler{Engine: e}
}

// cellRange addresses a rectangular block of seats in a request body.
// Either a cell list, a range, or both may be supplied.
type cellRange struct {
    FromRow int `json:"from_row"`
    ToRow   int `json:"to_row"`
    FromCol int `json:"from_col"`
    ToCol   int `json:"to_col"`
}

// expand merges an explicit cell list and an optional rectangle into
// one deduplicated slice.
func expandCells(cells []engine.Cell, rng *cellRange) []engine.Cell {
    seen := make(map[engine.Cell]bool, len(cells))
    out := make([]engine.Cell, 0, len(cells))
    add := func(c engine.Cell) {
        if !seen[c] {
            seen[c] = true
            out = append(out, c)
        }
    }
    for _, c := range cells {
        add(c)
    }
    if rng != nil {
        for r := rng.FromRow; r <= rng.ToRow; r++ {
            for c := rng.FromCol; c <= rng.ToCol; c++ {
                add(engine.Cell{Row: r, Col: c})
            }
        }
    }
    return out
}

// Create handles POST /v1/projects.
func (h *ProjectHandler) Create(c echo.Context) error {
    var body struct {
        Name string `json:"name"`
        Rows int    `json:"rows"`
        Cols int    `json:"cols"`
    }
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    p, err := h.Engine.CreateProject(body.Name, body.Rows, body.Cols)
    if err != nil {
        return engineError(c, err)
    }
    return c.JSON(http.StatusCreated, p)
}

// List handles GET /v1/projects.  It returns lightweight summaries; the
// full grid is fetched per project or streamed over the websocket.
func (h *ProjectHandler) List(c echo.Context) error {
    type summary struct {
        ID        uint64 `json:"id"`
        Name      string `json:"name"`
        Rows      int    `json:"rows"`
        Cols      int    `json:"cols"`
        UpdatedAt string `json:"updated_at"`
    }
    projects := h.Engine.Projects()
    items := make([]summary, 0, len(projects))
    for _, p := range projects {
        items = append(items, summary{
            ID:        p.ID,
            Name:      p.Name,
            Rows:      p.Rows,
            Cols:      p.Cols,
            UpdatedAt: p.UpdatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
        })
    }
    return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// Get handles GET /v1/projects/:id and returns the full snapshot.
func (h *ProjectHandler) Get(c echo.Context) error {
    id, err := projectID(c)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
    }
    p, err := h.Engine.Project(id)
    if err != nil {
        return engineError(c, err)
    }
    return c.JSON(http.StatusOK, p)
}

// Delete handles DELETE /v1/projects/:id.
func (h *ProjectHandler) Delete(c echo.Context) error {
    id, err := projectID(c)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
    }
    if err := h.Engine.DeleteProject(id); err != nil {
        return engineError(c, err)
    }
    return c.NoContent(http.StatusNoContent)
}

// EnableSeats handles POST /v1/projects/:id/seats/enable.  It opens the
// addressed seats for sale at the given price; labels and ticket
// numbers follow automatically.
func (h *ProjectHandler) EnableSeats(c echo.Context) error {
    id, err := projectID(c)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
    }
    var body struct {
        Cells      []engine.Cell `json:"cells"`
        Range      *cellRange    `json:"range"`
        PriceCents uint32        `json:"price_cents"`
    }
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    cells := expandCells(body.Cells, body.Range)
    if len(cells) == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "no seats addressed"})
    }
    if body.PriceCents == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "price_cents is required"})
    }
    if err := h.Engine.EnableSeats(id, cells, body.PriceCents); err != nil {
        return engineError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"enabled": len(cells)})
}

// DisableSeats handles POST /v1/projects/:id/seats/disable.  The
// addressed seats are reset to DISABLED.
func (h *ProjectHandler) DisableSeats(c echo.Context) error {
    id, err := projectID(c)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
    }
    var body struct {
        Cells []engine.Cell `json:"cells"`
        Range *cellRange    `json:"range"`
    }
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    cells := expandCells(body.Cells, body.Range)
    if len(cells) == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "no seats addressed"})
    }
    if err := h.Engine.DisableSeats(id, cells); err != nil {
        return engineError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"disabled": len(cells)})
}

// Override handles POST /v1/projects/:id/seats/override, the
// administrative escape hatch that forces a seat to AVAILABLE or
// DISABLED outside the normal lifecycle.
func (h *ProjectHandler) Override(c echo.Context) error {
    id, err := projectID(c)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
    }
    var body struct {
        Row    int              `json:"row"`
        Col    int              `json:"col"`
        Status model.SeatStatus `json:"status"`
    }
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    seat, err := h.Engine.OverrideSeat(id, body.Row, body.Col, body.Status)
    if err != nil {
        return engineError(c, err)
    }
    return c.JSON(http.StatusOK, seat)
}

// CheckIn handles POST /v1/projects/:id/seats/checkin.  The acting
// administrator is recorded on the seat.
func (h *ProjectHandler) CheckIn(c echo.Context) error {
    id, err := projectID(c)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
    }
    var body struct {
        Row int `json:"row"`
        Col int `json:"col"`
    }
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    seat, err := h.Engine.CheckIn(id, body.Row, body.Col, middleware.Actor(c))
    if err != nil {
        return engineError(c, err)
    }
    return c.JSON(http.StatusOK, seat)
}

// Ticketing handles PUT /v1/projects/:id/ticketing.  With force=true the
// sequence cursor is rewound and every enabled seat renumbered, which
// the engine refuses while sold seats exist.
func (h *ProjectHandler) Ticketing(c echo.Context) error {
    id, err := projectID(c)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
    }
    var body struct {
        Mode       model.TicketingMode `json:"mode"`
        Template   string              `json:"template"`
        StartValue string              `json:"start_value"`
        Force      bool                `json:"force"`
    }
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    if err := h.Engine.ReconfigureTicketing(id, body.Mode, body.Template, body.StartValue, body.Force); err != nil {
        return engineError(c, err)
    }
    p, err := h.Engine.Project(id)
    if err != nil {
        return engineError(c, err)
    }
    return c.JSON(http.StatusOK, p.Ticketing)
}

// Relabel handles POST /v1/projects/:id/labels.  Without rows the whole
// grid is relabeled.
func (h *ProjectHandler) Relabel(c echo.Context) error {
    id, err := projectID(c)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
    }
    var body struct {
        Rows []int `json:"rows"`
    }
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    if err := h.Engine.RelabelRows(id, body.Rows...); err != nil {
        return engineError(c, err)
    }
    return c.NoContent(http.StatusNoContent)
}
