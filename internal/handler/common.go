package handler

import (
    "errors"
    "net/http"
    "strconv"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/venue-ticketing/internal/engine"
)

// common.go holds the pieces shared by the project and reservation
// handlers: path parsing and the translation of engine sentinel errors
// into HTTP responses.

// projectID parses the :id path parameter.
func projectID(c echo.Context) (uint64, error) {
    id, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil || id == 0 {
        return 0, errors.New("invalid project id")
    }
    return id, nil
}

// engineError maps an engine error to its HTTP representation.  The
// mapping mirrors the error taxonomy of the engine package: not-found
// conditions become 404, state conflicts 409, ownership violations 403,
// sequencer configuration problems 422, and persistence failures 500
// (the mutation itself was kept, as the body notes).
func engineError(c echo.Context, err error) error {
    switch {
    case errors.Is(err, engine.ErrProjectNotFound):
        return c.JSON(http.StatusNotFound, echo.Map{"error": "project not found"})
    case errors.Is(err, engine.ErrSeatNotFound):
        return c.JSON(http.StatusNotFound, echo.Map{"error": "seat not found"})
    case errors.Is(err, engine.ErrHeldByOther):
        return c.JSON(http.StatusConflict, echo.Map{"error": "seat held by another holder"})
    case errors.Is(err, engine.ErrNotHolder):
        return c.JSON(http.StatusForbidden, echo.Map{"error": "not the lock holder"})
    case errors.Is(err, engine.ErrTicketMismatch):
        return c.JSON(http.StatusConflict, echo.Map{"error": "ticket number mismatch"})
    case errors.Is(err, engine.ErrInvalidState):
        return c.JSON(http.StatusConflict, echo.Map{"error": "operation not valid for current seat state"})
    case errors.Is(err, engine.ErrSequenceExhausted):
        return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "ticket sequence exhausted"})
    case errors.Is(err, engine.ErrCapacityExceeded):
        return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "ticket sequence capacity exceeded"})
    case errors.Is(err, engine.ErrInvalidTemplate):
        return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": err.Error()})
    case errors.Is(err, engine.ErrPersistence):
        return c.JSON(http.StatusInternalServerError, echo.Map{
            "error":  "persistence failure",
            "detail": "the change was applied in memory and will be written on the next successful save",
        })
    default:
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
    }
}
