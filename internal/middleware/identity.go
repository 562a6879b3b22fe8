package middleware

// identity.go extracts the opaque holder identity that the reservation
// core uses as the lock owner.  A holder is one logical connection, not
// a user: a viewer receives its HolderID over the websocket hello and
// echoes it back in the X-Holder-ID header on every lock, unlock and
// issue request.  Two sessions of the same logged-in user are therefore
// distinct lock holders.

import (
    "net/http"

    "github.com/labstack/echo/v4"
)

// HolderHeader is the request header carrying the connection's holder
// identity.
const HolderHeader = "X-Holder-ID"

// RequireHolder rejects requests without a holder identity and stores
// the identity in the context under "holder_id" for handlers and the
// rate limiter.
func RequireHolder() echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            holder := c.Request().Header.Get(HolderHeader)
            if holder == "" {
                return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing " + HolderHeader + " header"})
            }
            c.Set("holder_id", holder)
            return next(c)
        }
    }
}

// HolderID returns the holder identity stored by RequireHolder.
func HolderID(c echo.Context) string {
    if v, ok := c.Get("holder_id").(string); ok {
        return v
    }
    return ""
}
