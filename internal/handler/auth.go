package handler

import (
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/venue-ticketing/internal/config"
    "github.com/iliyamo/venue-ticketing/internal/utils"
)

// AuthHandler implements the administrative login.  The engine itself
// never interprets identities; this handler only exists so that the
// elevated-privilege routes (project creation, seat enabling, ticketing
// reconfiguration, overrides) can be guarded by a signed token.
type AuthHandler struct {
    Cfg config.Config
}

// NewAuthHandler constructs an AuthHandler bound to the runtime config.
func NewAuthHandler(cfg config.Config) *AuthHandler {
    return &AuthHandler{Cfg: cfg}
}

// Login handles POST /v1/auth/login.  It accepts the administrative
// email and password, verifies them against the configured credentials
// (the password as a bcrypt hash), and returns a short-lived ADMIN
// access token.
func (h *AuthHandler) Login(c echo.Context) error {
    var body struct {
        Email    string `json:"email"`
        Password string `json:"password"`
    }
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    if body.Email != h.Cfg.AdminEmail || !utils.VerifyPassword(h.Cfg.AdminPassHash, body.Password) {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
    }
    tok, err := utils.NewAccessToken(h.Cfg.JWTSecret, body.Email, "ADMIN", h.Cfg.AccessTTLMin)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to sign token"})
    }
    return c.JSON(http.StatusOK, echo.Map{
        "access_token": tok.Token,
        "expires_at":   tok.Exp,
    })
}
