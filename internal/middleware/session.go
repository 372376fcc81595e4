package middleware

import (
    "net/http"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/csvboard/internal/flash"
    "github.com/iliyamo/csvboard/internal/service"
)

// LoadSession resolves the session cookie, when present and valid, into the
// context keys of identity.go. It never rejects a request; public pages use
// it to tell logged-in visitors apart.
func LoadSession(ids service.IdentityResolver, cookieName string) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            if ck, err := c.Cookie(cookieName); err == nil && ck.Value != "" {
                if uid, err := service.RequireSession(c.Request().Context(), ids, ck.Value); err == nil {
                    c.Set(CtxUserID, uid)
                    c.Set(CtxSessionToken, ck.Value)
                }
            }
            return next(c)
        }
    }
}

// RequireSession rejects requests without an active session. Browsers are
// redirected to /login with a notice; JSON clients get 401.
func RequireSession(ids service.IdentityResolver, cookieName string) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            var token string
            if ck, err := c.Cookie(cookieName); err == nil {
                token = ck.Value
            }
            uid, err := service.RequireSession(c.Request().Context(), ids, token)
            if err != nil {
                if WantsJSON(c) {
                    return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
                }
                flash.Set(c, "Please log in")
                return c.Redirect(http.StatusFound, "/login")
            }
            c.Set(CtxUserID, uid)
            c.Set(CtxSessionToken, token)
            return next(c)
        }
    }
}

// WantsJSON reports whether the client sent or asked for JSON.
func WantsJSON(c echo.Context) bool {
    req := c.Request()
    return strings.HasPrefix(req.Header.Get(echo.HeaderContentType), echo.MIMEApplicationJSON) ||
        strings.Contains(req.Header.Get(echo.HeaderAccept), echo.MIMEApplicationJSON)
}
