package middleware

// identity.go holds the context keys shared by the session middleware, the
// rate limiter and the handlers.

import "github.com/labstack/echo/v4"

const (
    // CtxUserID holds the authenticated user id (string).
    CtxUserID = "user_id"
    // CtxSessionToken holds the raw session token of the request.
    CtxSessionToken = "session_token"
)

// UserID returns the authenticated user id, or "" for anonymous requests.
func UserID(c echo.Context) string {
    if s, ok := c.Get(CtxUserID).(string); ok {
        return s
    }
    return ""
}

// SessionToken returns the session token the request was authenticated with.
func SessionToken(c echo.Context) string {
    if s, ok := c.Get(CtxSessionToken).(string); ok {
        return s
    }
    return ""
}
