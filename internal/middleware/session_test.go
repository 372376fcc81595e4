package middleware

import (
    "context"
    "net/http"
    "net/http/httptest"
    "testing"

    "github.com/labstack/echo/v4"
    "github.com/stretchr/testify/assert"
)

// fakeResolver accepts exactly one token.
type fakeResolver struct{ token, userID string }

func (f fakeResolver) CurrentIdentity(_ context.Context, token string) (string, bool) {
    if token != "" && token == f.token {
        return f.userID, true
    }
    return "", false
}

func newSessionEcho() *echo.Echo {
    e := echo.New()
    ids := fakeResolver{token: "good", userID: "u1"}
    e.GET("/private", func(c echo.Context) error {
        return c.String(http.StatusOK, UserID(c)+"|"+SessionToken(c))
    }, RequireSession(ids, "sid"))
    e.GET("/public", func(c echo.Context) error {
        return c.String(http.StatusOK, "uid="+UserID(c))
    }, LoadSession(ids, "sid"))
    return e
}

func TestRequireSession(t *testing.T) {
    e := newSessionEcho()

    t.Run("valid cookie", func(t *testing.T) {
        req := httptest.NewRequest(http.MethodGet, "/private", nil)
        req.AddCookie(&http.Cookie{Name: "sid", Value: "good"})
        rec := httptest.NewRecorder()
        e.ServeHTTP(rec, req)
        assert.Equal(t, http.StatusOK, rec.Code)
        assert.Equal(t, "u1|good", rec.Body.String())
    })

    t.Run("browser without session is redirected", func(t *testing.T) {
        req := httptest.NewRequest(http.MethodGet, "/private", nil)
        req.AddCookie(&http.Cookie{Name: "sid", Value: "stale"})
        rec := httptest.NewRecorder()
        e.ServeHTTP(rec, req)
        assert.Equal(t, http.StatusFound, rec.Code)
        assert.Equal(t, "/login", rec.Header().Get(echo.HeaderLocation))
    })

    t.Run("json client gets 401", func(t *testing.T) {
        req := httptest.NewRequest(http.MethodGet, "/private", nil)
        req.Header.Set(echo.HeaderAccept, echo.MIMEApplicationJSON)
        rec := httptest.NewRecorder()
        e.ServeHTTP(rec, req)
        assert.Equal(t, http.StatusUnauthorized, rec.Code)
        assert.JSONEq(t, `{"error":"unauthorized"}`, rec.Body.String())
    })
}

func TestLoadSession(t *testing.T) {
    e := newSessionEcho()

    req := httptest.NewRequest(http.MethodGet, "/public", nil)
    rec := httptest.NewRecorder()
    e.ServeHTTP(rec, req)
    assert.Equal(t, "uid=", rec.Body.String())

    req = httptest.NewRequest(http.MethodGet, "/public", nil)
    req.AddCookie(&http.Cookie{Name: "sid", Value: "good"})
    rec = httptest.NewRecorder()
    e.ServeHTTP(rec, req)
    assert.Equal(t, "uid=u1", rec.Body.String())
}
