package middleware

import (
    "net/http"
    "net/http/httptest"
    "testing"
    "time"

    "github.com/alicebob/miniredis/v2"
    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
    "go.uber.org/zap"

    "github.com/iliyamo/csvboard/internal/config"
)

func rateCfg() config.RateLimitConfig {
    return config.RateLimitConfig{
        Enabled:        true,
        Capacity:       2,
        RefillTokens:   1,
        RefillInterval: time.Hour,
        TTL:            5 * time.Hour,
        Prefix:         "rl",
    }
}

func TestTokenBucket_BlocksAfterCapacity(t *testing.T) {
    mr := miniredis.RunT(t)
    rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
    defer rdb.Close()

    e := echo.New()
    e.POST("/login", func(c echo.Context) error { return c.NoContent(http.StatusOK) }, NewTokenBucket(rateCfg(), rdb, zap.NewNop()))

    codes := make([]int, 0, 3)
    for i := 0; i < 3; i++ {
        req := httptest.NewRequest(http.MethodPost, "/login", nil)
        req.Header.Set(echo.HeaderXRealIP, "10.0.0.1")
        rec := httptest.NewRecorder()
        e.ServeHTTP(rec, req)
        codes = append(codes, rec.Code)
        if rec.Code == http.StatusTooManyRequests {
            assert.NotEmpty(t, rec.Header().Get("Retry-After"))
        }
    }
    assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

    // another client has its own bucket
    req := httptest.NewRequest(http.MethodPost, "/login", nil)
    req.Header.Set(echo.HeaderXRealIP, "10.0.0.2")
    rec := httptest.NewRecorder()
    e.ServeHTTP(rec, req)
    assert.Equal(t, http.StatusOK, rec.Code)

    require.True(t, mr.Exists("rl:ip:10.0.0.1:route:POST /login"))
}

func TestTokenBucket_FailsOpen(t *testing.T) {
    mr := miniredis.RunT(t)
    rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
    defer rdb.Close()
    mr.Close()

    e := echo.New()
    e.POST("/login", func(c echo.Context) error { return c.NoContent(http.StatusOK) }, NewTokenBucket(rateCfg(), rdb, zap.NewNop()))

    req := httptest.NewRequest(http.MethodPost, "/login", nil)
    rec := httptest.NewRecorder()
    e.ServeHTTP(rec, req)
    assert.Equal(t, http.StatusOK, rec.Code)
}

func TestTokenBucket_DisabledPassesThrough(t *testing.T) {
    cfg := rateCfg()
    cfg.Enabled = false
    mw := NewTokenBucket(cfg, nil, zap.NewNop())

    e := echo.New()
    e.POST("/login", func(c echo.Context) error { return c.NoContent(http.StatusOK) }, mw)
    for i := 0; i < 5; i++ {
        rec := httptest.NewRecorder()
        e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/login", nil))
        assert.Equal(t, http.StatusOK, rec.Code)
    }
}
