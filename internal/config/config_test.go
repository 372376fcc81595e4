package config

import (
    "context"
    "errors"
    "testing"
    "time"

    "github.com/alicebob/miniredis/v2"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func setBaseEnv(t *testing.T) {
    t.Helper()
    t.Setenv("APP_PORT", "8080")
    t.Setenv("SESSION_SECRET", "s3cret")
    t.Setenv("STORE_DRIVER", "memory")
}

func TestLoad_Defaults(t *testing.T) {
    setBaseEnv(t)

    cfg, err := Load()
    require.NoError(t, err)
    assert.Equal(t, "8080", cfg.Port)
    assert.Equal(t, StoreMemory, cfg.StoreDriver)
    assert.Equal(t, "db", cfg.SessionStore)
    assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
    assert.Equal(t, "csvboard_session", cfg.SessionCookie)
    assert.Equal(t, "local", cfg.BlobDriver)
    assert.Equal(t, "uploads", cfg.UploadDir)
    assert.Equal(t, int64(10<<20), cfg.MaxUploadBytes)
    assert.Equal(t, "excel_data", cfg.MongoDB)
    assert.Equal(t, "csvboard.activity", cfg.ActivityQueue)
    assert.False(t, cfg.EventsEnabled)
    assert.False(t, cfg.CookieSecure)
}

func TestLoad_ReportsAllMissing(t *testing.T) {
    t.Setenv("APP_PORT", "")
    t.Setenv("SESSION_SECRET", "")
    t.Setenv("STORE_DRIVER", "mysql")
    t.Setenv("DB_USER", "")
    t.Setenv("DB_HOST", "")
    t.Setenv("DB_NAME", "")

    _, err := Load()
    require.Error(t, err)
    assert.True(t, errors.Is(err, ErrMissingEnv))
    for _, key := range []string{"APP_PORT", "SESSION_SECRET", "DB_USER", "DB_HOST", "DB_NAME"} {
        assert.Contains(t, err.Error(), key)
    }
}

func TestLoad_InvalidDriver(t *testing.T) {
    setBaseEnv(t)
    t.Setenv("STORE_DRIVER", "sqlite")

    _, err := Load()
    assert.ErrorContains(t, err, "STORE_DRIVER")
}

func TestLoad_S3NeedsBucket(t *testing.T) {
    setBaseEnv(t)
    t.Setenv("BLOB_DRIVER", "s3")
    t.Setenv("S3_BUCKET", "")

    _, err := Load()
    assert.ErrorContains(t, err, "S3_BUCKET")
}

func TestLoadRateLimitConfig_Clamps(t *testing.T) {
    t.Setenv("RATE_LIMIT_CAPACITY", "0")
    t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "2s")
    t.Setenv("RATE_LIMIT_TTL", "1s")

    rl := LoadRateLimitConfig()
    assert.Equal(t, 1, rl.Capacity)
    assert.Equal(t, 10*time.Second, rl.TTL)
}

func TestNewRedisClient(t *testing.T) {
    mr := miniredis.RunT(t)

    rdb := NewRedisClient(context.Background(), RedisConfig{Addr: mr.Addr()})
    require.NotNil(t, rdb)
    _ = rdb.Close()

    addr := mr.Addr()
    mr.Close()
    assert.Nil(t, NewRedisClient(context.Background(), RedisConfig{Addr: addr}))
}

func TestLoadActivityConfig(t *testing.T) {
    t.Setenv("ACTIVITY_QUEUE", "custom.q")
    t.Setenv("ACTIVITY_LOG", "")

    ac := LoadActivityConfig()
    assert.Equal(t, "custom.q", ac.Queue)
    assert.Equal(t, "logs/activity.log", ac.LogPath)
}
