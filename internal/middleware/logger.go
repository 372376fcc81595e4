package middleware

import (
    "github.com/labstack/echo/v4"
    echomw "github.com/labstack/echo/v4/middleware"
    "go.uber.org/zap"
)

// RequestLogger writes one zap line per request.
func RequestLogger(log *zap.Logger) echo.MiddlewareFunc {
    return echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
        LogMethod:    true,
        LogURI:       true,
        LogStatus:    true,
        LogLatency:   true,
        LogRemoteIP:  true,
        LogRequestID: true,
        LogError:     true,
        HandleError:  true,
        LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
            fields := []zap.Field{
                zap.String("method", v.Method),
                zap.String("uri", v.URI),
                zap.Int("status", v.Status),
                zap.Duration("latency", v.Latency),
                zap.String("remote_ip", v.RemoteIP),
            }
            if v.RequestID != "" {
                fields = append(fields, zap.String("request_id", v.RequestID))
            }
            if uid := UserID(c); uid != "" {
                fields = append(fields, zap.String("user_id", uid))
            }
            if v.Error != nil {
                log.Error("request", append(fields, zap.Error(v.Error))...)
                return nil
            }
            log.Info("request", fields...)
            return nil
        },
    })
}
