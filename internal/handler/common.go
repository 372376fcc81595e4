package handler

import (
    "context"
    "errors"
    "io"
    "mime/multipart"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"
    "go.uber.org/zap"

    "github.com/iliyamo/csvboard/internal/flash"
    "github.com/iliyamo/csvboard/internal/middleware"
    "github.com/iliyamo/csvboard/internal/model"
    "github.com/iliyamo/csvboard/internal/service"
)

// msgInternal is shown when a request failed for reasons the user cannot fix.
const msgInternal = "Something went wrong, please try again."

// storeTimeout bounds every request's store calls.
const storeTimeout = 5 * time.Second

// CookieOptions controls the session cookie.
type CookieOptions struct {
    Name   string
    Secure bool
}

// page is the data every template receives. Me is nil for anonymous pages.
type page struct {
    Title   string
    Flashes []string
    Theme   string
    Me      *model.Profile
}

func requestCtx(c echo.Context) (context.Context, context.CancelFunc) {
    return context.WithTimeout(c.Request().Context(), storeTimeout)
}

// getUserID returns the user id placed in the context by the session
// middleware.
func getUserID(c echo.Context) (string, error) {
    if uid := middleware.UserID(c); uid != "" {
        return uid, nil
    }
    return "", service.ErrUnauthorized
}

// newPage builds the common template data. For logged-in users it loads the
// profile so the layout can show the name and apply the theme.
func newPage(c echo.Context, profiles *service.ProfileService, log *zap.Logger, title string) page {
    p := page{Title: title, Theme: model.DefaultTheme}
    if uid := middleware.UserID(c); uid != "" && profiles != nil {
        ctx, cancel := requestCtx(c)
        defer cancel()
        prof, err := profiles.GetProfile(ctx, uid)
        if err != nil {
            log.Warn("load profile for page failed", zap.String("user_id", uid), zap.Error(err))
        } else {
            p.Me = &prof
            if prof.Theme != "" {
                p.Theme = prof.Theme
            }
        }
    }
    // popped last so notices set while building the page are included
    p.Flashes = flash.Pop(c)
    return p
}

// redirectWith flashes msg and redirects to path with 302.
func redirectWith(c echo.Context, path, msg string) error {
    if msg != "" {
        flash.Set(c, msg)
    }
    return c.Redirect(http.StatusFound, path)
}

// internalError logs err and sends the user to path with a generic notice.
func internalError(c echo.Context, log *zap.Logger, path string, err error) error {
    log.Error("request failed",
        zap.String("path", c.Path()),
        zap.String("user_id", middleware.UserID(c)),
        zap.Error(err))
    return redirectWith(c, path, msgInternal)
}

// errFileTooLarge is returned by readFormFile for parts over the limit.
var errFileTooLarge = errors.New("form file too large")

// readFormFile reads an uploaded part, refusing more than max bytes.
func readFormFile(fh *multipart.FileHeader, max int64) ([]byte, error) {
    if fh.Size > max {
        return nil, errFileTooLarge
    }
    f, err := fh.Open()
    if err != nil {
        return nil, err
    }
    defer f.Close()
    data, err := io.ReadAll(io.LimitReader(f, max+1))
    if err != nil {
        return nil, err
    }
    if int64(len(data)) > max {
        return nil, errFileTooLarge
    }
    return data, nil
}
