package handler

import (
    "errors"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"
    "go.uber.org/zap"

    "github.com/iliyamo/csvboard/internal/flash"
    "github.com/iliyamo/csvboard/internal/middleware"
    "github.com/iliyamo/csvboard/internal/service"
)

// AuthHandler serves registration, login and logout.
type AuthHandler struct {
    Auth   *service.AuthService
    Log    *zap.Logger
    Cookie CookieOptions
}

func NewAuthHandler(auth *service.AuthService, log *zap.Logger, cookie CookieOptions) *AuthHandler {
    return &AuthHandler{Auth: auth, Log: log, Cookie: cookie}
}

// Index sends visitors to the dashboard when logged in, to login otherwise.
func (h *AuthHandler) Index(c echo.Context) error {
    if middleware.UserID(c) != "" {
        return c.Redirect(http.StatusFound, "/dashboard")
    }
    return c.Redirect(http.StatusFound, "/login")
}

func (h *AuthHandler) RegisterForm(c echo.Context) error {
    return c.Render(http.StatusOK, "register.html", newPage(c, nil, h.Log, "Register"))
}

// Register creates the account and sends the user to the login page.
func (h *AuthHandler) Register(c echo.Context) error {
    ctx, cancel := requestCtx(c)
    defer cancel()

    _, err := h.Auth.Register(ctx, c.FormValue("username"), c.FormValue("password"))
    switch {
    case err == nil:
        return redirectWith(c, "/login", "Registered successfully. Please login.")
    case errors.Is(err, service.ErrUsernameTaken):
        return redirectWith(c, "/register", "Username already exists.")
    case errors.Is(err, service.ErrValidation):
        return redirectWith(c, "/register", "Username and password are required.")
    case errors.Is(err, service.ErrPasswordTooLong):
        return redirectWith(c, "/register", "Password must be at most 72 bytes.")
    default:
        return internalError(c, h.Log, "/register", err)
    }
}

func (h *AuthHandler) LoginForm(c echo.Context) error {
    return c.Render(http.StatusOK, "login.html", newPage(c, nil, h.Log, "Login"))
}

// Login opens a session and stores its token in an HttpOnly cookie. Failed
// attempts re-render the form with a notice.
func (h *AuthHandler) Login(c echo.Context) error {
    ctx, cancel := requestCtx(c)
    defer cancel()

    tok, err := h.Auth.Authenticate(ctx, c.FormValue("username"), c.FormValue("password"))
    if err != nil {
        if errors.Is(err, service.ErrInvalidCredentials) {
            flash.Set(c, "Invalid username or password.")
            return c.Render(http.StatusOK, "login.html", newPage(c, nil, h.Log, "Login"))
        }
        return internalError(c, h.Log, "/login", err)
    }

    c.SetCookie(&http.Cookie{
        Name:     h.Cookie.Name,
        Value:    tok.Token,
        Path:     "/",
        Expires:  tok.Exp,
        HttpOnly: true,
        Secure:   h.Cookie.Secure,
        SameSite: http.SameSiteLaxMode,
    })
    return redirectWith(c, "/dashboard", "Login successful.")
}

// Logout revokes the session and clears the cookie.
func (h *AuthHandler) Logout(c echo.Context) error {
    ctx, cancel := requestCtx(c)
    defer cancel()

    if err := h.Auth.EndSession(ctx, middleware.SessionToken(c)); err != nil {
        h.Log.Error("end session failed", zap.String("user_id", middleware.UserID(c)), zap.Error(err))
    }
    c.SetCookie(&http.Cookie{
        Name:     h.Cookie.Name,
        Value:    "",
        Path:     "/",
        Expires:  time.Unix(0, 0),
        MaxAge:   -1,
        HttpOnly: true,
        Secure:   h.Cookie.Secure,
        SameSite: http.SameSiteLaxMode,
    })
    return redirectWith(c, "/login", "Logged out successfully.")
}
