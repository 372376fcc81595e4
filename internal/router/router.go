package router // package router defines how HTTP routes are registered

import (
	"fmt"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/csvboard/internal/handler"
	"github.com/iliyamo/csvboard/internal/middleware"
	"github.com/iliyamo/csvboard/internal/service"
)

// multipartOverhead is allowed on top of the upload limit for form fields
// and part headers.
const multipartOverhead = 1 << 20

// Deps carries the route middleware shared by the Register functions.
type Deps struct {
	Session   echo.MiddlewareFunc // rejects requests without a session
	Identity  echo.MiddlewareFunc // resolves an optional session
	RateLimit echo.MiddlewareFunc // guards credential endpoints
	Body      echo.MiddlewareFunc // caps multipart bodies
}

// NewDeps builds the session middleware from ids and the cookie name. A nil
// rateLimit disables rate limiting.
func NewDeps(ids service.IdentityResolver, cookieName string, rateLimit echo.MiddlewareFunc, maxUpload int64) Deps {
	if rateLimit == nil {
		rateLimit = passThrough
	}
	return Deps{
		Session:   middleware.RequireSession(ids, cookieName),
		Identity:  middleware.LoadSession(ids, cookieName),
		RateLimit: rateLimit,
		Body:      bodyLimit(maxUpload),
	}
}

// RegisterRoutes registers routes that need no session.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the landing redirect, register/login (rate
// limited) and logout.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, d Deps) {
	e.GET("/", a.Index, d.Identity)
	e.GET("/register", a.RegisterForm)
	e.POST("/register", a.Register, d.RateLimit)
	e.GET("/login", a.LoginForm)
	e.POST("/login", a.Login, d.RateLimit)
	e.GET("/logout", a.Logout, d.Session)
}

// RegisterFiles registers upload, dashboard and delete. Ownership is
// enforced by the file service.
func RegisterFiles(e *echo.Echo, f *handler.FileHandler, d Deps) {
	e.GET("/upload", f.UploadForm, d.Session)
	e.POST("/upload", f.UploadFile, d.Session, d.Body)
	e.GET("/dashboard", f.Dashboard, d.Session)
	e.POST("/delete/:filename", f.Delete, d.Session)
}

// RegisterProfile registers the profile page, theme switching and avatars.
func RegisterProfile(e *echo.Echo, p *handler.ProfileHandler, d Deps) {
	e.GET("/profile", p.Show, d.Session)
	e.POST("/profile", p.Update, d.Session, d.Body)
	e.POST("/update-theme", p.UpdateTheme, d.Session)
	e.GET("/avatars/:filename", p.Avatar, d.Session)
}

func passThrough(next echo.HandlerFunc) echo.HandlerFunc { return next }

// bodyLimit rejects request bodies larger than max plus form overhead.
func bodyLimit(max int64) echo.MiddlewareFunc {
	if max <= 0 {
		return passThrough
	}
	return echomw.BodyLimit(fmt.Sprintf("%dK", (max+multipartOverhead+1023)/1024))
}
