// Package flash carries one-shot notices across a redirect in a short-lived
// cookie. Messages are shown on the next render and then cleared.
package flash

import (
	"encoding/base64"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
)

// CookieName is the cookie holding pending messages.
const CookieName = "csvboard_flash"

// Set queues msg for the next page render. Multiple calls in one request
// accumulate.
func Set(c echo.Context, msg string) {
	msgs := append(pending(c), msg)
	c.Set(CookieName, msgs)
	c.SetCookie(&http.Cookie{
		Name:     CookieName,
		Value:    encode(msgs),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(5 * time.Minute),
	})
}

// Pop returns the pending messages and clears the cookie.
func Pop(c echo.Context) []string {
	msgs := pending(c)
	if len(msgs) == 0 {
		return nil
	}
	c.Set(CookieName, []string(nil))
	c.SetCookie(&http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
	return msgs
}

// pending prefers messages set during this request over the request cookie.
func pending(c echo.Context) []string {
	if v, ok := c.Get(CookieName).([]string); ok {
		return v
	}
	ck, err := c.Cookie(CookieName)
	if err != nil || ck.Value == "" {
		return nil
	}
	return decode(ck.Value)
}

func encode(msgs []string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(strings.Join(msgs, "\n")))
}

func decode(v string) []string {
	b, err := base64.RawURLEncoding.DecodeString(v)
	if err != nil || len(b) == 0 {
		return nil
	}
	return strings.Split(string(b), "\n")
}
