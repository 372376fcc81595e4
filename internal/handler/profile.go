package handler

import (
    "errors"
    "mime"
    "net/http"
    "path"

    "github.com/labstack/echo/v4"
    "go.uber.org/zap"

    "github.com/iliyamo/csvboard/internal/model"
    "github.com/iliyamo/csvboard/internal/service"
)

// ProfileHandler serves the profile page, theme switching and avatars.
type ProfileHandler struct {
    Profiles *service.ProfileService
    Log      *zap.Logger
    MaxBytes int64 // largest accepted avatar
}

func NewProfileHandler(profiles *service.ProfileService, log *zap.Logger, maxBytes int64) *ProfileHandler {
    return &ProfileHandler{Profiles: profiles, Log: log, MaxBytes: maxBytes}
}

type profilePage struct {
    page
    Profile model.Profile
}

type themeReq struct {
    Theme string `json:"theme"`
}

func (h *ProfileHandler) Show(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return redirectWith(c, "/login", "Please log in")
    }
    ctx, cancel := requestCtx(c)
    defer cancel()

    prof, err := h.Profiles.GetProfile(ctx, uid)
    if err != nil {
        h.Log.Error("load profile failed", zap.String("user_id", uid), zap.Error(err))
        return c.String(http.StatusInternalServerError, msgInternal)
    }
    return c.Render(http.StatusOK, "profile.html", profilePage{
        page:    newPage(c, h.Profiles, h.Log, "Profile"),
        Profile: prof,
    })
}

// Update applies the posted profile form. Password problems are reported
// and nothing else in the form is saved.
func (h *ProfileHandler) Update(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return redirectWith(c, "/login", "Please log in")
    }

    upd := service.ProfileUpdate{
        Email:           c.FormValue("email"),
        DisplayName:     c.FormValue("display_name"),
        Bio:             c.FormValue("bio"),
        CurrentPassword: c.FormValue("current_password"),
        NewPassword:     c.FormValue("new_password"),
        ConfirmPassword: c.FormValue("confirm_password"),
    }
    if fh, err := c.FormFile("profile_pic"); err == nil && fh.Filename != "" {
        data, err := readFormFile(fh, h.MaxBytes)
        if err != nil {
            if errors.Is(err, errFileTooLarge) {
                return redirectWith(c, "/profile", "Profile picture is too large.")
            }
            return internalError(c, h.Log, "/profile", err)
        }
        upd.Avatar = &service.AvatarUpload{Filename: fh.Filename, Data: data}
    }

    ctx, cancel := requestCtx(c)
    defer cancel()
    err = h.Profiles.UpdateProfile(ctx, uid, upd)
    switch {
    case err == nil:
        return redirectWith(c, "/profile", "Profile updated successfully")
    case errors.Is(err, service.ErrNothingToUpdate):
        return c.Redirect(http.StatusFound, "/profile")
    case errors.Is(err, service.ErrIncorrectPassword):
        return redirectWith(c, "/profile", "Incorrect current password")
    case errors.Is(err, service.ErrPasswordMismatch):
        return redirectWith(c, "/profile", "New passwords do not match")
    case errors.Is(err, service.ErrValidation):
        return redirectWith(c, "/profile", "New password must not be empty")
    case errors.Is(err, service.ErrPasswordTooLong):
        return redirectWith(c, "/profile", "New password must be at most 72 bytes")
    case errors.Is(err, service.ErrUnsupportedType):
        return redirectWith(c, "/profile", "Profile picture must be a png, jpg, jpeg, gif or webp image.")
    default:
        return internalError(c, h.Log, "/profile", err)
    }
}

// UpdateTheme stores the theme sent as JSON {"theme": "..."}.
func (h *ProfileHandler) UpdateTheme(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    var req themeReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"message": "No theme provided"})
    }

    ctx, cancel := requestCtx(c)
    defer cancel()
    err = h.Profiles.SetTheme(ctx, uid, req.Theme)
    switch {
    case err == nil:
        return c.JSON(http.StatusOK, echo.Map{"message": "Theme updated"})
    case errors.Is(err, service.ErrValidation):
        return c.JSON(http.StatusBadRequest, echo.Map{"message": "No theme provided"})
    default:
        h.Log.Error("set theme failed", zap.String("user_id", uid), zap.Error(err))
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
    }
}

// Avatar streams one of the caller's stored avatar images.
func (h *ProfileHandler) Avatar(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return echo.ErrUnauthorized
    }
    ctx, cancel := requestCtx(c)
    defer cancel()

    name := c.Param("filename")
    data, err := h.Profiles.Avatar(ctx, uid, name)
    if err != nil {
        if errors.Is(err, service.ErrNotFound) {
            return echo.ErrNotFound
        }
        h.Log.Error("load avatar failed", zap.String("user_id", uid), zap.Error(err))
        return echo.ErrInternalServerError
    }
    ctype := mime.TypeByExtension(path.Ext(name))
    if ctype == "" {
        ctype = http.DetectContentType(data)
    }
    c.Response().Header().Set("Cache-Control", "private, max-age=300")
    return c.Blob(http.StatusOK, ctype, data)
}
