package handler

import (
    "errors"
    "net/http"

    "github.com/labstack/echo/v4"
    "go.uber.org/zap"

    "github.com/iliyamo/csvboard/internal/model"
    "github.com/iliyamo/csvboard/internal/service"
    "github.com/iliyamo/csvboard/internal/tabular"
)

// Themes offered by the theme picker.
var Themes = []string{model.DefaultTheme, "theme-dark", "theme-light"}

// FileHandler serves the upload page and the dashboard.
type FileHandler struct {
    Upload   *service.UploadService
    Files    *service.FileService
    Profiles *service.ProfileService
    Log      *zap.Logger
}

func NewFileHandler(upload *service.UploadService, files *service.FileService, profiles *service.ProfileService, log *zap.Logger) *FileHandler {
    return &FileHandler{Upload: upload, Files: files, Profiles: profiles, Log: log}
}

type uploadPage struct {
    page
    Table      *tabular.Table
    Record     *model.FileRecord
    Chart      *chartData
    ChartTitle string
}

type dashboardPage struct {
    page
    Files  []model.FileRecord
    Themes []string
}

func (h *FileHandler) UploadForm(c echo.Context) error {
    return c.Render(http.StatusOK, "upload.html", uploadPage{page: newPage(c, h.Profiles, h.Log, "Upload")})
}

// UploadFile parses the posted CSV, registers it and renders the table and
// chart. Rejected files redirect back to the form with a notice.
func (h *FileHandler) UploadFile(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return redirectWith(c, "/login", "Please log in")
    }
    fh, err := c.FormFile("file")
    if err != nil {
        return redirectWith(c, "/upload", "Please choose a file to upload.")
    }
    data, err := readFormFile(fh, h.Upload.MaxBytes())
    if err != nil {
        if errors.Is(err, errFileTooLarge) {
            return redirectWith(c, "/upload", "File is too large.")
        }
        return internalError(c, h.Log, "/upload", err)
    }

    ctx, cancel := requestCtx(c)
    defer cancel()
    table, rec, err := h.Upload.AcceptUpload(ctx, uid, data, fh.Filename)
    switch {
    case err == nil:
    case errors.Is(err, service.ErrUnsupportedType):
        return redirectWith(c, "/upload", "Only CSV files allowed.")
    case errors.Is(err, service.ErrMalformedContent):
        return redirectWith(c, "/upload", "Could not read the CSV file.")
    case errors.Is(err, service.ErrFileTooLarge):
        return redirectWith(c, "/upload", "File is too large.")
    default:
        return internalError(c, h.Log, "/upload", err)
    }

    return c.Render(http.StatusOK, "upload.html", uploadPage{
        page:       newPage(c, h.Profiles, h.Log, "Upload"),
        Table:      &table,
        Record:     &rec,
        Chart:      buildChart(table),
        ChartTitle: "Uploaded Chart",
    })
}

// Dashboard lists the user's files, newest first.
func (h *FileHandler) Dashboard(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return redirectWith(c, "/login", "Please log in")
    }
    ctx, cancel := requestCtx(c)
    defer cancel()

    files, err := h.Files.ListForOwner(ctx, uid)
    if err != nil {
        h.Log.Error("list files failed", zap.String("user_id", uid), zap.Error(err))
        return c.String(http.StatusInternalServerError, msgInternal)
    }
    return c.Render(http.StatusOK, "dashboard.html", dashboardPage{
        page:   newPage(c, h.Profiles, h.Log, "Dashboard"),
        Files:  files,
        Themes: Themes,
    })
}

// Delete removes one of the user's files by name.
func (h *FileHandler) Delete(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return redirectWith(c, "/login", "Please log in")
    }
    ctx, cancel := requestCtx(c)
    defer cancel()

    err = h.Files.Delete(ctx, uid, c.Param("filename"))
    switch {
    case err == nil:
        return redirectWith(c, "/dashboard", "File deleted successfully!")
    case errors.Is(err, service.ErrNotFound):
        return redirectWith(c, "/dashboard", "File not found.")
    default:
        return internalError(c, h.Log, "/dashboard", err)
    }
}
