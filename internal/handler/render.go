package handler

import (
    "embed"
    "fmt"
    "html/template"
    "io"
    "time"

    "github.com/labstack/echo/v4"
)

//go:embed templates/*.html
var templatesFS embed.FS

// pageTemplates are the pages rendered inside templates/layout.html.
var pageTemplates = []string{"login.html", "register.html", "upload.html", "dashboard.html", "profile.html"}

// Renderer renders the embedded HTML pages for echo.
type Renderer struct {
    pages map[string]*template.Template
}

// NewRenderer parses every page together with the shared layout.
func NewRenderer() (*Renderer, error) {
    funcs := template.FuncMap{
        "datetime": func(t time.Time) string { return t.UTC().Format("2006-01-02 15:04:05") },
        "bytes":    humanBytes,
    }
    r := &Renderer{pages: make(map[string]*template.Template, len(pageTemplates))}
    for _, name := range pageTemplates {
        t, err := template.New("layout.html").Funcs(funcs).ParseFS(templatesFS, "templates/layout.html", "templates/"+name)
        if err != nil {
            return nil, fmt.Errorf("parse %s: %w", name, err)
        }
        r.pages[name] = t
    }
    return r, nil
}

// Render implements echo.Renderer.
func (r *Renderer) Render(w io.Writer, name string, data interface{}, _ echo.Context) error {
    t, ok := r.pages[name]
    if !ok {
        return fmt.Errorf("template %q not found", name)
    }
    return t.ExecuteTemplate(w, "layout.html", data)
}

func humanBytes(n int64) string {
    const unit = 1024
    if n < unit {
        return fmt.Sprintf("%d B", n)
    }
    div, exp := int64(unit), 0
    for m := n / unit; m >= unit; m /= unit {
        div *= unit
        exp++
    }
    return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
