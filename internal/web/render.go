// Package web holds the server-rendered pages and static assets.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/http"
	"path"

	"github.com/labstack/echo/v4"
)

//go:embed templates
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// TemplateRenderer renders pages that each extend the base layout
type TemplateRenderer struct {
	templates map[string]*template.Template
}

// NewTemplateRenderer parses the base layout once and clones it per page so
// each page can define its own blocks
func NewTemplateRenderer() (*TemplateRenderer, error) {
	base, err := template.ParseFS(templateFS, "templates/layouts/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse layouts: %w", err)
	}

	pages, err := fs.Glob(templateFS, "templates/pages/*.html")
	if err != nil {
		return nil, err
	}

	templates := make(map[string]*template.Template, len(pages))
	for _, page := range pages {
		tmpl, err := base.Clone()
		if err != nil {
			return nil, err
		}
		if _, err := tmpl.ParseFS(templateFS, page); err != nil {
			return nil, fmt.Errorf("parse %s: %w", page, err)
		}
		templates[path.Base(page)] = tmpl
	}

	return &TemplateRenderer{templates: templates}, nil
}

// Render renders a template document
func (t *TemplateRenderer) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	tmpl, ok := t.templates[name]
	if !ok {
		return echo.NewHTTPError(http.StatusInternalServerError, "Template not found: "+name)
	}
	return tmpl.ExecuteTemplate(w, "base", data)
}

// StaticFS returns the embedded static assets rooted at the static directory
func StaticFS() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}
