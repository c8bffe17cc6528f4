package httpx

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
)

// Template names the handlers execute directly.
const (
	layoutTemplate      = "layout"
	errorLayoutTemplate = "error-layout"
)

// TemplateRenderer executes the UI's page, partial and error templates.
type TemplateRenderer struct {
	fsys   fs.FS
	reload bool
	t      *template.Template
	logger *slog.Logger
}

// TemplateRendererConfig holds configuration for creating a TemplateRenderer.
type TemplateRendererConfig struct {
	TemplateFS fs.FS // required
	// Reload re-parses TemplateFS on every render so edits on disk show up
	// without a restart. Only meant for development.
	Reload bool
	Logger *slog.Logger
}

// NewTemplateRenderer parses every template once, even in reload mode, so a
// broken template fails startup.
func NewTemplateRenderer(cfg TemplateRendererConfig) (*TemplateRenderer, error) {
	if cfg.TemplateFS == nil {
		return nil, errors.New("TemplateFS is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	t, err := parseTemplates(cfg.TemplateFS)
	if err != nil {
		logger.Error("template parsing failed", slog.Any("error", err), slog.String("phase", "initialization"))
		return nil, err
	}
	return &TemplateRenderer{fsys: cfg.TemplateFS, reload: cfg.Reload, t: t, logger: logger}, nil
}

func parseTemplates(fsys fs.FS) (*template.Template, error) {
	var t *template.Template
	t, err := template.New("root").Funcs(templateFuncs(&t)).ParseFS(fsys,
		"*.tmpl",
		"pages/*.tmpl",
		"partials/*.tmpl",
	)
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return t, nil
}

func (r *TemplateRenderer) templates() (*template.Template, error) {
	if !r.reload {
		return r.t, nil
	}
	return parseTemplates(r.fsys)
}

// Page renders the full layout around data's CurrentPage.
func (r *TemplateRenderer) Page(w http.ResponseWriter, data any) error {
	return r.Fragment(w, layoutTemplate, data)
}

// ErrorPage renders the standalone error layout.
func (r *TemplateRenderer) ErrorPage(w http.ResponseWriter, data any) error {
	return r.Fragment(w, errorLayoutTemplate, data)
}

// Content streams the content block of page. Used for htmx swaps, where the
// caller has already written the out-of-band header.
func (r *TemplateRenderer) Content(w io.Writer, page string, data any) error {
	t, err := r.templates()
	if err != nil {
		return err
	}
	name := ContentTemplateFor(page)
	if err := t.ExecuteTemplate(w, name, data); err != nil {
		r.logTemplateError(name, err)
		return err
	}
	return nil
}

// Fragment renders the named template into a buffer first, so a failing
// template never leaves a half-written response.
func (r *TemplateRenderer) Fragment(w http.ResponseWriter, name string, data any) error {
	t, err := r.templates()
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, name, data); err != nil {
		r.logTemplateError(name, err)
		return err
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := buf.WriteTo(w); err != nil {
		r.logger.Error("failed to write rendered template", slog.String("template", name), slog.Any("error", err))
		return err
	}
	return nil
}

func (r *TemplateRenderer) logTemplateError(name string, err error) {
	r.logger.Error("template execution failed", slog.String("template", name), slog.Any("error", err))
}
