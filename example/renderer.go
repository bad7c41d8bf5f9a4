package main

import (
	"bytes"
	"context"
	"embed"
	"html/template"
)

//go:embed templates
var templateFiles embed.FS

// templateRenderer implements the golive.Renderer and golive.ErrorRenderer
// collaborators over html/template. Template ids map to files under
// templates/, e.g. "components/counter" -> templates/components/counter.html.
type templateRenderer struct {
	templates *template.Template
}

func newTemplateRenderer() (*templateRenderer, error) {
	t, err := template.ParseFS(templateFiles,
		"templates/*.html", "templates/components/*.html")
	if err != nil {
		return nil, err
	}
	return &templateRenderer{templates: t}, nil
}

func (r *templateRenderer) Render(_ context.Context, templateID string, state map[string]any) (string, error) {
	var buf bytes.Buffer
	name := templateName(templateID)
	if err := r.templates.ExecuteTemplate(&buf, name, state); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (r *templateRenderer) RenderError(_ context.Context, err error) string {
	var buf bytes.Buffer
	if terr := r.templates.ExecuteTemplate(&buf, "error.html", map[string]any{
		"message": err.Error(),
	}); terr != nil {
		return ""
	}
	return buf.String()
}

// templateName maps a component template id onto the parsed template name,
// which ParseFS keys by base filename.
func templateName(id string) string {
	for i := len(id) - 1; i >= 0; i-- {
		if id[i] == '/' {
			return id[i+1:] + ".html"
		}
	}
	return id + ".html"
}
