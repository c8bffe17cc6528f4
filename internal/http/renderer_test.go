package httpx

import (
	"bytes"
	"net/http/httptest"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rendererFS(report string) fstest.MapFS {
	return fstest.MapFS{
		"layout.tmpl":          {Data: []byte(`{{define "layout"}}<main>{{template "report-content" .}}</main>{{end}}`)},
		"error.tmpl":           {Data: []byte(`{{define "error-layout"}}<p>{{.ErrorMessage}}</p>{{end}}`)},
		"pages/report.tmpl":    {Data: []byte(`{{define "report-content"}}` + report + `{{end}}`)},
		"partials/broken.tmpl": {Data: []byte(`{{define "broken"}}{{.Missing.Field}}{{end}}`)},
	}
}

func TestTemplateRenderer_PageAndContent(t *testing.T) {
	tr, err := NewTemplateRenderer(TemplateRendererConfig{TemplateFS: rendererFS(`score {{formatScore .Score}}`)})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	require.NoError(t, tr.Page(rec, map[string]any{"Score": 81.24}))
	assert.Equal(t, "<main>score 81.2</main>", rec.Body.String())
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))

	var buf bytes.Buffer
	require.NoError(t, tr.Content(&buf, PageReport, map[string]any{"Score": 40.0}))
	assert.Equal(t, "score 40.0", buf.String())

	rec = httptest.NewRecorder()
	require.NoError(t, tr.ErrorPage(rec, map[string]any{"ErrorMessage": "Analysis not found"}))
	assert.Equal(t, "<p>Analysis not found</p>", rec.Body.String())
}

func TestTemplateRenderer_FailedFragmentWritesNothing(t *testing.T) {
	tr, err := NewTemplateRenderer(TemplateRendererConfig{TemplateFS: rendererFS("ok")})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	require.Error(t, tr.Fragment(rec, "broken", map[string]any{}))
	assert.Empty(t, rec.Body.String())
	assert.Empty(t, rec.Header().Get("Content-Type"))
}

func TestTemplateRenderer_Reload(t *testing.T) {
	fsys := rendererFS("v1")
	cached, err := NewTemplateRenderer(TemplateRendererConfig{TemplateFS: fsys})
	require.NoError(t, err)
	live, err := NewTemplateRenderer(TemplateRendererConfig{TemplateFS: fsys, Reload: true})
	require.NoError(t, err)

	fsys["pages/report.tmpl"] = &fstest.MapFile{Data: []byte(`{{define "report-content"}}v2{{end}}`)}

	var a, b bytes.Buffer
	require.NoError(t, cached.Content(&a, PageReport, nil))
	require.NoError(t, live.Content(&b, PageReport, nil))
	assert.Equal(t, "v1", a.String())
	assert.Equal(t, "v2", b.String())
}

func TestNewTemplateRenderer_RejectsBadTemplates(t *testing.T) {
	_, err := NewTemplateRenderer(TemplateRendererConfig{})
	require.Error(t, err)

	fsys := rendererFS("{{if}}")
	_, err = NewTemplateRenderer(TemplateRendererConfig{TemplateFS: fsys})
	require.Error(t, err)
}
