package view

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"

	"linksite/internal/core"
	"linksite/internal/seo"
	"linksite/web"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var site = core.SiteConfig{Name: "LinkForge", BaseURL: "https://linkforge.example", Description: "Link building", FontsHost: "https://fonts.googleapis.com"}

func request(path, nonce string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, path, nil)
	if nonce != "" {
		r = r.WithContext(core.WithNonce(r.Context(), nonce))
	}
	return r
}

func TestNew_EmbeddedTemplates(t *testing.T) {
	tpl, err := New(web.Templates(), site)
	require.NoError(t, err)
	for name := range pages {
		assert.Contains(t, tpl.templates, name)
	}
}

func TestRender_AboutPage(t *testing.T) {
	tpl, err := New(web.Templates(), site)
	require.NoError(t, err)

	b := seo.New(site)
	ld, err := seo.Graph(b.Organization())
	require.NoError(t, err)

	w := httptest.NewRecorder()
	tpl.Render(w, request("/about", "bm9uY2Vub25jZW5vbmNlMQ=="), http.StatusOK, "about", Page{
		Meta:   b.Page("О нас", "", "/about"),
		JSONLD: ld,
	})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
	body := w.Body.String()
	assert.Contains(t, body, "<title>О нас | LinkForge</title>")
	assert.Contains(t, body, `<link rel="canonical" href="https://linkforge.example/about">`)
	assert.Contains(t, body, `<script type="application/ld+json" nonce="bm9uY2Vub25jZW5vbmNlMQ==">{"@context":"https://schema.org"`)
	assert.Contains(t, body, `<script src="/assets/js/site.js" nonce="bm9uY2Vub25jZW5vbmNlMQ==" defer>`)
	assert.Contains(t, body, `href="/about" aria-current="page"`)
	assert.NotContains(t, body, "noindex")
}

func TestRender_NotFoundStatusAndNoIndex(t *testing.T) {
	tpl, err := New(web.Templates(), site)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	tpl.Render(w, request("/missing", "n"), http.StatusNotFound, "notfound", Page{Meta: seo.New(site).NotFound("/missing")})

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), `<meta name="robots" content="noindex, nofollow">`)
}

func TestRender_SanitizesPostBody(t *testing.T) {
	fsys := fstest.MapFS{
		"layouts/base.gohtml":    {Data: []byte(`{{ define "base" }}{{ template "content" . }}{{ end }}`)},
		"partials/empty.gohtml":  {Data: []byte(`{{ define "empty" }}{{ end }}`)},
		"pages/home.gohtml":      {Data: []byte(`{{ define "content" }}home{{ end }}`)},
		"pages/about.gohtml":     {Data: []byte(`{{ define "content" }}about{{ end }}`)},
		"pages/services.gohtml":  {Data: []byte(`{{ define "content" }}services{{ end }}`)},
		"pages/inventory.gohtml": {Data: []byte(`{{ define "content" }}inventory{{ end }}`)},
		"pages/blog.gohtml":      {Data: []byte(`{{ define "content" }}blog{{ end }}`)},
		"pages/post.gohtml":      {Data: []byte(`{{ define "content" }}{{ safeBody .Data }}{{ end }}`)},
		"pages/contact.gohtml":   {Data: []byte(`{{ define "content" }}{{ .CSRFField }}{{ end }}`)},
		"pages/404.gohtml":       {Data: []byte(`{{ define "content" }}404{{ end }}`)},
	}
	tpl, err := New(fsys, site)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	tpl.Render(w, request("/blog/x", "n"), http.StatusOK, "post", Page{
		Data: `<p onclick="steal()">Hello <b>world</b></p><script>alert(1)</script>`,
	})
	body := w.Body.String()
	assert.Contains(t, body, "<p>Hello <b>world</b></p>")
	assert.NotContains(t, body, "onclick")
	assert.NotContains(t, body, "<script>")
}

func TestNew_MissingContentBlock(t *testing.T) {
	fsys := fstest.MapFS{
		"layouts/base.gohtml":   {Data: []byte(`{{ define "base" }}{{ end }}`)},
		"partials/empty.gohtml": {Data: []byte(`{{ define "empty" }}{{ end }}`)},
	}
	for _, p := range pages {
		fsys[p] = &fstest.MapFile{Data: []byte(`{{ define "other" }}{{ end }}`)}
	}
	_, err := New(fsys, site)
	assert.ErrorContains(t, err, `define "content"`)
}

func TestRender_Errors(t *testing.T) {
	tpl, err := New(web.Templates(), site)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	tpl.Render(w, request("/x", "n"), http.StatusOK, "nope", Page{})
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	// Ошибка выполнения шаблона: клиент не получает половину HTML
	w = httptest.NewRecorder()
	tpl.Render(w, request("/blog/x", "n"), http.StatusOK, "post", Page{Data: 42})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.False(t, strings.Contains(w.Body.String(), "<html"))
}
