package httpx

import (
	"context"
	"html"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"
	"time"

	"linksite/internal/cache"
	"linksite/internal/core"
	"linksite/internal/http/middleware"
	"linksite/internal/inventory"
	"linksite/internal/notify"
	"linksite/internal/seo"
	"linksite/internal/storage"
	"linksite/internal/view"
	"linksite/web"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSites struct{}

func (stubSites) List(_ context.Context, f inventory.Filter) (storage.SitePage, error) {
	return storage.SitePage{Page: f.Page, PerPage: f.PerPage, Items: []storage.Site{}}, nil
}
func (stubSites) Facets(context.Context) (storage.Facets, error) { return storage.Facets{}, nil }
func (stubSites) GetByDomain(_ context.Context, domain string) (*storage.Site, error) {
	if domain == "techblog.example" {
		return &storage.Site{ID: 7, Domain: domain, DR: 61}, nil
	}
	return nil, storage.ErrNotFound
}

type stubPosts struct{}

func (stubPosts) ListPublished(context.Context, int, int) ([]storage.Post, int, error) {
	return nil, 0, nil
}
func (stubPosts) GetBySlug(context.Context, string) (*storage.Post, error) {
	return nil, storage.ErrNotFound
}
func (stubPosts) AllSlugs(context.Context) ([]storage.PostRef, error) { return nil, nil }

type stubInquiries struct{ saved []storage.Inquiry }

func (s *stubInquiries) Create(_ context.Context, in *storage.Inquiry) error {
	in.ID = "id-1"
	s.saved = append(s.saved, *in)
	return nil
}

var (
	nonceAttr = regexp.MustCompile(`nonce="([^"]+)"`)
	csrfField = regexp.MustCompile(`name="csrf_token" value="([^"]+)"`)
)

func testRouter(t *testing.T) (http.Handler, *stubInquiries) {
	t.Helper()
	cfg := core.Config{
		Env:                "prod",
		AdminPrefix:        "/admin",
		RequestTimeout:     5 * time.Second,
		ExcludedPrefixes:   []string{"/assets/", "/favicon.ico"},
		ExcludedExtensions: []string{".svg", ".png", ".css", ".js"},
		Site: core.SiteConfig{
			Name:      "LinkForge",
			BaseURL:   "https://linkforge.example",
			OwnDomain: "linkforge.example",
		},
	}
	tpl, err := view.New(web.Templates(), cfg.Site)
	require.NoError(t, err)

	inq := &stubInquiries{}
	h := NewRouter(Deps{
		Config:    cfg,
		CSRFKey:   []byte("0123456789abcdef0123456789abcdef"),
		Templates: tpl,
		SEO:       seo.New(cfg.Site),
		Sites:     stubSites{},
		Posts:     stubPosts{},
		Inquiries: inq,
		Notifier:  notify.Noop{},
		Cache:     cache.New(time.Minute),
		Assets:    web.Assets(),
	})
	return h, inq
}

func do(h http.Handler, r *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

func TestRouter_CanonicalRedirectBeforeRouting(t *testing.T) {
	h, _ := testRouter(t)

	w := do(h, httptest.NewRequest(http.MethodGet, "http://linkforge.example/Blog//Guest-Posts/?page=2", nil))
	assert.Equal(t, http.StatusPermanentRedirect, w.Code)
	assert.Equal(t, "http://linkforge.example/blog/guest-posts?page=2", w.Header().Get("Location"))
	assert.Empty(t, w.Header().Get(middleware.HeaderCSP))
}

func TestRouter_PageNonceMatchesHeader(t *testing.T) {
	h, _ := testRouter(t)

	w := do(h, httptest.NewRequest(http.MethodGet, "http://linkforge.example/about", nil))
	require.Equal(t, http.StatusOK, w.Code)

	nonce := w.Header().Get(middleware.HeaderNonce)
	require.Len(t, nonce, 24)
	csp := w.Header().Get(middleware.HeaderCSP)
	assert.Contains(t, csp, "script-src 'self' 'strict-dynamic' https://www.googletagmanager.com 'nonce-"+nonce+"'")
	assert.Contains(t, csp, "connect-src 'self' https://*.linkforge.example")
	assert.Equal(t, "max-age=31536000; includeSubDomains; preload", w.Header().Get("Strict-Transport-Security"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))

	matches := nonceAttr.FindAllStringSubmatch(w.Body.String(), -1)
	require.NotEmpty(t, matches)
	for _, m := range matches {
		assert.Equal(t, nonce, html.UnescapeString(m[1]))
	}
}

func TestRouter_AssetsBypassSecurity(t *testing.T) {
	h, _ := testRouter(t)

	w := do(h, httptest.NewRequest(http.MethodGet, "http://linkforge.example/assets/css/site.css", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get(middleware.HeaderCSP))
	assert.Empty(t, w.Header().Get(middleware.HeaderNonce))
	assert.Equal(t, "public, max-age=86400", w.Header().Get("Cache-Control"))
}

func TestRouter_AdminPathKeepsCase(t *testing.T) {
	h, _ := testRouter(t)

	w := do(h, httptest.NewRequest(http.MethodGet, "http://linkforge.example/admin/Collections", nil))
	assert.Equal(t, http.StatusNotFound, w.Code, "админки нет, но и редиректа на lower-case быть не должно")
	assert.Contains(t, w.Header().Get(middleware.HeaderCSP), "'unsafe-inline' 'unsafe-eval'")
}

func TestRouter_NotFoundHasHeaders(t *testing.T) {
	h, _ := testRouter(t)

	w := do(h, httptest.NewRequest(http.MethodGet, "http://linkforge.example/missing", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.NotEmpty(t, w.Header().Get(middleware.HeaderCSP))
	assert.Contains(t, w.Body.String(), "Страница не найдена")
}

func TestRouter_CSPReportWithoutCSRF(t *testing.T) {
	h, _ := testRouter(t)

	r := httptest.NewRequest(http.MethodPost, "http://linkforge.example/api/csp-report",
		strings.NewReader(`{"csp-report":{"violated-directive":"img-src","blocked-uri":"http://x.example/a.png"}}`))
	r.Header.Set("Content-Type", "application/csp-report")
	assert.Equal(t, http.StatusNoContent, do(h, r).Code)
}

func TestRouter_ContactRequiresCSRF(t *testing.T) {
	h, _ := testRouter(t)

	form := url.Values{"name": {"Anna"}, "email": {"anna@example.org"}, "budget": {"<500"}, "message": {"hi"}}
	r := httptest.NewRequest(http.MethodPost, "http://linkforge.example/contact", strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := do(h, r)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "CSRF invalid")
}

func TestRouter_ContactWithCSRFToken(t *testing.T) {
	h, inq := testRouter(t)

	page := do(h, httptest.NewRequest(http.MethodGet, "http://linkforge.example/contact", nil))
	require.Equal(t, http.StatusOK, page.Code)
	m := csrfField.FindStringSubmatch(page.Body.String())
	require.Len(t, m, 2)
	token := html.UnescapeString(m[1])

	form := url.Values{
		"csrf_token": {token},
		"name":       {"Anna"},
		"email":      {"anna@example.org"},
		"budget":     {"<500"},
		"message":    {"Need guest posts"},
	}
	r := httptest.NewRequest(http.MethodPost, "http://linkforge.example/contact", strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range page.Result().Cookies() {
		r.AddCookie(c)
	}

	w := do(h, r)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/contact?ok=1", w.Header().Get("Location"))
	require.Len(t, inq.saved, 1)
	assert.Equal(t, "Anna", inq.saved[0].Name)
}

func TestRouter_ServiceEndpoints(t *testing.T) {
	h, _ := testRouter(t)

	w := do(h, httptest.NewRequest(http.MethodGet, "http://linkforge.example/robots.txt", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Disallow: /admin\n")

	w = do(h, httptest.NewRequest(http.MethodGet, "http://linkforge.example/sitemap.xml", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "<loc>https://linkforge.example/services</loc>")

	w = do(h, httptest.NewRequest(http.MethodGet, "http://linkforge.example/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(h, httptest.NewRequest(http.MethodGet, "http://linkforge.example/readyz", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(h, httptest.NewRequest(http.MethodGet, "http://linkforge.example/api/inventory?per_page=10", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"per_page":10`)

	w = do(h, httptest.NewRequest(http.MethodGet, "http://linkforge.example/api/inventory/techblog.example", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"dr":61`)

	w = do(h, httptest.NewRequest(http.MethodGet, "http://linkforge.example/api/inventory/missing.example", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "application/problem+json")

	w = do(h, httptest.NewRequest(http.MethodDelete, "http://linkforge.example/about", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}
