package handler

// seo.go
import (
	"net/http"

	"linksite/internal/cache"
	"linksite/internal/core"
	"linksite/internal/seo"
)

// Статические страницы sitemap.xml
var staticPages = []seo.SitemapEntry{
	{Path: "/", ChangeFreq: "weekly", Priority: 1.0},
	{Path: "/services", ChangeFreq: "monthly", Priority: 0.9},
	{Path: "/inventory", ChangeFreq: "daily", Priority: 0.9},
	{Path: "/blog", ChangeFreq: "daily", Priority: 0.8},
	{Path: "/about", ChangeFreq: "yearly", Priority: 0.5},
	{Path: "/contact", ChangeFreq: "yearly", Priority: 0.5},
}

// Sitemap — GET /sitemap.xml: статические страницы + опубликованные статьи (кэшируется)
func Sitemap(sb *seo.Builder, posts PostStore, c *cache.Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := cache.GetOrLoad(c, "seo:sitemap", func() ([]byte, error) {
			refs, err := posts.AllSlugs(r.Context())
			if err != nil {
				return nil, err
			}
			entries := append([]seo.SitemapEntry{}, staticPages...)
			for _, ref := range refs {
				entries = append(entries, seo.SitemapEntry{
					Path:       "/blog/" + ref.Slug,
					LastMod:    ref.UpdatedAt,
					ChangeFreq: "monthly",
					Priority:   0.7,
				})
			}
			return sb.Sitemap(entries)
		})
		if err != nil {
			core.Fail(w, r, core.Internal("sitemap", err))
			return
		}
		w.Header().Set("Content-Type", "application/xml; charset=utf-8")
		_, _ = w.Write(body)
	}
}

// Robots — GET /robots.txt: закрываем админку CMS и API
func Robots(sb *seo.Builder, adminPrefix string) http.HandlerFunc {
	body := sb.Robots(adminPrefix, "/api/")
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte(body))
	}
}
