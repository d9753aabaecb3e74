package seo

import (
	"database/sql"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"linksite/internal/core"
	"linksite/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBuilder() *Builder {
	return New(core.SiteConfig{
		Name:         "LinkForge",
		BaseURL:      "https://linkforge.example/",
		Description:  "Link building",
		Logo:         "/assets/img/logo.png",
		ContactEmail: "hello@linkforge.example",
		Socials:      []string{"https://x.com/linkforge"},
	})
}

func TestURL(t *testing.T) {
	b := testBuilder()
	assert.Equal(t, "https://linkforge.example/", b.URL("/"))
	assert.Equal(t, "https://linkforge.example/", b.URL(""))
	assert.Equal(t, "https://linkforge.example/blog", b.URL("/blog/"))
	assert.Equal(t, "https://linkforge.example/about", b.URL("about"))
	assert.Equal(t, "https://cdn.example/x.png", b.Asset("https://cdn.example/x.png"))
	assert.Equal(t, "https://linkforge.example/assets/img/a.png", b.Asset("/assets/img/a.png"))
}

func TestPage(t *testing.T) {
	b := testBuilder()

	home := b.Page("", "", "/")
	assert.Equal(t, "LinkForge", home.Title)
	assert.Equal(t, "Link building", home.Description)
	assert.Equal(t, "https://linkforge.example/", home.Canonical)

	about := b.Page("About", "Who we are", "/about")
	assert.Equal(t, "About | LinkForge", about.Title)
	assert.Equal(t, "https://linkforge.example/about", about.Canonical)
	assert.False(t, about.NoIndex)

	assert.True(t, b.NotFound("/nope").NoIndex)
}

func TestGraph(t *testing.T) {
	b := testBuilder()
	js, err := Graph(b.Organization(), b.WebSite(), b.Breadcrumbs(Crumb{Name: "Blog", Path: "/blog"}))
	require.NoError(t, err)

	var doc struct {
		Context string                   `json:"@context"`
		Graph   []map[string]interface{} `json:"@graph"`
	}
	require.NoError(t, json.Unmarshal([]byte(js), &doc))
	assert.Equal(t, "https://schema.org", doc.Context)
	require.Len(t, doc.Graph, 3)
	assert.Equal(t, "Organization", doc.Graph[0]["@type"])
	assert.Equal(t, "WebSite", doc.Graph[1]["@type"])
	assert.Equal(t, "BreadcrumbList", doc.Graph[2]["@type"])

	items := doc.Graph[2]["itemListElement"].([]interface{})
	require.Len(t, items, 2)
	second := items[1].(map[string]interface{})
	assert.Equal(t, "ListItem", second["@type"])
	assert.Equal(t, float64(2), second["position"])
	assert.Equal(t, "https://linkforge.example/blog", second["item"])

	empty, err := Graph()
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestGraph_EscapesScriptClose(t *testing.T) {
	b := testBuilder()
	p := storage.Post{Slug: "x", Title: "</script><script>alert(1)</script>"}
	js, err := Graph(b.BlogPosting(p))
	require.NoError(t, err)
	assert.NotContains(t, string(js), "</script>")
	assert.Contains(t, string(js), `\u003c/script\u003e`)
}

func TestBlogPosting(t *testing.T) {
	b := testBuilder()
	pub := time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)
	p := storage.Post{
		Slug:        "niche-edits",
		Title:       "Niche edits",
		Excerpt:     "What they are",
		TagsRaw:     "seo,links",
		PublishedAt: sql.NullTime{Time: pub, Valid: true},
		UpdatedAt:   pub.Add(time.Hour),
	}
	bp := b.BlogPosting(p)
	assert.Equal(t, "https://linkforge.example/blog/niche-edits", bp.URL)
	assert.Equal(t, "LinkForge", bp.Author.Name)
	assert.Equal(t, "seo, links", bp.Keywords)
	assert.Equal(t, "2026-05-04T12:00:00Z", bp.DatePublished)
	assert.Equal(t, "2026-05-04T13:00:00Z", bp.DateModified)

	raw, err := json.Marshal(bp)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"@type":"BlogPosting"`)
	assert.Contains(t, string(raw), `"author":{"@type":"Person","name":"LinkForge"}`)
	assert.Contains(t, string(raw), `"publisher":{"@type":"Organization"`)
}

func TestService(t *testing.T) {
	s := testBuilder().Service("Guest posts", "Placement on vetted blogs", "/services")
	raw, err := json.Marshal(s)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(raw), `{"@type":"Service","name":"Guest posts"`))
}

func TestSitemap(t *testing.T) {
	b := testBuilder()
	out, err := b.Sitemap([]SitemapEntry{
		{Path: "/", ChangeFreq: "weekly", Priority: 1},
		{Path: "/blog/niche-edits", LastMod: time.Date(2026, 5, 4, 23, 0, 0, 0, time.UTC)},
	})
	require.NoError(t, err)
	s := string(out)
	assert.True(t, strings.HasPrefix(s, `<?xml version="1.0" encoding="UTF-8"?>`))
	assert.Contains(t, s, `<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">`)
	assert.Contains(t, s, "<loc>https://linkforge.example/</loc>")
	assert.Contains(t, s, "<priority>1.0</priority>")
	assert.Contains(t, s, "<loc>https://linkforge.example/blog/niche-edits</loc>")
	assert.Contains(t, s, "<lastmod>2026-05-04</lastmod>")
}

func TestRobots(t *testing.T) {
	b := testBuilder()
	assert.Equal(t,
		"User-agent: *\nDisallow: /admin\nDisallow: /api/\n\nSitemap: https://linkforge.example/sitemap.xml\n",
		b.Robots("/admin", "/api/"))
	assert.Contains(t, b.Robots(), "Disallow:\n")
}
