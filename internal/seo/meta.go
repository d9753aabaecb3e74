// Package seo — мета-теги, canonical URL, JSON-LD, sitemap.xml и robots.txt.
package seo

import (
	"strings"

	"linksite/internal/core"
)

// Meta — то, что попадает в <head> страницы.
type Meta struct {
	Title       string
	Description string
	Canonical   string
	OGType      string
	Image       string
	NoIndex     bool
}

// Builder собирает SEO-данные для одного сайта. Создаётся один раз при старте.
type Builder struct {
	site core.SiteConfig
}

func New(site core.SiteConfig) *Builder {
	site.BaseURL = strings.TrimRight(site.BaseURL, "/")
	return &Builder{site: site}
}

func (b *Builder) Site() core.SiteConfig { return b.site }

// URL — абсолютный канонический адрес: base URL + путь без хвостового слэша.
func (b *Builder) URL(path string) string {
	if path == "" || path == "/" {
		return b.site.BaseURL + "/"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return b.site.BaseURL + strings.TrimRight(path, "/")
}

// Asset — абсолютный URL картинки; внешние ссылки не трогаем.
func (b *Builder) Asset(p string) string {
	if p == "" || strings.HasPrefix(p, "http://") || strings.HasPrefix(p, "https://") {
		return p
	}
	return b.URL(p)
}

// Page — мета страницы. Пустой title — главная (только имя сайта).
func (b *Builder) Page(title, description, path string) Meta {
	m := Meta{
		Title:       b.site.Name,
		Description: description,
		Canonical:   b.URL(path),
		OGType:      "website",
		Image:       b.Asset(b.site.Logo),
	}
	if title != "" {
		m.Title = title + " | " + b.site.Name
	}
	if m.Description == "" {
		m.Description = b.site.Description
	}
	return m
}

// NotFound — 404 не индексируется.
func (b *Builder) NotFound(path string) Meta {
	m := b.Page("Страница не найдена", "", path)
	m.NoIndex = true
	return m
}
