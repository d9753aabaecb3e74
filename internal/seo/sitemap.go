package seo

import (
	"encoding/xml"
	"fmt"
	"strings"
	"time"
)

const sitemapNS = "http://www.sitemaps.org/schemas/sitemap/0.9"

// SitemapEntry — одна страница sitemap.xml (путь относительный).
type SitemapEntry struct {
	Path       string
	LastMod    time.Time
	ChangeFreq string
	Priority   float64
}

type urlset struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq,omitempty"`
	Priority   string `xml:"priority,omitempty"`
}

// Sitemap — sitemap.xml c абсолютными каноническими адресами.
func (b *Builder) Sitemap(entries []SitemapEntry) ([]byte, error) {
	set := urlset{XMLNS: sitemapNS, URLs: make([]sitemapURL, 0, len(entries))}
	for _, e := range entries {
		u := sitemapURL{Loc: b.URL(e.Path), ChangeFreq: e.ChangeFreq}
		if !e.LastMod.IsZero() {
			u.LastMod = e.LastMod.UTC().Format("2006-01-02")
		}
		if e.Priority > 0 {
			u.Priority = fmt.Sprintf("%.1f", e.Priority)
		}
		set.URLs = append(set.URLs, u)
	}

	out, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), out...), nil
}

// Robots — robots.txt: всё открыто, кроме перечисленных префиксов.
func (b *Builder) Robots(disallow ...string) string {
	var sb strings.Builder
	sb.WriteString("User-agent: *\n")
	if len(disallow) == 0 {
		sb.WriteString("Disallow:\n")
	}
	for _, p := range disallow {
		sb.WriteString("Disallow: " + p + "\n")
	}
	sb.WriteString("\nSitemap: " + b.URL("/sitemap.xml") + "\n")
	return sb.String()
}
