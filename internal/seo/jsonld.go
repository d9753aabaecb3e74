package seo

import (
	"encoding/json"
	"html/template"
	"strings"
	"time"

	"linksite/internal/storage"
)

// Node — узел schema.org. Набор закрыт: реализации только в этом пакете.
type Node interface {
	node()
}

type Person struct {
	Name string `json:"name"`
}

type Organization struct {
	Name   string   `json:"name"`
	URL    string   `json:"url"`
	Logo   string   `json:"logo,omitempty"`
	Email  string   `json:"email,omitempty"`
	SameAs []string `json:"sameAs,omitempty"`
}

type WebSite struct {
	Name        string `json:"name"`
	URL         string `json:"url"`
	Description string `json:"description,omitempty"`
}

type BlogPosting struct {
	Headline      string        `json:"headline"`
	Description   string        `json:"description,omitempty"`
	URL           string        `json:"url"`
	Image         string        `json:"image,omitempty"`
	Author        Person        `json:"author"`
	Keywords      string        `json:"keywords,omitempty"`
	DatePublished string        `json:"datePublished,omitempty"`
	DateModified  string        `json:"dateModified,omitempty"`
	Publisher     *Organization `json:"publisher,omitempty"`
}

type ListItem struct {
	Position int    `json:"position"`
	Name     string `json:"name"`
	Item     string `json:"item"`
}

type BreadcrumbList struct {
	Items []ListItem `json:"itemListElement"`
}

type Service struct {
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	ServiceType string        `json:"serviceType,omitempty"`
	URL         string        `json:"url,omitempty"`
	AreaServed  string        `json:"areaServed,omitempty"`
	Provider    *Organization `json:"provider,omitempty"`
}

func (Organization) node()   {}
func (WebSite) node()        {}
func (BlogPosting) node()    {}
func (BreadcrumbList) node() {}
func (Service) node()        {}

// @type добавляется при сериализации, поле в структурах не нужно.

func (p Person) MarshalJSON() ([]byte, error) {
	type alias Person
	return json.Marshal(struct {
		Type string `json:"@type"`
		alias
	}{"Person", alias(p)})
}

func (o Organization) MarshalJSON() ([]byte, error) {
	type alias Organization
	return json.Marshal(struct {
		Type string `json:"@type"`
		alias
	}{"Organization", alias(o)})
}

func (s WebSite) MarshalJSON() ([]byte, error) {
	type alias WebSite
	return json.Marshal(struct {
		Type string `json:"@type"`
		alias
	}{"WebSite", alias(s)})
}

func (p BlogPosting) MarshalJSON() ([]byte, error) {
	type alias BlogPosting
	return json.Marshal(struct {
		Type string `json:"@type"`
		alias
	}{"BlogPosting", alias(p)})
}

func (l ListItem) MarshalJSON() ([]byte, error) {
	type alias ListItem
	return json.Marshal(struct {
		Type string `json:"@type"`
		alias
	}{"ListItem", alias(l)})
}

func (l BreadcrumbList) MarshalJSON() ([]byte, error) {
	type alias BreadcrumbList
	return json.Marshal(struct {
		Type string `json:"@type"`
		alias
	}{"BreadcrumbList", alias(l)})
}

func (s Service) MarshalJSON() ([]byte, error) {
	type alias Service
	return json.Marshal(struct {
		Type string `json:"@type"`
		alias
	}{"Service", alias(s)})
}

// Graph сериализует узлы в один JSON-LD документ для <script type="application/ld+json">.
// encoding/json экранирует <, > и &, так что закрыть тег script из данных нельзя.
func Graph(nodes ...Node) (template.JS, error) {
	if len(nodes) == 0 {
		return "", nil
	}
	b, err := json.Marshal(struct {
		Context string `json:"@context"`
		Graph   []Node `json:"@graph"`
	}{"https://schema.org", nodes})
	if err != nil {
		return "", err
	}
	return template.JS(b), nil
}

func (b *Builder) Organization() Organization {
	return Organization{
		Name:   b.site.Name,
		URL:    b.URL("/"),
		Logo:   b.Asset(b.site.Logo),
		Email:  b.site.ContactEmail,
		SameAs: b.site.Socials,
	}
}

func (b *Builder) WebSite() WebSite {
	return WebSite{Name: b.site.Name, URL: b.URL("/"), Description: b.site.Description}
}

func (b *Builder) BlogPosting(p storage.Post) BlogPosting {
	org := b.Organization()
	bp := BlogPosting{
		Headline:    p.Title,
		Description: p.Excerpt,
		URL:         b.URL("/blog/" + p.Slug),
		Image:       b.Asset(p.CoverImage),
		Author:      Person{Name: p.Author},
		Publisher:   &org,
	}
	if bp.Author.Name == "" {
		bp.Author.Name = b.site.Name
	}
	if tags := p.Tags(); len(tags) > 0 {
		bp.Keywords = strings.Join(tags, ", ")
	}
	if t := p.Published(); !t.IsZero() {
		bp.DatePublished = t.UTC().Format(time.RFC3339)
	}
	if !p.UpdatedAt.IsZero() {
		bp.DateModified = p.UpdatedAt.UTC().Format(time.RFC3339)
	}
	return bp
}

// Crumb — звено хлебных крошек (путь относительный).
type Crumb struct {
	Name string
	Path string
}

func (b *Builder) Breadcrumbs(crumbs ...Crumb) BreadcrumbList {
	list := BreadcrumbList{Items: make([]ListItem, 0, len(crumbs)+1)}
	list.Items = append(list.Items, ListItem{Position: 1, Name: "Главная", Item: b.URL("/")})
	for i, c := range crumbs {
		list.Items = append(list.Items, ListItem{Position: i + 2, Name: c.Name, Item: b.URL(c.Path)})
	}
	return list
}

func (b *Builder) Service(name, description, path string) Service {
	org := b.Organization()
	return Service{
		Name:        name,
		Description: description,
		ServiceType: "Link building",
		URL:         b.URL(path),
		AreaServed:  "Worldwide",
		Provider:    &org,
	}
}
