package handler

//pages.go
import (
	"net/http"
	"net/url"
	"strconv"

	"linksite/internal/core"
	"linksite/internal/inventory"
	"linksite/internal/seo"
	"linksite/internal/storage"
	"linksite/internal/view"
)

// Service — услуга на /services и главной.
type Service struct {
	Slug    string
	Name    string
	Summary string
	Points  []string
}

var services = []Service{
	{
		Slug:    "guest-posts",
		Name:    "Гостевые публикации",
		Summary: "Статьи с вечной dofollow-ссылкой на тематических сайтах из нашего каталога.",
		Points:  []string{"Текст пишет наш редактор", "Отчёт с URL публикации", "Замена при удалении в течение 12 месяцев"},
	},
	{
		Slug:    "niche-edits",
		Name:    "Ссылки в существующих статьях",
		Summary: "Размещение ссылки в уже проиндексированной статье с трафиком.",
		Points:  []string{"Быстрая индексация", "Контекстный анкор"},
	},
	{
		Slug:    "outreach",
		Name:    "Аутрич под ключ",
		Summary: "Ручной поиск площадок и переговоры с владельцами под ваш проект.",
		Points:  []string{"Согласование списка доноров", "Ежемесячный отчёт"},
	},
}

const (
	featuredSites = 6
	homePosts     = 3
)

// HomeView — данные главной
type HomeView struct {
	Services []Service
	Featured []storage.Site
	Posts    []storage.Post
}

// Home — главная: услуги, площадки с высоким DR, свежие статьи (OWASP A03)
func Home(tpl *view.Templates, sb *seo.Builder, sites SiteStore, posts PostStore) http.HandlerFunc {
	featured, _ := inventory.ParseFilter(url.Values{"per_page": {strconv.Itoa(featuredSites)}})

	return func(w http.ResponseWriter, r *http.Request) {
		data := HomeView{Services: services}

		// Блоки главной необязательны: при ошибке БД страница всё равно отдаётся
		if page, err := sites.List(r.Context(), featured); err != nil {
			core.LogError("home: каталог", map[string]interface{}{"error": err.Error()})
		} else {
			data.Featured = page.Items
		}
		if items, _, err := posts.ListPublished(r.Context(), 1, homePosts); err != nil {
			core.LogError("home: блог", map[string]interface{}{"error": err.Error()})
		} else {
			data.Posts = items
		}

		ld, err := seo.Graph(sb.Organization(), sb.WebSite())
		if err != nil {
			core.Fail(w, r, core.Internal("json-ld", err))
			return
		}
		tpl.Render(w, r, http.StatusOK, "home", view.Page{
			Meta:   sb.Page("", "", "/"),
			JSONLD: ld,
			Data:   data,
		})
	}
}

// About — статическая страница «О нас»
func About(tpl *view.Templates, sb *seo.Builder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ld, err := seo.Graph(sb.Organization(), sb.Breadcrumbs(seo.Crumb{Name: "О нас", Path: "/about"}))
		if err != nil {
			core.Fail(w, r, core.Internal("json-ld", err))
			return
		}
		tpl.Render(w, r, http.StatusOK, "about", view.Page{
			Meta:   sb.Page("О нас", "", "/about"),
			JSONLD: ld,
		})
	}
}

// Services — список услуг с разметкой Service
func Services(tpl *view.Templates, sb *seo.Builder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		nodes := []seo.Node{sb.Breadcrumbs(seo.Crumb{Name: "Услуги", Path: "/services"})}
		for _, s := range services {
			nodes = append(nodes, sb.Service(s.Name, s.Summary, "/services"))
		}
		ld, err := seo.Graph(nodes...)
		if err != nil {
			core.Fail(w, r, core.Internal("json-ld", err))
			return
		}
		tpl.Render(w, r, http.StatusOK, "services", view.Page{
			Meta:   sb.Page("Услуги", "Гостевые публикации, ссылки в существующих статьях и аутрич под ключ.", "/services"),
			JSONLD: ld,
			Data:   services,
		})
	}
}

// NotFound — 404 с шаблоном
func NotFound(tpl *view.Templates, sb *seo.Builder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tpl.Render(w, r, http.StatusNotFound, "notfound", view.Page{Meta: sb.NotFound(r.URL.Path)})
	}
}
