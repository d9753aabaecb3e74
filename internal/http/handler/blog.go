package handler

// blog.go
import (
	"errors"
	"net/http"
	"strconv"

	"linksite/internal/core"
	"linksite/internal/inventory"
	"linksite/internal/seo"
	"linksite/internal/storage"
	"linksite/internal/view"

	"github.com/go-chi/chi/v5"
)

const postsPerPage = 10

// BlogView — список статей
type BlogView struct {
	Posts []storage.Post
	Page  int
	Pages int
	Total int
}

// PostView — одна статья
type PostView struct {
	Post storage.Post
}

// Blog — GET /blog?page=N
func Blog(tpl *view.Templates, sb *seo.Builder, posts PostStore) http.HandlerFunc {
	notFound := NotFound(tpl, sb)

	return func(w http.ResponseWriter, r *http.Request) {
		page := 1
		if raw := r.URL.Query().Get("page"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 1 {
				notFound(w, r)
				return
			}
			page = n
		}

		items, total, err := posts.ListPublished(r.Context(), page, postsPerPage)
		if err != nil {
			core.Fail(w, r, core.Internal("Ошибка блога", err))
			return
		}
		pages := inventory.Pages(total, postsPerPage)
		if page > 1 && page > pages {
			notFound(w, r)
			return
		}

		meta := sb.Page("Блог", "Статьи о линкбилдинге, гостевых публикациях и аутриче.", "/blog")
		if page > 1 {
			meta.Title = "Блог, страница " + strconv.Itoa(page) + " | " + sb.Site().Name
		}
		ld, err := seo.Graph(sb.Breadcrumbs(seo.Crumb{Name: "Блог", Path: "/blog"}))
		if err != nil {
			core.Fail(w, r, core.Internal("json-ld", err))
			return
		}
		tpl.Render(w, r, http.StatusOK, "blog", view.Page{
			Meta:   meta,
			JSONLD: ld,
			Data:   BlogView{Posts: items, Page: page, Pages: pages, Total: total},
		})
	}
}

// BlogPost — GET /blog/{slug}. Slug уже в нижнем регистре после канонизации URL.
func BlogPost(tpl *view.Templates, sb *seo.Builder, posts PostStore) http.HandlerFunc {
	notFound := NotFound(tpl, sb)

	return func(w http.ResponseWriter, r *http.Request) {
		slug := chi.URLParam(r, "slug")
		p, err := posts.GetBySlug(r.Context(), slug)
		if errors.Is(err, storage.ErrNotFound) {
			notFound(w, r)
			return
		}
		if err != nil {
			core.Fail(w, r, core.Internal("Ошибка блога", err))
			return
		}

		path := "/blog/" + p.Slug
		meta := sb.Page(p.Title, p.Excerpt, path)
		meta.OGType = "article"
		if p.CoverImage != "" {
			meta.Image = sb.Asset(p.CoverImage)
		}
		ld, err := seo.Graph(
			sb.BlogPosting(*p),
			sb.Breadcrumbs(seo.Crumb{Name: "Блог", Path: "/blog"}, seo.Crumb{Name: p.Title, Path: path}),
		)
		if err != nil {
			core.Fail(w, r, core.Internal("json-ld", err))
			return
		}
		tpl.Render(w, r, http.StatusOK, "post", view.Page{Meta: meta, JSONLD: ld, Data: PostView{Post: *p}})
	}
}
