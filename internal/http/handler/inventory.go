package handler

// inventory.go
import (
	"errors"
	"net/http"

	"linksite/internal/core"
	"linksite/internal/inventory"
	"linksite/internal/seo"
	"linksite/internal/storage"
	"linksite/internal/view"

	"github.com/go-chi/chi/v5"
)

// InventoryView — данные страницы каталога
type InventoryView struct {
	Filter inventory.Filter
	Page   storage.SitePage
	Facets storage.Facets
	Errors map[string]string
}

// Inventory — HTML-каталог площадок с фильтрами
func Inventory(tpl *view.Templates, sb *seo.Builder, sites SiteStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := http.StatusOK
		data := InventoryView{}

		f, err := inventory.ParseFilter(r.URL.Query())
		data.Filter = f
		if err != nil {
			var ae *core.AppError
			if !errors.As(err, &ae) || ae.Status != http.StatusUnprocessableEntity {
				core.Fail(w, r, err)
				return
			}
			// Некорректный фильтр — показываем форму с ошибками и пустой выдачей
			status = ae.Status
			data.Errors = ae.Fields
		} else {
			page, err := sites.List(r.Context(), f)
			if err != nil {
				core.Fail(w, r, core.Internal("Ошибка каталога", err))
				return
			}
			data.Page = page
		}

		facets, err := sites.Facets(r.Context())
		if err != nil {
			core.LogError("inventory: фасеты", map[string]interface{}{"error": err.Error()})
		}
		data.Facets = facets

		meta := sb.Page("Каталог площадок", "Площадки для гостевых публикаций с фильтрами по нише, DR, трафику и цене.", "/inventory")
		// Отфильтрованные варианты не индексируем: canonical указывает на чистый каталог
		if r.URL.RawQuery != "" {
			meta.NoIndex = true
		}
		ld, err := seo.Graph(sb.Breadcrumbs(seo.Crumb{Name: "Каталог площадок", Path: "/inventory"}))
		if err != nil {
			core.Fail(w, r, core.Internal("json-ld", err))
			return
		}
		tpl.Render(w, r, status, "inventory", view.Page{Meta: meta, JSONLD: ld, Data: data})
	}
}

// InventoryJSON — GET /api/inventory: та же выдача в JSON. Ошибки фильтра — 422 problem+json.
func InventoryJSON(sites SiteStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f, err := inventory.ParseFilter(r.URL.Query())
		if err != nil {
			core.Fail(w, r, err)
			return
		}
		page, err := sites.List(r.Context(), f)
		if err != nil {
			core.Fail(w, r, core.Internal("Ошибка каталога", err))
			return
		}
		core.JSON(w, http.StatusOK, page)
	}
}

// InventorySite — GET /api/inventory/{domain}: карточка одной площадки.
// Домен уже в нижнем регистре после канонизации URL.
func InventorySite(sites SiteStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		domain := chi.URLParam(r, "domain")
		site, err := sites.GetByDomain(r.Context(), domain)
		if errors.Is(err, storage.ErrNotFound) {
			core.Fail(w, r, core.NotFound("площадка не найдена"))
			return
		}
		if err != nil {
			core.Fail(w, r, core.Internal("Ошибка каталога", err))
			return
		}
		core.JSON(w, http.StatusOK, site)
	}
}
