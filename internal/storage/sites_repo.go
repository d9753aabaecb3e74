package storage

// internal/storage/sites_repo.go
import (
	"context"
	"database/sql"
	"errors"
	"time"

	"linksite/internal/cache"
	"linksite/internal/core"
	"linksite/internal/inventory"

	"github.com/jmoiron/sqlx"
)

// Site — площадка из каталога (гостевые посты / ссылки)
type Site struct {
	ID        int64     `db:"id" json:"id"`
	Domain    string    `db:"domain" json:"domain"`
	Niche     string    `db:"niche" json:"niche"`
	Country   string    `db:"country" json:"country"`
	Language  string    `db:"language" json:"language"`
	DR        int       `db:"dr" json:"dr"`
	Traffic   int       `db:"traffic" json:"traffic"`
	Price     float64   `db:"price" json:"price"`
	DoFollow  bool      `db:"dofollow" json:"dofollow"`
	Sponsored bool      `db:"sponsored" json:"sponsored"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// SitePage — страница выдачи каталога
type SitePage struct {
	Items   []Site `json:"items"`
	Total   int    `json:"total"`
	Page    int    `json:"page"`
	PerPage int    `json:"per_page"`
	Pages   int    `json:"pages"`
}

// Facets — значения для выпадающих списков фильтра
type Facets struct {
	Niches    []string `json:"niches"`
	Countries []string `json:"countries"`
	Languages []string `json:"languages"`
}

type SiteRepo struct {
	db    *sqlx.DB
	cache *cache.Cache
}

func NewSiteRepo(db *sqlx.DB, c *cache.Cache) *SiteRepo {
	return &SiteRepo{db: db, cache: c}
}

// List — выдача каталога по фильтру: COUNT + страница
func (r *SiteRepo) List(ctx context.Context, f inventory.Filter) (SitePage, error) {
	page := SitePage{Page: f.Page, PerPage: f.PerPage, Items: []Site{}}

	countQ, countArgs, err := inventory.BuildCountQuery(f)
	if err != nil {
		return page, err
	}
	if err := r.db.GetContext(ctx, &page.Total, r.db.Rebind(countQ), countArgs...); err != nil {
		core.LogError("count sites", map[string]interface{}{"query": countQ, "error": err.Error()})
		return page, err
	}
	page.Pages = inventory.Pages(page.Total, f.PerPage)
	if page.Total == 0 || f.Offset() >= page.Total {
		return page, nil
	}

	q, args, err := inventory.BuildQuery(f)
	if err != nil {
		return page, err
	}
	if err := r.db.SelectContext(ctx, &page.Items, r.db.Rebind(q), args...); err != nil {
		core.LogError("list sites", map[string]interface{}{"query": q, "error": err.Error()})
		return page, err
	}
	return page, nil
}

// GetByDomain — одна площадка
func (r *SiteRepo) GetByDomain(ctx context.Context, domain string) (*Site, error) {
	var s Site
	q := "SELECT " + inventory.SiteColumns + " FROM sites WHERE domain = ? AND active = 1"
	if err := r.db.GetContext(ctx, &s, q, domain); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		core.LogError("get site by domain", map[string]interface{}{"domain": domain, "error": err.Error()})
		return nil, err
	}
	return &s, nil
}

// Facets — различные ниши/страны/языки активных площадок (кэшируется)
func (r *SiteRepo) Facets(ctx context.Context) (Facets, error) {
	return cache.GetOrLoad(r.cache, "inventory:facets", func() (Facets, error) {
		var f Facets
		if err := r.db.SelectContext(ctx, &f.Niches, "SELECT DISTINCT niche FROM sites WHERE active = 1 ORDER BY niche"); err != nil {
			return f, err
		}
		if err := r.db.SelectContext(ctx, &f.Countries, "SELECT DISTINCT country FROM sites WHERE active = 1 AND country <> '' ORDER BY country"); err != nil {
			return f, err
		}
		if err := r.db.SelectContext(ctx, &f.Languages, "SELECT DISTINCT language FROM sites WHERE active = 1 AND language <> '' ORDER BY language"); err != nil {
			return f, err
		}
		return f, nil
	})
}
