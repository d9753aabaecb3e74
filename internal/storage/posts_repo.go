package storage

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"
	"time"

	"linksite/internal/cache"
	"linksite/internal/core"

	"github.com/jmoiron/sqlx"
)

// Post — запись блога. BodyHTML хранится как пришёл из CMS и санитизируется при выводе.
type Post struct {
	ID          int64        `db:"id" json:"id"`
	Slug        string       `db:"slug" json:"slug"`
	Title       string       `db:"title" json:"title"`
	Excerpt     string       `db:"excerpt" json:"excerpt"`
	BodyHTML    string       `db:"body_html" json:"-"`
	Author      string       `db:"author" json:"author"`
	TagsRaw     string       `db:"tags" json:"-"`
	CoverImage  string       `db:"cover_image" json:"cover_image,omitempty"`
	PublishedAt sql.NullTime `db:"published_at" json:"-"`
	UpdatedAt   time.Time    `db:"updated_at" json:"updated_at"`
}

// Tags — теги через запятую в колонке tags
func (p Post) Tags() []string {
	var out []string
	for _, t := range strings.Split(p.TagsRaw, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// Published — дата публикации (нулевая, если не опубликован)
func (p Post) Published() time.Time {
	if p.PublishedAt.Valid {
		return p.PublishedAt.Time
	}
	return time.Time{}
}

// PostRef — минимум для sitemap
type PostRef struct {
	Slug      string    `db:"slug"`
	UpdatedAt time.Time `db:"updated_at"`
}

const postColumns = "id, slug, title, excerpt, body_html, author, tags, cover_image, published_at, updated_at"

type PostRepo struct {
	db    *sqlx.DB
	cache *cache.Cache
}

func NewPostRepo(db *sqlx.DB, c *cache.Cache) *PostRepo {
	return &PostRepo{db: db, cache: c}
}

type postList struct {
	Items []Post
	Total int
}

// ListPublished — опубликованные посты, новые сверху
func (r *PostRepo) ListPublished(ctx context.Context, page, perPage int) ([]Post, int, error) {
	if page < 1 {
		page = 1
	}
	key := "blog:list:" + strconv.Itoa(page) + ":" + strconv.Itoa(perPage)
	res, err := cache.GetOrLoad(r.cache, key, func() (postList, error) {
		var out postList
		if err := r.db.GetContext(ctx, &out.Total, "SELECT COUNT(*) FROM posts WHERE published = 1"); err != nil {
			return out, err
		}
		out.Items = []Post{}
		q := "SELECT " + postColumns + " FROM posts WHERE published = 1 ORDER BY published_at DESC, id DESC LIMIT ? OFFSET ?"
		if err := r.db.SelectContext(ctx, &out.Items, q, perPage, (page-1)*perPage); err != nil {
			return out, err
		}
		return out, nil
	})
	if err != nil {
		core.LogError("list posts", map[string]interface{}{"page": page, "error": err.Error()})
		return nil, 0, err
	}
	return res.Items, res.Total, nil
}

// GetBySlug — опубликованный пост по slug
func (r *PostRepo) GetBySlug(ctx context.Context, slug string) (*Post, error) {
	var p Post
	q := "SELECT " + postColumns + " FROM posts WHERE slug = ? AND published = 1"
	if err := r.db.GetContext(ctx, &p, q, slug); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		core.LogError("get post by slug", map[string]interface{}{"slug": slug, "error": err.Error()})
		return nil, err
	}
	return &p, nil
}

// AllSlugs — все опубликованные посты для sitemap.xml
func (r *PostRepo) AllSlugs(ctx context.Context) ([]PostRef, error) {
	return cache.GetOrLoad(r.cache, "blog:slugs", func() ([]PostRef, error) {
		refs := []PostRef{}
		err := r.db.SelectContext(ctx, &refs, "SELECT slug, updated_at FROM posts WHERE published = 1 ORDER BY published_at DESC")
		return refs, err
	})
}
