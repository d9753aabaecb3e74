// Package handler — HTTP-обработчики страниц, API и служебных эндпоинтов.
package handler

import (
	"context"

	"linksite/internal/inventory"
	"linksite/internal/storage"
)

// SiteStore — каталог площадок (storage.SiteRepo).
type SiteStore interface {
	List(ctx context.Context, f inventory.Filter) (storage.SitePage, error)
	Facets(ctx context.Context) (storage.Facets, error)
	GetByDomain(ctx context.Context, domain string) (*storage.Site, error)
}

// PostStore — блог (storage.PostRepo).
type PostStore interface {
	ListPublished(ctx context.Context, page, perPage int) ([]storage.Post, int, error)
	GetBySlug(ctx context.Context, slug string) (*storage.Post, error)
	AllSlugs(ctx context.Context) ([]storage.PostRef, error)
}

// InquiryStore — заявки с формы контактов (storage.InquiryRepo).
type InquiryStore interface {
	Create(ctx context.Context, in *storage.Inquiry) error
}

// Pinger — проверка готовности БД (*sqlx.DB).
type Pinger interface {
	PingContext(ctx context.Context) error
}
