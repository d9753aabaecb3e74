// Package app — сборка приложения: хранилища, кэш, шаблоны, SEO, уведомления, роутер.
package app

import (
	"crypto/sha256"
	"fmt"
	"net/http"

	"linksite/internal/cache"
	"linksite/internal/core"
	httpx "linksite/internal/http"
	"linksite/internal/http/middleware"
	"linksite/internal/notify"
	"linksite/internal/seo"
	"linksite/internal/storage"
	"linksite/internal/view"
	"linksite/web"

	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
)

// New собирает http.Handler поверх открытого пула MySQL.
func New(cfg core.Config, db *sqlx.DB) (http.Handler, error) {
	tpl, err := view.New(web.Templates(), cfg.Site)
	if err != nil {
		return nil, fmt.Errorf("шаблоны: %w", err)
	}

	metrics, err := middleware.RegisterMetrics(prometheus.DefaultRegisterer)
	if err != nil {
		return nil, fmt.Errorf("метрики: %w", err)
	}

	c := cache.New(cfg.CacheTTL)

	return httpx.NewRouter(httpx.Deps{
		Config:    cfg,
		CSRFKey:   derive32(cfg.CSRFKey),
		Templates: tpl,
		SEO:       seo.New(cfg.Site),
		Sites:     storage.NewSiteRepo(db, c),
		Posts:     storage.NewPostRepo(db, c),
		Inquiries: storage.NewInquiryRepo(db),
		Notifier:  notify.New(cfg.SMTP, cfg.Site.Name),
		DB:        db,
		Cache:     c,
		Metrics:   metrics,
		Assets:    web.Assets(),
	}), nil
}

// derive32 — 32-байтовый ключ CSRF из секрета (OWASP A02)
func derive32(secret string) []byte {
	sum := sha256.Sum256([]byte(secret))
	return sum[:]
}
