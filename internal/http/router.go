package httpx

/*
Маршруты сайта: страницы, блог, каталог, форма заявки, SEO-файлы,
служебные /healthz, /readyz, /metrics и статика /assets/*.
*/

import (
	"io/fs"
	"net/http"

	"linksite/internal/cache"
	"linksite/internal/core"
	"linksite/internal/http/handler"
	"linksite/internal/http/middleware"
	"linksite/internal/notify"
	"linksite/internal/seo"
	"linksite/internal/view"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/csrf"
)

// Deps — всё, что нужно роутеру. Собирается в app.New.
type Deps struct {
	Config    core.Config
	CSRFKey   []byte // 32 байта
	Templates *view.Templates
	SEO       *seo.Builder
	Sites     handler.SiteStore
	Posts     handler.PostStore
	Inquiries handler.InquiryStore
	Notifier  notify.Notifier
	DB        handler.Pinger
	Cache     *cache.Cache
	Metrics   http.Handler
	Assets    fs.FS
}

func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	sec := middleware.SecurityOptionsFrom(d.Config)
	sec.OnRedirect = middleware.CountRedirect
	middleware.UseCommon(r, d.Config, sec)

	// статика (Security её пропускает по префиксу)
	r.Handle("/assets/*", http.StripPrefix("/assets/", cacheStatic(d.Config.IsDevelopment(), http.FileServer(http.FS(d.Assets)))))
	r.Get("/favicon.ico", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/assets/img/logo.svg", http.StatusMovedPermanently)
	})

	// служебные
	r.Get("/healthz", handler.Health)
	r.Get("/readyz", handler.Ready(d.DB))
	if d.Metrics != nil {
		r.Handle("/metrics", d.Metrics)
	}

	// SEO
	r.Get("/robots.txt", handler.Robots(d.SEO, d.Config.AdminPrefix))
	r.Get("/sitemap.xml", handler.Sitemap(d.SEO, d.Posts, d.Cache))

	// API: без CSRF (браузер шлёт CSP-отчёты без токена)
	r.Post("/api/csp-report", handler.CSPReport(middleware.CountCSPReport))
	r.Get("/api/inventory", handler.InventoryJSON(d.Sites))
	r.Get("/api/inventory/{domain}", handler.InventorySite(d.Sites))

	// HTML-страницы под CSRF (OWASP A01)
	r.Group(func(r chi.Router) {
		r.Use(csrfProtect(d))

		r.Get("/", handler.Home(d.Templates, d.SEO, d.Sites, d.Posts))
		r.Get("/about", handler.About(d.Templates, d.SEO))
		r.Get("/services", handler.Services(d.Templates, d.SEO))
		r.Get("/inventory", handler.Inventory(d.Templates, d.SEO, d.Sites))
		r.Get("/blog", handler.Blog(d.Templates, d.SEO, d.Posts))
		r.Get("/blog/{slug}", handler.BlogPost(d.Templates, d.SEO, d.Posts))
		r.Get("/contact", handler.ContactIndex(d.Templates, d.SEO))
		r.Post("/contact", handler.ContactSubmit(d.Templates, d.SEO, d.Inquiries, d.Notifier))
	})

	// 404 / 405
	r.NotFound(handler.NotFound(d.Templates, d.SEO))
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		core.Fail(w, r, &core.AppError{Code: "method_not_allowed", Status: http.StatusMethodNotAllowed, Message: "метод не поддерживается"})
	})

	return r
}

func csrfProtect(d Deps) func(http.Handler) http.Handler {
	protect := csrf.Protect(d.CSRFKey,
		csrf.Secure(!d.Config.IsDevelopment()),
		csrf.Path("/"),
		csrf.HttpOnly(true),
		csrf.SameSite(csrf.SameSiteLaxMode),
		csrf.FieldName("csrf_token"),
		csrf.ErrorHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			msg := "CSRF invalid"
			if reason := csrf.FailureReason(r); reason != nil {
				msg += ": " + reason.Error()
			}
			core.Fail(w, r, core.Forbidden(msg))
		})),
	)
	return func(next http.Handler) http.Handler {
		h := protect(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// gorilla/csrf по умолчанию считает запрос HTTPS и сверяет Referer по https-схеме.
			// Схему за прокси восстанавливает TrustedProxy.
			if r.TLS == nil && r.URL.Scheme != "https" {
				r = csrf.PlaintextHTTPRequest(r)
			}
			h.ServeHTTP(w, r)
		})
	}
}

func cacheStatic(isDev bool, next http.Handler) http.Handler {
	maxAge := "public, max-age=86400"
	if isDev {
		maxAge = "public, max-age=300"
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", maxAge)
		next.ServeHTTP(w, r)
	})
}
