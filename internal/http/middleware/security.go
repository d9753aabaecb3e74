// security.go
package middleware

import (
	"net/http"
	"net/url"
	"path"
	"strings"

	"linksite/internal/core"
	"linksite/internal/security"

	"github.com/unrolled/secure"
)

// Заголовки, которые выставляются на каждый не-редиректный ответ.
const (
	HeaderNonce                  = "x-nonce"
	HeaderCSP                    = "Content-Security-Policy"
	HeaderCSPReportOnly          = "Content-Security-Policy-Report-Only"
	ReferrerPolicyValue          = "strict-origin-when-cross-origin"
	PermissionsPolicyValue       = "camera=(), microphone=(), geolocation=(), interest-cohort=()"
	hstsMaxAgeSeconds      int64 = 31536000
)

// SecurityOptions — всё, что нужно middleware. Собирается один раз при старте из core.Config.
type SecurityOptions struct {
	IsDevelopment bool
	AdminPrefix   string
	Hosts         security.CSPHosts
	// ReportOnly дополнительно отдаёт политику в Report-Only заголовке с report-uri.
	ReportOnly bool
	// Статика и картинки: middleware их не обрабатывает вообще.
	ExcludedPrefixes   []string
	ExcludedExtensions []string
	// OnRedirect вызывается при каноническом редиректе (метрики).
	OnRedirect func(from, to string)
	// NewNonce — источник nonce; nil означает security.GenerateNonce.
	NewNonce func() (string, error)
}

// SecurityOptionsFrom переносит нужные поля из конфигурации.
func SecurityOptionsFrom(cfg core.Config) SecurityOptions {
	return SecurityOptions{
		IsDevelopment: cfg.IsDevelopment(),
		AdminPrefix:   cfg.AdminPrefix,
		Hosts: security.CSPHosts{
			Analytics:   cfg.Site.AnalyticsHost,
			Fonts:       cfg.Site.FontsHost,
			FontsStatic: cfg.Site.FontsStatic,
			OwnDomain:   cfg.Site.OwnDomain,
		},
		ReportOnly:         cfg.CSPReportOnly,
		ExcludedPrefixes:   cfg.ExcludedPrefixes,
		ExcludedExtensions: cfg.ExcludedExtensions,
	}
}

// Security — канонизация URL + заголовки безопасности с CSP nonce (OWASP A05).
//
// Порядок: сначала решение о редиректе (308, без CSP/nonce), затем nonce,
// статические заголовки через unrolled/secure и CSP под этот nonce.
func Security(opts SecurityOptions) func(http.Handler) http.Handler {
	headers := secure.New(staticHeaderOptions(opts.IsDevelopment))
	newNonce := opts.NewNonce
	if newNonce == nil {
		newNonce = security.GenerateNonce
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL != nil && opts.excluded(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			reqPath := ""
			if r.URL == nil {
				// URL не разобран: редирект пропускаем, но заголовки безопасности ставим
				r = r.WithContext(r.Context())
				r.URL = &url.URL{}
			} else {
				reqPath = r.URL.Path
				if canonical, changed := CanonicalPath(reqPath, opts.AdminPrefix); changed {
					target := redirectTarget(r, canonical)
					if opts.OnRedirect != nil {
						opts.OnRedirect(reqPath, canonical)
					}
					http.Redirect(w, r, target, http.StatusPermanentRedirect)
					return
				}
			}

			nonce, err := newNonce()
			if err != nil {
				// Без nonce CSP не собрать: отвечаем 500 без заголовков политики
				core.Fail(w, r, core.Internal("nonce", err))
				return
			}

			if err := headers.Process(w, r); err != nil {
				// Без AllowedHosts/SSLRedirect ошибок быть не должно; заголовки всё равно ставим ниже
				core.LogError("unrolled/secure", map[string]interface{}{"error": err.Error()})
			}

			cspCfg := security.CSPConfig{
				Nonce:         nonce,
				IsDevelopment: opts.IsDevelopment,
				IsAdmin:       IsAdminPath(reqPath, opts.AdminPrefix),
				Hosts:         opts.Hosts,
			}
			h := w.Header()
			h.Set(HeaderNonce, nonce)
			h.Set(HeaderCSP, security.BuildCSP(cspCfg))
			if opts.ReportOnly {
				h.Set(HeaderCSPReportOnly, security.BuildCSPReportOnly(cspCfg))
			}

			next.ServeHTTP(w, r.WithContext(core.WithNonce(r.Context(), nonce)))
		})
	}
}

// staticHeaderOptions — заголовки, не зависящие от запроса. HSTS только вне разработки.
func staticHeaderOptions(isDevelopment bool) secure.Options {
	opts := secure.Options{
		FrameDeny:          true,
		ContentTypeNosniff: true,
		BrowserXssFilter:   true,
		ReferrerPolicy:     ReferrerPolicyValue,
		PermissionsPolicy:  PermissionsPolicyValue,
	}
	if !isDevelopment {
		opts.STSSeconds = hstsMaxAgeSeconds
		opts.STSIncludeSubdomains = true
		opts.STSPreload = true
		// TLS терминируется на прокси: r.TLS пуст, но заголовок нужен
		opts.ForceSTSHeader = true
	}
	return opts
}

func (o SecurityOptions) excluded(p string) bool {
	for _, prefix := range o.ExcludedPrefixes {
		if strings.HasPrefix(p, prefix) {
			return true
		}
	}
	if len(o.ExcludedExtensions) == 0 {
		return false
	}
	ext := strings.ToLower(path.Ext(p))
	if ext == "" {
		return false
	}
	for _, e := range o.ExcludedExtensions {
		if ext == e {
			return true
		}
	}
	return false
}
