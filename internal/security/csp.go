package security

import "strings"

// ReportURI — endpoint для отчётов о нарушениях CSP (report-only режим).
const ReportURI = "/api/csp-report"

// Хосты по умолчанию, если в конфигурации ничего не задано.
const (
	DefaultAnalyticsHost = "https://www.googletagmanager.com"
	DefaultFontsHost     = "https://fonts.googleapis.com"
	DefaultFontsStatic   = "https://fonts.gstatic.com"
)

// CSPHosts — внешние источники, разрешённые политикой.
type CSPHosts struct {
	Analytics   string // script-src, connect-src
	Fonts       string // style-src (CSS шрифтов)
	FontsStatic string // font-src (файлы шрифтов)
	OwnDomain   string // connect-src: https://*.<OwnDomain>
}

// CSPConfig — параметры одной политики. Строится на каждый запрос заново.
type CSPConfig struct {
	Nonce         string
	IsDevelopment bool
	IsAdmin       bool // админ-панель CMS требует inline/eval
	Hosts         CSPHosts
}

type directive struct {
	name    string
	sources []string
}

// policy — упорядоченный список директив.
type policy []directive

func (p *policy) add(name string, sources ...string) {
	*p = append(*p, directive{name: name, sources: dedupe(sources)})
}

func (p policy) String() string {
	parts := make([]string, 0, len(p))
	for _, d := range p {
		if len(d.sources) == 0 {
			parts = append(parts, d.name)
			continue
		}
		parts = append(parts, d.name+" "+strings.Join(d.sources, " "))
	}
	return strings.Join(parts, "; ")
}

// BuildCSP собирает значение заголовка Content-Security-Policy.
// Чистая функция: одинаковый cfg всегда даёт одинаковую строку, порядок директив фиксирован.
func BuildCSP(cfg CSPConfig) string {
	return buildPolicy(cfg).String()
}

// BuildCSPReportOnly — та же политика для Content-Security-Policy-Report-Only.
func BuildCSPReportOnly(cfg CSPConfig) string {
	return BuildCSP(cfg) + " report-uri " + ReportURI
}

func buildPolicy(cfg CSPConfig) policy {
	h := cfg.Hosts.withDefaults()

	script := []string{"'self'", "'strict-dynamic'", h.Analytics}
	if cfg.Nonce != "" {
		script = append(script, nonceSource(cfg.Nonce))
	}
	if cfg.IsDevelopment {
		script = append(script, "'unsafe-eval'")
	}
	if cfg.IsAdmin {
		script = append(script, "'unsafe-inline'", "'unsafe-eval'")
	}

	style := []string{"'self'", h.Fonts, "'unsafe-inline'"}
	if cfg.Nonce != "" {
		style = append(style, nonceSource(cfg.Nonce))
	}

	connect := []string{"'self'"}
	if h.OwnDomain != "" {
		connect = append(connect, "https://*."+h.OwnDomain)
	}
	connect = append(connect, h.Analytics)
	if cfg.IsDevelopment {
		connect = append(connect, "ws:", "wss:")
	}

	var p policy
	p.add("default-src", "'self'")
	p.add("script-src", script...)
	p.add("style-src", style...)
	p.add("font-src", "'self'", h.FontsStatic, "data:")
	p.add("img-src", "'self'", "data:", "blob:", "https:")
	p.add("connect-src", connect...)
	p.add("media-src", "'self'", "blob:")
	p.add("object-src", "'none'")
	p.add("frame-src", "'none'")
	p.add("frame-ancestors", "'none'")
	p.add("base-uri", "'self'")
	p.add("form-action", "'self'")
	if !cfg.IsDevelopment {
		p.add("upgrade-insecure-requests")
	}
	p.add("block-all-mixed-content")
	p.add("worker-src", "'self'", "blob:")
	p.add("manifest-src", "'self'")
	return p
}

func nonceSource(nonce string) string {
	return "'nonce-" + nonce + "'"
}

func (h CSPHosts) withDefaults() CSPHosts {
	if h.Analytics == "" {
		h.Analytics = DefaultAnalyticsHost
	}
	if h.Fonts == "" {
		h.Fonts = DefaultFontsHost
	}
	if h.FontsStatic == "" {
		h.FontsStatic = DefaultFontsStatic
	}
	return h
}

// dedupe убирает повторы, сохраняя порядок (dev + admin дают 'unsafe-eval' дважды).
func dedupe(sources []string) []string {
	if len(sources) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(sources))
	out := make([]string, 0, len(sources))
	for _, s := range sources {
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
