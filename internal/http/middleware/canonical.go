package middleware

// canonical.go
import (
	"net/http"
	"net/url"
	"strings"
	"unicode/utf8"
)

// CanonicalPath приводит путь к каноническому виду и сообщает, нужен ли редирект.
// Правила применяются строго по порядку: хвостовой слэш, повторные слэши, регистр.
// Пути под adminPrefix не переводятся в нижний регистр (маршрутизация CMS чувствительна к регистру).
func CanonicalPath(p, adminPrefix string) (string, bool) {
	if p == "" || p[0] != '/' || !utf8.ValidString(p) {
		// "*" у OPTIONS, невалидный UTF-8 (/caf%E9) и прочее нестандартное — не трогаем:
		// ToLower заменил бы такие байты на U+FFFD и увёл на другой ресурс
		return p, false
	}
	changed := false

	if p != "/" && strings.HasSuffix(p, "/") {
		p = p[:len(p)-1]
		changed = true
	}

	if strings.Contains(p, "//") {
		p = collapseSlashes(p)
		changed = true
	}
	// "/a//" -> "/a/" -> "/a": хвостовой слэш добиваем за тот же редирект
	if p != "/" && strings.HasSuffix(p, "/") {
		p = p[:len(p)-1]
		changed = true
	}

	if !IsAdminPath(p, adminPrefix) {
		if lower := strings.ToLower(p); lower != p {
			p = lower
			changed = true
		}
	}
	return p, changed
}

// IsAdminPath — путь относится к админ-панели CMS.
func IsAdminPath(p, adminPrefix string) bool {
	return adminPrefix != "" && strings.HasPrefix(p, adminPrefix)
}

func collapseSlashes(p string) string {
	var b strings.Builder
	b.Grow(len(p))
	prevSlash := false
	for i := 0; i < len(p); i++ {
		c := p[i]
		if c == '/' {
			if prevSlash {
				continue
			}
			prevSlash = true
		} else {
			prevSlash = false
		}
		b.WriteByte(c)
	}
	return b.String()
}

// redirectTarget — scheme://host + путь + исходная query-строка без изменений.
func redirectTarget(r *http.Request, p string) string {
	u := url.URL{
		Path:     p,
		RawQuery: r.URL.RawQuery,
	}
	host := r.Host
	if host == "" {
		host = r.URL.Host
	}
	if host != "" {
		u.Host = host
		u.Scheme = requestScheme(r)
	}
	return u.String()
}

func requestScheme(r *http.Request) string {
	if r.URL.Scheme != "" {
		return r.URL.Scheme
	}
	if r.TLS != nil {
		return "https"
	}
	return "http"
}
