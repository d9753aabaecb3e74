package view

//view.go
import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"linksite/internal/core"
	"linksite/internal/seo"

	"github.com/gorilla/csrf"
	"github.com/microcosm-cc/bluemonday"
)

const layoutFile = "layouts/base.gohtml"

// Страницы: имя для Render -> файл в templates/pages
var pages = map[string]string{
	"home":      "pages/home.gohtml",
	"about":     "pages/about.gohtml",
	"services":  "pages/services.gohtml",
	"inventory": "pages/inventory.gohtml",
	"blog":      "pages/blog.gohtml",
	"post":      "pages/post.gohtml",
	"contact":   "pages/contact.gohtml",
	"notfound":  "pages/404.gohtml",
}

// Templates — layout + страница, распарсенные один раз при старте.
type Templates struct {
	templates map[string]*template.Template
	site      core.SiteConfig
}

// PageData — унифицированная структура для всех шаблонов (OWASP A03, A07).
type PageData struct {
	Title     string
	Meta      seo.Meta
	JSONLD    template.JS
	CSRFField template.HTML
	Nonce     string
	Site      core.SiteConfig
	Path      string
	Year      int
	Data      any
}

// Page — то, что передаёт хендлер; остальное Render берёт из запроса.
type Page struct {
	Meta   seo.Meta
	JSONLD template.JS
	Data   any
}

// bodyPolicy — HTML статей блога из CMS (OWASP A03)
var bodyPolicy = bluemonday.UGCPolicy()

var funcs = template.FuncMap{
	// safeBody — санитизированный HTML тела статьи
	"safeBody": func(s string) template.HTML {
		return template.HTML(bodyPolicy.Sanitize(s))
	},
	"date": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Format("02.01.2006")
	},
	"isoDate": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.UTC().Format(time.RFC3339)
	},
	// link — путь + готовая query-строка из url.Values.Encode (иначе html/template экранирует & и =)
	"link": func(path, query string) template.URL {
		if query == "" {
			return template.URL(path)
		}
		return template.URL(path + "?" + query)
	},
	"seq": func(n int) []int {
		out := make([]int, n)
		for i := range out {
			out[i] = i + 1
		}
		return out
	},
	"contains": func(list []string, s string) bool {
		for _, v := range list {
			if v == s {
				return true
			}
		}
		return false
	},
	"active": func(current, prefix string) bool {
		if prefix == "/" {
			return current == "/"
		}
		return current == prefix || strings.HasPrefix(current, prefix+"/")
	},
}

// New парсит шаблоны из fsys (web.Templates в проде, fstest.MapFS в тестах) (OWASP A05).
func New(fsys fs.FS, site core.SiteConfig) (*Templates, error) {
	layoutTpl, err := template.New("layout").Funcs(funcs).ParseFS(fsys, layoutFile, "partials/*.gohtml")
	if err != nil {
		return nil, fmt.Errorf("ошибка парсинга layout: %w", err)
	}

	t := &Templates{templates: make(map[string]*template.Template, len(pages)), site: site}
	for name, pagePath := range pages {
		// Клон — чтобы блоки одной страницы не перетирали другую
		tpl := template.Must(layoutTpl.Clone())
		if _, err := tpl.ParseFS(fsys, pagePath); err != nil {
			return nil, fmt.Errorf("ошибка парсинга шаблона %q: %w", name, err)
		}
		if tpl.Lookup("content") == nil {
			return nil, fmt.Errorf("в шаблонах отсутствует define \"content\" для страницы %s", name)
		}
		t.templates[name] = tpl
	}
	return t, nil
}

// Render рендерит страницу в буфер и только потом пишет статус: при ошибке шаблона клиент получает 500, а не половину HTML (OWASP A09).
func (t *Templates) Render(w http.ResponseWriter, r *http.Request, status int, name string, p Page) {
	tpl, ok := t.templates[name]
	if !ok {
		core.Fail(w, r, core.Internal("template not found: "+name, nil))
		return
	}

	nonce := core.NonceFrom(r.Context())
	if nonce == "" {
		// Без nonce CSP заблокирует inline-скрипты; страница всё равно отдаётся
		core.LogError("CSP nonce не найден в контексте запроса", map[string]interface{}{"path": r.URL.Path})
	}

	data := PageData{
		Title:     p.Meta.Title,
		Meta:      p.Meta,
		JSONLD:    p.JSONLD,
		CSRFField: csrf.TemplateField(r),
		Nonce:     nonce,
		Site:      t.site,
		Path:      r.URL.Path,
		Year:      time.Now().Year(),
		Data:      p.Data,
	}

	var buf bytes.Buffer
	if err := tpl.ExecuteTemplate(&buf, "base", data); err != nil {
		core.LogError("Template rendering failed", map[string]interface{}{
			"template": name,
			"error":    err.Error(),
		})
		core.Fail(w, r, core.Internal("template error", err))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
