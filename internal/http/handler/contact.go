package handler

// contact.go
import (
	"context"
	"net"
	"net/http"
	"strings"
	"time"

	"linksite/internal/core"
	"linksite/internal/notify"
	"linksite/internal/seo"
	"linksite/internal/storage"
	"linksite/internal/view"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
)

// Budgets — варианты бюджета в форме (значение = подпись).
var Budgets = []string{"<500", "500-1000", "1000-5000", "5000+"}

type ContactForm struct {
	Name    string `validate:"required,min=2,max=100"`
	Email   string `validate:"required,email,max=254"`
	Company string `validate:"max=100"`
	Website string `validate:"omitempty,url,max=255"`
	Budget  string `validate:"required,oneof=<500 500-1000 1000-5000 5000+"`
	Message string `validate:"required,max=5000"`
}

type ContactView struct {
	Form    ContactForm
	Errors  map[string]string
	OK      bool
	Budgets []string
}

const (
	maxFormBytes  = 1 << 20 // 1MB (OWASP A05)
	notifyTimeout = 30 * time.Second
)

// Валидатор и санитайзер (OWASP A03).
var (
	validate  = validator.New()
	sanitizer = bluemonday.StrictPolicy()
)

func contactMeta(sb *seo.Builder) seo.Meta {
	return sb.Page("Оставить заявку", "Расскажите о проекте: подберём площадки и пришлём предложение.", "/contact")
}

// ContactIndex рендерит форму (GET).
func ContactIndex(tpl *view.Templates, sb *seo.Builder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tpl.Render(w, r, http.StatusOK, "contact", view.Page{
			Meta: contactMeta(sb),
			Data: ContactView{
				Form:    ContactForm{Budget: Budgets[1]},
				Errors:  map[string]string{},
				OK:      r.URL.Query().Get("ok") == "1",
				Budgets: Budgets,
			},
		})
	}
}

// ContactSubmit обрабатывает отправку формы (POST): валидация, запись в БД, письмо, PRG-редирект.
func ContactSubmit(tpl *view.Templates, sb *seo.Builder, store InquiryStore, n notify.Notifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
		if err := r.ParseForm(); err != nil {
			core.Fail(w, r, core.BadRequest("некорректная форма", err))
			return
		}

		f := ContactForm{
			Name:    clean(r.PostForm.Get("name")),
			Email:   clean(r.PostForm.Get("email")),
			Company: clean(r.PostForm.Get("company")),
			Website: clean(r.PostForm.Get("website")),
			Budget:  strings.TrimSpace(r.PostForm.Get("budget")),
			Message: clean(r.PostForm.Get("message")),
		}

		if errs := validateContact(f); len(errs) > 0 {
			core.LogInfo("contact: ошибки валидации", map[string]interface{}{"errors": errs})
			tpl.Render(w, r, http.StatusUnprocessableEntity, "contact", view.Page{
				Meta: contactMeta(sb),
				Data: ContactView{Form: f, Errors: errs, Budgets: Budgets},
			})
			return
		}

		in := storage.Inquiry{
			Name:      f.Name,
			Email:     f.Email,
			Company:   f.Company,
			Website:   f.Website,
			Budget:    f.Budget,
			Message:   f.Message,
			IP:        clientIP(r),
			UserAgent: truncate(r.UserAgent(), 255),
		}
		if err := store.Create(r.Context(), &in); err != nil {
			core.Fail(w, r, core.Internal("не удалось сохранить заявку", err))
			return
		}
		core.LogInfo("contact: новая заявка", map[string]interface{}{"inquiry": in.ID, "budget": in.Budget})

		// Письмо не должно задерживать ответ; заявка уже сохранена
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
			defer cancel()
			if err := n.InquiryReceived(ctx, in); err != nil {
				core.LogError("contact: уведомление", map[string]interface{}{"inquiry": in.ID, "error": err.Error()})
			}
		}()

		http.Redirect(w, r, "/contact?ok=1", http.StatusSeeOther)
	}
}

func validateContact(f ContactForm) map[string]string {
	errs := map[string]string{}
	err := validate.Struct(f)
	if err == nil {
		return errs
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		errs["form"] = "Ошибка валидации"
		core.LogError("Unexpected validation error", map[string]interface{}{"error": err.Error()})
		return errs
	}
	for _, e := range verrs {
		switch e.Field() {
		case "Name":
			switch e.Tag() {
			case "required":
				errs["name"] = "Укажите имя"
			case "min":
				errs["name"] = "Имя должно быть не короче 2 символов"
			default:
				errs["name"] = "Слишком длинное имя (макс. 100)"
			}
		case "Email":
			if e.Tag() == "required" {
				errs["email"] = "Укажите email"
			} else {
				errs["email"] = "Введите корректный email"
			}
		case "Company":
			errs["company"] = "Слишком длинное название (макс. 100)"
		case "Website":
			errs["website"] = "Введите адрес сайта вида https://example.com"
		case "Budget":
			errs["budget"] = "Выберите бюджет из списка"
		case "Message":
			if e.Tag() == "required" {
				errs["message"] = "Напишите сообщение"
			} else {
				errs["message"] = "Слишком длинное сообщение (макс. 5000)"
			}
		}
	}
	return errs
}

func clean(s string) string {
	return strings.TrimSpace(sanitizer.Sanitize(strings.TrimSpace(s)))
}

// clientIP — RemoteAddr уже переписан RealIP, если запрос пришёл через доверенный прокси
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
