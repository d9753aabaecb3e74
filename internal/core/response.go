package core

// response.go
import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
)

// ProblemDetail — RFC 7807
type ProblemDetail struct {
	Type     string            `json:"type"`
	Title    string            `json:"title"`
	Status   int               `json:"status"`
	Detail   string            `json:"detail"`
	Instance string            `json:"instance"`
	Code     string            `json:"code"`
	Fields   map[string]string `json:"fields,omitempty"`
}

// JSON — отправка JSON с нужным статусом
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		LogError("Ошибка кодирования JSON", map[string]interface{}{"error": err.Error()})
	}
}

// Fail — ошибка с логированием в формате problem+json
func Fail(w http.ResponseWriter, r *http.Request, err error) {
	ae := From(err)
	if ae == nil {
		ae = Internal("внутренняя ошибка", nil)
	}

	reqID := middleware.GetReqID(r.Context())
	if reqID == "" {
		reqID = r.Header.Get("X-Request-ID")
		if reqID == "" {
			reqID = "n/a"
		}
	}

	path := ""
	if r.URL != nil {
		path = r.URL.Path
	}

	fields := map[string]interface{}{
		"request_id": reqID,
		"path":       path,
		"code":       ae.Code,
		"status":     ae.Status,
		"message":    ae.Message,
	}
	if len(ae.Fields) > 0 {
		fields["fields"] = ae.Fields
	}
	if ae.Err != nil {
		fields["error"] = ae.Err.Error()
	}
	LogError("Ошибка запроса", fields)

	problem := ProblemDetail{
		Type:     "/errors/" + ae.Code,
		Title:    http.StatusText(ae.Status),
		Status:   ae.Status,
		Detail:   ae.Message,
		Instance: path,
		Code:     ae.Code,
		Fields:   ae.Fields,
	}

	w.Header().Set("Content-Type", "application/problem+json; charset=utf-8")
	w.WriteHeader(ae.Status)
	_ = json.NewEncoder(w).Encode(problem)
}
