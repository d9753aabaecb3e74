package handler

// csp_report.go
import (
	"encoding/json"
	"io"
	"net/http"

	"linksite/internal/core"
)

const maxReportBytes = 64 << 10

// legacyReport — application/csp-report (report-uri)
type legacyReport struct {
	Body struct {
		DocumentURI        string `json:"document-uri"`
		BlockedURI         string `json:"blocked-uri"`
		ViolatedDirective  string `json:"violated-directive"`
		EffectiveDirective string `json:"effective-directive"`
		Disposition        string `json:"disposition"`
	} `json:"csp-report"`
}

// reportingAPIReport — application/reports+json (Reporting API, массив отчётов)
type reportingAPIReport struct {
	Type string `json:"type"`
	Body struct {
		DocumentURL        string `json:"documentURL"`
		BlockedURL         string `json:"blockedURL"`
		EffectiveDirective string `json:"effectiveDirective"`
		Disposition        string `json:"disposition"`
	} `json:"body"`
}

// Violation — нормализованное нарушение CSP
type Violation struct {
	Document    string
	Blocked     string
	Directive   string
	Disposition string
}

// CSPReport — POST /api/csp-report: логирует нарушения, отвечает 204 (OWASP A09).
// onViolation вызывается для каждого нарушения (счётчик метрик).
func CSPReport(onViolation func(directive string)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxReportBytes))
		if err != nil {
			core.Fail(w, r, core.BadRequest("отчёт слишком большой", err))
			return
		}

		violations, err := ParseCSPReport(body)
		if err != nil {
			core.Fail(w, r, core.BadRequest("некорректный CSP-отчёт", err))
			return
		}

		for _, v := range violations {
			core.LogError("csp violation", map[string]interface{}{
				"document":    v.Document,
				"blocked":     v.Blocked,
				"directive":   v.Directive,
				"disposition": v.Disposition,
				"user_agent":  r.UserAgent(),
			})
			if onViolation != nil {
				onViolation(v.Directive)
			}
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// ParseCSPReport понимает оба формата: объект {"csp-report": ...} и массив Reporting API.
func ParseCSPReport(body []byte) ([]Violation, error) {
	var batch []reportingAPIReport
	if err := json.Unmarshal(body, &batch); err == nil {
		out := make([]Violation, 0, len(batch))
		for _, rep := range batch {
			if rep.Type != "csp-violation" {
				continue
			}
			out = append(out, Violation{
				Document:    rep.Body.DocumentURL,
				Blocked:     rep.Body.BlockedURL,
				Directive:   rep.Body.EffectiveDirective,
				Disposition: rep.Body.Disposition,
			})
		}
		return out, nil
	}

	var legacy legacyReport
	if err := json.Unmarshal(body, &legacy); err != nil {
		return nil, err
	}
	directive := legacy.Body.EffectiveDirective
	if directive == "" {
		directive = legacy.Body.ViolatedDirective
	}
	return []Violation{{
		Document:    legacy.Body.DocumentURI,
		Blocked:     legacy.Body.BlockedURI,
		Directive:   directive,
		Disposition: legacy.Body.Disposition,
	}}, nil
}
