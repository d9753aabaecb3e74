// common.go
package middleware

import (
	"linksite/internal/core"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// UseCommon подключает базовые middleware для всего приложения.
// Security идёт последним: к этому моменту схема/хост уже восстановлены TrustedProxy.
func UseCommon(r *chi.Mux, cfg core.Config, sec SecurityOptions) {
	// Уникальный Request ID — связывает логи и problem+json
	r.Use(middleware.RequestID)

	if len(cfg.TrustedProxies) > 0 {
		// Сначала проверка прокси по RemoteAddr, потом RealIP его перезапишет
		r.Use(TrustedProxy(cfg.TrustedProxies))
		r.Use(middleware.RealIP)
	}

	r.Use(core.RequestLogger)
	r.Use(WithMetrics)
	r.Use(middleware.Recoverer)

	if cfg.RequestTimeout > 0 {
		r.Use(middleware.Timeout(cfg.RequestTimeout))
	}
	r.Use(middleware.Compress(5))

	// Канонический URL + CSP/nonce + заголовки безопасности
	r.Use(Security(sec))
}
