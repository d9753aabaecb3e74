package handler

// health.go
import (
	"context"
	"net/http"
	"runtime"
	"time"

	"linksite/internal/core"
)

// Устанавливаются через ldflags при сборке
var (
	AppVersion   = "dev"
	GoVersion    = runtime.Version()
	appStartTime = time.Now()
)

const readyTimeout = 2 * time.Second

// Health — liveness: процесс жив
func Health(w http.ResponseWriter, r *http.Request) {
	core.JSON(w, http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"version": AppVersion,
		"go":      GoVersion,
		"uptime":  time.Since(appStartTime).Truncate(time.Second).String(),
	})
}

// Ready — readiness: БД отвечает. Без БД (nil) считаем готовым.
func Ready(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
			defer cancel()
			if err := db.PingContext(ctx); err != nil {
				core.LogError("readyz: БД недоступна", map[string]interface{}{"error": err.Error()})
				core.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "db": "down"})
				return
			}
		}
		core.JSON(w, http.StatusOK, map[string]string{"status": "ready", "db": "up"})
	}
}
