package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"linksite/internal/core"
)

// Serve запускает сервер и блокируется до отмены ctx (SIGINT/SIGTERM), затем делает graceful shutdown.
func Serve(ctx context.Context, cfg core.Config, handler http.Handler) error {
	srv := core.Server(cfg, handler)

	errCh := make(chan error, 1)
	go func() {
		core.LogInfo("http: сервер запущен", map[string]interface{}{"addr": cfg.Addr, "env": cfg.Env, "app": cfg.AppName})
		var err error
		if cfg.Secure {
			err = srv.ListenAndServeTLS(cfg.CertFile, cfg.KeyFile)
		} else {
			err = srv.ListenAndServe()
		}
		if !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	core.LogInfo("http: начат процесс завершения", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	core.LogInfo("http: завершение выполнено", nil)
	return nil
}

// StartLogRotation — новый файл логов раз в сутки
func StartLogRotation(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := core.InitDailyLog(); err != nil {
					core.LogError("ротация логов", map[string]interface{}{"error": err.Error()})
				}
			}
		}
	}()
}
