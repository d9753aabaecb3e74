package main

//main.go
import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"linksite/internal/app"
	"linksite/internal/core"
	"linksite/internal/http/middleware"
	"linksite/internal/security"
	"linksite/internal/storage"
	"linksite/migrations"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:           "linksite",
		Short:         "Сайт линкбилдинга: страницы, блог, каталог площадок, заявки",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runServe,
	}

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Запустить HTTP-сервер (по умолчанию)",
		RunE:  runServe,
	})
	root.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Применить миграции БД и выйти",
		RunE:  runMigrate,
	})
	root.AddCommand(cspCmd())

	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	// 1) Конфиг
	cfg, err := core.Load()
	if err != nil {
		return fmt.Errorf("конфигурация: %w", err)
	}

	// 2) Без криптостойкого ГСЧ сайт не может выдавать nonce — не стартуем
	if _, err := security.GenerateNonce(); err != nil {
		return fmt.Errorf("crypto/rand недоступен: %w", err)
	}

	// 3) Логи
	if err := core.InitDailyLog(); err != nil {
		return fmt.Errorf("логи: %w", err)
	}
	defer core.Close()
	core.LogInfo("старт", map[string]interface{}{"env": cfg.Env, "secure": cfg.Secure, "addr": cfg.Addr})

	// 4) Перехват сигналов
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 5) БД (с ретраями внутри storage.NewDB) и миграции
	db, err := storage.NewDB(ctx, cfg.DB)
	if err != nil {
		return fmt.Errorf("MySQL: %w", err)
	}
	defer func() { _ = storage.Close(db) }()

	if _, err := storage.NewMigrations(db, migrations.FS).RunMigrations(ctx); err != nil {
		return err
	}

	// 6) Ежедневная ротация логов
	app.StartLogRotation(ctx)

	// 7) Сборка приложения и запуск
	handler, err := app.New(cfg, db)
	if err != nil {
		return err
	}
	return app.Serve(ctx, cfg, handler)
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, err := core.Load()
	if err != nil {
		return fmt.Errorf("конфигурация: %w", err)
	}
	db, err := storage.NewDB(cmd.Context(), cfg.DB)
	if err != nil {
		return fmt.Errorf("MySQL: %w", err)
	}
	defer func() { _ = storage.Close(db) }()

	applied, err := storage.NewMigrations(db, migrations.FS).RunMigrations(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "применено миграций: %d\n", applied)
	return nil
}

// cspCmd печатает политику для заданных флагов — удобно сравнивать изменения политики в ревью.
func cspCmd() *cobra.Command {
	var (
		dev, admin, reportOnly bool
		nonce                  string
	)
	cmd := &cobra.Command{
		Use:   "csp",
		Short: "Показать Content-Security-Policy для режима",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := core.Load()
			if err != nil {
				return fmt.Errorf("конфигурация: %w", err)
			}
			c := security.CSPConfig{
				Nonce:         nonce,
				IsDevelopment: dev,
				IsAdmin:       admin,
				Hosts:         middleware.SecurityOptionsFrom(cfg).Hosts,
			}
			policy := security.BuildCSP(c)
			if reportOnly {
				policy = security.BuildCSPReportOnly(c)
			}
			fmt.Fprintln(cmd.OutOrStdout(), policy)
			return nil
		},
	}
	cmd.Flags().BoolVar(&dev, "dev", false, "режим разработки ('unsafe-eval', ws:, без upgrade-insecure-requests)")
	cmd.Flags().BoolVar(&admin, "admin", false, "политика для админ-панели CMS")
	cmd.Flags().BoolVar(&reportOnly, "report-only", false, "вариант с report-uri")
	cmd.Flags().StringVar(&nonce, "nonce", "", "nonce для script-src/style-src")
	return cmd
}
