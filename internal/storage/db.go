package storage

import (
	"context"
	"errors"
	"strings"
	"time"

	"linksite/internal/core"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
)

// ErrNotFound — запись не найдена (оборачивает sql.ErrNoRows в репозиториях).
var ErrNotFound = errors.New("not found")

// connectAttempts — MySQL в docker-compose поднимается дольше приложения
const connectAttempts = 5

// NewDB создаёт пул подключений к MySQL с продакшн-настройками
// Инициализирует connection pool и проверяет подключение (с ретраями)
func NewDB(ctx context.Context, cfg core.DBConfig) (*sqlx.DB, error) {
	dsn := DSN(cfg)

	var db *sqlx.DB
	var err error
	for attempt := 1; attempt <= connectAttempts; attempt++ {
		db, err = sqlx.ConnectContext(ctx, "mysql", dsn)
		if err == nil {
			break
		}
		core.LogError("ошибка подключения к MySQL", map[string]interface{}{
			"error":   err.Error(),
			"dsn":     SanitizeDSN(dsn),
			"attempt": attempt,
		})
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Duration(attempt) * time.Second):
		}
	}
	if err != nil {
		return nil, err
	}

	// Настройка connection pool для продакшена
	db.SetMaxOpenConns(cfg.MaxOpen)
	db.SetMaxIdleConns(cfg.MaxIdle)
	db.SetConnMaxLifetime(cfg.Lifetime)

	core.LogInfo("MySQL подключение успешно", map[string]interface{}{
		"host":     cfg.Host,
		"database": cfg.Name,
		"max_open": cfg.MaxOpen,
		"max_idle": cfg.MaxIdle,
	})
	return db, nil
}

// Close корректно закрывает пул подключений
// Вызывается при graceful shutdown приложения
func Close(db *sqlx.DB) error {
	if db == nil {
		return nil
	}

	if err := db.Close(); err != nil {
		core.LogError("ошибка закрытия MySQL пула", map[string]interface{}{
			"error": err.Error(),
		})
		return err
	}

	core.LogInfo("MySQL пул закрыт", nil)
	return nil
}

// DSN формирует строку подключения MySQL через mysql.Config (экранирование пароля делает драйвер)
func DSN(cfg core.DBConfig) string {
	mc := mysql.NewConfig()
	mc.User = cfg.User
	mc.Passwd = cfg.Password
	mc.Net = "tcp"
	mc.Addr = cfg.Host
	mc.DBName = cfg.Name
	mc.ParseTime = true                // Парсинг времени
	mc.Timeout = 5 * time.Second       // Таймаут подключения
	mc.ReadTimeout = 5 * time.Second   // Таймаут чтения
	mc.WriteTimeout = 10 * time.Second // Таймаут записи
	mc.InterpolateParams = true        // Без лишнего round-trip на prepare
	mc.MultiStatements = false         // Безопасность SQL
	mc.Loc = time.UTC                  // Время в БД — UTC

	// Unicode + эмодзи
	mc.Params = map[string]string{"charset": "utf8mb4"}
	return mc.FormatDSN()
}

// SanitizeDSN удаляет пароль из DSN для логирования
func SanitizeDSN(dsn string) string {
	at := strings.LastIndex(dsn, "@")
	if at < 0 {
		return dsn
	}
	if colon := strings.Index(dsn[:at], ":"); colon >= 0 {
		return dsn[:colon] + ":***" + dsn[at:]
	}
	return dsn
}
