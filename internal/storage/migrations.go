package storage

import (
	"context"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"linksite/internal/core"

	"github.com/jmoiron/sqlx"
)

// Migrations управляет версиями БД
type Migrations struct {
	db  *sqlx.DB
	src fs.FS
}

// NewMigrations создаёт мигратор; src — встроенные *.sql (пакет migrations)
func NewMigrations(db *sqlx.DB, src fs.FS) *Migrations {
	return &Migrations{db: db, src: src}
}

// RunMigrations выполняет все ещё не применённые миграции и возвращает их количество
func (m *Migrations) RunMigrations(ctx context.Context) (int, error) {
	if err := m.createMigrationsTable(ctx); err != nil {
		return 0, err
	}

	files, err := fs.Glob(m.src, "*.sql")
	if err != nil {
		return 0, fmt.Errorf("ошибка поиска миграций: %w", err)
	}
	// Сортирует по номеру (001, 002...)
	sort.Strings(files)

	applied := 0
	for _, file := range files {
		ok, err := m.runMigration(ctx, file)
		if err != nil {
			return applied, fmt.Errorf("ошибка миграции %s: %w", file, err)
		}
		if ok {
			applied++
		}
	}

	core.LogInfo("Миграции завершены успешно", map[string]interface{}{
		"files":   len(files),
		"applied": applied,
	})
	return applied, nil
}

// createMigrationsTable создаёт таблицу для отслеживания миграций
func (m *Migrations) createMigrationsTable(ctx context.Context) error {
	const q = `
		CREATE TABLE IF NOT EXISTS migrations (
			id INT AUTO_INCREMENT PRIMARY KEY,
			name VARCHAR(255) NOT NULL UNIQUE,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`

	_, err := m.db.ExecContext(ctx, q)
	return err
}

// runMigration выполняет одну миграцию; false — уже была применена
func (m *Migrations) runMigration(ctx context.Context, name string) (bool, error) {
	var count int
	if err := m.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM migrations WHERE name = ?", name); err != nil {
		return false, fmt.Errorf("ошибка проверки миграции: %w", err)
	}
	if count > 0 {
		return false, nil
	}

	sqlBytes, err := fs.ReadFile(m.src, name)
	if err != nil {
		return false, fmt.Errorf("ошибка чтения файла: %w", err)
	}

	// multiStatements выключен в DSN — выполняем по одному выражению.
	// DDL в MySQL коммитится неявно, транзакция защищает только запись в migrations.
	tx, err := m.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback() }()

	for _, stmt := range SplitStatements(string(sqlBytes)) {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return false, fmt.Errorf("ошибка выполнения SQL: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx, "INSERT INTO migrations (name) VALUES (?)", name); err != nil {
		return false, fmt.Errorf("ошибка записи миграции: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("ошибка коммита: %w", err)
	}

	core.LogInfo("Миграция применена", map[string]interface{}{"file": name})
	return true, nil
}

// SplitStatements делит файл по ';' в конце строки и отбрасывает пустые куски и комментарии "--".
func SplitStatements(src string) []string {
	var out []string
	var cur strings.Builder
	for _, line := range strings.Split(src, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "--") {
			continue
		}
		cur.WriteString(line)
		cur.WriteByte('\n')
		if strings.HasSuffix(trimmed, ";") {
			stmt := strings.TrimSuffix(strings.TrimSpace(cur.String()), ";")
			if stmt != "" {
				out = append(out, stmt)
			}
			cur.Reset()
		}
	}
	if rest := strings.TrimSpace(cur.String()); rest != "" {
		out = append(out, rest)
	}
	return out
}
