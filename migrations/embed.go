// Package migrations встраивает SQL-миграции MySQL.
package migrations

import "embed"

// FS — файлы NNN_name.sql, применяются по возрастанию имени.
//
//go:embed *.sql
var FS embed.FS
