package goosehelper

import (
	"database/sql"

	"github.com/labstack/gommon/log"
	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
)

// MigrateUp применяет миграции схемы из директории migrationsDir.
// При ошибке миграции продолжать работу нельзя, процесс завершается
func MigrateUp(db *sql.DB, migrationsDir string) {
	if err := goose.Up(db, migrationsDir); err != nil {
		log.Fatalf("Ошибка применения миграций: %v", err)
	}
}
