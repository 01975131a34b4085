package postgres

import (
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
	"gorm.io/gorm"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// Migrate applies every pending schema migration.
func Migrate(db *gorm.DB) error {
	return runMigrations(db, goose.Up)
}

// MigrateDown rolls back the most recent migration.
func MigrateDown(db *gorm.DB) error {
	return runMigrations(db, goose.Down)
}

func runMigrations(db *gorm.DB, run func(*sql.DB, string, ...goose.OptionsFunc) error) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("getting sql handle: %w", err)
	}

	goose.SetBaseFS(embedMigrations)
	if err = goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("setting dialect: %w", err)
	}
	if err = run(sqlDB, "migrations"); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}
