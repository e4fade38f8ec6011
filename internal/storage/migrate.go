package storage

import (
	"database/sql"
	"embed"
	"fmt"
	"io"
	"log"
	"sync"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// goose keeps its configuration in package globals.
var gooseMu sync.Mutex

func MigrateUp(db *sql.DB) error {
	return withGoose(func() error {
		if err := goose.Up(db, "migrations"); err != nil {
			return fmt.Errorf("apply migrations: %w", err)
		}
		return nil
	})
}

func MigrateDown(db *sql.DB) error {
	return withGoose(func() error {
		if err := goose.Reset(db, "migrations"); err != nil {
			return fmt.Errorf("revert migrations: %w", err)
		}
		return nil
	})
}

func withGoose(fn func() error) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetLogger(log.New(io.Discard, "", 0))
	goose.SetBaseFS(migrationFiles)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("set migration dialect: %w", err)
	}
	return fn()
}
