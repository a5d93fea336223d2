// Package migrations embeds the goose schema migrations for every supported
// database driver and applies them.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/gophauth/internal/dbx"
	"github.com/pressly/goose/v3"
)

//go:embed postgres/*.sql sqlite/*.sql
var Migrations embed.FS

// goose keeps base FS and dialect in package state.
var mu sync.Mutex

// Up applies every pending migration for driver (dbx.DriverPostgres or
// dbx.DriverSQLite).
func Up(ctx context.Context, db *sql.DB, driver string) (err error) {
	dir, dialect, err := dialectFor(driver)
	if err != nil {
		return err
	}

	mu.Lock()
	defer mu.Unlock()

	defer func() {
		if p := recover(); p != nil {
			msg, ok := p.(fatalError)
			if !ok {
				panic(p)
			}
			err = fmt.Errorf("migrate %s: %s", driver, msg)
		}
	}()

	goose.SetLogger(gooseLogger{ctx: ctx, logger: logger.With("module", "migrations")})
	goose.SetBaseFS(Migrations)
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, dir); err != nil {
		return fmt.Errorf("migrate %s: %w", driver, err)
	}
	return nil
}

func dialectFor(driver string) (dir, dialect string, err error) {
	switch driver {
	case dbx.DriverPostgres:
		return "postgres", "pgx", nil
	case dbx.DriverSQLite:
		return "sqlite", "sqlite3", nil
	default:
		return "", "", fmt.Errorf("no migrations for driver %q", driver)
	}
}
