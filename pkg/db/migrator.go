package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/pressly/goose/v3"
)

// Migrate applies the embedded goose migrations found at the root of migrations.
// conn is not closed; pass the handle returned by OpenDB.
func Migrate(ctx context.Context, conn *sql.DB, migrations fs.FS, migrationTable string, log *slog.Logger) error {
	goose.SetBaseFS(migrations)
	goose.SetLogger(&gooseLoggerAdapter{log})
	goose.SetTableName(migrationTable)

	if err := goose.SetDialect("postgres"); err != nil {
		return errors.Join(ErrSetDialect, err)
	}

	if err := goose.UpContext(ctx, conn, "."); err != nil {
		return errors.Join(ErrApplyMigrations, err)
	}

	return nil
}

type gooseLoggerAdapter struct {
	log *slog.Logger
}

func (g *gooseLoggerAdapter) Printf(format string, args ...any) {
	g.log.Info(fmt.Sprintf(format, args...))
}

func (g *gooseLoggerAdapter) Fatalf(format string, args ...any) {
	// goose returns the error as well; never exit from here.
	g.log.Error(fmt.Sprintf(format, args...))
}
