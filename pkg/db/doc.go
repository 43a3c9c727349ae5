// Package db opens the PostgreSQL pool behind pionia's CRUD executors.
//
// [Connect] builds a [github.com/jackc/pgx/v5/pgxpool] pool from [Config], retrying
// while the database comes up. [OpenDB] exposes the pool through database/sql, which is
// what [github.com/dmitrymomot/pionia/pkg/porm] and the goose migrator consume.
//
//	pool, err := db.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	conn := db.OpenDB(pool)
//	if err := db.Migrate(ctx, conn, migrations, cfg.MigrationsTable, logger); err != nil {
//		return err
//	}
//	exec := porm.New(conn)
//
// [Healthcheck] and [Shutdown] plug into pionia.WithHealthChecks and pionia.WithShutdownHook.
// [WithTx] commits when fn returns nil and rolls back on error or panic.
package db
