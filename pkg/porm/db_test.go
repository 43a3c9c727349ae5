package porm_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/pionia/pkg/keyed"
	"github.com/dmitrymomot/pionia/pkg/porm"
)

func newMock(t *testing.T) (*porm.DB, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, mock.ExpectationsWereMet())
		_ = conn.Close()
	})
	return porm.New(conn), mock
}

func TestDBSelect(t *testing.T) {
	t.Parallel()

	t.Run("plain table", func(t *testing.T) {
		t.Parallel()
		db, mock := newMock(t)

		mock.ExpectQuery(`SELECT * FROM "articles" LIMIT 10`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "title"}).
				AddRow(int64(1), "first").
				AddRow(int64(2), []byte("second")))

		rows, err := db.Select(context.Background(), porm.Query{Table: "articles", Limit: 10})
		require.NoError(t, err)
		require.Len(t, rows, 2)
		require.Equal(t, []string{"id", "title"}, rows[0].Keys())
		require.Equal(t, int64(1), rows[0].Value("id"))
		require.Equal(t, "second", rows[1].Value("title"))
	})

	t.Run("joins qualify columns and filters", func(t *testing.T) {
		t.Parallel()
		db, mock := newMock(t)

		mock.ExpectQuery(`SELECT "articles"."id" AS "id", "articles"."title" AS "headline", "users"."name" AS "author" ` +
			`FROM "articles" LEFT JOIN "users" ON "articles"."author_id" = "users"."id" ` +
			`WHERE "articles"."id" = $1 LIMIT 10 OFFSET 5`).
			WithArgs(int64(7)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "headline", "author"}).AddRow(int64(7), "x", "ann"))

		rows, err := db.Select(context.Background(), porm.Query{
			Table:   "articles",
			Columns: porm.NormalizeColumns("articles", []string{"id", "title", "title(headline)", "users.name(author)"}),
			Joins: []porm.Join{{
				Table: "users",
				Type:  porm.LeftJoin,
				On:    map[string]string{"author_id": "id"},
			}},
			Where:  map[string]any{"id": int64(7)},
			Limit:  10,
			Offset: 5,
		})
		require.NoError(t, err)
		require.Len(t, rows, 1)
		require.Equal(t, "ann", rows[0].Value("author"))
	})

	t.Run("nil filter renders IS NULL", func(t *testing.T) {
		t.Parallel()
		db, mock := newMock(t)

		mock.ExpectQuery(`SELECT * FROM "articles" WHERE "deleted_at" IS NULL AND "status" = $1`).
			WithArgs("published").
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		rows, err := db.Select(context.Background(), porm.Query{
			Table: "articles",
			Where: map[string]any{"status": "published", "deleted_at": nil},
		})
		require.NoError(t, err)
		require.Empty(t, rows)
	})

	t.Run("rejects unsafe identifiers", func(t *testing.T) {
		t.Parallel()
		db, _ := newMock(t)

		_, err := db.Select(context.Background(), porm.Query{Table: `articles"; DROP TABLE users; --`})
		require.ErrorIs(t, err, porm.ErrInvalidIdentifier)
	})

	t.Run("driver failure", func(t *testing.T) {
		t.Parallel()
		db, mock := newMock(t)

		mock.ExpectQuery(`SELECT * FROM "articles"`).WillReturnError(errors.New("connection reset"))

		_, err := db.Select(context.Background(), porm.Query{Table: "articles"})
		require.ErrorIs(t, err, porm.ErrQueryFailed)
	})
}

func TestDBCountAndRandom(t *testing.T) {
	t.Parallel()

	t.Run("count ignores page window", func(t *testing.T) {
		t.Parallel()
		db, mock := newMock(t)

		mock.ExpectQuery(`SELECT COUNT(*) FROM "articles"`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(42)))

		n, err := db.Count(context.Background(), porm.Query{Table: "articles", Limit: 5, Offset: 10})
		require.NoError(t, err)
		require.Equal(t, int64(42), n)
	})

	t.Run("random", func(t *testing.T) {
		t.Parallel()
		db, mock := newMock(t)

		mock.ExpectQuery(`SELECT "id" FROM "articles" ORDER BY RANDOM() LIMIT 3`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(3)).AddRow(int64(1)))

		rows, err := db.Random(context.Background(), porm.Query{
			Table:   "articles",
			Columns: porm.NormalizeColumns("articles", []string{"id"}),
		}, 3)
		require.NoError(t, err)
		require.Len(t, rows, 2)
	})
}

func TestDBWrites(t *testing.T) {
	t.Parallel()

	t.Run("insert returns stored row", func(t *testing.T) {
		t.Parallel()
		db, mock := newMock(t)

		mock.ExpectQuery(`INSERT INTO "articles" ("title", "tags") VALUES ($1, $2) RETURNING *`).
			WithArgs("hello", `["a","b"]`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "title", "tags"}).AddRow(int64(9), "hello", `["a","b"]`))

		row, err := db.Insert(context.Background(), "articles", keyed.Of("title", "hello", "tags", []any{"a", "b"}))
		require.NoError(t, err)
		require.Equal(t, int64(9), row.Value("id"))
	})

	t.Run("insert without data", func(t *testing.T) {
		t.Parallel()
		db, _ := newMock(t)

		_, err := db.Insert(context.Background(), "articles", keyed.New())
		require.ErrorIs(t, err, porm.ErrEmptyData)
	})

	t.Run("update without match", func(t *testing.T) {
		t.Parallel()
		db, mock := newMock(t)

		mock.ExpectQuery(`UPDATE "articles" SET "title" = $1 WHERE "id" = $2 RETURNING *`).
			WithArgs("new", int64(5)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "title"}))

		_, err := db.Update(context.Background(), "articles", keyed.Of("title", "new"), map[string]any{"id": int64(5)})
		require.ErrorIs(t, err, porm.ErrNoRows)
	})

	t.Run("update and delete require a filter", func(t *testing.T) {
		t.Parallel()
		db, _ := newMock(t)

		_, err := db.Update(context.Background(), "articles", keyed.Of("title", "x"), nil)
		require.ErrorIs(t, err, porm.ErrUnsafeWrite)

		_, err = db.Delete(context.Background(), "articles", nil)
		require.ErrorIs(t, err, porm.ErrUnsafeWrite)
	})

	t.Run("delete reports affected rows", func(t *testing.T) {
		t.Parallel()
		db, mock := newMock(t)

		mock.ExpectExec(`DELETE FROM "articles" WHERE "id" = $1`).
			WithArgs(int64(5)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		n, err := db.Delete(context.Background(), "articles", map[string]any{"id": int64(5)})
		require.NoError(t, err)
		require.Equal(t, int64(1), n)
	})
}

func TestDBWithTx(t *testing.T) {
	t.Parallel()

	t.Run("commits on success", func(t *testing.T) {
		t.Parallel()
		db, mock := newMock(t)

		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM "articles" WHERE "id" = $1`).
			WithArgs(int64(1)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := db.WithTx(context.Background(), func(tx porm.Executor) error {
			_, err := tx.Delete(context.Background(), "articles", map[string]any{"id": int64(1)})
			return err
		})
		require.NoError(t, err)
	})

	t.Run("rolls back on error", func(t *testing.T) {
		t.Parallel()
		db, mock := newMock(t)

		mock.ExpectBegin()
		mock.ExpectRollback()

		boom := errors.New("boom")
		err := db.WithTx(context.Background(), func(porm.Executor) error {
			return boom
		})
		require.ErrorIs(t, err, boom)
		require.ErrorIs(t, err, porm.ErrTxFailed)
	})

	t.Run("failed commit is a transaction error", func(t *testing.T) {
		t.Parallel()
		db, mock := newMock(t)

		mock.ExpectBegin()
		mock.ExpectCommit().WillReturnError(sql.ErrTxDone)

		err := db.WithTx(context.Background(), func(porm.Executor) error { return nil })
		require.ErrorIs(t, err, porm.ErrTxFailed)
		require.ErrorIs(t, err, sql.ErrTxDone)
	})
}

func TestConnections(t *testing.T) {
	t.Parallel()

	db, _ := newMock(t)
	conns := porm.Single(db)

	exec, err := conns.Get("")
	require.NoError(t, err)
	require.Same(t, db, exec)

	_, err = conns.Get("replica")
	require.ErrorIs(t, err, porm.ErrUnknownConnection)
}
