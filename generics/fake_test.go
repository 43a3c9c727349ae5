package generics_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/pionia/internal"
	"github.com/dmitrymomot/pionia/pkg/keyed"
	"github.com/dmitrymomot/pionia/pkg/porm"
)

// fakeExec is an in-memory porm.Executor over a single table keyed by "id".
type fakeExec struct {
	mu      sync.Mutex
	rows    []porm.Row
	queries []porm.Query
	inserts []*keyed.Map
	updates []*keyed.Map
	deletes int
	txs     int
	fail    error
	nextID  int64
}

func newFakeExec(rows ...porm.Row) *fakeExec {
	return &fakeExec{rows: rows, nextID: int64(len(rows) + 1)}
}

func (f *fakeExec) match(where map[string]any) []porm.Row {
	var out []porm.Row
	for _, row := range f.rows {
		ok := true
		for k, want := range where {
			got, _ := row.Get(k[strings.LastIndex(k, ".")+1:])
			gf, gok := keyed.ToFloat(got)
			wf, wok := keyed.ToFloat(want)
			if gok && wok {
				ok = ok && gf == wf
				continue
			}
			ok = ok && got == want
		}
		if ok {
			out = append(out, row)
		}
	}
	return out
}

func (f *fakeExec) project(row porm.Row, cols []porm.Column) porm.Row {
	if len(cols) == 0 {
		return row.Clone()
	}
	out := keyed.New()
	for _, c := range cols {
		out.Set(c.Key(), row.Value(c.Name))
	}
	return out
}

func (f *fakeExec) Select(_ context.Context, q porm.Query) ([]porm.Row, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, q)
	if f.fail != nil {
		return nil, f.fail
	}

	matched := f.match(q.Where)
	if q.Offset > 0 {
		matched = matched[min(q.Offset, len(matched)):]
	}
	if q.Limit > 0 {
		matched = matched[:min(q.Limit, len(matched))]
	}
	out := make([]porm.Row, 0, len(matched))
	for _, row := range matched {
		out = append(out, f.project(row, q.Columns))
	}
	return out, nil
}

func (f *fakeExec) Count(_ context.Context, q porm.Query) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return 0, f.fail
	}
	return int64(len(f.match(q.Where))), nil
}

func (f *fakeExec) Random(ctx context.Context, q porm.Query, n int) ([]porm.Row, error) {
	q.Limit = n
	return f.Select(ctx, q)
}

func (f *fakeExec) Insert(_ context.Context, _ string, data *keyed.Map) (porm.Row, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return nil, f.fail
	}
	f.inserts = append(f.inserts, data.Clone())
	row := keyed.Of("id", f.nextID).Merge(data)
	f.nextID++
	f.rows = append(f.rows, row)
	return row.Clone(), nil
}

func (f *fakeExec) Update(_ context.Context, _ string, data *keyed.Map, where map[string]any) (porm.Row, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return nil, f.fail
	}
	f.updates = append(f.updates, data.Clone())
	matched := f.match(where)
	if len(matched) == 0 {
		return nil, porm.ErrNoRows
	}
	for _, row := range matched {
		row.Merge(data)
	}
	return matched[0].Clone(), nil
}

func (f *fakeExec) Delete(_ context.Context, _ string, where map[string]any) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return 0, f.fail
	}
	matched := f.match(where)
	f.rows = slicesDelete(f.rows, matched)
	f.deletes++
	return int64(len(matched)), nil
}

func (f *fakeExec) WithTx(_ context.Context, fn func(tx porm.Executor) error) error {
	f.mu.Lock()
	f.txs++
	snapshot := make([]porm.Row, len(f.rows))
	for i, r := range f.rows {
		snapshot[i] = r.Clone()
	}
	f.mu.Unlock()

	if err := fn(f); err != nil {
		f.mu.Lock()
		f.rows = snapshot
		f.mu.Unlock()
		return err
	}
	return nil
}

func (f *fakeExec) lastQuery() porm.Query {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.queries[len(f.queries)-1]
}

func slicesDelete(rows, remove []porm.Row) []porm.Row {
	out := rows[:0]
	for _, r := range rows {
		keep := true
		for _, x := range remove {
			if r == x {
				keep = false
			}
		}
		if keep {
			out = append(out, r)
		}
	}
	return out
}

func articles(n int) []porm.Row {
	rows := make([]porm.Row, n)
	for i := range rows {
		rows[i] = keyed.Of("id", int64(i+1), "title", "Article", "author_id", int64(1))
	}
	return rows
}

func request(t *testing.T, body string) *internal.Request {
	t.Helper()

	r := httptest.NewRequest(http.MethodPost, "/api/v1/", strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	req, err := internal.NewRequest(httptest.NewRecorder(), r, nil)
	require.NoError(t, err)
	return req
}
