package session

import (
	"context"
	"testing"

	_ "modernc.org/sqlite"
)

func openTestSession(t *testing.T) *Session {
	t.Helper()
	s, err := Open(Config{Driver: "sqlite", DSN: ":memory:"})
	if err != nil {
		t.Fatalf("open session: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSessionQueryAndExec(t *testing.T) {
	s := openTestSession(t)
	ctx := context.Background()

	if _, err := s.Exec(ctx, "create table kv (k text primary key, v text)"); err != nil {
		t.Fatalf("create table: %v", err)
	}
	if _, err := s.Exec(ctx, "insert into kv (k, v) values (?, ?)", "a", "1"); err != nil {
		t.Fatalf("insert: %v", err)
	}

	var v string
	if err := s.QueryRow(ctx, "select v from kv where k = ?", "a").Scan(&v); err != nil {
		t.Fatalf("query row: %v", err)
	}
	if v != "1" {
		t.Fatalf("v = %q, want %q", v, "1")
	}

	rows, err := s.Query(ctx, "select k, v from kv")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	defer rows.Close()

	n := 0
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			t.Fatalf("scan: %v", err)
		}
		n++
	}
	if err := rows.Err(); err != nil {
		t.Fatalf("rows err: %v", err)
	}
	if n != 1 {
		t.Fatalf("rows = %d, want 1", n)
	}
}

func TestSessionTransactionRollback(t *testing.T) {
	s := openTestSession(t)
	ctx := context.Background()

	if _, err := s.Exec(ctx, "create table kv (k text primary key)"); err != nil {
		t.Fatalf("create table: %v", err)
	}

	tx, err := s.Begin(ctx)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if _, err := tx.Exec(ctx, "insert into kv (k) values (?)", "a"); err != nil {
		t.Fatalf("insert in tx: %v", err)
	}
	if err := tx.Rollback(); err != nil {
		t.Fatalf("rollback: %v", err)
	}

	var n int
	if err := s.QueryRow(ctx, "select count(*) from kv").Scan(&n); err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 0 {
		t.Fatalf("count = %d, want 0 after rollback", n)
	}
}

func TestSessionDialect(t *testing.T) {
	s := openTestSession(t)
	if got := s.Dialect().Name(); got != "sqlite" {
		t.Fatalf("dialect = %q, want sqlite", got)
	}
}
