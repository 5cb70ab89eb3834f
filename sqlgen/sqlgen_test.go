package sqlgen

import (
	"testing"

	"querykit/query"
)

func TestSelectBuilder(t *testing.T) {
	sql, args := NewSelect().
		Columns("id", "name").
		From("users").
		Where("active = ?", true).
		Where("age >= ?", 18).
		OrderBy(query.SortBy(query.Asc("name"), query.Desc("id"))).
		Limit(10).
		Offset(20).
		Build()

	want := "select id, name from users where active = ? and age >= ? order by name asc, id desc limit 10 offset 20"
	if sql != want {
		t.Fatalf("sql = %q, want %q", sql, want)
	}
	if len(args) != 2 || args[0] != true || args[1] != 18 {
		t.Fatalf("args = %v", args)
	}
}

func TestSelectBuilderDistinctAndExpr(t *testing.T) {
	sql, _ := NewSelect().Distinct(true).Columns("city").From("users").Build()
	if want := "select distinct city from users"; sql != want {
		t.Fatalf("sql = %q, want %q", sql, want)
	}

	sql, _ = NewSelect().Expr("count(*)").From("users").Where("city = ?", "sh").Build()
	if want := "select count(*) from users where city = ?"; sql != want {
		t.Fatalf("sql = %q, want %q", sql, want)
	}
}

func TestSelectBuilderRepeatableBuild(t *testing.T) {
	b := NewSelect().From("users").Where("id = ?", 1).Limit(5)
	first, firstArgs := b.Build()
	second, secondArgs := b.Build()
	if first != second || len(firstArgs) != len(secondArgs) {
		t.Fatalf("Build is not repeatable: %q vs %q", first, second)
	}
}

func TestUpdateBuilder(t *testing.T) {
	sql, args := NewUpdate("users").
		Set("active", false).
		SetExpr("version = version + 1").
		Where("city = ?", "sh").
		Build()

	want := "update users set active = ?, version = version + 1 where city = ?"
	if sql != want {
		t.Fatalf("sql = %q, want %q", sql, want)
	}
	if len(args) != 2 || args[0] != false || args[1] != "sh" {
		t.Fatalf("args = %v", args)
	}
}

func TestDeleteBuilder(t *testing.T) {
	sql, args := NewDelete("users").Where("active = ?", false).Build()
	if want := "delete from users where active = ?"; sql != want {
		t.Fatalf("sql = %q, want %q", sql, want)
	}
	if len(args) != 1 {
		t.Fatalf("args = %v", args)
	}

	sql, _ = NewDelete("users").Build()
	if want := "delete from users"; sql != want {
		t.Fatalf("sql = %q, want %q", sql, want)
	}
}

func TestUnsafeIdentifiersPanic(t *testing.T) {
	cases := []func(){
		func() { NewSelect().From("users; drop table users") },
		func() { NewSelect().Columns("name, password") },
		func() { NewUpdate("users").Set("a b", 1) },
		func() { NewSelect().From("users").OrderBy(query.SortBy(query.Asc("name)"))).Build() },
		func() { NewSelect().Limit(-1) },
	}
	for i, fn := range cases {
		func() {
			defer func() {
				if recover() == nil {
					t.Fatalf("case %d: expected panic", i)
				}
			}()
			fn()
		}()
	}
}
