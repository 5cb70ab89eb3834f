package criteria

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"querykit/errors"
)

var userEntity = &EntityInfo{
	Name:       "User",
	Table:      "users",
	IDProperty: "id",
	Properties: []string{"id", "name", "email", "age", "city", "active"},
}

func TestRootGetValidatesProperties(t *testing.T) {
	root := NewRoot(userEntity)

	ref, err := root.Get("name")
	require.NoError(t, err)
	assert.Equal(t, "name", ref)

	_, err = root.Get("password")
	require.Error(t, err)
	assert.True(t, errors.IsInvalidInput(err))

	_, err = root.Get("name; drop table users")
	require.Error(t, err)
	assert.True(t, errors.IsInvalidInput(err))
}

func TestRootOpenSchemaAllowsSafeIdentifiers(t *testing.T) {
	root := NewRoot(&EntityInfo{Name: "Any", Table: "any"})

	_, err := root.Get("whatever_col")
	assert.NoError(t, err)

	_, err = root.Get("1bad")
	assert.Error(t, err)
}

func TestBuilderComparisons(t *testing.T) {
	var b Builder

	tests := []struct {
		name string
		p    *Predicate
		sql  string
		args []any
	}{
		{"eq", b.Eq("name", "li"), "name = ?", []any{"li"}},
		{"ne", b.Ne("age", 3), "age <> ?", []any{3}},
		{"gt", b.Gt("age", 18), "age > ?", []any{18}},
		{"ge", b.Ge("age", 18), "age >= ?", []any{18}},
		{"lt", b.Lt("age", 60), "age < ?", []any{60}},
		{"le", b.Le("age", 60), "age <= ?", []any{60}},
		{"between", b.Between("age", 18, 60), "age between ? and ?", []any{18, 60}},
		{"like", b.Like("name", "li%", 0), "name like ?", []any{"li%"}},
		{"like escape", b.Like("name", "li\\%%", '\\'), "name like ? escape ?", []any{"li\\%%", "\\"}},
		{"in", b.In("city", "sh", "bj"), "city in (?, ?)", []any{"sh", "bj"}},
		{"empty in", b.In("city"), "1 = 0", nil},
		{"is null", b.IsNull("email"), "email is null", nil},
		{"is not null", b.IsNotNull("email"), "email is not null", nil},
		{"is true", b.IsTrue("active"), "active = ?", []any{true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.sql, tt.p.SQL)
			assert.Equal(t, tt.args, tt.p.Args)
		})
	}
}

func TestBuilderCombinators(t *testing.T) {
	var b Builder

	p := b.And(b.Eq("a", 1), b.Eq("b", 2))
	assert.Equal(t, "(a = ? and b = ?)", p.SQL)
	assert.Equal(t, []any{1, 2}, p.Args)

	p = b.Or(b.Eq("a", 1), b.Eq("b", 2), b.Eq("c", 3))
	assert.Equal(t, "(a = ? or b = ? or c = ?)", p.SQL)

	// nil 谓词是中性元
	p = b.And(nil, b.Eq("a", 1), nil)
	assert.Equal(t, "a = ?", p.SQL)

	assert.Nil(t, b.And())
	assert.Nil(t, b.Or(nil, nil))
	assert.Nil(t, b.Not(nil))

	p = b.Not(b.Eq("a", 1))
	assert.Equal(t, "not (a = ?)", p.SQL)
}

func TestQueryContextShape(t *testing.T) {
	var qc QueryContext
	assert.False(t, qc.IsDistinct())
	assert.Empty(t, qc.Selection())

	qc.SetDistinct(true)
	qc.Select("name", "age")
	assert.True(t, qc.IsDistinct())
	assert.Equal(t, []string{"name", "age"}, qc.Selection())
}
