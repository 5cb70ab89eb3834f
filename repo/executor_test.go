package repo

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"querykit/criteria"
	"querykit/errors"
	"querykit/query"
	"querykit/session"
)

type user struct {
	ID     int64
	Name   string
	Email  string
	Age    int
	City   string
	Active bool
}

var userEntity = &criteria.EntityInfo{
	Name:       "User",
	Table:      "users",
	IDProperty: "id",
	Properties: []string{"id", "name", "email", "age", "city", "active"},
}

// mapUser 按结果集实际列映射，投影查询缺失的列保持零值。
func mapUser(rows session.IRows) (user, error) {
	var u user
	cols, err := rows.Columns()
	if err != nil {
		return u, err
	}

	dests := make([]any, 0, len(cols))
	for _, c := range cols {
		switch c {
		case "id":
			dests = append(dests, &u.ID)
		case "name":
			dests = append(dests, &u.Name)
		case "email":
			dests = append(dests, &u.Email)
		case "age":
			dests = append(dests, &u.Age)
		case "city":
			dests = append(dests, &u.City)
		case "active":
			dests = append(dests, &u.Active)
		default:
			var sink any
			dests = append(dests, &sink)
		}
	}
	return u, rows.Scan(dests...)
}

func userKeys(u user) map[string]any {
	return map[string]any{
		"id":   u.ID,
		"name": u.Name,
		"age":  u.Age,
		"city": u.City,
	}
}

// newTestExecutor 建表并填充 25 行测试数据。
func newTestExecutor(t *testing.T) *Executor[user] {
	t.Helper()
	ctx := context.Background()

	s, err := session.Open(session.Config{Driver: "sqlite", DSN: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	_, err = s.Exec(ctx, `create table users (
		id integer primary key,
		name text not null,
		email text not null,
		age integer not null,
		city text not null,
		active integer not null
	)`)
	require.NoError(t, err)

	cities := []string{"sh", "bj", "gz"}
	for i := 1; i <= 25; i++ {
		_, err = s.Exec(ctx,
			"insert into users (id, name, email, age, city, active) values (?, ?, ?, ?, ?, ?)",
			i, fmt.Sprintf("user%02d", i), fmt.Sprintf("user%02d@example.com", i),
			20+i%5, cities[i%len(cities)], i%2 == 0)
		require.NoError(t, err)
	}

	exec, err := NewExecutor(ExecutorConfig[user]{
		Session: s,
		Entity:  userEntity,
		Mapper:  mapUser,
		Keys:    userKeys,
	})
	require.NoError(t, err)
	return exec
}

func byNameAsc() query.Sort { return query.SortBy(query.Asc("name")) }

func TestNewExecutorValidatesConfig(t *testing.T) {
	_, err := NewExecutor(ExecutorConfig[user]{Entity: userEntity, Mapper: mapUser})
	require.Error(t, err)
	assert.True(t, errors.IsConfiguration(err))
}

func TestFindAllPagedPartitions(t *testing.T) {
	exec := newTestExecutor(t)
	ctx := context.Background()

	var concatenated []user
	sizes := []int{10, 10, 5}
	for n, wantSize := range sizes {
		pageable, err := criteria.PageRequest(n, 10, byNameAsc())
		require.NoError(t, err)

		page, err := exec.FindAllPaged(ctx, criteria.Unrestricted(), pageable)
		require.NoError(t, err)

		assert.Len(t, page.Content(), wantSize)
		assert.Equal(t, int64(25), page.TotalElements())
		assert.Equal(t, 3, page.TotalPages())
		assert.Equal(t, n == len(sizes)-1, page.IsLast())
		concatenated = append(concatenated, page.Content()...)
	}

	// 逐页拼接与一次性取回完全一致
	all, err := exec.FindAll(ctx, criteria.Unrestricted(), byNameAsc())
	require.NoError(t, err)
	assert.Equal(t, all, concatenated)
}

func TestNilSpecificationIsRejected(t *testing.T) {
	exec := newTestExecutor(t)
	ctx := context.Background()

	_, err := exec.FindAll(ctx, nil, byNameAsc())
	require.Error(t, err)
	assert.True(t, errors.IsInvalidInput(err))

	_, err = exec.Count(ctx, nil)
	require.Error(t, err)
	assert.True(t, errors.IsInvalidInput(err))
}

func TestFindAllWithSpecification(t *testing.T) {
	exec := newTestExecutor(t)
	ctx := context.Background()

	users, err := exec.FindAll(ctx, criteria.PropertyEquals("city", "sh"), byNameAsc())
	require.NoError(t, err)
	require.NotEmpty(t, users)
	for _, u := range users {
		assert.Equal(t, "sh", u.City)
	}
}

func TestCountMatchesExistence(t *testing.T) {
	exec := newTestExecutor(t)
	ctx := context.Background()

	specs := []criteria.ISpecification{
		criteria.Unrestricted(),
		criteria.PropertyEquals("city", "sh"),
		criteria.PropertyEquals("city", "nowhere"),
		criteria.And(criteria.PropertyEquals("city", "bj"), criteria.PropertyEquals("active", true)),
	}
	for _, spec := range specs {
		count, err := exec.Count(ctx, spec)
		require.NoError(t, err)
		exists, err := exec.Exists(ctx, spec)
		require.NoError(t, err)
		assert.Equal(t, count > 0, exists)
	}
}

func TestFindOne(t *testing.T) {
	exec := newTestExecutor(t)
	ctx := context.Background()

	u, found, err := exec.FindOne(ctx, criteria.PropertyEquals("email", "user07@example.com"))
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "user07", u.Name)

	_, found, err = exec.FindOne(ctx, criteria.PropertyEquals("email", "nobody@example.com"))
	require.NoError(t, err)
	assert.False(t, found)

	_, _, err = exec.FindOne(ctx, criteria.PropertyEquals("city", "sh"))
	require.Error(t, err)
	assert.True(t, errors.IsInvalidInput(err))
}

func TestAndOrCommutativity(t *testing.T) {
	exec := newTestExecutor(t)
	ctx := context.Background()

	a := criteria.PropertyEquals("city", "sh")
	b := criteria.PropertyEquals("active", true)

	left, err := exec.FindAll(ctx, criteria.And(a, b), byNameAsc())
	require.NoError(t, err)
	right, err := exec.FindAll(ctx, criteria.And(b, a), byNameAsc())
	require.NoError(t, err)
	assert.Equal(t, left, right)

	left, err = exec.FindAll(ctx, criteria.Or(a, b), byNameAsc())
	require.NoError(t, err)
	right, err = exec.FindAll(ctx, criteria.Or(b, a), byNameAsc())
	require.NoError(t, err)
	assert.Equal(t, left, right)
}

func TestEmptyInMatchesNothing(t *testing.T) {
	exec := newTestExecutor(t)
	ctx := context.Background()

	count, err := exec.Count(ctx, criteria.PropertyIn("city"))
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestUpdateAndDelete(t *testing.T) {
	exec := newTestExecutor(t)
	ctx := context.Background()

	inactive := criteria.PropertyEquals("active", false)
	before, err := exec.Count(ctx, inactive)
	require.NoError(t, err)
	require.Greater(t, before, int64(0))

	affected, err := exec.Update(ctx, inactive, map[string]any{"city": "sz", "active": true})
	require.NoError(t, err)
	assert.Equal(t, before, affected)

	remaining, err := exec.Count(ctx, inactive)
	require.NoError(t, err)
	assert.Equal(t, int64(0), remaining)

	deleted, err := exec.Delete(ctx, criteria.PropertyEquals("city", "sz"))
	require.NoError(t, err)
	assert.Equal(t, before, deleted)

	total, err := exec.Count(ctx, criteria.Unrestricted())
	require.NoError(t, err)
	assert.Equal(t, int64(25)-before, total)
}

func TestUpdateRejectsUnknownColumn(t *testing.T) {
	exec := newTestExecutor(t)

	_, err := exec.Update(context.Background(), criteria.Unrestricted(), map[string]any{"password": "x"})
	require.Error(t, err)
	assert.True(t, errors.IsInvalidInput(err))
}

func TestByExampleAgainstDatabase(t *testing.T) {
	exec := newTestExecutor(t)
	ctx := context.Background()

	type probe struct {
		Name string `db:"name"`
	}
	spec := criteria.ByExample(probe{Name: "user1"}, criteria.ExampleMatcher{
		StringMatcher: criteria.MatchStartingWith,
	})

	users, err := exec.FindAll(ctx, spec, byNameAsc())
	require.NoError(t, err)
	// user10 .. user19
	assert.Len(t, users, 10)
}

func collectScroll(t *testing.T, exec *Executor[user], initial criteria.IScrollPosition) []user {
	t.Helper()
	ctx := context.Background()

	var all []user
	position := initial
	windows := 0
	for {
		window, err := exec.Scroll(ctx, criteria.Unrestricted(), byNameAsc(), position, 10)
		require.NoError(t, err)
		all = append(all, window.Content...)
		windows++
		if !window.HasMore {
			break
		}
		position = window.Next
	}
	assert.Equal(t, 3, windows)
	return all
}

func TestScrollKeysetVisitsEveryRowOnce(t *testing.T) {
	exec := newTestExecutor(t)

	all := collectScroll(t, exec, criteria.InitialKeyset())
	require.Len(t, all, 25)

	seen := make(map[int64]struct{}, len(all))
	for _, u := range all {
		_, dup := seen[u.ID]
		assert.False(t, dup, "row %d visited twice", u.ID)
		seen[u.ID] = struct{}{}
	}

	expected, err := exec.FindAll(context.Background(), criteria.Unrestricted(), byNameAsc())
	require.NoError(t, err)
	assert.Equal(t, expected, all)
}

func TestScrollOffsetVisitsEveryRowOnce(t *testing.T) {
	exec := newTestExecutor(t)

	all := collectScroll(t, exec, criteria.InitialOffset())
	require.Len(t, all, 25)

	expected, err := exec.FindAll(context.Background(), criteria.Unrestricted(), byNameAsc())
	require.NoError(t, err)
	assert.Equal(t, expected, all)
}

func TestScrollRejectsBadLimit(t *testing.T) {
	exec := newTestExecutor(t)

	_, err := exec.Scroll(context.Background(), criteria.Unrestricted(), byNameAsc(), criteria.InitialKeyset(), 0)
	require.Error(t, err)
	assert.True(t, errors.IsInvalidInput(err))
}

// distinctCities 把查询形状改成去重的 city 单列选择。
func distinctCities() criteria.ISpecification {
	return criteria.SpecFunc(func(root *criteria.Root, qc *criteria.QueryContext, _ criteria.Builder) (*criteria.Predicate, error) {
		if _, err := root.Get("city"); err != nil {
			return nil, err
		}
		qc.SetDistinct(true)
		qc.Select("city")
		return nil, nil
	})
}

func TestDistinctCountMatchesDistinctRows(t *testing.T) {
	exec := newTestExecutor(t)
	ctx := context.Background()

	spec := distinctCities()
	rows, err := exec.FindAll(ctx, spec, query.SortBy(query.Asc("city")))
	require.NoError(t, err)
	require.Len(t, rows, 3)

	sql, _, err := exec.GetCountQuery(spec)
	require.NoError(t, err)
	assert.Contains(t, sql, "count(distinct city)")

	count, err := exec.Count(ctx, spec)
	require.NoError(t, err)
	assert.Equal(t, int64(len(rows)), count)
}

func TestDistinctCountWholeEntityUsesIdentifier(t *testing.T) {
	exec := newTestExecutor(t)

	spec := criteria.SpecFunc(func(_ *criteria.Root, qc *criteria.QueryContext, _ criteria.Builder) (*criteria.Predicate, error) {
		qc.SetDistinct(true)
		return nil, nil
	})

	sql, _, err := exec.GetCountQuery(spec)
	require.NoError(t, err)
	assert.Contains(t, sql, "count(distinct id)")

	count, err := exec.Count(context.Background(), spec)
	require.NoError(t, err)
	assert.Equal(t, int64(25), count)
}

func TestFindByFluent(t *testing.T) {
	exec := newTestExecutor(t)
	ctx := context.Background()

	result, err := exec.FindBy(ctx, criteria.PropertyEquals("city", "sh"),
		func(q *FluentQuery[user]) (any, error) {
			return q.SortBy(byNameAsc()).Limit(3).All(ctx)
		})
	require.NoError(t, err)

	users, ok := result.([]user)
	require.True(t, ok)
	assert.Len(t, users, 3)
}

func TestFindByFluentProjection(t *testing.T) {
	exec := newTestExecutor(t)
	ctx := context.Background()

	result, err := exec.FindBy(ctx, criteria.PropertyEquals("email", "user07@example.com"),
		func(q *FluentQuery[user]) (any, error) {
			return q.Project("id", "name").All(ctx)
		})
	require.NoError(t, err)

	users := result.([]user)
	require.Len(t, users, 1)
	assert.Equal(t, "user07", users[0].Name)
	// 未选择的列保持零值
	assert.Empty(t, users[0].Email)
}

func TestFindByFluentScrollCarriesContinuationKeys(t *testing.T) {
	exec := newTestExecutor(t)
	ctx := context.Background()

	result, err := exec.FindBy(ctx, criteria.Unrestricted(), func(q *FluentQuery[user]) (any, error) {
		projected := q.SortBy(byNameAsc()).Project("city")

		var all []user
		var position criteria.IScrollPosition = criteria.InitialKeyset()
		for {
			window, err := projected.Scroll(ctx, position, 10)
			if err != nil {
				return nil, err
			}
			all = append(all, window.Content...)
			if !window.HasMore {
				return all, nil
			}
			position = window.Next
		}
	})
	require.NoError(t, err)

	users := result.([]user)
	require.Len(t, users, 25)

	seen := make(map[int64]struct{}, len(users))
	for _, u := range users {
		// 选择列并上了续扫所需的排序键与标识
		assert.NotEmpty(t, u.City)
		assert.NotEmpty(t, u.Name)
		assert.NotZero(t, u.ID)
		assert.Empty(t, u.Email)

		_, dup := seen[u.ID]
		assert.False(t, dup, "row %d visited twice", u.ID)
		seen[u.ID] = struct{}{}
	}
}

func TestFindByFluentLeakIsRejected(t *testing.T) {
	exec := newTestExecutor(t)
	ctx := context.Background()

	_, err := exec.FindBy(ctx, criteria.Unrestricted(), func(q *FluentQuery[user]) (any, error) {
		return q, nil
	})
	require.Error(t, err)
	assert.True(t, errors.IsInvalidInput(err))
}
