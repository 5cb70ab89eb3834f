package repo

import (
	"context"

	"querykit/criteria"
	"querykit/errors"
	"querykit/query"
)

// FluentQuery 流式查询：在查询函数作用域内逐步细化
// 排序、投影与上限，最后以终结方法收束。
type FluentQuery[T any] struct {
	exec       *Executor[T]
	spec       criteria.ISpecification
	sort       query.Sort
	limit      int
	projection []string
}

// FindBy 以流式接口执行查询。
//
// fn 必须在函数体内终结查询并返回结果；把流式对象本身返回属于
// 用法错误——它只在 fn 的作用域内有效。
func (e *Executor[T]) FindBy(ctx context.Context, spec criteria.ISpecification,
	fn func(q *FluentQuery[T]) (any, error)) (any, error) {

	if fn == nil {
		return nil, errors.NewError(errors.ErrCodeInvalidInput, "query function must not be nil")
	}
	if spec == nil {
		return nil, errors.NewError(errors.ErrCodeInvalidInput,
			"specification must not be nil; use criteria.Unrestricted() for no constraint")
	}

	q := &FluentQuery[T]{exec: e, spec: spec}
	result, err := fn(q)
	if err != nil {
		return nil, err
	}
	if _, leaked := result.(*FluentQuery[T]); leaked {
		return nil, errors.NewError(errors.ErrCodeInvalidInput,
			"fluent query must be terminated inside the query function, not returned from it")
	}
	return result, nil
}

// SortBy 细化排序。
func (q *FluentQuery[T]) SortBy(s query.Sort) *FluentQuery[T] {
	q.sort = q.sort.And(s)
	return q
}

// Limit 细化结果上限。
func (q *FluentQuery[T]) Limit(n int) *FluentQuery[T] {
	q.limit = n
	return q
}

// Project 细化选择列。
func (q *FluentQuery[T]) Project(properties ...string) *FluentQuery[T] {
	q.projection = properties
	return q
}

// projectedSpec 把投影注入查询形状。
func (q *FluentQuery[T]) projectedSpec() criteria.ISpecification {
	if len(q.projection) == 0 {
		return q.spec
	}
	return selectingSpec(q.spec, q.projection)
}

// selectingSpec 包装规约并把选择列注入查询形状，列名先经根校验。
func selectingSpec(base criteria.ISpecification, properties []string) criteria.ISpecification {
	return criteria.SpecFunc(func(root *criteria.Root, qc *criteria.QueryContext, b criteria.Builder) (*criteria.Predicate, error) {
		for _, p := range properties {
			if _, err := root.Get(p); err != nil {
				return nil, err
			}
		}
		qc.Select(properties...)
		return base.ToPredicate(root, qc, b)
	})
}

// All 返回全部匹配实体。
func (q *FluentQuery[T]) All(ctx context.Context) ([]T, error) {
	b, err := q.exec.selectFor(q.projectedSpec(), q.sort)
	if err != nil {
		return nil, err
	}
	if q.limit > 0 {
		b.Limit(q.limit)
	}
	sql, args := b.Build()
	return q.exec.queryList(ctx, sql, args)
}

// First 返回首个匹配实体。
func (q *FluentQuery[T]) First(ctx context.Context) (T, bool, error) {
	var zero T
	b, err := q.exec.selectFor(q.projectedSpec(), q.sort)
	if err != nil {
		return zero, false, err
	}
	sql, args := b.Limit(1).Build()

	list, err := q.exec.queryList(ctx, sql, args)
	if err != nil {
		return zero, false, err
	}
	if len(list) == 0 {
		return zero, false, nil
	}
	return list[0], true, nil
}

// Page 分页返回匹配实体。
func (q *FluentQuery[T]) Page(ctx context.Context, pageable criteria.Pageable) (*criteria.Page[T], error) {
	return q.exec.FindAllPaged(ctx, q.projectedSpec(), pageable)
}

// Scroll 按当前排序与投影滚动取回一个窗口。键集续扫时选择列
// 会并入续扫所需的排序键与标识属性。
func (q *FluentQuery[T]) Scroll(ctx context.Context, position criteria.IScrollPosition, limit int) (*criteria.Window[T], error) {
	return q.exec.scroll(ctx, q.spec, q.sort, position, limit, q.projection)
}

// Count 统计匹配行数。
func (q *FluentQuery[T]) Count(ctx context.Context) (int64, error) {
	return q.exec.Count(ctx, q.spec)
}

// Exists 是否存在匹配行。
func (q *FluentQuery[T]) Exists(ctx context.Context) (bool, error) {
	return q.exec.Exists(ctx, q.spec)
}
