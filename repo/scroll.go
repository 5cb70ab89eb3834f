package repo

import (
	"context"

	"querykit/criteria"
	"querykit/errors"
	"querykit/query"
)

// Scroll 按稳定排序滚动取回一个窗口。
//
// 两种位置语义：
//   - 键集位置：规约被包装为键集续扫规约，从上一窗口末行之后继续，
//     行的插入删除不会造成重复或跳行；
//   - 偏移位置：位置记录已消费的行数，下一窗口跳过这些行后开始。
//
// 统一多取一行探测是否还有后续，多出的行不进入窗口内容。
func (e *Executor[T]) Scroll(ctx context.Context, spec criteria.ISpecification, s query.Sort,
	position criteria.IScrollPosition, limit int) (*criteria.Window[T], error) {
	return e.scroll(ctx, spec, s, position, limit, nil)
}

// scroll 投影感知的滚动入口，流式查询的 Scroll 终结方法经此注入选择列。
func (e *Executor[T]) scroll(ctx context.Context, spec criteria.ISpecification, s query.Sort,
	position criteria.IScrollPosition, limit int, projection []string) (*criteria.Window[T], error) {

	if limit < 1 {
		return nil, errors.NewError(errors.ErrCodeInvalidInput, "scroll limit must be at least one")
	}
	if spec == nil {
		return nil, errors.NewError(errors.ErrCodeInvalidInput,
			"specification must not be nil; use criteria.Unrestricted() for no constraint")
	}

	switch pos := position.(type) {
	case criteria.KeysetPosition:
		return e.scrollKeyset(ctx, spec, s, pos, limit, projection)
	case criteria.OffsetPosition:
		return e.scrollOffset(ctx, spec, s, pos, limit, projection)
	default:
		return nil, errors.NewErrorf(errors.ErrCodeInvalidInput, "unsupported scroll position %T", position)
	}
}

func (e *Executor[T]) scrollKeyset(ctx context.Context, spec criteria.ISpecification, s query.Sort,
	position criteria.KeysetPosition, limit int, projection []string) (*criteria.Window[T], error) {

	if e.keys == nil {
		return nil, errors.NewError(errors.ErrCodeConfiguration,
			"keyset scrolling requires a key extractor")
	}

	keysetSpec := criteria.NewKeysetScrollSpecification(spec, position, s)
	stable := keysetSpec.CreateSort(e.entity)

	// 投影必须并入续扫比较所需的排序键与标识属性，否则末行快照
	// 无法提供下一位置的键值
	var scrollSpec criteria.ISpecification = keysetSpec
	if len(projection) > 0 {
		scrollSpec = selectingSpec(keysetSpec, criteria.ProjectionInputProperties(projection, s, e.entity))
	}

	b, err := e.selectFor(scrollSpec, stable)
	if err != nil {
		return nil, err
	}
	sql, args := b.Limit(limit + 1).Build()

	rows, err := e.queryList(ctx, sql, args)
	if err != nil {
		return nil, err
	}

	hasMore := len(rows) > limit
	if hasMore {
		rows = rows[:limit]
	}

	var next criteria.IScrollPosition = criteria.InitialKeyset()
	if hasMore {
		last := rows[len(rows)-1]
		position, err := criteria.KeysetFor(e.keys(last), stable)
		if err != nil {
			return nil, err
		}
		next = position
	}

	return &criteria.Window[T]{Content: rows, HasMore: hasMore, Next: next}, nil
}

func (e *Executor[T]) scrollOffset(ctx context.Context, spec criteria.ISpecification, s query.Sort,
	position criteria.OffsetPosition, limit int, projection []string) (*criteria.Window[T], error) {

	// 位置是已消费的行数，初始位置即跳过零行
	start := position.Offset

	base := spec
	if len(projection) > 0 {
		base = selectingSpec(spec, projection)
	}

	b, err := e.selectFor(base, criteria.StableSort(s, e.entity))
	if err != nil {
		return nil, err
	}
	sql, args := b.Limit(limit + 1).Offset(start).Build()

	rows, err := e.queryList(ctx, sql, args)
	if err != nil {
		return nil, err
	}

	hasMore := len(rows) > limit
	if hasMore {
		rows = rows[:limit]
	}

	next := criteria.OffsetPosition{Offset: start + int64(len(rows))}
	return &criteria.Window[T]{Content: rows, HasMore: hasMore, Next: next}, nil
}
