package criteria

import (
	"querykit/errors"
	"querykit/query"
)

// Pageable 分页请求。零值不可用，通过 PageRequest 或 Unpaged 构造。
type Pageable struct {
	page    int
	size    int
	sort    query.Sort
	unpaged bool
}

// PageRequest 构造分页请求。page 从 0 起；size 必须为正。
func PageRequest(page, size int, sort query.Sort) (Pageable, error) {
	if page < 0 {
		return Pageable{}, errors.NewError(errors.ErrCodeInvalidInput, "page index must not be negative")
	}
	if size < 1 {
		return Pageable{}, errors.NewError(errors.ErrCodeInvalidInput, "page size must be at least one")
	}
	return Pageable{page: page, size: size, sort: sort}, nil
}

// Unpaged 不分页（可仍携带排序）。
func Unpaged(sort query.Sort) Pageable {
	return Pageable{unpaged: true, sort: sort}
}

// IsUnpaged 是否不分页。
func (p Pageable) IsUnpaged() bool { return p.unpaged }

// Page 页号，从 0 起。
func (p Pageable) Page() int { return p.page }

// Size 页大小。
func (p Pageable) Size() int { return p.size }

// Sort 排序规约。
func (p Pageable) Sort() query.Sort { return p.sort }

// Offset 行偏移。
func (p Pageable) Offset() int64 {
	if p.unpaged {
		return 0
	}
	return int64(p.page) * int64(p.size)
}

// Page 一页结果与其总量信息。
type Page[T any] struct {
	content  []T
	pageable Pageable
	total    int64
}

// NewPage 组装页并按需求取总量。
//
// 总量在以下情形可由页内容直接推断，此时不调用 total 回调：
//   - 不分页：总量即内容长度；
//   - 首页未满：没有更多行，总量即内容长度；
//   - 非首页、非空且未满：这是最后一页，总量 = 偏移 + 内容长度。
//
// 其余情形（页满、或非首页为空）必须执行计数。
func NewPage[T any](content []T, pageable Pageable, total func() (int64, error)) (*Page[T], error) {
	n := int64(len(content))

	if pageable.IsUnpaged() {
		return &Page[T]{content: content, pageable: pageable, total: n}, nil
	}

	offset := pageable.Offset()
	size := int64(pageable.Size())

	if offset != 0 && n > 0 && n < size {
		return &Page[T]{content: content, pageable: pageable, total: offset + n}, nil
	}
	if offset == 0 && n < size {
		return &Page[T]{content: content, pageable: pageable, total: n}, nil
	}

	t, err := total()
	if err != nil {
		return nil, err
	}
	return &Page[T]{content: content, pageable: pageable, total: t}, nil
}

// Content 页内容。
func (p *Page[T]) Content() []T { return p.content }

// Number 页号。
func (p *Page[T]) Number() int { return p.pageable.Page() }

// Size 请求的页大小；不分页时为内容长度。
func (p *Page[T]) Size() int {
	if p.pageable.IsUnpaged() {
		return len(p.content)
	}
	return p.pageable.Size()
}

// TotalElements 满足条件的总行数。
func (p *Page[T]) TotalElements() int64 { return p.total }

// TotalPages 总页数。
func (p *Page[T]) TotalPages() int {
	if p.pageable.IsUnpaged() || p.total == 0 {
		if p.total > 0 {
			return 1
		}
		return 0
	}
	size := int64(p.pageable.Size())
	return int((p.total + size - 1) / size)
}

// HasNext 是否存在后续页。
func (p *Page[T]) HasNext() bool {
	if p.pageable.IsUnpaged() {
		return false
	}
	return p.pageable.Offset()+int64(len(p.content)) < p.total
}

// IsLast 是否为最后一页。
func (p *Page[T]) IsLast() bool { return !p.HasNext() }
