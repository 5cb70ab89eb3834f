package criteria

import (
	"strings"

	"querykit/errors"
	"querykit/query"
)

// KeysetScrollSpecification 键集续扫规约：把调用方规约与
// “上一窗口末行之后”的续延谓词合取。
//
// 续延谓词是按排序属性展开的“或-与”阶梯：
//
//	(p1 > v1) or (p1 = v1 and p2 > v2) or ... or (p1 = v1 ... pn-1 = vn-1 and pn > vn)
//
// 降序属性的比较方向取反。排序必须稳定，因此 CreateSort 在调用方
// 排序之后强制追加标识属性作决胜列（已含标识属性时不重复）。
type KeysetScrollSpecification struct {
	delegate ISpecification
	position KeysetPosition
	sort     query.Sort
}

// NewKeysetScrollSpecification 包装 delegate 与续扫位置。
// sort 为调用方原始排序，实际生效排序通过 CreateSort 获取。
func NewKeysetScrollSpecification(delegate ISpecification, position KeysetPosition, sort query.Sort) *KeysetScrollSpecification {
	if delegate == nil {
		delegate = Unrestricted()
	}
	return &KeysetScrollSpecification{
		delegate: delegate,
		position: position,
		sort:     sort,
	}
}

// CreateSort 返回保证全序的生效排序：原排序 + 标识属性决胜列。
func (s *KeysetScrollSpecification) CreateSort(entity *EntityInfo) query.Sort {
	return StableSort(s.sort, entity)
}

// StableSort 在排序末尾追加标识属性，保证行间全序。
func StableSort(sort query.Sort, entity *EntityInfo) query.Sort {
	if entity.IDProperty == "" || sort.Contains(entity.IDProperty) {
		return sort
	}
	return sort.And(query.SortBy(query.Asc(entity.IDProperty)))
}

func (s *KeysetScrollSpecification) ToPredicate(root *Root, qc *QueryContext, b Builder) (*Predicate, error) {
	base, err := s.delegate.ToPredicate(root, qc, b)
	if err != nil {
		return nil, err
	}

	if s.position.IsInitial() {
		return base, nil
	}

	continuation, err := s.continuationPredicate(root, b)
	if err != nil {
		return nil, err
	}
	return b.And(base, continuation), nil
}

// continuationPredicate 由键集位置构造续延谓词。
// 键集必须覆盖生效排序的所有属性，缺失即状态错误：位置来自
// 另一份排序规约，无法安全续扫。
func (s *KeysetScrollSpecification) continuationPredicate(root *Root, b Builder) (*Predicate, error) {
	sort := s.CreateSort(root.Entity())
	if !sort.IsSorted() {
		return nil, errors.NewError(errors.ErrCodeState,
			"keyset scrolling requires a sort with at least the identifier property")
	}

	rungs := make([]*Predicate, 0, len(sort))
	for i := range sort {
		rung, err := s.rung(root, b, sort[:i+1])
		if err != nil {
			return nil, err
		}
		rungs = append(rungs, rung)
	}
	return b.Or(rungs...), nil
}

// rung 阶梯的一级：前缀属性等值 + 末属性方向比较。
func (s *KeysetScrollSpecification) rung(root *Root, b Builder, orders query.Sort) (*Predicate, error) {
	parts := make([]*Predicate, 0, len(orders))
	for i, order := range orders {
		ref, err := root.Get(order.Property)
		if err != nil {
			return nil, err
		}
		value, ok := s.position.Keys[order.Property]
		if !ok {
			return nil, errors.NewErrorf(errors.ErrCodeState,
				"keyset position is missing a value for sort property %q", order.Property)
		}

		if i < len(orders)-1 {
			parts = append(parts, b.Eq(ref, value))
			continue
		}
		if order.Descending {
			parts = append(parts, b.Lt(ref, value))
		} else {
			parts = append(parts, b.Gt(ref, value))
		}
	}
	return b.And(parts...), nil
}

// ProjectionInputProperties 键集续扫下投影必须取回的属性全集：
// 请求的投影属性 ∪ 排序键 ∪ 标识属性。嵌套路径按首段去重，
// 取回整个首段即覆盖其全部子路径。
func ProjectionInputProperties(requested []string, sort query.Sort, entity *EntityInfo) []string {
	stable := StableSort(sort, entity)

	seen := make(map[string]struct{}, len(requested)+len(stable))
	out := make([]string, 0, len(requested)+len(stable))
	add := func(property string) {
		segment, _, _ := strings.Cut(property, ".")
		if _, dup := seen[segment]; dup {
			return
		}
		seen[segment] = struct{}{}
		out = append(out, segment)
	}

	for _, p := range requested {
		add(p)
	}
	for _, order := range stable {
		add(order.Property)
	}
	return out
}

// KeysetFor 从窗口末行的属性值快照构造下一次续扫位置。
// properties 必须覆盖生效排序的所有属性。
func KeysetFor(values map[string]any, sort query.Sort) (KeysetPosition, error) {
	keys := make(map[string]any, len(sort))
	for _, order := range sort {
		v, ok := values[order.Property]
		if !ok {
			return KeysetPosition{}, errors.NewErrorf(errors.ErrCodeState,
				"row snapshot is missing sort property %q", order.Property)
		}
		keys[order.Property] = v
	}
	return KeysetAt(keys), nil
}
