package criteria

// ISpecification 可组合的查询规约：谓词的延迟工厂。
//
// ToPredicate 返回 nil 谓词表示“无约束”，组合算子对 nil 做中性归并：
// a.And(nil) == a，a.Or(nil) == a。规约本身无状态、可被不同操作
// （查找/计数/存在性/更新/删除）重复求值。
type ISpecification interface {
	ToPredicate(root *Root, qc *QueryContext, b Builder) (*Predicate, error)
}

// SpecFunc 函数式规约适配器。
type SpecFunc func(root *Root, qc *QueryContext, b Builder) (*Predicate, error)

func (f SpecFunc) ToPredicate(root *Root, qc *QueryContext, b Builder) (*Predicate, error) {
	return f(root, qc, b)
}

// Unrestricted 恒不加约束的规约，进程内唯一实例。
func Unrestricted() ISpecification { return unrestricted }

var unrestricted ISpecification = unrestrictedSpec{}

type unrestrictedSpec struct{}

func (unrestrictedSpec) ToPredicate(*Root, *QueryContext, Builder) (*Predicate, error) {
	return nil, nil
}

// And 合取组合。任一侧为 nil 约束时结果等于另一侧。
func And(specs ...ISpecification) ISpecification {
	return SpecFunc(func(root *Root, qc *QueryContext, b Builder) (*Predicate, error) {
		predicates, err := evaluate(specs, root, qc, b)
		if err != nil {
			return nil, err
		}
		return b.And(predicates...), nil
	})
}

// Or 析取组合。任一侧为 nil 约束时结果等于另一侧。
func Or(specs ...ISpecification) ISpecification {
	return SpecFunc(func(root *Root, qc *QueryContext, b Builder) (*Predicate, error) {
		predicates, err := evaluate(specs, root, qc, b)
		if err != nil {
			return nil, err
		}
		return b.Or(predicates...), nil
	})
}

// Not 取反组合。无约束的取反仍是无约束。
func Not(spec ISpecification) ISpecification {
	return SpecFunc(func(root *Root, qc *QueryContext, b Builder) (*Predicate, error) {
		if spec == nil {
			return nil, nil
		}
		p, err := spec.ToPredicate(root, qc, b)
		if err != nil {
			return nil, err
		}
		return b.Not(p), nil
	})
}

func evaluate(specs []ISpecification, root *Root, qc *QueryContext, b Builder) ([]*Predicate, error) {
	predicates := make([]*Predicate, 0, len(specs))
	for _, spec := range specs {
		if spec == nil {
			continue
		}
		p, err := spec.ToPredicate(root, qc, b)
		if err != nil {
			return nil, err
		}
		predicates = append(predicates, p)
	}
	return predicates, nil
}

// PropertyEquals 属性等值规约。
func PropertyEquals(property string, value any) ISpecification {
	return SpecFunc(func(root *Root, _ *QueryContext, b Builder) (*Predicate, error) {
		ref, err := root.Get(property)
		if err != nil {
			return nil, err
		}
		return b.Eq(ref, value), nil
	})
}

// PropertyIn 属性集合成员规约。
func PropertyIn(property string, values ...any) ISpecification {
	return SpecFunc(func(root *Root, _ *QueryContext, b Builder) (*Predicate, error) {
		ref, err := root.Get(property)
		if err != nil {
			return nil, err
		}
		return b.In(ref, values...), nil
	})
}

// PropertyLike 属性模式匹配规约（调用方自备通配符）。
func PropertyLike(property, pattern string) ISpecification {
	return SpecFunc(func(root *Root, _ *QueryContext, b Builder) (*Predicate, error) {
		ref, err := root.Get(property)
		if err != nil {
			return nil, err
		}
		return b.Like(ref, pattern, 0), nil
	})
}
