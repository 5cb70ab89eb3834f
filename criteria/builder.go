package criteria

import (
	"strings"

	"querykit/errors"
)

// Predicate 参数化的布尔 SQL 片段。占位符统一为 ?，
// 方言重绑由会话层完成。
type Predicate struct {
	SQL  string
	Args []any
}

// Root 查询根：属性引用的校验入口。
//
// 所有属性名必须经 Get 换取列引用后才能进入谓词，格式不合法或
// 不在实体属性集合内的名字以用法错误拒绝。
type Root struct {
	entity *EntityInfo
}

// NewRoot 绑定实体元数据创建查询根。
func NewRoot(entity *EntityInfo) *Root {
	return &Root{entity: entity}
}

// Entity 返回绑定的实体元数据。
func (r *Root) Entity() *EntityInfo { return r.entity }

// Get 把属性名换取可安全拼接的列引用。
func (r *Root) Get(property string) (string, error) {
	if !isSafeIdentifier(property) {
		return "", errors.NewErrorf(errors.ErrCodeInvalidInput, "invalid property reference %q", property)
	}
	if !r.entity.HasProperty(property) {
		return "", errors.NewErrorf(errors.ErrCodeInvalidInput,
			"unknown property %q on entity %q", property, r.entity.Name)
	}
	return property, nil
}

// ID 返回标识属性的列引用。
func (r *Root) ID() (string, error) {
	if r.entity.IDProperty == "" {
		return "", errors.NewErrorf(errors.ErrCodeConfiguration,
			"entity %q declares no identifier property", r.entity.Name)
	}
	return r.Get(r.entity.IDProperty)
}

// QueryContext 单次查询构建的形状状态：distinct 标记与选择列。
// 规约可在 ToPredicate 中修改形状（如按属性去重的规约）。
type QueryContext struct {
	distinct  bool
	selection []string
}

// SetDistinct 设置去重标记。
func (qc *QueryContext) SetDistinct(distinct bool) { qc.distinct = distinct }

// IsDistinct 是否去重。
func (qc *QueryContext) IsDistinct() bool { return qc.distinct }

// Select 覆盖选择列。
func (qc *QueryContext) Select(columns ...string) { qc.selection = columns }

// Selection 返回选择列；为空表示整实体选择。
func (qc *QueryContext) Selection() []string { return qc.selection }

// Builder 谓词工厂。比较类方法接受 Root.Get 产出的列引用，
// 组合类方法接受谓词并做 nil 安全的归并。
type Builder struct{}

// Eq 等值比较。
func (Builder) Eq(ref string, value any) *Predicate {
	return &Predicate{SQL: ref + " = ?", Args: []any{value}}
}

// Ne 不等比较。
func (Builder) Ne(ref string, value any) *Predicate {
	return &Predicate{SQL: ref + " <> ?", Args: []any{value}}
}

// Gt 大于。
func (Builder) Gt(ref string, value any) *Predicate {
	return &Predicate{SQL: ref + " > ?", Args: []any{value}}
}

// Ge 大于等于。
func (Builder) Ge(ref string, value any) *Predicate {
	return &Predicate{SQL: ref + " >= ?", Args: []any{value}}
}

// Lt 小于。
func (Builder) Lt(ref string, value any) *Predicate {
	return &Predicate{SQL: ref + " < ?", Args: []any{value}}
}

// Le 小于等于。
func (Builder) Le(ref string, value any) *Predicate {
	return &Predicate{SQL: ref + " <= ?", Args: []any{value}}
}

// Like 模式匹配；escape 非零时附带 escape 子句。
func (Builder) Like(ref, pattern string, escape rune) *Predicate {
	if escape != 0 {
		return &Predicate{SQL: ref + " like ? escape ?", Args: []any{pattern, string(escape)}}
	}
	return &Predicate{SQL: ref + " like ?", Args: []any{pattern}}
}

// NotLike 反向模式匹配。
func (Builder) NotLike(ref, pattern string, escape rune) *Predicate {
	if escape != 0 {
		return &Predicate{SQL: ref + " not like ? escape ?", Args: []any{pattern, string(escape)}}
	}
	return &Predicate{SQL: ref + " not like ?", Args: []any{pattern}}
}

// In 集合成员判定。空集恒假，不生成非法的空括号。
func (Builder) In(ref string, values ...any) *Predicate {
	if len(values) == 0 {
		return &Predicate{SQL: "1 = 0"}
	}
	placeholders := strings.Repeat("?, ", len(values))
	placeholders = placeholders[:len(placeholders)-2]
	return &Predicate{SQL: ref + " in (" + placeholders + ")", Args: values}
}

// Between 闭区间判定。
func (Builder) Between(ref string, lo, hi any) *Predicate {
	return &Predicate{SQL: ref + " between ? and ?", Args: []any{lo, hi}}
}

// IsNull 空值判定。
func (Builder) IsNull(ref string) *Predicate {
	return &Predicate{SQL: ref + " is null"}
}

// IsNotNull 非空判定。
func (Builder) IsNotNull(ref string) *Predicate {
	return &Predicate{SQL: ref + " is not null"}
}

// IsTrue 布尔真判定。
func (Builder) IsTrue(ref string) *Predicate {
	return &Predicate{SQL: ref + " = ?", Args: []any{true}}
}

// IsFalse 布尔假判定。
func (Builder) IsFalse(ref string) *Predicate {
	return &Predicate{SQL: ref + " = ?", Args: []any{false}}
}

// Lower 忽略大小写比较的列引用包装。
func (Builder) Lower(ref string) string { return "lower(" + ref + ")" }

// And 合取归并。nil 谓词视为无约束被跳过；全 nil 时返回 nil。
func (Builder) And(predicates ...*Predicate) *Predicate {
	return combine(" and ", predicates)
}

// Or 析取归并。nil 谓词视为无约束被跳过；全 nil 时返回 nil。
func (Builder) Or(predicates ...*Predicate) *Predicate {
	return combine(" or ", predicates)
}

// Not 取反。nil 取反仍为 nil（对无约束取反没有意义）。
func (Builder) Not(p *Predicate) *Predicate {
	if p == nil {
		return nil
	}
	return &Predicate{SQL: "not (" + p.SQL + ")", Args: p.Args}
}

func combine(op string, predicates []*Predicate) *Predicate {
	live := make([]*Predicate, 0, len(predicates))
	for _, p := range predicates {
		if p != nil && p.SQL != "" {
			live = append(live, p)
		}
	}
	switch len(live) {
	case 0:
		return nil
	case 1:
		return live[0]
	}

	var sb strings.Builder
	args := make([]any, 0)
	sb.WriteString("(")
	for i, p := range live {
		if i > 0 {
			sb.WriteString(op)
		}
		sb.WriteString(p.SQL)
		args = append(args, p.Args...)
	}
	sb.WriteString(")")
	return &Predicate{SQL: sb.String(), Args: args}
}
