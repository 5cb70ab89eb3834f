package sqlgen

import "strings"

// UpdateBuilder 更新语句构建器。
type UpdateBuilder struct {
	table string
	sets  []string
	args  []any
	where []string
	wargs []any
}

// NewUpdate 创建更新构建器。
func NewUpdate(table string) *UpdateBuilder {
	mustSafe("table", table)
	return &UpdateBuilder{table: table}
}

// Set 追加赋值列。
func (b *UpdateBuilder) Set(column string, value any) *UpdateBuilder {
	mustSafe("column", column)
	b.sets = append(b.sets, column+" = ?")
	b.args = append(b.args, value)
	return b
}

// SetExpr 以原样表达式赋值（如 counter = counter + 1）。
func (b *UpdateBuilder) SetExpr(expr string, args ...any) *UpdateBuilder {
	if expr != "" {
		b.sets = append(b.sets, expr)
		b.args = append(b.args, args...)
	}
	return b
}

// Where 追加合取条件片段。
func (b *UpdateBuilder) Where(cond string, args ...any) *UpdateBuilder {
	if cond != "" {
		b.where = append(b.where, cond)
		b.wargs = append(b.wargs, args...)
	}
	return b
}

// Build 产出语句文本与参数。没有任何赋值列时 panic：
// 空 set 子句是编程错误而非可恢复状态。
func (b *UpdateBuilder) Build() (string, []any) {
	if len(b.sets) == 0 {
		panic("sqlgen: update without set clause")
	}

	var sb strings.Builder
	sb.WriteString("update ")
	sb.WriteString(b.table)
	sb.WriteString(" set ")
	sb.WriteString(strings.Join(b.sets, ", "))

	args := make([]any, 0, len(b.args)+len(b.wargs))
	args = append(args, b.args...)

	if len(b.where) > 0 {
		sb.WriteString(" where ")
		sb.WriteString(strings.Join(b.where, " and "))
		args = append(args, b.wargs...)
	}
	return sb.String(), args
}
