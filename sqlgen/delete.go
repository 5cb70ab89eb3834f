package sqlgen

import "strings"

// DeleteBuilder 删除语句构建器。
type DeleteBuilder struct {
	table string
	where []string
	args  []any
}

// NewDelete 创建删除构建器。不带 Where 的构建产出全表删除。
func NewDelete(table string) *DeleteBuilder {
	mustSafe("table", table)
	return &DeleteBuilder{table: table}
}

// Where 追加合取条件片段。
func (b *DeleteBuilder) Where(cond string, args ...any) *DeleteBuilder {
	if cond != "" {
		b.where = append(b.where, cond)
		b.args = append(b.args, args...)
	}
	return b
}

// Build 产出语句文本与参数。
func (b *DeleteBuilder) Build() (string, []any) {
	var sb strings.Builder
	sb.WriteString("delete from ")
	sb.WriteString(b.table)
	if len(b.where) > 0 {
		sb.WriteString(" where ")
		sb.WriteString(strings.Join(b.where, " and "))
	}
	return sb.String(), b.args
}
