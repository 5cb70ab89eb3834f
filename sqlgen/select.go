package sqlgen

import (
	"strconv"
	"strings"

	"querykit/query"
)

// SelectBuilder 查询语句构建器。
type SelectBuilder struct {
	cols     []string
	exprs    []string
	distinct bool
	table    string
	where    []string
	args     []any
	order    []string
	limit    int
	offset   int64
}

// NewSelect 创建整行选择的构建器。
func NewSelect() *SelectBuilder { return &SelectBuilder{cols: []string{"*"}} }

// Columns 覆盖选择列。列名经安全校验。
func (b *SelectBuilder) Columns(columns ...string) *SelectBuilder {
	if len(columns) == 0 {
		return b
	}
	safe := make([]string, 0, len(columns))
	for _, c := range columns {
		if c != "*" {
			mustSafe("column", c)
		}
		safe = append(safe, c)
	}
	b.cols = safe
	b.exprs = nil
	return b
}

// Expr 以原样表达式作为选择列（如 count(*)、1）。
// 表达式来自代码常量，不做校验。
func (b *SelectBuilder) Expr(exprs ...string) *SelectBuilder {
	b.exprs = exprs
	return b
}

// Distinct 设置去重。
func (b *SelectBuilder) Distinct(distinct bool) *SelectBuilder {
	b.distinct = distinct
	return b
}

// From 设置表名。
func (b *SelectBuilder) From(table string) *SelectBuilder {
	mustSafe("table", table)
	b.table = table
	return b
}

// Where 追加合取条件片段。
func (b *SelectBuilder) Where(cond string, args ...any) *SelectBuilder {
	if cond != "" {
		b.where = append(b.where, cond)
		b.args = append(b.args, args...)
	}
	return b
}

// OrderBy 按排序规约追加排序列。
func (b *SelectBuilder) OrderBy(sort query.Sort) *SelectBuilder {
	for _, order := range sort {
		mustSafe("order column", order.Property)
		ref := order.Property
		if order.IgnoreCase {
			ref = "lower(" + ref + ")"
		}
		if order.Descending {
			ref += " desc"
		} else {
			ref += " asc"
		}
		b.order = append(b.order, ref)
	}
	return b
}

// Limit 设置结果集最大行数。
//
// 约定：
//   - n > 0：生成 limit 子句；
//   - n == 0：不生成 limit 子句；
//   - n < 0：视为编程错误，直接 panic。
func (b *SelectBuilder) Limit(n int) *SelectBuilder {
	if n < 0 {
		panic("sqlgen: limit cannot be negative")
	}
	b.limit = n
	return b
}

// Offset 设置结果集偏移量，约定同 Limit。
func (b *SelectBuilder) Offset(n int64) *SelectBuilder {
	if n < 0 {
		panic("sqlgen: offset cannot be negative")
	}
	b.offset = n
	return b
}

// Build 产出语句文本与参数。可重复调用，不污染构建器状态。
func (b *SelectBuilder) Build() (string, []any) {
	var sb strings.Builder
	sb.WriteString("select ")
	if b.distinct {
		sb.WriteString("distinct ")
	}
	if len(b.exprs) > 0 {
		sb.WriteString(strings.Join(b.exprs, ", "))
	} else {
		sb.WriteString(strings.Join(b.cols, ", "))
	}
	sb.WriteString(" from ")
	sb.WriteString(b.table)

	if len(b.where) > 0 {
		sb.WriteString(" where ")
		sb.WriteString(strings.Join(b.where, " and "))
	}
	if len(b.order) > 0 {
		sb.WriteString(" order by ")
		sb.WriteString(strings.Join(b.order, ", "))
	}
	if b.limit > 0 {
		sb.WriteString(" limit ")
		sb.WriteString(strconv.Itoa(b.limit))
	}
	if b.offset > 0 {
		sb.WriteString(" offset ")
		sb.WriteString(strconv.FormatInt(b.offset, 10))
	}
	return sb.String(), b.args
}
