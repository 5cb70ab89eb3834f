// Package aot 在仓储装配阶段把方法意图解析为预计算的查询对。
//
// 解析是纯函数：同样的方法意图总是产出同样的 AotQueries，内部不做
// 任何缓存，由调用方决定何时解析、如何缓存（见 CachedResolver）。
// 所有无需数据即可发现的失败（命名查询缺失、方言无法确定）都在
// 解析时暴露，不推迟到首次调用。
package aot

import (
	"querykit/errors"
	"querykit/query"
)

// SourceKind 查询来源。
type SourceKind string

const (
	// SourceDeclared 显式内联查询字符串
	SourceDeclared SourceKind = "declared"

	// SourceNamed 命名/存储查询引用
	SourceNamed SourceKind = "named"

	// SourceDerived 由方法名谓词树派生
	SourceDerived SourceKind = "derived"
)

// ParameterBinding 谓词树派生查询的参数槽位。
// Position 从 1 开始；为 0 时按 Name 绑定。
type ParameterBinding struct {
	Name     string
	Position int
}

// AotQuery 解析完成的单个查询，创建后不可变。
type AotQuery struct {
	provider             query.IQueryProvider
	name                 string
	source               SourceKind
	ctorOrDefaultProject bool
	bindings             []ParameterBinding
	limit                int
	deleteQuery          bool
	existsProjection     bool
}

// Query 返回底层查询文本提供者。
func (q *AotQuery) Query() query.IQueryProvider { return q.provider }

// QueryString 返回查询文本。
func (q *AotQuery) QueryString() string { return q.provider.QueryString() }

// IsNative 是否为原生方言。
func (q *AotQuery) IsNative() bool { return q.provider.IsNative() }

// Name 命名查询名；非命名来源时为空。
func (q *AotQuery) Name() string { return q.name }

// Source 查询来源。
func (q *AotQuery) Source() SourceKind { return q.source }

// HasConstructorExpressionOrDefaultProjection 查询是否已被标记为
// 构造器表达式或默认整实体投影——下游消费者据此跳过自动投影改写。
func (q *AotQuery) HasConstructorExpressionOrDefaultProjection() bool {
	return q.ctorOrDefaultProject
}

// Bindings 返回参数槽位副本。
func (q *AotQuery) Bindings() []ParameterBinding {
	out := make([]ParameterBinding, len(q.bindings))
	copy(out, q.bindings)
	return out
}

// Limit 谓词树携带的结果上限；0 表示无限制。
func (q *AotQuery) Limit() int { return q.limit }

// IsDelete 是否为删除查询。
func (q *AotQuery) IsDelete() bool { return q.deleteQuery }

// IsExistsProjection 是否为存在性探测。
func (q *AotQuery) IsExistsProjection() bool { return q.existsProjection }

// AotQueries 预计算的 (数据查询, 计数查询) 对。
//
// 不变式：两侧方言一致。创建于装配期，此后只读，可被任意多个
// 调用并发读取。
type AotQueries struct {
	data  *AotQuery
	count *AotQuery
}

// NewAotQueries 组装查询对并校验方言一致性。
func NewAotQueries(data, count *AotQuery) (*AotQueries, error) {
	if data == nil || count == nil {
		return nil, errors.NewError(errors.ErrCodeInvalidInput, "data and count query must not be nil")
	}
	if data.IsNative() != count.IsNative() {
		return nil, errors.NewErrorf(errors.ErrCodeConfiguration,
			"data query and count query disagree on dialect: data native=%v, count native=%v",
			data.IsNative(), count.IsNative())
	}
	return &AotQueries{data: data, count: count}, nil
}

// Data 数据查询。
func (q *AotQueries) Data() *AotQuery { return q.data }

// Count 计数查询。
func (q *AotQueries) Count() *AotQuery { return q.count }

// providerFor 按方言构造查询文本提供者。
func providerFor(text string, native bool) query.IQueryProvider {
	if native {
		return query.NewNativeQuery(text)
	}
	return query.NewQuery(text)
}
