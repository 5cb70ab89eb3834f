package query

import (
	"querykit/errors"
	"querykit/query/dialect"
)

// RewriteRequest 单次改写请求：可选排序 + 目标结果形状。
// 按调用构造、用完即弃。
type RewriteRequest struct {
	Sort         Sort
	ReturnedType *ReturnedType
}

// Enhancer 查询分类与改写器。
//
// 别名、投影、构造器表达式在构造时计算一次并缓存；改写只新增
// 排序/计数语义，不改变别名与投影形状，因此不会重新计算。
type Enhancer struct {
	query          IQueryProvider
	dialect        dialect.Dialect
	hasConstructor bool
	alias          string
	projection     string
}

// NewEnhancer 以未知方言创建改写器。
func NewEnhancer(q IQueryProvider) (*Enhancer, error) {
	return NewEnhancerWithDialect(q, dialect.New(""))
}

// NewEnhancerWithDialect 创建改写器并绑定原生方言。
// 空白查询文本是用法错误，立即拒绝。
func NewEnhancerWithDialect(q IQueryProvider, d dialect.Dialect) (*Enhancer, error) {
	if q == nil {
		return nil, errors.NewError(errors.ErrCodeInvalidInput, "query provider must not be nil")
	}
	text := q.QueryString()
	if isBlank(text) {
		return nil, errors.NewError(errors.ErrCodeInvalidInput, "query string must not be blank")
	}

	return &Enhancer{
		query:          q,
		dialect:        d,
		hasConstructor: HasConstructorExpression(text),
		alias:          DetectAlias(text),
		projection:     GetProjection(text),
	}, nil
}

// Query 返回底层查询。
func (e *Enhancer) Query() IQueryProvider { return e.query }

// HasConstructorExpression 查询是否包含构造器表达式。
func (e *Enhancer) HasConstructorExpression() bool { return e.hasConstructor }

// DetectAlias 返回构造时缓存的结果别名；未检测到时为空串。
func (e *Enhancer) DetectAlias() string { return e.alias }

// GetProjection 返回构造时缓存的投影子句。
func (e *Enhancer) GetProjection() string { return e.projection }

// IsDefaultProjection 是否为默认（整实体）投影：
// 投影恰为结果别名，或根本没有 select 子句。
func (e *Enhancer) IsDefaultProjection() bool {
	return e.projection == "" || (e.alias != "" && e.projection == e.alias)
}

// Rewrite 按请求改写查询文本。
//
// 非 SELECT 查询直接失败，绝不静默返回原文。结果形状需要自定义构造
// 且带必选属性时，先把投影收窄为该属性列表，再注入排序。
func (e *Enhancer) Rewrite(req RewriteRequest) (string, error) {
	text := e.query.QueryString()

	if !IsSelectQuery(text) {
		return "", errors.NewError(errors.ErrCodeUnsupported,
			"cannot apply sorting to non-select queries; query type not supported for sorting operations")
	}

	if rt := req.ReturnedType; rt != nil && rt.NeedsCustomConstruction() && rt.HasInputProperties() && !e.hasConstructor {
		text = replaceProjection(text, rt.InputProperties(), e.alias)
	}

	return ApplySorting(text, req.Sort, e.alias), nil
}

// CreateCountQueryFor 派生仅计数变体。
//
// countProjection 非空时覆盖默认的“按别名计数”。原生/可移植方言
// 的计数形状不同，这里把方言标记透传给派生工具而不是假定其一。
func (e *Enhancer) CreateCountQueryFor(countProjection string) (string, error) {
	text := e.query.QueryString()

	if !IsSelectQuery(text) {
		return "", errors.NewError(errors.ErrCodeUnsupported,
			"cannot create count query for non-select queries; query type not supported for count operations")
	}

	return CreateCountQueryFor(text, countProjection, e.query.IsNative(), e.dialect.CountColumn()), nil
}

func isBlank(s string) bool {
	for _, r := range s {
		if r != ' ' && r != '\t' && r != '\n' && r != '\r' {
			return false
		}
	}
	return true
}
