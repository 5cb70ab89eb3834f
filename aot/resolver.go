package aot

import (
	"context"

	"querykit/errors"
	"querykit/logging"
	"querykit/query"
)

// Resolver 查询来源解析器。
//
// 三个互斥来源按严格优先级组织为决策表（首个命中生效）：
// 显式字符串 → 命名查询 → 谓词树派生。三档计数解析
// （显式计数文本 → 命名计数查询 → 来源特定的默认派生）
// 收敛在 resolveCount 一个辅助函数里，由各来源提供默认派生闭包。
type Resolver struct {
	registry     INamedQueryRegistry
	catalog      INamedQueryCatalog
	creator      IQueryCreator
	countCreator ICountQueryCreator
	logger       logging.Logger
}

// ResolverConfig 解析器装配参数。
type ResolverConfig struct {
	// Registry 配置层命名查询注册表，可为 nil
	Registry INamedQueryRegistry

	// Catalog 后端命名查询目录，可为 nil
	Catalog INamedQueryCatalog

	// Creator 谓词树编译器；仅使用来源 1/2 时可为 nil
	Creator IQueryCreator

	// CountCreator 计数特化编译器
	CountCreator ICountQueryCreator

	// Logger 为 nil 时不输出日志
	Logger logging.Logger
}

// NewResolver 创建解析器。
func NewResolver(cfg ResolverConfig) *Resolver {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewNoopLogger()
	}
	return &Resolver{
		registry:     cfg.Registry,
		catalog:      cfg.Catalog,
		creator:      cfg.Creator,
		countCreator: cfg.CountCreator,
		logger:       logger,
	}
}

// querySource 决策表的一行：命中条件 + 构建函数。
type querySource struct {
	kind    SourceKind
	applies func(m *QueryMethod, rt *query.ReturnedType) bool
	build   func(m *QueryMethod, rt *query.ReturnedType) (*AotQueries, error)
}

// Resolve 把方法意图解析为查询对。
//
// 纯函数：无隐藏缓存、无生命周期关注；解析失败即装配失败，
// 该方法对应的仓储不可用。
func (r *Resolver) Resolve(m *QueryMethod, rt *query.ReturnedType) (*AotQueries, error) {
	if m == nil {
		return nil, errors.NewError(errors.ErrCodeInvalidInput, "query method must not be nil")
	}
	if rt == nil {
		return nil, errors.NewError(errors.ErrCodeInvalidInput, "returned type must not be nil")
	}

	sources := []querySource{
		{
			kind:    SourceDeclared,
			applies: func(m *QueryMethod, _ *query.ReturnedType) bool { return m.HasDeclaredQuery() },
			build:   r.buildStringQuery,
		},
		{
			kind: SourceNamed,
			applies: func(m *QueryMethod, rt *query.ReturnedType) bool {
				return r.hasNamedQuery(m.NamedQueryName(), rt)
			},
			build: r.buildNamedQuery,
		},
		{
			kind:    SourceDerived,
			applies: func(m *QueryMethod, _ *query.ReturnedType) bool { return m.Tree != nil },
			build:   r.buildTreeQuery,
		},
	}

	for _, source := range sources {
		if !source.applies(m, rt) {
			continue
		}
		r.logger.Debug(context.Background(), "resolving repository query",
			logging.String("method", m.Name),
			logging.String("entity", m.EntityName),
			logging.String("source", string(source.kind)))
		return source.build(m, rt)
	}

	return nil, errors.NewErrorf(errors.ErrCodeConfiguration,
		"no query source for method %q on entity %q: no declared query, no named query %q, no derivable predicate tree",
		m.Name, m.EntityName, m.NamedQueryName())
}

// buildStringQuery 来源 1：显式内联查询。
func (r *Resolver) buildStringQuery(m *QueryMethod, rt *query.ReturnedType) (*AotQueries, error) {
	text := query.SubstituteEntityName(m.Query, m.EntityName)
	provider := providerFor(text, m.NativeQuery)

	enhancer, err := query.NewEnhancer(provider)
	if err != nil {
		return nil, err
	}

	data := &AotQuery{provider: provider, source: SourceDeclared}
	if enhancer.HasConstructorExpression() || enhancer.IsDefaultProjection() {
		data.ctorOrDefaultProject = true
	}

	// 整实体选择无法收窄到投影的字段子集：具体类投影带必选属性时
	// 改写为恰好选择这些属性。接口式投影由执行期元组选择处理；
	// 构造器表达式视为作者定稿的选择列表，不再收窄。
	if rt.IsProjecting() && rt.HasInputProperties() && !rt.IsInterface() &&
		!enhancer.HasConstructorExpression() {
		rewritten, err := enhancer.Rewrite(query.RewriteRequest{ReturnedType: rt})
		if err != nil {
			return nil, err
		}
		data = &AotQuery{
			provider:             providerFor(rewritten, m.NativeQuery),
			source:               SourceDeclared,
			ctorOrDefaultProject: data.ctorOrDefaultProject,
		}
	}

	count, err := r.resolveCount(m, rt, m.NativeQuery, func() (*AotQuery, error) {
		countText, err := enhancer.CreateCountQueryFor(m.CountProjection)
		if err != nil {
			return nil, err
		}
		return &AotQuery{provider: providerFor(countText, m.NativeQuery), source: SourceDeclared}, nil
	})
	if err != nil {
		return nil, err
	}

	return NewAotQueries(data, count)
}

// buildNamedQuery 来源 2：命名/存储查询。命名查询视为定稿文本，
// 不做实体名替换。
func (r *Resolver) buildNamedQuery(m *QueryMethod, rt *query.ReturnedType) (*AotQueries, error) {
	data, err := r.createNamedAotQuery(m.NamedQueryName(), rt, m.NativeQuery)
	if err != nil {
		return nil, err
	}

	count, err := r.resolveCount(m, rt, data.IsNative(), func() (*AotQuery, error) {
		enhancer, err := query.NewEnhancer(data.Query())
		if err != nil {
			return nil, err
		}
		countText, err := enhancer.CreateCountQueryFor(m.CountProjection)
		if err != nil {
			return nil, err
		}
		return &AotQuery{provider: providerFor(countText, data.IsNative()), source: SourceNamed}, nil
	})
	if err != nil {
		return nil, err
	}

	return NewAotQueries(data, count)
}

// buildTreeQuery 来源 3：谓词树派生。
func (r *Resolver) buildTreeQuery(m *QueryMethod, rt *query.ReturnedType) (*AotQueries, error) {
	if r.creator == nil {
		return nil, errors.NewError(errors.ErrCodeConfiguration,
			"method requires derived query but no query creator is configured")
	}

	tree := m.Tree
	text, bindings, err := r.creator.CreateQuery(tree, rt)
	if err != nil {
		return nil, errors.WrapError(err, errors.ErrCodeConfiguration, "derive query from predicate tree")
	}

	data := &AotQuery{
		provider:         query.NewQuery(text),
		source:           SourceDerived,
		bindings:         bindings,
		limit:            tree.Limit,
		deleteQuery:      tree.Delete,
		existsProjection: tree.Exists,
	}

	count, err := r.resolveCount(m, rt, false, func() (*AotQuery, error) {
		if r.countCreator == nil {
			return nil, errors.NewError(errors.ErrCodeConfiguration,
				"method requires derived count query but no count query creator is configured")
		}
		countText, countBindings, err := r.countCreator.CreateCountQuery(tree, rt)
		if err != nil {
			return nil, errors.WrapError(err, errors.ErrCodeConfiguration, "derive count query from predicate tree")
		}
		return &AotQuery{provider: query.NewQuery(countText), source: SourceDerived, bindings: countBindings}, nil
	})
	if err != nil {
		return nil, err
	}

	return NewAotQueries(data, count)
}

// resolveCount 三档计数解析，先到先得：
//
//	(a) 方法上的显式计数文本；
//	(b) 约定名（或覆盖名）的命名计数查询；
//	(c) 来源特定的默认派生（由调用方闭包给出）。
func (r *Resolver) resolveCount(m *QueryMethod, rt *query.ReturnedType, native bool,
	derive func() (*AotQuery, error)) (*AotQuery, error) {

	if m.HasDeclaredCountQuery() {
		text := query.SubstituteEntityName(m.CountQuery, m.EntityName)
		return &AotQuery{provider: providerFor(text, native), source: SourceDeclared}, nil
	}

	if r.hasNamedQuery(m.NamedCountQueryName(), rt) {
		return r.createNamedAotQuery(m.NamedCountQueryName(), rt, native)
	}

	return derive()
}

// hasNamedQuery 注册表或目录中任一处存在即视为可用。
func (r *Resolver) hasNamedQuery(name string, rt *query.ReturnedType) bool {
	if r.registry != nil && r.registry.HasQuery(name) {
		return true
	}
	return r.lookupCatalog(name, rt) != nil
}

// lookupCatalog 按固定候选类型序列搜索后端目录。
func (r *Resolver) lookupCatalog(name string, rt *query.ReturnedType) *NamedQueryRef {
	if r.catalog == nil {
		return nil
	}
	for _, candidate := range candidateResultTypes(rt) {
		if ref, ok := r.catalog.Lookup(candidate, name); ok {
			return ref
		}
	}
	return nil
}

// createNamedAotQuery 按名构造查询：优先注册表，其次后端目录。
//
// 目录引用必须能确定方言：方法侧未声明原生且目录亦无自述元数据时，
// 以状态错误失败，绝不猜测。
func (r *Resolver) createNamedAotQuery(name string, rt *query.ReturnedType, forceNative bool) (*AotQuery, error) {
	if r.registry != nil {
		if text, ok := r.registry.QueryFor(name); ok {
			return &AotQuery{provider: providerFor(text, forceNative), name: name, source: SourceNamed}, nil
		}
	}

	ref := r.lookupCatalog(name, rt)
	if ref == nil {
		return nil, errors.NewErrorf(errors.ErrCodeConfiguration,
			"named query %q not found in registry or backend catalog (searched candidate types %v)",
			name, candidateResultTypes(rt))
	}
	if ref.Query == "" {
		return nil, errors.NewErrorf(errors.ErrCodeConfiguration,
			"cannot extract query text from named query %q", name)
	}

	native := forceNative
	if !native {
		if !ref.NativeKnown {
			return nil, errors.NewErrorf(errors.ErrCodeState,
				"cannot determine whether named query %q is native: no declared flag and no introspectable metadata", name)
		}
		native = ref.Native
	}

	return &AotQuery{provider: providerFor(ref.Query, native), name: name, source: SourceNamed}, nil
}
