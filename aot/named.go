package aot

import "querykit/query"

// INamedQueryRegistry 配置层的命名查询注册表，按名存取最终文本。
// 注册表中的查询被视为定稿文本，不再做实体名替换。
type INamedQueryRegistry interface {
	// HasQuery 是否存在指定名称的查询
	HasQuery(name string) bool

	// QueryFor 返回指定名称的查询文本
	QueryFor(name string) (string, bool)
}

// NamedQueryRegistry 基于内存映射的注册表实现。
// 约定在装配阶段完成注册，此后只读。
type NamedQueryRegistry struct {
	queries map[string]string
}

// NewNamedQueryRegistry 创建空注册表。
func NewNamedQueryRegistry() *NamedQueryRegistry {
	return &NamedQueryRegistry{queries: make(map[string]string)}
}

// Register 注册命名查询，重名覆盖。
func (r *NamedQueryRegistry) Register(name, queryText string) {
	r.queries[name] = queryText
}

func (r *NamedQueryRegistry) HasQuery(name string) bool {
	_, ok := r.queries[name]
	return ok
}

func (r *NamedQueryRegistry) QueryFor(name string) (string, bool) {
	text, ok := r.queries[name]
	return text, ok
}

// NamedQueryRef 后端目录中的存储查询引用。
//
// NativeKnown 表示后端是否能自述其方言；为 false 且方法侧也未
// 显式声明时，解析以状态错误失败，而不是猜测方言。
type NamedQueryRef struct {
	Name        string
	Query       string
	Native      bool
	NativeKnown bool
}

// INamedQueryCatalog 持久化后端自身的命名查询目录，
// 按 (候选结果类型, 查询名) 查找。
type INamedQueryCatalog interface {
	Lookup(resultType, name string) (*NamedQueryRef, bool)
}

// StaticCatalog 基于内存映射的目录实现（装配期填充，此后只读）。
type StaticCatalog struct {
	refs map[string]map[string]*NamedQueryRef
}

// NewStaticCatalog 创建空目录。
func NewStaticCatalog() *StaticCatalog {
	return &StaticCatalog{refs: make(map[string]map[string]*NamedQueryRef)}
}

// Add 在指定结果类型下登记查询引用。
func (c *StaticCatalog) Add(resultType string, ref *NamedQueryRef) {
	if ref == nil {
		return
	}
	byName, ok := c.refs[resultType]
	if !ok {
		byName = make(map[string]*NamedQueryRef)
		c.refs[resultType] = byName
	}
	byName[ref.Name] = ref
}

func (c *StaticCatalog) Lookup(resultType, name string) (*NamedQueryRef, bool) {
	byName, ok := c.refs[resultType]
	if !ok {
		return nil, false
	}
	ref, ok := byName[name]
	return ref, ok
}

// ObjectResultType 目录查找使用的通用对象类型名。
const ObjectResultType = "object"

// candidateResultTypes 目录查找的固定候选类型序列：通用对象类型、
// 领域类型、声明返回类型、装箱数值类型与 void。
func candidateResultTypes(rt *query.ReturnedType) []string {
	candidates := []string{
		ObjectResultType,
		rt.DomainType(),
		rt.TypeName(),
		"int64",
		"int32",
		"void",
	}

	seen := make(map[string]struct{}, len(candidates))
	out := candidates[:0]
	for _, c := range candidates {
		if c == "" {
			continue
		}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}
