package aot

import (
	"querykit/cache"
	"querykit/query"
)

// IResolver 查询解析能力的抽象，便于在解析器外层叠加缓存等装饰。
type IResolver interface {
	Resolve(m *QueryMethod, rt *query.ReturnedType) (*AotQueries, error)
}

// CachedResolver 在解析器外层叠加的查询对缓存。
//
// 解析器本身是纯函数，缓存语义因此很简单：同名方法命中即复用，
// 解析失败不缓存。键为命名查询约定名（实体名.方法名或其覆盖），
// 与命名查询的查找键天然一致。
type CachedResolver struct {
	delegate IResolver
	queries  *cache.Cache[string, *AotQueries]
}

// NewCachedResolver 包装 delegate，按约定名缓存解析结果。
func NewCachedResolver(delegate IResolver, cfg cache.Config) *CachedResolver {
	if cfg.Name == "" {
		cfg.Name = "aot_queries"
	}
	return &CachedResolver{
		delegate: delegate,
		queries:  cache.New[string, *AotQueries](cfg),
	}
}

func (c *CachedResolver) Resolve(m *QueryMethod, rt *query.ReturnedType) (*AotQueries, error) {
	if m == nil || rt == nil {
		return c.delegate.Resolve(m, rt)
	}

	key := m.NamedQueryName()
	if cached, ok := c.queries.Get(key); ok {
		return cached, nil
	}

	resolved, err := c.delegate.Resolve(m, rt)
	if err != nil {
		return nil, err
	}
	c.queries.Set(key, resolved)
	return resolved, nil
}

// Stats 返回底层缓存统计。
func (c *CachedResolver) Stats() cache.CacheStats {
	return c.queries.Stats()
}
