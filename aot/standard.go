package aot

import (
	"querykit/errors"
	"querykit/query"
)

// 仓储的内建操作（整表计数、全表删除、按标识探测存在）没有方法
// 声明可供解析，查询文本由实体元数据按模板生成，与声明方法一样
// 在装配期物化。

// ResolveCountAll 整表计数查询。
func (r *Resolver) ResolveCountAll(entityName string) (*AotQuery, error) {
	if entityName == "" {
		return nil, errors.NewError(errors.ErrCodeInvalidInput, "entity name must not be blank")
	}
	return &AotQuery{
		provider: query.NewQuery(query.CountAllQueryString(entityName, "x")),
		source:   SourceDerived,
	}, nil
}

// ResolveDeleteAll 全表删除查询。
func (r *Resolver) ResolveDeleteAll(entityName string) (*AotQuery, error) {
	if entityName == "" {
		return nil, errors.NewError(errors.ErrCodeInvalidInput, "entity name must not be blank")
	}
	return &AotQuery{
		provider:    query.NewQuery(query.QueryStringFor(query.DeleteAllQueryTemplate, entityName)),
		source:      SourceDerived,
		deleteQuery: true,
	}, nil
}

// ResolveExistsByID 按标识属性探测存在性的计数查询。
// 复合主键按属性逐个以命名参数等值比较。
func (r *Resolver) ResolveExistsByID(entityName string, idAttributes []string) (*AotQuery, error) {
	if entityName == "" {
		return nil, errors.NewError(errors.ErrCodeInvalidInput, "entity name must not be blank")
	}
	if len(idAttributes) == 0 {
		return nil, errors.NewError(errors.ErrCodeConfiguration,
			"existence probe requires at least one identifier attribute")
	}
	return &AotQuery{
		provider:         query.NewQuery(query.ExistsQueryString(entityName, "x", idAttributes)),
		source:           SourceDerived,
		existsProjection: true,
	}, nil
}
