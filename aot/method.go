package aot

import "strings"

// QueryMethod 一个仓储方法声明的查询意图。
//
// 三个互斥来源，严格按优先级取舍：
//  1. Query 非空白 → 显式内联查询；
//  2. 注册表/目录中存在约定名（或其覆盖）的命名查询；
//  3. Tree 非空 → 按方法名谓词树派生。
type QueryMethod struct {
	// Name 方法名，如 findByName
	Name string

	// EntityName 领域实体名，用于占位符替换与命名查询约定名
	EntityName string

	// Query 显式内联查询文本，可含 #{#entityName} 占位符
	Query string

	// NativeQuery 显式声明为原生方言
	NativeQuery bool

	// CountQuery 显式计数查询文本
	CountQuery string

	// CountProjection 计数投影覆盖（如 u.id）
	CountProjection string

	// NamedQuery 命名查询名覆盖；为空时使用约定名
	NamedQuery string

	// Tree 方法名解析出的谓词树（外部语法解析器产物）
	Tree *PartTree
}

// NamedQueryName 命名查询的实际查找名：显式覆盖优先，
// 否则使用约定名 <实体名>.<方法名>。
func (m *QueryMethod) NamedQueryName() string {
	if m.NamedQuery != "" {
		return m.NamedQuery
	}
	return m.EntityName + "." + m.Name
}

// NamedCountQueryName 计数命名查询的约定名。
func (m *QueryMethod) NamedCountQueryName() string {
	return m.NamedQueryName() + ".count"
}

// HasDeclaredQuery 是否携带非空白的显式查询文本。
func (m *QueryMethod) HasDeclaredQuery() bool {
	return strings.TrimSpace(m.Query) != ""
}

// HasDeclaredCountQuery 是否携带非空白的显式计数查询文本。
func (m *QueryMethod) HasDeclaredCountQuery() bool {
	return strings.TrimSpace(m.CountQuery) != ""
}
