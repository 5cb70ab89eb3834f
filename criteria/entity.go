// Package criteria 提供可组合的动态查询构件。
//
// 谓词以 SQL 片段 + 参数切片表示，占位符统一使用 ?，由会话层按
// 方言重绑。规约（Specification）是谓词的可组合工厂，同一棵规约树
// 可被查找、计数、存在性、更新、删除共用。
package criteria

import "strings"

// EntityInfo 实体的最小元数据：查询构建只需要名称、表名、
// 标识属性与可引用属性集合。
type EntityInfo struct {
	// Name 实体名（可移植查询文本中的实体引用）
	Name string

	// Table 表名（原生查询与执行器使用）
	Table string

	// IDProperty 标识属性名，键集续扫的决胜列
	IDProperty string

	// Properties 可引用属性；为空表示不做属性白名单校验
	Properties []string
}

// HasProperty 属性是否可引用。未声明属性白名单时放行所有
// 格式合法的标识符。
func (e *EntityInfo) HasProperty(name string) bool {
	if len(e.Properties) == 0 {
		return isSafeIdentifier(name)
	}
	for _, p := range e.Properties {
		if p == name {
			return true
		}
	}
	return false
}

// isSafeIdentifier 判断简单标识符是否合法。
//
// 允许形式：
//   - 单一标识符：foo, bar_1
//   - 带点限定名：table.column
//
// 规则（按段）：
//   - 每段不能为空；
//   - 首字符必须是字母或下划线 [A-Za-z_]；
//   - 后续字符必须是字母、数字或下划线 [A-Za-z0-9_]。
func isSafeIdentifier(name string) bool {
	if name == "" {
		return false
	}
	parts := strings.Split(name, ".")
	for _, part := range parts {
		if part == "" {
			return false
		}
		for i := 0; i < len(part); i++ {
			ch := part[i]
			if i == 0 {
				if !((ch >= 'a' && ch <= 'z') ||
					(ch >= 'A' && ch <= 'Z') ||
					ch == '_') {
					return false
				}
			} else {
				if !((ch >= 'a' && ch <= 'z') ||
					(ch >= 'A' && ch <= 'Z') ||
					(ch >= '0' && ch <= '9') ||
					ch == '_') {
					return false
				}
			}
		}
	}
	return true
}
