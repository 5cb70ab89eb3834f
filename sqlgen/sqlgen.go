// Package sqlgen 提供纯函数式的 SQL 语句构建器。
//
// 构建器只负责拼装文本与参数切片，不持有连接、不执行语句；
// 占位符统一为 ?，方言重绑由会话层完成。标识符（表名、列名、
// 排序列）一律经安全校验，非法标识符直接 panic：它们来自代码
// 而非用户输入，出现非法值属编程错误。
package sqlgen

import "strings"

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

func mustSafe(kind, name string) {
	if !isSafeIdentifier(name) {
		panic("sqlgen: unsafe " + kind + " " + name)
	}
}
