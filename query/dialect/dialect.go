// Package dialect 抽象原生 SQL 方言差异。
//
// 本引擎区分可移植声明式方言与后端原生方言；后者的计数占位列、
// 占位符形式、标识符引用随数据库不同，由本包统一描述。
package dialect

import (
	"strconv"
	"strings"
)

// Name 标准化的数据库方言名称
type Name string

const (
	NameMySQL    Name = "mysql"
	NameSQLite   Name = "sqlite"
	NamePostgres Name = "postgres"
	NameUnknown  Name = ""
)

// Dialect 表示原生方言能力的值类型。
type Dialect struct {
	name Name
}

// New 根据字符串构造方言（大小写不敏感）
func New(name string) Dialect {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "mysql":
		return Dialect{name: NameMySQL}
	case "sqlite", "sqlite3":
		return Dialect{name: NameSQLite}
	case "postgres", "postgresql":
		return Dialect{name: NamePostgres}
	default:
		return Dialect{name: NameUnknown}
	}
}

// Name 返回标准化方言名
func (d Dialect) Name() Name {
	return d.name
}

// CountColumn 原生计数查询使用的占位列。
//
// 可移植方言的计数目标是结果别名；原生 SQL 没有该语义，统一使用 *。
// 单独建模是为了让计数派生把方言标记透传，而不是各处假定其一。
func (d Dialect) CountColumn() string {
	return "*"
}

// QuoteIdentifier 根据方言对标识符加引号（如表名/列名）。
//
// 约定：
//   - 支持 schema.table、table.column 等带点形式，按段分别加引号；
//   - MySQL 使用反引号，Postgres/SQLite 使用双引号；
//   - 未知方言返回原始字符串；
//   - 不校验标识符语法，只负责按方言加引号。
func (d Dialect) QuoteIdentifier(name string) string {
	if name == "" {
		return ""
	}
	parts := strings.Split(name, ".")
	for i, p := range parts {
		if p == "" {
			continue
		}
		switch d.name {
		case NameMySQL:
			parts[i] = "`" + p + "`"
		case NameSQLite, NamePostgres:
			parts[i] = `"` + p + `"`
		default:
			// 未知方言：保持原样
		}
	}
	return strings.Join(parts, ".")
}

// Rebind 将通用占位符 ? 转换为方言特定形式。
//
// 仅对 Postgres 做替换，把 ? 依次替换为 $1、$2...；其他方言原样返回。
// 实现是简单字符扫描，不解析 SQL 语法，字符串字面量中的 ? 也会被
// 替换——调用方应以参数化方式传入含 ? 的值。
func (d Dialect) Rebind(query string) string {
	if query == "" {
		return query
	}
	switch d.name {
	case NamePostgres:
		var sb strings.Builder
		sb.Grow(len(query) + 4)
		argIndex := 1
		for i := 0; i < len(query); i++ {
			ch := query[i]
			if ch == '?' {
				sb.WriteByte('$')
				sb.WriteString(strconv.Itoa(argIndex))
				argIndex++
			} else {
				sb.WriteByte(ch)
			}
		}
		return sb.String()
	default:
		return query
	}
}

// SupportsDeleteLimit 当前方言是否支持 DELETE ... LIMIT 语法
func (d Dialect) SupportsDeleteLimit() bool {
	switch d.name {
	case NameMySQL, NameSQLite:
		return true
	default:
		return false
	}
}
