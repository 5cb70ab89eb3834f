package query

import (
	"fmt"
	"regexp"
	"strings"
)

// 查询文本的正则机制。
//
// 与手写解析器相比，正则方案对不规范空白、换行更宽容，代价是对嵌套
// 子查询只有启发式支持：别名取第一个主 from 之后的标识符，order by
// 剥离取最后一次出现到文本末尾。该启发式行为是约定的一部分，不要在
// 没有新证据的情况下扩大其覆盖面。
var (
	// from <实体> [as] <别名>
	aliasPattern = regexp.MustCompile(`(?i)\bfrom\s+([\w.$]+)(?:\s+(?:as\s+)?([A-Za-z]\w*))?`)

	// select [distinct] <投影> from
	projectionPattern = regexp.MustCompile(`(?is)^\s*select\s+(distinct\s+)?(.+?)\s+from\s`)

	// select new com.example.Dto(...)
	constructorPattern = regexp.MustCompile(`(?is)\bselect\s+(distinct\s+)?new\s+[\w.$]+\s*\(`)

	// 已存在的 order by 子句（取任意一次出现即视为已排序）
	orderByPattern = regexp.MustCompile(`(?is)\border\s+by\b`)

	// 剥离末尾 order by（启发式：匹配到文本结尾）
	trailingOrderByPattern = regexp.MustCompile(`(?is)\s+order\s+by\s+.+$`)

	selectPrefixPattern = regexp.MustCompile(`(?is)^(\s*select\s+)(distinct\s+)?(.+?)(\s+from\s.*)$`)
)

// 别名位置上不允许出现的保留字。
var aliasStopWords = map[string]struct{}{
	"where": {}, "group": {}, "order": {}, "having": {}, "join": {},
	"inner": {}, "outer": {}, "left": {}, "right": {}, "full": {},
	"cross": {}, "union": {}, "select": {}, "fetch": {}, "on": {},
	"set": {}, "limit": {}, "offset": {}, "and": {}, "or": {},
	"not": {}, "in": {}, "like": {}, "between": {}, "is": {}, "as": {},
}

// IsSelectQuery 判定文本是否为可读取查询。
//
// 三个条件满足其一即可：
//  1. 去除首尾空白、忽略大小写后以 select 开头；
//  2. 以 with 开头（公共表表达式等作用域前缀）；
//  3. 文本任意位置出现 from <实体> <别名> 模式——部分方言允许
//     select 关键字不在文本开头的读取查询。
//
// 空白文本属于用法错误，由 NewEnhancer 在构造时拒绝，这里按 false 处理。
func IsSelectQuery(text string) bool {
	trimmed := strings.ToLower(strings.TrimSpace(text))
	if trimmed == "" {
		return false
	}
	if strings.HasPrefix(trimmed, "select") || strings.HasPrefix(trimmed, "with") {
		return true
	}
	_, alias := findFromClause(text)
	return alias != ""
}

// findFromClause 定位主 from 子句，返回实体名与别名（可能为空）。
func findFromClause(text string) (entity, alias string) {
	m := aliasPattern.FindStringSubmatch(text)
	if m == nil {
		return "", ""
	}
	entity = m[1]
	alias = m[2]
	if _, reserved := aliasStopWords[strings.ToLower(alias)]; reserved {
		alias = ""
	}
	return entity, alias
}

// DetectAlias 探测查询声明的结果别名；未找到时返回空串，
// 此时排序属性回退为不带限定的写法。
func DetectAlias(text string) string {
	_, alias := findFromClause(text)
	return alias
}

// GetProjection 返回 select 与 from 之间的投影子句（去除 distinct 前缀）。
// 没有 select 子句时返回空串。
func GetProjection(text string) string {
	m := projectionPattern.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[2])
}

// HasConstructorExpression 是否包含构造器表达式（select new X(...)）。
func HasConstructorExpression(text string) bool {
	return constructorPattern.MatchString(text)
}

// hasDistinct select 是否声明了 distinct。
func hasDistinct(text string) bool {
	m := projectionPattern.FindStringSubmatch(text)
	return m != nil && m[1] != ""
}

// ApplySorting 把排序规约注入查询文本。
//
// 规则：
//   - 空排序原样返回；
//   - 已存在 order by 子句时在末尾以逗号追加，不产生重复子句；
//   - 未限定的属性名用检测到的别名限定；已限定（含点号）或函数
//     调用（含括号）的属性保持原样；
//   - IgnoreCase 的排序项包裹 lower(...)。
func ApplySorting(text string, sort Sort, alias string) string {
	if !sort.IsSorted() {
		return text
	}

	var sb strings.Builder
	sb.WriteString(text)
	if orderByPattern.MatchString(text) {
		sb.WriteString(", ")
	} else {
		sb.WriteString(" order by ")
	}

	for i, order := range sort {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(orderClause(order, alias))
	}

	return sb.String()
}

func orderClause(order Order, alias string) string {
	ref := order.Property
	if alias != "" && !strings.ContainsAny(ref, "(.") {
		ref = alias + "." + ref
	}
	if order.IgnoreCase {
		ref = "lower(" + ref + ")"
	}
	if order.Descending {
		return ref + " desc"
	}
	return ref + " asc"
}

// CreateCountQueryFor 从读取查询派生仅计数变体。
//
// 计数目标按优先级：
//  1. 调用方给定的 countProjection 覆盖；
//  2. 简单路径投影（如 u 或 u.name）原样计数，保留 distinct；
//  3. 复杂投影回退为计数别名；原生方言没有别名语义时使用
//     方言占位列 countColumn（可移植方言无别名时计数常量 1）。
//
// 末尾的 order by 子句一并剥离：计数结果与行序无关。
func CreateCountQueryFor(text, countProjection string, native bool, countColumn string) string {
	fromPart := fromClauseOf(text)
	if fromPart == "" {
		// 无法定位 from 子句时不做改写，调用方已通过 IsSelectQuery 把关
		return text
	}
	fromPart = trailingOrderByPattern.ReplaceAllString(fromPart, "")

	target := countTarget(text, countProjection, native, countColumn)
	return "select count(" + target + ") " + strings.TrimSpace(fromPart)
}

func countTarget(text, countProjection string, native bool, countColumn string) string {
	if strings.TrimSpace(countProjection) != "" {
		return strings.TrimSpace(countProjection)
	}

	distinct := hasDistinct(text)
	projection := GetProjection(text)
	if isSimplePath(projection) {
		if distinct {
			return "distinct " + projection
		}
		return projection
	}

	alias := DetectAlias(text)
	var target string
	switch {
	case native:
		if countColumn == "" {
			countColumn = "*"
		}
		target = countColumn
	case alias != "":
		target = alias
	default:
		target = "1"
	}
	if distinct && !native {
		return "distinct " + target
	}
	return target
}

// fromClauseOf 返回从主 from 关键字到文本末尾的部分。
func fromClauseOf(text string) string {
	loc := aliasPattern.FindStringIndex(text)
	if loc == nil {
		return ""
	}
	return text[loc[0]:]
}

// isSimplePath 投影是否为单一属性路径（可直接作为计数目标）。
func isSimplePath(projection string) bool {
	if projection == "" || projection == "*" {
		return false
	}
	if strings.ContainsAny(projection, ",()") {
		return false
	}
	if strings.HasPrefix(projection, "?") || strings.HasPrefix(projection, ":") {
		return false
	}
	return !strings.ContainsAny(projection, " \t\r\n")
}

// replaceProjection 以新的属性列表替换 select 子句中的投影。
// 属性用别名限定（有别名时）。用于把整实体查询收窄为具体类投影。
func replaceProjection(text string, properties []string, alias string) string {
	m := selectPrefixPattern.FindStringSubmatch(text)
	if m == nil || len(properties) == 0 {
		return text
	}

	refs := make([]string, 0, len(properties))
	for _, p := range properties {
		if alias != "" && !strings.ContainsAny(p, "(.") {
			refs = append(refs, alias+"."+p)
		} else {
			refs = append(refs, p)
		}
	}

	return m[1] + m[2] + strings.Join(refs, ", ") + m[4]
}

// 模板常量：%s 处替换为实体名。
const (
	// CountQueryTemplate 整表计数模板，第一个 %s 为计数占位列。
	CountQueryTemplate = "select count(%s) from %s x"

	// DeleteAllQueryTemplate 全表删除模板。
	DeleteAllQueryTemplate = "delete from %s x"

	// EntityNamePlaceholder 内联查询文本中的实体名占位符。
	EntityNamePlaceholder = "#{#entityName}"
)

// QueryStringFor 把模板中的实体名占位替换为具体实体名。
func QueryStringFor(template, entityName string) string {
	return fmt.Sprintf(template, entityName)
}

// CountAllQueryString 生成整表计数查询。countTarget 为计数目标：
// 可移植方言用结果别名 x，原生方言用方言占位列。
func CountAllQueryString(entityName, countTarget string) string {
	return fmt.Sprintf(CountQueryTemplate, countTarget, entityName)
}

// SubstituteEntityName 替换内联查询文本中的实体名占位符。
func SubstituteEntityName(text, entityName string) string {
	return strings.ReplaceAll(text, EntityNamePlaceholder, entityName)
}

// ExistsQueryString 生成按标识属性探测存在性的计数查询。
// 复合主键时按属性逐个以命名参数等值比较。
func ExistsQueryString(entityName, countColumn string, idAttributes []string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "select count(%s) from %s x where ", countColumn, entityName)
	for i, attr := range idAttributes {
		if i > 0 {
			sb.WriteString(" and ")
		}
		fmt.Fprintf(&sb, "x.%s = :%s", attr, attr)
	}
	return sb.String()
}
