// Package query 提供查询文本的分类与改写能力。
//
// 核心职责：
//   - 判定一段查询文本是否为可读取（SELECT 型）查询；
//   - 识别其结果别名与投影子句，检测构造器表达式；
//   - 在不改变原文的前提下改写出排序版本与仅计数版本。
//
// 所有改写都返回新的文本，原始 IQueryProvider 一经创建不再变更。
package query

import "strings"

// IQueryProvider 查询文本提供者。
//
// IsNative 区分两种方言：
//   - native：后端私有 SQL 方言，计数查询使用方言占位列（如 *）；
//   - portable：可移植的声明式查询语言，计数查询优先使用结果别名。
type IQueryProvider interface {
	// QueryString 返回原始查询文本
	QueryString() string

	// IsNative 是否为后端原生方言
	IsNative() bool
}

// DeclaredQuery 不可变的查询文本值。
type DeclaredQuery struct {
	text   string
	native bool
}

// NewQuery 创建可移植方言查询。
func NewQuery(text string) DeclaredQuery {
	return DeclaredQuery{text: text}
}

// NewNativeQuery 创建原生方言查询。
func NewNativeQuery(text string) DeclaredQuery {
	return DeclaredQuery{text: text, native: true}
}

func (q DeclaredQuery) QueryString() string { return q.text }

func (q DeclaredQuery) IsNative() bool { return q.native }

// IsBlank 文本是否为空白。空白查询属于用法错误，由调用方拒绝。
func (q DeclaredQuery) IsBlank() bool { return strings.TrimSpace(q.text) == "" }
