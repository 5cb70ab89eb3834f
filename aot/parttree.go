package aot

import "querykit/query"

// 方法名语法解析器是外部协作方：本包只消费其产物（谓词树），
// 不重新实现语法。

// PartOperator 谓词子句的比较算子。
type PartOperator string

const (
	OpEqual            PartOperator = "equal"
	OpNotEqual         PartOperator = "not_equal"
	OpGreaterThan      PartOperator = "greater_than"
	OpGreaterThanEqual PartOperator = "greater_than_equal"
	OpLessThan         PartOperator = "less_than"
	OpLessThanEqual    PartOperator = "less_than_equal"
	OpLike             PartOperator = "like"
	OpNotLike          PartOperator = "not_like"
	OpIn               PartOperator = "in"
	OpNotIn            PartOperator = "not_in"
	OpBetween          PartOperator = "between"
	OpIsNull           PartOperator = "is_null"
	OpIsNotNull        PartOperator = "is_not_null"
	OpTrue             PartOperator = "true"
	OpFalse            PartOperator = "false"
)

// Part 单个谓词子句：属性、算子与忽略大小写标记。
type Part struct {
	Property   string
	Operator   PartOperator
	IgnoreCase bool
}

// PartTree 方法名隐含过滤条件的结构化表示（文本生成之前）。
//
// Parts 为有序谓词子句序列，消费方按声明顺序绑定参数槽位。
// Limit、Delete、Exists 等标记随树透传到派生出的 AotQuery。
type PartTree struct {
	Parts    []Part
	Sort     query.Sort
	Limit    int
	Distinct bool
	Delete   bool
	Exists   bool
}

// IQueryCreator 谓词树到查询文本的编译器（外部协作方）。
// 每个谓词的字面量/参数绑定到位置或命名槽位。
type IQueryCreator interface {
	CreateQuery(tree *PartTree, returnedType *query.ReturnedType) (string, []ParameterBinding, error)
}

// ICountQueryCreator 计数特化的编译器：剥离投影、排序与结果上限。
type ICountQueryCreator interface {
	CreateCountQuery(tree *PartTree, returnedType *query.ReturnedType) (string, []ParameterBinding, error)
}
