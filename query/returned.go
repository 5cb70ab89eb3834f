package query

// ReturnedType 描述一次查询期望的结果形状。
//
// 三种情况：
//   - 整实体：返回类型即领域类型，不需要自定义构造；
//   - 接口式投影：按属性列表做多列（元组）选择；
//   - 具体类投影：按构造器风格做单对象选择。
//
// 只读输入，由解析器与动态查询构建器共同消费。
type ReturnedType struct {
	domainType      string
	returnedType    string
	interfaceType   bool
	inputProperties []string
}

// NewReturnedType 构造整实体结果形状。
func NewReturnedType(domainType string) *ReturnedType {
	return &ReturnedType{domainType: domainType, returnedType: domainType}
}

// NewProjection 构造投影结果形状。
//
// interfaceType 为 true 表示接口式投影（字段子集），否则为具体类投影
// （构造器映射）。inputProperties 为投影必须选择的属性名。
func NewProjection(domainType, returnedType string, interfaceType bool, inputProperties ...string) *ReturnedType {
	props := make([]string, len(inputProperties))
	copy(props, inputProperties)
	return &ReturnedType{
		domainType:      domainType,
		returnedType:    returnedType,
		interfaceType:   interfaceType,
		inputProperties: props,
	}
}

// DomainType 领域（实体）类型名。
func (r *ReturnedType) DomainType() string { return r.domainType }

// TypeName 返回类型名。
func (r *ReturnedType) TypeName() string { return r.returnedType }

// IsInterface 是否为接口式投影。
func (r *ReturnedType) IsInterface() bool { return r.interfaceType }

// IsProjecting 结果形状是否区别于领域类型。
func (r *ReturnedType) IsProjecting() bool {
	return r.returnedType != "" && r.returnedType != r.domainType
}

// NeedsCustomConstruction 是否需要非实体的自定义构造。
func (r *ReturnedType) NeedsCustomConstruction() bool { return r.IsProjecting() }

// HasInputProperties 是否声明了必选属性。
func (r *ReturnedType) HasInputProperties() bool { return len(r.inputProperties) > 0 }

// InputProperties 返回必选属性列表副本。
func (r *ReturnedType) InputProperties() []string {
	props := make([]string, len(r.inputProperties))
	copy(props, r.inputProperties)
	return props
}
