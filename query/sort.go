package query

// Order 单个排序项。
type Order struct {
	Property   string
	Descending bool
	IgnoreCase bool
}

// Asc 升序排序项。
func Asc(property string) Order {
	return Order{Property: property}
}

// Desc 降序排序项。
func Desc(property string) Order {
	return Order{Property: property, Descending: true}
}

// IgnoringCase 返回忽略大小写的副本。
func (o Order) IgnoringCase() Order {
	o.IgnoreCase = true
	return o
}

// Sort 排序规约，按声明顺序生效；空值表示不排序。
type Sort []Order

// SortBy 按声明顺序构造排序，空属性名的排序项被忽略。
func SortBy(orders ...Order) Sort {
	s := make(Sort, 0, len(orders))
	for _, o := range orders {
		if o.Property == "" {
			continue
		}
		s = append(s, o)
	}
	return s
}

// Unsorted 空排序。
func Unsorted() Sort { return nil }

// IsSorted 是否包含排序项。
func (s Sort) IsSorted() bool { return len(s) > 0 }

// And 追加另一组排序项，返回新值。
func (s Sort) And(other Sort) Sort {
	if !other.IsSorted() {
		return s
	}
	merged := make(Sort, 0, len(s)+len(other))
	merged = append(merged, s...)
	merged = append(merged, other...)
	return merged
}

// Properties 返回所有排序属性名（按声明顺序）。
func (s Sort) Properties() []string {
	props := make([]string, 0, len(s))
	for _, o := range s {
		props = append(props, o.Property)
	}
	return props
}

// Contains 排序中是否引用了指定属性。
func (s Sort) Contains(property string) bool {
	for _, o := range s {
		if o.Property == property {
			return true
		}
	}
	return false
}
